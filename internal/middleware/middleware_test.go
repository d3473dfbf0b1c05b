package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "middleware-test-secret"

func authedRouter(extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{Audit(), JWTAuth(testSecret)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":   c.GetString("user_id"),
			"user_name": c.GetString("user_name"),
			"user_role": c.GetString("user_role"),
		})
	})
	r.GET("/whoami", handlers...)
	return r
}

func signToken(t *testing.T, userID, username, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"uid":      userID,
		"username": username,
		"role":     role,
		"exp":      time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func doGet(r *gin.Engine, headers map[string]string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", "/whoami", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuditHeaderTripleAuthenticates(t *testing.T) {
	r := authedRouter()

	w := doGet(r, map[string]string{
		"user-id":   "op-007",
		"username":  "operator",
		"user-role": "documentation",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("header-only request rejected: status=%d body=%s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	for _, want := range []string{"op-007", "operator", "documentation"} {
		if !strings.Contains(body, want) {
			t.Errorf("response %s missing %q", body, want)
		}
	}
}

func TestJWTRequiredWithoutAnyIdentity(t *testing.T) {
	r := authedRouter()

	w := doGet(r, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with no token and no headers, got %d", w.Code)
	}
}

func TestJWTClaimsWinOverAuditHeaders(t *testing.T) {
	r := authedRouter()

	w := doGet(r, map[string]string{
		"Authorization": "Bearer " + signToken(t, "jwt-user", "jwtname", "admin"),
		"user-id":       "header-user",
		"username":      "headername",
		"user-role":     "viewer",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if !strings.Contains(body, "jwt-user") || strings.Contains(body, "header-user") {
		t.Errorf("expected JWT identity to win, got %s", body)
	}
}

func TestInvalidTokenRejectedDespiteHeaders(t *testing.T) {
	r := authedRouter()

	w := doGet(r, map[string]string{
		"Authorization": "Bearer not-a-token",
		"user-id":       "op-007",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a bad token, got %d", w.Code)
	}
}

func TestRequireRole(t *testing.T) {
	r := authedRouter(RequireRole("accounts"))

	w := doGet(r, map[string]string{"user-id": "op-1", "username": "ops", "user-role": "accounts"})
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 for matching role, got %d", w.Code)
	}

	w = doGet(r, map[string]string{"user-id": "op-2", "username": "boss", "user-role": "admin"})
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 for admin, got %d", w.Code)
	}

	w = doGet(r, map[string]string{"user-id": "op-3", "username": "viewer", "user-role": "viewer"})
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for wrong role, got %d", w.Code)
	}
}

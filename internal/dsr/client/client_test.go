package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Novusha-LPP/eximdev-sub002/internal/dsr/entity"
	"github.com/Novusha-LPP/eximdev-sub002/internal/dsr/listctl"
)

func respond(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    0,
		"message": "success",
		"data":    data,
	})
}

func TestFetchJobs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/api/25-26/jobs/Pending/all" {
			t.Errorf("path = %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("page") != "2" || q.Get("limit") != "50" {
			t.Errorf("pagination params = %v", q)
		}
		if q.Get("search") != "03795" {
			t.Errorf("search = %q", q.Get("search"))
		}
		if q.Get("importer") != "" {
			t.Errorf("importer=all must not be forwarded, got %q", q.Get("importer"))
		}
		respond(w, listctl.Page{
			Data:        []entity.Job{{JobNo: "03795", Year: "25-26"}},
			Total:       1,
			TotalPages:  1,
			CurrentPage: 2,
		})
	}))
	defer srv.Close()

	c := New(srv.URL, Session{})
	page, err := c.FetchJobs(context.Background(), listctl.Filters{
		Year:           "25-26",
		Status:         entity.StatusPending,
		DetailedStatus: "all",
		Importer:       "all",
		Search:         "03795",
	}, 2, 50)
	if err != nil {
		t.Fatalf("FetchJobs: %v", err)
	}
	if len(page.Data) != 1 || page.Data[0].JobNo != "03795" {
		t.Fatalf("page = %+v", page)
	}
}

func TestPatchJobSendsAuditHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %s, want PATCH", r.Method)
		}
		if r.Header.Get("user-id") != "u-1" || r.Header.Get("username") != "ops" || r.Header.Get("user-role") != "admin" {
			t.Errorf("audit headers missing: %v", r.Header)
		}
		var fields map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if fields["be_no"] != "BE123" {
			t.Errorf("fields = %v", fields)
		}
		respond(w, entity.Job{ID: "job-1", BENo: "BE123"})
	}))
	defer srv.Close()

	c := New(srv.URL, Session{UserID: "u-1", Username: "ops", UserRole: "admin"})
	job, err := c.PatchJob(context.Background(), "job-1", map[string]interface{}{"be_no": "BE123"})
	if err != nil {
		t.Fatalf("PatchJob: %v", err)
	}
	if job.BENo != "BE123" {
		t.Fatalf("job = %+v", job)
	}
}

func TestErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code":    40400,
			"message": "job not found",
		})
	}))
	defer srv.Close()

	c := New(srv.URL, Session{})
	if _, err := c.GetJob(context.Background(), "25-26", "99999"); err == nil {
		t.Fatal("expected an error for a 404 envelope")
	}
}

func TestFetchSuggestionsCancellable(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := New(srv.URL, Session{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.FetchSuggestions(ctx, listctl.Filters{Year: "25-26"}, "ac", 8)
		done <- err
	}()
	<-started
	cancel()
	if err := <-done; err == nil {
		t.Fatal("cancelled typeahead request should return an error")
	}
}

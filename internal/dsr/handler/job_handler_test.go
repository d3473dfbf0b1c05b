package handler

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/Novusha-LPP/eximdev-sub002/internal/dsr/entity"
	"github.com/Novusha-LPP/eximdev-sub002/internal/dsr/repository"
	"github.com/Novusha-LPP/eximdev-sub002/internal/dsr/service"
	"github.com/Novusha-LPP/eximdev-sub002/internal/dsr/status"
	"github.com/Novusha-LPP/eximdev-sub002/internal/dsr/testutil"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupJobRoutes(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	rdb := testutil.NewTestRedis()
	rdb.FlushDB(context.Background())

	repos := repository.NewRepositories(db)
	svc := service.NewJobService(repos.Job, rdb, zap.NewNop())
	h := NewJobHandler(svc)

	r := testutil.SetupRouter()
	api := testutil.AuthGroup(r, "/api")
	api.GET("/get-job/:year/:jobNo", h.Get)
	api.PATCH("/jobs/:id", h.Patch)
	api.POST("/:year/jobs/:status/:detailedStatus", h.List)
	api.GET("/:year/jobs/typeahead", h.Typeahead)
	api.GET("/get-importer-list/:year", h.ImporterList)
	api.GET("/get-years", h.Years)
	api.GET("/get-last-jobs-date", h.LastJobsDate)

	return r, db
}

func TestGetJob(t *testing.T) {
	r, db := setupJobRoutes(t)
	token := testutil.DefaultTestToken()

	testutil.SeedJob(t, db, &entity.Job{
		JobNo:    "00123",
		Year:     "25-26",
		Importer: "Acme Corp",
		BENo:     "7742310",
	})

	w := testutil.DoRequest(r, "GET", "/api/get-job/25-26/00123", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["job_no"] != "00123" {
		t.Errorf("expected job_no 00123, got %v", data["job_no"])
	}
	if data["importer"] != "Acme Corp" {
		t.Errorf("expected importer Acme Corp, got %v", data["importer"])
	}

	w = testutil.DoRequest(r, "GET", "/api/get-job/25-26/99999", nil, token)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown job, got %d", w.Code)
	}
}

func TestGetJobRequiresAuth(t *testing.T) {
	r, _ := setupJobRoutes(t)

	w := testutil.DoRequest(r, "GET", "/api/get-job/25-26/00123", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", w.Code)
	}
}

func TestPatchJobRecomputesDetailedStatus(t *testing.T) {
	r, db := setupJobRoutes(t)
	token := testutil.DefaultTestToken()

	job := testutil.SeedJob(t, db, &entity.Job{
		JobNo:           "00200",
		Year:            "25-26",
		ConsignmentType: "FCL",
		DetailedStatus:  status.EstimatedTimeOfArrival,
	})

	patch := map[string]interface{}{
		"discharge_date": "2025-08-01T10:00:00",
		"be_no":          "7742311",
		"be_date":        "2025-08-02",
		"container_nos": []map[string]interface{}{
			{"container_number": "TCLU1234567", "arrival_date": "2025-08-03T08:00:00"},
		},
	}

	w := testutil.DoRequest(r, "PATCH", "/api/jobs/"+job.ID, patch, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["detailed_status"] != status.BENotedClearancePending {
		t.Errorf("expected detailed status %q, got %v", status.BENotedClearancePending, data["detailed_status"])
	}

	var stored entity.Job
	if err := db.First(&stored, "id = ?", job.ID).Error; err != nil {
		t.Fatalf("reload job: %v", err)
	}
	if stored.DetailedStatus != status.BENotedClearancePending {
		t.Errorf("persisted detailed status = %q, want %q", stored.DetailedStatus, status.BENotedClearancePending)
	}
	if stored.UpdatedBy != "testadmin" {
		t.Errorf("expected updated_by testadmin, got %q", stored.UpdatedBy)
	}
}

func TestPatchJobIgnoresProtectedFields(t *testing.T) {
	r, db := setupJobRoutes(t)
	token := testutil.DefaultTestToken()

	job := testutil.SeedJob(t, db, &entity.Job{
		JobNo: "00201",
		Year:  "25-26",
	})

	patch := map[string]interface{}{
		"job_no":          "HACKED",
		"year":            "99-00",
		"detailed_status": "Billing Pending",
		"importer":        "New Importer",
	}

	w := testutil.DoRequest(r, "PATCH", "/api/jobs/"+job.ID, patch, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var stored entity.Job
	if err := db.First(&stored, "id = ?", job.ID).Error; err != nil {
		t.Fatalf("reload job: %v", err)
	}
	if stored.JobNo != "00201" || stored.Year != "25-26" {
		t.Errorf("identity fields changed: job_no=%q year=%q", stored.JobNo, stored.Year)
	}
	if stored.Importer != "New Importer" {
		t.Errorf("expected importer patched, got %q", stored.Importer)
	}
}

func TestPatchJobWithAuditHeadersOnly(t *testing.T) {
	r, db := setupJobRoutes(t)

	job := testutil.SeedJob(t, db, &entity.Job{JobNo: "00203", Year: "25-26"})

	// Editor views call with a stored session object: the header triple and
	// no bearer token.
	w := testutil.DoRequestWithHeaders(r, "PATCH", "/api/jobs/"+job.ID,
		map[string]interface{}{"importer": "Headered Importer"},
		map[string]string{
			"user-id":   "op-042",
			"username":  "deskop",
			"user-role": "documentation",
		})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for audit-header auth, got %d: %s", w.Code, w.Body.String())
	}

	var stored entity.Job
	if err := db.First(&stored, "id = ?", job.ID).Error; err != nil {
		t.Fatalf("reload job: %v", err)
	}
	if stored.Importer != "Headered Importer" {
		t.Errorf("expected importer patched, got %q", stored.Importer)
	}
	if stored.UpdatedBy != "deskop" {
		t.Errorf("expected updated_by from username header, got %q", stored.UpdatedBy)
	}
}

func TestPatchJobValidation(t *testing.T) {
	r, db := setupJobRoutes(t)
	token := testutil.DefaultTestToken()

	job := testutil.SeedJob(t, db, &entity.Job{JobNo: "00202", Year: "25-26"})

	w := testutil.DoRequest(r, "PATCH", "/api/jobs/"+job.ID, map[string]interface{}{}, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty patch, got %d", w.Code)
	}

	w = testutil.DoRequest(r, "PATCH", "/api/jobs/no-such-id", map[string]interface{}{"importer": "X"}, token)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown id, got %d", w.Code)
	}
}

func TestListJobsFiltersAndPagination(t *testing.T) {
	r, db := setupJobRoutes(t)
	token := testutil.DefaultTestToken()

	for i := 0; i < 5; i++ {
		testutil.SeedJob(t, db, &entity.Job{
			JobNo:          fmt.Sprintf("0030%d", i),
			Year:           "25-26",
			Status:         entity.StatusPending,
			DetailedStatus: status.BillingPending,
			CustomHouse:    "ICD SANAND",
			Importer:       "Acme Corp",
		})
	}
	testutil.SeedJob(t, db, &entity.Job{
		JobNo:          "00399",
		Year:           "25-26",
		Status:         entity.StatusCompleted,
		DetailedStatus: status.BillingPending,
	})

	w := testutil.DoRequest(r, "POST", "/api/25-26/jobs/Pending/Billing%20Pending?page=1&limit=3", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["total"].(float64) != 5 {
		t.Errorf("expected total 5, got %v", data["total"])
	}
	if data["totalPages"].(float64) != 2 {
		t.Errorf("expected totalPages 2, got %v", data["totalPages"])
	}
	rows := data["data"].([]interface{})
	if len(rows) != 3 {
		t.Errorf("expected 3 rows on page 1, got %d", len(rows))
	}

	// "all" in a path segment means no filtering on that dimension.
	w = testutil.DoRequest(r, "POST", "/api/25-26/jobs/all/all", nil, token)
	resp = testutil.ParseResponse(w)
	data = resp["data"].(map[string]interface{})
	if data["total"].(float64) != 6 {
		t.Errorf("expected total 6 with all/all, got %v", data["total"])
	}

	w = testutil.DoRequest(r, "POST", "/api/25-26/jobs/Pending/all?selectedICD=ICD%20SANAND&importer=Acme%20Corp", nil, token)
	resp = testutil.ParseResponse(w)
	data = resp["data"].(map[string]interface{})
	if data["total"].(float64) != 5 {
		t.Errorf("expected total 5 with ICD and importer filters, got %v", data["total"])
	}
}

func TestListJobsSearch(t *testing.T) {
	r, db := setupJobRoutes(t)
	token := testutil.DefaultTestToken()

	testutil.SeedJob(t, db, &entity.Job{
		JobNo: "03795", Year: "25-26", Status: entity.StatusPending, Importer: "Bharat Traders",
	})
	testutil.SeedJob(t, db, &entity.Job{
		JobNo: "04100", Year: "25-26", Status: entity.StatusPending, Importer: "Acme Corp", AwbBlNo: "MAEU123456",
	})

	w := testutil.DoRequest(r, "POST", "/api/25-26/jobs/all/all?search=03795", nil, token)
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["total"].(float64) != 1 {
		t.Fatalf("expected 1 match for job number search, got %v", data["total"])
	}

	w = testutil.DoRequest(r, "POST", "/api/25-26/jobs/all/all?search=maeu", nil, token)
	resp = testutil.ParseResponse(w)
	data = resp["data"].(map[string]interface{})
	if data["total"].(float64) != 1 {
		t.Errorf("expected 1 case-insensitive BL match, got %v", data["total"])
	}
}

func TestListJobsUnresolvedCount(t *testing.T) {
	r, db := setupJobRoutes(t)
	token := testutil.DefaultTestToken()

	testutil.SeedJob(t, db, &entity.Job{
		JobNo: "00500", Year: "25-26", Status: entity.StatusPending,
		Queries:              entity.QueryList{{Query: "BL copy missing?"}},
		HasUnresolvedQueries: true,
	})
	testutil.SeedJob(t, db, &entity.Job{
		JobNo: "00501", Year: "25-26", Status: entity.StatusPending,
		Queries: entity.QueryList{{Query: "Invoice value?", Reply: "Confirmed with importer"}},
	})

	w := testutil.DoRequest(r, "POST", "/api/25-26/jobs/Pending/all", nil, token)
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["unresolvedCount"].(float64) != 1 {
		t.Errorf("expected unresolvedCount 1, got %v", data["unresolvedCount"])
	}

	w = testutil.DoRequest(r, "POST", "/api/25-26/jobs/Pending/all?unresolved=true", nil, token)
	resp = testutil.ParseResponse(w)
	data = resp["data"].(map[string]interface{})
	if data["total"].(float64) != 1 {
		t.Errorf("expected only the unresolved job, got total %v", data["total"])
	}
}

func TestTypeahead(t *testing.T) {
	r, db := setupJobRoutes(t)
	token := testutil.DefaultTestToken()

	testutil.SeedJob(t, db, &entity.Job{
		JobNo: "03795", Year: "25-26", Status: entity.StatusPending, Importer: "Bharat Traders",
	})

	w := testutil.DoRequest(r, "GET", "/api/25-26/jobs/typeahead?search=037", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	items := data["data"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(items))
	}
	first := items[0].(map[string]interface{})
	if first["job_no"] != "03795" {
		t.Errorf("expected suggestion job_no 03795, got %v", first["job_no"])
	}

	// Short input returns an empty list without touching the database.
	w = testutil.DoRequest(r, "GET", "/api/25-26/jobs/typeahead?search=0", nil, token)
	resp = testutil.ParseResponse(w)
	data = resp["data"].(map[string]interface{})
	if len(data["data"].([]interface{})) != 0 {
		t.Errorf("expected empty suggestions for short input")
	}
}

func TestImporterListYearsAndLastDate(t *testing.T) {
	r, db := setupJobRoutes(t)
	token := testutil.DefaultTestToken()

	testutil.SeedJob(t, db, &entity.Job{JobNo: "00600", Year: "25-26", Importer: "Acme Corp"})
	testutil.SeedJob(t, db, &entity.Job{JobNo: "00601", Year: "25-26", Importer: "Bharat Traders"})
	testutil.SeedJob(t, db, &entity.Job{JobNo: "00602", Year: "24-25", Importer: "Acme Corp"})

	w := testutil.DoRequest(r, "GET", "/api/get-importer-list/25-26", nil, token)
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	importers := data["importers"].([]interface{})
	if len(importers) != 2 {
		t.Errorf("expected 2 importers for 25-26, got %d", len(importers))
	}

	w = testutil.DoRequest(r, "GET", "/api/get-years", nil, token)
	resp = testutil.ParseResponse(w)
	data = resp["data"].(map[string]interface{})
	years := data["years"].([]interface{})
	if len(years) != 2 || years[0] != "25-26" {
		t.Errorf("expected years [25-26 24-25], got %v", years)
	}

	w = testutil.DoRequest(r, "GET", "/api/get-last-jobs-date", nil, token)
	resp = testutil.ParseResponse(w)
	data = resp["data"].(map[string]interface{})
	if data["date"] == "" {
		t.Errorf("expected a last jobs date")
	}
}

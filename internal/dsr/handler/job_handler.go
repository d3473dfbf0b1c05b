package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/Novusha-LPP/eximdev-sub002/internal/dsr/repository"
	"github.com/Novusha-LPP/eximdev-sub002/internal/dsr/service"
	"github.com/gin-gonic/gin"
)

// JobHandler serves the job list and job record endpoints.
type JobHandler struct {
	svc *service.JobService
}

func NewJobHandler(svc *service.JobService) *JobHandler {
	return &JobHandler{svc: svc}
}

// Get returns the full job record.
// GET /api/get-job/:year/:jobNo
func (h *JobHandler) Get(c *gin.Context) {
	year := c.Param("year")
	jobNo := c.Param("jobNo")
	if year == "" || jobNo == "" {
		BadRequest(c, "year and job number are required")
		return
	}

	job, err := h.svc.Get(c.Request.Context(), year, jobNo)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "job not found")
			return
		}
		InternalError(c, err.Error())
		return
	}
	Success(c, job)
}

// Patch applies a partial update to a job. The server recomputes
// detailed_status from the merged record before persisting.
// PATCH /api/jobs/:id
func (h *JobHandler) Patch(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "job id is required")
		return
	}

	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if len(fields) == 0 {
		BadRequest(c, "empty patch")
		return
	}

	job, err := h.svc.Patch(c.Request.Context(), id, fields, GetUsername(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "job not found")
			return
		}
		InternalError(c, err.Error())
		return
	}
	Success(c, job)
}

// List serves one page of the filtered job list.
// POST /api/:year/jobs/:status/:detailedStatus?page&limit&search&selectedICD&importer&unresolved
func (h *JobHandler) List(c *gin.Context) {
	page, limit := GetPagination(c)

	params := repository.ListParams{
		Year:           c.Param("year"),
		Status:         c.Param("status"),
		DetailedStatus: c.Param("detailedStatus"),
		ICDCode:        c.Query("selectedICD"),
		Importer:       c.Query("importer"),
		Search:         c.Query("search"),
		Page:           page,
		Limit:          limit,
	}
	if v, err := strconv.ParseBool(c.Query("unresolved")); err == nil {
		params.UnresolvedOnly = v
	}

	result, err := h.svc.List(c.Request.Context(), params)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, result)
}

// Typeahead serves autocomplete suggestions.
// GET /api/:year/jobs/typeahead?search&limit&selectedICD&importer
func (h *JobHandler) Typeahead(c *gin.Context) {
	search := c.Query("search")
	if len(search) < 2 {
		Success(c, gin.H{"data": []repository.JobSuggestion{}})
		return
	}

	limit := 8
	if l := c.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil {
			limit = v
		}
	}

	suggestions, err := h.svc.Typeahead(
		c.Request.Context(),
		c.Param("year"),
		search,
		c.Query("selectedICD"),
		c.Query("importer"),
		limit,
	)
	if err != nil {
		// Typeahead degrades to an empty list rather than erroring.
		Success(c, gin.H{"data": []repository.JobSuggestion{}})
		return
	}
	if suggestions == nil {
		suggestions = []repository.JobSuggestion{}
	}
	Success(c, gin.H{"data": suggestions})
}

// ImporterList returns the distinct importers for a year.
// GET /api/get-importer-list/:year
func (h *JobHandler) ImporterList(c *gin.Context) {
	importers, err := h.svc.ImporterList(c.Request.Context(), c.Param("year"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	if importers == nil {
		importers = []string{}
	}
	Success(c, gin.H{"importers": importers})
}

// Years returns the fiscal years present in the system.
// GET /api/get-years
func (h *JobHandler) Years(c *gin.Context) {
	years, err := h.svc.Years(c.Request.Context())
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	if years == nil {
		years = []string{}
	}
	Success(c, gin.H{"years": years})
}

// LastJobsDate returns the creation date of the most recent job.
// GET /api/get-last-jobs-date
func (h *JobHandler) LastJobsDate(c *gin.Context) {
	date, err := h.svc.LastJobsDate(c.Request.Context())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			Success(c, gin.H{"date": ""})
			return
		}
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"date": date.Format(time.RFC3339)})
}

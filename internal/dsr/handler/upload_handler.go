package handler

import (
	"errors"

	"github.com/Novusha-LPP/eximdev-sub002/internal/dsr/repository"
	"github.com/Novusha-LPP/eximdev-sub002/internal/dsr/service"
	"github.com/gin-gonic/gin"
)

// UploadHandler serves the spreadsheet import and document upload endpoints.
type UploadHandler struct {
	svc *service.UploadService
}

func NewUploadHandler(svc *service.UploadService) *UploadHandler {
	return &UploadHandler{svc: svc}
}

// BulkUpload imports the daily job sheet.
// POST /api/jobs/bulk-upload  (multipart: file, year)
func (h *UploadHandler) BulkUpload(c *gin.Context) {
	year := c.PostForm("year")
	if year == "" {
		BadRequest(c, "year is required")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "spreadsheet file is required: "+err.Error())
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		InternalError(c, "read upload: "+err.Error())
		return
	}
	defer src.Close()

	result, err := h.svc.ImportSpreadsheet(c.Request.Context(), src, year, GetUsername(c))
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	Success(c, result)
}

// UploadDocument attaches a document to a job.
// POST /api/jobs/:id/documents  (multipart: file, document_name)
func (h *UploadHandler) UploadDocument(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "job id is required")
		return
	}

	documentName := c.PostForm("document_name")
	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "document file is required: "+err.Error())
		return
	}
	if documentName == "" {
		documentName = fileHeader.Filename
	}

	src, err := fileHeader.Open()
	if err != nil {
		InternalError(c, "read upload: "+err.Error())
		return
	}
	defer src.Close()

	job, err := h.svc.UploadDocument(
		c.Request.Context(),
		id,
		documentName,
		fileHeader.Filename,
		src,
		fileHeader.Size,
		fileHeader.Header.Get("Content-Type"),
		GetUsername(c),
	)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "job not found")
			return
		}
		InternalError(c, err.Error())
		return
	}
	Created(c, job)
}

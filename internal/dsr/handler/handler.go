package handler

import (
	"strconv"

	"github.com/Novusha-LPP/eximdev-sub002/internal/dsr/service"
	"github.com/gin-gonic/gin"
)

// Handlers bundles every handler for route registration.
type Handlers struct {
	Job    *JobHandler
	Upload *UploadHandler
	SSE    *SSEHandler
}

// NewHandlers creates all handlers.
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Job:    NewJobHandler(svc.Job),
		Upload: NewUploadHandler(svc.Upload),
		SSE:    NewSSEHandler(),
	}
}

// Response is the common response envelope.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success writes a 200 envelope.
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created writes a 201 envelope.
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error writes an error envelope; the HTTP status is the leading three
// digits of the application code.
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest writes a 400 envelope.
func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

// NotFound writes a 404 envelope.
func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

// InternalError writes a 500 envelope.
func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// GetUserID returns the operator id set by auth or audit middleware.
func GetUserID(c *gin.Context) string {
	return c.GetString("user_id")
}

// GetUsername returns the operator name set by auth or audit middleware.
func GetUsername(c *gin.Context) string {
	return c.GetString("user_name")
}

// GetPagination reads page/limit query params with sane bounds.
func GetPagination(c *gin.Context) (page, limit int) {
	page = 1
	limit = 100

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}
	if l := c.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 500 {
			limit = v
		}
	}
	return page, limit
}

package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopcore/backend/internal/domain/shared"
	"github.com/shopcore/backend/internal/interfaces/http/dto"
)

// RequestIDKey names the gin context key and header carrying the
// request ID.
const RequestIDKey = "X-Request-ID"

// BaseHandler carries the response helpers shared by every HTTP
// handler. Embed it and call the helpers instead of writing to the gin
// context directly.
type BaseHandler struct{}

// getRequestID reads the request ID set by middleware, falling back to
// the inbound header.
func getRequestID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(RequestIDKey)
}

// respondError writes an error body tagged with the request ID.
func respondError(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// Success sends 200 with data wrapped in the standard envelope.
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends 200 with data plus pagination metadata.
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends 201 with data wrapped in the standard envelope.
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends an empty 204.
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with an explicit status code.
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	respondError(c, statusCode, code, message)
}

// ErrorWithCode sends an error response, deriving the status code from
// the error code.
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	respondError(c, dto.GetHTTPStatus(code), code, message)
}

// BadRequest sends 400.
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	respondError(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends 404.
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	respondError(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// Conflict sends 409.
func (h *BaseHandler) Conflict(c *gin.Context, message string) {
	respondError(c, http.StatusConflict, dto.ErrCodeConflict, message)
}

// UnprocessableEntity sends 422 with a caller-chosen error code.
func (h *BaseHandler) UnprocessableEntity(c *gin.Context, code, message string) {
	respondError(c, http.StatusUnprocessableEntity, code, message)
}

// InternalError sends 500.
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	respondError(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// ValidationError sends 400 with per-field validation details.
func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Request validation failed",
		getRequestID(c),
		details,
	))
}

// HandleDomainError maps a domain error to its HTTP representation.
// Errors that are not domain errors become 500s.
func (h *BaseHandler) HandleDomainError(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		respondError(c, dto.GetHTTPStatus(code), code, domainErr.Message)
		return
	}
	h.InternalError(c, "An unexpected error occurred")
}

// HandleError responds to any error, unwrapping domain errors for their
// status mapping. A nil error writes nothing.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		respondError(c, dto.GetHTTPStatus(code), code, domainErr.Message)
		return
	}

	respondError(c, http.StatusInternalServerError, dto.ErrCodeInternal,
		"An unexpected error occurred")
}

package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopcore/backend/internal/domain/shared"
	"github.com/shopcore/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// respContext builds a gin test context with an attached GET request.
func respContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetRequestID(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*gin.Context)
		want  string
	}{
		{
			name:  "from context",
			setup: func(c *gin.Context) { c.Set(RequestIDKey, "ctx-request-id") },
			want:  "ctx-request-id",
		},
		{
			name:  "from header when context empty",
			setup: func(c *gin.Context) { c.Request.Header.Set(RequestIDKey, "header-request-id") },
			want:  "header-request-id",
		},
		{
			name:  "empty when absent",
			setup: func(c *gin.Context) {},
			want:  "",
		},
		{
			name: "context beats header",
			setup: func(c *gin.Context) {
				c.Set(RequestIDKey, "ctx-id")
				c.Request.Header.Set(RequestIDKey, "header-id")
			},
			want: "ctx-id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := respContext()
			tt.setup(c)
			assert.Equal(t, tt.want, getRequestID(c))
		})
	}
}

func TestBaseHandlerSuccess(t *testing.T) {
	h := &BaseHandler{}
	c, w := respContext()

	h.Success(c, map[string]string{"item_id": "sku-100"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeResponse(t, w).Success)
}

func TestBaseHandlerSuccessWithMeta(t *testing.T) {
	h := &BaseHandler{}
	c, w := respContext()

	h.SuccessWithMeta(c, []string{"sku-1", "sku-2"}, 100, 1, 10)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(100), resp.Meta.Total)
}

func TestBaseHandlerCreated(t *testing.T) {
	h := &BaseHandler{}
	c, w := respContext()

	h.Created(c, map[string]string{"id": "123"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decodeResponse(t, w).Success)
}

func TestBaseHandlerNoContent(t *testing.T) {
	h := &BaseHandler{}

	engine := gin.New()
	engine.DELETE("/records/:id", func(c *gin.Context) { h.NoContent(c) })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest("DELETE", "/records/1", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.Bytes())
}

func TestBaseHandlerErrorMethods(t *testing.T) {
	tests := []struct {
		name     string
		call     func(*BaseHandler, *gin.Context)
		wantCode int
		wantErr  string
	}{
		{
			name:     "BadRequest",
			call:     func(h *BaseHandler, c *gin.Context) { h.BadRequest(c, "invalid quantity") },
			wantCode: http.StatusBadRequest,
			wantErr:  dto.ErrCodeBadRequest,
		},
		{
			name:     "NotFound",
			call:     func(h *BaseHandler, c *gin.Context) { h.NotFound(c, "stock record not found") },
			wantCode: http.StatusNotFound,
			wantErr:  dto.ErrCodeNotFound,
		},
		{
			name:     "Conflict",
			call:     func(h *BaseHandler, c *gin.Context) { h.Conflict(c, "record already exists") },
			wantCode: http.StatusConflict,
			wantErr:  dto.ErrCodeConflict,
		},
		{
			name:     "InternalError",
			call:     func(h *BaseHandler, c *gin.Context) { h.InternalError(c, "storage failure") },
			wantCode: http.StatusInternalServerError,
			wantErr:  dto.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			c, w := respContext()

			tt.call(h, c)

			assert.Equal(t, tt.wantCode, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantErr, resp.Error.Code)
		})
	}
}

func TestBaseHandlerErrorCarriesRequestID(t *testing.T) {
	h := &BaseHandler{}
	c, w := respContext()
	c.Set(RequestIDKey, "reserve-req-123")

	h.BadRequest(c, "invalid quantity")

	assert.Equal(t, "reserve-req-123", decodeResponse(t, w).Error.RequestID)
}

func TestBaseHandlerErrorWithCode(t *testing.T) {
	h := &BaseHandler{}
	c, w := respContext()

	h.ErrorWithCode(c, dto.ErrCodeInsufficientStock, "not enough available stock")

	// Business rule failures map to 422.
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeInsufficientStock, decodeResponse(t, w).Error.Code)
}

func TestBaseHandlerValidationError(t *testing.T) {
	h := &BaseHandler{}
	c, w := respContext()
	c.Set(RequestIDKey, "val-req-456")

	h.ValidationError(c, []dto.ValidationDetail{
		{Field: "quantity", Message: "Must be greater than 0"},
		{Field: "item_id", Message: "Required"},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "val-req-456", resp.Error.RequestID)
	assert.Len(t, resp.Error.Details, 2)
}

func TestBaseHandlerHandleDomainError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{"already exists", shared.ErrAlreadyExists, http.StatusConflict, dto.ErrCodeAlreadyExists},
		{"invalid input", shared.ErrInvalidInput, http.StatusBadRequest, dto.ErrCodeInvalidInput},
		{"invalid state", shared.ErrInvalidState, http.StatusUnprocessableEntity, dto.ErrCodeInvalidState},
		{"concurrency conflict", shared.ErrConcurrencyConflict, http.StatusConflict, dto.ErrCodeConcurrencyConflict},
		{"insufficient stock", shared.ErrInsufficientStock, http.StatusUnprocessableEntity, dto.ErrCodeInsufficientStock},
		{"insufficient reserved", shared.ErrInsufficientReserved, http.StatusUnprocessableEntity, dto.ErrCodeInsufficientReserved},
		{"insufficient on hand", shared.ErrInsufficientOnHand, http.StatusUnprocessableEntity, dto.ErrCodeInsufficientOnHand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			c, w := respContext()

			h.HandleDomainError(c, tt.err)

			assert.Equal(t, tt.wantCode, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantErr, resp.Error.Code)
		})
	}
}

func TestBaseHandlerHandleDomainErrorRequestID(t *testing.T) {
	h := &BaseHandler{}
	c, w := respContext()
	c.Set(RequestIDKey, "domain-err-req")

	h.HandleDomainError(c, shared.ErrNotFound)

	assert.Equal(t, "domain-err-req", decodeResponse(t, w).Error.RequestID)
}

func TestBaseHandlerHandleDomainError_PlainError(t *testing.T) {
	h := &BaseHandler{}
	c, w := respContext()

	h.HandleDomainError(c, assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, dto.ErrCodeInternal, resp.Error.Code)
	assert.Equal(t, "An unexpected error occurred", resp.Error.Message)
}

func TestBaseHandlerHandleError(t *testing.T) {
	h := &BaseHandler{}

	t.Run("nil error writes nothing", func(t *testing.T) {
		c, w := respContext()
		h.HandleError(c, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("domain error maps to its status", func(t *testing.T) {
		c, w := respContext()
		h.HandleError(c, shared.ErrNotFound)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("plain error maps to 500", func(t *testing.T) {
		c, w := respContext()
		h.HandleError(c, assert.AnError)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("wrapped domain error unwraps", func(t *testing.T) {
		c, w := respContext()
		h.HandleError(c, fmt.Errorf("loading record: %w", shared.ErrNotFound))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.ErrCodeNotFound, decodeResponse(t, w).Error.Code)
	})
}

func TestBaseHandlerUnprocessableEntity(t *testing.T) {
	h := &BaseHandler{}
	c, w := respContext()

	h.UnprocessableEntity(c, dto.ErrCodeBusinessRule, "record is discontinued")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeBusinessRule, decodeResponse(t, w).Error.Code)
}

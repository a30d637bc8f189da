package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/campusdesk/internal/app/models/dto"
	"github.com/yigit/campusdesk/internal/pkg/apperrors"
)

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    dto.ErrorCode
		message string
		field   string
	}{
		{name: "not found", err: apperrors.ErrNoticeNotFound, status: http.StatusNotFound, code: dto.ErrorCodeResourceNotFound, message: "notice not found"},
		{name: "wrapped not found", err: fmt.Errorf("load notice: %w", apperrors.ErrNoticeNotFound), status: http.StatusNotFound, code: dto.ErrorCodeResourceNotFound},
		{name: "custom code wins", err: apperrors.ErrAlreadyApplied, status: http.StatusConflict, code: "ALREADY_APPLIED"},
		{name: "already voted", err: apperrors.ErrAlreadyVoted, status: http.StatusConflict, code: "ALREADY_VOTED"},
		{name: "field validation", err: apperrors.NewValidationError("deadline", "deadline must be in the future"), status: http.StatusBadRequest, code: dto.ErrorCodeValidationFailed, field: "deadline"},
		{name: "credentials", err: apperrors.ErrInvalidCredentials, status: http.StatusUnauthorized, code: dto.ErrorCodeInvalidCredentials},
		{name: "reset token", err: apperrors.ErrInvalidPasswordResetToken, status: http.StatusBadRequest, code: dto.ErrorCodeInvalidToken},
		{name: "not verified", err: apperrors.ErrProfileNotVerified, status: http.StatusForbidden, code: dto.ErrorCodeNotVerified},
		{name: "gateway", err: apperrors.ErrAssistantFailed, status: http.StatusServiceUnavailable, code: dto.ErrorCodeExternalServiceError},
		{name: "unknown", err: errors.New("boom"), status: http.StatusInternalServerError, code: dto.ErrorCodeInternalServer, message: "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

			HandleAPIError(c, tt.err)

			require.Equal(t, tt.status, w.Code)
			resp := decodeError(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.code, resp.Error.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, resp.Error.Message)
			}
			if tt.field != "" {
				assert.Equal(t, tt.field, resp.Error.Field)
			}
		})
	}
}

func TestBindJSON_ReportsFields(t *testing.T) {
	type body struct {
		Title string `json:"title" binding:"required"`
	}
	r := gin.New()
	r.POST("/x", func(c *gin.Context) {
		var b body
		if !BindJSON(c, &b) {
			return
		}
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", jsonBody(`{}`)))
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, dto.ErrorCodeValidationFailed, resp.Error.Code)
	assert.Equal(t, "title", resp.Error.Field)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", jsonBody(`{"title":"Exam week"}`)))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

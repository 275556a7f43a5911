package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/behubadmin/internal/apperrors"
	"github.com/nkiryanov/behubadmin/internal/logger"
)

func Test_serviceError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "auth expired",
			err:        fmt.Errorf("list failed: %w", apperrors.NewAuthExpired(errors.New("refresh rejected"))),
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error": "auth_expired", "redirect": "/login"}`,
		},
		{
			name: "validation error from api",
			err: &apperrors.ValidationError{
				StatusCode: http.StatusUnprocessableEntity,
				Message:    "Validation failed",
				Fields:     map[string][]string{"name": {"Name is required"}},
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   `{"error": "validation_failed", "message": "Validation failed", "fields": {"name": ["Name is required"]}}`,
		},
		{
			name:       "category not found",
			err:        fmt.Errorf("%w: cat-1", apperrors.ErrCategoryNotFound),
			wantStatus: http.StatusNotFound,
			wantBody:   `{"error": "service_error", "message": "Service category not found"}`,
		},
		{
			name:       "invalid credentials",
			err:        apperrors.ErrInvalidCredentials,
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error": "service_error", "message": "Invalid email or password"}`,
		},
		{
			name:       "store unavailable",
			err:        fmt.Errorf("redis: %w", apperrors.ErrStoreUnavailable),
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"error": "service_error", "message": "Credential store unavailable"}`,
		},
		{
			name:       "api client error passed through",
			err:        &apperrors.NetworkError{StatusCode: http.StatusConflict, Message: "Category is in use"},
			wantStatus: http.StatusConflict,
			wantBody:   `{"error": "service_error", "message": "Category is in use"}`,
		},
		{
			name:       "api server error",
			err:        &apperrors.NetworkError{StatusCode: http.StatusInternalServerError, Message: "Internal Server Error"},
			wantStatus: http.StatusBadGateway,
			wantBody:   `{"error": "service_error", "message": "Internal Server Error"}`,
		},
		{
			name:       "api unreachable",
			err:        &apperrors.NetworkError{Message: "connection refused"},
			wantStatus: http.StatusBadGateway,
			wantBody:   `{"error": "service_error", "message": "BeHub API is unavailable"}`,
		},
		{
			name:       "anything else",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error": "service_error", "message": "An error occurred. Please try again."}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			serviceError(w, tt.err, logger.NewNoOpLogger())

			require.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}

	t.Run("auth expired drops cookies", func(t *testing.T) {
		w := httptest.NewRecorder()

		serviceError(w, apperrors.NewAuthExpired(nil), logger.NewNoOpLogger())

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 2)
		for _, c := range cookies {
			require.Empty(t, c.Value)
			require.Negative(t, c.MaxAge)
		}
	})
}

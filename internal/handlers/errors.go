package handlers

import (
	"errors"
	"net/http"

	"github.com/nkiryanov/behubadmin/internal/apperrors"
	"github.com/nkiryanov/behubadmin/internal/credstore"
	"github.com/nkiryanov/behubadmin/internal/handlers/render"
	"github.com/nkiryanov/behubadmin/internal/logger"
)

// Render error returned by services
// Expired session wins over everything: cookies are dropped and the admin is sent to login page
func serviceError(w http.ResponseWriter, err error, l logger.Logger) {
	var authErr *apperrors.AuthExpiredError
	var valErr *apperrors.ValidationError
	var netErr *apperrors.NetworkError

	switch {
	case errors.As(err, &authErr):
		credstore.ClearCookies(w)
		render.AuthExpired(w, authErr.Redirect)
	case errors.As(err, &valErr):
		render.FieldErrors(w, valErr)
	case errors.Is(err, apperrors.ErrCategoryNotFound):
		render.ServiceError(w, "Service category not found", http.StatusNotFound)
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		render.ServiceError(w, "Invalid email or password", http.StatusUnauthorized)
	case errors.Is(err, apperrors.ErrStoreUnavailable):
		l.Error("Credential store unavailable", "error", err)
		render.ServiceError(w, "Credential store unavailable", http.StatusServiceUnavailable)
	case errors.As(err, &netErr):
		l.Warn("BeHub API call failed", "status", netErr.StatusCode, "error", err)
		render.ServiceError(w, upstreamMessage(netErr), upstreamStatus(netErr))
	default:
		l.Error("Unexpected service error", "error", err)
		render.ServiceError(w, "An error occurred. Please try again.", http.StatusInternalServerError)
	}
}

// Client errors of the API are the admin's errors, anything else is a bad gateway
func upstreamStatus(err *apperrors.NetworkError) int {
	if err.StatusCode >= 400 && err.StatusCode < 500 {
		return err.StatusCode
	}
	return http.StatusBadGateway
}

func upstreamMessage(err *apperrors.NetworkError) string {
	if err.StatusCode == 0 {
		return "BeHub API is unavailable"
	}
	return err.Message
}

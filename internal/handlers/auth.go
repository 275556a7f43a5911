package handlers

import (
	"net/http"
	"time"

	"github.com/nkiryanov/behubadmin/internal/credstore"
	"github.com/nkiryanov/behubadmin/internal/handlers/middleware"
	"github.com/nkiryanov/behubadmin/internal/handlers/render"
	"github.com/nkiryanov/behubadmin/internal/logger"
	"github.com/nkiryanov/behubadmin/internal/models"
)

type messageResponse struct {
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

func handleLoginPage(appName string) http.Handler {
	type response struct {
		AppName string `json:"appName"`
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		render.JSON(w, response{AppName: appName, Message: "Login required"})
	})
}

func handleLogin(authService authService, l logger.Logger) http.Handler {
	type request struct {
		Email      string `json:"email" validate:"required,email"`
		Password   string `json:"password" validate:"required"`
		RememberMe bool   `json:"rememberMe"`
	}
	type response struct {
		Message  string      `json:"message"`
		Redirect string      `json:"redirect"`
		User     models.User `json:"user"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, err := authService.Login(r.Context(), data.Email, data.Password, data.RememberMe)
		if err != nil {
			serviceError(w, err, l)
			return
		}

		pair, err := authService.Tokens(r.Context())
		if err != nil {
			serviceError(w, err, l)
			return
		}

		credstore.SetCookies(w, pair)
		render.JSON(w, response{Message: "Login successful", Redirect: middleware.DashboardPath, User: user})
	})
}

func handleLogout(authService authService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owns, err := middleware.OwnsSession(r, authService)
		if err != nil {
			serviceError(w, err, l)
			return
		}

		// Foreign cookies are only dropped, stored session stays
		if owns {
			if err := authService.Logout(r.Context()); err != nil {
				serviceError(w, err, l)
				return
			}
		}

		credstore.ClearCookies(w)
		render.JSON(w, messageResponse{Message: "Logged out successfully", Redirect: middleware.LoginPath})
	})
}

func handleSession(authService authService, l logger.Logger) http.Handler {
	type response struct {
		Authenticated bool         `json:"authenticated"`
		User          *models.User `json:"user,omitempty"`
		ExpiresAt     *time.Time   `json:"expiresAt,omitempty"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owns, err := middleware.OwnsSession(r, authService)
		if err != nil {
			serviceError(w, err, l)
			return
		}
		if !owns {
			render.JSON(w, response{})
			return
		}

		session, err := authService.Session(r.Context())
		if err != nil {
			serviceError(w, err, l)
			return
		}

		resp := response{Authenticated: session.Authenticated, User: session.User}
		if !session.ExpiresAt.IsZero() {
			resp.ExpiresAt = &session.ExpiresAt
		}
		render.JSON(w, resp)
	})
}

// Healthy while credential store answers
func handleHealth(authService authService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := authService.Session(r.Context()); err != nil {
			l.Warn("Health check failed", "error", err)
			render.ServiceError(w, "unhealthy", http.StatusServiceUnavailable)
			return
		}
		render.JSON(w, map[string]string{"status": "ok"})
	})
}

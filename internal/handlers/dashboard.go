package handlers

import (
	"net/http"

	"github.com/nkiryanov/behubadmin/internal/handlers/render"
	"github.com/nkiryanov/behubadmin/internal/handlers/userctx"
	"github.com/nkiryanov/behubadmin/internal/models"
)

func handleDashboard(appName string) http.Handler {
	type response struct {
		AppName string       `json:"appName"`
		User    *models.User `json:"user"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, _ := userctx.FromContext(r.Context())
		render.JSON(w, response{AppName: appName, User: session.User})
	})
}

func handleProfile() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, _ := userctx.FromContext(r.Context())
		if session.User == nil {
			render.ServiceError(w, "Profile not found", http.StatusNotFound)
			return
		}
		render.JSON(w, session.User)
	})
}

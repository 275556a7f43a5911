package middleware

import (
	"net/http"
	"strings"

	"github.com/nkiryanov/behubadmin/internal/credstore"
)

const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

// Redirect by access cookie presence only, the token itself is not checked here:
//   - login page with cookie goes to dashboard
//   - dashboard without cookie goes to login page
func RouteGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hasToken := credstore.AccessFromRequest(r) != ""

		switch {
		case isLoginPage(r) && hasToken:
			http.Redirect(w, r, DashboardPath, http.StatusSeeOther)
		case isDashboard(r.URL.Path) && !hasToken:
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

// Only page views are redirected: submitting login form must reach the handler
func isLoginPage(r *http.Request) bool {
	return r.URL.Path == LoginPath && (r.Method == http.MethodGet || r.Method == http.MethodHead)
}

func isDashboard(path string) bool {
	return path == DashboardPath || strings.HasPrefix(path, DashboardPath+"/")
}

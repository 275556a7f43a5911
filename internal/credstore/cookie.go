package credstore

import (
	"net/http"
	"time"

	"github.com/nkiryanov/behubadmin/internal/models"
)

// Cookies mirroring stored tokens, so the route gate can check presence without touching the store
const (
	AccessCookieName  = "accessToken"
	RefreshCookieName = "refreshToken"
)

const cookieMaxAge = 30 * 24 * time.Hour

// Mirror token pair to response cookies. Empty refresh token leaves the refresh cookie untouched
func SetCookies(w http.ResponseWriter, pair models.TokenPair) {
	http.SetCookie(w, newCookie(AccessCookieName, pair.Access, int(cookieMaxAge.Seconds())))
	if pair.Refresh != "" {
		http.SetCookie(w, newCookie(RefreshCookieName, pair.Refresh, int(cookieMaxAge.Seconds())))
	}
}

// Expire both token cookies
func ClearCookies(w http.ResponseWriter) {
	http.SetCookie(w, newCookie(AccessCookieName, "", -1))
	http.SetCookie(w, newCookie(RefreshCookieName, "", -1))
}

// Return access token cookie value or empty string
func AccessFromRequest(r *http.Request) string {
	c, err := r.Cookie(AccessCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// Return refresh token cookie value or empty string
func RefreshFromRequest(r *http.Request) string {
	c, err := r.Cookie(RefreshCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func newCookie(name string, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		SameSite: http.SameSiteLaxMode,
	}
}

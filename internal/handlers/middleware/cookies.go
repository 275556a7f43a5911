package middleware

import (
	"context"
	"net/http"

	"github.com/nkiryanov/behubadmin/internal/credstore"
	"github.com/nkiryanov/behubadmin/internal/models"
)

type tokenSource interface {
	Tokens(ctx context.Context) (models.TokenPair, error)
}

type cookieWriter struct {
	http.ResponseWriter
	r      *http.Request
	tokens tokenSource
	synced bool
}

func (w *cookieWriter) WriteHeader(statusCode int) {
	w.sync()
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *cookieWriter) Write(p []byte) (int, error) {
	w.sync()
	return w.ResponseWriter.Write(p)
}

// Let http.ResponseController reach the underlying writer
func (w *cookieWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Flush sends headers, so cookies are synced first
func (w *cookieWriter) Flush() {
	w.sync()
	_ = http.NewResponseController(w.ResponseWriter).Flush()
}

// Cookies can only be set before headers are sent
func (w *cookieWriter) sync() {
	if w.synced {
		return
	}
	w.synced = true

	// Handler already decided about cookies (login, logout, expired session)
	if len(w.Header().Values("Set-Cookie")) > 0 {
		return
	}

	pair, err := w.tokens.Tokens(w.r.Context())
	if err != nil {
		return
	}
	if pair.Access != credstore.AccessFromRequest(w.r) {
		credstore.SetCookies(w.ResponseWriter, pair)
	}
}

// Mirror tokens rotated by the API client during the request to response cookies
// Has to run after RequireSession: tokens are written to whoever passed it
func CookieSync(tokens tokenSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(&cookieWriter{ResponseWriter: w, r: r, tokens: tokens}, r)
		})
	}
}

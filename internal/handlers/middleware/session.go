package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/nkiryanov/behubadmin/internal/apperrors"
	"github.com/nkiryanov/behubadmin/internal/credstore"
	"github.com/nkiryanov/behubadmin/internal/handlers/render"
	"github.com/nkiryanov/behubadmin/internal/handlers/userctx"
	"github.com/nkiryanov/behubadmin/internal/models"
)

type sessionSource interface {
	Session(ctx context.Context) (models.Session, error)
	Tokens(ctx context.Context) (models.TokenPair, error)
}

// OwnsSession reports whether request cookies belong to the stored credentials.
// Either cookie is enough: the access one goes stale when another request refreshed tokens
func OwnsSession(r *http.Request, tokens tokenSource) (bool, error) {
	pair, err := tokens.Tokens(r.Context())
	switch {
	case errors.Is(err, apperrors.ErrEntryNotFound):
		return false, nil
	case err != nil:
		return false, err
	}

	return sameToken(credstore.AccessFromRequest(r), pair.Access) ||
		sameToken(credstore.RefreshFromRequest(r), pair.Refresh), nil
}

func sameToken(cookie string, stored string) bool {
	if cookie == "" || stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookie), []byte(stored)) == 1
}

// Load admin session from credential store and put it to request context
// Request cookies have to match stored tokens, otherwise cookies are dropped and login is required
func RequireSession(sessions sessionSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			owns, err := OwnsSession(r, sessions)
			if err != nil {
				render.ServiceError(w, "Credential store unavailable", http.StatusServiceUnavailable)
				return
			}
			if !owns {
				credstore.ClearCookies(w)
				render.AuthExpired(w, apperrors.LoginPath)
				return
			}

			session, err := sessions.Session(r.Context())
			if err != nil {
				render.ServiceError(w, "Credential store unavailable", http.StatusServiceUnavailable)
				return
			}
			if !session.Authenticated {
				credstore.ClearCookies(w)
				render.AuthExpired(w, apperrors.LoginPath)
				return
			}

			ctx := userctx.New(r.Context(), session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

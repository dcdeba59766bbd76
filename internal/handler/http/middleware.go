package http

import (
	"context"
	"net/http"

	"github.com/gofrs/uuid"

	"github.com/mynature/storefront/internal/admin"
	"github.com/mynature/storefront/internal/auth"
)

// SessionCookie carries the session token to the browser.
const SessionCookie = "admin_session"

type contextKey string

const sessionContextKey contextKey = "admin-session"

// RequireAdmin gates every protected route. Unauthenticated and unauthorized
// visitors are redirected before any protected handler runs.
func RequireAdmin(gate *admin.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := gate.Resolve(r.Context(), tokenFromRequest(r))
			if !decision.Allowed() {
				http.Redirect(w, r, decision.Redirect, http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, decision.Session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFromRequest(r *http.Request) uuid.UUID {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return uuid.Nil
	}
	token, err := uuid.FromString(cookie.Value)
	if err != nil {
		return uuid.Nil
	}
	return token
}

// sessionFromContext returns the session placed by RequireAdmin, or nil.
func sessionFromContext(ctx context.Context) *auth.Session {
	session, _ := ctx.Value(sessionContextKey).(*auth.Session)
	return session
}

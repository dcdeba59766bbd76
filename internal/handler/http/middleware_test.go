package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mynature/storefront/internal/admin"
	"github.com/mynature/storefront/internal/auth"
)

func protectedProbe(t *testing.T, gate *admin.Gate) (http.Handler, *bool, **auth.Session) {
	t.Helper()

	called := false
	var seen *auth.Session
	handler := RequireAdmin(gate)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		seen = sessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	return handler, &called, &seen
}

func TestRequireAdmin_RedirectsWithoutCookie(t *testing.T) {
	gate := admin.NewGate(&mockAuthService{}, &mockAllowlist{}, LoginPath)
	handler, called, _ := protectedProbe(t, gate)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/admin/orders", nil))

	assert.Equal(t, http.StatusSeeOther, recorder.Code)
	assert.Equal(t, LoginPath, recorder.Header().Get("Location"))
	assert.False(t, *called, "protected handler must not run")
}

func TestRequireAdmin_RedirectsOnMalformedCookie(t *testing.T) {
	gate := admin.NewGate(&mockAuthService{}, &mockAllowlist{}, LoginPath)
	handler, called, _ := protectedProbe(t, gate)

	req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "garbage"})
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusSeeOther, recorder.Code)
	assert.False(t, *called)
}

func TestRequireAdmin_RedirectsNonAdmin(t *testing.T) {
	session := activeSession()
	sessions := &mockAuthService{
		sessionFromTokenFunc: func(ctx context.Context, token uuid.UUID) (*auth.Session, error) {
			return session, nil
		},
	}
	allowlist := &mockAllowlist{
		containsFunc: func(ctx context.Context, userID uuid.UUID) (bool, error) {
			return false, nil
		},
	}
	gate := admin.NewGate(sessions, allowlist, LoginPath)
	handler, called, _ := protectedProbe(t, gate)

	req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: session.Token.String()})
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusSeeOther, recorder.Code)
	assert.False(t, *called)
	// The stray session is terminated on sight.
	require.Len(t, sessions.signedOut, 1)
	assert.Equal(t, session.Token, sessions.signedOut[0])
}

func TestRequireAdmin_AllowsAdmin(t *testing.T) {
	session := activeSession()
	sessions := &mockAuthService{
		sessionFromTokenFunc: func(ctx context.Context, token uuid.UUID) (*auth.Session, error) {
			return session, nil
		},
	}
	allowlist := &mockAllowlist{
		containsFunc: func(ctx context.Context, userID uuid.UUID) (bool, error) {
			return true, nil
		},
	}
	gate := admin.NewGate(sessions, allowlist, LoginPath)
	handler, called, seen := protectedProbe(t, gate)

	req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: session.Token.String()})
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.True(t, *called)
	require.NotNil(t, *seen, "session must be placed in the request context")
	assert.Equal(t, session.Token, (*seen).Token)
}

package admin

import (
	"context"
	"errors"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mynature/storefront/internal/auth"
)

// State is the gate's position in the check sequence. Protected content is
// reachable only from StateAuthorized.
type State int

const (
	StateLoading State = iota
	StateUnauthenticated
	StateUnauthorized
	StateAuthorized
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "Loading"
	case StateUnauthenticated:
		return "Unauthenticated"
	case StateUnauthorized:
		return "Unauthorized"
	case StateAuthorized:
		return "Authorized"
	}
	return "Unknown"
}

// Decision is the outcome of a gate check. Redirect is set for every
// non-authorized outcome.
type Decision struct {
	State    State
	Session  *auth.Session
	Redirect string
}

func (d Decision) Allowed() bool {
	return d.State == StateAuthorized
}

// SessionSource is the slice of the auth service the gate needs.
type SessionSource interface {
	SessionFromToken(ctx context.Context, token uuid.UUID) (*auth.Session, error)
	SignOut(ctx context.Context, token uuid.UUID) error
}

// Gate performs the two admin checks: an authenticated identity exists, and
// that identity is on the allow-list. Any error during either lookup is
// treated as not authorized; there is no automatic retry.
type Gate struct {
	sessions  SessionSource
	allowlist Allowlist
	loginPath string

	mu    sync.Mutex
	state State
}

func NewGate(sessions SessionSource, allowlist Allowlist, loginPath string) *Gate {
	return &Gate{
		sessions:  sessions,
		allowlist: allowlist,
		loginPath: loginPath,
		state:     StateLoading,
	}
}

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Gate) setState(s State) {
	g.mu.Lock()
	g.state = s
	g.mu.Unlock()
}

// Resolve runs the full check for a presented token. A token that resolves
// to a session outside the allow-list is proactively terminated.
func (g *Gate) Resolve(ctx context.Context, token uuid.UUID) Decision {
	if token == uuid.Nil {
		g.setState(StateUnauthenticated)
		return Decision{State: StateUnauthenticated, Redirect: g.loginPath}
	}

	session, err := g.sessions.SessionFromToken(ctx, token)
	if err != nil {
		if !errors.Is(err, auth.ErrSessionNotFound) {
			log.Error().Err(err).Msg("gate: session lookup failed, treating as unauthenticated")
		}
		g.setState(StateUnauthenticated)
		return Decision{State: StateUnauthenticated, Redirect: g.loginPath}
	}

	return g.authorize(ctx, session, true)
}

// Apply reacts to an asynchronous session lifecycle event. An emptied
// session redirects immediately; a fresh session repeats the allow-list
// check before the gate reports Authorized again.
func (g *Gate) Apply(ctx context.Context, event auth.Event) Decision {
	if event.Session == nil || event.Kind == auth.EventSignedOut {
		g.setState(StateUnauthenticated)
		return Decision{State: StateUnauthenticated, Redirect: g.loginPath}
	}
	return g.authorize(ctx, event.Session, false)
}

// Watch consumes session lifecycle events until the context is done.
func (g *Gate) Watch(ctx context.Context, events <-chan auth.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			decision := g.Apply(ctx, event)
			log.Debug().Str("event", string(event.Kind)).Stringer("state", decision.State).
				Msg("gate: applied session event")
		}
	}
}

func (g *Gate) authorize(ctx context.Context, session *auth.Session, terminate bool) Decision {
	allowed, err := g.allowlist.Contains(ctx, session.UserID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", session.UserID).
			Msg("gate: allow-list lookup failed, treating as unauthorized")
		g.setState(StateUnauthorized)
		return Decision{State: StateUnauthorized, Redirect: g.loginPath}
	}

	if !allowed {
		log.Warn().Stringer("user_id", session.UserID).Msg("gate: identity not on admin allow-list")
		if terminate {
			if err := g.sessions.SignOut(ctx, session.Token); err != nil {
				log.Error().Err(err).Msg("gate: failed to terminate non-admin session")
			}
		}
		g.setState(StateUnauthorized)
		return Decision{State: StateUnauthorized, Redirect: g.loginPath}
	}

	g.setState(StateAuthorized)
	return Decision{State: StateAuthorized, Session: session}
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

type Service interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, token uuid.UUID) error
	SessionFromToken(ctx context.Context, token uuid.UUID) (*Session, error)
	Subscribe() <-chan Event
}

type service struct {
	repo Repository

	mu          sync.Mutex
	subscribers []chan Event
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		log.Error().Err(err).Msg("service: failed to look up user for sign-in")
		return nil, fmt.Errorf("service: failed to sign in: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Warn().Str("email", email).Msg("service: sign-in with wrong password")
		return nil, ErrInvalidCredentials
	}

	session, err := s.repo.CreateSession(ctx, user.ID, time.Now().UTC().Add(SessionTTL))
	if err != nil {
		log.Error().Err(err).Msg("service: failed to create session")
		return nil, fmt.Errorf("service: failed to create session: %w", err)
	}

	log.Info().Stringer("user_id", user.ID).Msg("service: user signed in")
	s.publish(Event{Kind: EventSignedIn, Session: session})

	return session, nil
}

func (s *service) SignOut(ctx context.Context, token uuid.UUID) error {
	if err := s.repo.DeleteSession(ctx, token); err != nil {
		log.Error().Err(err).Msg("service: failed to delete session")
		return fmt.Errorf("service: failed to sign out: %w", err)
	}

	log.Info().Msg("service: session terminated")
	s.publish(Event{Kind: EventSignedOut, Session: nil})
	return nil
}

// SessionFromToken returns ErrSessionNotFound for missing and expired
// sessions alike; an expired session is removed on sight.
func (s *service) SessionFromToken(ctx context.Context, token uuid.UUID) (*Session, error) {
	session, err := s.repo.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		log.Error().Err(err).Msg("service: failed to load session")
		return nil, fmt.Errorf("service: failed to load session: %w", err)
	}

	if session.Expired(time.Now().UTC()) {
		if err := s.repo.DeleteSession(ctx, token); err != nil {
			log.Warn().Err(err).Msg("service: failed to delete expired session")
		}
		s.publish(Event{Kind: EventSignedOut, Session: nil})
		return nil, ErrSessionNotFound
	}

	return session, nil
}

// Subscribe returns a channel of session lifecycle events. Slow consumers
// have events dropped rather than blocking the auth path.
func (s *service) Subscribe() <-chan Event {
	ch := make(chan Event, 16)
	s.mu.Lock()
	s.subscribers = append(s.subscribers, ch)
	s.mu.Unlock()
	return ch
}

func (s *service) publish(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// Package flows holds the client's screens as plain Go objects: the session
// owner, the auth forms, the task screens and the navigation shell. Commands
// drive them; they never print.
package flows

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/minitask/client/internal/adapters/sessionstore"
	"github.com/minitask/client/internal/domain/entities"
	"github.com/minitask/client/internal/infrastructure/logger"
	"github.com/minitask/client/internal/ports"
)

// SessionManager is the single owner of the stored session. Flows and the
// API client get it passed in; nothing else touches the store.
type SessionManager struct {
	store  ports.SessionStore
	logger *logger.Logger
	now    func() time.Time

	mu      sync.Mutex
	current *entities.Session
}

// SessionOption customises a SessionManager.
type SessionOption func(*SessionManager)

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) SessionOption {
	return func(m *SessionManager) {
		m.now = now
	}
}

// NewSessionManager creates a session owner over store.
func NewSessionManager(store ports.SessionStore, log *logger.Logger, opts ...SessionOption) *SessionManager {
	if log == nil {
		log = logger.NewNop()
	}
	m := &SessionManager{
		store:  store,
		logger: log.WithComponent("session"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Restore runs load-check-evict: it loads the stored session, clears it when
// its token has expired and reports entities.ErrSessionExpired, and reports
// entities.ErrSessionNotFound when nothing usable is stored.
func (m *SessionManager) Restore(ctx context.Context) (*entities.Session, error) {
	session, err := m.load(ctx)
	if err != nil {
		return nil, err
	}

	if sessionstore.IsExpired(session, m.now()) {
		if err := m.store.Clear(ctx); err != nil {
			return nil, fmt.Errorf("evict expired session: %w", err)
		}
		m.set(nil)
		m.logger.Infow("Evicted expired session", "user_id", session.User.ID)
		return nil, entities.ErrSessionExpired
	}

	m.set(session)
	return session, nil
}

// Begin stores a freshly issued session, replacing any prior one.
func (m *SessionManager) Begin(ctx context.Context, session *entities.Session) error {
	if err := m.store.Save(ctx, session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	m.set(session)
	return nil
}

// End removes the session. Ending when none exists is not an error.
func (m *SessionManager) End(ctx context.Context) error {
	if err := m.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	m.set(nil)
	return nil
}

// Current returns the session restored or begun in this process.
func (m *SessionManager) Current() (*entities.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current, m.current != nil
}

// Token implements ports.TokenSource. It falls back to the store when nothing
// was restored yet and does not check expiry; that only happens at boot.
func (m *SessionManager) Token(ctx context.Context) (string, bool) {
	if session, ok := m.Current(); ok {
		return session.Token, true
	}
	session, err := m.load(ctx)
	if err != nil {
		return "", false
	}
	m.set(session)
	return session.Token, true
}

func (m *SessionManager) load(ctx context.Context) (*entities.Session, error) {
	session, err := m.store.Load(ctx)
	var parseErr *entities.ParseError
	switch {
	case err == nil:
		return session, nil
	case errors.As(err, &parseErr):
		m.logger.WithError(err).Warnw("Stored session is malformed, treating as absent")
		return nil, entities.ErrSessionNotFound
	default:
		return nil, err
	}
}

func (m *SessionManager) set(session *entities.Session) {
	m.mu.Lock()
	m.current = session
	m.mu.Unlock()
}

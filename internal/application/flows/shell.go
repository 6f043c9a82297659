package flows

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/minitask/client/internal/domain/entities"
	"github.com/minitask/client/internal/infrastructure/logger"
)

// Shell is the navigation stack. It decides the initial screen and refuses
// to enter session-only screens without a session.
type Shell struct {
	sessions *SessionManager
	logger   *logger.Logger

	mu    sync.Mutex
	stack []Screen
}

// NewShell creates a shell with an empty stack.
func NewShell(sessions *SessionManager, log *logger.Logger) *Shell {
	if log == nil {
		log = logger.NewNop()
	}
	return &Shell{
		sessions: sessions,
		logger:   log.WithComponent("shell"),
	}
}

// Boot restores the stored session and returns Home when it is usable and
// Login otherwise. An expired session is evicted and reported alongside
// Login; an absent or malformed one is not an error.
func (s *Shell) Boot(ctx context.Context) (Screen, error) {
	_, err := s.sessions.Restore(ctx)
	switch {
	case err == nil:
		s.reset(ScreenHome)
		return ScreenHome, nil
	case errors.Is(err, entities.ErrSessionNotFound):
		s.reset(ScreenLogin)
		return ScreenLogin, nil
	case errors.Is(err, entities.ErrSessionExpired):
		s.reset(ScreenLogin)
		return ScreenLogin, err
	default:
		s.reset(ScreenLogin)
		return ScreenLogin, fmt.Errorf("restore session: %w", err)
	}
}

// Navigate pushes a screen. Session-only screens redirect to Login when no
// session is present.
func (s *Shell) Navigate(ctx context.Context, to Screen) Screen {
	if to.RequiresSession() {
		if _, ok := s.sessions.Token(ctx); !ok {
			s.reset(ScreenLogin)
			return ScreenLogin
		}
	}
	// Home and Login are roots; entering them drops the history.
	if to == ScreenHome || to == ScreenLogin {
		s.reset(to)
		return to
	}

	s.mu.Lock()
	s.stack = append(s.stack, to)
	s.mu.Unlock()
	return to
}

// Back pops the current screen and returns the one below it.
func (s *Shell) Back() Screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.stack) > 1 {
		s.stack = s.stack[:len(s.stack)-1]
	}
	if len(s.stack) == 0 {
		return ScreenLogin
	}
	return s.stack[len(s.stack)-1]
}

// Current returns the top of the stack.
func (s *Shell) Current() Screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.stack) == 0 {
		return ScreenLogin
	}
	return s.stack[len(s.stack)-1]
}

// HomeView is the dashboard content.
type HomeView struct {
	Greeting string
	Actions  []Screen
}

// Home builds the dashboard for the current session.
func (s *Shell) Home() HomeView {
	session, _ := s.sessions.Current()
	var user *entities.User
	if session != nil {
		user = &session.User
	}
	return HomeView{
		Greeting: "Welcome, " + user.DisplayName(),
		Actions:  []Screen{ScreenCreateTask, ScreenTaskList},
	}
}

func (s *Shell) reset(root Screen) {
	s.mu.Lock()
	s.stack = []Screen{root}
	s.mu.Unlock()
}

package flows

import (
	"errors"
	"sync/atomic"
)

// ErrSubmissionPending is returned when an action starts while the screen's
// previous request is still in flight.
var ErrSubmissionPending = errors.New("a request is already in progress")

// Screen names one entry of the navigation stack.
type Screen string

const (
	ScreenLogin      Screen = "Login"
	ScreenSignup     Screen = "Signup"
	ScreenHome       Screen = "Home"
	ScreenCreateTask Screen = "CreateTask"
	ScreenTaskList   Screen = "TaskList"
	ScreenEditTask   Screen = "EditTask"
)

// RequiresSession reports whether the screen needs a stored session.
func (s Screen) RequiresSession() bool {
	switch s {
	case ScreenLogin, ScreenSignup:
		return false
	default:
		return true
	}
}

// inflight allows one request at a time per screen.
type inflight struct {
	busy atomic.Bool
}

func (g *inflight) begin() (done func(), err error) {
	if !g.busy.CompareAndSwap(false, true) {
		return nil, ErrSubmissionPending
	}
	return func() { g.busy.Store(false) }, nil
}

// Pending reports whether a request is in flight.
func (g *inflight) Pending() bool {
	return g.busy.Load()
}

// lifecycle tracks whether a screen is still shown. Requests are never
// aborted; results that arrive after Dispose are dropped.
type lifecycle struct {
	disposed atomic.Bool
}

// Dispose marks the screen as navigated away from.
func (l *lifecycle) Dispose() {
	l.disposed.Store(true)
}

// Active reports whether the screen may still update its state.
func (l *lifecycle) Active() bool {
	return !l.disposed.Load()
}

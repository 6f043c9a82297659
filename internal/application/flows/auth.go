package flows

import (
	"context"
	"fmt"

	"github.com/minitask/client/internal/domain/entities"
	"github.com/minitask/client/internal/infrastructure/logger"
	"github.com/minitask/client/internal/ports"
)

// AuthFlow backs the Login and Signup screens.
type AuthFlow struct {
	api      ports.AuthAPI
	sessions *SessionManager
	logger   *logger.Logger

	login  inflight
	signup inflight
}

// NewAuthFlow creates the auth flow.
func NewAuthFlow(api ports.AuthAPI, sessions *SessionManager, log *logger.Logger) *AuthFlow {
	if log == nil {
		log = logger.NewNop()
	}
	return &AuthFlow{
		api:      api,
		sessions: sessions,
		logger:   log.WithComponent("auth"),
	}
}

// Login validates the form, calls /login and stores the returned session.
// On success the next screen is Home; on failure the user stays on Login
// and the stored session is untouched.
func (f *AuthFlow) Login(ctx context.Context, email, password string) (Screen, error) {
	creds := ports.Credentials{Email: email, Password: password}
	if err := validateCredentials(creds); err != nil {
		return ScreenLogin, err
	}

	done, err := f.login.begin()
	if err != nil {
		return ScreenLogin, err
	}
	defer done()

	resp, err := f.api.Login(ctx, creds)
	if err != nil {
		f.logger.WithError(err).Infow("Login failed", "email", creds.Email)
		return ScreenLogin, fmt.Errorf("login: %w", err)
	}
	if resp.Token == "" || resp.User == nil {
		f.logger.LogSecurityEvent("login_rejected", "", "", map[string]interface{}{"email": creds.Email})
		return ScreenLogin, entities.ErrAuthenticationFailed
	}

	session := &entities.Session{Token: resp.Token, User: *resp.User}
	if err := f.sessions.Begin(ctx, session); err != nil {
		return ScreenLogin, err
	}

	f.logger.LogUserAction(session.User.ID.String(), "login", nil)
	return ScreenHome, nil
}

// Signup validates the form and registers the account. It never stores a
// session; the next screen on success is Login.
func (f *AuthFlow) Signup(ctx context.Context, email, password, confirm string) (Screen, string, error) {
	form := ports.SignupForm{Email: email, Password: password, Confirm: confirm}
	if err := validateCredentials(form); err != nil {
		return ScreenSignup, "", err
	}

	done, err := f.signup.begin()
	if err != nil {
		return ScreenSignup, "", err
	}
	defer done()

	resp, err := f.api.Signup(ctx, form.Credentials())
	if err != nil {
		f.logger.WithError(err).Infow("Signup failed", "email", form.Email)
		return ScreenSignup, "", fmt.Errorf("signup: %w", err)
	}

	message := resp.Message
	if message == "" {
		message = "Signup successful. Please log in."
	}
	return ScreenLogin, message, nil
}

// Logout ends the session. The next screen is Login regardless of where the
// user was.
func (f *AuthFlow) Logout(ctx context.Context) (Screen, error) {
	if err := f.sessions.End(ctx); err != nil {
		return ScreenHome, err
	}
	return ScreenLogin, nil
}

package flows

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/minitask/client/internal/domain/entities"
)

func TestBoot(t *testing.T) {
	tests := []struct {
		name    string
		stored  *entities.Session
		want    Screen
		wantErr error
	}{
		{name: "no session", want: ScreenLogin},
		{name: "expired", stored: &entities.Session{Token: signedToken(t, time.Now().Add(-time.Hour))}, want: ScreenLogin, wantErr: entities.ErrSessionExpired},
		{name: "valid", stored: &entities.Session{Token: signedToken(t, time.Now().Add(time.Hour))}, want: ScreenHome},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shell := NewShell(NewSessionManager(&memStore{session: tt.stored}, nil), nil)

			got, err := shell.Boot(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Boot() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want || shell.Current() != tt.want {
				t.Fatalf("Boot() = %s (current %s), want %s", got, shell.Current(), tt.want)
			}
		})
	}
}

func TestNavigateRequiresSession(t *testing.T) {
	ctx := context.Background()
	shell := NewShell(NewSessionManager(&memStore{}, nil), nil)
	if _, err := shell.Boot(ctx); err != nil {
		t.Fatalf("Boot() failed: %v", err)
	}

	for _, to := range []Screen{ScreenHome, ScreenCreateTask, ScreenTaskList, ScreenEditTask} {
		if got := shell.Navigate(ctx, to); got != ScreenLogin {
			t.Fatalf("Navigate(%s) = %s, want %s", to, got, ScreenLogin)
		}
	}
	if got := shell.Navigate(ctx, ScreenSignup); got != ScreenSignup {
		t.Fatalf("Navigate(Signup) = %s", got)
	}
	if got := shell.Back(); got != ScreenLogin {
		t.Fatalf("Back() = %s, want %s", got, ScreenLogin)
	}
}

func TestNavigateStack(t *testing.T) {
	ctx := context.Background()
	shell := NewShell(loggedInStore(t), nil)
	if got, _ := shell.Boot(ctx); got != ScreenHome {
		t.Fatalf("Boot() = %s, want Home", got)
	}

	shell.Navigate(ctx, ScreenTaskList)
	shell.Navigate(ctx, ScreenEditTask)
	if got := shell.Back(); got != ScreenTaskList {
		t.Fatalf("Back() = %s, want %s", got, ScreenTaskList)
	}
	if got := shell.Navigate(ctx, ScreenHome); got != ScreenHome {
		t.Fatalf("Navigate(Home) = %s", got)
	}
	if got := shell.Back(); got != ScreenHome {
		t.Fatalf("Back() from root = %s, want %s", got, ScreenHome)
	}
}

func TestHomeGreeting(t *testing.T) {
	ctx := context.Background()

	shell := NewShell(loggedInStore(t), nil)
	if _, err := shell.Boot(ctx); err != nil {
		t.Fatalf("Boot() failed: %v", err)
	}
	if got := shell.Home().Greeting; got != "Welcome, Ana" {
		t.Fatalf("Greeting = %q", got)
	}

	anon := NewShell(NewSessionManager(&memStore{}, nil), nil)
	if got := anon.Home().Greeting; got != "Welcome, User" {
		t.Fatalf("Greeting without name = %q", got)
	}
}

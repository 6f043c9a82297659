package flows

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/minitask/client/internal/adapters/apiclient"
	"github.com/minitask/client/internal/adapters/repository"
	"github.com/minitask/client/internal/adapters/sessionstore"
	"github.com/minitask/client/internal/domain/entities"
	"github.com/minitask/client/internal/infrastructure/config"
	"github.com/minitask/client/internal/infrastructure/server"
	"github.com/minitask/client/internal/ports"
)

// harness wires the flows to a real reference server and an on-disk store.
type harness struct {
	api      *apiclient.Client
	sessions *SessionManager
	store    *sessionstore.BoltStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	cfg := &config.Config{
		App: config.AppConfig{Environment: "development"},
		JWT: config.JWTConfig{Secret: "test-secret", ExpiresIn: time.Hour, Issuer: "test"},
		Server: config.ServerConfig{
			UploadDir: t.TempDir(),
		},
		Security: config.SecurityConfig{CORSAllowedOrigins: "*"},
	}
	srv, err := server.New(cfg, repository.NewMemory(), nil, nil)
	if err != nil {
		t.Fatalf("server.New() failed: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	store, err := sessionstore.Open(filepath.Join(t.TempDir(), "session.db"), "", "")
	if err != nil {
		t.Fatalf("sessionstore.Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	sessions := NewSessionManager(store, nil)
	return &harness{
		api:      apiclient.New(ts.URL, 5*time.Second, sessions, nil),
		sessions: sessions,
		store:    store,
	}
}

// loggedIn signs up and logs in a fresh account.
func (h *harness) loggedIn(t *testing.T) *AuthFlow {
	t.Helper()
	ctx := context.Background()
	auth := NewAuthFlow(h.api, h.sessions, nil)
	if _, _, err := auth.Signup(ctx, "ana@example.com", "secret", "secret"); err != nil {
		t.Fatalf("Signup() failed: %v", err)
	}
	if _, err := auth.Login(ctx, "ana@example.com", "secret"); err != nil {
		t.Fatalf("Login() failed: %v", err)
	}
	return auth
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
		Subject:   "u1",
	}).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

// memStore is a SessionStore whose Load result can be forced.
type memStore struct {
	mu      sync.Mutex
	session *entities.Session
	loadErr error
	cleared int
}

func (s *memStore) Save(_ context.Context, session *entities.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *session
	s.session = &cp
	s.loadErr = nil
	return nil
}

func (s *memStore) Load(context.Context) (*entities.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if s.session == nil {
		return nil, entities.ErrSessionNotFound
	}
	cp := *s.session
	return &cp, nil
}

func (s *memStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	s.loadErr = nil
	s.cleared++
	return nil
}

// fakeAPI implements ports.API with overridable calls and call counts.
type fakeAPI struct {
	mu    sync.Mutex
	calls map[string]int

	login     func(context.Context, ports.Credentials) (*ports.LoginResponse, error)
	signup    func(context.Context, ports.Credentials) (*ports.MessageResponse, error)
	states    func(context.Context) ([]entities.LocationNode, error)
	districts func(context.Context, entities.ID) ([]entities.LocationNode, error)
	cities    func(context.Context, entities.ID) ([]entities.LocationNode, error)
	upload    func(context.Context, ports.Image) (string, error)
	create    func(context.Context, ports.TaskInput) (*entities.Task, error)
	list      func(context.Context) ([]entities.Task, error)
	update    func(context.Context, entities.ID, ports.TaskInput) (*entities.Task, error)
	remove    func(context.Context, entities.ID) error
}

func (f *fakeAPI) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[name]++
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) Login(ctx context.Context, c ports.Credentials) (*ports.LoginResponse, error) {
	f.record("login")
	return f.login(ctx, c)
}

func (f *fakeAPI) Signup(ctx context.Context, c ports.Credentials) (*ports.MessageResponse, error) {
	f.record("signup")
	return f.signup(ctx, c)
}

func (f *fakeAPI) States(ctx context.Context) ([]entities.LocationNode, error) {
	f.record("states")
	if f.states == nil {
		return seedNodes(entities.LevelState, ""), nil
	}
	return f.states(ctx)
}

func (f *fakeAPI) Districts(ctx context.Context, id entities.ID) ([]entities.LocationNode, error) {
	f.record("districts")
	if f.districts == nil {
		return seedNodes(entities.LevelDistrict, id), nil
	}
	return f.districts(ctx, id)
}

func (f *fakeAPI) Cities(ctx context.Context, id entities.ID) ([]entities.LocationNode, error) {
	f.record("cities")
	if f.cities == nil {
		return seedNodes(entities.LevelCity, id), nil
	}
	return f.cities(ctx, id)
}

func (f *fakeAPI) UploadImage(ctx context.Context, img ports.Image) (string, error) {
	f.record("upload")
	return f.upload(ctx, img)
}

func (f *fakeAPI) CreateTask(ctx context.Context, in ports.TaskInput) (*entities.Task, error) {
	f.record("create")
	return f.create(ctx, in)
}

func (f *fakeAPI) ListTasks(ctx context.Context) ([]entities.Task, error) {
	f.record("list")
	return f.list(ctx)
}

func (f *fakeAPI) UpdateTask(ctx context.Context, id entities.ID, in ports.TaskInput) (*entities.Task, error) {
	f.record("update")
	return f.update(ctx, id, in)
}

func (f *fakeAPI) DeleteTask(ctx context.Context, id entities.ID) error {
	f.record("delete")
	return f.remove(ctx, id)
}

func seedNodes(level entities.LocationLevel, parent entities.ID) []entities.LocationNode {
	var out []entities.LocationNode
	for _, loc := range repository.SeedLocations() {
		if loc.Level == level && loc.ParentID == parent.String() {
			out = append(out, loc.Node())
		}
	}
	return out
}

// loggedInStore returns a session manager holding a valid session.
func loggedInStore(t *testing.T) *SessionManager {
	t.Helper()
	store := &memStore{}
	m := NewSessionManager(store, nil)
	session := &entities.Session{Token: signedToken(t, time.Now().Add(time.Hour)), User: entities.User{ID: "u1", Name: "Ana"}}
	if err := m.Begin(context.Background(), session); err != nil {
		t.Fatalf("Begin() failed: %v", err)
	}
	return m
}

package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	bolt "go.etcd.io/bbolt"

	"github.com/minitask/client/internal/domain/entities"
)

func openTestStore(t *testing.T) *BoltStore {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "session.db"), "", "")
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	want := &entities.Session{
		Token: "header.payload.signature",
		User:  entities.User{ID: "1", Name: "A", Email: "ab@c.de"},
	}
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Load() = %+v, want %+v", got, want)
	}
}

func TestSaveOverwrites(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	if err := store.Save(ctx, &entities.Session{Token: "first", User: entities.User{ID: "1"}}); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if err := store.Save(ctx, &entities.Session{Token: "second", User: entities.User{ID: "2"}}); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if got.Token != "second" || got.User.ID != "2" {
		t.Fatalf("Load() = %+v, want the second session", got)
	}
}

func TestLoadAbsent(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Load(context.Background())
	if !errors.Is(err, entities.ErrSessionNotFound) {
		t.Fatalf("Load() error = %v, want ErrSessionNotFound", err)
	}
}

func TestClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	// Clearing an empty store is fine.
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear() on empty store failed: %v", err)
	}

	if err := store.Save(ctx, &entities.Session{Token: "t"}); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := store.Clear(ctx); err != nil {
			t.Fatalf("Clear() #%d failed: %v", i+1, err)
		}
		if _, err := store.Load(ctx); !errors.Is(err, entities.ErrSessionNotFound) {
			t.Fatalf("Load() after Clear() error = %v, want ErrSessionNotFound", err)
		}
	}
}

func TestLoadMalformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", "{token:"},
		{"wrong shape", `["token"]`},
		{"missing token", `{"user":{"id":1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := openTestStore(t)
			err := store.db.Update(func(tx *bolt.Tx) error {
				return tx.Bucket(store.bucket).Put(store.key, []byte(tt.payload))
			})
			if err != nil {
				t.Fatalf("seed failed: %v", err)
			}

			_, err = store.Load(context.Background())
			var parseErr *entities.ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("Load() error = %v, want *entities.ParseError", err)
			}
			if parseErr.Key != "userData" {
				t.Fatalf("ParseError.Key = %q, want userData", parseErr.Key)
			}
		})
	}
}

func TestLoadAcceptsMongoStyleUser(t *testing.T) {
	store := openTestStore(t)
	err := store.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(store.bucket).Put(store.key, []byte(`{"token":"t","user":{"_id":"abc","name":"A"}}`))
	})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if got.User.ID != "abc" {
		t.Fatalf("User.ID = %q, want abc", got.User.ID)
	}
}

func TestClosedStore(t *testing.T) {
	var store *BoltStore
	if _, err := store.Load(context.Background()); !errors.Is(err, bolt.ErrDatabaseNotOpen) {
		t.Fatalf("Load() on nil store error = %v, want ErrDatabaseNotOpen", err)
	}
}

func TestSaveKeepsWholeProfile(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	var user entities.User
	if err := json.Unmarshal([]byte(`{"id":1,"name":"A","role":"admin","phone":"555-0100"}`), &user); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if err := store.Save(ctx, &entities.Session{Token: "t", User: user}); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if got.User.ID != "1" || got.User.Name != "A" {
		t.Fatalf("User = %+v", got.User)
	}
	if string(got.User.Extra["role"]) != `"admin"` || string(got.User.Extra["phone"]) != `"555-0100"` {
		t.Fatalf("extra profile fields lost: %v", got.User.Extra)
	}
	if _, ok := got.User.Extra["id"]; ok {
		t.Fatalf("known field duplicated into Extra")
	}
}

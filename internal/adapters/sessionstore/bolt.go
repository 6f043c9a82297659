package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/minitask/client/internal/domain/entities"
)

// BoltStore keeps the session record in a single key of a bbolt bucket.
type BoltStore struct {
	db     *bolt.DB
	bucket []byte
	key    []byte
}

// Open initializes the BoltDB file and ensures the bucket exists.
func Open(path, bucket, key string) (*BoltStore, error) {
	if bucket == "" {
		bucket = "minitask"
	}
	if key == "" {
		key = "userData"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("create session bucket: %w", err)
	}

	return &BoltStore{
		db:     db,
		bucket: []byte(bucket),
		key:    []byte(key),
	}, nil
}

// Save serializes the session and overwrites any prior record.
func (s *BoltStore) Save(ctx context.Context, session *entities.Session) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if session == nil {
		return errors.New("save session: nil session")
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put(s.key, payload)
	}); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Load returns the stored session.
func (s *BoltStore) Load(ctx context.Context) (*entities.Session, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	var payload []byte
	if err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(s.bucket).Get(s.key); v != nil {
			payload = append([]byte(nil), v...)
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if payload == nil {
		return nil, entities.ErrSessionNotFound
	}

	var session entities.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, &entities.ParseError{Key: string(s.key), Err: err}
	}
	if session.Token == "" {
		return nil, &entities.ParseError{Key: string(s.key), Err: errors.New("record has no token")}
	}
	return &session, nil
}

// Clear removes the record. Clearing an absent record is not an error.
func (s *BoltStore) Clear(ctx context.Context) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete(s.key)
	}); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Close closes the Bolt database.
func (s *BoltStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *BoltStore) ready(ctx context.Context) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return ctx.Err()
}

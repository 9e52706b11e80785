package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"helpdesk/internal/types"
)

var (
	bucketClientState = []byte("client_state")
	keyClientState    = []byte("state")
)

// BboltStateStore is the default durable backend.
type BboltStateStore struct {
	db *bolt.DB
}

func NewBboltStateStore(path string) (*BboltStateStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("state db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketClientState)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BboltStateStore{db: db}, nil
}

func (s *BboltStateStore) Load(ctx context.Context) (*types.AppState, error) {
	state := &types.AppState{}
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketClientState)
		if b == nil {
			return nil
		}
		raw := b.Get(keyClientState)
		if len(raw) == 0 {
			return nil
		}
		return json.Unmarshal(raw, state)
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

func (s *BboltStateStore) Save(ctx context.Context, state *types.AppState) error {
	if state == nil {
		return errors.New("state is required")
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketClientState)
		if err != nil {
			return err
		}
		return b.Put(keyClientState, raw)
	})
}

func (s *BboltStateStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

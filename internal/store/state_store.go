package store

import (
	"context"
	"errors"
	"os"
	"sync"

	"helpdesk/internal/types"
)

// StateStore persists the client state that must survive reloads: the active
// session pointer and the guest identity.
type StateStore interface {
	Load(ctx context.Context) (*types.AppState, error)
	Save(ctx context.Context, state *types.AppState) error
	Close() error
}

// FileStateStore keeps the state in a single JSON file written atomically.
type FileStateStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStateStore(path string) *FileStateStore {
	return &FileStateStore{path: path}
}

func (s *FileStateStore) Load(ctx context.Context) (*types.AppState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := &types.AppState{}
	err := readJSON(s.path, state)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return state, nil
		}
		return nil, err
	}
	return state, nil
}

func (s *FileStateStore) Save(ctx context.Context, state *types.AppState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state == nil {
		return errors.New("state is required")
	}
	return writeJSONAtomic(s.path, state)
}

func (s *FileStateStore) Close() error {
	return nil
}

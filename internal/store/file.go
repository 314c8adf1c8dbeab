package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/rxtech-lab/argo-agents/pkg/errors"
)

// FileStore persists the running flag as a small JSON file. A missing file
// reads as "not running" so a fresh deployment starts cleanly.
type FileStore struct {
	mu   sync.Mutex
	path string
}

type runState struct {
	Running bool `json:"running"`
}

// NewFileStore creates a store backed by the given file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// GetRunning implements RunStateStore.
func (s *FileStore) GetRunning(_ context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, errors.Wrap(errors.ErrCodeStoreReadFailed, "failed to read run state file", err)
	}

	var state runState
	if err := json.Unmarshal(data, &state); err != nil {
		return false, errors.Wrap(errors.ErrCodeStoreReadFailed, "failed to parse run state file", err)
	}

	return state.Running, nil
}

// SetRunning implements RunStateStore. The write goes through a temporary
// file and rename so a crash mid-write cannot leave a corrupt state file.
func (s *FileStore) SetRunning(_ context.Context, running bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(runState{Running: running})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreWriteFailed, "failed to encode run state", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeStoreWriteFailed, "failed to create run state directory", err)
	}

	tmp, err := os.CreateTemp(dir, ".runstate-*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreWriteFailed, "failed to create temp run state file", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())

		return errors.Wrap(errors.ErrCodeStoreWriteFailed, "failed to write run state", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())

		return errors.Wrap(errors.ErrCodeStoreWriteFailed, "failed to close run state file", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())

		return errors.Wrap(errors.ErrCodeStoreWriteFailed, "failed to replace run state file", err)
	}

	return nil
}

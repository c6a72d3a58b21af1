package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/zhouzirui/hypercar-hub/backend/internal/model/car"
)

// ErrMalformedStorage reports a snapshot that exists but does not decode as a
// car collection.
var ErrMalformedStorage = errors.New("malformed car storage")

// FileStore keeps the collection as a pretty-printed JSON array in one file.
type FileStore struct {
	path string
}

// NewFileStore returns a FileStore backed by path. The file is created on the
// first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path reports the snapshot location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the full snapshot. A missing file is an empty collection.
func (s *FileStore) Load(_ context.Context) ([]car.Car, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []car.Car{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read car snapshot %s: %w", s.path, err)
	}

	var cars []car.Car
	if err := json.Unmarshal(data, &cars); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedStorage, s.path, err)
	}
	if cars == nil {
		return nil, fmt.Errorf("%w: %s: snapshot is null, want an array", ErrMalformedStorage, s.path)
	}
	return cars, nil
}

// Save replaces the snapshot with cars. The new content is written to a
// sibling temp file and renamed over the target so readers see either the
// old or the new snapshot, never a torn one.
func (s *FileStore) Save(_ context.Context, cars []car.Car) error {
	if cars == nil {
		cars = []car.Car{}
	}
	data, err := json.MarshalIndent(cars, "", "  ")
	if err != nil {
		return fmt.Errorf("encode car snapshot: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace car snapshot %s: %w", s.path, err)
	}
	return nil
}

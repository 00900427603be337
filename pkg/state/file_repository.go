package state

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// FileRepository implements Repository using a single JSON file.
type FileRepository struct {
	mu   sync.Mutex
	path string
}

// NewFileRepository creates a repository writing to path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

// Load reads the status file.
// Returns an empty status and nil error if the file does not exist.
func (r *FileRepository) Load(ctx context.Context) (Status, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Status{}, nil
		}
		return Status{}, err
	}

	var st Status
	if err := json.Unmarshal(data, &st); err != nil {
		return Status{}, err
	}
	return st, nil
}

// Save writes status to a temp file and renames it over the status file.
// Concurrent saves from several listeners are serialized.
func (r *FileRepository) Save(ctx context.Context, st Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, r.path)
}

// Path returns the status file path.
func (r *FileRepository) Path() string {
	return r.path
}

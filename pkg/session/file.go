package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sboosali/notegraph/pkg/errors"
	"github.com/sboosali/notegraph/pkg/identity"
)

const snapshotExt = ".idx"

// FileStore keeps identity-index snapshots as msgpack files in a directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a new snapshot store.
// If baseDir is empty, defaults to $XDG_STATE_HOME/notegraph/index/.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		dir := os.Getenv("XDG_STATE_HOME")
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("get home dir: %w", err)
			}
			dir = filepath.Join(home, ".local", "state")
		}
		baseDir = filepath.Join(dir, "notegraph", "index")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) snapshotPath(id string) string {
	return filepath.Join(s.baseDir, id+snapshotExt)
}

// Get loads the index saved under id. Returns nil, nil if there is none.
func (s *FileStore) Get(ctx context.Context, id string) (*identity.Index, error) {
	if err := errors.ValidateStorageKey(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.snapshotPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read index snapshot: %w", err)
	}

	ix := identity.NewIndex()
	if err := ix.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return ix, nil
}

// Set saves ix under id.
func (s *FileStore) Set(ctx context.Context, id string, ix *identity.Index) error {
	if err := errors.ValidateStorageKey(id); err != nil {
		return err
	}
	data, err := ix.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode index snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.snapshotPath(id)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write index snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace index snapshot: %w", err)
	}
	return nil
}

// Delete removes the snapshot saved under id.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateStorageKey(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.snapshotPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove index snapshot: %w", err)
	}
	return nil
}

// Cleanup removes snapshots not written for maxAge and returns how many
// were removed.
func (s *FileStore) Cleanup(ctx context.Context, maxAge time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return 0, fmt.Errorf("read index dir: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != snapshotExt {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if os.Remove(filepath.Join(s.baseDir, entry.Name())) == nil {
				removed++
			}
		}
	}
	return removed, nil
}

// Path returns the base directory for snapshot files.
func (s *FileStore) Path() string {
	return s.baseDir
}

// =============================================================================
// CLI convenience wrapper
// =============================================================================

const defaultCLISnapshotID = "cli"

// CLIStore wraps FileStore for the single index the CLI keeps.
type CLIStore struct {
	store *FileStore
	id    string
}

// NewCLIStore creates a store for the CLI's index snapshot. An empty dir
// selects the default location.
func NewCLIStore(dir string) (*CLIStore, error) {
	store, err := NewFileStore(dir)
	if err != nil {
		return nil, err
	}
	return &CLIStore{store: store, id: defaultCLISnapshotID}, nil
}

// Load returns the saved index, or a new empty one if none was saved.
func (c *CLIStore) Load(ctx context.Context) (*identity.Index, error) {
	ix, err := c.store.Get(ctx, c.id)
	if err != nil {
		return nil, err
	}
	if ix == nil {
		ix = identity.NewIndex()
	}
	return ix, nil
}

// Save stores ix.
func (c *CLIStore) Save(ctx context.Context, ix *identity.Index) error {
	return c.store.Set(ctx, c.id, ix)
}

// Reset forgets the saved index.
func (c *CLIStore) Reset(ctx context.Context) error {
	return c.store.Delete(ctx, c.id)
}

// Path returns the snapshot file path.
func (c *CLIStore) Path() string {
	return c.store.snapshotPath(c.id)
}

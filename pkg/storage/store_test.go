package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sboosali/notegraph/pkg/errors"
)

type storeFactory func(t *testing.T) (Store, error)

// runTestsForAllStores runs testFn against every backend that needs no
// external service. Redis and Mongo join when NOTEGRAPH_TEST_REDIS or
// NOTEGRAPH_TEST_MONGO point at a server.
func runTestsForAllStores(t *testing.T, testName string, testFn func(t *testing.T, store Store)) {
	factories := map[string]storeFactory{
		"MemoryStore": func(t *testing.T) (Store, error) {
			return NewMemoryStore(), nil
		},
		"FileStore": func(t *testing.T) (Store, error) {
			return NewFileStore(t.TempDir())
		},
		"SQLiteStore": func(t *testing.T) (Store, error) {
			return NewSQLiteStore(":memory:")
		},
	}
	if addr := os.Getenv("NOTEGRAPH_TEST_REDIS"); addr != "" {
		factories["RedisStore"] = func(t *testing.T) (Store, error) {
			return NewRedisStore(context.Background(), RedisConfig{Addr: addr, Prefix: "notegraph-test:" + t.Name() + ":"})
		}
	}
	if uri := os.Getenv("NOTEGRAPH_TEST_MONGO"); uri != "" {
		factories["MongoStore"] = func(t *testing.T) (Store, error) {
			return NewMongoStore(context.Background(), MongoConfig{URI: uri, Database: "notegraph_test"})
		}
	}

	for name, factory := range factories {
		t.Run(name+"/"+testName, func(t *testing.T) {
			store, err := factory(t)
			require.NoError(t, err, "Failed to create store")
			defer store.Close()
			testFn(t, store)
		})
	}
}

func TestStoreMiss(t *testing.T) {
	runTestsForAllStores(t, "Miss", func(t *testing.T, store Store) {
		text, ok, err := store.Get(context.Background(), "never-written")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, text)
	})
}

func TestStoreSetAndGet(t *testing.T) {
	runTestsForAllStores(t, "SetAndGet", func(t *testing.T, store Store) {
		ctx := context.Background()
		notes := "alice knows bob\nbob trusts carol\ncarol likes dave"

		require.NoError(t, store.Set(ctx, NotesKey, notes))

		got, ok, err := store.Get(ctx, NotesKey)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, notes, got)
	})
}

func TestStoreOverwrite(t *testing.T) {
	runTestsForAllStores(t, "Overwrite", func(t *testing.T, store Store) {
		ctx := context.Background()
		require.NoError(t, store.Set(ctx, NotesKey, "first"))
		require.NoError(t, store.Set(ctx, NotesKey, "second"))

		got, ok, err := store.Get(ctx, NotesKey)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "second", got)
	})
}

func TestStoreEmptyTextIsStored(t *testing.T) {
	runTestsForAllStores(t, "EmptyText", func(t *testing.T, store Store) {
		ctx := context.Background()
		require.NoError(t, store.Set(ctx, NotesKey, ""))

		got, ok, err := store.Get(ctx, NotesKey)
		require.NoError(t, err)
		assert.True(t, ok, "an empty buffer is still a stored buffer")
		assert.Empty(t, got)
	})
}

func TestStoreDelete(t *testing.T) {
	runTestsForAllStores(t, "Delete", func(t *testing.T, store Store) {
		ctx := context.Background()
		require.NoError(t, store.Set(ctx, NotesKey, "x"))
		require.NoError(t, store.Delete(ctx, NotesKey))

		_, ok, err := store.Get(ctx, NotesKey)
		require.NoError(t, err)
		assert.False(t, ok)

		// Deleting a missing key is not an error.
		require.NoError(t, store.Delete(ctx, NotesKey))
	})
}

func TestStoreKeysAreIndependent(t *testing.T) {
	runTestsForAllStores(t, "Independent", func(t *testing.T, store Store) {
		ctx := context.Background()
		a, b := SessionKey("a"), SessionKey("b")
		require.NoError(t, store.Set(ctx, a, "alpha"))
		require.NoError(t, store.Set(ctx, b, "beta"))

		got, _, err := store.Get(ctx, a)
		require.NoError(t, err)
		assert.Equal(t, "alpha", got)
		got, _, err = store.Get(ctx, b)
		require.NoError(t, err)
		assert.Equal(t, "beta", got)
	})
}

func TestStoreUnicode(t *testing.T) {
	runTestsForAllStores(t, "Unicode", func(t *testing.T, store Store) {
		ctx := context.Background()
		notes := "ACh → muscarinic receptor\nélan vital 🌱"
		require.NoError(t, store.Set(ctx, NotesKey, notes))

		got, _, err := store.Get(ctx, NotesKey)
		require.NoError(t, err)
		assert.Equal(t, notes, got)
	})
}

func TestStoreRejectsBadKeys(t *testing.T) {
	runTestsForAllStores(t, "BadKeys", func(t *testing.T, store Store) {
		ctx := context.Background()
		for _, key := range []string{"", "../escape", "a/b", "nul\x00"} {
			err := store.Set(ctx, key, "x")
			require.Error(t, err, "key %q", key)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput), "key %q: %v", key, err)

			_, _, err = store.Get(ctx, key)
			assert.Error(t, err, "key %q", key)
		}
	})
}

func TestFileStoreLayout(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set(context.Background(), NotesKey, "alice knows bob"))

	assert.Equal(t, filepath.Join(dir, "notes.note"), store.Path(NotesKey))
	data, err := os.ReadFile(store.Path(NotesKey))
	require.NoError(t, err)
	assert.Equal(t, "alice knows bob", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestSQLiteStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, NotesKey, "kept"))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, ok, err := reopened.Get(ctx, NotesKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "kept", got)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		cfg     Config
		want    any
		wantErr bool
	}{
		{name: "DefaultIsFile", cfg: Config{Path: t.TempDir()}, want: &FileStore{}},
		{name: "Memory", cfg: Config{Backend: BackendMemory}, want: &MemoryStore{}},
		{name: "SQLite", cfg: Config{Backend: BackendSQLite, Path: filepath.Join(t.TempDir(), "n.db")}, want: &SQLiteStore{}},
		{name: "Unknown", cfg: Config{Backend: "floppy"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := Open(ctx, tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig))
				return
			}
			require.NoError(t, err)
			defer store.Close()
			assert.IsType(t, tt.want, store)
		})
	}
}

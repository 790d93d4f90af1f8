package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCacheDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		name string
		xdg  string
		want string
	}{
		{name: "Default", xdg: "", want: filepath.Join(home, ".cache", "notegraph")},
		{name: "XDG", xdg: "/tmp/xdg-cache", want: filepath.Join("/tmp/xdg-cache", "notegraph")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_CACHE_HOME", tt.xdg)
			dir, err := cacheDir()
			if err != nil {
				t.Fatalf("cacheDir() error: %v", err)
			}
			if dir != tt.want {
				t.Errorf("cacheDir() = %q, want %q", dir, tt.want)
			}
		})
	}
}

func TestDrawCacheDir(t *testing.T) {
	if got, want := drawCacheDir("/var/cache/notegraph"), "/var/cache/notegraph/draw"; got != want {
		t.Errorf("drawCacheDir() = %q, want %q", got, want)
	}
}

func TestDrawFillsDefaultCache(t *testing.T) {
	env := newTestEnv(t)
	env.writeConfig(t, "")
	notes := env.writeNotes(t)

	if _, err := env.run(t, "draw", notes, "-q"); err != nil {
		t.Fatalf("draw: %v", err)
	}

	dir := drawCacheDir(filepath.Join(os.Getenv("XDG_CACHE_HOME"), appName))
	files, err := filepath.Glob(filepath.Join(dir, "*", "*.json"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Errorf("draw cache under %s has %d entries, want 1", dir, len(files))
	}

	if _, err := env.run(t, "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if files, _ := filepath.Glob(filepath.Join(dir, "*", "*.json")); len(files) != 0 {
		t.Errorf("%d entries left after cache clear", len(files))
	}
}

package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)
	logger.Info("merged graph", "nodes", 3)

	line := buf.String()
	if !regexp.MustCompile(`^\d\d:\d\d:\d\d\.\d\d `).MatchString(line) {
		t.Errorf("missing HH:MM:SS.ms timestamp: %q", line)
	}
	if !strings.Contains(line, "nodes=3") {
		t.Errorf("missing key/value: %q", line)
	}
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		wantDbg bool
	}{
		{name: "Info", level: LogInfo, wantDbg: false},
		{name: "Verbose", level: LogDebug, wantDbg: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.level)
			logger.Debug("reset index")
			if got := buf.Len() > 0; got != tt.wantDbg {
				t.Errorf("debug logged = %v, want %v", got, tt.wantDbg)
			}
		})
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	prog.done("Merged graph", "nodes", 3, "carried", 1)

	out := buf.String()
	for _, want := range []string{"Merged graph", "nodes=3", "carried=1", "elapsed="} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestRedirectLogs(t *testing.T) {
	var term bytes.Buffer
	logger := newLogger(&term, log.InfoLevel)

	t.Run("Discard", func(t *testing.T) {
		restore, err := redirectLogs(logger, "", &term)
		if err != nil {
			t.Fatal(err)
		}
		logger.Info("while exploring")
		restore()
		if term.Len() != 0 {
			t.Errorf("logged to the terminal while redirected: %q", term.String())
		}
		logger.Info("after")
		if !strings.Contains(term.String(), "after") {
			t.Error("output not restored")
		}
		term.Reset()
	})

	t.Run("File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "explore.log")
		restore, err := redirectLogs(logger, path, &term)
		if err != nil {
			t.Fatal(err)
		}
		logger.Info("draw applied", "nodes", 3)
		restore()

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), "draw applied") {
			t.Errorf("log file = %q", data)
		}
		if term.Len() != 0 {
			t.Errorf("logged to the terminal while redirected: %q", term.String())
		}
	})

	t.Run("BadPath", func(t *testing.T) {
		if _, err := redirectLogs(logger, filepath.Join(t.TempDir(), "missing", "x.log"), &term); err == nil {
			t.Error("expected error for unwritable path")
		}
	})
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("want log.Default() without an attached logger")
	}

	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)
	ctx := withLogger(context.Background(), logger)
	if loggerFromContext(ctx) != logger {
		t.Error("loggerFromContext did not return the attached logger")
	}
}

func TestRootAttachesLogger(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogDebug)
	root := c.RootCommand()

	var got *log.Logger
	root.AddCommand(&cobra.Command{
		Use: "whoami",
		Run: func(cmd *cobra.Command, args []string) { got = loggerFromContext(cmd.Context()) },
	})
	root.SetArgs([]string{"whoami"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got != c.Logger {
		t.Error("command context does not carry the CLI logger")
	}
}

// Logging for the notegraph CLI.
//
// Every command logs through the charmbracelet logger held by [CLI]. The
// root command attaches it to the command context, so helpers that only see
// a context reach it with loggerFromContext. --verbose (-v) lowers the level
// to debug. While `explore` owns the terminal, output is redirected to
// --log-file or discarded.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// logTimeFormat renders timestamps as "14:32:01.45".
const logTimeFormat = "15:04:05.00"

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      logTimeFormat,
		Level:           level,
	})
}

// redirectLogs points l at the file at path, or discards its output when
// path is empty. The returned func sends output back to w and closes the
// file.
func redirectLogs(l *log.Logger, path string, w io.Writer) (func(), error) {
	if path == "" {
		l.SetOutput(io.Discard)
		return func() { l.SetOutput(w) }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	l.SetOutput(f)
	return func() {
		l.SetOutput(w)
		f.Close()
	}, nil
}

// progress times one draw or render and logs it with the elapsed time.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with keyvals and "elapsed", rounded to the millisecond.
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by the root command, or
// log.Default() outside a command.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

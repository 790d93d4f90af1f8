// Package session keeps per-client explorer state for the HTTP server and
// index snapshots for the CLI.
//
// A [Session] owns everything one client interacts with: its note buffer,
// display, identity index, live graph, render driver and interaction
// controller. None of that is safe for concurrent use, so every request
// touching a session runs inside [Session.Do], which serialises events per
// session. A tick therefore finishes before the next event is processed.
//
// Sessions live in a [Registry] with a sliding TTL. Expired sessions are
// dropped on access and by [Registry.Cleanup].
//
// [FileStore] persists identity-index snapshots so pinned nodes and
// positions survive between CLI runs.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/sboosali/notegraph/pkg/backend"
	"github.com/sboosali/notegraph/pkg/explorer"
	"github.com/sboosali/notegraph/pkg/fisheye"
	"github.com/sboosali/notegraph/pkg/identity"
	"github.com/sboosali/notegraph/pkg/interact"
	"github.com/sboosali/notegraph/pkg/render"
)

// Default durations.
const (
	// DefaultTTL is how long an idle session is kept.
	DefaultTTL = 2 * time.Hour

	// DefaultCleanupInterval is how often the janitor sweeps expired sessions.
	DefaultCleanupInterval = time.Minute
)

// Config is what every new session is built from.
type Config struct {
	Client       *backend.Client
	PruneAfter   int
	Distortion   float64
	Radius       float64
	Width        float64
	Height       float64
	QueryOnClick bool
	Logger       *log.Logger
}

// Session is one client's explorer.
type Session struct {
	ID        string
	CreatedAt time.Time

	// expiry is read by request handlers and moved by the registry.
	expMu     sync.Mutex
	expiresAt time.Time

	// ctx bounds the session's background requests; cancel ends it.
	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	notes      *interact.TextBuffer
	show       *interact.Label
	query      *interact.Label
	output     *interact.Label
	explorer   *explorer.Explorer
	controller *interact.Controller
}

// GenerateID returns a new random session ID.
func GenerateID() string {
	return uuid.NewString()
}

// New builds a session with an empty note buffer. The session's background
// requests end with ctx or with [Session.Close]. index may be nil.
func New(ctx context.Context, cfg Config, index *identity.Index, ttl time.Duration) *Session {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	ctx, cancel := context.WithCancel(ctx)
	lens := fisheye.NewLens()
	if cfg.Distortion > 0 {
		lens.Distortion = cfg.Distortion
	}
	if cfg.Radius > 0 {
		lens.Radius = cfg.Radius
	}
	width, height := cfg.Width, cfg.Height
	if width <= 0 || height <= 0 {
		width, height = 960, 600
	}

	id := GenerateID()
	logger := cfg.Logger
	if logger != nil {
		logger = logger.With("session", id[:8])
	}

	s := &Session{
		ID:     id,
		ctx:    ctx,
		cancel: cancel,
		notes:  interact.NewTextBuffer(""),
		show:   interact.NewLabel(""),
		query:  interact.NewLabel(""),
		output: interact.NewLabel(""),
	}
	s.explorer = explorer.New(ctx, cfg.Client, explorer.Options{
		Index:      index,
		PruneAfter: cfg.PruneAfter,
		Lens:       lens,
		Simulation: render.NewStaticSimulation(width, height),
		Output:     s.output,
		Logger:     logger,
	})
	s.controller = interact.New(
		interact.Widgets{Notes: s.notes, Show: s.show, Query: s.query},
		s.explorer.Driver(),
		s.explorer,
		interact.Options{QueryOnClick: cfg.QueryOnClick, Logger: logger},
	)

	now := time.Now()
	s.CreatedAt = now
	s.expiresAt = now.Add(ttl)
	return s
}

// ExpiresAt returns when the session expires unless it is used again.
func (s *Session) ExpiresAt() time.Time {
	s.expMu.Lock()
	defer s.expMu.Unlock()
	return s.expiresAt
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt())
}

func (s *Session) extend(ttl time.Duration) {
	s.expMu.Lock()
	s.expiresAt = time.Now().Add(ttl)
	s.expMu.Unlock()
}

// Close cancels in-flight background requests. Results still undelivered
// are dropped.
func (s *Session) Close() {
	s.cancel()
}

// State is the session state handed to [Session.Do].
type State struct {
	Notes      *interact.TextBuffer
	Show       *interact.Label
	Query      *interact.Label
	Output     *interact.Label
	Explorer   *explorer.Explorer
	Controller *interact.Controller
}

// Do runs fn with exclusive access to the session state. Background results
// that arrived since the last call are applied first; their errors are
// logged by the explorer and otherwise dropped. Do returns ctx's error
// without calling fn if ctx is done once the lock is held.
func (s *Session) Do(ctx context.Context, fn func(st State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	s.drain(ctx)
	return fn(State{
		Notes:      s.notes,
		Show:       s.show,
		Query:      s.query,
		Output:     s.output,
		Explorer:   s.explorer,
		Controller: s.controller,
	})
}

func (s *Session) drain(ctx context.Context) {
	for {
		select {
		case r := <-s.explorer.Results():
			_ = s.explorer.Apply(ctx, r)
		default:
			return
		}
	}
}

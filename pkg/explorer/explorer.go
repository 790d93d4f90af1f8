// Package explorer runs the draw loop: note text goes to the parser
// backend, the parsed graph is merged into live state, and the render
// driver is reloaded.
//
// An [Explorer] is owned by one event loop (the terminal explorer's update
// loop, or one server session under its lock). Network calls can run
// synchronously ([Explorer.Draw], [Explorer.RunQuery]) or asynchronously
// through the [interact.Actions] methods, whose results arrive on
// [Explorer.Results] and must be handed back to [Explorer.Apply] on the
// owning loop.
//
// Failures never disturb what is on screen: a transport or malformed-graph
// error aborts the draw and the previous graph stays loaded.
package explorer

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sboosali/notegraph/pkg/backend"
	"github.com/sboosali/notegraph/pkg/errors"
	"github.com/sboosali/notegraph/pkg/fisheye"
	"github.com/sboosali/notegraph/pkg/graph"
	"github.com/sboosali/notegraph/pkg/identity"
	"github.com/sboosali/notegraph/pkg/interact"
	"github.com/sboosali/notegraph/pkg/merge"
	"github.com/sboosali/notegraph/pkg/observability"
	"github.com/sboosali/notegraph/pkg/render"
)

// resultBuffer bounds how many finished async requests may wait for the
// owning loop before senders block.
const resultBuffer = 16

// Options configures an Explorer.
type Options struct {
	// Index is the identity index to merge into. Nil starts empty.
	Index *identity.Index

	// PruneAfter is passed to the merge engine.
	PruneAfter int

	// Lens and Simulation are passed to the render driver.
	Lens       *fisheye.Lens
	Simulation render.Simulation

	// Output receives joined query results. Optional.
	Output interact.Display

	Logger *log.Logger
}

// Stats describes one completed draw.
type Stats struct {
	Nodes    int
	Links    int
	Carried  int
	Pruned   []string
	Duration time.Duration
}

// Explorer ties the backend client, merge engine and render driver together.
// It is not safe for concurrent use, except for Redraw and Query, which only
// start background requests.
type Explorer struct {
	client *backend.Client
	engine *merge.Engine
	driver *render.Driver
	output interact.Display
	logger *log.Logger

	ctx     context.Context
	results chan backend.Result
	applied uint64
}

// New returns an explorer. ctx bounds background requests started through
// Redraw and Query.
func New(ctx context.Context, client *backend.Client, opts Options) *Explorer {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Explorer{
		client:  client,
		engine:  merge.New(opts.Index, merge.Options{PruneAfter: opts.PruneAfter, Logger: logger}),
		driver:  render.NewDriver(opts.Lens, opts.Simulation, logger),
		output:  opts.Output,
		logger:  logger,
		ctx:     ctx,
		results: make(chan backend.Result, resultBuffer),
	}
}

// Driver returns the render driver holding the live graph.
func (e *Explorer) Driver() *render.Driver { return e.driver }

// Index returns the identity index.
func (e *Explorer) Index() *identity.Index { return e.engine.Index() }

// Graph returns the live graph.
func (e *Explorer) Graph() *graph.Graph { return e.driver.Graph() }

// Draw sends notes to the parser and loads the result. Empty notes are a
// no-op. On error the previous graph stays loaded.
func (e *Explorer) Draw(ctx context.Context, notes string) (Stats, error) {
	if backend.Empty(notes) {
		return Stats{}, nil
	}
	start := time.Now()
	observability.Draw().OnDrawStart(ctx, len(notes))

	doc, err := e.client.Draw(ctx, notes)
	if err != nil {
		e.logger.Warn("draw failed; keeping current graph", "error", err)
		observability.Draw().OnDrawComplete(ctx, 0, 0, time.Since(start), err)
		return Stats{}, err
	}

	stats, err := e.Load(ctx, doc)
	stats.Duration = time.Since(start)
	observability.Draw().OnDrawComplete(ctx, stats.Nodes, stats.Links, stats.Duration, err)
	if err != nil {
		return Stats{}, err
	}

	e.logger.Info("drew notes",
		"nodes", stats.Nodes,
		"links", stats.Links,
		"carried", stats.Carried,
		"duration", stats.Duration)
	return stats, nil
}

// Load merges a parsed document into live state and reloads the driver.
// A document with a dangling link endpoint is rejected as a whole before
// the identity index is touched. A nil document is a no-op.
func (e *Explorer) Load(ctx context.Context, doc *graph.Document) (Stats, error) {
	if doc == nil {
		return Stats{}, nil
	}
	if _, err := graph.Resolve(doc.Nodes, doc.Links); err != nil {
		e.logger.Warn("rejected malformed graph; keeping current graph", "error", err)
		return Stats{}, err
	}

	merged, ms := e.engine.MergeContext(ctx, doc.Nodes)
	g, err := graph.Resolve(merged, doc.Links)
	if err != nil {
		return Stats{}, errors.Wrap(errors.ErrCodeInternal, err, "resolve merged graph")
	}
	e.driver.Load(g)
	e.driver.Tick()

	return Stats{
		Nodes:   g.NodeCount(),
		Links:   g.LinkCount(),
		Carried: ms.Carried,
		Pruned:  ms.Pruned,
	}, nil
}

// RunQuery sends query to the query backend and shows the joined results.
// An empty query is a no-op.
func (e *Explorer) RunQuery(ctx context.Context, query string) (string, error) {
	results, err := e.client.Query(ctx, query)
	if err != nil {
		e.logger.Warn("query failed", "error", err)
		return "", err
	}
	if results == nil {
		return "", nil
	}
	text := backend.JoinResults(results)
	if e.output != nil {
		e.output.SetText(text)
	}
	return text, nil
}

// Redraw starts a background draw. The result arrives on Results.
func (e *Explorer) Redraw(notes string) {
	e.forward(e.client.DrawAsync(e.ctx, notes))
}

// Query starts a background query. The result arrives on Results.
func (e *Explorer) Query(query string) {
	e.forward(e.client.QueryAsync(e.ctx, query))
}

func (e *Explorer) forward(ch <-chan backend.Result) {
	go func() {
		for r := range ch {
			select {
			case e.results <- r:
			case <-e.ctx.Done():
				return
			}
		}
	}()
}

// Results delivers finished background requests.
func (e *Explorer) Results() <-chan backend.Result { return e.results }

// Apply folds a background result into live state. Results are applied in
// arrival order, so the last response to arrive wins even if it answers an
// older request. Errors leave state untouched and are returned for the host
// to report.
func (e *Explorer) Apply(ctx context.Context, r backend.Result) error {
	if r.Seq < e.applied {
		e.logger.Debug("applying out-of-order response", "seq", r.Seq, "applied", e.applied, "kind", r.Kind)
	}
	e.applied = max(e.applied, r.Seq)

	if r.Err != nil {
		e.logger.Warn(r.Kind.String()+" failed", "seq", r.Seq, "error", r.Err)
		if r.Kind == backend.KindDraw {
			observability.Draw().OnDrawComplete(ctx, 0, 0, 0, r.Err)
		}
		return r.Err
	}
	if r.Skipped {
		return nil
	}

	switch r.Kind {
	case backend.KindQuery:
		if e.output != nil && r.Results != nil {
			e.output.SetText(backend.JoinResults(r.Results))
		}
		return nil
	default:
		stats, err := e.Load(ctx, r.Document)
		if err != nil {
			return err
		}
		e.logger.Debug("applied draw", "seq", r.Seq, "nodes", stats.Nodes, "links", stats.Links)
		return nil
	}
}

var _ interact.Actions = (*Explorer)(nil)

// Package merge implements the identity-preserving merge of a freshly parsed
// node list into live graph state.
//
// The parser knows nothing about where nodes are on screen. Every redraw
// returns brand new node records; the [Engine] matches them by name against
// the [identity.Index] and carries position, velocity and pin state forward
// so that editing the notes does not scramble the layout.
package merge

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/sboosali/notegraph/pkg/graph"
	"github.com/sboosali/notegraph/pkg/identity"
	"github.com/sboosali/notegraph/pkg/observability"
)

// Options configures an Engine.
type Options struct {
	// PruneAfter drops names absent from this many consecutive merges.
	// Zero keeps every name forever.
	PruneAfter int

	// Logger receives duplicate-name warnings and prune reports.
	// Nil discards.
	Logger *log.Logger
}

// Engine merges fresh parser output into the nodes it remembers.
// An Engine is not safe for concurrent use.
type Engine struct {
	index      *identity.Index
	pruneAfter int
	logger     *log.Logger
}

// Stats summarises one merge.
type Stats struct {
	Fresh   int
	Carried int
	Pruned  []string
}

// New returns an engine backed by index. A nil index gets a fresh one.
func New(index *identity.Index, opts Options) *Engine {
	if index == nil {
		index = identity.NewIndex()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{index: index, pruneAfter: opts.PruneAfter, logger: logger}
}

// Index returns the identity index the engine reads and writes.
func (e *Engine) Index() *identity.Index { return e.index }

// Merge returns one node per fresh node, in input order. A name already in
// the index yields a new node combining the remembered physical state with
// the fresh semantic fields; an unknown name yields the fresh node itself.
// Either way the returned node becomes the index entry for its name.
func (e *Engine) Merge(fresh []*graph.Node) []*graph.Node {
	out, _ := e.MergeContext(context.Background(), fresh)
	return out
}

// MergeContext is Merge with a context for observability hooks, also
// returning merge statistics.
func (e *Engine) MergeContext(ctx context.Context, fresh []*graph.Node) ([]*graph.Node, Stats) {
	e.index.Advance()

	out := make([]*graph.Node, len(fresh))
	seen := make(map[string]struct{}, len(fresh))
	stats := Stats{Fresh: len(fresh)}

	for i, f := range fresh {
		if _, dup := seen[f.Name]; dup {
			e.logger.Warn("duplicate node name in parser output; last one wins", "name", f.Name)
		}
		seen[f.Name] = struct{}{}

		merged := f
		if prev, ok := e.index.Get(f.Name); ok {
			merged = Combine(prev, f)
			stats.Carried++
		} else {
			f.Distorted = graph.Distorted{}
		}
		e.index.Put(merged)
		out[i] = merged
	}

	stats.Pruned = e.index.Prune(e.pruneAfter)
	if len(stats.Pruned) > 0 {
		e.logger.Debug("pruned identity index", "names", stats.Pruned, "remaining", e.index.Len())
	}

	observability.Draw().OnMerge(ctx, stats.Fresh, stats.Carried, len(stats.Pruned))
	return out, stats
}

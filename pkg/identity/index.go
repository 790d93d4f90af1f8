// Package identity holds the Identity Index: the store that remembers, for
// every node name, the last live node seen under that name.
//
// The index is an explicit value owned by whoever drives the merge (one per
// CLI run, one per server session) rather than process-wide state. Each
// merge is one snapshot generation; [Index.Prune] drops names that have not
// been seen for a configurable number of generations, so a long session
// does not grow without bound.
//
// An Index is not safe for concurrent use.
package identity

import (
	"slices"

	"github.com/sboosali/notegraph/pkg/graph"
)

type entry struct {
	node     *graph.Node
	lastSeen uint64
}

// Index maps node names to their last-known live state.
type Index struct {
	entries    map[string]*entry
	generation uint64
}

// NewIndex returns an empty index at generation 0.
func NewIndex() *Index {
	return &Index{entries: make(map[string]*entry)}
}

// Get returns the node last stored under name.
func (ix *Index) Get(name string) (*graph.Node, bool) {
	e, ok := ix.entries[name]
	if !ok {
		return nil, false
	}
	return e.node, true
}

// Put stores n under its name and marks the name as seen in the current
// generation. A later Put for the same name in the same generation wins.
func (ix *Index) Put(n *graph.Node) {
	ix.entries[n.Name] = &entry{node: n, lastSeen: ix.generation}
}

// Advance starts a new snapshot generation and returns it.
func (ix *Index) Advance() uint64 {
	ix.generation++
	return ix.generation
}

// Generation returns the current snapshot generation.
func (ix *Index) Generation() uint64 { return ix.generation }

// Len returns the number of remembered names.
func (ix *Index) Len() int { return len(ix.entries) }

// Names returns the remembered names in sorted order.
func (ix *Index) Names() []string {
	names := make([]string, 0, len(ix.entries))
	for name := range ix.entries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// LastSeen returns the generation in which name was last stored.
func (ix *Index) LastSeen(name string) (uint64, bool) {
	e, ok := ix.entries[name]
	if !ok {
		return 0, false
	}
	return e.lastSeen, true
}

// Forget removes name from the index.
func (ix *Index) Forget(name string) {
	delete(ix.entries, name)
}

// Prune removes every name absent from the last `after` generations,
// i.e. whose last sighting is at least `after` generations old. It returns
// the removed names in sorted order. after <= 0 disables pruning.
func (ix *Index) Prune(after int) []string {
	if after <= 0 {
		return nil
	}
	var pruned []string
	for name, e := range ix.entries {
		if ix.generation-e.lastSeen >= uint64(after) {
			pruned = append(pruned, name)
		}
	}
	for _, name := range pruned {
		delete(ix.entries, name)
	}
	slices.Sort(pruned)
	return pruned
}

// Reset forgets everything and returns to generation 0.
func (ix *Index) Reset() {
	clear(ix.entries)
	ix.generation = 0
}

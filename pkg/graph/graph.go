package graph

import (
	"encoding/json"

	"github.com/sboosali/notegraph/pkg/errors"
)

// Graph is a set of name-unique nodes and triple-unique links whose
// endpoints are members of the node set.
type Graph struct {
	Nodes []*Node
	Links []*Link

	byName map[string]*Node
	byLink map[string]*Link
}

// New builds a graph over already-resolved nodes and links.
// It does not validate; use [Graph.Validate] or build through [Resolve].
func New(nodes []*Node, links []*Link) *Graph {
	g := &Graph{Nodes: nodes, Links: links}
	g.reindex()
	return g
}

func (g *Graph) reindex() {
	g.byName = make(map[string]*Node, len(g.Nodes))
	for _, n := range g.Nodes {
		g.byName[n.Name] = n
	}
	g.byLink = make(map[string]*Link, len(g.Links))
	for _, l := range g.Links {
		g.byLink[l.ID()] = l
	}
}

// Node returns the node called name.
func (g *Graph) Node(name string) (*Node, bool) {
	n, ok := g.byName[name]
	return n, ok
}

// Link returns the link with the given identity (see [Link.ID]).
func (g *Graph) Link(id string) (*Link, bool) {
	l, ok := g.byLink[id]
	return l, ok
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.Nodes) }

// LinkCount returns the number of links.
func (g *Graph) LinkCount() int { return len(g.Links) }

// Validate checks the graph invariants: node names are unique and every
// link endpoint is the very node instance held in the node set.
func (g *Graph) Validate() error {
	seen := make(map[string]*Node, len(g.Nodes))
	for _, n := range g.Nodes {
		if err := errors.ValidateNodeName(n.Name); err != nil {
			return err
		}
		if _, dup := seen[n.Name]; dup {
			return errors.New(errors.ErrCodeMalformedGraph, "duplicate node %q", n.Name)
		}
		seen[n.Name] = n
	}
	for i, l := range g.Links {
		if l.Source == nil || l.Target == nil {
			return errors.New(errors.ErrCodeMalformedGraph, "link %d has a nil endpoint", i)
		}
		if seen[l.Source.Name] != l.Source {
			return errors.New(errors.ErrCodeMalformedGraph, "link %d: source %q is not a node of this graph", i, l.Source.Name)
		}
		if seen[l.Target.Name] != l.Target {
			return errors.New(errors.ErrCodeMalformedGraph, "link %d: target %q is not a node of this graph", i, l.Target.Name)
		}
	}
	return nil
}

// Document converts the graph back to its wire shape with name endpoints.
func (g *Graph) Document() Document {
	doc := Document{
		Nodes: g.Nodes,
		Links: make([]RawLink, len(g.Links)),
	}
	for i, l := range g.Links {
		doc.Links[i] = RawLink{
			Source: NameEndpoint(l.Source.Name),
			Target: NameEndpoint(l.Target.Name),
			Name:   l.Relation,
			Lineno: l.Lineno,
		}
	}
	return doc
}

// MarshalJSON encodes the graph as a [Document].
func (g *Graph) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Document())
}

// Resolve binds raw links to the given nodes, producing a [Graph] whose links
// hold live references into nodes.
//
// Index endpoints refer to positions in nodes; name endpoints are looked up
// by name. A link whose endpoint is missing makes the whole batch fail with
// a MALFORMED_GRAPH error: nothing is returned, so nothing partial is
// rendered. Links repeating an identity triple already seen are dropped,
// keeping the first occurrence.
//
// Nodes must have unique names; a duplicate name is also MALFORMED_GRAPH.
func Resolve(nodes []*Node, raw []RawLink) (*Graph, error) {
	byName := make(map[string]*Node, len(nodes))
	for _, n := range nodes {
		if err := errors.ValidateNodeName(n.Name); err != nil {
			return nil, err
		}
		if _, dup := byName[n.Name]; dup {
			return nil, errors.New(errors.ErrCodeMalformedGraph, "duplicate node %q", n.Name)
		}
		byName[n.Name] = n
	}

	lookup := func(i int, e Endpoint, role string) (*Node, error) {
		if e.IsIndex {
			if e.Index < 0 || e.Index >= len(nodes) {
				return nil, errors.New(errors.ErrCodeMalformedGraph,
					"link %d: %s index %d out of range (%d nodes)", i, role, e.Index, len(nodes))
			}
			return nodes[e.Index], nil
		}
		n, ok := byName[e.Name]
		if !ok {
			return nil, errors.New(errors.ErrCodeMalformedGraph, "link %d: unknown %s %q", i, role, e.Name)
		}
		return n, nil
	}

	links := make([]*Link, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, r := range raw {
		src, err := lookup(i, r.Source, "source")
		if err != nil {
			return nil, err
		}
		dst, err := lookup(i, r.Target, "target")
		if err != nil {
			return nil, err
		}
		l := &Link{Source: src, Target: dst, Relation: r.Name, Lineno: r.Lineno}
		id := l.ID()
		if seen[id] {
			continue
		}
		seen[id] = true
		links = append(links, l)
	}

	return New(nodes, links), nil
}

package merge

import "github.com/sboosali/notegraph/pkg/graph"

// Origin says which side of a merge a field is taken from.
type Origin int

const (
	// Fresh takes the field from the node the parser just produced.
	Fresh Origin = iota
	// Previous takes the field from the node remembered in the index.
	Previous
	// Reset zeroes the field.
	Reset
)

func (o Origin) String() string {
	switch o {
	case Fresh:
		return "fresh"
	case Previous:
		return "previous"
	case Reset:
		return "reset"
	default:
		return "unknown"
	}
}

// Rule assigns one node field of dst from prev or fresh.
type Rule struct {
	Field  string
	Origin Origin
	apply  func(dst, prev, fresh *graph.Node)
}

// Rules is the field-by-field merge table. Semantic fields follow the text,
// physical fields follow the simulation, derived fields start over.
var Rules = []Rule{
	{Field: "Name", Origin: Fresh, apply: func(d, _, f *graph.Node) { d.Name = f.Name }},
	{Field: "Label", Origin: Fresh, apply: func(d, _, f *graph.Node) { d.Label = f.Label }},
	{Field: "Kind", Origin: Fresh, apply: func(d, _, f *graph.Node) { d.Kind = f.Kind }},
	{Field: "Meta", Origin: Fresh, apply: func(d, _, f *graph.Node) { d.Meta = f.Meta.Clone() }},
	{Field: "Position", Origin: Previous, apply: func(d, p, _ *graph.Node) { d.Position = p.Position }},
	{Field: "Velocity", Origin: Previous, apply: func(d, p, _ *graph.Node) { d.Velocity = p.Velocity }},
	{Field: "Fixed", Origin: Previous, apply: func(d, p, _ *graph.Node) { d.Fixed = p.Fixed }},
	{Field: "Distorted", Origin: Reset, apply: func(d, _, _ *graph.Node) { d.Distorted = graph.Distorted{} }},
}

// Combine builds a new node from prev and fresh according to Rules.
// Neither input is modified.
func Combine(prev, fresh *graph.Node) *graph.Node {
	out := &graph.Node{}
	for _, r := range Rules {
		r.apply(out, prev, fresh)
	}
	return out
}

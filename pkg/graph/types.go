package graph

import (
	"encoding/json"
	"fmt"
	"maps"
	"strconv"
)

// LinkIDSeparator joins the parts of a link identity triple.
const LinkIDSeparator = "___"

// =============================================================================
// Geometry
// =============================================================================

// Point is a position in simulation coordinates.
type Point struct {
	X float64 `json:"x" bson:"x" msgpack:"x"`
	Y float64 `json:"y" bson:"y" msgpack:"y"`
}

// Velocity is the per-step displacement integrated by the simulation.
type Velocity struct {
	VX float64 `json:"vx" bson:"vx" msgpack:"vx"`
	VY float64 `json:"vy" bson:"vy" msgpack:"vy"`
}

// Distorted is the fisheye image of a node's position.
// Scale is the local magnification: 1 outside the lens, larger near the focus.
type Distorted struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}

// =============================================================================
// Node
// =============================================================================

// Metadata holds semantic attributes the parser attaches to a node beyond
// the fields the core knows about.
type Metadata map[string]any

// Clone returns a shallow copy of m, or nil if m is empty.
func (m Metadata) Clone() Metadata {
	if len(m) == 0 {
		return nil
	}
	return maps.Clone(m)
}

// Node is a named entity of the relation graph.
//
// Fields fall into two groups. Semantic fields (Name, Label, Kind, Meta)
// describe what the parser saw in the text. Physical fields (Position,
// Velocity, Fixed) are live simulation state. Distorted is derived on
// every tick and never carried across merges.
type Node struct {
	// Semantic
	Name  string
	Label string
	Kind  string
	Meta  Metadata

	// Physical
	Position Point
	Velocity Velocity
	Fixed    bool

	// Derived
	Distorted Distorted
}

// DisplayLabel returns the label if set, otherwise the name.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.Name
}

// Clone returns a deep copy of the node. Links pointing at n do not follow.
func (n *Node) Clone() *Node {
	c := *n
	c.Meta = n.Meta.Clone()
	return &c
}

// nodeKeys are the attributes decoded into dedicated Node fields.
var nodeKeys = []string{"name", "label", "kind", "meta", "x", "y", "vx", "vy", "fixed", "distorted"}

type nodeJSON struct {
	Name      string     `json:"name"`
	Label     string     `json:"label,omitempty"`
	Kind      string     `json:"kind,omitempty"`
	Meta      Metadata   `json:"meta,omitempty"`
	X         float64    `json:"x"`
	Y         float64    `json:"y"`
	VX        float64    `json:"vx"`
	VY        float64    `json:"vy"`
	Fixed     bool       `json:"fixed,omitempty"`
	Distorted *Distorted `json:"distorted,omitempty"`
}

// MarshalJSON encodes the node in the flat shape force-layout clients expect.
func (n Node) MarshalJSON() ([]byte, error) {
	out := nodeJSON{
		Name:  n.Name,
		Label: n.Label,
		Kind:  n.Kind,
		Meta:  n.Meta,
		X:     n.Position.X,
		Y:     n.Position.Y,
		VX:    n.Velocity.VX,
		VY:    n.Velocity.VY,
		Fixed: n.Fixed,
	}
	if n.Distorted.Scale != 0 {
		d := n.Distorted
		out.Distorted = &d
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a node. Unknown attributes are collected into Meta.
func (n *Node) UnmarshalJSON(data []byte) error {
	var in nodeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	var extra map[string]any
	if err := json.Unmarshal(data, &extra); err != nil {
		return err
	}
	for _, k := range nodeKeys {
		delete(extra, k)
	}

	meta := in.Meta.Clone()
	if len(extra) > 0 {
		if meta == nil {
			meta = make(Metadata, len(extra))
		}
		maps.Copy(meta, extra)
	}

	*n = Node{
		Name:     in.Name,
		Label:    in.Label,
		Kind:     in.Kind,
		Meta:     meta,
		Position: Point{X: in.X, Y: in.Y},
		Velocity: Velocity{VX: in.VX, VY: in.VY},
		Fixed:    in.Fixed,
	}
	if in.Distorted != nil {
		n.Distorted = *in.Distorted
	}
	return nil
}

// =============================================================================
// Link
// =============================================================================

// Link is a directed relation between two nodes of the same graph.
// Source and Target are live references, never copies.
type Link struct {
	Source   *Node
	Target   *Node
	Relation string
	Lineno   int
}

// ID returns the identity triple joined with [LinkIDSeparator].
func (l *Link) ID() string {
	return LinkID(l.Source.Name, l.Relation, l.Target.Name)
}

// LinkID builds a link identity from its parts.
func LinkID(source, relation, target string) string {
	return source + LinkIDSeparator + relation + LinkIDSeparator + target
}

// Verbalize renders the link as the sentence it came from, e.g.
// "bob trusts carol".
func (l *Link) Verbalize() string {
	return l.Source.Name + " " + l.Relation + " " + l.Target.Name
}

// Scale is the larger of the two endpoint magnifications.
func (l *Link) Scale() float64 {
	return max(l.Source.Distorted.Scale, l.Target.Distorted.Scale)
}

// MarshalJSON encodes the link with endpoints by name.
func (l Link) MarshalJSON() ([]byte, error) {
	return json.Marshal(RawLink{
		Source: NameEndpoint(l.Source.Name),
		Target: NameEndpoint(l.Target.Name),
		Name:   l.Relation,
		Lineno: l.Lineno,
	})
}

// =============================================================================
// Wire format
// =============================================================================

// Endpoint is a link end as sent by the parser: an index into the node
// array, or a node name.
type Endpoint struct {
	Index   int
	Name    string
	IsIndex bool
}

// IndexEndpoint returns an endpoint referring to nodes[i].
func IndexEndpoint(i int) Endpoint { return Endpoint{Index: i, IsIndex: true} }

// NameEndpoint returns an endpoint referring to the node called name.
func NameEndpoint(name string) Endpoint { return Endpoint{Name: name} }

// String returns the name, or "#i" for index endpoints.
func (e Endpoint) String() string {
	if e.IsIndex {
		return "#" + strconv.Itoa(e.Index)
	}
	return e.Name
}

// MarshalJSON encodes an index as a number and a name as a string.
func (e Endpoint) MarshalJSON() ([]byte, error) {
	if e.IsIndex {
		return json.Marshal(e.Index)
	}
	return json.Marshal(e.Name)
}

// UnmarshalJSON accepts a number, a string, or an object with a "name" or
// "index" field (the shape force-layout clients echo back after they have
// replaced indices with node objects).
func (e *Endpoint) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case float64:
		if t != float64(int(t)) || t < 0 {
			return fmt.Errorf("endpoint index %v is not a non-negative integer", t)
		}
		*e = IndexEndpoint(int(t))
	case string:
		*e = NameEndpoint(t)
	case map[string]any:
		if name, ok := t["name"].(string); ok {
			*e = NameEndpoint(name)
			return nil
		}
		if idx, ok := t["index"].(float64); ok {
			*e = IndexEndpoint(int(idx))
			return nil
		}
		return fmt.Errorf("endpoint object has neither name nor index")
	default:
		return fmt.Errorf("unsupported endpoint %s", string(data))
	}
	return nil
}

// RawLink is a link as sent by the parser, before endpoint resolution.
type RawLink struct {
	Source Endpoint `json:"source"`
	Target Endpoint `json:"target"`
	Name   string   `json:"name"`
	Lineno int      `json:"lineno"`
}

// Document is the parser backend's draw response.
type Document struct {
	Nodes []*Node   `json:"nodes"`
	Links []RawLink `json:"links"`
}

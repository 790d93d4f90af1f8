package render

import "github.com/sboosali/notegraph/pkg/graph"

const (
	// FontScale multiplies a node's fisheye scale into its label font size.
	FontScale = 30.0
	// StrokeScale multiplies a link's fisheye scale into its stroke width.
	StrokeScale = 10.0
)

// NodeAttrs are the visual attributes of one node for one tick.
type NodeAttrs struct {
	Name     string  `json:"name"`
	Text     string  `json:"text"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	FontSize float64 `json:"font_size"`
	Pinned   bool    `json:"pinned,omitempty"`
}

// LinkAttrs are the visual attributes of one link for one tick.
type LinkAttrs struct {
	ID          string  `json:"id"`
	Source      string  `json:"source"`
	Target      string  `json:"target"`
	Relation    string  `json:"relation"`
	Lineno      int     `json:"lineno"`
	X1          float64 `json:"x1"`
	Y1          float64 `json:"y1"`
	X2          float64 `json:"x2"`
	Y2          float64 `json:"y2"`
	StrokeWidth float64 `json:"stroke_width"`
}

// Frame is everything a view needs to draw one tick. Nodes and links keep
// the order of the live collections.
type Frame struct {
	Focus graph.Point `json:"focus"`
	Nodes []NodeAttrs `json:"nodes"`
	Links []LinkAttrs `json:"links"`
}

// Node returns the attributes of the named node.
func (f *Frame) Node(name string) (NodeAttrs, bool) {
	for _, n := range f.Nodes {
		if n.Name == name {
			return n, true
		}
	}
	return NodeAttrs{}, false
}

// Link returns the attributes of the link with the given ID.
func (f *Frame) Link(id string) (LinkAttrs, bool) {
	for _, l := range f.Links {
		if l.ID == id {
			return l, true
		}
	}
	return LinkAttrs{}, false
}

// Bounds returns the bounding box of all node and link coordinates.
// An empty frame has zero bounds.
func (f *Frame) Bounds() (minX, minY, maxX, maxY float64) {
	first := true
	grow := func(x, y float64) {
		if first {
			minX, minY, maxX, maxY = x, y, x, y
			first = false
			return
		}
		minX, maxX = min(minX, x), max(maxX, x)
		minY, maxY = min(minY, y), max(maxY, y)
	}
	for _, n := range f.Nodes {
		grow(n.X, n.Y)
	}
	for _, l := range f.Links {
		grow(l.X1, l.Y1)
		grow(l.X2, l.Y2)
	}
	return
}

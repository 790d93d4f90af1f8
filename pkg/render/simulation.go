package render

import "github.com/sboosali/notegraph/pkg/graph"

// Simulation is the external force integrator. It mutates node positions
// and velocities in place.
type Simulation interface {
	// Load replaces the collections the simulation works on.
	Load(nodes []*graph.Node, links []*graph.Link)
	// Step advances one tick and reports whether the simulation is still
	// moving.
	Step() bool
}

// StaticSimulation places unpositioned nodes on a circle inside the canvas
// and never moves anything.
type StaticSimulation struct {
	Width, Height float64
	nodes         []*graph.Node
}

// NewStaticSimulation returns a static simulation for a canvas of the given
// size.
func NewStaticSimulation(width, height float64) *StaticSimulation {
	return &StaticSimulation{Width: width, Height: height}
}

func (s *StaticSimulation) Load(nodes []*graph.Node, _ []*graph.Link) {
	s.nodes = nodes
	graph.Seed(nodes, s.Width, s.Height)
}

func (s *StaticSimulation) Step() bool { return false }

package render

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/sboosali/notegraph/pkg/fisheye"
	"github.com/sboosali/notegraph/pkg/graph"
)

// PositionUpdate carries one node's state from a remote simulation.
type PositionUpdate struct {
	Name string  `json:"name"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	VX   float64 `json:"vx"`
	VY   float64 `json:"vy"`
}

// Driver recomputes visual attributes from live node state.
// A Driver is not safe for concurrent use.
type Driver struct {
	lens   *fisheye.Lens
	sim    Simulation
	logger *log.Logger

	graph *graph.Graph
}

// NewDriver returns a driver with an empty graph. A nil lens gets the
// defaults; a nil simulation never moves anything.
func NewDriver(lens *fisheye.Lens, sim Simulation, logger *log.Logger) *Driver {
	if lens == nil {
		lens = fisheye.NewLens()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Driver{lens: lens, sim: sim, logger: logger, graph: graph.New(nil, nil)}
}

// Lens returns the driver's lens.
func (d *Driver) Lens() *fisheye.Lens { return d.lens }

// Graph returns the live graph.
func (d *Driver) Graph() *graph.Graph { return d.graph }

// Load replaces the live graph and hands it to the simulation.
func (d *Driver) Load(g *graph.Graph) {
	if g == nil {
		g = graph.New(nil, nil)
	}
	d.graph = g
	if d.sim != nil {
		d.sim.Load(g.Nodes, g.Links)
	}
}

// Tick distorts every node through the lens, then derives link geometry
// from the already distorted endpoints.
func (d *Driver) Tick() Frame {
	f := Frame{
		Focus: d.lens.Focus,
		Nodes: make([]NodeAttrs, len(d.graph.Nodes)),
		Links: make([]LinkAttrs, len(d.graph.Links)),
	}

	for i, n := range d.graph.Nodes {
		n.Distorted = d.lens.Apply(n.Position)
		f.Nodes[i] = NodeAttrs{
			Name:     n.Name,
			Text:     n.DisplayLabel(),
			X:        n.Distorted.X,
			Y:        n.Distorted.Y,
			FontSize: n.Distorted.Scale * FontScale,
			Pinned:   n.Fixed,
		}
	}

	for i, l := range d.graph.Links {
		f.Links[i] = LinkAttrs{
			ID:          l.ID(),
			Source:      l.Source.Name,
			Target:      l.Target.Name,
			Relation:    l.Relation,
			Lineno:      l.Lineno,
			X1:          l.Source.Distorted.X,
			Y1:          l.Source.Distorted.Y,
			X2:          l.Target.Distorted.X,
			Y2:          l.Target.Distorted.Y,
			StrokeWidth: l.Scale() * StrokeScale,
		}
	}
	return f
}

// MoveFocus moves the lens to the pointer and re-ticks.
func (d *Driver) MoveFocus(x, y float64) Frame {
	d.lens.SetFocus(x, y)
	return d.Tick()
}

// Step advances the simulation once and re-ticks. The boolean reports
// whether the simulation is still moving.
func (d *Driver) Step() (Frame, bool) {
	moving := false
	if d.sim != nil {
		moving = d.sim.Step()
	}
	return d.Tick(), moving
}

// Settle steps the simulation until it stops or maxSteps is reached, and
// returns the final frame and the number of steps taken.
func (d *Driver) Settle(maxSteps int) (Frame, int) {
	steps := 0
	for d.sim != nil && steps < maxSteps && d.sim.Step() {
		steps++
	}
	return d.Tick(), steps
}

// Apply copies positions from a remote simulation onto live nodes by name.
// Pinned nodes keep their position; unknown names are skipped. It returns
// the number of nodes updated.
func (d *Driver) Apply(updates []PositionUpdate) int {
	applied := 0
	for _, u := range updates {
		n, ok := d.graph.Node(u.Name)
		if !ok {
			d.logger.Debug("position update for unknown node", "name", u.Name)
			continue
		}
		if n.Fixed {
			continue
		}
		n.Position = graph.Point{X: u.X, Y: u.Y}
		n.Velocity = graph.Velocity{VX: u.VX, VY: u.VY}
		applied++
	}
	return applied
}

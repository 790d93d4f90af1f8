// Package render drives the per-tick conversion of live graph state into
// visual attributes.
//
// # Overview
//
// Every simulation step and every pointer move produces a [Frame]: for each
// node its distorted position and label size, for each link its distorted
// endpoints and stroke width. The [Driver] owns the fisheye lens and the
// live node and link collections; it recomputes everything on each
// [Driver.Tick], so a tick is idempotent for unchanged inputs.
//
//	d := render.NewDriver(fisheye.NewLens(), render.NewStaticSimulation(800, 600), nil)
//	d.Load(g)
//	frame := d.MoveFocus(120, 80)
//
// # Simulation
//
// The force integrator is not part of this package. A [Simulation] is fed
// the live collections and moves nodes in place; [StaticSimulation] only
// places nodes that have no position yet. Remote simulations push
// positions through [Driver.Apply].
//
// # Snapshots
//
// The [nodelink] subpackage renders a frame to SVG with Graphviz; [ToPDF]
// and [ToPNG] convert that SVG further with rsvg-convert.
//
// [nodelink]: github.com/sboosali/notegraph/pkg/render/nodelink
package render

// Package nodelink renders a frame of the relation graph as a static
// node-link diagram.
//
// # Overview
//
// A [render.Frame] already holds distorted positions, label sizes and stroke
// widths. [ToDOT] turns it into Graphviz DOT with every node pinned at its
// frame position, and [RenderSVG] lays it out with neato, which keeps
// pinned positions, so the snapshot looks like the live view at that tick.
//
//	frame := driver.Tick()
//	dot := nodelink.ToDOT(frame, nodelink.Options{Relations: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Pinned nodes are drawn filled so they stand out from free ones.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink

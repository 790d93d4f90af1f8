package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/sboosali/notegraph/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Relations labels each edge with its relation name.
	Relations bool

	// Unit converts frame coordinates to Graphviz points. Zero means 1.
	Unit float64
}

// ToDOT converts a frame to Graphviz DOT. Node positions are pinned, and the
// y axis is flipped because Graphviz grows upwards.
func ToDOT(f render.Frame, opts Options) string {
	unit := opts.Unit
	if unit <= 0 {
		unit = 1
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  overlap=true;\n")
	buf.WriteString("  node [shape=plaintext, fontname=\"Helvetica\"];\n")
	buf.WriteString("  edge [arrowsize=0.6, color=\"#888888\", fontname=\"Helvetica\", fontsize=10];\n")
	buf.WriteString("\n")

	for _, n := range f.Nodes {
		attrs := fmtNodeAttrs(n, unit)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.Name, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, l := range f.Links {
		attrs := fmtLinkAttrs(l, opts.Relations)
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", l.Source, l.Target, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtNodeAttrs(n render.NodeAttrs, unit float64) []string {
	attrs := []string{
		fmt.Sprintf("label=%q", n.Text),
		fmt.Sprintf("pos=%q", fmtPos(n.X*unit, n.Y*unit)),
		fmt.Sprintf("fontsize=%s", fmtFloat(n.FontSize)),
	}
	if n.Pinned {
		attrs = append(attrs, "shape=box", "style=\"rounded,filled\"", "fillcolor=\"#ffe9a8\"")
	}
	return attrs
}

func fmtLinkAttrs(l render.LinkAttrs, relations bool) []string {
	attrs := []string{
		fmt.Sprintf("id=%q", l.ID),
		fmt.Sprintf("penwidth=%s", fmtFloat(l.StrokeWidth/render.StrokeScale)),
	}
	if relations {
		attrs = append(attrs, fmt.Sprintf("label=%q", l.Relation))
	}
	return attrs
}

func fmtPos(x, y float64) string {
	y = -y
	if y == 0 {
		y = 0
	}
	return fmtFloat(x) + "," + fmtFloat(y) + "!"
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// RenderSVG lays out a DOT graph with neato and renders it to SVG.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}

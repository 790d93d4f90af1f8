package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/sboosali/notegraph/pkg/render"
)

func sampleFrame() render.Frame {
	return render.Frame{
		Nodes: []render.NodeAttrs{
			{Name: "alice", Text: "Alice", X: 10, Y: 20, FontSize: 30},
			{Name: "bob", Text: "bob", X: 100, Y: 0, FontSize: 45, Pinned: true},
		},
		Links: []render.LinkAttrs{{
			ID: "alice___knows___bob", Source: "alice", Target: "bob", Relation: "knows",
			X1: 10, Y1: 20, X2: 100, Y2: 0, StrokeWidth: 15,
		}},
	}
}

func TestToDOT_Basic(t *testing.T) {
	dot := ToDOT(sampleFrame(), Options{})

	for _, want := range []string{
		"digraph G",
		"layout=neato",
		`"alice" [label="Alice", pos="10.00,-20.00!", fontsize=30.00]`,
		`"alice" -> "bob"`,
		`id="alice___knows___bob"`,
		"penwidth=1.50",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q in:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, `label="knows"`) {
		t.Error("relation label should be off by default")
	}
}

func TestToDOT_Relations(t *testing.T) {
	dot := ToDOT(sampleFrame(), Options{Relations: true})
	if !strings.Contains(dot, `label="knows"`) {
		t.Error("ToDOT() missing relation label")
	}
}

func TestToDOT_Unit(t *testing.T) {
	dot := ToDOT(sampleFrame(), Options{Unit: 2})
	if !strings.Contains(dot, `pos="20.00,-40.00!"`) {
		t.Errorf("unit not applied:\n%s", dot)
	}
}

func TestFmtNodeAttrs_Pinned(t *testing.T) {
	attrs := fmtNodeAttrs(render.NodeAttrs{Name: "bob", Text: "bob", Pinned: true}, 1)
	joined := strings.Join(attrs, " ")
	if !strings.Contains(joined, "filled") {
		t.Errorf("pinned node not filled: %v", attrs)
	}
	if !strings.Contains(joined, `pos="0.00,0.00!"`) {
		t.Errorf("origin should not print negative zero: %v", attrs)
	}

	free := fmtNodeAttrs(render.NodeAttrs{Name: "a", Text: "a"}, 1)
	if len(free) != 3 {
		t.Errorf("free node should have 3 attrs, got %d: %v", len(free), free)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	tests := []struct {
		name string
		svg  string
		want string
	}{
		{
			name: "with viewBox",
			svg:  `<svg viewBox="10 20 800 600" xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 800.00 600.00" width="800" height="600">content</svg>`,
		},
		{
			name: "no viewBox",
			svg:  `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
		},
		{
			name: "zero dimensions",
			svg:  `<svg viewBox="0 0 0 0">content</svg>`,
			want: `<svg viewBox="0 0 0 0">content</svg>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeViewBox([]byte(tt.svg))
			if string(got) != tt.want {
				t.Errorf("normalizeViewBox() = %q, want %q", string(got), tt.want)
			}
		})
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(sampleFrame(), Options{Relations: true}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("RenderSVG() output missing <svg> tag")
	}
}

func TestRenderSVG_InvalidDOT(t *testing.T) {
	_, err := RenderSVG(context.Background(), `not valid DOT {{{`)
	if err == nil {
		t.Error("RenderSVG() should return error for invalid DOT")
	}
}

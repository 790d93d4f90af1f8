package interact

import (
	"testing"

	"github.com/sboosali/notegraph/pkg/graph"
	"github.com/sboosali/notegraph/pkg/merge"
	"github.com/sboosali/notegraph/pkg/render"
	"github.com/sboosali/notegraph/pkg/textloc"
)

const notes = "alice knows bob\nbob trusts carol"

type recorder struct {
	redraws []string
	queries []string
}

func (r *recorder) Redraw(notes string) { r.redraws = append(r.redraws, notes) }
func (r *recorder) Query(q string)      { r.queries = append(r.queries, q) }

type fixture struct {
	c       *Controller
	buf     *TextBuffer
	show    *Label
	query   *Label
	actions *recorder
	g       *graph.Graph
	engine  *merge.Engine
	driver  *render.Driver
}

func parsed() ([]*graph.Node, []graph.RawLink) {
	nodes := []*graph.Node{{Name: "alice"}, {Name: "bob"}, {Name: "carol"}}
	links := []graph.RawLink{
		{Source: graph.NameEndpoint("alice"), Target: graph.NameEndpoint("bob"), Name: "knows", Lineno: 0},
		{Source: graph.NameEndpoint("bob"), Target: graph.NameEndpoint("carol"), Name: "trusts", Lineno: 1},
	}
	return nodes, links
}

func (f *fixture) draw(t *testing.T) {
	t.Helper()
	nodes, links := parsed()
	g, err := graph.Resolve(f.engine.Merge(nodes), links)
	if err != nil {
		t.Fatal(err)
	}
	f.g = g
	f.driver.Load(g)
	f.driver.Tick()
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	f := &fixture{
		buf:     NewTextBuffer(notes),
		show:    NewLabel(""),
		query:   NewLabel(""),
		actions: &recorder{},
		engine:  merge.New(nil, merge.Options{}),
		driver:  render.NewDriver(nil, render.NewStaticSimulation(800, 600), nil),
	}
	f.c = New(Widgets{Notes: f.buf, Show: f.show, Query: f.query}, f.driver, f.actions, opts)
	f.draw(t)
	return f
}

func (f *fixture) link(t *testing.T, id string) *graph.Link {
	t.Helper()
	l, ok := f.g.Link(id)
	if !ok {
		t.Fatalf("link %s missing", id)
	}
	return l
}

func (f *fixture) node(t *testing.T, name string) *graph.Node {
	t.Helper()
	n, ok := f.g.Node(name)
	if !ok {
		t.Fatalf("node %s missing", name)
	}
	return n
}

func TestHoverLinkSelectsLine(t *testing.T) {
	f := newFixture(t, Options{})

	f.c.EnterLink(f.link(t, "bob___trusts___carol"))

	if got := f.show.Text(); got != "bob trusts carol" {
		t.Errorf("display = %q, want %q", got, "bob trusts carol")
	}
	if got := f.buf.Caret(); got != (textloc.Range{Start: 16, End: 32}) {
		t.Errorf("caret = %v, want the whole second line", got)
	}
	if got := f.buf.Selected(); got != "bob trusts carol" {
		t.Errorf("selected = %q", got)
	}

	f.c.Leave()
	if f.show.Text() != "" {
		t.Errorf("display after leave = %q, want initial text", f.show.Text())
	}
	if f.buf.Caret() != (textloc.Range{}) {
		t.Errorf("caret after leave = %v, want empty", f.buf.Caret())
	}
}

func TestClickLinkIsSticky(t *testing.T) {
	f := newFixture(t, Options{})

	f.c.ClickLink(f.link(t, "alice___knows___bob"))
	f.c.EnterLink(f.link(t, "bob___trusts___carol"))
	f.c.Leave()

	if got := f.show.Text(); got != "alice knows bob" {
		t.Errorf("display = %q, want sticky text", got)
	}
	if got := f.buf.Caret(); got != (textloc.Range{Start: 0, End: 15}) {
		t.Errorf("caret = %v, want sticky range", got)
	}
	if len(f.actions.queries) != 0 {
		t.Error("query issued without QueryOnClick")
	}
}

func TestClickLinkQueries(t *testing.T) {
	f := newFixture(t, Options{QueryOnClick: true})
	f.c.ClickLink(f.link(t, "bob___trusts___carol"))

	if len(f.actions.queries) != 1 || f.actions.queries[0] != "bob trusts carol" {
		t.Errorf("queries = %v", f.actions.queries)
	}
}

func TestHoverNode(t *testing.T) {
	f := newFixture(t, Options{})
	f.c.EnterNode(f.node(t, "alice"))
	if f.show.Text() != "alice" {
		t.Errorf("display = %q", f.show.Text())
	}
	f.c.Leave()
	if f.show.Text() != "" {
		t.Errorf("display after leave = %q", f.show.Text())
	}
}

func TestNodeShowsLabel(t *testing.T) {
	f := newFixture(t, Options{})
	alice := f.node(t, "alice")
	alice.Label = "Alice"

	f.c.EnterNode(alice)
	if f.show.Text() != "Alice" {
		t.Errorf("hover display = %q, want the label", f.show.Text())
	}
	f.c.ClickNode(alice)
	f.c.EnterNode(f.node(t, "bob"))
	f.c.Leave()
	if f.show.Text() != "Alice" {
		t.Errorf("sticky display = %q, want the label", f.show.Text())
	}
	frame := f.driver.Tick()
	if a, _ := frame.Node("alice"); a.Text != f.show.Text() {
		t.Errorf("frame text %q differs from display %q", a.Text, f.show.Text())
	}
}

func TestClickNodePinSurvivesRedraw(t *testing.T) {
	f := newFixture(t, Options{})
	carol := f.node(t, "carol")
	pos := carol.Position

	f.c.ClickNode(carol)
	if !carol.Fixed || f.c.Sticky() != "carol" || f.show.Text() != "carol" {
		t.Fatalf("click did not pin: fixed=%v sticky=%q", carol.Fixed, f.c.Sticky())
	}
	frame := f.driver.Tick()
	if a, _ := frame.Node("carol"); !a.Pinned {
		t.Error("frame does not mark carol pinned")
	}

	f.draw(t)
	carol = f.node(t, "carol")
	if !carol.Fixed {
		t.Error("pin lost across redraw")
	}
	if carol.Position != pos {
		t.Errorf("pinned node moved: %v -> %v", pos, carol.Position)
	}

	f.c.Unpin(carol)
	if carol.Fixed {
		t.Error("Unpin did not release")
	}
}

func TestOutOfRangeLinkLeavesSelection(t *testing.T) {
	f := newFixture(t, Options{})
	f.c.ClickLink(f.link(t, "bob___trusts___carol"))
	before := f.buf.Caret()

	a, b := f.node(t, "alice"), f.node(t, "bob")
	stray := &graph.Link{Source: a, Target: b, Relation: "knows", Lineno: 99}
	f.c.EnterLink(stray)

	if f.buf.Caret() != before {
		t.Errorf("caret = %v, want unchanged %v", f.buf.Caret(), before)
	}
	if saved, _ := f.c.Selection().Saved(); saved != before {
		t.Errorf("sticky range = %v, want unchanged", saved)
	}
}

func TestShiftEnterChord(t *testing.T) {
	tests := []struct {
		name        string
		focus       Region
		keys        func(c *Controller) bool
		wantRedraws int
		wantQueries int
	}{
		{
			name:  "ShiftThenEnterInNotes",
			focus: RegionNotes,
			keys: func(c *Controller) bool {
				c.KeyDown(KeyShift, ModShift)
				return c.KeyDown(KeyEnter, ModShift)
			},
			wantRedraws: 1,
		},
		{
			name:  "EnterAloneDoesNothing",
			focus: RegionNotes,
			keys: func(c *Controller) bool {
				return c.KeyDown(KeyEnter, 0)
			},
		},
		{
			name:  "ReleasedEnterDoesNothing",
			focus: RegionNotes,
			keys: func(c *Controller) bool {
				c.KeyDown(KeyEnter, 0)
				c.KeyUp(KeyEnter, 0)
				return c.KeyDown(KeyShift, ModShift)
			},
		},
		{
			name:  "QueryRegion",
			focus: RegionQuery,
			keys: func(c *Controller) bool {
				return c.KeyDown(KeyEnter, ModShift)
			},
			wantQueries: 1,
		},
		{
			name:  "NoFocusRedraws",
			focus: RegionNone,
			keys: func(c *Controller) bool {
				return c.KeyDown(KeyEnter, ModShift|ModCtrl)
			},
			wantRedraws: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, Options{})
			f.query.SetText("who does bob trust")
			f.c.SetFocus(tt.focus)

			fired := tt.keys(f.c)
			if fired != (tt.wantRedraws+tt.wantQueries > 0) {
				t.Errorf("fired = %v", fired)
			}
			if len(f.actions.redraws) != tt.wantRedraws {
				t.Errorf("redraws = %d, want %d", len(f.actions.redraws), tt.wantRedraws)
			}
			if len(f.actions.queries) != tt.wantQueries {
				t.Errorf("queries = %d, want %d", len(f.actions.queries), tt.wantQueries)
			}
			if tt.wantRedraws > 0 && f.actions.redraws[0] != notes {
				t.Errorf("redraw got %q", f.actions.redraws[0])
			}
			if tt.wantQueries > 0 && f.actions.queries[0] != "who does bob trust" {
				t.Errorf("query got %q", f.actions.queries[0])
			}
		})
	}
}

func TestPressedKeys(t *testing.T) {
	f := newFixture(t, Options{})
	f.c.KeyDown(KeyEscape, 0)
	if !f.c.Pressed(KeyEscape) {
		t.Error("escape should be held")
	}
	f.c.KeyUp(KeyEscape, 0)
	if f.c.Pressed(KeyEscape) {
		t.Error("escape should be released")
	}
}

func TestMovePointer(t *testing.T) {
	f := newFixture(t, Options{})
	bob := f.node(t, "bob")

	frame := f.c.MovePointer(bob.Position.X, bob.Position.Y)
	got, _ := frame.Node("bob")
	if got.FontSize <= render.FontScale {
		t.Errorf("node under pointer font = %v, want magnified", got.FontSize)
	}
}

func TestCaretLine(t *testing.T) {
	f := newFixture(t, Options{})
	f.c.ClickLink(f.link(t, "bob___trusts___carol"))
	if line, err := f.c.CaretLine(); err != nil || line != 1 {
		t.Errorf("CaretLine = %d, %v; want 1", line, err)
	}

	f.buf.SetText("short")
	f.c.NotesChanged()
	if line, err := f.c.CaretLine(); err != nil || line != 0 {
		t.Errorf("CaretLine after edit = %d, %v; want 0", line, err)
	}
}

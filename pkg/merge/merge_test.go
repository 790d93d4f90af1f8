package merge

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/sboosali/notegraph/pkg/graph"
	"github.com/sboosali/notegraph/pkg/observability"
)

func parse(names ...string) []*graph.Node {
	nodes := make([]*graph.Node, len(names))
	for i, n := range names {
		nodes[i] = &graph.Node{Name: n}
	}
	return nodes
}

func TestMergeNewNodesPassThrough(t *testing.T) {
	e := New(nil, Options{})
	fresh := parse("alice", "bob")

	out := e.Merge(fresh)
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	for i := range fresh {
		if out[i] != fresh[i] {
			t.Errorf("out[%d] should be the fresh instance", i)
		}
		if got, _ := e.Index().Get(fresh[i].Name); got != fresh[i] {
			t.Errorf("index entry for %s not stored", fresh[i].Name)
		}
	}
}

func TestMergeCarriesPhysicalState(t *testing.T) {
	e := New(nil, Options{})
	first := e.Merge(parse("alice", "bob"))
	first[0].Position = graph.Point{X: 10, Y: 20}
	first[0].Velocity = graph.Velocity{VX: 1, VY: -1}
	first[1].Fixed = true
	first[1].Distorted = graph.Distorted{X: 3, Y: 4, Scale: 2}

	fresh := []*graph.Node{
		{Name: "bob", Label: "Robert", Position: graph.Point{X: 999, Y: 999}},
		{Name: "alice", Kind: "person", Meta: graph.Metadata{"team": "red"}},
		{Name: "carol"},
	}
	out := e.Merge(fresh)

	if len(out) != 3 {
		t.Fatalf("len = %d, want 3", len(out))
	}
	// Order follows the fresh input.
	if out[0].Name != "bob" || out[1].Name != "alice" || out[2].Name != "carol" {
		t.Fatalf("order = %s,%s,%s", out[0].Name, out[1].Name, out[2].Name)
	}

	bob := out[0]
	if !bob.Fixed {
		t.Error("pin lost across merge")
	}
	if bob.Position != (graph.Point{}) {
		t.Errorf("bob position = %v, want remembered zero position", bob.Position)
	}
	if bob.Label != "Robert" {
		t.Errorf("bob label = %q, want fresh label", bob.Label)
	}
	if bob.Distorted != (graph.Distorted{}) {
		t.Errorf("distorted not reset: %+v", bob.Distorted)
	}

	alice := out[1]
	if alice.Position != (graph.Point{X: 10, Y: 20}) || alice.Velocity != (graph.Velocity{VX: 1, VY: -1}) {
		t.Errorf("alice physical = %v %v", alice.Position, alice.Velocity)
	}
	if alice.Kind != "person" || alice.Meta["team"] != "red" {
		t.Errorf("alice semantic = %q %v", alice.Kind, alice.Meta)
	}

	if out[2] != fresh[2] {
		t.Error("new name should pass through unchanged")
	}

	// The merged nodes are now the index entries.
	for _, n := range out {
		if got, _ := e.Index().Get(n.Name); got != n {
			t.Errorf("index entry for %s is not the merged node", n.Name)
		}
	}
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	e := New(nil, Options{})
	prev := e.Merge(parse("alice"))[0]
	prev.Position = graph.Point{X: 5, Y: 5}

	fresh := &graph.Node{Name: "alice", Label: "A", Meta: graph.Metadata{"k": "v"}}
	out := e.Merge([]*graph.Node{fresh})[0]

	if out == prev || out == fresh {
		t.Fatal("merge of a known name must build a new node")
	}
	if prev.Label != "" {
		t.Error("previous node mutated")
	}
	if fresh.Position != (graph.Point{}) {
		t.Error("fresh node mutated")
	}
	out.Meta["k"] = "changed"
	if fresh.Meta["k"] != "v" {
		t.Error("meta map shared with fresh node")
	}
}

func TestMergeIdempotent(t *testing.T) {
	e := New(nil, Options{})
	live := e.Merge(parse("a", "b", "c"))
	for i, n := range live {
		n.Position = graph.Point{X: float64(i) * 10, Y: float64(i)}
		n.Fixed = i == 1
	}

	once := e.Merge(parse("a", "b", "c"))
	twice := e.Merge(parse("a", "b", "c"))

	for i := range once {
		if once[i].Position != twice[i].Position || once[i].Velocity != twice[i].Velocity || once[i].Fixed != twice[i].Fixed {
			t.Errorf("node %s: %+v then %+v", once[i].Name, once[i], twice[i])
		}
		if once[i].Position != live[i].Position {
			t.Errorf("node %s drifted: %v -> %v", once[i].Name, live[i].Position, once[i].Position)
		}
	}
}

func TestMergeClickPinSurvivesRedraw(t *testing.T) {
	e := New(nil, Options{})
	nodes := e.Merge(parse("alice", "bob", "carol"))
	nodes[1].Fixed = true
	nodes[1].Position = graph.Point{X: 42, Y: 7}

	nodes = e.Merge(parse("alice", "bob", "carol", "dave"))
	if !nodes[1].Fixed || nodes[1].Position != (graph.Point{X: 42, Y: 7}) {
		t.Errorf("bob after redraw = %+v", nodes[1])
	}
}

func TestMergeDuplicateNamesLastWins(t *testing.T) {
	var buf bytes.Buffer
	e := New(nil, Options{Logger: log.New(&buf)})

	a1 := &graph.Node{Name: "a", Label: "first"}
	a2 := &graph.Node{Name: "a", Label: "second"}
	out := e.Merge([]*graph.Node{a1, a2})

	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	if got, _ := e.Index().Get("a"); got.Label != "second" {
		t.Errorf("index label = %q, want second", got.Label)
	}
	if !strings.Contains(buf.String(), "duplicate node name") {
		t.Errorf("expected duplicate warning, log = %q", buf.String())
	}
}

func TestMergePrune(t *testing.T) {
	e := New(nil, Options{PruneAfter: 2})
	nodes := e.Merge(parse("a", "b"))
	nodes[1].Fixed = true

	e.Merge(parse("a"))
	if _, ok := e.Index().Get("b"); !ok {
		t.Fatal("b pruned too early")
	}

	_, stats := e.MergeContext(context.Background(), parse("a"))
	if len(stats.Pruned) != 1 || stats.Pruned[0] != "b" {
		t.Fatalf("pruned = %v, want [b]", stats.Pruned)
	}

	// b comes back with no memory of its pin.
	back := e.Merge(parse("a", "b"))
	if back[1].Fixed {
		t.Error("pruned name should not carry state")
	}
}

func TestMergeInfiniteMemory(t *testing.T) {
	e := New(nil, Options{})
	nodes := e.Merge(parse("a", "b"))
	nodes[1].Position = graph.Point{X: 1, Y: 2}

	for range 10 {
		e.Merge(parse("a"))
	}
	back := e.Merge(parse("a", "b"))
	if back[1].Position != (graph.Point{X: 1, Y: 2}) {
		t.Errorf("b position = %v, want remembered", back[1].Position)
	}
}

func TestMergeEmitsHook(t *testing.T) {
	hooks := &recordingDrawHooks{}
	observability.SetDrawHooks(hooks)
	defer observability.Reset()

	e := New(nil, Options{})
	e.Merge(parse("a", "b"))
	e.Merge(parse("a", "c"))

	if hooks.merges != 2 {
		t.Fatalf("OnMerge calls = %d, want 2", hooks.merges)
	}
	if hooks.fresh != 2 || hooks.carried != 1 {
		t.Errorf("last merge fresh=%d carried=%d, want 2/1", hooks.fresh, hooks.carried)
	}
}

func TestCombineRuleTable(t *testing.T) {
	prev := &graph.Node{
		Name: "x", Label: "old", Kind: "old", Meta: graph.Metadata{"old": true},
		Position: graph.Point{X: 1, Y: 2}, Velocity: graph.Velocity{VX: 3, VY: 4}, Fixed: true,
		Distorted: graph.Distorted{X: 5, Y: 6, Scale: 7},
	}
	fresh := &graph.Node{
		Name: "x", Label: "new", Kind: "new", Meta: graph.Metadata{"new": true},
		Position: graph.Point{X: 9, Y: 9}, Velocity: graph.Velocity{VX: 9, VY: 9},
		Distorted: graph.Distorted{X: 9, Y: 9, Scale: 9},
	}

	got := Combine(prev, fresh)
	want := &graph.Node{
		Name: "x", Label: "new", Kind: "new", Meta: graph.Metadata{"new": true},
		Position: prev.Position, Velocity: prev.Velocity, Fixed: true,
	}
	if got.Name != want.Name || got.Label != want.Label || got.Kind != want.Kind ||
		got.Position != want.Position || got.Velocity != want.Velocity ||
		got.Fixed != want.Fixed || got.Distorted != want.Distorted || got.Meta["new"] != true {
		t.Errorf("Combine = %+v, want %+v", got, want)
	}

	for _, r := range Rules {
		if r.apply == nil {
			t.Errorf("rule %s has no apply func", r.Field)
		}
	}
}

type recordingDrawHooks struct {
	observability.NoopDrawHooks
	merges, fresh, carried int
}

func (h *recordingDrawHooks) OnMerge(_ context.Context, fresh, carried, _ int) {
	h.merges++
	h.fresh, h.carried = fresh, carried
}

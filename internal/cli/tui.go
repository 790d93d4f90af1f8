package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sboosali/notegraph/pkg/backend"
	"github.com/sboosali/notegraph/pkg/explorer"
	"github.com/sboosali/notegraph/pkg/graph"
	"github.com/sboosali/notegraph/pkg/interact"
	"github.com/sboosali/notegraph/pkg/render"
	"github.com/sboosali/notegraph/pkg/textloc"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)

	caretStyle   = lipgloss.NewStyle().Background(colorCyan).Foreground(lipgloss.Color("0"))
	displayStyle = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
)

// =============================================================================
// ExploreModel - Interactive graph explorer
// =============================================================================

type exploreMode int

const (
	modeBrowse exploreMode = iota
	modeQuery
)

// exploreItem is one selectable row: a link or a node.
type exploreItem struct {
	link *graph.Link
	node *graph.Node
}

// point is where the lens focuses when the item is selected. Links focus
// on their midpoint.
func (it exploreItem) point() graph.Point {
	if it.link != nil {
		s, t := it.link.Source.Position, it.link.Target.Position
		return graph.Point{X: (s.X + t.X) / 2, Y: (s.Y + t.Y) / 2}
	}
	return it.node.Position
}

// resultMsg carries a finished background request into the update loop.
type resultMsg backend.Result

// redrawMsg asks the model to send the notes to the parser.
type redrawMsg struct{}

// waitForResult blocks on the explorer's result channel.
func waitForResult(ch <-chan backend.Result) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return nil
		}
		return resultMsg(r)
	}
}

// ExploreModel is the bubbletea model for `notegraph explore`. Keyboard
// events become controller calls: moving the cursor hovers a relation or
// node, enter clicks it, and ctrl+r is the Shift+Enter redraw chord.
type ExploreModel struct {
	ctx      context.Context
	explorer *explorer.Explorer
	ctl      *interact.Controller

	notes  *interact.TextBuffer
	show   *interact.Label
	query  *interact.Label
	output *interact.Label

	items   []exploreItem
	cursor  int
	frame   render.Frame
	mode    exploreMode
	pending int
	status  string
	err     error

	// onDraw is called after every applied draw, e.g. to save the index.
	onDraw func(*explorer.Explorer)
}

// NewExploreModel creates an explorer model over widgets already wired to
// ctl.
func NewExploreModel(ctx context.Context, ex *explorer.Explorer, ctl *interact.Controller,
	notes *interact.TextBuffer, show, query, output *interact.Label) ExploreModel {
	return ExploreModel{
		ctx:      ctx,
		explorer: ex,
		ctl:      ctl,
		notes:    notes,
		show:     show,
		query:    query,
		output:   output,
	}
}

func (m ExploreModel) Init() tea.Cmd {
	return tea.Batch(
		waitForResult(m.explorer.Results()),
		func() tea.Msg { return redrawMsg{} },
	)
}

func (m ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case redrawMsg:
		m.redraw()
		return m, nil

	case resultMsg:
		m.apply(backend.Result(msg))
		return m, waitForResult(m.explorer.Results())

	case tea.KeyMsg:
		if m.mode == modeQuery {
			return m.updateQuery(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m ExploreModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.hover(m.cursor - 1)
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.hover(m.cursor + 1)
		}
	case "enter":
		m.click()
	case "p":
		m.togglePin()
	case "esc":
		m.ctl.Leave()
	case "ctrl+r", "shift+enter":
		m.redraw()
	case "/":
		m.mode = modeQuery
		m.ctl.SetFocus(interact.RegionQuery)
	}
	return m, nil
}

func (m ExploreModel) updateQuery(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.mode = modeBrowse
		m.ctl.SetFocus(interact.RegionNotes)
	case tea.KeyEnter:
		if m.chord() {
			m.pending++
			m.status = "querying..."
		}
		m.mode = modeBrowse
		m.ctl.SetFocus(interact.RegionNotes)
	case tea.KeyBackspace:
		if q := []rune(m.query.Text()); len(q) > 0 {
			m.query.SetText(string(q[:len(q)-1]))
		}
	case tea.KeySpace:
		m.query.SetText(m.query.Text() + " ")
	case tea.KeyRunes:
		m.query.SetText(m.query.Text() + string(msg.Runes))
	}
	return m, nil
}

// chord presses and releases Enter with Shift held. Terminals rarely
// report Shift+Enter, so other keys stand in for it.
func (m *ExploreModel) chord() bool {
	fired := m.ctl.KeyDown(interact.KeyEnter, interact.ModShift)
	m.ctl.KeyUp(interact.KeyEnter, interact.ModShift)
	return fired
}

func (m *ExploreModel) redraw() {
	m.ctl.SetFocus(interact.RegionNotes)
	if backend.Empty(m.notes.Text()) {
		m.status = "notes are empty"
		return
	}
	if m.chord() {
		m.pending++
		m.status = "drawing..."
	}
}

func (m *ExploreModel) apply(r backend.Result) {
	if m.pending > 0 {
		m.pending--
	}
	if err := m.explorer.Apply(m.ctx, r); err != nil {
		m.err = err
		m.status = r.Kind.String() + " failed"
		return
	}
	m.err = nil
	if r.Skipped {
		return
	}

	switch r.Kind {
	case backend.KindQuery:
		m.status = "query answered"
	default:
		m.refresh()
		g := m.explorer.Graph()
		m.status = fmt.Sprintf("%d nodes · %d links", g.NodeCount(), g.LinkCount())
		if m.onDraw != nil {
			m.onDraw(m.explorer)
		}
	}
}

// refresh rebuilds the item list from the live graph: links in note order,
// then nodes.
func (m *ExploreModel) refresh() {
	g := m.explorer.Graph()
	m.items = nil
	for _, l := range g.Links {
		m.items = append(m.items, exploreItem{link: l})
	}
	for _, n := range g.Nodes {
		m.items = append(m.items, exploreItem{node: n})
	}
	m.cursor = min(m.cursor, max(len(m.items)-1, 0))
	m.frame = m.explorer.Driver().Tick()
}

// hover leaves the current item, enters item i and moves the lens to it.
func (m *ExploreModel) hover(i int) {
	m.ctl.Leave()
	m.cursor = i
	it := m.items[i]
	if it.link != nil {
		m.ctl.EnterLink(it.link)
	} else {
		m.ctl.EnterNode(it.node)
	}
	p := it.point()
	m.frame = m.ctl.MovePointer(p.X, p.Y)
}

func (m *ExploreModel) click() {
	if len(m.items) == 0 {
		return
	}
	it := m.items[m.cursor]
	if it.link != nil {
		m.ctl.ClickLink(it.link)
		m.status = fmt.Sprintf("selected line %d", it.link.Lineno)
	} else {
		m.ctl.ClickNode(it.node)
		m.status = "pinned " + it.node.Name
	}
	m.frame = m.explorer.Driver().Tick()
}

func (m *ExploreModel) togglePin() {
	if len(m.items) == 0 {
		return
	}
	n := m.items[m.cursor].node
	if n == nil {
		return
	}
	if n.Fixed {
		m.ctl.Unpin(n)
		m.status = "unpinned " + n.Name
	} else {
		m.ctl.ClickNode(n)
		m.status = "pinned " + n.Name
	}
	m.frame = m.explorer.Driver().Tick()
}

// =============================================================================
// View
// =============================================================================

func (m ExploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("notegraph"))
	b.WriteString("  ")
	b.WriteString(listDimStyle.Render("↑/↓ hover  ⏎ click  p pin  / query  ctrl+r redraw  q quit"))
	b.WriteString("\n\n")

	b.WriteString(panelStyle.Render(m.viewNotes()))
	b.WriteString("\n")
	b.WriteString(displayStyle.Render(orDefault(m.show.Text(), " ")))
	b.WriteString("\n\n")

	b.WriteString(m.viewItems())
	b.WriteString("\n")

	prompt := listDimStyle.Render("query: ")
	if m.mode == modeQuery {
		prompt = listSelectedStyle.Render("query: ")
	}
	b.WriteString(prompt + m.query.Text())
	if m.mode == modeQuery {
		b.WriteString("█")
	}
	b.WriteString("\n")
	if out := m.output.Text(); out != "" {
		b.WriteString(listNormalStyle.Render(out))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(styleIconError.Render(iconError) + " " + m.err.Error())
	} else if m.status != "" {
		b.WriteString(listDimStyle.Render(m.status))
	}
	return b.String()
}

// viewNotes renders the note text around the caret with the caret range
// highlighted.
func (m ExploreModel) viewNotes() string {
	text := m.notes.Text()
	caret := m.notes.Caret()
	caret.Start = min(caret.Start, len(text))
	caret.End = min(max(caret.End, caret.Start), len(text))

	marked := text[:caret.Start] + caretStyle.Render(text[caret.Start:caret.End]) + text[caret.End:]
	lines := strings.Split(marked, "\n")

	line, err := textloc.LineAt(text, caret.Start)
	if err != nil {
		line = 0
	}
	window := 6
	start := max(min(line-window/2, len(lines)-window), 0)
	end := min(start+window, len(lines))
	return strings.Join(lines[start:end], "\n")
}

// viewItems renders the link table and the node list around the cursor.
func (m ExploreModel) viewItems() string {
	if len(m.items) == 0 {
		if m.pending > 0 {
			return listDimStyle.Render("  waiting for the parser...")
		}
		return listDimStyle.Render("  no graph yet")
	}

	var links []*graph.Link
	var b strings.Builder
	for _, it := range m.items {
		if it.link != nil {
			links = append(links, it.link)
		}
	}
	cursor := -1
	if m.cursor < len(links) {
		cursor = m.cursor
	}
	if len(links) > 0 {
		b.WriteString(linkTable(links, cursor).Render())
		b.WriteString("\n")
	}

	for i := len(links); i < len(m.items); i++ {
		n := m.items[i].node
		marker := "  "
		if i == m.cursor {
			marker = "▸ "
		}
		pin := " "
		if n.Fixed {
			pin = "*"
		}
		size := 0.0
		if attrs, ok := m.frame.Node(n.Name); ok {
			size = attrs.FontSize
		}
		line := fmt.Sprintf("%s%s %-20s %s", marker, pin, n.DisplayLabel(), listDimStyle.Render(fmt.Sprintf("%.0fpx", size)))
		if i == m.cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

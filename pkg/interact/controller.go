// Package interact routes pointer and keyboard events to the rest of the
// explorer: what the display shows, which line of the notes is selected,
// where the fisheye is focused and which nodes are pinned.
//
// The controller is host-agnostic. The terminal explorer and the HTTP
// server both translate their native events into calls on a [Controller].
package interact

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/sboosali/notegraph/pkg/graph"
	"github.com/sboosali/notegraph/pkg/render"
	"github.com/sboosali/notegraph/pkg/textloc"
)

// Widgets are the UI pieces a controller drives.
type Widgets struct {
	Notes Buffer
	Show  Display
	// Query holds the query text. Optional.
	Query Display
}

// Options configures a Controller.
type Options struct {
	// QueryOnClick issues a query with a link's text when it is clicked.
	QueryOnClick bool

	Logger *log.Logger
}

// Controller holds interaction state for one view.
// A Controller is not safe for concurrent use.
type Controller struct {
	w       Widgets
	driver  *render.Driver
	actions Actions
	opts    Options
	logger  *log.Logger

	selection textloc.Selection
	sticky    string
	pressed   pressedKeys
	focus     Region
}

// New returns a controller. The current display text becomes the sticky
// text that hover restores to. actions may be nil if nothing should be
// triggered.
func New(w Widgets, driver *render.Driver, actions Actions, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Controller{
		w:       w,
		driver:  driver,
		actions: actions,
		opts:    opts,
		logger:  logger,
		sticky:  w.Show.Text(),
		pressed: make(pressedKeys),
		focus:   RegionNotes,
	}
}

// Selection returns the controller's caret and sticky range.
func (c *Controller) Selection() *textloc.Selection { return &c.selection }

// Sticky returns the text the display falls back to.
func (c *Controller) Sticky() string { return c.sticky }

// Focus returns the region that owns keyboard focus.
func (c *Controller) Focus() Region { return c.focus }

// SetFocus gives keyboard focus to r.
func (c *Controller) SetFocus(r Region) { c.focus = r }

// EnterNode shows the node's label, the same text the frame draws.
func (c *Controller) EnterNode(n *graph.Node) {
	c.w.Show.SetText(n.DisplayLabel())
}

// EnterLink shows the link as a sentence and selects the line it came from.
func (c *Controller) EnterLink(l *graph.Link) {
	c.w.Show.SetText(l.Verbalize())
	c.selectLine(l.Lineno, false)
}

// Leave restores the sticky display text and selection.
func (c *Controller) Leave() {
	c.w.Show.SetText(c.sticky)
	r, _ := c.selection.Restore()
	c.w.Notes.Select(r)
}

// ClickLink makes the link's sentence and line the sticky state.
func (c *Controller) ClickLink(l *graph.Link) {
	c.sticky = l.Verbalize()
	c.w.Show.SetText(c.sticky)
	c.selectLine(l.Lineno, true)

	if c.opts.QueryOnClick && c.actions != nil {
		c.actions.Query(c.sticky)
	}
}

// ClickNode makes the node's label the sticky text and pins the node.
func (c *Controller) ClickNode(n *graph.Node) {
	c.sticky = n.DisplayLabel()
	c.w.Show.SetText(c.sticky)
	n.Fixed = true
}

// Unpin releases a pinned node.
func (c *Controller) Unpin(n *graph.Node) {
	n.Fixed = false
}

// MovePointer refocuses the fisheye on the pointer and re-ticks.
func (c *Controller) MovePointer(x, y float64) render.Frame {
	return c.driver.MoveFocus(x, y)
}

// KeyDown records k as held and fires the Shift+Enter chord if it is now
// complete. It reports whether the chord fired.
func (c *Controller) KeyDown(k Key, mods Modifiers) bool {
	c.pressed.down(k)
	return c.handleKey(mods)
}

// KeyUp records k as released. The chord can still fire here if Enter
// stays held while another key is released with Shift down.
func (c *Controller) KeyUp(k Key, mods Modifiers) bool {
	c.pressed.up(k)
	return c.handleKey(mods)
}

// Pressed reports whether k is currently held.
func (c *Controller) Pressed(k Key) bool { return c.pressed.held(k) }

func (c *Controller) handleKey(mods Modifiers) bool {
	if !c.pressed.held(KeyEnter) || !mods.Has(ModShift) {
		return false
	}
	if c.actions == nil {
		return true
	}
	if c.focus == RegionQuery && c.w.Query != nil {
		c.actions.Query(c.w.Query.Text())
	} else {
		c.actions.Redraw(c.w.Notes.Text())
	}
	return true
}

// CaretLine returns the line of the notes the caret starts on.
func (c *Controller) CaretLine() (int, error) {
	return textloc.LineAt(c.w.Notes.Text(), c.selection.Caret().Start)
}

// NotesChanged is called after the note text was edited so ranges stay
// inside the text.
func (c *Controller) NotesChanged() {
	c.selection.Clamp(len(c.w.Notes.Text()))
}

func (c *Controller) selectLine(lineno int, sticky bool) {
	if !c.selection.Select(c.w.Notes.Text(), lineno, sticky) {
		c.logger.Debug("line out of range, selection unchanged", "lineno", lineno)
		return
	}
	c.w.Notes.Select(c.selection.Caret())
}

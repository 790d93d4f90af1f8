package interact

// Key is a key code as reported by the host, e.g. a browser keyCode.
type Key int

// Key codes the controller reacts to.
const (
	KeyEnter  Key = 13
	KeyShift  Key = 16
	KeyEscape Key = 27
)

// Modifiers is a bit set of modifier keys held during a key event.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// Has reports whether all of m2 are held.
func (m Modifiers) Has(m2 Modifiers) bool { return m&m2 == m2 }

// Region is the part of the UI that owns keyboard focus.
type Region int

const (
	RegionNone Region = iota
	RegionNotes
	RegionQuery
)

func (r Region) String() string {
	switch r {
	case RegionNotes:
		return "notes"
	case RegionQuery:
		return "query"
	default:
		return "none"
	}
}

// pressedKeys tracks which keys are currently down.
type pressedKeys map[Key]bool

func (p pressedKeys) down(k Key) { p[k] = true }
func (p pressedKeys) up(k Key)   { delete(p, k) }
func (p pressedKeys) held(k Key) bool {
	return p[k]
}

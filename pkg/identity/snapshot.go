package identity

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/sboosali/notegraph/pkg/graph"
)

// snapshotSchema is bumped whenever the encoded layout changes; older
// snapshots are then rejected instead of being misread.
const snapshotSchema uint16 = 1

// snapshot is the msgpack payload of an Index. Distorted is not stored:
// it is recomputed on every tick.
type snapshot struct {
	Schema     uint16          `msgpack:"schema"`
	Generation uint64          `msgpack:"generation"`
	Entries    []snapshotEntry `msgpack:"entries"`
}

type snapshotEntry struct {
	Name     string         `msgpack:"name"`
	Label    string         `msgpack:"label,omitempty"`
	Kind     string         `msgpack:"kind,omitempty"`
	Meta     graph.Metadata `msgpack:"meta,omitempty"`
	Position graph.Point    `msgpack:"position"`
	Velocity graph.Velocity `msgpack:"velocity"`
	Fixed    bool           `msgpack:"fixed,omitempty"`
	LastSeen uint64         `msgpack:"last_seen"`
}

// MarshalBinary encodes the index with msgpack, entries sorted by name.
func (ix *Index) MarshalBinary() ([]byte, error) {
	s := snapshot{Schema: snapshotSchema, Generation: ix.generation}
	for _, name := range ix.Names() {
		e := ix.entries[name]
		s.Entries = append(s.Entries, snapshotEntry{
			Name:     e.node.Name,
			Label:    e.node.Label,
			Kind:     e.node.Kind,
			Meta:     e.node.Meta,
			Position: e.node.Position,
			Velocity: e.node.Velocity,
			Fixed:    e.node.Fixed,
			LastSeen: e.lastSeen,
		})
	}
	return msgpack.Marshal(&s)
}

// UnmarshalBinary replaces the index contents with a snapshot produced by
// MarshalBinary.
func (ix *Index) UnmarshalBinary(data []byte) error {
	var s snapshot
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode index snapshot: %w", err)
	}
	if s.Schema != snapshotSchema {
		return fmt.Errorf("index snapshot schema %d, want %d", s.Schema, snapshotSchema)
	}

	entries := make(map[string]*entry, len(s.Entries))
	for _, se := range s.Entries {
		entries[se.Name] = &entry{
			node: &graph.Node{
				Name:     se.Name,
				Label:    se.Label,
				Kind:     se.Kind,
				Meta:     se.Meta,
				Position: se.Position,
				Velocity: se.Velocity,
				Fixed:    se.Fixed,
			},
			lastSeen: se.LastSeen,
		}
	}
	ix.entries = entries
	ix.generation = s.Generation
	return nil
}

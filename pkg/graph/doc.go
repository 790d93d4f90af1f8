// Package graph provides the relation graph model shared by every notegraph
// component and its JSON wire format.
//
// # Core Types
//
//   - [Node]: a named entity with semantic fields (name, label, kind, meta)
//     and physical fields (position, velocity, fixed) plus the derived
//     fisheye [Distorted] value recomputed on every tick.
//   - [Link]: a directed relation between two live [Node] pointers, tagged
//     with the note line that produced it.
//   - [Graph]: name-unique nodes plus triple-unique links.
//   - [Document]: the raw shape returned by the parser backend, where link
//     endpoints are node array indices or node names.
//
// # Identity
//
// A node is identified by its name. A link is identified by the ordered
// triple (source name, relation, target name), see [Link.ID]. Array order is
// never used as identity: [Resolve] turns index endpoints into names before
// anything else looks at them.
//
// # Live References
//
// After [Resolve], Link.Source and Link.Target point at the very *Node
// instances held in the node slice that was passed in. The render driver
// mutates node state in place and links observe it through these pointers.
//
// # Wire Format
//
// Parser responses look like:
//
//	{
//	  "nodes": [{"name": "alice"}, {"name": "bob"}],
//	  "links": [{"source": 0, "target": 1, "name": "knows", "lineno": 0}]
//	}
//
// Node attributes other than the known ones are collected into Node.Meta, so
// new semantic fields introduced by the parser survive the round trip.
//
// # Concurrency
//
// Graphs are not safe for concurrent mutation. Callers drive them from a
// single event loop.
package graph

// Package pkg provides the core libraries for notegraph, an explorer for the
// relation graph hidden in plain-text notes.
//
// # Overview
//
// A line of notes such as "rust is-a language" names two nodes and the
// relation between them. An external parser service turns the whole note
// buffer into a graph; notegraph keeps that graph stable across redraws and
// shows it through a fisheye lens. The pkg directory is organized into:
//
//  1. [graph], [textloc] - Data model and line/range arithmetic
//  2. [identity], [merge] - Stable node identity across redraws
//  3. [fisheye], [render] - Per-tick display attributes
//  4. [interact], [explorer] - Event routing and the draw loop
//  5. [backend], [httputil], [cache] - The parser client
//  6. [storage], [session], [server], [config] - Infrastructure
//
// # Architecture
//
// The typical data flow through notegraph:
//
//	Note buffer
//	     ↓
//	[backend] package (POST to the parser, cached by note hash)
//	     ↓
//	[merge] package (carry positions and pins through the [identity] index)
//	     ↓
//	[render] package (simulation positions → [fisheye] → frame)
//	     ↓
//	Terminal view, HTTP frame, or SVG/PDF/PNG/DOT/JSON output
//
// # Quick Start
//
// Draw notes and take one frame:
//
//	client, _ := backend.NewClient(backend.Config{BaseURL: "http://127.0.0.1:5000"})
//	ex := explorer.New(ctx, client, explorer.Options{})
//	if _, err := ex.Draw(ctx, "rust is-a language\n"); err != nil {
//	    return err
//	}
//	frame := ex.Driver().Tick()
//
// # Subpackages
//
// Command-line wiring lives in internal/cli; the binary is cmd/notegraph.
//
// [backend]: https://pkg.go.dev/github.com/sboosali/notegraph/pkg/backend
// [cache]: https://pkg.go.dev/github.com/sboosali/notegraph/pkg/cache
// [config]: https://pkg.go.dev/github.com/sboosali/notegraph/pkg/config
// [explorer]: https://pkg.go.dev/github.com/sboosali/notegraph/pkg/explorer
// [fisheye]: https://pkg.go.dev/github.com/sboosali/notegraph/pkg/fisheye
// [graph]: https://pkg.go.dev/github.com/sboosali/notegraph/pkg/graph
// [httputil]: https://pkg.go.dev/github.com/sboosali/notegraph/pkg/httputil
// [identity]: https://pkg.go.dev/github.com/sboosali/notegraph/pkg/identity
// [interact]: https://pkg.go.dev/github.com/sboosali/notegraph/pkg/interact
// [merge]: https://pkg.go.dev/github.com/sboosali/notegraph/pkg/merge
// [render]: https://pkg.go.dev/github.com/sboosali/notegraph/pkg/render
// [server]: https://pkg.go.dev/github.com/sboosali/notegraph/pkg/server
// [session]: https://pkg.go.dev/github.com/sboosali/notegraph/pkg/session
// [storage]: https://pkg.go.dev/github.com/sboosali/notegraph/pkg/storage
// [textloc]: https://pkg.go.dev/github.com/sboosali/notegraph/pkg/textloc
package pkg

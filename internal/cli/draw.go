package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sboosali/notegraph/pkg/backend"
	"github.com/sboosali/notegraph/pkg/cache"
	"github.com/sboosali/notegraph/pkg/config"
	"github.com/sboosali/notegraph/pkg/explorer"
	"github.com/sboosali/notegraph/pkg/graph"
	"github.com/sboosali/notegraph/pkg/session"
	"github.com/sboosali/notegraph/pkg/storage"
)

// =============================================================================
// Workspace
// =============================================================================

// workspace bundles what the drawing commands share. Close releases it.
type workspace struct {
	cfg    *config.Config
	store  storage.Store
	cache  cache.Cache
	client *backend.Client
	index  *session.CLIStore
}

func (c *CLI) openWorkspace(ctx context.Context, noCache bool) (*workspace, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := c.openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	client, ch, err := c.newClient(ctx, cfg, noCache)
	if err != nil {
		store.Close()
		return nil, err
	}
	index, err := session.NewCLIStore("")
	if err != nil {
		store.Close()
		ch.Close()
		return nil, err
	}
	return &workspace{cfg: cfg, store: store, cache: ch, client: client, index: index}, nil
}

func (w *workspace) Close() error {
	return errors.Join(w.cache.Close(), w.store.Close())
}

// drawNotes sends notes to the parser behind a spinner, then saves the
// merged identity index so the next run carries positions and pins.
func (c *CLI) drawNotes(ctx context.Context, ws *workspace, notes string) (*explorer.Explorer, explorer.Stats, error) {
	ex, err := c.newExplorer(ctx, ws.cfg, ws.client, ws.index, nil)
	if err != nil {
		return nil, explorer.Stats{}, err
	}

	stats, err := spin(ctx, "Parsing notes...", func() (explorer.Stats, error) {
		return ex.Draw(ctx, notes)
	})
	if err != nil {
		return nil, explorer.Stats{}, err
	}

	if !backend.Empty(notes) {
		if err := ws.index.Save(ctx, ex.Index()); err != nil {
			c.Logger.Warn("could not save index snapshot", "path", ws.index.Path(), "error", err)
		}
	}
	return ex, stats, nil
}

// =============================================================================
// draw
// =============================================================================

// drawOpts holds the command-line flags for the draw command.
type drawOpts struct {
	output  string // graph JSON output path
	noCache bool   // bypass the draw-response cache
	reset   bool   // forget the saved identity index first
	save    bool   // store the note file as the current notes
	quiet   bool   // skip the relation table
}

// drawCommand creates the draw command.
func (c *CLI) drawCommand() *cobra.Command {
	var opts drawOpts

	cmd := &cobra.Command{
		Use:   "draw [notes-file]",
		Short: "Parse notes into a graph and merge it into the saved state",
		Long: `Draw sends notes to the parser service and merges the graph it returns into
the saved identity index, so nodes keep their positions and pins across runs.

With no file the stored notes are used. Use - to read from stdin.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeNoteFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return c.runDraw(cmd.Context(), path, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the merged graph as JSON")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the draw cache")
	cmd.Flags().BoolVar(&opts.reset, "reset", false, "forget saved positions and pins before drawing")
	cmd.Flags().BoolVar(&opts.save, "save", false, "store the note file as the current notes")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "do not print the relation table")

	return cmd
}

func (c *CLI) runDraw(ctx context.Context, path string, opts drawOpts) error {
	ws, err := c.openWorkspace(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer ws.Close()

	notes, err := readNotes(ctx, ws.store, path)
	if err != nil {
		return err
	}
	if opts.reset {
		if err := ws.index.Reset(ctx); err != nil {
			return err
		}
		c.Logger.Debug("reset index", "path", ws.index.Path())
	}

	if backend.Empty(notes) {
		printWarning("Notes are empty, nothing to draw")
		return nil
	}

	prog := newProgress(c.Logger)
	ex, stats, err := c.drawNotes(ctx, ws, notes)
	if err != nil {
		return err
	}
	prog.done("Merged graph", "nodes", stats.Nodes, "links", stats.Links, "carried", stats.Carried)

	if opts.save && path != "" {
		if err := ws.store.Set(ctx, storage.NotesKey, notes); err != nil {
			return fmt.Errorf("save notes: %w", err)
		}
	}

	printSuccess("Drew %s", notesName(path))
	printStats(stats.Nodes, stats.Links, stats.Carried)
	if len(stats.Pruned) > 0 {
		printDetail("Forgot %d stale names", len(stats.Pruned))
	}

	if opts.output != "" {
		if err := graph.WriteGraphFile(ex.Graph(), opts.output); err != nil {
			return err
		}
		printFile(opts.output)
	}

	if !opts.quiet && ex.Graph().LinkCount() > 0 {
		printNewline()
		printLinks(ex.Graph())
	}
	return nil
}

func notesName(path string) string {
	switch path {
	case "":
		return "stored notes"
	case "-":
		return "stdin"
	default:
		return filepath.Base(path)
	}
}

package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sboosali/notegraph/pkg/explorer"
	"github.com/sboosali/notegraph/pkg/interact"
)

// exploreOpts holds the command-line flags for the explore command.
type exploreOpts struct {
	logFile string // where to log while the TUI owns the terminal
	noCache bool   // bypass the draw-response cache
}

// exploreCommand creates the explore command, an interactive terminal
// explorer over the notes graph.
func (c *CLI) exploreCommand() *cobra.Command {
	var opts exploreOpts

	cmd := &cobra.Command{
		Use:   "explore [notes-file]",
		Short: "Explore the notes graph interactively",
		Long: `Explore draws the notes and opens an interactive view. Moving through the
relations shows each one as a sentence and highlights the line of the notes
it came from; enter makes that selection stick. Enter on a node pins it,
p toggles the pin. ctrl+r redraws, / types a query.

Pins and positions are saved when the explorer exits.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeNoteFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return c.runExplore(cmd.Context(), path, opts)
		},
	}

	cmd.Flags().StringVar(&opts.logFile, "log-file", "", "write logs to this file while exploring")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the draw cache")

	return cmd
}

func (c *CLI) runExplore(ctx context.Context, path string, opts exploreOpts) error {
	ws, err := c.openWorkspace(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer ws.Close()

	text, err := readNotes(ctx, ws.store, path)
	if err != nil {
		return err
	}

	// The TUI owns the terminal; logs go to --log-file or nowhere.
	restore, err := redirectLogs(c.Logger, opts.logFile, os.Stderr)
	if err != nil {
		return err
	}
	defer restore()

	notes := interact.NewTextBuffer(text)
	show := interact.NewLabel("")
	query := interact.NewLabel("")
	output := interact.NewLabel("")

	ex, err := c.newExplorer(ctx, ws.cfg, ws.client, ws.index, output)
	if err != nil {
		return err
	}
	ctl := interact.New(
		interact.Widgets{Notes: notes, Show: show, Query: query},
		ex.Driver(),
		ex,
		interact.Options{QueryOnClick: ws.cfg.Backend.QueryOnClick, Logger: c.Logger},
	)

	model := NewExploreModel(ctx, ex, ctl, notes, show, query, output)
	model.onDraw = func(ex *explorer.Explorer) {
		if err := ws.index.Save(ctx, ex.Index()); err != nil {
			c.Logger.Warn("could not save index snapshot", "error", err)
		}
	}

	final, err := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}

	// Pins made after the last draw live only in memory until now.
	if m, ok := final.(ExploreModel); ok && m.explorer.Graph().NodeCount() > 0 {
		if err := ws.index.Save(ctx, ex.Index()); err != nil {
			return fmt.Errorf("save index: %w", err)
		}
		printSuccess("Saved %d names", ex.Index().Len())
		printDetail("Index: %s", ws.index.Path())
	}
	return nil
}

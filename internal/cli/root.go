package cli

import (
	"github.com/spf13/cobra"

	"github.com/sboosali/notegraph/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// The root's PersistentPreRunE attaches the CLI logger to the command
// context so subcommands can reach it through loggerFromContext. Callers
// that wrap PersistentPreRunE must call the original.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Notegraph explores the relations in your notes as a graph",
		Long: `Notegraph sends plain-text notes to a parser service, merges the graph it
returns into live state and lets you explore it through a fisheye lens.
Hovering or clicking a relation selects the line of the notes it came from.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+configPathHint()+")")

	// Register all subcommands
	root.AddCommand(c.drawCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.locateCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.notesCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sboosali/notegraph/pkg/textloc"
)

// locateCommand creates the locate command, which maps a relation's line
// number to the character range the explorer selects for it.
func (c *CLI) locateCommand() *cobra.Command {
	var offset int

	cmd := &cobra.Command{
		Use:   "locate [notes-file] <line>",
		Short: "Print the character range of a line of the notes",
		Long: `Locate prints the range [start, end) the explorer selects when a relation
from the given line is hovered. Lines are numbered from 0 and the range
excludes the trailing newline.

With --offset the command works the other way and prints the line holding
a character offset.`,
		Example: `  notegraph locate notes.txt 1
  notegraph locate 3
  notegraph locate notes.txt --offset 20`,
		Args: cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("offset") {
				if len(args) > 1 {
					return fmt.Errorf("--offset takes at most a notes file")
				}
				path := ""
				if len(args) == 1 {
					path = args[0]
				}
				return c.runLocateOffset(cmd.Context(), path, offset)
			}

			if len(args) == 0 {
				return fmt.Errorf("a line number or --offset is required")
			}
			line, err := strconv.Atoi(args[len(args)-1])
			if err != nil {
				return fmt.Errorf("invalid line %q", args[len(args)-1])
			}
			path := ""
			if len(args) == 2 {
				path = args[0]
			}
			return c.runLocate(cmd.Context(), path, line)
		},
	}

	cmd.Flags().IntVar(&offset, "offset", 0, "print the line holding this character offset")

	return cmd
}

func (c *CLI) notesFor(ctx context.Context, path string) (string, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return "", err
	}
	store, err := c.openStore(ctx, cfg)
	if err != nil {
		return "", err
	}
	defer store.Close()
	return readNotes(ctx, store, path)
}

func (c *CLI) runLocate(ctx context.Context, path string, line int) error {
	notes, err := c.notesFor(ctx, path)
	if err != nil {
		return err
	}
	r, err := textloc.Locate(notes, line)
	if err != nil {
		return err
	}
	printKeyValue("Line", strconv.Itoa(line))
	printKeyValue("Range", fmt.Sprintf("[%d, %d)", r.Start, r.End))
	printKeyValue("Text", r.Slice(notes))
	return nil
}

func (c *CLI) runLocateOffset(ctx context.Context, path string, offset int) error {
	notes, err := c.notesFor(ctx, path)
	if err != nil {
		return err
	}
	line, err := textloc.LineAt(notes, offset)
	if err != nil {
		return err
	}
	r, err := textloc.Locate(notes, line)
	if err != nil {
		return err
	}
	printKeyValue("Offset", strconv.Itoa(offset))
	printKeyValue("Line", strconv.Itoa(line))
	printKeyValue("Text", r.Slice(notes))
	return nil
}

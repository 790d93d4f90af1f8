package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sboosali/notegraph/pkg/backend"
	"github.com/sboosali/notegraph/pkg/render"
	"github.com/sboosali/notegraph/pkg/render/nodelink"
)

const (
	formatSVG  = "svg"
	formatPDF  = "pdf"
	formatPNG  = "png"
	formatDOT  = "dot"
	formatJSON = "json"

	defaultOutput = "notegraph" // base name when drawing stored notes
	defaultScale  = 2.0         // PNG resolution multiplier
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string   // output file path (or base path for multiple outputs)
	formats   []string // output formats: "svg", "pdf", "png", "dot", "json"
	focus     string   // fisheye focus as "x,y"; empty keeps the default
	relations bool     // label edges with their relation
	scale     float64  // PNG scale
	noCache   bool     // bypass the draw-response cache
}

// renderCommand creates the render command for writing a snapshot of the
// explorer view.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{relations: true, scale: defaultScale}

	cmd := &cobra.Command{
		Use:   "render [notes-file]",
		Short: "Draw notes and render the fisheye view to SVG, PDF or PNG",
		Long: `Render draws the notes like the draw command, ticks the view once with the
lens at --focus and writes the frame as a node-link diagram.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeNoteFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return c.runRender(cmd.Context(), path, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), pdf, png, dot, json (comma-separated)")
	cmd.Flags().StringVar(&opts.focus, "focus", "", "fisheye focus as x,y")
	cmd.Flags().BoolVar(&opts.relations, "relations", opts.relations, "label edges with their relation")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the draw cache")
	cmd.RegisterFlagCompletionFunc("format", completeFormats)

	return cmd
}

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{formatSVG: true, formatPDF: true, formatPNG: true, formatDOT: true, formatJSON: true}

// validateFormats checks that all requested formats are valid.
func validateFormats(formats []string) error {
	for _, f := range formats {
		if !validFormats[f] {
			return fmt.Errorf("invalid format: %s (must be 'svg', 'pdf', 'png', 'dot' or 'json')", f)
		}
	}
	return nil
}

// parseFocus parses "x,y".
func parseFocus(s string) (x, y float64, err error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("invalid focus %q (want x,y)", s)
	}
	if x, err = strconv.ParseFloat(strings.TrimSpace(xs), 64); err != nil {
		return 0, 0, fmt.Errorf("invalid focus x: %w", err)
	}
	if y, err = strconv.ParseFloat(strings.TrimSpace(ys), 64); err != nil {
		return 0, 0, fmt.Errorf("invalid focus y: %w", err)
	}
	return x, y, nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .pdf, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		if input == "" || input == "-" {
			return defaultOutput
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if validFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPath returns where format is written.
func outputPath(opts *renderOpts, input, format string) string {
	if opts.output != "" && len(opts.formats) == 1 {
		return opts.output
	}
	return basePath(opts.output, input) + "." + format
}

func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	var fx, fy float64
	hasFocus := opts.focus != ""
	if hasFocus {
		var err error
		if fx, fy, err = parseFocus(opts.focus); err != nil {
			return err
		}
	}

	ws, err := c.openWorkspace(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer ws.Close()

	notes, err := readNotes(ctx, ws.store, input)
	if err != nil {
		return err
	}
	if backend.Empty(notes) {
		printWarning("Notes are empty, nothing to render")
		return nil
	}
	ex, stats, err := c.drawNotes(ctx, ws, notes)
	if err != nil {
		return err
	}
	printStats(stats.Nodes, stats.Links, stats.Carried)

	frame := ex.Driver().Tick()
	if hasFocus {
		frame = ex.Driver().MoveFocus(fx, fy)
	}
	logger.Debugf("Rendering frame focused at (%.1f, %.1f)", frame.Focus.X, frame.Focus.Y)

	for _, format := range opts.formats {
		data, err := renderFrame(ctx, frame, format, opts)
		if err != nil {
			return fmt.Errorf("render %s: %w", format, err)
		}
		path := outputPath(opts, input, format)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
		printFile(path)
	}
	printSuccess("Rendered %d file(s)", len(opts.formats))
	return nil
}

// renderFrame encodes one frame in the given format.
func renderFrame(ctx context.Context, f render.Frame, format string, opts *renderOpts) ([]byte, error) {
	if format == formatJSON {
		return json.MarshalIndent(f, "", "  ")
	}

	dot := nodelink.ToDOT(f, nodelink.Options{Relations: opts.relations})
	switch format {
	case formatDOT:
		return []byte(dot), nil
	case formatSVG:
		return nodelink.RenderSVG(ctx, dot)
	case formatPDF:
		return nodelink.RenderPDF(ctx, dot)
	case formatPNG:
		return nodelink.RenderPNG(ctx, dot, opts.scale)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

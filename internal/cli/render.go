package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/railcdl/pkg/errors"
	"github.com/matzehuels/railcdl/pkg/render/nodelink"
)

// renderOpts holds the diagram flags of the render command.
type renderOpts struct {
	formats    string
	engine     string
	output     string
	detailed   bool
	edgeLabels bool
	positions  bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags analysisFlags
		opts  renderOpts
	)

	cmd := &cobra.Command{
		Use:   "render [station]",
		Short: "Draw the analysed station as DOT, SVG or PNG",
		Long: `Draw the analysed station as DOT, SVG or PNG.

Nodes are coloured by kind, CDL zones are highlighted and every placed signal
is attached to the node it stands at. With --positions the station's
coordinates are kept and the neato engine is selected.

Examples:
  railcdl render station.yaml
  railcdl render station.xml -f svg,png -o diagrams/station
  railcdl render station.json -f dot --edge-labels`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], flags, opts)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), png, dot (comma-separated)")
	cmd.Flags().StringVar(&opts.engine, "engine", "", "graphviz layout engine: dot (default), neato")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show node kinds in labels")
	cmd.Flags().BoolVar(&opts.edgeLabels, "edge-labels", false, "label edges with their length")
	cmd.Flags().BoolVar(&opts.positions, "positions", false, "pin nodes to their station coordinates")

	return cmd
}

// runRender analyses input and writes one diagram per requested format.
func (c *CLI) runRender(ctx context.Context, input string, flags analysisFlags, ro renderOpts) error {
	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := flags.options(c.cfg, input)
	opts.Logger = c.Logger
	opts.Formats = parseFormats(ro.formats)
	opts.Engine = ro.engine
	opts.Detailed = ro.detailed
	opts.EdgeLabels = ro.edgeLabels
	opts.Positions = ro.positions

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", input))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Rendering failed")
		return err
	}
	spinner.Stop()

	paths := outputPaths(opts.Formats, input, ro.output)
	for _, format := range opts.Formats {
		path := paths[format]
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", dir)
			}
		}
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
		}
	}

	printSuccess("Rendered %s", result.Report.Station)
	for _, format := range opts.Formats {
		printFile(paths[format])
	}
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.Report.Summary.Zones, result.CacheInfo.RenderHit)
	return nil
}

// outputPaths maps each format to the file it is written to. A single
// format is written to output verbatim; several formats share a base path.
func outputPaths(formats []string, input, output string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a diagram extension (.svg, .png, .dot), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if slices.Contains(diagramFormats(), strings.TrimPrefix(ext, ".")) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func diagramFormats() []string {
	return []string{string(nodelink.FormatSVG), string(nodelink.FormatPNG), string(nodelink.FormatDOT)}
}

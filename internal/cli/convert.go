package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/railcdl/pkg/cdl"
	"github.com/matzehuels/railcdl/pkg/errors"
	rio "github.com/matzehuels/railcdl/pkg/io"
	"github.com/matzehuels/railcdl/pkg/network"
)

// convertCommand creates the convert command.
func (c *CLI) convertCommand() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "convert [input] [output]",
		Short: "Translate a station between RailML, YAML and JSON",
		Long: `Translate a station between RailML, YAML and JSON.

Formats are detected from the file extensions unless --from or --to is
given. RailML can be read but not written. Use "-" as output to write to
stdout (JSON unless --to says otherwise).

Examples:
  railcdl convert station.xml station.yaml
  railcdl convert station.yaml - --to json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd.Context(), args[0], args[1], from, to)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "input format: json, yaml, railml")
	cmd.Flags().StringVar(&to, "to", "", "output format: json, yaml")

	return cmd
}

func runConvert(ctx context.Context, input, output, from, to string) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	g, err := loadStation(ctx, input, from)
	if err != nil {
		return err
	}

	outFormat, err := outputFormat(output, to)
	if err != nil {
		return err
	}

	if output == "-" {
		return rio.Write(g, os.Stdout, outFormat)
	}
	out, err := os.Create(output)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", output)
	}
	if err := rio.Write(g, out, outFormat); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	prog.done(fmt.Sprintf("Converted %s", input))
	printSuccess("Wrote %s (%d nodes, %d edges)", g.Name, g.NodeCount(), g.EdgeCount())
	printFile(output)
	return nil
}

// loadStation reads a station file. RailML import statistics are logged.
func loadStation(ctx context.Context, path, format string) (*network.Network, error) {
	logger := loggerFromContext(ctx)

	var f rio.Format
	var err error
	if format != "" {
		f, err = rio.ParseFormat(format)
	} else {
		f, err = rio.DetectFormat(path)
	}
	if err != nil {
		return nil, err
	}

	if f != rio.FormatRailML {
		g, err := rio.ImportAs(path, f)
		return g, errors.FromCore(err)
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer file.Close()

	g, stats, err := rio.ReadRailML(file)
	if err != nil {
		return nil, errors.FromCore(err)
	}
	logger.Info("imported railml",
		"tracks", stats.Tracks,
		"switches", stats.Switches,
		"platforms", stats.Platforms,
		"connections", stats.Connections)
	if stats.Skipped > 0 {
		logger.Warn("skipped connections with unknown endpoints", "count", stats.Skipped)
	}
	if stats.Duplicates > 0 {
		logger.Warn("skipped elements with duplicate ids", "count", stats.Duplicates)
	}
	return g, nil
}

func outputFormat(output, to string) (rio.Format, error) {
	var f rio.Format
	var err error
	switch {
	case to != "":
		f, err = rio.ParseFormat(to)
	case output == "-":
		f = rio.FormatJSON
	default:
		f, err = rio.DetectFormat(output)
	}
	if err != nil {
		return "", err
	}
	if f == rio.FormatRailML {
		return "", errors.New(errors.ErrCodeUnsupported, "cannot write railml; choose json or yaml")
	}
	return f, nil
}

// checkCommand creates the check command.
func (c *CLI) checkCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "check [station]",
		Short: "Validate a station and summarise its topology",
		Long: `Validate a station and summarise its topology.

The check command decodes the station, verifies every edge references known
nodes, and reports node kinds, entry and exit points, CDL zones and directed
cycles. Cycles are legal, but they bound how far signals can be walked back;
placement fails with CYCLE_DETECTED if a walk revisits a node.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadStation(cmd.Context(), args[0], format)
			if err != nil {
				return err
			}
			printCheck(g)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "input-format", "", "station format: json, yaml, railml (default from extension)")
	return cmd
}

func printCheck(g *network.Network) {
	stats := g.Stats()
	printSuccess("%s is a valid station", g.Name)
	printKeyValue("Nodes", strconv.Itoa(stats.Nodes))
	printKeyValue("Edges", strconv.Itoa(stats.Edges))

	kinds := make([]string, 0, len(stats.ByKind))
	for _, k := range network.Kinds() {
		if n := stats.ByKind[k]; n > 0 {
			kinds = append(kinds, fmt.Sprintf("%d %s", n, k))
		}
	}
	printKeyValue("Kinds", strings.Join(kinds, ", "))
	printKeyValue("Length", fmt.Sprintf("%.0fm", stats.TrackLength))
	printKeyValue("Sources", nodeIDs(g.Sources()))
	printKeyValue("Sinks", nodeIDs(g.Sinks()))

	zones := cdl.IdentifyZones(g)
	printKeyValue("Zones", fmt.Sprintf("%d (%d approaches)", zones.Len(), zones.ApproachCount()))

	if cycle := g.Cycle(); cycle != nil {
		printWarning("Directed cycle: %s", strings.Join(cycle, " → "))
	}
}

func nodeIDs(nodes []*network.Node) string {
	if len(nodes) == 0 {
		return "-"
	}
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return strings.Join(ids, ", ")
}

package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/railcdl/pkg/errors"
	"github.com/matzehuels/railcdl/pkg/pipeline"
	"github.com/matzehuels/railcdl/pkg/report"
)

// Report output formats.
const (
	reportText = "text"
	reportJSON = "json"
)

// analyzeCommand creates the analyze command.
func (c *CLI) analyzeCommand() *cobra.Command {
	var (
		flags  analysisFlags
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "analyze [station]",
		Short: "Detect CDL zones and place protecting signals",
		Long: `Detect CDL zones and place protecting signals.

The analyze command loads a station (JSON, YAML or RailML), finds every node
where two or more tracks converge, and walks each approach upstream until the
signal distance is covered. The report lists network statistics, zones and
signals; approaches shorter than the distance are reported as partial.

Results are cached locally for faster subsequent runs.

Examples:
  railcdl analyze station.yaml
  railcdl analyze station.xml --threshold 700 --format json -o report.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != reportText && format != reportJSON {
				return errors.New(errors.ErrCodeUnsupported, "invalid report format %q (must be 'text' or 'json')", format)
			}
			return c.runAnalyze(cmd.Context(), args[0], flags, format, output)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", reportText, "report format: text, json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")

	return cmd
}

// runAnalyze analyses the station at input and writes the report.
func (c *CLI) runAnalyze(ctx context.Context, input string, flags analysisFlags, format, output string) error {
	result, err := c.execute(ctx, input, flags, fmt.Sprintf("Analyzing %s...", input))
	if err != nil {
		return err
	}

	out, err := openOutput(output)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", output)
	}
	defer out.Close()

	if err := writeReport(out, result.Report, format); err != nil {
		return err
	}

	if output != "" {
		printSuccess("Analyzed %s", result.Report.Station)
		printFile(output)
		printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.Report.Summary.Zones, result.CacheInfo.AnalysisHit)
	}
	return nil
}

// zonesCommand creates the zones command.
func (c *CLI) zonesCommand() *cobra.Command {
	var flags analysisFlags

	cmd := &cobra.Command{
		Use:   "zones [station]",
		Short: "List CDL zones and their signal coverage",
		Long: `List CDL zones and their signal coverage.

Zones that are not fully covered and signals placed short of the signal
distance are highlighted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := c.execute(cmd.Context(), args[0], flags, fmt.Sprintf("Analyzing %s...", args[0]))
			if err != nil {
				return err
			}
			printZones(result)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

// execute loads and analyses the station at input behind a spinner.
func (c *CLI) execute(ctx context.Context, input string, flags analysisFlags, message string) (*pipeline.Result, error) {
	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return nil, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := flags.options(c.cfg, input)
	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, message)
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Analysis failed")
		return nil, err
	}
	spinner.Stop()
	return result, nil
}

func writeReport(w io.Writer, rep *report.Report, format string) error {
	if format == reportJSON {
		return rep.WriteJSON(w)
	}
	return rep.WriteText(w)
}

func printZones(result *pipeline.Result) {
	rep := result.Report
	fmt.Println(StyleTitle.Render(rep.Station))
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, rep.Summary.Zones, result.CacheInfo.AnalysisHit)
	printNewline()

	if len(rep.Zones) == 0 {
		printInfo("No CDL zones: no node has more than one incoming track")
		return
	}
	fmt.Println(zoneTable(rep))
	printNewline()
	fmt.Println(signalTable(rep))
	printNewline()

	s := rep.Summary
	printKeyValue("Coverage", fmt.Sprintf("%.0f%% (%d/%d approaches)", s.Coverage, s.Signals, s.Approaches))
	if s.PartialSignals > 0 {
		printWarning("%d signal(s) placed short of %.0fm", s.PartialSignals, rep.Threshold)
	}
}

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns stdout for an empty path, or creates the file.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

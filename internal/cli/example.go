package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/railcdl/pkg/errors"
	rio "github.com/matzehuels/railcdl/pkg/io"
	"github.com/matzehuels/railcdl/pkg/sample"
)

// exampleCommand creates the example command.
func (c *CLI) exampleCommand() *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:       "example [name]",
		Short:     "Write a sample station to start from",
		ValidArgs: sample.Names(),
		Long: fmt.Sprintf(`Write a sample station to start from.

Available stations: %s (default central).

Examples:
  railcdl example > station.json
  railcdl example junction -o junction.yaml
  railcdl example | railcdl analyze /dev/stdin --input-format json`, strings.Join(sample.Names(), ", ")),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "central"
			if len(args) == 1 {
				name = args[0]
			}
			g, ok := sample.Build(name)
			if !ok {
				return errors.New(errors.ErrCodeNotFound, "unknown sample %q (available: %s)", name, strings.Join(sample.Names(), ", "))
			}

			dest := output
			if dest == "" {
				dest = "-"
			}
			f, err := outputFormat(dest, format)
			if err != nil {
				return err
			}

			out, err := openOutput(output)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", output)
			}
			defer out.Close()
			if err := rio.Write(g, out, f); err != nil {
				return err
			}
			if output != "" {
				printSuccess("Wrote %s", g.Name)
				printFile(output)
				printNextStep("Analyze it", "railcdl analyze "+output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: json (default), yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")

	return cmd
}

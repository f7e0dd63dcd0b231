package cli

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ridasset/pkg/pipeline"
)

// chainCommand creates the chain command.
func (c *CLI) chainCommand() *cobra.Command {
	var (
		flags  requestFlags
		format string
	)

	cmd := &cobra.Command{
		Use:   "chain <manifest>",
		Short: "Print the RID fallback chain a resolution would use",
		Example: `  ridasset chain app.deps.json --rid win10-x64
  ridasset chain app.deps.json --no-graph`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runChain(cmd.Context(), cmd.OutOrStdout(), args[0], flags, format)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", pipeline.DefaultFormat, "output format: text or json")

	return cmd
}

func (c *CLI) runChain(ctx context.Context, w io.Writer, path string, flags requestFlags, format string) error {
	if err := pipeline.ValidateFormat(format); err != nil {
		return err
	}
	app, err := pipeline.ReadInput(path)
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(nil, nil, loggerFromContext(ctx))
	chain, err := runner.Chain(ctx, c.options(flags, app))
	if err != nil {
		return err
	}

	if format == pipeline.FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(chain)
	}
	printChain(w, chain)
	return nil
}

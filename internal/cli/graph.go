package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ridasset/pkg/errors"
	"github.com/matzehuels/ridasset/pkg/pipeline"
)

type graphFlags struct {
	pipeline.GraphOptions
	output  string
	noCache bool
}

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var flags graphFlags

	cmd := &cobra.Command{
		Use:   "graph [manifest]",
		Short: "Render a RID fallback graph as DOT or SVG",
		Long: `Graph renders the runtimes section of a manifest as a Graphviz graph, one
edge per fallback step. With --builtin the compiled-in default table is
rendered instead and no manifest is needed.`,
		Example: `  ridasset graph app.deps.json -o runtimes.dot
  ridasset graph app.deps.json --format svg --highlight linux-x64 -o runtimes.svg
  ridasset graph --builtin`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return c.runGraph(cmd.Context(), cmd.OutOrStdout(), path, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.Format, "format", "f", pipeline.DefaultGraphFormat, "output format: dot or svg")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "write output to file instead of stdout")
	cmd.Flags().BoolVar(&flags.Builtin, "builtin", false, "render the compiled-in default fallback table")
	cmd.Flags().StringVar(&flags.Highlight, "highlight", "", "highlight the chain of this RID")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable the render cache")

	return cmd
}

func (c *CLI) runGraph(ctx context.Context, w io.Writer, path string, flags graphFlags) error {
	var in pipeline.Input
	switch {
	case path != "":
		var err error
		if in, err = pipeline.ReadInput(path); err != nil {
			return err
		}
	case !flags.Builtin:
		return errors.New(errors.ErrCodeInvalidInput, "a manifest is required unless --builtin is set")
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	name := in.Name
	if flags.Builtin {
		name = "builtin"
	}
	prog := newProgress(loggerFromContext(ctx), name)
	data, err := runner.RenderGraph(ctx, in, flags.GraphOptions)
	if err != nil {
		return err
	}
	prog.done("Rendered graph")
	if err := writeOutput(w, flags.output, data); err != nil {
		return err
	}
	if flags.output != "" && flags.output != "-" {
		printSuccess(w, "Rendered %s graph", flags.Format)
		printFile(w, flags.output)
	}
	return nil
}

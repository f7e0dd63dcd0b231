package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ridasset/pkg/pipeline"
	"github.com/matzehuels/ridasset/pkg/platform"
)

// requestFlags are the flags shared by commands that build a chain.
type requestFlags struct {
	rid     string
	unknown bool
	noGraph bool
}

func (f *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.rid, "rid", "", "target runtime identifier (default: config default_rid, then the running platform)")
	cmd.Flags().BoolVar(&f.unknown, "unknown-rid", false, "treat the target as unknown and use the compiled-in default chain")
	cmd.Flags().BoolVar(&f.noGraph, "no-graph", false, "ignore the manifest's runtimes section (exact RID matches only)")
	cmd.MarkFlagsMutuallyExclusive("rid", "unknown-rid")
}

// options fills the request fields of a pipeline run. An explicit --rid
// wins over the configured default_rid; --unknown-rid ignores both.
func (c *CLI) options(f requestFlags, app pipeline.Input) pipeline.Options {
	opts := pipeline.Options{
		Manifest:   app,
		UnknownRID: f.unknown,
		NoGraph:    f.noGraph,
		Detector:   platform.Current(),
		TTL:        c.Config.Cache.TTL.Duration,
	}
	if !f.unknown {
		opts.RID = f.rid
		if opts.RID == "" {
			opts.RID = c.Config.DefaultRID
		}
	}
	return opts
}

type resolveFlags struct {
	requestFlags
	components []string
	format     string
	output     string
	noCache    bool
	refresh    bool
}

// resolveCommand creates the resolve command.
func (c *CLI) resolveCommand() *cobra.Command {
	var flags resolveFlags

	cmd := &cobra.Command{
		Use:   "resolve <manifest>",
		Short: "Select the assets of a manifest for a runtime identifier",
		Long: `Resolve reads an application manifest (deps.json, or the same shape as YAML)
and selects, for every library, the assemblies and native libraries of the
most specific RID on the fallback chain.

Hosted components given with --component are resolved against the
application's chain, not their own.`,
		Example: `  ridasset resolve app.deps.json --rid linux-x64
  ridasset resolve app.deps.json --component plugin.deps.json --format json -o assets.json
  ridasset resolve app.deps.json --unknown-rid`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runResolve(cmd.Context(), cmd.OutOrStdout(), args[0], flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringArrayVar(&flags.components, "component", nil, "hosted component manifest (repeatable)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", pipeline.DefaultFormat, "output format: text or json")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "write output to file instead of stdout")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "ignore cached results and store a fresh one")

	return cmd
}

func (c *CLI) runResolve(ctx context.Context, w io.Writer, path string, flags resolveFlags) error {
	if err := pipeline.ValidateFormat(flags.format); err != nil {
		return err
	}
	logger := loggerFromContext(ctx)

	app, err := pipeline.ReadInput(path)
	if err != nil {
		return err
	}
	opts := c.options(flags.requestFlags, app)
	opts.Refresh = flags.refresh
	for _, p := range flags.components {
		in, err := pipeline.ReadInput(p)
		if err != nil {
			return err
		}
		opts.Components = append(opts.Components, in)
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger, app.Name)
	res, err := runner.Execute(ctx, opts)
	if err != nil {
		return err
	}
	if res.CacheInfo.ResultHit {
		prog.done("Loaded cached result")
	} else {
		prog.done(fmt.Sprintf("Resolved %d libraries", res.Stats.Libraries))
	}

	var buf bytes.Buffer
	switch flags.format {
	case pipeline.FormatJSON:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
	default:
		printResult(&buf, res)
	}

	if err := writeOutput(w, flags.output, buf.Bytes()); err != nil {
		return err
	}
	if flags.output != "" && flags.output != "-" {
		printSuccess(w, "Wrote result")
		printFile(w, flags.output)
	}
	return nil
}

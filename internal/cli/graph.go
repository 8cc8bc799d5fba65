package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/pipeline"
)

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		flags  resolveFlags
		mode   string
		format string
	)

	cmd := &cobra.Command{
		Use:   "graph <course>",
		Short: "Render a course's prerequisites as a node-link graph",
		Long: `Render a course's prerequisites as a node-link graph.

Modes:
  full     the transitively expanded requirement tree, with AND/OR nodes (default)
  shallow  the course's own requirement tree
  closure  every transitive prerequisite, without operators

The format is taken from --format, or from the output file's extension.

Examples:
  ucoursemap graph "CMPUT 301" -o cmput301.svg
  ucoursemap graph "CMPUT 301" --mode closure --format dot`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = formatFromPath(flags.output, pipeline.FormatJSON)
			}
			if err := pipeline.ValidateFormat(format); err != nil {
				return err
			}
			if err := pipeline.ValidateMode(mode); err != nil {
				return err
			}
			return c.runGraph(cmd.Context(), args[0], mode, format, &flags)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&mode, "mode", "m", pipeline.ModeFull, "graph mode: full, shallow, closure")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: json (default), dot, svg")
	return cmd
}

func (c *CLI) runGraph(ctx context.Context, code, mode, format string, flags *resolveFlags) error {
	b, err := c.openBackend(ctx, flags.noCache)
	if err != nil {
		return err
	}
	defer b.Close()

	opts, err := b.defaults()
	if err != nil {
		return err
	}
	flags.apply(&opts, code)
	opts.Mode = mode

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Resolving %s...", code))
	if flags.output != "" {
		spinner.Start()
	}

	g, hit, err := b.runner.GraphWithCacheInfo(ctx, opts)
	if err != nil {
		spinner.StopWithError("Resolution failed")
		return err
	}
	data, err := b.runner.Render(ctx, g, format)
	if err != nil {
		spinner.StopWithError("Rendering failed")
		return err
	}
	spinner.Stop()

	if err := writeOutput(flags.output, data); err != nil {
		return err
	}
	if flags.output != "" {
		printSuccess("Graph of %s (%s)", StyleHighlight.Render(opts.Code), mode)
		printStats(g.NodeCount(), g.EdgeCount(), hit)
		printFile(flags.output)
	}
	return nil
}

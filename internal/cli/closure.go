package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/closure"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/pipeline"
)

// resolveFlags holds the flags shared by every command that resolves a course.
type resolveFlags struct {
	depth      int
	coreqs     bool
	highSchool []string
	operator   string
	memoize    bool
	refresh    bool
	noCache    bool
	output     string
}

func (f *resolveFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.depth, "depth", "d", 0, "maximum closure depth (default from config, 4)")
	cmd.Flags().BoolVar(&f.coreqs, "coreqs", false, "follow corequisites instead of prerequisites")
	cmd.Flags().StringSliceVar(&f.highSchool, "high-school", nil, "high-school courses to keep in the closure (comma-separated)")
	cmd.Flags().StringVar(&f.operator, "operator", "", "operator for groups without one: or (default), and")
	cmd.Flags().BoolVar(&f.memoize, "memoize", false, "reuse expansions of shared prerequisites")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "bypass cached results")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (stdout if empty)")
}

// apply overlays the flags that were set onto the configured defaults.
func (f *resolveFlags) apply(opts *pipeline.Options, code string) {
	opts.Code = code
	if f.depth != 0 {
		opts.MaxDepth = f.depth
	}
	if len(f.highSchool) > 0 {
		opts.HighSchool = f.highSchool
	}
	if f.operator != "" {
		opts.DefaultOperator = f.operator
	}
	opts.Coreqs = f.coreqs
	opts.Memoize = opts.Memoize || f.memoize
	opts.Refresh = f.refresh
}

// closureCommand creates the closure command.
func (c *CLI) closureCommand() *cobra.Command {
	var flags resolveFlags

	cmd := &cobra.Command{
		Use:   "closure <course>",
		Short: "List every course a course transitively depends on",
		Long: `List every course a course transitively depends on.

The closure follows each course's flattened prerequisite list breadth-first
up to --depth levels. Courses missing from the catalog stay in the result as
unresolved nodes; free-text requirements become text nodes.

Examples:
  ucoursemap closure "CMPUT 301"
  ucoursemap closure cmput301 --depth 2 -o closure.json
  ucoursemap closure "MATH 125" --high-school "MATH 30-1,MATH 31"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runClosure(cmd.Context(), args[0], &flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *CLI) runClosure(ctx context.Context, code string, flags *resolveFlags) error {
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
	opts.Mode = pipeline.ModeClosure

	prog := newProgress(c.logger(ctx))
	res, hit, err := b.runner.ClosureWithCacheInfo(ctx, opts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Resolved %s", res.Root))

	data, err := res.Marshal()
	if err != nil {
		return fmt.Errorf("encode closure: %w", err)
	}
	if err := writeOutput(flags.output, append(data, '\n')); err != nil {
		return err
	}
	if flags.output != "" {
		printClosureSummary(res, hit)
		printFile(flags.output)
	}
	return nil
}

func printClosureSummary(res *closure.Result, cached bool) {
	unresolved := 0
	for _, n := range res.Nodes {
		if !n.Resolved && n.Type == closure.NodeCourse {
			unresolved++
		}
	}
	printSuccess("Closure of %s", StyleHighlight.Render(res.Root))
	printStats(len(res.Nodes), len(res.Edges), cached)
	printTiers(res)
	if unresolved > 0 {
		printDetail("%d course(s) not in catalog", unresolved)
	}
}

package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/ast"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/pipeline"
)

// astCommand creates the ast command.
func (c *CLI) astCommand() *cobra.Command {
	var (
		flags   resolveFlags
		shallow bool
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "ast <course>",
		Short: "Print a course's requirement tree",
		Long: `Print a course's requirement tree.

By default every prerequisite that is itself a catalog course is expanded in
place, so the tree shows everything needed to reach the course. Use --shallow
for the course's own requirements only.

Examples:
  ucoursemap ast "CMPUT 301"
  ucoursemap ast "CMPUT 301" --shallow
  ucoursemap ast "CMPUT 301" --json -o tree.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := pipeline.ModeFull
			if shallow {
				mode = pipeline.ModeShallow
			}
			return c.runAST(cmd.Context(), args[0], mode, asJSON, &flags)
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&shallow, "shallow", false, "do not expand prerequisites transitively")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the tree as JSON")
	return cmd
}

func (c *CLI) runAST(ctx context.Context, code, mode string, asJSON bool, flags *resolveFlags) error {
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

	root, course, err := b.runner.AST(ctx, opts)
	if err != nil {
		return err
	}

	if asJSON {
		data, err := ast.MarshalJSON(root)
		if err != nil {
			return fmt.Errorf("encode ast: %w", err)
		}
		return writeOutput(flags.output, append(data, '\n'))
	}
	if flags.output != "" {
		return writeOutput(flags.output, []byte(ast.String(root)+"\n"))
	}

	printKeyValue("Course", StyleHighlight.Render(course.ID())+" "+StyleDim.Render(course.Title))
	if root == nil {
		printInfo("No prerequisites")
		return nil
	}
	printKeyValue("Nodes", StyleNumber.Render(fmt.Sprint(ast.Size(root))))
	printNewline()
	printTree(root, "", true, true)
	return nil
}

// printTree draws n with box-drawing guides.
func printTree(n ast.Node, prefix string, last, top bool) {
	branch, next := "├── ", "│   "
	if last {
		branch, next = "└── ", "    "
	}
	if top {
		branch, next = "", ""
	}

	var label string
	switch n := n.(type) {
	case *ast.Course:
		label = StyleValue.Render(n.ID)
	case *ast.Text:
		label = StyleWarning.Render(n.Text)
	default:
		label = StyleTitle.Render(strings.ToUpper(string(n.Kind())))
	}
	fmt.Println(StyleDim.Render(prefix+branch) + label)

	kids := ast.Children(n)
	for i, k := range kids {
		printTree(k, prefix+next, i == len(kids)-1, false)
	}
}

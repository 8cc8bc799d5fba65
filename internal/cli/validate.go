package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/catalog"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/pipeline"
)

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	var (
		strict bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "validate [catalog.json]",
		Short: "Check a catalog file for inconsistent requirement data",
		Long: `Check a catalog file for inconsistent requirement data.

Reports malformed requirement trees, flattened prerequisite lists that
disagree with the tree, and references to courses missing from the catalog.
None of these stop resolution; they only degrade its results.

Without an argument the catalog file from the config is checked.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				cfg, err := c.loadConfig()
				if err != nil {
					return err
				}
				path = cfg.Catalog.File
			}
			return c.runValidate(path, strict, asJSON)
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "exit with an error when issues are found")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func (c *CLI) runValidate(path string, strict, asJSON bool) error {
	mem, err := catalog.LoadFile(path)
	if err != nil {
		return err
	}
	rep := pipeline.ValidateCatalog(mem.All())

	if asJSON {
		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		if err := writeOutput("", append(data, '\n')); err != nil {
			return err
		}
	} else {
		printReport(path, rep)
	}

	if strict && !rep.OK() {
		return fmt.Errorf("%d course(s) with issues", len(rep.Issues))
	}
	return nil
}

func printReport(path string, rep *pipeline.Report) {
	if rep.OK() {
		printSuccess("%d courses, no issues", rep.Courses)
		printDetail("Catalog: %s", path)
		return
	}
	printWarning("%d of %d courses have issues", len(rep.Issues), rep.Courses)
	for _, is := range rep.Issues {
		printInfo("%s", StyleHighlight.Render(is.Course))
		for _, msg := range is.Conditions {
			printDetail("condition: %s", msg)
		}
		if len(is.MissingFromList) > 0 {
			printDetail("in tree, not in flattened list: %s", strings.Join(is.MissingFromList, ", "))
		}
		if len(is.MissingFromTree) > 0 {
			printDetail("in flattened list, not in tree: %s", strings.Join(is.MissingFromTree, ", "))
		}
		if len(is.Dangling) > 0 {
			printDetail("not in catalog: %s", strings.Join(is.Dangling, ", "))
		}
	}
}

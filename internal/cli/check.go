package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/pipeline"
)

// checkCommand creates the check command.
func (c *CLI) checkCommand() *cobra.Command {
	var (
		completed []string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "check <course>",
		Short: "Check whether completed courses satisfy a course's requirements",
		Long: `Check whether completed courses satisfy a course's requirements.

Descriptive requirements ("consent of the department") always count as met.
Course families such as "CMPUT 3xx" are met by any matching completed course.

Examples:
  ucoursemap check "CMPUT 301" --completed "CMPUT 201,CMPUT 204"
  ucoursemap check "CMPUT 301" -c cmput201 -c cmput204 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCheck(cmd.Context(), args[0], completed, asJSON)
		},
	}
	cmd.Flags().StringSliceVarP(&completed, "completed", "c", nil, "completed courses (comma-separated or repeated)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func (c *CLI) runCheck(ctx context.Context, code string, completed []string, asJSON bool) error {
	b, err := c.openBackend(ctx, false)
	if err != nil {
		return err
	}
	defer b.Close()

	res, err := b.runner.Check(ctx, code, completed)
	if err != nil {
		return err
	}

	if asJSON {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		return writeOutput("", append(data, '\n'))
	}
	printCheck(res)
	return nil
}

func printCheck(res *pipeline.CheckResult) {
	course := StyleHighlight.Render(res.Course)
	if res.Satisfied {
		printSuccess("Prerequisites for %s are met", course)
	} else {
		printError("Prerequisites for %s are not met", course)
		for _, u := range res.Unmet {
			printUnmet(u)
		}
	}
	if !res.CoreqsSatisfied {
		printWarning("Corequisites still needed: %s", strings.Join(res.UnmetCoreqs, "; "))
	}
}

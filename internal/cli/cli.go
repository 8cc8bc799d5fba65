// Package cli implements the ucoursemap command-line interface.
//
// Commands:
//   - closure: transitive prerequisite closure of a course (JSON)
//   - ast: requirement tree, shallow or transitively expanded
//   - graph: node-link graph as JSON, DOT or SVG
//   - check: evaluate requirements against completed courses
//   - validate: report inconsistent catalog data
//   - import: load a catalog file into Postgres or MongoDB
//   - cache: manage the local result cache
//   - serve: HTTP API
//
// All commands support --verbose (-v) for debug-level logging, which shows
// prerequisite cycles and references missing from the catalog. The logger is
// attached to the command context by the root command.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/buildinfo"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/config"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/errors"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "ucoursemap resolves course prerequisites into trees and graphs",
		Long: `ucoursemap reads a course catalog and answers prerequisite questions:
which courses a course transitively depends on, what its full requirement
tree looks like, and whether a set of completed courses satisfies it.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/ucoursemap/config.toml)")

	root.AddCommand(c.closureCommand())
	root.AddCommand(c.astCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the configuration selected by --config.
func (c *CLI) loadConfig() (*config.Config, error) {
	return config.Load(c.configPath)
}

// FormatError renders err for the terminal: coded errors show their
// message and code, everything else its text.
func FormatError(err error) string {
	if code := errors.GetCode(err); code != "" {
		return styleIconError.Render(iconError) + " " + errors.UserMessage(err) + " " + StyleDim.Render("("+string(code)+")")
	}
	return styleIconError.Render(iconError) + " " + err.Error()
}

// logger returns the logger attached to ctx by the root command.
func (c *CLI) logger(ctx context.Context) *log.Logger {
	return loggerFromContext(ctx, c.Logger)
}

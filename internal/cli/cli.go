// Package cli implements the nexus command-line interface.
//
// Each integration gets its own subcommand tree (slack, hubspot, beam,
// airtable, notion, heyreach, fathom, google) plus cache and doctor
// utilities. All commands support --json for machine-readable output so a
// calling agent can branch programmatically, and --verbose for debug-level
// logging.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/nexushq/nexus/pkg/buildinfo"
	"github.com/nexushq/nexus/pkg/config"
	"github.com/nexushq/nexus/pkg/httputil"
	"github.com/nexushq/nexus/pkg/integrations"
)

// appName is the application name used for directories and display.
const appName = "nexus"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	jsonOut bool
	noCache bool
	verbose bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// JSONOutput reports whether --json was requested.
func (c *CLI) JSONOutput() bool { return c.jsonOut }

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Nexus wraps the team's SaaS stack behind one CLI",
		Long:         `Nexus is the AI agent workspace CLI: thin, uniformly-behaving wrappers around Slack, HubSpot, Beam, Airtable, Notion, HeyReach, Fathom, and Google Workspace, sharing one rate-limited HTTP core.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		// Errors are reported once in main with the right exit code.
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if c.verbose {
				c.Logger.SetLevel(log.DebugLevel)
			}
			c.registerHooks()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().BoolVar(&c.jsonOut, "json", false, "emit JSON on stdout")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "bypass the response cache")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.slackCommand())
	root.AddCommand(c.hubspotCommand())
	root.AddCommand(c.beamCommand())
	root.AddCommand(c.airtableCommand())
	root.AddCommand(c.notionCommand())
	root.AddCommand(c.heyreachCommand())
	root.AddCommand(c.fathomCommand())
	root.AddCommand(c.googleCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.doctorCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig loads credentials and settings from the current workspace.
func (c *CLI) loadConfig() (*config.Config, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return config.Load(dir)
}

// clientOptions builds the shared client options for one integration: the
// configured backoff policy and, unless disabled, a namespaced response
// cache rooted at the same directory the cache subcommands manage.
func (c *CLI) clientOptions(cfg *config.Config, integration string) []integrations.Option {
	opts := []integrations.Option{
		integrations.WithBackoff(cfg.Settings.Backoff()),
	}
	if !c.noCache {
		dir, err := cacheDir()
		if err == nil {
			var cache *httputil.Cache
			if cache, err = httputil.NewCache(dir, cfg.Settings.CacheTTL()); err == nil {
				opts = append(opts, integrations.WithCache(cache.Namespace(integration+":")))
			}
		}
		if err != nil {
			c.Logger.Debug("response cache disabled", "err", err)
		}
	}
	return opts
}

// cacheDir returns the cache directory using XDG conventions
// (~/.cache/nexus/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nexushq/nexus/pkg/integrations/google"
)

func (c *CLI) googleAuthenticator() (*google.Authenticator, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	return google.NewAuthenticator(filepath.Join(cfg.Dir(), ".nexus")), nil
}

// googleCommand creates the google command tree.
func (c *CLI) googleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "google",
		Short: "Google Workspace commands",
		Long: `Authenticate with Google and read or write calendar data.

Credentials come from .nexus/credentials.json (an OAuth client downloaded
from Google Cloud Console); the obtained token is stored alongside it and
refreshed automatically.`,
	}

	cmd.AddCommand(c.googleLoginCommand())
	cmd.AddCommand(c.googleAgendaCommand())

	return cmd
}

func (c *CLI) googleLoginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authorize Nexus against your Google account",
		RunE: func(cmd *cobra.Command, args []string) error {
			auth, err := c.googleAuthenticator()
			if err != nil {
				return err
			}
			err = auth.Login(cmd.Context(), func(url string) {
				printInfo("Open this URL in your browser to authorize:")
				printDetail("%s", url)
			})
			if err != nil {
				return err
			}
			printSuccess("Google authorization stored")
			return nil
		},
	}
}

func (c *CLI) googleAgendaCommand() *cobra.Command {
	var calendarID string
	var days, limit int

	cmd := &cobra.Command{
		Use:   "agenda",
		Short: "List upcoming calendar events",
		RunE: func(cmd *cobra.Command, args []string) error {
			auth, err := c.googleAuthenticator()
			if err != nil {
				return err
			}
			client, err := google.NewCalendarClient(cmd.Context(), auth)
			if err != nil {
				return err
			}
			events, err := client.ListEvents(cmd.Context(), calendarID, days, limit)
			if err != nil {
				return err
			}

			if c.jsonOut {
				return printJSON(events)
			}
			for _, ev := range events {
				start := ev.Start.DateTime
				if start == "" {
					start = ev.Start.Date
				}
				printKeyValue(start, ev.Summary)
			}
			printDetail("%d events", len(events))
			return nil
		},
	}
	cmd.Flags().StringVar(&calendarID, "calendar", "primary", "calendar ID")
	cmd.Flags().IntVar(&days, "days", 7, "days ahead to list")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum events")
	return cmd
}

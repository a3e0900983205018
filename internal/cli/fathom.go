package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nexushq/nexus/pkg/config"
	"github.com/nexushq/nexus/pkg/integrations/fathom"
)

func (c *CLI) fathomClient() (*fathom.Client, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	apiKey, err := cfg.Require(config.KeyFathomAPIKey)
	if err != nil {
		return nil, err
	}
	return fathom.New(apiKey, c.clientOptions(cfg, "fathom")...), nil
}

// fathomCommand creates the fathom command tree.
func (c *CLI) fathomCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fathom",
		Short: "Fathom meeting commands",
	}

	cmd.AddCommand(c.fathomMeetingsCommand())
	cmd.AddCommand(c.fathomTranscriptCommand())

	return cmd
}

func (c *CLI) fathomMeetingsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "meetings",
		Short: "List recent meetings",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.fathomClient()
			if err != nil {
				return err
			}
			meetings, err := client.ListMeetings(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if c.jsonOut {
				return printJSON(meetings)
			}
			for _, m := range meetings {
				printKeyValue(str(m["title"]), str(m["id"]))
			}
			printDetail("%d meetings", len(meetings))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum meetings to return (0 = all)")
	return cmd
}

func (c *CLI) fathomTranscriptCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "transcript <meeting-id>",
		Short: "Fetch a meeting transcript",
		Long: `Fetch a meeting transcript, enriched with recording metadata when
available. Metadata enrichment is best-effort; the transcript is returned
even if the metadata fetch fails.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.fathomClient()
			if err != nil {
				return err
			}
			transcript, err := client.GetTranscript(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if c.jsonOut {
				return printJSON(transcript)
			}
			printInfo("Transcript for meeting %s", transcript.MeetingID)
			if transcript.Recording == nil {
				printWarning("recording metadata unavailable")
			}
			return printJSON(transcript.Transcript)
		},
	}
}

// str formats an arbitrary JSON value for display.
func str(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

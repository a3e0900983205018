package cli

import (
	"github.com/spf13/cobra"

	"github.com/nexushq/nexus/pkg/config"
	"github.com/nexushq/nexus/pkg/integrations/heyreach"
)

func (c *CLI) heyreachClient() (*heyreach.Client, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	apiKey, err := cfg.Require(config.KeyHeyReachAPIKey)
	if err != nil {
		return nil, err
	}
	return heyreach.New(apiKey, c.clientOptions(cfg, "heyreach")...), nil
}

// heyreachCommand creates the heyreach command tree.
func (c *CLI) heyreachCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "heyreach",
		Short: "HeyReach outreach commands",
	}

	cmd.AddCommand(c.heyreachCampaignsCommand())
	cmd.AddCommand(c.heyreachStatsCommand())
	cmd.AddCommand(c.heyreachAddLeadCommand())

	return cmd
}

func (c *CLI) heyreachCampaignsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "campaigns",
		Short: "List campaigns",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.heyreachClient()
			if err != nil {
				return err
			}
			resp, err := client.ListCampaigns(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if c.jsonOut {
				return printJSON(resp)
			}
			items, _ := resp["items"].([]any)
			for _, it := range items {
				m, _ := it.(map[string]any)
				printKeyValue(str(m["name"]), str(m["id"]))
			}
			printDetail("%d campaigns", len(items))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum campaigns to return")
	return cmd
}

func (c *CLI) heyreachStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <campaign-id>",
		Short: "Show campaign statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.heyreachClient()
			if err != nil {
				return err
			}
			stats, err := client.CampaignStats(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(stats)
		},
	}
}

func (c *CLI) heyreachAddLeadCommand() *cobra.Command {
	var first, last string

	cmd := &cobra.Command{
		Use:   "add-lead <campaign-id> <profile-url>",
		Short: "Add a LinkedIn profile to a campaign",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.heyreachClient()
			if err != nil {
				return err
			}
			resp, err := client.AddLeads(cmd.Context(), args[0], []heyreach.Lead{{
				ProfileURL: args[1],
				FirstName:  first,
				LastName:   last,
			}})
			if err != nil {
				return err
			}

			if c.jsonOut {
				return printJSON(resp)
			}
			printSuccess("Lead added to campaign %s", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&first, "first-name", "", "lead first name")
	cmd.Flags().StringVar(&last, "last-name", "", "lead last name")
	return cmd
}

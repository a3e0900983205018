package cli

import (
	"github.com/spf13/cobra"

	"github.com/nexushq/nexus/pkg/config"
	"github.com/nexushq/nexus/pkg/integrations/slack"
)

func (c *CLI) slackClient() (*slack.Client, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	token, err := cfg.Require(config.KeySlackToken)
	if err != nil {
		return nil, err
	}
	return slack.New(token, c.clientOptions(cfg, "slack")...), nil
}

// slackCommand creates the slack command tree.
func (c *CLI) slackCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slack",
		Short: "Slack workspace commands",
	}

	cmd.AddCommand(c.slackChannelsCommand())
	cmd.AddCommand(c.slackMembersCommand())
	cmd.AddCommand(c.slackHistoryCommand())
	cmd.AddCommand(c.slackPostCommand())

	return cmd
}

func (c *CLI) slackChannelsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "channels",
		Short: "List channels visible to the token",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.slackClient()
			if err != nil {
				return err
			}

			var channels []map[string]any
			err = c.withSpinner(cmd.Context(), "Listing channels", func() error {
				channels, err = client.ListChannels(cmd.Context(), limit)
				return err
			})
			if err != nil {
				return err
			}

			if c.jsonOut {
				return printJSON(channels)
			}
			for _, ch := range channels {
				name, _ := ch["name"].(string)
				id, _ := ch["id"].(string)
				printKeyValue("#"+name, id)
			}
			printDetail("%d channels", len(channels))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum channels to return (0 = all)")
	return cmd
}

func (c *CLI) slackMembersCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "members <channel-id>",
		Short: "List member IDs of a channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.slackClient()
			if err != nil {
				return err
			}
			members, err := client.ListMembers(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}

			if c.jsonOut {
				return printJSON(members)
			}
			for _, m := range members {
				printDetail("%v", m["id"])
			}
			printInfo("%d members", len(members))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum members to return (0 = all)")
	return cmd
}

func (c *CLI) slackHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history <channel-id>",
		Short: "Fetch recent messages of a channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.slackClient()
			if err != nil {
				return err
			}

			var messages []map[string]any
			err = c.withSpinner(cmd.Context(), "Fetching history", func() error {
				messages, err = client.History(cmd.Context(), args[0], limit)
				return err
			})
			if err != nil {
				return err
			}

			if c.jsonOut {
				return printJSON(messages)
			}
			for _, m := range messages {
				user, _ := m["user"].(string)
				text, _ := m["text"].(string)
				printKeyValue(user, text)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum messages to return (0 = all)")
	return cmd
}

func (c *CLI) slackPostCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "post <channel-id> <text>",
		Short: "Post a message to a channel",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.slackClient()
			if err != nil {
				return err
			}
			resp, err := client.PostMessage(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			if c.jsonOut {
				return printJSON(resp)
			}
			printSuccess("Posted to %s", args[0])
			return nil
		},
	}
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/nexushq/nexus/pkg/config"
	"github.com/nexushq/nexus/pkg/integrations/notion"
)

func (c *CLI) notionClient() (*notion.Client, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	apiKey, err := cfg.Require(config.KeyNotionAPIKey)
	if err != nil {
		return nil, err
	}
	return notion.New(apiKey, c.clientOptions(cfg, "notion")...), nil
}

// notionCommand creates the notion command tree.
func (c *CLI) notionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notion",
		Short: "Notion commands",
	}

	cmd.AddCommand(c.notionSearchCommand())
	cmd.AddCommand(c.notionQueryCommand())
	cmd.AddCommand(c.notionPageCommand())

	return cmd
}

func (c *CLI) notionSearchCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search pages and databases",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.notionClient()
			if err != nil {
				return err
			}

			var results []map[string]any
			err = c.withSpinner(cmd.Context(), "Searching", func() error {
				results, err = client.Search(cmd.Context(), args[0], limit)
				return err
			})
			if err != nil {
				return err
			}

			if c.jsonOut {
				return printJSON(results)
			}
			for _, r := range results {
				id, _ := r["id"].(string)
				obj, _ := r["object"].(string)
				printKeyValue(obj, id)
			}
			printDetail("%d results", len(results))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum results (0 = all)")
	return cmd
}

func (c *CLI) notionQueryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "query <database-id>",
		Short: "Query a database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.notionClient()
			if err != nil {
				return err
			}
			pages, err := client.QueryDatabase(cmd.Context(), args[0], nil, limit)
			if err != nil {
				return err
			}

			if c.jsonOut {
				return printJSON(pages)
			}
			for _, p := range pages {
				id, _ := p["id"].(string)
				printDetail("%s", id)
			}
			printInfo("%d pages", len(pages))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum pages to return (0 = all)")
	return cmd
}

func (c *CLI) notionPageCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "page <page-id>",
		Short: "Fetch one page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.notionClient()
			if err != nil {
				return err
			}
			page, err := client.GetPage(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(page)
		},
	}
}

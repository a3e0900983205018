package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nexushq/nexus/pkg/config"
	"github.com/nexushq/nexus/pkg/integrations/airtable"
)

func (c *CLI) airtableClient() (*airtable.Client, *config.Config, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	apiKey, err := cfg.Require(config.KeyAirtableAPIKey)
	if err != nil {
		return nil, nil, err
	}
	return airtable.New(apiKey, c.clientOptions(cfg, "airtable")...), cfg, nil
}

// airtableCommand creates the airtable command tree.
func (c *CLI) airtableCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "airtable",
		Short: "Airtable commands",
	}

	cmd.AddCommand(c.airtableBasesCommand())
	cmd.AddCommand(c.airtableSyncCommand())
	cmd.AddCommand(c.airtableRecordsCommand())

	return cmd
}

func (c *CLI) airtableBasesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "bases",
		Short: "List bases visible to the token",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := c.airtableClient()
			if err != nil {
				return err
			}
			bases, err := client.ListBases(cmd.Context())
			if err != nil {
				return err
			}

			if c.jsonOut {
				return printJSON(bases)
			}
			for _, b := range bases {
				printKeyValue(b.Name, b.ID)
			}
			printDetail("%d bases", len(bases))
			return nil
		},
	}
}

func (c *CLI) airtableSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync-bases",
		Short: "Refresh the on-disk base-list cache",
		Long: `Fetch all bases and overwrite the workspace cache file at
` + airtable.BaseCachePath + `. The file is a flat timestamped dump and is
replaced wholesale on every run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, err := c.airtableClient()
			if err != nil {
				return err
			}
			path := filepath.Join(cfg.Dir(), airtable.BaseCachePath)

			var cache *airtable.BaseCache
			err = c.withSpinner(cmd.Context(), "Discovering bases", func() error {
				cache, err = client.SyncBases(cmd.Context(), path)
				return err
			})
			if err != nil {
				return err
			}

			if c.jsonOut {
				return printJSON(cache)
			}
			printSuccess("Synced %d bases", cache.TotalBases)
			printDetail("Cache: %s", path)
			return nil
		},
	}
}

func (c *CLI) airtableRecordsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "records <base-id> <table>",
		Short: "List records of a table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := c.airtableClient()
			if err != nil {
				return err
			}
			records, err := client.ListRecords(cmd.Context(), args[0], args[1], limit)
			if err != nil {
				return err
			}

			if c.jsonOut {
				return printJSON(records)
			}
			for _, r := range records {
				id, _ := r["id"].(string)
				printDetail("%s", id)
			}
			printInfo("%d records", len(records))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum records to return (0 = all)")
	return cmd
}

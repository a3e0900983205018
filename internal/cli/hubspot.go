package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/nexushq/nexus/pkg/config"
	nxerrors "github.com/nexushq/nexus/pkg/errors"
	"github.com/nexushq/nexus/pkg/integrations/hubspot"
)

func (c *CLI) hubspotClient() (*hubspot.Client, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	token, err := cfg.Require(config.KeyHubSpotToken)
	if err != nil {
		return nil, err
	}
	return hubspot.New(token, c.clientOptions(cfg, "hubspot")...), nil
}

// hubspotCommand creates the hubspot command tree.
func (c *CLI) hubspotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hubspot",
		Short: "HubSpot CRM commands",
	}

	cmd.AddCommand(c.hubspotContactCommand())
	cmd.AddCommand(c.hubspotSearchCommand())
	cmd.AddCommand(c.hubspotCreateCommand())
	cmd.AddCommand(c.hubspotTaskCommand())
	cmd.AddCommand(c.hubspotDealsCommand())

	return cmd
}

func (c *CLI) hubspotContactCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "contact <contact-id>",
		Short: "Fetch a contact by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.hubspotClient()
			if err != nil {
				return err
			}
			contact, err := client.GetContact(cmd.Context(), args[0], []string{"email", "firstname", "lastname", "company"})
			if err != nil {
				return err
			}

			if c.jsonOut {
				return printJSON(contact)
			}
			props, _ := contact["properties"].(map[string]any)
			for _, key := range []string{"email", "firstname", "lastname", "company"} {
				if v, ok := props[key].(string); ok && v != "" {
					printKeyValue(key, v)
				}
			}
			return nil
		},
	}
}

func (c *CLI) hubspotSearchCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search contacts by email or name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.hubspotClient()
			if err != nil {
				return err
			}
			resp, err := client.SearchContacts(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}

			if c.jsonOut {
				return printJSON(resp)
			}
			results, _ := resp["results"].([]any)
			for _, r := range results {
				m, _ := r.(map[string]any)
				props, _ := m["properties"].(map[string]any)
				email, _ := props["email"].(string)
				id, _ := m["id"].(string)
				printKeyValue(email, id)
			}
			printDetail("%d matches", len(results))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum results")
	return cmd
}

func (c *CLI) hubspotCreateCommand() *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "create-contact",
		Short: "Create a contact from a JSON property map",
		RunE: func(cmd *cobra.Command, args []string) error {
			properties, err := parsePropertyJSON(data)
			if err != nil {
				return err
			}
			client, err := c.hubspotClient()
			if err != nil {
				return err
			}
			resp, err := client.CreateContact(cmd.Context(), properties)
			if err != nil {
				return err
			}

			if c.jsonOut {
				return printJSON(resp)
			}
			id, _ := resp["id"].(string)
			printSuccess("Created contact %s", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&data, "data", "", `contact properties, e.g. '{"email":"a@b.co"}'`)
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

func (c *CLI) hubspotTaskCommand() *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "create-task",
		Short: "Create a CRM task from a JSON property map",
		RunE: func(cmd *cobra.Command, args []string) error {
			properties, err := parsePropertyJSON(data)
			if err != nil {
				return err
			}
			client, err := c.hubspotClient()
			if err != nil {
				return err
			}
			resp, err := client.CreateTask(cmd.Context(), properties)
			if err != nil {
				return err
			}

			if c.jsonOut {
				return printJSON(resp)
			}
			id, _ := resp["id"].(string)
			printSuccess("Created task %s", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&data, "data", "", "task properties as JSON")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

func (c *CLI) hubspotDealsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "deals",
		Short: "List deals",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.hubspotClient()
			if err != nil {
				return err
			}

			var deals []map[string]any
			err = c.withSpinner(cmd.Context(), "Listing deals", func() error {
				deals, err = client.ListDeals(cmd.Context(), limit)
				return err
			})
			if err != nil {
				return err
			}

			if c.jsonOut {
				return printJSON(deals)
			}
			for _, d := range deals {
				props, _ := d["properties"].(map[string]any)
				name, _ := props["dealname"].(string)
				stage, _ := props["dealstage"].(string)
				printKeyValue(name, stage)
			}
			printDetail("%d deals", len(deals))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum deals to return (0 = all)")
	return cmd
}

// parsePropertyJSON decodes a user-supplied --data flag. Malformed JSON is a
// permanent input error, never retried.
func parsePropertyJSON(data string) (map[string]string, error) {
	var properties map[string]string
	if err := json.Unmarshal([]byte(data), &properties); err != nil {
		return nil, nxerrors.Wrap(nxerrors.ErrCodeInvalidInput, err, "parsing --data").
			WithHint(`--data must be a flat JSON object, e.g. '{"email":"a@b.co"}'`)
	}
	return properties, nil
}

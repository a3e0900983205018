package cli

import (
	"github.com/spf13/cobra"

	"github.com/nexushq/nexus/pkg/config"
)

// credentialChecks maps each integration to the keys it needs.
// doctor resolves them locally; it never makes a network call.
var credentialChecks = []struct {
	integration string
	keys        []string
}{
	{"slack", []string{config.KeySlackToken}},
	{"hubspot", []string{config.KeyHubSpotToken}},
	{"beam", []string{config.KeyBeamAPIKey, config.KeyBeamWorkspaceID}},
	{"airtable", []string{config.KeyAirtableAPIKey}},
	{"notion", []string{config.KeyNotionAPIKey}},
	{"heyreach", []string{config.KeyHeyReachAPIKey}},
	{"fathom", []string{config.KeyFathomAPIKey}},
}

// doctorCommand creates the doctor command, reporting which integrations
// have credentials resolved in the current workspace.
func (c *CLI) doctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check which integration credentials resolve",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			type status struct {
				Integration string   `json:"integration"`
				Configured  bool     `json:"configured"`
				Missing     []string `json:"missing,omitempty"`
			}

			var report []status
			for _, check := range credentialChecks {
				s := status{Integration: check.integration, Configured: true}
				for _, key := range check.keys {
					if cfg.Get(key) == "" {
						s.Configured = false
						s.Missing = append(s.Missing, key)
					}
				}
				report = append(report, s)
			}

			if c.jsonOut {
				return printJSON(report)
			}
			for _, s := range report {
				if s.Configured {
					printSuccess("%s", s.Integration)
					continue
				}
				printWarning("%s: missing %v", s.Integration, s.Missing)
			}
			printDetail("Workspace: %s", cfg.Dir())
			return nil
		},
	}
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nexushq/nexus/pkg/config"
	"github.com/nexushq/nexus/pkg/integrations/beam"
)

func (c *CLI) beamClient() (*beam.Client, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	apiKey, err := cfg.Require(config.KeyBeamAPIKey)
	if err != nil {
		return nil, err
	}
	workspaceID, err := cfg.Require(config.KeyBeamWorkspaceID)
	if err != nil {
		return nil, err
	}
	return beam.New(apiKey, workspaceID, c.clientOptions(cfg, "beam")...), nil
}

// beamCommand creates the beam command tree.
func (c *CLI) beamCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "beam",
		Short: "Beam agent platform commands",
	}

	cmd.AddCommand(c.beamTasksCommand())
	cmd.AddCommand(c.beamTaskCommand())
	cmd.AddCommand(c.beamCreateTaskCommand())
	cmd.AddCommand(c.beamRunCommand())

	return cmd
}

func (c *CLI) beamTasksCommand() *cobra.Command {
	var status string
	var limit int

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List workspace tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.beamClient()
			if err != nil {
				return err
			}
			resp, err := client.ListTasks(cmd.Context(), status, limit)
			if err != nil {
				return err
			}

			if c.jsonOut {
				return printJSON(resp)
			}
			tasks, _ := resp["tasks"].([]any)
			for _, t := range tasks {
				m, _ := t.(map[string]any)
				printKeyValue(fmt.Sprintf("%v", m["id"]), fmt.Sprintf("%v", m["status"]))
			}
			printDetail("%d tasks", len(tasks))
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by status (pending, completed, ...)")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum tasks to return")
	return cmd
}

func (c *CLI) beamTaskCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "task <task-id>",
		Short: "Fetch one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.beamClient()
			if err != nil {
				return err
			}
			task, err := client.GetTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(task)
		},
	}
}

func (c *CLI) beamCreateTaskCommand() *cobra.Command {
	var agentID string

	cmd := &cobra.Command{
		Use:   "create-task <query>",
		Short: "Submit a task to an agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.beamClient()
			if err != nil {
				return err
			}
			resp, err := client.CreateTask(cmd.Context(), agentID, args[0])
			if err != nil {
				return err
			}

			if c.jsonOut {
				return printJSON(resp)
			}
			printSuccess("Task submitted")
			return nil
		},
	}
	cmd.Flags().StringVar(&agentID, "agent", "", "agent ID to run the task")
	_ = cmd.MarkFlagRequired("agent")
	return cmd
}

func (c *CLI) beamRunCommand() *cobra.Command {
	var agentID string

	cmd := &cobra.Command{
		Use:   "run <prompt>",
		Short: "Run an agent and stream its output",
		Long: `Run an agent with the given prompt and stream server-sent events to
stdout as they arrive. Interrupt with ctrl-C to abort the stream.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.beamClient()
			if err != nil {
				return err
			}
			return client.RunAgent(cmd.Context(), agentID, args[0], func(data string) {
				fmt.Println(data)
			})
		},
	}
	cmd.Flags().StringVar(&agentID, "agent", "", "agent ID to run")
	_ = cmd.MarkFlagRequired("agent")
	return cmd
}

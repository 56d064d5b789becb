package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"semforge/internal/coordinator"
)

func newCampaignCommand() *cobra.Command {
	var file string
	var agents int

	cmd := &cobra.Command{
		Use:   "campaign",
		Short: "Submit a batch of optimize+evaluate pairs and drain it with concurrent agents",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := buildStack(cfg)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read campaign: %w", err)
			}
			var req coordinator.CampaignRequest
			if err := json.Unmarshal(data, &req); err != nil {
				return fmt.Errorf("parse campaign %s: %w", file, err)
			}

			ids := s.coordinator.SubmitCampaign(req)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d tasks enqueued\n", bold("campaign:"), len(ids))

			if agents < 1 {
				agents = 1
			}
			group, ctx := errgroup.WithContext(cmd.Context())
			for i := 0; i < agents; i++ {
				agent := s.coordinator.RegisterAgent(fmt.Sprintf("agent-%d", i+1), []string{"optimize", "evaluate"})
				group.Go(func() error {
					for {
						task, ok := s.coordinator.NextTask(agent.ID)
						if !ok {
							return nil
						}
						s.coordinator.ExecuteTask(ctx, task)
					}
				})
			}
			if err := group.Wait(); err != nil {
				return err
			}

			printCampaign(cmd, s.coordinator)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "JSON file with parallel optimizations and evaluations lists")
	cmd.Flags().IntVar(&agents, "agents", 2, "number of concurrent agents")
	cobra.CheckErr(cmd.MarkFlagRequired("file"))
	return cmd
}

func printCampaign(cmd *cobra.Command, c *coordinator.Coordinator) {
	out := cmd.OutOrStdout()
	for _, result := range c.Results() {
		status := red(result.Notes)
		if result.Persisted {
			status = green(result.Notes)
		} else if result.Notes == "rollback" {
			status = yellow(result.Notes)
		}
		name := ""
		if result.Optimization != nil {
			name = cyan(result.Optimization.SemanticType)
		}
		fmt.Fprintf(out, "  %s %s deltaF1=%+.3f %s\n", result.TaskID, status, result.DeltaF1, name)
	}

	board := c.Scoreboard()
	fmt.Fprintf(out, "%s agents=%d queue=%d tasks=%d deltaF1Sum=%+.3f\n",
		bold("scoreboard:"), board.Agents, board.QueueDepth, board.Tasks, board.DeltaF1Sum)
}

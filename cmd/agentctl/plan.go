package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan <goal>",
		Short: "Print the execution plan for a goal without running it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			goal := strings.Join(args, " ")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			orch, err := buildOrchestrator(cfg, true)
			if err != nil {
				return err
			}

			plan, err := orch.Plan(cmd.Context(), goal)
			if err != nil {
				return err
			}

			fmt.Printf("Plan %s\n", plan.ID)
			fmt.Printf("Goal: %s\n", plan.Goal)
			fmt.Printf("Estimated duration: %ds\n\n", plan.EstimatedDuration)
			for i, step := range plan.Steps {
				fmt.Printf("%d. %s\n", i+1, step.Description)
				if step.ToolName != "" {
					fmt.Printf("   tool: %s\n", step.ToolName)
				}
				if len(step.Dependencies) > 0 {
					fmt.Printf("   depends on: %s\n", strings.Join(step.Dependencies, ", "))
				}
			}
			return nil
		},
	}
}

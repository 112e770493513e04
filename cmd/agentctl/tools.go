package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rahul/agentctl/internal/task"
)

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the registered tools grouped by category",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			registry := buildRegistry(cfg)

			categories := []task.Category{
				task.CategoryCore,
				task.CategoryEnvironment,
				task.CategoryVersionControl,
				task.CategoryWebResearch,
				task.CategoryCloud,
				task.CategoryData,
				task.CategoryCommunication,
				task.CategoryVisualization,
				task.CategoryDebugging,
			}

			for _, cat := range categories {
				list := registry.List(cat)
				if len(list) == 0 {
					continue
				}
				fmt.Printf("%s:\n", cat)
				for _, t := range list {
					line := fmt.Sprintf("  %-15s %s (risk: %s", t.Name, t.Description, t.RiskLevel)
					if t.RequiresConfirmation {
						line += ", requires confirmation"
					}
					fmt.Println(line + ")")
				}
				fmt.Println()
			}
			return nil
		},
	}
}

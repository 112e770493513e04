package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "run <goal>",
		Short: "Execute a goal autonomously",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			goal := strings.Join(args, " ")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			orch, err := buildOrchestrator(cfg, quiet)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			summary, err := orch.Run(ctx, goal)
			if err != nil {
				return err
			}
			printSummary(summary)

			if summary.Status != "success" {
				return fmt.Errorf("run finished with status %s", summary.Status)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress event log output")
	return cmd
}

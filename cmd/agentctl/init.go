package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rahul/agentctl/pkg/config"
)

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Create the .agentctl directory and a default config",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}

			base := filepath.Join(root, ".agentctl")
			for _, dir := range []string{base, filepath.Join(base, "memory"), filepath.Join(base, "logs")} {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return fmt.Errorf("failed to create %s: %w", dir, err)
				}
			}

			cfgPath := filepath.Join(base, "config.yaml")
			if _, err := os.Stat(cfgPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", cfgPath)
			}

			if err := config.Default().Save(cfgPath); err != nil {
				return err
			}
			fmt.Printf("Initialized %s\n", base)
			fmt.Printf("Config written to %s\n", cfgPath)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing config")
	return cmd
}

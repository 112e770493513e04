package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rahul/agentctl/internal/codebase"
)

func newIndexCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "index [path]",
		Short: "Index a source tree for code search",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}

			idx, err := codebase.Scan(root)
			if err != nil {
				return err
			}

			files := idx.Files()
			fmt.Printf("Indexed %d files, %d symbols\n", len(files), idx.SymbolCount())
			if verbose {
				for _, f := range files {
					fmt.Printf("  %s (%s, %d lines, %d symbols)\n", f.Path, f.Language, f.Lines, len(f.Symbols))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "list every indexed file")
	return cmd
}

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive session with the agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			orch, err := buildOrchestrator(cfg, true)
			if err != nil {
				return err
			}

			fmt.Println("agentctl interactive session. Type /help for commands.")
			scanner := bufio.NewScanner(os.Stdin)

			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					break
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}

				switch line {
				case "/quit", "/exit":
					return nil
				case "/help":
					fmt.Println("Commands: /quit, /status, /clear, /help")
					fmt.Println("Task verbs (create/build/implement/fix/update/add/remove/deploy) run autonomously; anything else is answered directly.")
					continue
				case "/status":
					fmt.Printf("Session: %s\n", orch.SessionID())
					continue
				case "/clear":
					orch.ClearSession()
					fmt.Println("Session context cleared.")
					continue
				}

				response, err := orch.Chat(cmd.Context(), line)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error: %v\n", err)
					continue
				}
				fmt.Println(response)
			}
			return scanner.Err()
		},
	}
}

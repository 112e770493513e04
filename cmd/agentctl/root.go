package main

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/rahul/agentctl/internal/agent"
	"github.com/rahul/agentctl/internal/gateway"
	"github.com/rahul/agentctl/internal/llm"
	"github.com/rahul/agentctl/internal/memory"
	"github.com/rahul/agentctl/internal/observability"
	"github.com/rahul/agentctl/internal/planner"
	"github.com/rahul/agentctl/internal/safety"
	"github.com/rahul/agentctl/internal/store"
	"github.com/rahul/agentctl/internal/terminal"
	"github.com/rahul/agentctl/internal/tools"
	"github.com/rahul/agentctl/internal/workspace"
	"github.com/rahul/agentctl/pkg/config"
)

var configPath string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "agentctl",
		Short:         "Autonomous task agent",
		Long:          "agentctl plans and executes development goals: decompose, select tools, gate risky actions, run, summarize.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")

	root.AddCommand(
		newRunCmd(),
		newPlanCmd(),
		newChatCmd(),
		newInitCmd(),
		newIndexCmd(),
		newToolsCmd(),
	)
	return root
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildOrchestrator wires every collaborator from config. Optional pieces
// (LLM, history, telegram) degrade to nil with a warning.
func buildOrchestrator(cfg *config.Config, quiet bool) (*agent.Orchestrator, error) {
	client, err := llm.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize llm: %w", err)
	}

	files, err := workspace.NewStore(cfg.App.WorkingDirectory)
	if err != nil {
		return nil, err
	}

	ltm, err := memory.NewLongTerm(cfg.Memory.Path)
	if err != nil {
		return nil, err
	}

	history, err := store.NewHistoryStore(cfg.Memory.HistoryPath)
	if err != nil {
		log.Printf("Warning: conversation history disabled: %v", err)
		history = nil
	}

	var messenger gateway.Messenger
	if cfg.Tools.TelegramToken != "" && cfg.Tools.TelegramChatID != "" {
		tg, err := gateway.NewTelegram(cfg.Tools.TelegramToken)
		if err != nil {
			log.Printf("Warning: telegram notifications disabled: %v", err)
		} else {
			messenger = tg
		}
	}

	// The deny-list is a safe-mode feature; disabling safe mode runs
	// everything unfiltered.
	var blocked []string
	if cfg.Safety.SafeMode {
		blocked = cfg.Safety.BlockedCommands
	}
	policy := safety.NewPolicy(blocked)

	deps := agent.Deps{
		Planner:      planner.New(planner.NewDecomposer(completerOrNil(client))),
		Registry:     buildRegistry(cfg),
		Gate:         safety.NewGate(cfg.Safety.AutoApproveLowRisk),
		Shell:        terminal.NewExecutor(policy, time.Duration(cfg.Safety.MaxExecutionTime)*time.Second, cfg.App.WorkingDirectory),
		Files:        files,
		LLM:          completerOrNil(client),
		STM:          memory.NewWorking(cfg.Memory.MaxContextItems, cfg.Memory.MaxOutputs, cfg.Memory.MaxErrors),
		LTM:          ltm,
		History:      history,
		HistoryLimit: cfg.Memory.MaxHistoryMessages,
		Logger:       observability.NewLogger(cfg.App.LogFile, quiet || !cfg.App.Verbose),
		Messenger:    messenger,
		NotifyChatID: cfg.Tools.TelegramChatID,
		WorkDir:      cfg.App.WorkingDirectory,
	}
	return agent.New(deps), nil
}

// buildRegistry starts from the defaults and drops the tool families the
// config disables.
func buildRegistry(cfg *config.Config) *tools.Registry {
	registry := tools.DefaultRegistry()
	if !cfg.Tools.EnableWebSearch {
		registry.Remove("search_web")
		registry.Remove("fetch_page")
	}
	if !cfg.Tools.EnableBrowser {
		registry.Remove("browse_page")
	}
	if !cfg.Tools.EnableGit {
		registry.Remove("git_commit")
		registry.Remove("git_push")
	}
	return registry
}

// completerOrNil hides an unconfigured client behind a nil interface so the
// planner and reasoner take their fallback paths.
func completerOrNil(client *llm.Client) llm.Completer {
	if client == nil || !client.Configured() {
		return nil
	}
	return client
}

func printSummary(s agent.Summary) {
	fmt.Println()
	fmt.Println(s.Title)
	fmt.Println(s.Overview)
	for _, d := range s.Details {
		fmt.Println("  " + d)
	}
	fmt.Printf("Status: %s\n", s.Status)
}

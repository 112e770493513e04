package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App    AppConfig    `yaml:"app"`
	LLM    LLMConfig    `yaml:"llm"`
	Safety SafetyConfig `yaml:"safety"`
	Memory MemoryConfig `yaml:"memory"`
	Tools  ToolsConfig  `yaml:"tools"`
}

type AppConfig struct {
	Name             string `yaml:"name"`
	WorkingDirectory string `yaml:"working_directory"`
	LogFile          string `yaml:"log_file"`
	Verbose          bool   `yaml:"verbose"`
}

type LLMConfig struct {
	Provider    string  `yaml:"provider"` // openai, openrouter
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url,omitempty"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	Timeout     int     `yaml:"timeout"` // seconds
}

type SafetyConfig struct {
	SafeMode           bool     `yaml:"safe_mode"`
	AutoApproveLowRisk bool     `yaml:"auto_approve_low_risk"`
	BlockedCommands    []string `yaml:"blocked_commands"`
	MaxExecutionTime   int      `yaml:"max_execution_time"` // seconds
}

type MemoryConfig struct {
	Path               string `yaml:"path"`
	HistoryPath        string `yaml:"history_path"`
	MaxContextItems    int    `yaml:"max_context_items"`
	MaxOutputs         int    `yaml:"max_outputs"`
	MaxErrors          int    `yaml:"max_errors"`
	MaxHistoryMessages int    `yaml:"max_history_messages"`
}

type ToolsConfig struct {
	EnableWebSearch bool   `yaml:"enable_web_search"`
	EnableBrowser   bool   `yaml:"enable_browser"`
	EnableGit       bool   `yaml:"enable_git"`
	TelegramToken   string `yaml:"telegram_token,omitempty"`
	TelegramChatID  string `yaml:"telegram_chat_id,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:             "agentctl",
			WorkingDirectory: ".",
			LogFile:          filepath.Join(".agentctl", "logs", "events.jsonl"),
		},
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4o",
			Temperature: 0.7,
			MaxTokens:   4096,
			Timeout:     120,
		},
		Safety: SafetyConfig{
			SafeMode:           true,
			AutoApproveLowRisk: true,
			BlockedCommands: []string{
				"rm -rf /",
				"rm -rf /*",
				"mkfs",
				":(){:|:&};:",
				"dd if=/dev/zero",
			},
			MaxExecutionTime: 300,
		},
		Memory: MemoryConfig{
			Path:               filepath.Join(".agentctl", "memory"),
			HistoryPath:        filepath.Join(".agentctl", "history.db"),
			MaxContextItems:    100,
			MaxOutputs:         50,
			MaxErrors:          20,
			MaxHistoryMessages: 50,
		},
		Tools: ToolsConfig{
			EnableWebSearch: true,
			EnableGit:       true,
		},
	}
}

// defaultPaths are tried in order when no explicit path is given.
var defaultPaths = []string{
	filepath.Join(".agentctl", "config.yaml"),
	filepath.Join(".agentctl", "config.yml"),
	"agentctl.yaml",
}

// Load reads configuration from the given path (or the default locations)
// and applies environment overrides. A missing file is not an error; the
// defaults are returned.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		for _, p := range defaultPaths {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && c.LLM.APIKey == "" {
		c.LLM.APIKey = key
		if c.LLM.Provider == "" {
			c.LLM.Provider = "openai"
		}
	}
	if key := os.Getenv("OPENROUTER_API_KEY"); key != "" && c.LLM.APIKey == "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "openrouter"
		if c.LLM.BaseURL == "" {
			c.LLM.BaseURL = "https://openrouter.ai/api/v1"
		}
	}
	if model := os.Getenv("AGENTCTL_MODEL"); model != "" {
		c.LLM.Model = model
	}
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" && c.Tools.TelegramToken == "" {
		c.Tools.TelegramToken = token
	}
}

// Save writes the configuration as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// LLMConfigured reports whether a completion provider can be constructed.
func (c *Config) LLMConfigured() bool {
	return c.LLM.APIKey != ""
}

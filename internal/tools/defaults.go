package tools

import "github.com/rahul/agentctl/internal/task"

// DefaultRegistry returns the built-in tool set.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, t := range []task.Tool{
		{
			Name:           "execute_shell",
			Description:    "Execute a shell command",
			Category:       task.CategoryEnvironment,
			Parameters:     map[string]string{"command": "str", "timeout": "int", "cwd": "str"},
			RequiredParams: []string{"command"},
			RiskLevel:      task.RiskMedium,
		},
		{
			Name:           "read_file",
			Description:    "Read contents of a file",
			Category:       task.CategoryEnvironment,
			Parameters:     map[string]string{"path": "str", "encoding": "str"},
			RequiredParams: []string{"path"},
			RiskLevel:      task.RiskLow,
		},
		{
			Name:           "write_file",
			Description:    "Write contents to a file",
			Category:       task.CategoryEnvironment,
			Parameters:     map[string]string{"path": "str", "content": "str", "encoding": "str"},
			RequiredParams: []string{"path", "content"},
			RiskLevel:      task.RiskMedium,
		},
		{
			Name:           "search_code",
			Description:    "Search for code patterns in codebase",
			Category:       task.CategoryEnvironment,
			Parameters:     map[string]string{"query": "str", "file_pattern": "str", "path": "str"},
			RequiredParams: []string{"query"},
			RiskLevel:      task.RiskLow,
		},
		{
			Name:           "generate_code",
			Description:    "Generate code from specification",
			Category:       task.CategoryCore,
			Parameters:     map[string]string{"spec": "str", "language": "str"},
			RequiredParams: []string{"spec"},
			RiskLevel:      task.RiskLow,
		},
		{
			Name:           "git_commit",
			Description:    "Commit changes to git",
			Category:       task.CategoryVersionControl,
			Parameters:     map[string]string{"message": "str", "files": "list"},
			RequiredParams: []string{"message"},
			RiskLevel:      task.RiskMedium,
		},
		{
			Name:                 "git_push",
			Description:          "Push commits to remote",
			Category:             task.CategoryVersionControl,
			Parameters:           map[string]string{"remote": "str", "branch": "str"},
			RiskLevel:            task.RiskHigh,
			RequiresConfirmation: true,
		},
		{
			Name:           "search_web",
			Description:    "Search the web for information",
			Category:       task.CategoryWebResearch,
			Parameters:     map[string]string{"query": "str", "num_results": "int"},
			RequiredParams: []string{"query"},
			RiskLevel:      task.RiskLow,
		},
		{
			Name:           "fetch_page",
			Description:    "Fetch a webpage and extract readable article text",
			Category:       task.CategoryWebResearch,
			Parameters:     map[string]string{"url": "str"},
			RequiredParams: []string{"url"},
			RiskLevel:      task.RiskLow,
		},
		{
			Name:           "browse_page",
			Description:    "Render a javascript page in a headless browser",
			Category:       task.CategoryWebResearch,
			Parameters:     map[string]string{"url": "str", "selector": "str"},
			RequiredParams: []string{"url"},
			RiskLevel:      task.RiskMedium,
		},
		{
			Name:           "send_message",
			Description:    "Send a notification message to the user",
			Category:       task.CategoryCommunication,
			Parameters:     map[string]string{"message": "str"},
			RequiredParams: []string{"message"},
			RiskLevel:      task.RiskLow,
		},
	} {
		r.Register(t)
	}
	return r
}

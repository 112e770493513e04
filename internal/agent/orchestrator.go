// Package agent is the execution loop: plan a goal, order its steps,
// select a tool per step, gate risky actions, run the tool, record the
// outcome, and summarize.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rahul/agentctl/internal/codebase"
	"github.com/rahul/agentctl/internal/gateway"
	"github.com/rahul/agentctl/internal/llm"
	"github.com/rahul/agentctl/internal/memory"
	"github.com/rahul/agentctl/internal/observability"
	"github.com/rahul/agentctl/internal/planner"
	"github.com/rahul/agentctl/internal/safety"
	"github.com/rahul/agentctl/internal/store"
	"github.com/rahul/agentctl/internal/task"
	"github.com/rahul/agentctl/internal/terminal"
	"github.com/rahul/agentctl/internal/tools"
	"github.com/rahul/agentctl/internal/workspace"
)

// Deps wires the orchestrator's collaborators. Planner, Registry, Gate,
// Shell, Files, STM, and Logger are required; the rest may be nil and the
// corresponding capability degrades.
type Deps struct {
	Planner  *planner.Planner
	Registry *tools.Registry
	Gate     *safety.Gate
	Shell    *terminal.Executor
	Files    *workspace.Store
	LLM      llm.Completer
	STM      *memory.Working
	LTM      *memory.LongTerm
	History  *store.HistoryStore
	Logger   *observability.Logger

	// HistoryLimit caps how many stored messages are replayed as chat
	// context; zero disables replay.
	HistoryLimit int

	Messenger    gateway.Messenger
	NotifyChatID string

	Approval safety.ApprovalCallback
	WorkDir  string
}

// Orchestrator owns one session's execution state: registry, audit trail,
// working memory. One Run executes at a time per instance.
type Orchestrator struct {
	deps      Deps
	selector  *tools.Selector
	reasoner  *Reasoner
	retrier   *Retrier
	sessionID string

	codeIndex *codebase.Index
	webSearch *tools.WebSearch
	scraper   *tools.Scraper
	browser   *tools.Browser
}

func New(deps Deps) *Orchestrator {
	if deps.Registry == nil {
		deps.Registry = tools.DefaultRegistry()
	}
	return &Orchestrator{
		deps:      deps,
		selector:  tools.NewSelector(deps.Registry),
		reasoner:  NewReasoner(deps.LLM),
		retrier:   NewRetrier(),
		sessionID: uuid.NewString(),
		scraper:   tools.NewScraper(),
		browser:   tools.NewBrowser(0),
	}
}

// SessionID identifies this orchestrator's conversation session.
func (o *Orchestrator) SessionID() string {
	return o.sessionID
}

// ClearSession drops working memory and the stored conversation history
// for this session.
func (o *Orchestrator) ClearSession() {
	o.deps.STM.Clear()
	if o.deps.History != nil {
		if err := o.deps.History.ClearSession(o.sessionID); err != nil {
			o.deps.Logger.LogReasoning("", "failed to clear session: "+err.Error())
		}
	}
}

// Plan decomposes a goal without executing it.
func (o *Orchestrator) Plan(ctx context.Context, goal string) (*task.Plan, error) {
	return o.deps.Planner.CreatePlan(ctx, goal, nil)
}

// Run executes a goal autonomously and returns the run summary. A failing
// step never aborts the plan; its error is analyzed and the loop moves on.
func (o *Orchestrator) Run(ctx context.Context, goal string) (Summary, error) {
	started := time.Now()
	o.addHistory("user", goal)

	plan, err := o.deps.Planner.CreatePlan(ctx, goal, nil)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to plan goal: %w", err)
	}
	o.deps.Logger.LogPlan(plan.ID, goal, len(plan.Steps), plan.EstimatedDuration)

	execCtx := task.Context{
		TaskID:           plan.ID,
		WorkingDirectory: o.deps.WorkDir,
		Environment:      o.deps.Shell.Environment(),
	}

	o.deps.STM.PushTask(goal)
	defer o.deps.STM.CompleteTask()

	var results []task.StepResult
	for _, step := range o.deps.Planner.PrioritizeSteps(plan.Steps) {
		step.Status = task.StatusInProgress
		o.deps.Logger.LogStep(plan.ID, step.ID, step.Description, string(step.Status))

		result, toolName, err := o.executeStep(ctx, execCtx, step)
		if toolName == "" {
			toolName = "unknown"
		}

		if err != nil {
			analysis := AnalyzeError(err)
			step.Status = task.StatusFailed
			step.Error = err.Error()
			step.CompletedAt = time.Now()
			results = append(results, task.StepResult{
				Step:           step.Description,
				Success:        false,
				Error:          err.Error(),
				FixSuggestions: append(analysis.Suggestions, "Verify the fix resolved the issue"),
			})
			o.deps.STM.AddError(err.Error(), toolName, "")
		} else {
			step.Status = task.StatusCompleted
			step.Result = result
			step.CompletedAt = time.Now()
			results = append(results, task.StepResult{
				Step:    step.Description,
				Success: true,
				Result:  result,
			})
			o.deps.STM.AddOutput(result, toolName, true)
		}
		o.deps.Logger.LogStep(plan.ID, step.ID, step.Description, string(step.Status))
	}

	o.deps.Planner.UpdatePlanStatus(plan)

	summary := Summarize(results, "Execution: "+goal)
	o.deps.Logger.LogRun(plan.ID, goal, summary.Status, countSuccesses(results), len(results)-countSuccesses(results))

	if o.deps.LTM != nil {
		if err := o.deps.LTM.StoreSolution(goal, summary.Overview, map[string]string{
			"plan_id": plan.ID,
			"status":  summary.Status,
		}); err != nil {
			o.deps.Logger.LogReasoning(plan.ID, "failed to persist solution: "+err.Error())
		}
	}

	o.addHistory("assistant", summary.Overview)
	o.recordRun(plan, goal, summary, results, started)
	o.notify(goal, summary)

	return summary, nil
}

// Chat routes a message: task verbs trigger autonomous execution,
// everything else goes to reasoning.
func (o *Orchestrator) Chat(ctx context.Context, message string) (string, error) {
	if IsTaskMessage(message) {
		summary, err := o.Run(ctx, message)
		if err != nil {
			return "", err
		}
		return summary.Overview, nil
	}

	prompt := o.withRecentHistory(message)
	o.addHistory("user", message)
	result, err := o.reasoner.Reason(ctx, prompt)
	if err != nil {
		return "", err
	}
	o.addHistory("assistant", result.Conclusion)
	return result.Conclusion, nil
}

// withRecentHistory prepends the session's stored conversation so chat
// answers can refer back to earlier turns.
func (o *Orchestrator) withRecentHistory(message string) string {
	if o.deps.History == nil || o.deps.HistoryLimit <= 0 {
		return message
	}
	msgs, err := o.deps.History.History(o.sessionID, o.deps.HistoryLimit)
	if err != nil || len(msgs) == 0 {
		return message
	}

	var b strings.Builder
	b.WriteString("Conversation so far:\n")
	for _, m := range msgs {
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
	}
	b.WriteString("\n")
	b.WriteString(message)
	return b.String()
}

var taskVerbs = []string{"create", "build", "implement", "fix", "update", "add", "remove", "deploy"}

// IsTaskMessage reports whether a chat message should be executed as a goal.
func IsTaskMessage(message string) bool {
	lower := strings.ToLower(message)
	for _, verb := range taskVerbs {
		if strings.Contains(lower, verb) {
			return true
		}
	}
	return false
}

// executeStep selects a tool and dispatches it. The returned tool name tags
// the STM record.
func (o *Orchestrator) executeStep(ctx context.Context, execCtx task.Context, step *task.Step) (string, string, error) {
	tool, ok := o.lookupTool(step)
	if !ok {
		result, err := o.reasoner.Reason(ctx, step.Description)
		if err != nil {
			return "", "reasoning", err
		}
		return result.Conclusion, "reasoning", nil
	}

	if tool.RequiresConfirmation {
		action := task.Action{
			Name:        tool.Name,
			Description: step.Description,
			Command:     stringParam(step.Parameters, "command"),
			Timestamp:   time.Now(),
		}
		risk := task.MaxRisk(safety.ClassifyRisk(action), tool.RiskLevel)
		approved := o.deps.Gate.ConfirmActionAtLeast(action, tool.RiskLevel, o.deps.Approval)
		o.deps.Logger.LogRisk(execCtx.TaskID, tool.Name, string(risk), approved, "")
		if !approved {
			// Cancellation is not failure.
			return "Action cancelled by user", tool.Name, nil
		}
	}

	if err := tools.ValidateParams(tool, step.Parameters); err != nil {
		return "", tool.Name, err
	}

	o.deps.Logger.LogToolCall(execCtx.TaskID, tool.Name, step.Parameters)
	result, err := o.dispatch(ctx, execCtx, tool.Name, step)
	o.deps.Logger.LogToolResult(execCtx.TaskID, tool.Name, err == nil, truncate(result, 200))
	return result, tool.Name, err
}

// lookupTool honors the planner's tool hint when it names a registered
// tool, falling back to keyword selection.
func (o *Orchestrator) lookupTool(step *task.Step) (task.Tool, bool) {
	if step.ToolName != "" {
		if tool, ok := o.deps.Registry.Get(step.ToolName); ok {
			return tool, true
		}
	}
	return o.selector.Select(step.Description)
}

// dispatch is the closed switch over known tool names; unknown names fall
// through to reasoning.
func (o *Orchestrator) dispatch(ctx context.Context, execCtx task.Context, name string, step *task.Step) (string, error) {
	switch name {
	case "execute_shell":
		var p struct {
			Command string `json:"command"`
			Timeout int    `json:"timeout"`
			Cwd     string `json:"cwd"`
		}
		if err := decodeParams(step.Parameters, &p); err != nil {
			return "", err
		}
		res, err := o.deps.Shell.Run(ctx, p.Command, time.Duration(p.Timeout)*time.Second, p.Cwd)
		if err != nil {
			return "", err
		}
		if res.Success {
			return res.Output, nil
		}
		return res.Error, nil

	case "read_file":
		var p struct {
			Path string `json:"path"`
		}
		if err := decodeParams(step.Parameters, &p); err != nil {
			return "", err
		}
		return o.deps.Files.Read(p.Path)

	case "write_file":
		var p struct {
			Path    string `json:"path"`
			Content string `json:"content"`
		}
		if err := decodeParams(step.Parameters, &p); err != nil {
			return "", err
		}
		if err := o.deps.Files.Write(p.Path, p.Content); err != nil {
			return "", err
		}
		return "File written", nil

	case "search_code":
		var p struct {
			Query       string `json:"query"`
			FilePattern string `json:"file_pattern"`
			Path        string `json:"path"`
		}
		if err := decodeParams(step.Parameters, &p); err != nil {
			return "", err
		}
		idx, err := o.index(p.Path)
		if err != nil {
			return "", err
		}
		matches, err := idx.SearchCode(p.Query, p.FilePattern, 0)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Found %d matches", len(matches)), nil

	case "generate_code":
		var p struct {
			Spec     string `json:"spec"`
			Language string `json:"language"`
		}
		if err := decodeParams(step.Parameters, &p); err != nil {
			return "", err
		}
		return o.generateCode(ctx, execCtx.TaskID, p.Spec, p.Language, step.Description)

	case "git_commit":
		var p struct {
			Message string   `json:"message"`
			Files   []string `json:"files"`
		}
		if err := decodeParams(step.Parameters, &p); err != nil {
			return "", err
		}
		return o.gitCommit(ctx, p.Message, p.Files)

	case "git_push":
		var p struct {
			Remote string `json:"remote"`
			Branch string `json:"branch"`
		}
		if err := decodeParams(step.Parameters, &p); err != nil {
			return "", err
		}
		if p.Remote == "" {
			p.Remote = "origin"
		}
		cmd := "git push " + p.Remote
		if p.Branch != "" {
			cmd += " " + p.Branch
		}
		return o.runShell(ctx, cmd)

	case "search_web":
		var p struct {
			Query      string `json:"query"`
			NumResults int    `json:"num_results"`
		}
		if err := decodeParams(step.Parameters, &p); err != nil {
			return "", err
		}
		search, err := o.search(p.NumResults)
		if err != nil {
			return "", err
		}
		return o.retrier.Do(ctx, "search_web", DefaultRetryConfig(), func(ctx context.Context) (string, error) {
			return search.Search(ctx, p.Query)
		})

	case "fetch_page":
		var p struct {
			URL string `json:"url"`
		}
		if err := decodeParams(step.Parameters, &p); err != nil {
			return "", err
		}
		return o.retrier.Do(ctx, "fetch_page", DefaultRetryConfig(), func(ctx context.Context) (string, error) {
			return o.scraper.Fetch(ctx, p.URL)
		})

	case "browse_page":
		var p struct {
			URL      string `json:"url"`
			Selector string `json:"selector"`
		}
		if err := decodeParams(step.Parameters, &p); err != nil {
			return "", err
		}
		return o.browser.Render(ctx, p.URL, p.Selector)

	case "send_message":
		var p struct {
			Message string `json:"message"`
		}
		if err := decodeParams(step.Parameters, &p); err != nil {
			return "", err
		}
		if o.deps.Messenger == nil {
			return "", fmt.Errorf("no messaging channel configured")
		}
		if err := o.deps.Messenger.Send(o.deps.NotifyChatID, p.Message); err != nil {
			return "", err
		}
		return "Message sent", nil

	default:
		result, err := o.reasoner.Reason(ctx, step.Description)
		if err != nil {
			return "", err
		}
		return result.Conclusion, nil
	}
}

func (o *Orchestrator) generateCode(ctx context.Context, taskID, spec, language, fallbackSpec string) (string, error) {
	if spec == "" {
		spec = fallbackSpec
	}
	if language == "" {
		language = "go"
	}
	if o.deps.LLM == nil {
		return "Code generation requires a configured LLM provider", nil
	}

	prompt := fmt.Sprintf("Generate %s code for the following specification. Return only the code.\n\n%s", language, spec)
	response, err := o.deps.LLM.Complete(ctx, prompt, "You are a code generator. Produce clean, working code.")
	if err != nil {
		return "", fmt.Errorf("code generation failed: %w", err)
	}
	o.deps.Logger.LogLLM(taskID, truncate(prompt, 200), truncate(response, 200))
	return response, nil
}

func (o *Orchestrator) gitCommit(ctx context.Context, message string, files []string) (string, error) {
	if len(files) > 0 {
		if _, err := o.runShell(ctx, "git add "+strings.Join(files, " ")); err != nil {
			return "", err
		}
	} else {
		if _, err := o.runShell(ctx, "git add -A"); err != nil {
			return "", err
		}
	}
	return o.runShell(ctx, fmt.Sprintf("git commit -m %q", message))
}

func (o *Orchestrator) runShell(ctx context.Context, command string) (string, error) {
	res, err := o.deps.Shell.Run(ctx, command, 0, "")
	if err != nil {
		return "", err
	}
	if !res.Success {
		return "", fmt.Errorf("command failed (exit %d): %s", res.ExitCode, strings.TrimSpace(res.Error))
	}
	return res.Output, nil
}

// index lazily scans the codebase on first search_code use.
func (o *Orchestrator) index(path string) (*codebase.Index, error) {
	if path == "" {
		if o.codeIndex != nil {
			return o.codeIndex, nil
		}
		path = o.deps.WorkDir
		if path == "" {
			path = "."
		}
	}
	idx, err := codebase.Scan(path)
	if err != nil {
		return nil, err
	}
	o.codeIndex = idx
	return idx, nil
}

func (o *Orchestrator) search(numResults int) (*tools.WebSearch, error) {
	if o.webSearch != nil {
		return o.webSearch, nil
	}
	search, err := tools.NewWebSearch(numResults)
	if err != nil {
		return nil, err
	}
	o.webSearch = search
	return search, nil
}

func (o *Orchestrator) addHistory(role, content string) {
	if o.deps.History == nil {
		return
	}
	if err := o.deps.History.AddMessage(o.sessionID, role, content); err != nil {
		o.deps.Logger.LogReasoning("", "failed to record history: "+err.Error())
	}
}

func (o *Orchestrator) recordRun(plan *task.Plan, goal string, summary Summary, results []task.StepResult, started time.Time) {
	if o.deps.History == nil {
		return
	}
	ok := countSuccesses(results)
	err := o.deps.History.RecordRun(store.RunRecord{
		SessionID:  o.sessionID,
		Goal:       goal,
		Status:     summary.Status,
		StepsTotal: len(results),
		StepsOK:    ok,
		Summary:    summary.Overview,
		StartedAt:  started,
		FinishedAt: time.Now(),
	})
	if err != nil {
		o.deps.Logger.LogReasoning(plan.ID, "failed to record run: "+err.Error())
	}
}

func (o *Orchestrator) notify(goal string, summary Summary) {
	if o.deps.Messenger == nil || o.deps.NotifyChatID == "" {
		return
	}
	text := fmt.Sprintf("*%s*\n%s\nStatus: %s", goal, summary.Overview, summary.Status)
	if err := o.deps.Messenger.Send(o.deps.NotifyChatID, text); err != nil {
		o.deps.Logger.LogReasoning("", "failed to send notification: "+err.Error())
	}
}

func countSuccesses(results []task.StepResult) int {
	n := 0
	for _, r := range results {
		if r.Success {
			n++
		}
	}
	return n
}

// decodeParams converts a step's parameter map into a typed struct.
func decodeParams(params map[string]any, v any) error {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	return nil
}

func stringParam(params map[string]any, key string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

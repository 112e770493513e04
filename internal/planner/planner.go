// Package planner turns a natural-language goal into an ordered execution
// plan: LLM decomposition with a single-step fallback, a complexity
// heuristic, and a dependency-aware step scheduler.
package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rahul/agentctl/internal/llm"
	"github.com/rahul/agentctl/internal/task"
)

// Decomposer breaks goals into steps.
type Decomposer struct {
	client llm.Completer
}

func NewDecomposer(client llm.Completer) *Decomposer {
	return &Decomposer{client: client}
}

// stepPayload is the shape the decomposition prompt asks the model for.
type stepPayload struct {
	Description  string `json:"description"`
	Dependencies []any  `json:"dependencies"`
	ToolName     string `json:"tool_name"`
}

// DecomposeTask breaks a goal into pending steps. When no LLM is configured
// or the response cannot be parsed, a single step wrapping the goal is
// returned; that degradation is deliberate, not an error.
func (d *Decomposer) DecomposeTask(ctx context.Context, goal string, extra map[string]any) ([]*task.Step, error) {
	if d.client == nil {
		return []*task.Step{task.NewStep(goal)}, nil
	}

	prompt := buildDecompositionPrompt(goal, extra)
	response, err := d.client.Complete(ctx, prompt, "You are a planning assistant that decomposes development goals into steps.")
	if err != nil {
		return []*task.Step{task.NewStep(goal)}, nil
	}

	steps, ok := parseStepsResponse(response)
	if !ok {
		return []*task.Step{task.NewStep(goal)}, nil
	}
	return steps, nil
}

func buildDecompositionPrompt(goal string, extra map[string]any) string {
	var b strings.Builder
	b.WriteString("Decompose the following goal into discrete, actionable steps.\n")
	b.WriteString("Each step should be specific and executable.\n\n")
	fmt.Fprintf(&b, "Goal: %s\n", goal)
	if len(extra) > 0 {
		b.WriteString("\nContext:\n")
		for k, v := range extra {
			fmt.Fprintf(&b, "- %s: %v\n", k, v)
		}
	}
	b.WriteString(`
Return a JSON array of steps with:
- description: what needs to be done
- dependencies: list of step indices this depends on
- tool_name: suggested tool to use (if applicable)

Format as JSON array.`)
	return b.String()
}

// parseStepsResponse parses the model's JSON array. Dependencies arrive as
// step indices and are rewritten to the generated step ids.
func parseStepsResponse(response string) ([]*task.Step, bool) {
	raw := extractJSONArray(response)
	if raw == "" {
		return nil, false
	}

	var payloads []stepPayload
	if err := json.Unmarshal([]byte(raw), &payloads); err != nil || len(payloads) == 0 {
		return nil, false
	}

	steps := make([]*task.Step, len(payloads))
	for i, p := range payloads {
		s := task.NewStep(p.Description)
		s.ToolName = p.ToolName
		steps[i] = s
	}
	for i, p := range payloads {
		for _, dep := range p.Dependencies {
			if idx, ok := depIndex(dep); ok && idx >= 0 && idx < len(steps) && idx != i {
				steps[i].Dependencies = append(steps[i].Dependencies, steps[idx].ID)
			}
		}
	}
	return steps, true
}

func depIndex(v any) (int, bool) {
	switch d := v.(type) {
	case float64:
		return int(d), true
	case string:
		n, err := strconv.Atoi(d)
		return n, err == nil
	default:
		return 0, false
	}
}

// extractJSONArray tolerates prose around the array, which models often add.
func extractJSONArray(s string) string {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

var (
	complexKeywords = []string{"integrate", "optimize", "refactor", "architect", "design"}
	simpleKeywords  = []string{"add", "update", "fix", "change"}
)

// EstimateComplexity scores a goal deterministically; no LLM call involved.
func (d *Decomposer) EstimateComplexity(goal string) task.Complexity {
	wordCount := len(strings.Fields(goal))

	cognitive := math.Min(10, float64(wordCount)/10)
	technical := 5.0

	lower := strings.ToLower(goal)
	if containsAny(lower, complexKeywords) {
		technical += 2
		cognitive += 1
	}
	if containsAny(lower, simpleKeywords) {
		technical -= 1
	}

	technical = clamp(technical, 0, 10)
	cognitive = clamp(cognitive, 0, 10)
	overall := (cognitive + technical) / 2

	risk := task.RiskLow
	if overall > 7 {
		risk = task.RiskHigh
	} else if overall > 4 {
		risk = task.RiskMedium
	}

	return task.Complexity{
		Overall:      overall,
		Cognitive:    cognitive,
		Technical:    technical,
		TimeEstimate: int(math.Round(overall * 10)),
		RiskLevel:    risk,
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Planner creates and manages execution plans.
type Planner struct {
	decomposer *Decomposer
}

func New(decomposer *Decomposer) *Planner {
	if decomposer == nil {
		decomposer = NewDecomposer(nil)
	}
	return &Planner{decomposer: decomposer}
}

// CreatePlan decomposes the goal and seeds the duration estimate from the
// complexity heuristic.
func (p *Planner) CreatePlan(ctx context.Context, goal string, extra map[string]any) (*task.Plan, error) {
	steps, err := p.decomposer.DecomposeTask(ctx, goal, extra)
	if err != nil {
		return nil, err
	}
	complexity := p.decomposer.EstimateComplexity(goal)

	return &task.Plan{
		ID:                uuid.NewString(),
		Goal:              goal,
		Steps:             steps,
		Status:            task.StatusPending,
		CreatedAt:         time.Now(),
		EstimatedDuration: complexity.TimeEstimate * 60,
	}, nil
}

// EstimateComplexity exposes the decomposer heuristic at the planner level.
func (p *Planner) EstimateComplexity(goal string) task.Complexity {
	return p.decomposer.EstimateComplexity(goal)
}

// PrioritizeSteps orders steps so dependencies run before their dependents.
// On a circular or unsatisfiable graph the remaining steps are appended in
// their given order rather than failing: best-effort execution beats a hard
// stop. The cyclic output is therefore not a topological sort.
func (p *Planner) PrioritizeSteps(steps []*task.Step) []*task.Step {
	ordered := make([]*task.Step, 0, len(steps))
	remaining := append([]*task.Step(nil), steps...)
	completed := make(map[string]bool, len(steps))

	for len(remaining) > 0 {
		var ready []*task.Step
		for _, s := range remaining {
			if depsSatisfied(s, completed) {
				ready = append(ready, s)
			}
		}

		if len(ready) == 0 {
			ordered = append(ordered, remaining...)
			break
		}

		sort.SliceStable(ready, func(i, j int) bool {
			return len(ready[i].Dependencies) < len(ready[j].Dependencies)
		})

		readySet := make(map[string]bool, len(ready))
		for _, s := range ready {
			ordered = append(ordered, s)
			completed[s.ID] = true
			readySet[s.ID] = true
		}

		next := remaining[:0]
		for _, s := range remaining {
			if !readySet[s.ID] {
				next = append(next, s)
			}
		}
		remaining = next
	}

	return ordered
}

func depsSatisfied(s *task.Step, completed map[string]bool) bool {
	for _, dep := range s.Dependencies {
		if !completed[dep] {
			return false
		}
	}
	return true
}

// UpdatePlanStatus derives the plan status from its step statuses:
// Completed only when every step completed; otherwise Failed beats
// InProgress beats Blocked.
func (p *Planner) UpdatePlanStatus(plan *task.Plan) {
	if len(plan.Steps) == 0 {
		return
	}

	allCompleted := true
	var anyFailed, anyInProgress, anyBlocked bool
	for _, s := range plan.Steps {
		switch s.Status {
		case task.StatusCompleted:
		case task.StatusFailed:
			anyFailed = true
		case task.StatusInProgress:
			anyInProgress = true
		case task.StatusBlocked:
			anyBlocked = true
		}
		if s.Status != task.StatusCompleted {
			allCompleted = false
		}
	}

	switch {
	case allCompleted:
		plan.Status = task.StatusCompleted
	case anyFailed:
		plan.Status = task.StatusFailed
	case anyInProgress:
		plan.Status = task.StatusInProgress
	case anyBlocked:
		plan.Status = task.StatusBlocked
	}
}

package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/rahul/agentctl/internal/task"
)

type fakeCompleter struct {
	response string
	err      error
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt, system string) (string, error) {
	return f.response, f.err
}

func (f *fakeCompleter) StreamComplete(ctx context.Context, prompt, system string, fn func(string)) error {
	if f.err != nil {
		return f.err
	}
	fn(f.response)
	return nil
}

func TestDecomposeTask_NoLLM(t *testing.T) {
	d := NewDecomposer(nil)

	steps, err := d.DecomposeTask(context.Background(), "Fix typo", nil)
	if err != nil {
		t.Fatalf("DecomposeTask failed: %v", err)
	}
	if len(steps) != 1 {
		t.Fatalf("Expected 1 step, got %d", len(steps))
	}
	if steps[0].Description != "Fix typo" {
		t.Errorf("Expected step to wrap the goal, got %q", steps[0].Description)
	}
	if steps[0].Status != task.StatusPending {
		t.Errorf("Expected pending status, got %s", steps[0].Status)
	}
	if steps[0].ID == "" {
		t.Error("Expected step to have an id")
	}
}

func TestDecomposeTask_LLMError(t *testing.T) {
	d := NewDecomposer(&fakeCompleter{err: errors.New("unavailable")})

	steps, err := d.DecomposeTask(context.Background(), "Build a REST API", nil)
	if err != nil {
		t.Fatalf("DecomposeTask failed: %v", err)
	}
	if len(steps) != 1 || steps[0].Description != "Build a REST API" {
		t.Errorf("Expected single-step fallback, got %+v", steps)
	}
}

func TestDecomposeTask_ParsesResponse(t *testing.T) {
	d := NewDecomposer(&fakeCompleter{response: `Here is the plan:
[
  {"description": "Create the file", "dependencies": [], "tool_name": "write_file"},
  {"description": "Run the tests", "dependencies": [0], "tool_name": "execute_shell"}
]`})

	steps, err := d.DecomposeTask(context.Background(), "Add a feature", nil)
	if err != nil {
		t.Fatalf("DecomposeTask failed: %v", err)
	}
	if len(steps) != 2 {
		t.Fatalf("Expected 2 steps, got %d", len(steps))
	}
	if steps[0].ToolName != "write_file" {
		t.Errorf("Expected tool hint write_file, got %q", steps[0].ToolName)
	}
	if len(steps[1].Dependencies) != 1 || steps[1].Dependencies[0] != steps[0].ID {
		t.Errorf("Expected second step to depend on first, got %v", steps[1].Dependencies)
	}
}

func TestDecomposeTask_MalformedResponse(t *testing.T) {
	d := NewDecomposer(&fakeCompleter{response: "I cannot help with that."})

	steps, err := d.DecomposeTask(context.Background(), "Deploy the service", nil)
	if err != nil {
		t.Fatalf("DecomposeTask failed: %v", err)
	}
	if len(steps) != 1 || steps[0].Description != "Deploy the service" {
		t.Errorf("Expected single-step fallback on malformed response, got %+v", steps)
	}
}

func TestEstimateComplexity_Simple(t *testing.T) {
	d := NewDecomposer(nil)

	c := d.EstimateComplexity("Fix typo")
	if c.Overall >= 5 {
		t.Errorf("Expected overall < 5 for a simple task, got %.1f", c.Overall)
	}
	if c.RiskLevel != task.RiskLow {
		t.Errorf("Expected low risk, got %s", c.RiskLevel)
	}
	if c.TimeEstimate <= 0 {
		t.Errorf("Expected positive time estimate, got %d", c.TimeEstimate)
	}
}

func TestEstimateComplexity_Complex(t *testing.T) {
	d := NewDecomposer(nil)

	goal := "Design and architect a distributed microservices platform that will integrate telemetry pipelines, " +
		"optimize query latency across regions, and refactor the legacy billing, identity, and reporting " +
		"subsystems for horizontal scale"
	c := d.EstimateComplexity(goal)
	if c.Overall <= 5 {
		t.Errorf("Expected overall > 5 for a complex task, got %.1f", c.Overall)
	}
	if c.Technical != 7 {
		t.Errorf("Expected technical 7 (5 + complex keyword bonus), got %.1f", c.Technical)
	}
	if c.RiskLevel != task.RiskMedium {
		t.Errorf("Expected medium risk, got %s", c.RiskLevel)
	}
}

func TestEstimateComplexity_Bounds(t *testing.T) {
	d := NewDecomposer(nil)

	for _, goal := range []string{"fix", "integrate optimize refactor architect design everything across every subsystem in the entire platform while rewriting all legacy components"} {
		c := d.EstimateComplexity(goal)
		if c.Overall < 0 || c.Overall > 10 || c.Cognitive < 0 || c.Cognitive > 10 || c.Technical < 0 || c.Technical > 10 {
			t.Errorf("Scores out of bounds for %q: %+v", goal, c)
		}
	}
}

func TestCreatePlan(t *testing.T) {
	p := New(nil)

	plan, err := p.CreatePlan(context.Background(), "Build a REST API", nil)
	if err != nil {
		t.Fatalf("CreatePlan failed: %v", err)
	}
	if plan.ID == "" {
		t.Error("Expected plan id")
	}
	if plan.Goal != "Build a REST API" {
		t.Errorf("Unexpected goal: %q", plan.Goal)
	}
	if len(plan.Steps) == 0 {
		t.Error("Expected at least one step")
	}
	if plan.Status != task.StatusPending {
		t.Errorf("Expected pending plan, got %s", plan.Status)
	}
	if plan.EstimatedDuration <= 0 {
		t.Errorf("Expected positive duration estimate, got %d", plan.EstimatedDuration)
	}
}

func TestPrioritizeSteps_NoDependencies(t *testing.T) {
	p := New(nil)

	steps := []*task.Step{
		task.NewStep("Step 1"),
		task.NewStep("Step 2"),
		task.NewStep("Step 3"),
	}

	ordered := p.PrioritizeSteps(steps)
	if len(ordered) != 3 {
		t.Fatalf("Expected 3 steps, got %d", len(ordered))
	}
}

func TestPrioritizeSteps_WithDependencies(t *testing.T) {
	p := New(nil)

	s1 := task.NewStep("Step 1")
	s2 := task.NewStep("Step 2")
	s2.Dependencies = []string{s1.ID}
	s3 := task.NewStep("Step 3")
	s3.Dependencies = []string{s1.ID, s2.ID}

	ordered := p.PrioritizeSteps([]*task.Step{s3, s1, s2})

	if ordered[0].ID != s1.ID || ordered[1].ID != s2.ID || ordered[2].ID != s3.ID {
		t.Errorf("Expected dependency order s1, s2, s3; got %s, %s, %s",
			ordered[0].Description, ordered[1].Description, ordered[2].Description)
	}
}

func TestPrioritizeSteps_TopologicalProperty(t *testing.T) {
	p := New(nil)

	a := task.NewStep("a")
	b := task.NewStep("b")
	c := task.NewStep("c")
	d := task.NewStep("d")
	b.Dependencies = []string{a.ID}
	c.Dependencies = []string{a.ID}
	d.Dependencies = []string{b.ID, c.ID}

	ordered := p.PrioritizeSteps([]*task.Step{d, c, b, a})

	pos := make(map[string]int, len(ordered))
	for i, s := range ordered {
		pos[s.ID] = i
	}
	for _, s := range ordered {
		for _, dep := range s.Dependencies {
			if pos[dep] >= pos[s.ID] {
				t.Errorf("Dependency %s of %s does not precede it", dep, s.Description)
			}
		}
	}
}

func TestPrioritizeSteps_Cycle(t *testing.T) {
	p := New(nil)

	a := task.NewStep("a")
	b := task.NewStep("b")
	c := task.NewStep("c")
	a.Dependencies = []string{b.ID}
	b.Dependencies = []string{a.ID}

	ordered := p.PrioritizeSteps([]*task.Step{a, b, c})

	if len(ordered) != 3 {
		t.Fatalf("Expected every step exactly once, got %d", len(ordered))
	}
	seen := make(map[string]int)
	for _, s := range ordered {
		seen[s.ID]++
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("Step %s appears %d times", id, n)
		}
	}
	// The acyclic step runs first; the cycle is appended as given.
	if ordered[0].ID != c.ID {
		t.Errorf("Expected the unblocked step first, got %s", ordered[0].Description)
	}
}

func TestUpdatePlanStatus(t *testing.T) {
	p := New(nil)

	cases := []struct {
		name     string
		statuses []task.Status
		want     task.Status
	}{
		{"all completed", []task.Status{task.StatusCompleted, task.StatusCompleted}, task.StatusCompleted},
		{"one failed", []task.Status{task.StatusCompleted, task.StatusFailed}, task.StatusFailed},
		{"failed beats in progress", []task.Status{task.StatusInProgress, task.StatusFailed}, task.StatusFailed},
		{"in progress", []task.Status{task.StatusCompleted, task.StatusInProgress}, task.StatusInProgress},
		{"blocked", []task.Status{task.StatusCompleted, task.StatusBlocked}, task.StatusBlocked},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			plan := &task.Plan{Status: task.StatusPending}
			for _, s := range tc.statuses {
				step := task.NewStep("step")
				step.Status = s
				plan.Steps = append(plan.Steps, step)
			}

			p.UpdatePlanStatus(plan)
			if plan.Status != tc.want {
				t.Errorf("Expected %s, got %s", tc.want, plan.Status)
			}
		})
	}
}

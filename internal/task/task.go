package task

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a step or plan.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusBlocked    Status = "blocked"
)

// RiskLevel classifies how dangerous an action is.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// riskOrder is used to compare levels; higher index means more severe.
var riskOrder = map[RiskLevel]int{
	RiskLow:      0,
	RiskMedium:   1,
	RiskHigh:     2,
	RiskCritical: 3,
}

// Severity returns the numeric rank of a risk level.
func (r RiskLevel) Severity() int {
	return riskOrder[r]
}

// MaxRisk returns the most severe of the given levels, RiskLow when empty.
func MaxRisk(levels ...RiskLevel) RiskLevel {
	max := RiskLow
	for _, l := range levels {
		if l.Severity() > max.Severity() {
			max = l
		}
	}
	return max
}

// Category groups tools by the kind of resource they touch.
type Category string

const (
	CategoryCore           Category = "core"
	CategoryEnvironment    Category = "environment"
	CategoryVersionControl Category = "version_control"
	CategoryWebResearch    Category = "web_research"
	CategoryCloud          Category = "cloud"
	CategoryData           Category = "data"
	CategoryCommunication  Category = "communication"
	CategoryVisualization  Category = "visualization"
	CategoryDebugging      Category = "debugging"
)

// Step is a single unit of planned work.
type Step struct {
	ID           string         `json:"id"`
	Description  string         `json:"description"`
	Status       Status         `json:"status"`
	Dependencies []string       `json:"dependencies,omitempty"`
	ToolName     string         `json:"tool_name,omitempty"`
	Parameters   map[string]any `json:"parameters,omitempty"`
	Result       string         `json:"result,omitempty"`
	Error        string         `json:"error,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	CompletedAt  time.Time      `json:"completed_at,omitempty"`
}

// NewStep creates a pending step with a fresh id.
func NewStep(description string) *Step {
	return &Step{
		ID:          uuid.NewString(),
		Description: description,
		Status:      StatusPending,
		Parameters:  map[string]any{},
		CreatedAt:   time.Now(),
	}
}

// Plan is the ordered set of steps derived from a goal.
type Plan struct {
	ID                string    `json:"id"`
	Goal              string    `json:"goal"`
	Steps             []*Step   `json:"steps"`
	Status            Status    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	EstimatedDuration int       `json:"estimated_duration"` // seconds
}

// Complexity is a heuristic estimate of how hard a goal is.
type Complexity struct {
	Overall      float64   `json:"overall"`
	Cognitive    float64   `json:"cognitive"`
	Technical    float64   `json:"technical"`
	TimeEstimate int       `json:"time_estimate"` // minutes
	RiskLevel    RiskLevel `json:"risk_level"`
}

// Tool describes a registered capability. Immutable after registration.
type Tool struct {
	Name                 string            `json:"name"`
	Description          string            `json:"description"`
	Category             Category          `json:"category"`
	Parameters           map[string]string `json:"parameters"` // name -> type tag: str, int, list
	RequiredParams       []string          `json:"required_params"`
	RiskLevel            RiskLevel         `json:"risk_level"`
	RequiresConfirmation bool              `json:"requires_confirmation"`
}

// Action is a unit of work submitted to the confirmation gate.
type Action struct {
	Name        string
	Description string
	Command     string
	Target      string
	Timestamp   time.Time
}

// Context carries per-goal execution state into the components.
type Context struct {
	TaskID           string            `json:"task_id"`
	WorkingDirectory string            `json:"working_directory"`
	Environment      map[string]string `json:"environment,omitempty"`
	Metadata         map[string]any    `json:"metadata,omitempty"`
}

// Message is one entry in the conversation history.
type Message struct {
	Role      string    `json:"role"` // user, assistant, system
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// StepResult is what the orchestrator records for each executed step.
type StepResult struct {
	Step           string   `json:"step"`
	Success        bool     `json:"success"`
	Result         string   `json:"result,omitempty"`
	Error          string   `json:"error,omitempty"`
	FixSuggestions []string `json:"fix_suggestions,omitempty"`
}

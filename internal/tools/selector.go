package tools

import (
	"fmt"
	"strings"
	"time"

	"github.com/rahul/agentctl/internal/task"
)

// CostEstimate is a rough prediction of what running a tool costs.
type CostEstimate struct {
	Time time.Duration
	Risk task.RiskLevel
}

// Selector picks tools for step descriptions by keyword overlap.
type Selector struct {
	registry *Registry
}

func NewSelector(registry *Registry) *Selector {
	return &Selector{registry: registry}
}

// Select scores each tool against the step description: one point per
// name or description word found in the text, five extra for the exact
// tool name. The highest scorer wins; a zero top score selects nothing.
func (s *Selector) Select(description string) (task.Tool, bool) {
	textLower := strings.ToLower(description)

	var best task.Tool
	bestScore := 0.0

	for _, tool := range s.registry.List("") {
		score := 0.0

		nameWords := strings.Fields(strings.ReplaceAll(strings.ToLower(tool.Name), "_", " "))
		descWords := strings.Fields(strings.ToLower(tool.Description))
		for _, word := range append(nameWords, descWords...) {
			if strings.Contains(textLower, word) {
				score++
			}
		}
		if strings.Contains(textLower, strings.ToLower(tool.Name)) {
			score += 5
		}

		if score > bestScore {
			bestScore = score
			best = tool
		}
	}

	if bestScore == 0 {
		return task.Tool{}, false
	}
	return best, true
}

// ValidateParams checks required parameters and basic type tags.
func ValidateParams(tool task.Tool, params map[string]any) error {
	var errs []string

	for _, req := range tool.RequiredParams {
		v, ok := params[req]
		if !ok {
			errs = append(errs, fmt.Sprintf("missing required parameter: %s", req))
		} else if v == nil {
			errs = append(errs, fmt.Sprintf("required parameter %q is nil", req))
		}
	}

	for name, value := range params {
		tag, ok := tool.Parameters[name]
		if !ok || value == nil {
			continue
		}
		switch tag {
		case "str":
			if _, ok := value.(string); !ok {
				errs = append(errs, fmt.Sprintf("parameter %q should be string", name))
			}
		case "int":
			switch value.(type) {
			case int, int64, float64:
			default:
				errs = append(errs, fmt.Sprintf("parameter %q should be integer", name))
			}
		case "list":
			if _, ok := value.([]any); !ok {
				errs = append(errs, fmt.Sprintf("parameter %q should be list", name))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid parameters for %s: %s", tool.Name, strings.Join(errs, "; "))
	}
	return nil
}

// categoryBaseTime is the per-category time estimate in seconds.
var categoryBaseTime = map[task.Category]float64{
	task.CategoryCore:           1,
	task.CategoryEnvironment:    2,
	task.CategoryVersionControl: 3,
	task.CategoryWebResearch:    5,
	task.CategoryCloud:          30,
	task.CategoryData:           10,
	task.CategoryCommunication:  5,
	task.CategoryVisualization:  3,
	task.CategoryDebugging:      5,
}

// EstimateCost predicts run time and risk for a tool invocation. A timeout
// parameter raises the estimate when it exceeds the category base.
func EstimateCost(tool task.Tool, params map[string]any) CostEstimate {
	seconds, ok := categoryBaseTime[tool.Category]
	if !ok {
		seconds = 5
	}

	if t, ok := params["timeout"]; ok {
		var timeout float64
		switch v := t.(type) {
		case int:
			timeout = float64(v)
		case int64:
			timeout = float64(v)
		case float64:
			timeout = v
		}
		if timeout > seconds {
			seconds = timeout
		}
	}

	return CostEstimate{
		Time: time.Duration(seconds * float64(time.Second)),
		Risk: tool.RiskLevel,
	}
}

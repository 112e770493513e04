package agent

import (
	"fmt"

	"github.com/rahul/agentctl/internal/task"
)

// Summary aggregates a run's step results.
type Summary struct {
	Title    string
	Overview string
	Details  []string
	Status   string // success, failed, partial, empty
}

// Summarize counts successes and failures and never masks a partial
// failure as full success.
func Summarize(results []task.StepResult, title string) Summary {
	if title == "" {
		title = "Execution Summary"
	}
	if len(results) == 0 {
		return Summary{
			Title:    title,
			Overview: "No results to summarize",
			Status:   "empty",
		}
	}

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}
	failed := len(results) - succeeded

	details := make([]string, 0, len(results))
	for i, r := range results {
		status := "failed"
		if r.Success {
			status = "success"
		}
		detail := fmt.Sprintf("%d. %s: %s", i+1, r.Step, status)
		if r.Error != "" {
			detail += " - " + r.Error
		}
		details = append(details, detail)
	}

	status := "partial"
	if failed == 0 {
		status = "success"
	} else if succeeded == 0 {
		status = "failed"
	}

	return Summary{
		Title:    title,
		Overview: fmt.Sprintf("Completed %d operations: %d succeeded, %d failed", len(results), succeeded, failed),
		Details:  details,
		Status:   status,
	}
}

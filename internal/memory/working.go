// Package memory holds the session-scoped working memory and the disk-backed
// long-term store.
package memory

import (
	"fmt"
	"sync"
	"time"
)

// Output records one tool/command result.
type Output struct {
	Content   string
	Source    string
	Success   bool
	Timestamp time.Time
}

// Error records one execution failure.
type Error struct {
	Message   string
	Source    string
	Traceback string
	Timestamp time.Time
}

// ContextItem is a generic entry in the session context.
type ContextItem struct {
	Content   string
	ItemType  string // output, error, finding, result
	Metadata  map[string]string
	Timestamp time.Time
}

// ContextSummary compresses working memory for prompt budgets.
type ContextSummary struct {
	TaskSummary   string
	RecentActions []string
	KeyFindings   []string
	CurrentState  string
}

// Working is the bounded short-term memory for one session. Buffers evict
// oldest-first once full; append order is preserved. Reads return copies.
type Working struct {
	mu sync.Mutex

	maxItems   int
	maxOutputs int
	maxErrors  int

	items   []ContextItem
	outputs []Output
	errors  []Error

	variables   map[string]any
	taskStack   []string
	currentTask string
}

func NewWorking(maxItems, maxOutputs, maxErrors int) *Working {
	if maxItems <= 0 {
		maxItems = 100
	}
	if maxOutputs <= 0 {
		maxOutputs = 50
	}
	if maxErrors <= 0 {
		maxErrors = 20
	}
	return &Working{
		maxItems:   maxItems,
		maxOutputs: maxOutputs,
		maxErrors:  maxErrors,
		variables:  map[string]any{},
	}
}

// AddOutput records an execution output and mirrors it as a context item.
func (w *Working) AddOutput(content, source string, success bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.outputs = appendBounded(w.outputs, Output{
		Content:   content,
		Source:    source,
		Success:   success,
		Timestamp: time.Now(),
	}, w.maxOutputs)

	w.items = appendBounded(w.items, ContextItem{
		Content:   content,
		ItemType:  "output",
		Metadata:  map[string]string{"source": source, "success": fmt.Sprintf("%t", success)},
		Timestamp: time.Now(),
	}, w.maxItems)
}

// AddError records a failure and mirrors it as a context item.
func (w *Working) AddError(message, source, traceback string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.errors = appendBounded(w.errors, Error{
		Message:   message,
		Source:    source,
		Traceback: traceback,
		Timestamp: time.Now(),
	}, w.maxErrors)

	w.items = appendBounded(w.items, ContextItem{
		Content:   message,
		ItemType:  "error",
		Metadata:  map[string]string{"source": source},
		Timestamp: time.Now(),
	}, w.maxItems)
}

// AddContextItem appends an arbitrary item to the session context.
func (w *Working) AddContextItem(item ContextItem) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if item.Timestamp.IsZero() {
		item.Timestamp = time.Now()
	}
	w.items = appendBounded(w.items, item, w.maxItems)
}

func appendBounded[T any](buf []T, v T, max int) []T {
	buf = append(buf, v)
	if len(buf) > max {
		buf = buf[1:]
	}
	return buf
}

// RecentOutputs returns up to n of the most recent outputs, oldest first.
func (w *Working) RecentOutputs(n int) []Output {
	w.mu.Lock()
	defer w.mu.Unlock()

	start := 0
	if n > 0 && len(w.outputs) > n {
		start = len(w.outputs) - n
	}
	out := make([]Output, len(w.outputs)-start)
	copy(out, w.outputs[start:])
	return out
}

// ErrorHistory returns every recorded error, oldest first.
func (w *Working) ErrorHistory() []Error {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]Error, len(w.errors))
	copy(out, w.errors)
	return out
}

// ContextItems returns items, optionally filtered by type.
func (w *Working) ContextItems(itemType string) []ContextItem {
	w.mu.Lock()
	defer w.mu.Unlock()

	var out []ContextItem
	for _, item := range w.items {
		if itemType == "" || item.ItemType == itemType {
			out = append(out, item)
		}
	}
	return out
}

// SetVariable stores a session variable.
func (w *Working) SetVariable(name string, value any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.variables[name] = value
}

// Variable looks up a session variable.
func (w *Working) Variable(name string) (any, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	v, ok := w.variables[name]
	return v, ok
}

// PushTask makes task the current task, stacking any previous one.
func (w *Working) PushTask(taskDesc string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.currentTask != "" {
		w.taskStack = append(w.taskStack, w.currentTask)
	}
	w.currentTask = taskDesc
}

// CurrentTask returns the task being worked on, if any.
func (w *Working) CurrentTask() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.currentTask
}

// CompleteTask pops back to the previous task and returns the completed one.
func (w *Working) CompleteTask() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	completed := w.currentTask
	if n := len(w.taskStack); n > 0 {
		w.currentTask = w.taskStack[n-1]
		w.taskStack = w.taskStack[:n-1]
	} else {
		w.currentTask = ""
	}
	return completed
}

// Summarize compresses the session state into a few lines.
func (w *Working) Summarize() ContextSummary {
	w.mu.Lock()
	defer w.mu.Unlock()

	taskSummary := w.currentTask
	if taskSummary == "" {
		taskSummary = "No active task"
	}

	var recent []string
	start := 0
	if len(w.outputs) > 5 {
		start = len(w.outputs) - 5
	}
	for _, o := range w.outputs[start:] {
		state := "success"
		if !o.Success {
			state = "failed"
		}
		recent = append(recent, fmt.Sprintf("%s: %s", o.Source, state))
	}

	var findings []string
	start = 0
	if len(w.items) > 10 {
		start = len(w.items) - 10
	}
	for _, item := range w.items[start:] {
		switch item.ItemType {
		case "finding", "result", "output":
			findings = append(findings, truncate(item.Content, 100))
		}
	}

	return ContextSummary{
		TaskSummary:   taskSummary,
		RecentActions: recent,
		KeyFindings:   findings,
		CurrentState:  fmt.Sprintf("%d outputs, %d errors", len(w.outputs), len(w.errors)),
	}
}

// TokenEstimate approximates context size at ~4 characters per token.
func (w *Working) TokenEstimate() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	total := 0
	for _, item := range w.items {
		total += len(item.Content)
	}
	return total / 4
}

// Clear drops all session state for a fresh task.
func (w *Working) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.items = nil
	w.outputs = nil
	w.errors = nil
	w.variables = map[string]any{}
	w.taskStack = nil
	w.currentTask = ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

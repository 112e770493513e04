// Package observability emits structured JSON events for each stage of a
// run: planning, step execution, tool calls, risk decisions, LLM traffic.
package observability

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventType defines the category of the log event.
type EventType string

const (
	EventTypePlan       EventType = "plan"
	EventTypeStep       EventType = "step"
	EventTypeToolCall   EventType = "tool_call"
	EventTypeToolResult EventType = "tool_result"
	EventTypeRisk       EventType = "risk"
	EventTypePolicy     EventType = "policy"
	EventTypeReasoning  EventType = "reasoning"
	EventTypeLLM        EventType = "llm"
	EventTypeRun        EventType = "run"
)

// Event represents a structured log entry.
type Event struct {
	Type      EventType `json:"type"`
	TaskID    string    `json:"task_id,omitempty"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Logger writes events as JSON lines to an output stream and mirrors them
// to a size-rotated file when a path is configured.
type Logger struct {
	mu      sync.Mutex
	out     io.Writer
	path    string
	maxSize int64
	quiet   bool
}

// NewLogger creates a logger writing to stdout, mirroring to path when
// non-empty. quiet suppresses the stdout stream (file mirror still runs).
func NewLogger(path string, quiet bool) *Logger {
	return &Logger{
		out:     os.Stdout,
		path:    path,
		maxSize: 10 * 1024 * 1024, // 10MB
		quiet:   quiet,
	}
}

// Log emits a structured JSON event.
func (l *Logger) Log(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	data, err := json.Marshal(evt)
	if err != nil {
		fmt.Fprintf(l.out, "{\"error\": \"failed to marshal event: %v\"}\n", err)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.quiet {
		fmt.Fprintln(l.out, string(data))
	}
	if l.path != "" {
		l.writeToFile(data)
	}
}

func (l *Logger) writeToFile(data []byte) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		log.Printf("failed to create log directory: %v", err)
		return
	}

	if info, err := os.Stat(l.path); err == nil && info.Size() > l.maxSize {
		l.rotate()
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("failed to open log file: %v", err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		log.Printf("failed to write to log file: %v", err)
	}
}

// rotate keeps one .old file. Caller holds the lock.
func (l *Logger) rotate() {
	oldPath := l.path + ".old"
	_ = os.Remove(oldPath)
	_ = os.Rename(l.path, oldPath)
}

// Helper methods for common events

func (l *Logger) LogPlan(taskID, goal string, steps int, estimatedSeconds int) {
	l.Log(Event{
		Type:   EventTypePlan,
		TaskID: taskID,
		Data: map[string]any{
			"goal":               goal,
			"steps":              steps,
			"estimated_duration": estimatedSeconds,
		},
	})
}

func (l *Logger) LogStep(taskID, stepID, description, status string) {
	l.Log(Event{
		Type:   EventTypeStep,
		TaskID: taskID,
		Data: map[string]string{
			"step_id":     stepID,
			"description": description,
			"status":      status,
		},
	})
}

func (l *Logger) LogToolCall(taskID, tool string, params map[string]any) {
	l.Log(Event{
		Type:   EventTypeToolCall,
		TaskID: taskID,
		Data: map[string]any{
			"tool":   tool,
			"params": params,
		},
	})
}

func (l *Logger) LogToolResult(taskID, tool string, success bool, detail string) {
	l.Log(Event{
		Type:   EventTypeToolResult,
		TaskID: taskID,
		Data: map[string]any{
			"tool":    tool,
			"success": success,
			"detail":  detail,
		},
	})
}

func (l *Logger) LogRisk(taskID, action, level string, approved bool, response string) {
	l.Log(Event{
		Type:   EventTypeRisk,
		TaskID: taskID,
		Data: map[string]any{
			"action":   action,
			"level":    level,
			"approved": approved,
			"response": response,
		},
	})
}

func (l *Logger) LogPolicy(taskID, command, effect, reason string) {
	l.Log(Event{
		Type:   EventTypePolicy,
		TaskID: taskID,
		Data: map[string]string{
			"command": command,
			"effect":  effect,
			"reason":  reason,
		},
	})
}

func (l *Logger) LogReasoning(taskID, content string) {
	l.Log(Event{
		Type:   EventTypeReasoning,
		TaskID: taskID,
		Data:   map[string]string{"content": content},
	})
}

func (l *Logger) LogLLM(taskID string, prompt, response string) {
	l.Log(Event{
		Type:   EventTypeLLM,
		TaskID: taskID,
		Data: map[string]string{
			"prompt":   prompt,
			"response": response,
		},
	})
}

func (l *Logger) LogRun(taskID, goal, status string, succeeded, failed int) {
	l.Log(Event{
		Type:   EventTypeRun,
		TaskID: taskID,
		Data: map[string]any{
			"goal":      goal,
			"status":    status,
			"succeeded": succeeded,
			"failed":    failed,
		},
	})
}

// SetOutput redirects the stdout stream; used by tests.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = w
}

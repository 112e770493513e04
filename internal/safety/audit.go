package safety

import (
	"sync"
	"time"

	"github.com/rahul/agentctl/internal/task"
)

// AuditEntry is one record of a risk-gated action and its outcome.
// Entries are never mutated or deleted; append order is the total order.
type AuditEntry struct {
	Timestamp    time.Time      `json:"timestamp"`
	Action       string         `json:"action"`
	Description  string         `json:"description"`
	Command      string         `json:"command,omitempty"`
	Target       string         `json:"target,omitempty"`
	RiskLevel    task.RiskLevel `json:"risk_level"`
	Approved     bool           `json:"approved"`
	UserResponse string         `json:"user_response,omitempty"`
}

// AuditLog is an append-only, in-memory record of gated actions. It is
// single-writer but may be read concurrently; reads return copies.
type AuditLog struct {
	mu      sync.Mutex
	entries []AuditEntry
}

func NewAuditLog() *AuditLog {
	return &AuditLog{}
}

func (a *AuditLog) Append(action task.Action, risk task.RiskLevel, approved bool, response string) AuditEntry {
	entry := AuditEntry{
		Timestamp:    time.Now(),
		Action:       action.Name,
		Description:  action.Description,
		Command:      action.Command,
		Target:       action.Target,
		RiskLevel:    risk,
		Approved:     approved,
		UserResponse: response,
	}

	a.mu.Lock()
	a.entries = append(a.entries, entry)
	a.mu.Unlock()
	return entry
}

// Entries returns a snapshot of the most recent entries, oldest first.
func (a *AuditLog) Entries(limit int) []AuditEntry {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := len(a.entries)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]AuditEntry, n)
	copy(out, a.entries[len(a.entries)-n:])
	return out
}

func (a *AuditLog) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}

// Package store persists conversation history and run records in sqlite.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"github.com/rahul/agentctl/internal/task"
)

type HistoryStore struct {
	db *sql.DB
}

// RunRecord is one completed goal execution.
type RunRecord struct {
	ID         int       `json:"id"`
	SessionID  string    `json:"session_id"`
	Goal       string    `json:"goal"`
	Status     string    `json:"status"` // success, partial, failed, empty
	StepsTotal int       `json:"steps_total"`
	StepsOK    int       `json:"steps_ok"`
	Summary    string    `json:"summary"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

func NewHistoryStore(dbPath string) (*HistoryStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	queries := []string{
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT,
			role TEXT,
			content TEXT,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT,
			goal TEXT,
			status TEXT,
			steps_total INTEGER,
			steps_ok INTEGER,
			summary TEXT,
			started_at DATETIME,
			finished_at DATETIME
		);`,
	}
	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize history schema: %w", err)
		}
	}

	return &HistoryStore{db: db}, nil
}

func (h *HistoryStore) Close() error {
	return h.db.Close()
}

// AddMessage appends one conversation message to a session.
func (h *HistoryStore) AddMessage(sessionID, role, content string) error {
	_, err := h.db.Exec(
		`INSERT INTO messages (session_id, role, content) VALUES (?, ?, ?)`,
		sessionID, role, content,
	)
	if err != nil {
		return fmt.Errorf("failed to store message: %w", err)
	}
	return nil
}

// History returns the most recent limit messages of a session in
// chronological order.
func (h *HistoryStore) History(sessionID string, limit int) ([]task.Message, error) {
	rows, err := h.db.Query(
		`SELECT role, content, timestamp FROM messages
		 WHERE session_id = ? ORDER BY id DESC LIMIT ?`,
		sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var history []task.Message
	for rows.Next() {
		var m task.Message
		if err := rows.Scan(&m.Role, &m.Content, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		history = append(history, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(history)-1; i < j; i, j = i+1, j-1 {
		history[i], history[j] = history[j], history[i]
	}
	return history, nil
}

// ClearSession removes a session's messages.
func (h *HistoryStore) ClearSession(sessionID string) error {
	_, err := h.db.Exec(`DELETE FROM messages WHERE session_id = ?`, sessionID)
	return err
}

// RecordRun persists the outcome of one goal execution.
func (h *HistoryStore) RecordRun(r RunRecord) error {
	_, err := h.db.Exec(
		`INSERT INTO runs (session_id, goal, status, steps_total, steps_ok, summary, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.SessionID, r.Goal, r.Status, r.StepsTotal, r.StepsOK, r.Summary, r.StartedAt, r.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// RecentRuns returns the most recent limit runs, newest first.
func (h *HistoryStore) RecentRuns(limit int) ([]RunRecord, error) {
	rows, err := h.db.Query(
		`SELECT id, session_id, goal, status, steps_total, steps_ok, summary, started_at, finished_at
		 FROM runs ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Goal, &r.Status,
			&r.StepsTotal, &r.StepsOK, &r.Summary, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

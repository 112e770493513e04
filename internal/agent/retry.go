package agent

import (
	"context"
	"sync"
	"time"
)

// RetryConfig bounds the exponential backoff.
type RetryConfig struct {
	MaxRetries      int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	ExponentialBase float64
}

// DefaultRetryConfig matches the standard backoff profile.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      3,
		InitialDelay:    time.Second,
		MaxDelay:        30 * time.Second,
		ExponentialBase: 2.0,
	}
}

// Attempt records one action's retry outcome.
type Attempt struct {
	Action    string
	Success   bool
	Attempts  int
	Timestamp time.Time
}

// Retrier wraps actions with bounded exponential-backoff retry and keeps
// an attempt history.
type Retrier struct {
	mu      sync.Mutex
	history []Attempt
}

func NewRetrier() *Retrier {
	return &Retrier{}
}

// Do runs fn up to cfg.MaxRetries+1 times. Backoff sleeps honor ctx
// cancellation. After exhaustion the last error is returned unchanged;
// callers must treat it as fatal for that action.
func (r *Retrier) Do(ctx context.Context, name string, cfg RetryConfig, fn func(ctx context.Context) (string, error)) (string, error) {
	if cfg.ExponentialBase <= 0 {
		cfg = DefaultRetryConfig()
	}

	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			r.record(name, true, attempt)
			return result, nil
		}
		lastErr = err

		if attempt < cfg.MaxRetries {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				r.record(name, false, attempt)
				return "", lastErr
			}
			delay = time.Duration(float64(delay) * cfg.ExponentialBase)
			if delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}
		}
	}

	r.record(name, false, cfg.MaxRetries)
	return "", lastErr
}

func (r *Retrier) record(name string, success bool, attempts int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = append(r.history, Attempt{
		Action:    name,
		Success:   success,
		Attempts:  attempts,
		Timestamp: time.Now(),
	})
}

// History returns a copy of the attempt records.
func (r *Retrier) History() []Attempt {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Attempt, len(r.history))
	copy(out, r.history)
	return out
}

package agent

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig(maxRetries int) RetryConfig {
	return RetryConfig{
		MaxRetries:      maxRetries,
		InitialDelay:    time.Millisecond,
		MaxDelay:        5 * time.Millisecond,
		ExponentialBase: 2.0,
	}
}

func TestRetry_Exhaustion(t *testing.T) {
	r := NewRetrier()
	original := errors.New("service unavailable")

	calls := 0
	_, err := r.Do(context.Background(), "flaky", fastConfig(2), func(ctx context.Context) (string, error) {
		calls++
		return "", original
	})

	if calls != 3 {
		t.Errorf("Expected exactly 3 invocations for maxRetries=2, got %d", calls)
	}
	if err != original {
		t.Errorf("The original error must propagate unwrapped, got %v", err)
	}

	history := r.History()
	if len(history) != 1 {
		t.Fatalf("Expected 1 history record, got %d", len(history))
	}
	if history[0].Success || history[0].Attempts != 2 {
		t.Errorf("Unexpected history record: %+v", history[0])
	}
}

func TestRetry_EventualSuccess(t *testing.T) {
	r := NewRetrier()

	calls := 0
	result, err := r.Do(context.Background(), "flaky", fastConfig(3), func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("not yet")
		}
		return "done", nil
	})

	if err != nil || result != "done" {
		t.Fatalf("Expected success, got %q, %v", result, err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 invocations, got %d", calls)
	}

	history := r.History()
	if len(history) != 1 || !history[0].Success || history[0].Attempts != 2 {
		t.Errorf("Unexpected history: %+v", history)
	}
}

func TestRetry_CancelDuringBackoff(t *testing.T) {
	r := NewRetrier()
	ctx, cancel := context.WithCancel(context.Background())

	cfg := RetryConfig{
		MaxRetries:      5,
		InitialDelay:    time.Hour, // only cancellation can end the sleep
		MaxDelay:        time.Hour,
		ExponentialBase: 2.0,
	}

	calls := 0
	done := make(chan error, 1)
	go func() {
		_, err := r.Do(ctx, "stuck", cfg, func(ctx context.Context) (string, error) {
			calls++
			return "", errors.New("down")
		})
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Error("Expected the last error after cancellation")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Backoff sleep did not honor cancellation")
	}
	if calls != 1 {
		t.Errorf("Expected no retry after cancellation, got %d calls", calls)
	}
}

func TestRetry_FirstTrySuccess(t *testing.T) {
	r := NewRetrier()

	start := time.Now()
	result, err := r.Do(context.Background(), "ok", fastConfig(3), func(ctx context.Context) (string, error) {
		return "immediate", nil
	})
	if err != nil || result != "immediate" {
		t.Fatalf("Unexpected result: %q, %v", result, err)
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Error("Success path should not sleep")
	}
}

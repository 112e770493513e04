// Package terminal runs shell commands on behalf of the agent, with a
// safety deny-list applied before any subprocess is spawned.
package terminal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rahul/agentctl/internal/safety"
)

// ExecResult captures one command execution.
type ExecResult struct {
	Success  bool          `json:"success"`
	Output   string        `json:"output"`
	Error    string        `json:"error,omitempty"`
	ExitCode int           `json:"exit_code"`
	Duration time.Duration `json:"duration"`
}

// ErrBlocked marks commands refused by policy before execution.
var ErrBlocked = errors.New("command blocked")

// Executor runs commands through the system shell.
type Executor struct {
	policy         *safety.Policy
	defaultTimeout time.Duration
	workDir        string
}

func NewExecutor(policy *safety.Policy, defaultTimeout time.Duration, workDir string) *Executor {
	if policy == nil {
		policy = safety.NewPolicy(nil)
	}
	if defaultTimeout <= 0 {
		defaultTimeout = 5 * time.Minute
	}
	return &Executor{
		policy:         policy,
		defaultTimeout: defaultTimeout,
		workDir:        workDir,
	}
}

// Run executes command via `sh -c`. A policy-denied command is refused
// without spawning a subprocess; the returned error wraps ErrBlocked. On
// timeout the child process is killed and the partial output is returned.
func (e *Executor) Run(ctx context.Context, command string, timeout time.Duration, cwd string) (ExecResult, error) {
	if eval := e.policy.Evaluate(command); eval.Effect == safety.EffectDeny {
		return ExecResult{
			Success:  false,
			Error:    eval.Reason,
			ExitCode: -1,
		}, fmt.Errorf("%w: %s", ErrBlocked, eval.Reason)
	}

	if timeout <= 0 {
		timeout = e.defaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "sh", "-c", command)
	if cwd != "" {
		cmd.Dir = cwd
	} else if e.workDir != "" {
		cmd.Dir = e.workDir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Killing sh does not reap grandchildren holding the output pipes;
	// WaitDelay releases the pipe-copy goroutines so Run returns at the
	// deadline instead of hanging on an orphaned process.
	cmd.WaitDelay = time.Second

	start := time.Now()
	err := cmd.Run()
	result := ExecResult{
		Output:   stdout.String(),
		Error:    stderr.String(),
		Duration: time.Since(start),
	}

	if runCtx.Err() == context.DeadlineExceeded {
		result.ExitCode = -1
		result.Error = fmt.Sprintf("command timed out after %s", timeout)
		return result, fmt.Errorf("command timed out after %s", timeout)
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
		}
		if result.Error == "" {
			result.Error = err.Error()
		}
		return result, nil
	}

	result.Success = true
	return result, nil
}

// Environment returns a snapshot of the process environment as a map.
func (e *Executor) Environment() map[string]string {
	env := map[string]string{}
	for _, kv := range os.Environ() {
		if i := strings.IndexByte(kv, '='); i > 0 {
			env[kv[:i]] = kv[i+1:]
		}
	}
	return env
}

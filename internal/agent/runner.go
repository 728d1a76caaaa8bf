// Package agent runs the external browser agent as a subprocess and
// captures its final answer from stdout.
package agent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

var (
	// ErrEmptyAnswer is returned when the agent exits cleanly without printing an answer
	ErrEmptyAnswer = errors.New("agent returned an empty answer")
	// ErrTimeout is returned when the agent does not finish within the configured timeout
	ErrTimeout = errors.New("agent timed out")
	// ErrNotFound is returned when the agent command is not on PATH
	ErrNotFound = errors.New("agent command not found")
)

// waitDelay bounds how long Run waits for output pipes after the agent is killed
const waitDelay = 2 * time.Second

// Runner executes the agent command. The task text is always the last argument.
type Runner struct {
	Command string
	Args    []string
	Timeout time.Duration // zero means no timeout
	Stderr  io.Writer     // agent progress output; defaults to os.Stderr
	Logger  *log.Logger   // defaults to the global charm logger
}

// Result is what the agent produced
type Result struct {
	Answer   string
	Duration time.Duration
	ExitCode int
}

// CommandLine returns the arguments Run would execute, without the task
func (r *Runner) CommandLine(extra []string) []string {
	args := make([]string, 0, len(r.Args)+len(extra))
	args = append(args, r.Args...)
	return append(args, extra...)
}

// Run executes the agent with task and returns its trimmed stdout.
// On failure the partial answer is still returned in Result.
func (r *Runner) Run(ctx context.Context, task string, extra []string) (Result, error) {
	logger := r.Logger
	if logger == nil {
		logger = log.Default()
	}
	stderr := r.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	path, err := exec.LookPath(r.Command)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s", ErrNotFound, r.Command)
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	args := append(r.CommandLine(extra), task)
	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay

	logger.Debug("starting agent", "command", path, "args", len(args)-1, "timeout", r.Timeout)
	start := time.Now()
	err = cmd.Run()

	res := Result{
		Answer:   strings.TrimSpace(stdout.String()),
		Duration: time.Since(start),
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}
	logger.Debug("agent finished", "exit", res.ExitCode, "duration", res.Duration.Round(time.Millisecond), "bytes", stdout.Len())

	if err != nil {
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			return res, fmt.Errorf("%w after %s", ErrTimeout, r.Timeout)
		case errors.Is(ctx.Err(), context.Canceled):
			return res, fmt.Errorf("agent interrupted: %w", ctx.Err())
		default:
			return res, fmt.Errorf("agent %s failed: %w", r.Command, err)
		}
	}
	if res.Answer == "" {
		return res, ErrEmptyAnswer
	}
	return res, nil
}

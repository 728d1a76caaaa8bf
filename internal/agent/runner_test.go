package agent

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAgent writes an executable shell script standing in for the browser agent
func fakeAgent(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake agent scripts need a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "fake-agent")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))
	return path
}

func TestRunCapturesAnswer(t *testing.T) {
	script := fakeAgent(t, `for a; do last=$a; done
echo "progress on stderr" >&2
printf '\nFour Seasons Resort\nTask was: %s\n\n' "$last"`)

	var stderr bytes.Buffer
	r := &Runner{Command: script, Stderr: &stderr}

	res, err := r.Run(context.Background(), "find resorts in Maui", nil)
	require.NoError(t, err)
	assert.Equal(t, "Four Seasons Resort\nTask was: find resorts in Maui", res.Answer)
	assert.Equal(t, 0, res.ExitCode)
	assert.Contains(t, stderr.String(), "progress on stderr")
}

func TestRunPassesArgsBeforeTask(t *testing.T) {
	script := fakeAgent(t, `printf '%s|' "$@"`)
	r := &Runner{Command: script, Args: []string{"--model", "gpt-4o"}, Stderr: &bytes.Buffer{}}

	res, err := r.Run(context.Background(), "the task", []string{"--headless"})
	require.NoError(t, err)
	assert.Equal(t, "--model|gpt-4o|--headless|the task|", res.Answer)
}

func TestRunEmptyAnswer(t *testing.T) {
	script := fakeAgent(t, `echo "   "`)
	r := &Runner{Command: script, Stderr: &bytes.Buffer{}}

	_, err := r.Run(context.Background(), "task", nil)
	assert.ErrorIs(t, err, ErrEmptyAnswer)
}

func TestRunFailureKeepsPartialAnswer(t *testing.T) {
	script := fakeAgent(t, `echo "partial result"
exit 3`)
	r := &Runner{Command: script, Stderr: &bytes.Buffer{}}

	res, err := r.Run(context.Background(), "task", nil)
	require.Error(t, err)
	assert.Equal(t, "partial result", res.Answer)
	assert.Equal(t, 3, res.ExitCode)

	var exitErr *exec.ExitError
	assert.True(t, errors.As(err, &exitErr))
}

func TestRunTimeout(t *testing.T) {
	script := fakeAgent(t, `exec sleep 5`)
	r := &Runner{Command: script, Timeout: 100 * time.Millisecond, Stderr: &bytes.Buffer{}}

	start := time.Now()
	_, err := r.Run(context.Background(), "task", nil)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestRunCancelled(t *testing.T) {
	script := fakeAgent(t, `exec sleep 5`)
	r := &Runner{Command: script, Stderr: &bytes.Buffer{}}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	_, err := r.Run(ctx, "task", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunCommandNotFound(t *testing.T) {
	r := &Runner{Command: "travelprism-no-such-agent"}
	_, err := r.Run(context.Background(), "task", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCommandLine(t *testing.T) {
	r := &Runner{Args: []string{"--model", "llama2-vision:11b"}}
	assert.Equal(t, []string{"--model", "llama2-vision:11b", "--base-url", "http://localhost:11434"},
		r.CommandLine([]string{"--base-url", "http://localhost:11434"}))
	assert.Equal(t, []string{"--model", "llama2-vision:11b"}, r.Args, "CommandLine must not modify Args")
}

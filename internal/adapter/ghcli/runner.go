// Package ghcli wraps the GitHub CLI (`gh`) for operations where the hosting
// provider's own command already does the heavy lifting, such as fetching a
// pull request diff.
package ghcli

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// CommandError reports a CLI invocation that exited non-zero, with the
// captured diagnostic stream so the operator can diagnose without rerunning.
type CommandError struct {
	Command  string
	ExitCode int
	Stderr   string
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	stderr := strings.TrimSpace(e.Stderr)
	if stderr == "" {
		return fmt.Sprintf("%s: exit status %d", e.Command, e.ExitCode)
	}
	return fmt.Sprintf("%s: exit status %d: %s", e.Command, e.ExitCode, stderr)
}

// Runner executes a command and returns its stdout and stderr. Indirection
// over os/exec so tests can substitute a fake.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes the command, capturing both output streams.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// Client fetches pull request data through the gh CLI.
type Client struct {
	runner  Runner
	timeout time.Duration
}

// NewClient creates a gh CLI client. timeout <= 0 selects the default bound;
// every invocation is cancelled when it expires.
func NewClient(runner Runner, timeout time.Duration) *Client {
	if runner == nil {
		runner = ExecRunner{}
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{runner: runner, timeout: timeout}
}

// PRDiff returns the unified diff for a pull request, trimmed of surrounding
// whitespace. A non-zero exit surfaces as a *CommandError; the diff is never
// silently treated as empty.
func (c *Client) PRDiff(ctx context.Context, prNumber string) (string, error) {
	if strings.TrimSpace(prNumber) == "" {
		return "", fmt.Errorf("pull request number is required")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	stdout, stderr, err := c.runner.Run(ctx, "gh", "pr", "diff", prNumber)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("gh pr diff %s: %w", prNumber, ctxErr)
		}
		return "", &CommandError{
			Command:  fmt.Sprintf("gh pr diff %s", prNumber),
			ExitCode: ExitCode(err),
			Stderr:   stderr,
		}
	}

	return strings.TrimSpace(stdout), nil
}

// ExitCode extracts the process exit code from a Run error, or -1 when the
// command never ran.
func ExitCode(err error) int {
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return -1
}

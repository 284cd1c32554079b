package ghcli_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmchoi/nitpicker/internal/adapter/ghcli"
)

// fakeRunner records invocations and replays canned output.
type fakeRunner struct {
	stdout string
	stderr string
	err    error
	delay  time.Duration

	gotName string
	gotArgs []string
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	f.gotName = name
	f.gotArgs = args
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", "", ctx.Err()
		}
	}
	return f.stdout, f.stderr, f.err
}

func TestPRDiff(t *testing.T) {
	runner := &fakeRunner{stdout: "\ndiff --git a/x b/x\n+added line\n\n"}
	client := ghcli.NewClient(runner, 0)

	diff, err := client.PRDiff(context.Background(), "42")
	require.NoError(t, err)

	assert.Equal(t, "diff --git a/x b/x\n+added line", diff, "stdout is trimmed")
	assert.Equal(t, "gh", runner.gotName)
	assert.Equal(t, []string{"pr", "diff", "42"}, runner.gotArgs)
}

func TestPRDiff_EmptyPRNumber(t *testing.T) {
	client := ghcli.NewClient(&fakeRunner{}, 0)

	_, err := client.PRDiff(context.Background(), "  ")
	require.Error(t, err)
}

func TestPRDiff_CommandFailure(t *testing.T) {
	runner := &fakeRunner{
		stderr: "no pull requests found for branch",
		err:    errors.New("exit status 1"),
	}
	client := ghcli.NewClient(runner, 0)

	_, err := client.PRDiff(context.Background(), "999")

	var cmdErr *ghcli.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, "gh pr diff 999", cmdErr.Command)
	assert.Contains(t, cmdErr.Stderr, "no pull requests found")
	assert.Contains(t, cmdErr.Error(), "no pull requests found")
}

func TestPRDiff_Timeout(t *testing.T) {
	runner := &fakeRunner{delay: time.Second}
	client := ghcli.NewClient(runner, 10*time.Millisecond)

	_, err := client.PRDiff(context.Background(), "42")

	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCommandError_MessageWithoutStderr(t *testing.T) {
	err := &ghcli.CommandError{Command: "gh pr diff 1", ExitCode: 4}
	assert.Equal(t, "gh pr diff 1: exit status 4", err.Error())
}

func TestExitCode_NonExitError(t *testing.T) {
	assert.Equal(t, -1, ghcli.ExitCode(errors.New("not started")))
}

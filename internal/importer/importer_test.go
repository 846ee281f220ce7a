package importer

import (
	"context"
	"os/exec"
	"testing"

	"github.com/ierg/nscsync/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) string {
	t.Helper()
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	return sh
}

func TestRunSuccess(t *testing.T) {
	sh := requireShell(t)
	runner := NewRunner()

	err := runner.Run(context.Background(), model.ImportInvocation{
		Path: sh,
		Args: []string{"-c", "exit 0"},
	})
	require.NoError(t, err)
}

func TestRunFailureIncludesOutput(t *testing.T) {
	sh := requireShell(t)
	runner := NewRunner()

	err := runner.Run(context.Background(), model.ImportInvocation{
		Path: sh,
		Args: []string{"-c", "echo boom >&2; exit 3"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestRunEmptyInvocation(t *testing.T) {
	runner := NewRunner()
	err := runner.Run(context.Background(), model.ImportInvocation{})
	require.Error(t, err)
}

func TestRunHonorsContext(t *testing.T) {
	sh := requireShell(t)
	runner := NewRunner()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := runner.Run(ctx, model.ImportInvocation{
		Path: sh,
		Args: []string{"-c", "sleep 5"},
	})
	require.Error(t, err)
}

// Package importer executes the external database-import command for
// eligible files.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/ierg/nscsync/internal/model"
)

// Runner executes fully substituted import invocations. The dispatch
// decision lives in the rules package; Runner only runs what it is handed.
type Runner struct{}

// NewRunner creates a new import runner.
func NewRunner() *Runner {
	return &Runner{}
}

// Run executes the invocation and waits for it to finish. The command's
// combined output is logged either way; a non-zero exit is returned as an
// error with the trailing output attached for diagnosis.
func (r *Runner) Run(ctx context.Context, inv model.ImportInvocation) error {
	if inv.Path == "" {
		return fmt.Errorf("import invocation has no command path")
	}

	cmd := exec.CommandContext(ctx, inv.Path, inv.Args...)
	output, err := cmd.CombinedOutput()

	trimmed := strings.TrimSpace(string(output))
	if err != nil {
		if trimmed != "" {
			return fmt.Errorf("import command %q failed: %w: %s", inv.String(), err, trimmed)
		}
		return fmt.Errorf("import command %q failed: %w", inv.String(), err)
	}

	slog.Debug("Import command finished", "command", inv.String(), "output", trimmed)
	return nil
}

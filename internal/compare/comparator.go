// Package compare defines the boundary to the external testsuite-log
// comparison routine. The diff algorithm itself lives outside this tool; we
// only invoke it and classify its failures.
package compare

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Comparator produces a regression summary from a baseline and a current
// testsuite log. A returned error means the logs were malformed or could not
// be compared; callers record it per artifact and keep going.
type Comparator interface {
	Compare(ctx context.Context, baseHash, baseLog, currentHash, currentLog, summaryPath string) error
}

// ExecComparator runs an external comparison command. The five comparison
// arguments are appended to the configured argv in order: base hash, base log
// path, current hash, current log path, summary output path.
type ExecComparator struct {
	argv []string
}

// NewExecComparator creates an ExecComparator from the configured argv.
func NewExecComparator(argv []string) (*ExecComparator, error) {
	if len(argv) == 0 {
		return nil, errors.New("compare: empty comparison command")
	}
	return &ExecComparator{argv: argv}, nil
}

// Compare invokes the external command. A non-zero exit reports the command's
// stderr as the failure reason.
func (e *ExecComparator) Compare(ctx context.Context, baseHash, baseLog, currentHash, currentLog, summaryPath string) error {
	args := append([]string{}, e.argv[1:]...)
	args = append(args, baseHash, baseLog, currentHash, currentLog, summaryPath)

	cmd := exec.CommandContext(ctx, e.argv[0], args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("comparison failed: %s", msg)
		}
		return fmt.Errorf("comparison failed: %w", err)
	}
	return nil
}

package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Executor abstracts child process execution for testability. Output returns
// the standard output of the finished process; stderr only surfaces in errors.
type Executor interface {
	Output(ctx context.Context, binary string, args ...string) ([]byte, error)
}

// CommandExecutor runs binaries with os/exec. A positive Timeout bounds each
// invocation.
type CommandExecutor struct {
	Timeout time.Duration
}

// waitDelay bounds how long a killed tool's descendants may hold its pipes.
const waitDelay = 2 * time.Second

// Output launches binary and waits for it to exit. A non-zero exit status is
// reported as an error carrying the tail of the tool's stderr, or of stdout
// when stderr is empty.
func (e CommandExecutor) Output(ctx context.Context, binary string, args ...string) ([]byte, error) {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	cmd.WaitDelay = waitDelay
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return stdout.Bytes(), fmt.Errorf("%w: %s exceeded %s", ErrTimeout, binary, e.Timeout)
		}
		detail := stderr.String()
		if strings.TrimSpace(detail) == "" {
			detail = stdout.String()
		}
		return stdout.Bytes(), fmt.Errorf("run %s: %w: %s", binary, err, tail(detail, 512))
	}
	return stdout.Bytes(), nil
}

func tail(s string, limit int) string {
	s = strings.TrimSpace(s)
	if len(s) <= limit {
		return s
	}
	return "..." + s[len(s)-limit:]
}

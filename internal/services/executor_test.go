package services_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"platebundle/internal/services"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tool")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestCommandExecutorReturnsOutput(t *testing.T) {
	tool := writeScript(t, `echo "hello $1"`)
	out, err := services.CommandExecutor{}.Output(context.Background(), tool, "world")
	if err != nil {
		t.Fatalf("Output returned error: %v", err)
	}
	if strings.TrimSpace(string(out)) != "hello world" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestCommandExecutorKeepsStderrOutOfOutput(t *testing.T) {
	tool := writeScript(t, `echo "Syntax Warning: bad xref" >&2; echo "KSFO page text"`)
	out, err := services.CommandExecutor{}.Output(context.Background(), tool)
	if err != nil {
		t.Fatalf("Output returned error: %v", err)
	}
	if got := strings.TrimSpace(string(out)); got != "KSFO page text" {
		t.Fatalf("expected stdout only, got %q", got)
	}
}

func TestCommandExecutorErrorFallsBackToStdout(t *testing.T) {
	tool := writeScript(t, `echo "usage: tool FILE"; exit 1`)
	_, err := services.CommandExecutor{}.Output(context.Background(), tool)
	if err == nil || !strings.Contains(err.Error(), "usage: tool FILE") {
		t.Fatalf("expected stdout tail in error, got %v", err)
	}
}

func TestCommandExecutorReportsExitStatus(t *testing.T) {
	tool := writeScript(t, `echo "bad input" >&2; exit 3`)
	_, err := services.CommandExecutor{}.Output(context.Background(), tool)
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if !strings.Contains(err.Error(), "bad input") || !strings.Contains(err.Error(), "exit status 3") {
		t.Fatalf("expected tool output in error, got %v", err)
	}
}

func TestCommandExecutorTimeout(t *testing.T) {
	tool := writeScript(t, `sleep 5`)
	_, err := services.CommandExecutor{Timeout: 50 * time.Millisecond}.Output(context.Background(), tool)
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout marker, got %v", err)
	}
}

package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/waabox/sitekit/internal/exec"
)

type stubRunner struct {
	name     string
	args     []string
	exitCode int
	err      error
}

func (s *stubRunner) Run(_ context.Context, name string, args []string, _ exec.RunOpts) (exec.CmdResult, error) {
	s.name = name
	s.args = args
	return exec.CmdResult{ExitCode: s.exitCode}, s.err
}

func (s *stubRunner) LookPath(name string) (string, error) {
	return "/usr/bin/" + name, nil
}

func TestBrowserCommand_PerPlatform(t *testing.T) {
	tests := []struct {
		goos string
		want string
	}{
		{"darwin", "open"},
		{"windows", "rundll32"},
		{"linux", "xdg-open"},
		{"freebsd", "xdg-open"},
	}
	for _, tt := range tests {
		name, args := browserCommand(tt.goos, "https://github.com/login/device")
		if name != tt.want {
			t.Errorf("%s: command = %q, want %q", tt.goos, name, tt.want)
		}
		if args[len(args)-1] != "https://github.com/login/device" {
			t.Errorf("%s: url must be the last argument, got %v", tt.goos, args)
		}
	}
}

func TestOpenBrowser_ReportsFailures(t *testing.T) {
	runner := &stubRunner{exitCode: 3}
	if err := OpenBrowser(runner)(context.Background(), "https://example.com"); err == nil {
		t.Error("expected error for non-zero exit")
	}

	runner = &stubRunner{err: errors.New("executable file not found")}
	if err := OpenBrowser(runner)(context.Background(), "https://example.com"); err == nil {
		t.Error("expected error when the opener is missing")
	}

	runner = &stubRunner{}
	if err := OpenBrowser(runner)(context.Background(), "https://example.com"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if runner.name == "" {
		t.Error("expected a command to be run")
	}
}

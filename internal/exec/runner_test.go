package exec

import (
	"context"
	"strings"
	"testing"
)

func TestRealRunner_ExitCode(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		expectCode int
	}{
		{"exit 0", []string{"-c", "exit 0"}, 0},
		{"exit 1", []string{"-c", "exit 1"}, 1},
		{"exit 42", []string{"-c", "exit 42"}, 42},
	}

	r := NewRealRunner()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := r.Run(context.Background(), "sh", tt.args, RunOpts{})
			if err != nil {
				t.Fatalf("Run returned error: %v", err)
			}
			if result.ExitCode != tt.expectCode {
				t.Errorf("exit code = %d, want %d", result.ExitCode, tt.expectCode)
			}
		})
	}
}

func TestRealRunner_StdoutStderr(t *testing.T) {
	result, err := NewRealRunner().Run(context.Background(), "sh", []string{"-c", "echo stdout; echo stderr >&2"}, RunOpts{})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !strings.Contains(result.Stdout, "stdout") {
		t.Errorf("stdout = %q, want to contain 'stdout'", result.Stdout)
	}
	if !strings.Contains(result.Stderr, "stderr") {
		t.Errorf("stderr = %q, want to contain 'stderr'", result.Stderr)
	}
}

func TestRealRunner_DirAndEnv(t *testing.T) {
	dir := t.TempDir()
	result, err := NewRealRunner().Run(context.Background(), "sh", []string{"-c", "pwd; echo $SITEKIT_TEST_VAR"}, RunOpts{
		Dir: dir,
		Env: map[string]string{"SITEKIT_TEST_VAR": "overlay"},
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !strings.Contains(result.Stdout, "overlay") {
		t.Errorf("stdout = %q, want env overlay value", result.Stdout)
	}
}

func TestRealRunner_MissingBinaryIsError(t *testing.T) {
	_, err := NewRealRunner().Run(context.Background(), "sitekit-no-such-binary", nil, RunOpts{})
	if err == nil {
		t.Fatal("expected error for missing binary, got nil")
	}
}

func TestRealRunner_CancelledContextIsError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRealRunner().Run(ctx, "sh", []string{"-c", "sleep 5"}, RunOpts{})
	if err == nil {
		t.Fatal("expected error for cancelled context, got nil")
	}
}

func TestRealRunner_LookPath(t *testing.T) {
	r := NewRealRunner()
	if _, err := r.LookPath("sh"); err != nil {
		t.Errorf("expected sh on PATH, got %v", err)
	}
	if _, err := r.LookPath("sitekit-no-such-binary"); err == nil {
		t.Error("expected error for missing binary")
	}
}

func TestRealRunner_DisablesPromptsByDefault(t *testing.T) {
	result, err := NewRealRunner().Run(context.Background(), "sh", []string{"-c", "echo $GIT_TERMINAL_PROMPT"}, RunOpts{})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if strings.TrimSpace(result.Stdout) != "0" {
		t.Errorf("GIT_TERMINAL_PROMPT = %q, want 0", result.Stdout)
	}
}

func TestRealRunner_OverlayWinsOverDefaults(t *testing.T) {
	result, err := NewRealRunner().Run(context.Background(), "sh", []string{"-c", "echo $GIT_TERMINAL_PROMPT"}, RunOpts{
		Env: map[string]string{"GIT_TERMINAL_PROMPT": "1"},
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if strings.TrimSpace(result.Stdout) != "1" {
		t.Errorf("GIT_TERMINAL_PROMPT = %q, want overlay value 1", result.Stdout)
	}
}

func TestCmdResult_Summary(t *testing.T) {
	tests := []struct {
		name   string
		result CmdResult
		want   string
	}{
		{"last stderr line", CmdResult{Stderr: "npm ERR! code ERESOLVE\nnpm ERR! unable to resolve\n\n"}, "npm ERR! unable to resolve"},
		{"stdout fallback", CmdResult{Stdout: "done\n"}, "done"},
		{"empty", CmdResult{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.result.Summary(); got != tt.want {
				t.Errorf("Summary() = %q, want %q", got, tt.want)
			}
		})
	}
	if !(CmdResult{ExitCode: 2}).Failed() || (CmdResult{}).Failed() {
		t.Error("Failed must follow the exit code")
	}
}

// Package exec runs the external tools sitekit drives (git, the package
// manager, vercel, the browser opener) behind a stub-friendly interface.
package exec

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
)

// nonInteractiveEnv is applied to every command. sitekit owns the terminal
// while it runs, so child tools must fail instead of prompting.
var nonInteractiveEnv = map[string]string{
	"GIT_TERMINAL_PROMPT": "0",
	"NO_UPDATE_NOTIFIER":  "1",
}

// CmdResult is what a finished tool left behind.
type CmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Failed reports a non-zero exit.
func (r CmdResult) Failed() bool {
	return r.ExitCode != 0
}

// Summary returns the last non-empty line of stderr, falling back to stdout.
// npm and git both put the actionable line last.
func (r CmdResult) Summary() string {
	if line := lastLine(r.Stderr); line != "" {
		return line
	}
	return lastLine(r.Stdout)
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}

// RunOpts holds optional parameters for one command.
type RunOpts struct {
	Dir string            // working directory; the staging dir for package tools
	Env map[string]string // overlays the non-interactive defaults
}

// CommandRunner is the seam between sitekit and the tools it shells out to.
type CommandRunner interface {
	// Run executes a command and returns the result.
	// A non-zero exit is reported through CmdResult.ExitCode with a nil error.
	// The error is reserved for failures to run at all (binary missing, ctx done).
	Run(ctx context.Context, name string, args []string, opts RunOpts) (CmdResult, error)

	// LookPath reports the resolved path of name on PATH.
	LookPath(name string) (string, error)
}

// RealRunner runs commands with os/exec. Stdin is never attached.
type RealRunner struct{}

// NewRealRunner creates a RealRunner.
func NewRealRunner() *RealRunner {
	return &RealRunner{}
}

// Run executes the command and captures its output.
func (r *RealRunner) Run(ctx context.Context, name string, args []string, opts RunOpts) (CmdResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Dir = opts.Dir
	cmd.Env = environ(cmd.Environ(), opts.Env)

	err := cmd.Run()
	result := CmdResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return result, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, ctxErr
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	return result, err
}

// LookPath resolves name using os/exec.LookPath.
func (r *RealRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// environ appends the defaults and then overlay to base.
// os/exec keeps the last value of a duplicated key, so overlay wins.
func environ(base []string, overlay map[string]string) []string {
	env := make([]string, 0, len(base)+len(nonInteractiveEnv)+len(overlay))
	env = append(env, base...)
	for k, v := range nonInteractiveEnv {
		env = append(env, k+"="+v)
	}
	for k, v := range overlay {
		env = append(env, k+"="+v)
	}
	return env
}

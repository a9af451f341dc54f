package git

import (
	"context"
	"fmt"

	"github.com/waabox/sitekit/internal/exec"
)

// Clone runs a shallow git clone of cloneURL into dir.
// token is redacted from any error returned.
func Clone(ctx context.Context, runner exec.CommandRunner, cloneURL, dir, token string) error {
	args := []string{"clone", "--depth", "1", "--quiet", cloneURL, dir}
	result, err := runner.Run(ctx, "git", args, exec.RunOpts{})
	if err != nil {
		return fmt.Errorf("running git clone: %s", Redact(err.Error(), token))
	}
	if result.Failed() {
		return fmt.Errorf("git clone failed (exit %d): %s", result.ExitCode, Redact(result.Summary(), token))
	}
	return nil
}

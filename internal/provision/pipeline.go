// Package provision turns a template repository into a ready-to-run project:
// clone, customize, pull environment and install dependencies.
package provision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/waabox/sitekit/internal/domain"
	"github.com/waabox/sitekit/internal/exec"
	"github.com/waabox/sitekit/internal/git"
	"github.com/waabox/sitekit/internal/logging"
	"github.com/waabox/sitekit/internal/template"
)

const (
	envFile         = ".env.local"
	envTemplateFile = "env.local.temp"
)

// stripPaths are removed from the clone so the project starts with a clean history.
var stripPaths = []string{".git", ".github"}

// Request describes one provisioning run.
type Request struct {
	Project        domain.Project
	Template       git.TemplateRef
	Username       string
	Token          string
	LocalesDir     string
	PackageManager string
	PullEnv        bool
	SkipInstall    bool
}

// Pipeline runs the provisioning steps against the local filesystem.
type Pipeline struct {
	runner exec.CommandRunner
	out    io.Writer
	logger logging.Logger
	newID  func() string
}

// New creates a Pipeline. Progress lines are written to out.
func New(runner exec.CommandRunner, out io.Writer, logger logging.Logger) *Pipeline {
	return &Pipeline{
		runner: runner,
		out:    out,
		logger: logging.With(logger),
		newID:  uuid.NewString,
	}
}

// CheckDependencies verifies that git and the package manager are on PATH.
// It must run before any network activity.
func (p *Pipeline) CheckDependencies(packageManager string) error {
	required := []domain.DependencyMissingError{
		{Binary: "git"},
		{Binary: packageManager, Hint: packageManagerHint(packageManager)},
	}
	for _, dep := range required {
		if _, err := p.runner.LookPath(dep.Binary); err != nil {
			missing := dep
			return &missing
		}
	}
	return nil
}

func packageManagerHint(name string) string {
	switch name {
	case "npm":
		return "https://nodejs.org"
	case "pnpm", "yarn":
		return "npm i -g " + name
	default:
		return ""
	}
}

// Run provisions req.Project.Dir from the template. Work happens in a staging
// directory next to the destination, which is removed on any failure so the
// destination is never left half-configured.
func (p *Pipeline) Run(ctx context.Context, req Request) (err error) {
	dest, err := filepath.Abs(req.Project.Dir)
	if err != nil {
		return fmt.Errorf("resolving destination: %w", err)
	}
	if err := checkDestination(dest); err != nil {
		return err
	}

	staging := filepath.Join(filepath.Dir(dest), fmt.Sprintf(".%s-%s", req.Project.Slug, p.newID()))
	defer func() {
		if err != nil {
			if rmErr := os.RemoveAll(staging); rmErr != nil {
				p.logger.Warn("provision: staging cleanup failed", logging.F("dir", staging), logging.F("error", rmErr.Error()))
			}
		}
	}()

	p.step("Scaffolding project from %s into %s...", req.Template.RemoteURL, req.Project.Dir)
	cloneURL := git.CloneURL(req.Template, req.Username, req.Token)
	if err := git.Clone(ctx, p.runner, cloneURL, staging, req.Token); err != nil {
		return err
	}
	for _, rel := range stripPaths {
		if err := os.RemoveAll(filepath.Join(staging, rel)); err != nil {
			return fmt.Errorf("removing %s: %w", rel, err)
		}
	}

	if err := p.customize(staging, req); err != nil {
		return err
	}
	if err := p.env(ctx, staging, req.PullEnv); err != nil {
		return err
	}
	if !req.SkipInstall {
		if err := p.install(ctx, staging, req.PackageManager); err != nil {
			return err
		}
	}
	return finalize(staging, dest)
}

func (p *Pipeline) customize(dir string, req Request) error {
	removed, err := template.PruneLanguages(dir, req.LocalesDir, req.Project.Languages)
	if err != nil {
		return fmt.Errorf("pruning languages: %w", err)
	}
	if len(removed) > 0 {
		p.logger.Debug("provision: pruned languages", logging.F("removed", strings.Join(removed, ",")))
	}
	changed, err := template.Rewrite(dir, template.Values(req.Project))
	if err != nil {
		return fmt.Errorf("rewriting placeholders: %w", err)
	}
	p.logger.Debug("provision: placeholders rewritten", logging.F("files", changed))
	return nil
}

// env pulls development variables with the vercel CLI. When vercel is missing
// or the pull fails, env.local.temp is copied to .env.local instead.
func (p *Pipeline) env(ctx context.Context, dir string, pull bool) error {
	pulled := false
	if pull {
		if _, err := p.runner.LookPath("vercel"); err != nil {
			p.step("vercel cli not found (npm i -g vercel)... creating clean %s file", envFile)
		} else {
			result, err := p.runner.Run(ctx, "vercel", []string{"env", "pull", envFile, "--environment=development", "--yes"}, exec.RunOpts{Dir: dir})
			switch {
			case err != nil:
				if ctx.Err() != nil {
					return ctx.Err()
				}
				p.step("Unable to pull vercel environment vars... creating clean %s file", envFile)
			case result.Failed():
				p.logger.Debug("provision: vercel env pull failed", logging.F("stderr", strings.TrimSpace(result.Stderr)))
				p.step("Unable to pull vercel environment vars... creating clean %s file", envFile)
			default:
				pulled = true
				p.step("Synchronized vercel environment vars to %s", envFile)
			}
		}
	}

	tmpl := filepath.Join(dir, envTemplateFile)
	if !pulled {
		if err := copyFile(tmpl, filepath.Join(dir, envFile)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("creating %s: %w", envFile, err)
		}
	}
	if err := os.Remove(tmpl); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", envTemplateFile, err)
	}
	return nil
}

func (p *Pipeline) install(ctx context.Context, dir, packageManager string) error {
	p.step("Installing dependencies with %s...", packageManager)
	result, err := p.runner.Run(ctx, packageManager, []string{"install"}, exec.RunOpts{Dir: dir})
	if err != nil {
		return fmt.Errorf("running %s install: %w", packageManager, err)
	}
	if result.Failed() {
		return fmt.Errorf("%s install failed (exit %d): %s", packageManager, result.ExitCode, result.Summary())
	}
	return nil
}

func (p *Pipeline) step(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// checkDestination accepts a missing path or an empty directory.
func checkDestination(dest string) error {
	entries, err := os.ReadDir(dest)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking destination %s: %w", dest, err)
	}
	if len(entries) > 0 {
		return fmt.Errorf("destination %s already exists and is not empty", dest)
	}
	return nil
}

// finalize moves staging to dest. An existing empty dest keeps its inode
// (it may be the working directory), so entries are moved into it one by one
// and moved back if any of them cannot be placed.
func finalize(staging, dest string) error {
	if _, err := os.Stat(dest); errors.Is(err, os.ErrNotExist) {
		if err := os.Rename(staging, dest); err != nil {
			return fmt.Errorf("moving project into place: %w", err)
		}
		return nil
	}

	entries, err := os.ReadDir(staging)
	if err != nil {
		return fmt.Errorf("reading staging directory: %w", err)
	}
	moved := make([]string, 0, len(entries))
	for _, e := range entries {
		if err := os.Rename(filepath.Join(staging, e.Name()), filepath.Join(dest, e.Name())); err != nil {
			restore(staging, dest, moved)
			return fmt.Errorf("moving %s into place: %w", e.Name(), err)
		}
		moved = append(moved, e.Name())
	}
	return os.Remove(staging)
}

// restore takes the named entries back out of dest. An entry that cannot be
// moved back is removed so dest holds nothing from the failed run.
func restore(staging, dest string, moved []string) {
	for _, name := range moved {
		placed := filepath.Join(dest, name)
		if err := os.Rename(placed, filepath.Join(staging, name)); err != nil {
			_ = os.RemoveAll(placed)
		}
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

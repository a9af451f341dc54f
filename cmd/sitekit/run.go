package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/waabox/sitekit/internal/auth"
	"github.com/waabox/sitekit/internal/config"
	"github.com/waabox/sitekit/internal/domain"
	"github.com/waabox/sitekit/internal/exec"
	"github.com/waabox/sitekit/internal/git"
	"github.com/waabox/sitekit/internal/logging"
	"github.com/waabox/sitekit/internal/provider"
	"github.com/waabox/sitekit/internal/provision"
	"github.com/waabox/sitekit/internal/tui"
)

// errHelp is returned after the help text was printed.
var errHelp = errors.New("help requested")

type app struct {
	stdin       io.Reader
	stdout      io.Writer
	stderr      io.Writer
	runner      exec.CommandRunner
	interactive bool
}

func (a *app) run(ctx context.Context, args []string) error {
	var opts Options
	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "sitekit"
	parser.Usage = "[options] [project-name] [template-url]"
	rest, err := parser.ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(a.stdout, flagsErr.Message)
			return errHelp
		}
		return err
	}

	if opts.Version {
		fmt.Fprintln(a.stdout, "sitekit", version)
		return nil
	}

	logger := logging.New(a.stderr, opts.Verbose)

	configPath := config.DefaultConfigPath()
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if opts.WriteConfig {
		return a.writeConfig(configPath, cfg)
	}

	name, templateURL, err := splitArgs(rest)
	if err != nil {
		return err
	}
	if opts.Template != "" {
		templateURL = opts.Template
	}
	if templateURL == "" {
		templateURL = cfg.TemplateURLOrDefault()
	}
	ref, err := git.ParseRemoteURL(templateURL)
	if err != nil {
		return err
	}

	interactive := a.interactive && !opts.Plain
	if name == "" {
		// Without a name the project is scaffolded into the current directory.
		name = "."
		if interactive {
			name, err = tui.Prompt(a.stdin, a.stderr, tui.NewPromptModel("Project name:", ".", requireName))
			if err != nil {
				return err
			}
		}
	}

	languages := opts.Lang
	if len(languages) == 0 {
		languages = cfg.Template.Languages
	}
	project, err := newProject(name, languages)
	if err != nil {
		return err
	}

	packageManager := cfg.PackageManagerOrDefault()
	pipeline := provision.New(a.runner, a.stderr, logger)
	if err := pipeline.CheckDependencies(packageManager); err != nil {
		return err
	}

	prov, err := provider.NewDefaultRegistry(cfg).Detect(ref)
	token := prov.Token
	switch {
	case err != nil:
		logger.Warn("no provider for template host, cloning anonymously", logging.F("host", ref.Host))
	case token == "":
		token, err = a.authenticate(ctx, prov, cfg, interactive, logger)
		if err != nil {
			return fmt.Errorf("%s authentication failed: %w", prov.Name, err)
		}
	default:
		logger.Debug("using configured token", logging.F("provider", prov.Name))
	}

	err = pipeline.Run(ctx, provision.Request{
		Project:        project,
		Template:       ref,
		Username:       prov.Username,
		Token:          token,
		LocalesDir:     cfg.LocalesDirOrDefault(),
		PackageManager: packageManager,
		PullEnv:        cfg.PullEnvOrDefault() && !opts.NoEnv,
		SkipInstall:    opts.NoInstall,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stderr, "\n%s\n\n", tui.Success("[SUCCESS]"))
	fmt.Fprintln(a.stderr, tui.Hint(fmt.Sprintf("  cd %s && %s run dev", project.Dir, packageManager)))
	return nil
}

// authenticate runs the device flow for prov. The token lives only for this run.
func (a *app) authenticate(ctx context.Context, prov provider.Provider, cfg config.Config, interactive bool, logger logging.Logger) (string, error) {
	poller, err := auth.NewPoller(auth.PollerConfig{
		Exchanger:      prov.Flow,
		MaxAttempts:    cfg.MaxAttemptsOrDefault(),
		RequestTimeout: time.Duration(cfg.RequestTimeoutSecondsOrDefault()) * time.Second,
		Logger:         logger,
	})
	if err != nil {
		return "", err
	}

	opener := auth.OpenBrowser(a.runner)
	var view auth.View = auth.NewConsoleView(a.stderr, opener, logger)
	if interactive {
		view = tui.NewAuthView(a.stdin, a.stderr, opener, logger)
	}
	return auth.Authenticate(ctx, prov.Flow, poller, view)
}

func (a *app) writeConfig(path string, cfg config.Config) error {
	cfg.GitHub.Token = ""
	cfg.GitLab.Token = ""
	if err := config.Save(path, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	fmt.Fprintf(a.stderr, "Config written to %s\n", path)
	return nil
}

// splitArgs sorts positional arguments into a project name and a template URL.
// Either may come first; URLs are recognised by their scheme or ssh form.
func splitArgs(args []string) (name, templateURL string, err error) {
	for _, arg := range args {
		if git.IsRemoteURL(arg) {
			if templateURL != "" {
				return "", "", fmt.Errorf("more than one template URL given: %s, %s", templateURL, arg)
			}
			templateURL = arg
			continue
		}
		if name != "" {
			return "", "", fmt.Errorf("more than one project name given: %s, %s", name, arg)
		}
		name = arg
	}
	return name, templateURL, nil
}

// newProject derives the project from the name argument. A bare name is
// created in a folder named after its slug; a path is used as given.
func newProject(arg string, languages []string) (domain.Project, error) {
	if err := requireName(arg); err != nil {
		return domain.Project{}, err
	}
	dir := arg
	name := filepath.Base(filepath.Clean(arg))
	if arg == "." {
		cwd, err := os.Getwd()
		if err != nil {
			return domain.Project{}, fmt.Errorf("getting current directory: %w", err)
		}
		name = filepath.Base(cwd)
	}
	slug := domain.Slugify(name, domain.MaxSlugLen)
	if arg != "." && !strings.ContainsRune(arg, filepath.Separator) && !strings.ContainsRune(arg, '/') {
		dir = slug
	}
	return domain.Project{Name: name, Slug: slug, Dir: dir, Languages: languages}, nil
}

func requireName(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("project name is required")
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	defaultTemplateURL    = "https://github.com/droplab/droplab-site-templates.git"
	defaultPackageManager = "npm"
	defaultLocalesDir     = "locales"
	defaultMaxAttempts    = 90
	defaultRequestTimeout = 10
)

// ProviderConfig holds device flow and clone settings for one code host.
type ProviderConfig struct {
	ClientID string `toml:"client_id"`
	URL      string `toml:"url"`
	Scope    string `toml:"scope"`
	Username string `toml:"username"`
	Token    string `toml:"token"`
}

// TemplateConfig selects the template repository and its language layout.
type TemplateConfig struct {
	URL        string   `toml:"url"`
	Languages  []string `toml:"languages"`
	LocalesDir string   `toml:"locales_dir"`
}

// InstallConfig controls the post-clone steps.
type InstallConfig struct {
	PackageManager string `toml:"package_manager"`
	PullEnv        *bool  `toml:"pull_env"`
}

// AuthConfig bounds the device flow polling session.
type AuthConfig struct {
	MaxAttempts           int `toml:"max_attempts"`
	RequestTimeoutSeconds int `toml:"request_timeout_seconds"`
}

// Config holds all sitekit configuration.
type Config struct {
	GitHub   ProviderConfig `toml:"github"`
	GitLab   ProviderConfig `toml:"gitlab"`
	Template TemplateConfig `toml:"template"`
	Install  InstallConfig  `toml:"install"`
	Auth     AuthConfig     `toml:"auth"`
}

// TemplateURLOrDefault returns Template.URL if set, otherwise the droplab site templates.
func (c Config) TemplateURLOrDefault() string {
	if c.Template.URL != "" {
		return c.Template.URL
	}
	return defaultTemplateURL
}

// PackageManagerOrDefault returns Install.PackageManager if set, otherwise npm.
func (c Config) PackageManagerOrDefault() string {
	if c.Install.PackageManager != "" {
		return c.Install.PackageManager
	}
	return defaultPackageManager
}

// LocalesDirOrDefault returns Template.LocalesDir if set, otherwise "locales".
func (c Config) LocalesDirOrDefault() string {
	if c.Template.LocalesDir != "" {
		return c.Template.LocalesDir
	}
	return defaultLocalesDir
}

// PullEnvOrDefault reports whether vercel env pull should run. Defaults to true.
func (c Config) PullEnvOrDefault() bool {
	if c.Install.PullEnv != nil {
		return *c.Install.PullEnv
	}
	return true
}

// MaxAttemptsOrDefault returns Auth.MaxAttempts if set, otherwise 90.
func (c Config) MaxAttemptsOrDefault() int {
	if c.Auth.MaxAttempts > 0 {
		return c.Auth.MaxAttempts
	}
	return defaultMaxAttempts
}

// RequestTimeoutSecondsOrDefault returns Auth.RequestTimeoutSeconds if set, otherwise 10.
func (c Config) RequestTimeoutSecondsOrDefault() int {
	if c.Auth.RequestTimeoutSeconds > 0 {
		return c.Auth.RequestTimeoutSeconds
	}
	return defaultRequestTimeout
}

// LoadFrom reads configuration from the given TOML file path.
// If the file does not exist, it returns an empty config without error.
// Environment variables always take precedence over file values:
//   - GITHUB_TOKEN            overrides github.token
//   - GITLAB_TOKEN            overrides gitlab.token
//   - GITLAB_URL              overrides gitlab.url
//   - SITEKIT_TEMPLATE_URL    overrides template.url
//   - SITEKIT_PACKAGE_MANAGER overrides install.package_manager
func LoadFrom(path string) (Config, error) {
	var cfg Config
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("decoding %s: %w", path, err)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// DefaultConfigPath returns the default path for the sitekit config file.
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "sitekit", "config.toml")
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		cfg.GitHub.Token = v
	}
	if v := os.Getenv("GITLAB_TOKEN"); v != "" {
		cfg.GitLab.Token = v
	}
	if v := os.Getenv("GITLAB_URL"); v != "" {
		cfg.GitLab.URL = v
	}
	if v := os.Getenv("SITEKIT_TEMPLATE_URL"); v != "" {
		cfg.Template.URL = v
	}
	if v := os.Getenv("SITEKIT_PACKAGE_MANAGER"); v != "" {
		cfg.Install.PackageManager = v
	}
}

// Save writes cfg to the given TOML file path, creating parent directories as needed.
// Existing file contents are overwritten. Permissions on the written file are 0600.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("opening config file: %w", err)
	}
	if encErr := toml.NewEncoder(f).Encode(cfg); encErr != nil {
		f.Close()
		return encErr
	}
	return f.Close()
}

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/waabox/sitekit/internal/config"
)

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")
	content := `
[github]
client_id = "Iv1.abc"
username = "octocat"

[gitlab]
url = "https://gitlab.example.com"

[template]
url = "https://github.com/acme/site-template.git"
languages = ["en", "es"]

[install]
package_manager = "pnpm"
pull_env = false

[auth]
max_attempts = 30
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GitHub.ClientID != "Iv1.abc" {
		t.Errorf("expected GitHub client id 'Iv1.abc', got '%s'", cfg.GitHub.ClientID)
	}
	if cfg.GitHub.Username != "octocat" {
		t.Errorf("expected GitHub username 'octocat', got '%s'", cfg.GitHub.Username)
	}
	if cfg.GitLab.URL != "https://gitlab.example.com" {
		t.Errorf("expected GitLab URL 'https://gitlab.example.com', got '%s'", cfg.GitLab.URL)
	}
	if cfg.TemplateURLOrDefault() != "https://github.com/acme/site-template.git" {
		t.Errorf("unexpected template url '%s'", cfg.TemplateURLOrDefault())
	}
	if len(cfg.Template.Languages) != 2 || cfg.Template.Languages[1] != "es" {
		t.Errorf("unexpected languages %v", cfg.Template.Languages)
	}
	if cfg.PackageManagerOrDefault() != "pnpm" {
		t.Errorf("expected package manager 'pnpm', got '%s'", cfg.PackageManagerOrDefault())
	}
	if cfg.PullEnvOrDefault() {
		t.Error("expected pull_env = false to be honored")
	}
	if cfg.MaxAttemptsOrDefault() != 30 {
		t.Errorf("expected max attempts 30, got %d", cfg.MaxAttemptsOrDefault())
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("missing file should not be an error, got: %v", err)
	}
	if cfg.TemplateURLOrDefault() != "https://github.com/droplab/droplab-site-templates.git" {
		t.Errorf("unexpected default template url '%s'", cfg.TemplateURLOrDefault())
	}
	if cfg.PackageManagerOrDefault() != "npm" {
		t.Errorf("expected default package manager npm, got '%s'", cfg.PackageManagerOrDefault())
	}
	if !cfg.PullEnvOrDefault() {
		t.Error("expected pull_env to default to true")
	}
	if cfg.MaxAttemptsOrDefault() != 90 {
		t.Errorf("expected default max attempts 90, got %d", cfg.MaxAttemptsOrDefault())
	}
	if cfg.RequestTimeoutSecondsOrDefault() != 10 {
		t.Errorf("expected default request timeout 10, got %d", cfg.RequestTimeoutSecondsOrDefault())
	}
	if cfg.LocalesDirOrDefault() != "locales" {
		t.Errorf("expected default locales dir, got '%s'", cfg.LocalesDirOrDefault())
	}
}

func TestLoad_EnvVarsTakePrecedence(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")
	content := `
[github]
token = "ghp_fromfile"

[template]
url = "https://github.com/acme/fromfile.git"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("GITHUB_TOKEN", "ghp_fromenv")
	t.Setenv("GITLAB_TOKEN", "glpat_fromenv")
	t.Setenv("GITLAB_URL", "https://gitlab.myco.com")
	t.Setenv("SITEKIT_TEMPLATE_URL", "https://gitlab.myco.com/web/template.git")
	t.Setenv("SITEKIT_PACKAGE_MANAGER", "yarn")

	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GitHub.Token != "ghp_fromenv" {
		t.Errorf("expected env token 'ghp_fromenv', got '%s'", cfg.GitHub.Token)
	}
	if cfg.GitLab.Token != "glpat_fromenv" {
		t.Errorf("expected env token 'glpat_fromenv', got '%s'", cfg.GitLab.Token)
	}
	if cfg.GitLab.URL != "https://gitlab.myco.com" {
		t.Errorf("expected env URL 'https://gitlab.myco.com', got '%s'", cfg.GitLab.URL)
	}
	if cfg.Template.URL != "https://gitlab.myco.com/web/template.git" {
		t.Errorf("expected env template url, got '%s'", cfg.Template.URL)
	}
	if cfg.Install.PackageManager != "yarn" {
		t.Errorf("expected env package manager 'yarn', got '%s'", cfg.Install.PackageManager)
	}
}

func TestLoad_InvalidTOMLIsError(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte("[github\nclient_id = "), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := config.LoadFrom(configPath); err == nil {
		t.Fatal("expected error for invalid TOML, got nil")
	}
}

func TestSave_RoundTripsWithRestrictedPermissions(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.toml")
	pullEnv := false
	cfg := config.Config{}
	cfg.GitHub.ClientID = "Iv1.saved"
	cfg.Template.Languages = []string{"en", "fr"}
	cfg.Install.PullEnv = &pullEnv

	if err := config.Save(configPath, cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("expected 0600 permissions, got %o", perm)
	}

	loaded, err := config.LoadFrom(configPath)
	if err != nil {
		t.Fatalf("loading saved config: %v", err)
	}
	if loaded.GitHub.ClientID != "Iv1.saved" {
		t.Errorf("expected persisted client id, got '%s'", loaded.GitHub.ClientID)
	}
	if loaded.PullEnvOrDefault() {
		t.Error("expected persisted pull_env = false")
	}
}

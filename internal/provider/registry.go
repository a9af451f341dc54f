package provider

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/waabox/sitekit/internal/auth"
	"github.com/waabox/sitekit/internal/config"
	"github.com/waabox/sitekit/internal/git"
)

// Provider is a code host that can hand out clone credentials.
type Provider struct {
	Name     string
	Username string // username embedded in the clone URL
	Token    string // preconfigured token; skips the device flow when set
	Flow     *auth.DeviceFlow
}

// Registry maps template hosts to providers.
type Registry struct {
	entries []entry
}

type entry struct {
	host     string
	provider Provider
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register associates a host (e.g., "github.com") with a provider.
func (r *Registry) Register(host string, p Provider) {
	r.entries = append(r.entries, entry{host: strings.ToLower(host), provider: p})
}

// Detect returns the provider registered for the template's host.
// Returns an error if no matching provider is registered.
func (r *Registry) Detect(ref git.TemplateRef) (Provider, error) {
	host := strings.ToLower(ref.Host)
	for _, e := range r.entries {
		if e.host == host {
			return e.provider, nil
		}
	}
	return Provider{}, fmt.Errorf("no provider found for template host: %s", ref.Host)
}

// NewDefaultRegistry registers github.com and gitlab.com plus any
// self-hosted instance configured in cfg. Each host gets a device flow
// against its own base URL.
func NewDefaultRegistry(cfg config.Config) *Registry {
	reg := NewRegistry()

	github := func(baseURL string) Provider {
		return Provider{
			Name:     "GitHub",
			Username: orDefault(cfg.GitHub.Username, "x-access-token"),
			Token:    cfg.GitHub.Token,
			Flow:     auth.NewGitHubDeviceFlow(cfg.GitHub.ClientID, cfg.GitHub.Scope, baseURL),
		}
	}
	reg.Register("github.com", github(""))
	if host := hostOf(cfg.GitHub.URL); host != "" && host != "github.com" {
		reg.Register(host, github(cfg.GitHub.URL))
	}

	gitlab := func(baseURL string) Provider {
		return Provider{
			Name:     "GitLab",
			Username: orDefault(cfg.GitLab.Username, "oauth2"),
			Token:    cfg.GitLab.Token,
			Flow:     auth.NewGitLabDeviceFlow(cfg.GitLab.ClientID, cfg.GitLab.Scope, baseURL),
		}
	}
	reg.Register("gitlab.com", gitlab(""))
	if host := hostOf(cfg.GitLab.URL); host != "" && host != "gitlab.com" {
		reg.Register(host, gitlab(cfg.GitLab.URL))
	}

	return reg
}

func hostOf(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

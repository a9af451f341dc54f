package git

import (
	"fmt"
	"net/url"
	"strings"
)

// TemplateRef identifies a template repository on a code host.
type TemplateRef struct {
	Host      string
	Owner     string // may contain slashes for GitLab subgroups
	Name      string
	RemoteURL string
}

// ParseRemoteURL parses a git remote URL and returns a TemplateRef.
// Supports HTTPS (https://github.com/owner/repo.git) and SSH (git@github.com:owner/repo.git).
// The RemoteURL field in the returned TemplateRef preserves the original input URL unchanged.
func ParseRemoteURL(rawURL string) (TemplateRef, error) {
	originalURL := rawURL
	normalized := strings.TrimSuffix(strings.TrimSuffix(rawURL, "/"), ".git")

	// SSH format: git@github.com:owner/repo
	if strings.HasPrefix(normalized, "git@") {
		trimmed := strings.TrimPrefix(normalized, "git@")
		parts := strings.SplitN(trimmed, ":", 2)
		if len(parts) != 2 || parts[0] == "" {
			return TemplateRef{}, fmt.Errorf("invalid SSH remote URL: %s", rawURL)
		}
		owner, name, ok := splitOwnerRepo(parts[1])
		if !ok {
			return TemplateRef{}, fmt.Errorf("invalid SSH remote URL path: %s", parts[1])
		}
		return TemplateRef{Host: parts[0], Owner: owner, Name: name, RemoteURL: originalURL}, nil
	}

	// HTTPS format: https://github.com/owner/repo
	if strings.HasPrefix(normalized, "https://") || strings.HasPrefix(normalized, "http://") {
		u, err := url.Parse(normalized)
		if err != nil || u.Host == "" {
			return TemplateRef{}, fmt.Errorf("invalid HTTPS remote URL: %s", rawURL)
		}
		owner, name, ok := splitOwnerRepo(strings.TrimPrefix(u.Path, "/"))
		if !ok {
			return TemplateRef{}, fmt.Errorf("invalid HTTPS remote URL: %s", rawURL)
		}
		return TemplateRef{Host: u.Host, Owner: owner, Name: name, RemoteURL: originalURL}, nil
	}

	return TemplateRef{}, fmt.Errorf("unsupported remote URL format: %s", rawURL)
}

// IsRemoteURL reports whether s looks like a repository URL rather than a project name.
func IsRemoteURL(s string) bool {
	return strings.Contains(s, "://") || strings.HasPrefix(s, "git@")
}

func splitOwnerRepo(path string) (string, string, bool) {
	i := strings.LastIndex(path, "/")
	if i <= 0 || i == len(path)-1 {
		return "", "", false
	}
	return path[:i], path[i+1:], true
}

// CloneURL returns the credentialed HTTPS clone URL
// https://<username>:<token>@<host>/<owner>/<repo>.git.
// SSH references are converted to HTTPS. An empty token yields an anonymous URL.
func CloneURL(ref TemplateRef, username, token string) string {
	u := url.URL{
		Scheme: "https",
		Host:   ref.Host,
		Path:   "/" + ref.Owner + "/" + ref.Name + ".git",
	}
	if token != "" {
		u.User = url.UserPassword(username, token)
	}
	return u.String()
}

// Redact replaces every occurrence of secret in s, including the
// percent-escaped forms it takes inside a URL.
func Redact(s, secret string) string {
	if secret == "" {
		return s
	}
	forms := []string{
		secret,
		strings.TrimPrefix(url.UserPassword("", secret).String(), ":"),
		url.PathEscape(secret),
		url.QueryEscape(secret),
	}
	for _, form := range forms {
		s = strings.ReplaceAll(s, form, "***")
	}
	return s
}

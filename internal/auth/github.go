package auth

// githubClientID is the OAuth App client ID registered at https://github.com/settings/developers.
// Users can override it by setting github.client_id in ~/.config/sitekit/config.toml.
const githubClientID = "Ov23liSitekitDeviceFlow"

const githubDefaultBaseURL = "https://github.com"

// GitHubEndpoints are the device flow paths of github.com and GitHub Enterprise Server.
// See https://docs.github.com/en/apps/oauth-apps/building-oauth-apps/authorizing-oauth-apps#device-flow
var GitHubEndpoints = Endpoints{
	DeviceCodePath:   "/login/device/code",
	TokenPath:        "/login/oauth/access_token",
	VerificationPath: "/login/device",
}

// NewGitHubDeviceFlow creates a DeviceFlow for GitHub.
// Pass an empty clientID to use the embedded one and an empty baseURL for github.com.
// Pass a test server URL in tests.
func NewGitHubDeviceFlow(clientID, scope, baseURL string) *DeviceFlow {
	if clientID == "" {
		clientID = githubClientID
	}
	if baseURL == "" {
		baseURL = githubDefaultBaseURL
	}
	if scope == "" {
		scope = "repo"
	}
	return NewDeviceFlow("GitHub", clientID, scope, baseURL, GitHubEndpoints)
}

package auth

// gitlabClientID is the Application ID of the sitekit OAuth app registered on gitlab.com.
// It is non-confidential (no secret required) so it is safe to distribute with the binary.
const gitlabClientID = "5c0f2c7a1e9b4d3f8a6e2b7c9d1f4a3e8b6c2d7f9a1e4b3c8d6f2a7e9c1b4d3f"

const gitlabDefaultBaseURL = "https://gitlab.com"

// GitLabEndpoints are the device flow paths of gitlab.com and self-hosted instances.
// See https://docs.gitlab.com/ee/api/oauth2.html#device-authorization-grant-flow
var GitLabEndpoints = Endpoints{
	DeviceCodePath:   "/oauth/authorize_device",
	TokenPath:        "/oauth/token",
	VerificationPath: "/oauth/device",
}

// NewGitLabDeviceFlow creates a DeviceFlow for GitLab.
// baseURL is the GitLab instance base URL; pass empty string for gitlab.com.
func NewGitLabDeviceFlow(clientID, scope, baseURL string) *DeviceFlow {
	if clientID == "" {
		clientID = gitlabClientID
	}
	if baseURL == "" {
		baseURL = gitlabDefaultBaseURL
	}
	if scope == "" {
		scope = "read_repository"
	}
	return NewDeviceFlow("GitLab", clientID, scope, baseURL, GitLabEndpoints)
}

package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/waabox/sitekit/internal/domain"
)

const grantTypeDeviceCode = "urn:ietf:params:oauth:grant-type:device_code"

// defaultInterval is the RFC 8628 polling interval used when the provider omits one.
const defaultInterval = 5

// maxResponseBytes caps how much of a token response body is read.
const maxResponseBytes = 1 << 20

// Endpoints holds the provider-relative paths of the device authorization flow.
type Endpoints struct {
	DeviceCodePath   string
	TokenPath        string
	VerificationPath string
}

// TokenResponse is the raw body of a single token poll.
// Exactly one of AccessToken or Error is normally set; Interval is optional.
type TokenResponse struct {
	AccessToken      string `json:"access_token"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Interval         int    `json:"interval"`
}

// DeviceFlow implements the transport side of the OAuth 2.0 Device Authorization Grant
// for one provider. Polling policy lives in Poller.
type DeviceFlow struct {
	provider  string
	clientID  string
	scope     string
	baseURL   string
	endpoints Endpoints
	client    *http.Client
}

// NewDeviceFlow creates a DeviceFlow for the provider at baseURL.
func NewDeviceFlow(provider, clientID, scope, baseURL string, endpoints Endpoints) *DeviceFlow {
	return &DeviceFlow{
		provider:  provider,
		clientID:  clientID,
		scope:     scope,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		endpoints: endpoints,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Provider returns the display name of the provider, e.g. "GitHub".
func (f *DeviceFlow) Provider() string {
	return f.provider
}

// VerificationURL returns the fixed page where the operator enters the user code.
func (f *DeviceFlow) VerificationURL() string {
	u, err := url.JoinPath(f.baseURL, f.endpoints.VerificationPath)
	if err != nil {
		return f.baseURL
	}
	return u
}

func (f *DeviceFlow) oauthConfig() (*oauth2.Config, error) {
	deviceURL, err := url.JoinPath(f.baseURL, f.endpoints.DeviceCodePath)
	if err != nil {
		return nil, fmt.Errorf("building URL: %w", err)
	}
	tokenURL, err := url.JoinPath(f.baseURL, f.endpoints.TokenPath)
	if err != nil {
		return nil, fmt.Errorf("building URL: %w", err)
	}
	cfg := &oauth2.Config{
		ClientID: f.clientID,
		Endpoint: oauth2.Endpoint{
			DeviceAuthURL: deviceURL,
			TokenURL:      tokenURL,
			AuthStyle:     oauth2.AuthStyleInParams,
		},
	}
	if f.scope != "" {
		cfg.Scopes = strings.Fields(strings.ReplaceAll(f.scope, ",", " "))
	}
	return cfg, nil
}

// RequestGrant requests a device code and user code from the provider.
// Any transport failure or a body without device_code/user_code yields an error
// matching domain.ErrGrantRequestFailed. It is never retried.
func (f *DeviceFlow) RequestGrant(ctx context.Context) (domain.DeviceGrant, error) {
	cfg, err := f.oauthConfig()
	if err != nil {
		return domain.DeviceGrant{}, fmt.Errorf("%w: %w", domain.ErrGrantRequestFailed, err)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, f.client)
	resp, err := cfg.DeviceAuth(ctx)
	if err != nil {
		return domain.DeviceGrant{}, fmt.Errorf("%w: %s: %w", domain.ErrGrantRequestFailed, f.provider, err)
	}
	if resp.DeviceCode == "" || resp.UserCode == "" {
		return domain.DeviceGrant{}, fmt.Errorf("%w: %s returned no device or user code", domain.ErrGrantRequestFailed, f.provider)
	}

	grant := domain.DeviceGrant{
		DeviceCode:      resp.DeviceCode,
		UserCode:        resp.UserCode,
		VerificationURI: resp.VerificationURI,
		Interval:        int(resp.Interval),
	}
	if grant.VerificationURI == "" {
		grant.VerificationURI = f.VerificationURL()
	}
	if grant.Interval <= 0 {
		grant.Interval = defaultInterval
	}
	if !resp.Expiry.IsZero() {
		grant.ExpiresIn = int(time.Until(resp.Expiry).Round(time.Second) / time.Second)
	}
	return grant, nil
}

// Exchange performs a single token poll for deviceCode.
// Provider error codes (authorization_pending, slow_down, ...) come back in the
// TokenResponse; the returned error is reserved for transport and decoding failures.
func (f *DeviceFlow) Exchange(ctx context.Context, deviceCode string) (TokenResponse, error) {
	tokenEndpoint, err := url.JoinPath(f.baseURL, f.endpoints.TokenPath)
	if err != nil {
		return TokenResponse{}, fmt.Errorf("building URL: %w", err)
	}

	data := url.Values{}
	data.Set("client_id", f.clientID)
	data.Set("device_code", deviceCode)
	data.Set("grant_type", grantTypeDeviceCode)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenEndpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return TokenResponse{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := f.client.Do(req)
	if err != nil {
		return TokenResponse{}, fmt.Errorf("polling token: %w", err)
	}
	defer resp.Body.Close()

	// GitLab answers pending polls with HTTP 400 and a JSON error body, so the
	// status code alone does not decide the outcome.
	var raw TokenResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&raw); err != nil {
		return TokenResponse{}, fmt.Errorf("decoding token response (HTTP %d): %w", resp.StatusCode, err)
	}
	return raw, nil
}

package auth

import (
	"context"

	"github.com/waabox/sitekit/internal/domain"
)

// GrantRequester starts a device authorization session.
type GrantRequester interface {
	Provider() string
	RequestGrant(ctx context.Context) (domain.DeviceGrant, error)
}

// PollFunc runs a poll session, reporting progress to status.
type PollFunc func(ctx context.Context, status StatusFunc) (domain.PollOutcome, error)

// View is the operator-facing side of the device flow.
// Present runs before polling starts and must not block on the browser launch.
type View interface {
	Present(ctx context.Context, provider string, grant domain.DeviceGrant)
	Watch(ctx context.Context, poll PollFunc) (domain.PollOutcome, error)
}

// Authenticate runs the whole device flow and returns the access token.
//
// Errors match domain.ErrGrantRequestFailed, domain.ErrAuthDenied,
// domain.ErrAuthTimedOut or domain.ErrCancelled.
func Authenticate(ctx context.Context, requester GrantRequester, poller *Poller, view View) (string, error) {
	grant, err := requester.RequestGrant(ctx)
	if err != nil {
		return "", err
	}

	view.Present(ctx, requester.Provider(), grant)

	outcome, err := view.Watch(ctx, func(ctx context.Context, status StatusFunc) (domain.PollOutcome, error) {
		return poller.Poll(ctx, grant, status)
	})
	if err != nil {
		return "", err
	}
	if outcome.Kind != domain.OutcomeAuthorized {
		return "", outcome.Err()
	}
	return outcome.AccessToken, nil
}

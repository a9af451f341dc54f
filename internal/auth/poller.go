package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/waabox/sitekit/internal/domain"
	"github.com/waabox/sitekit/internal/logging"
)

const (
	// DefaultMaxAttempts bounds a session to roughly 7.5 minutes at the nominal 5s interval.
	DefaultMaxAttempts = 90

	// DefaultRequestTimeout bounds a single token poll.
	DefaultRequestTimeout = 10 * time.Second

	// slowDownIncrement is the RFC 8628 interval bump for slow_down without an interval.
	slowDownIncrement = 5
)

// TokenExchanger performs one token poll. DeviceFlow is the production implementation.
type TokenExchanger interface {
	Exchange(ctx context.Context, deviceCode string) (TokenResponse, error)
}

// PollerConfig configures a Poller. Zero values pick the defaults.
type PollerConfig struct {
	Exchanger      TokenExchanger
	Clock          Clock
	MaxAttempts    int
	RequestTimeout time.Duration
	Logger         logging.Logger
}

// Poller drives the token polling side of the device flow until a terminal outcome.
type Poller struct {
	cfg PollerConfig
}

// PollState is the mutable state of one polling session.
type PollState struct {
	AttemptsMade     int
	CurrentInterval  int // seconds
	DeadlineAttempts int
}

// NewPoller validates cfg and fills in defaults.
func NewPoller(cfg PollerConfig) (*Poller, error) {
	if cfg.Exchanger == nil {
		return nil, errors.New("auth: token exchanger is required")
	}

	if cfg.Clock == nil {
		cfg.Clock = RealClock()
	}

	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}

	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}

	cfg.Logger = logging.With(cfg.Logger)

	return &Poller{cfg: cfg}, nil
}

// Poll waits CurrentInterval seconds before every tick and polls the token endpoint
// until it gets a token, an explicit denial, or runs out of attempts.
//
// The returned outcome is always terminal. When ctx is cancelled Poll returns
// promptly with an error matching domain.ErrCancelled and a zero outcome.
// status may be nil.
func (p *Poller) Poll(ctx context.Context, grant domain.DeviceGrant, status StatusFunc) (domain.PollOutcome, error) {
	if status == nil {
		status = func(Status) {}
	}

	state := PollState{
		CurrentInterval:  grant.Interval,
		DeadlineAttempts: p.cfg.MaxAttempts,
	}
	if state.CurrentInterval <= 0 {
		state.CurrentInterval = defaultInterval
	}

	status(state.status(PhasePending))

	for {
		if !p.wait(ctx, time.Duration(state.CurrentInterval)*time.Second) {
			return p.cancelled(ctx, &state, status)
		}

		outcome, err := p.tick(ctx, grant.DeviceCode, &state, status)
		if err != nil {
			return p.cancelled(ctx, &state, status)
		}

		if outcome.Terminal() {
			p.cfg.Logger.Debug("device flow: terminal outcome",
				logging.F("outcome", outcome.Kind.String()),
				logging.F("attempts", state.AttemptsMade))
			status(state.status(phaseFor(outcome)))
			return outcome, nil
		}

		if state.AttemptsMade >= state.DeadlineAttempts {
			p.cfg.Logger.Debug("device flow: attempt budget exhausted", logging.F("attempts", state.AttemptsMade))
			status(state.status(PhaseTimedOut))
			return domain.TimedOut(), nil
		}
	}
}

// tick sends one token request and folds the response into state.
// A non-nil error means the session was cancelled mid-request.
func (p *Poller) tick(ctx context.Context, deviceCode string, state *PollState, status StatusFunc) (domain.PollOutcome, error) {
	state.AttemptsMade++

	reqCtx, cancel := context.WithTimeout(ctx, p.cfg.RequestTimeout)
	resp, err := p.cfg.Exchanger.Exchange(reqCtx, deviceCode)
	cancel()

	if err != nil {
		if ctx.Err() != nil {
			return domain.PollOutcome{}, ctx.Err()
		}
		p.transient(state, err)
		return domain.Pending(), nil
	}

	if resp.AccessToken != "" {
		return domain.Authorized(resp.AccessToken), nil
	}

	switch resp.Error {
	case "authorization_pending":
		if resp.Interval > 0 && resp.Interval != state.CurrentInterval {
			p.adoptInterval(state, resp.Interval, status)
		} else {
			status(state.status(PhasePending))
		}
	case "slow_down":
		next := state.CurrentInterval + slowDownIncrement
		if resp.Interval > state.CurrentInterval {
			next = resp.Interval
		}
		p.adoptInterval(state, next, status)
	case "access_denied":
		reason := resp.ErrorDescription
		if reason == "" {
			reason = resp.Error
		}
		return domain.Denied(reason), nil
	case "expired_token":
		return domain.TimedOut(), nil
	case "":
		p.transient(state, errors.New("response carried neither a token nor an error"))
	default:
		p.transient(state, fmt.Errorf("unexpected error code %q", truncate(resp.Error, 100)))
	}
	return domain.Pending(), nil
}

func (p *Poller) adoptInterval(state *PollState, interval int, status StatusFunc) {
	p.cfg.Logger.Debug("device flow: polling interval changed",
		logging.F("from", state.CurrentInterval),
		logging.F("to", interval))
	state.CurrentInterval = interval
	status(state.status(PhaseIntervalChanged))
}

func (p *Poller) transient(state *PollState, cause error) {
	err := &domain.TransientPollError{Attempt: state.AttemptsMade, Cause: cause}
	p.cfg.Logger.Debug("device flow: transient poll error", logging.F("error", err.Error()))
}

func (p *Poller) cancelled(ctx context.Context, state *PollState, status StatusFunc) (domain.PollOutcome, error) {
	status(state.status(PhaseCancelled))
	return domain.PollOutcome{}, fmt.Errorf("waiting for authorization: %w: %w", domain.ErrCancelled, context.Cause(ctx))
}

func (p *Poller) wait(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-p.cfg.Clock.After(d):
		return ctx.Err() == nil
	}
}

func (s PollState) status(phase Phase) Status {
	return Status{
		Phase:       phase,
		Attempt:     s.AttemptsMade,
		MaxAttempts: s.DeadlineAttempts,
		Interval:    s.CurrentInterval,
	}
}

func phaseFor(outcome domain.PollOutcome) Phase {
	switch outcome.Kind {
	case domain.OutcomeAuthorized:
		return PhaseAuthorized
	case domain.OutcomeDenied:
		return PhaseDenied
	case domain.OutcomeTimedOut:
		return PhaseTimedOut
	default:
		return PhasePending
	}
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

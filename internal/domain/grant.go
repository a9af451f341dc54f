package domain

// DeviceGrant holds the initial response from a device authorization request.
// It is produced once per session and never modified afterwards.
type DeviceGrant struct {
	DeviceCode      string
	UserCode        string
	VerificationURI string
	Interval        int // minimum polling interval in seconds
	ExpiresIn       int // seconds until the device code expires
}

// OutcomeKind tags a PollOutcome.
type OutcomeKind int

const (
	OutcomePending OutcomeKind = iota
	OutcomeAuthorized
	OutcomeDenied
	OutcomeTimedOut
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomePending:
		return "pending"
	case OutcomeAuthorized:
		return "authorized"
	case OutcomeDenied:
		return "denied"
	case OutcomeTimedOut:
		return "timed out"
	default:
		return "unknown"
	}
}

// PollOutcome is the result of polling the token endpoint.
// AccessToken is set only for OutcomeAuthorized, Reason only for OutcomeDenied.
type PollOutcome struct {
	Kind        OutcomeKind
	AccessToken string
	Reason      string
}

func Authorized(token string) PollOutcome {
	return PollOutcome{Kind: OutcomeAuthorized, AccessToken: token}
}

func Denied(reason string) PollOutcome {
	return PollOutcome{Kind: OutcomeDenied, Reason: reason}
}

func TimedOut() PollOutcome {
	return PollOutcome{Kind: OutcomeTimedOut}
}

func Pending() PollOutcome {
	return PollOutcome{Kind: OutcomePending}
}

// Terminal reports whether the outcome ends the authorization session.
func (o PollOutcome) Terminal() bool {
	return o.Kind != OutcomePending
}

// Err maps a terminal failure to its error; Authorized and Pending map to nil.
func (o PollOutcome) Err() error {
	switch o.Kind {
	case OutcomeDenied:
		return &DeniedError{Reason: o.Reason}
	case OutcomeTimedOut:
		return ErrAuthTimedOut
	default:
		return nil
	}
}

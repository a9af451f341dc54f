package auth

import "time"

// Clock schedules the waits between token polls.
// Tests inject a fake to observe the requested spacing without sleeping.
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// RealClock returns a Clock backed by time.After.
func RealClock() Clock {
	return realClock{}
}

package fetcher

import "time"

// RetryPolicy bounds the fetch loop: a fixed attempt budget with
// exponential waits clamped to a floor and a ceiling.
type RetryPolicy struct {
	MaxAttempts int
	Multiplier  time.Duration
	MinWait     time.Duration
	MaxWait     time.Duration
}

// DefaultRetryPolicy builds a policy with the standard budget: 3 attempts,
// waits of multiplier·2^attempt seconds held between 4s and 10s.
func DefaultRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts: 3,
		Multiplier:  time.Second,
		MinWait:     4 * time.Second,
		MaxWait:     10 * time.Second,
	}
}

// Backoff returns the wait before the attempt following the given one
// (1-based).
func (p *RetryPolicy) Backoff(attempt int) time.Duration {
	wait := p.Multiplier << uint(attempt)
	if wait < p.MinWait {
		wait = p.MinWait
	}
	if wait > p.MaxWait {
		wait = p.MaxWait
	}
	return wait
}

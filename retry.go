package fanfold

import "time"

// RetryBuilder constructs the RetryPolicy a runner applies when replaying a
// sibling's window after a retryable failure. Values are immutable; each
// method returns a new builder.
//
// Whatever the configured delays, a RetryAfter hint carried by the failure
// itself is honored as a floor (see RetryPolicy.NextBackoff).
type RetryBuilder struct {
	policy RetryPolicy
}

// Retry starts a builder allowing up to maxAttempts invocations of a window,
// the first attempt included. maxAttempts <= 0 collapses to 1, a single
// attempt with no replays.
func Retry(maxAttempts int) RetryBuilder {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return RetryBuilder{
		policy: RetryPolicy{
			MaxAttempts: maxAttempts,
		},
	}
}

// WithExponentialBackoff grows the delay before each replay: initial before
// the first, multiplied by multiplier for every one after, capped at max.
// A multiplier <= 0 defaults to 2.0; a max <= 0 leaves the growth uncapped.
//
//	Retry(3).WithExponentialBackoff(100*time.Millisecond, 2.0, 2*time.Second)
func (r RetryBuilder) WithExponentialBackoff(initial time.Duration, multiplier float64, max time.Duration) RetryBuilder {
	p := r.policy
	p.InitialBackoff = initial
	p.MaxBackoff = max
	if multiplier <= 0 {
		multiplier = 2.0
	}
	p.BackoffMultiplier = multiplier
	return RetryBuilder{policy: p}
}

// WithConstantBackoff waits the same delay before every replay.
func (r RetryBuilder) WithConstantBackoff(delay time.Duration) RetryBuilder {
	p := r.policy
	p.InitialBackoff = delay
	p.MaxBackoff = 0
	p.BackoffMultiplier = 1.0
	return RetryBuilder{policy: p}
}

// Immediate replays without sleeping. MaxAttempts still bounds the replays,
// and a failure's RetryAfter hint still imposes its minimum wait.
func (r RetryBuilder) Immediate() RetryBuilder {
	p := r.policy
	p.InitialBackoff = 0
	p.MaxBackoff = 0
	p.BackoffMultiplier = 0
	return RetryBuilder{policy: p}
}

// Policy returns the built RetryPolicy for Builder.WithRetry.
func (r RetryBuilder) Policy() RetryPolicy {
	return r.policy
}

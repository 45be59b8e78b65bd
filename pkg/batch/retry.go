package batch

import "time"

// RetryPolicy controls how a retryable worker failure is replayed.
// MaxAttempts includes the first attempt:
//
//	MaxAttempts = 1 => no retries (just the initial call)
//	MaxAttempts = 3 => initial call + up to 2 retries
type RetryPolicy struct {
	MaxAttempts int

	// InitialBackoff is the delay before the first retry. Zero means
	// immediate retries.
	InitialBackoff time.Duration

	// BackoffMultiplier grows the delay each attempt. Values <= 1 give a
	// constant backoff.
	BackoffMultiplier float64

	// MaxBackoff caps the computed delay. Zero means no cap.
	MaxBackoff time.Duration
}

// NextBackoff computes the delay before retry number retry (1-based) and
// raises it to at least hint, the minimum backoff carried by a
// RetryableError. The hint is a floor, never a ceiling: a scheduler may wait
// longer, but not less.
func (p RetryPolicy) NextBackoff(retry int, hint time.Duration) time.Duration {
	d := p.InitialBackoff
	if p.BackoffMultiplier > 1 {
		for i := 1; i < retry; i++ {
			d = time.Duration(float64(d) * p.BackoffMultiplier)
			if p.MaxBackoff > 0 && d >= p.MaxBackoff {
				d = p.MaxBackoff
				break
			}
		}
	}
	if p.MaxBackoff > 0 && d > p.MaxBackoff {
		d = p.MaxBackoff
	}
	if d < hint {
		d = hint
	}
	return d
}

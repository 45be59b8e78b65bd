package batch

import (
	"errors"
	"fmt"
	"time"
)

// Worker failures are classified into exactly two kinds before they surface:
// permanent (do not retry this window) and retryable (safe to re-execute,
// optionally with a minimum backoff). A planner that cannot even measure the
// work fails with a third, planning-stage-only kind.

// PermanentError marks a failure that must not be retried: structurally
// invalid input or a violated business invariant.
type PermanentError struct {
	Message string
	Err     error
}

func (e *PermanentError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *PermanentError) Unwrap() error { return e.Err }

// NewPermanentError creates a PermanentError with the given message.
func NewPermanentError(msg string) *PermanentError {
	return &PermanentError{Message: msg}
}

// Permanentf creates a PermanentError from a format string. A %w verb wraps
// the cause.
func Permanentf(format string, args ...any) *PermanentError {
	err := fmt.Errorf(format, args...)
	return &PermanentError{Message: err.Error(), Err: errors.Unwrap(err)}
}

// RetryableError marks a transient failure that may succeed on replay.
// RetryAfter, if non-zero, is a minimum backoff the host scheduler should
// honor as a floor, not a guarantee.
type RetryableError struct {
	Message    string
	Err        error
	RetryAfter time.Duration
}

func (e *RetryableError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *RetryableError) Unwrap() error { return e.Err }

// NewRetryableError creates a RetryableError with the given message.
func NewRetryableError(msg string) *RetryableError {
	return &RetryableError{Message: msg}
}

// RetryableAfter creates a RetryableError carrying a minimum backoff hint.
func RetryableAfter(after time.Duration, msg string) *RetryableError {
	return &RetryableError{Message: msg, RetryAfter: after}
}

// PlanningError marks a planner that could not determine whether there is
// work at all. It is a permanent failure of the planning stage itself and is
// distinct from a valid NoBatches outcome.
type PlanningError struct {
	Message string
	Err     error
}

func (e *PlanningError) Error() string {
	if e.Err != nil {
		return "planning failed: " + e.Message + ": " + e.Err.Error()
	}
	return "planning failed: " + e.Message
}

func (e *PlanningError) Unwrap() error { return e.Err }

// NewPlanningError wraps a measurement failure as a planning-stage error.
func NewPlanningError(msg string, cause error) *PlanningError {
	return &PlanningError{Message: msg, Err: cause}
}

// IsPermanent reports whether err is classified as permanent.
// Planning failures are permanent by definition.
func IsPermanent(err error) bool {
	var pe *PermanentError
	if errors.As(err, &pe) {
		return true
	}
	var pl *PlanningError
	return errors.As(err, &pl)
}

// IsRetryable reports whether err is classified as retryable.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// RetryAfterHint returns the minimum backoff carried by a retryable error,
// or ok=false when there is none.
func RetryAfterHint(err error) (time.Duration, bool) {
	var re *RetryableError
	if errors.As(err, &re) && re.RetryAfter > 0 {
		return re.RetryAfter, true
	}
	return 0, false
}

// Classify forces err into one of the two worker failure kinds. Errors that
// are already classified pass through unchanged; anything else becomes
// retryable, the safe default for unknown conditions.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if IsPermanent(err) || IsRetryable(err) {
		return err
	}
	return &RetryableError{Message: "unclassified failure", Err: err}
}

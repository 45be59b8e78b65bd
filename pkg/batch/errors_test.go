package batch

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestClassifyPermanent(t *testing.T) {
	err := NewPermanentError("malformed record")
	if !IsPermanent(err) {
		t.Error("PermanentError should classify as permanent")
	}
	if IsRetryable(err) {
		t.Error("PermanentError should not classify as retryable")
	}
	if Classify(err) != err {
		t.Error("classified errors must pass through unchanged")
	}
}

func TestClassifyRetryable(t *testing.T) {
	err := NewRetryableError("connection reset")
	if !IsRetryable(err) {
		t.Error("RetryableError should classify as retryable")
	}
	if IsPermanent(err) {
		t.Error("RetryableError should not classify as permanent")
	}
	if Classify(err) != err {
		t.Error("classified errors must pass through unchanged")
	}
}

func TestClassifyUnknownDefaultsToRetryable(t *testing.T) {
	plain := errors.New("something went wrong")
	classified := Classify(plain)
	if !IsRetryable(classified) {
		t.Error("unknown errors must default to retryable")
	}
	if !errors.Is(classified, plain) {
		t.Error("classification must preserve the cause chain")
	}
}

func TestClassifyNil(t *testing.T) {
	if Classify(nil) != nil {
		t.Error("nil should stay nil")
	}
}

func TestClassificationSurvivesWrapping(t *testing.T) {
	inner := NewPermanentError("bad window")
	wrapped := fmt.Errorf("process_batch_002 batch 002 [200,400): %w", inner)
	if !IsPermanent(wrapped) {
		t.Error("wrapping must not erase the permanent classification")
	}

	retry := RetryableAfter(30*time.Second, "throttled")
	wrapped = fmt.Errorf("process_batch_001: %w", retry)
	if !IsRetryable(wrapped) {
		t.Error("wrapping must not erase the retryable classification")
	}
	hint, ok := RetryAfterHint(wrapped)
	if !ok || hint != 30*time.Second {
		t.Errorf("expected 30s hint, got %v ok=%v", hint, ok)
	}
}

func TestRetryAfterHintAbsent(t *testing.T) {
	if _, ok := RetryAfterHint(NewRetryableError("no hint")); ok {
		t.Error("zero RetryAfter should report no hint")
	}
	if _, ok := RetryAfterHint(NewPermanentError("nope")); ok {
		t.Error("permanent errors carry no hint")
	}
}

func TestPlanningErrorIsPermanent(t *testing.T) {
	cause := errors.New("table does not exist")
	err := NewPlanningError("measuring work", cause)
	if !IsPermanent(err) {
		t.Error("planning failures are permanent")
	}
	if IsRetryable(err) {
		t.Error("planning failures are not retryable")
	}
	if !errors.Is(err, cause) {
		t.Error("planning error must wrap its cause")
	}
	want := "planning failed: measuring work: table does not exist"
	if err.Error() != want {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestPermanentfWrapsCause(t *testing.T) {
	cause := errors.New("boom")
	err := Permanentf("window check: %w", cause)
	if !errors.Is(err, cause) {
		t.Error("Permanentf with %w must keep the cause")
	}
	if !IsPermanent(err) {
		t.Error("Permanentf result must be permanent")
	}
}

package batch

import "errors"

// Definition describes one fan-out / fan-in step pair: the planning step, the
// worker template its siblings are stamped from, and the retry policy applied
// to retryable worker failures.
//
// Aggregation is not part of the definition; it is a separate read-side fold
// (see Aggregator) so one run can be aggregated into different shapes.
type Definition struct {
	// Name identifies the fan-out for logs and run bookkeeping.
	Name string

	// PlanStep is the logical name of the planning step; its outcome is
	// stored at this address and read by every downstream consumer.
	PlanStep string

	// Plan measures the work.
	Plan PlanFunc

	// WorkerTemplate is the sibling address prefix source, e.g.
	// "process_batch" yields siblings "process_batch_001", ...
	WorkerTemplate string

	// Worker executes one cursor window. It is wrapped by GuardedWorker
	// before execution.
	Worker WorkerFunc

	// Retry, if set, governs replays of retryable worker failures.
	// Nil means a single attempt.
	Retry *RetryPolicy
}

// Validate checks that the definition is structurally complete.
func (d Definition) Validate() error {
	switch {
	case d.Name == "":
		return errors.New("batch: definition needs a name")
	case d.PlanStep == "":
		return errors.New("batch: definition needs a plan step name")
	case d.Plan == nil:
		return errors.New("batch: definition needs a plan function")
	case d.WorkerTemplate == "":
		return errors.New("batch: definition needs a worker template name")
	case d.Worker == nil:
		return errors.New("batch: definition needs a worker function")
	}
	return nil
}

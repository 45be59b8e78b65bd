package batch

import (
	"context"
	"fmt"
)

// WorkerContext carries everything one sibling needs: its own address and
// cursor window, the planner's metadata bag, and read access to upstream step
// results. Metadata is shared across siblings and must not be mutated.
type WorkerContext struct {
	Address  string
	Window   CursorWindow
	Metadata map[string]any
	Results  ResultLookup
}

// WorkerFunc executes one cursor window and returns a partial-result payload.
//
// Implementations must be pure with respect to their inputs: the host engine
// may re-invoke the same window after a transient failure, and a replay must
// produce the same output. Aggregable fields in the payload should be
// weighted values (counts, sums) so merging stays associative; never return
// pre-divided averages.
type WorkerFunc func(ctx context.Context, wc *WorkerContext) (any, error)

// WorkerReport is the standard mergeable partial result for workers that
// process items. All fields combine by addition.
type WorkerReport struct {
	BatchID        string             `json:"batch_id"`
	ItemsProcessed uint64             `json:"items_processed"`
	ItemsSucceeded uint64             `json:"items_succeeded"`
	ItemsFailed    uint64             `json:"items_failed"`
	Metrics        map[string]float64 `json:"metrics,omitempty"`
}

// WorkerFailure is the terminal payload recorded for a sibling that exhausted
// its retries or failed permanently. It carries enough context to re-run that
// specific window without re-running the whole fan-out.
type WorkerFailure struct {
	Address   string       `json:"address"`
	Window    CursorWindow `json:"window"`
	Message   string       `json:"message"`
	Permanent bool         `json:"permanent"`
}

// GuardedWorker wraps fn into the execution contract every sibling must
// follow:
//
//  1. apply the no-op guard against the planner result at planStep and
//     short-circuit with a uniform SkipResult on zero work;
//  2. validate the window bounds against the plan before touching any data;
//  3. inject the planner's metadata bag when the context has none;
//  4. classify every failure as permanent or retryable, annotated with the
//     failing window's address and cursor bounds.
func GuardedWorker(planStep string, fn WorkerFunc) WorkerFunc {
	return func(ctx context.Context, wc *WorkerContext) (any, error) {
		if skip, ok := Skip(wc.Results, planStep, StageWorker); ok {
			return skip, nil
		}

		// The guard passed, so a BatchConfig is present.
		outcome, _ := PlanResult(wc.Results, planStep)
		cfg, _ := outcome.Config()

		w := wc.Window
		if w.StartCursor >= w.EndCursor {
			return nil, workerErr(wc, Permanentf("empty or inverted cursor window"))
		}
		if w.EndCursor > cfg.TotalItems {
			return nil, workerErr(wc, Permanentf("window end %d exceeds total items %d", w.EndCursor, cfg.TotalItems))
		}

		if wc.Metadata == nil {
			wc.Metadata = cfg.Metadata
		}

		out, err := fn(ctx, wc)
		if err != nil {
			return nil, workerErr(wc, Classify(err))
		}
		return out, nil
	}
}

// workerErr annotates a classified failure with the window's identity so an
// operator can reproduce and re-run exactly this partition. Wrapping with %w
// keeps the classification visible to errors.As.
func workerErr(wc *WorkerContext, err error) error {
	return fmt.Errorf("%s %s: %w", wc.Address, wc.Window, err)
}

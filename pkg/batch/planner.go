package batch

import "context"

// PlanFunc is a planning step: given the run input, it measures the total
// work and returns exactly one of NoBatches or a BatchConfig.
//
// Planners decide how much work exists and how large a batch should be; they
// never perform windowing themselves. Any inability to measure the work is a
// PlanningError — a permanent failure of the planning stage — never a
// NoBatches outcome, which means "validly zero work".
type PlanFunc func(ctx context.Context, input any) (PlanOutcome, error)

// MeasureFunc inspects a data source and reports the total item count plus
// metadata to carry to every worker and the aggregator.
type MeasureFunc func(ctx context.Context, input any) (total uint64, metadata map[string]any, err error)

// PlanFromCount builds the common count-based planner: measure the work, emit
// NoBatches when the count is below minItems (or zero), otherwise emit a
// BatchConfig with the measured count and the given batch size.
//
// A minItems of 0 or 1 means "any non-zero count plans batches".
func PlanFromCount(minItems, batchSize uint64, measure MeasureFunc) PlanFunc {
	return func(ctx context.Context, input any) (PlanOutcome, error) {
		if batchSize == 0 {
			return PlanOutcome{}, ErrZeroBatchSize
		}

		total, metadata, err := measure(ctx, input)
		if err != nil {
			return PlanOutcome{}, NewPlanningError("measuring work", err)
		}

		if total == 0 || total < minItems {
			return PlanNoBatches(ReasonDatasetTooSmall, metadata), nil
		}

		return PlanBatches(BatchConfig{
			TotalItems: total,
			BatchSize:  batchSize,
			Metadata:   metadata,
		})
	}
}

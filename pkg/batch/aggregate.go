package batch

import "context"

// Scenario is the runtime classification of a fan-out: whether any siblings
// actually materialized. It is computed from the result bag, not from what
// was originally planned, so it stays correct even when an engine
// materializes zero children despite a nominal BatchConfig.
type Scenario string

const (
	ScenarioNoBatches Scenario = "no_batches"
	ScenarioBatches   Scenario = "with_batches"
)

// ClassifyScenario scans the result bag for the template's siblings and
// returns the scenario plus the ordinal-ordered sibling addresses.
func ClassifyScenario(results ResultLookup, template string) (Scenario, []string) {
	siblings := SiblingAddresses(template, results.Addresses())
	if len(siblings) == 0 {
		return ScenarioNoBatches, nil
	}
	return ScenarioBatches, siblings
}

// MergeFunc combines two partial values. It must be associative — sibling
// completion order is not guaranteed, and the fold must give the same result
// for any permutation of inputs. Sums, maxima, and (sum, count) pairs
// qualify; pre-divided means do not. This is a correctness requirement, not a
// style preference.
type MergeFunc[R any] func(R, R) R

// ExtractFunc converts a sibling's stored payload into the aggregation
// domain. ok=false means the payload is not a partial result of this fold
// (skip markers and failure records are handled before extraction, so a
// false return indicates a genuinely foreign payload).
type ExtractFunc[R any] func(payload any) (R, bool)

// Aggregate is the fan-in product. Value is the folded result over the
// successful siblings; the remaining fields make an incomplete aggregate
// distinguishable from a complete one — the fold never silently fabricates a
// complete result when some siblings failed.
type Aggregate[R any] struct {
	Value    R
	Scenario Scenario

	// WorkerCount is the number of siblings discovered in the result bag.
	WorkerCount int
	// Succeeded and Failed partition WorkerCount.
	Succeeded int
	Failed    int

	// Complete is true when every discovered sibling contributed to Value.
	Complete bool
	// FailedWorkers lists the addresses of siblings that ended in failure,
	// in ordinal order, so the specific windows can be re-run.
	FailedWorkers []string

	// Skip is set on the no-batches path and mirrors the payload a worker
	// would have returned under the same outcome.
	Skip *SkipResult
}

// Aggregator folds the partial results of one fan-out into a single value.
// It runs once, after the host engine's barrier guarantees every materialized
// sibling is terminal.
type Aggregator[R any] struct {
	// PlanStep is the address of the planning step's result.
	PlanStep string
	// Template is the sibling worker template name used for enumeration.
	Template string
	// Zero is the caller's identity value, returned unchanged on zero work.
	Zero R
	// Merge folds partial values; see MergeFunc for the associativity
	// requirement.
	Merge MergeFunc[R]
	// Extract converts sibling payloads into R.
	Extract ExtractFunc[R]
}

// Run classifies the scenario and folds the sibling results.
//
// The degenerate paths collapse onto one another: a NoBatches plan,
// a missing plan, and a BatchConfig whose siblings never materialized all
// yield Zero with ScenarioNoBatches. Consumers that only read Value cannot
// tell them apart; the Skip payload's Reason records which case it was.
func (a Aggregator[R]) Run(ctx context.Context, results ResultLookup) (Aggregate[R], error) {
	if err := ctx.Err(); err != nil {
		return Aggregate[R]{}, err
	}

	if skip, ok := Skip(results, a.PlanStep, StageAggregator); ok {
		return Aggregate[R]{
			Value:    a.Zero,
			Scenario: ScenarioNoBatches,
			Complete: true,
			Skip:     &skip,
		}, nil
	}

	scenario, siblings := ClassifyScenario(results, a.Template)
	if scenario == ScenarioNoBatches {
		// A BatchConfig was planned but no siblings are discoverable.
		// Aggregation must not crash on an empty-but-expected set; it
		// behaves exactly like the NoBatches path.
		skip := SkipResult{Skipped: true, Stage: StageAggregator, Reason: ReasonNoSiblings}
		return Aggregate[R]{
			Value:    a.Zero,
			Scenario: ScenarioNoBatches,
			Complete: true,
			Skip:     &skip,
		}, nil
	}

	agg := Aggregate[R]{
		Value:       a.Zero,
		Scenario:    ScenarioBatches,
		WorkerCount: len(siblings),
	}
	for _, addr := range siblings {
		payload, _ := results.Lookup(addr)
		switch p := payload.(type) {
		case WorkerFailure:
			agg.Failed++
			agg.FailedWorkers = append(agg.FailedWorkers, addr)
		case *WorkerFailure:
			agg.Failed++
			agg.FailedWorkers = append(agg.FailedWorkers, addr)
		case SkipResult:
			// A worker that short-circuited on the guard contributes nothing.
			agg.Succeeded++
		default:
			v, ok := a.Extract(p)
			if !ok {
				agg.Failed++
				agg.FailedWorkers = append(agg.FailedWorkers, addr)
				continue
			}
			agg.Value = a.Merge(agg.Value, v)
			agg.Succeeded++
		}
	}
	agg.Complete = agg.Failed == 0
	return agg, nil
}

// Fold merges partial values in slice order, seeded with zero. It is the
// primitive behind Aggregator.Run, exposed for callers that enumerate sibling
// results themselves.
func Fold[R any](zero R, merge MergeFunc[R], parts []R) R {
	acc := zero
	for _, p := range parts {
		acc = merge(acc, p)
	}
	return acc
}

// ReportSummary aggregates WorkerReport partial results: the totals every
// item-processing fan-out wants, expressed as weighted values so merging is
// associative and commutative.
type ReportSummary struct {
	TotalProcessed uint64             `json:"total_processed"`
	TotalSucceeded uint64             `json:"total_succeeded"`
	TotalFailed    uint64             `json:"total_failed"`
	WorkerCount    int                `json:"worker_count"`
	Metrics        map[string]float64 `json:"metrics,omitempty"`
}

// MergeSummaries combines two summaries by addition.
func MergeSummaries(a, b ReportSummary) ReportSummary {
	out := ReportSummary{
		TotalProcessed: a.TotalProcessed + b.TotalProcessed,
		TotalSucceeded: a.TotalSucceeded + b.TotalSucceeded,
		TotalFailed:    a.TotalFailed + b.TotalFailed,
		WorkerCount:    a.WorkerCount + b.WorkerCount,
	}
	if len(a.Metrics) > 0 || len(b.Metrics) > 0 {
		out.Metrics = make(map[string]float64, len(a.Metrics)+len(b.Metrics))
		for k, v := range a.Metrics {
			out.Metrics[k] += v
		}
		for k, v := range b.Metrics {
			out.Metrics[k] += v
		}
	}
	return out
}

// ReportAggregator builds an Aggregator over the standard WorkerReport
// payload shape.
func ReportAggregator(planStep, template string) Aggregator[ReportSummary] {
	return Aggregator[ReportSummary]{
		PlanStep: planStep,
		Template: template,
		Zero:     ReportSummary{},
		Merge:    MergeSummaries,
		Extract: func(payload any) (ReportSummary, bool) {
			var r WorkerReport
			switch p := payload.(type) {
			case WorkerReport:
				r = p
			case *WorkerReport:
				if p == nil {
					return ReportSummary{}, false
				}
				r = *p
			default:
				return ReportSummary{}, false
			}
			return ReportSummary{
				TotalProcessed: r.ItemsProcessed,
				TotalSucceeded: r.ItemsSucceeded,
				TotalFailed:    r.ItemsFailed,
				WorkerCount:    1,
				Metrics:        r.Metrics,
			}, true
		},
	}
}

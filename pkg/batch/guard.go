package batch

// Stage tags identify which consumer short-circuited on a no-op run.
const (
	StageWorker     = "worker"
	StageAggregator = "aggregator"
)

// SkipResult is the uniform no-op payload returned by any consumer that
// short-circuits on a zero-work run. The shape is identical for workers and
// aggregators; only the Stage tag differs.
type SkipResult struct {
	Skipped bool   `json:"skipped"`
	Stage   string `json:"stage"`
	Reason  Reason `json:"reason"`
}

// PlanResult fetches and decodes the planner's outcome from the result bag.
// ok=false means no decodable outcome is stored at planStep.
func PlanResult(results ResultLookup, planStep string) (PlanOutcome, bool) {
	payload, ok := results.Lookup(planStep)
	if !ok {
		return PlanOutcome{}, false
	}
	switch v := payload.(type) {
	case PlanOutcome:
		return v, v.Kind() != ""
	case *PlanOutcome:
		if v == nil {
			return PlanOutcome{}, false
		}
		return *v, v.Kind() != ""
	default:
		return PlanOutcome{}, false
	}
}

// Skip is the shared no-op guard. It decides, before any Batches-only field
// is dereferenced, whether the upstream planner produced zero work. When it
// returns skip=true the caller must return the SkipResult unchanged and do
// nothing else.
//
// A missing or undecodable planner result is treated as zero work
// (ReasonPlanUnavailable) rather than an error: a cancelled or failed planner
// materializes no siblings, and downstream consumers invoked anyway must
// degrade to the no-op path instead of crashing.
func Skip(results ResultLookup, planStep, stage string) (SkipResult, bool) {
	outcome, ok := PlanResult(results, planStep)
	if !ok {
		return SkipResult{Skipped: true, Stage: stage, Reason: ReasonPlanUnavailable}, true
	}
	if nb, ok := outcome.NoBatches(); ok {
		return SkipResult{Skipped: true, Stage: stage, Reason: nb.Reason}, true
	}
	return SkipResult{}, false
}

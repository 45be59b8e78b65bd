// Package batch defines the contract a dynamic fan-out / fan-in step pair
// must satisfy to plug into a static dependency-graph orchestrator.
//
// The problem it solves: a planning step may decide, at run time, to split an
// unbounded unit of work into N independent sibling steps, where N is unknown
// until execution. The orchestrator materializes those siblings as first-class
// steps, runs them with arbitrary parallelism, and a single convergence step
// later merges all N partial results.
//
// The package is split along that lifecycle:
//
//   - PlanOutcome / BatchConfig / NoBatches: what a planner may produce.
//   - Partition: slicing a BatchConfig into disjoint cursor windows.
//   - WorkerName and friends: deterministic sibling addressing.
//   - Skip: the shared no-op guard for degenerate (zero-work) runs.
//   - GuardedWorker: the per-window execution wrapper.
//   - Aggregator / Fold: the deterministic fan-in merge.
//   - MaterializationPort / ResultLookup: the two capabilities the host
//     engine must provide. The package never assumes how steps are scheduled,
//     only that materialization is deterministic and results are addressable.
//
// The host engine's dependency mechanism is expected to provide the barrier:
// an Aggregator must not run until every materialized sibling is terminal.
package batch

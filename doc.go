// Package fanfold implements dynamic batch fan-out / fan-in for dependency
// graph orchestrators: a planning step splits an unbounded unit of work into
// an unknown-until-runtime number of parallel sibling steps, and a single
// convergence step later folds all of their partial results into one
// aggregate.
//
// The hard part is reconciling a static dependency-graph execution model with
// dynamic width. Fanfold does it with four small, composable pieces:
//
//  1. Planner
//  2. Partitioner
//  3. Worker
//  4. Aggregator
//
// # Planner
//
// A planner measures the total work and emits exactly one of two outcomes: a
// BatchConfig (how many items, how large a batch) or NoBatches (validly zero
// work). Zero work is never a degenerate config; it is its own outcome, and
// every downstream consumer short-circuits on it through a shared no-op
// guard.
//
// # Partitioner
//
// Partition slices a BatchConfig into ordered, disjoint, half-open cursor
// windows whose union is exactly [0, total). Each window's sibling gets a
// deterministic address derived purely from the worker template name and the
// window's ordinal ("process_batch_001"), so addresses are reproducible
// across retries and replays.
//
// # Worker
//
// A worker processes one window. It is pure with respect to its inputs, so
// the host engine may replay it freely, and it classifies every failure as
// either permanent (never retry) or retryable (optionally with a minimum
// backoff hint).
//
// # Aggregator
//
// The aggregator runs after the host engine's barrier guarantees all siblings
// are terminal. It discovers siblings by address prefix, classifies the run
// scenario at run time, and folds partial results with a caller-supplied zero
// value and associative merge function. Incomplete aggregates are explicit,
// never silently fabricated.
//
// # Hosting
//
// The orchestrator itself stays abstract: fanfold consumes a
// MaterializationPort (turn windows into schedulable steps) and a
// ResultLookup (read terminal results by address) and assumes nothing else.
// LocalRunner provides both in-process for development, tests, and simple
// single-process deployments:
//
//	def := fanfold.New("inventory-import").
//	    PlanFromCount("analyze_dataset", 1, 200, measureRows).
//	    Worker("process_batch", processWindow).
//	    Definition()
//
//	runner := fanfold.NewLocalRunner()
//	summary, err := fanfold.Run(ctx, runner, def, input,
//	    fanfold.ReportAggregator("analyze_dataset", "process_batch"))
package fanfold

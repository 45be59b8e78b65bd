package fanfold

import (
	"context"

	"github.com/fanfold/fanfold/internal/persistence"
	"github.com/fanfold/fanfold/internal/runner"
	"github.com/fanfold/fanfold/pkg/batch"
)

// RunResult is the product of one completed fan-out run: the plan outcome,
// the materialized sibling addresses, and the result bag aggregators read.
type RunResult = runner.Result

// ResultStore is a writable result bag: the ResultLookup capability plus
// Save. Storage backends implement it per run.
type ResultStore = persistence.Store

// StoreProvider creates a ResultStore scoped to a single run.
type StoreProvider = persistence.Provider

// LocalRunner executes fan-out definitions in-process. It provides the
// materialization and result-lookup capabilities a real orchestrator would,
// shrunk to one process for development, tests, and simple single-process
// deployments.
//
// Typical usage:
//
//	r := fanfold.NewLocalRunner()
//	res, err := r.Execute(ctx, def, input)
//	// fold res.Results with an Aggregator, or use fanfold.Run to do both.
type LocalRunner struct {
	runner *runner.Runner
}

// NewLocalRunner constructs a LocalRunner with in-memory result storage,
// unbounded sibling parallelism, and no observer.
func NewLocalRunner() *LocalRunner {
	return &LocalRunner{runner: runner.New(runner.Config{})}
}

// NewLocalRunnerWithObserver is like NewLocalRunner with lifecycle callbacks.
func NewLocalRunnerWithObserver(obs Observer) *LocalRunner {
	return &LocalRunner{runner: runner.New(runner.Config{Observer: obs})}
}

// LocalRunnerConfig customizes a LocalRunner.
type LocalRunnerConfig struct {
	// Observer receives lifecycle callbacks; nil means none.
	Observer Observer

	// Concurrency bounds how many siblings execute at once.
	// Values <= 0 mean unbounded.
	Concurrency int

	// Provider creates the per-run result store; nil means in-memory.
	// Storage-specific constructors like NewSQLiteRunner fill it in.
	Provider StoreProvider
}

// NewLocalRunnerWithConfig constructs a LocalRunner from cfg.
func NewLocalRunnerWithConfig(cfg LocalRunnerConfig) *LocalRunner {
	return &LocalRunner{runner: runner.New(runner.Config{
		Provider:    cfg.Provider,
		Observer:    cfg.Observer,
		Concurrency: cfg.Concurrency,
	})}
}

// Execute runs def to completion: plan, materialize, execute all siblings,
// and return once every sibling is terminal (the aggregation barrier).
//
// Worker failures do not fail the run; they are recorded in the result bag
// and counted in RunResult.WorkersFailed. A planner failure does fail the
// run.
func (r *LocalRunner) Execute(ctx context.Context, def Definition, input any) (*RunResult, error) {
	run, err := r.runner.NewRun(def)
	if err != nil {
		return nil, err
	}
	return run.Execute(ctx, input)
}

// Run executes def on r and folds the sibling results with agg in one call.
// The runner's observer receives OnAggregated after the fold.
func Run[R any](ctx context.Context, r *LocalRunner, def Definition, input any, agg batch.Aggregator[R]) (batch.Aggregate[R], error) {
	res, err := r.Execute(ctx, def, input)
	if err != nil {
		return batch.Aggregate[R]{}, err
	}
	out, err := agg.Run(ctx, res.Results)
	if err != nil {
		return out, err
	}
	r.runner.Observer().OnAggregated(ctx, res.RunID, out.Scenario, out.WorkerCount, out.Failed)
	return out, nil
}

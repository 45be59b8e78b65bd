// Package runner drives a fan-out definition end to end in-process: plan,
// materialize, execute siblings with bounded parallelism, enforce the
// completion barrier, and hand the result bag to the caller.
//
// It is the materialization and lookup capability a real orchestrator would
// provide, shrunk to one process for development, tests, and simple
// single-process deployments. It is not a workflow engine: there is no task
// persistence, no cross-process scheduling, no crash recovery.
package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fanfold/fanfold/internal/persistence"
	"github.com/fanfold/fanfold/pkg/batch"
)

// Config describes how to construct a Runner.
type Config struct {
	// Provider creates the per-run result store. Defaults to in-memory.
	Provider persistence.Provider

	// Observer receives lifecycle callbacks. Defaults to NoopObserver.
	Observer batch.Observer

	// Concurrency bounds how many siblings execute at once. Values <= 0
	// mean unbounded: every sibling gets its own goroutine.
	Concurrency int
}

// Runner executes fan-out definitions.
type Runner struct {
	provider    persistence.Provider
	observer    batch.Observer
	concurrency int
}

// New creates a Runner from cfg, filling in defaults.
func New(cfg Config) *Runner {
	provider := cfg.Provider
	if provider == nil {
		provider = persistence.MemoryProvider()
	}
	obs := cfg.Observer
	if obs == nil {
		obs = batch.NoopObserver{}
	}
	return &Runner{
		provider:    provider,
		observer:    obs,
		concurrency: cfg.Concurrency,
	}
}

// Observer returns the runner's configured observer.
func (r *Runner) Observer() batch.Observer {
	return r.observer
}

// Run is one execution of a fan-out definition. It implements
// batch.MaterializationPort for its own siblings.
type Run struct {
	ID string

	runner *Runner
	def    batch.Definition
	store  persistence.Store

	mu           sync.Mutex
	materialized map[string][]string
	windows      map[string]batch.CursorWindow
}

var _ batch.MaterializationPort = (*Run)(nil)

// NewRun prepares a run of def with a fresh run ID and result store.
func (r *Runner) NewRun(def batch.Definition) (*Run, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	store, err := r.provider(id)
	if err != nil {
		return nil, fmt.Errorf("creating result store for run %s: %w", id, err)
	}

	return &Run{
		ID:           id,
		runner:       r,
		def:          def,
		store:        store,
		materialized: make(map[string][]string),
		windows:      make(map[string]batch.CursorWindow),
	}, nil
}

// Results exposes the run's result bag.
func (run *Run) Results() batch.ResultLookup {
	return run.store
}

// Materialize records the sibling steps for the given windows and returns
// their deterministic addresses in ordinal order.
//
// Repeated calls with the same parent are idempotent: the already-recorded
// addresses are returned and no duplicate siblings are created, mirroring how
// a graph engine must behave when the materialization request is replayed.
func (run *Run) Materialize(ctx context.Context, parent string, windows []batch.CursorWindow) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	run.mu.Lock()
	defer run.mu.Unlock()

	if existing, ok := run.materialized[parent]; ok {
		return existing, nil
	}

	addresses := make([]string, len(windows))
	for i, w := range windows {
		addr := batch.WorkerName(parent, i)
		addresses[i] = addr
		run.windows[addr] = w
	}
	run.materialized[parent] = addresses
	return addresses, nil
}

// Result is what one completed run hands back: the plan outcome, the
// materialized sibling addresses, and the result bag the aggregator reads.
type Result struct {
	RunID     string
	Outcome   batch.PlanOutcome
	Addresses []string
	Results   batch.ResultLookup

	// WorkersFailed counts siblings that ended in a terminal failure.
	// Their failure records are in the result bag.
	WorkersFailed int
}

// Execute drives the run to completion: plan, store the outcome, materialize
// siblings, execute them with bounded parallelism, and wait for every sibling
// to reach a terminal state before returning (the aggregation barrier).
//
// A planner error fails the run. Worker failures do not: they are local to
// their window, recorded in the result bag as WorkerFailure payloads, and
// surfaced through Result.WorkersFailed so the caller's aggregation policy
// can decide what an incomplete aggregate means.
func (run *Run) Execute(ctx context.Context, input any) (*Result, error) {
	obs := run.runner.observer
	def := run.def

	outcome, err := def.Plan(ctx, input)
	if err != nil {
		if !batch.IsPermanent(err) {
			err = batch.NewPlanningError(def.PlanStep, err)
		}
		return nil, err
	}
	if outcome.Kind() == "" {
		return nil, batch.NewPlanningError(def.PlanStep, errors.New("planner returned neither outcome"))
	}

	if err := run.store.Save(def.PlanStep, outcome); err != nil {
		return nil, fmt.Errorf("storing plan outcome: %w", err)
	}
	obs.OnPlanned(ctx, run.ID, outcome)

	cfg, ok := outcome.Config()
	if !ok {
		// NoBatches: nothing to materialize; the aggregator will run in
		// degenerate mode against the stored outcome.
		return &Result{RunID: run.ID, Outcome: outcome, Results: run.store}, nil
	}

	windows, err := cfg.Windows()
	if err != nil {
		return nil, err
	}

	addresses, err := run.Materialize(ctx, def.WorkerTemplate, windows)
	if err != nil {
		return nil, err
	}
	obs.OnMaterialized(ctx, run.ID, addresses)

	failed := run.executeWorkers(ctx, addresses)

	return &Result{
		RunID:         run.ID,
		Outcome:       outcome,
		Addresses:     addresses,
		Results:       run.store,
		WorkersFailed: failed,
	}, nil
}

// executeWorkers runs every materialized sibling and blocks until all of
// them are terminal. Siblings share no mutable state and run with arbitrary
// interleaving; the only ordering guarantee is the barrier on return.
func (run *Run) executeWorkers(ctx context.Context, addresses []string) int {
	var (
		wg       sync.WaitGroup
		failures sync.Map
		sem      chan struct{}
	)
	if run.runner.concurrency > 0 {
		sem = make(chan struct{}, run.runner.concurrency)
	}

	guarded := batch.GuardedWorker(run.def.PlanStep, run.def.Worker)

	for _, addr := range addresses {
		run.mu.Lock()
		window := run.windows[addr]
		run.mu.Unlock()

		wg.Add(1)
		go func(addr string, window batch.CursorWindow) {
			defer wg.Done()
			if sem != nil {
				sem <- struct{}{}
				defer func() { <-sem }()
			}
			if err := run.executeOne(ctx, guarded, addr, window); err != nil {
				failures.Store(addr, err)
			}
		}(addr, window)
	}
	wg.Wait()

	failed := 0
	failures.Range(func(_, _ any) bool {
		failed++
		return true
	})
	return failed
}

// executeOne drives a single sibling through its attempts. The terminal
// outcome, success payload or failure record, is saved at the sibling's
// address so the aggregator can enumerate it.
func (run *Run) executeOne(ctx context.Context, fn batch.WorkerFunc, addr string, window batch.CursorWindow) error {
	obs := run.runner.observer
	policy := batch.RetryPolicy{MaxAttempts: 1}
	if run.def.Retry != nil {
		policy = *run.def.Retry
	}
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}

	obs.OnWorkerStart(ctx, run.ID, addr, window)
	start := time.Now()

	var payload any
	var err error
	attempts := 0
	for {
		attempts++

		// A fresh WorkerContext per attempt: workers are pure per-window
		// functions, so replays are safe without deduplication.
		wc := &batch.WorkerContext{
			Address: addr,
			Window:  window,
			Results: run.store,
		}
		payload, err = fn(ctx, wc)
		if err == nil {
			break
		}
		if batch.IsPermanent(err) || attempts >= policy.MaxAttempts {
			break
		}

		hint, _ := batch.RetryAfterHint(err)
		if !sleepCtx(ctx, policy.NextBackoff(attempts, hint)) {
			err = ctx.Err()
			break
		}
	}

	duration := time.Since(start)
	obs.OnWorkerCompleted(ctx, run.ID, addr, window, attempts, err, duration)

	if err != nil {
		record := batch.WorkerFailure{
			Address:   addr,
			Window:    window,
			Message:   err.Error(),
			Permanent: batch.IsPermanent(err),
		}
		if saveErr := run.store.Save(addr, record); saveErr != nil {
			return fmt.Errorf("storing failure for %s: %w", addr, saveErr)
		}
		return err
	}

	if saveErr := run.store.Save(addr, payload); saveErr != nil {
		return fmt.Errorf("storing result for %s: %w", addr, saveErr)
	}
	return nil
}

// sleepCtx sleeps for d unless the context is cancelled first.
// It reports whether the full sleep elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

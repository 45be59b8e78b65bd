package batch

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Observer receives callbacks across the fan-out lifecycle for logging and
// metrics.
//
// Implementations should be fast and non-blocking; heavy work should be done
// asynchronously so as not to delay sibling execution.
type Observer interface {
	// OnPlanned is called once when the planner produces an outcome.
	OnPlanned(ctx context.Context, runID string, outcome PlanOutcome)

	// OnMaterialized is called after siblings are materialized, with their
	// ordered addresses. It is not called on the NoBatches path.
	OnMaterialized(ctx context.Context, runID string, addresses []string)

	// OnWorkerStart is called before a sibling executes its window.
	OnWorkerStart(ctx context.Context, runID, address string, window CursorWindow)

	// OnWorkerCompleted is called after a sibling reaches a terminal state,
	// for both successes and failures (err != nil). attempts counts every
	// invocation including retries.
	OnWorkerCompleted(ctx context.Context, runID, address string, window CursorWindow, attempts int, err error, duration time.Duration)

	// OnAggregated is called once after the fan-in fold, with the discovered
	// sibling counts.
	OnAggregated(ctx context.Context, runID string, scenario Scenario, workers, failed int)
}

// NoopObserver is an Observer that does nothing.
// It is used as the default when no observer is configured.
type NoopObserver struct{}

func (NoopObserver) OnPlanned(ctx context.Context, runID string, outcome PlanOutcome)      {}
func (NoopObserver) OnMaterialized(ctx context.Context, runID string, addresses []string)  {}
func (NoopObserver) OnWorkerStart(ctx context.Context, runID, addr string, w CursorWindow) {}
func (NoopObserver) OnWorkerCompleted(ctx context.Context, runID, addr string, w CursorWindow, attempts int, err error, d time.Duration) {
}
func (NoopObserver) OnAggregated(ctx context.Context, runID string, s Scenario, workers, failed int) {
}

// CompositeObserver fans out events to multiple observers.
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver creates an Observer that forwards events to each
// non-nil observer in obs.
func NewCompositeObserver(obs ...Observer) Observer {
	filtered := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return NoopObserver{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeObserver{observers: filtered}
}

func (c *CompositeObserver) OnPlanned(ctx context.Context, runID string, outcome PlanOutcome) {
	for _, o := range c.observers {
		o.OnPlanned(ctx, runID, outcome)
	}
}

func (c *CompositeObserver) OnMaterialized(ctx context.Context, runID string, addresses []string) {
	for _, o := range c.observers {
		o.OnMaterialized(ctx, runID, addresses)
	}
}

func (c *CompositeObserver) OnWorkerStart(ctx context.Context, runID, addr string, w CursorWindow) {
	for _, o := range c.observers {
		o.OnWorkerStart(ctx, runID, addr, w)
	}
}

func (c *CompositeObserver) OnWorkerCompleted(ctx context.Context, runID, addr string, w CursorWindow, attempts int, err error, d time.Duration) {
	for _, o := range c.observers {
		o.OnWorkerCompleted(ctx, runID, addr, w, attempts, err, d)
	}
}

func (c *CompositeObserver) OnAggregated(ctx context.Context, runID string, s Scenario, workers, failed int) {
	for _, o := range c.observers {
		o.OnAggregated(ctx, runID, s, workers, failed)
	}
}

// LoggingObserver writes structured logs using log/slog.
type LoggingObserver struct {
	Logger *slog.Logger
}

// NewLoggingObserver creates an Observer that logs fan-out lifecycle events
// using the provided slog.Logger. If logger is nil, slog.Default() is used.
func NewLoggingObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnPlanned(ctx context.Context, runID string, outcome PlanOutcome) {
	attrs := []any{
		slog.String("run_id", runID),
		slog.String("kind", outcome.Kind()),
	}
	if cfg, ok := outcome.Config(); ok {
		attrs = append(attrs,
			slog.Uint64("total_items", cfg.TotalItems),
			slog.Uint64("batch_size", cfg.BatchSize),
		)
	} else if nb, ok := outcome.NoBatches(); ok {
		attrs = append(attrs, slog.String("reason", string(nb.Reason)))
	}
	o.Logger.InfoContext(ctx, "batch_planned", attrs...)
}

func (o *LoggingObserver) OnMaterialized(ctx context.Context, runID string, addresses []string) {
	o.Logger.InfoContext(ctx, "siblings_materialized",
		slog.String("run_id", runID),
		slog.Int("count", len(addresses)),
	)
}

func (o *LoggingObserver) OnWorkerStart(ctx context.Context, runID, addr string, w CursorWindow) {
	o.Logger.DebugContext(ctx, "worker_start",
		slog.String("run_id", runID),
		slog.String("address", addr),
		slog.Uint64("start_cursor", w.StartCursor),
		slog.Uint64("end_cursor", w.EndCursor),
	)
}

func (o *LoggingObserver) OnWorkerCompleted(ctx context.Context, runID, addr string, w CursorWindow, attempts int, err error, d time.Duration) {
	level := slog.LevelDebug
	if err != nil {
		level = slog.LevelError
	}
	o.Logger.Log(ctx, level, "worker_completed",
		slog.String("run_id", runID),
		slog.String("address", addr),
		slog.Uint64("start_cursor", w.StartCursor),
		slog.Uint64("end_cursor", w.EndCursor),
		slog.Int("attempts", attempts),
		slog.Duration("duration", d),
		slog.Any("error", err),
	)
}

func (o *LoggingObserver) OnAggregated(ctx context.Context, runID string, s Scenario, workers, failed int) {
	o.Logger.InfoContext(ctx, "fanout_aggregated",
		slog.String("run_id", runID),
		slog.String("scenario", string(s)),
		slog.Int("workers", workers),
		slog.Int("failed", failed),
	)
}

// BasicMetrics collects simple counters and aggregate worker durations.
// It implements Observer, and can be combined with LoggingObserver via
// NewCompositeObserver.
type BasicMetrics struct {
	NoopObserver

	plansProduced       atomic.Int64
	noBatchesPlans      atomic.Int64
	workersCompleted    atomic.Int64
	workersFailed       atomic.Int64
	fanoutsAggregated   atomic.Int64
	totalWorkerDuration atomic.Int64 // nanoseconds
}

// BasicMetricsSnapshot is an immutable snapshot of BasicMetrics.
type BasicMetricsSnapshot struct {
	PlansProduced     int64
	NoBatchesPlans    int64
	WorkersCompleted  int64
	WorkersFailed     int64
	FanoutsAggregated int64
	AvgWorkerTime     time.Duration
}

func (m *BasicMetrics) OnPlanned(ctx context.Context, runID string, outcome PlanOutcome) {
	m.plansProduced.Add(1)
	if outcome.Kind() == KindNoBatches {
		m.noBatchesPlans.Add(1)
	}
}

func (m *BasicMetrics) OnWorkerCompleted(ctx context.Context, runID, addr string, w CursorWindow, attempts int, err error, d time.Duration) {
	if err != nil {
		m.workersFailed.Add(1)
		return
	}
	m.workersCompleted.Add(1)
	m.totalWorkerDuration.Add(int64(d))
}

func (m *BasicMetrics) OnAggregated(ctx context.Context, runID string, s Scenario, workers, failed int) {
	m.fanoutsAggregated.Add(1)
}

// Snapshot returns a point-in-time copy of the counters.
func (m *BasicMetrics) Snapshot() BasicMetricsSnapshot {
	completed := m.workersCompleted.Load()
	var avg time.Duration
	if completed > 0 {
		avg = time.Duration(m.totalWorkerDuration.Load() / completed)
	}
	return BasicMetricsSnapshot{
		PlansProduced:     m.plansProduced.Load(),
		NoBatchesPlans:    m.noBatchesPlans.Load(),
		WorkersCompleted:  completed,
		WorkersFailed:     m.workersFailed.Load(),
		FanoutsAggregated: m.fanoutsAggregated.Load(),
		AvgWorkerTime:     avg,
	}
}

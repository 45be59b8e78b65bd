package batch

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func batchPlanResults(t *testing.T, total, size uint64) mapLookup {
	t.Helper()
	return mapLookup{
		"analyze_dataset": MustPlanBatches(BatchConfig{
			TotalItems: total,
			BatchSize:  size,
			Metadata:   map[string]any{"source": "orders"},
		}),
	}
}

func TestGuardedWorkerRunsWindow(t *testing.T) {
	worker := GuardedWorker("analyze_dataset", func(ctx context.Context, wc *WorkerContext) (any, error) {
		return WorkerReport{
			BatchID:        wc.Window.BatchID,
			ItemsProcessed: wc.Window.Items(),
			ItemsSucceeded: wc.Window.Items(),
		}, nil
	})

	wc := &WorkerContext{
		Address: "process_batch_003",
		Window:  CursorWindow{BatchID: "003", StartCursor: 400, EndCursor: 450},
		Results: batchPlanResults(t, 450, 200),
	}
	out, err := worker(context.Background(), wc)
	if err != nil {
		t.Fatalf("worker failed: %v", err)
	}
	report, ok := out.(WorkerReport)
	if !ok {
		t.Fatalf("expected WorkerReport, got %T", out)
	}
	if report.ItemsProcessed != 50 {
		t.Errorf("truncated window should process 50 items, got %d", report.ItemsProcessed)
	}
}

func TestGuardedWorkerSkipsOnNoBatches(t *testing.T) {
	called := false
	worker := GuardedWorker("analyze_dataset", func(ctx context.Context, wc *WorkerContext) (any, error) {
		called = true
		return nil, nil
	})

	results := mapLookup{"analyze_dataset": PlanNoBatches(ReasonDatasetTooSmall, nil)}
	out, err := worker(context.Background(), &WorkerContext{Address: "process_batch_001", Results: results})
	if err != nil {
		t.Fatalf("skip path should not error: %v", err)
	}
	if called {
		t.Error("worker body must not run on a no-batches plan")
	}
	skip, ok := out.(SkipResult)
	if !ok || !skip.Skipped || skip.Stage != StageWorker {
		t.Errorf("expected worker skip payload, got %#v", out)
	}
}

func TestGuardedWorkerSkipsOnMissingPlan(t *testing.T) {
	worker := GuardedWorker("analyze_dataset", func(ctx context.Context, wc *WorkerContext) (any, error) {
		t.Fatal("worker body must not run without a plan")
		return nil, nil
	})
	out, err := worker(context.Background(), &WorkerContext{Results: mapLookup{}})
	if err != nil {
		t.Fatalf("missing plan should skip, not error: %v", err)
	}
	skip, ok := out.(SkipResult)
	if !ok || skip.Reason != ReasonPlanUnavailable {
		t.Errorf("expected plan_unavailable skip, got %#v", out)
	}
}

func TestGuardedWorkerRejectsInvalidWindow(t *testing.T) {
	worker := GuardedWorker("analyze_dataset", func(ctx context.Context, wc *WorkerContext) (any, error) {
		t.Fatal("worker body must not run on an invalid window")
		return nil, nil
	})

	cases := []CursorWindow{
		{BatchID: "001", StartCursor: 200, EndCursor: 200},
		{BatchID: "001", StartCursor: 300, EndCursor: 200},
		{BatchID: "003", StartCursor: 400, EndCursor: 500},
	}
	for _, w := range cases {
		_, err := worker(context.Background(), &WorkerContext{
			Address: "process_batch_001",
			Window:  w,
			Results: batchPlanResults(t, 450, 200),
		})
		if err == nil {
			t.Errorf("window %s should be rejected", w)
			continue
		}
		if !IsPermanent(err) {
			t.Errorf("window %s: bounds violations are permanent, got %v", w, err)
		}
	}
}

func TestGuardedWorkerInjectsPlanMetadata(t *testing.T) {
	worker := GuardedWorker("analyze_dataset", func(ctx context.Context, wc *WorkerContext) (any, error) {
		return wc.Metadata["source"], nil
	})
	out, err := worker(context.Background(), &WorkerContext{
		Address: "process_batch_001",
		Window:  CursorWindow{BatchID: "001", StartCursor: 0, EndCursor: 200},
		Results: batchPlanResults(t, 450, 200),
	})
	if err != nil {
		t.Fatalf("worker failed: %v", err)
	}
	if out != "orders" {
		t.Errorf("plan metadata not injected, got %v", out)
	}
}

func TestGuardedWorkerClassifiesAndAnnotatesErrors(t *testing.T) {
	plain := errors.New("db timeout")
	worker := GuardedWorker("analyze_dataset", func(ctx context.Context, wc *WorkerContext) (any, error) {
		return nil, plain
	})
	_, err := worker(context.Background(), &WorkerContext{
		Address: "process_batch_002",
		Window:  CursorWindow{BatchID: "002", StartCursor: 200, EndCursor: 400},
		Results: batchPlanResults(t, 450, 200),
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsRetryable(err) {
		t.Errorf("unclassified failure should surface as retryable: %v", err)
	}
	if !errors.Is(err, plain) {
		t.Error("cause chain lost")
	}
	msg := err.Error()
	if !strings.Contains(msg, "process_batch_002") || !strings.Contains(msg, "[200,400)") {
		t.Errorf("error should name the failing window: %q", msg)
	}
}

func TestGuardedWorkerKeepsPermanentClassification(t *testing.T) {
	worker := GuardedWorker("analyze_dataset", func(ctx context.Context, wc *WorkerContext) (any, error) {
		return nil, NewPermanentError("malformed record")
	})
	_, err := worker(context.Background(), &WorkerContext{
		Address: "process_batch_001",
		Window:  CursorWindow{BatchID: "001", StartCursor: 0, EndCursor: 200},
		Results: batchPlanResults(t, 450, 200),
	})
	if !IsPermanent(err) {
		t.Errorf("permanent classification must survive annotation: %v", err)
	}
}

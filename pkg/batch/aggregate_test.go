package batch

import (
	"context"
	"math/rand"
	"reflect"
	"testing"
)

func sumAggregator() Aggregator[uint64] {
	return Aggregator[uint64]{
		PlanStep: "analyze_dataset",
		Template: "process_batch",
		Zero:     0,
		Merge:    func(a, b uint64) uint64 { return a + b },
		Extract: func(payload any) (uint64, bool) {
			r, ok := payload.(WorkerReport)
			if !ok {
				return 0, false
			}
			return r.ItemsProcessed, true
		},
	}
}

func TestAggregateSumsAllSiblings(t *testing.T) {
	results := mapLookup{
		"analyze_dataset":   MustPlanBatches(BatchConfig{TotalItems: 450, BatchSize: 200}),
		"process_batch_001": WorkerReport{BatchID: "001", ItemsProcessed: 200},
		"process_batch_002": WorkerReport{BatchID: "002", ItemsProcessed: 200},
		"process_batch_003": WorkerReport{BatchID: "003", ItemsProcessed: 50},
	}
	agg, err := sumAggregator().Run(context.Background(), results)
	if err != nil {
		t.Fatalf("aggregation failed: %v", err)
	}
	if agg.Scenario != ScenarioBatches {
		t.Errorf("expected with_batches, got %s", agg.Scenario)
	}
	if agg.Value != 450 {
		t.Errorf("expected 450, got %d", agg.Value)
	}
	if !agg.Complete || agg.Failed != 0 || agg.Succeeded != 3 || agg.WorkerCount != 3 {
		t.Errorf("unexpected bookkeeping: %+v", agg)
	}
}

func TestAggregateNoBatchesPlan(t *testing.T) {
	results := mapLookup{
		"analyze_dataset": PlanNoBatches(ReasonDatasetTooSmall, nil),
	}
	agg, err := sumAggregator().Run(context.Background(), results)
	if err != nil {
		t.Fatalf("aggregation failed: %v", err)
	}
	if agg.Scenario != ScenarioNoBatches {
		t.Errorf("expected no_batches, got %s", agg.Scenario)
	}
	if agg.Value != 0 || !agg.Complete {
		t.Errorf("no-batches aggregate should be a complete zero: %+v", agg)
	}
	if agg.Skip == nil || agg.Skip.Stage != StageAggregator {
		t.Errorf("expected aggregator skip payload, got %+v", agg.Skip)
	}
}

func TestAggregateMissingPlanDegrades(t *testing.T) {
	agg, err := sumAggregator().Run(context.Background(), mapLookup{})
	if err != nil {
		t.Fatalf("missing plan should degrade, not fail: %v", err)
	}
	if agg.Scenario != ScenarioNoBatches || agg.Value != 0 {
		t.Errorf("expected zero no-batches aggregate, got %+v", agg)
	}
	if agg.Skip == nil || agg.Skip.Reason != ReasonPlanUnavailable {
		t.Errorf("expected plan_unavailable skip, got %+v", agg.Skip)
	}
}

func TestAggregatePlannedButNoSiblings(t *testing.T) {
	results := mapLookup{
		"analyze_dataset": MustPlanBatches(BatchConfig{TotalItems: 450, BatchSize: 200}),
	}
	agg, err := sumAggregator().Run(context.Background(), results)
	if err != nil {
		t.Fatalf("empty sibling set should degrade, not fail: %v", err)
	}
	if agg.Scenario != ScenarioNoBatches || agg.Value != 0 || !agg.Complete {
		t.Errorf("expected zero no-batches aggregate, got %+v", agg)
	}
	if agg.Skip == nil || agg.Skip.Reason != ReasonNoSiblings {
		t.Errorf("the skip payload should say no siblings materialized, got %+v", agg.Skip)
	}
}

func TestAggregatePartialFailure(t *testing.T) {
	results := mapLookup{
		"analyze_dataset":   MustPlanBatches(BatchConfig{TotalItems: 450, BatchSize: 200}),
		"process_batch_001": WorkerReport{BatchID: "001", ItemsProcessed: 200},
		"process_batch_002": WorkerFailure{Address: "process_batch_002", Message: "db timeout", Permanent: false},
		"process_batch_003": WorkerReport{BatchID: "003", ItemsProcessed: 50},
	}
	agg, err := sumAggregator().Run(context.Background(), results)
	if err != nil {
		t.Fatalf("partial failure should still aggregate: %v", err)
	}
	if agg.Value != 250 {
		t.Errorf("expected sum of the successful subset 250, got %d", agg.Value)
	}
	if agg.Complete {
		t.Error("an aggregate over 2 of 3 siblings must not claim completeness")
	}
	if agg.Succeeded != 2 || agg.Failed != 1 {
		t.Errorf("expected 2 succeeded / 1 failed, got %+v", agg)
	}
	if !reflect.DeepEqual(agg.FailedWorkers, []string{"process_batch_002"}) {
		t.Errorf("failed workers should name the window to re-run: %v", agg.FailedWorkers)
	}
}

func TestAggregateCountsSkippedSiblingsAsSucceeded(t *testing.T) {
	results := mapLookup{
		"analyze_dataset":   MustPlanBatches(BatchConfig{TotalItems: 450, BatchSize: 200}),
		"process_batch_001": WorkerReport{BatchID: "001", ItemsProcessed: 200},
		"process_batch_002": SkipResult{Skipped: true, Stage: StageWorker, Reason: ReasonDatasetTooSmall},
	}
	agg, err := sumAggregator().Run(context.Background(), results)
	if err != nil {
		t.Fatalf("aggregation failed: %v", err)
	}
	if agg.Value != 200 || agg.Succeeded != 2 || !agg.Complete {
		t.Errorf("skip payloads contribute nothing but do not fail: %+v", agg)
	}
}

func TestAggregateForeignPayloadIsFailure(t *testing.T) {
	results := mapLookup{
		"analyze_dataset":   MustPlanBatches(BatchConfig{TotalItems: 450, BatchSize: 200}),
		"process_batch_001": "garbage",
	}
	agg, err := sumAggregator().Run(context.Background(), results)
	if err != nil {
		t.Fatalf("aggregation failed: %v", err)
	}
	if agg.Complete || agg.Failed != 1 {
		t.Errorf("unextractable payloads must be counted as failures: %+v", agg)
	}
}

func TestAggregateCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := sumAggregator().Run(ctx, mapLookup{}); err == nil {
		t.Error("cancelled context should fail aggregation")
	}
}

// The fold must be insensitive to sibling completion order.
func TestFoldOrderIndependent(t *testing.T) {
	parts := []uint64{200, 200, 50, 17, 83}
	want := Fold(0, func(a, b uint64) uint64 { return a + b }, parts)

	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 20; trial++ {
		shuffled := append([]uint64(nil), parts...)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		got := Fold(0, func(a, b uint64) uint64 { return a + b }, shuffled)
		if got != want {
			t.Fatalf("trial %d: fold changed under permutation: %d vs %d", trial, got, want)
		}
	}
}

func TestClassifyScenario(t *testing.T) {
	scenario, siblings := ClassifyScenario(mapLookup{
		"analyze_dataset":   "plan",
		"process_batch_002": "b",
		"process_batch_001": "a",
	}, "process_batch")
	if scenario != ScenarioBatches {
		t.Errorf("expected with_batches, got %s", scenario)
	}
	if !reflect.DeepEqual(siblings, []string{"process_batch_001", "process_batch_002"}) {
		t.Errorf("siblings out of order: %v", siblings)
	}

	scenario, siblings = ClassifyScenario(mapLookup{"analyze_dataset": "plan"}, "process_batch")
	if scenario != ScenarioNoBatches || siblings != nil {
		t.Errorf("expected no_batches with no siblings, got %s %v", scenario, siblings)
	}
}

func TestMergeSummaries(t *testing.T) {
	a := ReportSummary{TotalProcessed: 200, TotalSucceeded: 190, TotalFailed: 10, WorkerCount: 1,
		Metrics: map[string]float64{"bytes": 1024}}
	b := ReportSummary{TotalProcessed: 50, TotalSucceeded: 50, WorkerCount: 1,
		Metrics: map[string]float64{"bytes": 256, "skipped": 2}}

	got := MergeSummaries(a, b)
	if got.TotalProcessed != 250 || got.TotalSucceeded != 240 || got.TotalFailed != 10 || got.WorkerCount != 2 {
		t.Errorf("unexpected totals: %+v", got)
	}
	if got.Metrics["bytes"] != 1280 || got.Metrics["skipped"] != 2 {
		t.Errorf("unexpected metrics: %v", got.Metrics)
	}
	// Merging must not alias either input's metrics map.
	got.Metrics["bytes"] = 0
	if a.Metrics["bytes"] != 1024 || b.Metrics["bytes"] != 256 {
		t.Error("merge mutated an input summary")
	}
}

func TestReportAggregator(t *testing.T) {
	results := mapLookup{
		"analyze_dataset":   MustPlanBatches(BatchConfig{TotalItems: 450, BatchSize: 200}),
		"process_batch_001": WorkerReport{BatchID: "001", ItemsProcessed: 200, ItemsSucceeded: 200},
		"process_batch_002": &WorkerReport{BatchID: "002", ItemsProcessed: 200, ItemsSucceeded: 195, ItemsFailed: 5},
		"process_batch_003": WorkerReport{BatchID: "003", ItemsProcessed: 50, ItemsSucceeded: 50},
	}
	agg, err := ReportAggregator("analyze_dataset", "process_batch").Run(context.Background(), results)
	if err != nil {
		t.Fatalf("aggregation failed: %v", err)
	}
	if agg.Value.TotalProcessed != 450 || agg.Value.TotalSucceeded != 445 || agg.Value.TotalFailed != 5 {
		t.Errorf("unexpected summary: %+v", agg.Value)
	}
	if agg.Value.WorkerCount != 3 {
		t.Errorf("expected 3 contributing workers, got %d", agg.Value.WorkerCount)
	}
}

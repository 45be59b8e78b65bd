package fanfold

import (
	"github.com/fanfold/fanfold/pkg/batch"
)

// Re-export key types so users don't need to dig into pkg/batch.

type (
	BatchConfig    = batch.BatchConfig
	NoBatches      = batch.NoBatches
	PlanOutcome    = batch.PlanOutcome
	Reason         = batch.Reason
	CursorWindow   = batch.CursorWindow
	Definition     = batch.Definition
	PlanFunc       = batch.PlanFunc
	MeasureFunc    = batch.MeasureFunc
	WorkerContext  = batch.WorkerContext
	WorkerFunc     = batch.WorkerFunc
	WorkerReport   = batch.WorkerReport
	WorkerFailure  = batch.WorkerFailure
	SkipResult     = batch.SkipResult
	Scenario       = batch.Scenario
	ReportSummary  = batch.ReportSummary
	RetryPolicy    = batch.RetryPolicy
	PermanentError = batch.PermanentError
	RetryableError = batch.RetryableError
	PlanningError  = batch.PlanningError

	ResultLookup        = batch.ResultLookup
	MaterializationPort = batch.MaterializationPort

	Observer             = batch.Observer
	NoopObserver         = batch.NoopObserver
	LoggingObserver      = batch.LoggingObserver
	CompositeObserver    = batch.CompositeObserver
	BasicMetrics         = batch.BasicMetrics
	BasicMetricsSnapshot = batch.BasicMetricsSnapshot
)

// Re-export common constructors and helpers.

var (
	Partition      = batch.Partition
	PlanBatches    = batch.PlanBatches
	PlanNoBatches  = batch.PlanNoBatches
	PlanFromCount  = batch.PlanFromCount
	GuardedWorker  = batch.GuardedWorker
	WorkerName     = batch.WorkerName
	WorkerNames    = batch.WorkerNames
	Skip           = batch.Skip
	Classify       = batch.Classify
	IsPermanent    = batch.IsPermanent
	IsRetryable    = batch.IsRetryable
	RetryAfterHint = batch.RetryAfterHint

	NewPermanentError = batch.NewPermanentError
	NewRetryableError = batch.NewRetryableError
	Permanentf        = batch.Permanentf
	RetryableAfter    = batch.RetryableAfter

	ReportAggregator = batch.ReportAggregator
	MergeSummaries   = batch.MergeSummaries

	NewLoggingObserver   = batch.NewLoggingObserver
	NewCompositeObserver = batch.NewCompositeObserver
)

// Re-export shared values for convenience.

const (
	ScenarioNoBatches = batch.ScenarioNoBatches
	ScenarioBatches   = batch.ScenarioBatches

	ReasonDatasetTooSmall = batch.ReasonDatasetTooSmall
	ReasonPlanUnavailable = batch.ReasonPlanUnavailable
	ReasonNoSiblings      = batch.ReasonNoSiblings

	StageWorker     = batch.StageWorker
	StageAggregator = batch.StageAggregator
)

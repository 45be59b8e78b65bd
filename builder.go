package fanfold

import (
	"fmt"

	"github.com/fanfold/fanfold/pkg/batch"
)

// Builder provides a fluent API for defining fan-outs:
//
//	def := fanfold.New("inventory-import").
//	    PlanFromCount("analyze_dataset", 1, 200, measureRows).
//	    Worker("process_batch", processWindow).
//	    WithRetryBuilder(fanfold.Retry(3).WithConstantBackoff(time.Second)).
//	    Definition()
type Builder struct {
	def batch.Definition
}

// New creates a new fan-out builder with the given name.
func New(name string) *Builder {
	if name == "" {
		panic("fanfold: fan-out name must not be empty")
	}
	return &Builder{
		def: batch.Definition{Name: name},
	}
}

// Name returns the fan-out name.
func (b *Builder) Name() string {
	return b.def.Name
}

// Plan sets the planning step: its logical name and the function that
// measures the work.
func (b *Builder) Plan(stepName string, fn PlanFunc) *Builder {
	if stepName == "" {
		panic("fanfold: plan step name must not be empty")
	}
	if fn == nil {
		panic(fmt.Sprintf("fanfold: plan step %q has nil function", stepName))
	}
	b.def.PlanStep = stepName
	b.def.Plan = fn
	return b
}

// PlanFromCount is a convenience for the common count-based planner: measure
// the total items, emit NoBatches below minItems, otherwise a BatchConfig
// with the given batch size.
func (b *Builder) PlanFromCount(stepName string, minItems, batchSize uint64, measure MeasureFunc) *Builder {
	if measure == nil {
		panic(fmt.Sprintf("fanfold: plan step %q has nil measure function", stepName))
	}
	return b.Plan(stepName, batch.PlanFromCount(minItems, batchSize, measure))
}

// Worker sets the sibling worker template name and the per-window function.
func (b *Builder) Worker(template string, fn WorkerFunc) *Builder {
	if template == "" {
		panic("fanfold: worker template name must not be empty")
	}
	if fn == nil {
		panic(fmt.Sprintf("fanfold: worker template %q has nil function", template))
	}
	b.def.WorkerTemplate = template
	b.def.Worker = fn
	return b
}

// WithRetry sets the retry policy applied to retryable worker failures.
func (b *Builder) WithRetry(policy RetryPolicy) *Builder {
	// Make a copy so callers can mutate their RetryPolicy after the call
	// without affecting the stored definition.
	p := policy
	b.def.Retry = &p
	return b
}

// WithRetryBuilder is like WithRetry but accepts a RetryBuilder directly.
func (b *Builder) WithRetryBuilder(rb RetryBuilder) *Builder {
	return b.WithRetry(rb.Policy())
}

// Definition returns the built Definition.
// It panics if the definition is structurally incomplete.
func (b *Builder) Definition() Definition {
	if err := b.def.Validate(); err != nil {
		panic(fmt.Sprintf("fanfold: %v", err))
	}
	return b.def
}

// ReportAggregator returns the standard WorkerReport aggregator wired to this
// builder's plan step and worker template.
func (b *Builder) ReportAggregator() batch.Aggregator[ReportSummary] {
	return batch.ReportAggregator(b.def.PlanStep, b.def.WorkerTemplate)
}

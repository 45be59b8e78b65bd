package batch

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Reason explains why a planner produced NoBatches.
// The set is open-ended; callers may define their own values.
type Reason string

const (
	// ReasonDatasetTooSmall means the measured work was zero or below the
	// planner's minimum, so no siblings are needed.
	ReasonDatasetTooSmall Reason = "dataset_too_small"

	// ReasonPlanUnavailable is used by the no-op guard when no planner
	// outcome can be found at all (planner cancelled or never ran).
	// Downstream consumers treat this the same as valid zero work.
	ReasonPlanUnavailable Reason = "plan_unavailable"

	// ReasonNoSiblings is used by the aggregator when a BatchConfig was
	// planned but no sibling results are discoverable (the host engine
	// materialized zero children).
	ReasonNoSiblings Reason = "no_siblings"
)

// Outcome kind discriminators used on the wire.
const (
	KindNoBatches   = "no_batches"
	KindBatchConfig = "batch_config"
)

// ErrZeroTotalItems is returned when a BatchConfig is constructed with
// TotalItems == 0. Zero work must be represented as NoBatches, never as a
// degenerate BatchConfig.
var ErrZeroTotalItems = errors.New("batch: total items must be > 0 (use NoBatches for zero work)")

// BatchConfig describes work that should be fanned out: how many items exist
// and how large each batch should be. Metadata is carried unchanged to every
// worker and to the aggregator; workers must treat it as read-only.
type BatchConfig struct {
	TotalItems uint64         `json:"total_items"`
	BatchSize  uint64         `json:"batch_size"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Validate checks the BatchConfig invariants.
func (c BatchConfig) Validate() error {
	if c.TotalItems == 0 {
		return ErrZeroTotalItems
	}
	if c.BatchSize == 0 {
		return ErrZeroBatchSize
	}
	return nil
}

// Windows partitions the config into its ordered cursor windows.
func (c BatchConfig) Windows() ([]CursorWindow, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return Partition(c.TotalItems, c.BatchSize)
}

// NoBatches is the terminal marker for a run that validly has zero work.
type NoBatches struct {
	Reason   Reason         `json:"reason"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// PlanOutcome is the discriminated result of a planning step: exactly one of
// NoBatches or BatchConfig, never both, never neither.
//
// The zero value is not a valid outcome; construct via PlanBatches or
// PlanNoBatches.
type PlanOutcome struct {
	noBatches *NoBatches
	config    *BatchConfig
}

// PlanBatches wraps a BatchConfig as a plan outcome.
// The config must satisfy Validate; in particular TotalItems must be > 0.
func PlanBatches(cfg BatchConfig) (PlanOutcome, error) {
	if err := cfg.Validate(); err != nil {
		return PlanOutcome{}, err
	}
	return PlanOutcome{config: &cfg}, nil
}

// MustPlanBatches is like PlanBatches but panics on an invalid config.
// Intended for planners that have already validated their inputs.
func MustPlanBatches(cfg BatchConfig) PlanOutcome {
	o, err := PlanBatches(cfg)
	if err != nil {
		panic(fmt.Sprintf("batch: %v", err))
	}
	return o
}

// PlanNoBatches wraps a NoBatches marker as a plan outcome.
func PlanNoBatches(reason Reason, metadata map[string]any) PlanOutcome {
	return PlanOutcome{noBatches: &NoBatches{Reason: reason, Metadata: metadata}}
}

// Config returns the BatchConfig if this outcome plans batches.
func (o PlanOutcome) Config() (BatchConfig, bool) {
	if o.config == nil {
		return BatchConfig{}, false
	}
	return *o.config, true
}

// NoBatches returns the NoBatches marker if this outcome plans zero work.
func (o PlanOutcome) NoBatches() (NoBatches, bool) {
	if o.noBatches == nil {
		return NoBatches{}, false
	}
	return *o.noBatches, true
}

// Kind returns the wire discriminator for this outcome, or "" for the
// (invalid) zero value.
func (o PlanOutcome) Kind() string {
	switch {
	case o.config != nil:
		return KindBatchConfig
	case o.noBatches != nil:
		return KindNoBatches
	default:
		return ""
	}
}

// Metadata returns the metadata bag of whichever variant is present.
func (o PlanOutcome) Metadata() map[string]any {
	switch {
	case o.config != nil:
		return o.config.Metadata
	case o.noBatches != nil:
		return o.noBatches.Metadata
	default:
		return nil
	}
}

// planOutcomeWire is the JSON representation shared with other runtimes.
type planOutcomeWire struct {
	Kind       string         `json:"kind"`
	Reason     Reason         `json:"reason,omitempty"`
	TotalItems uint64         `json:"total_items,omitempty"`
	BatchSize  uint64         `json:"batch_size,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// MarshalJSON encodes the outcome with a "kind" discriminator.
func (o PlanOutcome) MarshalJSON() ([]byte, error) {
	switch {
	case o.config != nil:
		return json.Marshal(planOutcomeWire{
			Kind:       KindBatchConfig,
			TotalItems: o.config.TotalItems,
			BatchSize:  o.config.BatchSize,
			Metadata:   o.config.Metadata,
		})
	case o.noBatches != nil:
		return json.Marshal(planOutcomeWire{
			Kind:     KindNoBatches,
			Reason:   o.noBatches.Reason,
			Metadata: o.noBatches.Metadata,
		})
	default:
		return nil, errors.New("batch: cannot marshal zero-value PlanOutcome")
	}
}

// UnmarshalJSON decodes a kind-discriminated outcome.
func (o *PlanOutcome) UnmarshalJSON(data []byte) error {
	var w planOutcomeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch w.Kind {
	case KindBatchConfig:
		decoded, err := PlanBatches(BatchConfig{
			TotalItems: w.TotalItems,
			BatchSize:  w.BatchSize,
			Metadata:   w.Metadata,
		})
		if err != nil {
			return err
		}
		*o = decoded
		return nil
	case KindNoBatches:
		*o = PlanNoBatches(w.Reason, w.Metadata)
		return nil
	default:
		return fmt.Errorf("batch: unknown plan outcome kind %q", w.Kind)
	}
}

// GobEncode serializes the outcome through its JSON wire form so outcomes can
// travel through gob-based result stores despite the unexported variants.
func (o PlanOutcome) GobEncode() ([]byte, error) {
	return o.MarshalJSON()
}

// GobDecode is the inverse of GobEncode.
func (o *PlanOutcome) GobDecode(data []byte) error {
	return o.UnmarshalJSON(data)
}

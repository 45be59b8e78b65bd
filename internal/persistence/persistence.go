// Package persistence provides result stores for fan-out runs: the concrete
// backing behind the dependency-result lookup capability.
package persistence

import (
	"github.com/fanfold/fanfold/pkg/batch"
)

// Store persists terminal step results for one fan-out run. It doubles as
// the batch.ResultLookup capability handed to workers and aggregators.
//
// Save is called once per address under normal operation; saving the same
// address again overwrites, which keeps replayed materializations idempotent.
type Store interface {
	batch.ResultLookup

	Save(address string, payload any) error
}

// Provider creates a Store scoped to a single run.
type Provider func(runID string) (Store, error)

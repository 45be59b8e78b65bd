package batch

import "context"

// ResultLookup is the dependency-result capability the host engine provides:
// read access to terminal step results by address.
//
// Workers use it to read the planner's outcome; aggregators additionally
// enumerate sibling results through Addresses.
type ResultLookup interface {
	// Lookup returns the stored result payload for a step address,
	// or ok=false if no result exists for that address.
	Lookup(address string) (payload any, ok bool)

	// Addresses returns the addresses of all stored results.
	// Order is unspecified; callers sort via SiblingAddresses.
	Addresses() []string
}

// MaterializationPort is the capability the host engine provides to turn a
// plan into concrete, independently schedulable sibling steps.
//
// Implementations must guarantee:
//   - each returned address is unique and equals WorkerName(parent, i) for
//     the window at ordinal i;
//   - the call is deterministic: identical (parent, windows) inputs yield
//     identical addresses;
//   - repeated calls for the same parent are idempotent and never create
//     duplicate siblings.
type MaterializationPort interface {
	Materialize(ctx context.Context, parent string, windows []CursorWindow) ([]string, error)
}

package batch

import (
	"sort"
	"strconv"
	"strings"
)

// Sibling addressing.
//
// A sibling's address is a pure function of its parent's worker template name
// and the window's ordinal position: "process_batch" + ordinal 0 =>
// "process_batch_001". No counters, no randomness, so the same plan always
// yields the same addresses across retries and replays.

// WorkerName returns the deterministic address of the sibling at the given
// 0-based ordinal under the given worker template.
func WorkerName(template string, ordinal int) string {
	return template + "_" + BatchID(ordinal)
}

// WorkerNames returns the ordered addresses for n siblings.
func WorkerNames(template string, n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = WorkerName(template, i)
	}
	return names
}

// WorkerPrefix returns the address prefix shared by all siblings of a
// template. Aggregators scan dependency results with this prefix.
func WorkerPrefix(template string) string {
	return template + "_"
}

// ParseWorkerOrdinal extracts the 0-based ordinal from a sibling address.
// It returns false if the address does not belong to the template or its
// suffix is not a valid batch identifier.
func ParseWorkerOrdinal(template, address string) (int, bool) {
	suffix, ok := strings.CutPrefix(address, WorkerPrefix(template))
	if !ok || suffix == "" {
		return 0, false
	}
	id, err := strconv.Atoi(suffix)
	if err != nil || id < 1 {
		return 0, false
	}
	return id - 1, true
}

// SiblingAddresses filters addresses down to the template's siblings, sorted
// by ordinal. Sorting is numeric, not lexicographic, so ordering stays
// correct past the zero-padding width.
func SiblingAddresses(template string, addresses []string) []string {
	type sibling struct {
		ordinal int
		address string
	}
	var siblings []sibling
	for _, addr := range addresses {
		if ord, ok := ParseWorkerOrdinal(template, addr); ok {
			siblings = append(siblings, sibling{ordinal: ord, address: addr})
		}
	}
	sort.Slice(siblings, func(i, j int) bool {
		return siblings[i].ordinal < siblings[j].ordinal
	})
	out := make([]string, len(siblings))
	for i, s := range siblings {
		out[i] = s.address
	}
	return out
}

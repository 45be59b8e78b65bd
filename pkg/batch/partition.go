package batch

import (
	"errors"
	"fmt"
)

// ErrZeroBatchSize is returned when a batch size of zero reaches Partition.
// A zero batch size is a configuration error, not a runtime data condition,
// so callers are expected to fail fast.
var ErrZeroBatchSize = errors.New("batch: batch size must be > 0")

// CursorWindow is one contiguous, half-open index range [StartCursor,
// EndCursor) assigned to a single sibling worker.
//
// BatchID is the window's one-based, zero-padded ordinal ("001", "002", ...),
// matching the identifier embedded in the sibling's address.
type CursorWindow struct {
	BatchID     string `json:"batch_id"`
	StartCursor uint64 `json:"start_cursor"`
	EndCursor   uint64 `json:"end_cursor"`
}

// Items returns the number of items covered by the window.
func (w CursorWindow) Items() uint64 {
	return w.EndCursor - w.StartCursor
}

// String renders the window for log and error messages.
func (w CursorWindow) String() string {
	return fmt.Sprintf("batch %s [%d,%d)", w.BatchID, w.StartCursor, w.EndCursor)
}

// Partition slices totalItems into ordered, disjoint cursor windows of
// batchSize items each. The last window is truncated, never padded, so the
// union of all windows is exactly [0, totalItems).
//
// Window i (0-indexed) spans [i*batchSize, min((i+1)*batchSize, totalItems)).
//
// totalItems == 0 yields an empty slice: zero work partitions into zero
// windows. batchSize == 0 returns ErrZeroBatchSize.
func Partition(totalItems, batchSize uint64) ([]CursorWindow, error) {
	if batchSize == 0 {
		return nil, ErrZeroBatchSize
	}
	if totalItems == 0 {
		return nil, nil
	}

	// Counted without the usual +batchSize-1 trick, which overflows for
	// totalItems near the top of the uint64 range.
	count := totalItems / batchSize
	if totalItems%batchSize != 0 {
		count++
	}
	windows := make([]CursorWindow, 0, count)
	for i := uint64(0); i < count; i++ {
		start := i * batchSize
		end := totalItems
		if remaining := totalItems - start; remaining > batchSize {
			end = start + batchSize
		}
		windows = append(windows, CursorWindow{
			BatchID:     BatchID(int(i)),
			StartCursor: start,
			EndCursor:   end,
		})
	}
	return windows, nil
}

// BatchID formats the zero-padded identifier for the window at the given
// 0-based ordinal. Identifiers are one-based on the wire: ordinal 0 is "001".
func BatchID(ordinal int) string {
	return fmt.Sprintf("%03d", ordinal+1)
}

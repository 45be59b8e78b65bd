package batch

import (
	"reflect"
	"testing"
)

func TestWorkerName(t *testing.T) {
	if got := WorkerName("process_batch", 0); got != "process_batch_001" {
		t.Errorf("expected process_batch_001, got %s", got)
	}
	if got := WorkerName("process_batch", 2); got != "process_batch_003" {
		t.Errorf("expected process_batch_003, got %s", got)
	}
}

func TestWorkerNamesMatchPlannedWindows(t *testing.T) {
	windows, err := Partition(450, 200)
	if err != nil {
		t.Fatalf("Partition failed: %v", err)
	}
	names := WorkerNames("process_batch", len(windows))
	want := []string{"process_batch_001", "process_batch_002", "process_batch_003"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("expected %v, got %v", want, names)
	}
	for i, w := range windows {
		if names[i] != WorkerName("process_batch", i) {
			t.Errorf("name %d does not match its window %s", i, w)
		}
	}
}

func TestParseWorkerOrdinal(t *testing.T) {
	cases := []struct {
		address string
		ordinal int
		ok      bool
	}{
		{"process_batch_001", 0, true},
		{"process_batch_003", 2, true},
		{"process_batch_1000", 999, true},
		{"process_batch_000", 0, false},
		{"process_batch_", 0, false},
		{"process_batch_abc", 0, false},
		{"other_step", 0, false},
		{"analyze_dataset", 0, false},
	}
	for _, tc := range cases {
		ord, ok := ParseWorkerOrdinal("process_batch", tc.address)
		if ok != tc.ok {
			t.Errorf("ParseWorkerOrdinal(%q): ok = %v, expected %v", tc.address, ok, tc.ok)
			continue
		}
		if ok && ord != tc.ordinal {
			t.Errorf("ParseWorkerOrdinal(%q) = %d, expected %d", tc.address, ord, tc.ordinal)
		}
	}
}

func TestSiblingAddressesFiltersAndSorts(t *testing.T) {
	addresses := []string{
		"analyze_dataset",
		"process_batch_003",
		"process_batch_001",
		"unrelated_worker_001",
		"process_batch_002",
		"aggregate_results",
	}
	got := SiblingAddresses("process_batch", addresses)
	want := []string{"process_batch_001", "process_batch_002", "process_batch_003"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSiblingAddressesNumericOrderPastPaddingWidth(t *testing.T) {
	// Lexicographic sorting would put "1000" before "999".
	addresses := []string{"w_1000", "w_999", "w_001"}
	got := SiblingAddresses("w", addresses)
	want := []string{"w_001", "w_999", "w_1000"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSiblingAddressesEmpty(t *testing.T) {
	if got := SiblingAddresses("process_batch", nil); len(got) != 0 {
		t.Errorf("expected no siblings, got %v", got)
	}
	if got := SiblingAddresses("process_batch", []string{"analyze_dataset"}); len(got) != 0 {
		t.Errorf("expected no siblings, got %v", got)
	}
}

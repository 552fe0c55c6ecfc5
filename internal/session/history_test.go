package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"goanalytics/domain/analysis"
)

func entry(i int) analysis.HistoryEntry {
	start := time.Date(2024, 1, 1, 0, i, 0, 0, time.UTC)
	return analysis.HistoryEntry{
		MethodDisplayName: "Clustering",
		DatasetName:       fmt.Sprintf("ds-%d", i),
		StartedAt:         start,
		SettledAt:         start.Add(time.Second),
		DurationMillis:    1000,
		Outcome:           analysis.OutcomeSucceeded,
	}
}

func TestHistory_EvictsOldestFirst(t *testing.T) {
	h := NewHistory(0)
	if h.Capacity() != DefaultHistoryCapacity {
		t.Fatalf("Capacity() = %d, want %d", h.Capacity(), DefaultHistoryCapacity)
	}

	for i := 0; i < 7; i++ {
		h.Append(entry(i))
		if h.Len() > 5 {
			t.Fatalf("after append %d: Len() = %d", i, h.Len())
		}
	}

	entries := h.Entries()
	if len(entries) != 5 {
		t.Fatalf("len(Entries()) = %d, want 5", len(entries))
	}
	for i, e := range entries {
		if want := fmt.Sprintf("ds-%d", i+2); e.DatasetName != want {
			t.Errorf("entries[%d] = %s, want %s", i, e.DatasetName, want)
		}
	}
}

func TestHistory_CapacityNeverExceedsDefault(t *testing.T) {
	h := NewHistory(20)
	if h.Capacity() != DefaultHistoryCapacity {
		t.Fatalf("Capacity() = %d, want %d", h.Capacity(), DefaultHistoryCapacity)
	}

	for i := 0; i < 7; i++ {
		h.Append(entry(i))
	}
	if h.Len() != DefaultHistoryCapacity {
		t.Errorf("Len() = %d, want %d", h.Len(), DefaultHistoryCapacity)
	}
}

func TestHistory_SmallerCapacity(t *testing.T) {
	h := NewHistory(2)
	for i := 0; i < 4; i++ {
		h.Append(entry(i))
	}

	entries := h.Entries()
	if len(entries) != 2 || entries[0].DatasetName != "ds-2" || entries[1].DatasetName != "ds-3" {
		t.Errorf("Entries() = %+v, want ds-2, ds-3", entries)
	}
}

func TestHistory_EntriesIsACopy(t *testing.T) {
	h := NewHistory(2)
	h.Append(entry(1))

	entries := h.Entries()
	entries[0].DatasetName = "mutated"

	if got := h.Entries()[0].DatasetName; got != "ds-1" {
		t.Errorf("stored entry changed to %s", got)
	}
}

func TestHistory_Reset(t *testing.T) {
	h := NewHistory(3)
	h.Append(entry(1))
	h.Append(entry(2))
	h.Reset()

	if h.Len() != 0 {
		t.Fatalf("Len() after Reset = %d", h.Len())
	}
	h.Append(entry(3))
	if got := h.Entries()[0].DatasetName; got != "ds-3" {
		t.Errorf("first entry = %s, want ds-3", got)
	}
}

func TestHistory_ConcurrentReaders(t *testing.T) {
	h := NewHistory(5)
	var wg sync.WaitGroup

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if n := len(h.Entries()); n > 5 {
					t.Errorf("reader saw %d entries", n)
					return
				}
			}
		}()
	}
	for i := 0; i < 100; i++ {
		h.Append(entry(i % 60))
	}
	wg.Wait()

	if h.Len() != 5 {
		t.Errorf("Len() = %d, want 5", h.Len())
	}
}

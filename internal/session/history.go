package session

import (
	"sync"

	"goanalytics/domain/analysis"
)

// DefaultHistoryCapacity is the number of settled sessions the log retains
const DefaultHistoryCapacity = 5

// History is a bounded, append-only log of settled sessions.
// When full, appending evicts the oldest entry.
type History struct {
	mu       sync.RWMutex
	capacity int
	entries  []analysis.HistoryEntry
}

// NewHistory creates a history log. Capacities outside 1..DefaultHistoryCapacity
// use DefaultHistoryCapacity.
func NewHistory(capacity int) *History {
	if capacity <= 0 || capacity > DefaultHistoryCapacity {
		capacity = DefaultHistoryCapacity
	}
	return &History{
		capacity: capacity,
		entries:  make([]analysis.HistoryEntry, 0, capacity),
	}
}

// Append records an entry, evicting the oldest on overflow
func (h *History) Append(entry analysis.HistoryEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.entries) == h.capacity {
		copy(h.entries, h.entries[1:])
		h.entries = h.entries[:len(h.entries)-1]
	}
	h.entries = append(h.entries, entry)
}

// Entries returns a copy of the log, oldest first
func (h *History) Entries() []analysis.HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]analysis.HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of retained entries
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Capacity returns the maximum number of retained entries
func (h *History) Capacity() int {
	return h.capacity
}

// Reset empties the log
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = h.entries[:0]
}

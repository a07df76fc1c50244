package paths

import (
	"slices"

	"xqbook/navigator/internal/store"
)

// DefaultHistoryCap bounds the truncation history.
const DefaultHistoryCap = 1000

// History is a bounded stack of paths discarded by truncation, newest last.
type History struct {
	entries [][]store.NodeID
	cap     int
}

// NewHistory returns an empty history holding at most capacity entries.
// A non-positive capacity uses DefaultHistoryCap.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCap
	}
	return &History{cap: capacity}
}

// Push records path. When the newest entry and path are prefixes of one another
// only the longer survives. The oldest entry is dropped at capacity.
func (h *History) Push(path []store.NodeID) {
	if len(path) == 0 {
		return
	}
	p := slices.Clone(path)
	if n := len(h.entries); n > 0 {
		last := h.entries[n-1]
		switch {
		case IsPrefix(p, last):
			return
		case IsPrefix(last, p):
			h.entries[n-1] = p
			return
		}
	}
	h.entries = append(h.entries, p)
	if len(h.entries) > h.cap {
		h.entries = slices.Delete(h.entries, 0, len(h.entries)-h.cap)
	}
}

// Entries returns copies of the stored paths, oldest first.
func (h *History) Entries() [][]store.NodeID {
	out := make([][]store.NodeID, len(h.entries))
	for i, e := range h.entries {
		out[i] = slices.Clone(e)
	}
	return out
}

// At returns entry i, oldest first.
func (h *History) At(i int) ([]store.NodeID, bool) {
	if i < 0 || i >= len(h.entries) {
		return nil, false
	}
	return slices.Clone(h.entries[i]), true
}

// Len is the number of stored paths.
func (h *History) Len() int { return len(h.entries) }

package validation

import (
	"github.com/ef-ds/deque"

	"github.com/agentjobs/validation-gateway/model/validation"
)

// history is a bounded FIFO of snapshots of completed assignments. The oldest
// snapshot is evicted first. It is not concurrency safe.
type history struct {
	capacity uint
	entries  *deque.Deque
}

func newHistory(capacity uint) *history {
	return &history{
		capacity: capacity,
		entries:  deque.New(),
	}
}

func (h *history) add(snapshot validation.Snapshot) {
	if h.capacity == 0 {
		return
	}
	h.entries.PushBack(snapshot)
	for uint(h.entries.Len()) > h.capacity {
		h.entries.PopFront()
	}
}

// list returns the snapshots from oldest to newest.
func (h *history) list() []validation.Snapshot {
	n := h.entries.Len()
	snapshots := make([]validation.Snapshot, 0, n)
	for i := 0; i < n; i++ {
		v, _ := h.entries.PopFront()
		snapshots = append(snapshots, v.(validation.Snapshot))
		h.entries.PushBack(v)
	}
	return snapshots
}

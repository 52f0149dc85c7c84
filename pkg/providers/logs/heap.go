package logs

import (
	"container/heap"
	"sort"
)

// timedEntry pairs a parsed log entry with the epoch-seconds key it is
// ordered by, plus a monotonic sequence number that breaks ties so that
// entries sharing a timestamp keep arrival order.
type timedEntry struct {
	tsKey float64
	seq   int
	entry parsedEntry
}

// entryHeap is a min-heap over timedEntry ordered by (tsKey, seq), letting
// tailHeap keep the newest N entries in O(log N) per insert instead of
// buffering the whole result set.
type entryHeap []timedEntry

func (h entryHeap) Len() int { return len(h) }
func (h entryHeap) Less(i, j int) bool {
	if h[i].tsKey != h[j].tsKey {
		return h[i].tsKey < h[j].tsKey
	}
	return h[i].seq < h[j].seq
}
func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *entryHeap) Push(x interface{}) {
	*h = append(*h, x.(timedEntry))
}
func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// tailHeap keeps the newest `limit` entries pushed to it, by timestamp, in
// O(log limit) per push and O(limit) total memory regardless of how many
// entries are pushed. Ties on timestamp are broken by push order.
type tailHeap struct {
	limit int
	h     entryHeap
	seq   int
}

func newTailHeap(limit int) *tailHeap {
	return &tailHeap{limit: limit}
}

func (t *tailHeap) push(tsKey float64, entry parsedEntry) {
	t.seq++
	item := timedEntry{tsKey: tsKey, seq: t.seq, entry: entry}
	if t.limit <= 0 {
		return
	}
	if len(t.h) < t.limit {
		heap.Push(&t.h, item)
		return
	}
	if item.tsKey > t.h[0].tsKey || (item.tsKey == t.h[0].tsKey && item.seq > t.h[0].seq) {
		heap.Pop(&t.h)
		heap.Push(&t.h, item)
	}
}

// drain returns the retained entries sorted ascending by (tsKey, seq), the
// order downstream tail/fallback logic expects.
func (t *tailHeap) drain() []parsedEntry {
	items := make(entryHeap, len(t.h))
	copy(items, t.h)
	sort.Sort(items)
	out := make([]parsedEntry, len(items))
	for i, it := range items {
		out[i] = it.entry
	}
	return out
}

package store

import (
	"container/heap"
	"sort"
)

// boundedHeap is a size-limited min-heap over RetrievalResult ordered
// by Score, used to maintain the top-K results of a scan without a
// full sort — the root is always the current worst of the K kept so
// far, so a new candidate only needs one comparison against it.
type boundedHeap struct {
	items []heapItem
	limit int
}

type heapItem struct {
	id    string
	score float64
	idx   int // index into an external result slice, set by caller
}

func newBoundedHeap(limit int) *boundedHeap {
	return &boundedHeap{limit: limit}
}

func (h *boundedHeap) Len() int            { return len(h.items) }
func (h *boundedHeap) Less(i, j int) bool  { return h.items[i].score < h.items[j].score }
func (h *boundedHeap) Swap(i, j int)       { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *boundedHeap) Push(x interface{})  { h.items = append(h.items, x.(heapItem)) }
func (h *boundedHeap) Pop() interface{} {
	old := h.items
	n := len(old)
	item := old[n-1]
	h.items = old[:n-1]
	return item
}

// Offer considers a candidate for inclusion in the top-K set.
func (h *boundedHeap) Offer(item heapItem) {
	if h.limit <= 0 {
		return
	}
	if h.Len() < h.limit {
		heap.Push(h, item)
		return
	}
	if item.score > h.items[0].score {
		heap.Pop(h)
		heap.Push(h, item)
	}
}

// Items returns the held items sorted descending by score.
func (h *boundedHeap) Items() []heapItem {
	out := make([]heapItem, len(h.items))
	copy(out, h.items)
	sort.Slice(out, func(i, j int) bool { return out[i].score > out[j].score })
	return out
}

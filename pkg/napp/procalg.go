package napp

import (
	"container/heap"
	"sort"
)

// localCandidate is one chunk-local match: a position within the
// chunk's docIDs slice and how many of the query's prefix pivots
// touched it.
type localCandidate struct {
	pos   int32
	count int
}

// processChunk turns a chunk's per-pivot posting lists into overlap
// candidates under the selected posting-processing strategy (§4.7's
// inv_proc_alg), keeping only positions seen by at least minTimes of
// queryPivots and capping the result to budget entries.
func processChunk(c *chunk, queryPivots []int32, minTimes, budget int, alg InvProcAlg) []localCandidate {
	if budget <= 0 {
		return nil
	}
	switch alg {
	case ProcMap:
		return processMap(c, queryPivots, minTimes, budget)
	case ProcMerge:
		return processMerge(c, queryPivots, minTimes, budget)
	case ProcPriorQueue:
		return processPriorQueue(c, queryPivots, minTimes, budget)
	case ProcWAND:
		return processWAND(c, queryPivots, minTimes, budget)
	default:
		return processScan(c, queryPivots, minTimes, budget)
	}
}

// processScan is ScanCount proper: a flat counter array sized to the
// chunk, incremented once per query-pivot posting hit, emitted in
// ascending chunk-position order (the "fast-scan" default).
func processScan(c *chunk, queryPivots []int32, minTimes, budget int) []localCandidate {
	counts := make([]int, len(c.docIDs))
	for _, p := range queryPivots {
		for _, pos := range c.postings[p] {
			counts[pos]++
		}
	}
	var out []localCandidate
	for pos, cnt := range counts {
		if cnt >= minTimes {
			out = append(out, localCandidate{pos: int32(pos), count: cnt})
			if len(out) >= budget {
				break
			}
		}
	}
	return out
}

// processMap replaces ScanCount's flat array with a hash map keyed by
// chunk position, trading the O(chunk size) allocation for O(touched
// positions) work when num_prefix_search is small relative to the
// chunk — useful when chunk_index_size is large.
func processMap(c *chunk, queryPivots []int32, minTimes, budget int) []localCandidate {
	counts := make(map[int32]int)
	for _, p := range queryPivots {
		for _, pos := range c.postings[p] {
			counts[pos]++
		}
	}
	positions := make([]int32, 0, len(counts))
	for pos, cnt := range counts {
		if cnt >= minTimes {
			positions = append(positions, pos)
		}
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i] < positions[j] })
	if len(positions) > budget {
		positions = positions[:budget]
	}
	out := make([]localCandidate, len(positions))
	for i, pos := range positions {
		out[i] = localCandidate{pos: pos, count: counts[pos]}
	}
	return out
}

// processMerge runs a plain k-way merge (one pointer per query pivot's
// posting list, each sorted ascending by construction) instead of a
// counter array, accumulating the overlap count for every distinct
// position visited.
func processMerge(c *chunk, queryPivots []int32, minTimes, budget int) []localCandidate {
	lists := postingLists(c, queryPivots)
	ptrs := make([]int, len(lists))
	var out []localCandidate
	for {
		minPos, has := int32(0), false
		for i, l := range lists {
			if ptrs[i] < len(l) && (!has || l[ptrs[i]] < minPos) {
				minPos, has = l[ptrs[i]], true
			}
		}
		if !has {
			break
		}
		count := 0
		for i, l := range lists {
			if ptrs[i] < len(l) && l[ptrs[i]] == minPos {
				count++
				ptrs[i]++
			}
		}
		if count >= minTimes {
			out = append(out, localCandidate{pos: minPos, count: count})
			if len(out) >= budget {
				break
			}
		}
	}
	return out
}

// postingCursor walks one query pivot's posting list within a chunk.
type postingCursor struct {
	list []int32
	pos  int
}

// cursorHeap orders active postingCursors by ascending current
// position, for the PriorQueue and WAND variants' k-way merge.
type cursorHeap []*postingCursor

func (h cursorHeap) Len() int            { return len(h) }
func (h cursorHeap) Less(i, j int) bool  { return h[i].list[h[i].pos] < h[j].list[h[j].pos] }
func (h cursorHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *cursorHeap) Push(x interface{}) { *h = append(*h, x.(*postingCursor)) }
func (h *cursorHeap) Pop() interface{} {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}

func postingLists(c *chunk, queryPivots []int32) [][]int32 {
	lists := make([][]int32, 0, len(queryPivots))
	for _, p := range queryPivots {
		if pl, ok := c.postings[p]; ok && len(pl) > 0 {
			lists = append(lists, pl)
		}
	}
	return lists
}

func newCursorHeap(c *chunk, queryPivots []int32) *cursorHeap {
	h := make(cursorHeap, 0, len(queryPivots))
	for _, p := range queryPivots {
		if pl, ok := c.postings[p]; ok && len(pl) > 0 {
			h = append(h, &postingCursor{list: pl})
		}
	}
	heap.Init(&h)
	return &h
}

// processPriorQueue merges the same posting lists via container/heap
// instead of linear pointer scans (the right tradeoff once
// num_prefix_search is large enough that a linear scan over all
// cursors per step dominates), and additionally sorts its surviving
// candidates by descending overlap count before the budget cut — the
// "priority-queue variant" §4.7 names as an alternative to emitting
// candidates in scan order.
func processPriorQueue(c *chunk, queryPivots []int32, minTimes, budget int) []localCandidate {
	h := newCursorHeap(c, queryPivots)
	var out []localCandidate
	for h.Len() > 0 {
		minPos := (*h)[0].list[(*h)[0].pos]
		count := 0
		for h.Len() > 0 && (*h)[0].list[(*h)[0].pos] == minPos {
			cur := (*h)[0]
			count++
			cur.pos++
			if cur.pos >= len(cur.list) {
				heap.Pop(h)
			} else {
				heap.Fix(h, 0)
			}
		}
		if count >= minTimes {
			out = append(out, localCandidate{pos: minPos, count: count})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].count > out[j].count })
	if len(out) > budget {
		out = out[:budget]
	}
	return out
}

// processWAND merges the same posting lists via the heap but adds a
// WAND-style threshold: once fewer than minTimes cursors remain
// active, no later position can possibly reach minTimes even with
// perfect overlap among the survivors, so the scan stops outright
// instead of draining every remaining posting.
func processWAND(c *chunk, queryPivots []int32, minTimes, budget int) []localCandidate {
	h := newCursorHeap(c, queryPivots)
	var out []localCandidate
	for h.Len() >= minTimes {
		minPos := (*h)[0].list[(*h)[0].pos]
		count := 0
		for h.Len() > 0 && (*h)[0].list[(*h)[0].pos] == minPos {
			cur := (*h)[0]
			count++
			cur.pos++
			if cur.pos >= len(cur.list) {
				heap.Pop(h)
			} else {
				heap.Fix(h, 0)
			}
		}
		if count >= minTimes {
			out = append(out, localCandidate{pos: minPos, count: count})
			if len(out) >= budget {
				break
			}
		}
	}
	return out
}

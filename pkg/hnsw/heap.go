package hnsw

import (
	"math"

	"github.com/therealutkarshpriyadarshi/simsearch/pkg/space"
)

// candidate is one entry in a beam-search priority queue: an object id
// and its distance to the query that drove the search.
type candidate struct {
	id   int32
	dist space.Dist
}

// minCandidateHeap orders candidates by ascending distance (closest
// first), used as the "candidates still to expand" queue in searchLayer.
type minCandidateHeap []candidate

func (h minCandidateHeap) Len() int            { return len(h) }
func (h minCandidateHeap) Less(i, j int) bool  { return h[i].dist < h[j].dist }
func (h minCandidateHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *minCandidateHeap) Push(x interface{}) { *h = append(*h, x.(candidate)) }
func (h *minCandidateHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// maxCandidateHeap orders candidates by descending distance (worst
// first), used as the bounded "best ef/efConstruction found so far" set:
// the root is always the one to evict when a closer candidate arrives.
type maxCandidateHeap []candidate

func (h maxCandidateHeap) Len() int            { return len(h) }
func (h maxCandidateHeap) Less(i, j int) bool  { return h[i].dist > h[j].dist }
func (h maxCandidateHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *maxCandidateHeap) Push(x interface{}) { *h = append(*h, x.(candidate)) }
func (h *maxCandidateHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

func (h maxCandidateHeap) peek() candidate {
	if len(h) == 0 {
		return candidate{dist: space.Dist(math.Inf(1))}
	}
	return h[0]
}

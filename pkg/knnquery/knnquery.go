// Package knnquery implements the bounded-result-set and range-query
// containers every index in this library builds against (§4.2).
package knnquery

import (
	"container/heap"
	"math"

	"github.com/therealutkarshpriyadarshi/simsearch/pkg/object"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/space"
)

// Result is one accepted candidate: its identity plus the distance at
// which it was accepted.
type Result struct {
	ID       int32
	Label    int32
	Distance space.Dist
}

// resultHeap is a bounded max-heap over Result, ordered so the worst
// (largest-distance) candidate is always at the root; ties break by the
// larger id losing first; to keep ordering deterministic, ResultsSorted
// re-sorts ascending by (distance, id) rather than relying on heap pop
// order.
type resultHeap []Result

func (h resultHeap) Len() int { return len(h) }
func (h resultHeap) Less(i, j int) bool {
	if h[i].Distance != h[j].Distance {
		return h[i].Distance > h[j].Distance
	}
	return h[i].ID > h[j].ID
}
func (h resultHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *resultHeap) Push(x any)        { *h = append(*h, x.(Result)) }
func (h *resultHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// KnnQuery is a bounded (top-k) result set bound to one query object,
// plus the distance-computation counter every index charges against via
// DistanceObjectLeft (§4.2's "distance_object_left increments the
// distance-computation counter").
type KnnQuery struct {
	sp       space.Space
	query    *object.Object
	k        int
	eps      float64
	heap     resultHeap
	distCost int
}

// New constructs a KnnQuery for the given space, query object, result
// size k, and approximation slack eps.
func New(sp space.Space, query *object.Object, k int, eps float64) *KnnQuery {
	return &KnnQuery{sp: sp, query: query, k: k, eps: eps, heap: make(resultHeap, 0, k)}
}

// QueryObject returns the object this query was constructed against.
func (q *KnnQuery) QueryObject() *object.Object { return q.query }

// K returns the configured result-set bound.
func (q *KnnQuery) K() int { return q.k }

// Eps returns the configured approximation slack.
func (q *KnnQuery) Eps() float64 { return q.eps }

// DistanceComputations returns the number of distance evaluations
// charged against this query since construction or the last Reset.
func (q *KnnQuery) DistanceComputations() int { return q.distCost }

// ChargeDistanceComputations implements space.DistanceCounter so bulk
// pivot-distance evaluators (pkg/space's PivotIndex) can charge their
// work against this query without pkg/space importing this package.
func (q *KnnQuery) ChargeDistanceComputations(n int) { q.distCost += n }

// DistanceObjectLeft computes space.Distance(other, query), charging one
// distance computation, per §4.2.
func (q *KnnQuery) DistanceObjectLeft(other *object.Object) space.Dist {
	q.distCost++
	return q.sp.Distance(other, q.query)
}

// Radius returns the current worst (largest) accepted distance, or
// +Inf if the result set has not yet filled to k. Indexes use this to
// prune: a candidate whose lower-bound distance exceeds
// (1+eps)*Radius() can never enter the top-k.
func (q *KnnQuery) Radius() space.Dist {
	if len(q.heap) < q.k {
		return math.Inf(1)
	}
	return q.heap[0].Distance
}

// CheckAndAddDistance inserts (obj, dist) into the bounded max-heap.
// It returns whether the candidate was accepted (either the set was
// not yet full, or it beat the current worst accepted distance).
func (q *KnnQuery) CheckAndAddDistance(dist space.Dist, obj *object.Object) bool {
	if len(q.heap) < q.k {
		heap.Push(&q.heap, Result{ID: obj.ID(), Label: obj.Label(), Distance: dist})
		return true
	}
	if dist >= q.heap[0].Distance {
		return false
	}
	q.heap[0] = Result{ID: obj.ID(), Label: obj.Label(), Distance: dist}
	heap.Fix(&q.heap, 0)
	return true
}

// CheckAndAdd computes the distance from obj to the query (via
// DistanceObjectLeft) and then calls CheckAndAddDistance; a convenience
// for indexes that haven't already computed the distance.
func (q *KnnQuery) CheckAndAdd(obj *object.Object) bool {
	return q.CheckAndAddDistance(q.DistanceObjectLeft(obj), obj)
}

// ResultsSorted returns the accepted results in ascending order by
// distance, tie-broken by ascending id, per §4.2.
func (q *KnnQuery) ResultsSorted() []Result {
	out := make([]Result, len(q.heap))
	copy(out, q.heap)
	sortResults(out)
	return out
}

func sortResults(r []Result) {
	// Insertion sort: result sets are bounded by k, which is always
	// small relative to corpus size in this library's intended usage.
	for i := 1; i < len(r); i++ {
		for j := i; j > 0 && less(r[j], r[j-1]); j-- {
			r[j], r[j-1] = r[j-1], r[j]
		}
	}
}

func less(a, b Result) bool {
	if a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	return a.ID < b.ID
}

// Reset clears the distance-computation counter and the result set so
// the same KnnQuery can be reused for a different traversal.
func (q *KnnQuery) Reset() {
	q.heap = q.heap[:0]
	q.distCost = 0
}

package knnquery

import (
	"sort"

	"github.com/therealutkarshpriyadarshi/simsearch/pkg/object"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/space"
)

// RangeQuery is the unbounded counterpart to KnnQuery (§4.2): it accepts
// every candidate within radius of the query object instead of keeping
// only the k best.
type RangeQuery struct {
	sp       space.Space
	query    *object.Object
	radius   space.Dist
	results  []Result
	distCost int
}

// NewRange constructs a RangeQuery for the given space, query object,
// and radius.
func NewRange(sp space.Space, query *object.Object, radius space.Dist) *RangeQuery {
	return &RangeQuery{sp: sp, query: query, radius: radius}
}

// QueryObject returns the object this query was constructed against.
func (q *RangeQuery) QueryObject() *object.Object { return q.query }

// Radius returns the fixed acceptance radius.
func (q *RangeQuery) Radius() space.Dist { return q.radius }

// DistanceComputations returns the number of distance evaluations
// charged against this query.
func (q *RangeQuery) DistanceComputations() int { return q.distCost }

// ChargeDistanceComputations implements space.DistanceCounter.
func (q *RangeQuery) ChargeDistanceComputations(n int) { q.distCost += n }

// DistanceObjectLeft computes space.Distance(other, query), charging one
// distance computation.
func (q *RangeQuery) DistanceObjectLeft(other *object.Object) space.Dist {
	q.distCost++
	return q.sp.Distance(other, q.query)
}

// CheckAndAddDistance accepts obj if dist <= radius.
func (q *RangeQuery) CheckAndAddDistance(dist space.Dist, obj *object.Object) bool {
	if dist > q.radius {
		return false
	}
	q.results = append(q.results, Result{ID: obj.ID(), Label: obj.Label(), Distance: dist})
	return true
}

// CheckAndAdd computes the distance then calls CheckAndAddDistance.
func (q *RangeQuery) CheckAndAdd(obj *object.Object) bool {
	return q.CheckAndAddDistance(q.DistanceObjectLeft(obj), obj)
}

// ResultsSorted returns accepted results ascending by distance, then id.
func (q *RangeQuery) ResultsSorted() []Result {
	out := make([]Result, len(q.results))
	copy(out, q.results)
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// Reset clears the distance counter and accumulated results.
func (q *RangeQuery) Reset() {
	q.results = q.results[:0]
	q.distCost = 0
}

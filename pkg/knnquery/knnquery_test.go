package knnquery

import (
	"math"
	"testing"

	"github.com/therealutkarshpriyadarshi/simsearch/pkg/object"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/space/builtin"
)

func TestKnnQueryKeepsKBestSortedByDistance(t *testing.T) {
	sp := builtin.NewL2()
	query := object.New(0, object.EmptyLabel, builtin.EncodeDenseVector([]float32{0, 0}))
	q := New(sp, query, 3, 0)

	points := []struct {
		id int32
		v  []float32
	}{
		{1, []float32{5, 0}},
		{2, []float32{1, 0}},
		{3, []float32{2, 0}},
		{4, []float32{3, 0}},
		{5, []float32{0.5, 0}},
	}
	for _, p := range points {
		q.CheckAndAdd(object.New(p.id, object.EmptyLabel, builtin.EncodeDenseVector(p.v)))
	}

	results := q.ResultsSorted()
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	wantIDs := []int32{5, 2, 3}
	for i, r := range results {
		if r.ID != wantIDs[i] {
			t.Fatalf("result[%d].ID = %d, want %d", i, r.ID, wantIDs[i])
		}
	}
	for i := 1; i < len(results); i++ {
		if results[i].Distance < results[i-1].Distance {
			t.Fatalf("results not ascending by distance: %+v", results)
		}
	}
}

func TestKnnQueryTieBreaksByID(t *testing.T) {
	sp := builtin.NewL2()
	query := object.New(0, object.EmptyLabel, builtin.EncodeDenseVector([]float32{0, 0}))
	q := New(sp, query, 2, 0)

	q.CheckAndAdd(object.New(9, object.EmptyLabel, builtin.EncodeDenseVector([]float32{1, 0})))
	q.CheckAndAdd(object.New(3, object.EmptyLabel, builtin.EncodeDenseVector([]float32{1, 0})))

	results := q.ResultsSorted()
	if results[0].ID != 3 || results[1].ID != 9 {
		t.Fatalf("tie-break order wrong: %+v", results)
	}
}

func TestKnnQueryDistanceCounterCharged(t *testing.T) {
	sp := builtin.NewL2()
	query := object.New(0, object.EmptyLabel, builtin.EncodeDenseVector([]float32{0, 0}))
	q := New(sp, query, 1, 0)
	for i := int32(1); i <= 5; i++ {
		q.CheckAndAdd(object.New(i, object.EmptyLabel, builtin.EncodeDenseVector([]float32{float32(i), 0})))
	}
	if q.DistanceComputations() != 5 {
		t.Fatalf("DistanceComputations() = %d, want 5", q.DistanceComputations())
	}
	q.Reset()
	if q.DistanceComputations() != 0 || len(q.ResultsSorted()) != 0 {
		t.Fatalf("Reset did not clear state")
	}
}

func TestKnnQueryRadiusInfiniteUntilFull(t *testing.T) {
	sp := builtin.NewL2()
	query := object.New(0, object.EmptyLabel, builtin.EncodeDenseVector([]float32{0, 0}))
	q := New(sp, query, 2, 0)
	if !math.IsInf(float64(q.Radius()), 1) {
		t.Fatalf("Radius() = %g before full, want +Inf", q.Radius())
	}
	q.CheckAndAdd(object.New(1, object.EmptyLabel, builtin.EncodeDenseVector([]float32{1, 0})))
	if !math.IsInf(float64(q.Radius()), 1) {
		t.Fatalf("Radius() = %g with 1/2 slots filled, want +Inf", q.Radius())
	}
	q.CheckAndAdd(object.New(2, object.EmptyLabel, builtin.EncodeDenseVector([]float32{2, 0})))
	if math.IsInf(float64(q.Radius()), 1) {
		t.Fatalf("Radius() still +Inf once full")
	}
}

func TestRangeQueryFiltersByRadius(t *testing.T) {
	sp := builtin.NewL2()
	query := object.New(0, object.EmptyLabel, builtin.EncodeDenseVector([]float32{0, 0}))
	rq := NewRange(sp, query, 2.5)
	for i := int32(1); i <= 5; i++ {
		rq.CheckAndAdd(object.New(i, object.EmptyLabel, builtin.EncodeDenseVector([]float32{float32(i), 0})))
	}
	results := rq.ResultsSorted()
	if len(results) != 2 { // distances 1 and 2 are <= 2.5
		t.Fatalf("got %d results, want 2: %+v", len(results), results)
	}
}

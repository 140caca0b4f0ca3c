package space

import "github.com/therealutkarshpriyadarshi/simsearch/pkg/object"

// DummyPivotIndex is the default PivotIndex: it loops over pivots and
// calls the owning space's Distance directly. Spaces that have no
// cheaper bulk evaluator return one of these from CreatePivotIndex.
type DummyPivotIndex struct {
	space  Space
	pivots []*object.Object
}

// NewDummyPivotIndex builds the loop-over-pivots fallback.
func NewDummyPivotIndex(sp Space, pivots []*object.Object) *DummyPivotIndex {
	cp := make([]*object.Object, len(pivots))
	copy(cp, pivots)
	return &DummyPivotIndex{space: sp, pivots: cp}
}

func (d *DummyPivotIndex) NumPivots() int { return len(d.pivots) }

func (d *DummyPivotIndex) ComputePivotDistancesIndexTime(obj *object.Object, out []Dist) {
	for i, p := range d.pivots {
		out[i] = d.space.Distance(p, obj)
	}
}

func (d *DummyPivotIndex) ComputePivotDistancesQueryTime(query *object.Object, counter DistanceCounter, out []Dist) {
	for i, p := range d.pivots {
		out[i] = d.space.Distance(p, query)
	}
	if counter != nil {
		counter.ChargeDistanceComputations(len(d.pivots))
	}
}

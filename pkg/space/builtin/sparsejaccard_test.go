package builtin

import (
	"math"
	"testing"

	"github.com/therealutkarshpriyadarshi/simsearch/pkg/sparsevec"
)

func TestJaccardKnownSets(t *testing.T) {
	a := sparseObjFromEntries(1, []sparsevec.Entry{{ID: 1, Value: 1}, {ID: 2, Value: 1}, {ID: 3, Value: 1}})
	b := sparseObjFromEntries(2, []sparsevec.Entry{{ID: 2, Value: 1}, {ID: 3, Value: 1}, {ID: 4, Value: 1}})

	sp := NewSparseJaccard()
	got := sp.Distance(a, b)
	want := 1 - 2.0/4.0 // |A∩B|=2, |A∪B|=4
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("jaccard(a,b) = %g, want %g", got, want)
	}
	if d := sp.Distance(a, a); math.Abs(d) > 1e-9 {
		t.Fatalf("jaccard(a,a) = %g, want 0", d)
	}
}

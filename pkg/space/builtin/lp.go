package builtin

import (
	"math"

	"github.com/therealutkarshpriyadarshi/simsearch/pkg/object"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/space"
)

// lpSpace implements the dense Lp family (space_lp.h): L1 (Manhattan),
// L2 (Euclidean), and L∞ (Chebyshev), selected by p.
type lpSpace struct {
	name string
	p    int // 1, 2, or 0 meaning infinity
}

// NewL1 returns the Manhattan-distance dense vector space.
func NewL1() space.Space { return &lpSpace{name: "l1", p: 1} }

// NewL2 returns the Euclidean dense vector space.
func NewL2() space.Space { return &lpSpace{name: "l2", p: 2} }

// NewLInf returns the Chebyshev (max-coordinate-difference) dense vector space.
func NewLInf() space.Space { return &lpSpace{name: "linf", p: 0} }

func (s *lpSpace) Name() string { return s.name }

func (s *lpSpace) Distance(a, b *object.Object) space.Dist {
	va := DecodeDenseVector(a.Data())
	vb := DecodeDenseVector(b.Data())
	n := len(va)
	if len(vb) < n {
		n = len(vb)
	}
	switch s.p {
	case 1:
		var sum float64
		for i := 0; i < n; i++ {
			sum += math.Abs(float64(va[i]) - float64(vb[i]))
		}
		return sum
	case 2:
		var sum float64
		for i := 0; i < n; i++ {
			d := float64(va[i]) - float64(vb[i])
			sum += d * d
		}
		return math.Sqrt(sum)
	default: // Chebyshev
		var mx float64
		for i := 0; i < n; i++ {
			d := math.Abs(float64(va[i]) - float64(vb[i]))
			if d > mx {
				mx = d
			}
		}
		return mx
	}
}

func (s *lpSpace) ApproxEqual(a, b *object.Object) bool {
	const eps = 1e-10
	va, vb := DecodeDenseVector(a.Data()), DecodeDenseVector(b.Data())
	if len(va) != len(vb) {
		return false
	}
	for i := range va {
		if math.Abs(float64(va[i])-float64(vb[i])) > eps {
			return false
		}
	}
	return true
}

func (s *lpSpace) CreatePivotIndex(pivots []*object.Object, hashTrickDim int) space.PivotIndex {
	return space.NewDummyPivotIndex(s, pivots)
}

// CreateDenseVector satisfies space.DenseVectorizer trivially: dense
// spaces already store their payload in the DenseVector wire format.
func (s *lpSpace) CreateDenseVector(obj *object.Object, out []float32) error {
	v := DecodeDenseVector(obj.Data())
	n := len(v)
	if n > len(out) {
		n = len(out)
	}
	copy(out[:n], v[:n])
	for i := n; i < len(out); i++ {
		out[i] = 0
	}
	return nil
}

func (s *lpSpace) ParseObject(id, label int32, text string, state *space.StreamState) (*object.Object, error) {
	return ParseDenseVectorText(s.name, id, label, text, state)
}

func (s *lpSpace) EmitObject(obj *object.Object, externalID string) (string, error) {
	return EmitDenseVectorText(obj), nil
}

func init() {
	space.DefaultRegistry.Register("l1", func(params map[string]string) (space.Space, error) { return NewL1(), nil })
	space.DefaultRegistry.Register("l2", func(params map[string]string) (space.Space, error) { return NewL2(), nil })
	space.DefaultRegistry.Register("linf", func(params map[string]string) (space.Space, error) { return NewLInf(), nil })
}

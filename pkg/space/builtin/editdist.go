package builtin

import (
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/object"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/space"
)

// editDistSpace implements SPACE_LEVENSHTEIN (space_leven.h): classic
// edit distance over the object payload treated as a raw byte string.
// Objects must carry a non-empty payload; the source's CHECK(datalength
// > 0) becomes a documented precondition here instead of a panic, since
// the zero-length case is well-defined (distance to itself is 0).
type editDistSpace struct{}

// NewEditDistance returns the Levenshtein distance space over opaque
// byte-string payloads.
func NewEditDistance() space.Space { return &editDistSpace{} }

func (s *editDistSpace) Name() string { return "leven" }

func (s *editDistSpace) Distance(a, b *object.Object) space.Dist {
	return float64(levenshtein(a.Data(), b.Data()))
}

func (s *editDistSpace) ApproxEqual(a, b *object.Object) bool {
	return string(a.Data()) == string(b.Data())
}

func (s *editDistSpace) CreatePivotIndex(pivots []*object.Object, hashTrickDim int) space.PivotIndex {
	return space.NewDummyPivotIndex(s, pivots)
}

func (s *editDistSpace) ParseObject(id, label int32, text string, state *space.StreamState) (*object.Object, error) {
	return object.New(id, label, []byte(text)), nil
}

func (s *editDistSpace) EmitObject(obj *object.Object, externalID string) (string, error) {
	return string(obj.Data()), nil
}

// levenshtein computes classic edit distance with the standard
// two-row dynamic program (O(len(x)*len(y)) time, O(min(len(x),len(y)))
// space).
func levenshtein(x, y []byte) int {
	if len(x) < len(y) {
		x, y = y, x
	}
	prev := make([]int, len(y)+1)
	cur := make([]int, len(y)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(x); i++ {
		cur[0] = i
		for j := 1; j <= len(y); j++ {
			cost := 1
			if x[i-1] == y[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := cur[j-1] + 1
			sub := prev[j-1] + cost
			m := del
			if ins < m {
				m = ins
			}
			if sub < m {
				m = sub
			}
			cur[j] = m
		}
		prev, cur = cur, prev
	}
	return prev[len(y)]
}

func init() {
	space.DefaultRegistry.Register("leven", func(params map[string]string) (space.Space, error) { return NewEditDistance(), nil })
}

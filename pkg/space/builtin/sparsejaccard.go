package builtin

import (
	"strconv"
	"strings"

	"github.com/therealutkarshpriyadarshi/simsearch/pkg/object"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/simerrors"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/space"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/sparsevec"
)

// jaccardSpace implements SPACE_SPARSE_JACCARD (space_sparse_jaccard.h):
// objects are strictly-ascending sets of ids (no values), and distance
// is 1 - |A∩B|/|A∪B|.
type jaccardSpace struct{}

// NewSparseJaccard returns the Jaccard-distance space over id sets.
func NewSparseJaccard() space.Space { return &jaccardSpace{} }

func (s *jaccardSpace) Name() string { return "jaccard_sparse" }

func (s *jaccardSpace) Distance(a, b *object.Object) space.Dist {
	va, vb := decodeSparse(a), decodeSparse(b)
	intersection, _ := sparsevec.DotFast(va, vb)
	union := va.NNZ() + vb.NNZ() - intersection
	if union == 0 {
		return 0
	}
	return 1 - float64(intersection)/float64(union)
}

func (s *jaccardSpace) ApproxEqual(a, b *object.Object) bool {
	ea, eb := sparsevec.Unpack(decodeSparse(a)), sparsevec.Unpack(decodeSparse(b))
	if len(ea) != len(eb) {
		return false
	}
	for i := range ea {
		if ea[i].ID != eb[i].ID {
			return false
		}
	}
	return true
}

func (s *jaccardSpace) CreatePivotIndex(pivots []*object.Object, hashTrickDim int) space.PivotIndex {
	return space.NewDummyPivotIndex(s, pivots)
}

func (s *jaccardSpace) ParseObject(id, label int32, text string, state *space.StreamState) (*object.Object, error) {
	fields := strings.Fields(text)
	entries := make([]sparsevec.Entry, len(fields))
	var lastID uint32
	for i, f := range fields {
		v, err := strconv.ParseUint(f, 10, 32)
		if err != nil {
			return nil, &simerrors.FormatError{Path: state.Path, Line: state.Line, Reason: "malformed jaccard id: " + f}
		}
		thisID := uint32(v)
		if i > 0 && thisID <= lastID {
			return nil, &simerrors.FormatError{Path: state.Path, Line: state.Line, Reason: "jaccard ids must be strictly ascending"}
		}
		lastID = thisID
		entries[i] = sparsevec.Entry{ID: thisID, Value: 1}
	}
	return object.New(id, label, EncodeSparseEntries(entries)), nil
}

func (s *jaccardSpace) EmitObject(obj *object.Object, externalID string) (string, error) {
	entries := sparsevec.Unpack(decodeSparse(obj))
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = strconv.FormatUint(uint64(e.ID), 10)
	}
	return strings.Join(parts, " "), nil
}

func init() {
	space.DefaultRegistry.Register("jaccard_sparse", func(params map[string]string) (space.Space, error) {
		return NewSparseJaccard(), nil
	})
}

package builtin

import (
	"encoding/binary"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/therealutkarshpriyadarshi/simsearch/pkg/object"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/simerrors"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/space"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/sparsevec"
)

// EncodeSparseEntries packs (id, value) entries into an Object payload:
// a flat array of 4-byte id / 4-byte float32 value pairs, in strictly
// ascending id order. This is the on-wire form; sparsevec.Vector (the
// blocked, rewritten-id form used for fast intersection) is rebuilt from
// it on demand rather than stored, so Object stays a plain byte payload
// like every other space.
func EncodeSparseEntries(entries []sparsevec.Entry) []byte {
	buf := make([]byte, 8*len(entries))
	for i, e := range entries {
		binary.LittleEndian.PutUint32(buf[8*i:], e.ID)
		binary.LittleEndian.PutUint32(buf[8*i+4:], math.Float32bits(e.Value))
	}
	return buf
}

// DecodeSparseEntries unpacks an Object payload produced by
// EncodeSparseEntries back into (id, value) entries.
func DecodeSparseEntries(data []byte) []sparsevec.Entry {
	n := len(data) / 8
	out := make([]sparsevec.Entry, n)
	for i := range out {
		out[i].ID = binary.LittleEndian.Uint32(data[8*i:])
		out[i].Value = math.Float32frombits(binary.LittleEndian.Uint32(data[8*i+4:]))
	}
	return out
}

// sparseDotSpace implements the sparse dot-product / cosine family
// (space_sparse_scalar.h, space_sparse_cosine.h): objects are packed
// sparsevec.Vector payloads, and CreatePivotIndex returns a real bulk
// evaluator instead of the loop-over-pivots fallback, per §4.1's
// "build a temporary inverted index over pivot_id -> (term_id, weight)".
type sparseDotSpace struct {
	cosine bool // true: normalize by norms (cosine); false: raw dot product / negative inner product
}

// NewSparseScalarProduct returns the (negated) dot-product space: closer
// vectors (larger dot product) get a smaller distance.
func NewSparseScalarProduct() space.Space { return &sparseDotSpace{cosine: false} }

// NewSparseCosine returns 1 - cosine-similarity as a distance.
func NewSparseCosine() space.Space { return &sparseDotSpace{cosine: true} }

func (s *sparseDotSpace) Name() string {
	if s.cosine {
		return "cosinesimil_sparse"
	}
	return "negdotprod_sparse"
}

func decodeSparse(obj *object.Object) *sparsevec.Vector {
	return sparsevec.Pack(DecodeSparseEntries(obj.Data()))
}

func (s *sparseDotSpace) Distance(a, b *object.Object) space.Dist {
	va, vb := decodeSparse(a), decodeSparse(b)
	_, dot := sparsevec.DotFast(va, vb)
	if s.cosine {
		if va.InvNorm == 0 || vb.InvNorm == 0 {
			return 1
		}
		cos := dot * va.InvNorm * vb.InvNorm
		if cos > 1 {
			cos = 1
		} else if cos < -1 {
			cos = -1
		}
		return 1 - cos
	}
	return -dot
}

func (s *sparseDotSpace) ApproxEqual(a, b *object.Object) bool {
	const eps = 1e-6
	ea, eb := sparsevec.Unpack(decodeSparse(a)), sparsevec.Unpack(decodeSparse(b))
	if len(ea) != len(eb) {
		return false
	}
	for i := range ea {
		if ea[i].ID != eb[i].ID || math.Abs(float64(ea[i].Value-eb[i].Value)) > eps {
			return false
		}
	}
	return true
}

// sparsePivotIndex is the real bulk evaluator for the sparse dot-product
// family: it builds an inverted index from term id to the (pivot index,
// weight) pairs that reference it, so that ComputePivotDistances* needs
// only to walk the query's own non-zero terms instead of looping over
// every pivot (§4.1).
type sparsePivotIndex struct {
	sp     *sparseDotSpace
	pivots []*sparsevec.Vector
	// postings[term] is the list of (pivot index, weight) pairs for
	// pivots that have a non-zero weight on term.
	postings map[uint32][]pivotWeight
}

type pivotWeight struct {
	pivot  int
	weight float32
}

func (s *sparseDotSpace) CreatePivotIndex(pivots []*object.Object, hashTrickDim int) space.PivotIndex {
	idx := &sparsePivotIndex{sp: s, postings: make(map[uint32][]pivotWeight)}
	idx.pivots = make([]*sparsevec.Vector, len(pivots))
	for i, p := range pivots {
		v := decodeSparse(p)
		idx.pivots[i] = v
		for _, e := range sparsevec.Unpack(v) {
			idx.postings[e.ID] = append(idx.postings[e.ID], pivotWeight{pivot: i, weight: e.Value})
		}
	}
	return idx
}

func (idx *sparsePivotIndex) NumPivots() int { return len(idx.pivots) }

// accumulate computes the raw dot products from obj to every pivot in
// one pass over obj's non-zero terms (O(nnz(obj) * avg posting length)
// rather than O(numPivots * nnz)).
func (idx *sparsePivotIndex) accumulate(obj *object.Object, out []space.Dist) {
	for i := range out {
		out[i] = 0
	}
	for _, e := range sparsevec.Unpack(decodeSparse(obj)) {
		for _, pw := range idx.postings[e.ID] {
			out[pw.pivot] += float64(e.Value) * float64(pw.weight)
		}
	}
	if idx.sp.cosine {
		objVec := decodeSparse(obj)
		for i, p := range idx.pivots {
			if p.InvNorm == 0 || objVec.InvNorm == 0 {
				out[i] = 1
				continue
			}
			cos := out[i] * p.InvNorm * objVec.InvNorm
			if cos > 1 {
				cos = 1
			} else if cos < -1 {
				cos = -1
			}
			out[i] = 1 - cos
		}
	} else {
		for i := range out {
			out[i] = -out[i]
		}
	}
}

func (idx *sparsePivotIndex) ComputePivotDistancesIndexTime(obj *object.Object, out []space.Dist) {
	idx.accumulate(obj, out)
}

func (idx *sparsePivotIndex) ComputePivotDistancesQueryTime(query *object.Object, counter space.DistanceCounter, out []space.Dist) {
	idx.accumulate(query, out)
	if counter != nil {
		counter.ChargeDistanceComputations(len(idx.pivots))
	}
}

// ParseObject parses the sparse text format (§6): whitespace-separated
// "id value" pairs, strictly ascending id.
func (s *sparseDotSpace) ParseObject(id, label int32, text string, state *space.StreamState) (*object.Object, error) {
	fields := strings.Fields(text)
	if len(fields)%2 != 0 {
		return nil, &simerrors.FormatError{Path: state.Path, Line: state.Line, Reason: "sparse record has an odd number of tokens"}
	}
	entries := make([]sparsevec.Entry, 0, len(fields)/2)
	var lastID uint32
	for i := 0; i < len(fields); i += 2 {
		rawID, err := strconv.ParseUint(fields[i], 10, 32)
		if err != nil {
			return nil, &simerrors.FormatError{Path: state.Path, Line: state.Line, Reason: "malformed sparse id: " + fields[i]}
		}
		val, err := strconv.ParseFloat(fields[i+1], 32)
		if err != nil {
			return nil, &simerrors.FormatError{Path: state.Path, Line: state.Line, Reason: "malformed sparse value: " + fields[i+1]}
		}
		thisID := uint32(rawID)
		if i > 0 && thisID <= lastID {
			return nil, &simerrors.FormatError{Path: state.Path, Line: state.Line, Reason: "sparse ids must be strictly ascending"}
		}
		lastID = thisID
		entries = append(entries, sparsevec.Entry{ID: thisID, Value: float32(val)})
	}
	return object.New(id, label, EncodeSparseEntries(entries)), nil
}

func (s *sparseDotSpace) EmitObject(obj *object.Object, externalID string) (string, error) {
	entries := sparsevec.Unpack(decodeSparse(obj))
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	parts := make([]string, 0, 2*len(entries))
	for _, e := range entries {
		parts = append(parts, strconv.FormatUint(uint64(e.ID), 10), strconv.FormatFloat(float64(e.Value), 'g', -1, 32))
	}
	return strings.Join(parts, " "), nil
}

func init() {
	space.DefaultRegistry.Register("negdotprod_sparse", func(params map[string]string) (space.Space, error) {
		return NewSparseScalarProduct(), nil
	})
	space.DefaultRegistry.Register("cosinesimil_sparse", func(params map[string]string) (space.Space, error) {
		return NewSparseCosine(), nil
	})
}

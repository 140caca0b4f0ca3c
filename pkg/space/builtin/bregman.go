package builtin

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	"github.com/therealutkarshpriyadarshi/simsearch/pkg/object"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/simerrors"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/space"
)

// bregmanKind selects which divergence a bregmanSpace computes; all
// three share the same "precompute value and log(value) at object
// creation time" storage strategy (space_bregman.h's *Fast variants).
type bregmanKind int

const (
	bregmanKL bregmanKind = iota
	bregmanItakuraSaito
	bregmanJensenShannon
)

// bregmanSpace implements the three Bregman-family divergences named in
// §1: generalized Kullback-Leibler, Itakura-Saito, and Jensen-Shannon.
// Per the documented decision on the source's inconsistent NaN handling,
// a non-positive vector component is rejected at object-creation time
// with DivergenceDomainError rather than silently clamped to a floor
// log value; Distance therefore always operates on valid precomputed
// logs.
type bregmanSpace struct {
	kind bregmanKind
	name string
}

// NewKLDivergence returns the generalized KL-divergence space:
// D(p,q) = sum_i p_i*log(p_i/q_i) - p_i + q_i.
func NewKLDivergence() space.Space { return &bregmanSpace{kind: bregmanKL, name: "kldivgenfast"} }

// NewItakuraSaito returns the Itakura-Saito divergence space:
// D(p,q) = sum_i p_i/q_i - log(p_i/q_i) - 1.
func NewItakuraSaito() space.Space {
	return &bregmanSpace{kind: bregmanItakuraSaito, name: "itakurasaitofast"}
}

// NewJensenShannon returns the (symmetric) Jensen-Shannon divergence
// space: JS(p,q) = 0.5*KL(p,m) + 0.5*KL(q,m), m = (p+q)/2, using the
// plain (non-generalized) KL term since m is always a valid mixture of
// positive vectors.
func NewJensenShannon() space.Space {
	return &bregmanSpace{kind: bregmanJensenShannon, name: "jsdivfast"}
}

func (s *bregmanSpace) Name() string { return s.name }

// bregmanPayload decodes the precomputed (value, log(value)) pairs
// stored back to back by encodeBregmanVector.
func bregmanPayload(obj *object.Object) (values, logs []float64) {
	data := obj.Data()
	n := len(data) / 8
	values = make([]float64, n)
	logs = make([]float64, n)
	for i := 0; i < n; i++ {
		values[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(data[8*i:])))
		logs[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(data[8*i+4:])))
	}
	return
}

func encodeBregmanVector(values []float64) []byte {
	buf := make([]byte, 8*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[8*i:], math.Float32bits(float32(v)))
		binary.LittleEndian.PutUint32(buf[8*i+4:], math.Float32bits(float32(math.Log(v))))
	}
	return buf
}

func (s *bregmanSpace) Distance(a, b *object.Object) space.Dist {
	pa, la := bregmanPayload(a)
	qb, lb := bregmanPayload(b)
	n := len(pa)
	if len(qb) < n {
		n = len(qb)
	}
	switch s.kind {
	case bregmanKL:
		var sum float64
		for i := 0; i < n; i++ {
			sum += pa[i]*(la[i]-lb[i]) - pa[i] + qb[i]
		}
		return sum
	case bregmanItakuraSaito:
		var sum float64
		for i := 0; i < n; i++ {
			ratio := pa[i] / qb[i]
			sum += ratio - (la[i] - lb[i]) - 1
		}
		return sum
	default: // bregmanJensenShannon
		var sum float64
		for i := 0; i < n; i++ {
			m := 0.5 * (pa[i] + qb[i])
			logM := math.Log(m)
			sum += 0.5*pa[i]*(la[i]-logM) + 0.5*qb[i]*(lb[i]-logM)
		}
		return sum
	}
}

func (s *bregmanSpace) ApproxEqual(a, b *object.Object) bool {
	const eps = 1e-10
	pa, _ := bregmanPayload(a)
	qb, _ := bregmanPayload(b)
	if len(pa) != len(qb) {
		return false
	}
	for i := range pa {
		if math.Abs(pa[i]-qb[i]) > eps {
			return false
		}
	}
	return true
}

func (s *bregmanSpace) CreatePivotIndex(pivots []*object.Object, hashTrickDim int) space.PivotIndex {
	return space.NewDummyPivotIndex(s, pivots)
}

// ParseObject parses a whitespace-separated list of strictly positive
// floats, precomputing each component's log at creation time. A
// non-positive component fails with DivergenceDomainError rather than
// being silently clamped (see the package-level doc on this decision).
func (s *bregmanSpace) ParseObject(id, label int32, text string, state *space.StreamState) (*object.Object, error) {
	fields := strings.Fields(text)
	values := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, &simerrors.FormatError{Path: state.Path, Line: state.Line, Reason: "malformed float token: " + f}
		}
		if v <= 0 {
			return nil, &simerrors.DivergenceDomainError{Space: s.name, Index: i, Value: v}
		}
		values[i] = v
	}
	if state.Dimensionality == 0 {
		state.Dimensionality = len(values)
	} else if len(values) != state.Dimensionality {
		return nil, &simerrors.FormatError{Path: state.Path, Line: state.Line, Reason: "dense vector dimensionality mismatch"}
	}
	return object.New(id, label, encodeBregmanVector(values)), nil
}

func (s *bregmanSpace) EmitObject(obj *object.Object, externalID string) (string, error) {
	values, _ := bregmanPayload(obj)
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, " "), nil
}

func init() {
	space.DefaultRegistry.Register("kldivgenfast", func(params map[string]string) (space.Space, error) { return NewKLDivergence(), nil })
	space.DefaultRegistry.Register("itakurasaitofast", func(params map[string]string) (space.Space, error) { return NewItakuraSaito(), nil })
	space.DefaultRegistry.Register("jsdivfast", func(params map[string]string) (space.Space, error) { return NewJensenShannon(), nil })
}

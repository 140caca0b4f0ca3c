// Package builtin implements the representative set of concrete spaces
// named in spec.md §1/§9: dense Lp, sparse dot-product/cosine (with a
// real PivotIndex fast path), sparse Jaccard, Hamming, edit distance,
// and the Bregman-family divergences (KL, Itakura-Saito, Jensen-Shannon)
// plus SQFD. Each is grounded on the matching original_source/include/
// space/*.h header; see DESIGN.md for the per-file mapping.
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

// EncodeDenseVector packs a []float32 into an Object payload: 4-byte
// little-endian floats back to back, matching object.Object's 8-byte
// aligned header so kernels can safely reinterpret the tail.
func EncodeDenseVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(x))
	}
	return buf
}

// DecodeDenseVector unpacks an Object payload produced by
// EncodeDenseVector back into a []float32. The returned slice is a
// fresh copy; mutating it does not change the Object.
func DecodeDenseVector(data []byte) []float32 {
	n := len(data) / 4
	out := make([]float32, n)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	return out
}

// ParseDenseVectorText parses a whitespace-separated list of floats,
// enforcing consistent dimensionality against state (§6 dense vector
// format).
func ParseDenseVectorText(spaceName string, id, label int32, text string, state *space.StreamState) (*object.Object, error) {
	fields := strings.Fields(text)
	v := make([]float32, len(fields))
	for i, f := range fields {
		x, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, &simerrors.FormatError{Path: state.Path, Line: state.Line, Reason: "malformed float token: " + f}
		}
		v[i] = float32(x)
	}
	if state.Dimensionality == 0 {
		state.Dimensionality = len(v)
	} else if len(v) != state.Dimensionality {
		return nil, &simerrors.FormatError{Path: state.Path, Line: state.Line, Reason: "dense vector dimensionality mismatch"}
	}
	return object.New(id, label, EncodeDenseVector(v)), nil
}

// EmitDenseVectorText renders an Object created by ParseDenseVectorText
// back to its whitespace-separated text form.
func EmitDenseVectorText(obj *object.Object) string {
	v := DecodeDenseVector(obj.Data())
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(float64(x), 'g', -1, 32)
	}
	return strings.Join(parts, " ")
}

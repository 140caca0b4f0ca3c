package builtin

import (
	"math/bits"
	"strings"

	"github.com/therealutkarshpriyadarshi/simsearch/pkg/object"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/simerrors"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/space"
)

// hammingSpace implements SPACE_BIT_HAMMING (space_bit_hamming.h):
// objects are fixed-length bit vectors packed 64 bits per word, and
// distance is the popcount of the XOR between two bit vectors.
type hammingSpace struct{}

// NewHamming returns the bit-vector Hamming-distance space.
func NewHamming() space.Space { return &hammingSpace{} }

func (s *hammingSpace) Name() string { return "bit_hamming" }

func hammingWords(data []byte) []uint64 {
	n := len(data) / 8
	out := make([]uint64, n)
	for i := 0; i < n; i++ {
		var w uint64
		for k := 0; k < 8; k++ {
			w |= uint64(data[8*i+k]) << (8 * k)
		}
		out[i] = w
	}
	return out
}

func (s *hammingSpace) Distance(a, b *object.Object) space.Dist {
	wa, wb := hammingWords(a.Data()), hammingWords(b.Data())
	n := len(wa)
	if len(wb) < n {
		n = len(wb)
	}
	var dist int
	for i := 0; i < n; i++ {
		dist += bits.OnesCount64(wa[i] ^ wb[i])
	}
	return float64(dist)
}

func (s *hammingSpace) ApproxEqual(a, b *object.Object) bool {
	return string(a.Data()) == string(b.Data())
}

func (s *hammingSpace) CreatePivotIndex(pivots []*object.Object, hashTrickDim int) space.PivotIndex {
	return space.NewDummyPivotIndex(s, pivots)
}

// ParseObject reads whitespace-separated 0/1 tokens (§6 bit-vector
// format) and packs them 64 bits per word, little-endian within a word.
func (s *hammingSpace) ParseObject(id, label int32, text string, state *space.StreamState) (*object.Object, error) {
	fields := strings.Fields(text)
	if state.Dimensionality == 0 {
		state.Dimensionality = len(fields)
	} else if len(fields) != state.Dimensionality {
		return nil, &simerrors.FormatError{Path: state.Path, Line: state.Line, Reason: "bit-vector length mismatch"}
	}
	nWords := (len(fields) + 63) / 64
	data := make([]byte, nWords*8)
	for i, f := range fields {
		var bit byte
		switch f {
		case "0":
			bit = 0
		case "1":
			bit = 1
		default:
			return nil, &simerrors.FormatError{Path: state.Path, Line: state.Line, Reason: "malformed bit token: " + f}
		}
		if bit == 1 {
			byteIdx := i / 8
			bitIdx := uint(i % 8)
			data[byteIdx] |= 1 << bitIdx
		}
	}
	return object.New(id, label, data), nil
}

func (s *hammingSpace) EmitObject(obj *object.Object, externalID string) (string, error) {
	data := obj.Data()
	bitsTotal := len(data) * 8
	parts := make([]string, bitsTotal)
	for i := 0; i < bitsTotal; i++ {
		byteIdx := i / 8
		bitIdx := uint(i % 8)
		if data[byteIdx]&(1<<bitIdx) != 0 {
			parts[i] = "1"
		} else {
			parts[i] = "0"
		}
	}
	return strings.Join(parts, " "), nil
}

func init() {
	space.DefaultRegistry.Register("bit_hamming", func(params map[string]string) (space.Space, error) {
		return NewHamming(), nil
	})
}

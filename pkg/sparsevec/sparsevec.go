// Package sparsevec implements the blocked packed sparse-vector layout
// used by the inverted-index family (§3 "Sparse vector representation").
// Element ids are rewritten so that no id that ends up in the wire
// format is a multiple of 65536, which lets block-local ids fit in 16
// bits and (in the source) lets SIMD string-compare instructions
// intersect them safely; this port keeps the same id-rewrite invariant
// and gates the actual SIMD behind a portable scalar fallback (§9).
package sparsevec

import "math"

// Entry is one (id, value) pair of a sparse vector using the caller's
// original, non-rewritten ids. Ids within a Vector must be strictly
// increasing, per the data-model invariant.
type Entry struct {
	ID    uint32
	Value float32
}

// blockShift is log2(65536): block offsets are multiples of 1<<blockShift.
const blockShift = 16
const blockSize = 1 << blockShift // 65536

// RewriteID maps an original, non-negative id to the bijection used for
// on-wire storage: i -> (i/65535)*65536 + (i%65535) + 1. The image of
// this map never lands on a multiple of 65536 (the +1 guarantees the
// low 16 bits are in [1, 65535]).
func RewriteID(id uint32) uint32 {
	q := id / 65535
	r := id % 65535
	return q*blockSize + r + 1
}

// UnrewriteID is the inverse of RewriteID.
func UnrewriteID(rewritten uint32) uint32 {
	q := rewritten / blockSize
	r := rewritten % blockSize
	return q*65535 + (r - 1)
}

// RemoveBlockZeros splits a rewritten id into its block offset (a
// multiple of 65536) and its 16-bit within-block local id.
func RemoveBlockZeros(rewritten uint32) (blockOffset uint32, local uint16) {
	blockOffset = (rewritten / blockSize) * blockSize
	local = uint16(rewritten - blockOffset)
	return
}

// AddBlockZeros is the inverse of RemoveBlockZeros.
func AddBlockZeros(blockOffset uint32, local uint16) uint32 {
	return blockOffset + uint32(local)
}

// Block holds one block's entries: strictly increasing 16-bit local ids
// (never zero, since RewriteID's +1 guarantees that) with parallel values.
type Block struct {
	Offset uint32 // multiple of 65536
	IDs    []uint16
	Values []float32
}

// Vector is the packed, blocked representation of a sparse vector.
type Vector struct {
	SumSquares float64
	InvNorm    float64
	Blocks     []Block
}

// Pack builds the blocked representation from entries sorted by
// strictly increasing original id. It rewrites ids via RewriteID before
// bucketing them into 65536-wide blocks.
func Pack(entries []Entry) *Vector {
	v := &Vector{}
	if len(entries) == 0 {
		v.InvNorm = 0
		return v
	}

	var sumSq float64
	var curBlock *Block
	for _, e := range entries {
		sumSq += float64(e.Value) * float64(e.Value)
		rewritten := RewriteID(e.ID)
		offset, local := RemoveBlockZeros(rewritten)
		if curBlock == nil || curBlock.Offset != offset {
			v.Blocks = append(v.Blocks, Block{Offset: offset})
			curBlock = &v.Blocks[len(v.Blocks)-1]
		}
		curBlock.IDs = append(curBlock.IDs, local)
		curBlock.Values = append(curBlock.Values, e.Value)
	}

	v.SumSquares = sumSq
	if sumSq > 0 {
		v.InvNorm = 1 / math.Sqrt(sumSq)
	}
	return v
}

// Unpack reconstructs the original (id, value) entries, in strictly
// increasing original-id order, from a packed Vector.
func Unpack(v *Vector) []Entry {
	var out []Entry
	for _, b := range v.Blocks {
		for i, local := range b.IDs {
			rewritten := AddBlockZeros(b.Offset, local)
			out = append(out, Entry{ID: UnrewriteID(rewritten), Value: b.Values[i]})
		}
	}
	return out
}

// BlockQty returns the number of non-empty blocks.
func (v *Vector) BlockQty() int { return len(v.Blocks) }

// NNZ returns the number of non-zero entries across all blocks.
func (v *Vector) NNZ() int {
	n := 0
	for _, b := range v.Blocks {
		n += len(b.IDs)
	}
	return n
}

package hnsw

import (
	"sort"

	"github.com/therealutkarshpriyadarshi/simsearch/pkg/quantize"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/space"
)

// compactLayout is the cache-compact ("optimized") representation built
// after a bulk Build when skip_optimized_index=false: every node's
// per-level neighbor lists are copied into slot-indexed slices (slots
// in ascending id order, id -> slot through index), so search reads a
// frozen copy instead of taking each node's lock. It is a read-only
// snapshot: later Inserts do not update it, and neighborsAt keeps
// serving its lists for the ids it holds, falling back to the live
// node only for ids added after it was built. Compact again after
// mutating to refresh it.
//
// When sp implements space.DenseVectorizer, Compact also trains a
// quantize.ScalarQuantizer over every stored vector and keeps a
// quantized copy per slot, a 4x-smaller stand-in for distance estimates
// that only need to rank rather than exactly reproduce sp.Distance.
type compactLayout struct {
	ids       []int32       // id at each slot, by insertion order into the layout
	index     map[int32]int // id -> slot
	neighbors [][][]int32   // neighbors[slot][level]

	quantizer *quantize.ScalarQuantizer
	quantized [][]int8 // quantized[slot], nil when sp has no dense vectorizer
}

// Compact rebuilds the cache-compact layout from the current graph
// state. Safe to call multiple times; each call replaces the prior
// layout.
func (idx *Index) Compact() {
	idx.mu.RLock()
	ids := make([]int32, 0, len(idx.nodes))
	for id := range idx.nodes {
		ids = append(ids, id)
	}
	idx.mu.RUnlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	layout := &compactLayout{
		ids:       ids,
		index:     make(map[int32]int, len(ids)),
		neighbors: make([][][]int32, len(ids)),
	}
	nodes := make([]*Node, len(ids))
	for slot, id := range ids {
		layout.index[id] = slot
		n := idx.getNode(id)
		if n == nil {
			continue
		}
		nodes[slot] = n
		perLevel := make([][]int32, n.level+1)
		for lc := 0; lc <= n.level; lc++ {
			perLevel[lc] = n.GetNeighbors(lc)
		}
		layout.neighbors[slot] = perLevel
	}

	idx.trainQuantizedVectors(layout, nodes)

	idx.mu.Lock()
	idx.compact = layout
	idx.mu.Unlock()
}

// trainQuantizedVectors fills layout.quantized when idx.sp can project
// objects into dense vectors. Quantized vectors are a ranking shortcut,
// not a replacement for idx.sp.Distance: they exist to shrink what the
// compact layout pins in memory, not to change search semantics.
func (idx *Index) trainQuantizedVectors(layout *compactLayout, nodes []*Node) {
	dv, ok := idx.sp.(space.DenseVectorizer)
	if !ok {
		return
	}

	dense := make([][]float32, 0, len(nodes))
	dims := make([]int, len(nodes))
	for slot, n := range nodes {
		if n == nil {
			continue
		}
		dim := int(n.obj.DataLength() / 4)
		if dim == 0 {
			continue
		}
		dims[slot] = dim
		out := make([]float32, dim)
		if err := dv.CreateDenseVector(n.obj, out); err != nil {
			continue
		}
		dense = append(dense, out)
	}
	if len(dense) == 0 {
		return
	}

	q := quantize.NewScalarQuantizer()
	if err := q.Train(dense); err != nil {
		return
	}

	quantized := make([][]int8, len(nodes))
	for slot, n := range nodes {
		if n == nil || dims[slot] == 0 {
			continue
		}
		out := make([]float32, dims[slot])
		if err := dv.CreateDenseVector(n.obj, out); err != nil {
			continue
		}
		quantized[slot] = q.Quantize(out)
	}

	layout.quantizer = q
	layout.quantized = quantized
}

// Compacted reports whether Compact has run on this index at least once.
// Later Inserts do not reset it: this library does not track staleness,
// so callers that Insert after Compact are responsible for calling
// Compact again.
func (idx *Index) Compacted() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.compact != nil
}

// neighborsAt returns n's level-lc neighbor list, preferring the
// cache-compact snapshot (an id -> slot lookup) over the per-node
// RWMutex-guarded map entry when one is available, so search traversal
// benefits from Compact once it has run.
func (idx *Index) neighborsAt(n *Node, lc int) []int32 {
	idx.mu.RLock()
	layout := idx.compact
	idx.mu.RUnlock()
	if layout != nil {
		if slot, ok := layout.index[n.id]; ok && lc < len(layout.neighbors[slot]) {
			return layout.neighbors[slot][lc]
		}
	}
	return n.GetNeighbors(lc)
}

// Package napp implements the Neighborhood-APProximation inverted index
// (§4.7): each object is assigned to the posting lists of its nearest
// num_prefix pivots, and a query is answered by finding objects that
// overlap the query's own pivot neighborhood often enough (ScanCount
// and its four siblings), then verifying true distances on the
// resulting candidate set.
package napp

import (
	"math/rand"

	"github.com/therealutkarshpriyadarshi/simsearch/pkg/object"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/simerrors"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/space"
)

// Config holds NAPP's index-time parameters (§6). The query-time knobs
// (num_prefix_search, min_times, db_scan_frac/knn_amp, inv_proc_alg,
// skip_checking) live in SearchParams instead, mirroring how the
// source sets them via SetQueryTimeParams independently of CreateIndex.
type Config struct {
	NumPivot       int
	NumPrefix      int
	ChunkIndexSize int
	Seed           int64
}

// DefaultConfig returns NAPP's default index-time parameters.
func DefaultConfig() Config {
	return Config{NumPivot: 32, NumPrefix: 8, ChunkIndexSize: 1024, Seed: 1}
}

// Validate rejects an out-of-range Config.
func (c Config) Validate() error {
	if c.NumPivot < 1 {
		return &simerrors.ConfigError{Key: "num_pivot", Reason: "must be >= 1"}
	}
	if c.NumPrefix < 1 || c.NumPrefix > c.NumPivot {
		return &simerrors.ConfigError{Key: "num_prefix", Reason: "must be in [1, num_pivot]"}
	}
	if c.ChunkIndexSize < 1 {
		return &simerrors.ConfigError{Key: "chunk_index_size", Reason: "must be >= 1"}
	}
	return nil
}

// Index is the pivot-neighborhood inverted index of §4.7.
type Index struct {
	sp       space.Space
	cfg      Config
	pivots   []*object.Object
	pivotIdx space.PivotIndex
	objects  map[int32]*object.Object
	chunks   []*chunk
	rnd      *rand.Rand
	size     int
}

// New validates cfg and returns an empty Index ready for Build.
func New(sp space.Space, cfg Config) (*Index, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Index{
		sp:      sp,
		cfg:     cfg,
		objects: make(map[int32]*object.Object),
		rnd:     rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Size returns the number of documents indexed by Build/Load.
func (idx *Index) Size() int { return idx.size }

// NumPivots returns the number of pivots sampled by Build.
func (idx *Index) NumPivots() int { return len(idx.pivots) }

// Build samples num_pivot pivots uniformly without replacement from
// objs, assigns every object to the posting lists of its num_prefix
// nearest pivots (computed via the space's bulk PivotIndex), and
// partitions objects into chunk_index_size-sized chunks in the order
// given (§4.7 steps 1-3). Rejects a nil object or a repeated document
// id, the same way pkg/hnsw.Insert and pkg/invidx.Build do.
func (idx *Index) Build(objs []*object.Object) error {
	if len(objs) < idx.cfg.NumPivot {
		return &simerrors.InvariantViolation{Component: "napp", Reason: "fewer objects than num_pivot to sample pivots from"}
	}

	perm := idx.rnd.Perm(len(objs))
	idx.pivots = make([]*object.Object, idx.cfg.NumPivot)
	for i := 0; i < idx.cfg.NumPivot; i++ {
		idx.pivots[i] = objs[perm[i]]
	}
	idx.pivotIdx = idx.sp.CreatePivotIndex(idx.pivots, 0)

	buf := make([]space.Dist, len(idx.pivots))
	var cur *chunk
	for _, o := range objs {
		if o == nil {
			return &simerrors.InvariantViolation{Component: "napp", Reason: "cannot index a nil object"}
		}
		if _, dup := idx.objects[o.ID()]; dup {
			return &simerrors.InvariantViolation{Component: "napp", Reason: "duplicate document id"}
		}
		idx.objects[o.ID()] = o
		if cur == nil || len(cur.docIDs) >= idx.cfg.ChunkIndexSize {
			cur = newChunk(idx.cfg.ChunkIndexSize)
			idx.chunks = append(idx.chunks, cur)
		}
		idx.pivotIdx.ComputePivotDistancesIndexTime(o, buf)
		cur.add(o.ID(), nearestPivots(buf, idx.cfg.NumPrefix))
		idx.size++
	}
	return nil
}

package hnsw

import (
	"math"
	"math/rand"
	"sync"

	"github.com/therealutkarshpriyadarshi/simsearch/pkg/object"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/simerrors"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/space"
)

// DelaunayType selects the neighbor-pruning heuristic run during build
// (§4.3's "delaunay_type"):
//
//	0 keep-nearest:    no pruning beyond truncating to the M closest.
//	1 simple RNG rule: a candidate is dropped only if it is dominated by
//	                   the single most-recently-kept neighbor.
//	2 heuristic:       a candidate is dropped if any already-kept
//	                   neighbor is closer to it than the candidate is
//	                   to the inserted object (checked against every
//	                   kept neighbor, not just the last one).
//	3 heuristic+first: as 2, but the globally nearest candidate is
//	                   always kept before the heuristic runs, guarding
//	                   against the heuristic pruning away the best edge.
type DelaunayType int

const (
	DelaunayKeepNearest DelaunayType = iota
	DelaunaySimpleRNG
	DelaunayHeuristic
	DelaunayHeuristicFirst
)

// Config holds the build/search knobs of §4.3's parameter table.
type Config struct {
	M                  int
	EfConstruction     int
	DelaunayType       DelaunayType
	Post               int // 0, 1, or 2 refinement passes after build
	SkipOptimizedIndex bool
	Seed               int64
}

// DefaultConfig returns the spec's documented defaults.
func DefaultConfig() Config {
	return Config{
		M:              16,
		EfConstruction: 200,
		DelaunayType:   DelaunayHeuristic,
		Post:           0,
		Seed:           1,
	}
}

// Validate rejects out-of-range configuration, per §7's ConfigError.
func (c Config) Validate() error {
	if c.M < 1 {
		return &simerrors.ConfigError{Key: "M", Reason: "must be >= 1"}
	}
	if c.EfConstruction < 1 {
		return &simerrors.ConfigError{Key: "efConstruction", Reason: "must be >= 1"}
	}
	if c.DelaunayType < DelaunayKeepNearest || c.DelaunayType > DelaunayHeuristicFirst {
		return &simerrors.ConfigError{Key: "delaunay_type", Reason: "must be in {0,1,2,3}"}
	}
	if c.Post < 0 || c.Post > 2 {
		return &simerrors.ConfigError{Key: "post", Reason: "must be in {0,1,2}"}
	}
	return nil
}

// Index is a layered proximity graph over one space.Space. Every
// neighbor edge is stored by integer id (Node.neighbors); the graph has
// no owning pointers between nodes. Per-node locks (Node.mu) guard
// individual neighbor lists; the index-level mutex guards only the
// nodes map, size, and entry-point/maxLevel, and is held for the
// shortest possible window, per §5's concurrency model.
type Index struct {
	sp  space.Space
	cfg Config
	m0  int     // Mmax0, the level-0 degree cap (2*M)
	ml  float64 // 1/ln(M), the level-sampling normalization factor

	mu         sync.RWMutex
	nodes      map[int32]*Node
	entryPoint int32
	hasEntry   bool
	maxLevel   int
	size       int

	rndMu sync.Mutex
	rnd   *rand.Rand

	compact *compactLayout // non-nil once Compact has run
}

// New constructs an empty index over sp with the given configuration.
func New(sp space.Space, cfg Config) (*Index, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Index{
		sp:       sp,
		cfg:      cfg,
		m0:       2 * cfg.M,
		ml:       1.0 / math.Log(float64(cfg.M)),
		nodes:    make(map[int32]*Node),
		maxLevel: -1,
		rnd:      rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// randomLevel samples a top level via floor(-ln(uniform_0_1) / ln(M)),
// per §3's HNSW graph description. Serialized on a private mutex (rather
// than the index lock) so level sampling never blocks readers.
func (idx *Index) randomLevel() int {
	idx.rndMu.Lock()
	r := idx.rnd.Float64()
	idx.rndMu.Unlock()
	for r == 0 {
		idx.rndMu.Lock()
		r = idx.rnd.Float64()
		idx.rndMu.Unlock()
	}
	return int(math.Floor(-math.Log(r) * idx.ml))
}

// Size returns the number of objects in the index.
func (idx *Index) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.size
}

// MaxLevel returns the current top level.
func (idx *Index) MaxLevel() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.maxLevel
}

func (idx *Index) getNode(id int32) *Node {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.nodes[id]
}

// EntryPoint returns the current entry point's object id and whether
// the index has any nodes at all.
func (idx *Index) EntryPoint() (int32, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.entryPoint, idx.hasEntry
}

func (idx *Index) mMax(layer int) int {
	if layer == 0 {
		return idx.m0
	}
	return idx.cfg.M
}

func (idx *Index) dist(a, b *object.Object) space.Dist { return idx.sp.Distance(a, b) }

func (idx *Index) distToNode(query *object.Object, n *Node) space.Dist { return idx.dist(n.obj, query) }

// Package collection binds one Space instance to one index instance
// (HNSW, an inverted-index variant, or NAPP) under a name, giving the
// REST layer and cmd/cli a single unit to build, insert into, and query.
// Grounded on the teacher's namespace-scoped manager shape (a name-keyed
// registry guarded by a single RWMutex), simplified because this library
// has no multi-tenant quota/usage accounting in original_source/ — just
// a "one space, one index, one dataset" unit, matching NMSLIB's
// IndexFactory bound to a single Space.
package collection

import (
	"sync"

	"github.com/therealutkarshpriyadarshi/simsearch/pkg/factory"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/hnsw"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/invidx"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/knnquery"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/napp"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/object"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/simerrors"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/space"
)

// Stats summarizes a collection's current state.
type Stats struct {
	Name    string
	Method  string
	Space   string
	Size    int
	Built   bool
	Pending int
}

// Collection binds a Space, an index method, and the objects inserted
// into it. HNSW builds incrementally (Insert grows the graph in place);
// the inverted-index variants and NAPP build in one batch pass per the
// Build contract in §4.4-4.7, so objects inserted into those methods are
// staged until Build is called.
type Collection struct {
	name   string
	sp     space.Space
	method string

	mu       sync.RWMutex
	objects  map[int32]*object.Object
	order    []int32 // insertion order, needed for invidx/NAPP Build
	nextID   int32
	built    bool

	hnswIdx *hnsw.Index
	hnswCfg hnsw.Config

	invIdx *invidx.Index

	nappIdx *napp.Index
	nappCfg napp.Config
}

// New constructs a Collection for the given space and index method.
// indexParams must be the type factory.IndexTimeParams(method, ...)
// returns for that method (hnsw.Config, napp.Config, or struct{}{}).
func New(name string, sp space.Space, method string, indexParams interface{}) (*Collection, error) {
	c := &Collection{
		name:    name,
		sp:      sp,
		method:  method,
		objects: make(map[int32]*object.Object),
	}

	switch method {
	case factory.MethodHNSW:
		cfg, ok := indexParams.(hnsw.Config)
		if !ok {
			return nil, &simerrors.ConfigError{Key: "method", Reason: "hnsw requires hnsw.Config index-time parameters"}
		}
		idx, err := hnsw.New(sp, cfg)
		if err != nil {
			return nil, err
		}
		c.hnswIdx = idx
		c.hnswCfg = cfg
		c.built = true // HNSW is always "built": empty graph accepts inserts immediately

	case factory.MethodDAAT, factory.MethodWAND, factory.MethodBMW:
		c.invIdx = invidx.New()

	case factory.MethodNAPP:
		cfg, ok := indexParams.(napp.Config)
		if !ok {
			return nil, &simerrors.ConfigError{Key: "method", Reason: "napp requires napp.Config index-time parameters"}
		}
		c.nappCfg = cfg

	default:
		return nil, &simerrors.ConfigError{Key: "method", Reason: "unknown index method: " + method}
	}

	return c, nil
}

// Name returns the collection's name.
func (c *Collection) Name() string { return c.name }

// Method returns the collection's index method.
func (c *Collection) Method() string { return c.method }

// Insert adds a new object to the collection. For HNSW it is inserted
// into the graph immediately; for the batch methods it is staged and
// Build must be called before it is reachable from Search.
func (c *Collection) Insert(label int32, data []byte) (int32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	obj := object.NewOwned(id, label, data)
	c.objects[id] = obj
	c.order = append(c.order, id)

	if c.method == factory.MethodHNSW {
		if err := c.hnswIdx.Insert(obj); err != nil {
			return 0, err
		}
	} else {
		c.built = false
	}

	return id, nil
}

// Build (re)builds the batch-built index (DAAT/WAND/BMW/NAPP) over every
// object inserted so far. It is a no-op for HNSW, which is already
// incrementally built.
func (c *Collection) Build() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buildLocked()
}

func (c *Collection) buildLocked() error {
	if c.method == factory.MethodHNSW {
		return nil
	}

	docs := make([]*object.Object, 0, len(c.order))
	for _, id := range c.order {
		docs = append(docs, c.objects[id])
	}

	switch c.method {
	case factory.MethodDAAT, factory.MethodWAND, factory.MethodBMW:
		idx := invidx.New()
		if err := idx.Build(docs); err != nil {
			return err
		}
		c.invIdx = idx
	case factory.MethodNAPP:
		idx, err := napp.New(c.sp, c.nappCfg)
		if err != nil {
			return err
		}
		if err := idx.Build(docs); err != nil {
			return err
		}
		c.nappIdx = idx
	}

	c.built = true
	return nil
}

// Search runs a k-nearest-neighbor query. queryParams must match the
// type factory.QueryTimeParams(method, ...) returns for this method
// (int for hnsw "ef" / BMW "blk_size", napp.SearchParams for NAPP,
// struct{}{} for DAAT/WAND).
func (c *Collection) Search(query *object.Object, k int, queryParams interface{}) ([]knnquery.Result, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.built {
		return nil, &simerrors.InvariantViolation{Component: "collection", Reason: "Build must be called before Search on a " + c.method + " collection"}
	}

	switch c.method {
	case factory.MethodHNSW:
		ef, _ := queryParams.(int)
		if ef <= 0 {
			ef = c.hnswCfg.EfConstruction
		}
		return c.hnswIdx.Search(query, k, ef)

	case factory.MethodDAAT:
		return c.invIdx.SearchDAAT(query, k)

	case factory.MethodWAND:
		return c.invIdx.SearchWAND(query, k)

	case factory.MethodBMW:
		blkSize, _ := queryParams.(int)
		if blkSize <= 0 {
			blkSize = 64
		}
		return c.invIdx.SearchBMW(query, k, blkSize)

	case factory.MethodNAPP:
		params, ok := queryParams.(napp.SearchParams)
		if !ok {
			params = napp.DefaultSearchParams()
		}
		return c.nappIdx.Search(query, k, params)

	default:
		return nil, &simerrors.InvariantViolation{Component: "collection", Reason: "unreachable method " + c.method}
	}
}

// RangeSearch runs a brute-force linear range query (§4.2's RangeQuery)
// over every object currently stored in the collection. None of the
// three index families specialize range search in spec.md, so this is
// the one search path that is always available regardless of method or
// build state.
func (c *Collection) RangeSearch(query *object.Object, radius space.Dist) []knnquery.Result {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rq := knnquery.NewRange(c.sp, query, radius)
	for _, id := range c.order {
		rq.CheckAndAdd(c.objects[id])
	}
	return rq.ResultsSorted()
}

// Stats reports the collection's current state.
func (c *Collection) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	size := len(c.objects)
	pending := 0
	if !c.built {
		pending = size
	}

	return Stats{
		Name:    c.name,
		Method:  c.method,
		Space:   c.sp.Name(),
		Size:    size,
		Built:   c.built,
		Pending: pending,
	}
}

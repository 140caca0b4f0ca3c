package collection

import (
	"math/rand"
	"testing"

	"github.com/therealutkarshpriyadarshi/simsearch/pkg/factory"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/hnsw"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/napp"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/object"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/space/builtin"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/sparsevec"
)

func denseVec(rng *rand.Rand, dim int) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = float32(rng.NormFloat64())
	}
	return v
}

func TestHNSWCollectionInsertAndSearch(t *testing.T) {
	sp := builtin.NewL2()
	c, err := New("dense", sp, factory.MethodHNSW, hnsw.DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		if _, err := c.Insert(object.EmptyLabel, builtin.EncodeDenseVector(denseVec(rng, 8))); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	stats := c.Stats()
	if stats.Size != 50 || !stats.Built {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	query := object.New(-1, object.EmptyLabel, builtin.EncodeDenseVector(denseVec(rng, 8)))
	results, err := c.Search(query, 5, 50)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 5 {
		t.Fatalf("got %d results, want 5", len(results))
	}
}

func TestBatchCollectionRequiresBuildBeforeSearch(t *testing.T) {
	sp := builtin.NewSparseCosine()
	c, err := New("sparse", sp, factory.MethodDAAT, struct{}{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	entries := []sparsevec.Entry{{ID: 1, Value: 1}, {ID: 2, Value: 1}}
	if _, err := c.Insert(object.EmptyLabel, builtin.EncodeSparseEntries(entries)); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	query := object.New(-1, object.EmptyLabel, builtin.EncodeSparseEntries(entries))
	if _, err := c.Search(query, 1, struct{}{}); err == nil {
		t.Fatal("expected error searching before Build")
	}

	if err := c.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}

	results, err := c.Search(query, 1, struct{}{})
	if err != nil {
		t.Fatalf("Search after Build: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}

	stats := c.Stats()
	if !stats.Built || stats.Pending != 0 {
		t.Fatalf("unexpected stats after Build: %+v", stats)
	}
}

func TestInsertAfterBuildMarksCollectionDirty(t *testing.T) {
	sp := builtin.NewSparseCosine()
	c, _ := New("sparse2", sp, factory.MethodWAND, struct{}{})

	entries := []sparsevec.Entry{{ID: 1, Value: 1}}
	c.Insert(object.EmptyLabel, builtin.EncodeSparseEntries(entries))
	if err := c.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}

	c.Insert(object.EmptyLabel, builtin.EncodeSparseEntries(entries))
	stats := c.Stats()
	if stats.Built {
		t.Fatal("expected collection to be dirty after inserting post-Build")
	}
	if stats.Pending != 2 {
		t.Fatalf("expected 2 pending objects, got %d", stats.Pending)
	}
}

func TestNAPPCollectionBuildAndSearch(t *testing.T) {
	sp := builtin.NewL2()
	cfg := napp.DefaultConfig()
	cfg.NumPivot = 8
	cfg.NumPrefix = 4
	cfg.ChunkIndexSize = 16
	c, err := New("napp-dense", sp, factory.MethodNAPP, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 40; i++ {
		c.Insert(object.EmptyLabel, builtin.EncodeDenseVector(denseVec(rng, 6)))
	}
	if err := c.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}

	query := object.New(-1, object.EmptyLabel, builtin.EncodeDenseVector(denseVec(rng, 6)))
	params := napp.DefaultSearchParams()
	// The default num_prefix_search (16) exceeds this index's 8 pivots,
	// which SearchParams.Validate rejects; use every pivot instead.
	params.NumPrefixSearch = cfg.NumPivot
	results, err := c.Search(query, 3, params)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected at least one result")
	}
}

func TestRangeSearchWorksRegardlessOfBuildState(t *testing.T) {
	sp := builtin.NewL2()
	c, _ := New("range", sp, factory.MethodDAAT, struct{}{})

	// DAAT needs sparse data; use a space-agnostic dense-friendly check
	// instead by switching to an L2 space bound to a DAAT collection is
	// nonsensical for search, but RangeSearch only needs sp.Distance, so
	// this still exercises the brute-force path pre-Build.
	rng := rand.New(rand.NewSource(3))
	v := denseVec(rng, 4)
	c.Insert(object.EmptyLabel, builtin.EncodeDenseVector(v))

	query := object.New(-1, object.EmptyLabel, builtin.EncodeDenseVector(v))
	results := c.RangeSearch(query, 0.001)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1 (exact match within radius)", len(results))
	}
}

func TestManagerCreateGetDeleteList(t *testing.T) {
	m := NewManager()
	sp := builtin.NewL2()
	c, _ := New("a", sp, factory.MethodHNSW, hnsw.DefaultConfig())

	if err := m.Create("a", c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := m.Create("a", c); err == nil {
		t.Fatal("expected ConfigError creating duplicate collection name")
	}

	if _, ok := m.Get("a"); !ok {
		t.Fatal("expected to find collection \"a\"")
	}
	if _, ok := m.Get("missing"); ok {
		t.Fatal("expected no collection named \"missing\"")
	}

	if m.Count() != 1 {
		t.Fatalf("got count %d, want 1", m.Count())
	}

	list := m.List()
	if len(list) != 1 || list[0].Name != "a" {
		t.Fatalf("unexpected list: %+v", list)
	}

	if !m.Delete("a") {
		t.Fatal("expected Delete to succeed")
	}
	if m.Delete("a") {
		t.Fatal("expected second Delete to report not found")
	}
}

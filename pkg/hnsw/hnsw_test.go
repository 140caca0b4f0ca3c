package hnsw

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/therealutkarshpriyadarshi/simsearch/pkg/object"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/space/builtin"
)

func vecObj(id int32, v []float32) *object.Object {
	return object.New(id, object.EmptyLabel, builtin.EncodeDenseVector(v))
}

func gridDataset(n int) []*object.Object {
	objs := make([]*object.Object, n)
	for i := 0; i < n; i++ {
		objs[i] = vecObj(int32(i), []float32{float32(i), float32(i % 7)})
	}
	return objs
}

func bruteForceKNN(sp interface {
	Distance(a, b *object.Object) float64
}, objs []*object.Object, query *object.Object, k int) []int32 {
	type pair struct {
		id   int32
		dist float64
	}
	pairs := make([]pair, len(objs))
	for i, o := range objs {
		pairs[i] = pair{id: o.ID(), dist: sp.Distance(o, query)}
	}
	for i := 1; i < len(pairs); i++ {
		for j := i; j > 0 && (pairs[j].dist < pairs[j-1].dist || (pairs[j].dist == pairs[j-1].dist && pairs[j].id < pairs[j-1].id)); j-- {
			pairs[j], pairs[j-1] = pairs[j-1], pairs[j]
		}
	}
	out := make([]int32, 0, k)
	for i := 0; i < k && i < len(pairs); i++ {
		out = append(out, pairs[i].id)
	}
	return out
}

func TestInsertAndSearchFindsExactNeighbor(t *testing.T) {
	sp := builtin.NewL2()
	idx, err := New(sp, DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	objs := gridDataset(200)
	if err := idx.Build(objs); err != nil {
		t.Fatalf("Build: %v", err)
	}

	query := vecObj(-1, []float32{100, 2})
	results, err := idx.Search(query, 5, 50)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 5 {
		t.Fatalf("got %d results, want 5", len(results))
	}
	want := bruteForceKNN(sp, objs, query, 5)
	match := 0
	wantSet := make(map[int32]bool, len(want))
	for _, w := range want {
		wantSet[w] = true
	}
	for _, r := range results {
		if wantSet[r.ID] {
			match++
		}
	}
	if match < 4 {
		t.Fatalf("recall too low: got %v, want overlap with %v", results, want)
	}
}

func TestSearchOnEmptyIndexReturnsNoResults(t *testing.T) {
	sp := builtin.NewL2()
	idx, err := New(sp, DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	results, err := idx.Search(vecObj(-1, []float32{0, 0}), 3, 10)
	if err != nil {
		t.Fatalf("Search on empty index returned error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("got %d results from empty index, want 0", len(results))
	}
}

func TestDuplicateIDRejected(t *testing.T) {
	sp := builtin.NewL2()
	idx, err := New(sp, DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := idx.Insert(vecObj(1, []float32{0, 0})); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := idx.Insert(vecObj(1, []float32{1, 1})); err == nil {
		t.Fatal("expected error inserting duplicate id, got nil")
	}
}

func TestNeighborListsRespectMmaxCap(t *testing.T) {
	sp := builtin.NewL2()
	cfg := DefaultConfig()
	cfg.M = 4
	idx, err := New(sp, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rng := rand.New(rand.NewSource(7))
	objs := make([]*object.Object, 150)
	for i := range objs {
		objs[i] = vecObj(int32(i), []float32{float32(rng.Intn(1000)), float32(rng.Intn(1000))})
	}
	if err := idx.Build(objs); err != nil {
		t.Fatalf("Build: %v", err)
	}
	for id, n := range idx.nodes {
		for lc := 0; lc <= n.level; lc++ {
			mMax := idx.mMax(lc)
			if got := n.NeighborCount(lc); got > mMax {
				t.Fatalf("node %d level %d has %d neighbors, want <= %d", id, lc, got, mMax)
			}
		}
	}
}

func TestDelaunayTypesAllBuildSuccessfully(t *testing.T) {
	sp := builtin.NewL2()
	objs := gridDataset(60)
	for _, dt := range []DelaunayType{DelaunayKeepNearest, DelaunaySimpleRNG, DelaunayHeuristic, DelaunayHeuristicFirst} {
		cfg := DefaultConfig()
		cfg.DelaunayType = dt
		idx, err := New(sp, cfg)
		if err != nil {
			t.Fatalf("New(delaunay_type=%d): %v", dt, err)
		}
		if err := idx.Build(objs); err != nil {
			t.Fatalf("Build(delaunay_type=%d): %v", dt, err)
		}
		if idx.Size() != len(objs) {
			t.Fatalf("delaunay_type=%d: Size() = %d, want %d", dt, idx.Size(), len(objs))
		}
	}
}

func TestDeterministicBuildForFixedSeedAndOrder(t *testing.T) {
	sp := builtin.NewL2()
	objs := gridDataset(80)

	build := func() map[int32][]int32 {
		cfg := DefaultConfig()
		cfg.Seed = 42
		idx, err := New(sp, cfg)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if err := idx.Build(objs); err != nil {
			t.Fatalf("Build: %v", err)
		}
		out := make(map[int32][]int32)
		for id, n := range idx.nodes {
			out[id] = n.GetNeighbors(0)
		}
		return out
	}

	a, b := build(), build()
	if len(a) != len(b) {
		t.Fatalf("graph sizes differ: %d vs %d", len(a), len(b))
	}
	for id, na := range a {
		nb, ok := b[id]
		if !ok || len(na) != len(nb) {
			t.Fatalf("node %d neighbor lists differ in length: %v vs %v", id, na, nb)
		}
		for i := range na {
			if na[i] != nb[i] {
				t.Fatalf("node %d neighbor lists differ at %d: %v vs %v", id, i, na, nb)
			}
		}
	}
}

func TestPostProcessingPassesPreserveSize(t *testing.T) {
	sp := builtin.NewL2()
	cfg := DefaultConfig()
	cfg.Post = 2
	idx, err := New(sp, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	objs := gridDataset(40)
	if err := idx.Build(objs); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if idx.Size() != len(objs) {
		t.Fatalf("Size() = %d, want %d", idx.Size(), len(objs))
	}
}

func TestSaveLoadRoundTripPreservesSearchBehavior(t *testing.T) {
	sp := builtin.NewL2()
	idx, err := New(sp, DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	objs := gridDataset(50)
	if err := idx.Build(objs); err != nil {
		t.Fatalf("Build: %v", err)
	}

	var buf bytes.Buffer
	if err := idx.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}

	byID := make(map[int32]*object.Object, len(objs))
	for _, o := range objs {
		byID[o.ID()] = o
	}
	loaded, err := Load(&buf, sp, byID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Size() != idx.Size() {
		t.Fatalf("loaded size = %d, want %d", loaded.Size(), idx.Size())
	}

	query := vecObj(-1, []float32{25, 3})
	want, err := idx.Search(query, 5, 50)
	if err != nil {
		t.Fatalf("Search (original): %v", err)
	}
	got, err := loaded.Search(query, 5, 50)
	if err != nil {
		t.Fatalf("Search (loaded): %v", err)
	}
	if len(want) != len(got) {
		t.Fatalf("result count differs: %d vs %d", len(want), len(got))
	}
	for i := range want {
		if want[i].ID != got[i].ID {
			t.Fatalf("result[%d] differs: %d vs %d", i, want[i].ID, got[i].ID)
		}
	}
}

func TestLoadRejectsUnknownParameter(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(magic)
	// version
	buf.Write([]byte{1, 0, 0, 0})
	blob := "M=16\nbogus_key=1\n"
	blobLen := uint32(len(blob))
	buf.Write([]byte{byte(blobLen), byte(blobLen >> 8), byte(blobLen >> 16), byte(blobLen >> 24)})
	buf.WriteString(blob)

	sp := builtin.NewL2()
	if _, err := Load(&buf, sp, nil); err == nil {
		t.Fatal("expected ConfigError for unknown parameter, got nil")
	}
}

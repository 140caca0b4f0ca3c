package invidx

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/therealutkarshpriyadarshi/simsearch/pkg/knnquery"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/object"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/space/builtin"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/sparsevec"
)

// sparseDoc builds an L2-normalized random sparse vector over
// [0, vocab), so a raw dot product between two such docs equals their
// cosine similarity — letting this suite exercise a "sparse-cosine"
// corpus (§8) without needing invidx itself to know about cosine
// normalization, which WAND/BMW's upper-bound argument doesn't support.
func sparseDoc(rng *rand.Rand, id int32, vocab, nnz int) *object.Object {
	seen := make(map[uint32]bool, nnz)
	entries := make([]sparsevec.Entry, 0, nnz)
	for len(entries) < nnz {
		term := uint32(rng.Intn(vocab))
		if seen[term] {
			continue
		}
		seen[term] = true
		entries = append(entries, sparsevec.Entry{ID: term, Value: float32(rng.Float64() + 0.01)})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	var sumSq float64
	for _, e := range entries {
		sumSq += float64(e.Value) * float64(e.Value)
	}
	norm := float32(1)
	if sumSq > 0 {
		norm = float32(1 / math.Sqrt(sumSq))
	}
	for i := range entries {
		entries[i].Value *= norm
	}
	return object.New(id, object.EmptyLabel, builtin.EncodeSparseEntries(entries))
}

func buildCorpus(n, vocab, nnz int, seed int64) []*object.Object {
	rng := rand.New(rand.NewSource(seed))
	docs := make([]*object.Object, n)
	for i := range docs {
		docs[i] = sparseDoc(rng, int32(i), vocab, nnz)
	}
	return docs
}

func TestDAATMatchesBruteForceDotProduct(t *testing.T) {
	docs := buildCorpus(300, 200, 15, 1)
	idx := New()
	if err := idx.Build(docs); err != nil {
		t.Fatalf("Build: %v", err)
	}

	rng := rand.New(rand.NewSource(2))
	query := sparseDoc(rng, -1, 200, 15)
	qEntries := builtin.DecodeSparseEntries(query.Data())

	results, err := idx.SearchDAAT(query, 5)
	if err != nil {
		t.Fatalf("SearchDAAT: %v", err)
	}
	if len(results) != 5 {
		t.Fatalf("got %d results, want 5", len(results))
	}

	want := bruteForceTop(docs, qEntries, 5)
	for i := range want {
		if want[i].ID != results[i].ID {
			t.Fatalf("result[%d] = %+v, want %+v (full want=%v got=%v)", i, results[i], want[i], want, results)
		}
		if math.Abs(want[i].Distance-results[i].Distance) > 1e-9 {
			t.Fatalf("result[%d] distance = %v, want %v", i, results[i].Distance, want[i].Distance)
		}
	}
}

func bruteForceTop(docs []*object.Object, qEntries []sparsevec.Entry, k int) []knnquery.Result {
	qvals := make(map[uint32]float64, len(qEntries))
	for _, e := range qEntries {
		qvals[e.ID] = float64(e.Value)
	}
	all := make([]knnquery.Result, 0, len(docs))
	for _, d := range docs {
		var dot float64
		for _, e := range builtin.DecodeSparseEntries(d.Data()) {
			if qv, ok := qvals[e.ID]; ok {
				dot += qv * float64(e.Value)
			}
		}
		all = append(all, knnquery.Result{ID: d.ID(), Label: d.Label(), Distance: -dot})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Distance != all[j].Distance {
			return all[i].Distance < all[j].Distance
		}
		return all[i].ID < all[j].ID
	})
	if len(all) > k {
		all = all[:k]
	}
	return all
}

func TestSearchRejectsNonPositiveK(t *testing.T) {
	idx := New()
	if err := idx.Build(buildCorpus(5, 10, 3, 3)); err != nil {
		t.Fatalf("Build: %v", err)
	}
	query := sparseDoc(rand.New(rand.NewSource(4)), -1, 10, 3)
	if _, err := idx.SearchDAAT(query, 0); err == nil {
		t.Fatal("expected ConfigError for k=0, got nil")
	}
}

func TestSearchOnOutOfVocabularyQueryReturnsNoResults(t *testing.T) {
	idx := New()
	if err := idx.Build(buildCorpus(5, 10, 3, 3)); err != nil {
		t.Fatalf("Build: %v", err)
	}
	query := object.New(-1, object.EmptyLabel, builtin.EncodeSparseEntries([]sparsevec.Entry{{ID: 999, Value: 1}}))
	results, err := idx.SearchDAAT(query, 3)
	if err != nil {
		t.Fatalf("SearchDAAT: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("got %d results for out-of-vocabulary query, want 0", len(results))
	}
}

func TestBuildRejectsDuplicateDocID(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	docs := []*object.Object{sparseDoc(rng, 1, 10, 3), sparseDoc(rng, 1, 10, 3)}
	idx := New()
	if err := idx.Build(docs); err == nil {
		t.Fatal("expected error for duplicate document id, got nil")
	}
}

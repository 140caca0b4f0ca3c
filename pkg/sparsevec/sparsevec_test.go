package sparsevec

import (
	"math/rand"
	"reflect"
	"sort"
	"testing"
)

func TestRewriteIDBijectionAvoidsBlockMultiples(t *testing.T) {
	for id := uint32(0); id < 200000; id += 37 {
		r := RewriteID(id)
		if r%blockSize == 0 {
			t.Fatalf("RewriteID(%d) = %d is a multiple of %d", id, r, blockSize)
		}
		if back := UnrewriteID(r); back != id {
			t.Fatalf("UnrewriteID(RewriteID(%d)) = %d, want %d", id, back, id)
		}
	}
}

func TestAddRemoveBlockZerosInverse(t *testing.T) {
	for id := uint32(1); id < 500000; id += 101 {
		// skip ids that are themselves multiples of 65536, as the
		// invariant requires for well-formed packed ids.
		r := RewriteID(id)
		offset, local := RemoveBlockZeros(r)
		if got := AddBlockZeros(offset, local); got != r {
			t.Fatalf("AddBlockZeros(RemoveBlockZeros(%d)) = %d, want %d", r, got, r)
		}
	}
}

func TestPackUnpackRoundTrip(t *testing.T) {
	entries := []Entry{
		{ID: 1, Value: 0.5},
		{ID: 70000, Value: 1.5},
		{ID: 70001, Value: -2.25},
		{ID: 200000, Value: 3},
	}
	v := Pack(entries)
	got := Unpack(v)
	if !reflect.DeepEqual(got, entries) {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, entries)
	}

	v2 := Pack(got)
	if !reflect.DeepEqual(v, v2) {
		t.Fatalf("pack(unpack(v)) != v")
	}
}

func randomSparseEntries(r *rand.Rand, maxID uint32, n int) []Entry {
	seen := make(map[uint32]bool)
	ids := make([]uint32, 0, n)
	for len(ids) < n {
		id := uint32(r.Intn(int(maxID)))
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	entries := make([]Entry, n)
	for i, id := range ids {
		entries[i] = Entry{ID: id, Value: r.Float32()*2 - 1}
	}
	return entries
}

func TestFastAndTextbookIntersectionAgree(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for trial := 0; trial < 50; trial++ {
		a := Pack(randomSparseEntries(r, 1_000_000, 20+r.Intn(80)))
		b := Pack(randomSparseEntries(r, 1_000_000, 20+r.Intn(80)))

		fastN, fastDot := DotFast(a, b)
		textN, textDot := DotTextbook(a, b)

		if fastN != textN {
			t.Fatalf("trial %d: intersection size mismatch: fast=%d textbook=%d", trial, fastN, textN)
		}
		if diff := fastDot - textDot; diff > 1e-5 || diff < -1e-5 {
			t.Fatalf("trial %d: dot mismatch: fast=%g textbook=%g", trial, fastDot, textDot)
		}
	}
}

func TestThreeWayIntersectionConsistentWithPairwise(t *testing.T) {
	a := Pack([]Entry{{ID: 1, Value: 1}, {ID: 2, Value: 1}, {ID: 3, Value: 1}})
	b := Pack([]Entry{{ID: 2, Value: 1}, {ID: 3, Value: 1}, {ID: 4, Value: 1}})
	c := Pack([]Entry{{ID: 3, Value: 1}, {ID: 4, Value: 1}})

	got := ThreeWayIntersectionSize(a, b, c)
	if got != 1 { // only id 3 is common to all three
		t.Fatalf("three-way intersection = %d, want 1", got)
	}

	abN, _ := DotTextbook(a, b)
	if abN != 2 {
		t.Fatalf("pairwise a/b intersection = %d, want 2", abN)
	}
}

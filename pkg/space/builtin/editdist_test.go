package builtin

import (
	"strings"
	"testing"
)

var shortStrings = []string{
	"xyz", "beagcfa", "cea", "cb",
	"d", "c", "bdaf", "ddcd",
	"egbfa", "a", "fba", "bcccfe",
	"ab", "bfgbfdc", "bcbbgf", "bfbb",
}

var shortStringExpected = [16][16]int{
	{0, 7, 3, 3, 3, 3, 4, 4, 5, 3, 3, 6, 3, 7, 6, 4},
	{7, 0, 5, 6, 7, 6, 4, 6, 3, 6, 6, 4, 6, 5, 5, 6},
	{3, 5, 0, 2, 3, 2, 3, 4, 4, 2, 2, 5, 3, 7, 5, 4},
	{3, 6, 2, 0, 2, 1, 4, 3, 4, 2, 2, 5, 1, 6, 4, 3},
	{3, 7, 3, 2, 0, 1, 3, 3, 5, 1, 3, 6, 2, 6, 6, 4},
	{3, 6, 2, 1, 1, 0, 4, 3, 5, 1, 3, 5, 2, 6, 5, 4},
	{4, 4, 3, 4, 3, 4, 0, 3, 4, 3, 3, 4, 3, 5, 4, 3},
	{4, 6, 4, 3, 3, 3, 3, 0, 5, 4, 4, 5, 4, 6, 6, 4},
	{5, 3, 4, 4, 5, 5, 4, 5, 0, 4, 3, 5, 4, 4, 5, 4},
	{3, 6, 2, 2, 1, 1, 3, 4, 4, 0, 2, 6, 1, 7, 6, 4},
	{3, 6, 2, 2, 3, 3, 3, 4, 3, 2, 0, 6, 2, 5, 5, 2},
	{6, 4, 5, 5, 6, 5, 4, 5, 5, 6, 6, 0, 6, 5, 4, 5},
	{3, 6, 3, 1, 2, 2, 3, 4, 4, 1, 2, 6, 0, 6, 5, 3},
	{7, 5, 7, 6, 6, 6, 5, 6, 4, 7, 5, 5, 6, 0, 5, 4},
	{6, 5, 5, 4, 6, 5, 4, 6, 5, 6, 5, 4, 5, 5, 0, 3},
	{4, 6, 4, 3, 4, 4, 3, 4, 4, 4, 2, 5, 3, 4, 3, 0},
}

func TestEditDistanceShortMatrix(t *testing.T) {
	for i, a := range shortStrings {
		for j, b := range shortStrings {
			got := levenshtein([]byte(a), []byte(b))
			if got != shortStringExpected[i][j] {
				t.Fatalf("leven(%q,%q) = %d, want %d", a, b, got, shortStringExpected[i][j])
			}
		}
	}
}

func TestEditDistanceKnownPairs(t *testing.T) {
	if got := levenshtein([]byte("xyz"), []byte("beagcfa")); got != 7 {
		t.Fatalf("leven(xyz,beagcfa) = %d, want 7", got)
	}
	if got := levenshtein([]byte("d"), []byte("c")); got != 1 {
		t.Fatalf("leven(d,c) = %d, want 1", got)
	}
}

const maxLevenBufferQty = 512

func TestEditDistanceLongStrings(t *testing.T) {
	str1 := strings.Repeat("a", maxLevenBufferQty+1)
	str2 := strings.Repeat("c", maxLevenBufferQty) + str1 + strings.Repeat("b", maxLevenBufferQty)

	want := 2 * maxLevenBufferQty
	if got := levenshtein([]byte(str1), []byte(str2)); got != want {
		t.Fatalf("leven(long) = %d, want %d", got, want)
	}
	if got := levenshtein([]byte(str2), []byte(str1)); got != want {
		t.Fatalf("leven(long reversed) = %d, want %d", got, want)
	}
}

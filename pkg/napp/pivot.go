package napp

import (
	"sort"

	"github.com/therealutkarshpriyadarshi/simsearch/pkg/space"
)

// nearestPivots returns the indices into dists of its n smallest
// values, ascending by distance — the object's (or query's) pivot
// neighborhood (§4.7 steps 2 and 5).
func nearestPivots(dists []space.Dist, n int) []int32 {
	order := make([]int, len(dists))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return dists[order[i]] < dists[order[j]] })
	if n > len(order) {
		n = len(order)
	}
	out := make([]int32, n)
	for i := 0; i < n; i++ {
		out[i] = int32(order[i])
	}
	return out
}

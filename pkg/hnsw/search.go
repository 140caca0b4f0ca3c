package hnsw

import (
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/knnquery"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/object"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/simerrors"
)

// Search returns the approximate k nearest neighbors of query, per
// §4.3's search contract: greedy-descend from the entry point down to
// level 1, then run an ef-width beam search at level 0 and return its
// top k. ef is raised to k if given smaller, matching the contract's
// "ef (search beam width, >= k)".
//
// Searches never fail on an empty index; they just return no results.
func (idx *Index) Search(query *object.Object, k, ef int) ([]knnquery.Result, error) {
	if k <= 0 {
		return nil, &simerrors.ConfigError{Key: "k", Reason: "must be >= 1"}
	}
	if ef < k {
		ef = k
	}
	entryID, ok := idx.EntryPoint()
	if !ok {
		return nil, nil
	}
	idx.mu.RLock()
	topLevel := idx.maxLevel
	idx.mu.RUnlock()

	ep := idx.getNode(entryID)
	if ep == nil {
		return nil, nil
	}
	epDist := idx.distToNode(query, ep)
	for lc := topLevel; lc > 0; lc-- {
		ep, epDist = idx.greedyDescend(query, ep, epDist, lc)
	}

	candidates := idx.searchLayer(query, ep, ef, 0)
	q := knnquery.New(idx.sp, query, k, 0)
	for _, c := range candidates {
		n := idx.getNode(c.id)
		if n == nil {
			continue
		}
		q.CheckAndAddDistance(c.dist, n.obj)
	}
	return q.ResultsSorted(), nil
}

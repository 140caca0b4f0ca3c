package hnsw

import (
	"sort"

	"github.com/therealutkarshpriyadarshi/simsearch/pkg/object"
)

// Build inserts every object in turn and then, per cfg.Post, runs that
// many refinement passes before optionally compacting the index. It is
// a convenience wrapper around Insert for callers that have the whole
// corpus up front; concurrent/streaming callers can call Insert directly.
func (idx *Index) Build(objs []*object.Object) error {
	for _, o := range objs {
		if err := idx.Insert(o); err != nil {
			return err
		}
	}
	for pass := 0; pass < idx.cfg.Post; pass++ {
		idx.runRefinementPass()
	}
	if !idx.cfg.SkipOptimizedIndex {
		idx.Compact()
	}
	return nil
}

// runRefinementPass re-derives every node's neighbor lists from a fresh
// efConstruction-width beam search against the graph as it stands,
// rather than as it stood at insertion time. Early insertions only ever
// saw a small, still-growing graph; a refinement pass lets them
// reconsider neighbors that arrived later. Ids are visited in ascending
// order so a fixed seed and insertion order still produce a
// deterministic result (§8's "identical configurations... produce an
// identical graph").
func (idx *Index) runRefinementPass() {
	idx.mu.RLock()
	ids := make([]int32, 0, len(idx.nodes))
	for id := range idx.nodes {
		ids = append(ids, id)
	}
	idx.mu.RUnlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		n := idx.getNode(id)
		if n == nil {
			continue
		}
		entryID, ok := idx.EntryPoint()
		if !ok || entryID == id {
			continue
		}
		ep := idx.getNode(entryID)
		if ep == nil {
			continue
		}
		epDist := idx.distToNode(n.obj, ep)
		idx.mu.RLock()
		topLevel := idx.maxLevel
		idx.mu.RUnlock()
		for lc := topLevel; lc > n.level; lc-- {
			ep, epDist = idx.greedyDescend(n.obj, ep, epDist, lc)
		}
		for lc := n.level; lc >= 0; lc-- {
			m := idx.cfg.M
			if lc == 0 {
				m = idx.m0
			}
			candidates := idx.searchLayer(n.obj, ep, idx.cfg.EfConstruction, lc)
			refined := make([]candidate, 0, len(candidates))
			for _, c := range candidates {
				if c.id != id {
					refined = append(refined, c)
				}
			}
			n.SetNeighbors(lc, idx.selectNeighbors(n.obj, refined, m))
			if len(candidates) > 0 {
				ep = idx.getNode(candidates[0].id)
			}
		}
	}
}

package hnsw

import (
	"container/heap"

	"github.com/therealutkarshpriyadarshi/simsearch/pkg/object"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/simerrors"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/space"
)

// Insert adds obj to the graph, following §4.3's build algorithm:
// sample a level, greedy-descend to it from the current entry point,
// then at each level from there down to 0 run an efConstruction-width
// beam search and prune its result to at most M (Mmax0 at level 0)
// neighbors via the configured heuristic, linking bidirectionally.
func (idx *Index) Insert(obj *object.Object) error {
	if obj == nil {
		return &simerrors.InvariantViolation{Component: "hnsw", Reason: "cannot insert a nil object"}
	}
	level := idx.randomLevel()
	newNode := newNode(obj, level)

	idx.mu.Lock()
	if _, exists := idx.nodes[obj.ID()]; exists {
		idx.mu.Unlock()
		return &simerrors.InvariantViolation{Component: "hnsw", Reason: "duplicate object id"}
	}
	if !idx.hasEntry {
		idx.nodes[obj.ID()] = newNode
		idx.entryPoint = obj.ID()
		idx.hasEntry = true
		idx.maxLevel = level
		idx.size++
		idx.mu.Unlock()
		return nil
	}
	// Register the node before linking so that pruneIfOversize on a
	// neighbor can see it and keep the back-link when it deserves to.
	idx.nodes[obj.ID()] = newNode
	entryID := idx.entryPoint
	topLevel := idx.maxLevel
	idx.mu.Unlock()

	// Phase 1: greedy descent from the top level to level+1, without
	// expanding the candidate set — just follow the closest neighbor.
	ep := idx.getNode(entryID)
	epDist := idx.distToNode(obj, ep)
	for lc := topLevel; lc > level; lc-- {
		ep, epDist = idx.greedyDescend(obj, ep, epDist, lc)
	}

	// Phase 2: beam search + prune + link at each level from
	// min(level, topLevel) down to 0.
	startLevel := level
	if topLevel < startLevel {
		startLevel = topLevel
	}
	for lc := startLevel; lc >= 0; lc-- {
		candidates := idx.searchLayer(obj, ep, idx.cfg.EfConstruction, lc)
		if len(candidates) == 0 {
			continue
		}
		m := idx.cfg.M
		if lc == 0 {
			m = idx.m0
		}
		neighbors := idx.selectNeighbors(obj, candidates, m)

		for _, nb := range neighbors {
			nbNode := idx.getNode(nb)
			if nbNode == nil {
				continue
			}
			newNode.AddNeighbor(lc, nb)
			nbNode.AddNeighbor(lc, obj.ID())
			idx.pruneIfOversize(nbNode, lc)
		}
		ep = idx.getNode(candidates[0].id)
	}

	idx.mu.Lock()
	if level > idx.maxLevel {
		idx.maxLevel = level
		idx.entryPoint = obj.ID()
	}
	idx.size++
	idx.mu.Unlock()

	return nil
}

// greedyDescend repeatedly moves to the neighbor of ep (at layer lc)
// closest to obj until no neighbor improves on the current distance.
func (idx *Index) greedyDescend(obj *object.Object, ep *Node, epDist space.Dist, lc int) (*Node, space.Dist) {
	changed := true
	for changed {
		changed = false
		for _, nid := range idx.neighborsAt(ep, lc) {
			n := idx.getNode(nid)
			if n == nil {
				continue
			}
			d := idx.distToNode(obj, n)
			if d < epDist {
				epDist = d
				ep = n
				changed = true
			}
		}
	}
	return ep, epDist
}

// searchLayer runs a best-first beam search of width ef at layer lc,
// starting from entry, and returns the results ascending by distance
// (closest first), per §4.3 step 3.
func (idx *Index) searchLayer(query *object.Object, entry *Node, ef int, lc int) []candidate {
	visited := map[int32]bool{entry.ID(): true}
	candidates := &minCandidateHeap{}
	results := &maxCandidateHeap{}

	d0 := idx.distToNode(query, entry)
	heap.Push(candidates, candidate{id: entry.ID(), dist: d0})
	heap.Push(results, candidate{id: entry.ID(), dist: d0})

	for candidates.Len() > 0 {
		cur := heap.Pop(candidates).(candidate)
		if cur.dist > results.peek().dist && results.Len() >= ef {
			break
		}
		curNode := idx.getNode(cur.id)
		if curNode == nil {
			continue
		}
		for _, nid := range idx.neighborsAt(curNode, lc) {
			if visited[nid] {
				continue
			}
			visited[nid] = true
			n := idx.getNode(nid)
			if n == nil {
				continue
			}
			d := idx.distToNode(query, n)
			if results.Len() < ef || d < results.peek().dist {
				heap.Push(candidates, candidate{id: nid, dist: d})
				heap.Push(results, candidate{id: nid, dist: d})
				if results.Len() > ef {
					heap.Pop(results)
				}
			}
		}
	}

	out := make([]candidate, results.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(results).(candidate)
	}
	return out
}

// selectNeighbors prunes candidates (already ascending by distance to
// obj) to at most m, dispatching on the configured delaunay_type.
func (idx *Index) selectNeighbors(obj *object.Object, candidates []candidate, m int) []int32 {
	if len(candidates) <= m {
		out := make([]int32, len(candidates))
		for i, c := range candidates {
			out[i] = c.id
		}
		return out
	}
	switch idx.cfg.DelaunayType {
	case DelaunaySimpleRNG:
		return idx.selectSimpleRNG(candidates, m)
	case DelaunayHeuristic:
		return idx.selectHeuristic(candidates, m, false)
	case DelaunayHeuristicFirst:
		return idx.selectHeuristic(candidates, m, true)
	default: // DelaunayKeepNearest
		out := make([]int32, m)
		for i := 0; i < m; i++ {
			out[i] = candidates[i].id
		}
		return out
	}
}

// selectSimpleRNG keeps a candidate unless it is dominated by the
// single most-recently-kept neighbor (cheaper than checking against
// every kept neighbor): dropped when dist(c, lastKept) < dist(obj, c).
func (idx *Index) selectSimpleRNG(candidates []candidate, m int) []int32 {
	kept := make([]*Node, 0, m)
	out := make([]int32, 0, m)
	for _, c := range candidates {
		if len(out) >= m {
			break
		}
		node := idx.getNode(c.id)
		if node == nil {
			continue
		}
		if len(kept) > 0 {
			last := kept[len(kept)-1]
			if idx.dist(last.obj, node.obj) < c.dist {
				continue
			}
		}
		kept = append(kept, node)
		out = append(out, c.id)
	}
	return idx.padWithNearest(out, candidates, m)
}

// selectHeuristic implements §4.3 step 4's heuristic exactly: scanning
// candidates in ascending distance to obj, keep c only if for every
// already-kept k, distance(c, obj) < distance(c, k). When forceFirst is
// set, the globally nearest candidate is always kept first.
func (idx *Index) selectHeuristic(candidates []candidate, m int, forceFirst bool) []int32 {
	kept := make([]*Node, 0, m)
	out := make([]int32, 0, m)
	start := 0
	if forceFirst && len(candidates) > 0 {
		node := idx.getNode(candidates[0].id)
		if node != nil {
			kept = append(kept, node)
			out = append(out, candidates[0].id)
		}
		start = 1
	}
	for _, c := range candidates[start:] {
		if len(out) >= m {
			break
		}
		node := idx.getNode(c.id)
		if node == nil {
			continue
		}
		ok := true
		for _, k := range kept {
			if c.dist >= idx.dist(node.obj, k.obj) {
				ok = false
				break
			}
		}
		if ok {
			kept = append(kept, node)
			out = append(out, c.id)
		}
	}
	return idx.padWithNearest(out, candidates, m)
}

// padWithNearest fills out up to m entries with the closest remaining
// candidates not already selected, so a heuristic that prunes
// aggressively still leaves a node with as close to m neighbors as the
// candidate set allows (NMSLIB's HNSW does the same: the heuristic
// bounds degree from above, it does not guarantee hitting it).
func (idx *Index) padWithNearest(out []int32, candidates []candidate, m int) []int32 {
	if len(out) >= m {
		return out
	}
	present := make(map[int32]bool, len(out))
	for _, id := range out {
		present[id] = true
	}
	for _, c := range candidates {
		if len(out) >= m {
			break
		}
		if !present[c.id] {
			out = append(out, c.id)
			present[c.id] = true
		}
	}
	return out
}

// pruneIfOversize re-selects n's level-lc neighbor list down to Mmax(lc)
// using the same heuristic, if it has grown past the cap.
func (idx *Index) pruneIfOversize(n *Node, lc int) {
	mMax := idx.mMax(lc)
	current := n.GetNeighbors(lc)
	if len(current) <= mMax {
		return
	}
	candidates := make([]candidate, 0, len(current))
	for _, id := range current {
		other := idx.getNode(id)
		if other == nil {
			continue
		}
		candidates = append(candidates, candidate{id: id, dist: idx.dist(n.obj, other.obj)})
	}
	sortCandidatesAscending(candidates)
	pruned := idx.selectNeighbors(n.obj, candidates, mMax)
	n.SetNeighbors(lc, pruned)
}

func sortCandidatesAscending(c []candidate) {
	for i := 1; i < len(c); i++ {
		for j := i; j > 0 && c[j].dist < c[j-1].dist; j-- {
			c[j], c[j-1] = c[j-1], c[j]
		}
	}
}

// Package hnsw implements the Hierarchical Navigable Small World graph
// index (§4.3): a layered proximity graph built over any space.Space,
// searched with an ef-width beam and built with an efConstruction-width
// beam plus one of four neighbor-pruning heuristics.
package hnsw

import (
	"sync"

	"github.com/therealutkarshpriyadarshi/simsearch/pkg/object"
)

// Node is one inserted object's place in the graph. The graph itself
// stores only integer ids between nodes (§3's "Cyclic graphs" design
// note) — neighbors are never *Node pointers, only ids looked up through
// Index.getNode — so there are no owning pointers to keep acyclic.
type Node struct {
	id        int32
	obj       *object.Object
	level     int
	neighbors [][]int32 // neighbors[l] is this node's neighbor list at level l
	mu        sync.RWMutex
}

func newNode(obj *object.Object, level int) *Node {
	neighbors := make([][]int32, level+1)
	for l := range neighbors {
		neighbors[l] = make([]int32, 0)
	}
	return &Node{id: obj.ID(), obj: obj, level: level, neighbors: neighbors}
}

// ID returns the node's object id.
func (n *Node) ID() int32 { return n.id }

// Object returns the object this node was built from.
func (n *Node) Object() *object.Object { return n.obj }

// Level returns the node's top level.
func (n *Node) Level() int { return n.level }

// AddNeighbor appends neighborID to the level-l list if not already
// present. No-op if layer is out of range.
func (n *Node) AddNeighbor(layer int, neighborID int32) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if layer < 0 || layer > n.level {
		return
	}
	for _, id := range n.neighbors[layer] {
		if id == neighborID {
			return
		}
	}
	n.neighbors[layer] = append(n.neighbors[layer], neighborID)
}

// GetNeighbors returns a copy of the level-l neighbor list.
func (n *Node) GetNeighbors(layer int) []int32 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if layer < 0 || layer > n.level {
		return nil
	}
	out := make([]int32, len(n.neighbors[layer]))
	copy(out, n.neighbors[layer])
	return out
}

// SetNeighbors replaces the level-l neighbor list wholesale; used by the
// pruning heuristics, which recompute the list from scratch rather than
// removing entries one at a time.
func (n *Node) SetNeighbors(layer int, ids []int32) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if layer < 0 || layer > n.level {
		return
	}
	cp := make([]int32, len(ids))
	copy(cp, ids)
	n.neighbors[layer] = cp
}

// NeighborCount returns the level-l neighbor list length.
func (n *Node) NeighborCount(layer int) int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if layer < 0 || layer > n.level {
		return 0
	}
	return len(n.neighbors[layer])
}

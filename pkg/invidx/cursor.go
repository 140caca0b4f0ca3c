package invidx

// cursor walks one query term's posting list in ascending doc-id order.
type cursor struct {
	termID     uint32
	qval       float64
	pl         *postingList
	pos        int
	maxContrib float64 // qval * term's whole-list max value (WAND bound)
	blocks     []block // query-time block partition (BMW only), nil otherwise
	blockIdx   int
}

func (c *cursor) docID() int32   { return c.pl.postings[c.pos].docID }
func (c *cursor) value() float64 { return c.pl.postings[c.pos].value }
func (c *cursor) done() bool     { return c.pos >= len(c.pl.postings) }

// advance moves to the next posting, keeping blockIdx in sync with pos
// when this cursor carries a block partition.
func (c *cursor) advance() {
	c.pos++
	if c.blocks == nil || c.done() {
		return
	}
	for c.blockIdx < len(c.blocks)-1 && c.pos > c.blocks[c.blockIdx].end {
		c.blockIdx++
	}
}

// blockMaxContrib returns qval times the max value of the block
// currently under this cursor — a bound at least as tight as
// maxContrib, and strictly tighter whenever the term's values vary
// across blocks. Falls back to maxContrib if no block partition was
// built (plain WAND).
func (c *cursor) blockMaxContrib() float64 {
	if c.blocks == nil {
		return c.maxContrib
	}
	return c.qval * c.blocks[c.blockIdx].maxValue
}

// cursorHeap is a min-heap over cursors ordered by ascending current
// doc id — the document-at-a-time merge order — tie-broken by term id
// for determinism.
type cursorHeap []*cursor

func (h cursorHeap) Len() int { return len(h) }
func (h cursorHeap) Less(i, j int) bool {
	di, dj := h[i].docID(), h[j].docID()
	if di != dj {
		return di < dj
	}
	return h[i].termID < h[j].termID
}
func (h cursorHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *cursorHeap) Push(x any)   { *h = append(*h, x.(*cursor)) }
func (h *cursorHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

package napp

// chunk is a chunk_index_size-sized slice of the dataset, in Build
// order, together with a per-pivot posting list of local positions
// within the chunk (§4.7: data is partitioned into chunks so the
// ScanCount auxiliary array stays small and cache-resident). postings
// is keyed by the pivot's index into Index.pivots, not by object id.
type chunk struct {
	docIDs   []int32
	postings map[int32][]int32
}

func newChunk(capacityHint int) *chunk {
	return &chunk{
		docIDs:   make([]int32, 0, capacityHint),
		postings: make(map[int32][]int32),
	}
}

// add appends docID to the chunk and records its position on every
// pivot in pivotIdxs's posting list. Since objects are only ever
// appended in increasing position order, each posting list comes out
// sorted ascending for free.
func (c *chunk) add(docID int32, pivotIdxs []int32) {
	pos := int32(len(c.docIDs))
	c.docIDs = append(c.docIDs, docID)
	for _, p := range pivotIdxs {
		c.postings[p] = append(c.postings[p], pos)
	}
}

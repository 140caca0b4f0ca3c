// Package invidx implements the sparse inverted-index family of §4.4-4.6:
// a plain document-at-a-time (DAAT) scorer, WAND's per-term
// max-contribution pruning, and Block-Max WAND's tighter per-block
// bounds. All three operate over the same term -> posting-list map and
// score documents by (negated) dot product, matching
// builtin.NewSparseScalarProduct's space.Dist convention — like the
// source this is grounded on, this family only supports the raw
// dot-product space, not cosine (cosine's per-document normalization
// breaks the single-term upper-bound argument WAND/BMW rely on).
package invidx

import (
	"sort"

	"github.com/therealutkarshpriyadarshi/simsearch/pkg/object"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/simerrors"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/space/builtin"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/sparsevec"
)

type posting struct {
	docID int32
	value float64
}

// postingList holds one term's (docID, value) entries in ascending
// docID order, plus the term's max value (WAND's max_contribution,
// before multiplying in the query value).
type postingList struct {
	postings []posting
	maxValue float64
}

// block is a blk_size-entry chunk of a postingList, computed at query
// time (§6: blk_size is a query-time, not index-time, parameter) for
// SearchBMW.
type block struct {
	end       int // index into postingList.postings of this block's last entry
	lastDocID int32
	maxValue  float64
}

// Index is the term -> posting-list map behind SearchDAAT/SearchWAND/
// SearchBMW. It also keeps the indexed objects themselves (unlike
// pkg/hnsw, which discards payloads and expects them back on Load) so
// a match can be reported through knnquery.KnnQuery, which needs the
// matched *object.Object to fill in a Result's id and label.
type Index struct {
	postings map[uint32]*postingList
	objects  map[int32]*object.Object
	docCount int
}

// New returns an empty Index ready for Build.
func New() *Index {
	return &Index{postings: make(map[uint32]*postingList), objects: make(map[int32]*object.Object)}
}

// Build indexes docs, one posting per (term, doc) pair found in each
// doc's sparse entries (builtin.EncodeSparseEntries payloads). Rejects
// a nil object or a repeated document id, the same way pkg/hnsw.Insert
// rejects a repeated object id.
func (idx *Index) Build(docs []*object.Object) error {
	seen := make(map[int32]bool, len(docs))
	for _, d := range docs {
		if d == nil {
			return &simerrors.InvariantViolation{Component: "invidx", Reason: "cannot index a nil object"}
		}
		if seen[d.ID()] {
			return &simerrors.InvariantViolation{Component: "invidx", Reason: "duplicate document id"}
		}
		seen[d.ID()] = true
		idx.objects[d.ID()] = d
		for _, e := range builtin.DecodeSparseEntries(d.Data()) {
			pl, ok := idx.postings[e.ID]
			if !ok {
				pl = &postingList{}
				idx.postings[e.ID] = pl
			}
			pl.postings = append(pl.postings, posting{docID: d.ID(), value: float64(e.Value)})
		}
		idx.docCount++
	}
	for _, pl := range idx.postings {
		sort.Slice(pl.postings, func(i, j int) bool { return pl.postings[i].docID < pl.postings[j].docID })
		var maxV float64
		for _, p := range pl.postings {
			if p.value > maxV {
				maxV = p.value
			}
		}
		pl.maxValue = maxV
	}
	return nil
}

// DocCount returns the number of documents indexed by Build.
func (idx *Index) DocCount() int { return idx.docCount }

// VocabSize returns the number of distinct term ids with a non-empty
// posting list.
func (idx *Index) VocabSize() int { return len(idx.postings) }

// openCursors returns one cursor per query term present in the index,
// each positioned at its posting list's first entry. blockSize > 0
// additionally partitions each opened term's list into query-time
// blocks for SearchBMW.
func (idx *Index) openCursors(terms []sparsevec.Entry, blockSize int) []*cursor {
	cursors := make([]*cursor, 0, len(terms))
	for _, t := range terms {
		pl, ok := idx.postings[t.ID]
		if !ok || len(pl.postings) == 0 {
			continue
		}
		qval := float64(t.Value)
		c := &cursor{termID: t.ID, qval: qval, pl: pl, maxContrib: qval * pl.maxValue}
		if blockSize > 0 {
			c.blocks = computeBlocks(pl, blockSize)
		}
		cursors = append(cursors, c)
	}
	return cursors
}

// computeBlocks partitions pl into fixed-size blocks of blockSize
// entries (the last block may be shorter), recording each block's last
// doc id and max value, per §4.6.
func computeBlocks(pl *postingList, blockSize int) []block {
	n := len(pl.postings)
	blocks := make([]block, 0, (n+blockSize-1)/blockSize)
	for start := 0; start < n; start += blockSize {
		end := start + blockSize - 1
		if end >= n {
			end = n - 1
		}
		maxV := pl.postings[start].value
		for i := start + 1; i <= end; i++ {
			if pl.postings[i].value > maxV {
				maxV = pl.postings[i].value
			}
		}
		blocks = append(blocks, block{end: end, lastDocID: pl.postings[end].docID, maxValue: maxV})
	}
	return blocks
}

package invidx

import (
	"container/heap"

	"github.com/therealutkarshpriyadarshi/simsearch/pkg/knnquery"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/object"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/simerrors"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/space/builtin"
)

// DefaultBlockSize is blk_size's default, per §6's parameter table.
const DefaultBlockSize = 64

// SearchBMW extends SearchWAND with per-block maxima (§4.6). Each
// query term's posting list is partitioned, at query time, into
// blockSize-entry blocks (blk_size is a query-time parameter, not an
// index-time one, per §6 — nothing about block boundaries is persisted
// in Index), and the pruning bound for a term uses the max value of
// the block currently under its cursor instead of the whole list's
// max: a strictly tighter bound whenever the term's weights vary
// across the list. blockSize <= 0 defaults to DefaultBlockSize.
func (idx *Index) SearchBMW(query *object.Object, k, blockSize int) ([]knnquery.Result, error) {
	if k < 1 {
		return nil, &simerrors.ConfigError{Key: "k", Reason: "must be >= 1"}
	}
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	terms := builtin.DecodeSparseEntries(query.Data())
	cursors := idx.openCursors(terms, blockSize)
	if len(cursors) == 0 {
		return nil, nil
	}
	h := make(cursorHeap, len(cursors))
	copy(h, cursors)
	heap.Init(&h)

	q := knnquery.New(scoreSpace, query, k, 0)
	group := make([]*cursor, 0, len(cursors))
	for h.Len() > 0 {
		minDoc := h[0].docID()
		group = group[:0]
		var upperBound float64
		for h.Len() > 0 && h[0].docID() == minDoc {
			c := h[0]
			group = append(group, c)
			upperBound += c.blockMaxContrib()
			c.advance()
			if c.done() {
				heap.Pop(&h)
			} else {
				heap.Fix(&h, 0)
			}
		}
		if -upperBound >= q.Radius() {
			continue
		}
		var accum float64
		for _, c := range group {
			accum += c.qval * c.pl.postings[c.pos-1].value
		}
		q.CheckAndAddDistance(-accum, idx.objects[minDoc])
	}
	return q.ResultsSorted(), nil
}

package invidx

import (
	"container/heap"

	"github.com/therealutkarshpriyadarshi/simsearch/pkg/knnquery"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/object"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/simerrors"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/space/builtin"
)

// SearchWAND extends SearchDAAT with per-term max-contribution pruning
// (§4.5). It merges the same way, document-at-a-time, but before
// computing the exact dot-product contribution for the document
// currently at the merge pivot, it sums the term-level upper bounds
// (max_contribution[term] * qval) of only the cursors pointing at that
// document. If that upper bound cannot beat q.Radius() (the current
// worst kept distance, +Inf until the result set fills to k), the
// exact contribution is skipped — cursors still advance past the
// document exactly as in SearchDAAT, so both visit the same documents
// in the same order and agree on the final top-k (§8).
func (idx *Index) SearchWAND(query *object.Object, k int) ([]knnquery.Result, error) {
	if k < 1 {
		return nil, &simerrors.ConfigError{Key: "k", Reason: "must be >= 1"}
	}
	terms := builtin.DecodeSparseEntries(query.Data())
	cursors := idx.openCursors(terms, 0)
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
			upperBound += c.maxContrib
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

package invidx

import (
	"container/heap"

	"github.com/therealutkarshpriyadarshi/simsearch/pkg/knnquery"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/object"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/simerrors"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/space/builtin"
)

// SearchDAAT scores every document sharing at least one term with
// query by merging the query's posting lists document-at-a-time (§4.4)
// — one priority-queue pop per posting, grouped by doc id — and returns
// the k closest documents by distance (= -dot product). A query whose
// terms are all out of vocabulary returns (nil, nil): searches never
// fail, they just find nothing.
func (idx *Index) SearchDAAT(query *object.Object, k int) ([]knnquery.Result, error) {
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
	for h.Len() > 0 {
		minDoc := h[0].docID()
		var accum float64
		for h.Len() > 0 && h[0].docID() == minDoc {
			c := h[0]
			accum += c.qval * c.value()
			c.advance()
			if c.done() {
				heap.Pop(&h)
			} else {
				heap.Fix(&h, 0)
			}
		}
		q.CheckAndAddDistance(-accum, idx.objects[minDoc])
	}
	return q.ResultsSorted(), nil
}

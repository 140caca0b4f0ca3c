package napp

import (
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/knnquery"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/object"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/simerrors"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/space"
)

// InvProcAlg selects the posting-processing strategy used to turn a
// chunk's per-pivot posting lists into overlap counts (§4.7's
// "Posting processing variants" table).
type InvProcAlg int

const (
	ProcScan InvProcAlg = iota
	ProcMap
	ProcMerge
	ProcPriorQueue
	ProcWAND
)

// SearchParams holds NAPP's query-time parameters (§6), set
// independently of Config.
type SearchParams struct {
	NumPrefixSearch int
	MinTimes        int
	DbScanFrac      float64
	KnnAmp          int
	InvProcAlg      InvProcAlg
	SkipChecking    bool
}

// DefaultSearchParams returns NAPP's default query-time parameters.
func DefaultSearchParams() SearchParams {
	return SearchParams{NumPrefixSearch: 16, MinTimes: 2, DbScanFrac: 0.05, InvProcAlg: ProcScan}
}

// Validate rejects an out-of-range SearchParams given the index's
// pivot count.
func (p SearchParams) Validate(numPivot int) error {
	if p.NumPrefixSearch < 1 || p.NumPrefixSearch > numPivot {
		return &simerrors.ConfigError{Key: "num_prefix_search", Reason: "must be in [1, num_pivot]"}
	}
	if p.MinTimes < 1 {
		return &simerrors.ConfigError{Key: "min_times", Reason: "must be >= 1"}
	}
	if p.KnnAmp <= 0 && (p.DbScanFrac <= 0 || p.DbScanFrac > 1) {
		return &simerrors.ConfigError{Key: "db_scan_frac", Reason: "must be in (0, 1] when knn_amp is not set"}
	}
	if p.InvProcAlg < ProcScan || p.InvProcAlg > ProcWAND {
		return &simerrors.ConfigError{Key: "inv_proc_alg", Reason: "unknown posting-processing algorithm"}
	}
	return nil
}

// Candidate is one NAPP match before true-distance verification: a
// document id and how many of the query's num_prefix_search pivots its
// own pivot neighborhood shared.
type Candidate struct {
	DocID int32
	Count int
}

// CandidateSet is SearchCandidates' result: the overlap-qualifying
// matches, with no verified distance attached.
type CandidateSet struct {
	Candidates []Candidate
}

// Search answers a k-NN query (§4.7's Query steps): find the query's
// num_prefix_search nearest pivots, scan every chunk's posting lists
// for objects whose own pivot neighborhood overlaps the query's by at
// least min_times, then verify each candidate's true distance and keep
// the k closest. Requires params.SkipChecking == false; use
// SearchCandidates when it is true.
func (idx *Index) Search(query *object.Object, k int, params SearchParams) ([]knnquery.Result, error) {
	if params.SkipChecking {
		return nil, &simerrors.ConfigError{Key: "skip_checking", Reason: "Search requires skip_checking=false; use SearchCandidates"}
	}
	if k < 1 {
		return nil, &simerrors.ConfigError{Key: "k", Reason: "must be >= 1"}
	}
	if err := params.Validate(len(idx.pivots)); err != nil {
		return nil, err
	}

	q := knnquery.New(idx.sp, query, k, 0)
	for _, cand := range idx.scanCandidates(query, params, k, q) {
		q.CheckAndAdd(idx.objects[cand.DocID])
	}
	return q.ResultsSorted(), nil
}

// SearchCandidates runs the same overlap scan as Search but returns the
// raw candidate set instead of computing true distances, for callers
// who want to do their own (possibly cheaper, possibly different)
// ranking over the candidates. Requires params.SkipChecking == true.
func (idx *Index) SearchCandidates(query *object.Object, k int, params SearchParams) (CandidateSet, error) {
	if !params.SkipChecking {
		return CandidateSet{}, &simerrors.ConfigError{Key: "skip_checking", Reason: "SearchCandidates requires skip_checking=true; use Search"}
	}
	if k < 1 {
		return CandidateSet{}, &simerrors.ConfigError{Key: "k", Reason: "must be >= 1"}
	}
	if err := params.Validate(len(idx.pivots)); err != nil {
		return CandidateSet{}, err
	}
	return CandidateSet{Candidates: idx.scanCandidates(query, params, k, nil)}, nil
}

// scanCandidates computes the query's pivot neighborhood and runs the
// configured posting-processing strategy over every chunk, capping the
// total candidates considered to the db_scan_frac/knn_amp budget
// (computeDbScan), split evenly across chunks.
func (idx *Index) scanCandidates(query *object.Object, params SearchParams, k int, counter space.DistanceCounter) []Candidate {
	buf := make([]space.Dist, len(idx.pivots))
	idx.pivotIdx.ComputePivotDistancesQueryTime(query, counter, buf)
	queryPivots := nearestPivots(buf, params.NumPrefixSearch)

	perChunkBudget := idx.computeDbScan(k, params)
	var out []Candidate
	for _, c := range idx.chunks {
		for _, lc := range processChunk(c, queryPivots, params.MinTimes, perChunkBudget, params.InvProcAlg) {
			out = append(out, Candidate{DocID: c.docIDs[lc.pos], Count: lc.count})
		}
	}
	return out
}

// computeDbScan mirrors the source's computeDbScan(K, chunkQty): the
// total candidate budget is knn_amp*k when knn_amp is set, else
// db_scan_frac*N, clamped to N, then divided evenly (ceiling) across
// chunks.
func (idx *Index) computeDbScan(k int, params SearchParams) int {
	total := int(params.DbScanFrac * float64(idx.size))
	if params.KnnAmp > 0 {
		total = k * params.KnnAmp
	}
	if total > idx.size {
		total = idx.size
	}
	if len(idx.chunks) == 0 {
		return 0
	}
	return (total + len(idx.chunks) - 1) / len(idx.chunks)
}

package factory

import (
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/hnsw"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/napp"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/simerrors"
)

// Method names recognized by IndexTimeParams/QueryTimeParams, matching
// §6's parameter-surface table.
const (
	MethodHNSW  = "hnsw"
	MethodDAAT  = "simple_invindx"
	MethodWAND  = "wand"
	MethodBMW   = "blkmax_invindx"
	MethodNAPP  = "napp"
)

// IndexTimeParams parses kv into the index-time config for method,
// returning it as hnsw.Config, napp.Config, or struct{} (DAAT/WAND/BMW
// carry no index-time parameters, per §6). Unknown keys and unknown
// method names are both ConfigErrors.
func IndexTimeParams(method string, kv []string) (interface{}, error) {
	p, err := ParseParams(kv)
	if err != nil {
		return nil, err
	}
	switch method {
	case MethodHNSW:
		return hnswConfig(p)
	case MethodNAPP:
		return nappConfig(p)
	case MethodDAAT, MethodWAND, MethodBMW:
		if err := p.checkUnknown(); err != nil {
			return nil, err
		}
		return struct{}{}, nil
	default:
		return nil, &simerrors.ConfigError{Key: "method", Reason: "unknown index method: " + method}
	}
}

// QueryTimeParams parses kv into the query-time parameters for method:
// hnsw.Config.DefaultConfig's ef knob surfaces as a plain int; BMW's
// blk_size surfaces as a plain int; NAPP surfaces as napp.SearchParams;
// DAAT/WAND take no query-time parameters.
func QueryTimeParams(method string, kv []string) (interface{}, error) {
	p, err := ParseParams(kv)
	if err != nil {
		return nil, err
	}
	switch method {
	case MethodHNSW:
		return hnswSearchEf(p)
	case MethodBMW:
		return bmwBlockSize(p)
	case MethodNAPP:
		return nappSearchParams(p)
	case MethodDAAT, MethodWAND:
		if err := p.checkUnknown(); err != nil {
			return nil, err
		}
		return struct{}{}, nil
	default:
		return nil, &simerrors.ConfigError{Key: "method", Reason: "unknown index method: " + method}
	}
}

// hnswConfig reads §6's M, efConstruction, delaunay_type, post,
// skip_optimized_index.
func hnswConfig(p Params) (hnsw.Config, error) {
	cfg := hnsw.DefaultConfig()
	var err error
	if cfg.M, err = p.intValue("M", cfg.M); err != nil {
		return hnsw.Config{}, err
	}
	if cfg.EfConstruction, err = p.intValue("efConstruction", cfg.EfConstruction); err != nil {
		return hnsw.Config{}, err
	}
	delaunay, err := p.intValue("delaunay_type", int(cfg.DelaunayType))
	if err != nil {
		return hnsw.Config{}, err
	}
	cfg.DelaunayType = hnsw.DelaunayType(delaunay)
	if cfg.Post, err = p.intValue("post", cfg.Post); err != nil {
		return hnsw.Config{}, err
	}
	if cfg.SkipOptimizedIndex, err = p.boolValue("skip_optimized_index", cfg.SkipOptimizedIndex); err != nil {
		return hnsw.Config{}, err
	}
	if err := p.checkUnknown(); err != nil {
		return hnsw.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return hnsw.Config{}, err
	}
	return cfg, nil
}

// hnswSearchEf reads §6's query-time "ef" knob.
func hnswSearchEf(p Params) (int, error) {
	ef, err := p.intValue("ef", 0)
	if err != nil {
		return 0, err
	}
	if err := p.checkUnknown(); err != nil {
		return 0, err
	}
	return ef, nil
}

// bmwBlockSize reads BMW's only query-time knob, "blk_size".
func bmwBlockSize(p Params) (int, error) {
	blkSize, err := p.intValue("blk_size", 0)
	if err != nil {
		return 0, err
	}
	if err := p.checkUnknown(); err != nil {
		return 0, err
	}
	return blkSize, nil
}

// nappConfig reads §6's index-time NAPP knobs: numPivot, numPrefix,
// chunkIndexSize.
func nappConfig(p Params) (napp.Config, error) {
	cfg := napp.DefaultConfig()
	var err error
	if cfg.NumPivot, err = p.intValue("numPivot", cfg.NumPivot); err != nil {
		return napp.Config{}, err
	}
	if cfg.NumPrefix, err = p.intValue("numPrefix", cfg.NumPrefix); err != nil {
		return napp.Config{}, err
	}
	if cfg.ChunkIndexSize, err = p.intValue("chunkIndexSize", cfg.ChunkIndexSize); err != nil {
		return napp.Config{}, err
	}
	if err := p.checkUnknown(); err != nil {
		return napp.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return napp.Config{}, err
	}
	return cfg, nil
}

// nappSearchParams reads §6's query-time NAPP knobs: numPrefixSearch,
// minTimes, dbScanFrac or knnAmp, invProcAlg, skipChecking.
func nappSearchParams(p Params) (napp.SearchParams, error) {
	params := napp.DefaultSearchParams()
	var err error
	if params.NumPrefixSearch, err = p.intValue("numPrefixSearch", params.NumPrefixSearch); err != nil {
		return napp.SearchParams{}, err
	}
	if params.MinTimes, err = p.intValue("minTimes", params.MinTimes); err != nil {
		return napp.SearchParams{}, err
	}
	if params.DbScanFrac, err = p.floatValue("dbScanFrac", params.DbScanFrac); err != nil {
		return napp.SearchParams{}, err
	}
	if params.KnnAmp, err = p.intValue("knnAmp", params.KnnAmp); err != nil {
		return napp.SearchParams{}, err
	}
	algName := p.stringValue("invProcAlg", "scan")
	alg, err := parseInvProcAlg(algName)
	if err != nil {
		return napp.SearchParams{}, err
	}
	params.InvProcAlg = alg
	if params.SkipChecking, err = p.boolValue("skipChecking", params.SkipChecking); err != nil {
		return napp.SearchParams{}, err
	}
	if err := p.checkUnknown(); err != nil {
		return napp.SearchParams{}, err
	}
	return params, nil
}

func parseInvProcAlg(name string) (napp.InvProcAlg, error) {
	switch name {
	case "scan":
		return napp.ProcScan, nil
	case "map":
		return napp.ProcMap, nil
	case "merge":
		return napp.ProcMerge, nil
	case "pqueue":
		return napp.ProcPriorQueue, nil
	case "wand":
		return napp.ProcWAND, nil
	default:
		return 0, &simerrors.ConfigError{Key: "invProcAlg", Reason: "unknown variant: " + name}
	}
}

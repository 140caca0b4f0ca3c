package hnsw

import (
	"encoding/binary"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/therealutkarshpriyadarshi/simsearch/pkg/object"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/simerrors"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/space"
)

// magic identifies this package's save format; version allows the body
// layout to change without breaking detection of foreign files.
const (
	magic          = "SIMHNSW1"
	currentVersion = uint32(1)
)

// Save writes the graph structure (not the object payloads themselves,
// per §6's "save/load is a secondary convenience": object data is
// expected to come from the original dataset on Load) as a magic/
// version header, a newline-delimited key=value parameter blob, the
// entry point, and then for each node its top level and per-level
// neighbor id lists, length-prefixed.
func (idx *Index) Save(w io.Writer) error {
	if _, err := io.WriteString(w, magic); err != nil {
		return &simerrors.ResourceError{Err: err}
	}
	if err := binary.Write(w, binary.LittleEndian, currentVersion); err != nil {
		return &simerrors.ResourceError{Err: err}
	}

	params := idx.paramBlob()
	if err := binary.Write(w, binary.LittleEndian, uint32(len(params))); err != nil {
		return &simerrors.ResourceError{Err: err}
	}
	if _, err := io.WriteString(w, params); err != nil {
		return &simerrors.ResourceError{Err: err}
	}

	idx.mu.RLock()
	entryID, hasEntry := idx.entryPoint, idx.hasEntry
	maxLevel := idx.maxLevel
	ids := make([]int32, 0, len(idx.nodes))
	for id := range idx.nodes {
		ids = append(ids, id)
	}
	idx.mu.RUnlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	hasEntryByte := uint32(0)
	if hasEntry {
		hasEntryByte = 1
	}
	for _, v := range []uint32{hasEntryByte, int32ToU32(entryID), int32ToU32(int32(maxLevel)), uint32(len(ids))} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return &simerrors.ResourceError{Err: err}
		}
	}

	for _, id := range ids {
		n := idx.getNode(id)
		if n == nil {
			continue
		}
		if err := binary.Write(w, binary.LittleEndian, int32ToU32(id)); err != nil {
			return &simerrors.ResourceError{Err: err}
		}
		if err := binary.Write(w, binary.LittleEndian, int32ToU32(int32(n.level))); err != nil {
			return &simerrors.ResourceError{Err: err}
		}
		for lc := 0; lc <= n.level; lc++ {
			neighbors := n.GetNeighbors(lc)
			if err := binary.Write(w, binary.LittleEndian, uint32(len(neighbors))); err != nil {
				return &simerrors.ResourceError{Err: err}
			}
			for _, nb := range neighbors {
				if err := binary.Write(w, binary.LittleEndian, int32ToU32(nb)); err != nil {
					return &simerrors.ResourceError{Err: err}
				}
			}
		}
	}
	return nil
}

// Load reads a graph structure written by Save and re-binds each node
// to its object payload from objects (keyed by object id) — the caller
// is expected to have already parsed the same dataset that produced the
// saved graph. Returns a ConfigError if a parameter in the blob is
// unrecognized, and an InvariantViolation if a referenced object id is
// missing from objects.
func Load(r io.Reader, sp space.Space, objects map[int32]*object.Object) (*Index, error) {
	buf := make([]byte, len(magic))
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, &simerrors.ResourceError{Err: err}
	}
	if string(buf) != magic {
		return nil, &simerrors.FormatError{Reason: "bad HNSW file magic"}
	}
	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, &simerrors.ResourceError{Err: err}
	}
	if version != currentVersion {
		return nil, &simerrors.FormatError{Reason: fmt.Sprintf("unsupported HNSW file version %d", version)}
	}

	var blobLen uint32
	if err := binary.Read(r, binary.LittleEndian, &blobLen); err != nil {
		return nil, &simerrors.ResourceError{Err: err}
	}
	blob := make([]byte, blobLen)
	if _, err := io.ReadFull(r, blob); err != nil {
		return nil, &simerrors.ResourceError{Err: err}
	}
	cfg, err := parseParamBlob(string(blob))
	if err != nil {
		return nil, err
	}

	idx, err := New(sp, cfg)
	if err != nil {
		return nil, err
	}

	var hasEntryU, entryU, maxLevelU, countU uint32
	for _, p := range []*uint32{&hasEntryU, &entryU, &maxLevelU, &countU} {
		if err := binary.Read(r, binary.LittleEndian, p); err != nil {
			return nil, &simerrors.ResourceError{Err: err}
		}
	}
	idx.hasEntry = hasEntryU != 0
	idx.entryPoint = u32ToInt32(entryU)
	idx.maxLevel = int(int32(u32ToInt32(maxLevelU)))

	for i := uint32(0); i < countU; i++ {
		var idU, levelU uint32
		if err := binary.Read(r, binary.LittleEndian, &idU); err != nil {
			return nil, &simerrors.ResourceError{Err: err}
		}
		if err := binary.Read(r, binary.LittleEndian, &levelU); err != nil {
			return nil, &simerrors.ResourceError{Err: err}
		}
		id := u32ToInt32(idU)
		level := int(int32(levelU))
		obj, ok := objects[id]
		if !ok {
			return nil, &simerrors.InvariantViolation{Component: "hnsw", Reason: fmt.Sprintf("object id %d referenced by saved graph is missing from the supplied dataset", id)}
		}
		n := newNode(obj, level)
		for lc := 0; lc <= level; lc++ {
			var cnt uint32
			if err := binary.Read(r, binary.LittleEndian, &cnt); err != nil {
				return nil, &simerrors.ResourceError{Err: err}
			}
			neighbors := make([]int32, cnt)
			for j := range neighbors {
				var nb uint32
				if err := binary.Read(r, binary.LittleEndian, &nb); err != nil {
					return nil, &simerrors.ResourceError{Err: err}
				}
				neighbors[j] = u32ToInt32(nb)
			}
			n.neighbors[lc] = neighbors
		}
		idx.nodes[id] = n
		idx.size++
	}
	return idx, nil
}

func (idx *Index) paramBlob() string {
	var b strings.Builder
	fmt.Fprintf(&b, "M=%d\n", idx.cfg.M)
	fmt.Fprintf(&b, "efConstruction=%d\n", idx.cfg.EfConstruction)
	fmt.Fprintf(&b, "delaunay_type=%d\n", int(idx.cfg.DelaunayType))
	fmt.Fprintf(&b, "post=%d\n", idx.cfg.Post)
	skip := 0
	if idx.cfg.SkipOptimizedIndex {
		skip = 1
	}
	fmt.Fprintf(&b, "skip_optimized_index=%d\n", skip)
	fmt.Fprintf(&b, "seed=%d\n", idx.cfg.Seed)
	return b.String()
}

func parseParamBlob(blob string) (Config, error) {
	cfg := DefaultConfig()
	for _, line := range strings.Split(blob, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		kv := strings.SplitN(line, "=", 2)
		if len(kv) != 2 {
			return cfg, &simerrors.FormatError{Reason: "malformed parameter line: " + line}
		}
		key, val := kv[0], kv[1]
		n, err := strconv.Atoi(val)
		if err != nil && key != "seed" {
			return cfg, &simerrors.ConfigError{Key: key, Reason: "not an integer: " + val}
		}
		switch key {
		case "M":
			cfg.M = n
		case "efConstruction":
			cfg.EfConstruction = n
		case "delaunay_type":
			cfg.DelaunayType = DelaunayType(n)
		case "post":
			cfg.Post = n
		case "skip_optimized_index":
			cfg.SkipOptimizedIndex = n != 0
		case "seed":
			seed, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return cfg, &simerrors.ConfigError{Key: key, Reason: "not an integer: " + val}
			}
			cfg.Seed = seed
		default:
			return cfg, &simerrors.ConfigError{Key: key, Reason: "unknown HNSW parameter"}
		}
	}
	return cfg, cfg.Validate()
}

func int32ToU32(v int32) uint32 { return uint32(v) }
func u32ToInt32(v uint32) int32 { return int32(v) }

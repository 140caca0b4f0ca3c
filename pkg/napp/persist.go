package napp

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

const (
	magic          = "SIMNAPP1"
	currentVersion = uint32(1)
)

// Save writes the pivot ids and, for every chunk, its document ids and
// per-pivot posting lists, length-prefixed (§6: "pivot ids + for each
// pivot its posting list"). Object payloads themselves are not stored;
// Load expects the caller to supply them, the same convention
// pkg/hnsw.Save/Load uses.
func (idx *Index) Save(w io.Writer) error {
	if _, err := io.WriteString(w, magic); err != nil {
		return &simerrors.ResourceError{Err: err}
	}
	if err := binary.Write(w, binary.LittleEndian, currentVersion); err != nil {
		return &simerrors.ResourceError{Err: err}
	}
	if err := writeBlob(w, idx.paramBlob()); err != nil {
		return err
	}

	if err := writeU32(w, uint32(len(idx.pivots))); err != nil {
		return err
	}
	for _, p := range idx.pivots {
		if err := writeU32(w, uint32(p.ID())); err != nil {
			return err
		}
	}

	if err := writeU32(w, uint32(len(idx.chunks))); err != nil {
		return err
	}
	for _, c := range idx.chunks {
		if err := writeU32(w, uint32(len(c.docIDs))); err != nil {
			return err
		}
		for _, id := range c.docIDs {
			if err := writeU32(w, uint32(id)); err != nil {
				return err
			}
		}

		pivotIdxs := make([]int32, 0, len(c.postings))
		for p := range c.postings {
			pivotIdxs = append(pivotIdxs, p)
		}
		sort.Slice(pivotIdxs, func(i, j int) bool { return pivotIdxs[i] < pivotIdxs[j] })
		if err := writeU32(w, uint32(len(pivotIdxs))); err != nil {
			return err
		}
		for _, p := range pivotIdxs {
			if err := writeU32(w, uint32(p)); err != nil {
				return err
			}
			positions := c.postings[p]
			if err := writeU32(w, uint32(len(positions))); err != nil {
				return err
			}
			for _, pos := range positions {
				if err := writeU32(w, uint32(pos)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Load rebuilds an Index from a Save stream. objects must map every
// document id referenced by the stream (including pivot ids) to its
// original object; sp must be the same space the index was built with.
func Load(r io.Reader, sp space.Space, objects map[int32]*object.Object) (*Index, error) {
	header := make([]byte, len(magic))
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, &simerrors.ResourceError{Err: err}
	}
	if string(header) != magic {
		return nil, &simerrors.FormatError{Reason: "bad NAPP file magic"}
	}
	version, err := readU32(r)
	if err != nil {
		return nil, err
	}
	if version != currentVersion {
		return nil, &simerrors.FormatError{Reason: fmt.Sprintf("unsupported NAPP file version %d", version)}
	}

	blobLen, err := readU32(r)
	if err != nil {
		return nil, err
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

	numPivots, err := readU32(r)
	if err != nil {
		return nil, err
	}
	idx.pivots = make([]*object.Object, numPivots)
	for i := range idx.pivots {
		idU, err := readU32(r)
		if err != nil {
			return nil, err
		}
		obj, ok := objects[int32(idU)]
		if !ok {
			return nil, &simerrors.InvariantViolation{Component: "napp", Reason: fmt.Sprintf("pivot id %d missing from supplied dataset", int32(idU))}
		}
		idx.pivots[i] = obj
	}
	idx.pivotIdx = idx.sp.CreatePivotIndex(idx.pivots, 0)

	numChunks, err := readU32(r)
	if err != nil {
		return nil, err
	}
	idx.chunks = make([]*chunk, numChunks)
	for ci := range idx.chunks {
		docCount, err := readU32(r)
		if err != nil {
			return nil, err
		}
		c := newChunk(int(docCount))
		for i := uint32(0); i < docCount; i++ {
			idU, err := readU32(r)
			if err != nil {
				return nil, err
			}
			id := int32(idU)
			obj, ok := objects[id]
			if !ok {
				return nil, &simerrors.InvariantViolation{Component: "napp", Reason: fmt.Sprintf("object id %d referenced by saved index is missing from the supplied dataset", id)}
			}
			idx.objects[id] = obj
			c.docIDs = append(c.docIDs, id)
			idx.size++
		}

		pivotCount, err := readU32(r)
		if err != nil {
			return nil, err
		}
		for i := uint32(0); i < pivotCount; i++ {
			pivotIdx, err := readU32(r)
			if err != nil {
				return nil, err
			}
			posCount, err := readU32(r)
			if err != nil {
				return nil, err
			}
			positions := make([]int32, posCount)
			for j := range positions {
				v, err := readU32(r)
				if err != nil {
					return nil, err
				}
				positions[j] = int32(v)
			}
			c.postings[int32(pivotIdx)] = positions
		}
		idx.chunks[ci] = c
	}
	return idx, nil
}

func (idx *Index) paramBlob() string {
	var b strings.Builder
	fmt.Fprintf(&b, "num_pivot=%d\n", idx.cfg.NumPivot)
	fmt.Fprintf(&b, "num_prefix=%d\n", idx.cfg.NumPrefix)
	fmt.Fprintf(&b, "chunk_index_size=%d\n", idx.cfg.ChunkIndexSize)
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
		switch key {
		case "num_pivot":
			n, err := strconv.Atoi(val)
			if err != nil {
				return cfg, &simerrors.ConfigError{Key: key, Reason: "not an integer: " + val}
			}
			cfg.NumPivot = n
		case "num_prefix":
			n, err := strconv.Atoi(val)
			if err != nil {
				return cfg, &simerrors.ConfigError{Key: key, Reason: "not an integer: " + val}
			}
			cfg.NumPrefix = n
		case "chunk_index_size":
			n, err := strconv.Atoi(val)
			if err != nil {
				return cfg, &simerrors.ConfigError{Key: key, Reason: "not an integer: " + val}
			}
			cfg.ChunkIndexSize = n
		case "seed":
			n, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return cfg, &simerrors.ConfigError{Key: key, Reason: "not an integer: " + val}
			}
			cfg.Seed = n
		default:
			return cfg, &simerrors.ConfigError{Key: key, Reason: "unknown NAPP parameter"}
		}
	}
	return cfg, cfg.Validate()
}

func writeU32(w io.Writer, v uint32) error {
	if err := binary.Write(w, binary.LittleEndian, v); err != nil {
		return &simerrors.ResourceError{Err: err}
	}
	return nil
}

func readU32(r io.Reader) (uint32, error) {
	var v uint32
	if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
		return 0, &simerrors.ResourceError{Err: err}
	}
	return v, nil
}

func writeBlob(w io.Writer, blob string) error {
	if err := writeU32(w, uint32(len(blob))); err != nil {
		return err
	}
	if _, err := io.WriteString(w, blob); err != nil {
		return &simerrors.ResourceError{Err: err}
	}
	return nil
}

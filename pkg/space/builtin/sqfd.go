package builtin

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/therealutkarshpriyadarshi/simsearch/pkg/object"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/simerrors"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/space"
)

// SqfdFunction is the inner ground-distance kernel SQFD applies pairwise
// to cluster centroids (space_sqfd.h SqfdFunction<dist_t>).
type SqfdFunction interface {
	F(p1, p2 []float64) float64
	Name() string
}

type sqfdMinusFunction struct{}

func (sqfdMinusFunction) F(p1, p2 []float64) float64 { return -l2norm(p1, p2) }
func (sqfdMinusFunction) Name() string               { return "minus function" }

// NewSQFDMinusFunction returns f(p1,p2) = -||p1-p2||.
func NewSQFDMinusFunction() SqfdFunction { return sqfdMinusFunction{} }

type sqfdHeuristicFunction struct{ alpha float64 }

func (h sqfdHeuristicFunction) F(p1, p2 []float64) float64 {
	return 1.0 / (h.alpha + l2norm(p1, p2))
}
func (h sqfdHeuristicFunction) Name() string {
	return fmt.Sprintf("heuristic function alpha=%g", h.alpha)
}

// NewSQFDHeuristicFunction returns f(p1,p2) = 1/(alpha + ||p1-p2||).
func NewSQFDHeuristicFunction(alpha float64) SqfdFunction { return sqfdHeuristicFunction{alpha} }

type sqfdGaussianFunction struct{ alpha float64 }

func (g sqfdGaussianFunction) F(p1, p2 []float64) float64 {
	d := l2norm(p1, p2)
	return math.Exp(-g.alpha * d * d)
}
func (g sqfdGaussianFunction) Name() string {
	return fmt.Sprintf("gaussian function alpha=%g", g.alpha)
}

// NewSQFDGaussianFunction returns f(p1,p2) = exp(-alpha*||p1-p2||^2).
func NewSQFDGaussianFunction(alpha float64) SqfdFunction { return sqfdGaussianFunction{alpha} }

func l2norm(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// sqfdSpace implements the signature quadratic form distance
// (space_sqfd.h): each object is a signature, a small set of weighted
// clusters in feature space, and the distance between two signatures is
// sqrt(W^T A W) where W stacks the query's positive weights against the
// other signature's negated weights, and A_ij = f(cluster_i, cluster_j)
// ranges over the union of both signatures' clusters.
type sqfdSpace struct {
	fn SqfdFunction
}

// NewSQFD builds the SQFD space parameterized by the given ground
// kernel.
func NewSQFD(fn SqfdFunction) space.Space { return &sqfdSpace{fn: fn} }

// sqfdCluster is one signature component: feature coordinates plus a
// weight.
type sqfdCluster struct {
	coords []float64
	weight float64
}

func decodeSQFD(obj *object.Object) (featureDim int, clusters []sqfdCluster) {
	data := obj.Data()
	featureDim = int(binary.LittleEndian.Uint32(data[0:4]))
	numClusters := int(binary.LittleEndian.Uint32(data[4:8]))
	clusters = make([]sqfdCluster, numClusters)
	off := 8
	stride := featureDim + 1
	for i := 0; i < numClusters; i++ {
		c := sqfdCluster{coords: make([]float64, featureDim)}
		for k := 0; k < featureDim; k++ {
			c.coords[k] = float64(math.Float32frombits(binary.LittleEndian.Uint32(data[off:])))
			off += 4
		}
		c.weight = float64(math.Float32frombits(binary.LittleEndian.Uint32(data[off:])))
		off += 4
		_ = stride
		clusters[i] = c
	}
	return
}

// EncodeSQFDSignature packs a signature (clusters of featureDim
// coordinates plus a trailing weight each) into an Object payload.
func EncodeSQFDSignature(featureDim int, clusters []sqfdCluster) []byte {
	buf := make([]byte, 8+len(clusters)*(featureDim+1)*4)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(featureDim))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(clusters)))
	off := 8
	for _, c := range clusters {
		for _, x := range c.coords {
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(float32(x)))
			off += 4
		}
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(float32(c.weight)))
		off += 4
	}
	return buf
}

func (s *sqfdSpace) Name() string { return "sqfd" }

func (s *sqfdSpace) Distance(a, b *object.Object) space.Dist {
	dimA, clustersA := decodeSQFD(a)
	dimB, clustersB := decodeSQFD(b)
	if dimA != dimB {
		return math.NaN()
	}
	n1, n2 := len(clustersA), len(clustersB)
	sz := n1 + n2
	all := make([]sqfdCluster, sz)
	copy(all, clustersA)
	copy(all[n1:], clustersB)

	w := make([]float64, sz)
	for i := 0; i < n1; i++ {
		w[i] = clustersA[i].weight
	}
	for i := 0; i < n2; i++ {
		w[n1+i] = -clustersB[i].weight
	}

	a2 := make([][]float64, sz)
	for i := range a2 {
		a2[i] = make([]float64, sz)
	}
	for i := 0; i < sz; i++ {
		for j := i; j < sz; j++ {
			v := s.fn.F(all[i].coords, all[j].coords)
			a2[i][j] = v
			a2[j][i] = v
		}
	}

	var res float64
	for i := 0; i < sz; i++ {
		var rowSum float64
		for j := 0; j < sz; j++ {
			rowSum += a2[i][j] * w[j]
		}
		res += w[i] * rowSum
	}
	if res < 0 {
		res = 0
	}
	return math.Sqrt(res)
}

func (s *sqfdSpace) ApproxEqual(a, b *object.Object) bool {
	dimA, ca := decodeSQFD(a)
	dimB, cb := decodeSQFD(b)
	if dimA != dimB || len(ca) != len(cb) {
		return false
	}
	const eps = 1e-6
	for i := range ca {
		for k := range ca[i].coords {
			if math.Abs(ca[i].coords[k]-cb[i].coords[k]) > eps {
				return false
			}
		}
	}
	return true
}

func (s *sqfdSpace) CreatePivotIndex(pivots []*object.Object, hashTrickDim int) space.PivotIndex {
	return space.NewDummyPivotIndex(s, pivots)
}

// ParseObject reads the SQFD text format: one line per cluster,
// whitespace-separated "coord_1 ... coord_featureDim weight".
func (s *sqfdSpace) ParseObject(id, label int32, text string, state *space.StreamState) (*object.Object, error) {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	var clusters []sqfdCluster
	featureDim := -1
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		vals := make([]float64, len(fields))
		for i, f := range fields {
			x, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, &simerrors.FormatError{Path: state.Path, Line: state.Line, Reason: "malformed sqfd token: " + f}
			}
			vals[i] = x
		}
		dim := len(vals) - 1
		if featureDim == -1 {
			featureDim = dim
		} else if dim != featureDim {
			return nil, &simerrors.FormatError{Path: state.Path, Line: state.Line, Reason: "inconsistent sqfd cluster width"}
		}
		clusters = append(clusters, sqfdCluster{coords: vals[:dim], weight: vals[dim]})
	}
	if featureDim < 0 {
		featureDim = 0
	}
	return object.New(id, label, EncodeSQFDSignature(featureDim, clusters)), nil
}

func (s *sqfdSpace) EmitObject(obj *object.Object, externalID string) (string, error) {
	dim, clusters := decodeSQFD(obj)
	var b strings.Builder
	for _, c := range clusters {
		for i := 0; i < dim; i++ {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(strconv.FormatFloat(c.coords[i], 'g', -1, 64))
		}
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(c.weight, 'g', -1, 64))
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func init() {
	space.DefaultRegistry.Register("sqfd_minus", func(params map[string]string) (space.Space, error) {
		return NewSQFD(NewSQFDMinusFunction()), nil
	})
	space.DefaultRegistry.Register("sqfd_heuristic", func(params map[string]string) (space.Space, error) {
		alpha := 1.0
		if v, ok := params["alpha"]; ok {
			a, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, err
			}
			alpha = a
		}
		return NewSQFD(NewSQFDHeuristicFunction(alpha)), nil
	})
	space.DefaultRegistry.Register("sqfd_gaussian", func(params map[string]string) (space.Space, error) {
		alpha := 1.0
		if v, ok := params["alpha"]; ok {
			a, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, err
			}
			alpha = a
		}
		return NewSQFD(NewSQFDGaussianFunction(alpha)), nil
	})
}

// Package space defines the contract between distance/representation
// code and the indexes in this library: parsing, emission, distance
// computation, and the optional bulk pivot-distance fast path.
package space

import "github.com/therealutkarshpriyadarshi/simsearch/pkg/object"

// Dist is the scalar distance type used throughout the core. Integer
// spaces (edit distance, Hamming) still report Dist (a float64 holding
// an exact integer value) so that every index, query, and pivot-index
// path composes against one numeric type instead of being generic over
// it; §9's "associated distance type" design note is satisfied by
// treating the association as "always widen to float64", which costs
// nothing against the kernels this library ships (none need more than
// 53 bits of integer precision).
type Dist = float64

// Space is the (objects, distance) pair: it carries parsing, emission,
// and distance semantics for one representation. The left argument to
// Distance is, by convention, the data/pivot object; the right is the
// query. Asymmetric spaces must document which argument plays which
// role; callers always invoke through KnnQuery.DistanceObjectLeft to
// keep that orientation consistent (§4.1).
type Space interface {
	// Name identifies the space for the factory registry and for
	// error messages; it is also the on-disk format tag.
	Name() string

	// Distance computes the (possibly asymmetric) dissimilarity
	// between two objects produced by this space. It never errors;
	// degenerate inputs may produce NaN, which callers treat as +Inf
	// for ordering purposes.
	Distance(a, b *object.Object) Dist

	// ApproxEqual reports whether two objects are equal within the
	// space's tolerance (floating epsilon ~1e-10, or exact for integer
	// spaces). Used by tests only.
	ApproxEqual(a, b *object.Object) bool

	// CreatePivotIndex returns a PivotIndex able to compute distances
	// from one query to every pivot in one call. hashTrickDim, if > 0,
	// asks the space to reduce dimensionality via the hashing trick
	// before building the bulk evaluator; spaces that don't support it
	// ignore the parameter.
	CreatePivotIndex(pivots []*object.Object, hashTrickDim int) PivotIndex
}

// DenseVectorizer is implemented by spaces that can project an object
// into a dense float32 buffer, either via the hashing trick (sparse
// spaces) or a direct copy (dense spaces). It is optional: callers type-
// assert for it rather than requiring every Space to implement it.
type DenseVectorizer interface {
	// CreateDenseVector fills out (len(out) == nElem) with a dense
	// representation of obj, summing hash collisions for sparse inputs.
	CreateDenseVector(obj *object.Object, out []float32) error
}

// DistanceCounter is satisfied by any caller that wants bulk pivot
// distance calls charged against a per-query distance-evaluation
// counter (e.g. knnquery.KnnQuery). Kept here, rather than imported from
// the knnquery package, to avoid a space <-> knnquery import cycle.
type DistanceCounter interface {
	ChargeDistanceComputations(n int)
}

// PivotIndex computes distances from one query/object to many reference
// pivots in bulk (§4.1). The default implementation (see NewDummyPivotIndex)
// simply loops over pivots; sparse dot-product-like spaces override it
// with an inverted-index-backed bulk evaluator.
type PivotIndex interface {
	// ComputePivotDistancesIndexTime fills out[i] = distance(pivots[i], obj).
	ComputePivotDistancesIndexTime(obj *object.Object, out []Dist)

	// ComputePivotDistancesQueryTime is identical, but the distance
	// evaluations it performs are charged to counter (nil is allowed,
	// meaning "don't count").
	ComputePivotDistancesQueryTime(query *object.Object, counter DistanceCounter, out []Dist)

	// NumPivots returns the number of pivots this index was built over.
	NumPivots() int
}

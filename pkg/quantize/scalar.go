// Package quantize implements scalar quantization of dense float32
// vectors into int8, used by pkg/hnsw's cache-compact layout (§4.3) to
// shrink the per-object footprint it stores alongside flattened
// neighbor lists. Grounded on the teacher's
// internal/quantization/scalar.go, kept nearly 1:1 on the quantization
// math and renamed/repurposed from a standalone ANN method's vector
// store into HNSW's own storage compaction.
package quantize

import (
	"fmt"
	"math"
)

// ScalarQuantizer performs scalar quantization on float32 vectors,
// compressing float32 (4 bytes) to int8 (1 byte) for a 4x reduction in
// the footprint of the compact layout's stored vectors.
type ScalarQuantizer struct {
	min    float32
	max    float32
	scale  float32
	offset float32
}

// NewScalarQuantizer creates a new scalar quantizer.
func NewScalarQuantizer() *ScalarQuantizer {
	return &ScalarQuantizer{}
}

// Train computes quantization parameters from training data (here, the
// dense vectors a HNSW collection has accumulated by the time Compact
// runs).
func (q *ScalarQuantizer) Train(vectors [][]float32) error {
	if len(vectors) == 0 {
		return fmt.Errorf("no training data provided")
	}

	q.min = float32(math.MaxFloat32)
	q.max = float32(-math.MaxFloat32)

	for _, vector := range vectors {
		for _, val := range vector {
			if val < q.min {
				q.min = val
			}
			if val > q.max {
				q.max = val
			}
		}
	}

	// Map [min, max] to [-127, 127]
	valueRange := q.max - q.min
	if valueRange == 0 {
		valueRange = 1.0
	}

	q.scale = 254.0 / valueRange
	q.offset = -127.0 - (q.min * q.scale)

	return nil
}

// Quantize converts a float32 vector to int8.
func (q *ScalarQuantizer) Quantize(vector []float32) []int8 {
	quantized := make([]int8, len(vector))

	for i, val := range vector {
		scaled := val*q.scale + q.offset

		if scaled < -127 {
			scaled = -127
		} else if scaled > 127 {
			scaled = 127
		}

		quantized[i] = int8(math.Round(float64(scaled)))
	}

	return quantized
}

// Dequantize converts an int8 vector back to float32.
func (q *ScalarQuantizer) Dequantize(quantized []int8) []float32 {
	vector := make([]float32, len(quantized))

	for i, val := range quantized {
		vector[i] = (float32(val) - q.offset) / q.scale
	}

	return vector
}

// QuantizeBatch quantizes multiple vectors.
func (q *ScalarQuantizer) QuantizeBatch(vectors [][]float32) [][]int8 {
	quantized := make([][]int8, len(vectors))
	for i, vector := range vectors {
		quantized[i] = q.Quantize(vector)
	}
	return quantized
}

// DequantizeBatch dequantizes multiple vectors.
func (q *ScalarQuantizer) DequantizeBatch(quantized [][]int8) [][]float32 {
	vectors := make([][]float32, len(quantized))
	for i, qvec := range quantized {
		vectors[i] = q.Dequantize(qvec)
	}
	return vectors
}

// MemoryReductionFactor returns the theoretical memory reduction factor
// (float32 is 4 bytes, int8 is 1 byte).
func (q *ScalarQuantizer) MemoryReductionFactor() float32 {
	return 4.0
}

// Parameters returns the quantization parameters, for persisting
// alongside a compact layout.
func (q *ScalarQuantizer) Parameters() (min, max, scale, offset float32) {
	return q.min, q.max, q.scale, q.offset
}

// SetParameters restores quantization parameters (for loading a
// persisted compact layout without re-training).
func (q *ScalarQuantizer) SetParameters(min, max, scale, offset float32) {
	q.min = min
	q.max = max
	q.scale = scale
	q.offset = offset
}

// DistanceInt8 computes an approximate Euclidean distance directly
// between two quantized vectors, without dequantizing first.
func DistanceInt8(a, b []int8) float32 {
	if len(a) != len(b) {
		return float32(math.MaxFloat32)
	}

	var sum int64
	for i := range a {
		diff := int64(a[i]) - int64(b[i])
		sum += diff * diff
	}

	return float32(math.Sqrt(float64(sum)))
}

// DotProductInt8 computes the dot product between two quantized
// vectors directly.
func DotProductInt8(a, b []int8) int64 {
	if len(a) != len(b) {
		return 0
	}

	var sum int64
	for i := range a {
		sum += int64(a[i]) * int64(b[i])
	}

	return sum
}

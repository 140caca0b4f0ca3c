package quantize

import (
	"math"
	"math/rand"
	"testing"
)

func TestScalarQuantizerTrain(t *testing.T) {
	q := NewScalarQuantizer()

	vectors := [][]float32{
		{0.0, 0.5, 1.0},
		{0.2, 0.6, 0.8},
		{0.1, 0.4, 0.9},
	}

	if err := q.Train(vectors); err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	min, max, _, _ := q.Parameters()
	if min >= max {
		t.Errorf("invalid min/max: min=%f, max=%f", min, max)
	}
}

func TestScalarQuantizerTrainRejectsEmpty(t *testing.T) {
	q := NewScalarQuantizer()
	if err := q.Train(nil); err == nil {
		t.Fatal("expected error training on no data")
	}
}

func TestScalarQuantizerQuantize(t *testing.T) {
	q := NewScalarQuantizer()
	q.Train([][]float32{{0.0, 0.5, 1.0}, {0.2, 0.6, 0.8}})

	quantized := q.Quantize([]float32{0.1, 0.55, 0.9})
	if len(quantized) != 3 {
		t.Errorf("expected length 3, got %d", len(quantized))
	}
	for i, val := range quantized {
		if val < -127 || val > 127 {
			t.Errorf("value %d out of range: %d", i, val)
		}
	}
}

func TestScalarQuantizerDequantize(t *testing.T) {
	q := NewScalarQuantizer()
	q.Train([][]float32{{0.0, 1.0}, {0.5, 0.5}})

	original := []float32{0.3, 0.7}
	quantized := q.Quantize(original)
	dequantized := q.Dequantize(quantized)

	for i := range original {
		err := math.Abs(float64(original[i] - dequantized[i]))
		if err > 0.1 {
			t.Errorf("large reconstruction error at %d: original=%f, dequantized=%f", i, original[i], dequantized[i])
		}
	}
}

func TestScalarQuantizerRoundTrip(t *testing.T) {
	q := NewScalarQuantizer()

	rng := rand.New(rand.NewSource(42))
	vectors := make([][]float32, 100)
	for i := range vectors {
		vectors[i] = make([]float32, 256)
		for j := range vectors[i] {
			vectors[i][j] = rng.Float32()
		}
	}
	q.Train(vectors)

	testVector := make([]float32, 256)
	for j := range testVector {
		testVector[j] = rng.Float32()
	}

	quantized := q.Quantize(testVector)
	dequantized := q.Dequantize(quantized)

	var totalError float64
	for i := range testVector {
		totalError += math.Abs(float64(testVector[i] - dequantized[i]))
	}
	avgError := totalError / float64(len(testVector))
	if avgError > 0.05 {
		t.Errorf("average reconstruction error too high: %f", avgError)
	}
}

func TestScalarQuantizerBatch(t *testing.T) {
	q := NewScalarQuantizer()
	vectors := [][]float32{{0.0, 0.5, 1.0}, {0.2, 0.6, 0.8}, {0.1, 0.4, 0.9}}
	q.Train(vectors)

	quantized := q.QuantizeBatch(vectors)
	if len(quantized) != 3 {
		t.Errorf("expected 3 quantized vectors, got %d", len(quantized))
	}
	for i, qvec := range quantized {
		if len(qvec) != len(vectors[i]) {
			t.Errorf("vector %d: expected length %d, got %d", i, len(vectors[i]), len(qvec))
		}
	}

	dequantized := q.DequantizeBatch(quantized)
	if len(dequantized) != len(vectors) {
		t.Errorf("expected %d dequantized vectors, got %d", len(vectors), len(dequantized))
	}
}

func TestScalarQuantizerMemoryReductionFactor(t *testing.T) {
	q := NewScalarQuantizer()
	if q.MemoryReductionFactor() != 4.0 {
		t.Errorf("expected 4x memory reduction, got %f", q.MemoryReductionFactor())
	}
}

func TestScalarQuantizerSetParameters(t *testing.T) {
	q := NewScalarQuantizer()
	q.SetParameters(0.0, 1.0, 254.0, -127.0)

	min, max, scale, offset := q.Parameters()
	if min != 0.0 || max != 1.0 || scale != 254.0 || offset != -127.0 {
		t.Errorf("parameters mismatch: min=%f, max=%f, scale=%f, offset=%f", min, max, scale, offset)
	}
}

func TestDistanceInt8(t *testing.T) {
	a := []int8{10, 20, 30}
	b := []int8{12, 22, 32}

	dist := DistanceInt8(a, b)
	expected := float32(math.Sqrt(12))
	if math.Abs(float64(dist-expected)) > 0.01 {
		t.Errorf("expected distance %f, got %f", expected, dist)
	}
}

func TestDistanceInt8DifferentLengths(t *testing.T) {
	a := []int8{10, 20, 30}
	b := []int8{12, 22}

	if dist := DistanceInt8(a, b); dist != float32(math.MaxFloat32) {
		t.Errorf("expected MaxFloat32 for different lengths, got %f", dist)
	}
}

func TestDotProductInt8(t *testing.T) {
	a := []int8{1, 2, 3}
	b := []int8{4, 5, 6}

	if dot := DotProductInt8(a, b); dot != 32 {
		t.Errorf("expected dot product 32, got %d", dot)
	}
}

func TestDotProductInt8DifferentLengths(t *testing.T) {
	a := []int8{1, 2, 3}
	b := []int8{4, 5}

	if dot := DotProductInt8(a, b); dot != 0 {
		t.Errorf("expected 0 for different lengths, got %d", dot)
	}
}

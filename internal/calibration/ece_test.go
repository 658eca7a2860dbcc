package calibration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeECEFixedExample(t *testing.T) {
	predictions := []float64{0.95, 0.95, 0.05, 0.55}
	labels := []bool{true, true, false, true}

	// Bin [0.9,1.0): conf 0.95, acc 1.0, gap 0.05, weight 2/4.
	// Bin [0.0,0.1): conf 0.05, acc 0.0, gap 0.05, weight 1/4.
	// Bin [0.5,0.6): conf 0.55, acc 1.0, gap 0.45, weight 1/4.
	want := 0.05*0.5 + 0.05*0.25 + 0.45*0.25
	assert.InDelta(t, want, ComputeECE(predictions, labels, 10), 1e-9)
}

// TestComputeECEWellCalibrated verifies a bucket whose accuracy matches its
// mean confidence contributes nothing.
func TestComputeECEWellCalibrated(t *testing.T) {
	predictions := make([]float64, 10)
	labels := make([]bool, 10)
	for i := range predictions {
		predictions[i] = 0.8
		labels[i] = i < 8
	}
	assert.InDelta(t, 0.0, ComputeECE(predictions, labels, 10), 1e-9)
}

func TestComputeECETopBucket(t *testing.T) {
	// p == 1.0 must land in the top bucket, not index out of range.
	got := ComputeECE([]float64{1.0}, []bool{false}, 10)
	assert.InDelta(t, 1.0, got, 1e-9)
}

func TestComputeECEClampsInputs(t *testing.T) {
	got := ComputeECE([]float64{-0.5, 1.5}, []bool{false, true}, 10)
	// -0.5 clamps to 0 (correct gap 0), 1.5 clamps to 1 (correct gap 0).
	assert.InDelta(t, 0.0, got, 1e-9)
}

func TestComputeECEDegenerateInputs(t *testing.T) {
	assert.Equal(t, 0.0, ComputeECE(nil, nil, 10))
	assert.Equal(t, 0.0, ComputeECE([]float64{0.5}, []bool{true, false}, 10))
	assert.Equal(t, 0.0, ComputeECE([]float64{0.5}, []bool{true}, 0))
}

func TestComputeECEDeterministic(t *testing.T) {
	predictions := []float64{0.1, 0.34, 0.56, 0.78, 0.91, 0.99, 0.42, 0.65}
	labels := []bool{false, false, true, true, true, true, false, true}

	first := ComputeECE(predictions, labels, 15)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, ComputeECE(predictions, labels, 15))
	}
}

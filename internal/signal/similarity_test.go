package signal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templeobijnr/easy-islanders-router/internal/artifact"
	"github.com/templeobijnr/easy-islanders-router/internal/calibration"
)

func testSnapshot(dim int) *artifact.Snapshot {
	centroids := make(map[string]artifact.Centroid, len(testDomains))
	params := make(map[string]calibration.Params, len(testDomains))
	for i, d := range testDomains {
		vec := make([]float64, dim)
		vec[i%dim] = 1
		centroids[d] = artifact.Centroid{Vector: vec, SupportCount: 100}
		params[d] = calibration.Params{A: -4, B: 2}
	}
	return &artifact.Snapshot{
		Generation:   "gen-test",
		ModelName:    "nomic-embed-text",
		ModelVersion: "v1",
		Dim:          dim,
		Centroids:    centroids,
		Calibration:  params,
		Metrics:      calibration.Metrics{Accuracy: 0.95, ECE: 0.03},
	}
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float64{1, 0}, []float64{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, Cosine([]float64{1, 0}, []float64{-1, 0}), 1e-9)
	assert.InDelta(t, math.Sqrt(2)/2, Cosine([]float64{1, 1}, []float64{1, 0}), 1e-9)

	// Degenerate inputs
	assert.Equal(t, 0.0, Cosine(nil, nil))
	assert.Equal(t, 0.0, Cosine([]float64{1}, []float64{1, 2}))
	assert.Equal(t, 0.0, Cosine([]float64{0, 0}, []float64{1, 0}))
}

func TestSimilarityScoresDomains(t *testing.T) {
	snap := testSnapshot(4)

	// Embedding aligned with real_estate's centroid axis
	scores := Similarity([]float64{1, 0, 0, 0}, snap, testDomains)
	require.True(t, scores.Available)
	assert.InDelta(t, 1.0, scores.ByDomain["real_estate"], 1e-9)
	assert.InDelta(t, 0.0, scores.ByDomain["marketplace"], 1e-9)
}

// TestSimilarityAbsent verifies degraded inputs produce the absent result
// rather than zeros, so fusion can re-weight.
func TestSimilarityAbsent(t *testing.T) {
	snap := testSnapshot(4)

	assert.False(t, Similarity(nil, snap, testDomains).Available)
	assert.False(t, Similarity([]float64{1, 2}, snap, testDomains).Available) // dim mismatch
	assert.False(t, Similarity([]float64{1, 0, 0, 0}, nil, testDomains).Available)
}

// TestSimilarityClamped verifies negative cosine clamps to zero.
func TestSimilarityClamped(t *testing.T) {
	snap := testSnapshot(4)

	scores := Similarity([]float64{-1, 0, 0, 0}, snap, testDomains)
	require.True(t, scores.Available)
	assert.Equal(t, 0.0, scores.ByDomain["real_estate"])
}

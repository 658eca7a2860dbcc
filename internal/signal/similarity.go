package signal

import (
	"math"

	"github.com/templeobijnr/easy-islanders-router/internal/artifact"
)

// Cosine returns the cosine similarity of two equal-length vectors, or 0
// when either has zero magnitude.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Similarity scores each domain by cosine similarity between the utterance
// embedding and that domain's centroid, clamped to [0, 1]. Returns the
// absent result when the embedding is missing (degraded extractor) or its
// dimension does not match the snapshot, so fusion can re-weight instead
// of seeing spurious zeros.
func Similarity(embedding []float64, snap *artifact.Snapshot, domains []string) Scores {
	if len(embedding) == 0 || snap == nil || len(embedding) != snap.Dim {
		return Absent(NameEmbedding)
	}

	sims := make(map[string]float64, len(domains))
	for _, d := range domains {
		c, ok := snap.Centroids[d]
		if !ok {
			// Validation guarantees centroids for all configured domains;
			// a miss here means the domain set changed under us.
			return Absent(NameEmbedding)
		}
		s := Cosine(embedding, c.Vector)
		if s < 0 {
			s = 0
		}
		if s > 1 {
			s = 1
		}
		sims[d] = s
	}

	return Scores{
		Name:      NameEmbedding,
		Available: true,
		ByDomain:  sims,
	}
}

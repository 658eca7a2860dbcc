package signal

import (
	"math"

	"github.com/templeobijnr/easy-islanders-router/internal/artifact"
	"github.com/templeobijnr/easy-islanders-router/internal/intent"
	"go.uber.org/zap"
)

// Classifier is the supervised signal: per-domain logistic scores over a
// fixed feature vector derived from the rule votes, the embedding
// similarities and context features. The model artifact lives in the
// snapshot and is swapped atomically with it.
type Classifier struct {
	domains []string
	logger  *zap.Logger
}

// NewClassifier creates the classifier signal provider.
func NewClassifier(domains []string, logger *zap.Logger) *Classifier {
	return &Classifier{
		domains: domains,
		logger:  logger,
	}
}

// FeatureDim returns the expected classifier feature vector length for a
// domain set: rule votes and similarities per domain, a prior-domain
// one-hot, plus turn index and token count.
func FeatureDim(domains []string) int {
	return 3*len(domains) + 2
}

// featureVector builds the fixed-layout feature vector. Absent upstream
// signals contribute zeros here; availability re-weighting happens in
// fusion, not inside the classifier.
func (c *Classifier) featureVector(votes, sims Scores, hint intent.ContextHint, tokenCount int) []float64 {
	x := make([]float64, 0, FeatureDim(c.domains))

	for _, d := range c.domains {
		x = append(x, votes.ByDomain[d])
	}
	for _, d := range c.domains {
		if sims.Available {
			x = append(x, sims.ByDomain[d])
		} else {
			x = append(x, 0)
		}
	}
	for _, d := range c.domains {
		if hint.PriorDomain == d {
			x = append(x, 1)
		} else {
			x = append(x, 0)
		}
	}

	turn := float64(hint.TurnIndex) / 10.0
	if turn > 1 {
		turn = 1
	}
	x = append(x, turn)

	tokens := float64(tokenCount) / 20.0
	if tokens > 1 {
		tokens = 1
	}
	x = append(x, tokens)

	return x
}

// Score runs the linear model for every domain. Returns the absent result
// when the snapshot carries no classifier or the artifact's feature layout
// does not match this domain set. Inference allocates only the input and
// output vectors.
func (c *Classifier) Score(snap *artifact.Snapshot, votes, sims Scores, hint intent.ContextHint, tokenCount int) Scores {
	if snap == nil || snap.Classifier == nil {
		return Absent(NameClassifier)
	}
	if snap.Classifier.FeatureDim != FeatureDim(c.domains) {
		c.logger.Warn("classifier artifact feature layout mismatch, degrading signal",
			zap.Int("artifact_dim", snap.Classifier.FeatureDim),
			zap.Int("expected_dim", FeatureDim(c.domains)),
		)
		return Absent(NameClassifier)
	}

	x := c.featureVector(votes, sims, hint, tokenCount)

	out := make(map[string]float64, len(c.domains))
	for _, d := range c.domains {
		w := snap.Classifier.Weights[d]
		z := snap.Classifier.Bias[d]
		for i, xi := range x {
			z += w[i] * xi
		}
		out[d] = 1.0 / (1.0 + math.Exp(-z))
	}

	return Scores{
		Name:      NameClassifier,
		Available: true,
		ByDomain:  out,
	}
}

package fusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templeobijnr/easy-islanders-router/internal/signal"
)

var domains = []string{"real_estate", "marketplace", "local_info", "general"}

func scores(name string, byDomain map[string]float64) signal.Scores {
	return signal.Scores{Name: name, Available: true, ByDomain: byDomain}
}

func TestFuseAllSignals(t *testing.T) {
	weights := Weights{
		signal.NameRule:       0.25,
		signal.NameEmbedding:  0.35,
		signal.NameClassifier: 0.40,
	}

	rule := scores(signal.NameRule, map[string]float64{"real_estate": 1, "marketplace": 0, "local_info": 0, "general": 0})
	emb := scores(signal.NameEmbedding, map[string]float64{"real_estate": 0.8, "marketplace": 0.2, "local_info": 0, "general": 0})
	clf := scores(signal.NameClassifier, map[string]float64{"real_estate": 0.9, "marketplace": 0.1, "local_info": 0, "general": 0})

	raw := Fuse(domains, weights, rule, emb, clf)
	require.NotNil(t, raw)

	// 0.25*1 + 0.35*0.8 + 0.40*0.9
	assert.InDelta(t, 0.89, raw["real_estate"], 1e-9)
	// 0.25*0 + 0.35*0.2 + 0.40*0.1
	assert.InDelta(t, 0.11, raw["marketplace"], 1e-9)
	assert.InDelta(t, 0.0, raw["general"], 1e-9)
}

// TestFuseRenormalizes verifies absent signals give up their weight to the
// remaining ones instead of dragging every score toward zero.
func TestFuseRenormalizes(t *testing.T) {
	weights := Weights{
		signal.NameRule:       0.25,
		signal.NameEmbedding:  0.35,
		signal.NameClassifier: 0.40,
	}

	rule := scores(signal.NameRule, map[string]float64{"real_estate": 1, "marketplace": 0, "local_info": 0, "general": 0})
	clf := scores(signal.NameClassifier, map[string]float64{"real_estate": 0.9, "marketplace": 0.1, "local_info": 0, "general": 0})

	raw := Fuse(domains, weights, rule, signal.Absent(signal.NameEmbedding), clf)
	require.NotNil(t, raw)

	// Effective weights become 0.25/0.65 and 0.40/0.65.
	want := (0.25*1 + 0.40*0.9) / 0.65
	assert.InDelta(t, want, raw["real_estate"], 1e-9)
}

func TestFuseSingleSignal(t *testing.T) {
	weights := Weights{signal.NameRule: 0.25}

	rule := scores(signal.NameRule, map[string]float64{"real_estate": 0.6, "marketplace": 0.3, "local_info": 0, "general": 0})

	raw := Fuse(domains, weights,
		rule,
		signal.Absent(signal.NameEmbedding),
		signal.Absent(signal.NameClassifier),
	)
	require.NotNil(t, raw)

	// Renormalizing one signal's weight to 1 passes its scores through.
	assert.InDelta(t, 0.6, raw["real_estate"], 1e-9)
	assert.InDelta(t, 0.3, raw["marketplace"], 1e-9)
}

func TestFuseNoSignals(t *testing.T) {
	weights := Weights{
		signal.NameRule:       0.25,
		signal.NameEmbedding:  0.35,
		signal.NameClassifier: 0.40,
	}

	raw := Fuse(domains, weights,
		signal.Absent(signal.NameRule),
		signal.Absent(signal.NameEmbedding),
		signal.Absent(signal.NameClassifier),
	)
	assert.Nil(t, raw)
}

func TestFuseDeterministic(t *testing.T) {
	weights := Weights{
		signal.NameRule:      0.5,
		signal.NameEmbedding: 0.5,
	}
	rule := scores(signal.NameRule, map[string]float64{"real_estate": 0.7, "marketplace": 0.4, "local_info": 0.1, "general": 0})
	emb := scores(signal.NameEmbedding, map[string]float64{"real_estate": 0.2, "marketplace": 0.9, "local_info": 0.3, "general": 0})

	first := Fuse(domains, weights, rule, emb)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, Fuse(domains, weights, rule, emb))
	}
}

func TestUsed(t *testing.T) {
	rule := scores(signal.NameRule, nil)
	clf := scores(signal.NameClassifier, nil)

	used := Used(rule, signal.Absent(signal.NameEmbedding), clf)
	assert.Equal(t, []string{signal.NameRule, signal.NameClassifier}, used)

	assert.Empty(t, Used(signal.Absent(signal.NameRule)))
}

package signal

// Provider names as they appear in traces and events.
const (
	NameRule       = "rule"
	NameEmbedding  = "embedding"
	NameClassifier = "classifier"
)

// Scores is the output of one signal provider. The provider set is closed:
// rule voter, embedding similarity and the linear classifier, plus the
// explicit absent state used for graceful degradation. Fusion re-weights
// around absent signals instead of treating them as zeros.
type Scores struct {
	Name      string
	Available bool
	ByDomain  map[string]float64
}

// Absent returns the unavailable result for a provider.
func Absent(name string) Scores {
	return Scores{Name: name}
}

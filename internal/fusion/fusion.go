// Package fusion combines the signal providers' per-domain scores into one
// raw score vector. Fusion is pure and deterministic: identical inputs
// always produce identical outputs, which golden-session tests rely on.
package fusion

import (
	"github.com/templeobijnr/easy-islanders-router/internal/signal"
)

// Weights holds the configured fusion weight per provider name.
type Weights map[string]float64

// Fuse computes the weighted per-domain sum over the available signals.
// Absent signals contribute zero weight for this request and the remaining
// weights are renormalized to sum to 1, so partial degradation does not
// shrink all scores toward zero. Returns nil when no signal is available.
func Fuse(domains []string, weights Weights, signals ...signal.Scores) map[string]float64 {
	total := 0.0
	for _, s := range signals {
		if s.Available {
			total += weights[s.Name]
		}
	}
	if total <= 0 {
		return nil
	}

	raw := make(map[string]float64, len(domains))
	for _, d := range domains {
		sum := 0.0
		for _, s := range signals {
			if !s.Available {
				continue
			}
			sum += (weights[s.Name] / total) * s.ByDomain[d]
		}
		raw[d] = sum
	}

	return raw
}

// Used returns the names of the available signals, in the order given.
func Used(signals ...signal.Scores) []string {
	names := make([]string, 0, len(signals))
	for _, s := range signals {
		if s.Available {
			names = append(names, s.Name)
		}
	}
	return names
}

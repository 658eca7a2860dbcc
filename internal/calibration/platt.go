package calibration

import (
	"fmt"
	"math"
)

// Params holds the Platt scaling parameters for one domain:
// p = 1 / (1 + exp(A*score + B)). A must be non-positive so calibrated
// probability is monotonic non-decreasing in the raw score.
type Params struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// Validate rejects parameter sets that would break monotonicity.
func (p Params) Validate() error {
	if math.IsNaN(p.A) || math.IsNaN(p.B) || math.IsInf(p.A, 0) || math.IsInf(p.B, 0) {
		return fmt.Errorf("platt params must be finite")
	}
	if p.A > 0 {
		return fmt.Errorf("platt slope must be non-positive, got %g", p.A)
	}
	return nil
}

// Calibrate maps a raw fused score to a calibrated probability using the
// domain's Platt parameters, clamped to [0, 1].
func Calibrate(raw float64, p Params) float64 {
	prob := 1.0 / (1.0 + math.Exp(p.A*raw+p.B))
	if prob < 0 {
		return 0
	}
	if prob > 1 {
		return 1
	}
	return prob
}

// Metrics holds the validation metrics for a calibration parameter set.
type Metrics struct {
	Accuracy float64 `json:"accuracy"`
	ECE      float64 `json:"ece"`
}

// Acceptance gates for promoting a candidate parameter set to active.
const (
	MinAccuracy = 0.92
	MaxECE      = 0.05
)

// MeetsGates reports whether the metrics pass the promotion gates.
func MeetsGates(m Metrics) bool {
	return m.Accuracy >= MinAccuracy && m.ECE <= MaxECE
}

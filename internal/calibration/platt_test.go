package calibration

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalibrate(t *testing.T) {
	p := Params{A: -4, B: 2}

	assert.InDelta(t, 0.1192, Calibrate(0, p), 0.0001)
	assert.InDelta(t, 0.5, Calibrate(0.5, p), 1e-9)
	assert.InDelta(t, 0.8808, Calibrate(1, p), 0.0001)
}

// TestCalibrateMonotonic verifies a valid parameter set never reorders raw
// scores: higher raw score always means calibrated probability at least as
// high.
func TestCalibrateMonotonic(t *testing.T) {
	params := []Params{
		{A: -4, B: 2},
		{A: -1, B: 0},
		{A: 0, B: 0.5},
		{A: -10, B: 5},
	}
	for _, p := range params {
		prev := math.Inf(-1)
		for raw := 0.0; raw <= 1.0; raw += 0.01 {
			got := Calibrate(raw, p)
			assert.GreaterOrEqual(t, got, prev, "params %+v at raw=%g", p, raw)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
			prev = got
		}
	}
}

func TestParamsValidate(t *testing.T) {
	assert.NoError(t, Params{A: -4, B: 2}.Validate())
	assert.NoError(t, Params{A: 0, B: 0}.Validate())

	assert.Error(t, Params{A: 1, B: 0}.Validate())
	assert.Error(t, Params{A: math.NaN(), B: 0}.Validate())
	assert.Error(t, Params{A: -1, B: math.Inf(1)}.Validate())
}

func TestMeetsGates(t *testing.T) {
	assert.True(t, MeetsGates(Metrics{Accuracy: 0.95, ECE: 0.03}))
	assert.True(t, MeetsGates(Metrics{Accuracy: MinAccuracy, ECE: MaxECE}))

	assert.False(t, MeetsGates(Metrics{Accuracy: 0.91, ECE: 0.03}))
	assert.False(t, MeetsGates(Metrics{Accuracy: 0.95, ECE: 0.06}))
}

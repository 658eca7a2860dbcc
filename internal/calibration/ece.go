package calibration

// ComputeECE computes the Expected Calibration Error over a prediction set.
// Predictions are confidences in [0, 1]; labels report whether each
// prediction was correct. Predictions are binned into nBins equal-width
// buckets by confidence; each bucket contributes |mean confidence - accuracy|
// weighted by its share of the population.
//
// The formula is deterministic given identical inputs, which the promotion
// gate relies on for regression tests. Not used on the hot path.
func ComputeECE(predictions []float64, labels []bool, nBins int) float64 {
	if len(predictions) == 0 || len(predictions) != len(labels) || nBins <= 0 {
		return 0
	}

	counts := make([]int, nBins)
	confSums := make([]float64, nBins)
	correct := make([]int, nBins)

	for i, p := range predictions {
		if p < 0 {
			p = 0
		}
		if p > 1 {
			p = 1
		}
		bin := int(p * float64(nBins))
		if bin == nBins {
			bin = nBins - 1 // p == 1.0 falls in the top bucket
		}
		counts[bin]++
		confSums[bin] += p
		if labels[i] {
			correct[bin]++
		}
	}

	total := float64(len(predictions))
	ece := 0.0
	for b := 0; b < nBins; b++ {
		if counts[b] == 0 {
			continue
		}
		n := float64(counts[b])
		meanConf := confSums[b] / n
		accuracy := float64(correct[b]) / n
		gap := meanConf - accuracy
		if gap < 0 {
			gap = -gap
		}
		ece += gap * n / total
	}

	return ece
}

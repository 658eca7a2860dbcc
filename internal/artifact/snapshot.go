package artifact

import (
	"fmt"
	"time"

	"github.com/templeobijnr/easy-islanders-router/internal/calibration"
)

// ConfigError marks a fatal configuration or artifact mismatch. Detected at
// startup (or during a refresh, where it rejects the candidate generation);
// the process must refuse to serve on a startup ConfigError.
type ConfigError struct {
	msg string
}

func (e *ConfigError) Error() string { return e.msg }

func configErrorf(format string, args ...interface{}) *ConfigError {
	return &ConfigError{msg: fmt.Sprintf(format, args...)}
}

// Centroid is the mean embedding vector of one domain's exemplars.
type Centroid struct {
	Vector       []float64 `json:"vector"`
	SupportCount int       `json:"support_count"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Classifier is a linear (logistic) model over the fused feature vector.
// One weight row and bias per domain.
type Classifier struct {
	Version    string               `json:"version"`
	FeatureDim int                  `json:"feature_dim"`
	Weights    map[string][]float64 `json:"weights"`
	Bias       map[string]float64   `json:"bias"`
}

// Snapshot is one fully-formed generation of serving artifacts: domain
// centroids, per-domain Platt parameters and the classifier, all produced
// by the same offline run. Snapshots are replaced wholesale and never
// partially updated, so a fusion pass never mixes generations.
type Snapshot struct {
	Generation   string                        `json:"generation"`
	ModelName    string                        `json:"model_name"`
	ModelVersion string                        `json:"model_version"`
	Dim          int                           `json:"dim"`
	Centroids    map[string]Centroid           `json:"centroids"`
	Calibration  map[string]calibration.Params `json:"calibration"`
	Classifier   *Classifier                   `json:"classifier,omitempty"`
	Metrics      calibration.Metrics           `json:"metrics"`
	EvaluatedAt  time.Time                     `json:"evaluated_at"`
}

// Validate checks the snapshot against the configured embedding model and
// domain set. Any mismatch is a ConfigError: centroids for a different
// model version must never reach a fusion pass.
func (s *Snapshot) Validate(modelName, modelVersion string, domains []string) error {
	if s.Generation == "" {
		return configErrorf("snapshot has empty generation")
	}

	if s.ModelName != modelName || s.ModelVersion != modelVersion {
		return configErrorf("snapshot %s built for embedding model %s/%s, configured model is %s/%s",
			s.Generation, s.ModelName, s.ModelVersion, modelName, modelVersion)
	}

	if s.Dim <= 0 {
		return configErrorf("snapshot %s has invalid embedding dimension %d", s.Generation, s.Dim)
	}

	for _, d := range domains {
		c, ok := s.Centroids[d]
		if !ok {
			return configErrorf("snapshot %s missing centroid for domain %q", s.Generation, d)
		}
		if len(c.Vector) != s.Dim {
			return configErrorf("snapshot %s centroid for %q has dimension %d, want %d",
				s.Generation, d, len(c.Vector), s.Dim)
		}

		p, ok := s.Calibration[d]
		if !ok {
			return configErrorf("snapshot %s missing calibration params for domain %q", s.Generation, d)
		}
		if err := p.Validate(); err != nil {
			return configErrorf("snapshot %s calibration for %q: %v", s.Generation, d, err)
		}
	}

	if s.Classifier != nil {
		if s.Classifier.FeatureDim <= 0 {
			return configErrorf("snapshot %s classifier has invalid feature dimension", s.Generation)
		}
		for _, d := range domains {
			w, ok := s.Classifier.Weights[d]
			if !ok {
				return configErrorf("snapshot %s classifier missing weights for domain %q", s.Generation, d)
			}
			if len(w) != s.Classifier.FeatureDim {
				return configErrorf("snapshot %s classifier weights for %q have length %d, want %d",
					s.Generation, d, len(w), s.Classifier.FeatureDim)
			}
		}
	}

	if !calibration.MeetsGates(s.Metrics) {
		return configErrorf("snapshot %s fails acceptance gates: accuracy=%g ece=%g",
			s.Generation, s.Metrics.Accuracy, s.Metrics.ECE)
	}

	return nil
}

package feature

import (
	"context"

	"github.com/templeobijnr/easy-islanders-router/internal/intent"
	"go.uber.org/zap"
)

// Embedder produces an embedding vector for a text. Implementations are
// expected to carry their own timeout and resilience policy.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Bundle is the output of feature extraction for one utterance.
type Bundle struct {
	// NormalizedText is the idempotently normalized utterance.
	NormalizedText string

	// Embedding is the utterance embedding, or nil when the embedding
	// provider was unavailable. Downstream providers degrade on nil
	// instead of failing the request.
	Embedding []float64

	// Hint carries the caller-supplied context.
	Hint intent.ContextHint

	// EmbedCalls is the number of embedding provider calls attempted,
	// used for the event cost estimate.
	EmbedCalls int
}

// Extractor normalizes utterances and fetches embeddings.
type Extractor struct {
	embedder Embedder
	logger   *zap.Logger
}

// NewExtractor creates a new extractor. The embedder may be nil, in which
// case bundles never carry an embedding.
func NewExtractor(embedder Embedder, logger *zap.Logger) *Extractor {
	return &Extractor{
		embedder: embedder,
		logger:   logger,
	}
}

// Extract builds the feature bundle for an utterance. The only side effect
// is the single embedding provider call; a provider failure marks the
// embedding absent rather than returning an error.
func (e *Extractor) Extract(ctx context.Context, utterance string, hint intent.ContextHint) *Bundle {
	bundle := &Bundle{
		NormalizedText: Normalize(utterance),
		Hint:           hint,
	}

	if e.embedder == nil {
		return bundle
	}

	bundle.EmbedCalls = 1
	vec, err := e.embedder.Embed(ctx, bundle.NormalizedText)
	if err != nil {
		e.logger.Warn("embedding unavailable, degrading to reduced signal set",
			zap.Error(err),
		)
		return bundle
	}

	bundle.Embedding = vec
	return bundle
}

package artifact

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Refresher polls the snapshot source for a newer active generation and
// publishes it to the provider after validation. A candidate that fails
// validation is rejected and the current generation keeps serving.
type Refresher struct {
	source       Source
	provider     *Provider
	modelName    string
	modelVersion string
	domains      []string
	interval     time.Duration
	logger       *zap.Logger
	cancel       context.CancelFunc
	done         chan struct{}
}

// NewRefresher creates a refresher. Start must be called to begin polling.
func NewRefresher(source Source, provider *Provider, modelName, modelVersion string, domains []string, interval time.Duration, logger *zap.Logger) *Refresher {
	return &Refresher{
		source:       source,
		provider:     provider,
		modelName:    modelName,
		modelVersion: modelVersion,
		domains:      domains,
		interval:     interval,
		logger:       logger,
		done:         make(chan struct{}),
	}
}

// LoadInitial fetches, validates and publishes the active snapshot. A
// failure here is fatal: the process must refuse to serve without a valid
// generation.
func (r *Refresher) LoadInitial(ctx context.Context) error {
	gen, err := r.source.ActiveGeneration(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve active snapshot: %w", err)
	}

	snap, err := r.source.Load(ctx, gen)
	if err != nil {
		return fmt.Errorf("failed to load snapshot %s: %w", gen, err)
	}

	if err := snap.Validate(r.modelName, r.modelVersion, r.domains); err != nil {
		return err
	}

	r.provider.Publish(snap)
	r.logger.Info("snapshot loaded",
		zap.String("generation", snap.Generation),
		zap.String("model", snap.ModelName+"/"+snap.ModelVersion),
		zap.Int("dim", snap.Dim),
	)
	return nil
}

// Start begins the background polling loop.
func (r *Refresher) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	go func() {
		defer close(r.done)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.refresh(ctx)
			}
		}
	}()
}

// Stop stops the polling loop and waits for it to exit.
func (r *Refresher) Stop() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	<-r.done
}

func (r *Refresher) refresh(ctx context.Context) {
	gen, err := r.source.ActiveGeneration(ctx)
	if err != nil {
		r.logger.Warn("snapshot refresh: failed to resolve active generation", zap.Error(err))
		return
	}

	current := r.provider.Current()
	if current != nil && current.Generation == gen {
		return
	}

	snap, err := r.source.Load(ctx, gen)
	if err != nil {
		r.logger.Warn("snapshot refresh: failed to load candidate",
			zap.String("generation", gen),
			zap.Error(err),
		)
		return
	}

	if err := snap.Validate(r.modelName, r.modelVersion, r.domains); err != nil {
		r.logger.Error("snapshot refresh: candidate rejected, keeping current generation",
			zap.String("generation", gen),
			zap.Error(err),
		)
		return
	}

	r.provider.Publish(snap)
	r.logger.Info("snapshot promoted",
		zap.String("generation", snap.Generation),
		zap.String("previous", func() string {
			if current == nil {
				return ""
			}
			return current.Generation
		}()),
	)
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/templeobijnr/easy-islanders-router/internal/artifact"
	"github.com/templeobijnr/easy-islanders-router/internal/config"
	"github.com/templeobijnr/easy-islanders-router/internal/embed"
	"github.com/templeobijnr/easy-islanders-router/internal/feature"
	"github.com/templeobijnr/easy-islanders-router/internal/intent"
	"github.com/templeobijnr/easy-islanders-router/internal/resilience"
	"github.com/templeobijnr/easy-islanders-router/internal/router"
	"github.com/templeobijnr/easy-islanders-router/internal/safety"
	"github.com/templeobijnr/easy-islanders-router/internal/sticky"
	"github.com/templeobijnr/easy-islanders-router/internal/worker"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Version is set at build time
	Version = "dev"
	// BuildTime is set at build time
	BuildTime = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting intent router",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("worker_id", cfg.WorkerID),
	)

	// Log configuration (without sensitive data)
	logger.Info("configuration loaded", zap.String("config", cfg.String()))

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// Test Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))

	// Load the active artifact snapshot. A missing or mismatched
	// generation is a fatal configuration error: refuse to serve.
	snapshots := artifact.NewProvider()
	source := artifact.NewRedisSource(redisClient, cfg.SnapshotKeyPrefix)
	refresher := artifact.NewRefresher(
		source, snapshots,
		cfg.EmbedModel, cfg.EmbedModelVersion,
		cfg.Domains, cfg.RefreshInterval,
		logger,
	)
	if err := refresher.LoadInitial(ctx); err != nil {
		logger.Fatal("failed to load artifact snapshot", zap.Error(err))
	}
	refresher.Start()

	// Compile safety rules; a malformed rule is fatal.
	safetyFilter, err := safety.NewFilter(cfg.SafetyRules, logger)
	if err != nil {
		logger.Fatal("failed to compile safety rules", zap.Error(err))
	}

	// Embedding provider behind the resilience guard
	embedClient := embed.NewClient(cfg.EmbedURL, cfg.EmbedModel, cfg.EmbedTimeout, logger)
	embedGuard := resilience.NewGuard(
		"embedding-provider",
		cfg.BreakerThreshold, cfg.BreakerCooldown,
		cfg.MaxRetries, cfg.EmbedTimeout,
		logger,
	)
	extractor := feature.NewExtractor(embed.NewGuarded(embedClient, embedGuard), logger)

	// Sticky context store
	var stickyStore sticky.Store
	switch cfg.StickyBackend {
	case "redis":
		stickyStore = sticky.NewRedisStore(redisClient, cfg.StickyTTL)
	default:
		stickyStore = sticky.NewMemoryStore(cfg.StickyTTL)
	}
	logger.Info("sticky store initialized",
		zap.String("backend", cfg.StickyBackend),
		zap.Duration("ttl", cfg.StickyTTL),
	)

	// Initialize event sink (Redis Streams implementation)
	eventSink := NewRedisEventSink(redisClient, cfg.EventStream, logger)

	// Initialize router
	routerInstance := router.NewRouter(cfg, extractor, safetyFilter, stickyStore, snapshots, eventSink, logger)
	logger.Info("router initialized")

	// Initialize worker
	w := worker.NewWorker(cfg, redisClient, routerInstance, logger)

	// Start worker
	if err := w.Start(); err != nil {
		logger.Fatal("failed to start worker", zap.Error(err))
	}

	// Start health server
	healthServer := worker.NewHealthServer(cfg.HealthPort, redisClient, snapshots, logger)
	if err := healthServer.Start(); err != nil {
		logger.Fatal("failed to start health server", zap.Error(err))
	}

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("intent router running, press Ctrl+C to stop")
	<-sigChan

	logger.Info("shutdown signal received, stopping worker")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Stop health server
	if err := healthServer.Stop(); err != nil {
		logger.Error("failed to stop health server", zap.Error(err))
	}

	// Stop worker and refresher
	if err := w.Stop(); err != nil {
		logger.Error("failed to stop worker", zap.Error(err))
	}
	refresher.Stop()

	// Close Redis connection
	if err := redisClient.Close(); err != nil {
		logger.Error("failed to close redis connection", zap.Error(err))
	}

	select {
	case <-shutdownCtx.Done():
		logger.Warn("shutdown timeout exceeded, forcing exit")
	default:
		logger.Info("worker stopped gracefully")
	}
}

// initLogger initializes the logger
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}

// RedisEventSink implements router.EventSink using Redis Streams. Events
// are appended for offline evaluation and retraining; history trimming is
// the retraining job's responsibility.
type RedisEventSink struct {
	client *redis.Client
	stream string
	logger *zap.Logger
}

// NewRedisEventSink creates a new Redis event sink
func NewRedisEventSink(client *redis.Client, stream string, logger *zap.Logger) *RedisEventSink {
	return &RedisEventSink{
		client: client,
		stream: stream,
		logger: logger,
	}
}

// Append appends a router event to the event stream
func (s *RedisEventSink) Append(ctx context.Context, ev *intent.RouterEvent) error {
	// Marshal event to JSON
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// Append to Redis stream
	_, err = s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()

	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}

	return nil
}

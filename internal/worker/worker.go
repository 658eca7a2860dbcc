package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/templeobijnr/easy-islanders-router/internal/config"
	"github.com/templeobijnr/easy-islanders-router/internal/intent"
	"github.com/templeobijnr/easy-islanders-router/internal/router"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Worker consumes classification requests from a Redis stream and publishes
// routing decisions. Each message is handled by its own goroutine; the
// router is safe under unbounded concurrent invocation.
type Worker struct {
	id            string
	config        *config.Config
	redisClient   *redis.Client
	router        *router.Router
	logger        *zap.Logger
	ctx           context.Context
	cancel        context.CancelFunc
	streamKey     string
	consumerGroup string
	resultStream  string
}

// NewWorker creates a new worker
func NewWorker(
	cfg *config.Config,
	redisClient *redis.Client,
	routerInstance *router.Router,
	logger *zap.Logger,
) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	return &Worker{
		id:            cfg.WorkerID,
		config:        cfg,
		redisClient:   redisClient,
		router:        routerInstance,
		logger:        logger,
		ctx:           ctx,
		cancel:        cancel,
		streamKey:     cfg.StreamKey,
		consumerGroup: cfg.ConsumerGroup,
		resultStream:  cfg.ResultStream,
	}
}

// Start starts the worker
func (w *Worker) Start() error {
	w.logger.Info("starting intent router worker",
		zap.String("worker_id", w.id),
		zap.String("stream_key", w.streamKey),
		zap.String("consumer_group", w.consumerGroup),
	)

	// Create consumer group if it doesn't exist
	if err := w.ensureConsumerGroup(); err != nil {
		return fmt.Errorf("failed to ensure consumer group: %w", err)
	}

	// Start processing requests
	go w.processRequests()

	w.logger.Info("intent router worker started", zap.String("worker_id", w.id))
	return nil
}

// Stop stops the worker gracefully
func (w *Worker) Stop() error {
	w.logger.Info("stopping intent router worker", zap.String("worker_id", w.id))

	// Cancel context to stop request processing
	w.cancel()

	// Wait a bit for in-flight requests to complete
	time.Sleep(2 * time.Second)

	w.logger.Info("intent router worker stopped", zap.String("worker_id", w.id))
	return nil
}

// ensureConsumerGroup creates the consumer group if it doesn't exist
func (w *Worker) ensureConsumerGroup() error {
	// Try to create the group
	err := w.redisClient.XGroupCreateMkStream(w.ctx, w.streamKey, w.consumerGroup, "0").Err()
	if err != nil {
		// BUSYGROUP error means the group already exists, which is fine
		if err.Error() == "BUSYGROUP Consumer Group name already exists" {
			w.logger.Debug("consumer group already exists",
				zap.String("group", w.consumerGroup),
			)
			return nil
		}
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	w.logger.Info("created consumer group",
		zap.String("group", w.consumerGroup),
		zap.String("stream", w.streamKey),
	)
	return nil
}

// processRequests processes classification requests from the Redis stream
func (w *Worker) processRequests() {
	w.logger.Info("starting request processing loop")

	for {
		select {
		case <-w.ctx.Done():
			w.logger.Info("request processing loop stopped")
			return
		default:
			// Read from stream
			streams, err := w.redisClient.XReadGroup(w.ctx, &redis.XReadGroupArgs{
				Group:    w.consumerGroup,
				Consumer: w.id,
				Streams:  []string{w.streamKey, ">"},
				Count:    8,
				Block:    w.config.BlockTime,
			}).Result()

			if err != nil {
				if err == redis.Nil {
					// No messages available, continue
					continue
				}
				w.logger.Error("failed to read from stream",
					zap.Error(err),
				)
				time.Sleep(time.Second)
				continue
			}

			// Each request gets its own goroutine; there is no shared
			// mutable state across requests beyond the router's snapshot
			// and sticky store.
			for _, stream := range streams {
				for _, message := range stream.Messages {
					go w.handleMessage(message)
				}
			}
		}
	}
}

// handleMessage handles a single classification request message
func (w *Worker) handleMessage(message redis.XMessage) {
	messageID := message.ID
	w.logger.Debug("processing classification request",
		zap.String("message_id", messageID),
	)

	// Parse the request
	req, err := w.parseRequest(message.Values)
	if err != nil {
		w.logger.Error("failed to parse classification request",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
		w.acknowledgeMessage(messageID)
		return
	}

	// Classify
	resp, err := w.router.Route(w.ctx, req)
	if err != nil {
		w.logger.Error("classification failed",
			zap.String("message_id", messageID),
			zap.String("thread_id", req.ThreadID),
			zap.Error(err),
		)
		w.publishError(req, err)
		w.acknowledgeMessage(messageID)
		return
	}

	// Publish routing decision
	if err := w.publishDecision(req, resp); err != nil {
		w.logger.Error("failed to publish decision",
			zap.String("message_id", messageID),
			zap.String("thread_id", req.ThreadID),
			zap.Error(err),
		)
	}

	// Acknowledge the message
	w.acknowledgeMessage(messageID)
}

// parseRequest parses a classification request from Redis message values
func (w *Worker) parseRequest(values map[string]interface{}) (*intent.Request, error) {
	dataStr, ok := values["data"].(string)
	if !ok {
		return nil, fmt.Errorf("missing or invalid 'data' field")
	}

	var req intent.Request
	if err := json.Unmarshal([]byte(dataStr), &req); err != nil {
		return nil, fmt.Errorf("failed to unmarshal request: %w", err)
	}

	return &req, nil
}

// publishDecision publishes the routing decision to the result stream
func (w *Worker) publishDecision(req *intent.Request, resp *intent.Response) error {
	decision := map[string]interface{}{
		"thread_id":         req.ThreadID,
		"action":            resp.Action,
		"domain":            resp.Domain,
		"calibrated_scores": resp.CalibratedScores,
		"clarification":     resp.Clarification,
		"trace":             resp.Trace,
		"timestamp":         time.Now().UTC(),
	}

	data, err := json.Marshal(decision)
	if err != nil {
		return fmt.Errorf("failed to marshal decision: %w", err)
	}

	// Publish to result stream
	_, err = w.redisClient.XAdd(w.ctx, &redis.XAddArgs{
		Stream: w.resultStream,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()

	if err != nil {
		return fmt.Errorf("failed to publish to stream: %w", err)
	}

	w.logger.Info("published routing decision",
		zap.String("thread_id", req.ThreadID),
		zap.String("action", string(resp.Action)),
		zap.String("domain", resp.Domain),
	)

	return nil
}

// publishError publishes an error event for invalid or failed requests
func (w *Worker) publishError(req *intent.Request, routeErr error) {
	kind := "internal"
	if errors.Is(routeErr, router.ErrInvalidInput) {
		kind = "invalid_input"
	}

	errorEvent := map[string]interface{}{
		"thread_id": req.ThreadID,
		"error":     routeErr.Error(),
		"kind":      kind,
		"timestamp": time.Now().UTC(),
	}

	data, marshalErr := json.Marshal(errorEvent)
	if marshalErr != nil {
		w.logger.Error("failed to marshal error event", zap.Error(marshalErr))
		return
	}

	// Publish error to a separate stream
	_, publishErr := w.redisClient.XAdd(w.ctx, &redis.XAddArgs{
		Stream: w.resultStream + ".errors",
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()

	if publishErr != nil {
		w.logger.Error("failed to publish error event", zap.Error(publishErr))
	}
}

// acknowledgeMessage acknowledges a message from the stream
func (w *Worker) acknowledgeMessage(messageID string) {
	err := w.redisClient.XAck(w.ctx, w.streamKey, w.consumerGroup, messageID).Err()
	if err != nil {
		w.logger.Error("failed to acknowledge message",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
	}
}

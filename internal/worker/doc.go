// Package worker implements the intent router worker lifecycle and Redis
// Streams integration.
//
// The worker subscribes to a Redis stream of classification requests,
// runs each through the router pipeline in its own goroutine, and
// publishes routing decisions to the result stream.
//
// Example usage:
//
//	cfg, _ := config.Load()
//	redisClient := redis.NewClient(&redis.Options{...})
//
//	worker := worker.NewWorker(cfg, redisClient, routerInstance, logger)
//	if err := worker.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer worker.Stop()
//
// The worker handles:
//   - Redis Streams subscription and consumer group management
//   - Classification request processing
//   - Routing decision publishing
//   - Error handling and reporting
//   - Graceful shutdown
//
// Health and readiness checks run on a separate HTTP server; readiness
// requires both a live Redis connection and a published artifact snapshot:
//
//	healthServer := worker.NewHealthServer(8082, redisClient, snapshots, logger)
//	healthServer.Start()
//	defer healthServer.Stop()
package worker

// Package config provides configuration management for the intent router.
//
// Configuration is loaded from environment variables and validated on startup.
// All configuration options have sensible defaults for development. Fusion
// weights, the governance threshold, the tie-break epsilon and the domain
// priority order are configuration rather than code, so deployments can tune
// routing behavior without a rebuild.
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg)
package config

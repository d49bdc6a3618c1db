package gateway

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config holds the gateway's process configuration. It is loaded once at
// startup and immutable thereafter.
type Config struct {
	// ProjectID is the default project used when a request does not name one.
	ProjectID  string
	ListenAddr string
	// RateLimitCount and RateLimitWindow bound inbound publish requests per caller IP.
	RateLimitCount  int
	RateLimitWindow time.Duration
}

const (
	defaultPort            = "8080"
	defaultRateLimitCount  = 100
	defaultRateLimitWindow = 15 * time.Minute
)

// LoadConfigFromEnv loads gateway configuration from environment variables.
func LoadConfigFromEnv() (*Config, error) {
	cfg := &Config{
		ProjectID:       os.Getenv("GCP_PROJECT_ID"),
		ListenAddr:      ":" + defaultPort,
		RateLimitCount:  defaultRateLimitCount,
		RateLimitWindow: defaultRateLimitWindow,
	}
	if cfg.ProjectID == "" {
		return nil, errors.New("GCP_PROJECT_ID environment variable not set for the publish gateway")
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.ListenAddr = ":" + port
	}
	// Optionally override the publish endpoint rate limit.
	if rl := os.Getenv("PUBLISH_RATE_LIMIT"); rl != "" {
		if val, err := strconv.Atoi(rl); err == nil && val > 0 {
			cfg.RateLimitCount = val
		}
	}
	if rw := os.Getenv("PUBLISH_RATE_WINDOW"); rw != "" {
		if val, err := time.ParseDuration(rw); err == nil && val > 0 {
			cfg.RateLimitWindow = val
		}
	}
	return cfg, nil
}

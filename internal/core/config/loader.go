package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults if necessary
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Redis.URL == "" {
		cfg.Redis.URL = "redis://localhost:6379"
	}
	if cfg.Redis.QueueKey == "" {
		cfg.Redis.QueueKey = "bid_queue"
	}
	if cfg.Worker.MaxRetries == 0 {
		cfg.Worker.MaxRetries = 5
	}
	if cfg.Worker.BackoffBase == 0 {
		cfg.Worker.BackoffBase = 500 * time.Millisecond
	}
	if cfg.Worker.PopTimeout == 0 {
		cfg.Worker.PopTimeout = 5 * time.Second
	}
	if cfg.Worker.PendingTable == "" {
		cfg.Worker.PendingTable = "pending_bids"
	}

	return &cfg, nil
}

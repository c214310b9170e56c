package config

import (
	"time"

	redisclient "github.com/auctionlab/bidworker/internal/infra/redis"
	"github.com/auctionlab/bidworker/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	Redis    redisclient.Config `yaml:"redis"`
	Database postgres.Config    `yaml:"database"`
	Worker   WorkerConfig       `yaml:"worker"`
	Logging  LoggingConfig      `yaml:"logging"`
}

// ServerConfig holds the health/metrics HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// WorkerConfig holds queue-consumption tuning.
type WorkerConfig struct {
	MaxRetries   int           `yaml:"max_retries"`
	BackoffBase  time.Duration `yaml:"backoff_base"`
	PopTimeout   time.Duration `yaml:"pop_timeout"`
	PendingTable string        `yaml:"pending_table"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Package config provides configuration structures and validation for the
// application. It handles environment-based configuration for the HTTP
// server, the document database, and the ledger's operational parameters.
package config

import (
	"errors"
	"strings"
	"time"
)

// Config holds the complete application configuration. Each field covers one
// subsystem and is validated during startup.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	MongoDB     MongoDBConfig
	RecycleBin  RecycleBinConfig
	BadDebt     BadDebtConfig
	Reconcile   ReconcileConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int           // Port to listen on
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration // Maximum duration for reading entire request
	WriteTimeout    time.Duration // Maximum duration for writing response
	IdleTimeout     time.Duration // Maximum duration to wait for next request
}

// MongoDBConfig contains MongoDB configuration
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// RecycleBinConfig controls soft-delete retention.
type RecycleBinConfig struct {
	// Retention is how long a deleted row survives before the sweep purges
	// it permanently.
	Retention time.Duration
}

// BadDebtConfig controls receivable aging.
type BadDebtConfig struct {
	AgingMonths int // sales older than this many civil months count as bad debt
}

// ReconcileConfig contains batch recalculation configuration
type ReconcileConfig struct {
	WorkerPoolSize int // concurrent per-party recalculations in a batch run
}

// validate performs comprehensive validation of all configuration values,
// ensuring they meet minimum requirements and logical constraints
func (c *Config) validate() error {
	var validationErrors []string

	// Validate Server config
	if c.Server.Port <= 0 {
		validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT must be greater than 0")
	}
	if c.Server.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if c.Server.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_IDLE_TIMEOUT must be greater than 0")
	}

	// Validate MongoDB config
	if c.MongoDB.URI == "" {
		validationErrors = append(validationErrors, "MONGO_URI is required")
	}
	if c.MongoDB.Database == "" {
		validationErrors = append(validationErrors, "MONGO_DATABASE is required")
	}
	if c.MongoDB.Timeout <= 0 {
		validationErrors = append(validationErrors, "MONGO_TIMEOUT must be greater than 0")
	}
	if c.MongoDB.MaxPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_POOL_SIZE must be greater than 0")
	}
	if c.MongoDB.MinPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MIN_POOL_SIZE must be greater than 0")
	}
	if c.MongoDB.MaxConnIdleTime <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	// Validate RecycleBin config
	if c.RecycleBin.Retention <= 0 {
		validationErrors = append(validationErrors, "RECYCLE_BIN_RETENTION must be greater than 0")
	}

	// Validate BadDebt config
	if c.BadDebt.AgingMonths <= 0 {
		validationErrors = append(validationErrors, "BAD_DEBT_AGING_MONTHS must be greater than 0")
	}

	// Validate Reconcile config
	if c.Reconcile.WorkerPoolSize <= 0 {
		validationErrors = append(validationErrors, "RECONCILE_WORKER_POOL_SIZE must be greater than 0")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}

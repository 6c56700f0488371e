// Package config handles configuration for AccountKeeper,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the account store.
//
// Fields:
//   - MongoURI: MongoDB connection string.
//   - Database: database holding the users and sessions collections.
//   - ConnectTimeout: bound on establishing the backend connection.
//   - OperationTimeout: bound on a single store round-trip, so account
//     operations fail fast instead of hanging on a slow backend.
//   - BcryptCost: work factor for password hashing.
type Config struct {
	MongoURI         string
	Database         string
	ConnectTimeout   time.Duration
	OperationTimeout time.Duration
	BcryptCost       int
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.MongoURI = "mongodb://localhost:27017"
	c.Database = "accountkeeper"
	c.ConnectTimeout = 2 * time.Second
	c.OperationTimeout = 2500 * time.Millisecond
	c.BcryptCost = 12
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

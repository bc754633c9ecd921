package app

import (
	"errors"
	"fmt"
)

// DefaultStoreDatabase is used when a store URI is given without a database.
const DefaultStoreDatabase = "dynagrid"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Paths []string // .hcl files or directories searched recursively

	LogFormat   string
	LogLevel    string
	WorkerCount int

	StoreURI      string // store to copy documents into; empty disables copying
	StoreDatabase string // MongoDB only
}

func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.Paths) == 0 {
		return nil, errors.New("at least one document path is required")
	}
	if cfg.WorkerCount < 1 {
		return nil, fmt.Errorf("workers must be at least 1, got %d", cfg.WorkerCount)
	}
	if cfg.StoreURI != "" {
		if _, err := storeScheme(cfg.StoreURI); err != nil {
			return nil, err
		}
		if cfg.StoreDatabase == "" {
			cfg.StoreDatabase = DefaultStoreDatabase
		}
	}
	return &cfg, nil
}

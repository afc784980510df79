package storage

import (
	"context"
	"fmt"
)

// Config holds storage configuration
type Config struct {
	Driver string // "sqlite", "postgres", "mongodb"

	// Dimensions is the fixed width of every vector column. It is baked
	// into the schema, so it must match the embedding model chosen for
	// the deployment.
	Dimensions int

	// SearchField selects which embedding column similarity search
	// orders by: "title", "excerpt", or "body"
	SearchField string

	// SQLite
	SQLitePath string

	// Postgres
	PostgresDSN string

	// MongoDB
	MongoDBURI      string
	MongoDBDatabase string
}

const (
	defaultDimensions  = 384
	defaultSearchField = "body"
)

func (c *Config) applyDefaults() error {
	if c.Dimensions <= 0 {
		c.Dimensions = defaultDimensions
	}
	if c.SearchField == "" {
		c.SearchField = defaultSearchField
	}
	switch c.SearchField {
	case "title", "excerpt", "body":
	default:
		return fmt.Errorf("unknown search field: %s", c.SearchField)
	}
	return nil
}

// New creates a Store implementation based on config
func New(ctx context.Context, cfg Config) (Store, error) {
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}

	switch cfg.Driver {
	case "sqlite":
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("sqlite path is required")
		}
		return NewSQLite(cfg.SQLitePath, cfg.Dimensions, cfg.SearchField)

	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres DSN is required")
		}
		return NewPostgres(ctx, cfg.PostgresDSN, cfg.Dimensions, cfg.SearchField)

	case "mongodb":
		if cfg.MongoDBURI == "" {
			return nil, fmt.Errorf("mongodb URI is required")
		}
		if cfg.MongoDBDatabase == "" {
			cfg.MongoDBDatabase = "articlevec"
		}
		return NewMongoDB(ctx, cfg.MongoDBURI, cfg.MongoDBDatabase, cfg.Dimensions, cfg.SearchField)

	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Driver)
	}
}

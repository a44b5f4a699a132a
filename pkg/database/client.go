package database

import (
	"context"

	"entgo.io/ent/dialect"

	"github.com/Alijeyrad/optica_backend/config"
	"github.com/Alijeyrad/optica_backend/internal/repo"
	"github.com/Alijeyrad/optica_backend/internal/schema"
)

// NewClient creates a store client from central config
func NewClient(cfg config.DatabaseConfig) (*repo.Client, error) {
	return NewClientFromConfig(FromCentralConfig(cfg))
}

// NewClientFromConfig creates a store client from package Config
func NewClientFromConfig(cfg Config, opts ...repo.Option) (*repo.Client, error) {
	db, err := openSQLDB(cfg)
	if err != nil {
		return nil, err
	}

	return repo.NewClient(db, entDialect(cfg), opts...), nil
}

// Migrate creates or upgrades every table through the ent migrator.
func Migrate(ctx context.Context, client *repo.Client) error {
	return schema.Create(ctx, client.Driver())
}

func entDialect(cfg Config) string {
	if cfg.Driver == config.DriverPostgres {
		return dialect.Postgres
	}
	return dialect.SQLite
}

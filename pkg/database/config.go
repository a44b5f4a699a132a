package database

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Alijeyrad/optica_backend/config"
)

// Config holds database connection and behavior settings
type Config struct {
	Driver string

	// SQLite
	Path string

	// PostgreSQL
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string

	// Connection pooling
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int

	// Migration control
	AutoMigrate bool
}

// DSN returns the connection string for the configured driver.
func (c Config) DSN() string {
	if c.Driver == config.DriverPostgres {
		return buildPostgresDSN(c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
	}
	return buildSQLiteDSN(c.Path)
}

// DriverName is the database/sql driver registered for the configured backend.
func (c Config) DriverName() string {
	if c.Driver == config.DriverPostgres {
		return "postgres"
	}
	return "sqlite"
}

// InMemory reports whether the SQLite store lives only as long as its connection.
func (c Config) InMemory() bool {
	return c.Driver != config.DriverPostgres && (c.Path == ":memory:" || strings.Contains(c.Path, "mode=memory"))
}

// ConnMaxLifetime returns the connection max lifetime as a duration
func (c Config) ConnMaxLifetime() time.Duration {
	if c.ConnMaxLifetimeMin <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.ConnMaxLifetimeMin) * time.Minute
}

// DefaultConfig returns sensible defaults for database configuration
func DefaultConfig() Config {
	return Config{
		Driver:             config.DriverSQLite,
		Path:               "optica.db",
		Host:               "localhost",
		Port:               5432,
		SSLMode:            "disable",
		MaxOpenConns:       25,
		MaxIdleConns:       5,
		ConnMaxLifetimeMin: 5,
		AutoMigrate:        true,
	}
}

// MemoryConfig returns a throwaway SQLite configuration, used by tests.
func MemoryConfig() Config {
	cfg := DefaultConfig()
	cfg.Path = ":memory:"
	return cfg
}

// FromCentralConfig converts central config.DatabaseConfig to package Config
func FromCentralConfig(c config.DatabaseConfig) Config {
	return Config{
		Driver:             strings.ToLower(c.Driver),
		Path:               c.Path,
		Host:               c.Host,
		Port:               c.Port,
		User:               c.User,
		Password:           c.Password,
		DBName:             c.DBName,
		SSLMode:            c.SSLMode,
		MaxOpenConns:       c.Pool.MaxOpenConns,
		MaxIdleConns:       c.Pool.MaxIdleConns,
		ConnMaxLifetimeMin: c.Pool.ConnMaxLifetimeMin,
		AutoMigrate:        c.Migrations.AutoMigrate,
	}
}

// NewDSN creates a DSN string from central config.DatabaseConfig
func NewDSN(c config.DatabaseConfig) string {
	return FromCentralConfig(c).DSN()
}

// buildPostgresDSN creates a PostgreSQL connection string
func buildPostgresDSN(host string, port int, user, password, dbname, sslmode string) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode,
	)
}

// buildSQLiteDSN enables foreign keys (required for cascades and by the ent
// migrator) and stores times in a format SQLite can compare.
func buildSQLiteDSN(path string) string {
	params := url.Values{}
	params.Add("_pragma", "foreign_keys(1)")
	params.Add("_pragma", "busy_timeout(5000)")
	params.Set("_time_format", "sqlite")

	if path == ":memory:" {
		return path + "?" + params.Encode()
	}
	if strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + params.Encode()
	}
	return "file:" + path + "?" + params.Encode()
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadConfigDefaults(t *testing.T) {
	cfg, err := ReadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "optica.db", cfg.Database.Path)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Dashboard.CacheTTL())
	assert.Equal(t, time.UTC, cfg.Business.Location())
}

func TestReadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("server:\n  port: 9090\nbusiness:\n  timezone: America/Santiago\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	t.Setenv("OPTICA_DATABASE_PATH", "/tmp/other.db")

	cfg, err := ReadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/tmp/other.db", cfg.Database.Path)
	assert.Equal(t, "America/Santiago", cfg.Business.Location().String())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid sqlite", mutate: func(c *Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: true},
		{name: "sqlite without path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: true},
		{name: "postgres without host", mutate: func(c *Config) {
			c.Database.Driver = DriverPostgres
			c.Database.Host = ""
		}, wantErr: true},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: true},
		{name: "relative base path", mutate: func(c *Config) { c.Server.BasePath = "api" }, wantErr: true},
		{name: "unknown timezone", mutate: func(c *Config) { c.Business.Timezone = "Mars/Olympus" }, wantErr: true},
		{name: "redis enabled without addr", mutate: func(c *Config) {
			c.Redis.Enabled = true
			c.Redis.Addr = ""
		}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{
				Database: DatabaseConfig{Driver: DriverSQLite, Path: "x.db", Host: "localhost", DBName: "optica"},
				Server:   ServerConfig{Port: 8000},
			}
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

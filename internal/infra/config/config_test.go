package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	accessSecret  = "access-secret-0123456789abcdefghijkl"
	refreshSecret = "refresh-secret-0123456789abcdefghijk"
)

func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Auth.AccessSecret = accessSecret
	cfg.Auth.RefreshSecret = refreshSecret
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "short access secret", mutate: func(c *Config) { c.Auth.AccessSecret = "short" }, wantErr: "auth.accessSecret"},
		{name: "short refresh secret", mutate: func(c *Config) { c.Auth.RefreshSecret = "short" }, wantErr: "auth.refreshSecret"},
		{name: "identical secrets", mutate: func(c *Config) { c.Auth.RefreshSecret = c.Auth.AccessSecret }, wantErr: "must differ"},
		{name: "zero access ttl", mutate: func(c *Config) { c.Auth.AccessTokenTTL = 0 }, wantErr: "accessTokenTtl"},
		{name: "empty issuer", mutate: func(c *Config) { c.Auth.Issuer = " " }, wantErr: "auth.issuer"},
		{name: "negative leeway", mutate: func(c *Config) { c.Auth.Leeway = -time.Second }, wantErr: "auth.leeway"},
		{name: "low hash cost", mutate: func(c *Config) { c.Auth.HashCost = 4 }, wantErr: "auth.hashCost"},
		{name: "cache without addr", mutate: func(c *Config) { c.Cache.Enabled = true }, wantErr: "cache.addr"},
		{name: "min above max conns", mutate: func(c *Config) { c.Database.MinConns = 10 }, wantErr: "minConns"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("JWT_ACCESS_SECRET", accessSecret)
	t.Setenv("JWT_REFRESH_SECRET", refreshSecret)
	t.Setenv("JWT_ACCESS_TTL", "5m")
	t.Setenv("PORT", "9000")
	t.Setenv("CORS_ORIGIN", "https://a.example, https://b.example")
	t.Setenv("CACHE_ENABLED", "true")
	t.Setenv("CACHE_ADDR", "localhost:6379")
	t.Setenv("DATABASE_MIGRATE", "false")
	t.Setenv("JWT_LEEWAY", "30s")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.HTTP.Address)
	require.Equal(t, 5*time.Minute, cfg.Auth.AccessTokenTTL)
	require.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTokenTTL)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.CORSOrigins)
	require.True(t, cfg.Cache.Enabled)
	require.False(t, cfg.Database.Migrate)
	require.Equal(t, 30*time.Second, cfg.Auth.Leeway)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "auth:\n  accessSecret: " + accessSecret + "\n  refreshSecret: " + refreshSecret + "\n  hashCost: 11\nhttp:\n  address: \":7000\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":7000", cfg.HTTP.Address)
	require.Equal(t, 11, cfg.Auth.HashCost)
	require.Equal(t, "lifeboard-api", cfg.Auth.Issuer)
}

func TestLoad_RejectsMissingSecrets(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	require.Error(t, err)
}

package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/lifeboard/internal/domain/auth"
	"github.com/yanqian/lifeboard/internal/domain/goals"
	"github.com/yanqian/lifeboard/internal/infra/config"
	"github.com/yanqian/lifeboard/internal/infra/goalrepo"
	"github.com/yanqian/lifeboard/internal/infra/postgres"
	"github.com/yanqian/lifeboard/internal/infra/statscache"
	"github.com/yanqian/lifeboard/internal/infra/userrepo"
)

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		AccessSecret:    cfg.Auth.AccessSecret,
		RefreshSecret:   cfg.Auth.RefreshSecret,
		AccessTokenTTL:  cfg.Auth.AccessTokenTTL,
		RefreshTokenTTL: cfg.Auth.RefreshTokenTTL,
		Issuer:          cfg.Auth.Issuer,
		Audience:        cfg.Auth.Audience,
		Leeway:          cfg.Auth.Leeway,
		HashCost:        cfg.Auth.HashCost,
		HashConcurrency: cfg.Auth.HashConcurrency,
	}
}

func provideTokenService(cfg auth.Config) (*auth.TokenService, error) {
	return auth.NewTokenService(cfg)
}

func providePasswordHasher(cfg auth.Config) *auth.PasswordHasher {
	return auth.NewPasswordHasher(cfg.HashCost, cfg.HashConcurrency)
}

func provideGoalsConfig(cfg *config.Config) goals.Config {
	return goals.Config{StatsTTL: cfg.Cache.TTL}
}

// providePool returns a nil pool when no DSN is configured or Postgres is
// unreachable; repositories then fall back to memory.
func providePool(cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, func()) {
	dsn := strings.TrimSpace(cfg.Database.DSN)
	if dsn == "" {
		logger.Info("database url not set, using memory repositories")
		return nil, func() {}
	}
	ctx := context.Background()
	if cfg.Database.Migrate {
		if err := postgres.MigrateURL(ctx, dsn); err != nil {
			logger.Error("database migration failed, using memory repositories", "error", err)
			return nil, func() {}
		}
	}
	pool, err := postgres.NewPool(ctx, dsn, cfg.Database.MaxConns, cfg.Database.MinConns)
	if err != nil {
		logger.Error("postgres unavailable, using memory repositories", "error", err)
		return nil, func() {}
	}
	logger.Info("postgres repositories enabled")
	return pool, pool.Close
}

func provideUserRepository(pool *pgxpool.Pool) auth.Repository {
	if pool == nil {
		return userrepo.NewMemoryRepository()
	}
	return userrepo.NewPostgresRepository(pool)
}

func provideGoalRepository(pool *pgxpool.Pool) goals.Repository {
	if pool == nil {
		return goalrepo.NewMemoryRepository()
	}
	return goalrepo.NewPostgresRepository(pool)
}

func provideStatsCache(cfg *config.Config, logger *slog.Logger) (goals.StatsCache, func()) {
	if !cfg.Cache.Enabled {
		return statscache.NewMemoryCache(), func() {}
	}
	opt, err := buildValkeyOptions(cfg.Cache.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
		return statscache.NewMemoryCache(), func() {}
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
		return statscache.NewMemoryCache(), func() {}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory cache", "error", err)
		client.Close()
		return statscache.NewMemoryCache(), func() {}
	}
	logger.Info("valkey stats cache enabled", "addr", cfg.Cache.Addr)
	return statscache.NewValkeyCache(client, cfg.Cache.Prefix), client.Close
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

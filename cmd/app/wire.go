//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/lifeboard/internal/bootstrap"
	"github.com/yanqian/lifeboard/internal/domain/auth"
	"github.com/yanqian/lifeboard/internal/domain/goals"
	"github.com/yanqian/lifeboard/internal/infra/config"
	httpiface "github.com/yanqian/lifeboard/internal/interface/http"
	"github.com/yanqian/lifeboard/pkg/logger"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideAuthConfig,
		provideTokenService,
		providePasswordHasher,
		provideGoalsConfig,
		providePool,
		provideUserRepository,
		provideGoalRepository,
		provideStatsCache,
		auth.NewService,
		goals.NewService,
		wire.Bind(new(httpiface.AccessTokenVerifier), new(*auth.TokenService)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}

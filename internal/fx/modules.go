package fx

import (
	"database/sql"
	"valorant-analytics/internal/api"
	"valorant-analytics/internal/cache"
	"valorant-analytics/internal/config"
	"valorant-analytics/internal/database"
	"valorant-analytics/internal/db"
	"valorant-analytics/internal/logger"
	"valorant-analytics/internal/mapper"
	"valorant-analytics/internal/repository"
	"valorant-analytics/internal/server"
	"valorant-analytics/internal/service"

	"go.uber.org/fx"
)

func ProvideQueries(sqlDB *sql.DB) *db.Queries {
	return db.New(sqlDB)
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	fx.Provide(ProvideQueries),
	// repos
	fx.Provide(repository.NewPlayerRepository),
	fx.Provide(repository.NewRankRepository),
	fx.Provide(repository.NewMatchRepository),
	fx.Provide(repository.NewTrackingRepository),
	fx.Provide(repository.NewPerformanceRepository),
	// upstream + cache
	fx.Provide(api.NewHDevClient),
	fx.Provide(mapper.New),
	fx.Provide(cache.New),
	// svc
	fx.Provide(service.NewPlayerService),
	fx.Provide(service.NewMatchService),
	fx.Provide(service.NewTrackingService),
	fx.Provide(service.NewAnalyticsService),
	// server
	fx.Provide(server.NewServer),
)

// Package server exposes ingestion and analytics over REST.
package server

import (
	"context"
	"database/sql"
	"net/http"
	"time"
	"valorant-analytics/internal/cache"
	"valorant-analytics/internal/config"
	"valorant-analytics/internal/constants"
	"valorant-analytics/internal/middleware"
	"valorant-analytics/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	players   *service.PlayerService
	matches   *service.MatchService
	tracking  *service.TrackingService
	analytics *service.AnalyticsService
	db        *sql.DB
	cache     *cache.Cache
	cfg       *config.Config
	logger    zerolog.Logger
	now       func() time.Time
}

func NewServer(
	players *service.PlayerService,
	matches *service.MatchService,
	tracking *service.TrackingService,
	analytics *service.AnalyticsService,
	db *sql.DB,
	c *cache.Cache,
	cfg *config.Config,
	logger zerolog.Logger,
) *Server {
	return &Server{
		players:   players,
		matches:   matches,
		tracking:  tracking,
		analytics: analytics,
		db:        db,
		cache:     c,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID(s.logger))
	r.Use(middleware.Metrics)

	r.Get("/healthz", s.health)
	r.Get("/readyz", s.ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(s.cfg.APIRateLimit, s.cfg.APIRateBurst))

		r.Route("/accounts/{name}/{tag}", func(r chi.Router) {
			r.Get("/", s.lookupAccount)
			r.Post("/track", s.trackAccount)
		})

		r.Route("/players/{puuid}", func(r chi.Router) {
			r.Get("/", s.getPlayer)
			r.Get("/stats", s.playerStats)
			r.Get("/agents", s.playerAgents)
			r.Get("/maps", s.playerMaps)
			r.Get("/activity", s.playerActivity)
			r.Get("/map-counts", s.playerMapCounts)
			r.Get("/matches", s.playerMatches)
		})

		r.Route("/tracking", func(r chi.Router) {
			r.Get("/", s.listTracked)
			r.Delete("/{puuid}", s.untrack)
		})

		r.Route("/matches/{matchId}", func(r chi.Router) {
			r.Get("/", s.getMatch)
			r.Get("/scoreboard", s.matchScoreboard)
			r.Post("/ingest", s.ingestMatch)
		})

		r.Get("/rankings/kda", s.kdaRanking)
	})

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": s.now().UTC(),
	})
}

// ready pings the store and the cache concurrently. A disabled cache counts
// as healthy.
func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), constants.DatabaseTimeout)
	defer cancel()

	// both checks always run to completion so each one is reported
	var (
		g               errgroup.Group
		dbErr, cacheErr error
	)
	g.Go(func() error {
		dbErr = s.db.PingContext(ctx)
		return dbErr
	})
	g.Go(func() error {
		cacheErr = s.cache.Ping(ctx)
		return cacheErr
	})
	err := g.Wait()

	checks := map[string]bool{
		"database": dbErr == nil,
		"cache":    cacheErr == nil,
	}
	status := http.StatusOK
	if err != nil {
		status = http.StatusServiceUnavailable
		s.logger.Warn().AnErr("database", dbErr).AnErr("cache", cacheErr).Msg("readiness check failed")
	}
	jsonResponse(w, status, map[string]any{
		"ready":         status == http.StatusOK,
		"checks":        checks,
		"cache_enabled": s.cache.Enabled(),
	})
}

package service

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"
	"valorant-analytics/internal/cache"
	"valorant-analytics/internal/domain"
	"valorant-analytics/internal/repository"

	"github.com/rs/zerolog"
)

// AnalyticsService fronts the aggregation queries. Rankings and activity
// histograms are served through the cache.
type AnalyticsService struct {
	engine *repository.PerformanceRepository
	cache  *cache.Cache
	logger zerolog.Logger
}

func NewAnalyticsService(engine *repository.PerformanceRepository, c *cache.Cache, logger zerolog.Logger) *AnalyticsService {
	return &AnalyticsService{engine: engine, cache: c, logger: logger}
}

func (s *AnalyticsService) Stats(ctx context.Context, puuid string, from, to time.Time, mode string) domain.PerformanceStats {
	return s.engine.GetPerformanceStats(ctx, puuid, from, to, mode)
}

func (s *AnalyticsService) Agents(ctx context.Context, puuid string, from, to time.Time, minGames int) map[string]domain.AgentPerformance {
	return s.engine.GetAgentPerformance(ctx, puuid, from, to, minGames)
}

func (s *AnalyticsService) Maps(ctx context.Context, puuid string, from, to time.Time, minGames int) map[string]domain.MapPerformance {
	return s.engine.GetMapPerformance(ctx, puuid, from, to, minGames)
}

func (s *AnalyticsService) MapCounts(ctx context.Context, puuid string, from, to time.Time) map[string]int {
	return s.engine.GetMatchCountByMap(ctx, puuid, from, to)
}

func (s *AnalyticsService) Matches(ctx context.Context, f repository.MatchFilter) []domain.MatchRecord {
	return s.engine.GetPlayerMatchesFiltered(ctx, f)
}

func (s *AnalyticsService) Activity(ctx context.Context, puuid string, days int) map[string]int {
	// keyed by day so entries roll over at midnight UTC
	today := time.Now().UTC().Format("2006-01-02")
	key := cache.Key("activity", puuid, strconv.Itoa(days), today)
	return cache.RememberIf(ctx, s.cache, key, func() (map[string]int, bool) {
		return s.engine.MatchCountByDay(ctx, puuid, days)
	})
}

func (s *AnalyticsService) KdaRanking(ctx context.Context, puuids []string, from, to time.Time, mode string, minGames int) []domain.KdaRankingEntry {
	sorted := append([]string(nil), puuids...)
	sort.Strings(sorted)
	key := cache.Key("kda",
		strings.Join(sorted, ","),
		strconv.FormatInt(from.UnixMilli(), 10),
		strconv.FormatInt(to.UnixMilli(), 10),
		mode,
		strconv.Itoa(minGames),
	)
	// degraded results are served but not cached, so a store outage does
	// not outlive recovery
	return cache.RememberIf(ctx, s.cache, key, func() ([]domain.KdaRankingEntry, bool) {
		return s.engine.KdaRanking(ctx, puuids, from, to, mode, minGames)
	})
}

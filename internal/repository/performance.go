package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"
	"valorant-analytics/internal/constants"
	"valorant-analytics/internal/db"
	"valorant-analytics/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

const dayLayout = "2006-01-02"

// PerformanceRepository persists match and performance documents and answers
// the analytical queries over them. Aggregations run in the store; lookups
// that span matches and performances are joined here in two steps.
//
// Reads never return errors: a failed query is logged, counted in
// analytics_degraded_queries_total and answered with an empty result.
// Writes always return their errors.
type PerformanceRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
	now     func() time.Time
}

func NewPerformanceRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *PerformanceRepository {
	return &PerformanceRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
		now:     time.Now,
	}
}

// MatchFilter selects a page of a player's matches. Zero From/To leave that
// end of the window open; an empty Mode matches every mode.
type MatchFilter struct {
	Puuid string
	From  time.Time
	To    time.Time
	Mode  string
	Skip  int
	Take  int
}

func (r *PerformanceRepository) UpsertMatch(ctx context.Context, match *domain.MatchRecord) error {
	params, err := matchParams(match, r.now())
	if err != nil {
		return err
	}
	if err := r.queries.UpsertMatch(ctx, params); err != nil {
		return fmt.Errorf("failed to upsert match %s: %w", match.MatchID, err)
	}
	return nil
}

func (r *PerformanceRepository) UpsertPerformance(ctx context.Context, perf *domain.PlayerMatchPerformance) error {
	if err := r.queries.UpsertPerformance(ctx, performanceParams(perf, r.now())); err != nil {
		return fmt.Errorf("failed to upsert performance %s/%s: %w", perf.MatchID, perf.Puuid, err)
	}
	return nil
}

func (r *PerformanceRepository) GetPerformanceStats(ctx context.Context, puuid string, from, to time.Time, mode string) domain.PerformanceStats {
	defer observe("performance_stats")()

	empty := domain.EmptyPerformanceStats(puuid, from, to, mode)
	lo, hi := windowMillis(from, to)
	window := db.WindowParams{Puuid: puuid, From: lo, To: hi, Mode: mode}

	totals, err := r.queries.GetPerformanceTotals(ctx, window)
	if err != nil {
		r.degrade("performance_stats", puuid, err)
		return empty
	}
	if totals.Matches == 0 {
		return empty
	}

	outcomes, err := r.queries.CountWinLoss(ctx, window)
	if err != nil {
		r.degrade("performance_stats", puuid, err)
		return empty
	}

	agents, err := r.queries.AggregateByAgent(ctx, window)
	if err != nil {
		r.degrade("performance_stats", puuid, err)
		return empty
	}
	maps, err := r.queries.AggregateByMap(ctx, window)
	if err != nil {
		r.degrade("performance_stats", puuid, err)
		return empty
	}

	stats := empty
	stats.Counters = domain.Counters{
		GamesPlayed: int(totals.Matches),
		Kills:       int(totals.Kills),
		Deaths:      int(totals.Deaths),
		Assists:     int(totals.Assists),
		Score:       int(totals.Score),
		Damage:      int(totals.Damage),
		Headshots:   int(totals.Headshots),
		Bodyshots:   int(totals.Bodyshots),
		Legshots:    int(totals.Legshots),
	}
	for _, o := range outcomes {
		if o.Won {
			stats.GamesWon += int(o.Games)
		}
	}
	for _, b := range agents {
		stats.Agents[b.Key] = domain.AgentPerformance{AgentName: b.Key, Counters: countersFromBucket(b)}
	}
	for _, b := range maps {
		stats.Maps[b.Key] = domain.MapPerformance{MapName: b.Key, Counters: countersFromBucket(b)}
	}
	stats.MostPlayedAgent = domain.MostPlayed(stats.Agents)

	return stats
}

// GetAgentPerformance groups a player's games by agent. Agents with fewer
// than minGames games are dropped after aggregation.
func (r *PerformanceRepository) GetAgentPerformance(ctx context.Context, puuid string, from, to time.Time, minGames int) map[string]domain.AgentPerformance {
	defer observe("agent_performance")()

	result := map[string]domain.AgentPerformance{}
	lo, hi := windowMillis(from, to)
	rows, err := r.queries.AggregateByAgent(ctx, db.WindowParams{Puuid: puuid, From: lo, To: hi})
	if err != nil {
		r.degrade("agent_performance", puuid, err)
		return result
	}

	for _, b := range rows {
		if int(b.Games) < minGames {
			continue
		}
		result[b.Key] = domain.AgentPerformance{AgentName: b.Key, Counters: countersFromBucket(b)}
	}
	return result
}

// GetMapPerformance is GetAgentPerformance keyed by map name.
func (r *PerformanceRepository) GetMapPerformance(ctx context.Context, puuid string, from, to time.Time, minGames int) map[string]domain.MapPerformance {
	defer observe("map_performance")()

	result := map[string]domain.MapPerformance{}
	lo, hi := windowMillis(from, to)
	rows, err := r.queries.AggregateByMap(ctx, db.WindowParams{Puuid: puuid, From: lo, To: hi})
	if err != nil {
		r.degrade("map_performance", puuid, err)
		return result
	}

	for _, b := range rows {
		if int(b.Games) < minGames {
			continue
		}
		result[b.Key] = domain.MapPerformance{MapName: b.Key, Counters: countersFromBucket(b)}
	}
	return result
}

// GetKdaRanking ranks the given players by KDA over the window. Players with
// fewer than minGames games are left out.
func (r *PerformanceRepository) GetKdaRanking(ctx context.Context, puuids []string, from, to time.Time, mode string, minGames int) []domain.KdaRankingEntry {
	entries, _ := r.KdaRanking(ctx, puuids, from, to, mode, minGames)
	return entries
}

// KdaRanking is GetKdaRanking that also reports whether every query
// succeeded. A false ok means the result is a degraded placeholder.
func (r *PerformanceRepository) KdaRanking(ctx context.Context, puuids []string, from, to time.Time, mode string, minGames int) ([]domain.KdaRankingEntry, bool) {
	defer observe("kda_ranking")()

	entries := []domain.KdaRankingEntry{}
	if len(puuids) == 0 {
		return entries, true
	}

	lo, hi := windowMillis(from, to)
	var buckets []db.BucketRow
	for _, part := range chunk(dedupe(puuids), constants.DBBatchSize) {
		rows, err := r.queries.AggregateByPlayer(ctx, db.AggregateByPlayerParams{
			Puuids:   part,
			From:     lo,
			To:       hi,
			Mode:     mode,
			MinGames: int64(minGames),
		})
		if err != nil {
			r.degrade("kda_ranking", "", err)
			return entries, false
		}
		buckets = append(buckets, rows...)
	}
	if len(buckets) == 0 {
		return entries, true
	}

	ranked := make([]string, len(buckets))
	for i, b := range buckets {
		ranked[i] = b.Key
	}
	names, ok := r.identities(ctx, ranked)

	for _, b := range buckets {
		id := names[b.Key]
		entries = append(entries, domain.KdaRankingEntry{
			Puuid:       b.Key,
			Name:        id.name,
			Tag:         id.tag,
			KDA:         domain.KDARatio(int(b.Kills), int(b.Deaths), int(b.Assists)),
			Kills:       int(b.Kills),
			Deaths:      int(b.Deaths),
			Assists:     int(b.Assists),
			GamesPlayed: int(b.Games),
		})
	}
	domain.SortRanking(entries)
	return entries, ok
}

type identity struct {
	name string
	tag  string
}

// identities resolves display names, preferring the player documents and
// falling back to the name used in the latest stored match. ok is false when
// a lookup failed and some names may be missing.
func (r *PerformanceRepository) identities(ctx context.Context, puuids []string) (map[string]identity, bool) {
	out := make(map[string]identity, len(puuids))
	ok := true
	for _, part := range chunk(puuids, constants.DBBatchSize) {
		latest, err := r.queries.ListLatestIdentities(ctx, part)
		if err != nil {
			ok = false
			r.logger.Warn().Err(err).Msg("failed to resolve names from performances")
		}
		for _, row := range latest {
			out[row.Puuid] = identity{name: row.Name, tag: row.Tag}
		}

		players, err := r.queries.ListPlayersByPuuids(ctx, part)
		if err != nil {
			ok = false
			r.logger.Warn().Err(err).Msg("failed to resolve names from players")
		}
		for _, p := range players {
			out[p.Puuid] = identity{name: p.Name, tag: p.Tag}
		}
	}
	return out, ok
}

// GetMatchCountByDay returns one entry per UTC calendar day for the trailing
// days window ending today, keyed YYYY-MM-DD. Days without matches are 0.
func (r *PerformanceRepository) GetMatchCountByDay(ctx context.Context, puuid string, days int) map[string]int {
	counts, _ := r.MatchCountByDay(ctx, puuid, days)
	return counts
}

// MatchCountByDay is GetMatchCountByDay that also reports whether the query
// succeeded. On failure the all-zero histogram is returned with ok false.
func (r *PerformanceRepository) MatchCountByDay(ctx context.Context, puuid string, days int) (map[string]int, bool) {
	defer observe("match_count_by_day")()

	if days <= 0 {
		return map[string]int{}, true
	}
	if days > constants.MaxHistogramDays {
		days = constants.MaxHistogramDays
	}

	now := r.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start := today.AddDate(0, 0, -(days - 1))
	end := today.AddDate(0, 0, 1)

	result := make(map[string]int, days)
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		result[d.Format(dayLayout)] = 0
	}

	rows, err := r.queries.CountMatchesByDay(ctx, db.CountMatchesByDayParams{
		Puuid: puuid,
		From:  start.UnixMilli(),
		To:    end.UnixMilli() - 1,
	})
	if err != nil {
		r.degrade("match_count_by_day", puuid, err)
		return result, false
	}

	for _, row := range rows {
		if _, ok := result[row.Day]; ok {
			result[row.Day] = int(row.Matches)
		}
	}
	return result, true
}

// GetMatchCountByMap counts a player's matches per map. Match ids come from
// the player's performances; the maps come from the match documents.
func (r *PerformanceRepository) GetMatchCountByMap(ctx context.Context, puuid string, from, to time.Time) map[string]int {
	defer observe("match_count_by_map")()

	result := map[string]int{}
	lo, hi := windowMillis(from, to)
	ids, err := r.queries.ListMatchIDsByPuuid(ctx, db.ListMatchIDsByPuuidParams{Puuid: puuid, From: lo, To: hi})
	if err != nil {
		r.degrade("match_count_by_map", puuid, err)
		return result
	}

	for _, part := range chunk(ids, constants.DBBatchSize) {
		rows, err := r.queries.CountMatchesByMap(ctx, part)
		if err != nil {
			r.degrade("match_count_by_map", puuid, err)
			return map[string]int{}
		}
		for _, row := range rows {
			result[row.MapName] += int(row.Matches)
		}
	}
	return result
}

// GetPlayerRecentMatches returns the newest take matches of a player.
func (r *PerformanceRepository) GetPlayerRecentMatches(ctx context.Context, puuid string, take int) []domain.MatchRecord {
	return r.GetPlayerMatchesFiltered(ctx, MatchFilter{Puuid: puuid, Take: take})
}

// GetPlayerMatchesFiltered pages through a player's matches, newest first.
// The mode filter applies to the match documents, after the player's match
// ids are resolved. Each returned match carries only the player's own
// performance.
func (r *PerformanceRepository) GetPlayerMatchesFiltered(ctx context.Context, f MatchFilter) []domain.MatchRecord {
	defer observe("player_matches")()

	result := []domain.MatchRecord{}
	take := f.Take
	if take <= 0 {
		take = constants.DefaultPageSize
	}
	if take > constants.MaxPageSize {
		take = constants.MaxPageSize
	}
	skip := f.Skip
	if skip < 0 {
		skip = 0
	}

	lo, hi := windowMillis(f.From, f.To)
	perfs, err := r.queries.ListPerformancesByPuuids(ctx, db.ListPerformancesByPuuidsParams{
		Puuids: []string{f.Puuid},
		From:   lo,
		To:     hi,
	})
	if err != nil {
		r.degrade("player_matches", f.Puuid, err)
		return result
	}
	if len(perfs) == 0 {
		return result
	}

	own := make(map[string]db.Performance, len(perfs))
	ids := make([]string, 0, len(perfs))
	for _, p := range perfs {
		own[p.MatchID] = p
		ids = append(ids, p.MatchID)
	}

	var matches []db.Match
	for _, part := range chunk(ids, constants.DBBatchSize) {
		rows, err := r.queries.ListMatchesByIDs(ctx, db.ListMatchesByIDsParams{MatchIds: part, Mode: f.Mode})
		if err != nil {
			r.degrade("player_matches", f.Puuid, err)
			return result
		}
		matches = append(matches, rows...)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].StartedAt != matches[j].StartedAt {
			return matches[i].StartedAt > matches[j].StartedAt
		}
		return matches[i].MatchID < matches[j].MatchID
	})

	if skip >= len(matches) {
		return result
	}
	end := skip + take
	if end > len(matches) {
		end = len(matches)
	}

	for _, row := range matches[skip:end] {
		m, err := matchFromRow(row)
		if err != nil {
			r.logger.Warn().Err(err).Str("match_id", row.MatchID).Msg("skipping unreadable match")
			continue
		}
		m.Performances = []domain.PlayerMatchPerformance{performanceFromRow(own[row.MatchID])}
		result = append(result, m)
	}
	return result
}

func (r *PerformanceRepository) degrade(query, puuid string, err error) {
	degradedQueries.WithLabelValues(query).Inc()
	r.logger.Warn().
		Err(err).
		Str("query", query).
		Str("puuid", puuid).
		Msg("analytics query failed, returning empty result")
}

func observe(query string) func() {
	timer := prometheus.NewTimer(queryDuration.WithLabelValues(query))
	return func() { timer.ObserveDuration() }
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

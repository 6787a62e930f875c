package repository

import (
	"context"
	"fmt"
	"testing"
	"time"
	"valorant-analytics/internal/db"
	"valorant-analytics/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2024, 10, 20, 12, 0, 0, 0, time.UTC)

func TestUpsertPerformanceIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	perf := domain.PlayerMatchPerformance{Puuid: "p1", MatchID: "m1", AgentName: "Jett", Kills: 5, StartedAt: day0}
	require.NoError(t, s.perfs.UpsertPerformance(ctx, &perf))

	perf.Kills = 17
	perf.Deaths = 3
	require.NoError(t, s.perfs.UpsertPerformance(ctx, &perf))

	rows, err := s.queries.ListPerformancesByMatch(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(17), rows[0].Kills)
	assert.Equal(t, int64(3), rows[0].Deaths)
}

func TestUpsertMatchReplacesDocument(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m := domain.MatchRecord{MatchID: "m1", MapName: "Bind", Mode: "competitive", StartedAt: day0}
	require.NoError(t, s.perfs.UpsertMatch(ctx, &m))

	m.MapName = "Ascent"
	m.Teams = []domain.TeamResult{{TeamID: "Red", Won: true, RoundsWon: 13}}
	require.NoError(t, s.perfs.UpsertMatch(ctx, &m))

	got, err := s.matches.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "Ascent", got.MapName)
	assert.Equal(t, day0, got.StartedAt)
	require.Len(t, got.Teams, 1)
	assert.True(t, got.Teams[0].Won)
}

func TestPerformanceStatsKdaWithoutDeaths(t *testing.T) {
	s := newTestStore(t)
	s.seedMatch(t, "m1", "Ascent", "competitive", day0,
		line{puuid: "p", name: "P", agent: "Jett", kills: 20, deaths: 0, assists: 5})

	stats := s.perfs.GetPerformanceStats(context.Background(), "p", day0.Add(-time.Hour), day0.Add(time.Hour), "")

	assert.Equal(t, 1, stats.MatchesPlayed())
	assert.Equal(t, 1, stats.MatchesWon())
	assert.InDelta(t, 25.0, stats.KDA(), 1e-9)
	assert.Equal(t, "Jett", stats.MostPlayedAgent)
	assert.InDelta(t, 0.5, stats.HeadshotPercentage(), 1e-9)
}

func TestPerformanceStatsWindowAndMode(t *testing.T) {
	s := newTestStore(t)
	s.seedMatch(t, "m1", "Ascent", "competitive", day0, line{puuid: "p", agent: "Jett", kills: 10, deaths: 5})
	s.seedMatch(t, "m2", "Bind", "unrated", day0.Add(time.Hour), line{puuid: "p", team: "Blue", agent: "Sova", kills: 4, deaths: 8})
	s.seedMatch(t, "m3", "Haven", "competitive", day0.AddDate(0, 0, -10), line{puuid: "p", agent: "Jett", kills: 30})

	ctx := context.Background()
	from, to := day0.Add(-time.Hour), day0.Add(2*time.Hour)

	all := s.perfs.GetPerformanceStats(ctx, "p", from, to, "")
	assert.Equal(t, 2, all.MatchesPlayed())
	assert.Equal(t, 1, all.MatchesWon())
	assert.Equal(t, 1, all.MatchesLost())
	assert.Equal(t, 14, all.Kills)
	assert.Len(t, all.Agents, 2)
	assert.Len(t, all.Maps, 2)

	comp := s.perfs.GetPerformanceStats(ctx, "p", from, to, "competitive")
	assert.Equal(t, 1, comp.MatchesPlayed())
	assert.Equal(t, 10, comp.Kills)

	// both window ends are inclusive
	edge := s.perfs.GetPerformanceStats(ctx, "p", day0, day0, "")
	assert.Equal(t, 1, edge.MatchesPlayed())
}

func TestPerformanceStatsNoDataIsEmpty(t *testing.T) {
	s := newTestStore(t)

	stats := s.perfs.GetPerformanceStats(context.Background(), "nobody", day0.Add(-time.Hour), day0, "")
	assert.Equal(t, 0, stats.MatchesPlayed())
	assert.Equal(t, 0.0, stats.KDA())
	assert.NotNil(t, stats.Agents)
	assert.NotNil(t, stats.Maps)
}

func TestMapPerformanceWinRate(t *testing.T) {
	s := newTestStore(t)
	s.seedMatch(t, "m1", "Ascent", "competitive", day0, line{puuid: "p", team: "Red", agent: "Jett", kills: 10, deaths: 5})
	s.seedMatch(t, "m2", "Ascent", "competitive", day0.Add(time.Hour), line{puuid: "p", team: "Blue", agent: "Jett", kills: 6, deaths: 9})
	s.seedMatch(t, "m3", "Bind", "competitive", day0.Add(2*time.Hour), line{puuid: "p", agent: "Omen", kills: 6, deaths: 9})

	maps := s.perfs.GetMapPerformance(context.Background(), "p", day0.Add(-time.Hour), day0.Add(3*time.Hour), 1)
	require.Contains(t, maps, "Ascent")
	assert.Equal(t, 2, maps["Ascent"].GamesPlayed)
	assert.InDelta(t, 0.5, maps["Ascent"].WinRate(), 1e-9)

	filtered := s.perfs.GetMapPerformance(context.Background(), "p", day0.Add(-time.Hour), day0.Add(3*time.Hour), 2)
	assert.Len(t, filtered, 1)
	assert.NotContains(t, filtered, "Bind")
}

func TestAgentPerformanceMinGames(t *testing.T) {
	s := newTestStore(t)
	s.seedMatch(t, "m1", "Ascent", "competitive", day0, line{puuid: "p", agent: "Jett", kills: 10, deaths: 5})
	s.seedMatch(t, "m2", "Bind", "competitive", day0.Add(time.Hour), line{puuid: "p", agent: "Jett", kills: 10, deaths: 5})
	s.seedMatch(t, "m3", "Bind", "competitive", day0.Add(2*time.Hour), line{puuid: "p", agent: "Sage", kills: 1, deaths: 5})

	agents := s.perfs.GetAgentPerformance(context.Background(), "p", time.Time{}, time.Time{}, 2)
	require.Len(t, agents, 1)
	assert.Equal(t, 2, agents["Jett"].GamesPlayed)
	assert.InDelta(t, 2.0, agents["Jett"].KDA(), 1e-9)
}

func TestKdaRankingOrderAndMinGames(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.players.Upsert(ctx, &domain.Player{Puuid: "a", Name: "Alpha", Tag: "EU1"}))

	// a: 3.0 over one game, b: 3.0 over two games, c: 1.5
	s.seedMatch(t, "m1", "Ascent", "competitive", day0,
		line{puuid: "a", name: "alpha-old", kills: 2, deaths: 1, assists: 1},
		line{puuid: "b", name: "Bravo", kills: 2, deaths: 1, assists: 1},
		line{puuid: "c", name: "Charlie", team: "Blue", kills: 2, deaths: 2, assists: 1})
	s.seedMatch(t, "m2", "Bind", "competitive", day0.Add(time.Hour),
		line{puuid: "b", name: "Bravo", kills: 2, deaths: 1, assists: 1})
	s.seedMatch(t, "m3", "Bind", "competitive", day0.AddDate(0, 0, -30),
		line{puuid: "d", name: "Delta", kills: 50})

	from, to := day0.Add(-time.Hour), day0.Add(2*time.Hour)
	ranking := s.perfs.GetKdaRanking(ctx, []string{"a", "b", "c", "d"}, from, to, "", 1)

	require.Len(t, ranking, 3)
	assert.Equal(t, "b", ranking[0].Puuid)
	assert.Equal(t, "a", ranking[1].Puuid)
	assert.Equal(t, "c", ranking[2].Puuid)
	for i := 1; i < len(ranking); i++ {
		assert.GreaterOrEqual(t, ranking[i-1].KDA, ranking[i].KDA)
	}
	assert.InDelta(t, 1.5, ranking[2].KDA, 1e-9)

	assert.Equal(t, "Alpha", ranking[1].Name)
	assert.Equal(t, "EU1", ranking[1].Tag)
	assert.Equal(t, "Charlie", ranking[2].Name)

	onlyRegulars := s.perfs.GetKdaRanking(ctx, []string{"a", "b", "c"}, from, to, "", 2)
	require.Len(t, onlyRegulars, 1)
	assert.Equal(t, "b", onlyRegulars[0].Puuid)
	assert.Equal(t, 2, onlyRegulars[0].GamesPlayed)

	assert.Empty(t, s.perfs.GetKdaRanking(ctx, nil, from, to, "", 1))

	_, ok := s.perfs.KdaRanking(ctx, []string{"a", "b"}, from, to, "", 1)
	assert.True(t, ok)
}

func TestMatchCountByDayIsDense(t *testing.T) {
	s := newTestStore(t)
	s.perfs.now = func() time.Time { return day0 }

	s.seedMatch(t, "m1", "Ascent", "competitive", day0.Add(-2*time.Hour), line{puuid: "p"})
	s.seedMatch(t, "m2", "Bind", "competitive", day0.Add(-time.Hour), line{puuid: "p"})
	s.seedMatch(t, "m3", "Bind", "competitive", day0.AddDate(0, 0, -2), line{puuid: "p"})
	s.seedMatch(t, "m4", "Haven", "competitive", day0.AddDate(0, 0, -10), line{puuid: "p"})

	counts := s.perfs.GetMatchCountByDay(context.Background(), "p", 7)

	assert.Len(t, counts, 7)
	assert.Equal(t, 2, counts["2024-10-20"])
	assert.Equal(t, 0, counts["2024-10-19"])
	assert.Equal(t, 1, counts["2024-10-18"])
	assert.Contains(t, counts, "2024-10-14")
	assert.NotContains(t, counts, "2024-10-13")
	assert.NotContains(t, counts, "2024-10-10")

	assert.Empty(t, s.perfs.GetMatchCountByDay(context.Background(), "p", 0))
}

func TestMatchCountByMap(t *testing.T) {
	s := newTestStore(t)
	s.seedMatch(t, "m1", "Ascent", "competitive", day0, line{puuid: "p"}, line{puuid: "q"})
	s.seedMatch(t, "m2", "Ascent", "unrated", day0.Add(time.Hour), line{puuid: "p"})
	s.seedMatch(t, "m3", "Lotus", "competitive", day0.Add(2*time.Hour), line{puuid: "p"})
	s.seedMatch(t, "m4", "Lotus", "competitive", day0.Add(2*time.Hour), line{puuid: "q"})

	counts := s.perfs.GetMatchCountByMap(context.Background(), "p", day0.Add(-time.Hour), day0.Add(3*time.Hour))
	assert.Equal(t, map[string]int{"Ascent": 2, "Lotus": 1}, counts)
}

func TestPlayerMatchesFiltered(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for i, mode := range []string{"competitive", "unrated", "competitive", "competitive"} {
		s.seedMatch(t, "m"+string(rune('1'+i)), "Ascent", mode, day0.Add(time.Duration(i)*time.Hour),
			line{puuid: "p", kills: i}, line{puuid: "q", team: "Blue"})
	}

	recent := s.perfs.GetPlayerRecentMatches(ctx, "p", 2)
	require.Len(t, recent, 2)
	assert.Equal(t, "m4", recent[0].MatchID)
	assert.Equal(t, "m3", recent[1].MatchID)
	require.Len(t, recent[0].Performances, 1)
	assert.Equal(t, "p", recent[0].Performances[0].Puuid)
	assert.Equal(t, 3, recent[0].Performances[0].Kills)
	assert.Len(t, recent[0].Teams, 2)

	comp := s.perfs.GetPlayerMatchesFiltered(ctx, MatchFilter{Puuid: "p", Mode: "competitive", Skip: 1, Take: 5})
	require.Len(t, comp, 2)
	assert.Equal(t, "m3", comp[0].MatchID)
	assert.Equal(t, "m1", comp[1].MatchID)

	window := s.perfs.GetPlayerMatchesFiltered(ctx, MatchFilter{Puuid: "p", From: day0.Add(time.Hour), To: day0.Add(2 * time.Hour)})
	require.Len(t, window, 2)

	assert.Empty(t, s.perfs.GetPlayerMatchesFiltered(ctx, MatchFilter{Puuid: "p", Skip: 10}))
	assert.Empty(t, s.perfs.GetPlayerRecentMatches(ctx, "nobody", 5))
}

func TestReadsDegradeWhenStoreFails(t *testing.T) {
	s := newTestStore(t)
	s.seedMatch(t, "m1", "Ascent", "competitive", day0, line{puuid: "p", kills: 3})
	require.NoError(t, s.sqlDB.Close())

	ctx := context.Background()
	from, to := day0.Add(-time.Hour), day0.Add(time.Hour)

	stats := s.perfs.GetPerformanceStats(ctx, "p", from, to, "")
	assert.Equal(t, 0, stats.MatchesPlayed())
	assert.Empty(t, s.perfs.GetAgentPerformance(ctx, "p", from, to, 0))
	assert.Empty(t, s.perfs.GetMapPerformance(ctx, "p", from, to, 0))
	assert.Empty(t, s.perfs.GetKdaRanking(ctx, []string{"p"}, from, to, "", 1))
	assert.Empty(t, s.perfs.GetMatchCountByMap(ctx, "p", from, to))
	assert.Empty(t, s.perfs.GetPlayerRecentMatches(ctx, "p", 5))

	ranking, ok := s.perfs.KdaRanking(ctx, []string{"p"}, from, to, "", 1)
	assert.False(t, ok)
	assert.Empty(t, ranking)

	s.perfs.now = func() time.Time { return day0 }
	counts, ok := s.perfs.MatchCountByDay(ctx, "p", 3)
	assert.False(t, ok)
	assert.Equal(t, map[string]int{"2024-10-20": 0, "2024-10-19": 0, "2024-10-18": 0}, counts)

	// writes still report failures
	err := s.perfs.UpsertPerformance(ctx, &domain.PlayerMatchPerformance{Puuid: "p", MatchID: "m2"})
	assert.Error(t, err)
}

func TestSaveStoresEveryPerformance(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	lines := make([]line, 12)
	for i := range lines {
		team := "Red"
		if i%2 == 1 {
			team = "Blue"
		}
		lines[i] = line{puuid: fmt.Sprintf("p%02d", i), team: team, kills: i}
	}
	s.seedMatch(t, "big", "Icebox", "custom", day0, lines...)
	s.seedMatch(t, "big", "Icebox", "custom", day0, lines...)

	stored, err := s.matches.Get(ctx, "big")
	require.NoError(t, err)
	require.Len(t, stored.Performances, len(lines))

	kills := map[string]int{}
	for _, p := range stored.Performances {
		kills[p.Puuid] = p.Kills
	}
	assert.Equal(t, 11, kills["p11"])
	assert.Equal(t, 0, kills["p00"])
}

func TestChunk(t *testing.T) {
	parts := chunk([]string{"a", "b", "c", "d", "e"}, 2)
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}, {"e"}}, parts)
	assert.Empty(t, chunk(nil, 2))
}

func TestExpandedSliceWithNoValuesMatchesNothing(t *testing.T) {
	s := newTestStore(t)
	rows, err := s.queries.ListMatchesByIDs(context.Background(), db.ListMatchesByIDsParams{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"
	"valorant-analytics/internal/config"
	"valorant-analytics/internal/database"
	"valorant-analytics/internal/db"
	"valorant-analytics/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type testStore struct {
	sqlDB    *sql.DB
	queries  *db.Queries
	matches  *MatchRepository
	perfs    *PerformanceRepository
	players  *PlayerRepository
	ranks    *RankRepository
	tracking *TrackingRepository
}

func newTestStore(t *testing.T) *testStore {
	t.Helper()

	cfg := &config.Config{DBPath: filepath.Join(t.TempDir(), "analytics.db")}
	sqlDB, err := database.New(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	queries := db.New(sqlDB)
	logger := zerolog.Nop()
	return &testStore{
		sqlDB:    sqlDB,
		queries:  queries,
		matches:  NewMatchRepository(sqlDB, queries, logger),
		perfs:    NewPerformanceRepository(sqlDB, queries, logger),
		players:  NewPlayerRepository(sqlDB, queries, logger),
		ranks:    NewRankRepository(sqlDB, queries, logger),
		tracking: NewTrackingRepository(sqlDB, queries, logger),
	}
}

type line struct {
	puuid   string
	name    string
	team    string
	agent   string
	kills   int
	deaths  int
	assists int
}

// seedMatch stores a two-team match where team "Red" won.
func (s *testStore) seedMatch(t *testing.T, matchID, mapName, mode string, startedAt time.Time, lines ...line) {
	t.Helper()

	m := domain.MatchRecord{
		MatchID:   matchID,
		MapName:   mapName,
		Mode:      mode,
		StartedAt: startedAt,
		Source:    "v4",
		Teams: []domain.TeamResult{
			{TeamID: "Red", Won: true, RoundsWon: 13},
			{TeamID: "Blue", Won: false, RoundsWon: 7},
		},
	}
	for _, l := range lines {
		team := l.team
		if team == "" {
			team = "Red"
		}
		m.Performances = append(m.Performances, domain.PlayerMatchPerformance{
			Puuid:     l.puuid,
			MatchID:   matchID,
			Name:      l.name,
			Tag:       "EUW",
			TeamID:    team,
			AgentName: l.agent,
			MapName:   mapName,
			Mode:      mode,
			Won:       team == "Red",
			Kills:     l.kills,
			Deaths:    l.deaths,
			Assists:   l.assists,
			Headshots: l.kills,
			Bodyshots: l.kills,
			StartedAt: startedAt,
		})
	}
	require.NoError(t, s.matches.Save(context.Background(), &m))
}

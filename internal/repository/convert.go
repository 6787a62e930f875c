package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
	"valorant-analytics/internal/db"
	"valorant-analytics/internal/domain"
)

var ErrNotFound = errors.New("record not found")

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

// windowMillis maps an open-ended window onto column bounds.
func windowMillis(from, to time.Time) (int64, int64) {
	lo := toMillis(from)
	hi := int64(math.MaxInt64)
	if !to.IsZero() {
		hi = to.UnixMilli()
	}
	return lo, hi
}

func chunk(ids []string, size int) [][]string {
	if size <= 0 {
		size = len(ids)
	}
	var out [][]string
	for i := 0; i < len(ids); i += size {
		end := i + size
		if end > len(ids) {
			end = len(ids)
		}
		out = append(out, ids[i:end])
	}
	return out
}

func matchParams(m *domain.MatchRecord, now time.Time) (db.UpsertMatchParams, error) {
	teams := m.Teams
	if teams == nil {
		teams = []domain.TeamResult{}
	}
	encoded, err := json.Marshal(teams)
	if err != nil {
		return db.UpsertMatchParams{}, fmt.Errorf("failed to encode teams of match %s: %w", m.MatchID, err)
	}

	createdAt := m.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	return db.UpsertMatchParams{
		MatchID:     m.MatchID,
		MapID:       m.MapID,
		MapName:     m.MapName,
		Mode:        m.Mode,
		StartedAt:   toMillis(m.StartedAt),
		DurationMs:  m.DurationMs,
		Region:      m.Region,
		Cluster:     m.Cluster,
		SeasonID:    m.SeasonID,
		GameVersion: m.GameVersion,
		Source:      m.Source,
		Teams:       string(encoded),
		CreatedAt:   toMillis(createdAt),
		UpdatedAt:   toMillis(now),
	}, nil
}

func matchFromRow(row db.Match) (domain.MatchRecord, error) {
	var teams []domain.TeamResult
	if row.Teams != "" {
		if err := json.Unmarshal([]byte(row.Teams), &teams); err != nil {
			return domain.MatchRecord{}, fmt.Errorf("failed to decode teams of match %s: %w", row.MatchID, err)
		}
	}

	return domain.MatchRecord{
		MatchID:     row.MatchID,
		MapID:       row.MapID,
		MapName:     row.MapName,
		Mode:        row.Mode,
		StartedAt:   fromMillis(row.StartedAt),
		DurationMs:  row.DurationMs,
		Region:      row.Region,
		Cluster:     row.Cluster,
		SeasonID:    row.SeasonID,
		GameVersion: row.GameVersion,
		Source:      row.Source,
		Teams:       teams,
		CreatedAt:   fromMillis(row.CreatedAt),
		UpdatedAt:   fromMillis(row.UpdatedAt),
	}, nil
}

func performanceParams(p *domain.PlayerMatchPerformance, now time.Time) db.UpsertPerformanceParams {
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	return db.UpsertPerformanceParams{
		Puuid:       p.Puuid,
		MatchID:     p.MatchID,
		Name:        p.Name,
		Tag:         p.Tag,
		TeamID:      p.TeamID,
		AgentID:     p.AgentID,
		AgentName:   p.AgentName,
		MapID:       p.MapID,
		MapName:     p.MapName,
		Mode:        p.Mode,
		Won:         p.Won,
		Kills:       int64(p.Kills),
		Deaths:      int64(p.Deaths),
		Assists:     int64(p.Assists),
		Score:       int64(p.Score),
		DamageDealt: int64(p.DamageDealt),
		DamageTaken: int64(p.DamageTaken),
		Headshots:   int64(p.Headshots),
		Bodyshots:   int64(p.Bodyshots),
		Legshots:    int64(p.Legshots),
		StartedAt:   toMillis(p.StartedAt),
		CreatedAt:   toMillis(createdAt),
		UpdatedAt:   toMillis(now),
	}
}

func performanceFromRow(row db.Performance) domain.PlayerMatchPerformance {
	return domain.PlayerMatchPerformance{
		Puuid:       row.Puuid,
		MatchID:     row.MatchID,
		Name:        row.Name,
		Tag:         row.Tag,
		TeamID:      row.TeamID,
		AgentID:     row.AgentID,
		AgentName:   row.AgentName,
		MapID:       row.MapID,
		MapName:     row.MapName,
		Mode:        row.Mode,
		Won:         row.Won,
		Kills:       int(row.Kills),
		Deaths:      int(row.Deaths),
		Assists:     int(row.Assists),
		Score:       int(row.Score),
		DamageDealt: int(row.DamageDealt),
		DamageTaken: int(row.DamageTaken),
		Headshots:   int(row.Headshots),
		Bodyshots:   int(row.Bodyshots),
		Legshots:    int(row.Legshots),
		StartedAt:   fromMillis(row.StartedAt),
		CreatedAt:   fromMillis(row.CreatedAt),
		UpdatedAt:   fromMillis(row.UpdatedAt),
	}
}

func countersFromBucket(b db.BucketRow) domain.Counters {
	return domain.Counters{
		GamesPlayed: int(b.Games),
		GamesWon:    int(b.Wins),
		Kills:       int(b.Kills),
		Deaths:      int(b.Deaths),
		Assists:     int(b.Assists),
		Score:       int(b.Score),
		Damage:      int(b.Damage),
		Headshots:   int(b.Headshots),
		Bodyshots:   int(b.Bodyshots),
		Legshots:    int(b.Legshots),
	}
}

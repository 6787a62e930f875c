// Package mapper turns normalized upstream payloads into domain records and
// computes in-memory aggregates over them.
package mapper

import (
	"errors"
	"fmt"
	"sort"
	"time"
	"valorant-analytics/internal/api"
	"valorant-analytics/internal/calculator"
	"valorant-analytics/internal/domain"

	"github.com/rs/zerolog"
)

var errMissingPuuid = errors.New("player has no puuid")

type Mapper struct {
	logger zerolog.Logger
}

func New(logger zerolog.Logger) *Mapper {
	return &Mapper{logger: logger}
}

// ToMatchRecord builds the match document, including its performances.
func (m *Mapper) ToMatchRecord(d *api.MatchDetails) domain.MatchRecord {
	record := domain.MatchRecord{
		MatchID:     d.MatchID,
		MapID:       d.MapID,
		MapName:     d.MapName,
		Mode:        d.Mode,
		StartedAt:   d.StartedAt,
		DurationMs:  d.DurationMs,
		Region:      d.Region,
		Cluster:     d.Cluster,
		SeasonID:    d.SeasonID,
		GameVersion: d.GameVersion,
		Source:      Source(d),
		Teams:       make([]domain.TeamResult, 0, len(d.Teams)),
	}

	for _, t := range d.Teams {
		team := domain.TeamResult{
			TeamID:    t.TeamID,
			Won:       t.Won,
			RoundsWon: t.RoundsWon,
		}
		// each team keeps the rounds it won, in play order
		for _, r := range d.Rounds {
			if r.WinningTeam != t.TeamID {
				continue
			}
			team.Rounds = append(team.Rounds, domain.RoundResult{
				Number:      r.Number,
				WinningTeam: r.WinningTeam,
				EndType:     r.EndType,
				BombPlanted: r.BombPlanted,
				BombDefused: r.BombDefused,
			})
		}
		record.Teams = append(record.Teams, team)
	}

	record.Performances = m.ToPlayerPerformances(d)
	return record
}

// Source labels which endpoint family a match came from.
func Source(d *api.MatchDetails) string {
	src := d.Schema.String()
	if d.Archived {
		src += "-stored"
	}
	return src
}

// ToPlayerPerformances maps every player of the match. A player that cannot
// be mapped is logged and skipped; the rest are still returned.
func (m *Mapper) ToPlayerPerformances(d *api.MatchDetails) []domain.PlayerMatchPerformance {
	won := make(map[string]bool, len(d.Teams))
	for _, t := range d.Teams {
		won[t.TeamID] = t.Won
	}

	out := make([]domain.PlayerMatchPerformance, 0, len(d.Players))
	seen := make(map[string]struct{}, len(d.Players))
	for i, p := range d.Players {
		perf, err := toPerformance(d, p, won[p.TeamID])
		if err == nil {
			if _, dup := seen[p.Puuid]; dup {
				err = fmt.Errorf("duplicate player %s", p.Puuid)
			}
		}
		if err != nil {
			m.logger.Warn().
				Err(err).
				Str("match_id", d.MatchID).
				Int("index", i).
				Str("name", p.Name).
				Msg("skipping unmappable player")
			continue
		}
		seen[p.Puuid] = struct{}{}
		out = append(out, perf)
	}
	return out
}

func toPerformance(d *api.MatchDetails, p api.MatchPlayer, won bool) (domain.PlayerMatchPerformance, error) {
	if p.Puuid == "" {
		return domain.PlayerMatchPerformance{}, errMissingPuuid
	}
	return domain.PlayerMatchPerformance{
		Puuid:       p.Puuid,
		MatchID:     d.MatchID,
		Name:        p.Name,
		Tag:         p.Tag,
		TeamID:      p.TeamID,
		AgentID:     p.AgentID,
		AgentName:   p.AgentName,
		MapID:       d.MapID,
		MapName:     d.MapName,
		Mode:        d.Mode,
		Won:         won,
		Kills:       p.Kills,
		Deaths:      p.Deaths,
		Assists:     p.Assists,
		Score:       p.Score,
		DamageDealt: p.DamageDealt,
		DamageTaken: p.DamageTaken,
		Headshots:   p.Headshots,
		Bodyshots:   p.Bodyshots,
		Legshots:    p.Legshots,
		StartedAt:   d.StartedAt,
	}, nil
}

// ComputePerformanceStats aggregates puuid's performances whose match started
// within [from, to]. A zero bound leaves that side open. Wins come from the
// match's team results, not from the performance.
func (m *Mapper) ComputePerformanceStats(matches []domain.MatchRecord, performances []domain.PlayerMatchPerformance, puuid string, from, to time.Time) domain.PerformanceStats {
	stats := domain.EmptyPerformanceStats(puuid, from, to, "")
	byID := indexMatches(matches)

	for _, p := range performances {
		if p.Puuid != puuid {
			continue
		}
		match, ok := byID[p.MatchID]
		if !ok || !inWindow(match.StartedAt, from, to) {
			continue
		}
		won := teamWon(match, p.TeamID)

		stats.Counters.Add(p, won)

		foldAgent(stats.Agents, p, won)
		foldMap(stats.Maps, match.MapName, p, won)
	}

	stats.MostPlayedAgent = domain.MostPlayed(stats.Agents)
	return stats
}

func (m *Mapper) ComputeAgentPerformance(performances []domain.PlayerMatchPerformance, matches []domain.MatchRecord, puuid string) map[string]domain.AgentPerformance {
	byID := indexMatches(matches)
	out := map[string]domain.AgentPerformance{}
	for _, p := range performances {
		if p.Puuid != puuid {
			continue
		}
		match, ok := byID[p.MatchID]
		if !ok {
			continue
		}
		foldAgent(out, p, teamWon(match, p.TeamID))
	}
	return out
}

func (m *Mapper) ComputeMapPerformance(performances []domain.PlayerMatchPerformance, matches []domain.MatchRecord, puuid string) map[string]domain.MapPerformance {
	byID := indexMatches(matches)
	out := map[string]domain.MapPerformance{}
	for _, p := range performances {
		if p.Puuid != puuid {
			continue
		}
		match, ok := byID[p.MatchID]
		if !ok {
			continue
		}
		foldMap(out, match.MapName, p, teamWon(match, p.TeamID))
	}
	return out
}

// foldAgent merges a single-game aggregate for p into out.
func foldAgent(out map[string]domain.AgentPerformance, p domain.PlayerMatchPerformance, won bool) {
	game := domain.AgentPerformance{AgentName: p.AgentName}
	game.Counters.Add(p, won)
	if cur, ok := out[p.AgentName]; ok {
		game = calculator.MergeAgent(cur, game)
	}
	out[p.AgentName] = game
}

func foldMap(out map[string]domain.MapPerformance, mapName string, p domain.PlayerMatchPerformance, won bool) {
	game := domain.MapPerformance{MapName: mapName}
	game.Counters.Add(p, won)
	if cur, ok := out[mapName]; ok {
		game = calculator.MergeMap(cur, game)
	}
	out[mapName] = game
}

// RankByKda sums each player's counters across the input and ranks them by
// KDA. Display names come from the lookups when present.
func (m *Mapper) RankByKda(performances []domain.PlayerMatchPerformance, nameLookup, tagLookup map[string]string) []domain.KdaRankingEntry {
	type acc struct {
		entry   domain.KdaRankingEntry
		matches map[string]struct{}
	}
	byPlayer := map[string]*acc{}
	order := []string{}

	for _, p := range performances {
		if p.Puuid == "" {
			continue
		}
		a, ok := byPlayer[p.Puuid]
		if !ok {
			a = &acc{
				entry:   domain.KdaRankingEntry{Puuid: p.Puuid, Name: p.Name, Tag: p.Tag},
				matches: map[string]struct{}{},
			}
			byPlayer[p.Puuid] = a
			order = append(order, p.Puuid)
		}
		if _, dup := a.matches[p.MatchID]; dup {
			continue
		}
		a.matches[p.MatchID] = struct{}{}
		a.entry.Kills += p.Kills
		a.entry.Deaths += p.Deaths
		a.entry.Assists += p.Assists
		a.entry.GamesPlayed++
	}

	sort.Strings(order)
	entries := make([]domain.KdaRankingEntry, 0, len(order))
	for _, puuid := range order {
		e := byPlayer[puuid].entry
		if name, ok := nameLookup[puuid]; ok {
			e.Name = name
		}
		if tag, ok := tagLookup[puuid]; ok {
			e.Tag = tag
		}
		e.KDA = domain.KDARatio(e.Kills, e.Deaths, e.Assists)
		entries = append(entries, e)
	}
	domain.SortRanking(entries)
	return entries
}

func indexMatches(matches []domain.MatchRecord) map[string]*domain.MatchRecord {
	byID := make(map[string]*domain.MatchRecord, len(matches))
	for i := range matches {
		byID[matches[i].MatchID] = &matches[i]
	}
	return byID
}

func teamWon(match *domain.MatchRecord, teamID string) bool {
	team, ok := match.Team(teamID)
	return ok && team.Won
}

func inWindow(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && t.After(to) {
		return false
	}
	return true
}

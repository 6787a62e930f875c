package domain

import (
	"sort"
	"time"
)

// KDARatio is (kills+assists)/deaths, or kills+assists when deaths is zero.
func KDARatio(kills, deaths, assists int) float64 {
	if deaths == 0 {
		return float64(kills + assists)
	}
	return float64(kills+assists) / float64(deaths)
}

// HeadshotPercentage returns the headshot share of all registered hits in [0,1].
func HeadshotPercentage(headshots, bodyshots, legshots int) float64 {
	total := headshots + bodyshots + legshots
	if total == 0 {
		return 0
	}
	return float64(headshots) / float64(total)
}

func WinRate(won, played int) float64 {
	if played == 0 {
		return 0
	}
	return float64(won) / float64(played)
}

// Counters holds the summed values every aggregate is built from.
// Ratios are always derived from these, never stored.
type Counters struct {
	GamesPlayed int
	GamesWon    int
	Kills       int
	Deaths      int
	Assists     int
	Score       int
	Damage      int
	Headshots   int
	Bodyshots   int
	Legshots    int
}

func (c Counters) GamesLost() int { return c.GamesPlayed - c.GamesWon }

func (c Counters) WinRate() float64 { return WinRate(c.GamesWon, c.GamesPlayed) }

func (c Counters) KDA() float64 { return KDARatio(c.Kills, c.Deaths, c.Assists) }

func (c Counters) HeadshotPercentage() float64 {
	return HeadshotPercentage(c.Headshots, c.Bodyshots, c.Legshots)
}

func (c Counters) AverageKills() float64   { return c.perGame(c.Kills) }
func (c Counters) AverageDeaths() float64  { return c.perGame(c.Deaths) }
func (c Counters) AverageAssists() float64 { return c.perGame(c.Assists) }
func (c Counters) AverageScore() float64   { return c.perGame(c.Score) }
func (c Counters) AverageDamage() float64  { return c.perGame(c.Damage) }

func (c Counters) perGame(v int) float64 {
	if c.GamesPlayed == 0 {
		return 0
	}
	return float64(v) / float64(c.GamesPlayed)
}

// Add folds a single performance into the counters.
func (c *Counters) Add(p PlayerMatchPerformance, won bool) {
	c.GamesPlayed++
	if won {
		c.GamesWon++
	}
	c.Kills += p.Kills
	c.Deaths += p.Deaths
	c.Assists += p.Assists
	c.Score += p.Score
	c.Damage += p.DamageDealt
	c.Headshots += p.Headshots
	c.Bodyshots += p.Bodyshots
	c.Legshots += p.Legshots
}

// Plus returns the element-wise sum of two counter sets.
func (c Counters) Plus(o Counters) Counters {
	return Counters{
		GamesPlayed: c.GamesPlayed + o.GamesPlayed,
		GamesWon:    c.GamesWon + o.GamesWon,
		Kills:       c.Kills + o.Kills,
		Deaths:      c.Deaths + o.Deaths,
		Assists:     c.Assists + o.Assists,
		Score:       c.Score + o.Score,
		Damage:      c.Damage + o.Damage,
		Headshots:   c.Headshots + o.Headshots,
		Bodyshots:   c.Bodyshots + o.Bodyshots,
		Legshots:    c.Legshots + o.Legshots,
	}
}

type AgentPerformance struct {
	AgentName string
	Counters
}

type MapPerformance struct {
	MapName string
	Counters
}

// PerformanceStats aggregates one player's performances over [From, To].
type PerformanceStats struct {
	Puuid           string
	From            time.Time
	To              time.Time
	Mode            string
	MostPlayedAgent string
	Counters
	Agents map[string]AgentPerformance
	Maps   map[string]MapPerformance
}

func (s PerformanceStats) MatchesPlayed() int { return s.GamesPlayed }
func (s PerformanceStats) MatchesWon() int    { return s.GamesWon }
func (s PerformanceStats) MatchesLost() int   { return s.GamesLost() }

// EmptyPerformanceStats is the "no data" value for a window.
func EmptyPerformanceStats(puuid string, from, to time.Time, mode string) PerformanceStats {
	return PerformanceStats{
		Puuid:  puuid,
		From:   from,
		To:     to,
		Mode:   mode,
		Agents: map[string]AgentPerformance{},
		Maps:   map[string]MapPerformance{},
	}
}

// MostPlayed returns the agent with the most games; ties resolve to the
// lexically smallest name so the result is stable.
func MostPlayed(agents map[string]AgentPerformance) string {
	best := ""
	bestGames := 0
	for name, a := range agents {
		if a.GamesPlayed > bestGames || (a.GamesPlayed == bestGames && bestGames > 0 && name < best) {
			best = name
			bestGames = a.GamesPlayed
		}
	}
	return best
}

type KdaRankingEntry struct {
	Puuid       string
	Name        string
	Tag         string
	KDA         float64
	Kills       int
	Deaths      int
	Assists     int
	GamesPlayed int
}

// SortRanking orders entries by KDA descending, then games played
// descending, then puuid ascending.
func SortRanking(entries []KdaRankingEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.KDA != b.KDA {
			return a.KDA > b.KDA
		}
		if a.GamesPlayed != b.GamesPlayed {
			return a.GamesPlayed > b.GamesPlayed
		}
		return a.Puuid < b.Puuid
	})
}

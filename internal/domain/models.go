package domain

import (
	"time"
)

type Player struct {
	Puuid        string
	Name         string
	Tag          string
	Region       string
	AccountLevel int
	Card         string
	Title        string
	LastFetchAt  time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PlayerRank is a point-in-time competitive rank snapshot.
type PlayerRank struct {
	ID        string // nanoid
	Puuid     string
	Tier      int
	TierName  string
	RR        int // 0-100
	Elo       int
	Source    string // "mmr", "match"
	FetchedAt time.Time
	CreatedAt time.Time
}

type MatchRecord struct {
	MatchID      string
	MapID        string
	MapName      string
	Mode         string
	StartedAt    time.Time
	DurationMs   int64
	Region       string
	Cluster      string
	SeasonID     string
	GameVersion  string
	Source       string // "v4", "v2", "v4-stored", "v2-stored"
	Teams        []TeamResult
	Performances []PlayerMatchPerformance
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Team returns the team result with the given id.
func (m *MatchRecord) Team(teamID string) (TeamResult, bool) {
	for _, t := range m.Teams {
		if t.TeamID == teamID {
			return t, true
		}
	}
	return TeamResult{}, false
}

type TeamResult struct {
	TeamID    string        `json:"team_id"`
	Won       bool          `json:"won"`
	RoundsWon int           `json:"rounds_won"`
	Rounds    []RoundResult `json:"rounds,omitempty"`
}

type RoundResult struct {
	Number      int    `json:"number"`
	WinningTeam string `json:"winning_team"`
	EndType     string `json:"end_type"`
	BombPlanted bool   `json:"bomb_planted"`
	BombDefused bool   `json:"bomb_defused"`
}

// PlayerMatchPerformance is keyed by (Puuid, MatchID).
// StartedAt, MapName and Mode are copied from the match so that
// aggregations never need to read match documents.
type PlayerMatchPerformance struct {
	Puuid       string
	MatchID     string
	Name        string
	Tag         string
	TeamID      string
	AgentID     string
	AgentName   string
	MapID       string
	MapName     string
	Mode        string
	Won         bool
	Kills       int
	Deaths      int
	Assists     int
	Score       int
	DamageDealt int
	DamageTaken int
	Headshots   int
	Bodyshots   int
	Legshots    int
	StartedAt   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TrackedPlayer is the tracking configuration of a player whose history is backfilled.
type TrackedPlayer struct {
	Puuid          string
	Name           string
	Tag            string
	Region         string
	ModeFilter     string
	LastBackfillAt time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

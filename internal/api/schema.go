package api

import (
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// SchemaVersion identifies which upstream response generation a payload
// belongs to. It is decided by the call site, never sniffed from the body.
type SchemaVersion int

const (
	// SchemaV2 is the legacy region-agnostic shape: players and teams keyed
	// by nested dictionaries, snake_case fields, epoch game_start.
	SchemaV2 SchemaVersion = 2
	// SchemaV4 is the current regional shape: flat player/team arrays joined
	// by team_id and ISO-8601 timestamps.
	SchemaV4 SchemaVersion = 4
)

func (v SchemaVersion) String() string {
	switch v {
	case SchemaV2:
		return "v2"
	case SchemaV4:
		return "v4"
	default:
		return "unknown"
	}
}

// MatchDetails is the canonical match payload every schema version is
// normalized into.
type MatchDetails struct {
	MatchID     string
	MapID       string
	MapName     string
	Mode        string
	StartedAt   time.Time
	DurationMs  int64
	Region      string
	Cluster     string
	SeasonID    string
	GameVersion string
	Schema      SchemaVersion
	Archived    bool
	Teams       []MatchTeam
	Players     []MatchPlayer
	Rounds      []MatchRound
}

type MatchTeam struct {
	TeamID     string
	Won        bool
	RoundsWon  int
	RoundsLost int
}

type MatchPlayer struct {
	Puuid       string
	Name        string
	Tag         string
	TeamID      string
	AgentID     string
	AgentName   string
	Score       int
	Kills       int
	Deaths      int
	Assists     int
	Headshots   int
	Bodyshots   int
	Legshots    int
	DamageDealt int
	DamageTaken int
}

type MatchRound struct {
	Number      int
	WinningTeam string
	EndType     string
	BombPlanted bool
	BombDefused bool
}

// parseMatch decodes body as the given schema version and normalizes it.
func parseMatch(version SchemaVersion, endpoint string, body []byte) (*MatchDetails, error) {
	var (
		details *MatchDetails
		err     error
	)
	switch version {
	case SchemaV4:
		details, err = parseV4(body)
	case SchemaV2:
		details, err = parseV2(body)
	default:
		return nil, &PermanentError{Endpoint: endpoint, Message: "unknown schema version " + version.String()}
	}
	if err != nil {
		return nil, &PermanentError{Endpoint: endpoint, Message: "malformed " + version.String() + " payload", Err: err}
	}
	if details.MatchID == "" {
		return nil, ErrNotFound
	}
	return details, nil
}

// ---- v2 (legacy) ----

type v2MatchEnvelope struct {
	Status int         `json:"status"`
	Data   v2MatchData `json:"data"`
}

type v2MatchData struct {
	Metadata struct {
		Map          string `json:"map"`
		GameVersion  string `json:"game_version"`
		GameLength   int64  `json:"game_length"`
		GameStart    int64  `json:"game_start"`
		RoundsPlayed int    `json:"rounds_played"`
		Mode         string `json:"mode"`
		ModeID       string `json:"mode_id"`
		Queue        string `json:"queue"`
		SeasonID     string `json:"season_id"`
		Region       string `json:"region"`
		Cluster      string `json:"cluster"`
		Matchid      string `json:"matchid"`
	} `json:"metadata"`
	// keyed by "all_players", "red", "blue"
	Players map[string][]v2Player `json:"players"`
	// keyed by lowercase team name
	Teams  map[string]v2Team `json:"teams"`
	Rounds []v2Round         `json:"rounds"`
}

type v2Player struct {
	Puuid     string `json:"puuid"`
	Name      string `json:"name"`
	Tag       string `json:"tag"`
	Team      string `json:"team"`
	Character string `json:"character"`
	Stats     struct {
		Score     int `json:"score"`
		Kills     int `json:"kills"`
		Deaths    int `json:"deaths"`
		Assists   int `json:"assists"`
		Bodyshots int `json:"bodyshots"`
		Headshots int `json:"headshots"`
		Legshots  int `json:"legshots"`
	} `json:"stats"`
	DamageMade     int `json:"damage_made"`
	DamageReceived int `json:"damage_received"`
}

type v2Team struct {
	HasWon     *bool `json:"has_won"`
	RoundsWon  int   `json:"rounds_won"`
	RoundsLost int   `json:"rounds_lost"`
}

type v2Round struct {
	WinningTeam string `json:"winning_team"`
	EndType     string `json:"end_type"`
	BombPlanted bool   `json:"bomb_planted"`
	BombDefused bool   `json:"bomb_defused"`
}

func parseV2(body []byte) (*MatchDetails, error) {
	var env v2MatchEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}
	d := env.Data
	meta := d.Metadata

	details := &MatchDetails{
		MatchID:     meta.Matchid,
		MapName:     meta.Map,
		MapID:       mapNameToID[meta.Map],
		Mode:        normalizeMode(firstNonEmpty(meta.ModeID, meta.Mode)),
		StartedAt:   epochToTime(meta.GameStart),
		DurationMs:  meta.GameLength,
		Region:      meta.Region,
		Cluster:     meta.Cluster,
		SeasonID:    meta.SeasonID,
		GameVersion: meta.GameVersion,
		Schema:      SchemaV2,
	}

	details.Teams = v2Teams(d.Teams)
	details.Players = v2Players(d.Players)

	for i, r := range d.Rounds {
		details.Rounds = append(details.Rounds, MatchRound{
			Number:      i + 1,
			WinningTeam: titleCase(r.WinningTeam),
			EndType:     r.EndType,
			BombPlanted: r.BombPlanted,
			BombDefused: r.BombDefused,
		})
	}

	return details, nil
}

func v2Teams(teams map[string]v2Team) []MatchTeam {
	// red before blue, then any other team names in a stable order
	keys := orderedKeys(teams, "red", "blue")
	out := make([]MatchTeam, 0, len(keys))
	for _, key := range keys {
		t := teams[key]
		out = append(out, MatchTeam{
			TeamID:     titleCase(key),
			RoundsWon:  t.RoundsWon,
			RoundsLost: t.RoundsLost,
		})
	}

	// older payloads omit has_won; derive it from the round score
	for i, key := range keys {
		if hw := teams[key].HasWon; hw != nil {
			out[i].Won = *hw
			continue
		}
		won := true
		for j := range out {
			if j != i && out[j].RoundsWon >= out[i].RoundsWon {
				won = false
			}
		}
		out[i].Won = won && len(out) > 1
	}
	return out
}

func v2Players(players map[string][]v2Player) []MatchPlayer {
	source := players["all_players"]
	if len(source) == 0 {
		for _, key := range orderedKeys(players, "red", "blue") {
			for _, p := range players[key] {
				if p.Team == "" {
					p.Team = key
				}
				source = append(source, p)
			}
		}
	}

	out := make([]MatchPlayer, 0, len(source))
	for _, p := range source {
		out = append(out, MatchPlayer{
			Puuid:       p.Puuid,
			Name:        p.Name,
			Tag:         p.Tag,
			TeamID:      titleCase(p.Team),
			AgentID:     characterNameToID[p.Character],
			AgentName:   p.Character,
			Score:       p.Stats.Score,
			Kills:       p.Stats.Kills,
			Deaths:      p.Stats.Deaths,
			Assists:     p.Stats.Assists,
			Headshots:   p.Stats.Headshots,
			Bodyshots:   p.Stats.Bodyshots,
			Legshots:    p.Stats.Legshots,
			DamageDealt: p.DamageMade,
			DamageTaken: p.DamageReceived,
		})
	}
	return out
}

// ---- v4 ----

type v4MatchEnvelope struct {
	Status int         `json:"status"`
	Data   v4MatchData `json:"data"`
}

type v4MatchData struct {
	Metadata v4MatchMetadata `json:"metadata"`
	Players  []v4Player      `json:"players"`
	Teams    []v4Team        `json:"teams"`
	Rounds   []v4Round       `json:"rounds"`
}

type v4MatchMetadata struct {
	MatchID string `json:"match_id"`
	Map     struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"map"`
	GameVersion    string `json:"game_version"`
	GameLengthInMs int64  `json:"game_length_in_ms"`
	StartedAt      string `json:"started_at"`
	Queue          struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		ModeType string `json:"mode_type"`
	} `json:"queue"`
	Season struct {
		ID    string `json:"id"`
		Short string `json:"short"`
	} `json:"season"`
	Region  string `json:"region"`
	Cluster string `json:"cluster"`
}

type v4Player struct {
	Puuid  string `json:"puuid"`
	Name   string `json:"name"`
	Tag    string `json:"tag"`
	TeamID string `json:"team_id"`
	Agent  struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"agent"`
	Stats struct {
		Score     int `json:"score"`
		Kills     int `json:"kills"`
		Deaths    int `json:"deaths"`
		Assists   int `json:"assists"`
		Headshots int `json:"headshots"`
		Bodyshots int `json:"bodyshots"`
		Legshots  int `json:"legshots"`
		Damage    struct {
			Dealt    int `json:"dealt"`
			Received int `json:"received"`
		} `json:"damage"`
	} `json:"stats"`
}

type v4Team struct {
	TeamID string `json:"team_id"`
	Rounds struct {
		Won  int `json:"won"`
		Lost int `json:"lost"`
	} `json:"rounds"`
	Won bool `json:"won"`
}

type v4Round struct {
	ID          int             `json:"id"`
	Result      string          `json:"result"`
	WinningTeam string          `json:"winning_team"`
	Plant       json.RawMessage `json:"plant"`
	Defuse      json.RawMessage `json:"defuse"`
}

func parseV4(body []byte) (*MatchDetails, error) {
	var env v4MatchEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}
	return normalizeV4(env.Data), nil
}

func normalizeV4(d v4MatchData) *MatchDetails {
	meta := d.Metadata

	mapID := meta.Map.ID
	if mapID == "" {
		mapID = mapNameToID[meta.Map.Name]
	}

	details := &MatchDetails{
		MatchID:     meta.MatchID,
		MapID:       mapID,
		MapName:     meta.Map.Name,
		Mode:        normalizeMode(firstNonEmpty(meta.Queue.ID, meta.Queue.Name)),
		StartedAt:   isoToTime(meta.StartedAt),
		DurationMs:  meta.GameLengthInMs,
		Region:      meta.Region,
		Cluster:     meta.Cluster,
		SeasonID:    meta.Season.ID,
		GameVersion: meta.GameVersion,
		Schema:      SchemaV4,
	}

	for _, t := range d.Teams {
		details.Teams = append(details.Teams, MatchTeam{
			TeamID:     t.TeamID,
			Won:        t.Won,
			RoundsWon:  t.Rounds.Won,
			RoundsLost: t.Rounds.Lost,
		})
	}

	for _, p := range d.Players {
		agentID := p.Agent.ID
		if agentID == "" {
			agentID = characterNameToID[p.Agent.Name]
		}
		details.Players = append(details.Players, MatchPlayer{
			Puuid:       p.Puuid,
			Name:        p.Name,
			Tag:         p.Tag,
			TeamID:      p.TeamID,
			AgentID:     agentID,
			AgentName:   p.Agent.Name,
			Score:       p.Stats.Score,
			Kills:       p.Stats.Kills,
			Deaths:      p.Stats.Deaths,
			Assists:     p.Stats.Assists,
			Headshots:   p.Stats.Headshots,
			Bodyshots:   p.Stats.Bodyshots,
			Legshots:    p.Stats.Legshots,
			DamageDealt: p.Stats.Damage.Dealt,
			DamageTaken: p.Stats.Damage.Received,
		})
	}

	for _, r := range d.Rounds {
		details.Rounds = append(details.Rounds, MatchRound{
			Number:      r.ID + 1,
			WinningTeam: r.WinningTeam,
			EndType:     r.Result,
			BombPlanted: present(r.Plant),
			BombDefused: present(r.Defuse),
		})
	}

	return details
}

// ---- helpers ----

// epochToTime accepts epoch seconds or milliseconds; values from 1e12 up are
// milliseconds. Zero means unknown.
func epochToTime(v int64) time.Time {
	switch {
	case v <= 0:
		return time.Time{}
	case v >= 1_000_000_000_000:
		return time.UnixMilli(v).UTC()
	default:
		return time.Unix(v, 0).UTC()
	}
}

func isoToTime(v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

func normalizeMode(mode string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(mode)), " ", "")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	s = strings.ToLower(s)
	return strings.ToUpper(s[:1]) + s[1:]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func present(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return trimmed != "" && trimmed != "null"
}

// orderedKeys returns the keys of m with the preferred ones first and the
// rest sorted, skipping "all_players".
func orderedKeys[V any](m map[string]V, preferred ...string) []string {
	var keys []string
	seen := make(map[string]bool)
	for _, p := range preferred {
		if _, ok := m[p]; ok {
			keys = append(keys, p)
			seen[p] = true
		}
	}
	var rest []string
	for k := range m {
		if !seen[k] && k != "all_players" {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

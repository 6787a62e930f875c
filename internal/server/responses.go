package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
	"valorant-analytics/internal/api"
	"valorant-analytics/internal/domain"
	"valorant-analytics/internal/repository"
	"valorant-analytics/internal/service"

	"github.com/rs/zerolog"
)

// badRequest marks errors caused by the caller's input.
type badRequest struct {
	msg string
}

func (e *badRequest) Error() string { return e.msg }

func invalid(msg string) error { return &badRequest{msg: msg} }

func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResponse(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// writeError maps domain and upstream errors onto HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var br *badRequest
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &br):
		status = http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound), api.IsNotFound(err):
		status = http.StatusNotFound
	case api.IsTransient(err), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	case api.IsPermanent(err):
		status = http.StatusBadGateway
	}

	logger := zerolog.Ctx(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Int("status", status).Str("path", r.URL.Path).Msg("request failed")
		if status == http.StatusInternalServerError {
			errorResponse(w, status, "internal error")
			return
		}
	}
	errorResponse(w, status, err.Error())
}

type rankResponse struct {
	Tier      int       `json:"tier"`
	TierName  string    `json:"tier_name"`
	RR        int       `json:"rr"`
	Elo       int       `json:"elo"`
	FetchedAt time.Time `json:"fetched_at"`
}

type playerResponse struct {
	Puuid        string        `json:"puuid"`
	Name         string        `json:"name"`
	Tag          string        `json:"tag"`
	Region       string        `json:"region"`
	AccountLevel int           `json:"account_level"`
	Card         string        `json:"card,omitempty"`
	Title        string        `json:"title,omitempty"`
	LastFetchAt  time.Time     `json:"last_fetch_at"`
	Rank         *rankResponse `json:"rank,omitempty"`
}

func toPlayerResponse(p *service.PlayerProfile) playerResponse {
	resp := playerResponse{
		Puuid:        p.Player.Puuid,
		Name:         p.Player.Name,
		Tag:          p.Player.Tag,
		Region:       p.Player.Region,
		AccountLevel: p.Player.AccountLevel,
		Card:         p.Player.Card,
		Title:        p.Player.Title,
		LastFetchAt:  p.Player.LastFetchAt,
	}
	if p.Rank != nil {
		resp.Rank = &rankResponse{
			Tier:      p.Rank.Tier,
			TierName:  p.Rank.TierName,
			RR:        p.Rank.RR,
			Elo:       p.Rank.Elo,
			FetchedAt: p.Rank.FetchedAt,
		}
	}
	return resp
}

type countersResponse struct {
	GamesPlayed        int     `json:"games_played"`
	GamesWon           int     `json:"games_won"`
	GamesLost          int     `json:"games_lost"`
	WinRate            float64 `json:"win_rate"`
	Kills              int     `json:"kills"`
	Deaths             int     `json:"deaths"`
	Assists            int     `json:"assists"`
	KDA                float64 `json:"kda"`
	HeadshotPercentage float64 `json:"headshot_pct"`
	AverageKills       float64 `json:"avg_kills"`
	AverageScore       float64 `json:"avg_score"`
	AverageDamage      float64 `json:"avg_damage"`
}

func toCounters(c domain.Counters) countersResponse {
	return countersResponse{
		GamesPlayed:        c.GamesPlayed,
		GamesWon:           c.GamesWon,
		GamesLost:          c.GamesLost(),
		WinRate:            c.WinRate(),
		Kills:              c.Kills,
		Deaths:             c.Deaths,
		Assists:            c.Assists,
		KDA:                c.KDA(),
		HeadshotPercentage: c.HeadshotPercentage(),
		AverageKills:       c.AverageKills(),
		AverageScore:       c.AverageScore(),
		AverageDamage:      c.AverageDamage(),
	}
}

func agentCounters(in map[string]domain.AgentPerformance) map[string]countersResponse {
	out := make(map[string]countersResponse, len(in))
	for k, v := range in {
		out[k] = toCounters(v.Counters)
	}
	return out
}

func mapCounters(in map[string]domain.MapPerformance) map[string]countersResponse {
	out := make(map[string]countersResponse, len(in))
	for k, v := range in {
		out[k] = toCounters(v.Counters)
	}
	return out
}

type statsResponse struct {
	Puuid           string                      `json:"puuid"`
	From            time.Time                   `json:"from"`
	To              time.Time                   `json:"to"`
	Mode            string                      `json:"mode,omitempty"`
	MostPlayedAgent string                      `json:"most_played_agent"`
	Totals          countersResponse            `json:"totals"`
	Agents          map[string]countersResponse `json:"agents"`
	Maps            map[string]countersResponse `json:"maps"`
}

func toStatsResponse(s domain.PerformanceStats) statsResponse {
	return statsResponse{
		Puuid:           s.Puuid,
		From:            s.From,
		To:              s.To,
		Mode:            s.Mode,
		MostPlayedAgent: s.MostPlayedAgent,
		Totals:          toCounters(s.Counters),
		Agents:          agentCounters(s.Agents),
		Maps:            mapCounters(s.Maps),
	}
}

type performanceResponse struct {
	Puuid              string  `json:"puuid"`
	Name               string  `json:"name"`
	Tag                string  `json:"tag"`
	TeamID             string  `json:"team_id"`
	AgentName          string  `json:"agent_name"`
	Won                bool    `json:"won"`
	Kills              int     `json:"kills"`
	Deaths             int     `json:"deaths"`
	Assists            int     `json:"assists"`
	Score              int     `json:"score"`
	DamageDealt        int     `json:"damage_dealt"`
	DamageTaken        int     `json:"damage_taken"`
	Headshots          int     `json:"headshots"`
	Bodyshots          int     `json:"bodyshots"`
	Legshots           int     `json:"legshots"`
	KDA                float64 `json:"kda"`
	HeadshotPercentage float64 `json:"headshot_pct"`
}

type matchResponse struct {
	MatchID      string                `json:"match_id"`
	MapID        string                `json:"map_id"`
	MapName      string                `json:"map_name"`
	Mode         string                `json:"mode"`
	StartedAt    time.Time             `json:"started_at"`
	DurationMs   int64                 `json:"duration_ms"`
	Region       string                `json:"region"`
	Cluster      string                `json:"cluster,omitempty"`
	SeasonID     string                `json:"season_id,omitempty"`
	GameVersion  string                `json:"game_version,omitempty"`
	Source       string                `json:"source"`
	Teams        []domain.TeamResult   `json:"teams"`
	Performances []performanceResponse `json:"performances"`
}

func toMatchResponse(m domain.MatchRecord) matchResponse {
	resp := matchResponse{
		MatchID:      m.MatchID,
		MapID:        m.MapID,
		MapName:      m.MapName,
		Mode:         m.Mode,
		StartedAt:    m.StartedAt,
		DurationMs:   m.DurationMs,
		Region:       m.Region,
		Cluster:      m.Cluster,
		SeasonID:     m.SeasonID,
		GameVersion:  m.GameVersion,
		Source:       m.Source,
		Teams:        m.Teams,
		Performances: make([]performanceResponse, 0, len(m.Performances)),
	}
	if resp.Teams == nil {
		resp.Teams = []domain.TeamResult{}
	}
	for _, p := range m.Performances {
		resp.Performances = append(resp.Performances, performanceResponse{
			Puuid:              p.Puuid,
			Name:               p.Name,
			Tag:                p.Tag,
			TeamID:             p.TeamID,
			AgentName:          p.AgentName,
			Won:                p.Won,
			Kills:              p.Kills,
			Deaths:             p.Deaths,
			Assists:            p.Assists,
			Score:              p.Score,
			DamageDealt:        p.DamageDealt,
			DamageTaken:        p.DamageTaken,
			Headshots:          p.Headshots,
			Bodyshots:          p.Bodyshots,
			Legshots:           p.Legshots,
			KDA:                domain.KDARatio(p.Kills, p.Deaths, p.Assists),
			HeadshotPercentage: domain.HeadshotPercentage(p.Headshots, p.Bodyshots, p.Legshots),
		})
	}
	return resp
}

func toMatchResponses(in []domain.MatchRecord) []matchResponse {
	out := make([]matchResponse, 0, len(in))
	for _, m := range in {
		out = append(out, toMatchResponse(m))
	}
	return out
}

type trackedResponse struct {
	Puuid          string     `json:"puuid"`
	Name           string     `json:"name"`
	Tag            string     `json:"tag"`
	Region         string     `json:"region"`
	ModeFilter     string     `json:"mode_filter,omitempty"`
	LastBackfillAt *time.Time `json:"last_backfill_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func toTrackedResponse(tp domain.TrackedPlayer) trackedResponse {
	resp := trackedResponse{
		Puuid:      tp.Puuid,
		Name:       tp.Name,
		Tag:        tp.Tag,
		Region:     tp.Region,
		ModeFilter: tp.ModeFilter,
		CreatedAt:  tp.CreatedAt,
	}
	if !tp.LastBackfillAt.IsZero() {
		at := tp.LastBackfillAt
		resp.LastBackfillAt = &at
	}
	return resp
}

type backfillResponse struct {
	Requested  int   `json:"requested"`
	Skipped    int   `json:"skipped"`
	Ingested   int   `json:"ingested"`
	Failed     int   `json:"failed"`
	Abandoned  int   `json:"abandoned"`
	DurationMs int64 `json:"duration_ms"`
}

type trackResponse struct {
	Player   trackedResponse  `json:"player"`
	Backfill backfillResponse `json:"backfill"`
}

func toTrackResponse(res *service.TrackResult) trackResponse {
	b := res.Backfill
	return trackResponse{
		Player: toTrackedResponse(res.Player),
		Backfill: backfillResponse{
			Requested:  b.Requested,
			Skipped:    b.Skipped,
			Ingested:   b.Ingested,
			Failed:     b.Failed,
			Abandoned:  b.Abandoned,
			DurationMs: b.Duration.Milliseconds(),
		},
	}
}

type rankingResponse struct {
	Rank        int     `json:"rank"`
	Puuid       string  `json:"puuid"`
	Name        string  `json:"name"`
	Tag         string  `json:"tag"`
	KDA         float64 `json:"kda"`
	Kills       int     `json:"kills"`
	Deaths      int     `json:"deaths"`
	Assists     int     `json:"assists"`
	GamesPlayed int     `json:"games_played"`
}

func toRankingResponse(entries []domain.KdaRankingEntry) []rankingResponse {
	out := make([]rankingResponse, 0, len(entries))
	for i, e := range entries {
		out = append(out, rankingResponse{
			Rank:        i + 1,
			Puuid:       e.Puuid,
			Name:        e.Name,
			Tag:         e.Tag,
			KDA:         e.KDA,
			Kills:       e.Kills,
			Deaths:      e.Deaths,
			Assists:     e.Assists,
			GamesPlayed: e.GamesPlayed,
		})
	}
	return out
}

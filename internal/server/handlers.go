package server

import (
	"fmt"
	"net/http"
	"strconv"
	"valorant-analytics/internal/constants"
	"valorant-analytics/internal/repository"

	"github.com/go-chi/chi/v5"
)

const defaultActivityDays = 30

func (s *Server) lookupAccount(w http.ResponseWriter, r *http.Request) {
	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))

	profile, err := s.players.Lookup(r.Context(), chi.URLParam(r, "name"), chi.URLParam(r, "tag"), refresh)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, toPlayerResponse(profile))
}

func (s *Server) trackAccount(w http.ResponseWriter, r *http.Request) {
	res, err := s.tracking.Track(r.Context(), chi.URLParam(r, "name"), chi.URLParam(r, "tag"), r.URL.Query().Get("mode"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, toTrackResponse(res))
}

func (s *Server) listTracked(w http.ResponseWriter, r *http.Request) {
	tracked, err := s.tracking.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]trackedResponse, 0, len(tracked))
	for _, tp := range tracked {
		out = append(out, toTrackedResponse(tp))
	}
	jsonResponse(w, http.StatusOK, out)
}

func (s *Server) untrack(w http.ResponseWriter, r *http.Request) {
	if err := s.tracking.Untrack(r.Context(), chi.URLParam(r, "puuid")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getPlayer(w http.ResponseWriter, r *http.Request) {
	profile, err := s.players.GetByPuuid(r.Context(), chi.URLParam(r, "puuid"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, toPlayerResponse(profile))
}

func (s *Server) ingestMatch(w http.ResponseWriter, r *http.Request) {
	record, err := s.matches.Ingest(r.Context(), chi.URLParam(r, "matchId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, toMatchResponse(*record))
}

func (s *Server) getMatch(w http.ResponseWriter, r *http.Request) {
	record, err := s.matches.Get(r.Context(), chi.URLParam(r, "matchId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, toMatchResponse(*record))
}

func (s *Server) matchScoreboard(w http.ResponseWriter, r *http.Request) {
	entries, err := s.matches.Scoreboard(r.Context(), chi.URLParam(r, "matchId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, toRankingResponse(entries))
}

func (s *Server) playerStats(w http.ResponseWriter, r *http.Request) {
	from, to, err := s.window(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	stats := s.analytics.Stats(r.Context(), chi.URLParam(r, "puuid"), from, to, r.URL.Query().Get("mode"))
	jsonResponse(w, http.StatusOK, toStatsResponse(stats))
}

func (s *Server) playerAgents(w http.ResponseWriter, r *http.Request) {
	from, to, err := s.window(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	minGames, err := intParam(r, "min_games", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	agents := s.analytics.Agents(r.Context(), chi.URLParam(r, "puuid"), from, to, minGames)
	jsonResponse(w, http.StatusOK, agentCounters(agents))
}

func (s *Server) playerMaps(w http.ResponseWriter, r *http.Request) {
	from, to, err := s.window(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	minGames, err := intParam(r, "min_games", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	maps := s.analytics.Maps(r.Context(), chi.URLParam(r, "puuid"), from, to, minGames)
	jsonResponse(w, http.StatusOK, mapCounters(maps))
}

func (s *Server) playerActivity(w http.ResponseWriter, r *http.Request) {
	days, err := intParam(r, "days", defaultActivityDays)
	if err == nil && days > constants.MaxHistogramDays {
		err = invalid(fmt.Sprintf("days must be at most %d", constants.MaxHistogramDays))
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, s.analytics.Activity(r.Context(), chi.URLParam(r, "puuid"), days))
}

func (s *Server) playerMapCounts(w http.ResponseWriter, r *http.Request) {
	from, to, err := s.window(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, s.analytics.MapCounts(r.Context(), chi.URLParam(r, "puuid"), from, to))
}

func (s *Server) playerMatches(w http.ResponseWriter, r *http.Request) {
	from, to, err := s.window(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	skip, err := intParam(r, "skip", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	take, err := intParam(r, "take", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}

	matches := s.analytics.Matches(r.Context(), repository.MatchFilter{
		Puuid: chi.URLParam(r, "puuid"),
		From:  from,
		To:    to,
		Mode:  r.URL.Query().Get("mode"),
		Skip:  skip,
		Take:  take,
	})
	jsonResponse(w, http.StatusOK, toMatchResponses(matches))
}

func (s *Server) kdaRanking(w http.ResponseWriter, r *http.Request) {
	players := listParam(r, "players")
	if len(players) == 0 {
		writeError(w, r, invalid("players is required"))
		return
	}
	from, to, err := s.window(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	minGames, err := intParam(r, "min_games", 1)
	if err != nil {
		writeError(w, r, err)
		return
	}

	entries := s.analytics.KdaRanking(r.Context(), players, from, to, r.URL.Query().Get("mode"), minGames)
	jsonResponse(w, http.StatusOK, toRankingResponse(entries))
}

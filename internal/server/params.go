package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"valorant-analytics/internal/constants"
)

// window reads from/to as RFC3339. A missing to defaults to now truncated to
// the minute, which keeps cache keys stable across nearby requests; a missing
// from defaults to AnalyticsWindow before to.
func (s *Server) window(r *http.Request) (time.Time, time.Time, error) {
	q := r.URL.Query()

	to := s.now().UTC().Truncate(time.Minute)
	if raw := q.Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, invalid(fmt.Sprintf("invalid to %q: expected RFC3339", raw))
		}
		to = t
	}

	from := to.Add(-constants.AnalyticsWindow)
	if raw := q.Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, invalid(fmt.Sprintf("invalid from %q: expected RFC3339", raw))
		}
		from = t
	}

	if from.After(to) {
		return time.Time{}, time.Time{}, invalid("from must not be after to")
	}
	return from, to, nil
}

// intParam parses a non-negative integer query parameter.
func intParam(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, invalid(fmt.Sprintf("invalid %s %q: expected a non-negative integer", key, raw))
	}
	return v, nil
}

func listParam(r *http.Request, key string) []string {
	var out []string
	for _, item := range strings.Split(r.URL.Query().Get(key), ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

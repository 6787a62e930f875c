package db

import (
	"context"
)

const upsertMatch = `-- name: UpsertMatch :exec
INSERT INTO matches (
    match_id, map_id, map_name, mode, started_at, duration_ms, region, cluster,
    season_id, game_version, source, teams, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (match_id) DO UPDATE SET
    map_id = excluded.map_id,
    map_name = excluded.map_name,
    mode = excluded.mode,
    started_at = excluded.started_at,
    duration_ms = excluded.duration_ms,
    region = excluded.region,
    cluster = excluded.cluster,
    season_id = excluded.season_id,
    game_version = excluded.game_version,
    source = excluded.source,
    teams = excluded.teams,
    updated_at = excluded.updated_at
`

type UpsertMatchParams struct {
	MatchID     string
	MapID       string
	MapName     string
	Mode        string
	StartedAt   int64
	DurationMs  int64
	Region      string
	Cluster     string
	SeasonID    string
	GameVersion string
	Source      string
	Teams       string
	CreatedAt   int64
	UpdatedAt   int64
}

func (q *Queries) UpsertMatch(ctx context.Context, arg UpsertMatchParams) error {
	_, err := q.db.ExecContext(ctx, upsertMatch,
		arg.MatchID,
		arg.MapID,
		arg.MapName,
		arg.Mode,
		arg.StartedAt,
		arg.DurationMs,
		arg.Region,
		arg.Cluster,
		arg.SeasonID,
		arg.GameVersion,
		arg.Source,
		arg.Teams,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const matchColumns = `match_id, map_id, map_name, mode, started_at, duration_ms, region, cluster,
    season_id, game_version, source, teams, created_at, updated_at`

const getMatch = `-- name: GetMatch :one
SELECT ` + matchColumns + ` FROM matches WHERE match_id = ?
`

func (q *Queries) GetMatch(ctx context.Context, matchID string) (Match, error) {
	row := q.db.QueryRowContext(ctx, getMatch, matchID)
	var i Match
	err := row.Scan(
		&i.MatchID,
		&i.MapID,
		&i.MapName,
		&i.Mode,
		&i.StartedAt,
		&i.DurationMs,
		&i.Region,
		&i.Cluster,
		&i.SeasonID,
		&i.GameVersion,
		&i.Source,
		&i.Teams,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listMatchesByIDs = `-- name: ListMatchesByIDs :many
SELECT ` + matchColumns + ` FROM matches
WHERE match_id IN (/*SLICE:match_ids*/?)
  AND (? = '' OR mode = ?)
ORDER BY started_at DESC, match_id ASC
`

type ListMatchesByIDsParams struct {
	MatchIds []string
	Mode     string
}

// ListMatchesByIDs returns the matches among MatchIds, newest first. An empty
// Mode matches every mode.
func (q *Queries) ListMatchesByIDs(ctx context.Context, arg ListMatchesByIDsParams) ([]Match, error) {
	query, args := expandSlice(listMatchesByIDs, "match_ids", arg.MatchIds)
	args = append(args, arg.Mode, arg.Mode)
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Match
	for rows.Next() {
		var i Match
		if err := rows.Scan(
			&i.MatchID,
			&i.MapID,
			&i.MapName,
			&i.Mode,
			&i.StartedAt,
			&i.DurationMs,
			&i.Region,
			&i.Cluster,
			&i.SeasonID,
			&i.GameVersion,
			&i.Source,
			&i.Teams,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countMatchesByMap = `-- name: CountMatchesByMap :many
SELECT map_name, COUNT(*) AS matches
FROM matches
WHERE match_id IN (/*SLICE:match_ids*/?)
GROUP BY map_name
`

type CountMatchesByMapRow struct {
	MapName string
	Matches int64
}

func (q *Queries) CountMatchesByMap(ctx context.Context, matchIds []string) ([]CountMatchesByMapRow, error) {
	query, args := expandSlice(countMatchesByMap, "match_ids", matchIds)
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CountMatchesByMapRow
	for rows.Next() {
		var i CountMatchesByMapRow
		if err := rows.Scan(&i.MapName, &i.Matches); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

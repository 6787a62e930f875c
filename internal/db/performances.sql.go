package db

import (
	"context"
)

const upsertPerformance = `-- name: UpsertPerformance :exec
INSERT INTO performances (
    puuid, match_id, name, tag, team_id, agent_id, agent_name, map_id, map_name, mode, won,
    kills, deaths, assists, score, damage_dealt, damage_taken, headshots, bodyshots, legshots,
    started_at, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (puuid, match_id) DO UPDATE SET
    name = excluded.name,
    tag = excluded.tag,
    team_id = excluded.team_id,
    agent_id = excluded.agent_id,
    agent_name = excluded.agent_name,
    map_id = excluded.map_id,
    map_name = excluded.map_name,
    mode = excluded.mode,
    won = excluded.won,
    kills = excluded.kills,
    deaths = excluded.deaths,
    assists = excluded.assists,
    score = excluded.score,
    damage_dealt = excluded.damage_dealt,
    damage_taken = excluded.damage_taken,
    headshots = excluded.headshots,
    bodyshots = excluded.bodyshots,
    legshots = excluded.legshots,
    started_at = excluded.started_at,
    updated_at = excluded.updated_at
`

type UpsertPerformanceParams struct {
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
	Kills       int64
	Deaths      int64
	Assists     int64
	Score       int64
	DamageDealt int64
	DamageTaken int64
	Headshots   int64
	Bodyshots   int64
	Legshots    int64
	StartedAt   int64
	CreatedAt   int64
	UpdatedAt   int64
}

func (q *Queries) UpsertPerformance(ctx context.Context, arg UpsertPerformanceParams) error {
	_, err := q.db.ExecContext(ctx, upsertPerformance,
		arg.Puuid,
		arg.MatchID,
		arg.Name,
		arg.Tag,
		arg.TeamID,
		arg.AgentID,
		arg.AgentName,
		arg.MapID,
		arg.MapName,
		arg.Mode,
		arg.Won,
		arg.Kills,
		arg.Deaths,
		arg.Assists,
		arg.Score,
		arg.DamageDealt,
		arg.DamageTaken,
		arg.Headshots,
		arg.Bodyshots,
		arg.Legshots,
		arg.StartedAt,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const performanceColumns = `puuid, match_id, name, tag, team_id, agent_id, agent_name, map_id, map_name, mode, won,
    kills, deaths, assists, score, damage_dealt, damage_taken, headshots, bodyshots, legshots,
    started_at, created_at, updated_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPerformance(row scanner) (Performance, error) {
	var i Performance
	err := row.Scan(
		&i.Puuid,
		&i.MatchID,
		&i.Name,
		&i.Tag,
		&i.TeamID,
		&i.AgentID,
		&i.AgentName,
		&i.MapID,
		&i.MapName,
		&i.Mode,
		&i.Won,
		&i.Kills,
		&i.Deaths,
		&i.Assists,
		&i.Score,
		&i.DamageDealt,
		&i.DamageTaken,
		&i.Headshots,
		&i.Bodyshots,
		&i.Legshots,
		&i.StartedAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getPerformance = `-- name: GetPerformance :one
SELECT ` + performanceColumns + ` FROM performances WHERE puuid = ? AND match_id = ?
`

type GetPerformanceParams struct {
	Puuid   string
	MatchID string
}

func (q *Queries) GetPerformance(ctx context.Context, arg GetPerformanceParams) (Performance, error) {
	return scanPerformance(q.db.QueryRowContext(ctx, getPerformance, arg.Puuid, arg.MatchID))
}

const listPerformancesByMatch = `-- name: ListPerformancesByMatch :many
SELECT ` + performanceColumns + ` FROM performances
WHERE match_id = ?
ORDER BY team_id ASC, score DESC, puuid ASC
`

func (q *Queries) ListPerformancesByMatch(ctx context.Context, matchID string) ([]Performance, error) {
	rows, err := q.db.QueryContext(ctx, listPerformancesByMatch, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Performance
	for rows.Next() {
		i, err := scanPerformance(rows)
		if err != nil {
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

const listPerformancesByPuuids = `-- name: ListPerformancesByPuuids :many
SELECT ` + performanceColumns + ` FROM performances
WHERE puuid IN (/*SLICE:puuids*/?)
  AND started_at >= ? AND started_at <= ?
  AND (? = '' OR mode = ?)
ORDER BY started_at DESC, match_id ASC
`

type ListPerformancesByPuuidsParams struct {
	Puuids []string
	From   int64
	To     int64
	Mode   string
}

func (q *Queries) ListPerformancesByPuuids(ctx context.Context, arg ListPerformancesByPuuidsParams) ([]Performance, error) {
	query, args := expandSlice(listPerformancesByPuuids, "puuids", arg.Puuids)
	args = append(args, arg.From, arg.To, arg.Mode, arg.Mode)
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Performance
	for rows.Next() {
		i, err := scanPerformance(rows)
		if err != nil {
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

const listMatchIDsByPuuid = `-- name: ListMatchIDsByPuuid :many
SELECT match_id FROM performances
WHERE puuid = ? AND started_at >= ? AND started_at <= ?
ORDER BY started_at DESC, match_id ASC
`

type ListMatchIDsByPuuidParams struct {
	Puuid string
	From  int64
	To    int64
}

func (q *Queries) ListMatchIDsByPuuid(ctx context.Context, arg ListMatchIDsByPuuidParams) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listMatchIDsByPuuid, arg.Puuid, arg.From, arg.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var matchID string
		if err := rows.Scan(&matchID); err != nil {
			return nil, err
		}
		items = append(items, matchID)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listLatestIdentities = `-- name: ListLatestIdentities :many
SELECT puuid, name, tag, MAX(started_at) AS started_at
FROM performances
WHERE puuid IN (/*SLICE:puuids*/?)
GROUP BY puuid
`

type ListLatestIdentitiesRow struct {
	Puuid     string
	Name      string
	Tag       string
	StartedAt int64
}

// ListLatestIdentities returns the name and tag each player used in their
// most recent stored match.
func (q *Queries) ListLatestIdentities(ctx context.Context, puuids []string) ([]ListLatestIdentitiesRow, error) {
	query, args := expandSlice(listLatestIdentities, "puuids", puuids)
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListLatestIdentitiesRow
	for rows.Next() {
		var i ListLatestIdentitiesRow
		if err := rows.Scan(&i.Puuid, &i.Name, &i.Tag, &i.StartedAt); err != nil {
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

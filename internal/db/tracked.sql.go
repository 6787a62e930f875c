package db

import (
	"context"
)

const upsertTrackedPlayer = `-- name: UpsertTrackedPlayer :exec
INSERT INTO tracked_players (
    puuid, name, tag, region, mode_filter, last_backfill_at, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (puuid) DO UPDATE SET
    name = excluded.name,
    tag = excluded.tag,
    region = excluded.region,
    mode_filter = excluded.mode_filter,
    last_backfill_at = excluded.last_backfill_at,
    updated_at = excluded.updated_at
`

type UpsertTrackedPlayerParams struct {
	Puuid          string
	Name           string
	Tag            string
	Region         string
	ModeFilter     string
	LastBackfillAt int64
	CreatedAt      int64
	UpdatedAt      int64
}

func (q *Queries) UpsertTrackedPlayer(ctx context.Context, arg UpsertTrackedPlayerParams) error {
	_, err := q.db.ExecContext(ctx, upsertTrackedPlayer,
		arg.Puuid,
		arg.Name,
		arg.Tag,
		arg.Region,
		arg.ModeFilter,
		arg.LastBackfillAt,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const getTrackedPlayer = `-- name: GetTrackedPlayer :one
SELECT puuid, name, tag, region, mode_filter, last_backfill_at, created_at, updated_at
FROM tracked_players WHERE puuid = ?
`

func (q *Queries) GetTrackedPlayer(ctx context.Context, puuid string) (TrackedPlayer, error) {
	row := q.db.QueryRowContext(ctx, getTrackedPlayer, puuid)
	var i TrackedPlayer
	err := row.Scan(
		&i.Puuid,
		&i.Name,
		&i.Tag,
		&i.Region,
		&i.ModeFilter,
		&i.LastBackfillAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listTrackedPlayers = `-- name: ListTrackedPlayers :many
SELECT puuid, name, tag, region, mode_filter, last_backfill_at, created_at, updated_at
FROM tracked_players
ORDER BY created_at ASC, puuid ASC
`

func (q *Queries) ListTrackedPlayers(ctx context.Context) ([]TrackedPlayer, error) {
	rows, err := q.db.QueryContext(ctx, listTrackedPlayers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TrackedPlayer
	for rows.Next() {
		var i TrackedPlayer
		if err := rows.Scan(
			&i.Puuid,
			&i.Name,
			&i.Tag,
			&i.Region,
			&i.ModeFilter,
			&i.LastBackfillAt,
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

const deleteTrackedPlayer = `-- name: DeleteTrackedPlayer :execrows
DELETE FROM tracked_players WHERE puuid = ?
`

func (q *Queries) DeleteTrackedPlayer(ctx context.Context, puuid string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTrackedPlayer, puuid)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const updateTrackedPlayerBackfill = `-- name: UpdateTrackedPlayerBackfill :exec
UPDATE tracked_players SET last_backfill_at = ?, updated_at = ? WHERE puuid = ?
`

type UpdateTrackedPlayerBackfillParams struct {
	LastBackfillAt int64
	UpdatedAt      int64
	Puuid          string
}

func (q *Queries) UpdateTrackedPlayerBackfill(ctx context.Context, arg UpdateTrackedPlayerBackfillParams) error {
	_, err := q.db.ExecContext(ctx, updateTrackedPlayerBackfill, arg.LastBackfillAt, arg.UpdatedAt, arg.Puuid)
	return err
}

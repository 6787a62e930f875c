package db

import (
	"context"
)

const upsertPlayer = `-- name: UpsertPlayer :exec
INSERT INTO players (
    puuid, name, tag, region, account_level, card, title, last_fetch_at, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (puuid) DO UPDATE SET
    name = excluded.name,
    tag = excluded.tag,
    region = excluded.region,
    account_level = excluded.account_level,
    card = excluded.card,
    title = excluded.title,
    last_fetch_at = excluded.last_fetch_at,
    updated_at = excluded.updated_at
`

type UpsertPlayerParams struct {
	Puuid        string
	Name         string
	Tag          string
	Region       string
	AccountLevel int64
	Card         string
	Title        string
	LastFetchAt  int64
	CreatedAt    int64
	UpdatedAt    int64
}

func (q *Queries) UpsertPlayer(ctx context.Context, arg UpsertPlayerParams) error {
	_, err := q.db.ExecContext(ctx, upsertPlayer,
		arg.Puuid,
		arg.Name,
		arg.Tag,
		arg.Region,
		arg.AccountLevel,
		arg.Card,
		arg.Title,
		arg.LastFetchAt,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const playerColumns = `puuid, name, tag, region, account_level, card, title, last_fetch_at, created_at, updated_at`

const getPlayerByPuuid = `-- name: GetPlayerByPuuid :one
SELECT ` + playerColumns + ` FROM players WHERE puuid = ?
`

func (q *Queries) GetPlayerByPuuid(ctx context.Context, puuid string) (Player, error) {
	row := q.db.QueryRowContext(ctx, getPlayerByPuuid, puuid)
	var i Player
	err := row.Scan(
		&i.Puuid,
		&i.Name,
		&i.Tag,
		&i.Region,
		&i.AccountLevel,
		&i.Card,
		&i.Title,
		&i.LastFetchAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getPlayerByNameTag = `-- name: GetPlayerByNameTag :one
SELECT ` + playerColumns + ` FROM players
WHERE name = ? COLLATE NOCASE AND tag = ? COLLATE NOCASE
ORDER BY updated_at DESC
LIMIT 1
`

type GetPlayerByNameTagParams struct {
	Name string
	Tag  string
}

func (q *Queries) GetPlayerByNameTag(ctx context.Context, arg GetPlayerByNameTagParams) (Player, error) {
	row := q.db.QueryRowContext(ctx, getPlayerByNameTag, arg.Name, arg.Tag)
	var i Player
	err := row.Scan(
		&i.Puuid,
		&i.Name,
		&i.Tag,
		&i.Region,
		&i.AccountLevel,
		&i.Card,
		&i.Title,
		&i.LastFetchAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listPlayersByPuuids = `-- name: ListPlayersByPuuids :many
SELECT ` + playerColumns + ` FROM players WHERE puuid IN (/*SLICE:puuids*/?)
`

func (q *Queries) ListPlayersByPuuids(ctx context.Context, puuids []string) ([]Player, error) {
	query, args := expandSlice(listPlayersByPuuids, "puuids", puuids)
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Player
	for rows.Next() {
		var i Player
		if err := rows.Scan(
			&i.Puuid,
			&i.Name,
			&i.Tag,
			&i.Region,
			&i.AccountLevel,
			&i.Card,
			&i.Title,
			&i.LastFetchAt,
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

const getPlayerLastFetchAt = `-- name: GetPlayerLastFetchAt :one
SELECT last_fetch_at FROM players WHERE puuid = ?
`

func (q *Queries) GetPlayerLastFetchAt(ctx context.Context, puuid string) (int64, error) {
	row := q.db.QueryRowContext(ctx, getPlayerLastFetchAt, puuid)
	var lastFetchAt int64
	err := row.Scan(&lastFetchAt)
	return lastFetchAt, err
}

const updatePlayerLastFetchAt = `-- name: UpdatePlayerLastFetchAt :exec
UPDATE players SET last_fetch_at = ?, updated_at = ? WHERE puuid = ?
`

type UpdatePlayerLastFetchAtParams struct {
	LastFetchAt int64
	UpdatedAt   int64
	Puuid       string
}

func (q *Queries) UpdatePlayerLastFetchAt(ctx context.Context, arg UpdatePlayerLastFetchAtParams) error {
	_, err := q.db.ExecContext(ctx, updatePlayerLastFetchAt, arg.LastFetchAt, arg.UpdatedAt, arg.Puuid)
	return err
}

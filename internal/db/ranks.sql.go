package db

import (
	"context"
)

const insertPlayerRank = `-- name: InsertPlayerRank :exec
INSERT INTO player_ranks (
    id, puuid, tier, tier_name, rr, elo, source, fetched_at, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    tier = excluded.tier,
    tier_name = excluded.tier_name,
    rr = excluded.rr,
    elo = excluded.elo,
    source = excluded.source,
    fetched_at = excluded.fetched_at
`

type InsertPlayerRankParams struct {
	ID        string
	Puuid     string
	Tier      int64
	TierName  string
	Rr        int64
	Elo       int64
	Source    string
	FetchedAt int64
	CreatedAt int64
}

func (q *Queries) InsertPlayerRank(ctx context.Context, arg InsertPlayerRankParams) error {
	_, err := q.db.ExecContext(ctx, insertPlayerRank,
		arg.ID,
		arg.Puuid,
		arg.Tier,
		arg.TierName,
		arg.Rr,
		arg.Elo,
		arg.Source,
		arg.FetchedAt,
		arg.CreatedAt,
	)
	return err
}

const listPlayerRanks = `-- name: ListPlayerRanks :many
SELECT id, puuid, tier, tier_name, rr, elo, source, fetched_at, created_at
FROM player_ranks
WHERE puuid = ?
ORDER BY fetched_at DESC, created_at DESC
LIMIT ?
`

type ListPlayerRanksParams struct {
	Puuid string
	Limit int64
}

func (q *Queries) ListPlayerRanks(ctx context.Context, arg ListPlayerRanksParams) ([]PlayerRank, error) {
	rows, err := q.db.QueryContext(ctx, listPlayerRanks, arg.Puuid, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PlayerRank
	for rows.Next() {
		var i PlayerRank
		if err := rows.Scan(
			&i.ID,
			&i.Puuid,
			&i.Tier,
			&i.TierName,
			&i.Rr,
			&i.Elo,
			&i.Source,
			&i.FetchedAt,
			&i.CreatedAt,
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

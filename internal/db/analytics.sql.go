package db

import (
	"context"
)

// Window filters on performances are inclusive on both ends. An empty mode
// disables the mode filter.

const getPerformanceTotals = `-- name: GetPerformanceTotals :one
SELECT
    COUNT(DISTINCT match_id)          AS matches,
    COALESCE(SUM(kills), 0)           AS kills,
    COALESCE(SUM(deaths), 0)          AS deaths,
    COALESCE(SUM(assists), 0)         AS assists,
    COALESCE(SUM(score), 0)           AS score,
    COALESCE(SUM(damage_dealt), 0)    AS damage,
    COALESCE(SUM(headshots), 0)       AS headshots,
    COALESCE(SUM(bodyshots), 0)       AS bodyshots,
    COALESCE(SUM(legshots), 0)        AS legshots
FROM performances
WHERE puuid = ? AND started_at >= ? AND started_at <= ?
  AND (? = '' OR mode = ?)
`

type WindowParams struct {
	Puuid string
	From  int64
	To    int64
	Mode  string
}

func (p WindowParams) args() []interface{} {
	return []interface{}{p.Puuid, p.From, p.To, p.Mode, p.Mode}
}

type GetPerformanceTotalsRow struct {
	Matches   int64
	Kills     int64
	Deaths    int64
	Assists   int64
	Score     int64
	Damage    int64
	Headshots int64
	Bodyshots int64
	Legshots  int64
}

func (q *Queries) GetPerformanceTotals(ctx context.Context, arg WindowParams) (GetPerformanceTotalsRow, error) {
	row := q.db.QueryRowContext(ctx, getPerformanceTotals, arg.args()...)
	var i GetPerformanceTotalsRow
	err := row.Scan(
		&i.Matches,
		&i.Kills,
		&i.Deaths,
		&i.Assists,
		&i.Score,
		&i.Damage,
		&i.Headshots,
		&i.Bodyshots,
		&i.Legshots,
	)
	return i, err
}

const countWinLoss = `-- name: CountWinLoss :many
SELECT won, COUNT(DISTINCT match_id) AS games
FROM performances
WHERE puuid = ? AND started_at >= ? AND started_at <= ?
  AND (? = '' OR mode = ?)
GROUP BY won
`

type CountWinLossRow struct {
	Won   bool
	Games int64
}

func (q *Queries) CountWinLoss(ctx context.Context, arg WindowParams) ([]CountWinLossRow, error) {
	rows, err := q.db.QueryContext(ctx, countWinLoss, arg.args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CountWinLossRow
	for rows.Next() {
		var i CountWinLossRow
		if err := rows.Scan(&i.Won, &i.Games); err != nil {
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

// BucketRow is one group of a terms aggregation over performances.
type BucketRow struct {
	Key       string
	Games     int64
	Wins      int64
	Kills     int64
	Deaths    int64
	Assists   int64
	Score     int64
	Damage    int64
	Headshots int64
	Bodyshots int64
	Legshots  int64
}

const bucketAggregates = `
    COUNT(*)                          AS games,
    COALESCE(SUM(won), 0)             AS wins,
    COALESCE(SUM(kills), 0)           AS kills,
    COALESCE(SUM(deaths), 0)          AS deaths,
    COALESCE(SUM(assists), 0)         AS assists,
    COALESCE(SUM(score), 0)           AS score,
    COALESCE(SUM(damage_dealt), 0)    AS damage,
    COALESCE(SUM(headshots), 0)       AS headshots,
    COALESCE(SUM(bodyshots), 0)       AS bodyshots,
    COALESCE(SUM(legshots), 0)        AS legshots`

const aggregateByAgent = `-- name: AggregateByAgent :many
SELECT agent_name,` + bucketAggregates + `
FROM performances
WHERE puuid = ? AND started_at >= ? AND started_at <= ?
  AND (? = '' OR mode = ?)
GROUP BY agent_name
ORDER BY games DESC, agent_name ASC
`

func (q *Queries) AggregateByAgent(ctx context.Context, arg WindowParams) ([]BucketRow, error) {
	return q.buckets(ctx, aggregateByAgent, arg.args()...)
}

const aggregateByMap = `-- name: AggregateByMap :many
SELECT map_name,` + bucketAggregates + `
FROM performances
WHERE puuid = ? AND started_at >= ? AND started_at <= ?
  AND (? = '' OR mode = ?)
GROUP BY map_name
ORDER BY games DESC, map_name ASC
`

func (q *Queries) AggregateByMap(ctx context.Context, arg WindowParams) ([]BucketRow, error) {
	return q.buckets(ctx, aggregateByMap, arg.args()...)
}

const aggregateByPlayer = `-- name: AggregateByPlayer :many
SELECT puuid,` + bucketAggregates + `
FROM performances
WHERE puuid IN (/*SLICE:puuids*/?)
  AND started_at >= ? AND started_at <= ?
  AND (? = '' OR mode = ?)
GROUP BY puuid
HAVING COUNT(*) >= ?
`

type AggregateByPlayerParams struct {
	Puuids   []string
	From     int64
	To       int64
	Mode     string
	MinGames int64
}

// AggregateByPlayer groups performances by player, dropping players with
// fewer than MinGames games in the window.
func (q *Queries) AggregateByPlayer(ctx context.Context, arg AggregateByPlayerParams) ([]BucketRow, error) {
	query, args := expandSlice(aggregateByPlayer, "puuids", arg.Puuids)
	args = append(args, arg.From, arg.To, arg.Mode, arg.Mode, arg.MinGames)
	return q.buckets(ctx, query, args...)
}

func (q *Queries) buckets(ctx context.Context, query string, args ...interface{}) ([]BucketRow, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []BucketRow
	for rows.Next() {
		var i BucketRow
		if err := rows.Scan(
			&i.Key,
			&i.Games,
			&i.Wins,
			&i.Kills,
			&i.Deaths,
			&i.Assists,
			&i.Score,
			&i.Damage,
			&i.Headshots,
			&i.Bodyshots,
			&i.Legshots,
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

const countMatchesByDay = `-- name: CountMatchesByDay :many
SELECT date(started_at / 1000, 'unixepoch') AS day, COUNT(DISTINCT match_id) AS matches
FROM performances
WHERE puuid = ? AND started_at >= ? AND started_at <= ?
GROUP BY day
ORDER BY day ASC
`

type CountMatchesByDayParams struct {
	Puuid string
	From  int64
	To    int64
}

type CountMatchesByDayRow struct {
	Day     string
	Matches int64
}

// CountMatchesByDay buckets matches by UTC calendar day (YYYY-MM-DD).
func (q *Queries) CountMatchesByDay(ctx context.Context, arg CountMatchesByDayParams) ([]CountMatchesByDayRow, error) {
	rows, err := q.db.QueryContext(ctx, countMatchesByDay, arg.Puuid, arg.From, arg.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CountMatchesByDayRow
	for rows.Next() {
		var i CountMatchesByDayRow
		if err := rows.Scan(&i.Day, &i.Matches); err != nil {
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

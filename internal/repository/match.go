package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"valorant-analytics/internal/db"
	"valorant-analytics/internal/domain"

	"github.com/rs/zerolog"
)

type MatchRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewMatchRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *MatchRepository {
	return &MatchRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

// Save writes a match and all of its performances in one transaction, so a
// cancelled or failed ingestion leaves no partial match behind.
func (r *MatchRepository) Save(ctx context.Context, match *domain.MatchRecord) error {
	now := time.Now()
	params, err := matchParams(match, now)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)

	if err := qtx.UpsertMatch(ctx, params); err != nil {
		return fmt.Errorf("failed to upsert match %s: %w", match.MatchID, err)
	}

	// one statement per row inside the transaction; sqlite commits them together
	perfs := match.Performances
	for i := range perfs {
		p := &perfs[i]
		if err := qtx.UpsertPerformance(ctx, performanceParams(p, now)); err != nil {
			return fmt.Errorf("failed to upsert performance %s/%s: %w", p.MatchID, p.Puuid, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit match %s: %w", match.MatchID, err)
	}

	r.logger.Debug().
		Str("match_id", match.MatchID).
		Int("performances", len(perfs)).
		Msg("match saved")
	return nil
}

// Get loads a match together with every stored performance of it.
func (r *MatchRepository) Get(ctx context.Context, matchID string) (*domain.MatchRecord, error) {
	row, err := r.queries.GetMatch(ctx, matchID)
	if err != nil {
		return nil, notFound(err)
	}

	match, err := matchFromRow(row)
	if err != nil {
		return nil, err
	}

	perfs, err := r.queries.ListPerformancesByMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list performances of match %s: %w", matchID, err)
	}
	match.Performances = make([]domain.PlayerMatchPerformance, len(perfs))
	for i, p := range perfs {
		match.Performances[i] = performanceFromRow(p)
	}

	return &match, nil
}

func (r *MatchRepository) Exists(ctx context.Context, matchID string) (bool, error) {
	_, err := r.queries.GetMatch(ctx, matchID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

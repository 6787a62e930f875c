package repository

import (
	"context"
	"database/sql"
	"time"
	"valorant-analytics/internal/db"
	"valorant-analytics/internal/domain"

	"github.com/rs/zerolog"
)

type TrackingRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewTrackingRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *TrackingRepository {
	return &TrackingRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

func (r *TrackingRepository) Upsert(ctx context.Context, tp *domain.TrackedPlayer) error {
	now := time.Now()
	if tp.CreatedAt.IsZero() {
		tp.CreatedAt = now
	}
	tp.UpdatedAt = now

	return r.queries.UpsertTrackedPlayer(ctx, db.UpsertTrackedPlayerParams{
		Puuid:          tp.Puuid,
		Name:           tp.Name,
		Tag:            tp.Tag,
		Region:         tp.Region,
		ModeFilter:     tp.ModeFilter,
		LastBackfillAt: toMillis(tp.LastBackfillAt),
		CreatedAt:      toMillis(tp.CreatedAt),
		UpdatedAt:      toMillis(tp.UpdatedAt),
	})
}

func (r *TrackingRepository) Get(ctx context.Context, puuid string) (*domain.TrackedPlayer, error) {
	row, err := r.queries.GetTrackedPlayer(ctx, puuid)
	if err != nil {
		return nil, notFound(err)
	}
	tp := trackedFromRow(row)
	return &tp, nil
}

func (r *TrackingRepository) List(ctx context.Context) ([]domain.TrackedPlayer, error) {
	rows, err := r.queries.ListTrackedPlayers(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]domain.TrackedPlayer, len(rows))
	for i, row := range rows {
		result[i] = trackedFromRow(row)
	}
	return result, nil
}

// Delete removes the tracking entry. ErrNotFound when none existed.
func (r *TrackingRepository) Delete(ctx context.Context, puuid string) error {
	n, err := r.queries.DeleteTrackedPlayer(ctx, puuid)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TrackingRepository) MarkBackfilled(ctx context.Context, puuid string, at time.Time) error {
	return r.queries.UpdateTrackedPlayerBackfill(ctx, db.UpdateTrackedPlayerBackfillParams{
		LastBackfillAt: toMillis(at),
		UpdatedAt:      toMillis(time.Now()),
		Puuid:          puuid,
	})
}

func trackedFromRow(row db.TrackedPlayer) domain.TrackedPlayer {
	return domain.TrackedPlayer{
		Puuid:          row.Puuid,
		Name:           row.Name,
		Tag:            row.Tag,
		Region:         row.Region,
		ModeFilter:     row.ModeFilter,
		LastBackfillAt: fromMillis(row.LastBackfillAt),
		CreatedAt:      fromMillis(row.CreatedAt),
		UpdatedAt:      fromMillis(row.UpdatedAt),
	}
}

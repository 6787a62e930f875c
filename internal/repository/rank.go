package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
	"valorant-analytics/internal/db"
	"valorant-analytics/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type RankRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewRankRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *RankRepository {
	return &RankRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

// Insert stores a rank snapshot, assigning an id when the snapshot has none.
func (r *RankRepository) Insert(ctx context.Context, rank *domain.PlayerRank) error {
	if rank.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate nanoid: %w", err)
		}
		rank.ID = id
	}

	now := time.Now()
	if rank.FetchedAt.IsZero() {
		rank.FetchedAt = now
	}
	if rank.CreatedAt.IsZero() {
		rank.CreatedAt = now
	}

	err := r.queries.InsertPlayerRank(ctx, db.InsertPlayerRankParams{
		ID:        rank.ID,
		Puuid:     rank.Puuid,
		Tier:      int64(rank.Tier),
		TierName:  rank.TierName,
		Rr:        int64(rank.RR),
		Elo:       int64(rank.Elo),
		Source:    rank.Source,
		FetchedAt: toMillis(rank.FetchedAt),
		CreatedAt: toMillis(rank.CreatedAt),
	})
	if err != nil {
		return fmt.Errorf("failed to insert rank: %w", err)
	}
	return nil
}

// Latest returns the most recent snapshot, or ErrNotFound.
func (r *RankRepository) Latest(ctx context.Context, puuid string) (*domain.PlayerRank, error) {
	history, err := r.History(ctx, puuid, 1)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, ErrNotFound
	}
	return &history[0], nil
}

// History returns up to limit snapshots, newest first.
func (r *RankRepository) History(ctx context.Context, puuid string, limit int) ([]domain.PlayerRank, error) {
	records, err := r.queries.ListPlayerRanks(ctx, db.ListPlayerRanksParams{
		Puuid: puuid,
		Limit: int64(limit),
	})
	if err != nil {
		return nil, err
	}

	result := make([]domain.PlayerRank, len(records))
	for i, rec := range records {
		result[i] = domain.PlayerRank{
			ID:        rec.ID,
			Puuid:     rec.Puuid,
			Tier:      int(rec.Tier),
			TierName:  rec.TierName,
			RR:        int(rec.Rr),
			Elo:       int(rec.Elo),
			Source:    rec.Source,
			FetchedAt: fromMillis(rec.FetchedAt),
			CreatedAt: fromMillis(rec.CreatedAt),
		}
	}
	return result, nil
}

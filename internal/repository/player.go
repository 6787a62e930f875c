package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"valorant-analytics/internal/constants"
	"valorant-analytics/internal/db"
	"valorant-analytics/internal/domain"

	"github.com/rs/zerolog"
)

type PlayerRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewPlayerRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *PlayerRepository {
	return &PlayerRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

func (r *PlayerRepository) Get(ctx context.Context, puuid string) (*domain.Player, error) {
	player, err := r.queries.GetPlayerByPuuid(ctx, puuid)
	if err != nil {
		return nil, notFound(err)
	}
	p := playerFromRow(player)
	return &p, nil
}

// GetByName looks a player up by Riot id, ignoring case.
func (r *PlayerRepository) GetByName(ctx context.Context, name, tag string) (*domain.Player, error) {
	player, err := r.queries.GetPlayerByNameTag(ctx, db.GetPlayerByNameTagParams{
		Name: name,
		Tag:  tag,
	})
	if err != nil {
		return nil, notFound(err)
	}
	p := playerFromRow(player)
	return &p, nil
}

func (r *PlayerRepository) Upsert(ctx context.Context, player *domain.Player) error {
	now := time.Now()
	createdAt := player.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	return r.queries.UpsertPlayer(ctx, db.UpsertPlayerParams{
		Puuid:        player.Puuid,
		Name:         player.Name,
		Tag:          player.Tag,
		Region:       player.Region,
		AccountLevel: int64(player.AccountLevel),
		Card:         player.Card,
		Title:        player.Title,
		LastFetchAt:  toMillis(player.LastFetchAt),
		CreatedAt:    toMillis(createdAt),
		UpdatedAt:    toMillis(now),
	})
}

// ListByPuuids returns the known players among puuids keyed by puuid.
func (r *PlayerRepository) ListByPuuids(ctx context.Context, puuids []string) (map[string]domain.Player, error) {
	result := make(map[string]domain.Player, len(puuids))
	for _, part := range chunk(puuids, constants.DBBatchSize) {
		rows, err := r.queries.ListPlayersByPuuids(ctx, part)
		if err != nil {
			return nil, fmt.Errorf("failed to list players: %w", err)
		}
		for _, row := range rows {
			result[row.Puuid] = playerFromRow(row)
		}
	}
	return result, nil
}

func (r *PlayerRepository) ShouldRefresh(ctx context.Context, puuid string, ttl time.Duration) (bool, error) {
	lastFetchAt, err := r.queries.GetPlayerLastFetchAt(ctx, puuid)
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Debug().Str("puuid", puuid).Msg("player not found, should refresh")
		return true, nil
	}
	if err != nil {
		r.logger.Error().Err(err).Str("puuid", puuid).Msg("failed to get player")
		return false, err
	}

	timeSince := time.Since(fromMillis(lastFetchAt))
	shouldRefresh := lastFetchAt == 0 || timeSince > ttl
	r.logger.Debug().
		Str("puuid", puuid).
		Dur("time_since", timeSince).
		Dur("ttl", ttl).
		Bool("should_refresh", shouldRefresh).
		Msg("checking if player should refresh")

	return shouldRefresh, nil
}

func (r *PlayerRepository) SetLastFetchAt(ctx context.Context, puuid string, lastFetchAt time.Time) error {
	err := r.queries.UpdatePlayerLastFetchAt(ctx, db.UpdatePlayerLastFetchAtParams{
		LastFetchAt: toMillis(lastFetchAt),
		UpdatedAt:   toMillis(time.Now()),
		Puuid:       puuid,
	})
	if err != nil {
		r.logger.Error().Err(err).Str("puuid", puuid).Msg("failed to set last fetch at")
		return err
	}
	return nil
}

func playerFromRow(p db.Player) domain.Player {
	return domain.Player{
		Puuid:        p.Puuid,
		Name:         p.Name,
		Tag:          p.Tag,
		Region:       p.Region,
		AccountLevel: int(p.AccountLevel),
		Card:         p.Card,
		Title:        p.Title,
		LastFetchAt:  fromMillis(p.LastFetchAt),
		CreatedAt:    fromMillis(p.CreatedAt),
		UpdatedAt:    fromMillis(p.UpdatedAt),
	}
}

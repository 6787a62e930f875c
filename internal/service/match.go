package service

import (
	"context"
	"fmt"
	"valorant-analytics/internal/api"
	"valorant-analytics/internal/constants"
	"valorant-analytics/internal/domain"
	"valorant-analytics/internal/mapper"
	"valorant-analytics/internal/repository"

	"github.com/rs/zerolog"
)

type MatchService struct {
	hdev      *api.HDevClient
	mapper    *mapper.Mapper
	matchRepo *repository.MatchRepository
	logger    zerolog.Logger
}

func NewMatchService(hdev *api.HDevClient, m *mapper.Mapper, matchRepo *repository.MatchRepository, logger zerolog.Logger) *MatchService {
	return &MatchService{
		hdev:      hdev,
		mapper:    m,
		matchRepo: matchRepo,
		logger:    logger,
	}
}

// Ingest fetches a match upstream, falling back to the archive endpoints when
// the live ones no longer know it, and stores it with its performances.
func (s *MatchService) Ingest(ctx context.Context, matchID string) (*domain.MatchRecord, error) {
	details, err := s.hdev.FetchMatchDetails(ctx, matchID)
	if api.IsNotFound(err) {
		s.logger.Debug().Str("match_id", matchID).Msg("match not live, trying archive")
		details, err = s.hdev.FetchStoredMatchDetails(ctx, matchID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch match %s: %w", matchID, err)
	}

	record := s.mapper.ToMatchRecord(details)
	if err := s.matchRepo.Save(ctx, &record); err != nil {
		s.logger.Error().Err(err).Str("match_id", matchID).Msg("failed to save match")
		return nil, err
	}

	s.logger.Info().
		Str("match_id", record.MatchID).
		Str("source", record.Source).
		Int("performances", len(record.Performances)).
		Msg("match ingested")
	return &record, nil
}

func (s *MatchService) Get(ctx context.Context, matchID string) (*domain.MatchRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.matchRepo.Get(ctx, matchID)
}

func (s *MatchService) Exists(ctx context.Context, matchID string) (bool, error) {
	return s.matchRepo.Exists(ctx, matchID)
}

// Scoreboard ranks the players of a stored match by KDA.
func (s *MatchService) Scoreboard(ctx context.Context, matchID string) ([]domain.KdaRankingEntry, error) {
	record, err := s.Get(ctx, matchID)
	if err != nil {
		return nil, err
	}
	return s.mapper.RankByKda(record.Performances, nil, nil), nil
}

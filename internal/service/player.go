package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"
	"valorant-analytics/internal/api"
	"valorant-analytics/internal/constants"
	"valorant-analytics/internal/domain"
	"valorant-analytics/internal/repository"

	"github.com/rs/zerolog"
)

type PlayerService struct {
	hdev   *api.HDevClient
	repo   *repository.PlayerRepository
	ranks  *repository.RankRepository
	logger zerolog.Logger
}

func NewPlayerService(hdev *api.HDevClient, repo *repository.PlayerRepository, ranks *repository.RankRepository, logger zerolog.Logger) *PlayerService {
	return &PlayerService{hdev: hdev, repo: repo, ranks: ranks, logger: logger}
}

// PlayerProfile is a player with their latest known rank, if any.
type PlayerProfile struct {
	Player domain.Player
	Rank   *domain.PlayerRank
}

// Lookup resolves a Riot id. Stored players younger than PlayerRefreshTTL are
// served from the store unless refresh is set; otherwise the account is
// fetched upstream and a rank snapshot is taken on a best-effort basis.
func (s *PlayerService) Lookup(ctx context.Context, name, tag string, refresh bool) (*PlayerProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	name, err := url.QueryUnescape(name)
	if err != nil {
		return nil, fmt.Errorf("failed to unescape name: %w", err)
	}
	tag, err = url.QueryUnescape(tag)
	if err != nil {
		return nil, fmt.Errorf("failed to unescape tag: %w", err)
	}

	s.logger.Info().Str("name", name).Str("tag", tag).Bool("refresh", refresh).Msg("looking up player")

	stored, err := s.repo.GetByName(ctx, name, tag)
	switch {
	case err == nil:
		shouldRefresh, err := s.repo.ShouldRefresh(ctx, stored.Puuid, constants.PlayerRefreshTTL)
		if err != nil {
			return nil, err
		}
		if !shouldRefresh && !refresh {
			s.logger.Debug().Str("puuid", stored.Puuid).Msg("returning stored player")
			return s.profile(ctx, *stored), nil
		}
	case errors.Is(err, repository.ErrNotFound):
		s.logger.Debug().Str("name", name).Str("tag", tag).Msg("player not stored, fetching from API")
	default:
		return nil, err
	}

	apiCtx, apiCancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer apiCancel()

	account, err := s.hdev.FetchAccount(apiCtx, name, tag)
	if err != nil {
		s.logger.Warn().Err(err).Str("name", name).Str("tag", tag).Msg("failed to fetch account")
		return nil, fmt.Errorf("failed to fetch account %s#%s: %w", name, tag, err)
	}

	player := domain.Player{
		Puuid:        account.Puuid,
		Name:         account.Name,
		Tag:          account.Tag,
		Region:       account.Region,
		AccountLevel: account.AccountLevel,
		Card:         account.Card,
		Title:        account.Title,
		LastFetchAt:  time.Now(),
	}
	if stored != nil && stored.Puuid == player.Puuid {
		player.CreatedAt = stored.CreatedAt
	}

	if err := s.repo.Upsert(ctx, &player); err != nil {
		s.logger.Error().Err(err).Str("puuid", player.Puuid).Msg("failed to upsert player")
		return nil, fmt.Errorf("failed to upsert player: %w", err)
	}

	s.snapshotRank(ctx, player)

	s.logger.Info().Str("puuid", player.Puuid).Msg("player fetched successfully")
	return s.profile(ctx, player), nil
}

func (s *PlayerService) GetByPuuid(ctx context.Context, puuid string) (*PlayerProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	player, err := s.repo.Get(ctx, puuid)
	if err != nil {
		return nil, err
	}
	return s.profile(ctx, *player), nil
}

func (s *PlayerService) snapshotRank(ctx context.Context, player domain.Player) {
	if player.Region == "" {
		return
	}

	rankCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	rank, err := s.hdev.FetchRank(rankCtx, player.Region, player.Puuid)
	if err != nil {
		s.logger.Warn().Err(err).Str("puuid", player.Puuid).Msg("failed to fetch rank, skipping snapshot")
		return
	}

	err = s.ranks.Insert(ctx, &domain.PlayerRank{
		Puuid:    player.Puuid,
		Tier:     rank.Tier,
		TierName: rank.TierName,
		RR:       rank.RR,
		Elo:      rank.Elo,
		Source:   "mmr",
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("puuid", player.Puuid).Msg("failed to store rank snapshot")
	}
}

func (s *PlayerService) profile(ctx context.Context, player domain.Player) *PlayerProfile {
	p := &PlayerProfile{Player: player}
	rank, err := s.ranks.Latest(ctx, player.Puuid)
	if err == nil {
		p.Rank = rank
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn().Err(err).Str("puuid", player.Puuid).Msg("failed to load latest rank")
	}
	return p
}

package service

import (
	"context"
	"fmt"
	"sync"
	"time"
	"valorant-analytics/internal/api"
	"valorant-analytics/internal/config"
	"valorant-analytics/internal/constants"
	"valorant-analytics/internal/domain"
	"valorant-analytics/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type TrackingService struct {
	hdev     *api.HDevClient
	players  *PlayerService
	matches  *MatchService
	tracking *repository.TrackingRepository
	logger   zerolog.Logger

	backfillSize     int
	backfillDeadline time.Duration
}

func NewTrackingService(
	hdev *api.HDevClient,
	players *PlayerService,
	matches *MatchService,
	tracking *repository.TrackingRepository,
	cfg *config.Config,
	logger zerolog.Logger,
) *TrackingService {
	size := cfg.BackfillSize
	if size <= 0 {
		size = constants.DefaultMatchHistorySize
	}
	deadline := cfg.BackfillDeadline
	if deadline <= 0 {
		deadline = 30 * time.Second
	}
	return &TrackingService{
		hdev:             hdev,
		players:          players,
		matches:          matches,
		tracking:         tracking,
		logger:           logger,
		backfillSize:     size,
		backfillDeadline: deadline,
	}
}

// BackfillReport accounts for every match id listed during a backfill.
// Abandoned matches were still in progress at the deadline; they were
// cancelled and will be picked up by a later backfill.
type BackfillReport struct {
	Requested int           `json:"requested"`
	Skipped   int           `json:"skipped"`
	Ingested  int           `json:"ingested"`
	Failed    int           `json:"failed"`
	Abandoned int           `json:"abandoned"`
	Duration  time.Duration `json:"duration"`
}

type TrackResult struct {
	Player   domain.TrackedPlayer
	Backfill BackfillReport
}

// Track starts tracking a player and backfills their recent history.
func (s *TrackingService) Track(ctx context.Context, name, tag, modeFilter string) (*TrackResult, error) {
	profile, err := s.players.Lookup(ctx, name, tag, false)
	if err != nil {
		return nil, err
	}

	tp := domain.TrackedPlayer{
		Puuid:      profile.Player.Puuid,
		Name:       profile.Player.Name,
		Tag:        profile.Player.Tag,
		Region:     profile.Player.Region,
		ModeFilter: modeFilter,
	}
	if existing, err := s.tracking.Get(ctx, tp.Puuid); err == nil {
		tp.CreatedAt = existing.CreatedAt
		tp.LastBackfillAt = existing.LastBackfillAt
	}
	if err := s.tracking.Upsert(ctx, &tp); err != nil {
		return nil, fmt.Errorf("failed to save tracked player: %w", err)
	}

	report, err := s.Backfill(ctx, tp)
	if err != nil {
		return nil, err
	}

	tp.LastBackfillAt = time.Now()
	if err := s.tracking.MarkBackfilled(ctx, tp.Puuid, tp.LastBackfillAt); err != nil {
		s.logger.Warn().Err(err).Str("puuid", tp.Puuid).Msg("failed to record backfill time")
	}

	return &TrackResult{Player: tp, Backfill: report}, nil
}

func (s *TrackingService) Untrack(ctx context.Context, puuid string) error {
	return s.tracking.Delete(ctx, puuid)
}

func (s *TrackingService) List(ctx context.Context) ([]domain.TrackedPlayer, error) {
	return s.tracking.List(ctx)
}

// Backfill lists up to backfillSize recent matches and ingests the ones not
// yet stored, one errgroup task per match. It waits for all of them or for the
// deadline, whichever comes first, and cancels whatever is still running.
func (s *TrackingService) Backfill(ctx context.Context, tp domain.TrackedPlayer) (BackfillReport, error) {
	start := time.Now()
	logger := s.logger.With().Str("puuid", tp.Puuid).Logger()

	deadlineCtx, cancel := context.WithTimeout(ctx, s.backfillDeadline)
	defer cancel()

	history, err := s.hdev.FetchMatchHistory(deadlineCtx, tp.Region, tp.Puuid, s.backfillSize, tp.ModeFilter)
	if err != nil {
		return BackfillReport{}, fmt.Errorf("failed to list match history: %w", err)
	}

	report := BackfillReport{Requested: len(history)}
	var pending []string
	for _, m := range history {
		exists, err := s.matches.Exists(deadlineCtx, m.MatchID)
		if err == nil && exists {
			report.Skipped++
			continue
		}
		pending = append(pending, m.MatchID)
	}

	var (
		mu     sync.Mutex
		closed bool
	)
	g := new(errgroup.Group)
	for _, matchID := range pending {
		g.Go(func() error {
			_, err := s.matches.Ingest(deadlineCtx, matchID)

			mu.Lock()
			defer mu.Unlock()
			if closed {
				return nil
			}
			if err != nil {
				if deadlineCtx.Err() != nil {
					// cut off by the deadline, counted as abandoned
					return nil
				}
				report.Failed++
				logger.Warn().Err(err).Str("match_id", matchID).Msg("backfill ingestion failed")
				return nil
			}
			report.Ingested++
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		g.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-deadlineCtx.Done():
		logger.Warn().Dur("deadline", s.backfillDeadline).Msg("backfill deadline reached, abandoning remaining matches")
	}
	cancel()

	mu.Lock()
	closed = true
	report.Abandoned = len(pending) - report.Ingested - report.Failed
	report.Duration = time.Since(start)
	result := report
	mu.Unlock()

	logger.Info().
		Int("requested", result.Requested).
		Int("skipped", result.Skipped).
		Int("ingested", result.Ingested).
		Int("failed", result.Failed).
		Int("abandoned", result.Abandoned).
		Dur("duration", result.Duration).
		Msg("backfill finished")

	return result, nil
}

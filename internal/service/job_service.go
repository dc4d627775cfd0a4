package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"nexuios/internal/repository"
)

// JobService runs the periodic maintenance the API never triggers itself:
// re-enabling rooms once their blocking reservations are in the past, and
// pruning reservations beyond the retention window.
type JobService struct {
	Repo          *repository.JobRepository
	RetentionDays int
	log           zerolog.Logger
	now           func() time.Time
}

func NewJobService(repo *repository.JobRepository, retentionDays int, log zerolog.Logger) *JobService {
	return &JobService{Repo: repo, RetentionDays: retentionDays, log: log, now: time.Now}
}

// ReleaseIdleRooms restores availability for rooms whose reservations are all
// in the past. Same simplistic release policy as cancellation: the flag is
// flipped, seat occupancy is not recomputed.
func (s *JobService) ReleaseIdleRooms(ctx context.Context) error {
	ids, err := s.Repo.GetBlockedRoomIDsWithoutUpcoming(ctx)
	if err != nil {
		return fmt.Errorf("cron job: failed to get blocked rooms: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	released, err := s.Repo.ReleaseRooms(ctx, ids)
	if err != nil {
		return fmt.Errorf("cron job: failed to release rooms: %w", err)
	}
	s.log.Info().Int64("released", released).Ints("room_ids", ids).Msg("cron: idle rooms released")
	return nil
}

// PruneOldReservations deletes reservations older than the retention window.
func (s *JobService) PruneOldReservations(ctx context.Context) error {
	cutoff := s.now().AddDate(0, 0, -s.RetentionDays).Format("2006-01-02")
	deleted, err := s.Repo.DeleteReservationsBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("cron job: failed to prune reservations: %w", err)
	}
	if deleted > 0 {
		s.log.Info().Int64("deleted", deleted).Str("cutoff", cutoff).Msg("cron: old reservations pruned")
	}
	return nil
}

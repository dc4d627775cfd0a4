package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

type JobRepository struct {
	q querier
}

func NewJobRepository(database *sql.DB) *JobRepository {
	return &JobRepository{q: database}
}

// GetBlockedRoomIDsWithoutUpcoming returns ids of rooms flagged unavailable
// that no longer have any reservation dated today or later.
func (r *JobRepository) GetBlockedRoomIDsWithoutUpcoming(ctx context.Context) ([]int, error) {
	query := `
		SELECT id FROM rooms
		WHERE availability = FALSE
		  AND NOT EXISTS (
			SELECT 1 FROM reservations res
			WHERE res.room_id = rooms.id AND res.date >= CURRENT_DATE
		  )`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying blocked rooms: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning room ID: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ReleaseRooms flags the given rooms as available again.
func (r *JobRepository) ReleaseRooms(ctx context.Context, ids []int) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result, err := r.q.ExecContext(ctx,
		`UPDATE rooms SET availability = TRUE, updated_at = now() WHERE id = ANY($1)`,
		pq.Array(ids),
	)
	if err != nil {
		return 0, fmt.Errorf("error releasing rooms: %w", err)
	}
	return result.RowsAffected()
}

// DeleteReservationsBefore prunes reservations dated before the cutoff.
func (r *JobRepository) DeleteReservationsBefore(ctx context.Context, date string) (int64, error) {
	result, err := r.q.ExecContext(ctx, `DELETE FROM reservations WHERE date < $1::date`, date)
	if err != nil {
		return 0, fmt.Errorf("error pruning old reservations: %w", err)
	}
	return result.RowsAffected()
}

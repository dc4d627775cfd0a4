package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/lib/pq"

	"nexuios/internal/errs"
)

// lockTimeout bounds how long a booking waits for a room's advisory lock.
const lockTimeout = "3s"

type UnitOfWork struct {
	db *sql.DB
}

func NewUnitOfWork(database *sql.DB) *UnitOfWork {
	return &UnitOfWork{db: database}
}

// InRoomLock runs fn inside a transaction holding an advisory lock keyed by
// (roomID, date). Bookings for the same room and date serialize on the lock,
// which closes the check-then-act window between the overlap query and the
// insert. A lock wait past lockTimeout or a concurrent-write failure surfaces
// as a retryable conflict, never as a capacity rejection.
func (u *UnitOfWork) InRoomLock(ctx context.Context, roomID int, date string, fn func(rooms RoomStore, reservations ReservationStore) error) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting booking transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%s'", lockTimeout)); err != nil {
		return fmt.Errorf("error setting lock timeout: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1, $2)", int32(roomID), dateLockKey(date)); err != nil {
		return asConflict(err, "error acquiring room lock")
	}

	if err := fn(&RoomRepository{q: tx}, &ReservationRepository{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return asConflict(err, "error committing booking")
	}
	return nil
}

func dateLockKey(date string) int32 {
	h := fnv.New32a()
	h.Write([]byte(date))
	return int32(h.Sum32())
}

// asConflict maps lock-wait and serialization failures onto the retryable
// conflict kind; anything else stays a plain wrapped error.
func asConflict(err error, msg string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "55P03", "40001", "40P01": // lock timeout, serialization failure, deadlock
			return errs.Conflict("The booking could not be completed due to concurrent activity.")
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}

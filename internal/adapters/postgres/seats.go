package postgres

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cineticket/reservation-core/internal/domain"
)

const seatColumns = `id, session_id, row_letter, seat_number, status, current_reservation_id, reserved_until, is_blocked, created_at, updated_at`

func scanSeat(row pgx.Row) (*domain.Seat, error) {
	var seat domain.Seat
	err := row.Scan(
		&seat.ID,
		&seat.SessionID,
		&seat.RowLetter,
		&seat.SeatNumber,
		&seat.Status,
		&seat.CurrentReservationID,
		&seat.ReservedUntil,
		&seat.IsBlocked,
		&seat.CreatedAt,
		&seat.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &seat, nil
}

func (r *Repository) GetSeat(ctx context.Context, seatID uuid.UUID) (*domain.Seat, error) {
	return scanSeat(r.pool.QueryRow(ctx, `
		SELECT `+seatColumns+` FROM seats WHERE id = $1
	`, seatID))
}

// getSeatForUpdate takes the exclusive row lock that serializes all
// writers of a seat.
func (r *Repository) getSeatForUpdate(ctx context.Context, tx pgx.Tx, seatID uuid.UUID) (*domain.Seat, error) {
	return scanSeat(tx.QueryRow(ctx, `
		SELECT `+seatColumns+` FROM seats WHERE id = $1 FOR UPDATE
	`, seatID))
}

func (r *Repository) SeatsBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.Seat, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+seatColumns+` FROM seats
		WHERE session_id = $1
		ORDER BY row_letter ASC, seat_number ASC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seats []domain.Seat
	for rows.Next() {
		seat, err := scanSeat(rows)
		if err != nil {
			return nil, err
		}
		seats = append(seats, *seat)
	}
	return seats, rows.Err()
}

// ReleaseStaleSeat flips a reserved seat whose hold deadline has passed
// back to available. The guard clause makes the write race-safe without
// a lock: it only ever moves a row out of the stale state, so a
// concurrent sweeper or fresh reservation simply wins and the update
// becomes a no-op.
func (r *Repository) ReleaseStaleSeat(ctx context.Context, seatID uuid.UUID, now time.Time) (bool, error) {
	result, err := r.pool.Exec(ctx, `
		UPDATE seats
		SET status = $2, current_reservation_id = NULL, reserved_until = NULL, updated_at = now()
		WHERE id = $1 AND status = $3 AND reserved_until < $4
	`, seatID, domain.SeatAvailable, domain.SeatReserved, now)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

// CreateSeats seeds the full seat grid of a session, one row per seat.
// Seats are never deleted afterwards; they only change status.
func (r *Repository) CreateSeats(ctx context.Context, sessionID uuid.UUID, rowLetters []string, seatsPerRow int) ([]domain.Seat, error) {
	var seats []domain.Seat
	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		for _, letter := range rowLetters {
			for n := 1; n <= seatsPerRow; n++ {
				seat := domain.Seat{
					ID:         uuid.New(),
					SessionID:  sessionID,
					RowLetter:  letter,
					SeatNumber: n,
					Status:     domain.SeatAvailable,
				}
				_, err := tx.Exec(ctx, `
					INSERT INTO seats (id, session_id, row_letter, seat_number, status)
					VALUES ($1, $2, $3, $4, $5)
				`, seat.ID, seat.SessionID, seat.RowLetter, seat.SeatNumber, seat.Status)
				if err != nil {
					return errors.Wrapf(err, "seed seat %s%d", letter, n)
				}
				seats = append(seats, seat)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return seats, nil
}

// SetSeatBlocked toggles the manual maintenance flag. It is never
// cleared automatically by the reservation or sweep paths.
func (r *Repository) SetSeatBlocked(ctx context.Context, seatID uuid.UUID, blocked bool) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE seats SET is_blocked = $2, updated_at = now() WHERE id = $1
	`, seatID, blocked)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

package postgres

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cineticket/reservation-core/internal/domain"
)

const reservationColumns = `id, user_id, session_id, seat_id, status, expires_at, price, payment_id, confirmed_at, cancelled_at, created_at, updated_at`

func scanReservation(row pgx.Row) (*domain.Reservation, error) {
	var res domain.Reservation
	err := row.Scan(
		&res.ID,
		&res.UserID,
		&res.SessionID,
		&res.SeatID,
		&res.Status,
		&res.ExpiresAt,
		&res.Price,
		&res.PaymentID,
		&res.ConfirmedAt,
		&res.CancelledAt,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// ReserveSeat is the reservation transaction: lock the seat row, verify
// it can be claimed at the given instant, insert the pending reservation
// and flip the seat to reserved, all or nothing. The distributed seat
// lock taken by the caller only reduces how many writers reach this
// point; the FOR UPDATE read is what decides the winner.
func (r *Repository) ReserveSeat(ctx context.Context, res domain.Reservation, now time.Time) (*domain.Reservation, error) {
	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		seat, err := r.getSeatForUpdate(ctx, tx, res.SeatID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return errors.Wrapf(domain.ErrNotFound, "seat %s", res.SeatID)
			}
			return err
		}

		if seat.IsBlocked {
			return errors.Wrapf(domain.ErrSeatBlocked, "seat %s", seat.Identifier())
		}
		if !seat.IsAvailable(now) {
			return errors.Wrapf(domain.ErrConflict, "seat %s is not available", seat.Identifier())
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO reservations (id, user_id, session_id, seat_id, status, expires_at, price)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, res.ID, res.UserID, res.SessionID, res.SeatID, res.Status, res.ExpiresAt, res.Price)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE seats
			SET status = $2, current_reservation_id = $3, reserved_until = $4, updated_at = now()
			WHERE id = $1
		`, seat.ID, domain.SeatReserved, res.ID, res.ExpiresAt)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// ConfirmReservation converts a pending reservation into a sale. Only
// the reservation row is locked: the sweeper and this transaction are
// the only writers of a pending reservation's seat and both take this
// lock first, so the seat needs no second lock.
func (r *Repository) ConfirmReservation(ctx context.Context, reservationID uuid.UUID, method domain.PaymentMethod, paymentID string, now time.Time) (*domain.Sale, error) {
	var sale *domain.Sale
	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		res, err := scanReservation(tx.QueryRow(ctx, `
			SELECT `+reservationColumns+` FROM reservations WHERE id = $1 FOR UPDATE
		`, reservationID))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return errors.Wrapf(domain.ErrNotFound, "reservation %s", reservationID)
			}
			return err
		}

		if !res.CanBeConfirmed(now) {
			return errors.Wrapf(domain.ErrNotConfirmable, "reservation %s has status %s", res.ID, res.Status)
		}

		seat, err := scanSeat(tx.QueryRow(ctx, `
			SELECT `+seatColumns+` FROM seats WHERE id = $1
		`, res.SeatID))
		if err != nil {
			return errors.Wrapf(err, "seat of reservation %s", res.ID)
		}

		_, err = tx.Exec(ctx, `
			UPDATE reservations
			SET status = $2, confirmed_at = $3, payment_id = $4, updated_at = now()
			WHERE id = $1
		`, res.ID, domain.ReservationConfirmed, now, paymentID)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE seats
			SET status = $2, current_reservation_id = NULL, reserved_until = NULL, updated_at = now()
			WHERE id = $1
		`, seat.ID, domain.SeatSold)
		if err != nil {
			return err
		}

		sale = &domain.Sale{
			ID:             uuid.New(),
			UserID:         res.UserID,
			SessionID:      res.SessionID,
			ReservationID:  res.ID,
			SeatID:         seat.ID,
			SeatIdentifier: seat.Identifier(),
			Price:          res.Price,
			PaymentMethod:  method,
			PaymentStatus:  domain.PaymentApproved,
			PaymentID:      paymentID,
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO sales (id, user_id, session_id, reservation_id, seat_id, seat_identifier, price, payment_method, payment_status, payment_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, sale.ID, sale.UserID, sale.SessionID, sale.ReservationID, sale.SeatID, sale.SeatIdentifier, sale.Price, sale.PaymentMethod, sale.PaymentStatus, sale.PaymentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// ListExpiredPending returns up to limit overdue pending reservations.
// The bound caps lock and memory pressure under load; anything beyond it
// is picked up by the next tick.
func (r *Repository) ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id FROM reservations
		WHERE status = $1 AND expires_at < $2
		ORDER BY expires_at ASC
		LIMIT $3
	`, domain.ReservationPending, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ExpireReservation re-reads the reservation under its row lock and only
// then expires it. The re-check is mandatory: a confirmation may have
// committed between the sweep's scan and this transaction, and a
// confirmed reservation must never be flipped back.
func (r *Repository) ExpireReservation(ctx context.Context, reservationID uuid.UUID, now time.Time) (uuid.UUID, bool, error) {
	var seatID uuid.UUID
	expired := false

	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		res, err := scanReservation(tx.QueryRow(ctx, `
			SELECT `+reservationColumns+` FROM reservations WHERE id = $1 FOR UPDATE
		`, reservationID))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil
			}
			return err
		}
		if res.Status != domain.ReservationPending {
			// A confirmation won the race; leave everything alone.
			return nil
		}

		_, err = tx.Exec(ctx, `
			UPDATE reservations SET status = $2, updated_at = now() WHERE id = $1
		`, res.ID, domain.ReservationExpired)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE seats
			SET status = $2, current_reservation_id = NULL, reserved_until = NULL, updated_at = now()
			WHERE id = $1
		`, res.SeatID, domain.SeatAvailable)
		if err != nil {
			return err
		}

		seatID = res.SeatID
		expired = true
		return nil
	})
	if err != nil {
		return uuid.Nil, false, err
	}
	return seatID, expired, nil
}

// DeleteTerminalBefore removes expired and cancelled reservations older
// than the retention cutoff. Housekeeping only.
func (r *Repository) DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM reservations
		WHERE status IN ($1, $2) AND created_at < $3
	`, domain.ReservationExpired, domain.ReservationCancelled, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

func (r *Repository) CountByStatus(ctx context.Context, status domain.ReservationStatus) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM reservations WHERE status = $1
	`, status).Scan(&count)
	return count, err
}

func (r *Repository) GetReservation(ctx context.Context, reservationID uuid.UUID) (*domain.Reservation, error) {
	return scanReservation(r.pool.QueryRow(ctx, `
		SELECT `+reservationColumns+` FROM reservations WHERE id = $1
	`, reservationID))
}

func (r *Repository) ListUserReservations(ctx context.Context, userID uuid.UUID) ([]domain.Reservation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+reservationColumns+` FROM reservations
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reservations []domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, *res)
	}
	return reservations, rows.Err()
}

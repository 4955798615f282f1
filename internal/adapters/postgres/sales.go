package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cineticket/reservation-core/internal/domain"
)

const saleColumns = `id, user_id, session_id, reservation_id, seat_id, seat_identifier, price, payment_method, payment_status, payment_id, created_at`

func scanSale(row pgx.Row) (*domain.Sale, error) {
	var sale domain.Sale
	err := row.Scan(
		&sale.ID,
		&sale.UserID,
		&sale.SessionID,
		&sale.ReservationID,
		&sale.SeatID,
		&sale.SeatIdentifier,
		&sale.Price,
		&sale.PaymentMethod,
		&sale.PaymentStatus,
		&sale.PaymentID,
		&sale.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *Repository) GetSale(ctx context.Context, saleID uuid.UUID) (*domain.Sale, error) {
	return scanSale(r.pool.QueryRow(ctx, `
		SELECT `+saleColumns+` FROM sales WHERE id = $1
	`, saleID))
}

func (r *Repository) ListSalesByReservation(ctx context.Context, reservationID uuid.UUID) ([]domain.Sale, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+saleColumns+` FROM sales WHERE reservation_id = $1
	`, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []domain.Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, *sale)
	}
	return sales, rows.Err()
}

func (r *Repository) ListUserSales(ctx context.Context, userID uuid.UUID) ([]domain.Sale, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+saleColumns+` FROM sales
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []domain.Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, *sale)
	}
	return sales, rows.Err()
}

package reservation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cineticket/reservation-core/internal/domain"
	"github.com/cineticket/reservation-core/internal/events"
)

// Store is the transactional seat/reservation/sale store. Implementations
// must run each method as a single all-or-nothing transaction and take
// exclusive row locks as documented on the postgres adapter.
type Store interface {
	ReserveSeat(ctx context.Context, res domain.Reservation, now time.Time) (*domain.Reservation, error)
	ConfirmReservation(ctx context.Context, reservationID uuid.UUID, method domain.PaymentMethod, paymentID string, now time.Time) (*domain.Sale, error)
	SeatsBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.Seat, error)
	ReleaseStaleSeat(ctx context.Context, seatID uuid.UUID, now time.Time) (bool, error)
	GetReservation(ctx context.Context, reservationID uuid.UUID) (*domain.Reservation, error)
	ListUserReservations(ctx context.Context, userID uuid.UUID) ([]domain.Reservation, error)
}

// Locker is the best-effort distributed mutex taken per seat before the
// database transaction. Acquire reports whether this caller owns the
// key; Release deletes it unconditionally.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// Catalog resolves the session a reservation belongs to.
type Catalog interface {
	GetActiveSession(ctx context.Context, id uuid.UUID) (*domain.Session, error)
}

// Emitter is re-exported so fakes in this package's tests and wiring in
// cmd share one name.
type Emitter = events.Emitter

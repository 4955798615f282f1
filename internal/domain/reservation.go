package domain

import (
	"time"

	"github.com/google/uuid"
)

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationExpired   ReservationStatus = "expired"
	ReservationCancelled ReservationStatus = "cancelled"
)

// Reservation is one buyer's claim on one seat for one session. Pending
// is the only non-terminal status; every other status is final.
type Reservation struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	SessionID   uuid.UUID
	SeatID      uuid.UUID
	Status      ReservationStatus
	ExpiresAt   time.Time
	Price       float64
	PaymentID   *string
	ConfirmedAt *time.Time
	CancelledAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewReservation(userID, sessionID, seatID uuid.UUID, price float64, now time.Time, timeout time.Duration) Reservation {
	return Reservation{
		ID:        uuid.New(),
		UserID:    userID,
		SessionID: sessionID,
		SeatID:    seatID,
		Status:    ReservationPending,
		ExpiresAt: now.Add(timeout),
		Price:     price,
	}
}

func (r *Reservation) IsExpired(now time.Time) bool {
	return r.Status == ReservationPending && now.After(r.ExpiresAt)
}

// CanBeConfirmed reports whether a payment confirmation may still land
// on this reservation: it must be pending and its deadline not passed.
func (r *Reservation) CanBeConfirmed(now time.Time) bool {
	return r.Status == ReservationPending && !now.After(r.ExpiresAt)
}

func (r *Reservation) RemainingTime(now time.Time) time.Duration {
	if d := r.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Package events defines the reservation lifecycle notifications pushed
// to downstream consumers. Emission is fire-and-forget from the core's
// point of view: the durable state change has already committed when an
// event goes out, so publish failures are logged and otherwise ignored.
package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TopicReservationCreated = "reservation.created"
	TopicPaymentConfirmed   = "payment.confirmed"
	TopicReservationExpired = "reservation.expired"
)

type ReservationCreated struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	UserID        uuid.UUID `json:"user_id"`
	SessionID     uuid.UUID `json:"session_id"`
	SeatID        uuid.UUID `json:"seat_id"`
	ExpiresAt     time.Time `json:"expires_at"`
}

type PaymentConfirmed struct {
	SaleID uuid.UUID `json:"sale_id"`
	UserID uuid.UUID `json:"user_id"`
	SeatID uuid.UUID `json:"seat_id"`
}

type ReservationExpired struct {
	SeatID uuid.UUID `json:"seat_id"`
}

// Envelope is the wire shape shared by every topic. Key doubles as the
// partition/ordering key on the broker side.
type Envelope struct {
	Key       string      `json:"id"`
	Event     string      `json:"event"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

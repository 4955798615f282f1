package domain

import (
	"time"

	"github.com/google/uuid"
)

type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "credit_card"
	PaymentDebitCard  PaymentMethod = "debit_card"
	PaymentPix        PaymentMethod = "pix"
	PaymentCash       PaymentMethod = "cash"
)

type PaymentStatus string

const (
	PaymentApproved PaymentStatus = "approved"
	PaymentRefunded PaymentStatus = "refunded"
)

// Sale is the immutable record written when a reservation is confirmed.
// SeatIdentifier and Price are copied at confirmation time so the row
// stays historically accurate if the seat or session changes later.
type Sale struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	SessionID      uuid.UUID
	ReservationID  uuid.UUID
	SeatID         uuid.UUID
	SeatIdentifier string
	Price          float64
	PaymentMethod  PaymentMethod
	PaymentStatus  PaymentStatus
	PaymentID      string
	CreatedAt      time.Time
}

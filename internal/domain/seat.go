package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type SeatStatus string

const (
	SeatAvailable SeatStatus = "available"
	SeatReserved  SeatStatus = "reserved"
	SeatSold      SeatStatus = "sold"
)

type Seat struct {
	ID                   uuid.UUID
	SessionID            uuid.UUID
	RowLetter            string
	SeatNumber           int
	Status               SeatStatus
	CurrentReservationID *uuid.UUID
	ReservedUntil        *time.Time
	IsBlocked            bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Identifier is the human-readable seat label, e.g. "A12".
func (s *Seat) Identifier() string {
	return fmt.Sprintf("%s%d", s.RowLetter, s.SeatNumber)
}

// IsAvailable reports whether the seat can be offered at the given
// instant. A reserved seat whose hold deadline has passed counts as
// available even though the row has not been swept yet; blocked and
// sold seats never do.
func (s *Seat) IsAvailable(now time.Time) bool {
	if s.IsBlocked || s.Status == SeatSold {
		return false
	}
	if s.Status == SeatReserved {
		return s.ReservedUntil != nil && now.After(*s.ReservedUntil)
	}
	return s.Status == SeatAvailable
}

// IsStaleReserved reports whether the seat sits in the transient
// reserved-but-overdue state that the sweeper or the availability read
// path may flip back to available.
func (s *Seat) IsStaleReserved(now time.Time) bool {
	return s.Status == SeatReserved && s.ReservedUntil != nil && now.After(*s.ReservedUntil)
}

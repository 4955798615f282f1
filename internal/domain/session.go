package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session is the read-only view of a cinema showing the reservation path
// needs: whether it is on sale and at what price. Session lifecycle is
// managed elsewhere.
type Session struct {
	ID          uuid.UUID
	MovieTitle  string
	Room        string
	StartsAt    time.Time
	TicketPrice float64
	IsActive    bool
}

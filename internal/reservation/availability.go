package reservation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cineticket/reservation-core/internal/domain"
)

type SeatView struct {
	ID            uuid.UUID         `json:"id"`
	RowLetter     string            `json:"row_letter"`
	SeatNumber    int               `json:"seat_number"`
	Identifier    string            `json:"identifier"`
	Status        domain.SeatStatus `json:"status"`
	IsBlocked     bool              `json:"is_blocked"`
	ReservedUntil *time.Time        `json:"reserved_until,omitempty"`
}

type Availability struct {
	SessionID      uuid.UUID  `json:"session_id"`
	TotalSeats     int        `json:"total_seats"`
	AvailableSeats int        `json:"available_seats"`
	ReservedSeats  int        `json:"reserved_seats"`
	SoldSeats      int        `json:"sold_seats"`
	Seats          []SeatView `json:"seats"`
}

// Availability reports the seat map of a session and opportunistically
// resets seats stuck in the reserved-but-overdue state. The reset runs
// under no lock: the guarded update in the store only moves rows out of
// the stale state, so losing a race against the sweeper or a fresh
// reservation is harmless and the next read corrects the picture.
func (s *Service) Availability(ctx context.Context, sessionID uuid.UUID) (*Availability, error) {
	seats, err := s.store.SeatsBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	avail := &Availability{
		SessionID:  sessionID,
		TotalSeats: len(seats),
		Seats:      make([]SeatView, 0, len(seats)),
	}

	for i := range seats {
		seat := &seats[i]

		if seat.IsStaleReserved(now) {
			released, err := s.store.ReleaseStaleSeat(ctx, seat.ID, now)
			if err != nil {
				s.logger.WithError(err).WithField("seat_id", seat.ID).Warn("failed to release stale seat")
			}
			if released {
				s.logger.WithField("seat", seat.Identifier()).Debug("stale reservation released on read")
			}
			// Either way the hold deadline has passed; report it available.
			seat.Status = domain.SeatAvailable
			seat.CurrentReservationID = nil
			seat.ReservedUntil = nil
		}

		switch {
		case seat.IsAvailable(now):
			avail.AvailableSeats++
		case seat.Status == domain.SeatReserved:
			avail.ReservedSeats++
		case seat.Status == domain.SeatSold:
			avail.SoldSeats++
		}

		avail.Seats = append(avail.Seats, SeatView{
			ID:            seat.ID,
			RowLetter:     seat.RowLetter,
			SeatNumber:    seat.SeatNumber,
			Identifier:    seat.Identifier(),
			Status:        seat.Status,
			IsBlocked:     seat.IsBlocked,
			ReservedUntil: seat.ReservedUntil,
		})
	}

	return avail, nil
}

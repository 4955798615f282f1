package reservation

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/cineticket/reservation-core/internal/config"
	"github.com/cineticket/reservation-core/internal/domain"
	"github.com/cineticket/reservation-core/internal/events"
	"github.com/cineticket/reservation-core/internal/observability"
)

const lockMaxAttempts = 3

// Service owns the seat-reservation concurrency core: reserving seats
// under the distributed pre-lock plus row lock, confirming payments, and
// the self-healing availability read.
type Service struct {
	cfg     *config.Config
	store   Store
	lock    Locker
	catalog Catalog
	emitter Emitter
	logger  observability.Logger
	tracer  trace.Tracer

	// now is swappable in tests; expiry math must share one clock.
	now func() time.Time
}

func NewService(cfg *config.Config, store Store, lock Locker, catalog Catalog, emitter Emitter, logger observability.Logger) *Service {
	return &Service{
		cfg:     cfg,
		store:   store,
		lock:    lock,
		catalog: catalog,
		emitter: emitter,
		logger:  logger,
		tracer:  otel.Tracer("reservation"),
		now:     time.Now,
	}
}

type ReserveRequest struct {
	UserID    uuid.UUID
	SessionID uuid.UUID
	SeatIDs   []uuid.UUID
}

// Reserve claims the requested seats one at a time. Each seat runs its
// own lock acquisition and transaction; when a later seat fails, earlier
// reservations in the same call stand, and their seats come back via the
// sweeper once they time out. The ticket price is captured from the
// session once, before any seat is touched.
func (s *Service) Reserve(ctx context.Context, req ReserveRequest) ([]domain.Reservation, error) {
	ctx, span := s.tracer.Start(ctx, "reservation.Reserve")
	defer span.End()

	if req.UserID == uuid.Nil || req.SessionID == uuid.Nil || len(req.SeatIDs) == 0 {
		return nil, errors.Wrap(domain.ErrInvalidInput, "user, session and at least one seat are required")
	}

	session, err := s.catalog.GetActiveSession(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	reservations := make([]domain.Reservation, 0, len(req.SeatIDs))
	for _, seatID := range req.SeatIDs {
		res, err := s.reserveSeatWithLock(ctx, req.UserID, session, seatID)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, *res)
	}
	return reservations, nil
}

func lockKey(seatID uuid.UUID) string {
	return "seat:lock:" + seatID.String()
}

func (s *Service) reserveSeatWithLock(ctx context.Context, userID uuid.UUID, session *domain.Session, seatID uuid.UUID) (*domain.Reservation, error) {
	key := lockKey(seatID)

	for attempt := 1; attempt <= lockMaxAttempts; attempt++ {
		acquired, err := s.lock.Acquire(ctx, key, s.cfg.SeatLockTTL)
		if err != nil {
			return nil, errors.Wrapf(err, "acquire seat lock %s", key)
		}
		if !acquired {
			observability.SeatLockRetries.Inc()
			s.logger.WithField("seat_id", seatID).WithField("attempt", attempt).Warn("seat lock contended")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
			}
			continue
		}

		res, err := s.reserveSeatLocked(ctx, key, userID, session, seatID)
		if err != nil {
			if errors.Is(err, domain.ErrConflict) {
				observability.ReservationConflicts.Inc()
			}
			return nil, err
		}

		observability.ReservationsCreated.Inc()
		if err := s.emitter.ReservationCreated(ctx, events.ReservationCreated{
			ReservationID: res.ID,
			UserID:        res.UserID,
			SessionID:     res.SessionID,
			SeatID:        res.SeatID,
			ExpiresAt:     res.ExpiresAt,
		}); err != nil {
			observability.EventPublishFailures.WithLabelValues(events.TopicReservationCreated).Inc()
			s.logger.WithError(err).WithField("reservation_id", res.ID).Error("failed to publish reservation.created")
		}
		return res, nil
	}

	return nil, errors.Wrapf(domain.ErrConflict, "seat %s: lock contention, retries exhausted", seatID)
}

// reserveSeatLocked runs the reservation transaction while holding the
// distributed lock and guarantees the lock is released on every exit
// path, including panics inside the transaction.
func (s *Service) reserveSeatLocked(ctx context.Context, key string, userID uuid.UUID, session *domain.Session, seatID uuid.UUID) (*domain.Reservation, error) {
	defer func() {
		if err := s.lock.Release(ctx, key); err != nil {
			s.logger.WithError(err).WithField("lock_key", key).Warn("failed to release seat lock")
		}
	}()

	now := s.now()
	res := domain.NewReservation(userID, session.ID, seatID, session.TicketPrice, now, s.cfg.ReservationTimeout)
	return s.store.ReserveSeat(ctx, res, now)
}

type ConfirmPaymentRequest struct {
	ReservationID uuid.UUID
	PaymentMethod domain.PaymentMethod
	PaymentID     string
}

// ConfirmPayment converts a pending reservation into a sale. No
// distributed lock is taken: the reservation row lock inside the store
// is sufficient because every writer of a pending reservation takes it
// first. Re-confirming a processed reservation is rejected, never
// double-processed.
func (s *Service) ConfirmPayment(ctx context.Context, req ConfirmPaymentRequest) (*domain.Sale, error) {
	ctx, span := s.tracer.Start(ctx, "reservation.ConfirmPayment")
	defer span.End()

	if req.ReservationID == uuid.Nil || req.PaymentMethod == "" || req.PaymentID == "" {
		return nil, errors.Wrap(domain.ErrInvalidInput, "payment data incomplete")
	}

	sale, err := s.store.ConfirmReservation(ctx, req.ReservationID, req.PaymentMethod, req.PaymentID, s.now())
	if err != nil {
		return nil, err
	}

	observability.PaymentsConfirmed.Inc()
	if err := s.emitter.PaymentConfirmed(ctx, events.PaymentConfirmed{
		SaleID: sale.ID,
		UserID: sale.UserID,
		SeatID: sale.SeatID,
	}); err != nil {
		observability.EventPublishFailures.WithLabelValues(events.TopicPaymentConfirmed).Inc()
		s.logger.WithError(err).WithField("sale_id", sale.ID).Error("failed to publish payment.confirmed")
	}
	return sale, nil
}

func (s *Service) GetReservation(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	return s.store.GetReservation(ctx, id)
}

func (s *Service) ListUserReservations(ctx context.Context, userID uuid.UUID) ([]domain.Reservation, error) {
	return s.store.ListUserReservations(ctx, userID)
}

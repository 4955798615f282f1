// Package sweeper reconciles timed-out pending reservations in the
// background. It is stateless: every tick re-derives its work from the
// store, so restarts and overlapping deployments are safe.
package sweeper

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/cineticket/reservation-core/internal/config"
	"github.com/cineticket/reservation-core/internal/domain"
	"github.com/cineticket/reservation-core/internal/events"
	"github.com/cineticket/reservation-core/internal/observability"
)

// Store is the slice of the repository the sweeper needs.
type Store interface {
	ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
	ExpireReservation(ctx context.Context, reservationID uuid.UUID, now time.Time) (uuid.UUID, bool, error)
	DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error)
	CountByStatus(ctx context.Context, status domain.ReservationStatus) (int64, error)
}

type Sweeper struct {
	cfg     *config.Config
	store   Store
	emitter events.Emitter
	logger  observability.Logger

	now func() time.Time
}

func New(cfg *config.Config, store Store, emitter events.Emitter, logger observability.Logger) *Sweeper {
	return &Sweeper{
		cfg:     cfg,
		store:   store,
		emitter: emitter,
		logger:  logger,
		now:     time.Now,
	}
}

// Run drives the three passes until the context is cancelled: a short
// expiry pass, an hourly retention pass, and a read-only status report.
func (s *Sweeper) Run(ctx context.Context) {
	expiry := time.NewTicker(s.cfg.SweepInterval)
	defer expiry.Stop()
	retention := time.NewTicker(s.cfg.RetentionInterval)
	defer retention.Stop()
	observe := time.NewTicker(s.cfg.ObserveInterval)
	defer observe.Stop()

	s.logger.Info("sweeper started")
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweeper stopped")
			return
		case <-expiry.C:
			s.SweepExpired(ctx)
		case <-retention.C:
			s.PurgeOldReservations(ctx)
		case <-observe.C:
			s.ReportStatusCounts(ctx)
		}
	}
}

// SweepExpired expires up to the configured batch of overdue pending
// reservations. Each reservation runs in its own transaction with a
// re-check under the row lock, so a confirmation that slipped in after
// the scan turns the item into a no-op, and one bad row never stops the
// rest of the batch.
func (s *Sweeper) SweepExpired(ctx context.Context) {
	now := s.now()

	ids, err := s.store.ListExpiredPending(ctx, now, s.cfg.SweepBatchSize)
	if err != nil {
		s.logger.WithError(err).Error("failed to scan expired reservations")
		return
	}
	if len(ids) == 0 {
		return
	}
	s.logger.WithField("count", len(ids)).Info("expiring overdue reservations")

	for _, id := range ids {
		seatID, expired, err := s.store.ExpireReservation(ctx, id, now)
		if err != nil {
			s.logger.WithError(err).WithField("reservation_id", id).Error("failed to expire reservation")
			continue
		}
		if !expired {
			// Confirmed or gone in the meantime.
			continue
		}

		observability.ReservationsExpired.Inc()
		if err := s.emitter.ReservationExpired(ctx, id.String(), events.ReservationExpired{SeatID: seatID}); err != nil {
			observability.EventPublishFailures.WithLabelValues(events.TopicReservationExpired).Inc()
			s.logger.WithError(err).WithField("reservation_id", id).Error("failed to publish reservation.expired")
		}
	}
}

// PurgeOldReservations removes terminal reservations past the retention
// window. Best effort, no correctness implications.
func (s *Sweeper) PurgeOldReservations(ctx context.Context) {
	cutoff := s.now().Add(-s.cfg.RetentionWindow)

	deleted, err := s.store.DeleteTerminalBefore(ctx, cutoff)
	if err != nil {
		s.logger.WithError(err).Error("retention delete failed")
		return
	}
	if deleted > 0 {
		observability.ReservationsPurged.Add(float64(deleted))
		s.logger.WithField("deleted", deleted).Info("old reservations removed")
	}
}

// ReportStatusCounts samples reservation counts per status into the
// monitoring gauges. Read-only.
func (s *Sweeper) ReportStatusCounts(ctx context.Context) {
	statuses := []domain.ReservationStatus{
		domain.ReservationPending,
		domain.ReservationConfirmed,
		domain.ReservationExpired,
		domain.ReservationCancelled,
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, status := range statuses {
		status := status
		g.Go(func() error {
			count, err := s.store.CountByStatus(gctx, status)
			if err != nil {
				return err
			}
			observability.ReservationsByStatus.WithLabelValues(string(status)).Set(float64(count))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.WithError(err).Error("failed to report reservation counts")
	}
}

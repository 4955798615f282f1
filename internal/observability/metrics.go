package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReservationsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "resv_reservations_created_total",
			Help: "Total reservations created",
		},
	)

	ReservationConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "resv_reservation_conflicts_total",
			Help: "Total reservation attempts rejected because the seat was unavailable",
		},
	)

	SeatLockRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "resv_seat_lock_retries_total",
			Help: "Total retries waiting on the distributed seat lock",
		},
	)

	PaymentsConfirmed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "resv_payments_confirmed_total",
			Help: "Total reservations converted into sales",
		},
	)

	ReservationsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "resv_reservations_expired_total",
			Help: "Total reservations expired by the sweeper",
		},
	)

	ReservationsPurged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "resv_reservations_purged_total",
			Help: "Total terminal reservations removed by the retention pass",
		},
	)

	EventPublishFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resv_event_publish_failures_total",
			Help: "Total lifecycle events that could not be published",
		},
		[]string{"event"},
	)

	DBTxDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "resv_db_tx_seconds",
			Help:    "Duration of DB transactions",
			Buckets: prometheus.DefBuckets,
		},
	)

	ReservationsByStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "resv_reservations_by_status",
			Help: "Current reservation count per status, sampled by the sweeper",
		},
		[]string{"status"},
	)
)

package sweeper

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cineticket/reservation-core/internal/config"
	"github.com/cineticket/reservation-core/internal/domain"
	"github.com/cineticket/reservation-core/internal/events"
	"github.com/cineticket/reservation-core/internal/observability"
)

type fakeStore struct {
	mu sync.Mutex

	pendingIDs []uuid.UUID
	scanErr    error

	expireErrs map[uuid.UUID]error
	noops      map[uuid.UUID]bool
	seatOf     map[uuid.UUID]uuid.UUID
	expired    []uuid.UUID

	deleted      int64
	deleteCutoff time.Time

	counted []domain.ReservationStatus
}

func (f *fakeStore) ListExpiredPending(_ context.Context, _ time.Time, limit int) ([]uuid.UUID, error) {
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	if len(f.pendingIDs) > limit {
		return f.pendingIDs[:limit], nil
	}
	return f.pendingIDs, nil
}

func (f *fakeStore) ExpireReservation(_ context.Context, id uuid.UUID, _ time.Time) (uuid.UUID, bool, error) {
	if err := f.expireErrs[id]; err != nil {
		return uuid.Nil, false, err
	}
	if f.noops[id] {
		return uuid.Nil, false, nil
	}
	f.expired = append(f.expired, id)
	return f.seatOf[id], true, nil
}

func (f *fakeStore) DeleteTerminalBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.deleteCutoff = cutoff
	return f.deleted, nil
}

func (f *fakeStore) CountByStatus(_ context.Context, status domain.ReservationStatus) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counted = append(f.counted, status)
	return 7, nil
}

type fakeEmitter struct {
	expired []events.ReservationExpired
	err     error
}

func (f *fakeEmitter) ReservationCreated(_ context.Context, _ events.ReservationCreated) error {
	return f.err
}

func (f *fakeEmitter) PaymentConfirmed(_ context.Context, _ events.PaymentConfirmed) error {
	return f.err
}

func (f *fakeEmitter) ReservationExpired(_ context.Context, _ string, ev events.ReservationExpired) error {
	f.expired = append(f.expired, ev)
	return f.err
}

func testConfig() *config.Config {
	return &config.Config{
		SweepInterval:     10 * time.Second,
		SweepBatchSize:    50,
		RetentionInterval: time.Hour,
		RetentionWindow:   30 * 24 * time.Hour,
		ObserveInterval:   5 * time.Minute,
	}
}

func newTestSweeper(store *fakeStore, emitter *fakeEmitter) *Sweeper {
	sw := New(testConfig(), store, emitter, observability.NewLogger())
	sw.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return sw
}

func TestSweepExpired(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	seatA, seatB := uuid.New(), uuid.New()
	store := &fakeStore{
		pendingIDs: []uuid.UUID{a, b},
		seatOf:     map[uuid.UUID]uuid.UUID{a: seatA, b: seatB},
	}
	emitter := &fakeEmitter{}
	sw := newTestSweeper(store, emitter)

	sw.SweepExpired(context.Background())

	assert.Equal(t, []uuid.UUID{a, b}, store.expired)
	require.Len(t, emitter.expired, 2)
	assert.Equal(t, seatA, emitter.expired[0].SeatID)
	assert.Equal(t, seatB, emitter.expired[1].SeatID)
}

func TestSweepExpired_OneFailureDoesNotStopBatch(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	store := &fakeStore{
		pendingIDs: []uuid.UUID{a, b},
		expireErrs: map[uuid.UUID]error{a: errors.New("deadlock")},
		seatOf:     map[uuid.UUID]uuid.UUID{b: uuid.New()},
	}
	emitter := &fakeEmitter{}
	sw := newTestSweeper(store, emitter)

	sw.SweepExpired(context.Background())

	assert.Equal(t, []uuid.UUID{b}, store.expired, "the failing item is skipped, not the batch")
	assert.Len(t, emitter.expired, 1)
}

func TestSweepExpired_ConfirmedInMeantimeIsNoop(t *testing.T) {
	id := uuid.New()
	store := &fakeStore{
		pendingIDs: []uuid.UUID{id},
		noops:      map[uuid.UUID]bool{id: true},
	}
	emitter := &fakeEmitter{}
	sw := newTestSweeper(store, emitter)

	sw.SweepExpired(context.Background())

	assert.Empty(t, store.expired)
	assert.Empty(t, emitter.expired, "no event for a reservation that was confirmed first")
}

func TestSweepExpired_RespectsBatchSize(t *testing.T) {
	store := &fakeStore{seatOf: map[uuid.UUID]uuid.UUID{}}
	for i := 0; i < 60; i++ {
		id := uuid.New()
		store.pendingIDs = append(store.pendingIDs, id)
		store.seatOf[id] = uuid.New()
	}
	sw := newTestSweeper(store, &fakeEmitter{})

	sw.SweepExpired(context.Background())

	assert.Len(t, store.expired, 50, "the remainder waits for the next tick")
}

func TestSweepExpired_EmitFailureLoggedOnly(t *testing.T) {
	id := uuid.New()
	store := &fakeStore{
		pendingIDs: []uuid.UUID{id},
		seatOf:     map[uuid.UUID]uuid.UUID{id: uuid.New()},
	}
	emitter := &fakeEmitter{err: errors.New("broker down")}
	sw := newTestSweeper(store, emitter)

	sw.SweepExpired(context.Background())

	assert.Equal(t, []uuid.UUID{id}, store.expired, "the expiry committed regardless of the publish failure")
}

func TestPurgeOldReservations(t *testing.T) {
	store := &fakeStore{deleted: 12}
	sw := newTestSweeper(store, &fakeEmitter{})

	sw.PurgeOldReservations(context.Background())

	want := sw.now().Add(-30 * 24 * time.Hour)
	assert.Equal(t, want, store.deleteCutoff)
}

func TestReportStatusCounts(t *testing.T) {
	store := &fakeStore{}
	sw := newTestSweeper(store, &fakeEmitter{})

	sw.ReportStatusCounts(context.Background())

	assert.ElementsMatch(t, []domain.ReservationStatus{
		domain.ReservationPending,
		domain.ReservationConfirmed,
		domain.ReservationExpired,
		domain.ReservationCancelled,
	}, store.counted)
}

func TestRunStopsOnCancel(t *testing.T) {
	sw := newTestSweeper(&fakeStore{}, &fakeEmitter{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sw.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on context cancellation")
	}
}

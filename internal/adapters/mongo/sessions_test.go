package mongo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	adapter "github.com/cineticket/reservation-core/internal/adapters/mongo"
	"github.com/cineticket/reservation-core/internal/domain"
	"github.com/cineticket/reservation-core/internal/observability"
)

func startMongo(t *testing.T) *mongodriver.Database {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "27017")
	require.NoError(t, err)

	client, err := mongodriver.Connect(ctx, options.Client().ApplyURI("mongodb://"+host+":"+port.Port()))
	require.NoError(t, err)
	t.Cleanup(func() { client.Disconnect(ctx) })

	return client.Database("cinema_test")
}

func TestSessionCatalog(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}
	db := startMongo(t)
	catalog := adapter.NewSessionCatalog(db, observability.NewLogger())
	ctx := context.Background()

	activeID := uuid.New()
	inactiveID := uuid.New()
	startsAt := time.Now().Add(2 * time.Hour).UTC().Truncate(time.Millisecond)

	_, err := db.Collection("sessions").InsertMany(ctx, []interface{}{
		adapter.SessionDoc{
			ID:          activeID.String(),
			MovieTitle:  "Blade Runner",
			Room:        "IMAX 1",
			StartsAt:    startsAt,
			TicketPrice: 42.50,
			IsActive:    true,
		},
		adapter.SessionDoc{
			ID:          inactiveID.String(),
			MovieTitle:  "Stalker",
			Room:        "2",
			StartsAt:    startsAt,
			TicketPrice: 30,
			IsActive:    false,
		},
	})
	require.NoError(t, err)

	t.Run("active session is returned with its price", func(t *testing.T) {
		session, err := catalog.GetActiveSession(ctx, activeID)
		require.NoError(t, err)
		assert.Equal(t, activeID, session.ID)
		assert.Equal(t, "Blade Runner", session.MovieTitle)
		assert.Equal(t, 42.50, session.TicketPrice)
		assert.True(t, session.IsActive)
	})

	t.Run("inactive session is not sellable", func(t *testing.T) {
		_, err := catalog.GetActiveSession(ctx, inactiveID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("unknown session is not found", func(t *testing.T) {
		_, err := catalog.GetActiveSession(ctx, uuid.New())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

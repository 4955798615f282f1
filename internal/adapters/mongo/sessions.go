package mongo

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/cineticket/reservation-core/internal/domain"
	"github.com/cineticket/reservation-core/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// SessionCatalog is the read model the reservation path consults before
// touching any seat: it answers whether a session is sellable and at
// what ticket price. Session CRUD lives elsewhere.
type SessionCatalog struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewSessionCatalog(db *mongo.Database, logger observability.Logger) *SessionCatalog {
	return &SessionCatalog{
		coll:   db.Collection("sessions"),
		logger: logger,
	}
}

type SessionDoc struct {
	ID          string    `bson:"_id"`
	MovieTitle  string    `bson:"movie_title"`
	Room        string    `bson:"room"`
	StartsAt    time.Time `bson:"starts_at"`
	TicketPrice float64   `bson:"ticket_price"`
	IsActive    bool      `bson:"is_active"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

// GetActiveSession returns the session only when it exists and is still
// on sale; anything else surfaces as not found.
func (c *SessionCatalog) GetActiveSession(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	var doc SessionDoc
	err := c.coll.FindOne(ctx, bson.M{"_id": id.String(), "is_active": true}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errors.Wrapf(domain.ErrNotFound, "session %s not found or inactive", id)
	}
	if err != nil {
		c.logger.WithError(err).Error("failed to read session")
		return nil, err
	}
	sessionID, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, errors.Wrapf(err, "malformed session id %q", doc.ID)
	}
	return &domain.Session{
		ID:          sessionID,
		MovieTitle:  doc.MovieTitle,
		Room:        doc.Room,
		StartsAt:    doc.StartsAt,
		TicketPrice: doc.TicketPrice,
		IsActive:    doc.IsActive,
	}, nil
}

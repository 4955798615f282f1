package events

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/cineticket/reservation-core/internal/adapters/rabbit"
)

// Emitter publishes lifecycle notifications. Implementations return the
// publish error so callers can log and move on; they must never block
// the committed state change behind delivery.
type Emitter interface {
	ReservationCreated(ctx context.Context, ev ReservationCreated) error
	PaymentConfirmed(ctx context.Context, ev PaymentConfirmed) error
	ReservationExpired(ctx context.Context, reservationID string, ev ReservationExpired) error
}

type RabbitEmitter struct {
	pub *rabbit.Publisher
}

func NewRabbitEmitter(pub *rabbit.Publisher) *RabbitEmitter {
	return &RabbitEmitter{pub: pub}
}

func (e *RabbitEmitter) ReservationCreated(ctx context.Context, ev ReservationCreated) error {
	return e.publish(ctx, TopicReservationCreated, ev.ReservationID.String(), ev)
}

func (e *RabbitEmitter) PaymentConfirmed(ctx context.Context, ev PaymentConfirmed) error {
	return e.publish(ctx, TopicPaymentConfirmed, ev.SaleID.String(), ev)
}

func (e *RabbitEmitter) ReservationExpired(ctx context.Context, reservationID string, ev ReservationExpired) error {
	return e.publish(ctx, TopicReservationExpired, reservationID, ev)
}

func (e *RabbitEmitter) publish(ctx context.Context, topic, key string, data interface{}) error {
	body, err := json.Marshal(Envelope{
		Key:       key,
		Event:     topic,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	msg := amqp.Publishing{
		MessageId:    key,
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	return e.pub.Publish(ctx, topic, msg)
}

package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/booklist-service/internal/queue"
)

// EventPublisher announces catalog changes.
type EventPublisher interface {
	PublishBookUpdated(ctx context.Context, ev queue.BookUpdatedEvent) error
}

// PublisherFunc adapts a function to EventPublisher. It is used when no
// broker is configured and the change is handled in process.
type PublisherFunc func(ctx context.Context, ev queue.BookUpdatedEvent) error

func (f PublisherFunc) PublishBookUpdated(ctx context.Context, ev queue.BookUpdatedEvent) error {
	return f(ctx, ev)
}

// AMQPPublisher publishes BookUpdatedEvent messages to RabbitMQ. Each call
// opens its own connection; errors are logged and returned so the caller
// can ignore them without interrupting the request.
type AMQPPublisher struct {
	URL string
	Log logrus.FieldLogger
}

// NewAMQPPublisher returns a publisher for the broker at url.
func NewAMQPPublisher(url string, log logrus.FieldLogger) *AMQPPublisher {
	return &AMQPPublisher{URL: url, Log: log}
}

// PublishBookUpdated sends ev to the book.updated queue as a persistent
// JSON message.
func (p *AMQPPublisher) PublishBookUpdated(ctx context.Context, ev queue.BookUpdatedEvent) error {
	log := p.Log.WithField("isbn", ev.ISBN)
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		log.WithError(err).Warn("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.WithError(err).Warn("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queue.BookUpdatedQueue, true, false, false, false, nil); err != nil {
		log.WithError(err).Warn("rabbitmq: queue declare failed")
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue.BookUpdatedQueue, false, false, pub); err != nil {
		log.WithError(err).Warn("rabbitmq: publish failed")
		return err
	}
	return nil
}

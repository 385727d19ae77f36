package notifier

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// AMQPPublisher publishes every event as a persistent JSON message on a
// durable queue. It dials per publish so a broker outage never blocks
// startup.
type AMQPPublisher struct {
	url   string
	queue string
	log   *logrus.Logger
}

func NewAMQPPublisher(url, queue string, log *logrus.Logger) *AMQPPublisher {
	return &AMQPPublisher{url: url, queue: queue, log: log}
}

func (p *AMQPPublisher) Notify(ctx context.Context, event Event) error {
	logger := p.log.WithFields(logrus.Fields{"queue": p.queue, "kind": event.Kind})

	conn, err := amqp.Dial(p.url)
	if err != nil {
		logger.WithError(err).Warn("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.WithError(err).Warn("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		logger.WithError(err).Warn("rabbitmq: queue declare failed")
		return err
	}

	pub, err := newPublishing(event)
	if err != nil {
		return err
	}

	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		logger.WithError(err).Warn("rabbitmq: publish failed")
		return err
	}
	return nil
}

func newPublishing(event Event) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Type:         string(event.Kind),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}, nil
}

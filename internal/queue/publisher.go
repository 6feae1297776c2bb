package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Publisher sends enrollment events. Implementations must be safe for
// concurrent use.
type Publisher interface {
	PublishEnrollment(ctx context.Context, ev EnrollmentEvent) error
}

// NopPublisher discards every event. It is used when no broker URL is
// configured.
type NopPublisher struct{}

func (NopPublisher) PublishEnrollment(context.Context, EnrollmentEvent) error { return nil }

// AMQPPublisher dials the broker for each publish. Enrollment traffic is
// low, and a fresh connection avoids managing reconnects in the request path.
type AMQPPublisher struct {
	url    string
	logger zerolog.Logger
}

func NewAMQPPublisher(url string, logger zerolog.Logger) *AMQPPublisher {
	return &AMQPPublisher{url: url, logger: logger.With().Str("component", "publisher").Logger()}
}

// PublishEnrollment publishes ev as a persistent JSON message to
// EnrollmentQueue. Errors are logged and returned; callers treat them as
// non-fatal.
func (p *AMQPPublisher) PublishEnrollment(ctx context.Context, ev EnrollmentEvent) error {
	if err := p.publish(ctx, ev); err != nil {
		p.logger.Warn().Err(err).Uint64("event_id", ev.EventID).Str("action", ev.Action).Msg("publish failed")
		return err
	}
	return nil
}

func (p *AMQPPublisher) publish(ctx context.Context, ev EnrollmentEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := declare(ch); err != nil {
		return err
	}

	return ch.PublishWithContext(ctx,
		"",              // default exchange
		EnrollmentQueue, // routing key = queue name
		false,           // mandatory
		false,           // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}

func declare(ch *amqp.Channel) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(EnrollmentQueue, true, false, false, false, nil)
	if err != nil {
		return q, fmt.Errorf("queue declare: %w", err)
	}
	return q, nil
}

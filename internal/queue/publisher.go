package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/restaurant-pos/internal/logger"
	"github.com/iliyamo/restaurant-pos/internal/model"
)

// DefaultDialTimeout bounds connecting and the AMQP handshake when the
// caller's context carries no earlier deadline.
const DefaultDialTimeout = 3 * time.Second

// Publisher sends kitchen tickets to a durable queue.  A connection is
// opened per ticket.
type Publisher struct {
	url         string
	queue       string
	dialTimeout time.Duration
	log         *slog.Logger
}

func NewPublisher(url, queue string, log *slog.Logger) *Publisher {
	return &Publisher{url: url, queue: queue, dialTimeout: DefaultDialTimeout, log: log}
}

// dialTimeout is the smaller of max and the time left before ctx's
// deadline.  It fails once ctx is done.
func dialTimeout(ctx context.Context, max time.Duration) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if dl, ok := ctx.Deadline(); ok {
		left := time.Until(dl)
		if left <= 0 {
			return 0, context.DeadlineExceeded
		}
		if left < max {
			return left, nil
		}
	}
	return max, nil
}

// dial connects with a deadline covering both TCP connect and handshake.
func (p *Publisher) dial(ctx context.Context) (*amqp.Connection, error) {
	timeout, err := dialTimeout(ctx, p.dialTimeout)
	if err != nil {
		return nil, err
	}
	return amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
}

// PublishTicket publishes t as a persistent JSON message.  Errors are
// logged and returned so the caller can choose to ignore them.
func (p *Publisher) PublishTicket(ctx context.Context, t model.KitchenTicket) error {
	conn, err := p.dial(ctx)
	if err != nil {
		p.log.Error("rabbitmq_dial_failed", logger.Err(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Error("rabbitmq_channel_failed", logger.Err(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	if err := declare(ch, p.queue); err != nil {
		p.log.Error("rabbitmq_queue_declare_failed", slog.String("queue", p.queue), logger.Err(err))
		return err
	}

	body, err := json.Marshal(NewTicketEvent(t))
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    t.TicketID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		pub,
	); err != nil {
		p.log.Error("rabbitmq_publish_failed", slog.String("ticket_id", t.TicketID), logger.Err(err))
		return err
	}
	p.log.Debug("ticket_published", slog.String("ticket_id", t.TicketID), slog.String("queue", p.queue))
	return nil
}

// declare makes sure the durable queue exists.  Idempotent.
func declare(ch *amqp.Channel, queue string) error {
	_, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	return err
}

// Package service holds application services shared by the HTTP server
// and the CLI.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/iliyamo/konbase/internal/queue"
)

// PublishAudit publishes event to the durable queue.AuditQueue as a
// persistent JSON message.  Each call opens and closes its own connection.
func PublishAudit(ctx context.Context, url string, event queue.AuditEvent) error {
	conn, err := amqp.Dial(url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		queue.AuditQueue, // name
		true,             // durable
		false,            // autoDelete
		false,            // exclusive
		false,            // noWait
		nil,              // args
	); err != nil {
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	// default exchange, routing key = queue name
	if err := ch.PublishWithContext(ctx, "", queue.AuditQueue, false, false, pub); err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	return nil
}

// AuditRecorder sends audit events to the broker when one is configured and
// writes them straight to the store otherwise, so the trail is kept either
// way.
type AuditRecorder struct {
	url   string
	store queue.AuditStore
	log   zerolog.Logger
	// publish is swapped out in tests.
	publish func(ctx context.Context, url string, event queue.AuditEvent) error
}

func NewAuditRecorder(url string, store queue.AuditStore, log zerolog.Logger) *AuditRecorder {
	return &AuditRecorder{url: url, store: store, log: log, publish: PublishAudit}
}

// Record stamps OccurredAt when unset and delivers the event.  A broker
// failure falls back to a direct write.
func (r *AuditRecorder) Record(ctx context.Context, event queue.AuditEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if r.url != "" {
		err := r.publish(ctx, r.url, event)
		if err == nil {
			return nil
		}
		r.log.Warn().Err(err).Str("action", event.Action).Msg("audit publish failed; writing directly")
	}
	_, err := r.store.CreateAuditLog(ctx, event.AuditLog())
	return err
}

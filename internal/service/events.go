package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-admin-api/internal/observability"
)

// StatusChangeEvent describes one lifecycle transition of a gate pass or letter.
type StatusChangeEvent struct {
	Kind          string    `json:"kind"`
	RecordID      uint      `json:"record_id"`
	Number        string    `json:"number"`
	FromStatus    string    `json:"from_status"`
	ToStatus      string    `json:"to_status"`
	ActorID       string    `json:"actor_id,omitempty"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// EventPublisher fans lifecycle transitions out to interested consumers.
type EventPublisher interface {
	PublishStatusChange(ctx context.Context, event StatusChangeEvent)
}

type natsEventPublisher struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// NewEventPublisher constructs a NATS-backed publisher. A nil connection
// yields a publisher that drops events, so callers never need to nil-check.
func NewEventPublisher(conn *nats.Conn, subjectBase string, logger zerolog.Logger) EventPublisher {
	subject := strings.TrimSpace(subjectBase)
	if subject == "" {
		subject = "campus.lifecycle"
	}

	return &natsEventPublisher{
		conn:    conn,
		subject: subject,
		logger:  logger.With().Str("component", "event_publisher").Logger(),
	}
}

func (p *natsEventPublisher) PublishStatusChange(ctx context.Context, event StatusChangeEvent) {
	if p.conn == nil {
		return
	}

	if event.CorrelationID == "" {
		event.CorrelationID = observability.CorrelationFromContext(ctx)
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error().Err(err).Msg("failed to encode lifecycle event")
		return
	}

	subject := p.subject + "." + event.Kind
	if err := p.conn.Publish(subject, payload); err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish lifecycle event")
	}
}

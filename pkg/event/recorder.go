package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/servease/marketplace-api/internal/model"
	"github.com/servease/marketplace-api/internal/repository"
)

// Recorder writes domain events to the outbox table. The worker picks them
// up and publishes them to the broker, so producers never talk to Redis
// directly and a broker outage cannot fail a business write.
type Recorder struct {
	outbox repository.OutboxRepository
	logger zerolog.Logger
}

func NewRecorder(outbox repository.OutboxRepository, logger zerolog.Logger) *Recorder {
	return &Recorder{outbox: outbox, logger: logger}
}

// Record stores one event. Failures are logged and swallowed: the outbox is
// a side channel and must never undo the write that triggered it.
func (r *Recorder) Record(ctx context.Context, eventType string, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		r.logger.Error().Err(err).Str("event_type", eventType).Msg("failed to marshal outbox payload")
		return
	}

	now := time.Now().UTC()
	evt := &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Payload:   body,
		Status:    model.OutboxStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.outbox.Create(ctx, evt); err != nil {
		r.logger.Error().Err(err).Str("event_type", eventType).Msg("failed to record outbox event")
	}
}

package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/servease/marketplace-api/internal/model"
	"github.com/servease/marketplace-api/internal/repository"
	"github.com/servease/marketplace-api/pkg/messaging"
	"github.com/servease/marketplace-api/pkg/metrics"
)

type OutboxProcessorConfig struct {
	BatchSize    int
	PollInterval time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	RetainFor    time.Duration
}

// OutboxProcessor drains pending outbox events to the message broker.
// Events that keep failing are parked with a retry timestamp until the
// retry budget runs out, then marked failed for good.
type OutboxProcessor struct {
	repo    repository.OutboxRepository
	broker  messaging.Broker
	config  OutboxProcessorConfig
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

func NewOutboxProcessor(
	repo repository.OutboxRepository,
	broker messaging.Broker,
	config OutboxProcessorConfig,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *OutboxProcessor {
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 5 * time.Second
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = 5
	}
	if config.RetryBackoff <= 0 {
		config.RetryBackoff = 30 * time.Second
	}

	return &OutboxProcessor{
		repo:    repo,
		broker:  broker,
		config:  config,
		logger:  logger,
		metrics: m,
	}
}

func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.logger.Info().Msg("starting outbox processor")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("shutting down outbox processor")
			return
		case <-ticker.C:
			if err := p.ProcessPending(ctx); err != nil {
				p.logger.Error().Err(err).Msg("failed to process outbox events")
			}
			p.cleanup(ctx)
		}
	}
}

// ProcessPending drains one batch. Exposed so tests and one-shot runs can
// drive the processor without the ticker.
func (p *OutboxProcessor) ProcessPending(ctx context.Context) error {
	var timer *prometheus.Timer
	if p.metrics != nil {
		timer = prometheus.NewTimer(p.metrics.OutboxProcessingLatency)
		defer timer.ObserveDuration()
	}

	events, err := p.repo.GetPendingEvents(ctx, p.config.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to get pending events: %w", err)
	}

	for _, event := range events {
		if err := p.processEvent(ctx, event); err != nil {
			p.logger.Error().Err(err).
				Str("event_id", event.ID.String()).
				Str("event_type", event.EventType).
				Msg("failed to process event")
		}
	}

	return nil
}

func (p *OutboxProcessor) processEvent(ctx context.Context, event *model.OutboxEvent) error {
	if err := p.broker.Publish(ctx, event.EventType, event.Payload); err != nil {
		if p.metrics != nil {
			p.metrics.OutboxEventsFailed.Inc()
		}

		var retryAt *time.Time
		if event.RetryCount+1 < p.config.MaxRetries {
			t := time.Now().UTC().Add(p.config.RetryBackoff)
			retryAt = &t
		}
		if markErr := p.repo.MarkFailed(ctx, event.ID, err.Error(), retryAt); markErr != nil {
			p.logger.Error().Err(markErr).Str("event_id", event.ID.String()).Msg("failed to mark event failed")
		}
		return err
	}

	if p.metrics != nil {
		p.metrics.OutboxEventsProcessed.Inc()
	}
	if err := p.repo.MarkProcessed(ctx, event.ID); err != nil {
		return fmt.Errorf("failed to mark event processed: %w", err)
	}
	return nil
}

func (p *OutboxProcessor) cleanup(ctx context.Context) {
	if p.config.RetainFor <= 0 {
		return
	}
	cutoff := time.Now().UTC().Add(-p.config.RetainFor)
	deleted, err := p.repo.DeleteProcessedBefore(ctx, cutoff)
	if err != nil {
		p.logger.Error().Err(err).Msg("failed to prune processed events")
		return
	}
	if deleted > 0 {
		p.logger.Debug().Int64("deleted", deleted).Msg("pruned processed outbox events")
	}
}

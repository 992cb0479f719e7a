package ws

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/servease/marketplace-api/pkg/metrics"
)

// Dispatcher pushes payloads to every live connection of a recipient.
// Delivery is advisory: the durable notification row is the source of truth,
// so every failure here is logged and swallowed rather than surfaced to the
// business transaction that triggered it.
type Dispatcher struct {
	registry *Registry
	logger   zerolog.Logger
	metrics  *metrics.Metrics
}

// NewDispatcher creates a dispatcher over the given registry. metrics may be
// nil.
func NewDispatcher(registry *Registry, logger zerolog.Logger, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		logger:   logger,
		metrics:  m,
	}
}

// BroadcastToUser sends payload to each of the owner's live connections
// independently and reports whether at least one send succeeded. An offline
// owner yields false with no transport I/O. A failure on one connection does
// not stop attempts on the rest. This method never panics or errors out.
func (d *Dispatcher) BroadcastToUser(ownerID uuid.UUID, payload interface{}) (delivered bool) {
	defer func() {
		if p := recover(); p != nil {
			d.logger.Error().
				Interface("panic", p).
				Str("user_id", ownerID.String()).
				Msg("panic during notification broadcast")
			delivered = false
		}
	}()

	senders := d.registry.sendersFor(ownerID)
	if len(senders) == 0 {
		d.logger.Debug().
			Str("user_id", ownerID.String()).
			Msg("no active connections for user")
		d.countOutcome("offline")
		return false
	}

	sent := 0
	for connID, transport := range senders {
		if err := d.send(transport, payload); err != nil {
			d.logger.Error().
				Err(err).
				Str("connection_id", connID).
				Str("user_id", ownerID.String()).
				Msg("failed to send message to connection")
			if d.metrics != nil {
				d.metrics.NotificationSendErrors.Inc()
			}
			continue
		}
		sent++
	}

	d.logger.Info().
		Str("user_id", ownerID.String()).
		Int("sent", sent).
		Int("connections", len(senders)).
		Msg("broadcast to user")

	if sent > 0 {
		d.countOutcome("delivered")
		return true
	}
	d.countOutcome("failed")
	return false
}

// send converts a panicking transport into an error so one broken
// connection cannot abort deliveries to the owner's remaining connections.
func (d *Dispatcher) send(transport Sender, payload interface{}) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("send panicked: %v", p)
		}
	}()
	return transport.Send(payload)
}

func (d *Dispatcher) countOutcome(outcome string) {
	if d.metrics != nil {
		d.metrics.NotificationsDispatched.WithLabelValues(outcome).Inc()
	}
}

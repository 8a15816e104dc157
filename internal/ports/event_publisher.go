package ports

import (
	"context"

	"hub-ops-service/internal/domain"
)

// Port: fan-out of hub events to operator screens and the event bus.
type EventPublisher interface {
	Publish(ctx context.Context, ev domain.HubEvent) error
}

package events

import (
	"context"
	"errors"

	"hub-ops-service/internal/domain"
	"hub-ops-service/internal/ports"
)

// Multi delivers every event to all sinks, even when some fail.
type Multi []ports.EventPublisher

func (m Multi) Publish(ctx context.Context, ev domain.HubEvent) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

//go:generate mockgen -source=contracts.go -destination=intake_mocks_test.go -package=intake_test

package intake

import (
	"context"

	"delivery-lifecycle/internal/domain"
)

// DeliveryCreator persists new pending deliveries. A duplicate reference yields apperr.ErrConflict.
type DeliveryCreator interface {
	CreateDelivery(ctx context.Context, d *domain.Delivery) error
}

// Canceller closes deliveries withdrawn upstream.
type Canceller interface {
	Transition(ctx context.Context, ref string, to domain.DeliveryStatus, actor domain.Actor, reason string) (domain.Delivery, error)
}

//go:generate mockgen -source=contracts.go -destination=lifecycle_mocks_test.go -package=lifecycle_test

package lifecycle

import (
	"context"

	"delivery-lifecycle/internal/domain"
	"delivery-lifecycle/internal/ports/deliverytx"
)

// Store is the read side of delivery storage plus the transaction runner.
// Getters return (nil, nil) when nothing matches.
type Store interface {
	deliverytx.Runner
	GetDeliveryByRef(ctx context.Context, ref string) (*domain.Delivery, error)
	ListHistory(ctx context.Context, deliveryID int64) ([]domain.HistoryEvent, error)
	ListDeliveries(ctx context.Context, f domain.DeliveryFilter) ([]domain.Delivery, error)
}

// Publisher receives every committed history event. Implementations must not block for long
// and handle their own failures.
type Publisher interface {
	Publish(ctx context.Context, e domain.HistoryEvent)
}

// Guard runs inside the transition transaction before the request is validated.
// Returning an error aborts the transition.
type Guard func(ctx context.Context, tx deliverytx.Repository, d domain.Delivery) error

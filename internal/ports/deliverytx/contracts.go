package deliverytx

import (
	"context"
	"time"

	"delivery-lifecycle/internal/domain"
)

// Repository is the set of operations available inside a delivery transaction.
// Getters return (nil, nil) when the row does not exist.
type Repository interface {
	GetDeliveryByRef(ctx context.Context, ref string) (*domain.Delivery, error)
	GetDriver(ctx context.Context, id int64) (*domain.Driver, error)
	ActiveLoad(ctx context.Context, driverID int64) (int, error)
	// CompareAndSetStatus moves the delivery to next only if it is still in expected.
	// driverID is written together with the status. It reports whether a row changed.
	CompareAndSetStatus(ctx context.Context, id int64, expected, next domain.DeliveryStatus, driverID *int64, at time.Time) (bool, error)
	// AppendEvent stores e and fills e.Seq with the next per-delivery sequence number.
	AppendEvent(ctx context.Context, e *domain.HistoryEvent) error
}

// Runner is a transaction runner
type Runner interface {
	WithTx(ctx context.Context, fn func(tx Repository) error) error
}

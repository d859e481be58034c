package driver

import (
	"context"

	"delivery-lifecycle/internal/domain"
)

// driverRepository defines storage operations required by the business layer.
type driverRepository interface {
	GetDriver(ctx context.Context, id int64) (*domain.Driver, error)
	ListDrivers(ctx context.Context, limit, offset *int) ([]domain.Driver, error)
	CreateDriver(ctx context.Context, d *domain.Driver) (int64, error)
	UpdateDriverPartial(ctx context.Context, u domain.PartialDriverUpdate) (bool, error)
	DeactivateDriver(ctx context.Context, id int64) (bool, error)
}

// locationStore keeps the last reported position of each driver.
type locationStore interface {
	Set(ctx context.Context, driverID int64, loc domain.Location) error
	Get(ctx context.Context, driverID int64) (*domain.Location, error)
}

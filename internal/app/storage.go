package app

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"delivery-lifecycle/internal/config"
	"delivery-lifecycle/internal/domain"
	"delivery-lifecycle/internal/location"
	"delivery-lifecycle/internal/logx"
	"delivery-lifecycle/internal/repository"
	"delivery-lifecycle/internal/repository/memory"
	"delivery-lifecycle/internal/service/assignment"
	"delivery-lifecycle/internal/service/intake"
	"delivery-lifecycle/internal/service/lifecycle"
)

type deliveryStore interface {
	lifecycle.Store
	assignment.Candidates
	intake.DeliveryCreator
}

type driverStore interface {
	GetDriver(ctx context.Context, id int64) (*domain.Driver, error)
	ListDrivers(ctx context.Context, limit, offset *int) ([]domain.Driver, error)
	CreateDriver(ctx context.Context, d *domain.Driver) (int64, error)
	UpdateDriverPartial(ctx context.Context, u domain.PartialDriverUpdate) (bool, error)
	DeactivateDriver(ctx context.Context, id int64) (bool, error)
}

type locationStore interface {
	Set(ctx context.Context, driverID int64, loc domain.Location) error
	Get(ctx context.Context, driverID int64) (*domain.Location, error)
}

// storage is the selected backend for deliveries and drivers.
type storage struct {
	deliveries deliveryStore
	drivers    driverStore
}

// newStorage picks Postgres when a pool is available, the in-memory store otherwise.
func newStorage(cfg *config.Config, pool *pgxpool.Pool, logger logx.Logger) *storage {
	if cfg.Storage.Driver == config.StoragePostgres && pool != nil {
		return &storage{
			deliveries: repository.NewDeliveryRepo(pool),
			drivers:    repository.NewDriverRepo(pool),
		}
	}
	logger.Warn("using in-memory storage, state is lost on restart")
	m := memory.New()
	return &storage{deliveries: m, drivers: m}
}

func newRedisClient(cfg *config.Config) redis.UniversalClient {
	if cfg.Redis.Addr == "" {
		return nil
	}
	return redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{cfg.Redis.Addr}})
}

// newLocationStore returns nil when Redis is not configured.
func newLocationStore(cfg *config.Config, c redis.UniversalClient) locationStore {
	if c == nil {
		return nil
	}
	return location.NewRedisStore(c, cfg.Redis.LocationTTL)
}

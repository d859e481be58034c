//go:build integration

package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/dig"

	"delivery-lifecycle/internal/config"
	"delivery-lifecycle/internal/domain"
	"delivery-lifecycle/internal/logx"
	"delivery-lifecycle/internal/service/intake"
	"delivery-lifecycle/internal/service/lifecycle"
)

func setupTestContainerWithDb(t *testing.T, ctx context.Context, cfg *config.Config) *dig.Container {
	t.Helper()

	c := dig.New()
	require.NoError(t, provideAll(c,
		func() context.Context { return ctx },
		func() *config.Config { return cfg },
		logx.Nop,
		newRedisClient,
		newLocationStore,
	))
	require.NoError(t, registerDb(c, connectDbWithRetry))
	require.NoError(t, registerMetrics(c))
	require.NoError(t, registerEvents(c))
	require.NoError(t, registerService(c))
	return c
}

func TestContainer_PostgresStorage_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	pg, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("deliveries_app"),
		postgres.WithUsername("test_user"),
		postgres.WithPassword("test_pass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(context.Background()) })

	host, err := pg.Host(ctx)
	require.NoError(t, err)
	port, err := pg.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := testConfig()
	cfg.Storage.Driver = config.StoragePostgres
	cfg.DB = config.DB{Host: host, Port: port.Port(), User: "test_user", Pass: "test_pass", Name: "deliveries_app"}

	c := setupTestContainerWithDb(t, ctx, cfg)

	err = c.Invoke(func(in *intake.Service, lc *lifecycle.Service) {
		require.NoError(t, in.Create(ctx, &domain.Delivery{
			Reference:    "REF-PG-1",
			CustomerName: "Ann",
			Address:      "Main st 1",
			PaymentType:  domain.PaymentCOD,
			AmountDue:    1500,
			Kind:         domain.KindOutbound,
		}))

		d, err := lc.GetDelivery(ctx, "REF-PG-1")
		require.NoError(t, err)
		require.Equal(t, domain.StatusPending, d.Status)
		require.Equal(t, int64(1500), d.AmountDue)
	})
	require.NoError(t, err)
}

//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"

	"delivery-lifecycle/internal/apperr"
	"delivery-lifecycle/internal/domain"
	"delivery-lifecycle/internal/repository"
)

type DriverRepositorySuite struct {
	suite.Suite
	pool *pgxpool.Pool
	repo *repository.DriverRepo
}

func (s *DriverRepositorySuite) SetupSuite() {
	s.Require().NotNil(tcPool, "tcPool must be initialized in TestMain")

	s.pool = tcPool
	s.repo = repository.NewDriverRepo(tcPool)
}

func (s *DriverRepositorySuite) SetupTest() {
	s.Require().NoError(truncateAll(context.Background(), s.pool))
}

func (s *DriverRepositorySuite) newDriver(phone string) *domain.Driver {
	return &domain.Driver{
		Name:    "Artem",
		Phone:   phone,
		Status:  domain.DriverOffline,
		Vehicle: domain.VehicleFoot,
		Active:  true,
	}
}

func (s *DriverRepositorySuite) TestCreateAndGet() {
	ctx := context.Background()

	id, err := s.repo.CreateDriver(ctx, s.newDriver("+70000000000"))
	s.Require().NoError(err)
	s.Positive(id)

	got, err := s.repo.GetDriver(ctx, id)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal("Artem", got.Name)
	s.Equal(domain.DriverOffline, got.Status)
	s.Equal(domain.VehicleFoot, got.Vehicle)
	s.True(got.Active)
}

func (s *DriverRepositorySuite) TestGet_NotFound() {
	got, err := s.repo.GetDriver(context.Background(), 9999)
	s.Require().NoError(err)
	s.Nil(got)
}

func (s *DriverRepositorySuite) TestCreate_DuplicatePhone() {
	ctx := context.Background()

	_, err := s.repo.CreateDriver(ctx, s.newDriver("+70000000000"))
	s.Require().NoError(err)

	_, err = s.repo.CreateDriver(ctx, s.newDriver("+70000000000"))
	s.ErrorIs(err, apperr.ErrConflict)
}

func (s *DriverRepositorySuite) TestList_Pagination() {
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := s.repo.CreateDriver(ctx, s.newDriver(fmt.Sprintf("+7000000000%d", i)))
		s.Require().NoError(err)
	}

	all, err := s.repo.ListDrivers(ctx, nil, nil)
	s.Require().NoError(err)
	s.Len(all, 5)

	limit, offset := 2, 3
	page, err := s.repo.ListDrivers(ctx, &limit, &offset)
	s.Require().NoError(err)
	s.Require().Len(page, 2)
	s.Equal(all[3].ID, page[0].ID)
	s.Equal(all[4].ID, page[1].ID)
}

func (s *DriverRepositorySuite) TestUpdatePartial() {
	ctx := context.Background()

	id, err := s.repo.CreateDriver(ctx, s.newDriver("+70000000000"))
	s.Require().NoError(err)

	status := domain.DriverOnline
	vehicle := domain.VehicleCar
	ok, err := s.repo.UpdateDriverPartial(ctx, domain.PartialDriverUpdate{ID: id, Status: &status, Vehicle: &vehicle})
	s.Require().NoError(err)
	s.True(ok)

	got, err := s.repo.GetDriver(ctx, id)
	s.Require().NoError(err)
	s.Equal(domain.DriverOnline, got.Status)
	s.Equal(domain.VehicleCar, got.Vehicle)
	s.Equal("Artem", got.Name)

	ok, err = s.repo.UpdateDriverPartial(ctx, domain.PartialDriverUpdate{ID: 9999, Status: &status})
	s.Require().NoError(err)
	s.False(ok)
}

func (s *DriverRepositorySuite) TestUpdatePartial_DuplicatePhone() {
	ctx := context.Background()

	_, err := s.repo.CreateDriver(ctx, s.newDriver("+70000000001"))
	s.Require().NoError(err)
	id, err := s.repo.CreateDriver(ctx, s.newDriver("+70000000002"))
	s.Require().NoError(err)

	phone := "+70000000001"
	_, err = s.repo.UpdateDriverPartial(ctx, domain.PartialDriverUpdate{ID: id, Phone: &phone})
	s.ErrorIs(err, apperr.ErrConflict)
}

func (s *DriverRepositorySuite) TestDeactivate() {
	ctx := context.Background()

	d := s.newDriver("+70000000000")
	d.Status = domain.DriverOnline
	id, err := s.repo.CreateDriver(ctx, d)
	s.Require().NoError(err)

	ok, err := s.repo.DeactivateDriver(ctx, id)
	s.Require().NoError(err)
	s.True(ok)

	got, err := s.repo.GetDriver(ctx, id)
	s.Require().NoError(err)
	s.False(got.Active)
	s.Equal(domain.DriverOffline, got.Status)
	s.False(got.Assignable())
}

func TestDriverRepositorySuite(t *testing.T) {
	suite.Run(t, new(DriverRepositorySuite))
}

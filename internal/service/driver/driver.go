package driver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"delivery-lifecycle/internal/apperr"
	"delivery-lifecycle/internal/domain"
	"delivery-lifecycle/internal/logx"
)

// Service coordinates driver business logic and orchestrates repository calls.
type Service struct {
	repo             driverRepository
	locations        locationStore
	operationTimeout time.Duration
	logger           logx.Logger
	now              func() time.Time
}

// NewService creates and configures a driver Service. locations may be nil.
func NewService(r driverRepository, locations locationStore, timeout time.Duration, logger logx.Logger) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Service{
		repo:             r,
		locations:        locations,
		operationTimeout: timeout,
		logger:           logger,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// validateCreate validates a driver for creation and fills defaults.
func validateCreate(d *domain.Driver) error {
	if d == nil {
		return apperr.ErrInvalid
	}
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("name is empty: %w", apperr.ErrInvalid)
	}
	if !domain.ValidatePhone(d.Phone) {
		return fmt.Errorf("phone %q: %w", d.Phone, apperr.ErrInvalid)
	}
	if d.Status == "" {
		d.Status = domain.DriverOffline
	}
	if !d.Status.Valid() {
		return fmt.Errorf("status %q: %w", d.Status, apperr.ErrInvalid)
	}
	if d.Vehicle == "" {
		d.Vehicle = domain.VehicleFoot
	}
	if !d.Vehicle.Valid() {
		return fmt.Errorf("vehicle %q: %w", d.Vehicle, apperr.ErrInvalid)
	}
	return nil
}

func validateUpdate(u *domain.PartialDriverUpdate) error {
	if u.ID <= 0 {
		return apperr.ErrInvalid
	}
	if u.Name == nil && u.Phone == nil && u.Status == nil && u.Vehicle == nil {
		return fmt.Errorf("nothing to update: %w", apperr.ErrInvalid)
	}
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return fmt.Errorf("name is empty: %w", apperr.ErrInvalid)
	}
	if u.Phone != nil && !domain.ValidatePhone(*u.Phone) {
		return fmt.Errorf("phone %q: %w", *u.Phone, apperr.ErrInvalid)
	}
	if u.Status != nil && !u.Status.Valid() {
		return fmt.Errorf("status %q: %w", *u.Status, apperr.ErrInvalid)
	}
	if u.Vehicle != nil && !u.Vehicle.Valid() {
		return fmt.Errorf("vehicle %q: %w", *u.Vehicle, apperr.ErrInvalid)
	}
	return nil
}

// Get retrieves a driver by its ID together with its last known location.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Driver, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	d, err := s.repo.GetDriver(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, fmt.Errorf("driver %d: %w", id, apperr.ErrNotFound)
	}
	if s.locations != nil {
		loc, err := s.locations.Get(ctx, id)
		if err != nil {
			s.logger.Warn("driver location lookup failed", logx.Int64("driver_id", id), logx.Any("error", err))
		}
		d.Location = loc
	}
	return d, nil
}

// List returns drivers with optional pagination
func (s *Service) List(ctx context.Context, limit, offset *int) ([]domain.Driver, error) {
	if (limit != nil && *limit < 0) || (offset != nil && *offset < 0) {
		return nil, fmt.Errorf("negative limit or offset: %w", apperr.ErrInvalid)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.ListDrivers(ctx, limit, offset)
}

// Create persists a new active driver and returns its generated ID.
func (s *Service) Create(ctx context.Context, d *domain.Driver) (int64, error) {
	if err := validateCreate(d); err != nil {
		return 0, err
	}
	d.Active = true
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	id, err := s.repo.CreateDriver(ctx, d)
	if err != nil {
		return 0, err
	}
	s.logger.Info("driver created", logx.Int64("driver_id", id), logx.String("vehicle", string(d.Vehicle)))
	return id, nil
}

// UpdatePartial applies a partial update. Drivers may only update themselves and cannot rename.
func (s *Service) UpdatePartial(ctx context.Context, u domain.PartialDriverUpdate, actor domain.Actor) error {
	if err := validateUpdate(&u); err != nil {
		return err
	}
	if !actor.IsAdmin() {
		if !actor.IsDriver(u.ID) {
			return fmt.Errorf("actor %s cannot update driver %d: %w", actor.ID, u.ID, apperr.ErrUnauthorized)
		}
		if u.Name != nil || u.Phone != nil {
			return fmt.Errorf("drivers may only change availability and vehicle: %w", apperr.ErrUnauthorized)
		}
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if u.Status != nil && *u.Status != domain.DriverOffline {
		d, err := s.repo.GetDriver(ctx, u.ID)
		if err != nil {
			return err
		}
		if d != nil && !d.Active {
			return fmt.Errorf("driver %d is deactivated: %w", u.ID, apperr.ErrDriverUnavailable)
		}
	}

	ok, err := s.repo.UpdateDriverPartial(ctx, u)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("driver %d: %w", u.ID, apperr.ErrNotFound)
	}
	return nil
}

// Deactivate soft-deletes a driver. Existing deliveries keep referring to it.
func (s *Service) Deactivate(ctx context.Context, id int64, actor domain.Actor) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("actor %s: %w", actor.ID, apperr.ErrUnauthorized)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	ok, err := s.repo.DeactivateDriver(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("driver %d: %w", id, apperr.ErrNotFound)
	}
	s.logger.Info("driver deactivated", logx.Int64("driver_id", id), logx.String("actor", actor.ID))
	return nil
}

// UpdateLocation records the driver's position. Only the driver itself may report it.
func (s *Service) UpdateLocation(ctx context.Context, id int64, at domain.Coordinate, actor domain.Actor) (domain.Location, error) {
	if !actor.IsDriver(id) {
		return domain.Location{}, fmt.Errorf("actor %s cannot report location of driver %d: %w", actor.ID, id, apperr.ErrUnauthorized)
	}
	if at.Lat < -90 || at.Lat > 90 || at.Lng < -180 || at.Lng > 180 {
		return domain.Location{}, fmt.Errorf("coordinate %v: %w", at, apperr.ErrInvalid)
	}
	if s.locations == nil {
		return domain.Location{}, fmt.Errorf("location tracking disabled: %w", apperr.ErrNotFound)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	d, err := s.repo.GetDriver(ctx, id)
	if err != nil {
		return domain.Location{}, err
	}
	if d == nil {
		return domain.Location{}, fmt.Errorf("driver %d: %w", id, apperr.ErrNotFound)
	}

	loc := domain.Location{Coordinate: at, At: s.now()}
	if err := s.locations.Set(ctx, id, loc); err != nil {
		return domain.Location{}, err
	}
	return loc, nil
}

// GetLocation returns the last known position of the driver.
func (s *Service) GetLocation(ctx context.Context, id int64) (domain.Location, error) {
	if s.locations == nil {
		return domain.Location{}, fmt.Errorf("location tracking disabled: %w", apperr.ErrNotFound)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	loc, err := s.locations.Get(ctx, id)
	if err != nil {
		return domain.Location{}, err
	}
	if loc == nil {
		return domain.Location{}, fmt.Errorf("no location for driver %d: %w", id, apperr.ErrNotFound)
	}
	return *loc, nil
}

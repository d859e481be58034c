package memory

import (
	"context"
	"fmt"

	"delivery-lifecycle/internal/apperr"
	"delivery-lifecycle/internal/domain"
)

// GetDriver returns a copy of the driver or nil.
func (s *Store) GetDriver(_ context.Context, id int64) (*domain.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.drivers[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

// ListDrivers returns drivers ordered by id. If limit/offset are nil, returns the full list.
func (s *Store) ListDrivers(_ context.Context, limit, offset *int) ([]domain.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return page(s.sortedDrivers(), limit, offset), nil
}

// CreateDriver inserts d and returns its new id. Phones are unique.
func (s *Store) CreateDriver(_ context.Context, d *domain.Driver) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phoneTaken(d.Phone, 0) {
		return 0, fmt.Errorf("phone %s: %w", d.Phone, apperr.ErrConflict)
	}
	s.lastDriverID++
	cp := *d
	cp.ID = s.lastDriverID
	s.drivers[cp.ID] = &cp
	return cp.ID, nil
}

// UpdateDriverPartial applies u and reports whether the driver exists.
func (s *Store) UpdateDriverPartial(_ context.Context, u domain.PartialDriverUpdate) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.drivers[u.ID]
	if !ok {
		return false, nil
	}
	if u.Phone != nil && s.phoneTaken(*u.Phone, u.ID) {
		return false, fmt.Errorf("phone %s: %w", *u.Phone, apperr.ErrConflict)
	}
	if u.Name != nil {
		d.Name = *u.Name
	}
	if u.Phone != nil {
		d.Phone = *u.Phone
	}
	if u.Status != nil {
		d.Status = *u.Status
	}
	if u.Vehicle != nil {
		d.Vehicle = *u.Vehicle
	}
	return true, nil
}

// DeactivateDriver clears the active flag and reports whether the driver exists.
func (s *Store) DeactivateDriver(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.drivers[id]
	if !ok {
		return false, nil
	}
	d.Active = false
	d.Status = domain.DriverOffline
	return true, nil
}

func (s *Store) phoneTaken(phone string, except int64) bool {
	for id, d := range s.drivers {
		if id != except && d.Phone == phone {
			return true
		}
	}
	return false
}

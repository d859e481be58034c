// Package memory is an in-process store with the same transactional
// contract as the Postgres repositories. Transactions are serialised.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"delivery-lifecycle/internal/apperr"
	"delivery-lifecycle/internal/domain"
	"delivery-lifecycle/internal/ports/deliverytx"
)

// Store keeps deliveries, drivers and history in maps guarded by one mutex.
type Store struct {
	mu sync.Mutex

	deliveries map[int64]*domain.Delivery
	byRef      map[string]int64
	drivers    map[int64]*domain.Driver
	events     map[int64][]domain.HistoryEvent

	lastDeliveryID int64
	lastDriverID   int64

	now func() time.Time
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		deliveries: make(map[int64]*domain.Delivery),
		byRef:      make(map[string]int64),
		drivers:    make(map[int64]*domain.Driver),
		events:     make(map[int64][]domain.HistoryEvent),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithTx runs fn with exclusive access. Changes are undone when fn returns an error or panics.
func (s *Store) WithTx(ctx context.Context, fn func(tx deliverytx.Repository) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &txRepo{s: s}
	defer func() {
		if p := recover(); p != nil {
			tx.rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

// GetDeliveryByRef returns a copy of the delivery or nil.
func (s *Store) GetDeliveryByRef(_ context.Context, ref string) (*domain.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deliveryByRef(ref), nil
}

// CreateDelivery inserts d as pending and fills its ID and timestamps.
func (s *Store) CreateDelivery(_ context.Context, d *domain.Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byRef[d.Reference]; ok {
		return fmt.Errorf("delivery %s: %w", d.Reference, apperr.ErrConflict)
	}
	s.lastDeliveryID++
	now := s.now()
	d.ID = s.lastDeliveryID
	d.Status = domain.StatusPending
	d.DriverID = nil
	d.CreatedAt, d.UpdatedAt = now, now

	cp := *d
	s.deliveries[cp.ID] = &cp
	s.byRef[cp.Reference] = cp.ID
	return nil
}

// ListHistory returns the events of a delivery in commit order.
func (s *Store) ListHistory(_ context.Context, deliveryID int64) ([]domain.HistoryEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := append([]domain.HistoryEvent(nil), s.events[deliveryID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

// ListDeliveries returns deliveries matching f ordered by id.
func (s *Store) ListDeliveries(_ context.Context, f domain.DeliveryFilter) ([]domain.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Delivery, 0)
	for _, d := range s.sortedDeliveries() {
		if f.Status != nil && d.Status != *f.Status {
			continue
		}
		if f.DriverID != nil && !d.AssignedTo(*f.DriverID) {
			continue
		}
		out = append(out, d)
	}
	return page(out, f.Limit, f.Offset), nil
}

// ListUnassignedPending returns pending deliveries without a driver, oldest first.
func (s *Store) ListUnassignedPending(_ context.Context) ([]domain.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Delivery, 0)
	for _, d := range s.sortedDeliveries() {
		if d.Status == domain.StatusPending && d.DriverID == nil {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ListAssignableDrivers returns active online drivers with their current load, ordered by id.
func (s *Store) ListAssignableDrivers(_ context.Context) ([]domain.DriverLoad, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.DriverLoad, 0)
	for _, d := range s.sortedDrivers() {
		if !d.Assignable() {
			continue
		}
		out = append(out, domain.DriverLoad{Driver: d, Load: s.activeLoad(d.ID)})
	}
	return out, nil
}

func (s *Store) deliveryByRef(ref string) *domain.Delivery {
	id, ok := s.byRef[ref]
	if !ok {
		return nil
	}
	cp := *s.deliveries[id]
	return &cp
}

func (s *Store) activeLoad(driverID int64) int {
	n := 0
	for _, d := range s.deliveries {
		if d.AssignedTo(driverID) && d.Status.CountsTowardLoad() {
			n++
		}
	}
	return n
}

func (s *Store) sortedDeliveries() []domain.Delivery {
	out := make([]domain.Delivery, 0, len(s.deliveries))
	for _, d := range s.deliveries {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) sortedDrivers() []domain.Driver {
	out := make([]domain.Driver, 0, len(s.drivers))
	for _, d := range s.drivers {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func page[T any](items []T, limit, offset *int) []T {
	if offset != nil {
		if *offset >= len(items) {
			return items[:0]
		}
		items = items[*offset:]
	}
	if limit != nil && *limit < len(items) {
		items = items[:*limit]
	}
	return items
}

// SetClock replaces the clock used for created/updated timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

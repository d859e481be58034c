package memory

import (
	"context"
	"time"

	"delivery-lifecycle/internal/domain"
)

// txRepo operates on the store while its mutex is held by WithTx.
type txRepo struct {
	s    *Store
	undo []func()
}

func (t *txRepo) GetDeliveryByRef(_ context.Context, ref string) (*domain.Delivery, error) {
	return t.s.deliveryByRef(ref), nil
}

func (t *txRepo) GetDriver(_ context.Context, id int64) (*domain.Driver, error) {
	d, ok := t.s.drivers[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (t *txRepo) ActiveLoad(_ context.Context, driverID int64) (int, error) {
	return t.s.activeLoad(driverID), nil
}

func (t *txRepo) CompareAndSetStatus(_ context.Context, id int64, expected, next domain.DeliveryStatus, driverID *int64, at time.Time) (bool, error) {
	d, ok := t.s.deliveries[id]
	if !ok || d.Status != expected {
		return false, nil
	}
	prev := *d
	t.undo = append(t.undo, func() { *t.s.deliveries[id] = prev })

	d.Status = next
	if driverID != nil {
		v := *driverID
		d.DriverID = &v
	} else {
		d.DriverID = nil
	}
	d.UpdatedAt = at
	return true, nil
}

func (t *txRepo) AppendEvent(_ context.Context, e *domain.HistoryEvent) error {
	prev := t.s.events[e.DeliveryID]
	t.undo = append(t.undo, func() { t.s.events[e.DeliveryID] = prev })

	e.Seq = int64(len(prev)) + 1
	if n := len(prev); n > 0 && e.At.Before(prev[n-1].At) {
		e.At = prev[n-1].At
	}
	next := make([]domain.HistoryEvent, len(prev), len(prev)+1)
	copy(next, prev)
	t.s.events[e.DeliveryID] = append(next, *e)
	return nil
}

func (t *txRepo) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

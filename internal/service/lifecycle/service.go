package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"delivery-lifecycle/internal/apperr"
	"delivery-lifecycle/internal/domain"
	"delivery-lifecycle/internal/logx"
	"delivery-lifecycle/internal/metrics"
	"delivery-lifecycle/internal/pkg/keylock"
	"delivery-lifecycle/internal/ports/deliverytx"
)

// maxAttempts bounds re-evaluation after losing a conditional write.
const maxAttempts = 3

var errStale = errors.New("delivery changed concurrently")

// Service drives deliveries through the status graph.
type Service struct {
	store            Store
	publisher        Publisher
	locks            *keylock.Locker
	metrics          *metrics.Lifecycle
	logger           logx.Logger
	operationTimeout time.Duration
	now              func() time.Time
	newID            func() string
}

// NewService creates a lifecycle Service. publisher and m may be nil.
func NewService(store Store, publisher Publisher, m *metrics.Lifecycle, timeout time.Duration, logger logx.Logger) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Service{
		store:            store,
		publisher:        publisher,
		locks:            keylock.New(),
		metrics:          m,
		logger:           logger,
		operationTimeout: timeout,
		now:              func() time.Time { return time.Now().UTC() },
		newID:            uuid.NewString,
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// Transition moves the delivery identified by ref to the requested status.
// Requesting the current non-terminal status returns the delivery unchanged and records nothing.
func (s *Service) Transition(ctx context.Context, ref string, to domain.DeliveryStatus, actor domain.Actor, reason string) (domain.Delivery, error) {
	return s.Apply(ctx, ref, domain.TransitionRequest{
		To:     to,
		Actor:  actor,
		Reason: strings.TrimSpace(reason),
	}, nil)
}

// Apply validates and commits req, running guard first inside the same transaction.
// The event is published after commit while the per-delivery lock is still held,
// so events of one delivery reach the publisher in commit order. Publishing gets its own
// operation timeout since the caller may already be gone.
func (s *Service) Apply(ctx context.Context, ref string, req domain.TransitionRequest, guard Guard) (domain.Delivery, error) {
	ref, err := validateRef(ref)
	if err != nil {
		return domain.Delivery{}, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	unlock := s.locks.Lock(ref)
	defer unlock()

	var (
		out   domain.Delivery
		event *domain.HistoryEvent
	)
	for attempt := 1; ; attempt++ {
		out, event, err = s.attempt(ctx, ref, req, guard)
		if !errors.Is(err, errStale) {
			break
		}
		if attempt >= maxAttempts {
			err = fmt.Errorf("delivery %s: %d attempts lost the race: %w", ref, attempt, apperr.ErrConflict)
			break
		}
		s.logger.Debug("conditional write lost, re-evaluating",
			logx.String("reference", ref),
			logx.Int("attempt", attempt),
		)
	}
	if err != nil {
		s.metrics.ObserveRejection(err)
		return domain.Delivery{}, err
	}
	if event == nil {
		return out, nil
	}

	s.metrics.ObserveTransition(event.FromStatus, event.ToStatus)
	s.logger.Info("delivery transitioned",
		logx.String("event", "delivery_transitioned"),
		logx.String("reference", ref),
		logx.String("from", string(event.FromStatus)),
		logx.String("to", string(event.ToStatus)),
		logx.String("actor", event.ActorID),
		logx.Int64("seq", event.Seq),
	)
	if s.publisher != nil {
		pubCtx, pubCancel := context.WithTimeout(context.WithoutCancel(ctx), s.operationTimeout)
		s.publisher.Publish(pubCtx, *event)
		pubCancel()
	}
	return out, nil
}

func (s *Service) attempt(ctx context.Context, ref string, req domain.TransitionRequest, guard Guard) (domain.Delivery, *domain.HistoryEvent, error) {
	var (
		out   domain.Delivery
		event *domain.HistoryEvent
	)
	err := s.store.WithTx(ctx, func(tx deliverytx.Repository) error {
		d, err := tx.GetDeliveryByRef(ctx, ref)
		if err != nil {
			return err
		}
		if d == nil {
			return fmt.Errorf("delivery %s: %w", ref, apperr.ErrNotFound)
		}
		if guard != nil {
			if err := guard(ctx, tx, *d); err != nil {
				return err
			}
		}

		noop, err := domain.ValidateTransition(*d, req)
		if err != nil {
			return err
		}
		if noop {
			out = *d
			return nil
		}

		driverID := d.DriverID
		if req.To == domain.StatusAssigned {
			driverID = req.DriverID
		}
		now := s.now()
		ok, err := tx.CompareAndSetStatus(ctx, d.ID, d.Status, req.To, driverID, now)
		if err != nil {
			return err
		}
		if !ok {
			return errStale
		}

		e := &domain.HistoryEvent{
			ID:         s.newID(),
			DeliveryID: d.ID,
			Reference:  d.Reference,
			FromStatus: d.Status,
			ToStatus:   req.To,
			Reason:     req.Reason,
			ActorID:    req.Actor.ID,
			ActorRole:  req.Actor.Role,
			DriverID:   driverID,
			At:         now,
		}
		if err := tx.AppendEvent(ctx, e); err != nil {
			return err
		}

		out = *d
		out.Status = req.To
		out.DriverID = driverID
		out.UpdatedAt = now
		event = e
		return nil
	})
	if err != nil {
		return domain.Delivery{}, nil, err
	}
	return out, event, nil
}

// GetDelivery returns the delivery with the given reference.
func (s *Service) GetDelivery(ctx context.Context, ref string) (domain.Delivery, error) {
	ref, err := validateRef(ref)
	if err != nil {
		return domain.Delivery{}, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	d, err := s.store.GetDeliveryByRef(ctx, ref)
	if err != nil {
		return domain.Delivery{}, err
	}
	if d == nil {
		return domain.Delivery{}, fmt.Errorf("delivery %s: %w", ref, apperr.ErrNotFound)
	}
	return *d, nil
}

// GetHistory returns the transitions of a delivery, oldest first.
func (s *Service) GetHistory(ctx context.Context, ref string) ([]domain.HistoryEvent, error) {
	d, err := s.GetDelivery(ctx, ref)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.store.ListHistory(ctx, d.ID)
}

// List returns deliveries matching f ordered by id.
func (s *Service) List(ctx context.Context, f domain.DeliveryFilter) ([]domain.Delivery, error) {
	if f.Status != nil && !f.Status.Valid() {
		return nil, fmt.Errorf("status %q: %w", *f.Status, apperr.ErrInvalid)
	}
	if (f.Limit != nil && *f.Limit < 0) || (f.Offset != nil && *f.Offset < 0) {
		return nil, fmt.Errorf("negative limit or offset: %w", apperr.ErrInvalid)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.store.ListDeliveries(ctx, f)
}

func validateRef(raw string) (string, error) {
	ref := strings.TrimSpace(raw)
	if ref == "" {
		return "", fmt.Errorf("empty reference: %w", apperr.ErrInvalid)
	}
	return ref, nil
}

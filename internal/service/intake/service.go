package intake

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"delivery-lifecycle/internal/apperr"
	"delivery-lifecycle/internal/domain"
	"delivery-lifecycle/internal/logx"
)

// ActorID identifies intake in delivery history.
const ActorID = "intake"

// Service registers new deliveries coming from the order pipeline.
type Service struct {
	repo             DeliveryCreator
	canceller        Canceller
	factory          *actionFactory
	operationTimeout time.Duration
	logger           logx.Logger
}

// NewService creates an intake Service. canceller may be nil, then cancel events are ignored.
func NewService(repo DeliveryCreator, canceller Canceller, timeout time.Duration, logger logx.Logger) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	s := &Service{
		repo:             repo,
		canceller:        canceller,
		operationTimeout: timeout,
		logger:           logger,
	}
	s.factory = newActionFactory(s.onCreated, s.onCancelled)
	return s
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// Create validates d and stores it as a pending delivery without a driver.
func (s *Service) Create(ctx context.Context, d *domain.Delivery) error {
	if err := validate(d); err != nil {
		return err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.repo.CreateDelivery(ctx, d); err != nil {
		return err
	}
	s.logger.Info("delivery registered",
		logx.String("event", "delivery_registered"),
		logx.String("reference", d.Reference),
		logx.String("kind", string(d.Kind)),
		logx.String("payment", string(d.PaymentType)),
	)
	return nil
}

// Handle processes one upstream event. Unknown event types are ignored.
func (s *Service) Handle(ctx context.Context, e Event) error {
	fn, ok := s.factory.get(e.Type)
	if !ok {
		s.logger.Debug("intake event ignored", logx.String("type", e.Type), logx.String("reference", e.Delivery.Reference))
		return nil
	}
	return fn(ctx, e)
}

// onCreated treats a duplicate as already processed, since the topic is delivered at least once.
func (s *Service) onCreated(ctx context.Context, e Event) error {
	d := e.Delivery
	err := s.Create(ctx, &d)
	if errors.Is(err, apperr.ErrConflict) {
		s.logger.Debug("duplicate intake event", logx.String("reference", d.Reference))
		return nil
	}
	return err
}

func (s *Service) onCancelled(ctx context.Context, e Event) error {
	if s.canceller == nil {
		return nil
	}
	reason := strings.TrimSpace(e.Reason)
	if reason == "" {
		reason = "withdrawn upstream"
	}
	_, err := s.canceller.Transition(ctx, e.Delivery.Reference, domain.StatusCancelled, domain.AdminActor(ActorID), reason)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, apperr.ErrInvalidTransition):
		// pending and rescheduled deliveries have no cancel edge, an admin has to close them later
		s.logger.Error("upstream cancel needs admin action",
			logx.String("event", "upstream_cancel_unapplied"),
			logx.String("reference", e.Delivery.Reference),
			logx.String("reason", reason),
			logx.Any("error", err),
		)
		return nil
	case errors.Is(err, apperr.ErrNotFound),
		errors.Is(err, apperr.ErrTerminalState):
		s.logger.Warn("upstream cancel not applied",
			logx.String("reference", e.Delivery.Reference),
			logx.String("kind", apperr.Kind(err)),
		)
		return nil
	default:
		return err
	}
}

func validate(d *domain.Delivery) error {
	if d == nil {
		return apperr.ErrInvalid
	}
	d.Reference = strings.TrimSpace(d.Reference)
	d.CustomerName = strings.TrimSpace(d.CustomerName)
	d.Address = strings.TrimSpace(d.Address)

	if d.Reference == "" {
		return fmt.Errorf("reference is empty: %w", apperr.ErrInvalid)
	}
	if d.CustomerName == "" {
		return fmt.Errorf("customer name is empty: %w", apperr.ErrInvalid)
	}
	if d.Address == "" {
		return fmt.Errorf("address is empty: %w", apperr.ErrInvalid)
	}
	if d.Kind == "" {
		d.Kind = domain.KindOutbound
	}
	if !d.Kind.Valid() {
		return fmt.Errorf("kind %q: %w", d.Kind, apperr.ErrInvalid)
	}
	if !d.PaymentType.Valid() {
		return fmt.Errorf("payment type %q: %w", d.PaymentType, apperr.ErrInvalid)
	}
	if d.PaymentType == domain.PaymentCOD && d.AmountDue <= 0 {
		return fmt.Errorf("cash on delivery requires a positive amount: %w", apperr.ErrInvalid)
	}
	if d.AmountDue < 0 {
		return fmt.Errorf("negative amount: %w", apperr.ErrInvalid)
	}
	if c := d.Location; c != nil && (c.Lat < -90 || c.Lat > 90 || c.Lng < -180 || c.Lng > 180) {
		return fmt.Errorf("coordinate %v: %w", *c, apperr.ErrInvalid)
	}
	d.Status = domain.StatusPending
	d.DriverID = nil
	return nil
}

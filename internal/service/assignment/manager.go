package assignment

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"delivery-lifecycle/internal/apperr"
	"delivery-lifecycle/internal/domain"
	"delivery-lifecycle/internal/logx"
	"delivery-lifecycle/internal/metrics"
	"delivery-lifecycle/internal/ports/deliverytx"
)

// AutoAssignActorID identifies batch assignments in delivery history.
const AutoAssignActorID = "auto-assign"

// Manager binds pending deliveries to drivers.
type Manager struct {
	lifecycle     Transitioner
	candidates    Candidates
	maxActiveLoad int
	metrics       *metrics.Assignment
	logger        logx.Logger
}

// NewManager creates a Manager. maxActiveLoad <= 0 means no limit.
func NewManager(t Transitioner, c Candidates, maxActiveLoad int, m *metrics.Assignment, logger logx.Logger) *Manager {
	if logger == nil {
		logger = logx.Nop()
	}
	if maxActiveLoad < 0 {
		maxActiveLoad = 0
	}
	return &Manager{
		lifecycle:     t,
		candidates:    c,
		maxActiveLoad: maxActiveLoad,
		metrics:       m,
		logger:        logger,
	}
}

// AssignManually binds the delivery to driverID. Admins may pick any driver,
// drivers may only claim a delivery for themselves.
func (m *Manager) AssignManually(ctx context.Context, ref string, driverID int64, actor domain.Actor) (domain.Delivery, error) {
	if driverID <= 0 {
		return domain.Delivery{}, fmt.Errorf("driver id %d: %w", driverID, apperr.ErrInvalid)
	}
	if !actor.IsAdmin() && !actor.IsDriver(driverID) {
		return domain.Delivery{}, fmt.Errorf("actor %s cannot assign driver %d: %w", actor.ID, driverID, apperr.ErrUnauthorized)
	}

	d, err := m.lifecycle.Apply(ctx, ref, domain.TransitionRequest{
		To:       domain.StatusAssigned,
		Actor:    actor,
		DriverID: &driverID,
	}, m.guard(driverID))
	if err != nil {
		return domain.Delivery{}, err
	}

	m.logger.Info("delivery assigned",
		logx.String("event", "delivery_assigned"),
		logx.String("reference", d.Reference),
		logx.Int64("driver_id", driverID),
		logx.String("actor", actor.ID),
	)
	return d, nil
}

// guard rejects the assignment unless the delivery is still pending and the driver can take it.
func (m *Manager) guard(driverID int64) func(ctx context.Context, tx deliverytx.Repository, d domain.Delivery) error {
	return func(ctx context.Context, tx deliverytx.Repository, d domain.Delivery) error {
		if d.Status != domain.StatusPending || d.DriverID != nil {
			return fmt.Errorf("delivery %s is %s: %w", d.Reference, d.Status, apperr.ErrDeliveryNotPending)
		}

		drv, err := tx.GetDriver(ctx, driverID)
		if err != nil {
			return err
		}
		if drv == nil {
			return fmt.Errorf("driver %d: %w", driverID, apperr.ErrNotFound)
		}
		if !drv.Assignable() {
			return fmt.Errorf("driver %d is %s (active=%t): %w", driverID, drv.Status, drv.Active, apperr.ErrDriverUnavailable)
		}
		if m.maxActiveLoad > 0 {
			load, err := tx.ActiveLoad(ctx, driverID)
			if err != nil {
				return err
			}
			if load >= m.maxActiveLoad {
				return fmt.Errorf("driver %d holds %d of %d deliveries: %w", driverID, load, m.maxActiveLoad, apperr.ErrDriverUnavailable)
			}
		}
		return nil
	}
}

// AutoAssign matches every unassigned pending delivery, oldest first, to the least loaded
// eligible driver. One delivery failing does not stop the batch. When ctx is cancelled
// the result so far is returned together with ctx.Err().
func (m *Manager) AutoAssign(ctx context.Context) (domain.AutoAssignResult, error) {
	res := domain.AutoAssignResult{
		Assigned:  []domain.Assignment{},
		Unmatched: []string{},
		Skipped:   []string{},
	}
	defer func() { m.metrics.ObserveBatch(res) }()

	pending, err := m.candidates.ListUnassignedPending(ctx)
	if err != nil {
		return res, fmt.Errorf("list pending deliveries: %w", err)
	}

	actor := domain.AdminActor(AutoAssignActorID)
	for _, d := range pending {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		drivers, err := m.candidates.ListAssignableDrivers(ctx)
		if err != nil {
			m.logger.Warn("auto-assign: list drivers failed",
				logx.String("reference", d.Reference),
				logx.Any("error", err),
			)
			res.Skipped = append(res.Skipped, d.Reference)
			continue
		}

		driverID, outcome := m.assignOne(ctx, d.Reference, m.eligible(drivers), actor)
		switch outcome {
		case outcomeAssigned:
			res.Assigned = append(res.Assigned, domain.Assignment{Reference: d.Reference, DriverID: driverID})
		case outcomeUnmatched:
			res.Unmatched = append(res.Unmatched, d.Reference)
		default:
			res.Skipped = append(res.Skipped, d.Reference)
		}
	}

	m.logger.Info("auto-assign finished",
		logx.String("event", "auto_assign"),
		logx.Int("assigned", len(res.Assigned)),
		logx.Int("unmatched", len(res.Unmatched)),
		logx.Int("skipped", len(res.Skipped)),
	)
	return res, nil
}

type outcome int

const (
	outcomeAssigned outcome = iota
	outcomeUnmatched
	outcomeSkipped
)

// assignOne walks candidates in order. A driver that became unavailable in the meantime
// is passed over; any other failure skips the delivery.
func (m *Manager) assignOne(ctx context.Context, ref string, candidates []domain.DriverLoad, actor domain.Actor) (int64, outcome) {
	for _, c := range candidates {
		driverID := c.Driver.ID
		_, err := m.lifecycle.Apply(ctx, ref, domain.TransitionRequest{
			To:       domain.StatusAssigned,
			Actor:    actor,
			DriverID: &driverID,
		}, m.guard(driverID))
		switch {
		case err == nil:
			return driverID, outcomeAssigned
		case errors.Is(err, apperr.ErrDriverUnavailable):
			continue
		default:
			m.logger.Warn("auto-assign: delivery skipped",
				logx.String("reference", ref),
				logx.Int64("driver_id", driverID),
				logx.Any("error", err),
			)
			return 0, outcomeSkipped
		}
	}
	return 0, outcomeUnmatched
}

// eligible filters drivers below the load limit and orders them by load, then id.
func (m *Manager) eligible(drivers []domain.DriverLoad) []domain.DriverLoad {
	out := make([]domain.DriverLoad, 0, len(drivers))
	for _, d := range drivers {
		if !d.Driver.Assignable() {
			continue
		}
		if m.maxActiveLoad > 0 && d.Load >= m.maxActiveLoad {
			continue
		}
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Load != out[j].Load {
			return out[i].Load < out[j].Load
		}
		return out[i].Driver.ID < out[j].Driver.ID
	})
	return out
}

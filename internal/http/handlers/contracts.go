package handlers

import (
	"context"

	"delivery-lifecycle/internal/domain"
)

type lifecycleUsecase interface {
	Transition(ctx context.Context, ref string, to domain.DeliveryStatus, actor domain.Actor, reason string) (domain.Delivery, error)
	GetDelivery(ctx context.Context, ref string) (domain.Delivery, error)
	GetHistory(ctx context.Context, ref string) ([]domain.HistoryEvent, error)
	List(ctx context.Context, f domain.DeliveryFilter) ([]domain.Delivery, error)
}

type assignmentUsecase interface {
	AssignManually(ctx context.Context, ref string, driverID int64, actor domain.Actor) (domain.Delivery, error)
	AutoAssign(ctx context.Context) (domain.AutoAssignResult, error)
}

type intakeUsecase interface {
	Create(ctx context.Context, d *domain.Delivery) error
}

type driverUsecase interface {
	Get(ctx context.Context, id int64) (*domain.Driver, error)
	List(ctx context.Context, limit, offset *int) ([]domain.Driver, error)
	Create(ctx context.Context, d *domain.Driver) (int64, error)
	UpdatePartial(ctx context.Context, u domain.PartialDriverUpdate, actor domain.Actor) error
	Deactivate(ctx context.Context, id int64, actor domain.Actor) error
	UpdateLocation(ctx context.Context, id int64, at domain.Coordinate, actor domain.Actor) (domain.Location, error)
	GetLocation(ctx context.Context, id int64) (domain.Location, error)
}

type eventSource interface {
	Subscribe(buffer int) (<-chan domain.HistoryEvent, func())
}

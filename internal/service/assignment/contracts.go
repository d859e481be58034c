package assignment

import (
	"context"

	"delivery-lifecycle/internal/domain"
	"delivery-lifecycle/internal/service/lifecycle"
)

// Candidates lists what auto-assign works on. Both lists are read fresh for every decision.
type Candidates interface {
	ListUnassignedPending(ctx context.Context) ([]domain.Delivery, error)
	ListAssignableDrivers(ctx context.Context) ([]domain.DriverLoad, error)
}

// Transitioner commits a guarded transition. *lifecycle.Service implements it.
type Transitioner interface {
	Apply(ctx context.Context, ref string, req domain.TransitionRequest, guard lifecycle.Guard) (domain.Delivery, error)
}

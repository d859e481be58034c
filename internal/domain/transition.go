package domain

import (
	"fmt"
	"strings"

	"delivery-lifecycle/internal/apperr"
)

// edge describes one allowed move in the delivery graph.
type edge struct {
	reasonRequired bool
	adminOnly      bool
	outboundOnly   bool
	needsDriver    bool
}

// transitions is the single source of truth for allowed status changes.
var transitions = map[DeliveryStatus]map[DeliveryStatus]edge{
	StatusPending: {
		StatusAssigned: {needsDriver: true},
	},
	StatusAssigned: {
		StatusPickedUp:  {},
		StatusCancelled: {adminOnly: true},
	},
	StatusPickedUp: {
		StatusInTransit: {},
		StatusCancelled: {adminOnly: true},
	},
	StatusInTransit: {
		StatusDelivered:   {},
		StatusRescheduled: {reasonRequired: true, outboundOnly: true},
		StatusReturned:    {reasonRequired: true},
		StatusCancelled:   {adminOnly: true},
	},
	StatusRescheduled: {
		StatusInTransit: {},
	},
}

// TransitionRequest is a requested status change for a delivery.
type TransitionRequest struct {
	To     DeliveryStatus
	Actor  Actor
	Reason string
	// DriverID is only meaningful for pending -> assigned.
	DriverID *int64
}

// Allowed reports whether from -> to is an edge of the graph, ignoring role and kind rules.
func Allowed(from, to DeliveryStatus) bool {
	_, ok := transitions[from][to]
	return ok
}

// ValidateTransition checks req against the current state of d.
// It returns (true, nil) when the request is an idempotent no-op.
func ValidateTransition(d Delivery, req TransitionRequest) (noop bool, err error) {
	if !req.To.Valid() {
		return false, fmt.Errorf("unknown status %q: %w", req.To, apperr.ErrInvalidTransition)
	}
	if !authorized(d, req) {
		return false, fmt.Errorf("actor %s on delivery %s: %w", req.Actor.ID, d.Reference, apperr.ErrUnauthorized)
	}
	if d.Status.Terminal() {
		return false, fmt.Errorf("delivery %s is %s, requested %s: %w", d.Reference, d.Status, req.To, apperr.ErrTerminalState)
	}
	if d.Status == req.To {
		return true, nil
	}

	e, ok := transitions[d.Status][req.To]
	if !ok {
		return false, invalid(d, req.To)
	}
	if e.outboundOnly && d.Kind != KindOutbound {
		return false, invalid(d, req.To)
	}
	if e.needsDriver && req.DriverID == nil {
		return false, fmt.Errorf("%s -> %s requires a driver: %w", d.Status, req.To, apperr.ErrInvalidTransition)
	}
	if e.adminOnly && !req.Actor.IsAdmin() {
		return false, fmt.Errorf("%s -> %s is admin only: %w", d.Status, req.To, apperr.ErrUnauthorized)
	}
	if e.reasonRequired && strings.TrimSpace(req.Reason) == "" {
		return false, fmt.Errorf("%s -> %s: %w", d.Status, req.To, apperr.ErrMissingReason)
	}
	return false, nil
}

// authorized allows admins, the assigned driver, and a driver claiming an unassigned delivery for itself.
func authorized(d Delivery, req TransitionRequest) bool {
	if req.Actor.IsAdmin() {
		return true
	}
	if d.DriverID != nil {
		return req.Actor.IsDriver(*d.DriverID)
	}
	return req.DriverID != nil && req.Actor.IsDriver(*req.DriverID)
}

func invalid(d Delivery, to DeliveryStatus) error {
	return fmt.Errorf("%s -> %s (%s delivery %s): %w", d.Status, to, d.Kind, d.Reference, apperr.ErrInvalidTransition)
}

package apperr

import "errors"

// ErrInvalid is returned when the input fails domain validation.
var ErrInvalid = errors.New("invalid input")

// ErrConflict indicates a uniqueness conflict (HTTP 409).
var ErrConflict = errors.New("conflict")

// ErrNotFound indicates that the referenced delivery or driver does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidTransition is returned when the requested edge is not in the transition graph.
var ErrInvalidTransition = errors.New("invalid transition")

// ErrTerminalState is returned for any transition requested on a closed delivery.
var ErrTerminalState = errors.New("delivery is in a terminal state")

// ErrMissingReason is returned when the edge requires a reason and none was given.
var ErrMissingReason = errors.New("reason is required")

// ErrUnauthorized is returned when the actor lacks the role or ownership for the action.
var ErrUnauthorized = errors.New("unauthorized")

// ErrDeliveryNotPending is returned when assignment targets a delivery that is no longer pending.
var ErrDeliveryNotPending = errors.New("delivery is not pending")

// ErrDriverUnavailable is returned when the driver is offline, deactivated or at capacity.
var ErrDriverUnavailable = errors.New("driver unavailable")

// Kind returns a stable machine-readable code for err, or "" for infrastructure errors.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrTerminalState):
		return "terminal_state"
	case errors.Is(err, ErrMissingReason):
		return "missing_reason"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrDeliveryNotPending):
		return "delivery_not_pending"
	case errors.Is(err, ErrDriverUnavailable):
		return "driver_unavailable"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalid):
		return "invalid_input"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return ""
	}
}

package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"delivery-lifecycle/internal/apperr"
	"delivery-lifecycle/internal/domain"
)

func ptr[T any](v T) *T { return &v }

type pair struct{ from, to domain.DeliveryStatus }

var listedEdges = map[pair]bool{
	{domain.StatusPending, domain.StatusAssigned}:      true,
	{domain.StatusAssigned, domain.StatusPickedUp}:     true,
	{domain.StatusPickedUp, domain.StatusInTransit}:    true,
	{domain.StatusInTransit, domain.StatusDelivered}:   true,
	{domain.StatusInTransit, domain.StatusRescheduled}: true,
	{domain.StatusInTransit, domain.StatusReturned}:    true,
	{domain.StatusRescheduled, domain.StatusInTransit}: true,
	{domain.StatusAssigned, domain.StatusCancelled}:    true,
	{domain.StatusPickedUp, domain.StatusCancelled}:    true,
	{domain.StatusInTransit, domain.StatusCancelled}:   true,
}

func deliveryIn(status domain.DeliveryStatus) domain.Delivery {
	d := domain.Delivery{
		ID:        1,
		Reference: "REF-1",
		Kind:      domain.KindOutbound,
		Status:    status,
	}
	if status != domain.StatusPending {
		d.DriverID = ptr(int64(7))
	}
	return d
}

func TestValidateTransition_GraphConformance(t *testing.T) {
	t.Parallel()

	admin := domain.AdminActor("admin-1")

	for _, from := range domain.DeliveryStatuses() {
		for _, to := range domain.DeliveryStatuses() {
			if from == to || from.Terminal() {
				continue
			}
			from, to := from, to
			t.Run(string(from)+"->"+string(to), func(t *testing.T) {
				t.Parallel()

				req := domain.TransitionRequest{To: to, Actor: admin, Reason: "because"}
				if to == domain.StatusAssigned {
					req.DriverID = ptr(int64(7))
				}

				noop, err := domain.ValidateTransition(deliveryIn(from), req)
				require.False(t, noop)
				if listedEdges[pair{from, to}] {
					require.NoError(t, err)
					require.True(t, domain.Allowed(from, to))
					return
				}
				require.ErrorIs(t, err, apperr.ErrInvalidTransition)
				require.False(t, domain.Allowed(from, to))
			})
		}
	}
}

func TestValidateTransition_TerminalClosure(t *testing.T) {
	t.Parallel()

	for _, from := range []domain.DeliveryStatus{domain.StatusDelivered, domain.StatusReturned, domain.StatusCancelled} {
		for _, to := range domain.DeliveryStatuses() {
			_, err := domain.ValidateTransition(deliveryIn(from), domain.TransitionRequest{
				To:     to,
				Actor:  domain.AdminActor("admin-1"),
				Reason: "late",
			})
			require.ErrorIs(t, err, apperr.ErrTerminalState, "%s -> %s", from, to)
		}
	}
}

func TestValidateTransition_SameStatusIsNoop(t *testing.T) {
	t.Parallel()

	noop, err := domain.ValidateTransition(deliveryIn(domain.StatusPickedUp), domain.TransitionRequest{
		To:    domain.StatusPickedUp,
		Actor: domain.DriverActor(7),
	})
	require.NoError(t, err)
	require.True(t, noop)
}

func TestValidateTransition_ReasonRequired(t *testing.T) {
	t.Parallel()

	for _, to := range []domain.DeliveryStatus{domain.StatusReturned, domain.StatusRescheduled} {
		_, err := domain.ValidateTransition(deliveryIn(domain.StatusInTransit), domain.TransitionRequest{
			To:     to,
			Actor:  domain.DriverActor(7),
			Reason: "   ",
		})
		require.ErrorIs(t, err, apperr.ErrMissingReason)

		_, err = domain.ValidateTransition(deliveryIn(domain.StatusInTransit), domain.TransitionRequest{
			To:     to,
			Actor:  domain.DriverActor(7),
			Reason: "Customer refused",
		})
		require.NoError(t, err)
	}
}

func TestValidateTransition_RescheduleOutboundOnly(t *testing.T) {
	t.Parallel()

	d := deliveryIn(domain.StatusInTransit)
	d.Kind = domain.KindReturn

	_, err := domain.ValidateTransition(d, domain.TransitionRequest{
		To:     domain.StatusRescheduled,
		Actor:  domain.DriverActor(7),
		Reason: "nobody home",
	})
	require.ErrorIs(t, err, apperr.ErrInvalidTransition)

	_, err = domain.ValidateTransition(d, domain.TransitionRequest{
		To:    domain.StatusDelivered,
		Actor: domain.DriverActor(7),
	})
	require.NoError(t, err)
}

func TestValidateTransition_Authorization(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		d       domain.Delivery
		req     domain.TransitionRequest
		wantErr error
	}{
		{
			name:    "other driver",
			d:       deliveryIn(domain.StatusAssigned),
			req:     domain.TransitionRequest{To: domain.StatusPickedUp, Actor: domain.DriverActor(8)},
			wantErr: apperr.ErrUnauthorized,
		},
		{
			name:    "assigned driver",
			d:       deliveryIn(domain.StatusAssigned),
			req:     domain.TransitionRequest{To: domain.StatusPickedUp, Actor: domain.DriverActor(7)},
			wantErr: nil,
		},
		{
			name:    "driver cannot cancel",
			d:       deliveryIn(domain.StatusPickedUp),
			req:     domain.TransitionRequest{To: domain.StatusCancelled, Actor: domain.DriverActor(7)},
			wantErr: apperr.ErrUnauthorized,
		},
		{
			name:    "driver on unassigned delivery",
			d:       deliveryIn(domain.StatusPending),
			req:     domain.TransitionRequest{To: domain.StatusPickedUp, Actor: domain.DriverActor(7)},
			wantErr: apperr.ErrUnauthorized,
		},
		{
			name:    "driver claims for itself",
			d:       deliveryIn(domain.StatusPending),
			req:     domain.TransitionRequest{To: domain.StatusAssigned, Actor: domain.DriverActor(7), DriverID: ptr(int64(7))},
			wantErr: nil,
		},
		{
			name:    "assigned without driver",
			d:       deliveryIn(domain.StatusPending),
			req:     domain.TransitionRequest{To: domain.StatusAssigned, Actor: domain.AdminActor("admin-1")},
			wantErr: apperr.ErrInvalidTransition,
		},
		{
			name:    "unknown status",
			d:       deliveryIn(domain.StatusAssigned),
			req:     domain.TransitionRequest{To: "lost", Actor: domain.AdminActor("admin-1")},
			wantErr: apperr.ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := domain.ValidateTransition(tt.d, tt.req)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDeliveryStatus_LabelsAndLoad(t *testing.T) {
	t.Parallel()

	for _, s := range domain.DeliveryStatuses() {
		require.NotEqual(t, "Unknown", s.Label(), s)
		require.False(t, s.Terminal() && s.CountsTowardLoad(), s)
	}
	require.Equal(t, "Unknown", domain.DeliveryStatus("lost").Label())
	require.False(t, domain.StatusPending.CountsTowardLoad())
	require.True(t, domain.StatusRescheduled.CountsTowardLoad())
}

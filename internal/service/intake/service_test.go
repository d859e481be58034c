package intake_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"delivery-lifecycle/internal/apperr"
	"delivery-lifecycle/internal/domain"
	"delivery-lifecycle/internal/logx"
	"delivery-lifecycle/internal/service/intake"
	testlog "delivery-lifecycle/internal/testutil"
)

func validDelivery() domain.Delivery {
	return domain.Delivery{
		Reference:    " REF-100 ",
		CustomerName: "Jane Doe",
		Address:      "1 Main St",
		PaymentType:  domain.PaymentCOD,
		AmountDue:    2500,
	}
}

func TestService_Create(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	repo := NewMockDeliveryCreator(ctrl)
	s := intake.NewService(repo, nil, time.Second, logx.Nop())

	repo.EXPECT().
		CreateDelivery(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, d *domain.Delivery) error {
			require.Equal(t, "REF-100", d.Reference)
			require.Equal(t, domain.KindOutbound, d.Kind)
			require.Equal(t, domain.StatusPending, d.Status)
			require.Nil(t, d.DriverID)
			return nil
		})

	d := validDelivery()
	require.NoError(t, s.Create(context.Background(), &d))
}

func TestService_Create_Invalid(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	s := intake.NewService(NewMockDeliveryCreator(ctrl), nil, time.Second, logx.Nop())

	tests := map[string]func(d *domain.Delivery){
		"empty reference":  func(d *domain.Delivery) { d.Reference = " " },
		"empty customer":   func(d *domain.Delivery) { d.CustomerName = "" },
		"empty address":    func(d *domain.Delivery) { d.Address = "" },
		"cod without sum":  func(d *domain.Delivery) { d.AmountDue = 0 },
		"unknown payment":  func(d *domain.Delivery) { d.PaymentType = "barter" },
		"unknown kind":     func(d *domain.Delivery) { d.Kind = "sideways" },
		"bad coordinate":   func(d *domain.Delivery) { d.Location = &domain.Coordinate{Lat: 100} },
		"negative prepaid": func(d *domain.Delivery) { d.PaymentType = domain.PaymentPrepaid; d.AmountDue = -1 },
	}
	for name, mutate := range tests {
		d := validDelivery()
		mutate(&d)
		require.ErrorIs(t, s.Create(context.Background(), &d), apperr.ErrInvalid, name)
	}
}

func TestService_Handle_CreatedDuplicateIgnored(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	repo := NewMockDeliveryCreator(ctrl)
	s := intake.NewService(repo, nil, time.Second, logx.Nop())

	repo.EXPECT().CreateDelivery(gomock.Any(), gomock.Any()).Return(apperr.ErrConflict)

	err := s.Handle(context.Background(), intake.Event{Type: "Created", Delivery: validDelivery()})
	require.NoError(t, err)
}

func TestService_Handle_CreatedStoreError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	repo := NewMockDeliveryCreator(ctrl)
	s := intake.NewService(repo, nil, time.Second, logx.Nop())

	dbErr := errors.New("db down")
	repo.EXPECT().CreateDelivery(gomock.Any(), gomock.Any()).Return(dbErr)

	err := s.Handle(context.Background(), intake.Event{Type: "created", Delivery: validDelivery()})
	require.ErrorIs(t, err, dbErr)
}

func TestService_Handle_Cancelled(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	canceller := NewMockCanceller(ctrl)
	s := intake.NewService(NewMockDeliveryCreator(ctrl), canceller, time.Second, logx.Nop())

	gomock.InOrder(
		canceller.EXPECT().
			Transition(gomock.Any(), "REF-1", domain.StatusCancelled, domain.AdminActor(intake.ActorID), "withdrawn upstream").
			Return(domain.Delivery{Status: domain.StatusCancelled}, nil),
		canceller.EXPECT().
			Transition(gomock.Any(), "REF-2", domain.StatusCancelled, gomock.Any(), "customer changed mind").
			Return(domain.Delivery{}, apperr.ErrTerminalState),
		canceller.EXPECT().
			Transition(gomock.Any(), "REF-3", domain.StatusCancelled, gomock.Any(), gomock.Any()).
			Return(domain.Delivery{}, errors.New("timeout")),
	)

	ctx := context.Background()
	require.NoError(t, s.Handle(ctx, intake.Event{Type: "cancelled", Delivery: domain.Delivery{Reference: "REF-1"}}))
	require.NoError(t, s.Handle(ctx, intake.Event{Type: "canceled", Delivery: domain.Delivery{Reference: "REF-2"}, Reason: "customer changed mind"}))
	require.Error(t, s.Handle(ctx, intake.Event{Type: "deleted", Delivery: domain.Delivery{Reference: "REF-3"}}))
}

func TestService_Handle_CancelOfPendingIsFlagged(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	canceller := NewMockCanceller(ctrl)
	rec := testlog.New()
	s := intake.NewService(NewMockDeliveryCreator(ctrl), canceller, time.Second, rec.Logger())

	canceller.EXPECT().
		Transition(gomock.Any(), "REF-9", domain.StatusCancelled, gomock.Any(), "withdrawn upstream").
		Return(domain.Delivery{}, fmt.Errorf("pending -> cancelled: %w", apperr.ErrInvalidTransition))

	require.NoError(t, s.Handle(context.Background(), intake.Event{Type: "cancelled", Delivery: domain.Delivery{Reference: "REF-9"}}))

	entries := rec.Entries()
	require.Len(t, entries, 1)
	require.Equal(t, "error", entries[0].Level)
	require.Equal(t, "upstream cancel needs admin action", entries[0].Msg)
}

func TestService_Handle_UnknownTypeIgnored(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	s := intake.NewService(NewMockDeliveryCreator(ctrl), NewMockCanceller(ctrl), time.Second, logx.Nop())
	require.NoError(t, s.Handle(context.Background(), intake.Event{Type: "cooking"}))
}

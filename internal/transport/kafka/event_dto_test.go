package kafka_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"delivery-lifecycle/internal/domain"
	"delivery-lifecycle/internal/service/intake"
	"delivery-lifecycle/internal/transport/kafka"
)

func TestToDomain_TrimsAndCopiesFields(t *testing.T) {
	t.Parallel()

	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	lat, lng := 55.7, 37.6

	dto := kafka.IntakeDTO{
		Type:         "  created  ",
		Reference:    "  REF-1  ",
		CustomerName: " Jane ",
		Address:      " 1 Main St ",
		Lat:          &lat,
		Lng:          &lng,
		PaymentType:  "Prepaid",
		Kind:         "RETURN",
		CreatedAt:    ts,
	}

	got := kafka.ToDomain(dto)

	require.Equal(t, intake.Event{
		Type: "created",
		Delivery: domain.Delivery{
			Reference:    "REF-1",
			CustomerName: "Jane",
			Address:      "1 Main St",
			Location:     &domain.Coordinate{Lat: lat, Lng: lng},
			PaymentType:  domain.PaymentPrepaid,
			Kind:         domain.KindReturn,
		},
		CreatedAt: ts,
	}, got)
}

func TestToDomain_PartialCoordinateIgnored(t *testing.T) {
	t.Parallel()

	lat := 1.0
	got := kafka.ToDomain(kafka.IntakeDTO{Reference: "REF-1", Lat: &lat})
	require.Nil(t, got.Delivery.Location)
}

func TestFromEvent(t *testing.T) {
	t.Parallel()

	driverID := int64(4)
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600))
	got := kafka.FromEvent(domain.HistoryEvent{
		ID:         "e1",
		DeliveryID: 9,
		Reference:  "REF-9",
		Seq:        3,
		FromStatus: domain.StatusInTransit,
		ToStatus:   domain.StatusReturned,
		Reason:     "Customer refused",
		ActorID:    "driver-4",
		ActorRole:  domain.RoleDriver,
		DriverID:   &driverID,
		At:         at,
	})

	require.Equal(t, "in_transit", got.From)
	require.Equal(t, "returned", got.To)
	require.Equal(t, int64(3), got.Seq)
	require.Equal(t, "driver", got.ActorRole)
	require.Equal(t, time.UTC, got.At.Location())
	require.True(t, got.At.Equal(at))
}

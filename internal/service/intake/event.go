package intake

import (
	"time"

	"delivery-lifecycle/internal/domain"
)

// Event is a single upstream order event.
type Event struct {
	Type      string
	Delivery  domain.Delivery
	Reason    string
	CreatedAt time.Time
}

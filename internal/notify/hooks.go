package notify

import (
	"context"

	"delivery-lifecycle/internal/domain"
	"delivery-lifecycle/internal/logx"
)

// FulfillmentHooks registers the bookkeeping hooks for closed deliveries:
// delivered closes the order, returned triggers stock reconciliation.
func FulfillmentHooks(n *Notifier, logger logx.Logger) {
	if logger == nil {
		logger = logx.Nop()
	}
	n.OnStatus(domain.StatusDelivered, func(_ context.Context, e domain.HistoryEvent) {
		logger.Info("fulfillment completed",
			logx.String("event", "fulfillment_completed"),
			logx.String("reference", e.Reference),
			logx.String("actor", e.ActorID),
		)
	})
	n.OnStatus(domain.StatusReturned, func(_ context.Context, e domain.HistoryEvent) {
		logger.Info("stock reconciliation requested",
			logx.String("event", "stock_reconciliation"),
			logx.String("reference", e.Reference),
			logx.String("reason", e.Reason),
		)
	})
}

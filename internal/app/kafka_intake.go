package app

import (
	"context"

	"delivery-lifecycle/internal/apperr"
	"delivery-lifecycle/internal/service/intake"
	"delivery-lifecycle/internal/transport/kafka"
)

type intakeHandler interface {
	Handle(ctx context.Context, e intake.Event) error
}

// makeIntakeKafka marks domain rejections as permanent so the consumer skips the message.
// Infrastructure errors stay transient and the message is redelivered.
func makeIntakeKafka(h intakeHandler) kafka.HandleFunc {
	return func(ctx context.Context, e intake.Event) error {
		err := h.Handle(ctx, e)
		if err == nil {
			return nil
		}
		if apperr.Kind(err) != "" {
			return kafka.Permanent(err)
		}
		return err
	}
}

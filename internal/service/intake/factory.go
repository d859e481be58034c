package intake

import (
	"context"
	"strings"
)

type actionFunc func(context.Context, Event) error

type actionFactory struct {
	byType map[string]actionFunc
}

func newActionFactory(onCreated, onCancelled actionFunc) *actionFactory {
	return &actionFactory{
		byType: map[string]actionFunc{
			"created":   onCreated,
			"cancelled": onCancelled,
			"canceled":  onCancelled,
			"deleted":   onCancelled,
		},
	}
}

func (f *actionFactory) get(kind string) (actionFunc, bool) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	fn, ok := f.byType[kind]
	return fn, ok
}

package mq

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

type TypedHandlerFunc func(ctx context.Context, data json.RawMessage) error

// Dispatcher routes events by type. Used by consumers bound to wildcard
// routing keys, where one queue carries several event types.
type Dispatcher struct {
	routes map[string]TypedHandlerFunc
	logger *zap.Logger
}

func NewDispatcher(logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		routes: make(map[string]TypedHandlerFunc),
		logger: logger,
	}
}

func (d *Dispatcher) Register(eventType string, h TypedHandlerFunc) {
	d.routes[eventType] = h
}

// Handle dispatches one event. Unrouted types are skipped, not failed, so a
// wildcard queue can outlive the set of types it understands.
func (d *Dispatcher) Handle(ctx context.Context, evt Event) error {
	h, ok := d.routes[evt.Type]
	if !ok {
		d.logger.Debug("No handler for event type", zap.String("type", evt.Type))
		return nil
	}

	defer func() {
		if rec := recover(); rec != nil {
			d.logger.Error("Handler panic recovered", zap.Any("panic", rec))
		}
	}()

	return h(ctx, evt.Data)
}

package gadget

import (
	"context"
	"time"
)

// EventType identifies a lifecycle transition.
type EventType string

// Lifecycle event types.
const (
	EventCreated           EventType = "gadget.created"
	EventUpdated           EventType = "gadget.updated"
	EventDecommissioned    EventType = "gadget.decommissioned"
	EventSelfDestructArmed EventType = "gadget.self_destruct_armed"
	EventDestroyed         EventType = "gadget.destroyed"
)

// Event describes a successful gadget mutation.
type Event struct {
	Type   EventType `json:"type"`
	Gadget Gadget    `json:"gadget"`
	At     time.Time `json:"at"`
}

// Notifier receives lifecycle events.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, ev Event) error

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, Event) error { return nil }

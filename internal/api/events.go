package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/gadgetd/internal/gadget"
	"github.com/nerrad567/gadgetd/internal/infrastructure/logging"
)

// EventPublisher forwards lifecycle events to a message broker.
type EventPublisher interface {
	PublishEvent(ctx context.Context, eventType string, gadgetID int64, payload []byte) error
}

// LifecycleRecorder stores lifecycle transitions as time-series points.
type LifecycleRecorder interface {
	WriteLifecycleTransition(eventType string, gadgetID int64, status, name string, at time.Time)
}

// Fanout delivers gadget lifecycle events to the WebSocket hub and, when
// configured, to MQTT and InfluxDB. It implements gadget.Notifier.
type Fanout struct {
	hub      *Hub
	mqtt     EventPublisher
	recorder LifecycleRecorder
	logger   *logging.Logger
}

// NewFanout creates a Fanout that broadcasts through hub.
func NewFanout(hub *Hub, logger *logging.Logger) *Fanout {
	return &Fanout{hub: hub, logger: logger}
}

// WithMQTT adds a broker publisher. Passing nil leaves MQTT disabled.
func (f *Fanout) WithMQTT(p EventPublisher) *Fanout {
	f.mqtt = p
	return f
}

// WithInflux adds a time-series recorder. Passing nil leaves it disabled.
func (f *Fanout) WithInflux(r LifecycleRecorder) *Fanout {
	f.recorder = r
	return f
}

// Notify implements gadget.Notifier.
func (f *Fanout) Notify(ctx context.Context, ev gadget.Event) error {
	if f.hub != nil {
		n := f.hub.Broadcast(string(ev.Type), ev)
		f.logger.Debug("lifecycle event broadcast", "type", ev.Type, "id", ev.Gadget.ID, "recipients", n)
	}

	if f.recorder != nil {
		f.recorder.WriteLifecycleTransition(string(ev.Type), ev.Gadget.ID, string(ev.Gadget.Status), ev.Gadget.Name, ev.At)
	}

	var errs []error
	if f.mqtt != nil {
		payload, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("marshalling %s event: %w", ev.Type, err)
		}
		if err := f.mqtt.PublishEvent(ctx, string(ev.Type), ev.Gadget.ID, payload); err != nil {
			errs = append(errs, fmt.Errorf("publishing %s to mqtt: %w", ev.Type, err))
		}
	}
	return errors.Join(errs...)
}

// Package mqtt publishes gadgetd lifecycle events to an MQTT broker.
//
// It wraps paho.mqtt.golang with:
//   - Connection setup from config (broker URL, auth, TLS)
//   - Auto-reconnect with exponential backoff
//   - A retained online/offline status topic backed by Last Will and Testament
//   - Validated, timeout-bounded publishing
//
// Topic layout under the configured prefix (default "gadgetd"):
//
//	gadgetd/status                       retained online/offline
//	gadgetd/events/{event_type}/{id}     one message per lifecycle event
//
// The client is publish-only. Nothing in gadgetd consumes MQTT.
package mqtt

// Package api implements the gadgetd HTTP API and WebSocket event stream.
//
// This package provides:
//   - Unauthenticated register and login endpoints
//   - A bearer-token gate that verifies the JWT and re-resolves its subject
//   - Gadget CRUD, retirement and the two-step self-destruct flow
//   - A WebSocket hub broadcasting gadget lifecycle events
//   - A fan-out Notifier delivering the same events to MQTT and InfluxDB
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//
// # Security
//
// Every /api route and /auth/me sit behind the gate. The gate rejects a
// token whose user has since been deleted or whose email no longer matches,
// so a stateless token cannot outlive its account.
//
// # Graceful Degradation
//
// MQTT and InfluxDB are optional. A disabled sink is skipped, and a failed
// publish is logged by the engine without failing the request.
package api

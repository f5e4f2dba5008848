package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteLifecycleTransition records one gadget lifecycle event.
// The write is non-blocking; a disconnected client drops the point.
func (c *Client) WriteLifecycleTransition(eventType string, gadgetID int64, status, name string, at time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(lifecyclePoint(c.measurement, eventType, gadgetID, status, name, at))
}

// lifecyclePoint tags by event type and resulting status (both low
// cardinality) and stores the gadget id and name as fields.
func lifecyclePoint(measurement, eventType string, gadgetID int64, status, name string, at time.Time) *write.Point {
	return write.NewPoint(
		measurement,
		map[string]string{
			"event":  eventType,
			"status": status,
		},
		map[string]any{
			"gadget_id": gadgetID,
			"name":      name,
		},
		at,
	)
}

// Package influxdb records gadget lifecycle transitions in InfluxDB.
//
// It wraps the official influxdb-client-go v2 library with connection setup,
// a non-blocking batched write API, and health checks.
//
// Each transition is one point in the gadget_lifecycle measurement:
//
//	gadget_lifecycle,event=gadget.destroyed,status=Destroyed gadget_id=7i,name="The Kraken"
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // telemetry off
//	}
//	defer client.Close()
//
//	client.WriteLifecycleTransition("gadget.created", 7, "Available", "The Kraken", time.Now())
package influxdb

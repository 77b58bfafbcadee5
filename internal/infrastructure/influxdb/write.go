package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteSyncResult records the outcome of a schedule synchronisation attempt.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - serial: the device serial the sync targeted
//   - result: terminal state of the sync ("confirmed", "delivered", "timeout", "failed")
//   - duration: time from dispatch to the terminal state
//
// Example:
//
//	client.WriteSyncResult("SN-0042", "confirmed", 1200*time.Millisecond)
func (c *Client) WriteSyncResult(serial, result string, duration time.Duration) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"schedule_sync",
		map[string]string{
			"serial": serial,
			"result": result,
		},
		map[string]interface{}{
			"duration_ms": duration.Milliseconds(),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteDeviceMetric records a single device telemetry measurement.
//
// Example:
//
//	client.WriteDeviceMetric("SN-0042", "supply_voltage", 23.8)
func (c *Client) WriteDeviceMetric(serial, measurement string, value float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"device_metrics",
		map[string]string{
			"serial":      serial,
			"measurement": measurement,
		},
		map[string]interface{}{
			"value": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

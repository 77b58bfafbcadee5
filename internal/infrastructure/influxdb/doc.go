// Package influxdb provides time-series telemetry recording for Fleet Core.
//
// Schedule synchronisation outcomes and device telemetry readings are written
// to InfluxDB with non-blocking, batched writes. The package is optional:
// when disabled in config, Connect returns ErrDisabled and callers run
// without telemetry.
package influxdb

// Package device manages the fleet's device inventory.
//
// A Device is a physical field controller (lighting, relay, infrared, or
// modbus endpoint) identified by a hardware serial. Devices belong to a
// family which determines how their schedule channel is addressed: the
// lighting family has a single implicit channel, while the combo family
// multiplexes relay/infrared/modbus sub-channels over one schedule list.
//
// The package provides the Device model, validation, and a SQLite-backed
// Repository.
package device

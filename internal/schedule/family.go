package schedule

import (
	"fmt"

	"github.com/cobaltfleet/fleet-core/internal/device"
)

// Control identifies a logical sub-channel on a multi-channel device.
// Single-channel families have no control concept; their rules carry an
// empty Control.
type Control string

const (
	ControlNone   Control = ""
	ControlIR     Control = "IR"
	ControlRelay  Control = "RELAY"
	ControlModbus Control = "MODBUS"
)

// Family describes how a device family addresses its schedule list.
// One engine serves every family; the descriptor carries the only two
// things that vary: whether a control channel exists, and how device
// types map to control codes.
type Family struct {
	Name device.Family

	// HasControl is true when the family's sub-channels share one wire
	// list and must be filtered by control code.
	HasControl bool

	// Controls maps device types to their control codes. Empty for
	// single-channel families.
	Controls map[device.Type]Control
}

// LightingFamily is the single-channel lighting controller family.
var LightingFamily = Family{
	Name:       device.FamilyLighting,
	HasControl: false,
}

// ComboFamily is the multi-channel combo controller family: relay,
// infrared, and modbus sub-channels sharing one schedule list.
var ComboFamily = Family{
	Name:       device.FamilyCombo,
	HasControl: true,
	Controls: map[device.Type]Control{
		device.TypeInfrared: ControlIR,
		device.TypeRelay:    ControlRelay,
		device.TypeModbus:   ControlModbus,
	},
}

// FamilyFor resolves the family descriptor for a device family name.
func FamilyFor(name device.Family) (Family, error) {
	switch name {
	case device.FamilyLighting:
		return LightingFamily, nil
	case device.FamilyCombo:
		return ComboFamily, nil
	}
	return Family{}, fmt.Errorf("%w: %q", ErrUnknownFamily, name)
}

// ControlFor resolves the control channel for a device type within the
// family. Single-channel families always resolve to ControlNone.
func (f Family) ControlFor(t device.Type) (Control, error) {
	if !f.HasControl {
		return ControlNone, nil
	}
	control, ok := f.Controls[t]
	if !ok {
		return ControlNone, fmt.Errorf("%w: type %q in family %q", ErrUnknownControl, t, f.Name)
	}
	return control, nil
}

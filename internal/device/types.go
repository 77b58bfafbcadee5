package device

import "time"

// Device represents a physical field controller managed by the fleet.
// This matches the devices table in the initial schema migration.
type Device struct {
	// Identity
	ID     string `json:"id"`
	Serial string `json:"serial"`
	Name   string `json:"name"`

	// Classification
	Type   Type   `json:"type"`
	Family Family `json:"family"`

	// Placement
	LocationID *string `json:"location_id,omitempty"`

	// Metadata
	FirmwareVersion *string `json:"firmware_version,omitempty"`

	// Health
	Status   Status     `json:"status"`
	LastSeen *time.Time `json:"last_seen,omitempty"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Type identifies the controller hardware variant.
type Type string

const (
	TypeLighting Type = "lighting"
	TypeRelay    Type = "relay"
	TypeInfrared Type = "infrared"
	TypeModbus   Type = "modbus"
	TypeCombo    Type = "combo"
)

// AllTypes returns all valid device types.
func AllTypes() []Type {
	return []Type{
		TypeLighting,
		TypeRelay,
		TypeInfrared,
		TypeModbus,
		TypeCombo,
	}
}

// Family identifies the device family a controller belongs to.
//
// The family decides how schedules are addressed: single-channel families
// carry one implicit schedule list, while multi-channel families share one
// wire list across logical sub-channels (relay, infrared, modbus) that must
// be filtered independently.
type Family string

const (
	// FamilyLighting is the single-channel lighting controller family.
	FamilyLighting Family = "lighting"

	// FamilyCombo is the multi-channel combo controller family
	// (relay + infrared + modbus sub-channels on one endpoint).
	FamilyCombo Family = "combo"
)

// AllFamilies returns all valid device families.
func AllFamilies() []Family {
	return []Family{FamilyLighting, FamilyCombo}
}

// Status represents the last known connectivity state of a device.
type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
	StatusUnknown Status = "unknown"
)

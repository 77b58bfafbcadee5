package device

import (
	"fmt"
	"regexp"
	"strings"
)

// Validation constants.
const (
	maxNameLength   = 100
	maxSerialLength = 64
	serialPattern   = `^[A-Za-z0-9][A-Za-z0-9._-]*$`
)

var serialRegex = regexp.MustCompile(serialPattern)

// Pre-computed validation sets for O(1) lookups.
var (
	validTypes    map[Type]struct{}
	validFamilies map[Family]struct{}
)

func init() {
	validTypes = make(map[Type]struct{}, len(AllTypes()))
	for _, t := range AllTypes() {
		validTypes[t] = struct{}{}
	}
	validFamilies = make(map[Family]struct{}, len(AllFamilies()))
	for _, f := range AllFamilies() {
		validFamilies[f] = struct{}{}
	}
}

// Validate performs comprehensive validation on a device.
// Returns an error describing the first validation failure found.
func Validate(d *Device) error {
	if d == nil {
		return ErrInvalid
	}

	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalid)
	}
	if len(d.Name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalid, maxNameLength)
	}

	if d.Serial == "" {
		return fmt.Errorf("%w: serial is required", ErrInvalid)
	}
	if len(d.Serial) > maxSerialLength {
		return fmt.Errorf("%w: serial exceeds %d characters", ErrInvalid, maxSerialLength)
	}
	if !serialRegex.MatchString(d.Serial) {
		return fmt.Errorf("%w: serial must be alphanumeric with ._- separators", ErrInvalid)
	}

	if _, ok := validTypes[d.Type]; !ok {
		return fmt.Errorf("%w: unknown type %q", ErrInvalid, d.Type)
	}
	if _, ok := validFamilies[d.Family]; !ok {
		return fmt.Errorf("%w: unknown family %q", ErrInvalid, d.Family)
	}

	return nil
}

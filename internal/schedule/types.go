package schedule

// Kind classifies a schedule rule. The wire value matches the name.
type Kind string

const (
	// KindRegular is a recurring rule selected by weekday names or
	// day-of-month ranges.
	KindRegular Kind = "Regular"

	// KindCustom is a rule bound to explicit calendar dates.
	KindCustom Kind = "Custom"

	// KindHoliday suppresses operation on its dates. Holiday rules
	// carry no start or stop time.
	KindHoliday Kind = "Holiday"
)

// Valid returns true for a known rule kind.
func (k Kind) Valid() bool {
	switch k {
	case KindRegular, KindCustom, KindHoliday:
		return true
	}
	return false
}

// ScheduleRule is the canonical in-memory representation of one
// automation rule, as edited in the dashboard.
type ScheduleRule struct {
	Kind      Kind        `json:"kind"`
	StartTime string      `json:"start_time"`
	StopTime  string      `json:"stop_time"`
	Days      []string    `json:"days,omitempty"`
	Dates     []DateToken `json:"dates,omitempty"`
	DayRanges []DayRange  `json:"day_ranges,omitempty"`
	Control   Control     `json:"control,omitempty"`
}

// Equal reports structural equality over all fields, ignoring nil
// versus empty slice distinctions.
func (r ScheduleRule) Equal(other ScheduleRule) bool {
	if r.Kind != other.Kind || r.StartTime != other.StartTime ||
		r.StopTime != other.StopTime || r.Control != other.Control {
		return false
	}
	if len(r.Days) != len(other.Days) ||
		len(r.Dates) != len(other.Dates) ||
		len(r.DayRanges) != len(other.DayRanges) {
		return false
	}
	for i := range r.Days {
		if r.Days[i] != other.Days[i] {
			return false
		}
	}
	for i := range r.Dates {
		if r.Dates[i] != other.Dates[i] {
			return false
		}
	}
	for i := range r.DayRanges {
		if r.DayRanges[i] != other.DayRanges[i] {
			return false
		}
	}
	return true
}

// ScheduleSet is the ordered rule collection for one editing session,
// scoped to a single device and, for multi-channel families, one
// control channel. Mutations are local until the set is submitted.
type ScheduleSet struct {
	DeviceSerial string         `json:"device_serial"`
	Control      Control        `json:"control,omitempty"`
	Rules        []ScheduleRule `json:"rules"`
}

// NewScheduleSet creates an empty set for a device and channel.
func NewScheduleSet(serial string, control Control) *ScheduleSet {
	return &ScheduleSet{
		DeviceSerial: serial,
		Control:      control,
		Rules:        []ScheduleRule{},
	}
}

// Add validates the rule and appends it. The session's control channel
// is stamped onto the rule so the caller cannot cross channels.
func (s *ScheduleSet) Add(rule ScheduleRule) error {
	rule.Control = s.Control
	if err := Validate(rule); err != nil {
		return err
	}
	s.Rules = append(s.Rules, rule)
	return nil
}

// Update validates the rule and replaces the entry at index.
func (s *ScheduleSet) Update(index int, rule ScheduleRule) error {
	if index < 0 || index >= len(s.Rules) {
		return ErrIndexOutOfRange
	}
	rule.Control = s.Control
	if err := Validate(rule); err != nil {
		return err
	}
	s.Rules[index] = rule
	return nil
}

// Delete removes the entry at index, preserving order.
func (s *ScheduleSet) Delete(index int) error {
	if index < 0 || index >= len(s.Rules) {
		return ErrIndexOutOfRange
	}
	s.Rules = append(s.Rules[:index], s.Rules[index+1:]...)
	return nil
}

// Replace swaps the whole rule list for a device-authoritative one.
func (s *ScheduleSet) Replace(rules []ScheduleRule) {
	if rules == nil {
		rules = []ScheduleRule{}
	}
	s.Rules = rules
}

// Len returns the number of rules in the set.
func (s *ScheduleSet) Len() int {
	return len(s.Rules)
}

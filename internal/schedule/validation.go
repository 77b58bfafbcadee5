package schedule

import (
	"fmt"
	"regexp"
)

// timePattern matches 24-hour wall-clock times HH:MM:SS.
var timePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]:[0-5][0-9]$`)

// Validate checks a rule against the model invariants. It returns the
// first violation found as a sentinel error, wrapped with detail.
//
// Holiday rules are all-day suppressions and must carry no times; every
// other kind needs distinct, well-formed start and stop times. All
// kinds need at least one selector (days, dates, or day ranges).
func Validate(rule ScheduleRule) error {
	if !rule.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, rule.Kind)
	}

	if rule.Kind == KindHoliday {
		if rule.StartTime != "" || rule.StopTime != "" {
			return fmt.Errorf("%w: holiday rules carry no times", ErrInvalidTime)
		}
	} else {
		if rule.StartTime == "" || rule.StopTime == "" {
			return ErrMissingTime
		}
		if !timePattern.MatchString(rule.StartTime) {
			return fmt.Errorf("%w: start %q", ErrInvalidTime, rule.StartTime)
		}
		if !timePattern.MatchString(rule.StopTime) {
			return fmt.Errorf("%w: stop %q", ErrInvalidTime, rule.StopTime)
		}
		if rule.StartTime == rule.StopTime {
			return ErrDegenerateInterval
		}
	}

	if len(rule.Days) == 0 && len(rule.Dates) == 0 && len(rule.DayRanges) == 0 {
		return ErrNoSelector
	}

	for _, day := range rule.Days {
		if !IsValidDay(day) {
			return fmt.Errorf("%w: %q", ErrInvalidDay, day)
		}
	}
	for _, date := range rule.Dates {
		if _, err := ParseDateToken(date.String()); err != nil {
			return err
		}
	}
	for _, dr := range rule.DayRanges {
		if _, err := ParseDayRange(dr.String()); err != nil {
			return err
		}
	}

	return nil
}

// ValidateAll validates every rule in the set, reporting the first
// failing index. Used as the submission gate.
func ValidateAll(set *ScheduleSet) error {
	for i, rule := range set.Rules {
		if err := Validate(rule); err != nil {
			return fmt.Errorf("rule %d: %w", i, err)
		}
	}
	return nil
}

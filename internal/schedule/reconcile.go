package schedule

import "fmt"

// Reconcile turns a device-returned schedule snapshot into the rule
// list for one session: records are filtered to the session's control
// channel, decoded, and returned as the complete replacement list. The
// device is the source of truth; callers replace their set wholesale,
// never merge.
//
// A nil snapshot means the device returned no data (ErrNoSnapshot); a
// record that fails to decode marks the whole snapshot malformed. Both
// are recoverable: the caller keeps its prior local state.
func Reconcile(snapshot []WireRecord, family Family, control Control) ([]ScheduleRule, error) {
	if snapshot == nil {
		return nil, ErrNoSnapshot
	}

	filtered := FilterByControl(snapshot, family, control)
	rules := make([]ScheduleRule, 0, len(filtered))
	for i, rec := range filtered {
		rule, err := Decode(rec)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", ErrMalformedSnapshot, i, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

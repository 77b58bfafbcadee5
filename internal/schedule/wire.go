package schedule

import "strings"

// WireRecord is the device's on-the-wire schedule representation:
// abbreviated keys, list fields comma-joined rather than structured.
// Absent fields decode to empty strings, never null.
type WireRecord struct {
	Type    string `json:"TYPE"`
	Control string `json:"CONTROL,omitempty"`
	STT     string `json:"STT"`
	SFT     string `json:"SFT"`
	Days    string `json:"DAYS"`
	Date    string `json:"DATE"`
	PDate   string `json:"P_DATE"`
}

// Encode maps a canonical rule to its wire record. List fields are
// joined with ", "; Holiday rules get their times emptied regardless of
// what the caller left in them.
func Encode(rule ScheduleRule) WireRecord {
	rec := WireRecord{
		Type:    string(rule.Kind),
		Control: string(rule.Control),
		STT:     rule.StartTime,
		SFT:     rule.StopTime,
		Days:    joinDays(rule.Days),
		Date:    joinTokens(rule.Dates),
		PDate:   joinTokens(rule.DayRanges),
	}
	if rule.Kind == KindHoliday {
		rec.STT = ""
		rec.SFT = ""
	}
	return rec
}

// EncodeAll encodes every rule in the set, in order.
func EncodeAll(set *ScheduleSet) []WireRecord {
	records := make([]WireRecord, len(set.Rules))
	for i, rule := range set.Rules {
		records[i] = Encode(rule)
	}
	return records
}

// Decode maps a wire record back to a canonical rule. List fields are
// split on commas; each token must parse under the token grammar.
func Decode(rec WireRecord) (ScheduleRule, error) {
	rule := ScheduleRule{
		Kind:      Kind(rec.Type),
		StartTime: rec.STT,
		StopTime:  rec.SFT,
		Control:   Control(rec.Control),
	}

	rule.Days = splitTokens(rec.Days)
	for _, day := range rule.Days {
		if !IsValidDay(day) {
			return ScheduleRule{}, ErrInvalidDay
		}
	}

	for _, s := range splitTokens(rec.Date) {
		token, err := ParseDateToken(s)
		if err != nil {
			return ScheduleRule{}, err
		}
		rule.Dates = append(rule.Dates, token)
	}

	for _, s := range splitTokens(rec.PDate) {
		token, err := ParseDayRange(s)
		if err != nil {
			return ScheduleRule{}, err
		}
		rule.DayRanges = append(rule.DayRanges, token)
	}

	return rule, nil
}

// FilterByControl selects the records belonging to one control channel.
// Families without a control concept pass every record through.
func FilterByControl(records []WireRecord, family Family, control Control) []WireRecord {
	if !family.HasControl {
		return records
	}
	filtered := make([]WireRecord, 0, len(records))
	for _, rec := range records {
		if Control(rec.Control) == control {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

func joinDays(days []string) string {
	return strings.Join(days, tokenSeparator)
}

package schedule

import (
	"errors"
	"testing"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		rule ScheduleRule
		want WireRecord
	}{
		{
			name: "regular rule with days",
			rule: ScheduleRule{
				Kind:      KindRegular,
				StartTime: "08:00:00",
				StopTime:  "20:00:00",
				Days:      []string{"Monday", "Tuesday"},
			},
			want: WireRecord{
				Type: "Regular",
				STT:  "08:00:00",
				SFT:  "20:00:00",
				Days: "Monday, Tuesday",
			},
		},
		{
			name: "holiday rule empties times",
			rule: ScheduleRule{
				Kind:      KindHoliday,
				StartTime: "08:00:00",
				StopTime:  "20:00:00",
				Dates:     []DateToken{{Start: "2024-12-25"}},
			},
			want: WireRecord{
				Type: "Holiday",
				Date: "2024-12-25",
			},
		},
		{
			name: "combo channel rule with control and ranges",
			rule: ScheduleRule{
				Kind:      KindCustom,
				StartTime: "06:00:00",
				StopTime:  "18:00:00",
				Dates:     []DateToken{{Start: "2024-06-01", End: "2024-06-15"}},
				DayRanges: []DayRange{{From: 1, To: 10}, {From: 20}},
				Control:   ControlIR,
			},
			want: WireRecord{
				Type:    "Custom",
				Control: "IR",
				STT:     "06:00:00",
				SFT:     "18:00:00",
				Date:    "2024-06-01>2024-06-15",
				PDate:   "1-10, 20",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Encode(tt.rule)
			if got != tt.want {
				t.Errorf("Encode() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	// decode(encode(r)) must be observationally equal to r for every
	// valid rule.
	rules := []ScheduleRule{
		{
			Kind:      KindRegular,
			StartTime: "08:00:00",
			StopTime:  "20:00:00",
			Days:      []string{"Monday", "Tuesday", "Sunday"},
		},
		{
			Kind:      KindCustom,
			StartTime: "06:30:00",
			StopTime:  "22:45:00",
			Dates:     []DateToken{{Start: "2024-12-24", End: "2024-12-26"}, {Start: "2025-01-01"}},
			Control:   ControlRelay,
		},
		{
			Kind:  KindHoliday,
			Dates: []DateToken{{Start: "2024-12-25"}},
		},
		{
			Kind:      KindRegular,
			StartTime: "00:00:00",
			StopTime:  "23:59:59",
			DayRanges: []DayRange{{From: 1, To: 15}, {From: 28}},
			Control:   ControlModbus,
		},
	}

	for _, rule := range rules {
		if err := Validate(rule); err != nil {
			t.Fatalf("fixture rule invalid: %v", err)
		}
		decoded, err := Decode(Encode(rule))
		if err != nil {
			t.Fatalf("Decode(Encode(%+v)) error: %v", rule, err)
		}
		if !decoded.Equal(rule) {
			t.Errorf("round trip changed rule:\n in: %+v\nout: %+v", rule, decoded)
		}
	}
}

func TestDecodeAcceptsBareCommas(t *testing.T) {
	rec := WireRecord{
		Type: "Regular",
		STT:  "08:00:00",
		SFT:  "20:00:00",
		Days: "Monday,Tuesday",
	}
	rule, err := Decode(rec)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if len(rule.Days) != 2 || rule.Days[0] != "Monday" || rule.Days[1] != "Tuesday" {
		t.Errorf("Days = %v, want [Monday Tuesday]", rule.Days)
	}
}

func TestDecodeRejectsMalformedTokens(t *testing.T) {
	tests := []struct {
		name    string
		rec     WireRecord
		wantErr error
	}{
		{
			name:    "bad date",
			rec:     WireRecord{Type: "Custom", Date: "soon"},
			wantErr: ErrInvalidDate,
		},
		{
			name:    "bad day range",
			rec:     WireRecord{Type: "Regular", PDate: "1-40"},
			wantErr: ErrInvalidDayRange,
		},
		{
			name:    "bad weekday",
			rec:     WireRecord{Type: "Regular", Days: "Funday"},
			wantErr: ErrInvalidDay,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.rec); !errors.Is(err, tt.wantErr) {
				t.Errorf("Decode() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFilterByControl(t *testing.T) {
	records := []WireRecord{
		{Type: "Regular", Control: "IR"},
		{Type: "Regular", Control: "RELAY"},
		{Type: "Regular", Control: "IR"},
		{Type: "Regular", Control: "MODBUS"},
	}

	filtered := FilterByControl(records, ComboFamily, ControlIR)
	if len(filtered) != 2 {
		t.Fatalf("FilterByControl() returned %d records, want 2", len(filtered))
	}
	for _, rec := range filtered {
		if rec.Control != "IR" {
			t.Errorf("filtered record has control %q, want IR", rec.Control)
		}
	}

	// Single-channel families pass everything through unfiltered.
	all := FilterByControl(records, LightingFamily, ControlNone)
	if len(all) != len(records) {
		t.Errorf("single-channel filter returned %d records, want %d", len(all), len(records))
	}
}

package schedule

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		rule    ScheduleRule
		wantErr error
	}{
		{
			name: "valid regular rule",
			rule: ScheduleRule{
				Kind:      KindRegular,
				StartTime: "08:00:00",
				StopTime:  "20:00:00",
				Days:      []string{"Monday", "Tuesday"},
			},
		},
		{
			name: "valid custom rule with date range",
			rule: ScheduleRule{
				Kind:      KindCustom,
				StartTime: "06:30:00",
				StopTime:  "22:15:00",
				Dates:     []DateToken{{Start: "2024-12-24", End: "2024-12-26"}},
			},
		},
		{
			name: "valid holiday rule without times",
			rule: ScheduleRule{
				Kind:  KindHoliday,
				Dates: []DateToken{{Start: "2024-12-25"}},
			},
		},
		{
			name: "valid rule with day ranges",
			rule: ScheduleRule{
				Kind:      KindRegular,
				StartTime: "09:00:00",
				StopTime:  "17:00:00",
				DayRanges: []DayRange{{From: 1, To: 15}},
			},
		},
		{
			name: "missing start time",
			rule: ScheduleRule{
				Kind:     KindRegular,
				StopTime: "20:00:00",
				Days:     []string{"Monday"},
			},
			wantErr: ErrMissingTime,
		},
		{
			name: "missing stop time",
			rule: ScheduleRule{
				Kind:      KindCustom,
				StartTime: "08:00:00",
				Dates:     []DateToken{{Start: "2024-06-01"}},
			},
			wantErr: ErrMissingTime,
		},
		{
			name: "degenerate interval",
			rule: ScheduleRule{
				Kind:      KindRegular,
				StartTime: "08:00:00",
				StopTime:  "08:00:00",
				Days:      []string{"Monday"},
			},
			wantErr: ErrDegenerateInterval,
		},
		{
			name: "no selector",
			rule: ScheduleRule{
				Kind:      KindRegular,
				StartTime: "08:00:00",
				StopTime:  "20:00:00",
			},
			wantErr: ErrNoSelector,
		},
		{
			name: "holiday without selector",
			rule: ScheduleRule{
				Kind: KindHoliday,
			},
			wantErr: ErrNoSelector,
		},
		{
			name: "malformed start time",
			rule: ScheduleRule{
				Kind:      KindRegular,
				StartTime: "8am",
				StopTime:  "20:00:00",
				Days:      []string{"Monday"},
			},
			wantErr: ErrInvalidTime,
		},
		{
			name: "hour out of range",
			rule: ScheduleRule{
				Kind:      KindRegular,
				StartTime: "24:00:00",
				StopTime:  "20:00:00",
				Days:      []string{"Monday"},
			},
			wantErr: ErrInvalidTime,
		},
		{
			name: "unknown weekday",
			rule: ScheduleRule{
				Kind:      KindRegular,
				StartTime: "08:00:00",
				StopTime:  "20:00:00",
				Days:      []string{"Moonday"},
			},
			wantErr: ErrInvalidDay,
		},
		{
			name: "unknown kind",
			rule: ScheduleRule{
				Kind:      Kind("Weekly"),
				StartTime: "08:00:00",
				StopTime:  "20:00:00",
				Days:      []string{"Monday"},
			},
			wantErr: ErrInvalidKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.rule)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateHolidayRejectsTimes(t *testing.T) {
	// Holiday rules suppress the whole day; times on them would be
	// silently scrubbed at encode time, so the model rejects them up
	// front.
	rule := ScheduleRule{
		Kind:      KindHoliday,
		StartTime: "08:00:00",
		StopTime:  "20:00:00",
		Dates:     []DateToken{{Start: "2024-12-25"}},
	}
	if err := Validate(rule); !errors.Is(err, ErrInvalidTime) {
		t.Fatalf("Validate() error = %v, want ErrInvalidTime", err)
	}

	rule.StartTime = ""
	rule.StopTime = ""
	if err := Validate(rule); err != nil {
		t.Fatalf("Validate() error for timeless holiday: %v", err)
	}
}

func TestValidateAll(t *testing.T) {
	set := NewScheduleSet("SN-0042", ControlNone)
	set.Rules = []ScheduleRule{
		{Kind: KindRegular, StartTime: "08:00:00", StopTime: "20:00:00", Days: []string{"Monday"}},
		{Kind: KindRegular, StartTime: "08:00:00", StopTime: "08:00:00", Days: []string{"Friday"}},
	}

	err := ValidateAll(set)
	if !errors.Is(err, ErrDegenerateInterval) {
		t.Fatalf("ValidateAll() error = %v, want ErrDegenerateInterval", err)
	}
}

func TestScheduleSetMutations(t *testing.T) {
	set := NewScheduleSet("SN-0042", ControlRelay)

	rule := ScheduleRule{
		Kind:      KindRegular,
		StartTime: "08:00:00",
		StopTime:  "20:00:00",
		Days:      []string{"Monday"},
	}
	if err := set.Add(rule); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if set.Rules[0].Control != ControlRelay {
		t.Errorf("Add() control = %q, want %q", set.Rules[0].Control, ControlRelay)
	}

	updated := rule
	updated.StopTime = "21:00:00"
	if err := set.Update(0, updated); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if set.Rules[0].StopTime != "21:00:00" {
		t.Errorf("Update() stop = %q, want 21:00:00", set.Rules[0].StopTime)
	}

	if err := set.Update(5, updated); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Update(5) error = %v, want ErrIndexOutOfRange", err)
	}

	invalid := rule
	invalid.StartTime = ""
	if err := set.Add(invalid); !errors.Is(err, ErrMissingTime) {
		t.Errorf("Add(invalid) error = %v, want ErrMissingTime", err)
	}
	if set.Len() != 1 {
		t.Errorf("Len() = %d after rejected add, want 1", set.Len())
	}

	if err := set.Delete(0); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if set.Len() != 0 {
		t.Errorf("Len() = %d after delete, want 0", set.Len())
	}
	if err := set.Delete(0); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Delete(0) on empty set error = %v, want ErrIndexOutOfRange", err)
	}
}

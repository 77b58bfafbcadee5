package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// tokenSeparator joins list fields on the wire. Splitting accepts a bare
// comma too, since devices are not consistent about the space.
const tokenSeparator = ", "

// isoDateLayout is the calendar date format used in date tokens.
const isoDateLayout = "2006-01-02"

// DateToken is a calendar-date selector: a single ISO date, or an
// inclusive range when End is set. Wire forms: "2024-12-25" and
// "2024-12-24>2024-12-26".
type DateToken struct {
	Start string
	End   string
}

// IsRange reports whether the token covers more than one date.
func (t DateToken) IsRange() bool {
	return t.End != ""
}

// String formats the token in its wire form.
func (t DateToken) String() string {
	if t.IsRange() {
		return t.Start + ">" + t.End
	}
	return t.Start
}

// ParseDateToken parses a single date or a "start>end" range.
func ParseDateToken(s string) (DateToken, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DateToken{}, fmt.Errorf("%w: empty token", ErrInvalidDate)
	}

	start, end, isRange := strings.Cut(s, ">")
	if _, err := time.Parse(isoDateLayout, start); err != nil {
		return DateToken{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	if !isRange {
		return DateToken{Start: start}, nil
	}

	if _, err := time.Parse(isoDateLayout, end); err != nil {
		return DateToken{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	if end < start { // ISO dates sort lexicographically
		return DateToken{}, fmt.Errorf("%w: range end before start in %q", ErrInvalidDate, s)
	}
	return DateToken{Start: start, End: end}, nil
}

// DayRange is a day-of-month selector: a single day 1-31, or an
// inclusive range when To is set. Wire forms: "15" and "10-20".
type DayRange struct {
	From int
	To   int
}

// IsRange reports whether the token covers more than one day.
func (r DayRange) IsRange() bool {
	return r.To != 0
}

// String formats the token in its wire form.
func (r DayRange) String() string {
	if r.IsRange() {
		return strconv.Itoa(r.From) + "-" + strconv.Itoa(r.To)
	}
	return strconv.Itoa(r.From)
}

// ParseDayRange parses a single day-of-month or a "from-to" range.
func ParseDayRange(s string) (DayRange, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DayRange{}, fmt.Errorf("%w: empty token", ErrInvalidDayRange)
	}

	fromStr, toStr, isRange := strings.Cut(s, "-")
	from, err := parseMonthDay(fromStr)
	if err != nil {
		return DayRange{}, fmt.Errorf("%w: %q", ErrInvalidDayRange, s)
	}
	if !isRange {
		return DayRange{From: from}, nil
	}

	to, err := parseMonthDay(toStr)
	if err != nil {
		return DayRange{}, fmt.Errorf("%w: %q", ErrInvalidDayRange, s)
	}
	if to < from {
		return DayRange{}, fmt.Errorf("%w: range end before start in %q", ErrInvalidDayRange, s)
	}
	return DayRange{From: from, To: to}, nil
}

func parseMonthDay(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n < 1 || n > 31 {
		return 0, fmt.Errorf("day %d out of range", n)
	}
	return n, nil
}

// weekdayNames is the valid day-name vocabulary, wire spelling.
var weekdayNames = map[string]bool{
	"Monday":    true,
	"Tuesday":   true,
	"Wednesday": true,
	"Thursday":  true,
	"Friday":    true,
	"Saturday":  true,
	"Sunday":    true,
}

// IsValidDay reports whether s is a recognised weekday name.
func IsValidDay(s string) bool {
	return weekdayNames[s]
}

// joinTokens renders a token list as a comma-joined wire string.
func joinTokens[T fmt.Stringer](tokens []T) string {
	if len(tokens) == 0 {
		return ""
	}
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.String()
	}
	return strings.Join(parts, tokenSeparator)
}

// splitTokens breaks a comma-joined wire string into trimmed tokens,
// dropping empties. Idempotent under join: split(join(split(s))) ==
// split(s).
func splitTokens(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	tokens := make([]string, 0, len(raw))
	for _, part := range raw {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			tokens = append(tokens, trimmed)
		}
	}
	return tokens
}

package icalendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Frequency is the FREQ part of a recurrence rule.
type Frequency string

const (
	FreqSecondly Frequency = "SECONDLY"
	FreqMinutely Frequency = "MINUTELY"
	FreqHourly   Frequency = "HOURLY"
	FreqDaily    Frequency = "DAILY"
	FreqWeekly   Frequency = "WEEKLY"
	FreqMonthly  Frequency = "MONTHLY"
	FreqYearly   Frequency = "YEARLY"
)

func validFrequency(f Frequency) bool {
	switch f {
	case FreqSecondly, FreqMinutely, FreqHourly, FreqDaily, FreqWeekly, FreqMonthly, FreqYearly:
		return true
	default:
		return false
	}
}

// Weekday is a two-letter RFC 5545 weekday code.
type Weekday string

const (
	Sunday    Weekday = "SU"
	Monday    Weekday = "MO"
	Tuesday   Weekday = "TU"
	Wednesday Weekday = "WE"
	Thursday  Weekday = "TH"
	Friday    Weekday = "FR"
	Saturday  Weekday = "SA"
)

var weekdayCodes = map[Weekday]time.Weekday{
	Sunday:    time.Sunday,
	Monday:    time.Monday,
	Tuesday:   time.Tuesday,
	Wednesday: time.Wednesday,
	Thursday:  time.Thursday,
	Friday:    time.Friday,
	Saturday:  time.Saturday,
}

// weekdayToTime converts a weekday code to its time.Weekday.
func weekdayToTime(w Weekday) (time.Weekday, bool) {
	wd, ok := weekdayCodes[Weekday(strings.ToUpper(string(w)))]
	return wd, ok
}

// weekdayFromTime converts a time.Weekday to its two-letter code.
func weekdayFromTime(wd time.Weekday) Weekday {
	switch wd {
	case time.Sunday:
		return Sunday
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	default:
		return Saturday
	}
}

// ByDayRule is one BYDAY entry: a weekday with an optional ordinal.
// Ordinal 0 means every matching weekday; negative ordinals count from
// the end of the period.
type ByDayRule struct {
	Ordinal int
	Weekday Weekday
}

// RecurrenceRule is a decoded RRULE value. Zero values mean unset:
// Interval 0 behaves as 1, Count 0 means uncounted, a nil Until means
// unbounded. Count and Until never combine.
type RecurrenceRule struct {
	Frequency  Frequency
	Interval   int
	Count      int
	Until      *DateTime
	ByMonth    []int
	ByWeekNo   []int
	ByYearDay  []int
	ByMonthDay []int
	ByDay      []ByDayRule
	ByHour     []int
	ByMinute   []int
	BySecond   []int
	BySetPos   []int
	WeekStart  Weekday
	RScale     string
}

// validateRule checks the semantic constraints shared by parsing and
// formatting. It returns an empty string when the rule is valid.
func validateRule(r RecurrenceRule) string {
	if r.Frequency == "" {
		return "rule is missing FREQ"
	}
	if !validFrequency(r.Frequency) {
		return "unknown frequency " + string(r.Frequency)
	}
	if r.Interval < 0 {
		return "INTERVAL must be at least 1"
	}
	if r.Count < 0 {
		return "COUNT must be at least 1"
	}
	if r.Count != 0 && r.Until != nil {
		return "COUNT and UNTIL are mutually exclusive"
	}

	checks := []struct {
		key    string
		values []int
		min    int
		max    int
		signed bool
	}{
		{"BYMONTH", r.ByMonth, 1, 12, false},
		{"BYWEEKNO", r.ByWeekNo, 1, 53, true},
		{"BYYEARDAY", r.ByYearDay, 1, 366, true},
		{"BYMONTHDAY", r.ByMonthDay, 1, 31, true},
		{"BYHOUR", r.ByHour, 0, 23, false},
		{"BYMINUTE", r.ByMinute, 0, 59, false},
		{"BYSECOND", r.BySecond, 0, 60, false},
		{"BYSETPOS", r.BySetPos, 1, 366, true},
	}
	for _, check := range checks {
		for _, n := range check.values {
			mag := n
			if check.signed {
				if n == 0 {
					return check.key + " values must be nonzero"
				}
				if mag < 0 {
					mag = -mag
				}
			} else if n < 0 {
				return check.key + " values must not be negative"
			}
			if mag < check.min || mag > check.max {
				return fmt.Sprintf("%s value %d out of range", check.key, n)
			}
		}
	}

	for _, day := range r.ByDay {
		if _, ok := weekdayToTime(day.Weekday); !ok {
			return "unknown weekday " + string(day.Weekday)
		}
		mag := day.Ordinal
		if mag < 0 {
			mag = -mag
		}
		if mag > 53 {
			return fmt.Sprintf("BYDAY ordinal %d out of range", day.Ordinal)
		}
	}
	if r.WeekStart != "" {
		if _, ok := weekdayToTime(r.WeekStart); !ok {
			return "unknown weekday " + string(r.WeekStart)
		}
	}
	return ""
}

// ParseRecurrenceRule decodes an RRULE value. Keys may arrive in any
// order; unknown keys, duplicated keys, out-of-range values and a rule
// carrying both COUNT and UNTIL are decode errors.
func ParseRecurrenceRule(value string) (RecurrenceRule, error) {
	const op = "rrule.parse"

	var r RecurrenceRule
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return r, newDecodeError(op, "", value, "empty recurrence rule")
	}

	seen := make(map[string]bool)
	for _, part := range strings.Split(trimmed, ";") {
		key, val, found := strings.Cut(part, "=")
		if !found || key == "" {
			return r, newDecodeError(op, "", value, "malformed rule part "+strconv.Quote(part))
		}
		key = strings.ToUpper(key)
		if seen[key] {
			return r, newDecodeError(op, "", value, "duplicate rule part "+key)
		}
		seen[key] = true

		var err error
		switch key {
		case "FREQ":
			r.Frequency = Frequency(strings.ToUpper(val))
		case "INTERVAL":
			r.Interval, err = parseRuleInt(op, key, val, value)
			if err == nil && r.Interval < 1 {
				err = newDecodeError(op, "", value, "INTERVAL must be at least 1")
			}
		case "COUNT":
			r.Count, err = parseRuleInt(op, key, val, value)
			if err == nil && r.Count < 1 {
				err = newDecodeError(op, "", value, "COUNT must be at least 1")
			}
		case "UNTIL":
			var until DateTime
			until, err = ParseDateTime(val, nil)
			if err == nil {
				r.Until = &until
			}
		case "BYMONTH":
			r.ByMonth, err = parseRuleIntList(op, key, val, value)
		case "BYWEEKNO":
			r.ByWeekNo, err = parseRuleIntList(op, key, val, value)
		case "BYYEARDAY":
			r.ByYearDay, err = parseRuleIntList(op, key, val, value)
		case "BYMONTHDAY":
			r.ByMonthDay, err = parseRuleIntList(op, key, val, value)
		case "BYDAY":
			r.ByDay, err = parseByDayList(op, val, value)
		case "BYHOUR":
			r.ByHour, err = parseRuleIntList(op, key, val, value)
		case "BYMINUTE":
			r.ByMinute, err = parseRuleIntList(op, key, val, value)
		case "BYSECOND":
			r.BySecond, err = parseRuleIntList(op, key, val, value)
		case "BYSETPOS":
			r.BySetPos, err = parseRuleIntList(op, key, val, value)
		case "WKST":
			r.WeekStart = Weekday(strings.ToUpper(val))
		case "RSCALE":
			r.RScale = strings.ToUpper(val)
		default:
			return r, newDecodeError(op, "", value, "unknown rule part "+key)
		}
		if err != nil {
			return r, err
		}
	}

	if msg := validateRule(r); msg != "" {
		return r, newDecodeError(op, "", value, msg)
	}
	return r, nil
}

func parseRuleInt(op, key, val, rule string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return 0, newDecodeError(op, "", rule, key+" value is not an integer")
	}
	return n, nil
}

func parseRuleIntList(op, key, val, rule string) ([]int, error) {
	parts := strings.Split(val, ",")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, newDecodeError(op, "", rule, key+" value is not an integer")
		}
		out = append(out, n)
	}
	return out, nil
}

func parseByDayList(op, val, rule string) ([]ByDayRule, error) {
	parts := strings.Split(val, ",")
	out := make([]ByDayRule, 0, len(parts))
	for _, part := range parts {
		entry, err := parseByDayEntry(op, strings.TrimSpace(part), rule)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}

func parseByDayEntry(op, s, rule string) (ByDayRule, error) {
	if len(s) < 2 {
		return ByDayRule{}, newDecodeError(op, "", rule, "malformed BYDAY entry "+strconv.Quote(s))
	}
	code := Weekday(strings.ToUpper(s[len(s)-2:]))
	if _, ok := weekdayToTime(code); !ok {
		return ByDayRule{}, newDecodeError(op, "", rule, "unknown weekday in BYDAY entry "+strconv.Quote(s))
	}
	ordPart := s[:len(s)-2]
	if ordPart == "" {
		return ByDayRule{Weekday: code}, nil
	}
	n, err := strconv.Atoi(ordPart)
	if err != nil || n == 0 {
		return ByDayRule{}, newDecodeError(op, "", rule, "malformed BYDAY ordinal in "+strconv.Quote(s))
	}
	return ByDayRule{Ordinal: n, Weekday: code}, nil
}

// FormatRecurrenceRule renders the rule with a fixed key order, so a
// given rule always serializes to the same text: RSCALE, FREQ, INTERVAL,
// COUNT or UNTIL, the BY* lists from largest to smallest unit, then
// WKST. An invalid rule is an encode error.
func FormatRecurrenceRule(r RecurrenceRule) (string, error) {
	const op = "rrule.format"

	if msg := validateRule(r); msg != "" {
		return "", newEncodeError(op, "", msg)
	}

	parts := make([]string, 0, 8)
	if r.RScale != "" {
		parts = append(parts, "RSCALE="+r.RScale)
	}
	parts = append(parts, "FREQ="+string(r.Frequency))
	if r.Interval > 1 {
		parts = append(parts, "INTERVAL="+strconv.Itoa(r.Interval))
	}
	if r.Count > 0 {
		parts = append(parts, "COUNT="+strconv.Itoa(r.Count))
	} else if r.Until != nil {
		parts = append(parts, "UNTIL="+r.Until.Format())
	}

	lists := []struct {
		key    string
		values []int
	}{
		{"BYMONTH", r.ByMonth},
		{"BYWEEKNO", r.ByWeekNo},
		{"BYYEARDAY", r.ByYearDay},
		{"BYMONTHDAY", r.ByMonthDay},
	}
	for _, list := range lists {
		if len(list.values) > 0 {
			parts = append(parts, list.key+"="+formatIntList(list.values))
		}
	}
	if len(r.ByDay) > 0 {
		entries := make([]string, 0, len(r.ByDay))
		for _, day := range r.ByDay {
			if day.Ordinal != 0 {
				entries = append(entries, strconv.Itoa(day.Ordinal)+string(day.Weekday))
			} else {
				entries = append(entries, string(day.Weekday))
			}
		}
		parts = append(parts, "BYDAY="+strings.Join(entries, ","))
	}
	timeLists := []struct {
		key    string
		values []int
	}{
		{"BYHOUR", r.ByHour},
		{"BYMINUTE", r.ByMinute},
		{"BYSECOND", r.BySecond},
		{"BYSETPOS", r.BySetPos},
	}
	for _, list := range timeLists {
		if len(list.values) > 0 {
			parts = append(parts, list.key+"="+formatIntList(list.values))
		}
	}
	if r.WeekStart != "" {
		parts = append(parts, "WKST="+string(r.WeekStart))
	}

	return strings.Join(parts, ";"), nil
}

func formatIntList(values []int) string {
	parts := make([]string, 0, len(values))
	for _, n := range values {
		parts = append(parts, strconv.Itoa(n))
	}
	return strings.Join(parts, ",")
}

// GetRecurrenceRule decodes the first property with the given name as a
// recurrence rule. The bool reports presence; the error is set only when
// the property exists and its value does not decode.
func (c *Component) GetRecurrenceRule(name string) (RecurrenceRule, bool, error) {
	p := c.GetProperty(name)
	if p == nil {
		return RecurrenceRule{}, false, nil
	}
	r, err := ParseRecurrenceRule(p.Value)
	if err != nil {
		return RecurrenceRule{}, true, wrapDecodeError("component.rrule", p.Name, p.Value, err)
	}
	return r, true, nil
}

// SetRecurrenceRule stores a recurrence rule property. A rule violating
// a codec invariant, such as carrying both COUNT and UNTIL, is rejected.
func (c *Component) SetRecurrenceRule(name string, r RecurrenceRule) error {
	value, err := FormatRecurrenceRule(r)
	if err != nil {
		return err
	}
	c.SetProperty(name, value)
	return nil
}

package icalendar

import (
	"strings"
	"time"
)

// TimeMode distinguishes the three RFC 5545 date-time forms: floating
// local time, UTC (trailing Z), and wall time in a named zone carried by
// a TZID parameter.
type TimeMode int

const (
	TimeFloating TimeMode = iota
	TimeUTC
	TimeZoned
)

const (
	dateLayout     = "20060102"
	dateTimeLayout = "20060102T150405"
	utcLayout      = "20060102T150405Z"
)

// DateTime is a decoded date or date-time value. Time carries the wall
// clock and is always stored in the UTC location; Mode and TZID carry
// the actual zone semantics. Date-only values ignore the clock fields
// and carry no zone.
type DateTime struct {
	Time     time.Time
	Mode     TimeMode
	TZID     string
	DateOnly bool
}

// NewDate builds a date-only value.
func NewDate(year int, month time.Month, day int) DateTime {
	return DateTime{
		Time:     time.Date(year, month, day, 0, 0, 0, 0, time.UTC),
		DateOnly: true,
	}
}

// NewFloatingDateTime builds a floating value from t's wall clock.
func NewFloatingDateTime(t time.Time) DateTime {
	return DateTime{Time: wallClock(t)}
}

// NewUTCDateTime builds a UTC value from the instant t.
func NewUTCDateTime(t time.Time) DateTime {
	return DateTime{Time: wallClock(t.UTC()), Mode: TimeUTC}
}

// NewZonedDateTime builds a value carrying t's wall clock in the named
// zone. The identifier is not resolved here; the timezone registry does
// that when a VTIMEZONE is needed.
func NewZonedDateTime(t time.Time, tzid string) DateTime {
	return DateTime{Time: wallClock(t), Mode: TimeZoned, TZID: tzid}
}

func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

// Format renders the wire form of the value: YYYYMMDD for dates,
// YYYYMMDDTHHMMSS for floating and zoned times, with a trailing Z for
// UTC. The TZID travels as a property parameter, never inside the value.
func (dt DateTime) Format() string {
	if dt.DateOnly {
		return dt.Time.Format(dateLayout)
	}
	if dt.Mode == TimeUTC {
		return dt.Time.Format(utcLayout)
	}
	return dt.Time.Format(dateTimeLayout)
}

// In resolves the value to an absolute time in the given location. UTC
// values convert; floating, zoned and date-only values reinterpret their
// wall clock in loc.
func (dt DateTime) In(loc *time.Location) time.Time {
	if dt.Mode == TimeUTC && !dt.DateOnly {
		return dt.Time.In(loc)
	}
	t := dt.Time
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
}

// Equal reports whether two values represent the same date-time in the
// same form.
func (dt DateTime) Equal(other DateTime) bool {
	return dt.Time.Equal(other.Time) &&
		dt.Mode == other.Mode &&
		dt.TZID == other.TZID &&
		dt.DateOnly == other.DateOnly
}

// ParseDateTime decodes a date or date-time value together with the
// parameters of its property. An 8-digit value is date-only, a trailing
// Z means UTC, a TZID parameter names the zone, anything else floats.
// A VALUE parameter that disagrees with the value shape, a TZID combined
// with the UTC suffix, or malformed digits are decode errors; input is
// never silently coerced.
func ParseDateTime(value string, params Parameters) (DateTime, error) {
	const op = "datetime.parse"

	value = strings.TrimSpace(value)
	if value == "" {
		return DateTime{}, newDecodeError(op, "", value, "empty date-time value")
	}

	tzid, hasTZID := params.Get(ParamTZID)
	isDate := len(value) == len(dateLayout) && !strings.ContainsRune(value, 'T')

	if valueType, ok := params.Get(ParamValue); ok {
		switch strings.ToUpper(valueType) {
		case "DATE":
			if !isDate {
				return DateTime{}, newDecodeError(op, "", value, "VALUE=DATE disagrees with value shape")
			}
		case "DATE-TIME":
			if isDate {
				return DateTime{}, newDecodeError(op, "", value, "VALUE=DATE-TIME disagrees with value shape")
			}
		default:
			return DateTime{}, newDecodeError(op, "", value, "unsupported VALUE type "+valueType)
		}
	}

	if isDate {
		if hasTZID {
			return DateTime{}, newDecodeError(op, "", value, "date-only value cannot carry TZID")
		}
		t, err := time.Parse(dateLayout, value)
		if err != nil {
			return DateTime{}, newDecodeError(op, "", value, "malformed date")
		}
		return DateTime{Time: t, DateOnly: true}, nil
	}

	if strings.HasSuffix(value, "Z") {
		if hasTZID {
			return DateTime{}, newDecodeError(op, "", value, "TZID conflicts with UTC suffix")
		}
		t, err := time.Parse(utcLayout, value)
		if err != nil {
			return DateTime{}, newDecodeError(op, "", value, "malformed UTC date-time")
		}
		return DateTime{Time: t, Mode: TimeUTC}, nil
	}

	t, err := time.Parse(dateTimeLayout, value)
	if err != nil {
		return DateTime{}, newDecodeError(op, "", value, "malformed date-time")
	}
	if hasTZID {
		return DateTime{Time: t, Mode: TimeZoned, TZID: tzid}, nil
	}
	return DateTime{Time: t, Mode: TimeFloating}, nil
}

// GetDateTime decodes the first property with the given name. The bool
// reports presence; the error is set only when the property exists and
// its value does not decode.
func (c *Component) GetDateTime(name string) (DateTime, bool, error) {
	p := c.GetProperty(name)
	if p == nil {
		return DateTime{}, false, nil
	}
	dt, err := ParseDateTime(p.Value, p.Params)
	if err != nil {
		return DateTime{}, true, wrapDecodeError("component.datetime", p.Name, p.Value, err)
	}
	return dt, true, nil
}

// SetDateTime stores a date-time property, setting or clearing its VALUE
// and TZID parameters to match the value's form.
func (c *Component) SetDateTime(name string, dt DateTime) {
	p := c.SetProperty(name, dt.Format())
	switch {
	case dt.DateOnly:
		p.SetParam(ParamValue, "DATE")
	case dt.Mode == TimeZoned && dt.TZID != "":
		p.SetParam(ParamTZID, dt.TZID)
	}
}

// GetDateTimeList decodes a comma-separated date property such as EXDATE.
// Every item shares the property's parameters.
func (c *Component) GetDateTimeList(name string) ([]DateTime, bool, error) {
	p := c.GetProperty(name)
	if p == nil {
		return nil, false, nil
	}
	parts := strings.Split(p.Value, ",")
	values := make([]DateTime, 0, len(parts))
	for _, part := range parts {
		dt, err := ParseDateTime(part, p.Params)
		if err != nil {
			return nil, true, wrapDecodeError("component.datetime", p.Name, p.Value, err)
		}
		values = append(values, dt)
	}
	return values, true, nil
}

// SetDateTimeList stores several date-time values under one property.
// All values must share the same form, since the VALUE and TZID
// parameters apply to the whole property.
func (c *Component) SetDateTimeList(name string, values []DateTime) error {
	if len(values) == 0 {
		c.RemoveProperty(name)
		return nil
	}
	first := values[0]
	parts := make([]string, 0, len(values))
	for _, dt := range values {
		if dt.DateOnly != first.DateOnly || dt.Mode != first.Mode || dt.TZID != first.TZID {
			return newEncodeError("component.datetime", name, "mixed date-time forms in one property")
		}
		parts = append(parts, dt.Format())
	}
	p := c.SetProperty(name, strings.Join(parts, ","))
	switch {
	case first.DateOnly:
		p.SetParam(ParamValue, "DATE")
	case first.Mode == TimeZoned && first.TZID != "":
		p.SetParam(ParamTZID, first.TZID)
	}
	return nil
}

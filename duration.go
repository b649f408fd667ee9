package icalendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration is a decoded RFC 5545 duration. The sign lives in Negative;
// the unit fields are always non-negative. Weeks never combine with the
// other units.
type Duration struct {
	Negative bool
	Weeks    int
	Days     int
	Hours    int
	Minutes  int
	Seconds  int
}

// NewDuration decomposes a Go duration into calendar units, greatest
// unit first: a whole number of weeks stays weeks, everything else
// becomes days, hours, minutes and seconds. Sub-second precision is
// truncated.
func NewDuration(d time.Duration) Duration {
	var out Duration
	if d < 0 {
		out.Negative = true
		d = -d
	}
	secs := int(d / time.Second)
	if secs != 0 && secs%(7*24*3600) == 0 {
		out.Weeks = secs / (7 * 24 * 3600)
		return out
	}
	out.Days = secs / (24 * 3600)
	secs %= 24 * 3600
	out.Hours = secs / 3600
	secs %= 3600
	out.Minutes = secs / 60
	out.Seconds = secs % 60
	return out
}

// GoDuration converts to a Go duration using nominal 24-hour days and
// 7-day weeks.
func (d Duration) GoDuration() time.Duration {
	total := time.Duration(d.Weeks)*7*24*time.Hour +
		time.Duration(d.Days)*24*time.Hour +
		time.Duration(d.Hours)*time.Hour +
		time.Duration(d.Minutes)*time.Minute +
		time.Duration(d.Seconds)*time.Second
	if d.Negative {
		return -total
	}
	return total
}

// IsZero reports whether every unit field is zero.
func (d Duration) IsZero() bool {
	return d.Weeks == 0 && d.Days == 0 && d.Hours == 0 && d.Minutes == 0 && d.Seconds == 0
}

// ParseDuration decodes a duration value. The grammar is strict and
// ordered: an optional sign, the P designator, then either a week
// component alone or days followed by an optional T time section with
// hours, minutes and seconds in that order. At least one component must
// be present; zero values are legal.
func ParseDuration(value string) (Duration, error) {
	const op = "duration.parse"

	var d Duration
	rest := strings.TrimSpace(value)
	switch {
	case strings.HasPrefix(rest, "-"):
		d.Negative = true
		rest = rest[1:]
	case strings.HasPrefix(rest, "+"):
		rest = rest[1:]
	}
	if !strings.HasPrefix(rest, "P") {
		return Duration{}, newDecodeError(op, "", value, "missing P designator")
	}
	rest = rest[1:]

	i := 0
	readNumber := func() (int, bool, error) {
		start := i
		for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
			i++
		}
		if i == start {
			return 0, false, nil
		}
		n, err := strconv.Atoi(rest[start:i])
		if err != nil {
			return 0, true, newDecodeError(op, "", value, "duration component out of range")
		}
		return n, true, nil
	}

	seen := false
	n, ok, err := readNumber()
	if err != nil {
		return Duration{}, err
	}
	if ok {
		if i >= len(rest) {
			return Duration{}, newDecodeError(op, "", value, "missing unit designator")
		}
		switch rest[i] {
		case 'W':
			d.Weeks = n
			i++
			seen = true
			if i != len(rest) {
				return Duration{}, newDecodeError(op, "", value, "weeks combine with no other component")
			}
		case 'D':
			d.Days = n
			i++
			seen = true
		default:
			return Duration{}, newDecodeError(op, "", value, "expected W or D designator")
		}
	}

	if i < len(rest) {
		if rest[i] != 'T' {
			return Duration{}, newDecodeError(op, "", value, "expected time designator T")
		}
		i++
		if i == len(rest) {
			return Duration{}, newDecodeError(op, "", value, "empty time section")
		}
		units := []struct {
			ch  byte
			dst *int
		}{
			{'H', &d.Hours},
			{'M', &d.Minutes},
			{'S', &d.Seconds},
		}
		for _, unit := range units {
			save := i
			n, ok, err := readNumber()
			if err != nil {
				return Duration{}, err
			}
			if !ok {
				continue
			}
			if i < len(rest) && rest[i] == unit.ch {
				*unit.dst = n
				i++
				seen = true
			} else {
				i = save
			}
		}
		if i != len(rest) {
			return Duration{}, newDecodeError(op, "", value, "malformed time section")
		}
	}

	if !seen {
		return Duration{}, newDecodeError(op, "", value, "duration needs at least one component")
	}
	return d, nil
}

// FormatDuration renders the wire form, emitting only the unit fields
// that are set. The all-zero duration renders as PT0S. A value mixing
// weeks with other units, or with a negative unit field, is an encode
// error.
func FormatDuration(d Duration) (string, error) {
	const op = "duration.format"

	if d.Weeks != 0 && (d.Days != 0 || d.Hours != 0 || d.Minutes != 0 || d.Seconds != 0) {
		return "", newEncodeError(op, "", "weeks combine with no other component")
	}
	if d.Weeks < 0 || d.Days < 0 || d.Hours < 0 || d.Minutes < 0 || d.Seconds < 0 {
		return "", newEncodeError(op, "", "unit fields must be non-negative")
	}

	var b strings.Builder
	if d.Negative {
		b.WriteByte('-')
	}
	b.WriteByte('P')
	switch {
	case d.Weeks != 0:
		fmt.Fprintf(&b, "%dW", d.Weeks)
	case d.IsZero():
		b.WriteString("T0S")
	default:
		if d.Days != 0 {
			fmt.Fprintf(&b, "%dD", d.Days)
		}
		if d.Hours != 0 || d.Minutes != 0 || d.Seconds != 0 {
			b.WriteByte('T')
			if d.Hours != 0 {
				fmt.Fprintf(&b, "%dH", d.Hours)
			}
			if d.Minutes != 0 {
				fmt.Fprintf(&b, "%dM", d.Minutes)
			}
			if d.Seconds != 0 {
				fmt.Fprintf(&b, "%dS", d.Seconds)
			}
		}
	}
	return b.String(), nil
}

// GetDuration decodes the first property with the given name as a
// duration. The bool reports presence; the error is set only when the
// property exists and its value does not decode.
func (c *Component) GetDuration(name string) (Duration, bool, error) {
	p := c.GetProperty(name)
	if p == nil {
		return Duration{}, false, nil
	}
	d, err := ParseDuration(p.Value)
	if err != nil {
		return Duration{}, true, wrapDecodeError("component.duration", p.Name, p.Value, err)
	}
	return d, true, nil
}

// SetDuration stores a duration-valued property.
func (c *Component) SetDuration(name string, d Duration) error {
	value, err := FormatDuration(d)
	if err != nil {
		return err
	}
	c.SetProperty(name, value)
	return nil
}

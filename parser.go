package icalendar

import (
	"fmt"
	"io"
	"strings"
)

var allowedTopLevelKinds = map[string]bool{
	KindCalendar: true,
	KindContact:  true,
}

// ParseCalendar decodes a document containing exactly one VCALENDAR.
// ErrNoCalendar and ErrMultipleCalendars report a mismatched count.
func ParseCalendar(data string) (*Component, error) {
	cals, err := ParseCalendars(data)
	if err != nil {
		return nil, err
	}
	switch len(cals) {
	case 0:
		return nil, ErrNoCalendar
	case 1:
		return cals[0], nil
	default:
		return nil, ErrMultipleCalendars
	}
}

// ParseCalendarFrom reads r to the end and decodes it as a document
// containing exactly one VCALENDAR.
func ParseCalendarFrom(r io.Reader) (*Component, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, newStructuralError("parse.read", "reading input: "+err.Error())
	}
	return ParseCalendar(string(data))
}

// ParseCalendars decodes a document of concatenated VCALENDARs and
// returns one tree per calendar. A top-level component of any other
// kind is a structural error.
func ParseCalendars(data string) ([]*Component, error) {
	comps, err := ParseComponents(data)
	if err != nil {
		return nil, err
	}
	for _, comp := range comps {
		if comp.Kind != KindCalendar {
			return nil, newStructuralError("parse.calendar", "unexpected top-level component "+comp.Kind)
		}
	}
	return comps, nil
}

// ParseComponents decodes a document into its top-level component
// trees. VCALENDAR and VCARD are the known top-level kinds; anything
// else at document scope is a structural error. Parsing fails fast at
// the first structural error and is lenient about property content:
// unrecognized property and parameter names pass through untouched.
func ParseComponents(data string) ([]*Component, error) {
	const op = "parse.component"

	var (
		tops  []*Component
		stack []*Component
	)
	for _, line := range splitContentLines(data) {
		if rest, ok := cutMarker(line, "BEGIN:"); ok {
			kind := strings.ToUpper(strings.TrimSpace(rest))
			if kind == "" {
				return nil, newStructuralError(op, "BEGIN with empty component kind")
			}
			comp := &Component{Kind: kind}
			if len(stack) == 0 {
				if !allowedTopLevelKinds[kind] {
					return nil, newStructuralError(op, "unknown top-level component "+kind)
				}
				tops = append(tops, comp)
			} else {
				stack[len(stack)-1].AddChild(comp)
			}
			stack = append(stack, comp)
			continue
		}
		if rest, ok := cutMarker(line, "END:"); ok {
			kind := strings.ToUpper(strings.TrimSpace(rest))
			if len(stack) == 0 {
				return nil, newStructuralError(op, "END:"+kind+" without matching BEGIN")
			}
			open := stack[len(stack)-1]
			if open.Kind != kind {
				return nil, newStructuralError(op, fmt.Sprintf("END:%s does not close open %s", kind, open.Kind))
			}
			stack = stack[:len(stack)-1]
			continue
		}

		prop, err := ParsePropertyLine(line)
		if err != nil {
			return nil, err
		}
		if prop.Name == "BEGIN" || prop.Name == "END" {
			return nil, newStructuralError(op, "malformed "+prop.Name+" line")
		}
		if len(stack) == 0 {
			return nil, newStructuralError(op, "property "+prop.Name+" outside any component")
		}
		stack[len(stack)-1].Properties = append(stack[len(stack)-1].Properties, prop)
	}

	if len(stack) > 0 {
		return nil, newStructuralError(op, "missing END:"+stack[len(stack)-1].Kind)
	}
	return tops, nil
}

// ParsePropertyLine decodes one unfolded content line into a property.
// The value separator is the first colon outside double quotes; the
// name part splits on semicolons outside quotes into the property name
// and its parameters. Parameter values are caret-decoded.
func ParsePropertyLine(line string) (Property, error) {
	const op = "parse.property"

	sep := -1
	inQuotes := false
	for i := 0; i < len(line) && sep < 0; i++ {
		switch line[i] {
		case '"':
			inQuotes = !inQuotes
		case ':':
			if !inQuotes {
				sep = i
			}
		}
	}
	if sep < 0 {
		return Property{}, newDecodeError(op, "", line, "content line has no value separator")
	}

	segments := splitOutsideQuotes(line[:sep], ';')
	name := strings.ToUpper(strings.TrimSpace(segments[0]))
	if name == "" {
		return Property{}, newDecodeError(op, "", line, "content line has no property name")
	}

	prop := Property{Name: name, Value: line[sep+1:]}
	for _, seg := range segments[1:] {
		if strings.TrimSpace(seg) == "" {
			continue
		}
		pname, pval, found := strings.Cut(seg, "=")
		pname = strings.ToUpper(strings.TrimSpace(pname))
		if !found {
			prop.Params = append(prop.Params, Parameter{Name: pname})
			continue
		}
		decoded, err := DecodeParameterValue(pval)
		if err != nil {
			return Property{}, wrapDecodeError(op, name, line, err)
		}
		prop.Params = append(prop.Params, Parameter{Name: pname, Value: decoded})
	}
	return prop, nil
}

// splitContentLines unfolds the document and returns its trimmed,
// non-empty content lines. Unfolding runs first, so a continuation's
// leading space never survives into a line.
func splitContentLines(data string) []string {
	raw := strings.Split(UnfoldLines(data), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func cutMarker(line, marker string) (string, bool) {
	if len(line) >= len(marker) && strings.EqualFold(line[:len(marker)], marker) {
		return line[len(marker):], true
	}
	return "", false
}

func splitOutsideQuotes(s string, sep byte) []string {
	var parts []string
	start := 0
	inQuotes := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuotes = !inQuotes
		case sep:
			if !inQuotes {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

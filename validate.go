package icalendar

import (
	"strconv"
	"strings"
)

// ValidateComponent walks the tree and checks every property whose name
// has a typed wire form: dates, durations, recurrence rules, UTC
// offsets and integer counters must decode with their codec, TEXT
// values must be free of raw line breaks and truncated escapes, and
// parameter names must fit the wire grammar. The
// walk stops at the first failing property, which the error names.
// Serialization does not run this pass unless asked to.
func ValidateComponent(root *Component) error {
	const op = "validate.component"

	if root == nil {
		return newStructuralError(op, "nil component")
	}
	if strings.TrimSpace(root.Kind) == "" {
		return newStructuralError(op, "component kind is empty")
	}
	for i := range root.Properties {
		if err := validateProperty(&root.Properties[i]); err != nil {
			return err
		}
	}
	for _, child := range root.Children {
		if err := ValidateComponent(child); err != nil {
			return err
		}
	}
	return nil
}

func validateProperty(p *Property) error {
	const op = "validate.property"

	if strings.ContainsAny(p.Value, "\r\n") {
		return newEncodeError(op, p.Name, "raw line break in property value")
	}
	for _, param := range p.Params {
		if !validWireName(strings.TrimSpace(param.Name)) {
			return newEncodeError(op, p.Name, "parameter name "+param.Name+" is not valid")
		}
	}

	if strings.EqualFold(p.Name, PropTrigger) {
		return validateTrigger(p)
	}

	switch propertyValueKind(p.Name) {
	case valueText, valueTextList:
		if msg := checkEscapedText(p.Value); msg != "" {
			return newDecodeError(op, p.Name, p.Value, msg)
		}
	case valueDateTime:
		if _, err := ParseDateTime(p.Value, p.Params); err != nil {
			return wrapDecodeError(op, p.Name, p.Value, err)
		}
	case valueDateTimeList:
		if vt, ok := p.Param(ParamValue); ok && strings.EqualFold(vt, "PERIOD") {
			return nil
		}
		for _, part := range strings.Split(p.Value, ",") {
			if _, err := ParseDateTime(part, p.Params); err != nil {
				return wrapDecodeError(op, p.Name, p.Value, err)
			}
		}
	case valueDuration:
		if _, err := ParseDuration(p.Value); err != nil {
			return wrapDecodeError(op, p.Name, p.Value, err)
		}
	case valueRecurrence:
		if _, err := ParseRecurrenceRule(p.Value); err != nil {
			return wrapDecodeError(op, p.Name, p.Value, err)
		}
	case valueUTCOffset:
		if _, err := ParseUTCOffset(p.Value); err != nil {
			return wrapDecodeError(op, p.Name, p.Value, err)
		}
	case valueInteger:
		if _, err := strconv.Atoi(strings.TrimSpace(p.Value)); err != nil {
			return newDecodeError(op, p.Name, p.Value, "value is not an integer")
		}
	}
	return nil
}

// validateTrigger handles the one property whose type flips on its
// VALUE parameter: absolute triggers are date-times, everything else is
// a duration.
func validateTrigger(p *Property) error {
	const op = "validate.property"

	if vt, ok := p.Param(ParamValue); ok && strings.EqualFold(vt, "DATE-TIME") {
		if _, err := ParseDateTime(p.Value, p.Params); err != nil {
			return wrapDecodeError(op, p.Name, p.Value, err)
		}
		return nil
	}
	if _, err := ParseDuration(p.Value); err != nil {
		return wrapDecodeError(op, p.Name, p.Value, err)
	}
	return nil
}

// checkEscapedText verifies that stored text is well-formed wire text:
// every backslash introduces a known escape. It returns an empty string
// when the text is clean.
func checkEscapedText(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			continue
		}
		if i+1 >= len(s) {
			return "truncated escape at end of value"
		}
		switch s[i+1] {
		case '\\', ';', ',', 'n', 'N', 'r', 'R':
			i++
		default:
			return "invalid escape sequence \\" + string(s[i+1])
		}
	}
	return ""
}

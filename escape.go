package icalendar

import "strings"

// valueKind is the escaping/decoding policy attached to a property name.
// TEXT values travel escaped; structured values (dates, durations, rules,
// offsets) travel verbatim and must never be text-escaped.
type valueKind int

const (
	valueUnknown valueKind = iota
	valueText
	valueTextList
	valueDateTime
	valueDateTimeList
	valueDuration
	valueRecurrence
	valueUTCOffset
	valueInteger
)

var propertyValueKinds = map[string]valueKind{
	PropSummary:       valueText,
	PropDescription:   valueText,
	PropLocation:      valueText,
	PropComment:       valueText,
	PropContact:       valueText,
	PropTZName:        valueText,
	PropCategories:    valueTextList,
	PropResources:     valueTextList,
	PropDTStart:       valueDateTime,
	PropDTEnd:         valueDateTime,
	PropDTStamp:       valueDateTime,
	PropDue:           valueDateTime,
	PropCompleted:     valueDateTime,
	PropCreated:       valueDateTime,
	PropLastModified:  valueDateTime,
	PropRecurrenceID:  valueDateTime,
	PropExDate:        valueDateTimeList,
	PropRDate:         valueDateTimeList,
	PropDuration:      valueDuration,
	PropRRule:         valueRecurrence,
	PropTZOffsetFrom:  valueUTCOffset,
	PropTZOffsetTo:    valueUTCOffset,
	PropPriority:      valueInteger,
	PropSequence:      valueInteger,
	PropRepeat:        valueInteger,
	PropPercent:       valueInteger,
	PropFormattedName: valueText,
	PropNote:          valueText,
	PropTitle:         valueText,
	PropNickname:      valueText,
	PropRole:          valueText,
}

func propertyValueKind(name string) valueKind {
	return propertyValueKinds[strings.ToUpper(name)]
}

// IsTextProperty reports whether the named property carries free text
// (single or comma-separated), which is the escaped travel form.
func IsTextProperty(name string) bool {
	kind := propertyValueKind(name)
	return kind == valueText || kind == valueTextList
}

var textEscaper = strings.NewReplacer(
	"\\", "\\\\",
	";", "\\;",
	",", "\\,",
	"\n", "\\n",
	"\r", "\\r",
)

// EscapeText converts plain text to its wire form: backslash, semicolon,
// comma, newline and carriage return become two-character sequences.
func EscapeText(s string) string {
	return textEscaper.Replace(s)
}

// UnescapeText reverses EscapeText. \N and \R are accepted as synonyms
// for \n and \r. An unknown escape or a trailing backslash is passed
// through unchanged rather than rejected.
func UnescapeText(s string) string {
	if !strings.Contains(s, "\\") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch != '\\' {
			b.WriteByte(ch)
			continue
		}
		if i+1 >= len(s) {
			b.WriteByte(ch)
			break
		}
		switch s[i+1] {
		case '\\', ';', ',':
			b.WriteByte(s[i+1])
			i++
		case 'n', 'N':
			b.WriteByte('\n')
			i++
		case 'r', 'R':
			b.WriteByte('\r')
			i++
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

var paramEscaper = strings.NewReplacer(
	"^", "^^",
	"\r\n", "^n",
	"\r", "^n",
	"\n", "^n",
	"\"", "^'",
)

// EncodeParameterValue applies RFC 6868 caret encoding and, when the
// result still contains a colon, semicolon, comma or any non-ASCII
// character, wraps it in double quotes. Every line-break form (CRLF,
// bare CR, bare LF) encodes as one ^n, so no raw control octet can
// reach a content line; decoding yields LF, which normalizes CR forms.
func EncodeParameterValue(s string) string {
	encoded := paramEscaper.Replace(s)
	if strings.ContainsAny(encoded, ":;,") || hasNonASCII(encoded) {
		return `"` + encoded + `"`
	}
	return encoded
}

// DecodeParameterValue strips one layer of surrounding quotes and
// reverses the caret encoding. A caret followed by anything other than
// another caret, 'n' or a single quote is a decode error. Quotes are
// only stripped when they enclose the whole value, so a multi-valued
// quoted list passes through intact.
func DecodeParameterValue(s string) (string, error) {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' && !strings.Contains(s[1:len(s)-1], `"`) {
		s = s[1 : len(s)-1]
	}
	if !strings.Contains(s, "^") {
		return s, nil
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch != '^' {
			b.WriteByte(ch)
			continue
		}
		if i+1 >= len(s) {
			return "", newDecodeError("parameter.decode", "", s, "dangling caret escape")
		}
		switch s[i+1] {
		case '^':
			b.WriteByte('^')
		case 'n':
			b.WriteByte('\n')
		case '\'':
			b.WriteByte('"')
		default:
			return "", newDecodeError("parameter.decode", "", s, "invalid caret escape")
		}
		i++
	}
	return b.String(), nil
}

func hasNonASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return true
		}
	}
	return false
}

// splitEscapedList splits a multi-valued property value on the given
// separator, honoring backslash escapes so that escaped separators stay
// inside their item.
func splitEscapedList(s string, sep byte) []string {
	var parts []string
	var b strings.Builder
	escaped := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case escaped:
			b.WriteByte(ch)
			escaped = false
		case ch == '\\':
			b.WriteByte(ch)
			escaped = true
		case ch == sep:
			parts = append(parts, b.String())
			b.Reset()
		default:
			b.WriteByte(ch)
		}
	}
	return append(parts, b.String())
}

// GetText returns the decoded text of the first property with the given
// name. The bool reports whether the property exists.
func (c *Component) GetText(name string) (string, bool) {
	p := c.GetProperty(name)
	if p == nil {
		return "", false
	}
	return UnescapeText(p.Value), true
}

// SetText stores plain text under the given property name, escaping it
// for the wire.
func (c *Component) SetText(name, text string) {
	c.SetProperty(name, EscapeText(text))
}

// GetTextList decodes a comma-separated text property such as CATEGORIES
// into its items. Escaped commas stay inside their item.
func (c *Component) GetTextList(name string) ([]string, bool) {
	p := c.GetProperty(name)
	if p == nil {
		return nil, false
	}
	raw := splitEscapedList(p.Value, ',')
	items := make([]string, 0, len(raw))
	for _, r := range raw {
		items = append(items, UnescapeText(r))
	}
	return items, true
}

// SetTextList stores the items as one comma-separated text property,
// escaping each item individually.
func (c *Component) SetTextList(name string, items []string) {
	escaped := make([]string, 0, len(items))
	for _, item := range items {
		escaped = append(escaped, EscapeText(item))
	}
	c.SetProperty(name, strings.Join(escaped, ","))
}

package icalendar

import (
	"strings"
	"unicode/utf8"
)

// DefaultFoldWidth is the physical-line octet limit from RFC 5545.
const DefaultFoldWidth = 75

// FoldLine splits a content line into physical lines of at most width
// octets each, including the single leading space every continuation
// line carries. A split never lands inside a multi-byte UTF-8 sequence;
// the cut backs up to the nearest rune boundary instead.
func FoldLine(line string, width int) string {
	if width < 4 {
		width = DefaultFoldWidth
	}
	if len(line) <= width {
		return line
	}

	var b strings.Builder
	b.Grow(len(line) + 3*(len(line)/width+1))
	limit := width
	for len(line) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		if cut == 0 {
			cut = limit
		}
		b.WriteString(line[:cut])
		b.WriteString("\r\n ")
		line = line[cut:]
		limit = width - 1
	}
	b.WriteString(line)
	return b.String()
}

// UnfoldLines removes every line break, CRLF or bare LF, that is
// immediately followed by a single space or tab, joining folded
// continuation lines back into one content line.
func UnfoldLines(text string) string {
	if !strings.Contains(text, "\n ") && !strings.Contains(text, "\n\t") {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if ch == '\r' && i+2 < len(text) && text[i+1] == '\n' && (text[i+2] == ' ' || text[i+2] == '\t') {
			i += 2
			continue
		}
		if ch == '\n' && i+1 < len(text) && (text[i+1] == ' ' || text[i+1] == '\t') {
			i++
			continue
		}
		b.WriteByte(ch)
	}
	return b.String()
}

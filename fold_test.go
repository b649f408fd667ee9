package icalendar

import (
	"strings"
	"testing"
)

func TestFoldLine(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		width int
		want  string
	}{
		{
			name:  "short line untouched",
			line:  "SUMMARY:Short",
			width: 75,
			want:  "SUMMARY:Short",
		},
		{
			name:  "exact width untouched",
			line:  strings.Repeat("a", 75),
			width: 75,
			want:  strings.Repeat("a", 75),
		},
		{
			name:  "one fold",
			line:  strings.Repeat("a", 80),
			width: 75,
			want:  strings.Repeat("a", 75) + "\r\n " + strings.Repeat("a", 5),
		},
		{
			name:  "continuation budget accounts for leading space",
			line:  strings.Repeat("b", 160),
			width: 75,
			want: strings.Repeat("b", 75) + "\r\n " +
				strings.Repeat("b", 74) + "\r\n " +
				strings.Repeat("b", 11),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FoldLine(tt.line, tt.width); got != tt.want {
				t.Errorf("FoldLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFoldLineWidthLimit(t *testing.T) {
	inputs := []string{
		strings.Repeat("x", 300),
		"DESCRIPTION:" + strings.Repeat("word ", 60),
		"SUMMARY:" + strings.Repeat("é", 100),
		"SUMMARY:" + strings.Repeat("☃", 80),
	}

	for _, line := range inputs {
		folded := FoldLine(line, 75)
		for i, physical := range strings.Split(folded, "\r\n") {
			if len(physical) > 75 {
				t.Errorf("physical line %d is %d octets, limit 75: %q", i, len(physical), physical)
			}
			if !strings.HasPrefix(physical, " ") && i > 0 {
				t.Errorf("continuation line %d lacks leading space", i)
			}
		}
	}
}

func TestFoldLineRuneBoundary(t *testing.T) {
	// 8 octets of prefix, then 3-octet runes: a 75-octet cut would land
	// mid-rune without the boundary backup.
	line := "SUMMARY:" + strings.Repeat("☃", 30)
	folded := FoldLine(line, 75)
	for _, physical := range strings.Split(folded, "\r\n") {
		if !strings.HasPrefix(physical, " ") && !strings.HasPrefix(physical, "SUMMARY:") {
			t.Fatalf("unexpected physical line %q", physical)
		}
		chunk := strings.TrimPrefix(physical, " ")
		chunk = strings.TrimPrefix(chunk, "SUMMARY:")
		if strings.Count(chunk, "☃")*3 != len(chunk) {
			t.Errorf("fold split a rune: %q", physical)
		}
	}
}

func TestUnfoldLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "crlf space continuation",
			in:   "SUMMARY:part one\r\n  and part two",
			want: "SUMMARY:part one and part two",
		},
		{
			name: "bare lf continuation",
			in:   "SUMMARY:part one\n and part two",
			want: "SUMMARY:part one and part two",
		},
		{
			name: "tab continuation",
			in:   "SUMMARY:part one\r\n\tand part two",
			want: "SUMMARY:part oneand part two",
		},
		{
			name: "plain break kept",
			in:   "SUMMARY:one\r\nDTSTART:20240101",
			want: "SUMMARY:one\r\nDTSTART:20240101",
		},
		{
			name: "no folding at all",
			in:   "SUMMARY:plain",
			want: "SUMMARY:plain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UnfoldLines(tt.in); got != tt.want {
				t.Errorf("UnfoldLines(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFoldRoundTrip(t *testing.T) {
	inputs := []string{
		"SUMMARY:short",
		"DESCRIPTION:" + strings.Repeat("long text ", 40),
		"SUMMARY:" + strings.Repeat("é", 120),
		strings.Repeat("x", 76),
	}

	for _, line := range inputs {
		if got := UnfoldLines(FoldLine(line, 75)); got != line {
			t.Errorf("unfold(fold(%.30q...)) = %.30q..., round trip broken", line, got)
		}
	}
}

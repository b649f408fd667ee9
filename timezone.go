package icalendar

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/teambition/rrule-go"
)

// TimeZoneTransition describes one side of a zone's yearly cycle: the
// offsets around the transition, the zone abbreviation, the earliest
// representative transition as a pre-transition local clock, and the
// yearly pattern. Rule is nil when no stable pattern could be derived.
type TimeZoneTransition struct {
	Name       string
	IsDST      bool
	OffsetFrom time.Duration
	OffsetTo   time.Duration
	Start      DateTime
	Rule       *RecurrenceRule
}

// TimeZoneDefinition is a derived VTIMEZONE: an identifier plus one
// transition block per offset side.
type TimeZoneDefinition struct {
	TZID        string
	Transitions []TimeZoneTransition
}

// Component materializes the definition as a fresh VTIMEZONE tree with
// one STANDARD or DAYLIGHT child per transition block.
func (d *TimeZoneDefinition) Component() *Component {
	tz := NewComponent(KindTimeZone)
	tz.SetProperty(PropTZID, d.TZID)
	for _, tr := range d.Transitions {
		kind := KindStandard
		if tr.IsDST {
			kind = KindDaylight
		}
		block := NewComponent(kind)
		block.SetDateTime(PropDTStart, tr.Start)
		block.SetProperty(PropTZOffsetFrom, FormatUTCOffset(tr.OffsetFrom))
		block.SetProperty(PropTZOffsetTo, FormatUTCOffset(tr.OffsetTo))
		if tr.Name != "" {
			block.SetText(PropTZName, tr.Name)
		}
		if tr.Rule != nil {
			// Derived rules are YEARLY with one BYMONTH and one BYDAY,
			// which always format.
			_ = block.SetRecurrenceRule(PropRRule, *tr.Rule)
		}
		tz.AddChild(block)
	}
	return tz
}

// FormatUTCOffset renders an offset as ±HHMM, extending to ±HHMMSS only
// when the offset has a seconds part.
func FormatUTCOffset(offset time.Duration) string {
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	total := int(offset / time.Second)
	h := total / 3600
	m := total % 3600 / 60
	s := total % 60
	if s != 0 {
		return fmt.Sprintf("%s%02d%02d%02d", sign, h, m, s)
	}
	return fmt.Sprintf("%s%02d%02d", sign, h, m)
}

// ParseUTCOffset decodes a ±HHMM or ±HHMMSS offset value.
func ParseUTCOffset(value string) (time.Duration, error) {
	const op = "utcoffset.parse"

	s := strings.TrimSpace(value)
	if len(s) != 5 && len(s) != 7 {
		return 0, newDecodeError(op, "", value, "malformed UTC offset")
	}
	sign := time.Duration(1)
	switch s[0] {
	case '+':
	case '-':
		sign = -1
	default:
		return 0, newDecodeError(op, "", value, "UTC offset needs a leading sign")
	}
	for i := 1; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, newDecodeError(op, "", value, "malformed UTC offset")
		}
	}
	h, _ := strconv.Atoi(s[1:3])
	m, _ := strconv.Atoi(s[3:5])
	sec := 0
	if len(s) == 7 {
		sec, _ = strconv.Atoi(s[5:7])
	}
	if m > 59 || sec > 59 {
		return 0, newDecodeError(op, "", value, "UTC offset minutes and seconds must be below 60")
	}
	return sign * (time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(sec)*time.Second), nil
}

var utcEquivalents = map[string]bool{
	"UTC":           true,
	"UCT":           true,
	"GMT":           true,
	"GMT0":          true,
	"GMT+0":         true,
	"GMT-0":         true,
	"UT":            true,
	"Z":             true,
	"ZULU":          true,
	"UNIVERSAL":     true,
	"ETC/UTC":       true,
	"ETC/UCT":       true,
	"ETC/GMT":       true,
	"ETC/GMT0":      true,
	"ETC/GMT+0":     true,
	"ETC/GMT-0":     true,
	"ETC/ZULU":      true,
	"ETC/UNIVERSAL": true,
}

// TimeZoneRegistry derives VTIMEZONE definitions from the host zone
// database and memoizes them. The registry is an explicit value, safe
// for concurrent use; construct one per application or inject it.
type TimeZoneRegistry struct {
	mu     sync.RWMutex
	defs   map[string]*TimeZoneDefinition
	hits   int
	misses int
	logger Logger
}

// RegistryStats reports cache behavior since construction or the last
// ClearCache.
type RegistryStats struct {
	Hits    int
	Misses  int
	Entries int
}

// NewTimeZoneRegistry builds an empty registry.
func NewTimeZoneRegistry(opts ...RegistryOption) *TimeZoneRegistry {
	r := &TimeZoneRegistry{
		defs:   make(map[string]*TimeZoneDefinition),
		logger: &noopLogger{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Definition resolves an IANA zone identifier and derives its VTIMEZONE
// content. UTC-equivalent identifiers return (nil, nil): no definition
// is needed for them. Unknown identifiers return ErrUnknownTimeZone.
// Results are memoized per identifier, and callers get their own copy.
func (r *TimeZoneRegistry) Definition(tzid string) (*TimeZoneDefinition, error) {
	if utcEquivalents[strings.ToUpper(tzid)] {
		return nil, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if def, ok := r.defs[tzid]; ok {
		r.hits++
		r.logger.Debug("timezone cache hit for %s", tzid)
		return def.clone(), nil
	}
	r.misses++

	loc, err := time.LoadLocation(tzid)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", tzid, ErrUnknownTimeZone)
	}
	def := deriveDefinition(tzid, loc, r.logger)
	r.defs[tzid] = def
	r.logger.Debug("derived timezone definition for %s (%d transition blocks)", tzid, len(def.Transitions))
	return def.clone(), nil
}

// ClearCache drops every memoized definition and resets the stats.
func (r *TimeZoneRegistry) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs = make(map[string]*TimeZoneDefinition)
	r.hits = 0
	r.misses = 0
}

// Stats returns a snapshot of the cache counters.
func (r *TimeZoneRegistry) Stats() RegistryStats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return RegistryStats{Hits: r.hits, Misses: r.misses, Entries: len(r.defs)}
}

// AddTimeZone ensures cal carries a VTIMEZONE for the identifier,
// inserting the derived definition ahead of the first non-timezone
// child. UTC needs no definition, and a repeated identifier is a no-op.
func (r *TimeZoneRegistry) AddTimeZone(cal *Component, tzid string) error {
	def, err := r.Definition(tzid)
	if err != nil {
		return err
	}
	if def == nil {
		return nil
	}
	for _, existing := range cal.GetChildren(KindTimeZone) {
		if v, ok := existing.GetPropertyValue(PropTZID); ok && v == def.TZID {
			return nil
		}
	}

	idx := 0
	for idx < len(cal.Children) && strings.EqualFold(cal.Children[idx].Kind, KindTimeZone) {
		idx++
	}
	cal.Children = append(cal.Children, nil)
	copy(cal.Children[idx+1:], cal.Children[idx:])
	cal.Children[idx] = def.Component()
	return nil
}

func (d *TimeZoneDefinition) clone() *TimeZoneDefinition {
	out := &TimeZoneDefinition{
		TZID:        d.TZID,
		Transitions: make([]TimeZoneTransition, len(d.Transitions)),
	}
	copy(out.Transitions, d.Transitions)
	for i := range out.Transitions {
		if rule := out.Transitions[i].Rule; rule != nil {
			clone := cloneRule(*rule)
			out.Transitions[i].Rule = &clone
		}
	}
	return out
}

func cloneRule(r RecurrenceRule) RecurrenceRule {
	r.ByMonth = append([]int(nil), r.ByMonth...)
	r.ByWeekNo = append([]int(nil), r.ByWeekNo...)
	r.ByYearDay = append([]int(nil), r.ByYearDay...)
	r.ByMonthDay = append([]int(nil), r.ByMonthDay...)
	r.ByDay = append([]ByDayRule(nil), r.ByDay...)
	r.ByHour = append([]int(nil), r.ByHour...)
	r.ByMinute = append([]int(nil), r.ByMinute...)
	r.BySecond = append([]int(nil), r.BySecond...)
	r.BySetPos = append([]int(nil), r.BySetPos...)
	if r.Until != nil {
		until := *r.Until
		r.Until = &until
	}
	return r
}

// sampleYearsBack bounds the transition scan: ten years of history
// through the end of next year is enough to confirm the current rule
// and shake off a recent rule change.
const sampleYearsBack = 10

// zoneFlip is one observed transition: the instant it happens, the zone
// state after it, and the pre-transition local clock reading.
type zoneFlip struct {
	at         time.Time
	name       string
	isDST      bool
	offsetFrom time.Duration
	offsetTo   time.Duration
	wall       time.Time
}

func deriveDefinition(tzid string, loc *time.Location, logger Logger) *TimeZoneDefinition {
	now := time.Now().In(loc)
	windowStart := time.Date(now.Year()-sampleYearsBack, 1, 1, 0, 0, 0, 0, loc)
	windowEnd := time.Date(now.Year()+2, 1, 1, 0, 0, 0, 0, loc)

	flips := scanTransitions(loc, windowStart, windowEnd)
	if len(flips) == 0 {
		name, offsetSec := now.Zone()
		offset := time.Duration(offsetSec) * time.Second
		return &TimeZoneDefinition{
			TZID: tzid,
			Transitions: []TimeZoneTransition{{
				Name:       name,
				OffsetFrom: offset,
				OffsetTo:   offset,
				Start:      NewFloatingDateTime(time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)),
			}},
		}
	}

	def := &TimeZoneDefinition{TZID: tzid}
	var std, dst []zoneFlip
	for _, f := range flips {
		if f.isDST {
			dst = append(dst, f)
		} else {
			std = append(std, f)
		}
	}
	// VTIMEZONE blocks conventionally lead with STANDARD.
	if len(std) > 0 {
		def.Transitions = append(def.Transitions, deriveSide(tzid, std, logger))
	}
	if len(dst) > 0 {
		def.Transitions = append(def.Transitions, deriveSide(tzid, dst, logger))
	}
	return def
}

// scanTransitions walks the zone's offset changes inside the window
// using ZoneBounds, capturing each change with its pre-transition local
// clock.
func scanTransitions(loc *time.Location, start, end time.Time) []zoneFlip {
	var flips []zoneFlip
	t := start
	for t.Before(end) {
		_, boundEnd := t.ZoneBounds()
		if boundEnd.IsZero() || !boundEnd.Before(end) {
			break
		}
		before := boundEnd.Add(-time.Second)
		_, beforeOffSec := before.Zone()
		afterName, afterOffSec := boundEnd.Zone()
		flips = append(flips, zoneFlip{
			at:         boundEnd,
			name:       afterName,
			isDST:      boundEnd.IsDST(),
			offsetFrom: time.Duration(beforeOffSec) * time.Second,
			offsetTo:   time.Duration(afterOffSec) * time.Second,
			wall:       boundEnd.UTC().Add(time.Duration(beforeOffSec) * time.Second),
		})
		t = boundEnd
	}
	return flips
}

// deriveSide turns one side's observed flips into a transition block.
// The yearly pattern comes from the latest flip; the anchor is the
// earliest in-window flip still matching that pattern, and the pattern
// only survives if expanding it reproduces the observed dates.
func deriveSide(tzid string, flips []zoneFlip, logger Logger) TimeZoneTransition {
	latest := flips[len(flips)-1]
	tr := TimeZoneTransition{
		Name:       latest.name,
		IsDST:      latest.isDST,
		OffsetFrom: latest.offsetFrom,
		OffsetTo:   latest.offsetTo,
		Start:      NewFloatingDateTime(latest.wall),
	}

	month := int(latest.wall.Month())
	code := weekdayFromTime(latest.wall.Weekday())
	for _, ordinal := range ordinalCandidates(latest.wall) {
		matched := matchingSuffix(flips, latest, month, ordinal)
		if len(matched) < 2 {
			continue
		}
		rule := RecurrenceRule{
			Frequency: FreqYearly,
			ByMonth:   []int{month},
			ByDay:     []ByDayRule{{Ordinal: ordinal, Weekday: code}},
		}
		if !verifyRuleAgainstFlips(rule, matched) {
			logger.Debug("timezone %s: candidate rule BYDAY=%d%s failed expansion check", tzid, ordinal, code)
			continue
		}
		tr.Rule = &rule
		tr.Start = NewFloatingDateTime(matched[0].wall)
		return tr
	}

	logger.Debug("timezone %s: no stable yearly pattern, anchoring at latest transition", tzid)
	return tr
}

// matchingSuffix walks backward from the latest flip and keeps the run
// that shares the latest flip's offsets, month, local clock and weekday
// ordinal. The run comes back in chronological order.
func matchingSuffix(flips []zoneFlip, latest zoneFlip, month, ordinal int) []zoneFlip {
	matchesPattern := func(f zoneFlip) bool {
		return f.offsetFrom == latest.offsetFrom &&
			f.offsetTo == latest.offsetTo &&
			int(f.wall.Month()) == month &&
			f.wall.Hour() == latest.wall.Hour() &&
			f.wall.Minute() == latest.wall.Minute() &&
			f.wall.Second() == latest.wall.Second() &&
			ordinalMatches(f.wall, ordinal)
	}

	start := len(flips)
	for start > 0 && matchesPattern(flips[start-1]) {
		start--
	}
	return flips[start:]
}

// ordinalCandidates orders the plausible BYDAY ordinals for a
// transition date. Dates in the closing week of the month are tried as
// "last weekday" first, matching how such rules are conventionally
// written.
func ordinalCandidates(wall time.Time) []int {
	nth := (wall.Day()-1)/7 + 1
	if wall.Day()+7 > daysInMonth(wall.Year(), wall.Month()) {
		return []int{-1, nth}
	}
	return []int{nth}
}

func ordinalMatches(t time.Time, ordinal int) bool {
	if ordinal > 0 {
		return (t.Day()-1)/7+1 == ordinal
	}
	fromEnd := (daysInMonth(t.Year(), t.Month())-t.Day())/7 + 1
	return fromEnd == -ordinal
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// verifyRuleAgainstFlips expands the candidate rule over the matched
// span and requires the expansion to land on exactly the observed
// transition dates. This is what catches a zone whose transitions only
// look weekday-regular.
func verifyRuleAgainstFlips(rule RecurrenceRule, matched []zoneFlip) bool {
	first := matched[0].wall
	last := matched[len(matched)-1].wall

	rr, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.YEARLY,
		Dtstart:   first,
		Bymonth:   []int{rule.ByMonth[0]},
		Byweekday: []rrule.Weekday{toRRuleWeekday(rule.ByDay[0])},
	})
	if err != nil {
		return false
	}

	got := rr.Between(first.Add(-time.Second), last.Add(time.Second), true)
	if len(got) != len(matched) {
		return false
	}
	for i, t := range got {
		w := matched[i].wall
		if t.Year() != w.Year() || t.Month() != w.Month() || t.Day() != w.Day() {
			return false
		}
	}
	return true
}

func toRRuleWeekday(day ByDayRule) rrule.Weekday {
	var base rrule.Weekday
	switch day.Weekday {
	case Sunday:
		base = rrule.SU
	case Monday:
		base = rrule.MO
	case Tuesday:
		base = rrule.TU
	case Wednesday:
		base = rrule.WE
	case Thursday:
		base = rrule.TH
	case Friday:
		base = rrule.FR
	default:
		base = rrule.SA
	}
	if day.Ordinal != 0 {
		return base.Nth(day.Ordinal)
	}
	return base
}

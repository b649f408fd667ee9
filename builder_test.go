package icalendar

import (
	"strings"
	"testing"
	"time"
)

func TestNewCalendar(t *testing.T) {
	cal := NewCalendar()
	if cal.Kind != KindCalendar {
		t.Errorf("Kind = %q", cal.Kind)
	}
	if v, _ := cal.GetPropertyValue(PropVersion); v != "2.0" {
		t.Errorf("VERSION = %q", v)
	}
	if v, _ := cal.GetPropertyValue(PropProdID); v == "" {
		t.Error("PRODID missing")
	}
}

func TestNewUID(t *testing.T) {
	a, b := NewUID(), NewUID()
	if a == b {
		t.Error("NewUID() returned the same value twice")
	}
	if !strings.HasSuffix(a, "@go-icalendar") {
		t.Errorf("NewUID() = %q, want domain suffix", a)
	}
}

func TestNewEventAndTodo(t *testing.T) {
	event := NewEvent("given@example.com")
	if v, _ := event.GetPropertyValue(PropUID); v != "given@example.com" {
		t.Errorf("UID = %q", v)
	}

	generated := NewEvent("")
	if v, _ := generated.GetPropertyValue(PropUID); v == "" {
		t.Error("empty uid was not replaced with a generated one")
	}

	todo := NewTodo("")
	if todo.Kind != KindTodo {
		t.Errorf("Kind = %q", todo.Kind)
	}
	if v, _ := todo.GetPropertyValue(PropUID); v == "" {
		t.Error("todo UID missing")
	}
}

func TestChainableSetters(t *testing.T) {
	start := NewZonedDateTime(time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC), "Europe/Paris")
	event := NewEvent("chain@example.com").
		WithSummary("Budget; review").
		WithDescription("Q2 numbers").
		WithLocation("Salle B").
		WithCategories("finance", "quarterly").
		WithStatus("confirmed").
		WithStart(start).
		WithEnd(NewZonedDateTime(time.Date(2026, 5, 1, 11, 0, 0, 0, time.UTC), "Europe/Paris")).
		WithOrganizer("boss@example.com", "The Boss").
		AddAttendee("a@example.com", "Person A").
		AddAttendee("b@example.com", "")

	if v, _ := event.GetPropertyValue(PropSummary); v != `Budget\; review` {
		t.Errorf("stored SUMMARY = %q", v)
	}
	if v, _ := event.GetPropertyValue(PropStatus); v != "CONFIRMED" {
		t.Errorf("STATUS = %q", v)
	}

	dt, ok, err := event.GetDateTime(PropDTStart)
	if err != nil || !ok || !dt.Equal(start) {
		t.Errorf("DTSTART = (%+v, %v, %v)", dt, ok, err)
	}

	org := event.GetProperty(PropOrganizer)
	if org == nil || org.Value != "mailto:boss@example.com" {
		t.Fatalf("ORGANIZER = %+v", org)
	}
	if cn, _ := org.Param(ParamCN); cn != "The Boss" {
		t.Errorf("ORGANIZER CN = %q", cn)
	}

	attendees := event.GetProperties(PropAttendee)
	if len(attendees) != 2 {
		t.Fatalf("got %d attendees", len(attendees))
	}
	if _, ok := attendees[1].Param(ParamCN); ok {
		t.Error("attendee without a common name carries a CN parameter")
	}
}

func TestWithRecurrenceRule(t *testing.T) {
	event := NewEvent("r@example.com").WithRecurrenceRule(RecurrenceRule{
		Frequency: FreqMonthly,
		ByDay:     []ByDayRule{{Ordinal: 1, Weekday: Monday}},
	})
	if v, _ := event.GetPropertyValue(PropRRule); v != "FREQ=MONTHLY;BYDAY=1MO" {
		t.Errorf("RRULE = %q", v)
	}

	// An invalid rule is dropped silently by the chainable form.
	until := NewUTCDateTime(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	clean := NewEvent("r2@example.com").WithRecurrenceRule(RecurrenceRule{
		Frequency: FreqDaily, Count: 1, Until: &until,
	})
	if _, ok := clean.GetPropertyValue(PropRRule); ok {
		t.Error("invalid rule was stored")
	}
}

func TestAddAlarm(t *testing.T) {
	trigger := NewDuration(-15 * time.Minute)
	repeat := NewDuration(5 * time.Minute)
	absolute := NewUTCDateTime(time.Date(2026, 4, 1, 8, 45, 0, 0, time.UTC))

	tests := []struct {
		name    string
		alarm   *AlarmConfig
		wantErr bool
	}{
		{
			name: "display alarm",
			alarm: &AlarmConfig{
				Action:      AlarmActionDisplay,
				Trigger:     &trigger,
				Description: "Reminder",
			},
		},
		{
			name: "email alarm with repeat",
			alarm: &AlarmConfig{
				Action:      AlarmActionEmail,
				Trigger:     &trigger,
				Description: "Body",
				Summary:     "Subject",
				Duration:    &repeat,
				Repeat:      2,
				Attendees:   []string{"a@example.com"},
			},
		},
		{
			name: "audio alarm with absolute trigger",
			alarm: &AlarmConfig{
				Action:          AlarmActionAudio,
				AbsoluteTrigger: &absolute,
				Attach:          "ftp://example.com/sounds/bell.aud",
			},
		},
		{
			name:    "nil config",
			alarm:   nil,
			wantErr: true,
		},
		{
			name:    "missing action",
			alarm:   &AlarmConfig{Trigger: &trigger},
			wantErr: true,
		},
		{
			name:    "unknown action",
			alarm:   &AlarmConfig{Action: "BUZZ", Trigger: &trigger},
			wantErr: true,
		},
		{
			name:    "no trigger at all",
			alarm:   &AlarmConfig{Action: AlarmActionDisplay, Description: "x"},
			wantErr: true,
		},
		{
			name: "both trigger forms",
			alarm: &AlarmConfig{
				Action: AlarmActionDisplay, Description: "x",
				Trigger: &trigger, AbsoluteTrigger: &absolute,
			},
			wantErr: true,
		},
		{
			name:    "display without description",
			alarm:   &AlarmConfig{Action: AlarmActionDisplay, Trigger: &trigger},
			wantErr: true,
		},
		{
			name: "email without attendees",
			alarm: &AlarmConfig{
				Action: AlarmActionEmail, Trigger: &trigger,
				Description: "Body", Summary: "Subject",
			},
			wantErr: true,
		},
		{
			name: "repeat without duration",
			alarm: &AlarmConfig{
				Action: AlarmActionDisplay, Trigger: &trigger,
				Description: "x", Repeat: 3,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := NewEvent("alarm@example.com")
			err := event.AddAlarm(tt.alarm)
			if tt.wantErr {
				if err == nil {
					t.Fatal("AddAlarm() error = nil, want validation error")
				}
				if len(event.GetChildren(KindAlarm)) != 0 {
					t.Error("failed AddAlarm() still attached a VALARM")
				}
				return
			}
			if err != nil {
				t.Fatalf("AddAlarm() error = %v", err)
			}

			alarms := event.GetChildren(KindAlarm)
			if len(alarms) != 1 {
				t.Fatalf("got %d alarms", len(alarms))
			}
			va := alarms[0]
			if action, _ := va.GetPropertyValue(PropAction); action != string(tt.alarm.Action) {
				t.Errorf("ACTION = %q", action)
			}
			if _, ok := va.GetPropertyValue(PropTrigger); !ok {
				t.Error("TRIGGER missing")
			}
		})
	}
}

func TestAddAlarmTriggerForms(t *testing.T) {
	trigger := NewDuration(-15 * time.Minute)
	event := NewEvent("t@example.com")
	if err := event.AddAlarm(&AlarmConfig{
		Action: AlarmActionDisplay, Trigger: &trigger, Description: "x",
	}); err != nil {
		t.Fatalf("AddAlarm() error = %v", err)
	}
	p := event.GetChildren(KindAlarm)[0].GetProperty(PropTrigger)
	if p.Value != "-PT15M" {
		t.Errorf("relative TRIGGER = %q", p.Value)
	}
	if _, ok := p.Param(ParamValue); ok {
		t.Error("relative trigger carries a VALUE parameter")
	}

	absolute := NewUTCDateTime(time.Date(2026, 4, 1, 8, 45, 0, 0, time.UTC))
	event2 := NewEvent("t2@example.com")
	if err := event2.AddAlarm(&AlarmConfig{
		Action: AlarmActionAudio, AbsoluteTrigger: &absolute,
	}); err != nil {
		t.Fatalf("AddAlarm() error = %v", err)
	}
	p2 := event2.GetChildren(KindAlarm)[0].GetProperty(PropTrigger)
	if p2.Value != "20260401T084500Z" {
		t.Errorf("absolute TRIGGER = %q", p2.Value)
	}
	if vt, _ := p2.Param(ParamValue); vt != "DATE-TIME" {
		t.Errorf("absolute trigger VALUE = %q", vt)
	}
}

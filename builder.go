package icalendar

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// prodID identifies documents produced by this library.
const prodID = "-//go-icalendar//EN"

// NewUID generates a globally unique identifier for a calendar object.
func NewUID() string {
	return fmt.Sprintf("%s@go-icalendar", uuid.NewString())
}

// NewCalendar builds an empty VCALENDAR carrying the conventional
// VERSION and PRODID header properties.
func NewCalendar() *Component {
	cal := NewComponent(KindCalendar)
	cal.SetProperty(PropVersion, "2.0")
	cal.SetProperty(PropProdID, prodID)
	return cal
}

// NewEvent builds an empty VEVENT with the given UID. An empty uid gets
// a generated one.
func NewEvent(uid string) *Component {
	if uid == "" {
		uid = NewUID()
	}
	event := NewComponent(KindEvent)
	event.SetProperty(PropUID, uid)
	return event
}

// NewTodo builds an empty VTODO with the given UID. An empty uid gets a
// generated one.
func NewTodo(uid string) *Component {
	if uid == "" {
		uid = NewUID()
	}
	todo := NewComponent(KindTodo)
	todo.SetProperty(PropUID, uid)
	return todo
}

// The chainable setters below cover the common event and todo
// properties; anything else goes through SetProperty or the typed
// accessors directly.

// WithSummary sets the SUMMARY text and returns the component.
func (c *Component) WithSummary(summary string) *Component {
	c.SetText(PropSummary, summary)
	return c
}

// WithDescription sets the DESCRIPTION text and returns the component.
func (c *Component) WithDescription(description string) *Component {
	c.SetText(PropDescription, description)
	return c
}

// WithLocation sets the LOCATION text and returns the component.
func (c *Component) WithLocation(location string) *Component {
	c.SetText(PropLocation, location)
	return c
}

// WithCategories sets the CATEGORIES list and returns the component.
func (c *Component) WithCategories(categories ...string) *Component {
	c.SetTextList(PropCategories, categories)
	return c
}

// WithStatus sets the STATUS value and returns the component.
func (c *Component) WithStatus(status string) *Component {
	c.SetProperty(PropStatus, strings.ToUpper(status))
	return c
}

// WithStart sets DTSTART and returns the component.
func (c *Component) WithStart(dt DateTime) *Component {
	c.SetDateTime(PropDTStart, dt)
	return c
}

// WithEnd sets DTEND and returns the component.
func (c *Component) WithEnd(dt DateTime) *Component {
	c.SetDateTime(PropDTEnd, dt)
	return c
}

// WithDue sets DUE and returns the component.
func (c *Component) WithDue(dt DateTime) *Component {
	c.SetDateTime(PropDue, dt)
	return c
}

// WithStamp sets DTSTAMP and returns the component.
func (c *Component) WithStamp(dt DateTime) *Component {
	c.SetDateTime(PropDTStamp, dt)
	return c
}

// WithRecurrenceRule sets RRULE and returns the component. A rule that
// fails to encode leaves the property unset; use SetRecurrenceRule when
// the error matters.
func (c *Component) WithRecurrenceRule(r RecurrenceRule) *Component {
	if value, err := FormatRecurrenceRule(r); err == nil {
		c.SetProperty(PropRRule, value)
	}
	return c
}

// WithOrganizer sets ORGANIZER to a mailto URI with an optional CN
// parameter and returns the component.
func (c *Component) WithOrganizer(email, commonName string) *Component {
	p := c.SetProperty(PropOrganizer, mailtoURI(email))
	if commonName != "" {
		p.SetParam(ParamCN, commonName)
	} else {
		p.Params.Remove(ParamCN)
	}
	return c
}

// AddAttendee appends an ATTENDEE mailto URI with an optional CN
// parameter and returns the component.
func (c *Component) AddAttendee(email, commonName string) *Component {
	var params Parameters
	if commonName != "" {
		params = Parameters{{Name: ParamCN, Value: commonName}}
	}
	c.AddProperty(PropAttendee, mailtoURI(email), params...)
	return c
}

func mailtoURI(email string) string {
	if strings.Contains(email, ":") {
		return email
	}
	return "mailto:" + email
}

// AlarmAction is the ACTION of a VALARM.
type AlarmAction string

const (
	AlarmActionDisplay AlarmAction = "DISPLAY"
	AlarmActionEmail   AlarmAction = "EMAIL"
	AlarmActionAudio   AlarmAction = "AUDIO"
)

// AlarmConfig describes a VALARM to attach to an event or todo. The
// trigger is either a Duration relative to the start or an absolute
// date-time; exactly one must be set.
type AlarmConfig struct {
	Action          AlarmAction
	Trigger         *Duration
	AbsoluteTrigger *DateTime
	Description     string
	Summary         string
	Duration        *Duration
	Repeat          int
	Attendees       []string
	Attach          string
}

func validateAlarm(alarm *AlarmConfig) error {
	const op = "alarm.build"

	if alarm == nil {
		return newEncodeError(op, "", "alarm configuration cannot be nil")
	}
	switch alarm.Action {
	case AlarmActionDisplay, AlarmActionEmail, AlarmActionAudio:
	case "":
		return newEncodeError(op, PropAction, "alarm action is required")
	default:
		return newEncodeError(op, PropAction, "invalid alarm action "+string(alarm.Action))
	}
	if (alarm.Trigger == nil) == (alarm.AbsoluteTrigger == nil) {
		return newEncodeError(op, PropTrigger, "exactly one of Trigger and AbsoluteTrigger is required")
	}
	if alarm.Action == AlarmActionDisplay && alarm.Description == "" {
		return newEncodeError(op, PropDescription, "description is required for DISPLAY alarms")
	}
	if alarm.Action == AlarmActionEmail {
		if alarm.Description == "" {
			return newEncodeError(op, PropDescription, "description is required for EMAIL alarms")
		}
		if alarm.Summary == "" {
			return newEncodeError(op, PropSummary, "summary is required for EMAIL alarms")
		}
		if len(alarm.Attendees) == 0 {
			return newEncodeError(op, PropAttendee, "at least one attendee is required for EMAIL alarms")
		}
	}
	if alarm.Repeat > 0 && alarm.Duration == nil {
		return newEncodeError(op, PropRepeat, "duration is required when repeat is specified")
	}
	return nil
}

// AddAlarm validates the configuration, builds the VALARM and attaches
// it as a child of the component.
func (c *Component) AddAlarm(alarm *AlarmConfig) error {
	if err := validateAlarm(alarm); err != nil {
		return err
	}

	va := NewComponent(KindAlarm)
	va.SetProperty(PropAction, string(alarm.Action))
	if alarm.Trigger != nil {
		if err := va.SetDuration(PropTrigger, *alarm.Trigger); err != nil {
			return err
		}
	} else {
		p := va.SetProperty(PropTrigger, alarm.AbsoluteTrigger.Format())
		p.SetParam(ParamValue, "DATE-TIME")
	}
	if alarm.Description != "" {
		va.SetText(PropDescription, alarm.Description)
	}
	if alarm.Summary != "" {
		va.SetText(PropSummary, alarm.Summary)
	}
	if alarm.Duration != nil {
		if err := va.SetDuration(PropDuration, *alarm.Duration); err != nil {
			return err
		}
	}
	if alarm.Repeat > 0 {
		va.SetInt(PropRepeat, alarm.Repeat)
	}
	for _, attendee := range alarm.Attendees {
		va.AddProperty(PropAttendee, mailtoURI(attendee))
	}
	if alarm.Attach != "" {
		va.SetProperty(PropAttach, alarm.Attach)
	}

	c.AddChild(va)
	return nil
}

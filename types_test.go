package icalendar

import (
	"reflect"
	"testing"
)

func TestComponentPropertyBag(t *testing.T) {
	c := NewComponent("vevent")
	if c.Kind != KindEvent {
		t.Errorf("NewComponent() Kind = %q, want canonical VEVENT", c.Kind)
	}

	c.AddProperty(PropSummary, "first")
	c.AddProperty("X-TAG", "a")
	c.AddProperty("X-TAG", "b")

	if p := c.GetProperty("summary"); p == nil || p.Value != "first" {
		t.Errorf("GetProperty(summary) = %+v, want case-insensitive match", p)
	}
	if got := len(c.GetProperties("x-tag")); got != 2 {
		t.Errorf("GetProperties(x-tag) = %d values, want 2", got)
	}
	if _, ok := c.GetPropertyValue("X-MISSING"); ok {
		t.Error("GetPropertyValue() reported a missing property present")
	}

	// Set replaces in place, keeping position.
	c.SetProperty(PropSummary, "second")
	if c.Properties[0].Value != "second" {
		t.Errorf("SetProperty() moved the property: %+v", c.Properties)
	}

	c.RemoveProperty("X-TAG")
	if got := len(c.GetProperties("X-TAG")); got != 0 {
		t.Errorf("RemoveProperty() left %d values", got)
	}
	if len(c.Properties) != 1 {
		t.Errorf("got %d properties after removal, want 1", len(c.Properties))
	}
}

func TestParameters(t *testing.T) {
	p := NewProperty(PropAttendee, "mailto:x@example.com",
		Parameter{Name: "CN", Value: "X"},
		Parameter{Name: "ROLE", Value: "CHAIR"})

	if v, ok := p.Param("cn"); !ok || v != "X" {
		t.Errorf("Param(cn) = (%q, %v), want case-insensitive match", v, ok)
	}

	p.SetParam("CN", "Y")
	if p.Params[0] != (Parameter{Name: "CN", Value: "Y"}) {
		t.Errorf("SetParam() moved the parameter: %+v", p.Params)
	}

	p.SetParam("RSVP", "TRUE")
	if len(p.Params) != 3 {
		t.Errorf("SetParam() of a new name appended %d params", len(p.Params))
	}

	p.Params.Remove("role")
	if _, ok := p.Param("ROLE"); ok {
		t.Error("Remove() left the parameter behind")
	}

	dup := Parameters{{Name: "TYPE", Value: "work"}, {Name: "TYPE", Value: "voice"}}
	if got := dup.Values("type"); !reflect.DeepEqual(got, []string{"work", "voice"}) {
		t.Errorf("Values() = %v", got)
	}
}

func TestComponentChildren(t *testing.T) {
	cal := NewComponent(KindCalendar)
	e1 := NewComponent(KindEvent)
	e2 := NewComponent(KindEvent)
	todo := NewComponent(KindTodo)
	cal.AddChild(e1)
	cal.AddChild(todo)
	cal.AddChild(e2)

	events := cal.GetChildren(KindEvent)
	if len(events) != 2 || events[0] != e1 || events[1] != e2 {
		t.Errorf("GetChildren(VEVENT) = %v", events)
	}
	if got := len(cal.GetChildren(KindJournal)); got != 0 {
		t.Errorf("GetChildren(VJOURNAL) = %d, want 0", got)
	}
}

func TestComponentClone(t *testing.T) {
	cal := NewComponent(KindCalendar)
	cal.AddProperty(PropVersion, "2.0")
	event := NewComponent(KindEvent)
	event.AddProperty(PropSummary, "original", Parameter{Name: "LANGUAGE", Value: "en"})
	cal.AddChild(event)

	clone := cal.Clone()
	clone.Children[0].SetProperty(PropSummary, "changed")
	clone.Children[0].Properties[0].SetParam("LANGUAGE", "de")
	clone.AddChild(NewComponent(KindTodo))

	if v, _ := cal.Children[0].GetPropertyValue(PropSummary); v != "original" {
		t.Errorf("clone mutation leaked into original: SUMMARY = %q", v)
	}
	if lang, _ := cal.Children[0].Properties[0].Param("LANGUAGE"); lang != "en" {
		t.Errorf("clone mutation leaked into original: LANGUAGE = %q", lang)
	}
	if len(cal.Children) != 1 {
		t.Errorf("clone child append leaked into original: %d children", len(cal.Children))
	}
}

func TestComponentIntAccessors(t *testing.T) {
	c := NewComponent(KindEvent)

	if _, ok, err := c.GetInt(PropSequence); ok || err != nil {
		t.Errorf("GetInt() on missing property = (%v, %v)", ok, err)
	}

	c.SetInt(PropSequence, 3)
	n, ok, err := c.GetInt(PropSequence)
	if err != nil || !ok || n != 3 {
		t.Errorf("GetInt() = (%d, %v, %v), want 3", n, ok, err)
	}

	c.SetProperty(PropPriority, "high")
	if _, ok, err := c.GetInt(PropPriority); !ok || err == nil {
		t.Errorf("GetInt() on non-numeric value = (%v, %v), want present with error", ok, err)
	}
}

// Package icalendar implements the iCalendar (RFC 5545) wire format as a
// bidirectional codec between raw text and a generic component tree.
// Typed accessors translate property text into dates, durations and
// recurrence rules on demand, so unknown content passes through untouched.
package icalendar

import (
	"strconv"
	"strings"
)

// Component kind names for the component types defined by RFC 5545 and
// RFC 6350. Unknown kinds (experimental X- components) are carried as-is.
const (
	KindCalendar = "VCALENDAR"
	KindEvent    = "VEVENT"
	KindTodo     = "VTODO"
	KindJournal  = "VJOURNAL"
	KindFreeBusy = "VFREEBUSY"
	KindAlarm    = "VALARM"
	KindTimeZone = "VTIMEZONE"
	KindStandard = "STANDARD"
	KindDaylight = "DAYLIGHT"
	KindContact  = "VCARD"
)

// Property names used by the typed helpers. Any other name can still be
// read and written through the generic accessors.
const (
	PropVersion      = "VERSION"
	PropProdID       = "PRODID"
	PropCalScale     = "CALSCALE"
	PropMethod       = "METHOD"
	PropUID          = "UID"
	PropSummary      = "SUMMARY"
	PropDescription  = "DESCRIPTION"
	PropLocation     = "LOCATION"
	PropComment      = "COMMENT"
	PropContact      = "CONTACT"
	PropCategories   = "CATEGORIES"
	PropResources    = "RESOURCES"
	PropStatus       = "STATUS"
	PropClass        = "CLASS"
	PropTransp       = "TRANSP"
	PropPriority     = "PRIORITY"
	PropSequence     = "SEQUENCE"
	PropPercent      = "PERCENT-COMPLETE"
	PropURL          = "URL"
	PropGeo          = "GEO"
	PropDTStart      = "DTSTART"
	PropDTEnd        = "DTEND"
	PropDTStamp      = "DTSTAMP"
	PropDue          = "DUE"
	PropCompleted    = "COMPLETED"
	PropCreated      = "CREATED"
	PropLastModified = "LAST-MODIFIED"
	PropRecurrenceID = "RECURRENCE-ID"
	PropExDate       = "EXDATE"
	PropRDate        = "RDATE"
	PropDuration     = "DURATION"
	PropRRule        = "RRULE"
	PropTZID         = "TZID"
	PropTZName       = "TZNAME"
	PropTZOffsetFrom = "TZOFFSETFROM"
	PropTZOffsetTo   = "TZOFFSETTO"
	PropTZURL        = "TZURL"
	PropAction       = "ACTION"
	PropTrigger      = "TRIGGER"
	PropRepeat       = "REPEAT"
	PropAttendee     = "ATTENDEE"
	PropOrganizer    = "ORGANIZER"
	PropAttach       = "ATTACH"
)

// Parameter names with typed behavior attached to them.
const (
	ParamValue    = "VALUE"
	ParamTZID     = "TZID"
	ParamCN       = "CN"
	ParamRole     = "ROLE"
	ParamPartStat = "PARTSTAT"
	ParamRSVP     = "RSVP"
	ParamAltRep   = "ALTREP"
	ParamLanguage = "LANGUAGE"
	ParamFmtType  = "FMTTYPE"
	ParamRelated  = "RELATED"
	ParamType     = "TYPE"
)

// Parameter is a single property parameter. Parameter order within a
// property is preserved across a parse/serialize round trip.
type Parameter struct {
	Name  string
	Value string
}

// Parameters is the ordered parameter list of a property. Name lookups
// are case-insensitive; duplicate names are legal on input.
type Parameters []Parameter

// Get returns the value of the first parameter with the given name.
func (ps Parameters) Get(name string) (string, bool) {
	for _, p := range ps {
		if strings.EqualFold(p.Name, name) {
			return p.Value, true
		}
	}
	return "", false
}

// Values returns the values of every parameter with the given name.
func (ps Parameters) Values(name string) []string {
	var values []string
	for _, p := range ps {
		if strings.EqualFold(p.Name, name) {
			values = append(values, p.Value)
		}
	}
	return values
}

// Set replaces the first parameter with the given name, or appends a new
// one, keeping the position of an existing parameter stable.
func (ps *Parameters) Set(name, value string) {
	for i := range *ps {
		if strings.EqualFold((*ps)[i].Name, name) {
			(*ps)[i].Value = value
			return
		}
	}
	*ps = append(*ps, Parameter{Name: name, Value: value})
}

// Remove deletes every parameter with the given name.
func (ps *Parameters) Remove(name string) {
	kept := (*ps)[:0]
	for _, p := range *ps {
		if !strings.EqualFold(p.Name, name) {
			kept = append(kept, p)
		}
	}
	*ps = kept
}

// Property is one content line of a component: a name, an ordered
// parameter list and a value. Value holds the raw wire form, still
// escaped; the typed accessors on Component decode it lazily.
type Property struct {
	Name   string
	Value  string
	Params Parameters
}

// NewProperty builds a property with the given name and raw value.
func NewProperty(name, value string, params ...Parameter) Property {
	return Property{Name: name, Value: value, Params: params}
}

// Param returns the value of the first parameter with the given name.
func (p *Property) Param(name string) (string, bool) {
	return p.Params.Get(name)
}

// SetParam replaces or appends a parameter on the property.
func (p *Property) SetParam(name, value string) {
	p.Params.Set(name, value)
}

// Clone returns a copy of the property with its own parameter list.
func (p *Property) Clone() Property {
	clone := Property{Name: p.Name, Value: p.Value}
	if len(p.Params) > 0 {
		clone.Params = make(Parameters, len(p.Params))
		copy(clone.Params, p.Params)
	}
	return clone
}

// Component is a node of the iCalendar tree. Every component kind,
// standard or experimental, uses this one struct; kind-specific behavior
// lives entirely in helper functions, not in the type.
type Component struct {
	Kind       string
	Properties []Property
	Children   []*Component
}

// NewComponent builds an empty component of the given kind. The kind is
// canonicalized to upper case, matching serialized output.
func NewComponent(kind string) *Component {
	return &Component{Kind: strings.ToUpper(kind)}
}

// GetProperty returns the first property with the given name, or nil.
// The match is case-insensitive.
func (c *Component) GetProperty(name string) *Property {
	for i := range c.Properties {
		if strings.EqualFold(c.Properties[i].Name, name) {
			return &c.Properties[i]
		}
	}
	return nil
}

// GetProperties returns every property with the given name, in order.
func (c *Component) GetProperties(name string) []*Property {
	var props []*Property
	for i := range c.Properties {
		if strings.EqualFold(c.Properties[i].Name, name) {
			props = append(props, &c.Properties[i])
		}
	}
	return props
}

// GetPropertyValue returns the raw value of the first property with the
// given name. The second return reports whether the property exists.
func (c *Component) GetPropertyValue(name string) (string, bool) {
	if p := c.GetProperty(name); p != nil {
		return p.Value, true
	}
	return "", false
}

// AddProperty appends a property and returns a pointer to it so callers
// can attach parameters. The pointer is invalidated by further appends.
func (c *Component) AddProperty(name, value string, params ...Parameter) *Property {
	c.Properties = append(c.Properties, Property{Name: name, Value: value, Params: params})
	return &c.Properties[len(c.Properties)-1]
}

// SetProperty replaces the value and parameters of the first property
// with the given name, or appends a new one. The position of an existing
// property is kept stable.
func (c *Component) SetProperty(name, value string, params ...Parameter) *Property {
	if p := c.GetProperty(name); p != nil {
		p.Value = value
		p.Params = params
		return p
	}
	return c.AddProperty(name, value, params...)
}

// RemoveProperty deletes every property with the given name.
func (c *Component) RemoveProperty(name string) {
	kept := c.Properties[:0]
	for _, p := range c.Properties {
		if !strings.EqualFold(p.Name, name) {
			kept = append(kept, p)
		}
	}
	c.Properties = kept
}

// AddChild appends a child component.
func (c *Component) AddChild(child *Component) {
	c.Children = append(c.Children, child)
}

// GetChildren returns the direct children of the given kind, in order.
func (c *Component) GetChildren(kind string) []*Component {
	var children []*Component
	for _, child := range c.Children {
		if strings.EqualFold(child.Kind, kind) {
			children = append(children, child)
		}
	}
	return children
}

// Clone returns a deep copy of the component tree.
func (c *Component) Clone() *Component {
	clone := &Component{Kind: c.Kind}
	if len(c.Properties) > 0 {
		clone.Properties = make([]Property, 0, len(c.Properties))
		for i := range c.Properties {
			clone.Properties = append(clone.Properties, c.Properties[i].Clone())
		}
	}
	for _, child := range c.Children {
		clone.Children = append(clone.Children, child.Clone())
	}
	return clone
}

// GetInt decodes the first property with the given name as an integer.
// The bool reports presence; the error is set only when the property
// exists and its value is not numeric.
func (c *Component) GetInt(name string) (int, bool, error) {
	p := c.GetProperty(name)
	if p == nil {
		return 0, false, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(p.Value))
	if err != nil {
		return 0, true, newDecodeError("component.int", p.Name, p.Value, "value is not an integer")
	}
	return n, true, nil
}

// SetInt stores an integer-valued property.
func (c *Component) SetInt(name string, value int) {
	c.SetProperty(name, strconv.Itoa(value))
}

package icalendar

import "strings"

// vCard property names. The contact grammar reuses the calendar wire
// primitives (folding, escaping, parameter encoding) with its own
// property vocabulary; only the names used by the typed helpers are
// listed here.
const (
	PropFormattedName = "FN"
	PropName          = "N"
	PropNickname      = "NICKNAME"
	PropEmail         = "EMAIL"
	PropTel           = "TEL"
	PropOrg           = "ORG"
	PropTitle         = "TITLE"
	PropRole          = "ROLE"
	PropNote          = "NOTE"
	PropAddress       = "ADR"
	PropBirthday      = "BDAY"
	PropPhoto         = "PHOTO"
)

// ContactName is the decoded structured N value. The wire form is five
// semicolon-separated fields, each a comma-separated text list; the
// helpers here keep one value per field, which covers common cards.
type ContactName struct {
	Family     string
	Given      string
	Additional string
	Prefix     string
	Suffix     string
}

// NewContact builds an empty VCARD carrying VERSION 4.0.
func NewContact() *Component {
	card := NewComponent(KindContact)
	card.SetProperty(PropVersion, "4.0")
	return card
}

// ParseContact decodes a document containing exactly one VCARD.
func ParseContact(data string) (*Component, error) {
	cards, err := ParseContacts(data)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, ErrNoContact
	}
	if len(cards) > 1 {
		return nil, newStructuralError("parse.contact", "multiple contacts found")
	}
	return cards[0], nil
}

// ParseContacts decodes a document of concatenated VCARDs. A top-level
// component of any other kind is a structural error.
func ParseContacts(data string) ([]*Component, error) {
	comps, err := ParseComponents(data)
	if err != nil {
		return nil, err
	}
	for _, comp := range comps {
		if comp.Kind != KindContact {
			return nil, newStructuralError("parse.contact", "unexpected top-level component "+comp.Kind)
		}
	}
	return comps, nil
}

// SerializeContacts renders several cards as one concatenated document.
func SerializeContacts(cards []*Component, opts *SerializeOptions) (string, error) {
	return SerializeCalendars(cards, opts)
}

// GetContactName decodes the structured N property. Fields beyond the
// five defined ones are ignored; escaped semicolons stay inside their
// field.
func (c *Component) GetContactName() (ContactName, bool) {
	p := c.GetProperty(PropName)
	if p == nil {
		return ContactName{}, false
	}
	fields := splitEscapedList(p.Value, ';')
	var name ContactName
	dst := []*string{&name.Family, &name.Given, &name.Additional, &name.Prefix, &name.Suffix}
	for i, field := range fields {
		if i >= len(dst) {
			break
		}
		*dst[i] = UnescapeText(field)
	}
	return name, true
}

// SetContactName stores the structured N property and refreshes FN when
// it is absent, so a card built through the helpers always displays.
func (c *Component) SetContactName(name ContactName) {
	fields := []string{name.Family, name.Given, name.Additional, name.Prefix, name.Suffix}
	escaped := make([]string, len(fields))
	for i, f := range fields {
		escaped[i] = EscapeText(f)
	}
	c.SetProperty(PropName, strings.Join(escaped, ";"))

	if _, ok := c.GetPropertyValue(PropFormattedName); !ok {
		display := strings.TrimSpace(strings.Join(nonEmpty(name.Prefix, name.Given, name.Additional, name.Family, name.Suffix), " "))
		if display != "" {
			c.SetText(PropFormattedName, display)
		}
	}
}

func nonEmpty(fields ...string) []string {
	out := fields[:0]
	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// AddEmail appends an EMAIL property, typed (home, work) when a type is
// given.
func (c *Component) AddEmail(email, kind string) *Component {
	var params Parameters
	if kind != "" {
		params = Parameters{{Name: ParamType, Value: strings.ToLower(kind)}}
	}
	c.AddProperty(PropEmail, email, params...)
	return c
}

// AddTel appends a TEL property, typed when a type is given.
func (c *Component) AddTel(number, kind string) *Component {
	var params Parameters
	if kind != "" {
		params = Parameters{{Name: ParamType, Value: strings.ToLower(kind)}}
	}
	c.AddProperty(PropTel, number, params...)
	return c
}

// GetOrg decodes the ORG property into its organizational units.
func (c *Component) GetOrg() ([]string, bool) {
	p := c.GetProperty(PropOrg)
	if p == nil {
		return nil, false
	}
	fields := splitEscapedList(p.Value, ';')
	units := make([]string, 0, len(fields))
	for _, f := range fields {
		units = append(units, UnescapeText(f))
	}
	return units, true
}

// SetOrg stores the organization and its sub-units as one semicolon-
// separated ORG property.
func (c *Component) SetOrg(units ...string) {
	escaped := make([]string, len(units))
	for i, u := range units {
		escaped[i] = EscapeText(u)
	}
	c.SetProperty(PropOrg, strings.Join(escaped, ";"))
}

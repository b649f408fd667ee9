package icalendar

import (
	"sort"
	"strings"
)

// SerializeOptions control rendering. The zero value is the default:
// 75-octet folding, stored property order, empty-valued properties
// skipped, version injected by root kind, no validation pre-pass.
type SerializeOptions struct {
	// FoldWidth is the physical-line octet limit. 0 means DefaultFoldWidth.
	FoldWidth int
	// SortProperties renders properties in name order instead of stored
	// order. VERSION stays first on top-level components either way.
	SortProperties bool
	// IncludeEmptyProperties emits properties whose value is empty
	// instead of skipping them.
	IncludeEmptyProperties bool
	// Version is injected as VERSION when a top-level component has
	// none. Empty picks the conventional version for the root kind:
	// 2.0 for VCALENDAR, 4.0 for VCARD.
	Version string
	// Validate runs ValidateComponent over the tree before rendering.
	Validate bool
}

// Serialize renders one component tree as a document: CRLF line
// endings, folded content lines, BEGIN/END framing. An unvalidated tree
// still serializes; the serializer itself fails only at a property that
// would corrupt the framing, naming it in the error.
func Serialize(root *Component, opts *SerializeOptions) (string, error) {
	if opts == nil {
		opts = &SerializeOptions{}
	}
	if opts.Validate {
		if err := ValidateComponent(root); err != nil {
			return "", err
		}
	}

	var b strings.Builder
	if err := writeComponent(&b, root, opts, true); err != nil {
		return "", err
	}
	return b.String(), nil
}

// SerializeCalendar renders one calendar with default options.
func SerializeCalendar(cal *Component) (string, error) {
	return Serialize(cal, nil)
}

// SerializeCalendars renders several top-level trees as one concatenated
// document, the inverse of ParseCalendars.
func SerializeCalendars(cals []*Component, opts *SerializeOptions) (string, error) {
	var b strings.Builder
	for _, cal := range cals {
		out, err := Serialize(cal, opts)
		if err != nil {
			return "", err
		}
		b.WriteString(out)
	}
	return b.String(), nil
}

func writeComponent(b *strings.Builder, c *Component, opts *SerializeOptions, top bool) error {
	const op = "serialize.component"

	if c == nil {
		return newEncodeError(op, "", "nil component")
	}
	kind := strings.ToUpper(strings.TrimSpace(c.Kind))
	if kind == "" {
		return newEncodeError(op, "", "component kind is empty")
	}
	if !validWireName(kind) {
		return newEncodeError(op, "", "component kind "+kind+" contains illegal characters")
	}

	width := opts.FoldWidth
	if width == 0 {
		width = DefaultFoldWidth
	}

	writeLine(b, "BEGIN:"+kind, width)

	for _, p := range orderProperties(c, opts, top, kind) {
		if p.Value == "" && !opts.IncludeEmptyProperties {
			continue
		}
		line, err := renderProperty(p)
		if err != nil {
			return err
		}
		writeLine(b, line, width)
	}

	for _, child := range c.Children {
		if err := writeComponent(b, child, opts, false); err != nil {
			return err
		}
	}

	writeLine(b, "END:"+kind, width)
	return nil
}

// orderProperties picks the emit order: VERSION first on top-level
// components (injected if absent), then the rest in stored or sorted
// order.
func orderProperties(c *Component, opts *SerializeOptions, top bool, kind string) []Property {
	ordered := make([]Property, 0, len(c.Properties)+1)
	versionIdx := -1
	if top {
		for i := range c.Properties {
			if strings.EqualFold(c.Properties[i].Name, PropVersion) {
				versionIdx = i
				break
			}
		}
		switch {
		case versionIdx >= 0:
			ordered = append(ordered, c.Properties[versionIdx])
		default:
			version := opts.Version
			if version == "" {
				version = defaultVersion(kind)
			}
			if version != "" {
				ordered = append(ordered, Property{Name: PropVersion, Value: version})
			}
		}
	}

	rest := make([]Property, 0, len(c.Properties))
	for i := range c.Properties {
		if i == versionIdx {
			continue
		}
		rest = append(rest, c.Properties[i])
	}
	if opts.SortProperties {
		sort.SliceStable(rest, func(i, j int) bool {
			return strings.ToUpper(rest[i].Name) < strings.ToUpper(rest[j].Name)
		})
	}
	return append(ordered, rest...)
}

func defaultVersion(kind string) string {
	switch kind {
	case KindCalendar:
		return "2.0"
	case KindContact:
		return "4.0"
	default:
		return ""
	}
}

// renderProperty produces one unfolded content line. Values travel in
// their stored wire form; only parameter values are encoded here.
func renderProperty(p Property) (string, error) {
	const op = "serialize.property"

	name := strings.ToUpper(strings.TrimSpace(p.Name))
	if name == "" {
		return "", newEncodeError(op, "", "property name is empty")
	}
	if !validWireName(name) {
		return "", newEncodeError(op, name, "property name contains illegal characters")
	}
	if strings.ContainsAny(p.Value, "\r\n") {
		return "", newEncodeError(op, name, "raw line break in property value")
	}

	var b strings.Builder
	b.WriteString(name)
	for _, param := range p.Params {
		pname := strings.ToUpper(strings.TrimSpace(param.Name))
		if pname == "" || !validWireName(pname) {
			return "", newEncodeError(op, name, "parameter name "+param.Name+" is not valid")
		}
		b.WriteByte(';')
		b.WriteString(pname)
		b.WriteByte('=')
		b.WriteString(EncodeParameterValue(param.Value))
	}
	b.WriteByte(':')
	b.WriteString(p.Value)
	return b.String(), nil
}

func writeLine(b *strings.Builder, line string, width int) {
	b.WriteString(FoldLine(line, width))
	b.WriteString("\r\n")
}

// validWireName accepts the iana-token grammar: letters, digits and
// hyphens.
func validWireName(name string) bool {
	for i := 0; i < len(name); i++ {
		ch := name[i]
		switch {
		case ch >= 'A' && ch <= 'Z':
		case ch >= 'a' && ch <= 'z':
		case ch >= '0' && ch <= '9':
		case ch == '-':
		default:
			return false
		}
	}
	return len(name) > 0
}

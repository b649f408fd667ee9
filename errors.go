package icalendar

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownTimeZone   = errors.New("unknown time zone")
	ErrNoCalendar        = errors.New("no calendar found")
	ErrMultipleCalendars = errors.New("multiple calendars found")
	ErrNoContact         = errors.New("no contact found")
)

// ErrorKind classifies codec failures into the three classes callers
// can act on: document structure, value decoding, value encoding.
type ErrorKind int

const (
	ErrorStructural ErrorKind = iota + 1
	ErrorDecode
	ErrorEncode
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorStructural:
		return "structural"
	case ErrorDecode:
		return "decode"
	case ErrorEncode:
		return "encode"
	default:
		return "unknown"
	}
}

// Error is the structured error returned by the parser, the serializer
// and the typed value codecs. Property and Text carry the offending
// property name and raw input when they are known.
type Error struct {
	Kind     ErrorKind
	Op       string
	Property string
	Text     string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	prefix := fmt.Sprintf("icalendar %s: %s", e.Op, e.Kind)
	if e.Property != "" {
		prefix = fmt.Sprintf("%s: %s", prefix, e.Property)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
	}
	if e.Text != "" {
		return fmt.Sprintf("%s: %s (input %q)", prefix, e.Message, e.Text)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) IsStructural() bool {
	return e.Kind == ErrorStructural
}

func (e *Error) IsDecode() bool {
	return e.Kind == ErrorDecode
}

func (e *Error) IsEncode() bool {
	return e.Kind == ErrorEncode
}

func newStructuralError(op, message string) *Error {
	return &Error{
		Kind:    ErrorStructural,
		Op:      op,
		Message: message,
	}
}

func newDecodeError(op, property, text, message string) *Error {
	return &Error{
		Kind:     ErrorDecode,
		Op:       op,
		Property: property,
		Text:     text,
		Message:  message,
	}
}

func newEncodeError(op, property, message string) *Error {
	return &Error{
		Kind:     ErrorEncode,
		Op:       op,
		Property: property,
		Message:  message,
	}
}

func wrapDecodeError(op, property, text string, err error) *Error {
	if err == nil {
		return nil
	}

	var icalErr *Error
	if errors.As(err, &icalErr) {
		if icalErr.Property == "" {
			icalErr.Property = property
		}
		if icalErr.Text == "" {
			icalErr.Text = text
		}
		return icalErr
	}

	return &Error{
		Kind:     ErrorDecode,
		Op:       op,
		Property: property,
		Text:     text,
		Message:  "decoding failed",
		Err:      err,
	}
}

package iibin

import (
	"fmt"
	"strings"

	"golang.org/x/xerrors"
)

// ErrorKind identifies the class of a codec or registry failure. A kind is
// itself an error so that it can be used as the target of xerrors.Is.
type ErrorKind int

const (
	// UnknownKind is returned by KindOf when an error is not a codec error.
	UnknownKind ErrorKind = iota

	// SchemaNotFound is returned when a schema name is not registered.
	SchemaNotFound

	// DuplicateSchemaName is returned when a different schema is registered
	// under an existing name.
	DuplicateSchemaName

	// DuplicateEnumName is returned when a different enum is registered under
	// an existing name.
	DuplicateEnumName

	// InvalidFieldDefinition is returned for a bad type, a tag collision or a
	// field count overflow.
	InvalidFieldDefinition

	// TypeMismatch is returned when a value does not match the declared type
	// of its field, or when a record has the wrong wire type.
	TypeMismatch

	// MissingRequiredField is returned when a required field is absent.
	MissingRequiredField

	// UnknownEnumValue is returned when an enum symbol, code or definition
	// cannot be resolved.
	UnknownEnumValue

	// MalformedVarint is returned when a varint is longer than 10 bytes,
	// overflows or is truncated.
	MalformedVarint

	// UnexpectedEndOfBuffer is returned when a payload is truncated.
	UnexpectedEndOfBuffer

	// UnknownWireType is returned when a key holds an unsupported wire type.
	UnknownWireType

	// RecursionLimitExceeded is returned when nested messages are deeper than
	// the configured maximum.
	RecursionLimitExceeded

	// UnknownField is returned by a strict decoder when a record has a tag
	// that the schema does not define.
	UnknownField
)

var kindNames = map[ErrorKind]string{
	UnknownKind:            "unknown error",
	SchemaNotFound:         "schema not found",
	DuplicateSchemaName:    "duplicate schema name",
	DuplicateEnumName:      "duplicate enum name",
	InvalidFieldDefinition: "invalid field definition",
	TypeMismatch:           "type mismatch",
	MissingRequiredField:   "missing required field",
	UnknownEnumValue:       "unknown enum value",
	MalformedVarint:        "malformed varint",
	UnexpectedEndOfBuffer:  "unexpected end of buffer",
	UnknownWireType:        "unknown wire type",
	RecursionLimitExceeded: "recursion limit exceeded",
	UnknownField:           "unknown field",
}

// Error implements error. It returns the human readable name of the kind.
func (k ErrorKind) Error() string {
	name, found := kindNames[k]
	if !found {
		return fmt.Sprintf("error kind %d", int(k))
	}

	return name
}

// String implements fmt.Stringer.
func (k ErrorKind) String() string {
	return k.Error()
}

// Error is the error returned by the codec and the registry. It carries the
// kind of the failure and, when relevant, the schema and field involved.
//
// - implements error
type Error struct {
	Kind   ErrorKind
	Schema string
	Field  string
	Tag    uint32
	Reason string
}

// NewError returns a new error of the given kind with a formatted reason.
func NewError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{
		Kind:   kind,
		Reason: fmt.Sprintf(format, args...),
	}
}

// WithSchema returns the error annotated with the schema name, unless it is
// already annotated.
func (e *Error) WithSchema(name string) *Error {
	if e.Schema == "" {
		e.Schema = name
	}

	return e
}

// WithField returns the error annotated with the field, unless it is already
// annotated.
func (e *Error) WithField(name string, tag uint32) *Error {
	if e.Field == "" {
		e.Field = name
		e.Tag = tag
	}

	return e
}

// Error implements error. It returns a message of the form
// "kind: schema 'S' field 'f' (tag N): reason".
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(e.Kind.Error())

	var loc []string

	if e.Schema != "" {
		loc = append(loc, fmt.Sprintf("schema '%s'", e.Schema))
	}
	if e.Field != "" {
		loc = append(loc, fmt.Sprintf("field '%s' (tag %d)", e.Field, e.Tag))
	}

	if len(loc) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(loc, " "))
	}

	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}

	return b.String()
}

// Is returns true when the target is the kind of the error, or an error of
// the same kind.
func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case ErrorKind:
		return t == e.Kind
	case *Error:
		return t.Kind == e.Kind
	default:
		return false
	}
}

// KindOf returns the kind of the first codec error found in the chain of the
// error, or UnknownKind.
func KindOf(err error) ErrorKind {
	var e *Error
	if xerrors.As(err, &e) {
		return e.Kind
	}

	var k ErrorKind
	if xerrors.As(err, &k) {
		return k
	}

	return UnknownKind
}

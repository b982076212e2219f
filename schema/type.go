package schema

import (
	"go.dedis.ch/iibin"
	"go.dedis.ch/iibin/wire"
)

// Type is the declared type of a field.
type Type uint8

const (
	// Invalid is the zero value of a type.
	Invalid Type = iota
	Bool
	Int32
	Int64
	Uint32
	Uint64
	Sint32
	Sint64
	Fixed32
	Fixed64
	Sfixed32
	Sfixed64
	Float
	Double
	String
	Bytes
	// Enum is a reference to an enum definition by name.
	Enum
	// Message is a reference to another schema by name.
	Message
)

var typeNames = []string{
	Invalid:  "invalid",
	Bool:     "bool",
	Int32:    "int32",
	Int64:    "int64",
	Uint32:   "uint32",
	Uint64:   "uint64",
	Sint32:   "sint32",
	Sint64:   "sint64",
	Fixed32:  "fixed32",
	Fixed64:  "fixed64",
	Sfixed32: "sfixed32",
	Sfixed64: "sfixed64",
	Float:    "float",
	Double:   "double",
	String:   "string",
	Bytes:    "bytes",
	Enum:     "enum",
	Message:  "message",
}

// ParseType returns the type with the given name.
func ParseType(name string) (Type, error) {
	for i, n := range typeNames {
		if n == name && Type(i) != Invalid {
			return Type(i), nil
		}
	}

	return Invalid, iibin.NewError(iibin.InvalidFieldDefinition, "unknown type '%s'", name)
}

// String implements fmt.Stringer.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}

	return typeNames[Invalid]
}

// Valid returns true for the declared types.
func (t Type) Valid() bool {
	return t > Invalid && t <= Message
}

// WireType returns the wire type used to frame the values of the type.
func (t Type) WireType() wire.Type {
	switch t {
	case Fixed64, Sfixed64, Double:
		return wire.Fixed64
	case Fixed32, Sfixed32, Float:
		return wire.Fixed32
	case String, Bytes, Message:
		return wire.LengthDelimited
	default:
		return wire.Varint
	}
}

// Packable returns true if repeated values of the type can be packed in a
// single length-delimited record.
func (t Type) Packable() bool {
	return t.Valid() && t.WireType() != wire.LengthDelimited
}

// Integer returns true for the types whose values are Go integers.
func (t Type) Integer() bool {
	switch t {
	case Int32, Int64, Uint32, Uint64, Sint32, Sint64,
		Fixed32, Fixed64, Sfixed32, Sfixed64:
		return true
	default:
		return false
	}
}

// Rule is the cardinality of a field.
type Rule uint8

const (
	// Optional fields may be absent.
	Optional Rule = iota
	// Required fields must be present.
	Required
	// Repeated fields hold a sequence of values.
	Repeated
)

var ruleNames = []string{
	Optional: "optional",
	Required: "required",
	Repeated: "repeated",
}

// ParseRule returns the rule with the given name. An empty name is optional.
func ParseRule(name string) (Rule, error) {
	if name == "" {
		return Optional, nil
	}

	for i, n := range ruleNames {
		if n == name {
			return Rule(i), nil
		}
	}

	return Optional, iibin.NewError(iibin.InvalidFieldDefinition, "unknown rule '%s'", name)
}

// String implements fmt.Stringer.
func (r Rule) String() string {
	if int(r) < len(ruleNames) {
		return ruleNames[r]
	}

	return "unknown"
}

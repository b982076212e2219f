package schema

import (
	"go.dedis.ch/iibin"
	"go.dedis.ch/iibin/wire"
)

// Field is the definition of a field of a schema.
type Field struct {
	Name string
	Tag  uint32
	Type Type

	// Ref is the name of the enum or the schema referenced by the field. It is
	// resolved when a value is encoded or decoded.
	Ref string

	Rule   Rule
	Packed bool
}

// WireType returns the wire type of a single value of the field. Packed
// fields use length-delimited records instead.
func (f Field) WireType() wire.Type {
	return f.Type.WireType()
}

// Required returns true if the field must be present.
func (f Field) Required() bool {
	return f.Rule == Required
}

// Repeated returns true if the field holds a sequence.
func (f Field) Repeated() bool {
	return f.Rule == Repeated
}

// Validate returns an InvalidFieldDefinition error if the field is not
// well-formed.
func (f Field) Validate() error {
	err := f.validate()
	if err != nil {
		return err
	}

	return nil
}

func (f Field) validate() *iibin.Error {
	if f.Name == "" {
		return f.invalid("field name is empty")
	}

	if f.Tag == 0 || f.Tag > wire.MaxTag {
		return f.invalid("tag must be between 1 and %d", wire.MaxTag)
	}

	if !f.Type.Valid() {
		return f.invalid("invalid type")
	}

	switch f.Type {
	case Enum, Message:
		if f.Ref == "" {
			return f.invalid("%s field requires a reference", f.Type)
		}
	default:
		if f.Ref != "" {
			return f.invalid("%s field cannot reference '%s'", f.Type, f.Ref)
		}
	}

	if f.Rule > Repeated {
		return f.invalid("invalid rule")
	}

	if f.Packed {
		if !f.Repeated() {
			return f.invalid("only repeated fields can be packed")
		}

		if !f.Type.Packable() {
			return f.invalid("%s values cannot be packed", f.Type)
		}
	}

	return nil
}

func (f Field) invalid(format string, args ...interface{}) *iibin.Error {
	return iibin.NewError(iibin.InvalidFieldDefinition, format, args...).
		WithField(f.Name, f.Tag)
}

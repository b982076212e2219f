// Package schema defines the model that drives the codec: the declared types,
// the field definitions, the compiled schemas and the enum definitions.
//
// A schema is compiled once from its field definitions and is immutable
// afterwards, which makes it safe to share between goroutines. References to
// other schemas and enums are kept by name and resolved by the codec through
// the registry.
package schema

import (
	"sort"

	"go.dedis.ch/iibin"
)

// Schema is a compiled message definition. The fields are sorted by tag.
type Schema struct {
	name   string
	fields []Field
	byTag  map[uint32]int
	byName map[string]int
}

// NewSchema compiles the fields into a schema. It returns an
// InvalidFieldDefinition error when a field is invalid, when two fields share
// a tag or a name, or when there are more than maxFields fields. A
// non-positive maxFields disables the limit.
func NewSchema(name string, fields []Field, maxFields int) (*Schema, error) {
	if name == "" {
		return nil, iibin.NewError(iibin.InvalidFieldDefinition, "schema name is empty")
	}

	if maxFields > 0 && len(fields) > maxFields {
		return nil, iibin.NewError(iibin.InvalidFieldDefinition,
			"%d fields exceed the maximum of %d", len(fields), maxFields).WithSchema(name)
	}

	s := &Schema{
		name:   name,
		fields: make([]Field, len(fields)),
		byTag:  make(map[uint32]int, len(fields)),
		byName: make(map[string]int, len(fields)),
	}

	copy(s.fields, fields)

	sort.SliceStable(s.fields, func(i, j int) bool {
		return s.fields[i].Tag < s.fields[j].Tag
	})

	for i, f := range s.fields {
		err := f.validate()
		if err != nil {
			return nil, err.WithSchema(name)
		}

		_, found := s.byTag[f.Tag]
		if found {
			return nil, iibin.NewError(iibin.InvalidFieldDefinition,
				"tag %d is already used", f.Tag).WithSchema(name).WithField(f.Name, f.Tag)
		}

		_, found = s.byName[f.Name]
		if found {
			return nil, iibin.NewError(iibin.InvalidFieldDefinition,
				"name is already used").WithSchema(name).WithField(f.Name, f.Tag)
		}

		s.byTag[f.Tag] = i
		s.byName[f.Name] = i
	}

	return s, nil
}

// Name returns the name of the schema.
func (s *Schema) Name() string {
	return s.name
}

// Len returns the number of fields.
func (s *Schema) Len() int {
	return len(s.fields)
}

// Field returns the ith field in tag order.
func (s *Schema) Field(i int) Field {
	return s.fields[i]
}

// Fields returns a copy of the fields in tag order.
func (s *Schema) Fields() []Field {
	fields := make([]Field, len(s.fields))
	copy(fields, s.fields)

	return fields
}

// FieldByTag returns the field with the given tag if it exists.
func (s *Schema) FieldByTag(tag uint64) (Field, bool) {
	if tag > uint64(^uint32(0)) {
		return Field{}, false
	}

	index, found := s.byTag[uint32(tag)]
	if !found {
		return Field{}, false
	}

	return s.fields[index], true
}

// FieldByName returns the field with the given name if it exists.
func (s *Schema) FieldByName(name string) (Field, bool) {
	index, found := s.byName[name]
	if !found {
		return Field{}, false
	}

	return s.fields[index], true
}

// Equal returns true if both schemas have the same name and fields.
func (s *Schema) Equal(other *Schema) bool {
	if other == nil || s.name != other.name || len(s.fields) != len(other.fields) {
		return false
	}

	for i, f := range s.fields {
		if f != other.fields[i] {
			return false
		}
	}

	return true
}

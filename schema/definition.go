package schema

import (
	"sort"

	"go.dedis.ch/iibin"
	"go.dedis.ch/iibin/wire"
)

// FieldSpec is the user-facing description of a field, as it appears in a
// schema document.
type FieldSpec struct {
	Type   string `yaml:"type"`
	Tag    int64  `yaml:"tag"`
	Rule   string `yaml:"rule,omitempty"`
	Packed bool   `yaml:"packed,omitempty"`
	Ref    string `yaml:"ref,omitempty"`
}

// Definition maps the field names of a message to their description.
type Definition map[string]FieldSpec

// Fields converts the definition into field definitions sorted by tag.
func (d Definition) Fields() ([]Field, error) {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}

	sort.Strings(names)

	fields := make([]Field, 0, len(d))

	for _, name := range names {
		f, err := d[name].field(name)
		if err != nil {
			return nil, err
		}

		fields = append(fields, f)
	}

	sort.SliceStable(fields, func(i, j int) bool {
		return fields[i].Tag < fields[j].Tag
	})

	return fields, nil
}

func (fs FieldSpec) field(name string) (Field, error) {
	if fs.Tag <= 0 || fs.Tag > wire.MaxTag {
		return Field{}, iibin.NewError(iibin.InvalidFieldDefinition,
			"tag %d must be between 1 and %d", fs.Tag, wire.MaxTag).WithField(name, 0)
	}

	tag := uint32(fs.Tag)

	typ, err := ParseType(fs.Type)
	if err != nil {
		return Field{}, iibin.NewError(iibin.InvalidFieldDefinition,
			"unknown type '%s'", fs.Type).WithField(name, tag)
	}

	rule, err := ParseRule(fs.Rule)
	if err != nil {
		return Field{}, iibin.NewError(iibin.InvalidFieldDefinition,
			"unknown rule '%s'", fs.Rule).WithField(name, tag)
	}

	f := Field{
		Name:   name,
		Tag:    tag,
		Type:   typ,
		Ref:    fs.Ref,
		Rule:   rule,
		Packed: fs.Packed,
	}

	return f, nil
}

// DefinitionOf returns the definition of the schema.
func DefinitionOf(s *Schema) Definition {
	def := make(Definition, s.Len())

	for _, f := range s.fields {
		fs := FieldSpec{
			Type:   f.Type.String(),
			Tag:    int64(f.Tag),
			Packed: f.Packed,
			Ref:    f.Ref,
		}

		if f.Rule != Optional {
			fs.Rule = f.Rule.String()
		}

		def[f.Name] = fs
	}

	return def
}

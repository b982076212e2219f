package catalog

import (
	"github.com/rs/zerolog"
	"go.dedis.ch/iibin/schema"
	"go.dedis.ch/iibin/schema/registry"
	"golang.org/x/xerrors"
)

// Names of the schemas that describe the entries of a catalog. The entries
// are themselves encoded with the codec.
const (
	typeEnum        = "iibin.Type"
	ruleEnum        = "iibin.Rule"
	fieldSchema     = "iibin.Field"
	schemaSchema    = "iibin.Schema"
	enumValueSchema = "iibin.EnumValue"
	enumSchema      = "iibin.Enum"
)

type fieldRecord struct {
	Name   string `iibin:"name"`
	Tag    uint32 `iibin:"tag"`
	Type   string `iibin:"type"`
	Ref    string `iibin:"ref"`
	Rule   string `iibin:"rule"`
	Packed bool   `iibin:"packed"`
}

type schemaRecord struct {
	Name   string        `iibin:"name"`
	Fields []fieldRecord `iibin:"fields"`
}

type enumValueRecord struct {
	Symbol string `iibin:"symbol"`
	Code   int32  `iibin:"code"`
}

type enumRecord struct {
	Name   string            `iibin:"name"`
	Values []enumValueRecord `iibin:"values"`
}

// newDescriptors returns the registry of the schemas of the catalog entries.
func newDescriptors() (*registry.InMemory, error) {
	reg := registry.NewInMemory(registry.WithLogger(zerolog.Nop()))

	var types []schema.EnumValue
	for t := schema.Bool; t <= schema.Message; t++ {
		types = append(types, schema.EnumValue{Symbol: t.String(), Code: int32(t)})
	}

	err := reg.RegisterEnum(typeEnum, types)
	if err != nil {
		return nil, xerrors.Errorf("failed to register types: %v", err)
	}

	err = reg.RegisterEnum(ruleEnum, []schema.EnumValue{
		{Symbol: schema.Optional.String(), Code: int32(schema.Optional)},
		{Symbol: schema.Required.String(), Code: int32(schema.Required)},
		{Symbol: schema.Repeated.String(), Code: int32(schema.Repeated)},
	})
	if err != nil {
		return nil, xerrors.Errorf("failed to register rules: %v", err)
	}

	schemas := []struct {
		name   string
		fields []schema.Field
	}{
		{fieldSchema, []schema.Field{
			{Name: "name", Tag: 1, Type: schema.String, Rule: schema.Required},
			{Name: "tag", Tag: 2, Type: schema.Uint32, Rule: schema.Required},
			{Name: "type", Tag: 3, Type: schema.Enum, Ref: typeEnum, Rule: schema.Required},
			{Name: "ref", Tag: 4, Type: schema.String},
			{Name: "rule", Tag: 5, Type: schema.Enum, Ref: ruleEnum},
			{Name: "packed", Tag: 6, Type: schema.Bool},
		}},
		{schemaSchema, []schema.Field{
			{Name: "name", Tag: 1, Type: schema.String, Rule: schema.Required},
			{Name: "fields", Tag: 2, Type: schema.Message, Ref: fieldSchema, Rule: schema.Repeated},
		}},
		{enumValueSchema, []schema.Field{
			{Name: "symbol", Tag: 1, Type: schema.String, Rule: schema.Required},
			{Name: "code", Tag: 2, Type: schema.Sint32},
		}},
		{enumSchema, []schema.Field{
			{Name: "name", Tag: 1, Type: schema.String, Rule: schema.Required},
			{Name: "values", Tag: 2, Type: schema.Message, Ref: enumValueSchema, Rule: schema.Repeated},
		}},
	}

	for _, s := range schemas {
		err = reg.RegisterSchema(s.name, s.fields)
		if err != nil {
			return nil, xerrors.Errorf("failed to register '%s': %v", s.name, err)
		}
	}

	return reg, nil
}

func newSchemaRecord(s *schema.Schema) schemaRecord {
	rec := schemaRecord{
		Name:   s.Name(),
		Fields: make([]fieldRecord, s.Len()),
	}

	for i, f := range s.Fields() {
		rec.Fields[i] = fieldRecord{
			Name:   f.Name,
			Tag:    f.Tag,
			Type:   f.Type.String(),
			Ref:    f.Ref,
			Rule:   f.Rule.String(),
			Packed: f.Packed,
		}
	}

	return rec
}

func newEnumRecord(e *schema.EnumDef) enumRecord {
	values := e.Values()

	rec := enumRecord{
		Name:   e.Name(),
		Values: make([]enumValueRecord, len(values)),
	}

	for i, v := range values {
		rec.Values[i] = enumValueRecord{Symbol: v.Symbol, Code: v.Code}
	}

	return rec
}

// fields returns the fields described by the entry.
func (rec schemaRecord) fields() ([]schema.Field, error) {
	fields := make([]schema.Field, len(rec.Fields))

	for i, f := range rec.Fields {
		typ, err := schema.ParseType(f.Type)
		if err != nil {
			return nil, xerrors.Errorf("field %d: %w", i, err)
		}

		rule, err := schema.ParseRule(f.Rule)
		if err != nil {
			return nil, xerrors.Errorf("field %d: %w", i, err)
		}

		fields[i] = schema.Field{
			Name:   f.Name,
			Tag:    f.Tag,
			Type:   typ,
			Ref:    f.Ref,
			Rule:   rule,
			Packed: f.Packed,
		}
	}

	return fields, nil
}

// values returns the values described by the entry.
func (rec enumRecord) values() []schema.EnumValue {
	values := make([]schema.EnumValue, len(rec.Values))

	for i, v := range rec.Values {
		values[i] = schema.EnumValue{Symbol: v.Symbol, Code: v.Code}
	}

	return values
}

package codec

import (
	"math"

	"go.dedis.ch/iibin"
	"go.dedis.ch/iibin/schema"
	"go.dedis.ch/iibin/schema/registry"
	"go.dedis.ch/iibin/wire"
	"golang.org/x/xerrors"
)

// decoder is a single-pass pull parser that turns bytes into messages. The
// depth of nested messages is bounded. A strict decoder rejects unknown tags
// and enum codes without a symbol.
type decoder struct {
	registry registry.Registry
	maxDepth int
	interner *interner
	strict   bool
}

// message decodes the records of a buffer according to the schema. Unknown
// tags are skipped and a repeated singular field keeps the last value.
func (d decoder) message(s *schema.Schema, data []byte, depth int) (Message, error) {
	out := make(Message)
	r := wire.NewReader(data)

	for r.More() {
		tag, typ, err := r.ReadKey()
		if err != nil {
			return nil, annotateSchema(err, s)
		}

		f, found := s.FieldByTag(tag)
		if !found && d.strict {
			return nil, iibin.NewError(iibin.UnknownField,
				"tag %d is not defined", tag).WithSchema(s.Name())
		}

		if !found {
			err = r.Skip(typ)
			if err != nil {
				return nil, annotateSchema(err, s)
			}

			continue
		}

		rec, err := r.ReadPayload(tag, typ)
		if err != nil {
			return nil, annotate(err, s, f)
		}

		err = d.field(out, f, rec, depth)
		if err != nil {
			return nil, annotate(err, s, f)
		}
	}

	for i := 0; i < s.Len(); i++ {
		f := s.Field(i)

		_, found := out[f.Name]
		if f.Required() && !found {
			return nil, iibin.NewError(iibin.MissingRequiredField, "field is absent").
				WithField(f.Name, f.Tag).WithSchema(s.Name())
		}
	}

	return out, nil
}

// field stores the value of the record in the message. Repeated fields
// accept both packed and unpacked records.
func (d decoder) field(out Message, f schema.Field, rec wire.Record, depth int) error {
	if !f.Repeated() {
		v, err := d.value(f, rec, depth)
		if err != nil {
			return err
		}

		out[f.Name] = v

		return nil
	}

	list, _ := out[f.Name].([]interface{})

	if rec.Type == wire.LengthDelimited && f.Type.Packable() {
		values, err := d.packed(f, rec.Bytes)
		if err != nil {
			return err
		}

		list = append(list, values...)
	} else {
		v, err := d.value(f, rec, depth)
		if err != nil {
			return err
		}

		list = append(list, v)
	}

	if len(list) > 0 {
		out[f.Name] = list
	}

	return nil
}

// packed decodes the back-to-back values of a packed record.
func (d decoder) packed(f schema.Field, blob []byte) ([]interface{}, error) {
	var values []interface{}

	for len(blob) > 0 {
		rec := wire.Record{Type: f.WireType()}

		switch rec.Type {
		case wire.Varint:
			v, n, err := wire.DecodeVarint(blob)
			if err != nil {
				return nil, err
			}

			rec.Value = v
			blob = blob[n:]
		case wire.Fixed32:
			v, err := wire.DecodeFixed32(blob)
			if err != nil {
				return nil, err
			}

			rec.Value = uint64(v)
			blob = blob[4:]
		case wire.Fixed64:
			v, err := wire.DecodeFixed64(blob)
			if err != nil {
				return nil, err
			}

			rec.Value = v
			blob = blob[8:]
		}

		v, err := d.value(f, rec, 0)
		if err != nil {
			return nil, err
		}

		values = append(values, v)
	}

	return values, nil
}

// value decodes a single value of the field.
func (d decoder) value(f schema.Field, rec wire.Record, depth int) (interface{}, error) {
	if rec.Type != f.WireType() {
		return nil, iibin.NewError(iibin.TypeMismatch,
			"%s field expects %s records, got %s", f.Type, f.WireType(), rec.Type)
	}

	switch f.Type {
	case schema.Bool:
		return rec.Value != 0, nil
	case schema.Int32:
		return int32(rec.Value), nil
	case schema.Int64:
		return int64(rec.Value), nil
	case schema.Uint32, schema.Fixed32:
		return uint32(rec.Value), nil
	case schema.Uint64, schema.Fixed64:
		return rec.Value, nil
	case schema.Sint32:
		return wire.ZigZagDecode32(uint32(rec.Value)), nil
	case schema.Sint64:
		return wire.ZigZagDecode64(rec.Value), nil
	case schema.Sfixed32:
		return int32(uint32(rec.Value)), nil
	case schema.Sfixed64:
		return int64(rec.Value), nil
	case schema.Float:
		return math.Float32frombits(uint32(rec.Value)), nil
	case schema.Double:
		return math.Float64frombits(rec.Value), nil
	case schema.String:
		return d.str(rec.Bytes), nil
	case schema.Bytes:
		data := make([]byte, len(rec.Bytes))
		copy(data, rec.Bytes)

		return data, nil
	case schema.Enum:
		return d.enum(f, int32(rec.Value))
	case schema.Message:
		return d.nested(f, rec.Bytes, depth)
	default:
		return nil, iibin.NewError(iibin.InvalidFieldDefinition, "invalid type")
	}
}

// enum returns the symbol of the code when the enum is registered and knows
// the code, otherwise the code itself. A strict decoder fails instead.
func (d decoder) enum(f schema.Field, code int32) (interface{}, error) {
	def, err := d.registry.Enum(f.Ref)
	if err != nil {
		if d.strict {
			return nil, iibin.NewError(iibin.UnknownEnumValue,
				"enum '%s' is not registered", f.Ref)
		}

		return code, nil
	}

	symbol, found := def.Symbol(code)
	if !found {
		if d.strict {
			return nil, iibin.NewError(iibin.UnknownEnumValue,
				"code %d is not defined by enum '%s'", code, f.Ref)
		}

		return code, nil
	}

	return symbol, nil
}

// nested decodes an embedded message after checking the depth limit.
func (d decoder) nested(f schema.Field, data []byte, depth int) (interface{}, error) {
	if depth+1 > d.maxDepth {
		return nil, iibin.NewError(iibin.RecursionLimitExceeded,
			"nesting is deeper than %d", d.maxDepth)
	}

	ref, err := d.registry.Schema(f.Ref)
	if err != nil {
		return nil, iibin.NewError(iibin.SchemaNotFound,
			"referenced schema '%s' is not registered", f.Ref)
	}

	return d.message(ref, data, depth+1)
}

func (d decoder) str(data []byte) string {
	if d.interner != nil {
		return d.interner.intern(data)
	}

	return string(data)
}

func annotateSchema(err error, s *schema.Schema) error {
	var e *iibin.Error
	if xerrors.As(err, &e) {
		e.WithSchema(s.Name())
	}

	return err
}

package codec

import (
	"math"

	"go.dedis.ch/iibin"
	"go.dedis.ch/iibin/schema"
	"go.dedis.ch/iibin/schema/registry"
	"go.dedis.ch/iibin/wire"
	"golang.org/x/xerrors"
)

// encoder turns structured values into bytes. It holds no state other than
// its settings and can be shared.
type encoder struct {
	registry registry.Registry
	maxDepth int
}

// message appends the records of the fields of the source, in tag order.
func (e encoder) message(buf []byte, s *schema.Schema, src Source, depth int) ([]byte, error) {
	for i := 0; i < s.Len(); i++ {
		f := s.Field(i)

		v, found := src.GetField(f.Name)
		if found {
			v, found = indirect(v)
		}

		if !found {
			if f.Required() {
				return nil, iibin.NewError(iibin.MissingRequiredField, "field is absent").
					WithField(f.Name, f.Tag).WithSchema(s.Name())
			}

			continue
		}

		var err error

		if f.Repeated() {
			buf, err = e.repeated(buf, f, v, depth)
		} else {
			buf = wire.AppendKey(buf, f.Tag, f.WireType())
			buf, err = e.value(buf, f, v, depth)
		}

		if err != nil {
			return nil, annotate(err, s, f)
		}
	}

	return buf, nil
}

// repeated appends the elements of a sequence, either as a single packed
// record or as one record per element. An empty sequence appends nothing.
func (e encoder) repeated(buf []byte, f schema.Field, v interface{}, depth int) ([]byte, error) {
	seq, ok := sequence(v)
	if !ok {
		return nil, iibin.NewError(iibin.TypeMismatch,
			"repeated field expects a sequence, got %T", v)
	}

	if seq.Len() == 0 {
		return buf, nil
	}

	var err error

	if f.Packed {
		var body []byte

		for i := 0; i < seq.Len(); i++ {
			elem, found := indirect(seq.Index(i).Interface())
			if !found {
				return nil, iibin.NewError(iibin.TypeMismatch, "element %d is nil", i)
			}

			body, err = e.value(body, f, elem, depth)
			if err != nil {
				return nil, xerrors.Errorf("element %d: %w", i, err)
			}
		}

		buf = wire.AppendKey(buf, f.Tag, wire.LengthDelimited)

		return wire.AppendBytes(buf, body), nil
	}

	for i := 0; i < seq.Len(); i++ {
		elem, found := indirect(seq.Index(i).Interface())
		if !found {
			return nil, iibin.NewError(iibin.TypeMismatch, "element %d is nil", i)
		}

		buf = wire.AppendKey(buf, f.Tag, f.WireType())

		buf, err = e.value(buf, f, elem, depth)
		if err != nil {
			return nil, xerrors.Errorf("element %d: %w", i, err)
		}
	}

	return buf, nil
}

// value appends the value-only encoding of a single value after checking it
// matches the declared type of the field.
func (e encoder) value(buf []byte, f schema.Field, v interface{}, depth int) ([]byte, error) {
	switch f.Type {
	case schema.Bool:
		b, ok := toBool(v)
		if !ok {
			return nil, mismatch(f, v)
		}

		if b {
			return append(buf, 1), nil
		}

		return append(buf, 0), nil
	case schema.Int32, schema.Int64, schema.Sint32, schema.Sint64, schema.Sfixed32, schema.Sfixed64:
		return e.signed(buf, f, v)
	case schema.Uint32, schema.Uint64, schema.Fixed32, schema.Fixed64:
		return e.unsigned(buf, f, v)
	case schema.Float:
		x, ok := toFloat(v)
		if !ok {
			return nil, mismatch(f, v)
		}

		return wire.AppendFloat(buf, float32(x)), nil
	case schema.Double:
		x, ok := toFloat(v)
		if !ok {
			return nil, mismatch(f, v)
		}

		return wire.AppendDouble(buf, x), nil
	case schema.String, schema.Bytes:
		data, ok := toOctets(v)
		if !ok {
			return nil, mismatch(f, v)
		}

		return wire.AppendBytes(buf, data), nil
	case schema.Enum:
		code, err := e.enumCode(f, v)
		if err != nil {
			return nil, err
		}

		return wire.AppendVarint(buf, uint64(int64(code))), nil
	case schema.Message:
		return e.nested(buf, f, v, depth)
	default:
		return nil, iibin.NewError(iibin.InvalidFieldDefinition, "invalid type")
	}
}

func (e encoder) signed(buf []byte, f schema.Field, v interface{}) ([]byte, error) {
	var min, max int64 = math.MinInt64, math.MaxInt64
	if f.Type == schema.Int32 || f.Type == schema.Sint32 || f.Type == schema.Sfixed32 {
		min, max = math.MinInt32, math.MaxInt32
	}

	n, ok := toInt(v, min, max)
	if !ok {
		return nil, mismatch(f, v)
	}

	switch f.Type {
	case schema.Sint32:
		return wire.AppendVarint(buf, uint64(wire.ZigZagEncode32(int32(n)))), nil
	case schema.Sint64:
		return wire.AppendVarint(buf, wire.ZigZagEncode64(n)), nil
	case schema.Sfixed32:
		return wire.AppendFixed32(buf, uint32(int32(n))), nil
	case schema.Sfixed64:
		return wire.AppendFixed64(buf, uint64(n)), nil
	default:
		// Negative values are sign-extended to ten bytes.
		return wire.AppendVarint(buf, uint64(n)), nil
	}
}

func (e encoder) unsigned(buf []byte, f schema.Field, v interface{}) ([]byte, error) {
	var max uint64 = math.MaxUint64
	if f.Type == schema.Uint32 || f.Type == schema.Fixed32 {
		max = math.MaxUint32
	}

	u, ok := toUint(v, max)
	if !ok {
		return nil, mismatch(f, v)
	}

	switch f.Type {
	case schema.Fixed32:
		return wire.AppendFixed32(buf, uint32(u)), nil
	case schema.Fixed64:
		return wire.AppendFixed64(buf, u), nil
	default:
		return wire.AppendVarint(buf, u), nil
	}
}

// enumCode returns the code of an enum value given either as an integer code
// or as a symbol of the referenced enum.
func (e encoder) enumCode(f schema.Field, v interface{}) (int32, error) {
	if isInteger(v) {
		n, ok := toInt(v, math.MinInt32, math.MaxInt32)
		if !ok {
			return 0, mismatch(f, v)
		}

		return int32(n), nil
	}

	symbol, ok := toString(v)
	if !ok {
		return 0, mismatch(f, v)
	}

	def, err := e.registry.Enum(f.Ref)
	if err != nil {
		return 0, err
	}

	code, found := def.Code(symbol)
	if !found {
		return 0, iibin.NewError(iibin.UnknownEnumValue,
			"symbol '%s' is not defined by enum '%s'", symbol, f.Ref)
	}

	return code, nil
}

// nested encodes a nested message into a scratch buffer and appends it with
// its length.
func (e encoder) nested(buf []byte, f schema.Field, v interface{}, depth int) ([]byte, error) {
	src, ok := SourceOf(v)
	if !ok {
		return nil, mismatch(f, v)
	}

	if depth+1 > e.maxDepth {
		return nil, iibin.NewError(iibin.RecursionLimitExceeded,
			"nesting is deeper than %d", e.maxDepth)
	}

	ref, err := e.registry.Schema(f.Ref)
	if err != nil {
		return nil, iibin.NewError(iibin.SchemaNotFound,
			"referenced schema '%s' is not registered", f.Ref)
	}

	scratch, err := e.message(nil, ref, src, depth+1)
	if err != nil {
		return nil, err
	}

	return wire.AppendBytes(buf, scratch), nil
}

func mismatch(f schema.Field, v interface{}) error {
	return iibin.NewError(iibin.TypeMismatch, "%s value expected, got %T(%v)", f.Type, v, v)
}

// annotate adds the location of the failure to a codec error, unless an inner
// location is already known.
func annotate(err error, s *schema.Schema, f schema.Field) error {
	var e *iibin.Error
	if xerrors.As(err, &e) {
		e.WithField(f.Name, f.Tag).WithSchema(s.Name())
	}

	return err
}

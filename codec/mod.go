// Package codec implements the encoder and the decoder of IIBIN messages.
//
// Values are read through the Source interface and decoded into Message
// values, or into any Sink. The codec looks up the schemas and enums by name
// in a registry each time, so a schema may reference itself or a schema
// registered later on.
//
//	reg := registry.NewInMemory()
//	reg.RegisterSchema("Point", []schema.Field{
//		{Name: "x", Tag: 1, Type: schema.Int32},
//		{Name: "y", Tag: 2, Type: schema.Int32, Rule: schema.Required},
//	})
//
//	c := codec.NewCodec(reg)
//	data, err := c.Encode("Point", codec.Message{"x": 5726, "y": -1})
//
// Encoding and decoding have no side effect other than updating the metric
// collectors, and a codec can be used concurrently.
package codec

import (
	"go.dedis.ch/iibin"
	"go.dedis.ch/iibin/config"
	"go.dedis.ch/iibin/schema"
	"go.dedis.ch/iibin/schema/registry"
)

// Codec encodes and decodes messages of the schemas of a registry.
type Codec struct {
	registry registry.Registry
	config   config.Config
	interner *interner
	strict   bool
}

// Option is the type of the options to create a codec.
type Option func(*Codec)

// WithConfig sets the configuration of the codec. It replaces the
// process-wide configuration which is used by default.
func WithConfig(cfg config.Config) Option {
	return func(c *Codec) {
		c.config = cfg
	}
}

// WithStrictDecoding makes the decoder fail with UnknownField on tags that the
// schema does not define, and with UnknownEnumValue on enum codes that have no
// symbol.
func WithStrictDecoding() Option {
	return func(c *Codec) {
		c.strict = true
	}
}

// NewCodec returns a codec that resolves schemas and enums in the registry.
func NewCodec(reg registry.Registry, opts ...Option) *Codec {
	c := &Codec{
		registry: reg,
		config:   config.Global(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.config.InternStrings {
		c.interner = newInterner(c.config.InternMaxLength, defaultInternEntries)
	}

	return c
}

// Encode returns the bytes of the value according to the schema with the
// given name. Nothing is returned when an error occurs.
func (c *Codec) Encode(name string, value interface{}) ([]byte, error) {
	s, err := c.registry.Schema(name)
	if err != nil {
		observe(opEncode, name, 0, err)
		return nil, err
	}

	return c.EncodeSchema(s, value)
}

// EncodeSchema returns the bytes of the value according to the schema.
func (c *Codec) EncodeSchema(s *schema.Schema, value interface{}) ([]byte, error) {
	data, err := c.encode(s, value)
	observe(opEncode, s.Name(), len(data), err)

	if err != nil {
		return nil, err
	}

	return data, nil
}

func (c *Codec) encode(s *schema.Schema, value interface{}) ([]byte, error) {
	src, ok := SourceOf(value)
	if !ok {
		return nil, iibin.NewError(iibin.TypeMismatch,
			"value of type %T is not a message", value).WithSchema(s.Name())
	}

	enc := encoder{
		registry: c.registry,
		maxDepth: c.config.MaxRecursionDepth,
	}

	data, err := enc.message(nil, s, src, 0)
	if err != nil {
		return nil, err
	}

	if data == nil {
		data = []byte{}
	}

	return data, nil
}

// Decode returns the message decoded from the bytes according to the schema
// with the given name.
func (c *Codec) Decode(name string, data []byte) (Message, error) {
	s, err := c.registry.Schema(name)
	if err != nil {
		observe(opDecode, name, len(data), err)
		return nil, err
	}

	return c.DecodeSchema(s, data)
}

// DecodeSchema returns the message decoded from the bytes according to the
// schema.
func (c *Codec) DecodeSchema(s *schema.Schema, data []byte) (Message, error) {
	dec := decoder{
		registry: c.registry,
		maxDepth: c.config.MaxRecursionDepth,
		interner: c.interner,
		strict:   c.strict,
	}

	msg, err := dec.message(s, data, 0)
	observe(opDecode, s.Name(), len(data), err)

	if err != nil {
		return nil, err
	}

	return msg, nil
}

// DecodeInto decodes the bytes according to the schema with the given name
// and sets the fields of the target in tag order. The target is a Sink, a map
// keyed by strings or a pointer to a struct. A struct target is left
// untouched when an error occurs. Other sinks are only called once the bytes
// are fully decoded.
func (c *Codec) DecodeInto(name string, data []byte, target interface{}) error {
	sink, ok := SinkOf(target)
	if !ok {
		return iibin.NewError(iibin.TypeMismatch,
			"value of type %T cannot be decoded into", target).WithSchema(name)
	}

	s, err := c.registry.Schema(name)
	if err != nil {
		observe(opDecode, name, len(data), err)
		return err
	}

	msg, err := c.DecodeSchema(s, data)
	if err != nil {
		return err
	}

	commit := func() {}

	st, ok := sink.(structSink)
	if ok {
		sink, commit = st.stage()
	}

	for i := 0; i < s.Len(); i++ {
		f := s.Field(i)

		v, found := msg[f.Name]
		if !found {
			continue
		}

		err = sink.SetField(f.Name, v)
		if err != nil {
			return annotate(err, s, f)
		}
	}

	commit()

	return nil
}

package codec

import (
	"reflect"

	"go.dedis.ch/iibin"
)

// SinkOf returns the sink of a value to decode into. It accepts any Sink,
// maps keyed by strings and pointers to structs. Nil pointers and nil maps
// cannot be filled.
func SinkOf(v interface{}) (Sink, bool) {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Invalid:
		return nil, false
	case reflect.Ptr, reflect.Map:
		if rv.IsNil() {
			return nil, false
		}
	}

	switch s := v.(type) {
	case Sink:
		return s, true
	case map[string]interface{}:
		return Message(s), true
	}

	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return nil, false
	}

	return newStructSink(rv.Elem()), true
}

// structSink sets the exported fields of a struct with the same naming rules
// as the struct source. A decoded field missing from the struct is ignored.
// Nested messages fill nested structs and lists fill slices.
//
// - implements codec.Sink
type structSink struct {
	value reflect.Value
	index map[string]int
}

func newStructSink(value reflect.Value) structSink {
	return structSink{
		value: value,
		index: structIndexOf(value.Type()),
	}
}

// SetField implements codec.Sink. It returns a TypeMismatch error when the
// value is not assignable to the field.
func (s structSink) SetField(name string, value interface{}) error {
	i, found := s.index[name]
	if !found {
		return nil
	}

	return assign(s.value.Field(i), value)
}

// stage returns a sink over a copy of the struct, and the function that
// writes the copy back.
func (s structSink) stage() (structSink, func()) {
	tmp := reflect.New(s.value.Type()).Elem()
	tmp.Set(s.value)

	commit := func() {
		s.value.Set(tmp)
	}

	return structSink{value: tmp, index: s.index}, commit
}

// assign sets the destination to the value. Named types are converted from
// values of the same kind, pointers are allocated, messages fill structs and
// lists fill slices. Nil leaves the destination untouched.
func assign(dst reflect.Value, value interface{}) error {
	if value == nil {
		return nil
	}

	rv := reflect.ValueOf(value)
	typ := dst.Type()

	if rv.Type().AssignableTo(typ) {
		dst.Set(rv)
		return nil
	}

	if typ.Kind() == reflect.Ptr {
		elem := reflect.New(typ.Elem())

		err := assign(elem.Elem(), value)
		if err != nil {
			return err
		}

		dst.Set(elem)
		return nil
	}

	switch v := value.(type) {
	case Message:
		if typ.Kind() != reflect.Struct {
			return errAssign(value, typ)
		}

		sink := newStructSink(dst)

		for name, fv := range v {
			err := sink.SetField(name, fv)
			if err != nil {
				return err
			}
		}

		return nil
	case []interface{}:
		if typ.Kind() != reflect.Slice {
			return errAssign(value, typ)
		}

		list := reflect.MakeSlice(typ, len(v), len(v))

		for i, elem := range v {
			err := assign(list.Index(i), elem)
			if err != nil {
				return err
			}
		}

		dst.Set(list)
		return nil
	}

	if rv.Kind() == typ.Kind() && rv.Type().ConvertibleTo(typ) {
		dst.Set(rv.Convert(typ))
		return nil
	}

	return errAssign(value, typ)
}

func errAssign(value interface{}, typ reflect.Type) error {
	return iibin.NewError(iibin.TypeMismatch,
		"%T value cannot be stored in %s", value, typ)
}

package codec

import (
	"reflect"
	"strings"
	"sync"
)

// Source is the capability the encoder needs from a structured value: reading
// a field by name. The boolean is false when the field is absent.
type Source interface {
	GetField(name string) (interface{}, bool)
}

// Sink is the capability the decoder needs to populate a structured value. It
// returns an error when the value cannot be held by the field.
type Sink interface {
	SetField(name string, value interface{}) error
}

// Message is the generic structured value. The decoder always produces
// messages, and the encoder accepts them as input.
//
// - implements codec.Source
// - implements codec.Sink
type Message map[string]interface{}

// GetField implements codec.Source. A nil value is absent.
func (m Message) GetField(name string) (interface{}, bool) {
	v, found := m[name]
	if !found || v == nil {
		return nil, false
	}

	return v, true
}

// SetField implements codec.Sink.
func (m Message) SetField(name string, value interface{}) error {
	m[name] = value
	return nil
}

// SourceOf returns the source of a structured value. It accepts any Source,
// maps keyed by strings and structs or pointers to structs. A nil pointer is
// never a source.
func SourceOf(v interface{}) (Source, bool) {
	if isNilPointer(v) {
		return nil, false
	}

	switch s := v.(type) {
	case Source:
		return s, true
	case map[string]interface{}:
		return Message(s), true
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, false
		}

		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		return structSource{value: rv, index: structIndexOf(rv.Type())}, true
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String && !rv.IsNil() {
			return mapSource{value: rv}, true
		}
	}

	return nil, false
}

// mapSource reads the fields of any map keyed by strings.
//
// - implements codec.Source
type mapSource struct {
	value reflect.Value
}

// GetField implements codec.Source.
func (s mapSource) GetField(name string) (interface{}, bool) {
	v := s.value.MapIndex(reflect.ValueOf(name).Convert(s.value.Type().Key()))
	if !v.IsValid() {
		return nil, false
	}

	return v.Interface(), true
}

// structSource reads the exported fields of a struct. The name of a field is
// given by its `iibin` tag, or is the Go name when the tag is missing. Fields
// tagged with "-" are ignored.
//
// - implements codec.Source
type structSource struct {
	value reflect.Value
	index map[string]int
}

// GetField implements codec.Source.
func (s structSource) GetField(name string) (interface{}, bool) {
	i, found := s.index[name]
	if !found {
		return nil, false
	}

	return s.value.Field(i).Interface(), true
}

var structIndices sync.Map

func structIndexOf(typ reflect.Type) map[string]int {
	cached, found := structIndices.Load(typ)
	if found {
		return cached.(map[string]int)
	}

	index := make(map[string]int, typ.NumField())

	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		if sf.PkgPath != "" {
			continue
		}

		name := sf.Name

		tag, found := sf.Tag.Lookup("iibin")
		if found {
			tag = strings.Split(tag, ",")[0]
			if tag == "-" {
				continue
			}

			if tag != "" {
				name = tag
			}
		}

		index[name] = i
	}

	structIndices.Store(typ, index)

	return index
}

// indirect dereferences pointers and reports nil values as absent. Sources
// are returned untouched.
func indirect(v interface{}) (interface{}, bool) {
	if v == nil {
		return nil, false
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Interface:
		if rv.IsNil() {
			return nil, false
		}
	}

	if _, ok := v.(Source); ok {
		return v, true
	}

	if rv.Kind() != reflect.Ptr {
		return v, true
	}

	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, false
		}

		rv = rv.Elem()
	}

	return rv.Interface(), true
}

func isNilPointer(v interface{}) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Ptr && rv.IsNil()
}

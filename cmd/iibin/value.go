package main

import (
	"encoding/hex"

	"go.dedis.ch/iibin/codec"
	"go.dedis.ch/iibin/schema"
	"go.dedis.ch/iibin/schema/registry"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"
)

// parseValue returns the message of a YAML mapping. An empty input is an
// empty message.
func parseValue(data string) (codec.Message, error) {
	var raw interface{}

	err := yaml.Unmarshal([]byte(data), &raw)
	if err != nil {
		return nil, xerrors.Errorf("failed to unmarshal value: %v", err)
	}

	if raw == nil {
		return codec.Message{}, nil
	}

	v, err := fromYAML(raw)
	if err != nil {
		return nil, err
	}

	msg, ok := v.(codec.Message)
	if !ok {
		return nil, xerrors.Errorf("value must be a mapping, got %T", raw)
	}

	return msg, nil
}

// fromYAML converts the mappings of a YAML value into messages.
func fromYAML(v interface{}) (interface{}, error) {
	switch e := v.(type) {
	case map[interface{}]interface{}:
		msg := make(codec.Message, len(e))

		for key, value := range e {
			name, ok := key.(string)
			if !ok {
				return nil, xerrors.Errorf("key '%v' is not a string", key)
			}

			inner, err := fromYAML(value)
			if err != nil {
				return nil, xerrors.Errorf("%s: %v", name, err)
			}

			msg[name] = inner
		}

		return msg, nil
	case []interface{}:
		list := make([]interface{}, len(e))

		for i, value := range e {
			inner, err := fromYAML(value)
			if err != nil {
				return nil, xerrors.Errorf("%d: %v", i, err)
			}

			list[i] = inner
		}

		return list, nil
	default:
		return v, nil
	}
}

// decodeHexBytes replaces the strings of the bytes fields of the message, and
// of its nested messages, with the bytes they hold in hexadecimal, which is the
// form printed by toYAML. Other values are left for the codec to check.
func decodeHexBytes(reg registry.Registry, s *schema.Schema, msg codec.Message) error {
	for _, f := range s.Fields() {
		v, found := msg[f.Name]
		if !found {
			continue
		}

		switch f.Type {
		case schema.Bytes:
			converted, err := hexValue(v)
			if err != nil {
				return xerrors.Errorf("%s: %v", f.Name, err)
			}

			msg[f.Name] = converted
		case schema.Message:
			ref, err := reg.Schema(f.Ref)
			if err != nil {
				continue
			}

			err = forEachMessage(v, func(inner codec.Message) error {
				return decodeHexBytes(reg, ref, inner)
			})
			if err != nil {
				return xerrors.Errorf("%s: %v", f.Name, err)
			}
		}
	}

	return nil
}

func hexValue(v interface{}) (interface{}, error) {
	switch e := v.(type) {
	case string:
		data, err := hex.DecodeString(e)
		if err != nil {
			return nil, xerrors.Errorf("invalid hex: %v", err)
		}

		return data, nil
	case []interface{}:
		list := make([]interface{}, len(e))

		for i, elem := range e {
			inner, err := hexValue(elem)
			if err != nil {
				return nil, xerrors.Errorf("%d: %v", i, err)
			}

			list[i] = inner
		}

		return list, nil
	default:
		return v, nil
	}
}

func forEachMessage(v interface{}, fn func(codec.Message) error) error {
	switch e := v.(type) {
	case codec.Message:
		return fn(e)
	case []interface{}:
		for i, elem := range e {
			inner, ok := elem.(codec.Message)
			if !ok {
				continue
			}

			err := fn(inner)
			if err != nil {
				return xerrors.Errorf("%d: %v", i, err)
			}
		}
	}

	return nil
}

// toYAML converts a decoded value into a form that marshals nicely. Bytes are
// printed in hexadecimal.
func toYAML(v interface{}) interface{} {
	switch e := v.(type) {
	case codec.Message:
		m := make(map[string]interface{}, len(e))
		for key, value := range e {
			m[key] = toYAML(value)
		}

		return m
	case []interface{}:
		list := make([]interface{}, len(e))
		for i, value := range e {
			list[i] = toYAML(value)
		}

		return list
	case []byte:
		return hex.EncodeToString(e)
	default:
		return v
	}
}

// Package loader reads and writes schema documents. A document is a YAML file
// that declares enums and messages:
//
//	enums:
//	  Color: {RED: 0, GREEN: 1}
//	messages:
//	  Point:
//	    x: {type: int32, tag: 1}
//	    "y": {type: int32, tag: 2, rule: required}
//
// Message and enum fields name the definition they use with "ref". Keys such
// as y or on must be quoted, otherwise YAML reads them as booleans.
package loader

import (
	"io/ioutil"
	"sort"

	"go.dedis.ch/iibin"
	"go.dedis.ch/iibin/schema"
	"go.dedis.ch/iibin/schema/registry"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"
)

// Document is the content of a schema document.
type Document struct {
	Enums    map[string]map[string]int32  `yaml:"enums,omitempty"`
	Messages map[string]schema.Definition `yaml:"messages,omitempty"`
}

// Catalog is a registry that can enumerate its content.
type Catalog interface {
	registry.Registry
	registry.Lister
}

// Parse returns the document of the YAML data. Unknown keys are rejected.
func Parse(data []byte) (Document, error) {
	var doc Document

	err := yaml.UnmarshalStrict(data, &doc)
	if err != nil {
		return Document{}, xerrors.Errorf("failed to unmarshal document: %v", err)
	}

	return doc, nil
}

// LoadFile reads and parses the document at the given path.
func LoadFile(path string) (Document, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return Document{}, xerrors.Errorf("failed to read document: %v", err)
	}

	doc, err := Parse(data)
	if err != nil {
		return Document{}, xerrors.Errorf("document '%s': %w", path, err)
	}

	return doc, nil
}

// Apply registers the enums and then the messages of the document, each group
// in name order. Definitions registered before a failure stay registered.
func (d Document) Apply(reg registry.Registry) error {
	enums := make([]string, 0, len(d.Enums))
	for name := range d.Enums {
		enums = append(enums, name)
	}

	sort.Strings(enums)

	for _, name := range enums {
		values := make([]schema.EnumValue, 0, len(d.Enums[name]))
		for symbol, code := range d.Enums[name] {
			values = append(values, schema.EnumValue{Symbol: symbol, Code: code})
		}

		err := reg.RegisterEnum(name, values)
		if err != nil {
			return xerrors.Errorf("enum '%s': %w", name, err)
		}
	}

	names := make([]string, 0, len(d.Messages))
	for name := range d.Messages {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		fields, err := d.Messages[name].Fields()
		if err != nil {
			var e *iibin.Error
			if xerrors.As(err, &e) {
				e.WithSchema(name)
			}

			return xerrors.Errorf("message '%s': %w", name, err)
		}

		err = reg.RegisterSchema(name, fields)
		if err != nil {
			return xerrors.Errorf("message '%s': %w", name, err)
		}
	}

	iibin.Logger.Debug().
		Int("enums", len(d.Enums)).
		Int("messages", len(d.Messages)).
		Msg("document applied")

	return nil
}

// Marshal returns the YAML representation of the document.
func (d Document) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(d)
	if err != nil {
		return nil, xerrors.Errorf("failed to marshal document: %v", err)
	}

	return data, nil
}

// Export returns the document of every enum and schema of the catalog.
func Export(c Catalog) (Document, error) {
	doc := Document{
		Enums:    make(map[string]map[string]int32),
		Messages: make(map[string]schema.Definition),
	}

	for _, name := range c.Enums() {
		def, err := c.Enum(name)
		if err != nil {
			return Document{}, xerrors.Errorf("failed to read enum: %w", err)
		}

		values := make(map[string]int32)
		for _, v := range def.Values() {
			values[v.Symbol] = v.Code
		}

		doc.Enums[name] = values
	}

	for _, name := range c.Schemas() {
		s, err := c.Schema(name)
		if err != nil {
			return Document{}, xerrors.Errorf("failed to read schema: %w", err)
		}

		doc.Messages[name] = schema.DefinitionOf(s)
	}

	return doc, nil
}

// Package registry defines the registry of schemas and enums that drives the
// codec.
//
// Entries are looked up by name each time a value is encoded or decoded,
// which allows a schema to reference itself or a schema registered later on.
// The package provides a default in-memory implementation and a process-wide
// instance.
package registry

import (
	"go.dedis.ch/iibin/schema"
)

// Registry is the interface to register and look up schemas and enums.
type Registry interface {
	// RegisterSchema compiles the fields and publishes the schema under the
	// name. Registering an identical schema twice is allowed while a
	// different definition under an existing name is rejected.
	RegisterSchema(name string, fields []schema.Field) error

	// RegisterEnum compiles the values and publishes the enum under the name
	// with the same duplicate policy as schemas.
	RegisterEnum(name string, values []schema.EnumValue) error

	// Schema returns the schema with the given name, or a SchemaNotFound
	// error.
	Schema(name string) (*schema.Schema, error)

	// Enum returns the enum with the given name, or an UnknownEnumValue error.
	Enum(name string) (*schema.EnumDef, error)
}

// Lister is implemented by registries that can enumerate their content.
type Lister interface {
	// Schemas returns the sorted names of the schemas.
	Schemas() []string

	// Enums returns the sorted names of the enums.
	Enums() []string
}

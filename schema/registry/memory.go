package registry

import (
	"sort"
	"sync"

	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"go.dedis.ch/iibin"
	"go.dedis.ch/iibin/config"
	"go.dedis.ch/iibin/schema"
)

// InMemory is a registry backed by maps guarded by a read-write lock, so that
// lookups can run concurrently with each other and with registrations.
//
// - implements registry.Registry
// - implements registry.Lister
type InMemory struct {
	sync.RWMutex

	schemas   map[string]*schema.Schema
	enums     map[string]*schema.EnumDef
	maxFields int
	logger    zerolog.Logger
}

// Option is the type of the options to create an in-memory registry.
type Option func(*InMemory)

// WithMaxFields sets the maximum number of fields of a schema.
func WithMaxFields(n int) Option {
	return func(r *InMemory) {
		r.maxFields = n
	}
}

// WithLogger sets the logger of the registry.
func WithLogger(l zerolog.Logger) Option {
	return func(r *InMemory) {
		r.logger = l
	}
}

// NewInMemory returns a new empty registry. The maximum number of fields
// defaults to the process-wide configuration.
func NewInMemory(opts ...Option) *InMemory {
	r := &InMemory{
		schemas:   make(map[string]*schema.Schema),
		enums:     make(map[string]*schema.EnumDef),
		maxFields: config.Global().MaxSchemaFields,
		logger:    iibin.Logger,
	}

	for _, opt := range opts {
		opt(r)
	}

	r.logger = r.logger.With().Str("registry", xid.New().String()).Logger()

	return r
}

// RegisterSchema implements registry.Registry. It compiles the fields and
// stores the schema, or returns an error if the definition is invalid or if a
// different schema already exists under the same name.
func (r *InMemory) RegisterSchema(name string, fields []schema.Field) error {
	s, err := schema.NewSchema(name, fields, r.maxFields)
	if err != nil {
		return err
	}

	r.Lock()
	defer r.Unlock()

	prev, found := r.schemas[name]
	if found {
		if prev.Equal(s) {
			return nil
		}

		return iibin.NewError(iibin.DuplicateSchemaName,
			"a different schema is already registered").WithSchema(name)
	}

	r.schemas[name] = s

	r.logger.Debug().
		Str("schema", name).
		Int("fields", s.Len()).
		Msg("schema registered")

	return nil
}

// RegisterEnum implements registry.Registry. It compiles and stores the enum,
// or returns an error if the values are invalid or if a different enum already
// exists under the same name.
func (r *InMemory) RegisterEnum(name string, values []schema.EnumValue) error {
	e, err := schema.NewEnum(name, values)
	if err != nil {
		return err
	}

	r.Lock()
	defer r.Unlock()

	prev, found := r.enums[name]
	if found {
		if prev.Equal(e) {
			return nil
		}

		return iibin.NewError(iibin.DuplicateEnumName,
			"a different enum '%s' is already registered", name)
	}

	r.enums[name] = e

	r.logger.Debug().
		Str("enum", name).
		Int("values", len(values)).
		Msg("enum registered")

	return nil
}

// UnregisterSchema removes the schema if it exists.
func (r *InMemory) UnregisterSchema(name string) {
	r.Lock()
	delete(r.schemas, name)
	r.Unlock()
}

// UnregisterEnum removes the enum if it exists.
func (r *InMemory) UnregisterEnum(name string) {
	r.Lock()
	delete(r.enums, name)
	r.Unlock()
}

// Schema implements registry.Registry.
func (r *InMemory) Schema(name string) (*schema.Schema, error) {
	r.RLock()
	s, found := r.schemas[name]
	r.RUnlock()

	if !found {
		return nil, iibin.NewError(iibin.SchemaNotFound, "no schema is registered").
			WithSchema(name)
	}

	return s, nil
}

// Enum implements registry.Registry.
func (r *InMemory) Enum(name string) (*schema.EnumDef, error) {
	r.RLock()
	e, found := r.enums[name]
	r.RUnlock()

	if !found {
		return nil, iibin.NewError(iibin.UnknownEnumValue, "enum '%s' is not registered", name)
	}

	return e, nil
}

// Schemas implements registry.Lister.
func (r *InMemory) Schemas() []string {
	r.RLock()
	defer r.RUnlock()

	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Enums implements registry.Lister.
func (r *InMemory) Enums() []string {
	r.RLock()
	defer r.RUnlock()

	names := make([]string, 0, len(r.enums))
	for name := range r.enums {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

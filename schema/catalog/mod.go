// Package catalog persists the content of a schema registry in a key/value
// database so that it survives the process.
//
// The entries are IIBIN messages themselves, described by a small set of
// built-in schemas. All the entries live in one bucket with a prefix per
// kind so that a save is a single transaction.
package catalog

import (
	"github.com/rs/zerolog"
	"go.dedis.ch/iibin"
	"go.dedis.ch/iibin/codec"
	"go.dedis.ch/iibin/schema/loader"
	"go.dedis.ch/iibin/schema/registry"
	"go.dedis.ch/iibin/store/kv"
	"golang.org/x/xerrors"
)

var (
	bucketName   = []byte("catalog")
	schemaPrefix = []byte("schema:")
	enumPrefix   = []byte("enum:")
)

// Catalog reads and writes registry entries in a database.
type Catalog struct {
	db     kv.DB
	codec  *codec.Codec
	logger zerolog.Logger
}

// NewCatalog returns a catalog using the database.
func NewCatalog(db kv.DB) (*Catalog, error) {
	descriptors, err := newDescriptors()
	if err != nil {
		return nil, xerrors.Errorf("failed to create descriptors: %v", err)
	}

	c := &Catalog{
		db:     db,
		codec:  codec.NewCodec(descriptors),
		logger: iibin.Logger.With().Str("component", "catalog").Logger(),
	}

	return c, nil
}

// Save writes every enum and schema of the registry to the database. Existing
// entries with the same names are replaced.
func (c *Catalog) Save(src loader.Catalog) error {
	enums := src.Enums()
	schemas := src.Schemas()

	err := c.db.Update(bucketName, func(b kv.Bucket) error {
		for _, name := range enums {
			def, err := src.Enum(name)
			if err != nil {
				return xerrors.Errorf("failed to read enum: %w", err)
			}

			data, err := c.codec.Encode(enumSchema, newEnumRecord(def))
			if err != nil {
				return xerrors.Errorf("failed to encode enum '%s': %w", name, err)
			}

			err = b.Set(key(enumPrefix, name), data)
			if err != nil {
				return xerrors.Errorf("failed to write enum '%s': %v", name, err)
			}
		}

		for _, name := range schemas {
			s, err := src.Schema(name)
			if err != nil {
				return xerrors.Errorf("failed to read schema: %w", err)
			}

			data, err := c.codec.Encode(schemaSchema, newSchemaRecord(s))
			if err != nil {
				return xerrors.Errorf("failed to encode schema '%s': %w", name, err)
			}

			err = b.Set(key(schemaPrefix, name), data)
			if err != nil {
				return xerrors.Errorf("failed to write schema '%s': %v", name, err)
			}
		}

		return nil
	})
	if err != nil {
		return xerrors.Errorf("failed to save: %w", err)
	}

	c.logger.Info().
		Int("enums", len(enums)).
		Int("schemas", len(schemas)).
		Msg("catalog saved")

	return nil
}

// Load registers the enums and then the schemas of the database in the
// registry. An empty database loads nothing.
func (c *Catalog) Load(dst registry.Registry) error {
	var enums, schemas int

	err := c.db.View(bucketName, func(b kv.Bucket) error {
		err := b.Scan(enumPrefix, func(k, v []byte) error {
			var rec enumRecord

			err := c.codec.DecodeInto(enumSchema, v, &rec)
			if err != nil {
				return xerrors.Errorf("failed to decode enum '%s': %w", k, err)
			}

			err = dst.RegisterEnum(rec.Name, rec.values())
			if err != nil {
				return xerrors.Errorf("failed to register enum: %w", err)
			}

			enums++

			return nil
		})
		if err != nil {
			return err
		}

		return b.Scan(schemaPrefix, func(k, v []byte) error {
			var rec schemaRecord

			err := c.codec.DecodeInto(schemaSchema, v, &rec)
			if err != nil {
				return xerrors.Errorf("failed to decode schema '%s': %w", k, err)
			}

			fields, err := rec.fields()
			if err != nil {
				return xerrors.Errorf("schema '%s': %w", k, err)
			}

			err = dst.RegisterSchema(rec.Name, fields)
			if err != nil {
				return xerrors.Errorf("failed to register schema: %w", err)
			}

			schemas++

			return nil
		})
	})

	if xerrors.Is(err, kv.ErrBucketNotFound) {
		c.logger.Debug().Msg("catalog is empty")
		return nil
	}

	if err != nil {
		return xerrors.Errorf("failed to load: %w", err)
	}

	c.logger.Info().
		Int("enums", enums).
		Int("schemas", schemas).
		Msg("catalog loaded")

	return nil
}

// Delete removes the schema with the given name from the database. It returns
// a SchemaNotFound error if the schema is not stored.
func (c *Catalog) Delete(name string) error {
	err := c.db.Update(bucketName, func(b kv.Bucket) error {
		k := key(schemaPrefix, name)

		if b.Get(k) == nil {
			return iibin.NewError(iibin.SchemaNotFound, "not in the catalog").WithSchema(name)
		}

		return b.Delete(k)
	})
	if err != nil {
		return xerrors.Errorf("failed to delete: %w", err)
	}

	return nil
}

// Schemas returns the names of the stored schemas in order.
func (c *Catalog) Schemas() ([]string, error) {
	return c.names(schemaPrefix)
}

// Enums returns the names of the stored enums in order.
func (c *Catalog) Enums() ([]string, error) {
	return c.names(enumPrefix)
}

func (c *Catalog) names(prefix []byte) ([]string, error) {
	var names []string

	err := c.db.View(bucketName, func(b kv.Bucket) error {
		return b.Scan(prefix, func(k, v []byte) error {
			names = append(names, string(k[len(prefix):]))
			return nil
		})
	})

	if xerrors.Is(err, kv.ErrBucketNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, xerrors.Errorf("failed to list: %v", err)
	}

	return names, nil
}

func key(prefix []byte, name string) []byte {
	k := make([]byte, 0, len(prefix)+len(name))
	k = append(k, prefix...)

	return append(k, name...)
}

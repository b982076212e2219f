package catalog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/iibin"
	"go.dedis.ch/iibin/codec"
	"go.dedis.ch/iibin/schema"
	"go.dedis.ch/iibin/schema/registry"
	"go.dedis.ch/iibin/store/kv"
	"golang.org/x/xerrors"
)

func TestCatalog_SaveAndLoad(t *testing.T) {
	db := newTestDB(t)

	cat, err := NewCatalog(db)
	require.NoError(t, err)

	src := newTestRegistry(t)

	err = cat.Save(src)
	require.NoError(t, err)

	schemas, err := cat.Schemas()
	require.NoError(t, err)
	require.Equal(t, []string{"Point", "Shape"}, schemas)

	enums, err := cat.Enums()
	require.NoError(t, err)
	require.Equal(t, []string{"Color"}, enums)

	dst := registry.NewInMemory()

	err = cat.Load(dst)
	require.NoError(t, err)
	require.Equal(t, src.Schemas(), dst.Schemas())
	require.Equal(t, src.Enums(), dst.Enums())

	for _, name := range src.Schemas() {
		expected, err := src.Schema(name)
		require.NoError(t, err)

		actual, err := dst.Schema(name)
		require.NoError(t, err)
		require.True(t, expected.Equal(actual), name)
	}

	expected, err := src.Enum("Color")
	require.NoError(t, err)

	actual, err := dst.Enum("Color")
	require.NoError(t, err)
	require.True(t, expected.Equal(actual))

	// The loaded registry encodes like the original one.
	msg := codec.Message{
		"color":  "GREEN",
		"points": []interface{}{codec.Message{"x": 1, "y": 2}},
	}

	data, err := codec.NewCodec(src).Encode("Shape", msg)
	require.NoError(t, err)

	again, err := codec.NewCodec(dst).Encode("Shape", msg)
	require.NoError(t, err)
	require.Equal(t, data, again)

	// Loading twice is idempotent.
	require.NoError(t, cat.Load(dst))
}

func TestCatalog_Empty(t *testing.T) {
	cat, err := NewCatalog(newTestDB(t))
	require.NoError(t, err)

	reg := registry.NewInMemory()

	err = cat.Load(reg)
	require.NoError(t, err)
	require.Empty(t, reg.Schemas())

	names, err := cat.Schemas()
	require.NoError(t, err)
	require.Empty(t, names)

	err = cat.Save(registry.NewInMemory())
	require.NoError(t, err)

	names, err = cat.Enums()
	require.NoError(t, err)
	require.Empty(t, names)
}

func TestCatalog_Delete(t *testing.T) {
	cat, err := NewCatalog(newTestDB(t))
	require.NoError(t, err)

	require.NoError(t, cat.Save(newTestRegistry(t)))
	require.NoError(t, cat.Delete("Point"))

	names, err := cat.Schemas()
	require.NoError(t, err)
	require.Equal(t, []string{"Shape"}, names)

	err = cat.Delete("Point")
	require.True(t, xerrors.Is(err, iibin.SchemaNotFound))
	require.EqualError(t, err, "failed to delete: schema not found: schema 'Point': not in the catalog")
}

func TestCatalog_Load_Conflict(t *testing.T) {
	cat, err := NewCatalog(newTestDB(t))
	require.NoError(t, err)

	require.NoError(t, cat.Save(newTestRegistry(t)))

	reg := registry.NewInMemory()
	require.NoError(t, reg.RegisterSchema("Point", []schema.Field{
		{Name: "z", Tag: 1, Type: schema.Bool},
	}))

	err = cat.Load(reg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to register schema: duplicate schema name")
}

func TestCatalog_Load_Corrupted(t *testing.T) {
	db := newTestDB(t)

	cat, err := NewCatalog(db)
	require.NoError(t, err)

	err = db.Update(bucketName, func(b kv.Bucket) error {
		return b.Set(key(schemaPrefix, "Bad"), []byte{0x0a, 0x05})
	})
	require.NoError(t, err)

	err = cat.Load(registry.NewInMemory())
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to decode schema 'schema:Bad': unexpected end of buffer")
}

func TestCatalog_Save_Failure(t *testing.T) {
	db := newTestDB(t)

	cat, err := NewCatalog(db)
	require.NoError(t, err)

	require.NoError(t, db.Close())

	err = cat.Save(newTestRegistry(t))
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to save: ")
}

func TestCatalog_Load_Mismatch(t *testing.T) {
	db := newTestDB(t)

	cat, err := NewCatalog(db)
	require.NoError(t, err)

	// The code of the type is not a known symbol and decodes as an integer.
	data, err := cat.codec.Encode(schemaSchema, codec.Message{
		"name": "Bad",
		"fields": []codec.Message{
			{"name": "a", "tag": 1, "type": int32(99)},
		},
	})
	require.NoError(t, err)

	err = db.Update(bucketName, func(b kv.Bucket) error {
		return b.Set(key(schemaPrefix, "Bad"), data)
	})
	require.NoError(t, err)

	reg := registry.NewInMemory()

	err = cat.Load(reg)
	require.True(t, xerrors.Is(err, iibin.TypeMismatch))
	require.Equal(t, iibin.TypeMismatch, iibin.KindOf(err))
	require.Contains(t, err.Error(), "failed to decode schema 'schema:Bad': type mismatch: "+
		"schema 'iibin.Schema' field 'fields' (tag 2): int32 value cannot be stored in string")
	require.Empty(t, reg.Schemas())
}

func TestSchemaRecord_Fields(t *testing.T) {
	rec := schemaRecord{Fields: []fieldRecord{{Name: "a", Tag: 1, Type: "nope"}}}

	_, err := rec.fields()
	require.True(t, xerrors.Is(err, iibin.InvalidFieldDefinition))

	rec.Fields[0].Type = "string"
	rec.Fields[0].Rule = "nope"

	_, err = rec.fields()
	require.True(t, xerrors.Is(err, iibin.InvalidFieldDefinition))

	rec.Fields[0].Rule = "repeated"

	fields, err := rec.fields()
	require.NoError(t, err)
	require.Equal(t, []schema.Field{
		{Name: "a", Tag: 1, Type: schema.String, Rule: schema.Repeated},
	}, fields)

	values := enumRecord{Values: []enumValueRecord{{Symbol: "A", Code: -3}}}.values()
	require.Equal(t, []schema.EnumValue{{Symbol: "A", Code: -3}}, values)
}

// -----------------------------------------------------------------------------
// Utility functions

func newTestDB(t *testing.T) kv.DB {
	db, err := kv.New(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	return db
}

func newTestRegistry(t *testing.T) *registry.InMemory {
	reg := registry.NewInMemory()

	require.NoError(t, reg.RegisterEnum("Color", []schema.EnumValue{
		{Symbol: "RED", Code: -1},
		{Symbol: "GREEN", Code: 1},
	}))

	require.NoError(t, reg.RegisterSchema("Point", []schema.Field{
		{Name: "x", Tag: 1, Type: schema.Sint64},
		{Name: "y", Tag: 2, Type: schema.Sint64, Rule: schema.Required},
	}))

	require.NoError(t, reg.RegisterSchema("Shape", []schema.Field{
		{Name: "color", Tag: 1, Type: schema.Enum, Ref: "Color"},
		{Name: "points", Tag: 2, Type: schema.Message, Ref: "Point", Rule: schema.Repeated},
		{Name: "weights", Tag: 7, Type: schema.Float, Rule: schema.Repeated, Packed: true},
	}))

	return reg
}

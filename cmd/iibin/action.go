package main

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"go.dedis.ch/iibin/cli"
	"go.dedis.ch/iibin/codec"
	"go.dedis.ch/iibin/schema/catalog"
	"go.dedis.ch/iibin/schema/loader"
	"go.dedis.ch/iibin/schema/registry"
	"go.dedis.ch/iibin/store/kv"
	"go.dedis.ch/iibin/wire"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"
)

const loadFailed = "failed to load schemas: %w"

// encodeAction is an action to encode a YAML value.
//
// - implements actionTemplate
type encodeAction struct{}

// Execute implements actionTemplate. It prints the bytes of the value in
// hexadecimal.
func (a encodeAction) Execute(ctx Context) error {
	reg, err := loadRegistry(ctx.Flags)
	if err != nil {
		return xerrors.Errorf(loadFailed, err)
	}

	msg, err := parseValue(ctx.Flags.String("value"))
	if err != nil {
		return xerrors.Errorf("failed to parse value: %v", err)
	}

	name := ctx.Flags.String("message")

	// An unknown schema is reported by the codec.
	s, err := reg.Schema(name)
	if err == nil {
		err = decodeHexBytes(reg, s, msg)
		if err != nil {
			return xerrors.Errorf("failed to parse value: %v", err)
		}
	}

	data, err := codec.NewCodec(reg).Encode(name, msg)
	if err != nil {
		return xerrors.Errorf("failed to encode: %w", err)
	}

	fmt.Fprintln(ctx.Out, hex.EncodeToString(data))

	return nil
}

// decodeAction is an action to decode bytes given in hexadecimal.
//
// - implements actionTemplate
type decodeAction struct{}

// Execute implements actionTemplate. It prints the message in YAML.
func (a decodeAction) Execute(ctx Context) error {
	reg, err := loadRegistry(ctx.Flags)
	if err != nil {
		return xerrors.Errorf(loadFailed, err)
	}

	data, err := parseHex(ctx.Flags.String("hex"))
	if err != nil {
		return err
	}

	var opts []codec.Option
	if ctx.Flags.Bool("strict") {
		opts = append(opts, codec.WithStrictDecoding())
	}

	msg, err := codec.NewCodec(reg, opts...).Decode(ctx.Flags.String("message"), data)
	if err != nil {
		return xerrors.Errorf("failed to decode: %w", err)
	}

	out, err := yaml.Marshal(toYAML(msg))
	if err != nil {
		return xerrors.Errorf("failed to marshal message: %v", err)
	}

	fmt.Fprint(ctx.Out, string(out))

	return nil
}

// dumpAction is an action to print the raw records of a buffer.
//
// - implements actionTemplate
type dumpAction struct{}

// Execute implements actionTemplate. It prints one line per record with the
// tag, the wire type and the payload. The number of remaining bytes is printed
// when the records are limited.
func (a dumpAction) Execute(ctx Context) error {
	data, err := parseHex(ctx.Flags.String("hex"))
	if err != nil {
		return err
	}

	limit := ctx.Flags.Int("max-records")
	if limit < 0 {
		return xerrors.Errorf("invalid --max-records: %d is negative", limit)
	}

	r := wire.NewReader(data)

	for count := 0; r.More(); count++ {
		if limit > 0 && count == limit {
			fmt.Fprintf(ctx.Out, "... %d bytes remaining\n", len(data)-r.Offset())
			break
		}

		offset := r.Offset()

		rec, err := r.Next()
		if err != nil {
			return xerrors.Errorf("failed to read record at offset %d: %w", offset, err)
		}

		var payload string

		switch rec.Type {
		case wire.Varint:
			payload = strconv.FormatUint(rec.Value, 10)
		case wire.Fixed32:
			payload = fmt.Sprintf("0x%08x", rec.Value)
		case wire.Fixed64:
			payload = fmt.Sprintf("0x%016x", rec.Value)
		default:
			payload = fmt.Sprintf("%d bytes %x", len(rec.Bytes), rec.Bytes)
		}

		fmt.Fprintf(ctx.Out, "%d\t%s\t%s\n", rec.Tag, rec.Type, payload)
	}

	return nil
}

// listAction is an action to list the names of the definitions.
//
// - implements actionTemplate
type listAction struct{}

// Execute implements actionTemplate.
func (a listAction) Execute(ctx Context) error {
	reg, err := loadRegistry(ctx.Flags)
	if err != nil {
		return xerrors.Errorf(loadFailed, err)
	}

	for _, name := range reg.Enums() {
		fmt.Fprintf(ctx.Out, "enum %s\n", name)
	}

	for _, name := range reg.Schemas() {
		fmt.Fprintf(ctx.Out, "message %s\n", name)
	}

	return nil
}

// importAction is an action to store the definitions of a document in a
// catalog.
//
// - implements actionTemplate
type importAction struct{}

// Execute implements actionTemplate.
func (a importAction) Execute(ctx Context) error {
	reg := registry.NewInMemory()

	err := loadDocuments(ctx.Flags.StringSlice("schemas"), reg)
	if err != nil {
		return xerrors.Errorf(loadFailed, err)
	}

	db, cat, err := openCatalog(ctx.Flags.Path("db"))
	if err != nil {
		return err
	}

	defer db.Close()

	err = cat.Save(reg)
	if err != nil {
		return xerrors.Errorf("failed to import: %v", err)
	}

	fmt.Fprintf(ctx.Out, "✅ Imported %d enums and %d messages.\n",
		len(reg.Enums()), len(reg.Schemas()))

	return nil
}

// exportAction is an action to print the definitions as a document.
//
// - implements actionTemplate
type exportAction struct{}

// Execute implements actionTemplate.
func (a exportAction) Execute(ctx Context) error {
	reg, err := loadRegistry(ctx.Flags)
	if err != nil {
		return xerrors.Errorf(loadFailed, err)
	}

	doc, err := loader.Export(reg)
	if err != nil {
		return xerrors.Errorf("failed to export: %v", err)
	}

	out, err := doc.Marshal()
	if err != nil {
		return err
	}

	fmt.Fprint(ctx.Out, string(out))

	return nil
}

// deleteAction is an action to remove a message from a catalog.
//
// - implements actionTemplate
type deleteAction struct{}

// Execute implements actionTemplate.
func (a deleteAction) Execute(ctx Context) error {
	db, cat, err := openCatalog(ctx.Flags.Path("db"))
	if err != nil {
		return err
	}

	defer db.Close()

	name := ctx.Flags.String("message")

	err = cat.Delete(name)
	if err != nil {
		return err
	}

	fmt.Fprintf(ctx.Out, "✅ Deleted %s.\n", name)

	return nil
}

// loadRegistry returns a registry populated with the definitions of the
// documents and of the catalog given by the flags. The documents are applied
// in order so that a document can reference the definitions of a previous one.
func loadRegistry(flags cli.Flags) (*registry.InMemory, error) {
	docPaths := flags.StringSlice("schemas")
	dbPath := flags.Path("db")

	if len(docPaths) == 0 && dbPath == "" {
		return nil, xerrors.New("one of --schemas or --db is required")
	}

	reg := registry.NewInMemory()

	err := loadDocuments(docPaths, reg)
	if err != nil {
		return nil, err
	}

	if dbPath != "" {
		db, cat, err := openCatalog(dbPath)
		if err != nil {
			return nil, err
		}

		defer db.Close()

		err = cat.Load(reg)
		if err != nil {
			return nil, err
		}
	}

	return reg, nil
}

func loadDocuments(paths []string, reg registry.Registry) error {
	for _, path := range paths {
		doc, err := loader.LoadFile(path)
		if err != nil {
			return err
		}

		err = doc.Apply(reg)
		if err != nil {
			return xerrors.Errorf("document '%s': %w", path, err)
		}
	}

	return nil
}

func openCatalog(path string) (kv.DB, *catalog.Catalog, error) {
	db, err := kv.New(path)
	if err != nil {
		return nil, nil, xerrors.Errorf("failed to open catalog: %v", err)
	}

	cat, err := catalog.NewCatalog(db)
	if err != nil {
		db.Close()
		return nil, nil, xerrors.Errorf("failed to open catalog: %v", err)
	}

	return db, cat, nil
}

func parseHex(value string) ([]byte, error) {
	data, err := hex.DecodeString(strings.Join(strings.Fields(value), ""))
	if err != nil {
		return nil, xerrors.Errorf("invalid hex: %v", err)
	}

	return data, nil
}

// Package main implements the iibin command line tool, which encodes and
// decodes messages with the schemas of a document or of a catalog.
//
//	iibin encode --schemas schemas.yml --message Point --value '{x: 1, "y": 2}'
//	iibin decode --schemas base.yml --schemas shapes.yml --message Point --hex 08011002
//	iibin dump --max-records 1 --hex 08011002
//	iibin schema import --schemas schemas.yml --db catalog.db
//	iibin schema export --db catalog.db
//
// Every flag can be set by an environment variable as well, such as
// IIBIN_DB=catalog.db to always use the same catalog.
package main

import (
	"fmt"
	"io"
	"os"

	"go.dedis.ch/iibin"
	"go.dedis.ch/iibin/cli"
	"go.dedis.ch/iibin/cli/ucli"
	"go.dedis.ch/iibin/config"
	"golang.org/x/xerrors"
)

func main() {
	err := run(os.Args, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	return newBuilder(out).Build().Run(args)
}

func newBuilder(out io.Writer) *ucli.Builder {
	builder := ucli.NewBuilder("iibin", nil,
		cli.PathFlag{
			Name:  "config",
			Usage: "path to the configuration file",
		},
		cli.StringFlag{
			Name:  "loglevel",
			Usage: "level of the logs (trace, debug, info, warn, error)",
		},
	)

	builder.SetUsage("schema-driven binary encoding")
	builder.SetEnvPrefix("IIBIN")
	builder.SetWriter(out)

	registryFlags := []cli.Flag{
		cli.StringSliceFlag{
			Name:  "schemas",
			Usage: "path to a schema document, can be repeated",
		},
		cli.PathFlag{
			Name:  "db",
			Usage: "path to a schema catalog",
		},
	}

	cmd := builder.SetCommand("encode")
	cmd.SetDescription("encode a YAML value and print the bytes in hexadecimal")
	cmd.SetFlags(append(registryFlags,
		cli.StringFlag{
			Name:     "message",
			Usage:    "name of the schema",
			Required: true,
		},
		cli.StringFlag{
			Name:  "value",
			Usage: "value of the message as a YAML mapping",
		},
	)...)
	cmd.SetAction(makeAction(out, encodeAction{}))

	cmd = builder.SetCommand("decode")
	cmd.SetDescription("decode hexadecimal bytes and print the message in YAML")
	cmd.SetFlags(append(registryFlags,
		cli.StringFlag{
			Name:     "message",
			Usage:    "name of the schema",
			Required: true,
		},
		cli.StringFlag{
			Name:     "hex",
			Usage:    "bytes of the message in hexadecimal",
			Required: true,
		},
		cli.BoolFlag{
			Name:  "strict",
			Usage: "fail on unknown fields and on enum codes without a symbol",
		},
	)...)
	cmd.SetAction(makeAction(out, decodeAction{}))

	cmd = builder.SetCommand("dump")
	cmd.SetDescription("print the records of hexadecimal bytes without a schema")
	cmd.SetFlags(
		cli.StringFlag{
			Name:     "hex",
			Usage:    "bytes of the message in hexadecimal",
			Required: true,
		},
		cli.IntFlag{
			Name:  "max-records",
			Usage: "number of records to print, all of them when zero",
		},
	)
	cmd.SetAction(makeAction(out, dumpAction{}))

	cmd = builder.SetCommand("schema")
	cmd.SetDescription("manage the schemas")

	sub := cmd.SetSubCommand("list")
	sub.SetDescription("list the enums and the messages")
	sub.SetFlags(registryFlags...)
	sub.SetAction(makeAction(out, listAction{}))

	sub = cmd.SetSubCommand("import")
	sub.SetDescription("store the definitions of a document in a catalog")
	sub.SetFlags(
		cli.StringSliceFlag{
			Name:     "schemas",
			Usage:    "path to a schema document, can be repeated",
			Required: true,
		},
		cli.PathFlag{
			Name:     "db",
			Usage:    "path to a schema catalog",
			Required: true,
		},
	)
	sub.SetAction(makeAction(out, importAction{}))

	sub = cmd.SetSubCommand("export")
	sub.SetDescription("print the definitions of a catalog as a document")
	sub.SetFlags(registryFlags...)
	sub.SetAction(makeAction(out, exportAction{}))

	sub = cmd.SetSubCommand("delete")
	sub.SetDescription("remove a message from a catalog")
	sub.SetFlags(
		cli.PathFlag{
			Name:     "db",
			Usage:    "path to a schema catalog",
			Required: true,
		},
		cli.StringFlag{
			Name:     "message",
			Usage:    "name of the schema",
			Required: true,
		},
	)
	sub.SetAction(makeAction(out, deleteAction{}))

	return builder
}

// Context is the context available to an action when being invoked.
type Context struct {
	Flags cli.Flags
	Out   io.Writer
}

// actionTemplate is implemented by the actions of the commands.
type actionTemplate interface {
	Execute(Context) error
}

// makeAction returns a cli action that applies the global flags before
// executing the template.
func makeAction(out io.Writer, tmpl actionTemplate) cli.Action {
	return func(flags cli.Flags) error {
		err := setup(flags)
		if err != nil {
			return xerrors.Errorf("failed to setup: %v", err)
		}

		return tmpl.Execute(Context{Flags: flags, Out: out})
	}
}

// setup loads the configuration file when one is given and sets the level of
// the global logger.
func setup(flags cli.Flags) error {
	cfg := config.Global()

	path := flags.Path("config")
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}

		cfg = loaded
	}

	lvl := flags.String("loglevel")
	if lvl != "" {
		cfg.LogLevel = lvl
	}

	err := config.SetGlobal(cfg)
	if err != nil {
		return err
	}

	level, err := cfg.Level()
	if err != nil {
		return err
	}

	iibin.Logger = iibin.Logger.Level(level)

	return nil
}

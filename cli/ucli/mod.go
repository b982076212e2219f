// Package ucli provides a cli builder implementation based on the urfave/cli
// library.
//
// When an environment prefix is set, every flag can also be given by an
// environment variable named after the prefix and the flag, for instance
// IIBIN_MAX_RECORDS for the flag max-records and the prefix IIBIN.
package ucli

import (
	"fmt"
	"io"
	"os"
	"strings"

	urfave "github.com/urfave/cli/v2"
	"go.dedis.ch/iibin/cli"
)

// Builder implements a cli builder based on urfave/cli.
//
// - implements cli.Builder
type Builder struct {
	name      string
	usage     string
	envPrefix string
	action    cli.Action
	flags     []cli.Flag
	commands  []*cmdBuilder
	writer    io.Writer
}

// NewBuilder returns a new initialized builder. Action allows one to define a
// primary action, but can be nil if we only needs to define commands. Flags
// provides the global flags available from all the commands/subcommands.
func NewBuilder(name string, action cli.Action, flags ...cli.Flag) *Builder {
	return &Builder{
		name:   name,
		action: action,
		flags:  flags,
		writer: os.Stdout,
	}
}

// SetUsage sets the one-line description of the application.
func (b *Builder) SetUsage(value string) {
	b.usage = value
}

// SetWriter sets the output of the help and the version of the application.
func (b *Builder) SetWriter(w io.Writer) {
	b.writer = w
}

// SetEnvPrefix sets the prefix of the environment variables of the flags. An
// empty prefix disables them.
func (b *Builder) SetEnvPrefix(prefix string) {
	b.envPrefix = prefix
}

// Build implements cli.Builder. The flags are converted at this point so that
// the environment prefix applies to every command.
func (b *Builder) Build() cli.Application {
	conv := converter{prefix: b.envPrefix}

	app := &urfave.App{
		Name:     b.name,
		Usage:    b.usage,
		Flags:    conv.flags(b.flags),
		Action:   makeAction(b.action),
		Commands: conv.commands(b.commands),
		Writer:   b.writer,
	}

	app.Setup()

	return app
}

// SetCommand implements cli.Builder.
func (b *Builder) SetCommand(name string) cli.CommandBuilder {
	cmd := &cmdBuilder{name: name}
	b.commands = append(b.commands, cmd)

	return cmd
}

// cmdBuilder holds the definition of a command until the application is
// built.
//
// - implements cli.CommandBuilder
type cmdBuilder struct {
	name        string
	description string
	action      cli.Action
	flags       []cli.Flag
	subcommands []*cmdBuilder
}

// SetDescription implements cli.CommandBuilder.
func (b *cmdBuilder) SetDescription(value string) {
	b.description = value
}

// SetFlags implements cli.CommandBuilder.
func (b *cmdBuilder) SetFlags(flags ...cli.Flag) {
	b.flags = flags
}

// SetAction implements cli.CommandBuilder.
func (b *cmdBuilder) SetAction(action cli.Action) {
	b.action = action
}

// SetSubCommand implements cli.CommandBuilder.
func (b *cmdBuilder) SetSubCommand(name string) cli.CommandBuilder {
	sub := &cmdBuilder{name: name}
	b.subcommands = append(b.subcommands, sub)

	return sub
}

// converter turns the definitions of the builder into urfave/cli ones.
type converter struct {
	prefix string
}

func (c converter) commands(cmds []*cmdBuilder) []*urfave.Command {
	res := make([]*urfave.Command, len(cmds))

	for i, cmd := range cmds {
		res[i] = &urfave.Command{
			Name:        cmd.name,
			Usage:       cmd.description,
			Flags:       c.flags(cmd.flags),
			Action:      makeAction(cmd.action),
			Subcommands: c.commands(cmd.subcommands),
		}
	}

	return res
}

// flags converts the definitions. It panics on an unsupported definition as
// it is a programming error.
func (c converter) flags(flags []cli.Flag) []urfave.Flag {
	res := make([]urfave.Flag, len(flags))

	for i, f := range flags {
		switch e := f.(type) {
		case cli.StringFlag:
			res[i] = &urfave.StringFlag{
				Name:     e.Name,
				Usage:    e.Usage,
				Required: e.Required,
				Value:    e.Value,
				EnvVars:  c.env(e.Name),
			}
		case cli.StringSliceFlag:
			res[i] = &urfave.StringSliceFlag{
				Name:     e.Name,
				Usage:    e.Usage,
				Required: e.Required,
				Value:    urfave.NewStringSlice(e.Value...),
				EnvVars:  c.env(e.Name),
			}
		case cli.PathFlag:
			res[i] = &urfave.PathFlag{
				Name:      e.Name,
				Usage:     e.Usage,
				Required:  e.Required,
				Value:     e.Value,
				TakesFile: true,
				EnvVars:   c.env(e.Name),
			}
		case cli.IntFlag:
			res[i] = &urfave.IntFlag{
				Name:     e.Name,
				Usage:    e.Usage,
				Required: e.Required,
				Value:    e.Value,
				EnvVars:  c.env(e.Name),
			}
		case cli.BoolFlag:
			res[i] = &urfave.BoolFlag{
				Name:     e.Name,
				Usage:    e.Usage,
				Required: e.Required,
				Value:    e.Value,
				EnvVars:  c.env(e.Name),
			}
		default:
			panic(fmt.Sprintf("flag type '%T' not supported", f))
		}
	}

	return res
}

// env returns the environment variable of a flag, or nothing when there is no
// prefix.
func (c converter) env(name string) []string {
	if c.prefix == "" {
		return nil
	}

	name = strings.ToUpper(strings.ReplaceAll(name, "-", "_"))

	return []string{c.prefix + "_" + name}
}

// makeAction transforms a cli.Action to its urfave form. The urfave context
// provides the flags.
func makeAction(action cli.Action) urfave.ActionFunc {
	if action == nil {
		return nil
	}

	return func(ctx *urfave.Context) error {
		return action(ctx)
	}
}

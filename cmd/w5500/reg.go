package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/northvolt/go-w5500"
	"github.com/peterbourgon/ff/v3/ffcli"
)

type dumpConfig struct {
	rootConfig *rootConfig
	out        io.Writer
	err        io.Writer
	raw        bool
}

func (c *dumpConfig) Exec(ctx context.Context, _ []string) error {
	if c.rootConfig.verbose {
		fmt.Fprintln(c.err, "dump")
	}

	d, closer, err := newW5500(ctx, c.rootConfig)
	if err != nil {
		return err
	}
	defer closer.Close()

	regs, err := d.ReadCommonRegisters(ctx)
	if err != nil {
		return err
	}
	if c.raw {
		_, err = fmt.Fprintln(c.out, prettyHexIndent(regs, "    ", " "))
	} else {
		_, err = fmt.Fprint(c.out, w5500.FormatCommonRegisters(regs))
	}
	return err
}

func newDumpCmd(rootConfig *rootConfig, out io.Writer, err io.Writer) *ffcli.Command {
	cfg := dumpConfig{
		rootConfig: rootConfig,
		out:        out,
		err:        err,
	}

	fs := flag.NewFlagSet("w5500 dump", flag.ExitOnError)
	fs.BoolVar(&cfg.raw, "raw", false, "print the register block as hex only")
	rootConfig.registerFlags(fs)

	return addLongHelp(&ffcli.Command{
		Name:       "dump",
		ShortUsage: "dump [-raw]",
		ShortHelp:  "Dumps the common register block.",
		FlagSet:    fs,
		Options:    envOptions(),
		Exec:       cfg.Exec,
	})
}

type readConfig struct {
	rootConfig *rootConfig
	out        io.Writer
	err        io.Writer
	block      string
}

func (c *readConfig) Exec(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return flag.ErrHelp
	}
	block, err := parseBlock(c.block)
	if err != nil {
		return err
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		return err
	}
	size, err := strconv.Atoi(args[1])
	if err != nil || size <= 0 || size > 0xffff {
		return fmt.Errorf("w5500: invalid length %q", args[1])
	}

	d, closer, err := newW5500(ctx, c.rootConfig)
	if err != nil {
		return err
	}
	defer closer.Close()

	buf := make([]byte, size)
	if err := d.Read(ctx, block, addr, buf); err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.out, prettyHex(buf))
	return err
}

func newReadCmd(rootConfig *rootConfig, out io.Writer, err io.Writer) *ffcli.Command {
	cfg := readConfig{
		rootConfig: rootConfig,
		out:        out,
		err:        err,
	}

	fs := flag.NewFlagSet("w5500 read", flag.ExitOnError)
	fs.StringVar(&cfg.block, "block", "common", "block to read from")
	rootConfig.registerFlags(fs)

	return addLongHelp(&ffcli.Command{
		Name:       "read",
		ShortUsage: "read [-block common] <addr> <length>",
		ShortHelp:  "Reads bytes from a register block or socket buffer.",
		FlagSet:    fs,
		Options:    envOptions(),
		Exec:       cfg.Exec,
	})
}

type writeConfig struct {
	rootConfig *rootConfig
	out        io.Writer
	err        io.Writer
	block      string
}

func (c *writeConfig) Exec(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return flag.ErrHelp
	}
	block, err := parseBlock(c.block)
	if err != nil {
		return err
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		return err
	}
	data, err := parseHex(args[1:])
	if err != nil {
		return fmt.Errorf("w5500: invalid data: %w", err)
	}

	d, closer, err := newW5500(ctx, c.rootConfig)
	if err != nil {
		return err
	}
	defer closer.Close()

	if err := d.Write(ctx, block, addr, data); err != nil {
		return err
	}
	if c.rootConfig.verbose {
		fmt.Fprintln(c.err, "wrote", len(data))
	}
	return nil
}

func newWriteCmd(rootConfig *rootConfig, out io.Writer, err io.Writer) *ffcli.Command {
	cfg := writeConfig{
		rootConfig: rootConfig,
		out:        out,
		err:        err,
	}

	fs := flag.NewFlagSet("w5500 write", flag.ExitOnError)
	fs.StringVar(&cfg.block, "block", "common", "block to write to")
	rootConfig.registerFlags(fs)

	return addLongHelp(&ffcli.Command{
		Name:       "write",
		ShortUsage: "write [-block common] <addr> <hex data>",
		ShortHelp:  "Writes bytes to a register block or socket buffer.",
		FlagSet:    fs,
		Options:    envOptions(),
		Exec:       cfg.Exec,
	})
}

type resetConfig struct {
	rootConfig *rootConfig
	out        io.Writer
	err        io.Writer
}

func (c *resetConfig) Exec(ctx context.Context, _ []string) error {
	d, closer, err := newW5500(ctx, c.rootConfig)
	if err != nil {
		return err
	}
	defer closer.Close()

	if err := d.SoftReset(ctx); err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.out, "reset done")
	return err
}

func newResetCmd(rootConfig *rootConfig, out io.Writer, err io.Writer) *ffcli.Command {
	cfg := resetConfig{
		rootConfig: rootConfig,
		out:        out,
		err:        err,
	}

	fs := flag.NewFlagSet("w5500 reset", flag.ExitOnError)
	rootConfig.registerFlags(fs)

	return addLongHelp(&ffcli.Command{
		Name:       "reset",
		ShortUsage: "reset",
		ShortHelp:  "Performs a software reset, restoring register defaults.",
		FlagSet:    fs,
		Options:    envOptions(),
		Exec:       cfg.Exec,
	})
}

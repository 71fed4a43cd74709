package main

import (
	"context"
	"flag"
	"time"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
	"periph.io/x/conn/v3/physic"
)

type rootConfig struct {
	verbose  bool
	iface    string
	port     string
	cs       string
	hz       physic.Frequency
	devIndex int
	csPin    int
	retries  int
	timeout  time.Duration
	byteMode bool
}

func (c *rootConfig) registerFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.verbose, "v", false, "increase log verbosity")
	fs.StringVar(&c.iface, "i", "spi", "interface type, spi or hid")
	fs.StringVar(&c.port, "port", "", "spi port to use, empty for the first one")
	fs.StringVar(&c.cs, "cs", "", "gpio pin name used as chip-select for spi")
	fs.Var(&c.hz, "hz", "spi clock frequency eg 8MHz")
	fs.IntVar(&c.devIndex, "dev-index", 0, "hid device index when enumerating")
	fs.IntVar(&c.csPin, "cs-pin", 0, "mcp2210 gpio used as chip-select")
	fs.IntVar(&c.retries, "retries", 3, "transaction retries after a transfer timeout")
	fs.DurationVar(&c.timeout, "transfer-timeout", 0, "timeout of a single transfer, 0 for the interface default")
	fs.BoolVar(&c.byteMode, "byte-mode", false, "send frames one byte at a time")
}

func (c *rootConfig) Exec(context.Context, []string) error {
	return flag.ErrHelp
}

func newRootCmd() (*ffcli.Command, *rootConfig) {
	cfg := rootConfig{hz: 8 * physic.MegaHertz}

	fs := flag.NewFlagSet("w5500", flag.ExitOnError)
	cfg.registerFlags(fs)

	return addLongHelp(&ffcli.Command{
		Name:       "w5500",
		ShortUsage: "w5500 [flags] <subcommand>",
		ShortHelp:  "Utilities to bring up and inspect a W5500 Ethernet controller.",
		FlagSet:    fs,
		Options:    envOptions(),
		Exec:       cfg.Exec,
	}), &cfg
}

// envOptions lets every flag be set from a W5500_ prefixed environment
// variable, eg W5500_CS=GPIO8.
func envOptions() []ff.Option {
	return []ff.Option{ff.WithEnvVarPrefix("W5500")}
}

var w5500LongHelp = `

GENERAL
On a host, the chip-select line is driven as a plain GPIO so that a frame
can span several SPI transfers. Pass the pin with -cs, eg -cs GPIO8, and wire
the W5500 SCSn pin to it.

Block names for read and write:

  common     common registers
  sN         registers of socket N (0-7)
  sN-tx      transmit buffer of socket N
  sN-rx      receive buffer of socket N`

package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/northvolt/go-w5500"
	"github.com/peterbourgon/ff/v3/ffcli"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

func newW5500(ctx context.Context, c *rootConfig) (*w5500.Dev, io.Closer, error) {
	switch c.iface {
	case "spi":
		return newW5500_SPI(ctx, c)
	case "hid":
		return newW5500_HID(ctx, c)
	default:
		return nil, nil, errors.New("w5500: unknown interface")
	}
}

func newW5500_SPI(ctx context.Context, c *rootConfig) (*w5500.Dev, io.Closer, error) {
	if c.cs == "" {
		return nil, nil, errors.New("w5500: -cs is required for spi")
	}
	if _, err := host.Init(); err != nil {
		return nil, nil, err
	}

	cs := gpioreg.ByName(c.cs)
	if cs == nil {
		return nil, nil, fmt.Errorf("w5500: unknown gpio %q", c.cs)
	}
	port, err := spireg.Open(c.port)
	if err != nil {
		return nil, nil, fmt.Errorf("w5500: failed to open spi port: %w", err)
	}
	conn, err := port.Connect(c.hz, spi.Mode0|spi.NoCS, 8)
	if err != nil {
		_ = port.Close()
		return nil, nil, fmt.Errorf("w5500: failed to connect spi port: %w", err)
	}

	cfg := w5500.ConfigW5500_SPIDefault(conn, cs)
	applyConfig(&cfg, c)
	d, err := w5500.NewSPIDev(ctx, cfg)
	if err != nil {
		_ = port.Close()
		return nil, nil, err
	}
	return d, port, nil
}

func newW5500_HID(ctx context.Context, c *rootConfig) (*w5500.Dev, io.Closer, error) {
	if c.csPin < 0 || c.csPin > 8 {
		return nil, nil, errors.New("w5500: -cs-pin must be between 0 and 8")
	}

	cfg := w5500.ConfigW5500_HIDDefault()
	applyConfig(&cfg, c)
	cfg.HID.DevIndex = c.devIndex
	cfg.HID.CSPin = uint8(c.csPin)
	cfg.HID.BitRate = uint32(c.hz / physic.Hertz)

	return w5500.NewHIDDev(ctx, cfg)
}

func applyConfig(cfg *w5500.IfaceConfig, c *rootConfig) {
	cfg.Debug = newLogger(c.verbose)
	cfg.Retries = c.retries
	cfg.ByteMode = c.byteMode
	if c.timeout > 0 {
		cfg.Adapter.Timeout = c.timeout
	}
}

// parseBlock parses the block names listed in the long help.
func parseBlock(s string) (w5500.Block, error) {
	s = strings.ToLower(s)
	if s == "common" {
		return w5500.BlockCommon, nil
	}
	if !strings.HasPrefix(s, "s") {
		return 0, fmt.Errorf("w5500: unknown block %q", s)
	}

	num, kind, _ := strings.Cut(s[1:], "-")
	n, err := strconv.Atoi(num)
	if err != nil || n < 0 || n > 7 {
		return 0, fmt.Errorf("w5500: invalid socket in block %q", s)
	}
	switch kind {
	case "":
		return w5500.SocketRegister(n), nil
	case "tx":
		return w5500.SocketTxBuffer(n), nil
	case "rx":
		return w5500.SocketRxBuffer(n), nil
	default:
		return 0, fmt.Errorf("w5500: unknown block %q", s)
	}
}

func parseAddr(s string) (uint16, error) {
	addr, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(s), "0x"), 16, 16)
	if err != nil {
		return 0, fmt.Errorf("w5500: invalid address %q", s)
	}
	return uint16(addr), nil
}

// parseHex decodes hex data, ignoring spaces and colons.
func parseHex(args []string) ([]byte, error) {
	s := strings.Join(args, "")
	s = strings.NewReplacer(" ", "", ":", "").Replace(s)
	return hex.DecodeString(s)
}

// net4Mask formats a mask in dotted decimal, eg 255.255.255.0.
func net4Mask(m net.IPMask) string {
	return net.IP(m).String()
}

func prettyHex(data []byte) string {
	return prettyHexIndent(data, "    ", "")
}

func prettyHexIndent(data []byte, prefix string, space string) string {
	var buf strings.Builder

	// prefix and space every 16 byte, and 2 hex, and one space/newline
	cols := 16
	size := (len(data)/cols+1)*(len(prefix)+len(space)+1) + len(data)*3
	buf.Grow(size)

	for i := range data {
		if i > 0 {
			switch i % cols {
			case 0:
				buf.WriteByte('\n')
			case cols / 2:
				buf.WriteByte(' ')
				buf.WriteString(space)
			default:
				buf.WriteByte(' ')
			}
		}
		if i%cols == 0 {
			buf.WriteString(prefix)
		}

		buf.WriteString(fmt.Sprintf("%02X", data[i:i+1]))
	}

	return buf.String()
}

func addLongHelp(cmd *ffcli.Command) *ffcli.Command {
	if cmd.LongHelp == "" {
		cmd.LongHelp = cmd.ShortHelp
	}

	cmd.LongHelp += w5500LongHelp

	return cmd
}

func newLogger(verbose bool) w5500.Logger {
	if verbose {
		return log.New(os.Stderr, "", 0)
	} else {
		return nil
	}
}

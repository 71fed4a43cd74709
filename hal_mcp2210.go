package w5500

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// MCP2210 HID commands. See the MCP2210 datasheet, section 3.
const (
	mcpCmdSetChipSettings     = 0x21
	mcpCmdSetGPIOValue        = 0x30
	mcpCmdSetTransferSettings = 0x40
	mcpCmdTransferSPIData     = 0x42
)

const (
	mcpStatusOK           = 0x00
	mcpStatusBusNotAvail  = 0xf7
	mcpStatusInProgress   = 0xf8
	mcpEngineFinished     = 0x10
	mcpEngineStarted      = 0x20
	mcpEngineDataReceived = 0x30

	mcpMaxChunk = 60
	mcpAllPins  = 0x01ff
	// mcpMaxPolls bounds the number of empty transfer reports sent while
	// waiting for the SPI engine to return data.
	mcpMaxPolls = 64
)

var (
	errMCPResponse = errors.New("w5500: mcp2210 response mismatch")
	errMCPStatus   = errors.New("w5500: mcp2210 command failed")
	errMCPBusy     = errors.New("w5500: mcp2210 spi bus not available")
	errMCPStalled  = errors.New("w5500: mcp2210 spi engine stalled")
)

// mcp2210 is a HAL for the MCP2210 USB to SPI bridge.
//
// The W5500 chip-select is one of the bridge GPIO pins and is driven
// separately from the transfers, so a single frame may span several bridge
// transactions.
type mcp2210 struct {
	dev  io.ReadWriter
	cfg  HIDConfig
	buf  []byte
	gpio uint16
	// txSize is the transaction size last programmed into the bridge.
	txSize int
	busy   atomic.Bool
}

var _ HAL = &mcp2210{}

func newMCP2210(dev io.ReadWriter, cfg HIDConfig) *mcp2210 {
	return &mcp2210{
		dev:  dev,
		cfg:  cfg,
		buf:  make([]byte, cfg.PacketSize),
		gpio: mcpAllPins,
	}
}

// init configures every pin as GPIO with the chip-select pin as a high
// output.
func (m *mcp2210) init() error {
	if m.cfg.CSPin > 8 {
		return fmt.Errorf("w5500: invalid mcp2210 chip-select pin %d", m.cfg.CSPin)
	}
	req := m.request(mcpCmdSetChipSettings)
	// bytes 4-12 are the pin designations, zero is GPIO
	binary.LittleEndian.PutUint16(req[13:], mcpAllPins)
	binary.LittleEndian.PutUint16(req[15:], mcpAllPins&^(1<<m.cfg.CSPin))
	_, err := m.command(req)
	return err
}

// WritePin sets the chip-select GPIO. It shares the HID device with the
// transfers, so it is refused while one is running.
func (m *mcp2210) WritePin(level gpio.Level) error {
	if !m.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer m.busy.Store(false)
	if level {
		m.gpio |= 1 << m.cfg.CSPin
	} else {
		m.gpio &^= 1 << m.cfg.CSPin
	}
	req := m.request(mcpCmdSetGPIOValue)
	binary.LittleEndian.PutUint16(req[4:], m.gpio)
	_, err := m.command(req)
	return err
}

func (m *mcp2210) Transmit(p []byte, timeout time.Duration) Status {
	return m.tx(p, nil, timeout)
}

func (m *mcp2210) Receive(p []byte, timeout time.Duration) Status {
	return m.tx(p, p, timeout)
}

func (m *mcp2210) TransmitReceive(w, r []byte, timeout time.Duration) Status {
	if len(w) != len(r) {
		return StatusError
	}
	return m.tx(w, r, timeout)
}

func (m *mcp2210) Ready() bool {
	return !m.busy.Load()
}

func (m *mcp2210) tx(w, r []byte, timeout time.Duration) Status {
	if !m.busy.CompareAndSwap(false, true) {
		return StatusBusy
	}
	var err error
	s := runWithTimeout(timeout, w, r, func(w, r []byte) error {
		err = m.transfer(w, r)
		return err
	}, func() {
		m.busy.Store(false)
	})
	if s == StatusError && errors.Is(err, errMCPBusy) {
		return StatusBusy
	}
	return s
}

// transfer runs one bridge transaction of len(w) bytes.
func (m *mcp2210) transfer(w, r []byte) error {
	if err := m.setTransferSize(len(w)); err != nil {
		return err
	}

	sent, recv := 0, 0
	for polls := 0; ; {
		n := len(w) - sent
		if n > mcpMaxChunk {
			n = mcpMaxChunk
		}
		req := m.request(mcpCmdTransferSPIData)
		req[1] = byte(n)
		copy(req[4:], w[sent:sent+n])

		rsp, err := m.exchange(req)
		if err != nil {
			return err
		}
		switch rsp[1] {
		case mcpStatusOK:
		case mcpStatusInProgress:
			// chunk not accepted, send it again
			if polls++; polls > mcpMaxPolls {
				return errMCPStalled
			}
			continue
		case mcpStatusBusNotAvail:
			return errMCPBusy
		default:
			return fmt.Errorf("%w: status 0x%02x", errMCPStatus, rsp[1])
		}
		sent += n

		if rsp[3] == mcpEngineDataReceived || rsp[3] == mcpEngineFinished {
			k := int(rsp[2])
			if k > len(w)-recv || 4+k > len(rsp) {
				return errMCPResponse
			}
			if r != nil {
				copy(r[recv:], rsp[4:4+k])
			}
			recv += k
		}
		if rsp[3] == mcpEngineFinished && sent == len(w) {
			return nil
		}

		if n == 0 {
			if polls++; polls > mcpMaxPolls {
				return errMCPStalled
			}
		}
	}
}

func (m *mcp2210) setTransferSize(n int) error {
	if n == m.txSize {
		return nil
	}
	req := m.request(mcpCmdSetTransferSettings)
	binary.LittleEndian.PutUint32(req[4:], m.cfg.BitRate)
	binary.LittleEndian.PutUint16(req[8:], mcpAllPins)
	binary.LittleEndian.PutUint16(req[10:], mcpAllPins)
	binary.LittleEndian.PutUint16(req[18:], uint16(n))
	// req[20] is SPI mode 0
	if _, err := m.command(req); err != nil {
		return err
	}
	m.txSize = n
	return nil
}

// request returns a zeroed report starting with cmd.
func (m *mcp2210) request(cmd byte) []byte {
	req := make([]byte, m.cfg.PacketSize)
	req[0] = cmd
	return req
}

// command sends req and checks the status byte of the response.
func (m *mcp2210) command(req []byte) ([]byte, error) {
	rsp, err := m.exchange(req)
	if err != nil {
		return nil, err
	}
	if rsp[1] != mcpStatusOK {
		return nil, fmt.Errorf("%w: command 0x%02x status 0x%02x", errMCPStatus, req[0], rsp[1])
	}
	return rsp, nil
}

// exchange writes one report and reads the matching response.
func (m *mcp2210) exchange(req []byte) ([]byte, error) {
	if _, err := m.dev.Write(req); err != nil {
		return nil, err
	}
	n, err := m.dev.Read(m.buf)
	if err != nil {
		return nil, err
	}
	if n < 4 || m.buf[0] != req[0] {
		return nil, errMCPResponse
	}
	return m.buf[:n], nil
}

package w5500

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/spi"
)

// periphHAL drives a periph.io SPI connection with a manually managed
// chip-select pin.
type periphHAL struct {
	conn spi.Conn
	cs   gpio.PinOut
	busy atomic.Bool
}

var _ HAL = &periphHAL{}

// NewPeriphHAL returns a HAL on top of conn and cs.
//
// conn should have been connected with spi.NoCS, cs is driven by the adapter.
func NewPeriphHAL(conn spi.Conn, cs gpio.PinOut) HAL {
	return &periphHAL{conn: conn, cs: cs}
}

func (h *periphHAL) WritePin(level gpio.Level) error {
	if !h.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer h.busy.Store(false)
	return h.cs.Out(level)
}

func (h *periphHAL) Transmit(p []byte, timeout time.Duration) Status {
	return h.tx(p, nil, timeout)
}

func (h *periphHAL) Receive(p []byte, timeout time.Duration) Status {
	return h.tx(p, p, timeout)
}

func (h *periphHAL) TransmitReceive(w, r []byte, timeout time.Duration) Status {
	if len(w) != len(r) {
		return StatusError
	}
	return h.tx(w, r, timeout)
}

func (h *periphHAL) Ready() bool {
	return !h.busy.Load()
}

func (h *periphHAL) tx(w, r []byte, timeout time.Duration) Status {
	if !h.busy.CompareAndSwap(false, true) {
		return StatusBusy
	}
	return runWithTimeout(timeout, w, r, func(w, r []byte) error {
		return h.conn.Tx(w, r)
	}, func() {
		h.busy.Store(false)
	})
}

// NewSPIDev returns a device on the host SPI connection and chip-select pin
// in cfg.SPI.
func NewSPIDev(ctx context.Context, cfg IfaceConfig) (*Dev, error) {
	if cfg.SPI.Conn == nil || cfg.SPI.CS == nil {
		return nil, errors.New("w5500: spi connection and chip-select are required")
	}
	if err := cfg.SPI.CS.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("w5500: failed to release chip-select: %w", err)
	}

	d := newDev(cfg)
	hal := NewPeriphHAL(cfg.SPI.Conn, cfg.SPI.CS)
	if err := NewAdapter(hal, cfg.Adapter).AttachTransport(d); err != nil {
		return nil, err
	}
	return d, d.init(ctx)
}

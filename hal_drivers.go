package w5500

import (
	"sync/atomic"
	"time"

	"periph.io/x/conn/v3/gpio"
	"tinygo.org/x/drivers"
)

// OutputPin is a digital output, typically a machine.Pin.
type OutputPin interface {
	Set(high bool)
}

// driversHAL drives a TinyGo SPI bus.
type driversHAL struct {
	bus  drivers.SPI
	cs   OutputPin
	busy atomic.Bool
}

var _ HAL = &driversHAL{}

// NewDriversHAL returns a HAL on top of a tinygo.org/x/drivers SPI bus, such
// as a configured machine.SPI, and a chip-select pin configured as output.
//
// The chip-select pin is released before returning.
func NewDriversHAL(bus drivers.SPI, cs OutputPin) HAL {
	cs.Set(true)
	return &driversHAL{bus: bus, cs: cs}
}

func (h *driversHAL) WritePin(level gpio.Level) error {
	h.cs.Set(bool(level))
	return nil
}

func (h *driversHAL) Transmit(p []byte, timeout time.Duration) Status {
	return h.tx(p, nil, timeout)
}

func (h *driversHAL) Receive(p []byte, timeout time.Duration) Status {
	return h.tx(p, p, timeout)
}

func (h *driversHAL) TransmitReceive(w, r []byte, timeout time.Duration) Status {
	if len(w) != len(r) {
		return StatusError
	}
	return h.tx(w, r, timeout)
}

func (h *driversHAL) Ready() bool {
	return !h.busy.Load()
}

// tx runs the transfer on the calling goroutine. MCU buses cannot be
// interrupted, so a transfer that overran its timeout is reported after the
// fact.
func (h *driversHAL) tx(w, r []byte, timeout time.Duration) Status {
	if !h.busy.CompareAndSwap(false, true) {
		return StatusBusy
	}
	defer h.busy.Store(false)

	start := time.Now()
	var err error
	if len(w) == 1 {
		// single bytes go through Transfer, which needs no buffer setup
		var b byte
		b, err = h.bus.Transfer(w[0])
		if err == nil && r != nil {
			r[0] = b
		}
	} else {
		err = h.bus.Tx(w, r)
	}

	if err != nil {
		return StatusError
	} else if timeout > 0 && time.Since(start) > timeout {
		return StatusTimeout
	}
	return StatusOK
}

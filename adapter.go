package w5500

import (
	"runtime"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// maxBurst is the largest transfer the HAL size field can express.
const maxBurst = 0xffff

// Adapter implements Transport on top of a HAL.
//
// All operations block until the transfer has finished. The adapter holds no
// state besides its configuration; the interrupt mask is process wide.
type Adapter struct {
	hal  HAL
	mask *Mask
	cfg  AdapterConfig
}

var _ Transport = &Adapter{}

// NewAdapter returns an adapter driving hal with the given configuration.
func NewAdapter(hal HAL, cfg AdapterConfig) *Adapter {
	return &Adapter{
		hal:  hal,
		mask: Interrupts,
		cfg:  cfg,
	}
}

// AttachTransport registers the adapter with r. It must be called once before
// r issues any transfer. Calling it again replaces the registration with the
// same adapter.
func (a *Adapter) AttachTransport(r Registrar) error {
	return r.RegisterTransport(a)
}

// EnterCritical disables maskable interrupts.
func (a *Adapter) EnterCritical() {
	a.mask.Disable()
}

// ExitCritical enables interrupts again.
func (a *Adapter) ExitCritical() {
	a.mask.Enable()
}

// Select asserts the active-low chip-select line.
func (a *Adapter) Select() error {
	return a.writePin(gpio.Low)
}

// Deselect releases the chip-select line.
func (a *Adapter) Deselect() error {
	return a.writePin(gpio.High)
}

// writePin waits for a timed out transfer to drain before touching
// chip-select, so the line never moves while the bus is clocking.
func (a *Adapter) writePin(level gpio.Level) error {
	if err := a.waitReady(); err != nil {
		return err
	}
	return a.hal.WritePin(level)
}

// TransferByte exchanges a single byte, returning the byte received while tx
// was sent.
func (a *Adapter) TransferByte(tx byte) (byte, error) {
	if err := a.waitReady(); err != nil {
		return 0, err
	}
	w := [1]byte{tx}
	var r [1]byte
	err := statusError(a.hal.TransmitReceive(w[:], r[:], a.cfg.Timeout))
	return r[0], err
}

// ReadByte receives a single byte while clocking out the filler byte.
func (a *Adapter) ReadByte() (byte, error) {
	if err := a.waitReady(); err != nil {
		return 0, err
	}
	r := [1]byte{a.cfg.Filler}
	err := statusError(a.hal.Receive(r[:], a.cfg.Timeout))
	return r[0], err
}

// WriteByte sends a single byte.
func (a *Adapter) WriteByte(c byte) error {
	if err := a.waitReady(); err != nil {
		return err
	}
	w := [1]byte{c}
	return statusError(a.hal.Transmit(w[:], a.cfg.Timeout))
}

// ReadBurst fills p with received bytes.
func (a *Adapter) ReadBurst(p []byte) error {
	if len(p) == 0 {
		return nil
	} else if len(p) > maxBurst {
		return ErrBurstTooLong
	}
	if err := a.waitReady(); err != nil {
		return err
	}
	return statusError(a.hal.Receive(p, a.cfg.Timeout))
}

// WriteBurst sends all of p.
func (a *Adapter) WriteBurst(p []byte) error {
	if len(p) == 0 {
		return nil
	} else if len(p) > maxBurst {
		return ErrBurstTooLong
	}
	if err := a.waitReady(); err != nil {
		return err
	}
	return statusError(a.hal.Transmit(p, a.cfg.Timeout))
}

// waitReady spins until the HAL reports the peripheral idle.
func (a *Adapter) waitReady() error {
	if a.hal.Ready() {
		return nil
	}
	start := time.Now()
	for !a.hal.Ready() {
		if a.cfg.ReadyTimeout > 0 && time.Since(start) >= a.cfg.ReadyTimeout {
			return ErrNotReady
		}
		runtime.Gosched()
	}
	return nil
}

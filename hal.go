package w5500

import (
	"time"

	"periph.io/x/conn/v3/gpio"
)

// Status is the result of a HAL transfer.
type Status int

const (
	StatusOK Status = iota
	StatusError
	StatusBusy
	StatusTimeout
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusError:
		return "error"
	case StatusBusy:
		return "busy"
	case StatusTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// HAL is the platform layer below the Adapter: one SPI peripheral and the
// chip-select pin of the W5500.
type HAL interface {
	// WritePin drives the chip-select pin. It fails with ErrBusy while a
	// transfer is in flight.
	WritePin(level gpio.Level) error
	// Transmit sends len(p) bytes and discards what was received.
	Transmit(p []byte, timeout time.Duration) Status
	// Receive fills p with len(p) received bytes. The current contents of p
	// are clocked out while receiving.
	Receive(p []byte, timeout time.Duration) Status
	// TransmitReceive sends w while receiving into r; len(w) == len(r).
	TransmitReceive(w, r []byte, timeout time.Duration) Status
	// Ready reports whether the peripheral is idle.
	Ready() bool
}

// Transport is the set of callbacks the register layer uses to talk to the
// chip. The methods come in pairs: critical section, chip-select, single
// byte and burst.
type Transport interface {
	EnterCritical()
	ExitCritical()
	Select() error
	Deselect() error
	ReadByte() (byte, error)
	WriteByte(c byte) error
	ReadBurst(p []byte) error
	WriteBurst(p []byte) error
}

// Registrar accepts a Transport. It is implemented by Dev.
type Registrar interface {
	RegisterTransport(t Transport) error
}

// runWithTimeout runs fn on its own goroutine and waits at most timeout for it.
//
// fn gets private copies of w and r, so a transfer that outlives the call
// never touches the caller's buffers. r is only filled when fn returns
// successfully before the deadline. On timeout the goroutine keeps running;
// done is called as soon as fn returns, before the result is reported.
func runWithTimeout(timeout time.Duration, w, r []byte, fn func(w, r []byte) error, done func()) Status {
	ws := append([]byte(nil), w...)
	var rs []byte
	if r != nil {
		rs = make([]byte, len(r))
	}

	result := make(chan error, 1)
	go func() {
		err := fn(ws, rs)
		done()
		result <- err
	}()

	var expired <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expired = t.C
	}
	select {
	case err := <-result:
		if err != nil {
			return StatusError
		}
		copy(r, rs)
		return StatusOK
	case <-expired:
		return StatusTimeout
	}
}

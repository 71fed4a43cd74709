package w5500

import (
	"bytes"
	"errors"
	"strconv"
	"testing"
	"time"

	"periph.io/x/conn/v3/gpio"
)

func newTestAdapter(h HAL) *Adapter {
	return NewAdapter(h, AdapterConfig{Timeout: 5 * time.Millisecond})
}

func TestAdapterWriteByte(t *testing.T) {
	h := &fakeHAL{}
	a := newTestAdapter(h)

	if err := a.WriteByte(0x42); err != nil {
		t.Fatal(err)
	}
	if len(h.tx) != 1 {
		t.Fatalf("want 1 transmit, got %d", len(h.tx))
	}
	if !bytes.Equal(h.tx[0], []byte{0x42}) {
		t.Errorf("want [42], got % x", h.tx[0])
	}
	if h.timeouts[0] != 5*time.Millisecond {
		t.Errorf("want timeout 5ms, got %v", h.timeouts[0])
	}
}

func TestAdapterReadByte(t *testing.T) {
	for _, want := range []byte{0x00, 0x04, 0xa5, 0xff} {
		t.Run(strconv.Itoa(int(want)), func(t *testing.T) {
			h := &fakeHAL{rx: []byte{want}}
			a := NewAdapter(h, AdapterConfig{Filler: 0xee})

			got, err := a.ReadByte()
			if err != nil {
				t.Fatal(err)
			}
			if got != want {
				t.Errorf("want 0x%02x, got 0x%02x", want, got)
			}
			if !bytes.Equal(h.tx[0], []byte{0xee}) {
				t.Errorf("want filler clocked out, got % x", h.tx[0])
			}
		})
	}
}

func TestAdapterTransferByte(t *testing.T) {
	h := &fakeHAL{rx: []byte{0x5a}}
	a := newTestAdapter(h)

	got, err := a.TransferByte(0xa5)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0x5a {
		t.Errorf("want 0x5a, got 0x%02x", got)
	}
	if !bytes.Equal(h.tx[0], []byte{0xa5}) {
		t.Errorf("want [a5] sent, got % x", h.tx[0])
	}
}

func TestAdapterReadBurst(t *testing.T) {
	h := &fakeHAL{rx: []byte{0x01, 0x02, 0x03, 0x04}}
	a := newTestAdapter(h)

	buf := make([]byte, 4)
	if err := a.ReadBurst(buf); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf, []byte{0x01, 0x02, 0x03, 0x04}) {
		t.Errorf("want 01 02 03 04, got % x", buf)
	}
	if len(h.recv) != 1 || len(h.recv[0]) != 4 {
		t.Fatalf("want one receive of 4 bytes, got %v", h.recv)
	}
	if &h.recv[0][0] != &buf[0] {
		t.Error("receive did not use the caller buffer")
	}
}

func TestAdapterWriteBurst(t *testing.T) {
	for _, size := range []int{1, 2, 3, 60, 61, 2048} {
		t.Run(strconv.Itoa(size), func(t *testing.T) {
			h := &fakeHAL{}
			a := newTestAdapter(h)

			buf := bytes.Repeat([]byte{0x5a}, size)
			if err := a.WriteBurst(buf); err != nil {
				t.Fatal(err)
			}
			if len(h.tx) != 1 || !bytes.Equal(h.tx[0], buf) {
				t.Errorf("want one transmit of %d bytes, got %d transmits", size, len(h.tx))
			}
		})
	}
}

func TestAdapterBurstLimits(t *testing.T) {
	h := &fakeHAL{}
	a := newTestAdapter(h)

	if err := a.ReadBurst(nil); err != nil {
		t.Errorf("empty read: %v", err)
	}
	if err := a.WriteBurst([]byte{}); err != nil {
		t.Errorf("empty write: %v", err)
	}
	if len(h.tx) != 0 {
		t.Errorf("empty bursts reached the hal: %d", len(h.tx))
	}

	big := make([]byte, maxBurst+1)
	if err := a.WriteBurst(big); !errors.Is(err, ErrBurstTooLong) {
		t.Errorf("want ErrBurstTooLong, got %v", err)
	}
	if err := a.ReadBurst(big); !errors.Is(err, ErrBurstTooLong) {
		t.Errorf("want ErrBurstTooLong, got %v", err)
	}
	if err := a.WriteBurst(big[:maxBurst]); err != nil {
		t.Errorf("max burst: %v", err)
	}
}

func TestAdapterChipSelect(t *testing.T) {
	h := &fakeHAL{}
	a := newTestAdapter(h)

	for _, step := range []struct {
		fn   func() error
		want gpio.Level
	}{
		{a.Select, gpio.Low},
		{a.Select, gpio.Low},
		{a.Deselect, gpio.High},
		{a.Deselect, gpio.High},
	} {
		if err := step.fn(); err != nil {
			t.Fatal(err)
		}
		if got := h.pins[len(h.pins)-1]; got != step.want {
			t.Errorf("want %v, got %v", step.want, got)
		}
	}
}

func TestAdapterStatus(t *testing.T) {
	testCases := []struct {
		status Status
		want   error
	}{
		{StatusOK, nil},
		{StatusTimeout, ErrTimeout},
		{StatusBusy, ErrBusy},
		{StatusError, ErrTransfer},
	}

	for _, tc := range testCases {
		t.Run(tc.status.String(), func(t *testing.T) {
			h := &fakeHAL{status: tc.status, rx: []byte{0x11}}
			a := newTestAdapter(h)

			if err := a.WriteByte(0x42); !errors.Is(err, tc.want) {
				t.Errorf("WriteByte: want %v, got %v", tc.want, err)
			}
			if _, err := a.ReadByte(); !errors.Is(err, tc.want) {
				t.Errorf("ReadByte: want %v, got %v", tc.want, err)
			}
			if _, err := a.TransferByte(0x42); !errors.Is(err, tc.want) {
				t.Errorf("TransferByte: want %v, got %v", tc.want, err)
			}
			if err := a.ReadBurst(make([]byte, 4)); !errors.Is(err, tc.want) {
				t.Errorf("ReadBurst: want %v, got %v", tc.want, err)
			}
			if err := a.WriteBurst(make([]byte, 4)); !errors.Is(err, tc.want) {
				t.Errorf("WriteBurst: want %v, got %v", tc.want, err)
			}
		})
	}
}

func TestAdapterWaitReady(t *testing.T) {
	h := &fakeHAL{notReady: 5}
	a := NewAdapter(h, AdapterConfig{ReadyTimeout: time.Second})
	if err := a.WriteByte(0x01); err != nil {
		t.Fatal(err)
	}
	if h.notReady != 0 {
		t.Errorf("adapter did not wait, %d polls left", h.notReady)
	}
}

func TestAdapterReadyTimeout(t *testing.T) {
	h := &fakeHAL{stuck: true}
	a := NewAdapter(h, AdapterConfig{ReadyTimeout: 5 * time.Millisecond})

	if err := a.WriteBurst([]byte{0x01, 0x02}); !errors.Is(err, ErrNotReady) {
		t.Errorf("want ErrNotReady, got %v", err)
	}
	if len(h.tx) != 0 {
		t.Error("transfer issued while not ready")
	}
	if err := a.Deselect(); !errors.Is(err, ErrNotReady) {
		t.Errorf("Deselect: want ErrNotReady, got %v", err)
	}
	if len(h.pins) != 0 {
		t.Error("chip-select driven while not ready")
	}
}

func TestAdapterCriticalSection(t *testing.T) {
	a := newTestAdapter(&fakeHAL{})

	a.EnterCritical()
	if Interrupts.Enabled() {
		t.Error("interrupts enabled inside critical section")
	}
	a.ExitCritical()
	if !Interrupts.Enabled() {
		t.Error("interrupts disabled after critical section")
	}

	// no nesting: one exit undoes any number of enters
	a.EnterCritical()
	a.EnterCritical()
	a.ExitCritical()
	if !Interrupts.Enabled() {
		t.Error("interrupts disabled after nested enter and single exit")
	}
}

type recordingRegistrar struct {
	registered []Transport
}

func (r *recordingRegistrar) RegisterTransport(t Transport) error {
	r.registered = append(r.registered, t)
	return nil
}

func TestAdapterAttachTransport(t *testing.T) {
	a := newTestAdapter(&fakeHAL{})
	r := &recordingRegistrar{}

	for i := 0; i < 2; i++ {
		if err := a.AttachTransport(r); err != nil {
			t.Fatal(err)
		}
	}
	if len(r.registered) != 2 {
		t.Fatalf("want 2 registrations, got %d", len(r.registered))
	}
	if r.registered[0] != r.registered[1] || r.registered[1] != Transport(a) {
		t.Error("second registration differs from the first")
	}
}

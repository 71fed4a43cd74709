package w5500

import (
	"time"

	"periph.io/x/conn/v3/gpio"
)

// fakeHAL records every call and serves rx to receives.
type fakeHAL struct {
	pins     []gpio.Level
	tx       [][]byte
	recv     [][]byte
	rx       []byte
	status   Status
	notReady int
	stuck    bool
	timeouts []time.Duration
}

func (h *fakeHAL) WritePin(level gpio.Level) error {
	h.pins = append(h.pins, level)
	return nil
}

func (h *fakeHAL) Transmit(p []byte, timeout time.Duration) Status {
	h.tx = append(h.tx, append([]byte(nil), p...))
	h.timeouts = append(h.timeouts, timeout)
	return h.status
}

func (h *fakeHAL) Receive(p []byte, timeout time.Duration) Status {
	h.tx = append(h.tx, append([]byte(nil), p...))
	h.recv = append(h.recv, p)
	h.timeouts = append(h.timeouts, timeout)
	copy(p, h.rx)
	return h.status
}

func (h *fakeHAL) TransmitReceive(w, r []byte, timeout time.Duration) Status {
	h.tx = append(h.tx, append([]byte(nil), w...))
	h.recv = append(h.recv, r)
	h.timeouts = append(h.timeouts, timeout)
	copy(r, h.rx)
	return h.status
}

func (h *fakeHAL) Ready() bool {
	if h.stuck {
		return false
	}
	if h.notReady > 0 {
		h.notReady--
		return false
	}
	return true
}

// fakeChip is a HAL that behaves like a W5500 in VDM mode.
//
// A frame starts when chip-select goes low. The first three bytes are the
// address and control phases; the following bytes read or write memory at
// consecutive addresses.
type fakeChip struct {
	mem      map[Block][]byte
	selected bool
	hdr      []byte
	addr     uint16
	frames   [][]byte

	// timeouts makes the next n transfers report StatusTimeout.
	timeouts int
	// resetPolls is the number of MR reads that still show the reset bit.
	resetPolls int

	transfers int
	unmasked  int
	transmits []int
	critical  *Mask
}

func newFakeChip() *fakeChip {
	c := &fakeChip{mem: make(map[Block][]byte), critical: Interrupts}
	c.block(BlockCommon)[regVERSIONR] = chipVersion
	return c
}

func (c *fakeChip) block(b Block) []byte {
	m, ok := c.mem[b]
	if !ok {
		m = make([]byte, 0x10000)
		c.mem[b] = m
	}
	return m
}

func (c *fakeChip) WritePin(level gpio.Level) error {
	if level == gpio.Low {
		c.selected = true
		c.hdr = c.hdr[:0]
	} else if c.selected {
		c.selected = false
		c.frames = append(c.frames, append([]byte(nil), c.hdr...))
	}
	return nil
}

func (c *fakeChip) control() (Block, bool) {
	return Block(c.hdr[2] >> 3), c.hdr[2]&controlWrite != 0
}

func (c *fakeChip) Transmit(p []byte, timeout time.Duration) Status {
	if s, ok := c.begin(); !ok {
		return s
	}
	c.transmits = append(c.transmits, len(p))
	for _, b := range p {
		if len(c.hdr) < frameHeaderSize {
			c.hdr = append(c.hdr, b)
			if len(c.hdr) == frameHeaderSize {
				c.addr = uint16(c.hdr[0])<<8 | uint16(c.hdr[1])
			}
			continue
		}
		block, write := c.control()
		if write {
			c.block(block)[c.addr] = b
			c.addr++
		}
	}
	return StatusOK
}

func (c *fakeChip) Receive(p []byte, timeout time.Duration) Status {
	if s, ok := c.begin(); !ok {
		return s
	}
	if len(c.hdr) < frameHeaderSize {
		return StatusError
	}
	block, _ := c.control()
	for i := range p {
		if block == BlockCommon && c.addr == regMR && c.resetPolls > 0 {
			c.resetPolls--
			if c.resetPolls == 0 {
				c.block(block)[regMR] &^= mrRST
			}
		}
		p[i] = c.block(block)[c.addr]
		c.addr++
	}
	return StatusOK
}

func (c *fakeChip) TransmitReceive(w, r []byte, timeout time.Duration) Status {
	return StatusError
}

func (c *fakeChip) Ready() bool {
	return true
}

// begin checks the frame preconditions shared by every transfer.
func (c *fakeChip) begin() (Status, bool) {
	c.transfers++
	if c.critical.Enabled() {
		c.unmasked++
	}
	if !c.selected {
		return StatusError, false
	}
	if c.timeouts > 0 {
		c.timeouts--
		return StatusTimeout, false
	}
	return StatusOK, true
}

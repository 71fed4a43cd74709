//go:build tinygo

package w5500

import "runtime/interrupt"

// Mask models the single interrupt enable bit of the processor.
//
// Non maskable interrupts and hard faults are not affected.
type Mask struct {
	disabled bool
	state    interrupt.State
}

// Disable masks interrupts. Disabling twice is the same as disabling once.
func (m *Mask) Disable() {
	state := interrupt.Disable()
	if !m.disabled {
		m.state = state
		m.disabled = true
	}
}

// Enable restores the interrupt state saved by the first Disable.
//
// Unlike the host build this is not an unconditional enable: if interrupts
// were already masked when Disable was first called, for example inside an
// interrupt handler, they stay masked. runtime/interrupt has no portable way
// to force them on.
func (m *Mask) Enable() {
	m.disabled = false
	interrupt.Restore(m.state)
}

// Enabled reports whether interrupts are enabled.
func (m *Mask) Enabled() bool {
	return !m.disabled
}

//go:build !tinygo

package w5500

import "sync/atomic"

// Mask models the single interrupt enable bit of the processor.
//
// On a hosted OS there are no interrupts to mask, so the bit is only
// recorded.
type Mask struct {
	disabled atomic.Bool
}

// Disable masks interrupts. Disabling twice is the same as disabling once.
func (m *Mask) Disable() {
	m.disabled.Store(true)
}

// Enable unmasks interrupts unconditionally.
func (m *Mask) Enable() {
	m.disabled.Store(false)
}

// Enabled reports whether interrupts are enabled.
func (m *Mask) Enabled() bool {
	return !m.disabled.Load()
}

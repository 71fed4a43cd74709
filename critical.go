package w5500

// Interrupts is the process wide interrupt mask used by every Adapter.
var Interrupts = &Mask{}

// Do runs fn with interrupts disabled and enables them again when fn returns,
// including when it panics.
//
// Do does not nest: a Do inside another Do enables interrupts when the inner
// call returns.
func (m *Mask) Do(fn func() error) error {
	m.Disable()
	defer m.Enable()
	return fn()
}

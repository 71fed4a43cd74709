package w5500

import (
	"errors"
	"testing"
)

func TestMask(t *testing.T) {
	var m Mask
	if !m.Enabled() {
		t.Fatal("zero mask should be enabled")
	}

	m.Disable()
	m.Disable()
	if m.Enabled() {
		t.Error("want disabled")
	}
	m.Enable()
	if !m.Enabled() {
		t.Error("want enabled")
	}

	// unmatched exit leaves interrupts enabled
	m.Enable()
	if !m.Enabled() {
		t.Error("want enabled after unmatched enable")
	}
}

func TestMaskDo(t *testing.T) {
	var m Mask
	errFn := errors.New("fn failed")

	err := m.Do(func() error {
		if m.Enabled() {
			t.Error("enabled inside Do")
		}
		return errFn
	})
	if !errors.Is(err, errFn) {
		t.Errorf("want %v, got %v", errFn, err)
	}
	if !m.Enabled() {
		t.Error("disabled after Do")
	}
}

func TestMaskDoPanic(t *testing.T) {
	var m Mask
	func() {
		defer func() {
			if recover() == nil {
				t.Error("want panic")
			}
		}()
		_ = m.Do(func() error {
			panic("boom")
		})
	}()
	if !m.Enabled() {
		t.Error("disabled after panic in Do")
	}
}

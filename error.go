package w5500

import (
	"errors"
)

// Transfer errors reported by the Adapter.
var (
	// ErrTimeout is returned when the HAL did not finish a transfer within the
	// configured timeout.
	//
	// The receive buffer is left as it was: a transfer that finishes after the
	// deadline writes into a private copy.
	ErrTimeout = errors.New("w5500: spi transfer timeout")

	// ErrNotReady is returned when the SPI peripheral did not become ready
	// before the ready timeout expired.
	ErrNotReady = errors.New("w5500: spi peripheral not ready")

	// ErrBusy is returned when the HAL rejected a transfer because the bus was
	// in use.
	ErrBusy = errors.New("w5500: spi peripheral busy")

	// ErrTransfer is returned for any other HAL failure.
	ErrTransfer = errors.New("w5500: spi transfer failed")

	// ErrBurstTooLong is returned for bursts longer than the HAL can express.
	ErrBurstTooLong = errors.New("w5500: burst exceeds 65535 bytes")
)

// Configuration errors.
var (
	// ErrIOMode is returned when a transport is registered while the device
	// is configured for anything but SPI variable length data mode.
	ErrIOMode = errors.New("w5500: expected to be operating in spi vdm mode")

	// ErrNoTransport is returned when the device is used before a transport
	// was registered.
	ErrNoTransport = errors.New("w5500: no transport registered")

	// ErrVersion is returned when VERSIONR does not read back as a W5500.
	ErrVersion = errors.New("w5500: unexpected chip version")

	errInvalidBlock  = errors.New("w5500: invalid block")
	errInvalidSocket = errors.New("w5500: invalid socket")
	errResetTimeout  = errors.New("w5500: soft reset did not complete")
)

// statusError maps a HAL status to the matching package error.
func statusError(s Status) error {
	switch s {
	case StatusOK:
		return nil
	case StatusTimeout:
		return ErrTimeout
	case StatusBusy:
		return ErrBusy
	default:
		return ErrTransfer
	}
}

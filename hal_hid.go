package w5500

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/karalabe/usb"
)

// ErrUSBNotSupported is returned when the USB support is missing.
//
// When building, CGO is required for USB support. If CGO is not enabled, the
// HID interface will not be available.
var ErrUSBNotSupported = errors.New("w5500: usb support is missing")

// NewHIDDev returns a device behind an MCP2210 USB to SPI bridge.
//
// The returned closer releases the USB device.
func NewHIDDev(ctx context.Context, cfg IfaceConfig) (*Dev, io.Closer, error) {
	if !usb.Supported() {
		return nil, nil, ErrUSBNotSupported
	}

	deviceInfos, err := usb.EnumerateHid(cfg.HID.VendorID, cfg.HID.ProductID)
	if err != nil {
		return nil, nil, fmt.Errorf("w5500: failed to get hid devices: %w", err)
	}
	if cfg.HID.DevIndex >= len(deviceInfos) {
		return nil, nil, errors.New("w5500: no hid devices found")
	}

	hid, err := deviceInfos[cfg.HID.DevIndex].Open()
	if err != nil {
		return nil, nil, fmt.Errorf("w5500: %w", err)
	}

	bridge := newMCP2210(hid, cfg.HID)
	if err := bridge.init(); err != nil {
		_ = hid.Close()
		return nil, nil, err
	}

	d := newDev(cfg)
	if err := NewAdapter(bridge, cfg.Adapter).AttachTransport(d); err != nil {
		_ = hid.Close()
		return nil, nil, err
	}
	if err := d.init(ctx); err != nil {
		_ = hid.Close()
		return nil, nil, err
	}
	return d, hid, nil
}

package w5500

import (
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// IOMode is the host interface mode of the chip.
type IOMode int

const (
	// IOModeSPIVDM is SPI with variable length data frames. The chip-select
	// line delimits the frame.
	IOModeSPIVDM IOMode = iota
	// IOModeSPIFDM is SPI with fixed length data frames of 1, 2 or 4 bytes.
	IOModeSPIFDM
)

func (m IOMode) String() string {
	switch m {
	case IOModeSPIVDM:
		return "spi-vdm"
	case IOModeSPIFDM:
		return "spi-fdm"
	default:
		return "unknown"
	}
}

// IfaceConfig is the configuration object for a device.
type IfaceConfig struct {
	// IOMode must be IOModeSPIVDM, other modes are rejected when the
	// transport is registered.
	IOMode IOMode
	// Adapter configures the SPI transport adapter.
	Adapter AdapterConfig
	// SPI contains host SPI specific configuration.
	SPI SPIConfig
	// HID contains MCP2210 bridge specific configuration.
	HID HIDConfig
	// Retries is the number of times a transaction is repeated after the
	// transport reported ErrTimeout.
	Retries int
	// RetryDelay is the time to wait between retries.
	RetryDelay time.Duration
	// ByteMode sends frames one byte at a time instead of using bursts.
	ByteMode bool
	// SkipVersionCheck skips reading VERSIONR when the device is created.
	SkipVersionCheck bool
	// Debug is used for debug output.
	Debug Logger
}

// AdapterConfig configures the SPI transport adapter.
type AdapterConfig struct {
	// Timeout bounds every single HAL transfer.
	Timeout time.Duration
	// ReadyTimeout bounds the wait for the peripheral to become ready before
	// a transfer. Zero waits forever.
	ReadyTimeout time.Duration
	// Filler is the byte clocked out while only reading.
	Filler byte
}

type SPIConfig struct {
	Conn spi.Conn
	// CS is the chip-select pin, driven manually.
	CS gpio.PinOut
	// MaxHz is the clock used when connecting a port.
	MaxHz physic.Frequency
	// Mode is the SPI mode; the W5500 supports mode 0 and 3.
	Mode spi.Mode
}

type HIDConfig struct {
	// DevIndex is the HID enumeration index to use.
	DevIndex int
	// VendorID of the bridge.
	VendorID uint16
	// ProductID of the bridge.
	ProductID uint16
	// PacketSize is the size of the USB report.
	PacketSize int
	// CSPin is the bridge GPIO used as chip-select.
	CSPin uint8
	// BitRate is the SPI clock in bits per second.
	BitRate uint32
}

const defaultTimeout = 10 * time.Millisecond

// DefaultAdapterConfig returns the adapter defaults.
func DefaultAdapterConfig() AdapterConfig {
	return AdapterConfig{
		Timeout:      defaultTimeout,
		ReadyTimeout: 100 * time.Millisecond,
		Filler:       0x00,
	}
}

// ConfigW5500_SPIDefault returns a default config for a W5500 connected to a
// host SPI connection with a manually driven chip-select.
//
// The connection should be opened with spi.NoCS so that the adapter owns the
// chip-select line.
func ConfigW5500_SPIDefault(conn spi.Conn, cs gpio.PinOut) IfaceConfig {
	return IfaceConfig{
		IOMode:     IOModeSPIVDM,
		Adapter:    DefaultAdapterConfig(),
		Retries:    3,
		RetryDelay: time.Millisecond,
		SPI: SPIConfig{
			Conn:  conn,
			CS:    cs,
			MaxHz: 8 * physic.MegaHertz,
			Mode:  spi.Mode0,
		},
	}
}

const (
	vendorMicrochip = 0x04d8

	productMCP2210 = 0x00de
)

// ConfigW5500_HIDDefault returns a configuration for a W5500 behind an
// MCP2210 USB to SPI bridge.
func ConfigW5500_HIDDefault() IfaceConfig {
	cfg := IfaceConfig{
		IOMode:     IOModeSPIVDM,
		Adapter:    DefaultAdapterConfig(),
		Retries:    3,
		RetryDelay: time.Millisecond,
		HID: HIDConfig{
			DevIndex:   0,
			VendorID:   vendorMicrochip,
			ProductID:  productMCP2210,
			PacketSize: 64,
			CSPin:      0,
			BitRate:    1000000,
		},
	}
	// USB round trips are slow compared to a native SPI peripheral.
	cfg.Adapter.Timeout = 250 * time.Millisecond
	return cfg
}

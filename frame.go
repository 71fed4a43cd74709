package w5500

import (
	"golang.org/x/crypto/cryptobyte"
)

// Block selects the register file or buffer a frame addresses.
//
// Block is the BSB field of the control phase.
type Block uint8

// BlockCommon addresses the common registers.
const BlockCommon Block = 0x00

// Number of hardware sockets.
const numSockets = 8

// SocketRegister addresses the registers of socket n.
func SocketRegister(n int) Block { return Block(n<<2 | 0x01) }

// SocketTxBuffer addresses the transmit buffer of socket n.
func SocketTxBuffer(n int) Block { return Block(n<<2 | 0x02) }

// SocketRxBuffer addresses the receive buffer of socket n.
func SocketRxBuffer(n int) Block { return Block(n<<2 | 0x03) }

// Valid reports whether b is a block the chip decodes. Blocks 4n with n > 0
// are reserved.
func (b Block) Valid() bool {
	return b == BlockCommon || (b < numSockets<<2 && b&0x03 != 0)
}

// Control phase fields.
const (
	controlRead  = 0 << 2
	controlWrite = 1 << 2
	// controlVDM is the OM field for variable length data mode; the frame
	// ends when chip-select is released.
	controlVDM = 0x00

	frameHeaderSize = 3
)

// frameHeader encodes the address and control phases of a VDM frame.
func frameHeader(b Block, addr uint16, write bool) ([]byte, error) {
	if !b.Valid() {
		return nil, errInvalidBlock
	}
	control := byte(b)<<3 | controlVDM
	if write {
		control |= controlWrite
	} else {
		control |= controlRead
	}

	builder := cryptobyte.NewFixedBuilder(make([]byte, 0, frameHeaderSize))
	builder.AddUint16(addr)
	builder.AddUint8(control)
	return builder.Bytes()
}

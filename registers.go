package w5500

import (
	"fmt"
	"strings"
)

// Common register offsets.
const (
	regMR       = 0x0000
	regGAR      = 0x0001
	regSUBR     = 0x0005
	regSHAR     = 0x0009
	regSIPR     = 0x000f
	regINTLEVEL = 0x0013
	regIR       = 0x0015
	regIMR      = 0x0016
	regSIR      = 0x0017
	regSIMR     = 0x0018
	regRTR      = 0x0019
	regRCR      = 0x001b
	regPHYCFGR  = 0x002e
	regVERSIONR = 0x0039

	// commonRegistersSize spans MR up to and including VERSIONR.
	commonRegistersSize = regVERSIONR + 1
)

// Socket register offsets, relative to SocketRegister(n).
const (
	regSnMR = 0x0000
	regSnCR = 0x0001
	regSnIR = 0x0002
	regSnSR = 0x0003
)

const (
	// mrRST starts a software reset and reads back as zero once done.
	mrRST = 0x80

	// chipVersion is the fixed value of VERSIONR.
	chipVersion = 0x04

	// rtrUnit is the resolution of RTR.
	rtrUnit = 100
)

// PHYStatus is the value of PHYCFGR.
type PHYStatus uint8

const (
	phyLink   PHYStatus = 1 << 0
	phySpeed  PHYStatus = 1 << 1
	phyDuplex PHYStatus = 1 << 2
)

// Link reports whether the link is up.
func (s PHYStatus) Link() bool { return s&phyLink != 0 }

// Speed returns the link speed in Mbps.
func (s PHYStatus) Speed() int {
	if s&phySpeed != 0 {
		return 100
	}
	return 10
}

// FullDuplex reports whether the link is full duplex.
func (s PHYStatus) FullDuplex() bool { return s&phyDuplex != 0 }

func (s PHYStatus) String() string {
	if !s.Link() {
		return "link down"
	}
	duplex := "half"
	if s.FullDuplex() {
		duplex = "full"
	}
	return fmt.Sprintf("link up %dMbps %s duplex", s.Speed(), duplex)
}

// SocketState is the value of Sn_SR.
type SocketState uint8

const (
	SocketClosed      SocketState = 0x00
	SocketInit        SocketState = 0x13
	SocketListen      SocketState = 0x14
	SocketSynSent     SocketState = 0x15
	SocketSynRecv     SocketState = 0x16
	SocketEstablished SocketState = 0x17
	SocketFinWait     SocketState = 0x18
	SocketClosing     SocketState = 0x1a
	SocketTimeWait    SocketState = 0x1b
	SocketCloseWait   SocketState = 0x1c
	SocketLastAck     SocketState = 0x1d
	SocketUDP         SocketState = 0x22
	SocketMACRaw      SocketState = 0x42
)

var socketStateNames = map[SocketState]string{
	SocketClosed:      "closed",
	SocketInit:        "init",
	SocketListen:      "listen",
	SocketSynSent:     "syn-sent",
	SocketSynRecv:     "syn-recv",
	SocketEstablished: "established",
	SocketFinWait:     "fin-wait",
	SocketClosing:     "closing",
	SocketTimeWait:    "time-wait",
	SocketCloseWait:   "close-wait",
	SocketLastAck:     "last-ack",
	SocketUDP:         "udp",
	SocketMACRaw:      "macraw",
}

func (s SocketState) String() string {
	if name, ok := socketStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("unknown(0x%02x)", uint8(s))
}

// commonRegisterNames names the common registers for dumps.
var commonRegisterNames = []struct {
	addr uint16
	size int
	name string
}{
	{regMR, 1, "MR"},
	{regGAR, 4, "GAR"},
	{regSUBR, 4, "SUBR"},
	{regSHAR, 6, "SHAR"},
	{regSIPR, 4, "SIPR"},
	{regINTLEVEL, 2, "INTLEVEL"},
	{regIR, 1, "IR"},
	{regIMR, 1, "IMR"},
	{regSIR, 1, "SIR"},
	{regSIMR, 1, "SIMR"},
	{regRTR, 2, "RTR"},
	{regRCR, 1, "RCR"},
	{regPHYCFGR, 1, "PHYCFGR"},
	{regVERSIONR, 1, "VERSIONR"},
}

// FormatCommonRegisters formats the named registers of a common register
// dump as returned by ReadCommonRegisters, one per line.
func FormatCommonRegisters(regs []byte) string {
	var buf strings.Builder
	for _, r := range commonRegisterNames {
		end := int(r.addr) + r.size
		if end > len(regs) {
			break
		}
		fmt.Fprintf(&buf, "%-8s 0x%04x  % X\n", r.name, r.addr, regs[r.addr:end])
	}
	return buf.String()
}

package w5500

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"golang.org/x/crypto/cryptobyte"
)

// Dev is a W5500 accessed through a registered Transport.
type Dev struct {
	mu  sync.Mutex
	t   Transport
	cfg IfaceConfig
	log Logger
}

var _ Registrar = &Dev{}

// New returns a W5500 device using the supplied transport for communication.
//
// Unless cfg.SkipVersionCheck is set, the chip version is verified.
func New(ctx context.Context, t Transport, cfg IfaceConfig) (*Dev, error) {
	d := newDev(cfg)
	if err := d.RegisterTransport(t); err != nil {
		return nil, err
	}
	return d, d.init(ctx)
}

func newDev(cfg IfaceConfig) *Dev {
	return &Dev{
		cfg: cfg,
		log: getLogger(cfg.Debug),
	}
}

func (d *Dev) init(ctx context.Context) error {
	if d.cfg.SkipVersionCheck {
		return nil
	}
	v, err := d.Version(ctx)
	if err != nil {
		return err
	}
	if v != chipVersion {
		return fmt.Errorf("%w: 0x%02x", ErrVersion, v)
	}
	return nil
}

// RegisterTransport sets the transport used for all register accesses,
// replacing any earlier registration.
//
// Only the SPI variable length data mode is supported; any other IOMode
// returns ErrIOMode.
func (d *Dev) RegisterTransport(t Transport) error {
	if d.cfg.IOMode != IOModeSPIVDM {
		return fmt.Errorf("%w, got %s", ErrIOMode, d.cfg.IOMode)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.t = &transportDebug{"spi", d.log, t}
	return nil
}

// Read reads len(p) bytes starting at addr in block.
func (d *Dev) Read(ctx context.Context, block Block, addr uint16, p []byte) error {
	return d.transact(ctx, block, addr, p, false)
}

// Write writes p starting at addr in block.
func (d *Dev) Write(ctx context.Context, block Block, addr uint16, p []byte) error {
	return d.transact(ctx, block, addr, p, true)
}

// transact runs one frame, repeating it when the transport timed out.
func (d *Dev) transact(ctx context.Context, block Block, addr uint16, p []byte, write bool) error {
	hdr, err := frameHeader(block, addr, write)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.t == nil {
		return ErrNoTransport
	}

	for i := -1; i < d.cfg.Retries; i++ {
		if err = ctx.Err(); err != nil {
			return err
		}
		if err = d.frame(hdr, p, write); !errors.Is(err, ErrTimeout) {
			break
		}
		d.log.Printf("w5500: frame 0x%02x:%04x timed out, retrying", uint8(block), addr)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d.cfg.RetryDelay):
		}
	}
	return err
}

// frame issues the address, control and data phases with chip-select
// asserted, inside a critical section.
func (d *Dev) frame(hdr []byte, p []byte, write bool) (err error) {
	t := d.t
	t.EnterCritical()
	defer t.ExitCritical()

	if err := t.Select(); err != nil {
		return err
	}
	defer func() {
		if e := t.Deselect(); err == nil {
			err = e
		}
	}()

	if err := d.send(hdr); err != nil {
		return err
	}
	if write {
		return d.send(p)
	}
	return d.recv(p)
}

func (d *Dev) send(p []byte) error {
	if len(p) > 1 && !d.cfg.ByteMode {
		return d.t.WriteBurst(p)
	}
	for _, c := range p {
		if err := d.t.WriteByte(c); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dev) recv(p []byte) error {
	if len(p) > 1 && !d.cfg.ByteMode {
		return d.t.ReadBurst(p)
	}
	for i := range p {
		c, err := d.t.ReadByte()
		if err != nil {
			return err
		}
		p[i] = c
	}
	return nil
}

// Version returns VERSIONR, which is always 0x04 on a W5500.
func (d *Dev) Version(ctx context.Context) (byte, error) {
	var buf [1]byte
	err := d.Read(ctx, BlockCommon, regVERSIONR, buf[:])
	return buf[0], err
}

// HardwareAddr returns the source MAC address.
func (d *Dev) HardwareAddr(ctx context.Context) (net.HardwareAddr, error) {
	buf := make(net.HardwareAddr, 6)
	if err := d.Read(ctx, BlockCommon, regSHAR, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// SetHardwareAddr sets the source MAC address.
func (d *Dev) SetHardwareAddr(ctx context.Context, mac net.HardwareAddr) error {
	if len(mac) != 6 {
		return errors.New("w5500: hardware address must be 6 bytes")
	}
	return d.Write(ctx, BlockCommon, regSHAR, mac)
}

// IPConfig is the IPv4 configuration of the chip.
type IPConfig struct {
	IP      net.IP
	Mask    net.IPMask
	Gateway net.IP
}

// IPConfig reads the source IP address, subnet mask and gateway.
func (d *Dev) IPConfig(ctx context.Context) (IPConfig, error) {
	// GAR, SUBR, SHAR and SIPR are contiguous
	var buf [regSIPR + 4 - regGAR]byte
	if err := d.Read(ctx, BlockCommon, regGAR, buf[:]); err != nil {
		return IPConfig{}, err
	}

	var gar, subr, sipr []byte
	s := cryptobyte.String(buf[:])
	if !s.ReadBytes(&gar, 4) ||
		!s.ReadBytes(&subr, 4) ||
		!s.Skip(6) ||
		!s.ReadBytes(&sipr, 4) ||
		!s.Empty() {
		return IPConfig{}, errors.New("w5500: short ip configuration")
	}

	return IPConfig{
		IP:      net.IP(append([]byte(nil), sipr...)),
		Mask:    net.IPMask(append([]byte(nil), subr...)),
		Gateway: net.IP(append([]byte(nil), gar...)),
	}, nil
}

// SetIPConfig writes the source IP address, subnet mask and gateway.
//
// All addresses must be IPv4.
func (d *Dev) SetIPConfig(ctx context.Context, c IPConfig) error {
	ip, gw := c.IP.To4(), c.Gateway.To4()
	if ip == nil || gw == nil || len(c.Mask) != net.IPv4len {
		return errors.New("w5500: ip configuration must be ipv4")
	}

	var b cryptobyte.Builder
	b.AddBytes(gw)
	b.AddBytes(c.Mask)
	garSubr, err := b.Bytes()
	if err != nil {
		return err
	}
	if err := d.Write(ctx, BlockCommon, regGAR, garSubr); err != nil {
		return err
	}
	return d.Write(ctx, BlockCommon, regSIPR, ip)
}

// PHYStatus reads the PHY configuration register.
func (d *Dev) PHYStatus(ctx context.Context) (PHYStatus, error) {
	var buf [1]byte
	err := d.Read(ctx, BlockCommon, regPHYCFGR, buf[:])
	return PHYStatus(buf[0]), err
}

// SoftReset resets all registers to their defaults and waits for the chip
// to clear the reset bit.
func (d *Dev) SoftReset(ctx context.Context) error {
	if err := d.Write(ctx, BlockCommon, regMR, []byte{mrRST}); err != nil {
		return err
	}

	var buf [1]byte
	for i := 0; i < 10; i++ {
		if err := d.Read(ctx, BlockCommon, regMR, buf[:]); err != nil {
			return err
		}
		if buf[0]&mrRST == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Millisecond):
		}
	}
	return errResetTimeout
}

// SocketStatus returns Sn_SR of socket n.
func (d *Dev) SocketStatus(ctx context.Context, n int) (SocketState, error) {
	if n < 0 || n >= numSockets {
		return 0, errInvalidSocket
	}
	var buf [1]byte
	err := d.Read(ctx, SocketRegister(n), regSnSR, buf[:])
	return SocketState(buf[0]), err
}

// RetryConfig returns the retransmission timeout (RTR) and retry count (RCR).
func (d *Dev) RetryConfig(ctx context.Context) (time.Duration, uint8, error) {
	var buf [3]byte
	if err := d.Read(ctx, BlockCommon, regRTR, buf[:]); err != nil {
		return 0, 0, err
	}

	var rtr uint16
	var rcr uint8
	s := cryptobyte.String(buf[:])
	if !s.ReadUint16(&rtr) || !s.ReadUint8(&rcr) {
		return 0, 0, errors.New("w5500: short retry configuration")
	}
	return time.Duration(rtr) * rtrUnit * time.Microsecond, rcr, nil
}

// SetRetryConfig sets the retransmission timeout, in units of 100µs, and
// retry count.
func (d *Dev) SetRetryConfig(ctx context.Context, timeout time.Duration, count uint8) error {
	units := timeout / (rtrUnit * time.Microsecond)
	if units <= 0 || units > 0xffff {
		return fmt.Errorf("w5500: retry timeout %v out of range", timeout)
	}

	b := cryptobyte.NewFixedBuilder(make([]byte, 0, 3))
	b.AddUint16(uint16(units))
	b.AddUint8(count)
	buf, err := b.Bytes()
	if err != nil {
		return err
	}
	return d.Write(ctx, BlockCommon, regRTR, buf)
}

// ReadCommonRegisters reads the whole common register block, MR through
// VERSIONR.
func (d *Dev) ReadCommonRegisters(ctx context.Context) ([]byte, error) {
	buf := make([]byte, commonRegistersSize)
	if err := d.Read(ctx, BlockCommon, regMR, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

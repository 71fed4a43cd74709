package w5500

// transportDebug logs every call made to the next transport.
type transportDebug struct {
	id   string
	l    Logger
	next Transport
}

func (t *transportDebug) EnterCritical() {
	t.l.Printf("%5s >>  critical enter", t.id)
	t.next.EnterCritical()
}

func (t *transportDebug) ExitCritical() {
	t.next.ExitCritical()
	t.l.Printf("%5s <<  critical exit", t.id)
}

func (t *transportDebug) Select() error {
	err := t.next.Select()
	t.l.Printf("%5s >>  select %+v", t.id, err)
	return err
}

func (t *transportDebug) Deselect() error {
	err := t.next.Deselect()
	t.l.Printf("%5s <<  deselect %+v", t.id, err)
	return err
}

func (t *transportDebug) ReadByte() (byte, error) {
	c, err := t.next.ReadByte()
	t.l.Printf("%5s <<  recv 0x%02x %+v", t.id, c, err)
	return c, err
}

func (t *transportDebug) WriteByte(c byte) error {
	err := t.next.WriteByte(c)
	t.l.Printf("%5s >>  send 0x%02x %+v", t.id, c, err)
	return err
}

func (t *transportDebug) ReadBurst(p []byte) error {
	t.l.Printf("%5s >>  recv(%d)", t.id, len(p))
	err := t.next.ReadBurst(p)
	t.l.Printf("%5s <<  recv %d %+v", t.id, len(p), err)
	if err == nil && len(p) > 0 {
		t.l.Printf("%s", hexDump(p))
	}
	return err
}

func (t *transportDebug) WriteBurst(p []byte) error {
	t.l.Printf("%5s >>  send", t.id)
	if len(p) > 0 {
		t.l.Printf("%s", hexDump(p))
	}
	err := t.next.WriteBurst(p)
	t.l.Printf("%5s <<  send %d %+v", t.id, len(p), err)
	return err
}

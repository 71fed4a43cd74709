package w5500

import (
	"encoding/hex"
	"strings"
)

// Logger receives the transport trace written when IfaceConfig.Debug is set,
// and the retry notices of Dev.
//
// Payload dumps span several lines.
type Logger interface {
	Printf(format string, args ...interface{})
}

type nullLoggerImpl struct{}

func (nullLoggerImpl) Printf(format string, args ...interface{}) {}

// nullLogger is a logger that does nothing.
var nullLogger = nullLoggerImpl{}

// getLogger returns l, or nullLogger when no debug logger was configured.
func getLogger(l Logger) Logger {
	if l == nil {
		return nullLogger
	}
	return l
}

// hexDump formats an SPI payload like `hexdump -C`. The dump is only built
// when the logger formats it, so a null logger costs nothing.
type hexDump []byte

func (h hexDump) String() string {
	var buf strings.Builder
	buf.WriteByte('\n')
	d := hex.Dumper(&buf)
	_, _ = d.Write([]byte(h))
	_ = d.Close()
	buf.WriteByte('\n')
	return buf.String()
}

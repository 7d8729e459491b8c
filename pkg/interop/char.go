package interop

import (
	"golang.org/x/text/encoding/unicode"
)

// Char is a single UTF-16 code unit handed over by the host, the analogue of
// a host character type.
type Char uint16

var utf16BE = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// String decodes the code unit. A lone surrogate decodes to U+FFFD.
func (c Char) String() string {
	out, err := utf16BE.NewDecoder().Bytes([]byte{byte(c >> 8), byte(c)})
	if err != nil {
		return "�"
	}
	return string(out)
}

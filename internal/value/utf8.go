package value

import (
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ValidateUTF8 reports whether data is well-formed UTF-8, using
// golang.org/x/text's UTF-8 decoder rather than stdlib's utf8.Valid.
// This is deliberately *validation only* — never normalization — because
// string interning requires that a String's bytes are exactly what the
// caller supplied; running NFC/NFKC here would silently change the
// identity of otherwise-distinct byte sequences.
func ValidateUTF8(data []byte) error {
	_, _, err := transform.Bytes(unicode.UTF8.NewDecoder(), data)
	return err
}

// ValidateScalar reports whether r is a valid, encodable Unicode scalar
// value for a Char — surrogate halves and out-of-range values are
// rejected the same way a lone surrogate would be rejected by the UTF-8
// decoder above.
func ValidateScalar(r rune) bool {
	if r < 0 || r > 0x10FFFF {
		return false
	}
	if r >= 0xD800 && r <= 0xDFFF {
		return false
	}
	return true
}

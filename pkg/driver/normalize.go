package driver

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

const byteOrderMark = "\ufeff"

// NormalizeSource strips a leading byte-order mark and converts source to
// Unicode NFC, so identically rendered string literals compare equal.
func NormalizeSource(source string) string {
	source = strings.TrimPrefix(source, byteOrderMark)
	if norm.NFC.IsNormalString(source) {
		return source
	}
	return norm.NFC.String(source)
}

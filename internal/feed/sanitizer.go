package feed

import "strings"

// Sanitize removes ASCII control characters that are illegal in XML 1.0
// from raw feed text. Tab, newline and carriage return are kept; all other
// bytes, including non-ASCII, pass through untouched. Clean input comes
// back byte-identical.
func Sanitize(raw string) string {
	if !hasIllegalChars(raw) {
		return raw
	}
	return strings.Map(func(r rune) rune {
		if isIllegalChar(r) {
			return -1
		}
		return r
	}, raw)
}

func hasIllegalChars(s string) bool {
	for i := 0; i < len(s); i++ {
		if isIllegalChar(rune(s[i])) {
			return true
		}
	}
	return false
}

func isIllegalChar(r rune) bool {
	return r < 0x20 && r != '\t' && r != '\n' && r != '\r'
}

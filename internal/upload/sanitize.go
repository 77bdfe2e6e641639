package upload

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// SanitizeFilename reduces a client-supplied name to a flat ASCII name safe to
// log or join onto a directory. The result may be empty.
func SanitizeFilename(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}

	var b strings.Builder
	for _, r := range norm.NFKD.String(name) {
		switch {
		case r > unicode.MaxASCII:
			// combining marks and other non-ASCII runes are dropped
		case unicode.IsSpace(r):
			b.WriteByte('_')
		case r == '.' || r == '-' || r == '_',
			'a' <= r && r <= 'z', 'A' <= r && r <= 'Z', '0' <= r && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	return strings.Trim(b.String(), "._")
}

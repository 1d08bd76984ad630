package export

import (
	"path"
	"strings"
	"unicode"
)

// reservedNames are device names some filesystems refuse as components,
// matched case-insensitively.
var reservedNames = map[string]struct{}{
	"con": {}, "prn": {}, "aux": {}, "nul": {},
	"com1": {}, "com2": {}, "com3": {}, "com4": {}, "com5": {},
	"com6": {}, "com7": {}, "com8": {}, "com9": {},
	"lpt1": {}, "lpt2": {}, "lpt3": {}, "lpt4": {}, "lpt5": {},
	"lpt6": {}, "lpt7": {}, "lpt8": {}, "lpt9": {},
}

// SanitizeComponent turns an arbitrary instance name into a safe path
// component. It is total: every input has a defined non-empty output.
func SanitizeComponent(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			b.WriteByte('_')
		default:
			if unicode.IsControl(r) {
				b.WriteByte('_')
			} else {
				b.WriteRune(r)
			}
		}
	}

	// Trailing spaces and dots are invalid on some filesystems.
	sanitized := strings.TrimRight(b.String(), " .")

	if sanitized == "" {
		return "_"
	}
	if _, reserved := reservedNames[strings.ToLower(sanitized)]; reserved {
		return "_" + sanitized
	}
	return sanitized
}

// SanitizedJoin joins a base path with the sanitized form of name.
// Paths are slash-separated and relative to the output source root.
func SanitizedJoin(base, name string) string {
	return path.Join(base, SanitizeComponent(name))
}

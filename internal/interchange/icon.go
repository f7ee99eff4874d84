package interchange

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const iconURIPrefix = "URI:"

// EncodeIcon percent-encodes emoji and other non-ASCII icons behind a
// "URI:" prefix. Plain symbol names pass through.
func EncodeIcon(icon string) string {
	if icon == "" || isSymbolName(icon) {
		return icon
	}
	return iconURIPrefix + url.PathEscape(norm.NFC.String(icon))
}

// DecodeIcon reverses EncodeIcon. Values that fail to unescape are kept
// as written.
func DecodeIcon(s string) string {
	rest, ok := strings.CutPrefix(s, iconURIPrefix)
	if !ok {
		return s
	}
	decoded, err := url.PathUnescape(rest)
	if err != nil || !utf8.ValidString(decoded) {
		return s
	}
	return norm.NFC.String(decoded)
}

// isSymbolName matches SF-Symbol style names such as "figure.walk".
func isSymbolName(s string) bool {
	if strings.HasPrefix(s, iconURIPrefix) {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.' || r == '_' || r == '-':
		default:
			return false
		}
	}
	return true
}

package admission

import (
	"fmt"
	"io"
	"mime"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/unicode/norm"
)

var wordDecoder = &mime.WordDecoder{
	CharsetReader: func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, fmt.Errorf("unsupported charset %q: %w", charset, err)
		}
		return enc.NewDecoder().Reader(input), nil
	},
}

// NormalizeFilename recovers the name the client meant to send and applies NFKC.
// RFC 2047 encoded words are decoded and UTF-8 that was carried one byte per rune is repaired.
func NormalizeFilename(raw string) string {
	name := raw
	if strings.Contains(name, "=?") {
		if decoded, err := wordDecoder.DecodeHeader(name); err == nil {
			name = decoded
		}
	}

	name = repairLatin1(name)
	return norm.NFKC.String(strings.TrimSpace(name))
}

// repairLatin1 reinterprets a string whose runes are all single bytes as UTF-8.
// Names that are not mangled are returned untouched.
func repairLatin1(name string) string {
	highBytes := false
	for _, r := range name {
		if r > 0xFF {
			return name
		}
		if r >= 0x80 {
			highBytes = true
		}
	}
	if !highBytes {
		return name
	}

	raw, err := charmap.ISO8859_1.NewEncoder().String(name)
	if err != nil || !utf8.ValidString(raw) {
		return name
	}
	return raw
}

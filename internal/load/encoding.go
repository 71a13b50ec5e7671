package load

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// decodeText converts raw export bytes to a UTF-8 string, trying each
// candidate encoding in order. Platform exports arrive in a handful of
// encodings depending on the locale of the machine that produced them,
// so detection is a retry list, not a guess.
func decodeText(data []byte, candidates []string) (string, error) {
	// A BOM settles the question regardless of the candidate order.
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return string(data[len(bomUTF8):]), nil
	case bytes.HasPrefix(data, bomUTF16LE), bytes.HasPrefix(data, bomUTF16BE):
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		out, err := dec.Bytes(data)
		if err != nil {
			return "", fmt.Errorf("decode utf-16: %w", err)
		}
		return string(out), nil
	}

	for _, name := range candidates {
		switch name {
		case "utf-8", "utf8":
			if utf8.Valid(data) {
				return string(data), nil
			}
		case "utf-16", "utf16":
			// Without a BOM there is nothing to detect; handled above.
		case "windows-1252", "cp1252":
			return decodeWith(charmap.Windows1252.NewDecoder(), data)
		case "latin-1", "iso-8859-1":
			return decodeWith(charmap.ISO8859_1.NewDecoder(), data)
		default:
			return "", fmt.Errorf("unknown encoding candidate %q", name)
		}
	}
	return "", fmt.Errorf("no candidate encoding accepted the input")
}

func decodeWith(dec *encoding.Decoder, data []byte) (string, error) {
	out, err := dec.Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	return string(out), nil
}

// Package charset converts feed bytes to UTF-8. 1C exports arrive either
// as UTF-8 or as windows-1251, depending on which workstation produced
// the file, and the XML declaration is not always present or truthful.
package charset

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Encoding represents a text encoding
type Encoding string

const (
	EncodingUTF8        Encoding = "utf-8"
	EncodingWindows1251 Encoding = "windows-1251"
	EncodingKOI8R       Encoding = "koi8-r"
)

var declRe = regexp.MustCompile(`<\?xml[^?]*encoding=["']([^"']+)["']`)

// DetectEncoding picks the encoding of a feed document. The XML
// declaration is consulted first; otherwise anything that is not valid
// UTF-8 is assumed to be windows-1251.
func DetectEncoding(data []byte) Encoding {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return EncodingUTF8
	}

	head := data
	if len(head) > 200 {
		head = head[:200]
	}
	if m := declRe.FindSubmatch(head); len(m) > 1 {
		switch strings.ToLower(string(m[1])) {
		case "windows-1251", "cp1251":
			return EncodingWindows1251
		case "koi8-r":
			return EncodingKOI8R
		case "utf-8", "utf8":
			return EncodingUTF8
		}
	}

	if utf8.Valid(data) {
		return EncodingUTF8
	}
	return EncodingWindows1251
}

// Decode converts a byte buffer from the given encoding to a UTF-8 string.
// A buffer that already validates as UTF-8 is passed through untouched, so
// a wrong declaration cannot cause a double decode.
func Decode(data []byte, enc Encoding) (string, error) {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		data = data[3:]
	}

	switch enc {
	case EncodingWindows1251:
		if utf8.Valid(data) {
			return string(data), nil
		}
		return charmap.Windows1251.NewDecoder().String(string(data))
	case EncodingKOI8R:
		if utf8.Valid(data) {
			return string(data), nil
		}
		return charmap.KOI8R.NewDecoder().String(string(data))
	default:
		if utf8.Valid(data) {
			return string(data), nil
		}
		// declared UTF-8 but invalid bytes: fall back to windows-1251
		return charmap.Windows1251.NewDecoder().String(string(data))
	}
}

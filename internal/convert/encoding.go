package convert

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
)

// decodeText converts raw bytes to a string, detecting the encoding
// heuristically instead of assuming UTF-8.
func decodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	if e, _, _ := charset.DetermineEncoding(data, ""); e != nil {
		if decoded, err := e.NewDecoder().Bytes(data); err == nil && utf8.Valid(decoded) {
			return string(decoded)
		}
	}
	return strings.ToValidUTF8(string(data), "�")
}

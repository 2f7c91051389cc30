// Package encoding maps text encoding names to decoders for model source files.
// Exporters on Japanese and Korean systems often write OBJ and MTL files in
// the local code page rather than UTF-8.
package encoding

import (
	"fmt"
	"strings"

	textenc "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var encodings = map[string]textenc.Encoding{
	"shift_jis":    japanese.ShiftJIS,
	"sjis":         japanese.ShiftJIS,
	"cp932":        japanese.ShiftJIS,
	"euc-jp":       japanese.EUCJP,
	"euc-kr":       korean.EUCKR,
	"cp949":        korean.EUCKR,
	"windows-1252": charmap.Windows1252,
	"iso-8859-1":   charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
	"utf-16le":     unicode.UTF16(unicode.LittleEndian, unicode.UseBOM),
	"utf-16be":     unicode.UTF16(unicode.BigEndian, unicode.UseBOM),
}

// Lookup returns the encoding registered under name.
// An empty name or "utf-8" returns nil, meaning no transcoding.
func Lookup(name string) (textenc.Encoding, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case "", "utf-8", "utf8":
		return nil, nil
	}

	enc, ok := encodings[key]
	if !ok {
		return nil, fmt.Errorf("unknown text encoding %q", name)
	}
	return enc, nil
}

// ToUTF8 converts encoded bytes to a UTF-8 string.
// Returns the original bytes as a string if conversion fails or enc is nil.
func ToUTF8(enc textenc.Encoding, data []byte) string {
	if enc == nil {
		return string(data)
	}
	result, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(result)
}

// NormalizePath converts Windows separators so material texture paths
// resolve on every platform.
func NormalizePath(path string) string {
	return strings.ReplaceAll(path, "\\", "/")
}

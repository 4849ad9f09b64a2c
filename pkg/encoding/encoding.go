// Package encoding converts text written by legacy content tools to and
// from UTF-8.
package encoding

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// ErrUnknownEncoding is returned for encoding names Lookup does not know.
var ErrUnknownEncoding = errors.New("unknown text encoding")

// Code page spellings common in tool settings that the WHATWG label list
// does not carry.
var aliases = map[string]string{
	"utf8":      "utf-8",
	"cp949":     "euc-kr",
	"uhc":       "euc-kr",
	"shift-jis": "shift_jis",
	"cp932":     "shift_jis",
	"cp1252":    "windows-1252",
	"cp936":     "gbk",
}

// Lookup returns the encoding for a name such as "euc-kr", "shift-jis",
// "windows-1252" or "utf-8". Names are case-insensitive; the empty name
// means UTF-8.
func Lookup(name string) (encoding.Encoding, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = "utf-8"
	}
	if a, ok := aliases[key]; ok {
		key = a
	}
	enc, err := htmlindex.Get(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	return enc, nil
}

// IsUTF8 reports whether name selects UTF-8, in which case no
// conversion is needed.
func IsUTF8(name string) bool {
	enc, err := Lookup(name)
	if err != nil {
		return false
	}
	n, _ := htmlindex.Name(enc)
	return n == "utf-8"
}

// ToUTF8 converts data from the named encoding to UTF-8. UTF-8 input is
// validated rather than converted.
func ToUTF8(data []byte, name string) ([]byte, error) {
	if IsUTF8(name) {
		if !utf8.Valid(data) {
			return nil, fmt.Errorf("converting from %s: invalid UTF-8", name)
		}
		return data, nil
	}
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return nil, fmt.Errorf("converting from %s: %w", name, err)
	}
	return out, nil
}

// FromUTF8 converts s to the named encoding. Characters the encoding
// cannot represent are an error.
func FromUTF8(s, name string) ([]byte, error) {
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	out, _, err := transform.Bytes(enc.NewEncoder(), []byte(s))
	if err != nil {
		return nil, fmt.Errorf("converting to %s: %w", name, err)
	}
	return out, nil
}

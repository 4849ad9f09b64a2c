package rmdl

import (
	"bytes"
	"unicode/utf8"
)

// StringRef locates one packed string. Len includes the NUL terminator.
type StringRef struct {
	Pos int
	Len int
}

// StringTable plans the packed string region: every string is stored as
// its UTF-8 bytes followed by a single NUL, back to back.
type StringTable struct {
	start int
	end   int
}

// NewStringTable starts a string region at the given absolute position.
func NewStringTable(start int) *StringTable {
	return &StringTable{start: start, end: start}
}

// Add reserves room for a string of n bytes (terminator excluded).
func (t *StringTable) Add(n int) StringRef {
	ref := StringRef{Pos: t.end, Len: n + 1}
	t.end += ref.Len
	return ref
}

func (t *StringTable) Start() int { return t.start }
func (t *StringTable) End() int   { return t.end }
func (t *StringTable) Size() int  { return t.end - t.start }

// validName reports whether s can be stored as a NUL-terminated UTF-8 string.
func validName(s string) bool {
	return utf8.ValidString(s) && !bytes.Contains([]byte(s), []byte{0})
}

// sliceString extracts the string stored at [pos, pos+n). The last byte
// must be NUL and the rest valid UTF-8.
func sliceString(data []byte, pos int, n uint32) (string, error) {
	if n == 0 {
		return "", ErrBadString
	}
	if pos < 0 || pos > len(data) || uint64(n) > uint64(len(data)-pos) {
		return "", ErrBadOffset
	}
	raw := data[pos : pos+int(n)]
	if raw[len(raw)-1] != 0 {
		return "", ErrBadString
	}
	raw = raw[:len(raw)-1]
	if !utf8.Valid(raw) {
		return "", ErrBadString
	}
	return string(raw), nil
}

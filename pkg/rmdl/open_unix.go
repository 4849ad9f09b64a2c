//go:build unix

package rmdl

import (
	"encoding/binary"
	"os"

	"golang.org/x/sys/unix"
)

// Open maps a model file read-only, decodes it and releases the mapping.
// The decoded model owns its memory. If mmap is unavailable it falls back
// to reading the file. A nil order is detected as in ReadFile.
func Open(path string, order binary.ByteOrder) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size64 := stat.Size()
	if size64 < HeaderSize || size64 > maxFileSize {
		// Too small to map usefully, or too large to be valid: let the
		// plain reader report it.
		return ReadFile(path, order)
	}

	// Prefer mmap to avoid copying the whole file before decoding.
	data, err := unix.Mmap(int(f.Fd()), 0, int(size64), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return ReadFile(path, order)
	}
	defer func() { _ = unix.Munmap(data) }()

	if isZstd(data) {
		return ReadFile(path, order)
	}
	if order == nil {
		order = ByteOrderFromFileName(path)
	}
	if order == nil {
		m, _, err := DecodeAuto(data)
		return m, err
	}
	return Decode(data, order)
}

package rmdl

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Ext is the container file extension.
const Ext = ".rmdl"

// ZstdExt is appended to the name of zstd-wrapped containers.
const ZstdExt = ".zst"

var (
	ErrUnknownByteOrder = errors.New("unknown byte order")
	ErrNoByteOrder      = errors.New("cannot detect rmdl byte order")
)

// ByteOrderFromName maps "le", "little", "be" or "big" to a byte order.
func ByteOrderFromName(name string) (binary.ByteOrder, error) {
	switch strings.ToLower(name) {
	case "le", "little", "little-endian":
		return binary.LittleEndian, nil
	case "be", "big", "big-endian":
		return binary.BigEndian, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownByteOrder, name)
}

// ByteOrderName returns "LE" or "BE".
func ByteOrderName(order binary.ByteOrder) string {
	if order == binary.BigEndian {
		return "BE"
	}
	return "LE"
}

// FileName returns the runtime's file name for a model: <base>_LE.rmdl or
// <base>_BE.rmdl. A nil order gives the plain <base>.rmdl.
func FileName(base string, order binary.ByteOrder) string {
	if order == nil {
		return base + Ext
	}
	return base + "_" + ByteOrderName(order) + Ext
}

// ByteOrderFromFileName reads the byte order suffix of a model file name.
// It returns nil when the name carries no suffix.
func ByteOrderFromFileName(path string) binary.ByteOrder {
	name := strings.TrimSuffix(filepath.Base(path), ZstdExt)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	switch {
	case strings.HasSuffix(name, "_LE"):
		return binary.LittleEndian
	case strings.HasSuffix(name, "_BE"):
		return binary.BigEndian
	}
	return nil
}

// DetectByteOrder picks the byte order whose reading of the version field
// is a supported version.
func DetectByteOrder(data []byte) (binary.ByteOrder, error) {
	if len(data) < HeaderSize {
		return nil, formatErr(recHeader, -1, "", len(data), ErrTruncated)
	}
	if string(data[:len(Magic)]) != Magic {
		return nil, formatErr(recHeader, -1, "magic", 0, ErrInvalidMagic)
	}
	for _, order := range []binary.ByteOrder{binary.BigEndian, binary.LittleEndian} {
		v := order.Uint32(data[headerVersionPos:])
		if v >= VersionMin && v <= VersionCurrent {
			return order, nil
		}
	}
	return nil, ErrNoByteOrder
}

// DecodeAuto decodes data after detecting its byte order.
func DecodeAuto(data []byte) (*Model, binary.ByteOrder, error) {
	order, err := DetectByteOrder(data)
	if err != nil {
		return nil, nil, err
	}
	m, err := Decode(data, order)
	if err != nil {
		return nil, nil, err
	}
	return m, order, nil
}

// ReadFile loads and decodes a model file. A nil order is taken from the
// file name suffix, then from the header.
func ReadFile(path string, order binary.ByteOrder) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model file: %w", err)
	}
	data, err = MaybeDecompress(data)
	if err != nil {
		return nil, fmt.Errorf("decompressing %s: %w", path, err)
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

// WriteFile encodes a model and writes it to path. Paths ending in
// ZstdExt are written zstd-wrapped.
func WriteFile(path string, m *Model, order binary.ByteOrder) error {
	data, err := Encode(m, order)
	if err != nil {
		return err
	}
	if strings.HasSuffix(path, ZstdExt) {
		if data, err = CompressZstd(data); err != nil {
			return fmt.Errorf("compressing model file: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing model file: %w", err)
	}
	return nil
}

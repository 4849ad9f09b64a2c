package rmdl

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// zstdMagic starts every zstd frame.
var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

func isZstd(data []byte) bool {
	return bytes.HasPrefix(data, zstdMagic)
}

// CompressZstd wraps an encoded container in a zstd frame for distribution.
// The runtime only loads raw containers; tools unwrap with MaybeDecompress.
func CompressZstd(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
}

// MaybeDecompress returns data unchanged unless it is a zstd frame, in
// which case it returns the decompressed container.
func MaybeDecompress(data []byte) ([]byte, error) {
	if !isZstd(data) {
		return data, nil
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxFileSize))
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd: %w", err)
	}
	return out, nil
}

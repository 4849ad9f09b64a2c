// Package rtx reads and writes rio texture containers (.rtx).
//
// An rtx file is a flat 0x80-byte header followed by the level 0 image
// bytes and then the bytes of all remaining mip levels. The surface data is
// stored linear (untiled) in the GPU format named by the header.
package rtx

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

// RTX format errors.
var (
	ErrInvalidMagic       = errors.New("invalid rtx magic")
	ErrUnsupportedVersion = errors.New("unsupported rtx version")
	ErrTruncated          = errors.New("truncated rtx data")
	ErrBadRange           = errors.New("rtx data range out of bounds")
	ErrUnsupportedFormat  = errors.New("unsupported texture format")
	ErrMipLevels          = errors.New("invalid mip level count")
)

const (
	Magic   uint32 = 0x5101382D
	Version uint32 = 0x01000000

	HeaderSize = 0x80

	// MaxMipLevels is the number of entries in the mip offset table.
	MaxMipLevels = 13
)

// Header is the fixed header of an rtx file. Offsets are absolute.
type Header struct {
	Width            uint32
	Height           uint32
	MipLevels        uint32
	Format           Format
	GLInternalFormat uint32
	GLFormat         uint32
	GLType           uint32
	ImageSize        uint32
	ImageOffset      uint32
	MipmapSize       uint32
	MipmapsOffset    uint32
	// MipLevelOffset[i] is the offset of level i+1 relative to the start of
	// the mip data. Entry 0 is always zero.
	MipLevelOffset [MaxMipLevels]uint32
	_              [16]byte
	CompMap        uint32
	Magic          uint32
	Version        uint32
	_              [4]byte
}

// Texture is a decoded rtx file.
type Texture struct {
	Header Header
	Image  []byte
	Mips   []byte
}

// Decode parses an rtx file in the given byte order. Image and Mips alias
// data.
func Decode(data []byte, order binary.ByteOrder) (*Texture, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTruncated, len(data))
	}

	var h Header
	if err := binary.Read(bytes.NewReader(data[:HeaderSize]), order, &h); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if h.Magic != Magic {
		return nil, fmt.Errorf("%w: 0x%08x", ErrInvalidMagic, h.Magic)
	}
	if h.Version != Version {
		return nil, fmt.Errorf("%w: 0x%08x", ErrUnsupportedVersion, h.Version)
	}
	if h.MipLevels == 0 || h.MipLevels > MaxMipLevels {
		return nil, fmt.Errorf("%w: %d", ErrMipLevels, h.MipLevels)
	}

	tex := &Texture{Header: h}
	var err error
	if tex.Image, err = slice(data, h.ImageOffset, h.ImageSize); err != nil {
		return nil, fmt.Errorf("image: %w", err)
	}
	if h.MipLevels > 1 {
		if tex.Mips, err = slice(data, h.MipmapsOffset, h.MipmapSize); err != nil {
			return nil, fmt.Errorf("mipmaps: %w", err)
		}
	}
	return tex, nil
}

func slice(data []byte, off, size uint32) ([]byte, error) {
	end := uint64(off) + uint64(size)
	if uint64(off) < HeaderSize || end > uint64(len(data)) {
		return nil, fmt.Errorf("%w: [0x%x, 0x%x) in %d bytes", ErrBadRange, off, end, len(data))
	}
	return data[off:end], nil
}

// Encode serializes a texture. Sizes and offsets in the header are
// recomputed from Image and Mips; magic and version are always current.
func Encode(t *Texture, order binary.ByteOrder) ([]byte, error) {
	h := t.Header
	if h.MipLevels == 0 || h.MipLevels > MaxMipLevels {
		return nil, fmt.Errorf("%w: %d", ErrMipLevels, h.MipLevels)
	}
	h.Magic = Magic
	h.Version = Version
	h.ImageOffset = HeaderSize
	h.ImageSize = uint32(len(t.Image))
	h.MipmapSize = uint32(len(t.Mips))
	if h.MipLevels > 1 {
		h.MipmapsOffset = HeaderSize + h.ImageSize
		h.MipLevelOffset[0] = 0
	} else {
		h.MipmapsOffset = 0
		h.MipmapSize = 0
		h.MipLevelOffset = [MaxMipLevels]uint32{}
	}

	var buf bytes.Buffer
	buf.Grow(HeaderSize + len(t.Image) + int(h.MipmapSize))
	if err := binary.Write(&buf, order, &h); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}
	buf.Write(t.Image)
	if h.MipLevels > 1 {
		buf.Write(t.Mips)
	}
	return buf.Bytes(), nil
}

// ParseFile reads a little endian rtx file from disk.
func ParseFile(path string) (*Texture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rtx file: %w", err)
	}
	return Decode(data, binary.LittleEndian)
}

// WriteFile encodes t little endian and writes it to path.
func WriteFile(path string, t *Texture) error {
	data, err := Encode(t, binary.LittleEndian)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

package rtx

import (
	"errors"
	"fmt"
)

// ErrTiled is returned by LinearCodec for surfaces that need real untiling.
var ErrTiled = errors.New("surface is tiled")

// Tile modes of a GPU surface.
const (
	TileModeDefault       uint32 = 0x00
	TileModeLinearAligned uint32 = 0x01
	TileModeLinearSpecial uint32 = 0x10
)

// TiledSurface is a surface as the GPU lays it out. MipOffsets follows the
// GPU convention: entry 0 is the offset of the mip data from the image
// start (the image size), later entries are relative to the mip data.
type TiledSurface struct {
	Width      uint32
	Height     uint32
	MipLevels  uint32
	Format     Format
	TileMode   uint32
	Swizzle    uint32
	Pitch      uint32
	CompMap    uint32
	Image      []byte
	Mips       []byte
	MipOffsets [MaxMipLevels]uint32
}

// LinearSurface is an untiled surface. MipOffsets uses the same convention
// as TiledSurface.
type LinearSurface struct {
	Width      uint32
	Height     uint32
	MipLevels  uint32
	Format     Format
	CompMap    uint32
	Image      []byte
	Mips       []byte
	MipOffsets [MaxMipLevels]uint32
}

// SurfaceCodec converts between GPU tiled and linear surfaces.
type SurfaceCodec interface {
	Untile(s TiledSurface) (LinearSurface, error)
	Tile(s LinearSurface) (TiledSurface, error)
}

// LinearCodec handles surfaces that are already linear. Tiled surfaces are
// rejected with ErrTiled.
type LinearCodec struct{}

func (LinearCodec) Untile(s TiledSurface) (LinearSurface, error) {
	if s.TileMode != TileModeLinearSpecial && s.TileMode != TileModeLinearAligned {
		return LinearSurface{}, fmt.Errorf("%w: tile mode 0x%x", ErrTiled, s.TileMode)
	}
	return LinearSurface{
		Width:      s.Width,
		Height:     s.Height,
		MipLevels:  s.MipLevels,
		Format:     s.Format,
		CompMap:    s.CompMap,
		Image:      s.Image,
		Mips:       s.Mips,
		MipOffsets: s.MipOffsets,
	}, nil
}

func (LinearCodec) Tile(s LinearSurface) (TiledSurface, error) {
	return TiledSurface{
		Width:      s.Width,
		Height:     s.Height,
		MipLevels:  s.MipLevels,
		Format:     s.Format,
		TileMode:   TileModeLinearSpecial,
		Pitch:      s.Width,
		CompMap:    s.CompMap,
		Image:      s.Image,
		Mips:       s.Mips,
		MipOffsets: s.MipOffsets,
	}, nil
}

// FromLinearSurface builds an rtx texture from a linear surface. The mip
// offset table is rebased so that level offsets are relative to the mip
// data.
func FromLinearSurface(s LinearSurface) (*Texture, error) {
	gl, err := s.Format.GL()
	if err != nil {
		return nil, err
	}

	h := Header{
		Width:            s.Width,
		Height:           s.Height,
		MipLevels:        max(s.MipLevels, 1),
		Format:           s.Format,
		GLInternalFormat: gl.InternalFormat,
		GLFormat:         gl.Format,
		GLType:           gl.Type,
		CompMap:          s.CompMap,
	}
	if h.MipLevels > MaxMipLevels {
		return nil, fmt.Errorf("%w: %d", ErrMipLevels, h.MipLevels)
	}

	t := &Texture{Image: s.Image}
	if h.MipLevels > 1 {
		if int(s.MipOffsets[0]) != len(s.Image) {
			return nil, fmt.Errorf("%w: first mip offset 0x%x, image size 0x%x",
				ErrBadRange, s.MipOffsets[0], len(s.Image))
		}
		h.MipLevelOffset = s.MipOffsets
		h.MipLevelOffset[0] = 0
		t.Mips = s.Mips
	}

	// Fill in sizes and offsets the way Encode writes them.
	h.ImageOffset = HeaderSize
	h.ImageSize = uint32(len(t.Image))
	if h.MipLevels > 1 {
		h.MipmapSize = uint32(len(t.Mips))
		h.MipmapsOffset = HeaderSize + h.ImageSize
	}
	h.Magic = Magic
	h.Version = Version
	t.Header = h
	return t, nil
}

// LinearSurface returns the surface stored in t, with the mip offset table
// in GPU convention.
func (t *Texture) LinearSurface() LinearSurface {
	s := LinearSurface{
		Width:     t.Header.Width,
		Height:    t.Header.Height,
		MipLevels: t.Header.MipLevels,
		Format:    t.Header.Format,
		CompMap:   t.Header.CompMap,
		Image:     t.Image,
	}
	if t.Header.MipLevels > 1 {
		s.Mips = t.Mips
		s.MipOffsets = t.Header.MipLevelOffset
		s.MipOffsets[0] = uint32(len(t.Image))
	}
	return s
}

// Convert untiles s with codec and builds an rtx texture.
func Convert(codec SurfaceCodec, s TiledSurface) (*Texture, error) {
	lin, err := codec.Untile(s)
	if err != nil {
		return nil, fmt.Errorf("untiling surface: %w", err)
	}
	return FromLinearSurface(lin)
}

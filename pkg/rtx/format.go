package rtx

import (
	"fmt"
	"slices"
)

// Format is a GPU surface format.
type Format uint32

const (
	FormatR8Unorm          Format = 0x001
	FormatR8Uint           Format = 0x101
	FormatR8Snorm          Format = 0x201
	FormatR8Sint           Format = 0x301
	FormatR4G4Unorm        Format = 0x002
	FormatR8G8Unorm        Format = 0x007
	FormatR8G8Uint         Format = 0x107
	FormatR8G8Snorm        Format = 0x207
	FormatR8G8Sint         Format = 0x307
	FormatR5G6B5Unorm      Format = 0x008
	FormatR5G5B5A1Unorm    Format = 0x00A
	FormatR4G4B4A4Unorm    Format = 0x00B
	FormatR8G8B8A8Unorm    Format = 0x01A
	FormatR8G8B8A8Uint     Format = 0x11A
	FormatR8G8B8A8Snorm    Format = 0x21A
	FormatR8G8B8A8Sint     Format = 0x31A
	FormatR8G8B8A8SRGB     Format = 0x41A
	FormatR10G10B10A2Unorm Format = 0x019
	FormatR10G10B10A2Uint  Format = 0x119
	FormatR10G10B10A2Snorm Format = 0x219
	FormatR10G10B10A2Sint  Format = 0x319
	FormatBC1Unorm         Format = 0x031
	FormatBC1SRGB          Format = 0x431
	FormatBC2Unorm         Format = 0x032
	FormatBC2SRGB          Format = 0x432
	FormatBC3Unorm         Format = 0x033
	FormatBC3SRGB          Format = 0x433
	FormatBC4Unorm         Format = 0x034
	FormatBC4Snorm         Format = 0x234
	FormatBC5Unorm         Format = 0x035
	FormatBC5Snorm         Format = 0x235
)

// GLFormat is the OpenGL upload triple for a surface format. Block
// compressed formats have zero Format and Type.
type GLFormat struct {
	InternalFormat uint32
	Format         uint32
	Type           uint32
}

type formatInfo struct {
	name string
	gl   GLFormat
	// bytes per pixel, or per 4x4 block when compressed
	bpp        int
	compressed bool
}

// formats lists the formats the runtime can upload.
var formats = map[Format]formatInfo{
	FormatR8Unorm:          {"R8_UNORM", GLFormat{0x8229, 0x1903, 0x1401}, 1, false},
	FormatR8Uint:           {"R8_UINT", GLFormat{0x8232, 0x8D94, 0x1401}, 1, false},
	FormatR8Snorm:          {"R8_SNORM", GLFormat{0x8F94, 0x1903, 0x1400}, 1, false},
	FormatR8Sint:           {"R8_SINT", GLFormat{0x8231, 0x8D94, 0x1400}, 1, false},
	FormatR8G8Unorm:        {"R8_G8_UNORM", GLFormat{0x822B, 0x8227, 0x1401}, 2, false},
	FormatR8G8Uint:         {"R8_G8_UINT", GLFormat{0x8238, 0x8228, 0x1401}, 2, false},
	FormatR8G8Snorm:        {"R8_G8_SNORM", GLFormat{0x8F95, 0x8227, 0x1400}, 2, false},
	FormatR8G8Sint:         {"R8_G8_SINT", GLFormat{0x8237, 0x8228, 0x1400}, 2, false},
	FormatR5G6B5Unorm:      {"R5_G6_B5_UNORM", GLFormat{0x8D62, 0x1907, 0x8363}, 2, false},
	FormatR5G5B5A1Unorm:    {"R5_G5_B5_A1_UNORM", GLFormat{0x8057, 0x1908, 0x8034}, 2, false},
	FormatR4G4B4A4Unorm:    {"R4_G4_B4_A4_UNORM", GLFormat{0x8056, 0x1908, 0x8033}, 2, false},
	FormatR8G8B8A8Unorm:    {"R8_G8_B8_A8_UNORM", GLFormat{0x8058, 0x1908, 0x1401}, 4, false},
	FormatR8G8B8A8Uint:     {"R8_G8_B8_A8_UINT", GLFormat{0x8D7C, 0x8D99, 0x1401}, 4, false},
	FormatR8G8B8A8Snorm:    {"R8_G8_B8_A8_SNORM", GLFormat{0x8F97, 0x1908, 0x1400}, 4, false},
	FormatR8G8B8A8Sint:     {"R8_G8_B8_A8_SINT", GLFormat{0x8D8E, 0x8D99, 0x1400}, 4, false},
	FormatR8G8B8A8SRGB:     {"R8_G8_B8_A8_SRGB", GLFormat{0x8C43, 0x1908, 0x1401}, 4, false},
	FormatR10G10B10A2Unorm: {"R10_G10_B10_A2_UNORM", GLFormat{0x8059, 0x1908, 0x8368}, 4, false},
	FormatR10G10B10A2Uint:  {"R10_G10_B10_A2_UINT", GLFormat{0x906F, 0x8D99, 0x8368}, 4, false},
	FormatBC1Unorm:         {"BC1_UNORM", GLFormat{0x83F1, 0, 0}, 8, true},
	FormatBC1SRGB:          {"BC1_SRGB", GLFormat{0x8C4D, 0, 0}, 8, true},
	FormatBC2Unorm:         {"BC2_UNORM", GLFormat{0x83F2, 0, 0}, 16, true},
	FormatBC2SRGB:          {"BC2_SRGB", GLFormat{0x8C4E, 0, 0}, 16, true},
	FormatBC3Unorm:         {"BC3_UNORM", GLFormat{0x83F3, 0, 0}, 16, true},
	FormatBC3SRGB:          {"BC3_SRGB", GLFormat{0x8C4F, 0, 0}, 16, true},
	FormatBC4Unorm:         {"BC4_UNORM", GLFormat{0x8DBB, 0, 0}, 8, true},
	FormatBC4Snorm:         {"BC4_SNORM", GLFormat{0x8DBC, 0, 0}, 8, true},
	FormatBC5Unorm:         {"BC5_UNORM", GLFormat{0x8DBD, 0, 0}, 16, true},
	FormatBC5Snorm:         {"BC5_SNORM", GLFormat{0x8DBE, 0, 0}, 16, true},
}

// Known but not uploadable.
var unsupportedNames = map[Format]string{
	FormatR4G4Unorm:        "R4_G4_UNORM",
	FormatR10G10B10A2Snorm: "R10_G10_B10_A2_SNORM",
	FormatR10G10B10A2Sint:  "R10_G10_B10_A2_SINT",
}

// String returns the format name.
func (f Format) String() string {
	if info, ok := formats[f]; ok {
		return info.name
	}
	if name, ok := unsupportedNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(0x%03x)", uint32(f))
}

// Supported reports whether the runtime can upload f.
func (f Format) Supported() bool {
	_, ok := formats[f]
	return ok
}

// Compressed reports whether f is block compressed.
func (f Format) Compressed() bool {
	return formats[f].compressed
}

// GL returns the OpenGL upload triple for f.
func (f Format) GL() (GLFormat, error) {
	info, ok := formats[f]
	if !ok {
		return GLFormat{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}
	return info.gl, nil
}

// SurfaceSize returns the byte size of one linear level of w x h pixels.
func (f Format) SurfaceSize(w, h uint32) (int, error) {
	info, ok := formats[f]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}
	if info.compressed {
		bw := (int(w) + 3) / 4
		bh := (int(h) + 3) / 4
		return bw * bh * info.bpp, nil
	}
	return int(w) * int(h) * info.bpp, nil
}

// SupportedFormats returns every uploadable format.
func SupportedFormats() []Format {
	out := make([]Format, 0, len(formats))
	for f := range formats {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

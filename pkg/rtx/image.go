package rtx

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// ErrImageFormat is returned for image files that cannot be decoded.
var ErrImageFormat = errors.New("unknown image format")

// DecodeImage decodes a png, jpeg, gif, bmp or tiff image and returns it
// with the detected format name.
func DecodeImage(r io.Reader) (image.Image, string, error) {
	br := bufio.NewReader(r)
	header, _ := br.Peek(8)

	var (
		img    image.Image
		format string
		err    error
	)
	switch {
	case len(header) >= 8 && string(header[:8]) == "\x89PNG\r\n\x1a\n":
		format = "png"
		img, err = png.Decode(br)
	case len(header) >= 3 && header[0] == 0xFF && header[1] == 0xD8 && header[2] == 0xFF:
		format = "jpeg"
		img, err = jpeg.Decode(br)
	case len(header) >= 6 && (string(header[:6]) == "GIF87a" || string(header[:6]) == "GIF89a"):
		format = "gif"
		img, err = gif.Decode(br)
	case len(header) >= 2 && string(header[:2]) == "BM":
		format = "bmp"
		img, err = bmp.Decode(br)
	case len(header) >= 4 && (string(header[:4]) == "II*\x00" || string(header[:4]) == "MM\x00*"):
		format = "tiff"
		img, err = tiff.Decode(br)
	default:
		return nil, "", ErrImageFormat
	}
	if err != nil {
		return nil, format, fmt.Errorf("decoding %s: %w", format, err)
	}
	return img, format, nil
}

// DecodeImageFile opens and decodes an image file.
func DecodeImageFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := DecodeImage(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// FromImage builds a single level R8_G8_B8_A8_UNORM texture from img.
// Pixels are stored unpremultiplied, top row first.
func FromImage(img image.Image) *Texture {
	b := img.Bounds()
	nrgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)

	pix := make([]byte, 0, b.Dx()*b.Dy()*4)
	for y := 0; y < b.Dy(); y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+b.Dx()*4]
		pix = append(pix, row...)
	}

	t, _ := FromLinearSurface(LinearSurface{
		Width:     uint32(b.Dx()),
		Height:    uint32(b.Dy()),
		MipLevels: 1,
		Format:    FormatR8G8B8A8Unorm,
		CompMap:   CompMapRGBA,
		Image:     pix,
	})
	return t
}

// CompMapRGBA selects R, G, B, A from channels 0..3.
const CompMapRGBA uint32 = 0x00010203

// ToImage converts level 0 of an uncompressed 8-bit texture to an image.
func ToImage(t *Texture) (image.Image, error) {
	w, h := int(t.Header.Width), int(t.Header.Height)
	size, err := t.Header.Format.SurfaceSize(t.Header.Width, t.Header.Height)
	if err != nil {
		return nil, err
	}
	if len(t.Image) < size {
		return nil, fmt.Errorf("%w: image has %d bytes, need %d", ErrBadRange, len(t.Image), size)
	}

	switch t.Header.Format {
	case FormatR8G8B8A8Unorm, FormatR8G8B8A8SRGB:
		img := image.NewNRGBA(image.Rect(0, 0, w, h))
		copy(img.Pix, t.Image[:size])
		return img, nil
	case FormatR8Unorm:
		img := image.NewGray(image.Rect(0, 0, w, h))
		copy(img.Pix, t.Image[:size])
		return img, nil
	case FormatR8G8Unorm:
		img := image.NewNRGBA(image.Rect(0, 0, w, h))
		for i := 0; i < w*h; i++ {
			img.Pix[i*4+0] = t.Image[i*2]
			img.Pix[i*4+1] = t.Image[i*2+1]
			img.Pix[i*4+3] = 0xFF
		}
		return img, nil
	}
	return nil, fmt.Errorf("%w: cannot convert %s to an image", ErrUnsupportedFormat, t.Header.Format)
}

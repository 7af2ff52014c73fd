package loader

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/Carmen-Shannon/oxy-widget/engine/renderer/texture"
)

// DecodeImage decodes a PNG, JPEG, BMP or WebP image into straight-alpha NRGBA.
//
// Parameters:
//   - data: the encoded image
//
// Returns:
//   - *image.NRGBA: the decoded image with its origin at (0, 0)
//   - error: an error if the format is unknown or the data is corrupt
func DecodeImage(data []byte) (*image.NRGBA, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if nrgba, ok := src.(*image.NRGBA); ok && nrgba.Rect.Min == (image.Point{}) {
		return nrgba, nil
	}

	bounds := src.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("empty %s image", format)
	}
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Rect, src, bounds.Min, draw.Src)
	return dst, nil
}

// MergeAlphaMask copies the red channel of mask into the alpha channel of base over the pixels
// both images cover.
//
// Parameters:
//   - base: the image receiving the alpha
//   - mask: the grayscale mask
func MergeAlphaMask(base, mask *image.NRGBA) {
	w := min(base.Rect.Dx(), mask.Rect.Dx())
	h := min(base.Rect.Dy(), mask.Rect.Dy())
	for y := range h {
		brow := base.Pix[y*base.Stride:]
		mrow := mask.Pix[y*mask.Stride:]
		for x := range w {
			brow[x*4+3] = mrow[x*4]
		}
	}
}

// Unpremultiply divides the color channels of a premultiplied image by its alpha in place.
func Unpremultiply(img *image.NRGBA) {
	for i := 0; i+3 < len(img.Pix); i += 4 {
		a := uint32(img.Pix[i+3])
		if a == 0 || a == 255 {
			continue
		}
		for c := range 3 {
			img.Pix[i+c] = uint8(min(uint32(img.Pix[i+c])*255/a, 255))
		}
	}
}

// textureImage converts a decoded image into the tightly packed texture image layout.
func textureImage(img *image.NRGBA) *texture.Image {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	pix := img.Pix
	if img.Stride != w*4 {
		pix = make([]byte, 0, w*h*4)
		for y := range h {
			pix = append(pix, img.Pix[y*img.Stride:y*img.Stride+w*4]...)
		}
	}
	return &texture.Image{Pixels: pix, Width: uint32(w), Height: uint32(h)}
}

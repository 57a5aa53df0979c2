// Package texture provides image decoding and texture lookup for material
// base-color textures.
package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	stdmath "math"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/Faultbox/meshpcd/pkg/math"
)

// Load reads and decodes a texture file.
func Load(path string) (*image.NRGBA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading texture: %w", err)
	}
	img, err := Decode(data, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("decoding texture %s: %w", path, err)
	}
	return img, nil
}

// Decode decodes image data. TGA has no magic number, so it is selected by
// the name's extension; every other format is sniffed from the content.
func Decode(data []byte, name string) (*image.NRGBA, error) {
	if strings.EqualFold(filepath.Ext(name), ".tga") {
		return DecodeTGA(data)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return ToNRGBA(img), nil
}

// ToNRGBA converts any image.Image to *image.NRGBA with the origin at (0, 0).
func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Rect, img, b.Min, draw.Src)
	return out
}

// SampleSRGB returns the color at texture coordinate (u, v) using
// closest-pixel lookup with repeat wrapping. v grows upwards, as in OBJ
// texture coordinates. Channels are the stored sRGB values scaled to [0, 1].
func SampleSRGB(img *image.NRGBA, u, v float32) math.Color {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w == 0 || h == 0 {
		return math.Color{}
	}

	x := wrap(int(stdmath.Floor(float64(u)*float64(w))), w)
	y := wrap(int(stdmath.Floor(float64(1-v)*float64(h))), h)
	c := img.NRGBAAt(img.Rect.Min.X+x, img.Rect.Min.Y+y)
	return math.RGBA8(c.R, c.G, c.B, c.A)
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// Solid returns a w x h texture filled with c.
func Solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Rect, &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

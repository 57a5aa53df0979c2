package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// TGA image type constants.
const (
	TGATypeUncompressed = 2  // Uncompressed true-color
	TGATypeRLE          = 10 // RLE compressed true-color
)

// TGA decoding errors.
var (
	ErrTGATruncated   = errors.New("TGA data truncated")
	ErrTGAUnsupported = errors.New("unsupported TGA variant")
)

// DecodeTGA decodes a TGA image file.
// Supports uncompressed true-color (type 2) and RLE compressed (type 10) TGA
// files at 24 or 32 bits per pixel. Alpha is straight, so the result is NRGBA.
func DecodeTGA(data []byte) (*image.NRGBA, error) {
	if len(data) < 18 {
		return nil, ErrTGATruncated
	}

	// TGA header
	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	descriptor := data[17]

	if colorMapType != 0 {
		return nil, fmt.Errorf("%w: color-mapped", ErrTGAUnsupported)
	}
	if imageType != TGATypeUncompressed && imageType != TGATypeRLE {
		return nil, fmt.Errorf("%w: type %d", ErrTGAUnsupported, imageType)
	}
	if bpp != 24 && bpp != 32 {
		return nil, fmt.Errorf("%w: %d bits per pixel", ErrTGAUnsupported, bpp)
	}

	offset := 18 + idLength
	if offset > len(data) {
		return nil, ErrTGATruncated
	}

	d := tgaDecoder{
		img:           image.NewNRGBA(image.Rect(0, 0, width, height)),
		pix:           data[offset:],
		width:         width,
		height:        height,
		bytesPerPixel: bpp / 8,
		// Bit 5 of the descriptor set means rows are stored top to bottom.
		topToBottom: descriptor&0x20 != 0,
	}

	if imageType == TGATypeUncompressed {
		if err := d.decodeRaw(); err != nil {
			return nil, err
		}
	} else {
		d.decodeRLE()
	}

	return d.img, nil
}

type tgaDecoder struct {
	img           *image.NRGBA
	pix           []byte
	width, height int
	bytesPerPixel int
	topToBottom   bool
}

// pixel reads one BGR(A) pixel at offset i.
func (d *tgaDecoder) pixel(i int) color.NRGBA {
	c := color.NRGBA{R: d.pix[i+2], G: d.pix[i+1], B: d.pix[i], A: 255}
	if d.bytesPerPixel == 4 {
		c.A = d.pix[i+3]
	}
	return c
}

// set stores the n-th pixel in file order.
func (d *tgaDecoder) set(n int, c color.NRGBA) {
	x := n % d.width
	y := n / d.width
	if !d.topToBottom {
		y = d.height - 1 - y
	}
	d.img.SetNRGBA(x, y, c)
}

func (d *tgaDecoder) decodeRaw() error {
	count := d.width * d.height
	if len(d.pix) < count*d.bytesPerPixel {
		return ErrTGATruncated
	}
	for n := 0; n < count; n++ {
		d.set(n, d.pixel(n*d.bytesPerPixel))
	}
	return nil
}

// decodeRLE decodes RLE packets. A truncated stream leaves the remaining
// pixels transparent black.
func (d *tgaDecoder) decodeRLE() {
	count := d.width * d.height
	n := 0
	i := 0

	for n < count && i < len(d.pix) {
		packet := d.pix[i]
		i++
		run := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			// RLE packet - repeat single pixel
			if i+d.bytesPerPixel > len(d.pix) {
				return
			}
			c := d.pixel(i)
			i += d.bytesPerPixel
			for k := 0; k < run && n < count; k++ {
				d.set(n, c)
				n++
			}
			continue
		}

		// Raw packet - read run pixels
		for k := 0; k < run && n < count; k++ {
			if i+d.bytesPerPixel > len(d.pix) {
				return
			}
			d.set(n, d.pixel(i))
			i += d.bytesPerPixel
			n++
		}
	}
}

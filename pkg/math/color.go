package math

import "math"

// Color is an RGBA color with float components, nominally in [0, 1].
// Whether it is linear or sRGB-encoded depends on where it came from;
// material colors are linear, sampled point colors are sRGB.
type Color struct {
	R, G, B, A float32
}

// RGBA8 creates a color from 8-bit channel values.
func RGBA8(r, g, b, a uint8) Color {
	return Color{
		R: float32(r) / 255.0,
		G: float32(g) / 255.0,
		B: float32(b) / 255.0,
		A: float32(a) / 255.0,
	}
}

// ToSRGB encodes a linear color with the sRGB transfer function.
// Alpha is not encoded.
func (c Color) ToSRGB() Color {
	return Color{
		R: LinearToSRGB(c.R),
		G: LinearToSRGB(c.G),
		B: LinearToSRGB(c.B),
		A: c.A,
	}
}

// ToLinear decodes an sRGB color to linear. Alpha is unchanged.
func (c Color) ToLinear() Color {
	return Color{
		R: SRGBToLinear(c.R),
		G: SRGBToLinear(c.G),
		B: SRGBToLinear(c.B),
		A: c.A,
	}
}

// Array returns the components in R, G, B, A order.
func (c Color) Array() [4]float32 {
	return [4]float32{c.R, c.G, c.B, c.A}
}

// LinearToSRGB applies the sRGB encoding curve to one channel.
// Inputs outside [0, 1] are clamped so that full intensity stays exactly 1.
func LinearToSRGB(c float32) float32 {
	switch {
	case c <= 0:
		return 0
	case c >= 1:
		return 1
	case c <= 0.0031308:
		return c * 12.92
	}
	return float32(1.055*math.Pow(float64(c), 1/2.4) - 0.055)
}

// SRGBToLinear inverts LinearToSRGB for one channel.
func SRGBToLinear(c float32) float32 {
	switch {
	case c <= 0:
		return 0
	case c >= 1:
		return 1
	case c <= 0.04045:
		return c / 12.92
	}
	return float32(math.Pow((float64(c)+0.055)/1.055, 2.4))
}

// Lerp returns a + (b-a)*t.
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

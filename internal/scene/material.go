package scene

import (
	"image"

	"github.com/Faultbox/meshpcd/pkg/math"
)

// DefaultBaseColor is the base color of materials that do not set one.
var DefaultBaseColor = math.Color{R: 0.8, G: 0.8, B: 0.8, A: 1}

// Image is a decoded texture image.
type Image struct {
	Name   string
	Path   string
	Pixels *image.NRGBA
}

// ImageTexture is a texture node feeding a shader input.
type ImageTexture struct {
	Image *Image
}

// ColorInput is a shader color input: a constant default plus any linked
// texture nodes. Linked inputs ignore Default.
type ColorInput struct {
	Default math.Color // linear
	Links   []*ImageTexture
}

// Linked reports whether a texture feeds the input.
func (c ColorInput) Linked() bool {
	return len(c.Links) > 0
}

// PrincipledBSDF is the surface shader of a material. Only the base color is
// modelled.
type PrincipledBSDF struct {
	BaseColor ColorInput
}

// Material is a named surface description.
type Material struct {
	Name   string
	Shader *PrincipledBSDF
}

// NewMaterial creates a material with an unlinked base color.
func NewMaterial(name string, base math.Color) *Material {
	return &Material{
		Name:   name,
		Shader: &PrincipledBSDF{BaseColor: ColorInput{Default: base}},
	}
}

// NewTexturedMaterial creates a material whose base color is linked to img.
func NewTexturedMaterial(name string, img *Image) *Material {
	m := NewMaterial(name, DefaultBaseColor)
	m.Shader.BaseColor.Links = []*ImageTexture{{Image: img}}
	return m
}

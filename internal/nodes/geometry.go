package nodes

import "github.com/Faultbox/meshpcd/pkg/math"

// Built-in attribute names of evaluated point geometry.
const (
	AttrPosition = "position"
	AttrColor    = "color"
)

// Attribute is a per-point data layer.
type Attribute interface {
	Len() int
}

// Vec3Attribute is a per-point vector layer.
type Vec3Attribute []math.Vec3

// Len returns the number of points.
func (a Vec3Attribute) Len() int { return len(a) }

// ColorAttribute is a per-point color layer holding sRGB-encoded values.
type ColorAttribute []math.Color

// Len returns the number of points.
func (a ColorAttribute) Len() int { return len(a) }

// FloatAttribute is a per-point scalar layer.
type FloatAttribute []float32

// Len returns the number of points.
func (a FloatAttribute) Len() int { return len(a) }

// Geometry is the result of evaluating a modifier: a point set with named
// attributes in creation order.
type Geometry struct {
	names []string
	attrs map[string]Attribute
}

// NewGeometry returns an empty point set.
func NewGeometry() *Geometry {
	return &Geometry{attrs: make(map[string]Attribute)}
}

// Set adds or replaces an attribute.
func (g *Geometry) Set(name string, a Attribute) {
	if _, ok := g.attrs[name]; !ok {
		g.names = append(g.names, name)
	}
	g.attrs[name] = a
}

// Attribute returns the attribute called name.
func (g *Geometry) Attribute(name string) (Attribute, bool) {
	a, ok := g.attrs[name]
	return a, ok
}

// Names returns the attribute names in creation order.
func (g *Geometry) Names() []string {
	out := make([]string, len(g.names))
	copy(out, g.names)
	return out
}

// Len returns the number of points, taken from the position attribute.
func (g *Geometry) Len() int {
	if a, ok := g.attrs[AttrPosition]; ok {
		return a.Len()
	}
	return 0
}

package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshpcd/internal/nodes"
	"github.com/Faultbox/meshpcd/pkg/math"
)

// Kind is the object type.
type Kind string

const (
	KindMesh   Kind = "mesh"
	KindCurve  Kind = "curve"
	KindEmpty  Kind = "empty"
	KindCamera Kind = "camera"
	KindLight  Kind = "light"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindMesh, KindCurve, KindEmpty, KindCamera, KindLight:
		return true
	}
	return false
}

// VertexGroup is a named set of per-vertex weights. Vertices missing from
// Weights have weight 0.
type VertexGroup struct {
	Name    string
	Weights map[int]float32
}

// Weight returns the weight of vertex i.
func (g *VertexGroup) Weight(i int) float32 {
	return g.Weights[i]
}

// Object is a scene object.
type Object struct {
	Name string
	Kind Kind
	Mesh *Mesh

	Location math.Vec3
	Rotation math.Vec3 // XYZ Euler angles in degrees
	Scale    math.Vec3

	MaterialSlots []*Material
	VertexGroups  []*VertexGroup
	Modifiers     []*nodes.Modifier
}

// NewObject creates an object with identity transform.
func NewObject(name string, kind Kind) *Object {
	return &Object{
		Name:  name,
		Kind:  kind,
		Scale: math.Vec3{X: 1, Y: 1, Z: 1},
	}
}

// Material returns the material in slot i, or nil if the slot is empty.
func (o *Object) Material(i int) *Material {
	if i < 0 || i >= len(o.MaterialSlots) {
		return nil
	}
	return o.MaterialSlots[i]
}

// VertexGroupNames returns the vertex group names in declaration order.
func (o *Object) VertexGroupNames() []string {
	names := make([]string, len(o.VertexGroups))
	for i, g := range o.VertexGroups {
		names[i] = g.Name
	}
	return names
}

// Modifier returns the modifier called name.
func (o *Object) Modifier(name string) (*nodes.Modifier, bool) {
	for _, m := range o.Modifiers {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// WorldMatrix returns T * Rz * Ry * Rx * S.
func (o *Object) WorldMatrix() mgl32.Mat4 {
	t := mgl32.Translate3D(o.Location.X, o.Location.Y, o.Location.Z)
	rz := mgl32.HomogRotate3DZ(mgl32.DegToRad(o.Rotation.Z))
	ry := mgl32.HomogRotate3DY(mgl32.DegToRad(o.Rotation.Y))
	rx := mgl32.HomogRotate3DX(mgl32.DegToRad(o.Rotation.X))
	s := mgl32.Scale3D(o.Scale.X, o.Scale.Y, o.Scale.Z)
	return t.Mul4(rz).Mul4(ry).Mul4(rx).Mul4(s)
}

// Surface triangulates the mesh for sampling. SpaceRelative applies the
// world transform; SpaceOriginal keeps mesh coordinates.
func (o *Object) Surface(space nodes.Space) (*nodes.Surface, error) {
	if o.Kind != KindMesh || o.Mesh == nil {
		return nil, fmt.Errorf("%w: %s (%s)", ErrNotMesh, o.Name, o.Kind)
	}

	transform := func(p math.Vec3) math.Vec3 { return p }
	if space == nodes.SpaceRelative {
		m := o.WorldMatrix()
		transform = func(p math.Vec3) math.Vec3 {
			w := m.Mul4x1(mgl32.Vec4{p.X, p.Y, p.Z, 1})
			return math.Vec3{X: w[0], Y: w[1], Z: w[2]}
		}
	}

	mesh := o.Mesh
	surf := &nodes.Surface{
		Triangles:  make([]nodes.Triangle, 0, len(mesh.Triangles)),
		GroupNames: o.VertexGroupNames(),
	}
	for _, t := range mesh.Triangles {
		tri := nodes.Triangle{HasUV: true}
		for c, vi := range t.Vertices {
			tri.Positions[c] = transform(mesh.Positions[vi])
			if t.UVs[c] == NoUV {
				tri.HasUV = false
			} else {
				tri.UVs[c] = mesh.UVs[t.UVs[c]]
			}
		}
		if len(o.VertexGroups) > 0 {
			tri.Weights = make([][3]float32, len(o.VertexGroups))
			for g, vg := range o.VertexGroups {
				for c, vi := range t.Vertices {
					tri.Weights[g][c] = vg.Weight(vi)
				}
			}
		}
		surf.Triangles = append(surf.Triangles, tri)
	}
	return surf, nil
}

package scene

import (
	"errors"
	"fmt"

	"github.com/Faultbox/meshpcd/pkg/formats"
	"github.com/Faultbox/meshpcd/pkg/math"
)

// ErrMeshIndex is returned for triangles referencing missing data.
var ErrMeshIndex = errors.New("mesh index out of range")

// NoUV marks a triangle corner without texture coordinates.
const NoUV = -1

// MeshTriangle indexes Mesh.Positions and Mesh.UVs.
type MeshTriangle struct {
	Vertices [3]int
	UVs      [3]int
	Material int // Material slot, -1 when unassigned
}

// Mesh is indexed triangle geometry.
type Mesh struct {
	Name      string
	Positions []math.Vec3
	UVs       []math.Vec2
	Triangles []MeshTriangle
}

// Validate checks every triangle index.
func (m *Mesh) Validate() error {
	for i, t := range m.Triangles {
		for c := 0; c < 3; c++ {
			if t.Vertices[c] < 0 || t.Vertices[c] >= len(m.Positions) {
				return fmt.Errorf("%w: triangle %d vertex %d", ErrMeshIndex, i, t.Vertices[c])
			}
			if t.UVs[c] != NoUV && (t.UVs[c] < 0 || t.UVs[c] >= len(m.UVs)) {
				return fmt.Errorf("%w: triangle %d uv %d", ErrMeshIndex, i, t.UVs[c])
			}
		}
	}
	return nil
}

// MeshFromOBJ fan-triangulates an OBJ. Triangle material indices follow
// the OBJ's usemtl order.
func MeshFromOBJ(name string, obj *formats.OBJ) (*Mesh, error) {
	m := &Mesh{
		Name:      name,
		Positions: obj.Positions,
		UVs:       obj.TexCoords,
	}
	for _, t := range obj.Triangles() {
		mt := MeshTriangle{Material: t.Material}
		for c, v := range t.Vertices {
			mt.Vertices[c] = v.Position
			mt.UVs[c] = NoUV
			if v.TexCoord != formats.NoIndex {
				mt.UVs[c] = v.TexCoord
			}
		}
		m.Triangles = append(m.Triangles, mt)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("mesh %s: %w", name, err)
	}
	return m, nil
}

package nodes

import "github.com/Faultbox/meshpcd/pkg/math"

// Triangle is one triangle of a surface with its per-corner attributes.
type Triangle struct {
	Positions [3]math.Vec3
	UVs       [3]math.Vec2
	HasUV     bool
	// Weights holds one entry per Surface.GroupNames, each with the
	// three corner weights.
	Weights [][3]float32
}

// Surface is a triangle soup ready for sampling.
type Surface struct {
	Triangles  []Triangle
	GroupNames []string
}

// SurfaceSource is anything that can be fed to an object socket.
type SurfaceSource interface {
	Surface(space Space) (*Surface, error)
}

// groupIndex returns the index of the named vertex group, or -1.
func (s *Surface) groupIndex(name string) int {
	for i, n := range s.GroupNames {
		if n == name {
			return i
		}
	}
	return -1
}

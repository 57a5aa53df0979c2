package nodes

import (
	"fmt"
	"image"
	stdmath "math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/Faultbox/meshpcd/internal/texture"
	"github.com/Faultbox/meshpcd/pkg/math"
)

// Socket names read by the evaluator.
const (
	InputObject     = "Object"
	InputDensityMin = "Density Min"
	InputDensityMax = "Density Max"
	InputBaseColor  = "Base Color"
	InputTexture    = "Texture"
	InputUseTexture = "Use Texture"
)

// DefaultBaseColor is used when the Base Color input is left unset.
var DefaultBaseColor = math.Color{R: 0.8, G: 0.8, B: 0.8, A: 1}

type inputs struct {
	source     SurfaceSource
	densityMin float32
	densityMax float32
	baseColor  math.Color
	texture    *image.NRGBA
	useTexture bool
}

// candidate is a point on triangle tri at barycentric (u, v, w).
type candidate struct {
	tri     int
	u, v, w float32
	pos     math.Vec3
}

// Evaluate runs the modifier's program and returns the sampled points.
//
// Points are scattered with area-weighted probability at
// lerp(Density Min, Density Max, factor) points per unit area, where factor
// is the mean weight of the program's density group (1 without one).
// Negative densities count as zero and the total is capped at max_points.
// A NaN density, or a count too large to draw without max_points, fails
// with ErrDensityRange.
// With distance_min > 0, candidates closer than that to an already accepted
// point are dropped, giving a Poisson-disk distribution.
func Evaluate(m *Modifier) (*Geometry, error) {
	prog := m.Group.Program
	if err := prog.Validate(); err != nil {
		return nil, fmt.Errorf("group %s: %w", m.Group.Name, err)
	}

	in, err := m.readInputs()
	if err != nil {
		return nil, err
	}

	surf, err := in.source.Surface(prog.Space)
	if err != nil {
		return nil, fmt.Errorf("reading %s input: %w", InputObject, err)
	}

	rng := rand.New(rand.NewPCG(prog.Seed, prog.Seed^0x9e3779b97f4a7c15))
	cands, err := scatter(rng, prog, surf, in)
	if err != nil {
		return nil, fmt.Errorf("group %s: %w", m.Group.Name, err)
	}
	if prog.DistanceMin > 0 {
		cands = eliminate(cands, prog.DistanceMin)
	}
	return build(prog, surf, in, cands)
}

func (m *Modifier) readInputs() (inputs, error) {
	in := inputs{baseColor: DefaultBaseColor}

	v, ok, err := m.input(InputObject)
	if err != nil {
		return in, err
	}
	if !ok || v == nil {
		return in, fmt.Errorf("%w: %s", ErrMissingInput, InputObject)
	}
	in.source = v.(SurfaceSource)

	if v, ok, err = m.input(InputDensityMin); err != nil {
		return in, err
	} else if ok {
		in.densityMin = v.(float32)
	}
	if v, ok, err = m.input(InputDensityMax); err != nil {
		return in, err
	} else if ok {
		in.densityMax = v.(float32)
	}
	if v, ok, err = m.input(InputBaseColor); err != nil {
		return in, err
	} else if ok {
		in.baseColor = v.(math.Color)
	}
	if v, ok, err = m.input(InputTexture); err != nil {
		return in, err
	} else if ok && v != nil {
		in.texture = v.(*image.NRGBA)
	}
	if v, ok, err = m.input(InputUseTexture); err != nil {
		return in, err
	} else if ok {
		in.useTexture = v.(bool)
	}

	return in, nil
}

// maxUncapped bounds the candidate count of programs without max_points.
const maxUncapped = 1 << 26

// scatter draws area-weighted random points over the surface. An infinite
// density saturates to max_points, spread over the infinitely dense
// triangles by area.
func scatter(rng *rand.Rand, prog Program, surf *Surface, in inputs) ([]candidate, error) {
	if len(surf.Triangles) == 0 {
		return nil, nil
	}

	densityIdx := -1
	if prog.DensityGroup != "" {
		densityIdx = surf.groupIndex(prog.DensityGroup)
	}

	areas := make([]float64, len(surf.Triangles))
	weights := make([]float64, len(surf.Triangles))
	for i, tri := range surf.Triangles {
		factor := float32(1)
		if densityIdx >= 0 {
			w := tri.Weights[densityIdx]
			factor = (w[0] + w[1] + w[2]) / 3
		}
		density := max(densityAt(in.densityMin, in.densityMax, factor), 0)
		areas[i] = float64(math.TriangleArea(tri.Positions[0], tri.Positions[1], tri.Positions[2]))
		if areas[i] > 0 {
			weights[i] = areas[i] * float64(density)
		}
	}

	total := floats.Sum(weights)
	count := total
	switch {
	case stdmath.IsNaN(total):
		return nil, fmt.Errorf("%w: density is NaN", ErrDensityRange)
	case stdmath.IsInf(total, 1):
		for i, w := range weights {
			if stdmath.IsInf(w, 1) {
				weights[i] = areas[i]
			} else {
				weights[i] = 0
			}
		}
		total = floats.Sum(weights)
	}
	if total <= 0 {
		return nil, nil
	}

	if prog.MaxPoints == 0 && count > maxUncapped {
		return nil, fmt.Errorf("%w: %g points requested without max_points", ErrDensityRange, count)
	}
	if prog.MaxPoints > 0 && count > float64(prog.MaxPoints) {
		count = float64(prog.MaxPoints)
	}
	// Stochastic rounding keeps the expected count equal to total.
	n := int(count + rng.Float64())
	if prog.MaxPoints > 0 {
		n = min(n, prog.MaxPoints)
	}

	cdf := make([]float64, len(weights))
	floats.CumSum(cdf, weights)

	cands := make([]candidate, 0, n)
	for k := 0; k < n; k++ {
		// r is in (0, total], so zero-weight triangles are never picked.
		r := (1 - rng.Float64()) * total
		i := min(sort.SearchFloat64s(cdf, r), len(cdf)-1)

		r1, r2 := rng.Float32(), rng.Float32()
		if r1+r2 > 1 {
			r1, r2 = 1-r1, 1-r2
		}
		c := candidate{tri: i, u: 1 - r1 - r2, v: r1, w: r2}
		p := surf.Triangles[i].Positions
		c.pos = math.Barycentric(p[0], p[1], p[2], c.u, c.v, c.w)
		cands = append(cands, c)
	}
	return cands, nil
}

// densityAt interpolates between lo and hi without producing NaN for
// infinite endpoints.
func densityAt(lo, hi, t float32) float32 {
	switch {
	case t <= 0 || lo == hi:
		return lo
	case t >= 1:
		return hi
	}
	return math.Lerp(lo, hi, t)
}

// eliminate keeps, in order, each candidate at least dist away from every
// candidate kept before it.
func eliminate(cands []candidate, dist float32) []candidate {
	limit := float64(dist) * float64(dist)
	tree := &kdtree.Tree{}
	kept := make([]candidate, 0, len(cands))

	for _, c := range cands {
		q := kdtree.Point(c.pos.Float64s())
		if tree.Count > 0 {
			// kdtree.Point distances are squared.
			if _, d := tree.Nearest(q); d < limit {
				continue
			}
		}
		tree.Insert(q, false)
		kept = append(kept, c)
	}
	return kept
}

func build(prog Program, surf *Surface, in inputs, cands []candidate) (*Geometry, error) {
	positions := make(Vec3Attribute, len(cands))
	colors := make(ColorAttribute, len(cands))
	base := in.baseColor.ToSRGB()
	textured := in.useTexture && in.texture != nil

	for k, c := range cands {
		tri := &surf.Triangles[c.tri]
		positions[k] = c.pos
		colors[k] = base
		if textured && tri.HasUV {
			uv := math.Barycentric2(tri.UVs[0], tri.UVs[1], tri.UVs[2], c.u, c.v, c.w)
			colors[k] = texture.SampleSRGB(in.texture, uv.X, uv.Y)
		}
	}

	geo := NewGeometry()
	geo.Set(AttrPosition, positions)
	geo.Set(AttrColor, colors)

	if !prog.PropagateGroups {
		return geo, nil
	}
	for gi, name := range surf.GroupNames {
		if name == AttrPosition || name == AttrColor {
			return nil, fmt.Errorf("%w: vertex group %q", ErrReservedAttribute, name)
		}
		values := make(FloatAttribute, len(cands))
		for k, c := range cands {
			w := surf.Triangles[c.tri].Weights[gi]
			values[k] = clamp01(c.u*w[0] + c.v*w[1] + c.w*w[2])
		}
		geo.Set(name, values)
	}
	return geo, nil
}

func clamp01(f float32) float32 {
	return min(max(f, 0), 1)
}

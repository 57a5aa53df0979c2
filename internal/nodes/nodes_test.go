package nodes

import (
	"errors"
	"image"
	"image/color"
	stdmath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/meshpcd/pkg/math"
)

type staticSurface struct {
	surf  *Surface
	space Space
	err   error
}

func (s *staticSurface) Surface(space Space) (*Surface, error) {
	s.space = space
	return s.surf, s.err
}

// unitQuad is a 1x1 square in the XY plane with UVs covering [0,1].
func unitQuad(groups ...string) *Surface {
	p := [4]math.Vec3{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	uv := [4]math.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	tri := func(a, b, c int) Triangle {
		t := Triangle{
			Positions: [3]math.Vec3{p[a], p[b], p[c]},
			UVs:       [3]math.Vec2{uv[a], uv[b], uv[c]},
			HasUV:     true,
		}
		for range groups {
			t.Weights = append(t.Weights, [3]float32{0.5, 0.5, 0.5})
		}
		return t
	}
	return &Surface{
		Triangles:  []Triangle{tri(0, 1, 2), tri(0, 2, 3)},
		GroupNames: groups,
	}
}

func testGroup() *Group {
	return &Group{
		Name: "Point Cloud",
		Interface: []Socket{
			{Name: InputObject, Identifier: "Socket_0", Type: SocketObject},
			{Name: InputDensityMin, Identifier: "Socket_1", Type: SocketFloat},
			{Name: InputDensityMax, Identifier: "Socket_2", Type: SocketFloat},
			{Name: InputBaseColor, Identifier: "Socket_3", Type: SocketColor},
			{Name: InputTexture, Identifier: "Socket_4", Type: SocketImage},
			{Name: InputUseTexture, Identifier: "Socket_5", Type: SocketBool},
		},
		Program: Program{
			Kind:            ProgramPoissonDisk,
			Seed:            7,
			Space:           SpaceRelative,
			PropagateGroups: true,
		},
	}
}

func configured(t *testing.T, g *Group, src SurfaceSource, dmin, dmax float32) *Modifier {
	t.Helper()
	m := NewModifier("GeometryNodes", g)
	require.NoError(t, m.Set("Socket_0", src))
	require.NoError(t, m.Set("Socket_1", dmin))
	require.NoError(t, m.Set("Socket_2", dmax))
	return m
}

func TestGroupIdentifier(t *testing.T) {
	g := testGroup()

	id, err := g.Identifier(InputDensityMax)
	require.NoError(t, err)
	assert.Equal(t, "Socket_2", id)

	_, err = g.Identifier("Density")
	assert.ErrorIs(t, err, ErrSocketNotFound)
}

func TestModifierSet(t *testing.T) {
	g := testGroup()
	m := NewModifier("GeometryNodes", g)

	tests := []struct {
		name    string
		id      string
		value   any
		wantErr error
	}{
		{"float32", "Socket_1", float32(2), nil},
		{"float64 converted", "Socket_2", 3.5, nil},
		{"float rejects string", "Socket_1", "2", ErrSocketType},
		{"color", "Socket_3", math.Color{R: 1, A: 1}, nil},
		{"color rejects vec", "Socket_3", math.Vec3{}, ErrSocketType},
		{"nil image", "Socket_4", nil, nil},
		{"typed nil image", "Socket_4", (*image.NRGBA)(nil), nil},
		{"image rejects rgba", "Socket_4", image.NewRGBA(image.Rect(0, 0, 1, 1)), ErrSocketType},
		{"bool", "Socket_5", true, nil},
		{"object rejects int", "Socket_0", 1, ErrSocketType},
		{"unknown identifier", "Socket_9", true, ErrSocketNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.Set(tt.id, tt.value)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}

	v, ok := m.Value("Socket_2")
	require.True(t, ok)
	assert.Equal(t, float32(3.5), v)

	v, ok = m.Value("Socket_4")
	require.True(t, ok)
	assert.Nil(t, v)
}

func TestProgramValidate(t *testing.T) {
	base := testGroup().Program
	assert.NoError(t, base.Validate())

	bad := base
	bad.Kind = "grid"
	assert.ErrorIs(t, bad.Validate(), ErrUnknownProgram)

	bad = base
	bad.DistanceMin = -1
	assert.Error(t, bad.Validate())

	bad = base
	bad.Space = "world"
	assert.Error(t, bad.Validate())
}

func TestEvaluateMissingObject(t *testing.T) {
	m := NewModifier("GeometryNodes", testGroup())
	_, err := Evaluate(m)
	assert.ErrorIs(t, err, ErrMissingInput)
}

func TestEvaluateSurfaceError(t *testing.T) {
	boom := errors.New("boom")
	m := configured(t, testGroup(), &staticSurface{err: boom}, 0, 10)
	_, err := Evaluate(m)
	assert.ErrorIs(t, err, boom)
}

func TestEvaluateDensity(t *testing.T) {
	src := &staticSurface{surf: unitQuad()}
	m := configured(t, testGroup(), src, 0, 100)

	geo, err := Evaluate(m)
	require.NoError(t, err)
	assert.Equal(t, SpaceRelative, src.space)

	// Area 1 at 100 points per unit area.
	assert.InDelta(t, 100, geo.Len(), 1)
	assert.Equal(t, []string{AttrPosition, AttrColor}, geo.Names())

	a, _ := geo.Attribute(AttrPosition)
	for _, p := range a.(Vec3Attribute) {
		assert.True(t, p.X >= 0 && p.X <= 1 && p.Y >= 0 && p.Y <= 1, "point %v outside quad", p)
		assert.Zero(t, p.Z)
	}

	c, _ := geo.Attribute(AttrColor)
	for _, col := range c.(ColorAttribute) {
		assert.Equal(t, DefaultBaseColor.ToSRGB(), col)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	g := testGroup()
	first, err := Evaluate(configured(t, g, &staticSurface{surf: unitQuad()}, 0, 50))
	require.NoError(t, err)
	second, err := Evaluate(configured(t, g, &staticSurface{surf: unitQuad()}, 0, 50))
	require.NoError(t, err)

	a, _ := first.Attribute(AttrPosition)
	b, _ := second.Attribute(AttrPosition)
	assert.Equal(t, a, b)
}

func TestEvaluateZeroAndNegativeDensity(t *testing.T) {
	for _, dmax := range []float32{0, -5} {
		geo, err := Evaluate(configured(t, testGroup(), &staticSurface{surf: unitQuad()}, 0, dmax))
		require.NoError(t, err)
		assert.Zero(t, geo.Len())
		_, ok := geo.Attribute(AttrColor)
		assert.True(t, ok)
	}
}

func TestEvaluateEmptySurface(t *testing.T) {
	geo, err := Evaluate(configured(t, testGroup(), &staticSurface{surf: &Surface{}}, 0, 100))
	require.NoError(t, err)
	assert.Zero(t, geo.Len())
}

func TestEvaluateMaxPoints(t *testing.T) {
	g := testGroup()
	g.Program.MaxPoints = 10
	geo, err := Evaluate(configured(t, g, &staticSurface{surf: unitQuad()}, 0, 1000))
	require.NoError(t, err)
	assert.Equal(t, 10, geo.Len())
}

func TestEvaluateDistanceMin(t *testing.T) {
	g := testGroup()
	g.Program.DistanceMin = 0.2
	geo, err := Evaluate(configured(t, g, &staticSurface{surf: unitQuad()}, 0, 500))
	require.NoError(t, err)
	require.Greater(t, geo.Len(), 1)
	assert.Less(t, geo.Len(), 500)

	a, _ := geo.Attribute(AttrPosition)
	pts := a.(Vec3Attribute)
	for i := range pts {
		for j := i + 1; j < len(pts); j++ {
			assert.GreaterOrEqual(t, pts[i].Distance(pts[j]), float32(0.2)-1e-6)
		}
	}
}

func TestEvaluateTexture(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 0, B: 127, A: 255})
		}
	}

	m := configured(t, testGroup(), &staticSurface{surf: unitQuad()}, 0, 20)
	require.NoError(t, m.Set("Socket_4", img))
	require.NoError(t, m.Set("Socket_5", true))

	geo, err := Evaluate(m)
	require.NoError(t, err)
	require.NotZero(t, geo.Len())

	want := math.RGBA8(255, 0, 127, 255)
	c, _ := geo.Attribute(AttrColor)
	for _, col := range c.(ColorAttribute) {
		assert.Equal(t, want, col)
	}
}

func TestEvaluateTextureIgnoredWithoutFlag(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	m := configured(t, testGroup(), &staticSurface{surf: unitQuad()}, 0, 20)
	require.NoError(t, m.Set("Socket_3", math.Color{R: 1, G: 0, B: 0, A: 1}))
	require.NoError(t, m.Set("Socket_4", img))

	geo, err := Evaluate(m)
	require.NoError(t, err)
	c, _ := geo.Attribute(AttrColor)
	for _, col := range c.(ColorAttribute) {
		assert.Equal(t, math.Color{R: 1, G: 0, B: 0, A: 1}, col)
	}
}

func TestEvaluateHugeDensity(t *testing.T) {
	inf := float32(stdmath.Inf(1))
	tests := []struct {
		name       string
		dmin, dmax float32
	}{
		{"finite", 0, 1e30},
		{"infinite max", 0, inf},
		{"infinite range", inf, inf},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testGroup()
			g.Program.MaxPoints = 1000
			geo, err := Evaluate(configured(t, g, &staticSurface{surf: unitQuad()}, tt.dmin, tt.dmax))
			require.NoError(t, err)
			assert.Equal(t, 1000, geo.Len())

			g.Program.MaxPoints = 0
			_, err = Evaluate(configured(t, g, &staticSurface{surf: unitQuad()}, tt.dmin, tt.dmax))
			assert.ErrorIs(t, err, ErrDensityRange)
		})
	}
}

func TestEvaluateInfiniteDensityGroup(t *testing.T) {
	g := testGroup()
	g.Program.DensityGroup = "Foot"
	g.Program.MaxPoints = 50
	surf := unitQuad("Foot")
	surf.Triangles[1].Weights[0] = [3]float32{0, 0, 0}

	geo, err := Evaluate(configured(t, g, &staticSurface{surf: surf}, 0, float32(stdmath.Inf(1))))
	require.NoError(t, err)
	assert.Equal(t, 50, geo.Len())

	// Only the first triangle (below the diagonal y = x) is infinitely dense.
	a, _ := geo.Attribute(AttrPosition)
	for _, p := range a.(Vec3Attribute) {
		assert.LessOrEqual(t, p.Y, p.X+1e-6)
	}
}

func TestEvaluateNaNDensity(t *testing.T) {
	g := testGroup()
	g.Program.MaxPoints = 1000
	nan := float32(stdmath.NaN())
	_, err := Evaluate(configured(t, g, &staticSurface{surf: unitQuad()}, 0, nan))
	assert.ErrorIs(t, err, ErrDensityRange)
}

func TestEvaluateReservedGroupName(t *testing.T) {
	for _, name := range []string{AttrPosition, AttrColor} {
		_, err := Evaluate(configured(t, testGroup(), &staticSurface{surf: unitQuad("Foot", name)}, 0, 30))
		assert.ErrorIs(t, err, ErrReservedAttribute)
		assert.ErrorContains(t, err, name)
	}
}

func TestEvaluateGroups(t *testing.T) {
	src := &staticSurface{surf: unitQuad("Foot")}
	geo, err := Evaluate(configured(t, testGroup(), src, 0, 30))
	require.NoError(t, err)

	assert.Equal(t, []string{AttrPosition, AttrColor, "Foot"}, geo.Names())
	a, _ := geo.Attribute("Foot")
	w := a.(FloatAttribute)
	assert.Equal(t, geo.Len(), w.Len())
	for _, v := range w {
		assert.InDelta(t, 0.5, v, 1e-5)
	}

	g := testGroup()
	g.Program.PropagateGroups = false
	geo, err = Evaluate(configured(t, g, &staticSurface{surf: unitQuad("Foot")}, 0, 30))
	require.NoError(t, err)
	_, ok := geo.Attribute("Foot")
	assert.False(t, ok)
}

func TestEvaluateDensityGroup(t *testing.T) {
	g := testGroup()
	g.Program.DensityGroup = "Foot"
	// Mean weight 0.5 halves the maximum density.
	geo, err := Evaluate(configured(t, g, &staticSurface{surf: unitQuad("Foot")}, 0, 200))
	require.NoError(t, err)
	assert.InDelta(t, 100, geo.Len(), 1)
}

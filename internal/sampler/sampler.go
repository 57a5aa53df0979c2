// Package sampler configures the point cloud node group for one mesh,
// evaluates it and collects the result as a point cloud.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/meshpcd/internal/assets"
	"github.com/Faultbox/meshpcd/internal/nodes"
	"github.com/Faultbox/meshpcd/internal/pointcloud"
	"github.com/Faultbox/meshpcd/internal/scene"
	"github.com/Faultbox/meshpcd/pkg/math"
)

// Sampler errors.
var (
	ErrInvalidInput    = errors.New("object is not a mesh")
	ErrMissingMaterial = errors.New("mesh has no material in slot 0")
)

// SurfaceSampler turns a mesh object into a point cloud.
type SurfaceSampler interface {
	Sample(ctx context.Context, obj *scene.Object, densityMin, densityMax float32) (*pointcloud.PointCloud, error)
}

// SamplingRequest is the set of values bound to the node group for one mesh.
type SamplingRequest struct {
	Mesh       *scene.Object
	DensityMin float32
	DensityMax float32
	BaseColor  math.Color // linear
	Texture    *scene.Image
	UseTexture bool
}

// NewRequest reads the base color of the mesh's first material. A texture
// linked into the base color wins over the constant color; UseTexture is set
// whenever an image is bound, even one without decoded pixels, in which case
// evaluation falls back to the constant color.
func NewRequest(obj *scene.Object, densityMin, densityMax float32) (SamplingRequest, error) {
	req := SamplingRequest{Mesh: obj, DensityMin: densityMin, DensityMax: densityMax}

	mat := obj.Material(0)
	if mat == nil {
		return req, fmt.Errorf("%w: %s", ErrMissingMaterial, obj.Name)
	}
	if mat.Shader == nil {
		return req, fmt.Errorf("%w: material %s of %s has no shader", ErrMissingMaterial, mat.Name, obj.Name)
	}

	base := mat.Shader.BaseColor
	req.BaseColor = base.Default
	if base.Linked() {
		req.Texture = base.Links[0].Image
		req.UseTexture = req.Texture != nil
	}
	return req, nil
}

// Configurator is the SurfaceSampler backed by the asset library's node
// group. The helper object it links into the scene is removed again before
// Sample returns.
type Configurator struct {
	scene       *scene.Scene
	assets      *assets.Manager
	libraryPath string
	log         *zap.Logger

	mu      sync.Mutex
	sockets map[*nodes.Group]socketMap
}

var _ SurfaceSampler = (*Configurator)(nil)

// New creates a configurator that links helpers into sc from the library
// at libraryPath.
func New(sc *scene.Scene, mgr *assets.Manager, libraryPath string, log *zap.Logger) *Configurator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Configurator{
		scene:       sc,
		assets:      mgr,
		libraryPath: libraryPath,
		log:         log,
		sockets:     make(map[*nodes.Group]socketMap),
	}
}

// Sample evaluates the node group on obj. Densities are passed through
// unchanged.
func (c *Configurator) Sample(ctx context.Context, obj *scene.Object, densityMin, densityMax float32) (*pointcloud.PointCloud, error) {
	if obj == nil {
		return nil, fmt.Errorf("%w: no object", ErrInvalidInput)
	}
	if obj.Kind != scene.KindMesh {
		return nil, fmt.Errorf("%w: %s is a %s", ErrInvalidInput, obj.Name, obj.Kind)
	}

	helper, release, err := c.acquireHelper()
	if err != nil {
		return nil, err
	}
	defer release()

	req, err := NewRequest(obj, densityMin, densityMax)
	if err != nil {
		return nil, err
	}

	if len(helper.Modifiers) == 0 {
		return nil, fmt.Errorf("%w: %s has no node modifier", assets.ErrInvalidLibrary, helper.Name)
	}
	mod := helper.Modifiers[0]

	sockets, err := c.resolve(mod.Group)
	if err != nil {
		return nil, err
	}
	if err := sockets.bind(mod, req); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	geo, err := nodes.Evaluate(mod)
	if err != nil {
		return nil, fmt.Errorf("evaluating %s: %w", mod.Group.Name, err)
	}

	pc, err := collect(geo, obj.VertexGroupNames())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", obj.Name, err)
	}

	c.log.Debug("sampled mesh",
		zap.String("object", obj.Name),
		zap.Int("points", pc.Len()),
		zap.Strings("channels", pc.ChannelNames()),
		zap.Bool("textured", req.UseTexture))
	return pc, nil
}

// acquireHelper returns the helper object, linking it from the library if
// the scene does not already hold one. release unlinks it.
func (c *Configurator) acquireHelper() (*scene.Object, func(), error) {
	helper, ok := c.scene.Object(assets.HelperObject)
	if !ok {
		lib, err := c.assets.Load(c.libraryPath)
		if err != nil {
			return nil, nil, err
		}
		if helper, err = lib.Instantiate(assets.HelperObject); err != nil {
			return nil, nil, err
		}
		if err := c.scene.Link(helper); err != nil {
			return nil, nil, err
		}
		c.log.Debug("linked helper", zap.String("library", c.libraryPath))
	}

	release := func() {
		c.scene.Remove(helper)
	}
	return helper, release, nil
}

// collect reads position, color and one weight channel per vertex group.
func collect(geo *nodes.Geometry, groups []string) (*pointcloud.PointCloud, error) {
	positions, err := attribute[nodes.Vec3Attribute](geo, nodes.AttrPosition)
	if err != nil {
		return nil, err
	}
	colors, err := attribute[nodes.ColorAttribute](geo, nodes.AttrColor)
	if err != nil {
		return nil, err
	}

	channels := make([]pointcloud.Channel, 0, len(groups))
	for _, name := range groups {
		if name == nodes.AttrPosition || name == nodes.AttrColor {
			return nil, fmt.Errorf("%w: vertex group %q collides with the built-in attribute", pointcloud.ErrMalformed, name)
		}
		values, err := attribute[nodes.FloatAttribute](geo, name)
		if err != nil && len(positions) > 0 {
			return nil, err
		}
		channels = append(channels, pointcloud.Channel{Name: name, Values: values})
	}
	return pointcloud.New(positions, colors, channels)
}

func attribute[T nodes.Attribute](geo *nodes.Geometry, name string) (T, error) {
	var zero T
	a, ok := geo.Attribute(name)
	if !ok {
		return zero, fmt.Errorf("%w: evaluated geometry has no %q attribute", pointcloud.ErrMalformed, name)
	}
	v, ok := a.(T)
	if !ok {
		return zero, fmt.Errorf("%w: attribute %q is %T", pointcloud.ErrMalformed, name, a)
	}
	return v, nil
}

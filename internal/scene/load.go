package scene

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/meshpcd/internal/texture"
	"github.com/Faultbox/meshpcd/pkg/formats"
	"github.com/Faultbox/meshpcd/pkg/math"
)

// File is the YAML form of a scene.
type File struct {
	Name      string         `yaml:"name"`
	Materials []MaterialFile `yaml:"materials"`
	Objects   []ObjectFile   `yaml:"objects"`
}

// MaterialFile describes a scene-level material.
type MaterialFile struct {
	Name      string    `yaml:"name"`
	BaseColor []float32 `yaml:"base_color"` // RGB or RGBA, linear
	Texture   string    `yaml:"texture"`    // relative to the scene file
}

// ObjectFile describes one object.
type ObjectFile struct {
	Name         string            `yaml:"name"`
	Type         Kind              `yaml:"type"`
	Mesh         string            `yaml:"mesh"` // OBJ path, relative to the scene file
	Selected     bool              `yaml:"selected"`
	Location     []float32         `yaml:"location"`
	Rotation     []float32         `yaml:"rotation"`
	Scale        []float32         `yaml:"scale"`
	Materials    []string          `yaml:"materials"`
	VertexGroups []VertexGroupFile `yaml:"vertex_groups"`
}

// VertexGroupFile describes a vertex group.
type VertexGroupFile struct {
	Name    string          `yaml:"name"`
	Weights map[int]float32 `yaml:"weights"`
}

// Load reads a scene file. Meshes, material libraries and textures are
// resolved relative to the file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing scene file %s: %w", path, err)
	}
	if f.Name == "" {
		f.Name = filepath.Base(path)
	}

	l := &loader{
		dir:       filepath.Dir(path),
		materials: make(map[string]*Material),
		images:    make(map[string]*Image),
	}
	return l.build(&f)
}

type loader struct {
	dir       string
	materials map[string]*Material
	images    map[string]*Image
}

func (l *loader) build(f *File) (*Scene, error) {
	for _, mf := range f.Materials {
		m, err := l.material(mf)
		if err != nil {
			return nil, err
		}
		l.materials[m.Name] = m
	}

	s := New(f.Name)
	for _, of := range f.Objects {
		o, err := l.object(of)
		if err != nil {
			return nil, fmt.Errorf("object %s: %w", of.Name, err)
		}
		if err := s.Link(o); err != nil {
			return nil, err
		}
		s.Select(o, of.Selected)
	}
	return s, nil
}

func (l *loader) material(mf MaterialFile) (*Material, error) {
	if mf.Texture != "" {
		img, err := l.image(filepath.Join(l.dir, mf.Texture))
		if err != nil {
			return nil, fmt.Errorf("material %s: %w", mf.Name, err)
		}
		return NewTexturedMaterial(mf.Name, img), nil
	}

	base := DefaultBaseColor
	if len(mf.BaseColor) > 0 {
		c, err := parseColor(mf.BaseColor)
		if err != nil {
			return nil, fmt.Errorf("material %s: %w", mf.Name, err)
		}
		base = c
	}
	return NewMaterial(mf.Name, base), nil
}

func (l *loader) object(of ObjectFile) (*Object, error) {
	kind := of.Type
	if kind == "" {
		kind = KindMesh
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown object type %q", of.Type)
	}

	o := NewObject(of.Name, kind)
	var err error
	if o.Location, err = parseVec3(of.Location, o.Location); err != nil {
		return nil, fmt.Errorf("location: %w", err)
	}
	if o.Rotation, err = parseVec3(of.Rotation, o.Rotation); err != nil {
		return nil, fmt.Errorf("rotation: %w", err)
	}
	if o.Scale, err = parseVec3(of.Scale, o.Scale); err != nil {
		return nil, fmt.Errorf("scale: %w", err)
	}

	if of.Mesh != "" {
		if kind != KindMesh {
			return nil, fmt.Errorf("%s object cannot have a mesh", kind)
		}
		if err := l.loadMesh(o, filepath.Join(l.dir, of.Mesh)); err != nil {
			return nil, err
		}
	}

	if len(of.Materials) > 0 {
		o.MaterialSlots = o.MaterialSlots[:0]
		for _, name := range of.Materials {
			m, ok := l.materials[name]
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownMaterial, name)
			}
			o.MaterialSlots = append(o.MaterialSlots, m)
		}
	}

	for _, vg := range of.VertexGroups {
		o.VertexGroups = append(o.VertexGroups, &VertexGroup{Name: vg.Name, Weights: vg.Weights})
	}
	return o, nil
}

// loadMesh reads the OBJ and fills the mesh and default material slots from
// its usemtl names. Scene materials win over MTL materials of the same name.
func (l *loader) loadMesh(o *Object, path string) error {
	obj, err := formats.ParseOBJFile(path)
	if err != nil {
		return fmt.Errorf("loading mesh %s: %w", path, err)
	}
	name := obj.Name
	if name == "" {
		name = o.Name
	}
	if o.Mesh, err = MeshFromOBJ(name, obj); err != nil {
		return err
	}

	objDir := filepath.Dir(path)
	var libs []*formats.MTL
	var libDirs []string
	for _, lib := range obj.MaterialLibs {
		p := filepath.Join(objDir, lib)
		mtl, err := formats.ParseMTLFile(p)
		if err != nil {
			return fmt.Errorf("loading material library %s: %w", p, err)
		}
		libs = append(libs, mtl)
		libDirs = append(libDirs, filepath.Dir(p))
	}

	for _, name := range obj.Materials {
		m, err := l.objMaterial(name, libs, libDirs)
		if err != nil {
			return err
		}
		o.MaterialSlots = append(o.MaterialSlots, m)
	}
	return nil
}

func (l *loader) objMaterial(name string, libs []*formats.MTL, libDirs []string) (*Material, error) {
	if m, ok := l.materials[name]; ok {
		return m, nil
	}
	for i, lib := range libs {
		mm, ok := lib.Material(name)
		if !ok {
			continue
		}
		var m *Material
		if mm.DiffuseMap != "" {
			img, err := l.image(filepath.Join(libDirs[i], mm.DiffuseMap))
			if err != nil {
				return nil, fmt.Errorf("material %s: %w", name, err)
			}
			m = NewTexturedMaterial(name, img)
		} else {
			m = NewMaterial(name, math.Color{
				R: mm.Diffuse[0],
				G: mm.Diffuse[1],
				B: mm.Diffuse[2],
				A: mm.Dissolve,
			})
		}
		l.materials[name] = m
		return m, nil
	}

	// Unresolved usemtl names still occupy a slot.
	m := NewMaterial(name, DefaultBaseColor)
	l.materials[name] = m
	return m, nil
}

// image loads a texture once per path.
func (l *loader) image(path string) (*Image, error) {
	if img, ok := l.images[path]; ok {
		return img, nil
	}
	pixels, err := texture.Load(path)
	if err != nil {
		return nil, err
	}
	img := &Image{Name: filepath.Base(path), Path: path, Pixels: pixels}
	l.images[path] = img
	return img, nil
}

func parseVec3(v []float32, def math.Vec3) (math.Vec3, error) {
	switch len(v) {
	case 0:
		return def, nil
	case 3:
		return math.Vec3{X: v[0], Y: v[1], Z: v[2]}, nil
	}
	return def, fmt.Errorf("want 3 components, got %d", len(v))
}

func parseColor(v []float32) (math.Color, error) {
	switch len(v) {
	case 3:
		return math.Color{R: v[0], G: v[1], B: v[2], A: 1}, nil
	case 4:
		return math.Color{R: v[0], G: v[1], B: v[2], A: v[3]}, nil
	}
	return math.Color{}, fmt.Errorf("base_color wants 3 or 4 components, got %d", len(v))
}

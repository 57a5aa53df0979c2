package assets

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/meshpcd/internal/nodes"
	"github.com/Faultbox/meshpcd/internal/scene"
)

type libraryFile struct {
	NodeGroups []groupFile  `yaml:"node_groups"`
	Objects    []objectFile `yaml:"objects"`
}

type groupFile struct {
	Name      string         `yaml:"name"`
	Interface []nodes.Socket `yaml:"interface"`
	Program   nodes.Program  `yaml:"program"`
}

type objectFile struct {
	Name      string         `yaml:"name"`
	Type      scene.Kind     `yaml:"type"`
	Modifiers []modifierFile `yaml:"modifiers"`
}

type modifierFile struct {
	Name      string `yaml:"name"`
	NodeGroup string `yaml:"node_group"`
}

// Library is a parsed asset library. Node groups are shared by every
// object instantiated from it.
type Library struct {
	Path string

	groups  []*nodes.Group
	objects []objectFile
}

// ParseLibrary parses library YAML and checks its references.
func ParseLibrary(data []byte) (*Library, error) {
	var f libraryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLibrary, err)
	}

	lib := &Library{objects: f.Objects}
	for _, gf := range f.NodeGroups {
		if _, ok := lib.Group(gf.Name); ok {
			return nil, fmt.Errorf("%w: duplicate node group %q", ErrInvalidLibrary, gf.Name)
		}
		if err := gf.Program.Validate(); err != nil {
			return nil, fmt.Errorf("%w: node group %q: %v", ErrInvalidLibrary, gf.Name, err)
		}
		lib.groups = append(lib.groups, &nodes.Group{
			Name:      gf.Name,
			Interface: gf.Interface,
			Program:   gf.Program,
		})
	}

	for _, of := range f.Objects {
		if of.Type != "" && !of.Type.Valid() {
			return nil, fmt.Errorf("%w: object %q has unknown type %q", ErrInvalidLibrary, of.Name, of.Type)
		}
		for _, mf := range of.Modifiers {
			if _, ok := lib.Group(mf.NodeGroup); !ok {
				return nil, fmt.Errorf("%w: object %q links missing node group %q",
					ErrInvalidLibrary, of.Name, mf.NodeGroup)
			}
		}
	}
	return lib, nil
}

// Group returns the node group called name.
func (l *Library) Group(name string) (*nodes.Group, bool) {
	for _, g := range l.groups {
		if g.Name == name {
			return g, true
		}
	}
	return nil, false
}

// Instantiate creates a new object from the library. Its modifiers link
// the library's node groups rather than copying them.
func (l *Library) Instantiate(name string) (*scene.Object, error) {
	for _, of := range l.objects {
		if of.Name != name {
			continue
		}
		kind := of.Type
		if kind == "" {
			kind = scene.KindMesh
		}
		o := scene.NewObject(of.Name, kind)
		for _, mf := range of.Modifiers {
			g, _ := l.Group(mf.NodeGroup)
			o.Modifiers = append(o.Modifiers, nodes.NewModifier(mf.Name, g))
		}
		return o, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrObjectNotInLibrary, name)
}

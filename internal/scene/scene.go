// Package scene models the objects a point cloud export reads: meshes with
// transforms, material slots and vertex groups, collected in a scene with a
// selection.
package scene

import (
	"errors"
	"fmt"
)

// Scene errors.
var (
	ErrDuplicateObject = errors.New("object name already in scene")
	ErrNotMesh         = errors.New("object is not a mesh")
	ErrUnknownMaterial = errors.New("unknown material")
)

// Scene is an ordered set of uniquely named objects.
type Scene struct {
	Name string

	objects  []*Object
	selected map[*Object]bool
}

// New creates an empty scene.
func New(name string) *Scene {
	return &Scene{Name: name, selected: make(map[*Object]bool)}
}

// Link adds an object to the scene.
func (s *Scene) Link(o *Object) error {
	if _, ok := s.Object(o.Name); ok {
		return fmt.Errorf("%w: %s", ErrDuplicateObject, o.Name)
	}
	s.objects = append(s.objects, o)
	return nil
}

// Remove unlinks an object. It reports whether the object was linked.
func (s *Scene) Remove(o *Object) bool {
	for i, obj := range s.objects {
		if obj == o {
			s.objects = append(s.objects[:i], s.objects[i+1:]...)
			delete(s.selected, o)
			return true
		}
	}
	return false
}

// Object returns the linked object called name.
func (s *Scene) Object(name string) (*Object, bool) {
	for _, o := range s.objects {
		if o.Name == name {
			return o, true
		}
	}
	return nil, false
}

// Objects returns all linked objects in link order.
func (s *Scene) Objects() []*Object {
	out := make([]*Object, len(s.objects))
	copy(out, s.objects)
	return out
}

// Select sets the selection state of a linked object.
func (s *Scene) Select(o *Object, selected bool) {
	if selected {
		s.selected[o] = true
	} else {
		delete(s.selected, o)
	}
}

// Selected returns the selected objects in link order.
func (s *Scene) Selected() []*Object {
	var out []*Object
	for _, o := range s.objects {
		if s.selected[o] {
			out = append(out, o)
		}
	}
	return out
}

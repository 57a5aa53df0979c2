// Package nodes implements named-socket node groups, the modifiers that
// bind values to them, and the evaluator that turns a configured modifier
// into sampled point geometry.
package nodes

import (
	"errors"
	"fmt"
	"image"

	"github.com/Faultbox/meshpcd/pkg/math"
)

// Node group errors.
var (
	ErrSocketNotFound    = errors.New("socket not found")
	ErrSocketType        = errors.New("socket value has wrong type")
	ErrMissingInput      = errors.New("required input not set")
	ErrUnknownProgram    = errors.New("unknown node program")
	ErrDensityRange      = errors.New("density out of range")
	ErrReservedAttribute = errors.New("name collides with a built-in attribute")
)

// SocketType is the value type accepted by a socket.
type SocketType string

const (
	SocketObject SocketType = "object"
	SocketFloat  SocketType = "float"
	SocketColor  SocketType = "color"
	SocketImage  SocketType = "image"
	SocketBool   SocketType = "bool"
)

// Socket is one entry of a node group interface. Name is what users see;
// Identifier is what values are stored under.
type Socket struct {
	Name       string     `yaml:"name"`
	Identifier string     `yaml:"identifier"`
	Type       SocketType `yaml:"type"`
}

// Space selects the coordinate system of sampled positions.
type Space string

const (
	// SpaceRelative transforms the source into world space.
	SpaceRelative Space = "relative"
	// SpaceOriginal keeps the source's local coordinates.
	SpaceOriginal Space = "original"
)

// ProgramPoissonDisk is the only program kind the evaluator runs.
const ProgramPoissonDisk = "poisson_disk"

// Program holds the fixed parameters baked into a node group.
type Program struct {
	Kind            string  `yaml:"kind"`
	Seed            uint64  `yaml:"seed"`
	DistanceMin     float32 `yaml:"distance_min"`
	MaxPoints       int     `yaml:"max_points"`
	Space           Space   `yaml:"space"`
	DensityGroup    string  `yaml:"density_group"`
	PropagateGroups bool    `yaml:"propagate_groups"`
}

// Validate checks the program parameters.
func (p Program) Validate() error {
	if p.Kind != ProgramPoissonDisk {
		return fmt.Errorf("%w: %q", ErrUnknownProgram, p.Kind)
	}
	if p.DistanceMin < 0 {
		return fmt.Errorf("distance_min must be >= 0, got %v", p.DistanceMin)
	}
	if p.MaxPoints < 0 {
		return fmt.Errorf("max_points must be >= 0, got %d", p.MaxPoints)
	}
	switch p.Space {
	case SpaceRelative, SpaceOriginal:
	default:
		return fmt.Errorf("unknown space %q", p.Space)
	}
	return nil
}

// Group is a node group: an interface of sockets plus the program that
// consumes them. Groups are shared between modifiers and never mutated.
type Group struct {
	Name      string
	Interface []Socket
	Program   Program
}

// Identifier returns the identifier of the socket with the given name.
func (g *Group) Identifier(name string) (string, error) {
	for _, s := range g.Interface {
		if s.Name == name {
			return s.Identifier, nil
		}
	}
	return "", fmt.Errorf("%w: %q in group %s", ErrSocketNotFound, name, g.Name)
}

// Socket returns the socket stored under identifier.
func (g *Group) Socket(identifier string) (Socket, bool) {
	for _, s := range g.Interface {
		if s.Identifier == identifier {
			return s, true
		}
	}
	return Socket{}, false
}

// Modifier binds input values to a group's sockets by identifier.
type Modifier struct {
	Name   string
	Group  *Group
	values map[string]any
}

// NewModifier returns a modifier with no inputs set.
func NewModifier(name string, g *Group) *Modifier {
	return &Modifier{Name: name, Group: g, values: make(map[string]any)}
}

// Set stores v under identifier after checking it against the socket type.
// Float sockets accept float32 and float64; image sockets accept nil.
func (m *Modifier) Set(identifier string, v any) error {
	s, ok := m.Group.Socket(identifier)
	if !ok {
		return fmt.Errorf("%w: identifier %q in group %s", ErrSocketNotFound, identifier, m.Group.Name)
	}

	switch s.Type {
	case SocketObject:
		if v == nil {
			break
		}
		if _, ok := v.(SurfaceSource); !ok {
			return fmt.Errorf("%w: %s wants an object, got %T", ErrSocketType, s.Name, v)
		}
	case SocketFloat:
		switch f := v.(type) {
		case float32:
		case float64:
			v = float32(f)
		default:
			return fmt.Errorf("%w: %s wants a float, got %T", ErrSocketType, s.Name, v)
		}
	case SocketColor:
		if _, ok := v.(math.Color); !ok {
			return fmt.Errorf("%w: %s wants a color, got %T", ErrSocketType, s.Name, v)
		}
	case SocketImage:
		switch img := v.(type) {
		case nil:
		case *image.NRGBA:
			if img == nil {
				v = nil
			}
		default:
			return fmt.Errorf("%w: %s wants an image, got %T", ErrSocketType, s.Name, v)
		}
	case SocketBool:
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("%w: %s wants a bool, got %T", ErrSocketType, s.Name, v)
		}
	}

	m.values[identifier] = v
	return nil
}

// Value returns the value stored under identifier.
func (m *Modifier) Value(identifier string) (any, bool) {
	v, ok := m.values[identifier]
	return v, ok
}

// input returns the value of the socket called name.
func (m *Modifier) input(name string) (any, bool, error) {
	id, err := m.Group.Identifier(name)
	if err != nil {
		return nil, false, err
	}
	v, ok := m.values[id]
	return v, ok, nil
}

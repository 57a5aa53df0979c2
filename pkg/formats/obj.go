// Package formats provides parsers for the mesh interchange formats read by meshpcd.
// OBJ (Wavefront) geometry parser.
package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/meshpcd/pkg/math"
)

// OBJ format errors.
var (
	ErrInvalidOBJLine     = errors.New("invalid OBJ statement")
	ErrOBJIndexOutOfRange = errors.New("OBJ index out of range")
	ErrDegenerateOBJFace  = errors.New("OBJ face has fewer than 3 vertices")
)

// NoIndex marks an absent texture coordinate or normal reference.
const NoIndex = -1

// OBJFaceVertex references the attributes of one face corner.
// Indices are 0-based; TexCoord and Normal are NoIndex when absent.
type OBJFaceVertex struct {
	Position int
	TexCoord int
	Normal   int
}

// OBJFace is a polygon with at least three corners.
type OBJFace struct {
	Vertices []OBJFaceVertex
	Material int    // Index into OBJ.Materials, NoIndex before any usemtl
	Group    string // Active o/g name
}

// OBJ represents a parsed Wavefront OBJ file.
type OBJ struct {
	Name         string      // First object name (o), empty if none
	Positions    []math.Vec3 // v
	TexCoords    []math.Vec2 // vt
	Normals      []math.Vec3 // vn
	Faces        []OBJFace   // f
	Materials    []string    // usemtl names in first-use order
	MaterialLibs []string    // mtllib file names
}

// ParseOBJ parses OBJ data from a byte slice.
func ParseOBJ(data []byte) (*OBJ, error) {
	obj := &OBJ{}
	materialIndex := make(map[string]int)
	currentMaterial := NoIndex
	currentGroup := ""

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		ident, args := fields[0], fields[1:]

		switch ident {
		case "v":
			v, err := parseVec3(args)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			obj.Positions = append(obj.Positions, v)
		case "vn":
			v, err := parseVec3(args)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			obj.Normals = append(obj.Normals, v)
		case "vt":
			vt, err := parseVec2(args)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			obj.TexCoords = append(obj.TexCoords, vt)
		case "f":
			face, err := obj.parseFace(args)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			face.Material = currentMaterial
			face.Group = currentGroup
			obj.Faces = append(obj.Faces, face)
		case "usemtl":
			if len(args) < 1 {
				return nil, fmt.Errorf("line %d: %w: usemtl without name", lineNo, ErrInvalidOBJLine)
			}
			name := strings.Join(args, " ")
			idx, ok := materialIndex[name]
			if !ok {
				idx = len(obj.Materials)
				materialIndex[name] = idx
				obj.Materials = append(obj.Materials, name)
			}
			currentMaterial = idx
		case "mtllib":
			obj.MaterialLibs = append(obj.MaterialLibs, args...)
		case "o", "g":
			currentGroup = strings.Join(args, " ")
			if ident == "o" && obj.Name == "" {
				obj.Name = currentGroup
			}
		default:
			// s, l, p, curves and surfaces carry nothing a surface sampler needs
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ data: %w", err)
	}

	return obj, nil
}

// ParseOBJFile parses an OBJ file from disk.
func ParseOBJFile(path string) (*OBJ, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OBJ file: %w", err)
	}
	return ParseOBJ(data)
}

// Triangles fan-triangulates every face. Each triangle keeps the
// material index of its source face.
func (o *OBJ) Triangles() []OBJTriangle {
	var tris []OBJTriangle
	for _, f := range o.Faces {
		for i := 1; i+1 < len(f.Vertices); i++ {
			tris = append(tris, OBJTriangle{
				Vertices: [3]OBJFaceVertex{f.Vertices[0], f.Vertices[i], f.Vertices[i+1]},
				Material: f.Material,
			})
		}
	}
	return tris
}

// OBJTriangle is one triangle of a fan-triangulated face.
type OBJTriangle struct {
	Vertices [3]OBJFaceVertex
	Material int
}

func (o *OBJ) parseFace(args []string) (OBJFace, error) {
	if len(args) < 3 {
		return OBJFace{}, ErrDegenerateOBJFace
	}

	face := OBJFace{Vertices: make([]OBJFaceVertex, 0, len(args))}
	for _, arg := range args {
		parts := strings.Split(arg, "/")
		if len(parts) > 3 || parts[0] == "" {
			return OBJFace{}, fmt.Errorf("%w: face vertex %q", ErrInvalidOBJLine, arg)
		}

		fv := OBJFaceVertex{TexCoord: NoIndex, Normal: NoIndex}
		var err error
		if fv.Position, err = resolveIndex(parts[0], len(o.Positions)); err != nil {
			return OBJFace{}, err
		}
		if len(parts) > 1 && parts[1] != "" {
			if fv.TexCoord, err = resolveIndex(parts[1], len(o.TexCoords)); err != nil {
				return OBJFace{}, err
			}
		}
		if len(parts) > 2 && parts[2] != "" {
			if fv.Normal, err = resolveIndex(parts[2], len(o.Normals)); err != nil {
				return OBJFace{}, err
			}
		}
		face.Vertices = append(face.Vertices, fv)
	}
	return face, nil
}

// resolveIndex converts a 1-based (or negative, relative) OBJ index to 0-based.
func resolveIndex(s string, count int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: index %q", ErrInvalidOBJLine, s)
	}

	idx := n - 1
	if n < 0 {
		idx = count + n
	}
	if n == 0 || idx < 0 || idx >= count {
		return 0, fmt.Errorf("%w: %d of %d", ErrOBJIndexOutOfRange, n, count)
	}
	return idx, nil
}

func parseVec3(args []string) (math.Vec3, error) {
	if len(args) < 3 {
		return math.Vec3{}, fmt.Errorf("%w: expected 3 components, got %d", ErrInvalidOBJLine, len(args))
	}
	f, err := parseFloats(args[:3])
	if err != nil {
		return math.Vec3{}, err
	}
	return math.Vec3{X: f[0], Y: f[1], Z: f[2]}, nil
}

func parseVec2(args []string) (math.Vec2, error) {
	if len(args) < 1 {
		return math.Vec2{}, fmt.Errorf("%w: texture coordinate without components", ErrInvalidOBJLine)
	}
	n := min(len(args), 2)
	f, err := parseFloats(args[:n])
	if err != nil {
		return math.Vec2{}, err
	}
	vt := math.Vec2{X: f[0]}
	if n > 1 {
		vt.Y = f[1]
	}
	return vt, nil
}

func parseFloats(args []string) ([]float32, error) {
	out := make([]float32, len(args))
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: number %q", ErrInvalidOBJLine, a)
		}
		out[i] = float32(f)
	}
	return out, nil
}

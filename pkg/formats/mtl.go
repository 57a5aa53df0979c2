// Package formats provides parsers for the mesh interchange formats read by meshpcd.
// MTL (Wavefront material library) parser.
package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// MTL format errors.
var (
	ErrInvalidMTLLine   = errors.New("invalid MTL statement")
	ErrMTLWithoutNewmtl = errors.New("MTL statement before newmtl")
)

// MTLMaterial is one material of a material library.
type MTLMaterial struct {
	Name       string
	Diffuse    [3]float32 // Kd, linear RGB
	Dissolve   float32    // d (1 = opaque)
	DiffuseMap string     // map_Kd, relative to the MTL file
}

// MTL represents a parsed material library.
type MTL struct {
	Materials []MTLMaterial
}

// Material returns the material with the given name.
func (m *MTL) Material(name string) (*MTLMaterial, bool) {
	for i := range m.Materials {
		if m.Materials[i].Name == name {
			return &m.Materials[i], true
		}
	}
	return nil, false
}

// ParseMTL parses MTL data from a byte slice.
func ParseMTL(data []byte) (*MTL, error) {
	mtl := &MTL{}
	var current *MTLMaterial

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		ident, args := fields[0], fields[1:]

		if ident == "newmtl" {
			if len(args) < 1 {
				return nil, fmt.Errorf("line %d: %w: newmtl without name", lineNo, ErrInvalidMTLLine)
			}
			mtl.Materials = append(mtl.Materials, MTLMaterial{
				Name:     strings.Join(args, " "),
				Diffuse:  [3]float32{0.8, 0.8, 0.8},
				Dissolve: 1,
			})
			current = &mtl.Materials[len(mtl.Materials)-1]
			continue
		}

		switch ident {
		case "Kd", "d", "Tr", "map_Kd":
			if current == nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, ErrMTLWithoutNewmtl)
			}
		default:
			continue
		}

		switch ident {
		case "Kd":
			if len(args) < 3 {
				return nil, fmt.Errorf("line %d: %w: Kd needs 3 components", lineNo, ErrInvalidMTLLine)
			}
			for i := 0; i < 3; i++ {
				f, err := strconv.ParseFloat(args[i], 32)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w: number %q", lineNo, ErrInvalidMTLLine, args[i])
				}
				current.Diffuse[i] = float32(f)
			}
		case "d", "Tr":
			if len(args) < 1 {
				return nil, fmt.Errorf("line %d: %w: %s without value", lineNo, ErrInvalidMTLLine, ident)
			}
			f, err := strconv.ParseFloat(args[len(args)-1], 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w: number %q", lineNo, ErrInvalidMTLLine, args[len(args)-1])
			}
			if ident == "Tr" {
				f = 1 - f
			}
			current.Dissolve = float32(f)
		case "map_Kd":
			// Options such as -s or -o precede the file name.
			if len(args) < 1 {
				return nil, fmt.Errorf("line %d: %w: map_Kd without file", lineNo, ErrInvalidMTLLine)
			}
			current.DiffuseMap = args[len(args)-1]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading MTL data: %w", err)
	}

	return mtl, nil
}

// ParseMTLFile parses an MTL file from disk.
func ParseMTLFile(path string) (*MTL, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading MTL file: %w", err)
	}
	return ParseMTL(data)
}

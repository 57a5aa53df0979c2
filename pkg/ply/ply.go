// Package ply provides the PLY (Polygon File Format) header model together
// with a header writer and an ASCII reader.
package ply

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// PLY format errors.
var (
	ErrInvalidMagic      = errors.New("invalid PLY magic: expected 'ply'")
	ErrInvalidHeader     = errors.New("invalid PLY header")
	ErrUnsupportedFormat = errors.New("unsupported PLY format")
	ErrTruncatedBody     = errors.New("truncated PLY body")
	ErrMalformedRow      = errors.New("malformed PLY row")
)

// Format is the body encoding declared in the header.
type Format string

const (
	FormatASCII        Format = "ascii"
	FormatBinaryLittle Format = "binary_little_endian"
	FormatBinaryBig    Format = "binary_big_endian"
)

// Scalar property type names.
const (
	TypeChar   = "char"
	TypeUChar  = "uchar"
	TypeShort  = "short"
	TypeUShort = "ushort"
	TypeInt    = "int"
	TypeUInt   = "uint"
	TypeFloat  = "float"
	TypeDouble = "double"
)

var scalarTypes = map[string]bool{
	TypeChar: true, TypeUChar: true, TypeShort: true, TypeUShort: true,
	TypeInt: true, TypeUInt: true, TypeFloat: true, TypeDouble: true,
	"int8": true, "uint8": true, "int16": true, "uint16": true,
	"int32": true, "uint32": true, "float32": true, "float64": true,
}

// Property is one named field of an element.
// List properties have a non-empty CountType.
type Property struct {
	Name      string
	Type      string
	CountType string
}

// IsList reports whether the property is a list property.
func (p Property) IsList() bool {
	return p.CountType != ""
}

// Element is a named group of rows sharing a property schema.
type Element struct {
	Name       string
	Count      int
	Properties []Property
}

// Header is the self-describing preamble of a PLY file.
type Header struct {
	Format   Format
	Version  string
	Comments []string
	Elements []Element
}

// Element returns the element with the given name.
func (h *Header) Element(name string) (*Element, bool) {
	for i := range h.Elements {
		if h.Elements[i].Name == name {
			return &h.Elements[i], true
		}
	}
	return nil, false
}

// WriteHeader writes h, including the terminating end_header line.
func WriteHeader(w io.Writer, h *Header) error {
	version := h.Version
	if version == "" {
		version = "1.0"
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "ply")
	fmt.Fprintf(bw, "format %s %s\n", h.Format, version)
	for _, c := range h.Comments {
		fmt.Fprintf(bw, "comment %s\n", c)
	}
	for _, e := range h.Elements {
		fmt.Fprintf(bw, "element %s %d\n", e.Name, e.Count)
		for _, p := range e.Properties {
			if p.IsList() {
				fmt.Fprintf(bw, "property list %s %s %s\n", p.CountType, p.Type, p.Name)
			} else {
				fmt.Fprintf(bw, "property %s %s\n", p.Type, p.Name)
			}
		}
	}
	fmt.Fprintln(bw, "end_header")
	return bw.Flush()
}

// ReadHeader reads a header up to and including end_header. The reader is
// left positioned at the first body byte.
func ReadHeader(r *bufio.Reader) (*Header, error) {
	line, err := readLine(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMagic, err)
	}
	if line != "ply" {
		return nil, ErrInvalidMagic
	}

	h := &Header{}
	for {
		line, err := readLine(r)
		if err != nil {
			return nil, fmt.Errorf("%w: missing end_header: %v", ErrInvalidHeader, err)
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "format":
			if len(fields) != 3 {
				return nil, fmt.Errorf("%w: %q", ErrInvalidHeader, line)
			}
			h.Format = Format(fields[1])
			h.Version = fields[2]
		case "comment", "obj_info":
			h.Comments = append(h.Comments, strings.TrimSpace(strings.TrimPrefix(line, fields[0])))
		case "element":
			if len(fields) != 3 {
				return nil, fmt.Errorf("%w: %q", ErrInvalidHeader, line)
			}
			count, err := strconv.Atoi(fields[2])
			if err != nil || count < 0 {
				return nil, fmt.Errorf("%w: element count %q", ErrInvalidHeader, fields[2])
			}
			h.Elements = append(h.Elements, Element{Name: fields[1], Count: count})
		case "property":
			if len(h.Elements) == 0 {
				return nil, fmt.Errorf("%w: property before element", ErrInvalidHeader)
			}
			prop, err := parseProperty(fields)
			if err != nil {
				return nil, err
			}
			e := &h.Elements[len(h.Elements)-1]
			e.Properties = append(e.Properties, prop)
		case "end_header":
			if h.Format == "" {
				return nil, fmt.Errorf("%w: missing format line", ErrInvalidHeader)
			}
			return h, nil
		default:
			return nil, fmt.Errorf("%w: unknown keyword %q", ErrInvalidHeader, fields[0])
		}
	}
}

func parseProperty(fields []string) (Property, error) {
	if len(fields) == 5 && fields[1] == "list" {
		if !scalarTypes[fields[2]] || !scalarTypes[fields[3]] {
			return Property{}, fmt.Errorf("%w: list types %q %q", ErrInvalidHeader, fields[2], fields[3])
		}
		return Property{Name: fields[4], Type: fields[3], CountType: fields[2]}, nil
	}
	if len(fields) != 3 || !scalarTypes[fields[1]] {
		return Property{}, fmt.Errorf("%w: property %q", ErrInvalidHeader, strings.Join(fields, " "))
	}
	return Property{Name: fields[2], Type: fields[1]}, nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

package ply

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Table holds the rows of one element, one []float64 per row in
// property order.
type Table struct {
	Element Element
	Rows    [][]float64
}

// Column returns the index of the named property, or -1.
func (t *Table) Column(name string) int {
	for i, p := range t.Element.Properties {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// ReadASCII reads an ASCII PLY file and returns the header together with
// the rows of the named element. Elements declared before it are skipped.
func ReadASCII(r io.Reader, element string) (*Header, *Table, error) {
	br := bufio.NewReader(r)
	h, err := ReadHeader(br)
	if err != nil {
		return nil, nil, err
	}
	if h.Format != FormatASCII {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, h.Format)
	}

	for _, e := range h.Elements {
		if e.Name != element {
			for i := 0; i < e.Count; i++ {
				if _, err := readLine(br); err != nil {
					return nil, nil, fmt.Errorf("%w: element %s row %d", ErrTruncatedBody, e.Name, i)
				}
			}
			continue
		}

		for _, p := range e.Properties {
			if p.IsList() {
				return nil, nil, fmt.Errorf("%w: list property %s in %s", ErrUnsupportedFormat, p.Name, e.Name)
			}
		}

		// Count comes from the file; rows beyond the preallocation grow
		// on demand.
		table := &Table{Element: e, Rows: make([][]float64, 0, min(e.Count, maxPrealloc))}
		for i := 0; i < e.Count; i++ {
			line, err := readLine(br)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: element %s row %d", ErrTruncatedBody, e.Name, i)
			}
			row, err := parseRow(line, len(e.Properties))
			if err != nil {
				return nil, nil, fmt.Errorf("element %s row %d: %w", e.Name, i, err)
			}
			table.Rows = append(table.Rows, row)
		}
		return h, table, nil
	}

	return nil, nil, fmt.Errorf("%w: no element %q", ErrInvalidHeader, element)
}

const maxPrealloc = 1 << 16

func parseRow(line string, want int) ([]float64, error) {
	fields := strings.Fields(line)
	if len(fields) != want {
		return nil, fmt.Errorf("%w: %d fields, want %d", ErrMalformedRow, len(fields), want)
	}
	row := make([]float64, want)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrMalformedRow, f)
		}
		row[i] = v
	}
	return row, nil
}

// Package prompt asks the user to confirm export parameters on a terminal.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Params are the values shown before an export.
type Params struct {
	OutputDir  string
	DensityMin float32
	DensityMax float32
	Meshes     []string
}

// Confirm prints p to out and reads one answer from in. Only "y" and "yes"
// (any case) confirm; end of input declines.
func Confirm(in io.Reader, out io.Writer, p Params) (bool, error) {
	fmt.Fprintln(out, "Export point clouds")
	fmt.Fprintf(out, "  Output directory: %s\n", p.OutputDir)
	fmt.Fprintf(out, "  Density min:      %.1f\n", p.DensityMin)
	fmt.Fprintf(out, "  Density max:      %.1f\n", p.DensityMax)
	if len(p.Meshes) > 0 {
		fmt.Fprintf(out, "  Meshes (%d):       %s\n", len(p.Meshes), strings.Join(p.Meshes, ", "))
	}
	fmt.Fprint(out, "Proceed? [y/N] ")

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("reading answer: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

package pointcloud

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Faultbox/meshpcd/pkg/ply"
)

// WeightPrefix precedes the channel name in weight property names.
const WeightPrefix = "_vertex_group_weight_"

// Header returns the PLY header describing pc.
func Header(pc *PointCloud) *ply.Header {
	props := []ply.Property{
		{Name: "x", Type: ply.TypeFloat},
		{Name: "y", Type: ply.TypeFloat},
		{Name: "z", Type: ply.TypeFloat},
		{Name: "red", Type: ply.TypeUChar},
		{Name: "green", Type: ply.TypeUChar},
		{Name: "blue", Type: ply.TypeUChar},
		{Name: "alpha", Type: ply.TypeUChar},
	}
	for _, ch := range pc.Channels {
		props = append(props, ply.Property{Name: WeightPrefix + ch.Name, Type: ply.TypeFloat})
	}
	return &ply.Header{
		Format:   ply.FormatASCII,
		Version:  "1.0",
		Elements: []ply.Element{{Name: "vertex", Count: pc.Len(), Properties: props}},
	}
}

// Encode writes pc as ASCII PLY. Nothing is written if pc is malformed.
func Encode(w io.Writer, pc *PointCloud) error {
	if err := pc.Validate(); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	if err := ply.WriteHeader(bw, Header(pc)); err != nil {
		return err
	}

	var row []byte
	for i := range pc.Positions {
		row = appendRow(row[:0], pc, i)
		if _, err := bw.Write(row); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// appendRow formats point i: position with two decimals, color as bytes,
// then each weight with two decimals.
func appendRow(b []byte, pc *PointCloud, i int) []byte {
	p := pc.Positions[i]
	b = appendFixed(b, p.X)
	b = append(b, ' ')
	b = appendFixed(b, p.Y)
	b = append(b, ' ')
	b = appendFixed(b, p.Z)

	c := pc.Colors[i]
	for _, v := range c.Array() {
		b = append(b, ' ')
		b = strconv.AppendInt(b, int64(ColorByte(v)), 10)
	}

	for _, ch := range pc.Channels {
		b = append(b, ' ')
		b = appendFixed(b, ch.Values[i])
	}
	return append(b, '\n')
}

func appendFixed(b []byte, f float32) []byte {
	return strconv.AppendFloat(b, float64(f), 'f', 2, 64)
}

// ColorByte converts an sRGB component to a byte by truncating c*255.
func ColorByte(c float32) uint8 {
	v := float64(c) * 255
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}

// WriteFile writes pc to path. The file is written to a temporary sibling
// and renamed into place, so a failed write leaves no partial file.
func WriteFile(path string, pc *PointCloud) (err error) {
	if err := pc.Validate(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = Encode(tmp, pc); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err = tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("setting permissions on %s: %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming into %s: %w", path, err)
	}
	return nil
}

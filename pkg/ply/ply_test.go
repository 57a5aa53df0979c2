package ply

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWriteHeader(t *testing.T) {
	h := &Header{
		Format: FormatASCII,
		Elements: []Element{{
			Name:  "vertex",
			Count: 2,
			Properties: []Property{
				{Name: "x", Type: TypeFloat},
				{Name: "red", Type: TypeUChar},
			},
		}},
	}

	var buf bytes.Buffer
	if err := WriteHeader(&buf, h); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}

	want := "ply\nformat ascii 1.0\nelement vertex 2\nproperty float x\nproperty uchar red\nend_header\n"
	if got := buf.String(); got != want {
		t.Errorf("header mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	h := &Header{
		Format:   FormatASCII,
		Version:  "1.0",
		Comments: []string{"made by a test"},
		Elements: []Element{
			{Name: "vertex", Count: 3, Properties: []Property{{Name: "x", Type: TypeFloat}}},
			{Name: "face", Count: 1, Properties: []Property{{Name: "vertex_indices", Type: TypeInt, CountType: TypeUChar}}},
		},
	}

	var buf bytes.Buffer
	if err := WriteHeader(&buf, h); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	got, err := ReadHeader(bufio.NewReader(&buf))
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if diff := cmp.Diff(h, got); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
}

func TestReadHeader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{"empty", "", ErrInvalidMagic},
		{"wrong magic", "plx\n", ErrInvalidMagic},
		{"no end_header", "ply\nformat ascii 1.0\nelement vertex 1\n", ErrInvalidHeader},
		{"property first", "ply\nformat ascii 1.0\nproperty float x\nend_header\n", ErrInvalidHeader},
		{"bad type", "ply\nformat ascii 1.0\nelement vertex 1\nproperty quad x\nend_header\n", ErrInvalidHeader},
		{"negative count", "ply\nformat ascii 1.0\nelement vertex -1\nend_header\n", ErrInvalidHeader},
		{"no format", "ply\nelement vertex 1\nend_header\n", ErrInvalidHeader},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadHeader(bufio.NewReader(strings.NewReader(tt.data)))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestReadASCII(t *testing.T) {
	data := "ply\r\nformat ascii 1.0\r\n" +
		"element camera 1\r\nproperty float fov\r\n" +
		"element vertex 2\r\nproperty float x\r\nproperty uchar red\r\n" +
		"end_header\r\n" +
		"60\r\n" +
		"1.50 255 \r\n" +
		"-2.00 0\r\n"

	h, table, err := ReadASCII(strings.NewReader(data), "vertex")
	if err != nil {
		t.Fatalf("ReadASCII: %v", err)
	}
	if len(h.Elements) != 2 {
		t.Errorf("expected 2 elements, got %d", len(h.Elements))
	}
	want := [][]float64{{1.5, 255}, {-2, 0}}
	if diff := cmp.Diff(want, table.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	if table.Column("red") != 1 || table.Column("blue") != -1 {
		t.Errorf("unexpected column lookup results")
	}
}

func TestReadASCII_Errors(t *testing.T) {
	header := "ply\nformat ascii 1.0\nelement vertex 2\nproperty float x\nproperty float y\nend_header\n"
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{"truncated", header + "1 2\n", ErrTruncatedBody},
		{"short row", header + "1 2\n3\n", ErrMalformedRow},
		{"not a number", header + "1 2\n3 y\n", ErrMalformedRow},
		{"binary", strings.Replace(header, "ascii", "binary_little_endian", 1), ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ReadASCII(strings.NewReader(tt.data), "vertex")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}

	_, _, err := ReadASCII(strings.NewReader(header+"1 2\n3 4\n"), "face")
	if !errors.Is(err, ErrInvalidHeader) {
		t.Errorf("expected ErrInvalidHeader for missing element, got %v", err)
	}
}

func TestReadASCII_OversizedCount(t *testing.T) {
	data := "ply\nformat ascii 1.0\nelement vertex 9223372036854775807\nproperty float x\nend_header\n1.0\n"
	_, _, err := ReadASCII(strings.NewReader(data), "vertex")
	if !errors.Is(err, ErrTruncatedBody) {
		t.Errorf("expected ErrTruncatedBody, got %v", err)
	}

	// A count above the preallocation still reads every row.
	var b strings.Builder
	b.WriteString("ply\nformat ascii 1.0\nelement vertex 70000\nproperty float x\nend_header\n")
	for i := 0; i < 70000; i++ {
		b.WriteString("1\n")
	}
	_, table, err := ReadASCII(strings.NewReader(b.String()), "vertex")
	if err != nil {
		t.Fatalf("ReadASCII: %v", err)
	}
	if len(table.Rows) != 70000 {
		t.Errorf("expected 70000 rows, got %d", len(table.Rows))
	}
}

package encoding

import "testing"

func TestCleanName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Suzanne", "Suzanne"},
		{"numbered duplicate", "Cube.001", "Cube_001"},
		{"spaces and dashes", "my mesh-02", "my_mesh_02"},
		{"path separators", "a/b\\c", "a_b_c"},
		{"accents folded", "Café", "Cafe"},
		{"non latin replaced per rune", "木", "_"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanName(tt.in, '_'); got != tt.want {
				t.Errorf("CleanName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFoldASCII(t *testing.T) {
	if got := FoldASCII("Ångström"); got != "Angstrom" {
		t.Errorf("FoldASCII() = %q, want %q", got, "Angstrom")
	}
}

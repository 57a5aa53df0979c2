// Package formats provides parsers for the mesh interchange formats read by meshpcd.
package formats

// Note: Wavefront OBJ geometry is implemented in obj.go
// Note: Wavefront MTL material libraries are implemented in mtl.go

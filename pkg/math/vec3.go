// Package math provides the small vector and color types shared by the
// mesh, sampling and point cloud packages.
package math

import "math"

// Vec3 is a 3D vector.
type Vec3 struct {
	X, Y, Z float32
}

// Add returns v + other.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Scale returns v * scalar.
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Cross returns the cross product.
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		v.Y*other.Z - v.Z*other.Y,
		v.Z*other.X - v.X*other.Z,
		v.X*other.Y - v.Y*other.X,
	}
}

// Length returns the magnitude.
func (v Vec3) Length() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y + v.Z*v.Z)))
}

// Distance returns the distance to another point.
func (v Vec3) Distance(other Vec3) float32 {
	return v.Sub(other).Length()
}

// Float64s returns the components widened to float64, in X, Y, Z order.
func (v Vec3) Float64s() []float64 {
	return []float64{float64(v.X), float64(v.Y), float64(v.Z)}
}

// Barycentric returns a*u + b*v + c*w.
func Barycentric(a, b, c Vec3, u, v, w float32) Vec3 {
	return a.Scale(u).Add(b.Scale(v)).Add(c.Scale(w))
}

// TriangleArea returns the area of the triangle abc.
func TriangleArea(a, b, c Vec3) float32 {
	return b.Sub(a).Cross(c.Sub(a)).Length() / 2
}

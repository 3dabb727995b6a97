package geom

import (
	"github.com/go-gl/mathgl/mgl64"
)

// LenSqr returns the squared length of v.
func LenSqr(v mgl64.Vec3) float64 { return v.Dot(v) }

// TriangleArea returns the area of the triangle (a, b, c).
func TriangleArea(a, b, c mgl64.Vec3) float64 {
	return 0.5 * b.Sub(a).Cross(c.Sub(a)).Len()
}

// CotTheta returns the cotangent of the angle between v and w. ok is false
// if the vectors are parallel (or either is zero), in which case the
// cotangent is undefined.
func CotTheta(v, w mgl64.Vec3) (cot float64, ok bool) {
	cos := v.Dot(w)
	sin := v.Cross(w).Len()
	if sin == 0 { return 0, false }
	return cos / sin, true
}

// Centroid returns the average of the given points. It returns the zero
// vector for an empty slice.
func Centroid(xs []mgl64.Vec3) mgl64.Vec3 {
	var sum mgl64.Vec3
	if len(xs) == 0 { return sum }
	for i := range xs { sum = sum.Add(xs[i]) }
	return sum.Mul(1 / float64(len(xs)))
}

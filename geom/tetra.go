/*package geom contains the geometric primitives shared by bodies, constraints
and collisions: axis-aligned boxes, tetrahedra, triangles and the integer
cell arithmetic used by the spatial hash.

All vectors are mgl64 vectors.
*/
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Tetra is a tetrahedron. (Duh!)
type Tetra [4]mgl64.Vec3

const (
	eps = 1e-6
)

// NewTetra creates a tetrahedron from four corners taken out of a position
// array. ok is false if any of the indices is out of range.
func NewTetra(xs []mgl64.Vec3, i0, i1, i2, i3 int) (t Tetra, ok bool) {
	n := len(xs)
	for _, i := range [4]int{i0, i1, i2, i3} {
		if i < 0 || i >= n { return t, false }
	}
	return Tetra{xs[i0], xs[i1], xs[i2], xs[i3]}, true
}

// SignedVolume computes the oriented volume of a tetrahedron. It is positive
// when (c1 - c0, c2 - c0, c3 - c0) form a right-handed frame.
func (t *Tetra) SignedVolume() float64 {
	return SignedVolume(t[0], t[1], t[2], t[3])
}

// Volume computes the volume of a tetrahedron.
func (t *Tetra) Volume() float64 {
	return math.Abs(t.SignedVolume())
}

// SignedVolume computes the oriented volume of the tetrahedron with the given
// corners.
func SignedVolume(c0, c1, c2, c3 mgl64.Vec3) float64 {
	e1, e2, e3 := c1.Sub(c0), c2.Sub(c0), c3.Sub(c0)
	return e1.Dot(e2.Cross(e3)) / 6.0
}

// Contains returns true if a tetrahedron contains the given point and false
// otherwise.
func (t *Tetra) Contains(v mgl64.Vec3) bool {
	vol := t.SignedVolume()
	if vol == 0 { return false }
	sign := math.Signbit(vol)

	volSum := 0.0
	for k := 0; k < 4; k++ {
		sub := *t
		sub[k] = v
		vi := sub.SignedVolume()
		if math.Signbit(vi) != sign && vi != 0 {
			return false
		}
		volSum += math.Abs(vi)
		if volSum > math.Abs(vol)*(1+eps) {
			return false
		}
	}

	return true
}

// Barycenter computes the barycenter of a tetrahedron.
func (t *Tetra) Barycenter() mgl64.Vec3 {
	return t[0].Add(t[1]).Add(t[2]).Add(t[3]).Mul(0.25)
}

// EdgeMatrix returns the matrix whose columns are the three edges leaving
// the corner origin, in cyclic corner order. EdgeMatrix(0) has columns
// (c1 - c0, c2 - c0, c3 - c0) and EdgeMatrix(3) has columns (c0 - c3,
// c1 - c3, c2 - c3).
func (t *Tetra) EdgeMatrix(origin int) mgl64.Mat3 {
	if origin < 0 || origin > 3 {
		panic("origin must be in the range [0, 4).")
	}

	var cols [3]mgl64.Vec3
	j := 0
	for i := 0; i < 4; i++ {
		if i == origin { continue }
		cols[j] = t[i].Sub(t[origin])
		j++
	}
	return mgl64.Mat3FromCols(cols[0], cols[1], cols[2])
}

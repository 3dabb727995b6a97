package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Box is an axis-aligned bounding box. A Box with Min > Max along any axis is
// empty.
type Box struct {
	Min, Max mgl64.Vec3
}

// EmptyBox returns a box which contains nothing and which becomes the
// bounding box of the first point it is expanded by.
func EmptyBox() Box {
	inf := math.Inf(+1)
	return Box{
		Min: mgl64.Vec3{inf, inf, inf},
		Max: mgl64.Vec3{-inf, -inf, -inf},
	}
}

// NewBox returns the box spanned by the two corners, in any order.
func NewBox(a, b mgl64.Vec3) Box {
	box := EmptyBox()
	box.Expand(a)
	box.Expand(b)
	return box
}

// BoundingBox returns the bounding box of a point set.
func BoundingBox(xs []mgl64.Vec3) Box {
	box := EmptyBox()
	for i := range xs { box.Expand(xs[i]) }
	return box
}

// Expand grows the box so that it contains v.
func (b *Box) Expand(v mgl64.Vec3) {
	for d := 0; d < 3; d++ {
		b.Min[d] = math.Min(b.Min[d], v[d])
		b.Max[d] = math.Max(b.Max[d], v[d])
	}
}

// Pad grows the box by r along every axis.
func (b *Box) Pad(r float64) {
	for d := 0; d < 3; d++ {
		b.Min[d] -= r
		b.Max[d] += r
	}
}

// IsEmpty returns true if the box contains no points.
func (b *Box) IsEmpty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Width returns the extent of the box along each axis.
func (b *Box) Width() mgl64.Vec3 { return b.Max.Sub(b.Min) }

// Center returns the center of the box.
func (b *Box) Center() mgl64.Vec3 { return b.Min.Add(b.Max).Mul(0.5) }

// Contains returns true if v is inside the box or on its surface.
func (b *Box) Contains(v mgl64.Vec3) bool {
	return b.Min[0] <= v[0] && v[0] <= b.Max[0] &&
		b.Min[1] <= v[1] && v[1] <= b.Max[1] &&
		b.Min[2] <= v[2] && v[2] <= b.Max[2]
}

// Intersects returns true if the two boxes overlap and false otherwise.
func (b *Box) Intersects(b2 *Box) bool {
	for d := 0; d < 3; d++ {
		if b.Max[d] < b2.Min[d] || b2.Max[d] < b.Min[d] {
			return false
		}
	}
	return true
}

// Intersection returns the overlap of two boxes. The result is empty if they
// do not intersect.
func (b *Box) Intersection(b2 *Box) Box {
	out := Box{}
	for d := 0; d < 3; d++ {
		out.Min[d] = math.Max(b.Min[d], b2.Min[d])
		out.Max[d] = math.Min(b.Max[d], b2.Max[d])
	}
	return out
}

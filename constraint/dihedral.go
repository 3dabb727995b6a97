package constraint

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/phil-mansfield/gopbd/body"
	"github.com/phil-mansfield/gopbd/geom"
)

// Dihedral keeps the angle between triangles (i0, i2, i3) and (i1, i3, i2)
// at its rest value. The correction directions are the angle derivatives of
// Bridson et al., "Simulation of Clothing with Folds and Wrinkles".
type Dihedral struct {
	positionOnly
	i0, i1, i2, i3 int

	RestAngle, Stiffness float64
}

func NewDihedral(
	b *body.Body, i0, i1, i2, i3 int, stiffness float64,
) (*Dihedral, error) {
	if err := b.CheckIndices(i0, i1, i2, i3); err != nil {
		return nil, err
	} else if err := checkStiffness("Bending", stiffness); err != nil {
		return nil, err
	}

	x := b.Positions
	n1, n2, ok := dihedralNormals(x[i0], x[i1], x[i2], x[i3])
	if !ok {
		return nil, degenerate(
			"Triangles (%d, %d, %d) and (%d, %d, %d) have no area",
			i0, i2, i3, i1, i3, i2)
	}

	return &Dihedral{
		i0: i0, i1: i1, i2: i2, i3: i3,
		RestAngle: math.Acos(clamp(n1.Normalize().Dot(n2.Normalize()), -1, 1)),
		Stiffness: stiffness,
	}, nil
}

// dihedralNormals returns the face normals divided by their squared lengths.
func dihedralNormals(p0, p1, p2, p3 mgl64.Vec3) (n1, n2 mgl64.Vec3, ok bool) {
	n1 = p2.Sub(p0).Cross(p3.Sub(p0))
	n2 = p3.Sub(p1).Cross(p2.Sub(p1))
	l1, l2 := geom.LenSqr(n1), geom.LenSqr(n2)
	if l1 == 0 || l2 == 0 { return n1, n2, false }
	return n1.Mul(1 / l1), n2.Mul(1 / l2), true
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

func (c *Dihedral) Kind() body.Kind { return body.KindDihedral }

func (c *Dihedral) ConstrainPositions(b *body.Body, di float64) {
	p0, p1 := b.Predicted[c.i0], b.Predicted[c.i1]
	p2, p3 := b.Predicted[c.i2], b.Predicted[c.i3]
	w := b.InvMass()

	e := p3.Sub(p2)
	elen := e.Len()
	if elen < minLength { return }
	invElen := 1 / elen

	n1, n2, ok := dihedralNormals(p0, p1, p2, p3)
	if !ok { return }

	d0 := n1.Mul(elen)
	d1 := n2.Mul(elen)
	d2 := n1.Mul(p0.Sub(p3).Dot(e) * invElen).Add(n2.Mul(p1.Sub(p3).Dot(e) * invElen))
	d3 := n1.Mul(p2.Sub(p0).Dot(e) * invElen).Add(n2.Mul(p2.Sub(p1).Dot(e) * invElen))

	n1, n2 = n1.Normalize(), n2.Normalize()
	phi := math.Acos(clamp(n1.Dot(n2), -1, 1))

	lambda := (geom.LenSqr(d0) + geom.LenSqr(d1) +
		geom.LenSqr(d2) + geom.LenSqr(d3)) * w
	if lambda == 0 { return }

	lambda = (phi - c.RestAngle) / lambda * c.Stiffness
	if n1.Cross(n2).Dot(e) > 0 { lambda = -lambda }

	s := -w * lambda * di
	b.Predicted[c.i0] = p0.Add(d0.Mul(s))
	b.Predicted[c.i1] = p1.Add(d1.Mul(s))
	b.Predicted[c.i2] = p2.Add(d2.Mul(s))
	b.Predicted[c.i3] = p3.Add(d3.Mul(s))
}

package constraint

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/phil-mansfield/gopbd/body"
	"github.com/phil-mansfield/gopbd/geom"
)

// IsometricBending is the quadratic bending energy of Bergou et al. for two
// triangles (i2, i3, i0) and (i2, i3, i1) sharing the edge (i2, i3). It is
// exact for inextensible surfaces.
type IsometricBending struct {
	positionOnly
	idx [4]int // ordered (i2, i3, i0, i1)

	Stiffness float64
	q         [4][4]float64
}

func NewIsometricBending(
	b *body.Body, i0, i1, i2, i3 int, stiffness float64,
) (*IsometricBending, error) {
	if err := b.CheckIndices(i0, i1, i2, i3); err != nil {
		return nil, err
	} else if err := checkStiffness("Bending", stiffness); err != nil {
		return nil, err
	}

	c := &IsometricBending{idx: [4]int{i2, i3, i0, i1}, Stiffness: stiffness}
	var x [4]mgl64.Vec3
	for k := range x { x[k] = b.Positions[c.idx[k]] }

	e0 := x[1].Sub(x[0])
	e1 := x[2].Sub(x[0])
	e2 := x[3].Sub(x[0])
	e3 := x[2].Sub(x[1])
	e4 := x[3].Sub(x[1])

	var cots [4]float64
	pairs := [4][2]mgl64.Vec3{
		{e0, e1}, {e0, e2}, {e0.Mul(-1), e3}, {e0.Mul(-1), e4},
	}
	for k, pair := range pairs {
		cot, ok := geom.CotTheta(pair[0], pair[1])
		if !ok {
			return nil, degenerate(
				"Triangles (%d, %d, %d) and (%d, %d, %d) have a zero angle",
				i2, i3, i0, i2, i3, i1)
		}
		cots[k] = cot
	}
	c01, c02, c03, c04 := cots[0], cots[1], cots[2], cots[3]

	area := geom.TriangleArea(x[0], x[1], x[2]) + geom.TriangleArea(x[0], x[1], x[3])
	if area == 0 || math.IsNaN(area) {
		return nil, degenerate("Triangles around edge (%d, %d) have no area",
			i2, i3)
	}
	coef := -3 / (2 * area)

	K := [4]float64{c03 + c04, c01 + c02, -c01 - c03, -c02 - c04}
	for j := 0; j < 4; j++ {
		for k := 0; k < 4; k++ {
			c.q[j][k] = coef * K[j] * K[k]
		}
	}

	return c, nil
}

func (c *IsometricBending) Kind() body.Kind { return body.KindIsometricBending }

func (c *IsometricBending) ConstrainPositions(b *body.Body, di float64) {
	var x, grad [4]mgl64.Vec3
	for k := range x { x[k] = b.Predicted[c.idx[k]] }

	energy := 0.0
	for j := 0; j < 4; j++ {
		for k := 0; k < 4; k++ {
			energy += c.q[j][k] * x[k].Dot(x[j])
			grad[j] = grad[j].Add(x[k].Mul(c.q[j][k]))
		}
	}
	energy *= 0.5

	w := b.InvMass()
	sum := 0.0
	for j := range grad { sum += w * geom.LenSqr(grad[j]) }
	if math.Abs(sum) <= minLength { return }

	s := energy / sum
	for j, i := range c.idx {
		b.Predicted[i] = b.Predicted[i].Sub(grad[j].Mul(c.Stiffness * s * w * di))
	}
}

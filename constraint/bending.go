package constraint

import (
	"github.com/phil-mansfield/gopbd/body"
)

// Bending resists folding of a chain of three particles by keeping the end
// particle i2 at a fixed distance from the centroid of the three.
type Bending struct {
	positionOnly
	i0, i1, i2 int

	RestLength, Stiffness float64
}

func NewBending(b *body.Body, i0, i1, i2 int, stiffness float64) (*Bending, error) {
	if err := b.CheckIndices(i0, i1, i2); err != nil {
		return nil, err
	} else if err := checkStiffness("Bending", stiffness); err != nil {
		return nil, err
	}

	x := b.Positions
	center := x[i0].Add(x[i1]).Add(x[i2]).Mul(1.0 / 3)
	return &Bending{
		i0: i0, i1: i1, i2: i2,
		RestLength: x[i2].Sub(center).Len(),
		Stiffness:  stiffness,
	}, nil
}

func (c *Bending) Kind() body.Kind { return body.KindBending }

func (c *Bending) ConstrainPositions(b *body.Body, di float64) {
	p := b.Predicted
	center := p[c.i0].Add(p[c.i1]).Add(p[c.i2]).Mul(1.0 / 3)
	dir := p[c.i2].Sub(center)
	dist := dir.Len()
	if dist < minLength { return }

	diff := 1 - c.RestLength/dist
	force := dir.Mul(diff * c.Stiffness * di)

	// With equal masses the base particles each take a quarter of the
	// correction and the tip takes half.
	m := b.Mass
	w := 4 * m
	base := force.Mul(2 * m / w)
	tip := force.Mul(4 * m / w)

	p[c.i0] = p[c.i0].Add(base)
	p[c.i1] = p[c.i1].Add(base)
	p[c.i2] = p[c.i2].Sub(tip)
}

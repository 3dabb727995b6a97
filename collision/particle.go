package collision

import (
	"math"

	"github.com/phil-mansfield/gopbd/body"
	"github.com/phil-mansfield/gopbd/geom"
)

// ParticleContact separates two overlapping particles of different bodies.
type ParticleContact struct {
	Body0, Body1 *body.Body
	I0, I1       int
}

func (c *ParticleContact) ResolveContact(di float64) {
	b0, b1 := c.Body0, c.Body1
	diameter := b0.Radius + b1.Radius

	normal := b0.Predicted[c.I0].Sub(b1.Predicted[c.I1])
	sqLen := geom.LenSqr(normal)
	if sqLen > diameter*diameter || sqLen <= contactEps { return }

	l := math.Sqrt(sqLen)
	delta := normal.Mul(di * (diameter - l) / l)

	sum := b0.Mass + b1.Mass
	d0, d1 := delta.Mul(b0.Mass/sum), delta.Mul(b1.Mass/sum)

	b0.Predicted[c.I0] = b0.Predicted[c.I0].Add(d0)
	b0.Positions[c.I0] = b0.Positions[c.I0].Add(d0)
	b1.Predicted[c.I1] = b1.Predicted[c.I1].Sub(d1)
	b1.Positions[c.I1] = b1.Positions[c.I1].Sub(d1)
}

// ParticleCollision finds overlapping particles of distinct bodies. Only
// body pairs with intersecting Bounds are examined, and within a pair only
// particles inside the overlap of the two boxes. A body never collides
// with itself.
type ParticleCollision struct {
	cells map[geom.Cell][]int
}

func NewParticleCollision() *ParticleCollision {
	return &ParticleCollision{cells: map[geom.Cell][]int{}}
}

func (c *ParticleCollision) FindContacts(
	bodies []*body.Body, contacts []Contact,
) []Contact {
	for j0 := range bodies {
		for j1 := j0 + 1; j1 < len(bodies); j1++ {
			b0, b1 := bodies[j0], bodies[j1]
			if b0 == b1 || !b0.Bounds.Intersects(&b1.Bounds) { continue }
			contacts = c.pairContacts(b0, b1, contacts)
		}
	}
	return contacts
}

// overlapCandidates returns the indices of particles of b whose spheres can
// reach into the box.
func overlapCandidates(b *body.Body, box *geom.Box, buf []int) []int {
	box2 := *box
	box2.Pad(b.Radius)
	buf = buf[:0]
	for i, p := range b.Predicted {
		if box2.Contains(p) { buf = append(buf, i) }
	}
	return buf
}

func (c *ParticleCollision) pairContacts(
	b0, b1 *body.Body, contacts []Contact,
) []Contact {
	overlap := b0.Bounds.Intersection(&b1.Bounds)
	idx0 := overlapCandidates(b0, &overlap, nil)
	if len(idx0) == 0 { return contacts }
	idx1 := overlapCandidates(b1, &overlap, nil)
	if len(idx1) == 0 { return contacts }

	diameter := b0.Radius + b1.Radius
	d2 := diameter * diameter
	invWidth := 1 / diameter

	for k := range c.cells { delete(c.cells, k) }
	for _, i1 := range idx1 {
		cell := geom.CellOf(b1.Predicted[i1], invWidth)
		c.cells[cell] = append(c.cells[cell], i1)
	}

	for _, i0 := range idx0 {
		p0 := b0.Predicted[i0]
		cell := geom.CellOf(p0, invWidth)
		for _, dc := range geom.Neighborhood {
			for _, i1 := range c.cells[cell.Add(dc)] {
				sqLen := geom.LenSqr(p0.Sub(b1.Predicted[i1]))
				if sqLen <= d2 && sqLen > contactEps {
					contacts = append(contacts, &ParticleContact{b0, b1, i0, i1})
				}
			}
		}
	}

	return contacts
}

var (
	_ Collision = (*ParticleCollision)(nil)
	_ Collision = (*Planar)(nil)
	_ Contact   = (*ParticleContact)(nil)
	_ Contact   = (*PlaneContact)(nil)
)

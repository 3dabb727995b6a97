package constraint

import (
	"github.com/phil-mansfield/gopbd/body"
)

// Distance keeps two particles at their rest separation.
type Distance struct {
	positionOnly
	i0, i1 int

	RestLength float64
	// CompressionStiffness applies when the particles are closer than
	// RestLength and StretchStiffness when they are further apart.
	CompressionStiffness, StretchStiffness float64
}

// NewDistance creates a distance constraint with the same stiffness for
// compression and stretching.
func NewDistance(b *body.Body, i0, i1 int, stiffness float64) (*Distance, error) {
	return NewDistanceStretch(b, i0, i1, stiffness, stiffness)
}

// NewDistanceStretch creates a distance constraint with separate compression
// and stretch stiffnesses.
func NewDistanceStretch(
	b *body.Body, i0, i1 int, compress, stretch float64,
) (*Distance, error) {
	if err := b.CheckIndices(i0, i1); err != nil {
		return nil, err
	} else if err := checkStiffness("Compression", compress); err != nil {
		return nil, err
	} else if err := checkStiffness("Stretch", stretch); err != nil {
		return nil, err
	}

	return &Distance{
		i0: i0, i1: i1,
		RestLength:           b.Positions[i0].Sub(b.Positions[i1]).Len(),
		CompressionStiffness: compress,
		StretchStiffness:     stretch,
	}, nil
}

// Indices returns the constrained particles.
func (c *Distance) Indices() (i0, i1 int) { return c.i0, c.i1 }

func (c *Distance) Kind() body.Kind { return body.KindDistance }

func (c *Distance) ConstrainPositions(b *body.Body, di float64) {
	n := b.Predicted[c.i1].Sub(b.Predicted[c.i0])
	d := n.Len()
	if d < minLength { return }

	k := c.StretchStiffness
	if d < c.RestLength { k = c.CompressionStiffness }

	w := b.InvMass()
	corr := n.Mul(k * (d - c.RestLength) / (2 * w * d))

	b.Predicted[c.i0] = b.Predicted[c.i0].Add(corr.Mul(w * di))
	b.Predicted[c.i1] = b.Predicted[c.i1].Sub(corr.Mul(w * di))
}

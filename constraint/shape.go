package constraint

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/phil-mansfield/gopbd/body"
	"github.com/phil-mansfield/gopbd/geom"
	"github.com/phil-mansfield/gopbd/mat"
)

// PolarTolerance is the relative convergence tolerance of the rotation
// extraction in ShapeMatching.
const PolarTolerance = 1e-6

// ShapeMatching pulls every particle of a body towards the best rigid
// transformation of the body's rest shape, following Müller et al.,
// "Meshless Deformations Based on Shape Matching".
type ShapeMatching struct {
	positionOnly

	Stiffness float64
	RestCm    mgl64.Vec3
	// rest holds each particle's rest offset from RestCm.
	rest     []mgl64.Vec3
	invRest  mgl64.Mat3
	rotation mgl64.Mat3
}

// NewShapeMatching creates a shape matching constraint over every particle
// in the body. It fails if the body does not span three dimensions.
func NewShapeMatching(b *body.Body, stiffness float64) (*ShapeMatching, error) {
	if err := checkStiffness("Shape matching", stiffness); err != nil {
		return nil, err
	} else if b.NumParticles() == 0 {
		return nil, degenerate("Shape matching needs at least one particle")
	}

	c := &ShapeMatching{
		Stiffness: stiffness,
		RestCm:    geom.Centroid(b.Positions),
		rest:      make([]mgl64.Vec3, b.NumParticles()),
		rotation:  mgl64.Ident3(),
	}

	var a mgl64.Mat3
	for i, x := range b.Positions {
		q := x.Sub(c.RestCm)
		c.rest[i] = q
		a = a.Add(outer(q, q).Mul(b.Mass))
	}

	inv, ok := mat.Inverse3(a)
	if !ok {
		return nil, degenerate(
			"Rest shape of %d particles has a singular moment matrix",
			b.NumParticles())
	}
	c.invRest = inv

	return c, nil
}

func (c *ShapeMatching) Kind() body.Kind { return body.KindShapeMatching }

// Rotation returns the rotation found by the most recent projection.
func (c *ShapeMatching) Rotation() mgl64.Mat3 { return c.rotation }

// Goal returns where particle i would be moved at full stiffness by the most
// recent projection, given the current centroid cm.
func (c *ShapeMatching) Goal(cm mgl64.Vec3, i int) mgl64.Vec3 {
	return cm.Add(c.rotation.Mul3x1(c.rest[i]))
}

func (c *ShapeMatching) ConstrainPositions(b *body.Body, di float64) {
	if len(c.rest) != b.NumParticles() {
		panic("ShapeMatching applied to a body with a different particle count.")
	}

	cm := geom.Centroid(b.Predicted)

	var a mgl64.Mat3
	for i, x := range b.Predicted {
		a = a.Add(outer(x.Sub(cm), c.rest[i]).Mul(b.Mass))
	}
	a = a.Mul3(c.invRest)

	c.rotation = mat.PolarDecompositionStable(a, PolarTolerance)

	k := c.Stiffness * di
	for i := range b.Predicted {
		goal := c.Goal(cm, i)
		b.Predicted[i] = b.Predicted[i].Add(goal.Sub(b.Predicted[i]).Mul(k))
	}
}

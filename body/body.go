/*package body contains the particle state shared by every simulated object
and the interface through which constraints act on it.

A Body is a flat set of equal-mass particles. Constraints hold particle
indices into a single body and receive that body as an argument whenever
they are projected, so a constraint never outlives or aliases the arrays it
modifies.
*/
package body

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/exp/rand"

	"github.com/phil-mansfield/gopbd/geom"
)

var (
	ErrNonPositiveMass   = errors.New("non-positive particle mass")
	ErrNonPositiveRadius = errors.New("non-positive particle radius")
	ErrNegativeCount     = errors.New("negative particle count")
	ErrIndexOutOfRange   = errors.New("particle index out of range")
	ErrRepeatedIndex     = errors.New("repeated particle index")
)

// Topology describes how Body.Indices should be read.
type Topology int

const (
	TopologyNone Topology = iota
	TopologyTriangles
	TopologyTetrahedra
)

// Arity returns the number of indices per element, or 0 for TopologyNone.
func (t Topology) Arity() int {
	switch t {
	case TopologyTriangles:
		return 3
	case TopologyTetrahedra:
		return 4
	}
	return 0
}

// Body is a set of particles with a shared radius and mass.
type Body struct {
	// Positions are the committed particle positions. Predicted holds the
	// working positions during a solver step. All three slices always have
	// the same length.
	Positions, Predicted, Velocities []mgl64.Vec3

	Radius, Mass float64
	// Damping is the fraction of velocity removed per unit time.
	Damping float64

	// Bounds is the bounding box of Predicted padded by Radius. It is only
	// valid after UpdateBounds.
	Bounds geom.Box

	// Indices groups particles into triangles or tetrahedra for consumers
	// which render the body.
	Indices  []int
	Topology Topology

	Constraints []Constraint
	statics     []Static
}

// NewBody creates a body with n particles at the origin.
func NewBody(n int, radius, mass float64) (*Body, error) {
	if n < 0 {
		return nil, fmt.Errorf("Need a non-negative particle count, but got %d: %w",
			n, ErrNegativeCount)
	} else if mass <= 0 {
		return nil, fmt.Errorf("Particle mass must be positive, but is %g: %w",
			mass, ErrNonPositiveMass)
	} else if radius <= 0 {
		return nil, fmt.Errorf("Particle radius must be positive, but is %g: %w",
			radius, ErrNonPositiveRadius)
	}

	return &Body{
		Positions:  make([]mgl64.Vec3, n),
		Predicted:  make([]mgl64.Vec3, n),
		Velocities: make([]mgl64.Vec3, n),
		Radius:     radius,
		Mass:       mass,
		Damping:    1,
		Bounds:     geom.EmptyBox(),
	}, nil
}

// NewBodyAt creates a body whose particles start at the given positions.
// Predicted is initialized to match Positions.
func NewBodyAt(ps []mgl64.Vec3, radius, mass float64) (*Body, error) {
	b, err := NewBody(len(ps), radius, mass)
	if err != nil { return nil, err }
	copy(b.Positions, ps)
	copy(b.Predicted, ps)
	b.UpdateBounds()
	return b, nil
}

func (b *Body) NumParticles() int { return len(b.Positions) }

func (b *Body) NumConstraints() int { return len(b.Constraints) }

// NumStatic returns the number of pinned particles.
func (b *Body) NumStatic() int { return len(b.statics) }

// Diameter returns the particle diameter.
func (b *Body) Diameter() float64 { return 2 * b.Radius }

// InvMass returns the inverse particle mass.
func (b *Body) InvMass() float64 { return 1 / b.Mass }

// AddConstraint appends constraints to the body's projection list.
func (b *Body) AddConstraint(cs ...Constraint) {
	b.Constraints = append(b.Constraints, cs...)
}

// CheckIndices returns an error if any index is out of range for the body or
// appears more than once.
func (b *Body) CheckIndices(is ...int) error {
	n := b.NumParticles()
	for k, i := range is {
		if i < 0 || i >= n {
			return fmt.Errorf("Index %d is outside [0, %d): %w",
				i, n, ErrIndexOutOfRange)
		}
		for _, j := range is[:k] {
			if i == j {
				return fmt.Errorf("Index %d is used twice: %w",
					i, ErrRepeatedIndex)
			}
		}
	}
	return nil
}

// ConstrainPositions projects every constraint once, scaling each correction
// by di. Static pins are projected last.
func (b *Body) ConstrainPositions(di float64) {
	for _, c := range b.Constraints {
		c.ConstrainPositions(b, di)
	}
	for i := range b.statics {
		b.statics[i].ConstrainPositions(b, di)
	}
}

// ConstrainVelocities applies every velocity constraint once.
func (b *Body) ConstrainVelocities() {
	for _, c := range b.Constraints {
		c.ConstrainVelocities(b)
	}
	for i := range b.statics {
		b.statics[i].ConstrainVelocities(b)
	}
}

// Pin fixes particle i at its current position.
func (b *Body) Pin(i int) error {
	if err := b.CheckIndices(i); err != nil { return err }
	b.statics = append(b.statics, Static{Index: i, Position: b.Positions[i]})
	return nil
}

// MarkAsStatic pins every particle whose position lies inside box and
// returns the number of particles pinned.
func (b *Body) MarkAsStatic(box geom.Box) int {
	n := 0
	for i := range b.Positions {
		if box.Contains(b.Positions[i]) {
			b.statics = append(b.statics,
				Static{Index: i, Position: b.Positions[i]})
			n++
		}
	}
	return n
}

// IsStatic returns true if particle i is pinned.
func (b *Body) IsStatic(i int) bool {
	for k := range b.statics {
		if b.statics[k].Index == i { return true }
	}
	return false
}

// RandomizePositions jitters every position by up to amount along each
// axis.
func (b *Body) RandomizePositions(rng *rand.Rand, amount float64) {
	for i := range b.Positions {
		r := mgl64.Vec3{
			2*rng.Float64() - 1, 2*rng.Float64() - 1, 2*rng.Float64() - 1,
		}
		b.Positions[i] = b.Positions[i].Add(r.Mul(amount))
	}
}

// RandomizeConstraintOrder shuffles the projection order of the body's
// constraints.
func (b *Body) RandomizeConstraintOrder(rng *rand.Rand) {
	rng.Shuffle(len(b.Constraints), func(i, j int) {
		b.Constraints[i], b.Constraints[j] = b.Constraints[j], b.Constraints[i]
	})
}

// UpdateBounds recomputes Bounds from Predicted.
func (b *Body) UpdateBounds() {
	b.Bounds = geom.BoundingBox(b.Predicted)
	if !b.Bounds.IsEmpty() { b.Bounds.Pad(b.Radius) }
}

// ResetPredicted copies Positions into Predicted.
func (b *Body) ResetPredicted() { copy(b.Predicted, b.Positions) }

/*package fluid implements position based fluids: cubic spline kernels,
static boundary particles, the density constraint, XSPH viscosity and the
solver loop which advances a single fluid body.
*/
package fluid

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/exp/rand"

	"github.com/phil-mansfield/gopbd/body"
	"github.com/phil-mansfield/gopbd/hash"
	"github.com/phil-mansfield/gopbd/source"
)

const (
	DefaultViscosity = 0.02
	// massFactor scales the mass of a particle of rest density filling a
	// cube of side one diameter.
	massFactor = 0.8
)

// Fluid is a body whose particles are held at a rest density by a single
// DensityConstraint.
type Fluid struct {
	*body.Body
	Viscosity float64
	Density   *DensityConstraint
}

// New creates a fluid at the transformed source positions. The particle
// mass is derived from the radius and rest density. The fluid is
// undamped.
func New(
	s source.Source, radius, density float64, rts mgl64.Mat4, opts ...hash.Option,
) (*Fluid, error) {
	if density <= 0 {
		return nil, fmt.Errorf("Fluid rest density must be positive, but is %g.", density)
	} else if radius <= 0 {
		return nil, fmt.Errorf("Particle radius must be positive, but is %g: %w",
			radius, body.ErrNonPositiveRadius)
	}

	d := 2 * radius
	mass := massFactor * d * d * d * density

	b, err := body.NewBodyAt(source.Transform(s.Positions(), rts), radius, mass)
	if err != nil { return nil, err }
	b.Damping = 0

	f := &Fluid{
		Body:      b,
		Viscosity: DefaultViscosity,
		Density:   NewDensityConstraint(b.NumParticles(), radius, density, opts...),
	}
	b.AddConstraint(f.Density)
	return f, nil
}

// SetBoundary makes the fluid interact with a set of boundary particles.
func (f *Fluid) SetBoundary(b *Boundary) { f.Density.Boundary = b }

// Reset clears the per-particle densities and multipliers.
func (f *Fluid) Reset() {
	for i := range f.Density.Lambda {
		f.Density.Lambda[i] = 0
		f.Density.Densities[i] = 0
	}
}

// RandomizePositionOrder shuffles which particle index sits at which
// position and resets Predicted.
func (f *Fluid) RandomizePositionOrder(rng *rand.Rand) {
	rng.Shuffle(f.NumParticles(), func(i, j int) {
		f.Positions[i], f.Positions[j] = f.Positions[j], f.Positions[i]
		f.Velocities[i], f.Velocities[j] = f.Velocities[j], f.Velocities[i]
	})
	f.ResetPredicted()
}

// ComputeViscosity applies XSPH viscosity to the velocities, using the
// neighbor lists and densities of the most recent density projection.
func (f *Fluid) ComputeViscosity() {
	k := f.Viscosity * f.Mass
	h := f.Density.Hash
	kern := &f.Density.Kernel

	for i := range f.Velocities {
		pi := f.Predicted[i]
		for _, j := range h.Neighbors(i) {
			if h.IsBoundary(j) { continue }
			w := kern.W(pi.Sub(f.Predicted[j])) * k / f.Density.Densities[j]
			dv := f.Velocities[i].Sub(f.Velocities[j])
			f.Velocities[i] = f.Velocities[i].Sub(dv.Mul(w))
		}
	}
}

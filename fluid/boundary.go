package fluid

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/phil-mansfield/gopbd/hash"
	"github.com/phil-mansfield/gopbd/source"
)

// Boundary is a set of static particles which fluid particles are pushed
// away from. Psi is the density contribution weight of each boundary
// particle, following Akinci et al., "Versatile Rigid-Fluid Coupling for
// Incompressible SPH".
type Boundary struct {
	Positions []mgl64.Vec3
	Psi       []float64
	Radius    float64
	Density   float64
}

// NewBoundary places boundary particles at the transformed source positions
// and computes their Psi with a kernel of radius 4·radius.
func NewBoundary(
	s source.Source, radius, density float64, rts mgl64.Mat4, opts ...hash.Option,
) (*Boundary, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("Boundary particle radius must be positive, but is %g.", radius)
	} else if density <= 0 {
		return nil, fmt.Errorf("Boundary density must be positive, but is %g.", density)
	}

	b := &Boundary{
		Positions: source.Transform(s.Positions(), rts),
		Radius:    radius,
		Density:   density,
	}
	b.Psi = make([]float64, len(b.Positions))
	if len(b.Positions) == 0 { return b, nil }

	cellSize := 4 * radius
	h := hash.New(len(b.Positions), cellSize, opts...)
	if err := h.NeighborhoodSearch(b.Positions); err != nil {
		return nil, fmt.Errorf("Could not compute boundary volumes: %w", err)
	}

	kern := NewCubicKernel(cellSize)
	for i, p := range b.Positions {
		delta := kern.W0
		for _, j := range h.Neighbors(i) {
			delta += kern.W(p.Sub(b.Positions[j]))
		}
		b.Psi[i] = density / delta
	}

	return b, nil
}

func (b *Boundary) NumParticles() int { return len(b.Positions) }

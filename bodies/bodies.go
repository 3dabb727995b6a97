/*package bodies assembles bodies from particle sources: cloth sheets held
together by distance and bending constraints, deformable solids built from
tetrahedral elements, shape-matched rigid bodies, and free particles.

Every builder takes an affine transformation which is applied to the
source's rest positions before any rest-state data is captured.
*/
package bodies

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/phil-mansfield/gopbd/body"
	"github.com/phil-mansfield/gopbd/constraint"
	"github.com/phil-mansfield/gopbd/source"
)

// place creates a body at the transformed source positions.
func place(s source.Source, radius, mass float64, rts mgl64.Mat4) (*body.Body, error) {
	return body.NewBodyAt(source.Transform(s.Positions(), rts), radius, mass)
}

// NewParticles creates an unconstrained body.
func NewParticles(
	s source.Source, radius, mass float64, rts mgl64.Mat4,
) (*body.Body, error) {
	return place(s, radius, mass, rts)
}

// RigidStiffness is the shape matching stiffness of rigid bodies.
const RigidStiffness = 1.0

// NewRigid creates a body which keeps its rest shape through a single
// shape matching constraint over all of its particles.
func NewRigid(
	s source.Source, radius, mass float64, rts mgl64.Mat4,
) (*body.Body, error) {
	b, err := place(s, radius, mass, rts)
	if err != nil { return nil, err }

	c, err := constraint.NewShapeMatching(b, RigidStiffness)
	if err != nil {
		return nil, fmt.Errorf("Could not build rigid body: %w", err)
	}
	b.AddConstraint(c)
	return b, nil
}

// TetraModel selects the element used for each tetrahedron of a deformable
// body.
type TetraModel int

const (
	StrainModel TetraModel = iota
	FEMModel
)

func (m TetraModel) String() string {
	switch m {
	case StrainModel:
		return "Strain"
	case FEMModel:
		return "FEM"
	}
	return "Unknown"
}

// TetraModelFromString parses the names returned by TetraModel.String.
func TetraModelFromString(s string) (TetraModel, bool) {
	for _, m := range []TetraModel{StrainModel, FEMModel} {
		if m.String() == s { return m, true }
	}
	return StrainModel, false
}

// DeformableParams describes the material of a deformable body.
type DeformableParams struct {
	Radius, Mass float64
	Model        TetraModel
	// Stiffness is used by StrainModel, YoungsModulus and PoissonRatio by
	// FEMModel.
	Stiffness                   float64
	YoungsModulus, PoissonRatio float64
}

// NewDeformable creates a body with one element per tetrahedron of the
// source.
func NewDeformable(
	s source.TetraSource, p *DeformableParams, rts mgl64.Mat4,
) (*body.Body, error) {
	b, err := place(s, p.Radius, p.Mass, rts)
	if err != nil { return nil, err }

	is := s.Indices()
	b.Indices = append([]int{}, is...)
	b.Topology = body.TopologyTetrahedra

	for k := 0; k+4 <= len(is); k += 4 {
		c, err := newElement(b, p, is[k], is[k+1], is[k+2], is[k+3])
		if err != nil {
			return nil, fmt.Errorf("Could not build tetrahedron %d: %w", k/4, err)
		}
		b.AddConstraint(c)
	}

	return b, nil
}

func newElement(
	b *body.Body, p *DeformableParams, i0, i1, i2, i3 int,
) (body.Constraint, error) {
	switch p.Model {
	case StrainModel:
		return constraint.NewStrainTetra(b, i0, i1, i2, i3, p.Stiffness)
	case FEMModel:
		c, err := constraint.NewFEMTetra(b, i0, i1, i2, i3, p.YoungsModulus)
		if err != nil { return nil, err }
		if p.PoissonRatio != 0 { c.PoissonRatio = p.PoissonRatio }
		return c, nil
	}
	panic(fmt.Sprintf("Unknown TetraModel %d.", p.Model))
}

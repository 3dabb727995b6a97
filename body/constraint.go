package body

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Kind enumerates the constraint families.
type Kind int

const (
	KindStatic Kind = iota
	KindDistance
	KindBending
	KindIsometricBending
	KindDihedral
	KindShapeMatching
	KindStrainTetra
	KindFEMTetra
	KindFluidDensity
)

var kindNames = [...]string{
	"Static", "Distance", "Bending", "IsometricBending", "Dihedral",
	"ShapeMatching", "StrainTetra", "FEMTetra", "FluidDensity",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) { return "Unknown" }
	return kindNames[k]
}

// Constraint is a geometric relation between particles of one body.
// ConstrainPositions moves b.Predicted towards satisfying the relation,
// scaling the correction by di. ConstrainVelocities may adjust b.Velocities
// after they are derived from the corrected positions.
type Constraint interface {
	ConstrainPositions(b *Body, di float64)
	ConstrainVelocities(b *Body)
	Kind() Kind
}

// Static pins one particle to a fixed point.
type Static struct {
	Index    int
	Position mgl64.Vec3
}

// ConstrainPositions overwrites both the committed and predicted position of
// the pinned particle. di is ignored.
func (s *Static) ConstrainPositions(b *Body, di float64) {
	b.Positions[s.Index] = s.Position
	b.Predicted[s.Index] = s.Position
}

func (s *Static) ConstrainVelocities(b *Body) {}

func (s *Static) Kind() Kind { return KindStatic }

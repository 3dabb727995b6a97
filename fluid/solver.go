package fluid

import (
	"github.com/phil-mansfield/gopbd/force"
)

// Solver advances a single fluid.
type Solver struct {
	Fluid  *Fluid
	forces []force.Force
	steps  int
}

func NewSolver(f *Fluid) *Solver {
	return &Solver{Fluid: f}
}

func (s *Solver) AddForce(f force.Force) {
	for _, g := range s.forces {
		if g == f { return }
	}
	s.forces = append(s.forces, f)
}

// Steps returns the number of steps taken.
func (s *Solver) Steps() int { return s.steps }

// Step advances the fluid by dt. A zero dt does nothing.
func (s *Solver) Step(dt float64) {
	if dt == 0 { return }
	f := s.Fluid

	for i, v := range f.Velocities {
		f.Velocities[i] = v.Sub(v.Mul(f.Damping * dt))
	}
	for _, g := range s.forces {
		g.ApplyForce(dt, f.Body)
	}

	for i := range f.Predicted {
		f.Predicted[i] = f.Positions[i].Add(f.Velocities[i].Mul(dt))
	}

	f.ConstrainPositions(1)

	invDt := 1 / dt
	for i := range f.Velocities {
		f.Velocities[i] = f.Predicted[i].Sub(f.Positions[i]).Mul(invDt)
	}

	f.ComputeViscosity()

	copy(f.Positions, f.Predicted)
	f.UpdateBounds()
	s.steps++
}

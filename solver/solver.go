/*package solver advances a set of bodies with position based dynamics.

Each step applies external forces to velocities, predicts positions,
resolves contacts, projects every body's constraints onto the predicted
positions and derives the new velocities from the total correction.
*/
package solver

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/exp/rand"

	"github.com/phil-mansfield/gopbd/body"
	"github.com/phil-mansfield/gopbd/collision"
	"github.com/phil-mansfield/gopbd/force"
)

const (
	DefaultSolverIterations    = 4
	DefaultCollisionIterations = 2
	DefaultSleepThreshold      = 0.0
)

// Stats describes the most recent step.
type Stats struct {
	Steps       int
	Contacts    int
	Particles   int
	Constraints int
}

// Solver advances bodies with a fixed number of constraint and contact
// iterations per step.
type Solver struct {
	SolverIterations, CollisionIterations int
	// SleepThreshold is the speed below which particle velocities are
	// zeroed at the end of a step.
	SleepThreshold float64

	bodies     []*body.Body
	forces     []force.Force
	collisions []collision.Collision
	contacts   []collision.Contact

	stats Stats
}

// Option configures a Solver.
type Option func(s *Solver)

func SolverIterations(n int) Option {
	return func(s *Solver) { s.SolverIterations = n }
}

func CollisionIterations(n int) Option {
	return func(s *Solver) { s.CollisionIterations = n }
}

func SleepThreshold(v float64) Option {
	return func(s *Solver) { s.SleepThreshold = v }
}

func New(opts ...Option) *Solver {
	s := &Solver{
		SolverIterations:    DefaultSolverIterations,
		CollisionIterations: DefaultCollisionIterations,
		SleepThreshold:      DefaultSleepThreshold,
	}
	for _, opt := range opts { opt(s) }
	return s
}

// Validate returns an error if the solver's parameters are unusable.
func (s *Solver) Validate() error {
	if s.SolverIterations < 1 {
		return fmt.Errorf("SolverIterations must be at least 1, but is %d.",
			s.SolverIterations)
	} else if s.CollisionIterations < 1 {
		return fmt.Errorf("CollisionIterations must be at least 1, but is %d.",
			s.CollisionIterations)
	} else if s.SleepThreshold < 0 {
		return fmt.Errorf("SleepThreshold must be non-negative, but is %g.",
			s.SleepThreshold)
	}
	return nil
}

// AddBody adds a body to the solver. Adding a body twice does nothing.
func (s *Solver) AddBody(b *body.Body) {
	for _, b2 := range s.bodies {
		if b2 == b { return }
	}
	s.bodies = append(s.bodies, b)
}

// AddForce adds a force which acts on every body. Adding a force twice
// does nothing.
func (s *Solver) AddForce(f force.Force) {
	for _, f2 := range s.forces {
		if f2 == f { return }
	}
	s.forces = append(s.forces, f)
}

// AddCollision adds a contact generator. Adding a collision twice does
// nothing.
func (s *Solver) AddCollision(c collision.Collision) {
	for _, c2 := range s.collisions {
		if c2 == c { return }
	}
	s.collisions = append(s.collisions, c)
}

func (s *Solver) Bodies() []*body.Body { return s.bodies }

// Stats returns the counters of the most recent step.
func (s *Solver) Stats() Stats { return s.stats }

// RandomizeConstraintOrder shuffles the constraint list of every body.
func (s *Solver) RandomizeConstraintOrder(rng *rand.Rand) {
	for _, b := range s.bodies { b.RandomizeConstraintOrder(rng) }
}

// Step advances every body by dt. A zero dt does nothing.
func (s *Solver) Step(dt float64) {
	if dt == 0 { return }

	s.applyForces(dt)
	s.predict(dt)
	for _, b := range s.bodies { b.UpdateBounds() }

	s.contacts = s.contacts[:0]
	for _, c := range s.collisions {
		s.contacts = c.FindContacts(s.bodies, s.contacts)
	}

	di := 1 / float64(s.CollisionIterations)
	for i := 0; i < s.CollisionIterations; i++ {
		for _, c := range s.contacts { c.ResolveContact(di) }
	}

	di = 1 / float64(s.SolverIterations)
	for i := 0; i < s.SolverIterations; i++ {
		for _, b := range s.bodies { b.ConstrainPositions(di) }
	}

	s.updateVelocities(dt)
	for _, b := range s.bodies { b.ConstrainVelocities() }

	s.stats.Particles, s.stats.Constraints = 0, 0
	for _, b := range s.bodies {
		copy(b.Positions, b.Predicted)
		b.UpdateBounds()
		s.stats.Particles += b.NumParticles()
		s.stats.Constraints += b.NumConstraints()
	}

	s.stats.Steps++
	s.stats.Contacts = len(s.contacts)
}

func (s *Solver) applyForces(dt float64) {
	for _, b := range s.bodies {
		for i, v := range b.Velocities {
			b.Velocities[i] = v.Sub(v.Mul(b.Damping * dt))
		}
		for _, f := range s.forces { f.ApplyForce(dt, b) }
	}
}

func (s *Solver) predict(dt float64) {
	for _, b := range s.bodies {
		for i := range b.Predicted {
			b.Predicted[i] = b.Positions[i].Add(b.Velocities[i].Mul(dt))
		}
	}
}

func (s *Solver) updateVelocities(dt float64) {
	invDt := 1 / dt
	sleep := s.SleepThreshold * dt
	sleep2 := sleep * sleep

	for _, b := range s.bodies {
		for i := range b.Velocities {
			d := b.Predicted[i].Sub(b.Positions[i])
			v := d.Mul(invDt)
			if v.Dot(v) < sleep2 { v = mgl64.Vec3{} }
			b.Velocities[i] = v
		}
	}
}

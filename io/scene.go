package io

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/exp/rand"

	"github.com/phil-mansfield/gopbd/bodies"
	"github.com/phil-mansfield/gopbd/body"
	"github.com/phil-mansfield/gopbd/collision"
	"github.com/phil-mansfield/gopbd/fluid"
	"github.com/phil-mansfield/gopbd/force"
	"github.com/phil-mansfield/gopbd/hash"
	"github.com/phil-mansfield/gopbd/solver"
	"github.com/phil-mansfield/gopbd/source"
)

// Scene is a set of bodies built from a scene file along with the solver
// which advances them.
type Scene struct {
	Run    *RunConfig
	Names  []string
	Bodies []*body.Body

	solver *solver.Solver
	fluid  *fluid.Solver
	steps  int
	time   float64
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m { keys = append(keys, k) }
	sort.Strings(keys)
	return keys
}

// NewScene builds the bodies of a validated scene file. Bodies are built
// in order of kind and then name.
func NewScene(w *SceneWrapper) (*Scene, error) {
	sc := &Scene{Run: &w.Run}
	gravity := &force.Gravity{Acceleration: w.Run.Gravity()}
	rng := rand.New(rand.NewSource(uint64(w.Run.Seed)))

	if w.IsFluid() {
		f, err := sc.buildFluid(w, rng)
		if err != nil { return nil, err }

		sc.fluid = fluid.NewSolver(f)
		sc.fluid.AddForce(gravity)
		return sc, nil
	}

	sc.solver = w.Run.Solver()
	sc.solver.AddForce(gravity)
	if err := sc.buildSolids(w, rng); err != nil { return nil, err }

	if w.Run.Plane {
		sc.solver.AddCollision(collision.NewPlanar(
			mgl64.Vec3{0, 1, 0}, -w.Run.PlaneHeight,
		))
	}
	if len(sc.Bodies) > 1 {
		sc.solver.AddCollision(collision.NewParticleCollision())
	}
	if w.Run.ShuffleConstraints { sc.solver.RandomizeConstraintOrder(rng) }

	return sc, nil
}

func (sc *Scene) add(kind, name string, b *body.Body) {
	sc.Names = append(sc.Names, fmt.Sprintf("%s '%s'", kind, name))
	sc.Bodies = append(sc.Bodies, b)
	if sc.solver != nil { sc.solver.AddBody(b) }
}

// perturb applies the jitter and static region of a body section.
func perturb(
	p *PerturbConfig, kind, name string, b *body.Body, rng *rand.Rand,
) error {
	if n := p.Perturb(b, rng); n == 0 && p.Static {
		return fmt.Errorf("The Static box of %s '%s' contains no particles.",
			kind, name)
	}
	return nil
}

func (sc *Scene) buildSolids(w *SceneWrapper, rng *rand.Rand) error {
	for _, name := range sortedKeys(w.Cloth) {
		c := w.Cloth[name]
		g := c.Source()
		b, err := bodies.NewCloth(g, c.Params(), c.RTS())
		if err != nil { return fmt.Errorf("Cloth '%s': %w", name, err) }
		for _, i := range c.Pinned(g) {
			if err := b.Pin(i); err != nil {
				return fmt.Errorf("Cloth '%s': %w", name, err)
			}
		}
		if err := perturb(&c.PerturbConfig, "Cloth", name, b, rng); err != nil {
			return err
		}
		sc.add("Cloth", name, b)
	}

	for _, name := range sortedKeys(w.Deformable) {
		c := w.Deformable[name]
		b, err := bodies.NewDeformable(c.Source(), c.Params(), c.RTS())
		if err != nil { return fmt.Errorf("Deformable '%s': %w", name, err) }
		if err := perturb(&c.PerturbConfig, "Deformable", name, b, rng); err != nil {
			return err
		}
		sc.add("Deformable", name, b)
	}

	for _, name := range sortedKeys(w.Rigid) {
		c := w.Rigid[name]
		s, err := c.Source(c.Radius)
		if err != nil { return fmt.Errorf("Rigid '%s': %w", name, err) }
		b, err := bodies.NewRigid(s, c.Radius, c.Mass, c.RTS())
		if err != nil { return fmt.Errorf("Rigid '%s': %w", name, err) }
		if err := perturb(&c.PerturbConfig, "Rigid", name, b, rng); err != nil {
			return err
		}
		sc.add("Rigid", name, b)
	}

	return nil
}

func (sc *Scene) buildFluid(
	w *SceneWrapper, rng *rand.Rand,
) (*fluid.Fluid, error) {
	name := sortedKeys(w.Fluid)[0]
	c := w.Fluid[name]

	s, err := c.Source(c.Radius)
	if err != nil { return nil, fmt.Errorf("Fluid '%s': %w", name, err) }
	f, err := fluid.New(s, c.Radius, c.Density, c.RTS(),
		hash.MaxNeighbors(c.MaxNeighbors))
	if err != nil { return nil, fmt.Errorf("Fluid '%s': %w", name, err) }
	f.Viscosity = c.Viscosity
	f.Density.Iterations = c.Iterations
	if w.Run.ShuffleConstraints { f.RandomizePositionOrder(rng) }
	if err := perturb(&c.PerturbConfig, "Fluid", name, f.Body, rng); err != nil {
		return nil, err
	}
	sc.add("Fluid", name, f.Body)

	if len(w.Boundary) == 0 { return f, nil }

	// Boundary sections are merged into a single particle set.
	var (
		ps              []mgl64.Vec3
		radius, density float64
	)
	for k, bname := range sortedKeys(w.Boundary) {
		bc := w.Boundary[bname]
		if k == 0 {
			radius, density = bc.Radius, bc.Density
		} else if bc.Radius != radius || bc.Density != density {
			return nil, fmt.Errorf("Boundary '%s' has a different Radius or "+
				"Density than the other Boundary sections.", bname)
		}

		bs, err := bc.Source()
		if err != nil { return nil, fmt.Errorf("Boundary '%s': %w", bname, err) }
		ps = append(ps, source.Transform(bs.Positions(), bc.RTS())...)
	}

	bound, err := fluid.NewBoundary(source.NewParticles(radius, ps), radius,
		density, mgl64.Ident4(), hash.MaxNeighbors(c.MaxNeighbors))
	if err != nil { return nil, err }
	f.SetBoundary(bound)

	return f, nil
}

// IsFluid returns true if the scene is advanced by the fluid solver.
func (sc *Scene) IsFluid() bool { return sc.fluid != nil }

// Steps returns the number of steps taken.
func (sc *Scene) Steps() int { return sc.steps }

// Time returns the simulated time.
func (sc *Scene) Time() float64 { return sc.time }

// NumParticles returns the number of particles across all bodies.
func (sc *Scene) NumParticles() int {
	n := 0
	for _, b := range sc.Bodies { n += b.NumParticles() }
	return n
}

// Contacts returns the number of contacts found in the most recent step.
func (sc *Scene) Contacts() int {
	if sc.solver == nil { return 0 }
	return sc.solver.Stats().Contacts
}

// Step advances the scene by one time step.
func (sc *Scene) Step() {
	dt := sc.Run.TimeStep
	if sc.fluid != nil {
		sc.fluid.Step(dt)
	} else {
		sc.solver.Step(dt)
	}
	sc.steps++
	sc.time += dt
}

// Frame returns a snapshot of the scene's current state.
func (sc *Scene) Frame() *Frame {
	n := sc.NumParticles()
	f := &Frame{
		Header: FrameHeader{
			Step:      int64(sc.steps),
			Time:      sc.time,
			Bodies:    int64(len(sc.Bodies)),
			Particles: int64(n),
		},
		Counts:     make([]int64, 0, len(sc.Bodies)),
		Positions:  make([]mgl64.Vec3, 0, n),
		Velocities: make([]mgl64.Vec3, 0, n),
	}

	for _, b := range sc.Bodies {
		f.Counts = append(f.Counts, int64(b.NumParticles()))
		f.Positions = append(f.Positions, b.Positions...)
		f.Velocities = append(f.Velocities, b.Velocities...)
	}
	return f
}

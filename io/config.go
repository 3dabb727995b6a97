package io

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/exp/rand"
	"gopkg.in/gcfg.v1"

	"github.com/phil-mansfield/gopbd/bodies"
	"github.com/phil-mansfield/gopbd/body"
	"github.com/phil-mansfield/gopbd/constraint"
	"github.com/phil-mansfield/gopbd/fluid"
	"github.com/phil-mansfield/gopbd/force"
	"github.com/phil-mansfield/gopbd/geom"
	"github.com/phil-mansfield/gopbd/hash"
	"github.com/phil-mansfield/gopbd/solver"
	"github.com/phil-mansfield/gopbd/source"
)

const (
	DefaultTimeStep  = 1.0 / 60
	DefaultSteps     = 600
	DefaultLogEvery  = 60
	DefaultDensity   = 1000.0
	DefaultYoungs    = 1e4
	DefaultBendStiff = 0.1
)

const (
	ExampleRunFile = `[Run]

#######################
# Required Parameters #
#######################

# Number of time steps to take.
Steps = 600
# Length of a single time step in seconds.
TimeStep = 0.0166667

#######################
# Optional Parameters #
#######################

# Directory which frame files will be written to. If not set, no frames are
# written.
# Output = path/to/output/dir
# Number of steps between written frames. Default is 1 if Output is set.
# OutputEvery = 1

# Constraint projection passes per step. Default is 4.
# SolverIterations = 4
# Contact resolution passes per step. Default is 2.
# CollisionIterations = 2
# Speed below which particles are put to sleep. Default is 0.
# SleepThreshold = 0

# Gravitational acceleration. Default is (0, -9.81, 0).
# GravityX = 0
# GravityY = -9.81
# GravityZ = 0

# Adds a ground plane with an upwards normal at the given height.
# Plane = true
# PlaneHeight = 0

# Seed used when shuffling constraints and fluid particles.
# Seed = 0
# ShuffleConstraints = false

# Number of steps between progress messages. Default is 60.
# LogEvery = 60

# Output files which are useful for profiling and debugging.
# ProfileFile = prof.out
# LogFile = log.out`

	ExampleClothFile = `[Cloth "my_cloth"]

#######################
# Required Parameters #
#######################

# Side lengths of the sheet along x and z.
Width = 2
Height = 2
# Particle radius. Neighboring particles are about one diameter apart.
Radius = 0.05

#######################
# Optional Parameters #
#######################

# Mass of a single particle. Default is 1.
# Mass = 1

# Stiffness of the stretch and shear constraints. Default is 1.
# StretchStiffness = 1
# Bending can be set to one of:
# [ ThreePoint | Dihedral | Isometric ]
# Default is Dihedral.
# Bending = Dihedral
# Default is 0.1.
# BendStiffness = 0.1

# Pin can be set to one of:
# [ None | Corners | Edge ]
# Corners pins the two corners at the low z edge, Edge pins the whole edge.
# Default is None.
# Pin = Corners

# Position, rotation in degrees, and uniform scale of the body.
# X = 0
# Y = 1
# Z = 0
# RotateX = 0
# RotateY = 0
# RotateZ = 0
# Scale = 1

# Largest random offset added to each particle coordinate. Default is 0.
# Jitter = 0
# Pins every particle inside the box running from (StaticMinX, StaticMinY,
# StaticMinZ) to (StaticMaxX, StaticMaxY, StaticMaxZ). The box is in world
# coordinates and is applied after Jitter.
# Static = false
# StaticMinX = -1
# StaticMinY = 0
# StaticMinZ = -1
# StaticMaxX = 1
# StaticMaxY = 0.1
# StaticMaxZ = 1`

	ExampleDeformableFile = `[Deformable "my_jelly"]

#######################
# Required Parameters #
#######################

# Side lengths of the block along x, y and z.
Width = 0.5
Height = 0.5
Depth = 0.5
Radius = 0.05

#######################
# Optional Parameters #
#######################

# Mass = 1

# Model can be set to one of:
# [ Strain | FEM ]
# Default is Strain.
# Model = Strain
# Used by the Strain model. Default is 1.
# Stiffness = 1
# Used by the FEM model. Defaults are 1e4 and 0.3.
# YoungsModulus = 1e4
# PoissonRatio = 0.3

# X = 0
# Y = 1
# Z = 0
# RotateX = 0
# RotateY = 0
# RotateZ = 0
# Scale = 1

# Largest random offset added to each particle coordinate. Default is 0.
# Jitter = 0
# Pins every particle inside the box running from (StaticMinX, StaticMinY,
# StaticMinZ) to (StaticMaxX, StaticMaxY, StaticMaxZ). The box is in world
# coordinates and is applied after Jitter.
# Static = false
# StaticMinX = -1
# StaticMinY = 0
# StaticMinZ = -1
# StaticMaxX = 1
# StaticMaxY = 0.1
# StaticMaxZ = 1`

	ExampleRigidFile = `[Rigid "my_box"]

#######################
# Required Parameters #
#######################

# Either the side lengths of a block of particles...
Width = 0.4
Height = 0.4
Depth = 0.4
# ... or a whitespace-separated text file with one particle per line. The
# columns holding x, y and z default to 0, 1 and 2.
# Input = path/to/particles.txt
# XColumn = 0
# YColumn = 1
# ZColumn = 2
Radius = 0.05

#######################
# Optional Parameters #
#######################

# Mass = 1

# X = 0
# Y = 1
# Z = 0
# RotateX = 0
# RotateY = 0
# RotateZ = 0
# Scale = 1

# Largest random offset added to each particle coordinate. Default is 0.
# Jitter = 0
# Pins every particle inside the box running from (StaticMinX, StaticMinY,
# StaticMinZ) to (StaticMaxX, StaticMaxY, StaticMaxZ). The box is in world
# coordinates and is applied after Jitter.
# Static = false
# StaticMinX = -1
# StaticMinY = 0
# StaticMinZ = -1
# StaticMaxX = 1
# StaticMaxY = 0.1
# StaticMaxZ = 1`

	ExampleFluidFile = `[Fluid "my_water"]

#######################
# Required Parameters #
#######################

# Either a block or an Input table, as for Rigid bodies.
Width = 0.5
Height = 0.5
Depth = 0.5
Radius = 0.025

#######################
# Optional Parameters #
#######################

# Rest density. Default is 1000.
# Density = 1000
# XSPH viscosity. Default is 0.02.
# Viscosity = 0.02
# Density solver passes per step. Default is 5.
# Iterations = 5
# Neighbor storage per particle. Default is 60.
# MaxNeighbors = 60

# X = 0
# Y = 0.3
# Z = 0

# Largest random offset added to each particle coordinate. Default is 0.
# Jitter = 0
# Pins every particle inside the box running from (StaticMinX, StaticMinY,
# StaticMinZ) to (StaticMaxX, StaticMaxY, StaticMaxZ). The box is in world
# coordinates and is applied after Jitter.
# Static = false
# StaticMinX = -1
# StaticMinY = 0
# StaticMinZ = -1
# StaticMaxX = 1
# StaticMaxY = 0.1
# StaticMaxZ = 1

[Boundary "my_tank"]

# Boundary particles fill a block. If Thickness is set, only walls of that
# thickness and a floor are kept, making an open box.
Width = 1.2
Height = 1
Depth = 1.2
Radius = 0.025
# Thickness = 0.05

# Density = 1000
# X = 0
# Y = 0.5
# Z = 0`
)

// SharedConfig holds the file parameters every scene has.
type SharedConfig struct {
	// Optional
	Output               string
	LogFile, ProfileFile string
}

func (con *SharedConfig) ValidOutput() bool {
	return con.Output != ""
}
func (con *SharedConfig) ValidLogFile() bool {
	return con.LogFile != ""
}
func (con *SharedConfig) ValidProfileFile() bool {
	return con.ProfileFile != ""
}

type RunConfig struct {
	SharedConfig

	// Required
	Steps    int
	TimeStep float64

	// Optional
	OutputEvery, LogEvery                 int
	SolverIterations, CollisionIterations int
	SleepThreshold                        float64
	GravityX, GravityY, GravityZ          float64
	Plane                                 bool
	PlaneHeight                           float64
	Seed                                  int64
	ShuffleConstraints                    bool
}

func (con *RunConfig) CheckInit() error {
	if con.Steps <= 0 {
		return fmt.Errorf("Need to specify a positive 'Steps' value, not %d.", con.Steps)
	} else if con.TimeStep <= 0 {
		return fmt.Errorf(
			"Need to specify a positive 'TimeStep' value, not %g.", con.TimeStep,
		)
	} else if con.LogEvery <= 0 {
		return fmt.Errorf("'LogEvery' must be positive, but is %d.", con.LogEvery)
	} else if con.OutputEvery < 0 {
		return fmt.Errorf("'OutputEvery' must be non-negative, but is %d.",
			con.OutputEvery)
	}

	if con.ValidOutput() && con.OutputEvery == 0 { con.OutputEvery = 1 }

	return con.Solver().Validate()
}

// Gravity returns the configured gravitational acceleration.
func (con *RunConfig) Gravity() mgl64.Vec3 {
	return mgl64.Vec3{con.GravityX, con.GravityY, con.GravityZ}
}

// Solver returns an empty solver with the configured iteration counts.
func (con *RunConfig) Solver() *solver.Solver {
	return solver.New(
		solver.SolverIterations(con.SolverIterations),
		solver.CollisionIterations(con.CollisionIterations),
		solver.SleepThreshold(con.SleepThreshold),
	)
}

// WritesFrame returns true if the frame after the given step should be
// written to disk.
func (con *RunConfig) WritesFrame(step int) bool {
	return con.ValidOutput() && step%con.OutputEvery == 0
}

// PlacementConfig positions a body. Rotations are in degrees and are applied
// about x, then y, then z.
type PlacementConfig struct {
	X, Y, Z                   float64
	RotateX, RotateY, RotateZ float64
	Scale                     float64
}

func (p *PlacementConfig) checkPlacement(kind, name string) error {
	if p.Scale == 0 {
		p.Scale = 1
	} else if p.Scale < 0 {
		return fmt.Errorf("%s '%s' given a negative Scale, %g.", kind, name, p.Scale)
	}
	return nil
}

// RTS returns the transformation which places the body.
func (p *PlacementConfig) RTS() mgl64.Mat4 {
	q := mgl64.AnglesToQuat(
		mgl64.DegToRad(p.RotateX), mgl64.DegToRad(p.RotateY),
		mgl64.DegToRad(p.RotateZ), mgl64.XYZ,
	)
	return source.RTS(
		mgl64.Vec3{p.X, p.Y, p.Z}, q, mgl64.Vec3{p.Scale, p.Scale, p.Scale},
	)
}

// PerturbConfig holds the adjustments made to a body's particles once it
// has been built.
type PerturbConfig struct {
	Jitter                             float64
	Static                             bool
	StaticMinX, StaticMinY, StaticMinZ float64
	StaticMaxX, StaticMaxY, StaticMaxZ float64
}

func (p *PerturbConfig) checkPerturb(kind, name string) error {
	if p.Jitter < 0 {
		return fmt.Errorf("%s '%s' given a negative Jitter, %g.", kind, name, p.Jitter)
	}
	if !p.Static { return nil }
	if p.StaticMaxX < p.StaticMinX || p.StaticMaxY < p.StaticMinY ||
		p.StaticMaxZ < p.StaticMinZ {
		return fmt.Errorf("The Static box of %s '%s' has a maximum below its "+
			"minimum.", kind, name)
	}
	return nil
}

// StaticBox returns the region whose particles are pinned, if any.
func (p *PerturbConfig) StaticBox() (geom.Box, bool) {
	if !p.Static { return geom.Box{}, false }
	return geom.NewBox(
		mgl64.Vec3{p.StaticMinX, p.StaticMinY, p.StaticMinZ},
		mgl64.Vec3{p.StaticMaxX, p.StaticMaxY, p.StaticMaxZ},
	), true
}

// Perturb jitters the particles of b and then pins the ones inside the
// Static box. It returns the number of pinned particles.
func (p *PerturbConfig) Perturb(b *body.Body, rng *rand.Rand) int {
	if p.Jitter > 0 {
		b.RandomizePositions(rng, p.Jitter)
		b.ResetPredicted()
		b.UpdateBounds()
	}
	box, ok := p.StaticBox()
	if !ok { return 0 }
	return b.MarkAsStatic(box)
}

// VolumeConfig describes where a body's particles come from: either a
// block centered on the origin or a particle table.
type VolumeConfig struct {
	Width, Height, Depth      float64
	Input                     string
	XColumn, YColumn, ZColumn int
}

func (v *VolumeConfig) checkVolume(kind, name string) error {
	if v.Input != "" {
		if v.XColumn == 0 && v.YColumn == 0 && v.ZColumn == 0 {
			v.XColumn, v.YColumn, v.ZColumn = 0, 1, 2
		} else if v.XColumn < 0 || v.YColumn < 0 || v.ZColumn < 0 {
			return fmt.Errorf("Columns of %s '%s' must be non-negative.", kind, name)
		}
		return nil
	}

	if v.Width <= 0 {
		return fmt.Errorf("Need to specify a positive Width for %s '%s'.", kind, name)
	} else if v.Height <= 0 {
		return fmt.Errorf("Need to specify a positive Height for %s '%s'.", kind, name)
	} else if v.Depth <= 0 {
		return fmt.Errorf("Need to specify a positive Depth for %s '%s'.", kind, name)
	}
	return nil
}

// Bounds returns the block described by Width, Height and Depth.
func (v *VolumeConfig) Bounds() geom.Box {
	half := mgl64.Vec3{v.Width, v.Height, v.Depth}.Mul(0.5)
	return geom.NewBox(half.Mul(-1), half)
}

// Source returns the particles of the volume with the given radius.
func (v *VolumeConfig) Source(radius float64, exclude ...geom.Box) (source.Source, error) {
	if v.Input != "" {
		return source.ReadParticleTable(
			v.Input, radius, v.XColumn, v.YColumn, v.ZColumn,
		)
	}
	return source.ParticlesFromBounds(radius, v.Bounds(), exclude...), nil
}

// checkParticle checks the radius and fills in the default mass.
func checkParticle(kind, name string, radius float64, mass *float64) error {
	if radius <= 0 {
		return fmt.Errorf("Need to specify a positive Radius for %s '%s'.", kind, name)
	}
	if mass == nil { return nil }
	if *mass == 0 {
		*mass = 1
	} else if *mass < 0 {
		return fmt.Errorf("%s '%s' given a negative Mass, %g.", kind, name, *mass)
	}
	return nil
}

func checkStiffness(kind, name, param string, k *float64, def float64) error {
	if *k == 0 {
		*k = def
	} else if *k < 0 || *k > 1 {
		return fmt.Errorf("%s of %s '%s' must be in range (0, 1], but is %g.",
			param, kind, name, *k)
	}
	return nil
}

// PinMode selects which cloth particles are pinned in place.
type PinMode int

const (
	PinNone PinMode = iota
	PinCorners
	PinEdge
)

var pinNames = []string{"None", "Corners", "Edge"}

func (m PinMode) String() string { return pinNames[m] }

type ClothConfig struct {
	PlacementConfig
	PerturbConfig

	// Required
	Width, Height, Radius float64

	// Optional
	Mass                            float64
	StretchStiffness, BendStiffness float64
	Bending, Pin                    string
	Name                            string

	bendingModel bodies.BendingModel
	pinMode      PinMode
}

func (c *ClothConfig) CheckInit(name string) error {
	if c.Width <= 0 {
		return fmt.Errorf("Need to specify a positive Width for Cloth '%s'.", name)
	} else if c.Height <= 0 {
		return fmt.Errorf("Need to specify a positive Height for Cloth '%s'.", name)
	}
	if err := checkParticle("Cloth", name, c.Radius, &c.Mass); err != nil {
		return err
	} else if err := c.checkPlacement("Cloth", name); err != nil {
		return err
	} else if err := c.checkPerturb("Cloth", name); err != nil {
		return err
	} else if err := checkStiffness(
		"Cloth", name, "StretchStiffness", &c.StretchStiffness, 1,
	); err != nil {
		return err
	} else if err := checkStiffness(
		"Cloth", name, "BendStiffness", &c.BendStiffness, DefaultBendStiff,
	); err != nil {
		return err
	}

	if c.Bending == "" { c.Bending = bodies.DihedralBending.String() }
	m, ok := bodies.BendingModelFromString(strings.TrimSpace(c.Bending))
	if !ok {
		return fmt.Errorf(
			"Bending of Cloth '%s' must be one of [ThreePoint | Dihedral | "+
				"Isometric]. '%s' is not recognized.", name, c.Bending,
		)
	}
	c.bendingModel = m

	if c.Pin == "" { c.Pin = PinNone.String() }
	pinned := false
	for i, pinName := range pinNames {
		if strings.EqualFold(strings.TrimSpace(c.Pin), pinName) {
			c.pinMode, pinned = PinMode(i), true
		}
	}
	if !pinned {
		return fmt.Errorf(
			"Pin of Cloth '%s' must be one of [None | Corners | Edge]. '%s' "+
				"is not recognized.", name, c.Pin,
		)
	}

	c.Name = name
	return nil
}

func (c *ClothConfig) Source() *source.TriangleGrid {
	return source.TrianglesFromGrid(c.Radius, c.Width, c.Height)
}

func (c *ClothConfig) Params() *bodies.ClothParams {
	return &bodies.ClothParams{
		Radius:           c.Radius,
		Mass:             c.Mass,
		StretchStiffness: c.StretchStiffness,
		BendStiffness:    c.BendStiffness,
		Bending:          c.bendingModel,
	}
}

// Pinned returns the indices of the grid particles which should be pinned.
func (c *ClothConfig) Pinned(g *source.TriangleGrid) []int {
	switch c.pinMode {
	case PinCorners:
		return []int{g.Index(0, 0), g.Index(g.Rows(), 0)}
	case PinEdge:
		is := make([]int, g.Rows()+1)
		for i := range is { is[i] = g.Index(i, 0) }
		return is
	}
	return nil
}

type DeformableConfig struct {
	PlacementConfig
	PerturbConfig

	// Required
	Width, Height, Depth, Radius float64

	// Optional
	Mass                        float64
	Model                       string
	Stiffness                   float64
	YoungsModulus, PoissonRatio float64
	Name                        string

	tetraModel bodies.TetraModel
}

func (c *DeformableConfig) CheckInit(name string) error {
	v := &VolumeConfig{Width: c.Width, Height: c.Height, Depth: c.Depth}
	if err := v.checkVolume("Deformable", name); err != nil {
		return err
	} else if err := checkParticle("Deformable", name, c.Radius, &c.Mass); err != nil {
		return err
	} else if err := c.checkPlacement("Deformable", name); err != nil {
		return err
	} else if err := c.checkPerturb("Deformable", name); err != nil {
		return err
	} else if err := checkStiffness(
		"Deformable", name, "Stiffness", &c.Stiffness, 1,
	); err != nil {
		return err
	}

	if c.YoungsModulus == 0 {
		c.YoungsModulus = DefaultYoungs
	} else if c.YoungsModulus < 0 {
		return fmt.Errorf("Deformable '%s' given a negative YoungsModulus, %g.",
			name, c.YoungsModulus)
	}
	if c.PoissonRatio == 0 {
		c.PoissonRatio = constraint.DefaultPoissonRatio
	} else if c.PoissonRatio < 0 || c.PoissonRatio >= 0.5 {
		return fmt.Errorf(
			"PoissonRatio of Deformable '%s' must be in range [0, 0.5), but is %g.",
			name, c.PoissonRatio,
		)
	}

	if c.Model == "" { c.Model = bodies.StrainModel.String() }
	m, ok := bodies.TetraModelFromString(strings.TrimSpace(c.Model))
	if !ok {
		return fmt.Errorf(
			"Model of Deformable '%s' must be one of [Strain | FEM]. '%s' is "+
				"not recognized.", name, c.Model,
		)
	}
	c.tetraModel = m

	c.Name = name
	return nil
}

func (c *DeformableConfig) Source() *source.TetraBlock {
	v := &VolumeConfig{Width: c.Width, Height: c.Height, Depth: c.Depth}
	return source.TetrahedraFromBounds(c.Radius, v.Bounds())
}

func (c *DeformableConfig) Params() *bodies.DeformableParams {
	return &bodies.DeformableParams{
		Radius:        c.Radius,
		Mass:          c.Mass,
		Model:         c.tetraModel,
		Stiffness:     c.Stiffness,
		YoungsModulus: c.YoungsModulus,
		PoissonRatio:  c.PoissonRatio,
	}
}

type RigidConfig struct {
	PlacementConfig
	PerturbConfig
	VolumeConfig

	// Required
	Radius float64

	// Optional
	Mass float64
	Name string
}

func (c *RigidConfig) CheckInit(name string) error {
	if err := c.checkVolume("Rigid", name); err != nil {
		return err
	} else if err := checkParticle("Rigid", name, c.Radius, &c.Mass); err != nil {
		return err
	} else if err := c.checkPlacement("Rigid", name); err != nil {
		return err
	} else if err := c.checkPerturb("Rigid", name); err != nil {
		return err
	}
	c.Name = name
	return nil
}

type FluidConfig struct {
	PlacementConfig
	PerturbConfig
	VolumeConfig

	// Required
	Radius float64

	// Optional
	Density, Viscosity       float64
	Iterations, MaxNeighbors int
	Name                     string
}

func (c *FluidConfig) CheckInit(name string) error {
	if err := c.checkVolume("Fluid", name); err != nil {
		return err
	} else if err := checkParticle("Fluid", name, c.Radius, nil); err != nil {
		return err
	} else if err := c.checkPlacement("Fluid", name); err != nil {
		return err
	} else if err := c.checkPerturb("Fluid", name); err != nil {
		return err
	}

	if c.Density == 0 {
		c.Density = DefaultDensity
	} else if c.Density < 0 {
		return fmt.Errorf("Fluid '%s' given a negative Density, %g.", name, c.Density)
	}
	if c.Viscosity == 0 {
		c.Viscosity = fluid.DefaultViscosity
	} else if c.Viscosity < 0 {
		return fmt.Errorf("Fluid '%s' given a negative Viscosity, %g.",
			name, c.Viscosity)
	}
	if c.Iterations == 0 {
		c.Iterations = fluid.DefaultIterations
	} else if c.Iterations < 0 {
		return fmt.Errorf("Fluid '%s' given a negative Iterations, %d.",
			name, c.Iterations)
	}
	if c.MaxNeighbors == 0 {
		c.MaxNeighbors = hash.DefaultMaxNeighbors
	} else if c.MaxNeighbors < 0 {
		return fmt.Errorf("Fluid '%s' given a negative MaxNeighbors, %d.",
			name, c.MaxNeighbors)
	}

	c.Name = name
	return nil
}

type BoundaryConfig struct {
	PlacementConfig
	VolumeConfig

	// Required
	Radius float64

	// Optional
	Density, Thickness float64
	Name               string
}

func (c *BoundaryConfig) CheckInit(name string) error {
	if err := c.checkVolume("Boundary", name); err != nil {
		return err
	} else if err := checkParticle("Boundary", name, c.Radius, nil); err != nil {
		return err
	} else if err := c.checkPlacement("Boundary", name); err != nil {
		return err
	}

	if c.Density == 0 {
		c.Density = DefaultDensity
	} else if c.Density < 0 {
		return fmt.Errorf("Boundary '%s' given a negative Density, %g.",
			name, c.Density)
	}
	if c.Thickness < 0 {
		return fmt.Errorf("Boundary '%s' given a negative Thickness, %g.",
			name, c.Thickness)
	}

	c.Name = name
	return nil
}

// Interior returns the region removed from a walled boundary. It is open
// at the top.
func (c *BoundaryConfig) Interior() (geom.Box, bool) {
	if c.Thickness == 0 || c.Input != "" { return geom.Box{}, false }
	box := c.Bounds()
	t := mgl64.Vec3{c.Thickness, c.Thickness, c.Thickness}
	box.Min = box.Min.Add(t)
	box.Max = box.Max.Sub(mgl64.Vec3{c.Thickness, -c.Thickness, c.Thickness})
	return box, true
}

func (c *BoundaryConfig) Source() (source.Source, error) {
	if inner, ok := c.Interior(); ok { return c.VolumeConfig.Source(c.Radius, inner) }
	return c.VolumeConfig.Source(c.Radius)
}

// SceneWrapper holds every section of a scene file.
type SceneWrapper struct {
	Run        RunConfig
	Cloth      map[string]*ClothConfig
	Deformable map[string]*DeformableConfig
	Rigid      map[string]*RigidConfig
	Fluid      map[string]*FluidConfig
	Boundary   map[string]*BoundaryConfig
}

func DefaultSceneWrapper() *SceneWrapper {
	rc := RunConfig{}
	rc.Steps = DefaultSteps
	rc.TimeStep = DefaultTimeStep
	rc.LogEvery = DefaultLogEvery
	rc.SolverIterations = solver.DefaultSolverIterations
	rc.CollisionIterations = solver.DefaultCollisionIterations
	rc.SleepThreshold = solver.DefaultSleepThreshold
	rc.GravityX = force.StandardGravity[0]
	rc.GravityY = force.StandardGravity[1]
	rc.GravityZ = force.StandardGravity[2]
	return &SceneWrapper{Run: rc}
}

// IsFluid returns true if the scene is simulated with the fluid solver.
func (w *SceneWrapper) IsFluid() bool { return len(w.Fluid) > 0 }

// CheckInit validates every section and fills in defaults.
func (w *SceneWrapper) CheckInit() error {
	if err := w.Run.CheckInit(); err != nil { return err }

	for name, c := range w.Cloth {
		if err := c.CheckInit(name); err != nil { return err }
	}
	for name, c := range w.Deformable {
		if err := c.CheckInit(name); err != nil { return err }
	}
	for name, c := range w.Rigid {
		if err := c.CheckInit(name); err != nil { return err }
	}
	for name, c := range w.Fluid {
		if err := c.CheckInit(name); err != nil { return err }
	}
	for name, c := range w.Boundary {
		if err := c.CheckInit(name); err != nil { return err }
	}

	solids := len(w.Cloth) + len(w.Deformable) + len(w.Rigid)
	switch {
	case len(w.Fluid) > 1:
		return fmt.Errorf("A scene can contain at most one Fluid, but %d "+
			"were given.", len(w.Fluid))
	case w.IsFluid() && solids > 0:
		return fmt.Errorf("Fluid scenes cannot contain Cloth, Deformable, " +
			"or Rigid bodies.")
	case w.IsFluid() && w.Run.Plane:
		return fmt.Errorf("Fluid scenes cannot use 'Plane'. Use a Boundary " +
			"section instead.")
	case !w.IsFluid() && len(w.Boundary) > 0:
		return fmt.Errorf("Boundary sections require a Fluid section.")
	case !w.IsFluid() && solids == 0:
		return fmt.Errorf("The scene contains no bodies.")
	}

	return nil
}

// ReadSceneConfig reads and validates a scene file.
func ReadSceneConfig(fname string) (*SceneWrapper, error) {
	wrap := DefaultSceneWrapper()
	if err := gcfg.ReadFileInto(wrap, fname); err != nil { return nil, err }
	if err := wrap.CheckInit(); err != nil { return nil, err }
	return wrap, nil
}

// ReadSceneString reads and validates the contents of a scene file.
func ReadSceneString(str string) (*SceneWrapper, error) {
	wrap := DefaultSceneWrapper()
	if err := gcfg.ReadStringInto(wrap, str); err != nil { return nil, err }
	if err := wrap.CheckInit(); err != nil { return nil, err }
	return wrap, nil
}

package fluid

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/phil-mansfield/gopbd/body"
	"github.com/phil-mansfield/gopbd/hash"
)

const (
	DefaultIterations = 5
	// lambdaEps regularizes the denominator of the Lagrange multiplier.
	lambdaEps = 1e-6
)

// DensityConstraint is the position based fluids incompressibility
// constraint of Macklin and Müller, "Position Based Fluids", with the
// boundary handling of Akinci et al. It applies to every particle of one
// fluid body and owns that fluid's neighbor hash and per-particle scratch
// arrays.
//
// Only compression is corrected: particles whose density is below the rest
// density are left alone, which keeps free surfaces from clumping.
type DensityConstraint struct {
	RestDensity float64
	Iterations  int
	Kernel      CubicKernel
	Hash        *hash.ParticleHash
	// Boundary may be nil.
	Boundary *Boundary

	// Densities and Lambda hold the values from the final iteration of the
	// most recent projection.
	Densities, Lambda []float64
}

// NewDensityConstraint creates the constraint for a fluid of n particles of
// the given radius.
func NewDensityConstraint(
	n int, radius, restDensity float64, opts ...hash.Option,
) *DensityConstraint {
	cellSize := 4 * radius
	return &DensityConstraint{
		RestDensity: restDensity,
		Iterations:  DefaultIterations,
		Kernel:      NewCubicKernel(cellSize),
		Hash:        hash.New(n, cellSize, opts...),
		Densities:   make([]float64, n),
		Lambda:      make([]float64, n),
	}
}

func (c *DensityConstraint) Kind() body.Kind { return body.KindFluidDensity }

func (c *DensityConstraint) ConstrainVelocities(b *body.Body) {}

// ConstrainPositions rebuilds the neighbor lists from b.Predicted and runs
// Iterations rounds of density correction. It panics if the neighbor hash
// overflows.
func (c *DensityConstraint) ConstrainPositions(b *body.Body, di float64) {
	n := b.NumParticles()
	if n != len(c.Densities) {
		panic(fmt.Sprintf("DensityConstraint for %d particles applied to "+
			"a body with %d particles.", len(c.Densities), n))
	}

	var err error
	if c.Boundary == nil {
		err = c.Hash.NeighborhoodSearch(b.Predicted)
	} else {
		err = c.Hash.NeighborhoodSearchBoundary(b.Predicted, c.Boundary.Positions)
	}
	if err != nil { panic(err) }

	for iter := 0; iter < c.Iterations; iter++ {
		for i := 0; i < n; i++ {
			c.computeDensity(b, i)
			c.computeLambda(b, i)
		}
		for i := 0; i < n; i++ {
			b.Predicted[i] = b.Predicted[i].Add(c.correction(b, i).Mul(di))
		}
	}

	c.Hash.IncrementTimeStamp()
}

// neighbor returns the position and density weight of neighbor index j,
// which may refer to a boundary particle.
func (c *DensityConstraint) neighbor(b *body.Body, j int) (mgl64.Vec3, float64, bool) {
	if c.Hash.IsBoundary(j) {
		k := j - b.NumParticles()
		return c.Boundary.Positions[k], c.Boundary.Psi[k], true
	}
	return b.Predicted[j], b.Mass, false
}

func (c *DensityConstraint) computeDensity(b *body.Body, i int) {
	pi := b.Predicted[i]
	rho := b.Mass * c.Kernel.W0
	for _, j := range c.Hash.Neighbors(i) {
		pj, weight, _ := c.neighbor(b, j)
		rho += weight * c.Kernel.W(pi.Sub(pj))
	}
	c.Densities[i] = rho
}

func (c *DensityConstraint) computeLambda(b *body.Body, i int) {
	invRho0 := 1 / c.RestDensity
	ci := math.Max(c.Densities[i]*invRho0-1, 0)
	if ci == 0 {
		c.Lambda[i] = 0
		return
	}

	pi := b.Predicted[i]
	sum := 0.0
	var gradI mgl64.Vec3
	for _, j := range c.Hash.Neighbors(i) {
		pj, weight, _ := c.neighbor(b, j)
		gradJ := c.Kernel.GradW(pi.Sub(pj)).Mul(-weight * invRho0)
		sum += gradJ.Dot(gradJ)
		gradI = gradI.Sub(gradJ)
	}
	sum += gradI.Dot(gradI)

	c.Lambda[i] = -ci / (sum + lambdaEps)
}

func (c *DensityConstraint) correction(b *body.Body, i int) mgl64.Vec3 {
	invRho0 := 1 / c.RestDensity
	pi := b.Predicted[i]

	var corr mgl64.Vec3
	for _, j := range c.Hash.Neighbors(i) {
		pj, weight, isBoundary := c.neighbor(b, j)
		lambda := c.Lambda[i]
		if !isBoundary { lambda += c.Lambda[j] }
		lambda *= -weight * invRho0
		corr = corr.Sub(c.Kernel.GradW(pi.Sub(pj)).Mul(lambda))
	}
	return corr
}

// MaxCompression returns the largest relative excess density of the most
// recent projection.
func (c *DensityConstraint) MaxCompression() float64 {
	max := 0.0
	for _, rho := range c.Densities {
		max = math.Max(max, rho/c.RestDensity-1)
	}
	return max
}

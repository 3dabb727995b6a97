package constraint

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/phil-mansfield/gopbd/body"
	"github.com/phil-mansfield/gopbd/geom"
	"github.com/phil-mansfield/gopbd/mat"
)

const (
	DefaultPoissonRatio = 0.3

	// inversionRatio is the fraction of the rest volume below which an
	// element is treated as inverting.
	inversionRatio = 0.2
	// minSingularValue is the floor applied to the singular values of the
	// deformation gradient of an inverting element.
	minSingularValue = 0.577
	minGradient      = 1e-6
)

// FEMTetra is a St. Venant-Kirchhoff tetrahedral element projected as a
// single energy constraint. Elements which have collapsed to less than a
// fifth of their rest volume and turned inside out are handled with the
// inversion-safe decomposition of Irving et al.
type FEMTetra struct {
	positionOnly
	idx [4]int

	YoungsModulus, PoissonRatio float64
	RestVolume                  float64

	// orientation is the sign of the rest signed volume.
	orientation float64
	invRest     mgl64.Mat3
}

func NewFEMTetra(
	b *body.Body, p0, p1, p2, p3 int, youngsModulus float64,
) (*FEMTetra, error) {
	if err := b.CheckIndices(p0, p1, p2, p3); err != nil {
		return nil, err
	} else if youngsModulus < 0 {
		return nil, fmt.Errorf(
			"Young's modulus must be non-negative, but is %g: %w",
			youngsModulus, ErrStiffness)
	}

	t, _ := geom.NewTetra(b.Positions, p0, p1, p2, p3)
	inv, ok := mat.Inverse3(t.EdgeMatrix(3))
	if !ok {
		return nil, degenerate("Tetrahedron (%d, %d, %d, %d) is flat",
			p0, p1, p2, p3)
	}

	vol := t.SignedVolume()
	orientation := 1.0
	if vol < 0 { orientation = -1 }

	return &FEMTetra{
		idx:           [4]int{p0, p1, p2, p3},
		YoungsModulus: youngsModulus,
		PoissonRatio:  DefaultPoissonRatio,
		RestVolume:    math.Abs(vol),
		orientation:   orientation,
		invRest:       inv,
	}, nil
}

func (c *FEMTetra) Kind() body.Kind { return body.KindFEMTetra }

// Lame returns the Lamé parameters of the element's material.
func (c *FEMTetra) Lame() (mu, lambda float64) {
	e, nu := c.YoungsModulus, c.PoissonRatio
	mu = e / 2 / (1 + nu)
	lambda = e * nu / (1 + nu) / (1 - 2*nu)
	return mu, lambda
}

// Energy returns the strain energy of the element at the given corner
// positions, along with a flag that is true if the inversion branch was
// used.
func (c *FEMTetra) Energy(p [4]mgl64.Vec3) (energy float64, inverted bool) {
	_, energy, inverted = c.stress(p)
	return energy, inverted
}

func (c *FEMTetra) ConstrainPositions(b *body.Body, di float64) {
	var p [4]mgl64.Vec3
	for k, i := range c.idx { p[k] = b.Predicted[i] }

	sigma, energy, _ := c.stress(p)

	// The gradient of the energy with respect to p0, p1 and p2 is given by
	// the columns of sigma invRestᵀ, and p3 balances them.
	h := sigma.Mul3(c.invRest.Transpose()).Mul(c.RestVolume)
	var grad [4]mgl64.Vec3
	for k := 0; k < 3; k++ {
		grad[k] = h.Col(k)
	}
	grad[3] = grad[0].Add(grad[1]).Add(grad[2]).Mul(-1)

	w := b.InvMass()
	sum := 0.0
	for k := range grad { sum += geom.LenSqr(grad[k]) }
	sum *= w
	if sum < minGradient || math.IsNaN(sum) { return }

	s := energy / sum
	for k, i := range c.idx {
		b.Predicted[i] = b.Predicted[i].Sub(grad[k].Mul(s * w * di))
	}
}

// stress returns the first Piola-Kirchhoff stress and the strain energy.
func (c *FEMTetra) stress(p [4]mgl64.Vec3) (sigma mgl64.Mat3, energy float64, inverted bool) {
	t := geom.Tetra(p)
	vol := c.orientation * t.SignedVolume()
	mu, lambda := c.Lame()

	f := t.EdgeMatrix(3).Mul3(c.invRest)

	var eps mgl64.Mat3
	var trace float64
	if vol/c.RestVolume < inversionRatio && vol <= 0 {
		inverted = true

		hatF, u, vt := mat.SVDWithInversionHandling(f)
		for k := 0; k < 3; k++ {
			hatF[k] = math.Max(hatF[k], minSingularValue)
		}

		var epsHat, sigmaHat mgl64.Vec3
		for k := 0; k < 3; k++ {
			epsHat[k] = 0.5 * (hatF[k]*hatF[k] - 1)
		}
		trace = epsHat[0] + epsHat[1] + epsHat[2]
		for k := 0; k < 3; k++ {
			sigmaHat[k] = hatF[k] * (2*mu*epsHat[k] + lambda*trace)
		}

		eps = u.Mul3(mgl64.Diag3(epsHat)).Mul3(vt)
		sigma = u.Mul3(mgl64.Diag3(sigmaHat)).Mul3(vt)
	} else {
		eps = f.Transpose().Mul3(f).Sub(mgl64.Ident3()).Mul(0.5)
		trace = eps.Trace()
		s := eps.Mul(2 * mu).Add(mgl64.Ident3().Mul(lambda * trace))
		sigma = f.Mul3(s)
	}

	psi := 0.0
	for k := 0; k < 9; k++ { psi += eps[k] * eps[k] }
	psi = mu*psi + 0.5*lambda*trace*trace

	return sigma, c.RestVolume * psi, inverted
}

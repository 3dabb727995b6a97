package fluid

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// minKernelDistance is the separation below which GradW is zero.
const minKernelDistance = 1e-6

// CubicKernel is the cubic spline SPH smoothing kernel with compact support
// radius Radius.
type CubicKernel struct {
	Radius float64
	// W0 is W at zero separation.
	W0 float64

	invRadius, k, l float64
}

func NewCubicKernel(radius float64) CubicKernel {
	h3 := radius * radius * radius
	kern := CubicKernel{
		Radius:    radius,
		invRadius: 1 / radius,
		k:         8 / (math.Pi * h3),
		l:         48 / (math.Pi * h3),
	}
	kern.W0 = kern.W(mgl64.Vec3{})
	return kern
}

// W evaluates the kernel at separation r.
func (kern *CubicKernel) W(r mgl64.Vec3) float64 {
	q := r.Len() * kern.invRadius
	switch {
	case q <= 0.5:
		q2 := q * q
		return kern.k * (6*q2*q - 6*q2 + 1)
	case q <= 1:
		v := 1 - q
		return 2 * kern.k * v * v * v
	}
	return 0
}

// GradW evaluates the gradient of the kernel with respect to r.
func (kern *CubicKernel) GradW(r mgl64.Vec3) mgl64.Vec3 {
	rl := r.Len()
	q := rl * kern.invRadius
	if q > 1 || rl <= minKernelDistance { return mgl64.Vec3{} }

	gradq := r.Mul(1 / (rl * kern.Radius))
	if q <= 0.5 {
		return gradq.Mul(kern.l * q * (3*q - 2))
	}
	v := 1 - q
	return gradq.Mul(-kern.l * v * v)
}

/*package force contains the external forces which act on bodies at the
start of every solver step. Forces change velocities, never positions.
*/
package force

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/phil-mansfield/gopbd/body"
)

// StandardGravity is the acceleration used by NewGravity.
var StandardGravity = mgl64.Vec3{0, -9.81, 0}

// Force is an external force applied to every particle of a body.
type Force interface {
	ApplyForce(dt float64, b *body.Body)
}

// Gravity is a uniform acceleration.
type Gravity struct {
	Acceleration mgl64.Vec3
}

// NewGravity returns Earth gravity along -y.
func NewGravity() *Gravity { return &Gravity{StandardGravity} }

func (g *Gravity) ApplyForce(dt float64, b *body.Body) {
	dv := g.Acceleration.Mul(dt)
	for i := range b.Velocities {
		b.Velocities[i] = b.Velocities[i].Add(dv)
	}
}

// Drag is a linear drag towards a frame moving at velocity Wind. The
// fraction of relative velocity removed in one step is capped at 1.
type Drag struct {
	Coefficient float64
	Wind        mgl64.Vec3
}

func (d *Drag) ApplyForce(dt float64, b *body.Body) {
	k := d.Coefficient * dt
	if k > 1 { k = 1 }
	for i, v := range b.Velocities {
		b.Velocities[i] = v.Sub(v.Sub(d.Wind).Mul(k))
	}
}

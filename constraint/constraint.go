/*package constraint implements the position constraints which can be added to
a body.Body.

Every constructor captures its rest state from the body's current Positions
and validates its particle indices against the body. Projection reads and
writes only b.Predicted, except for static pins, which live in package
body.
*/
package constraint

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/phil-mansfield/gopbd/body"
)

var (
	// ErrStiffness is returned for stiffnesses outside [0, 1].
	ErrStiffness = errors.New("stiffness outside [0, 1]")
	// ErrDegenerate is returned when the rest configuration of a constraint
	// has no well-defined shape, e.g. a flat tetrahedron.
	ErrDegenerate = errors.New("degenerate rest configuration")
)

// minLength is the length below which directions are treated as undefined.
const minLength = 1e-9

func checkStiffness(name string, k float64) error {
	if k < 0 || k > 1 {
		return fmt.Errorf("%s stiffness must be in [0, 1], but is %g: %w",
			name, k, ErrStiffness)
	}
	return nil
}

func degenerate(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrDegenerate)
}

// outer returns the outer product a bᵀ.
func outer(a, b mgl64.Vec3) mgl64.Mat3 {
	return mgl64.Mat3FromCols(a.Mul(b[0]), a.Mul(b[1]), a.Mul(b[2]))
}

// positionOnly supplies the empty ConstrainVelocities shared by every
// constraint in this package.
type positionOnly struct{}

func (positionOnly) ConstrainVelocities(b *body.Body) {}

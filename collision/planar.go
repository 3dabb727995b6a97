package collision

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/phil-mansfield/gopbd/body"
)

// Planar is the half-space n·x + Distance >= 0. Particles are kept on the
// positive side by at least their radius.
type Planar struct {
	Normal   mgl64.Vec3
	Distance float64
}

// NewPlanar returns the plane with the given normal and offset. The normal
// is normalized.
func NewPlanar(normal mgl64.Vec3, distance float64) *Planar {
	return &Planar{normal.Normalize(), distance}
}

// Penetration returns the signed distance of a particle's surface from the
// plane. It is negative when the particle overlaps the plane.
func (c *Planar) Penetration(p mgl64.Vec3, radius float64) float64 {
	return c.Normal.Dot(p) + c.Distance - radius
}

func (c *Planar) FindContacts(bodies []*body.Body, contacts []Contact) []Contact {
	for _, b := range bodies {
		for i, p := range b.Predicted {
			if c.Penetration(p, b.Radius) < 0 {
				contacts = append(contacts, &PlaneContact{b, i, c})
			}
		}
	}
	return contacts
}

// PlaneContact pushes one particle out of a Planar.
type PlaneContact struct {
	Body  *body.Body
	Index int
	Plane *Planar
}

func (c *PlaneContact) ResolveContact(di float64) {
	b, i := c.Body, c.Index
	d := c.Plane.Penetration(b.Predicted[i], b.Radius)
	if d >= 0 { return }

	delta := c.Plane.Normal.Mul(-d * di)
	b.Positions[i] = b.Positions[i].Add(delta)
	b.Predicted[i] = b.Predicted[i].Add(delta)
}

/*package collision finds and resolves contacts between bodies and the
static environment. Collisions are pure finders: FindContacts only reads
the bodies, and every position change happens in Contact.ResolveContact.
*/
package collision

import (
	"github.com/phil-mansfield/gopbd/body"
)

// contactEps is the squared separation below which two particles are
// treated as coincident and left alone.
const contactEps = 1e-9

// Collision generates the contacts of one step.
type Collision interface {
	// FindContacts appends the contacts between bodies to contacts and
	// returns the extended slice.
	FindContacts(bodies []*body.Body, contacts []Contact) []Contact
}

// Contact is a single unilateral position correction.
type Contact interface {
	// ResolveContact re-evaluates the contact against current predicted
	// positions and applies the fraction di of its correction to both
	// Positions and Predicted.
	ResolveContact(di float64)
}

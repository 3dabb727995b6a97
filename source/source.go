/*package source generates the initial particle layouts which bodies are
built from: lattices filling a box, flat grids for cloth, tetrahedral
blocks for deformable bodies, and point sets read from text files.

Every generator places particles a distance 2·spacing apart, so that
particles of radius spacing just touch.
*/
package source

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/phil-mansfield/table"

	"github.com/phil-mansfield/gopbd/geom"
)

// Source is a set of rest positions.
type Source interface {
	Positions() []mgl64.Vec3
}

// TriangleSource is a Source whose particles form a triangle mesh.
type TriangleSource interface {
	Source
	// Indices lists three particle indices per triangle.
	Indices() []int
	// Edges lists two particle indices per unique mesh edge.
	Edges() []int
}

// TetraSource is a Source whose particles form a tetrahedral mesh.
type TetraSource interface {
	Source
	// Indices lists four particle indices per tetrahedron.
	Indices() []int
	// Edges lists two particle indices per unique mesh edge.
	Edges() []int
}

// Particles is an unstructured point set.
type Particles struct {
	Spacing float64
	ps      []mgl64.Vec3
}

func (s *Particles) Positions() []mgl64.Vec3 { return s.ps }

// NewParticles wraps an existing point set.
func NewParticles(spacing float64, ps []mgl64.Vec3) *Particles {
	return &Particles{spacing, ps}
}

// latticeDims returns the number of lattice points which fit in the box
// along each axis.
func latticeDims(spacing float64, bounds *geom.Box) (nx, ny, nz int) {
	w := bounds.Width()
	d := 2 * spacing
	if bounds.IsEmpty() || d <= 0 { return 0, 0, 0 }
	return int(w[0] / d), int(w[1] / d), int(w[2] / d)
}

// latticePoint returns the center of lattice cell (x, y, z).
func latticePoint(spacing float64, bounds *geom.Box, x, y, z int) mgl64.Vec3 {
	d := 2 * spacing
	return mgl64.Vec3{
		d*float64(x) + bounds.Min[0] + spacing,
		d*float64(y) + bounds.Min[1] + spacing,
		d*float64(z) + bounds.Min[2] + spacing,
	}
}

// ParticlesFromBounds fills a box with a cubic lattice, x fastest. Lattice
// points inside any of the exclusion boxes are skipped.
func ParticlesFromBounds(
	spacing float64, bounds geom.Box, exclude ...geom.Box,
) *Particles {
	nx, ny, nz := latticeDims(spacing, &bounds)
	ps := make([]mgl64.Vec3, 0, nx*ny*nz)

	for z := 0; z < nz; z++ {
		for y := 0; y < ny; y++ {
		PointLoop:
			for x := 0; x < nx; x++ {
				p := latticePoint(spacing, &bounds, x, y, z)
				for i := range exclude {
					if exclude[i].Contains(p) { continue PointLoop }
				}
				ps = append(ps, p)
			}
		}
	}

	return &Particles{spacing, ps}
}

// ReadParticleTable reads positions from the x, y and z columns of a
// whitespace-separated text file. Columns are zero-indexed.
func ReadParticleTable(fname string, spacing float64, xCol, yCol, zCol int) (*Particles, error) {
	cols, err := table.ReadTable(fname, []int{xCol, yCol, zCol}, nil)
	if err != nil {
		return nil, fmt.Errorf("Could not read particle table %s: %w", fname, err)
	}

	xs, ys, zs := cols[0], cols[1], cols[2]
	ps := make([]mgl64.Vec3, len(xs))
	for i := range ps { ps[i] = mgl64.Vec3{xs[i], ys[i], zs[i]} }
	return &Particles{spacing, ps}, nil
}

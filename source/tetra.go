package source

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/phil-mansfield/gopbd/geom"
)

// cubeTetras splits the cube with corners c[0..7] into five tetrahedra. The
// two patterns are mirror images, and alternating them by the parity of the
// cube's lattice coordinate makes neighboring cubes share faces.
//
// Corner numbering: 0 (x, y, z), 1 (x+1, y, z), 2 (x+1, y, z+1), 3 (x, y,
// z+1), and 4-7 are the same with y+1.
var cubeTetras = [2][20]int{
	{
		0, 2, 5, 1,
		7, 2, 0, 3,
		5, 2, 7, 6,
		7, 0, 5, 4,
		0, 2, 7, 5,
	},
	{
		2, 1, 6, 3,
		6, 3, 4, 7,
		4, 1, 6, 5,
		3, 1, 4, 0,
		6, 1, 4, 3,
	},
}

// TetraBlock is a cubic lattice filling a box, tetrahedralized with five
// tetrahedra per lattice cube.
type TetraBlock struct {
	Spacing    float64
	Bounds     geom.Box
	nx, ny, nz int
	ps         []mgl64.Vec3
	indices    []int
	edges      []int
}

func TetrahedraFromBounds(spacing float64, bounds geom.Box) *TetraBlock {
	s := &TetraBlock{Spacing: spacing, Bounds: bounds}
	s.nx, s.ny, s.nz = latticeDims(spacing, &bounds)

	s.ps = make([]mgl64.Vec3, s.nx*s.ny*s.nz)
	for z := 0; z < s.nz; z++ {
		for y := 0; y < s.ny; y++ {
			for x := 0; x < s.nx; x++ {
				s.ps[s.index(x, y, z)] = latticePoint(spacing, &bounds, x, y, z)
			}
		}
	}

	var c [8]int
	for z := 0; z < s.nz-1; z++ {
		for y := 0; y < s.ny-1; y++ {
			for x := 0; x < s.nx-1; x++ {
				c[0] = s.index(x, y, z)
				c[1] = s.index(x+1, y, z)
				c[2] = s.index(x+1, y, z+1)
				c[3] = s.index(x, y, z+1)
				c[4] = s.index(x, y+1, z)
				c[5] = s.index(x+1, y+1, z)
				c[6] = s.index(x+1, y+1, z+1)
				c[7] = s.index(x, y+1, z+1)

				for _, k := range cubeTetras[(x+y+z)%2] {
					s.indices = append(s.indices, c[k])
				}
			}
		}
	}

	s.edges = Edges(s.indices, TetraEdges)
	return s
}

func (s *TetraBlock) index(x, y, z int) int { return x + y*s.nx + z*s.nx*s.ny }

func (s *TetraBlock) Positions() []mgl64.Vec3 { return s.ps }
func (s *TetraBlock) Indices() []int          { return s.indices }
func (s *TetraBlock) Edges() []int            { return s.edges }

// Dims returns the number of lattice points along each axis.
func (s *TetraBlock) Dims() (nx, ny, nz int) { return s.nx, s.ny, s.nz }

package source

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Grid is a flat (Rows + 1) x (Columns + 1) sheet of particles in the y = 0
// plane, centered on the origin. Rows runs along x and Columns along z.
// Particle (i, j) has index j·(Rows + 1) + i.
type Grid struct {
	Spacing       float64
	Width, Height float64
	rows, cols    int
	ps            []mgl64.Vec3
}

// ParticlesFromGrid creates a width x height sheet. The number of cells
// along each side is the number of particle diameters which fit, and is at
// least one.
func ParticlesFromGrid(spacing, width, height float64) *Grid {
	d := 2 * spacing
	g := &Grid{
		Spacing: spacing, Width: width, Height: height,
		rows: cellCount(width, d), cols: cellCount(height, d),
	}

	dx := width / float64(g.rows)
	dz := height / float64(g.cols)
	g.ps = make([]mgl64.Vec3, 0, (g.rows+1)*(g.cols+1))
	for j := 0; j <= g.cols; j++ {
		for i := 0; i <= g.rows; i++ {
			g.ps = append(g.ps, mgl64.Vec3{
				dx*float64(i) - width/2, 0, dz*float64(j) - height/2,
			})
		}
	}

	return g
}

func cellCount(length, d float64) int {
	n := 0
	if d > 0 { n = int(length / d) }
	if n < 1 { return 1 }
	return n
}

func (g *Grid) Positions() []mgl64.Vec3 { return g.ps }
func (g *Grid) Rows() int               { return g.rows }
func (g *Grid) Columns() int            { return g.cols }

// Index returns the index of particle (i, j).
func (g *Grid) Index(i, j int) int { return j*(g.rows+1) + i }

// TriangleGrid is a Grid with each cell split into two triangles. The
// diagonal alternates between neighboring cells.
type TriangleGrid struct {
	Grid
	indices, edges []int
}

func TrianglesFromGrid(spacing, width, height float64) *TriangleGrid {
	g := &TriangleGrid{Grid: *ParticlesFromGrid(spacing, width, height)}

	g.indices = make([]int, 0, g.rows*g.cols*6)
	for j := 0; j < g.cols; j++ {
		for i := 0; i < g.rows; i++ {
			i0 := g.Index(i, j)
			i1 := i0 + 1
			i2 := i0 + (g.rows + 1)
			i3 := i2 + 1

			if (i+j)%2 != 0 {
				g.indices = append(g.indices, i0, i2, i1, i1, i2, i3)
			} else {
				g.indices = append(g.indices, i0, i2, i3, i0, i3, i1)
			}
		}
	}

	g.edges = Edges(g.indices, TriangleEdges)
	return g
}

func (g *TriangleGrid) Indices() []int { return g.indices }
func (g *TriangleGrid) Edges() []int   { return g.edges }

package geom

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Cell is the integer coordinate of a cell in an unbounded uniform grid.
type Cell [3]int32

// floorOffset shifts coordinates into the positive range before truncating.
// Together with the extra 0.1 in cellFloor, cell k covers [k-0.1, k+0.9) in
// units of the cell width, for |x/width| < 32768.
const floorOffset = 32768

// Hash multipliers. They are large odd primes: the hash only needs to spread
// neighboring cells apart, collisions are resolved by distance checks.
const (
	hashX int32 = 73856093
	hashY int32 = 19349663
	hashZ int32 = 83492791
)

// Neighborhood lists the 27 cell offsets of a 3x3x3 block, x fastest.
var Neighborhood = func() [27]Cell {
	var out [27]Cell
	for z := int32(-1); z <= 1; z++ {
		for y := int32(-1); y <= 1; y++ {
			for x := int32(-1); x <= 1; x++ {
				out[(x+1)+(y+1)*3+(z+1)*9] = Cell{x, y, z}
			}
		}
	}
	return out
}()

// CellOf returns the cell containing v in a grid with cells of width
// 1/invWidth.
func CellOf(v mgl64.Vec3, invWidth float64) Cell {
	return Cell{
		cellFloor(v[0] * invWidth),
		cellFloor(v[1] * invWidth),
		cellFloor(v[2] * invWidth),
	}
}

func cellFloor(x float64) int32 {
	return int32(x+floorOffset+0.1) - floorOffset
}

// Add returns the cell offset by dc.
func (c Cell) Add(dc Cell) Cell {
	return Cell{c[0] + dc[0], c[1] + dc[1], c[2] + dc[2]}
}

// Hash combines the cell coordinates into a single key. Distinct cells may
// share a key.
func (c Cell) Hash() int32 {
	return hashX*c[0] + hashY*c[1] + hashZ*c[2]
}

// CellBounds represents a bounding box aligned to grid cells. Both corners
// are inclusive.
type CellBounds struct {
	Min, Max Cell
}

// BoxCells returns the cells overlapped by a box.
func BoxCells(b *Box, invWidth float64) CellBounds {
	return CellBounds{CellOf(b.Min, invWidth), CellOf(b.Max, invWidth)}
}

// Contains returns true if the cell lies within the bounds.
func (cb *CellBounds) Contains(c Cell) bool {
	for d := 0; d < 3; d++ {
		if c[d] < cb.Min[d] || c[d] > cb.Max[d] { return false }
	}
	return true
}

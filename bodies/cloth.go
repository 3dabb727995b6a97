package bodies

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/phil-mansfield/gopbd/body"
	"github.com/phil-mansfield/gopbd/constraint"
	"github.com/phil-mansfield/gopbd/source"
)

// GridTriangles is a triangulated rectangular sheet.
type GridTriangles interface {
	source.TriangleSource
	Rows() int
	Columns() int
}

// BendingModel selects how a cloth resists folding.
type BendingModel int

const (
	// ThreePointBending keeps every run of three grid particles straight.
	ThreePointBending BendingModel = iota
	// DihedralBending keeps the angle across every interior edge.
	DihedralBending
	// IsometricBending penalizes curvature across every interior edge.
	IsometricBending
)

var bendingNames = []string{"ThreePoint", "Dihedral", "Isometric"}

func (m BendingModel) String() string {
	if m < 0 || int(m) >= len(bendingNames) { return "Unknown" }
	return bendingNames[m]
}

func BendingModelFromString(s string) (BendingModel, bool) {
	for i, name := range bendingNames {
		if name == s { return BendingModel(i), true }
	}
	return ThreePointBending, false
}

// ClothParams describes the material of a cloth.
type ClothParams struct {
	Radius, Mass                    float64
	StretchStiffness, BendStiffness float64
	Bending                         BendingModel
}

// NewCloth creates a sheet with distance constraints along grid rows,
// columns and both cell diagonals, and bending constraints chosen by
// p.Bending.
func NewCloth(s GridTriangles, p *ClothParams, rts mgl64.Mat4) (*body.Body, error) {
	b, err := place(s, p.Radius, p.Mass, rts)
	if err != nil { return nil, err }

	b.Indices = append([]int{}, s.Indices()...)
	b.Topology = body.TopologyTriangles

	if err = addStretch(b, s.Rows(), s.Columns(), p.StretchStiffness); err != nil {
		return nil, fmt.Errorf("Could not build cloth: %w", err)
	}

	switch p.Bending {
	case ThreePointBending:
		err = addThreePoint(b, s.Rows(), s.Columns(), p.BendStiffness)
	case DihedralBending, IsometricBending:
		err = addHinges(b, p.Bending, p.BendStiffness)
	default:
		err = fmt.Errorf("Unknown bending model %d.", p.Bending)
	}
	if err != nil { return nil, fmt.Errorf("Could not build cloth: %w", err) }

	return b, nil
}

func addStretch(b *body.Body, rows, cols int, k float64) error {
	width, height := rows+1, cols+1
	add := func(i0, i1 int) error {
		c, err := constraint.NewDistance(b, i0, i1, k)
		if err != nil { return err }
		b.AddConstraint(c)
		return nil
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width-1; x++ {
			if err := add(y*width+x, y*width+x+1); err != nil { return err }
		}
	}

	for x := 0; x < width; x++ {
		for y := 0; y < height-1; y++ {
			if err := add(y*width+x, (y+1)*width+x); err != nil { return err }
		}
	}

	for y := 0; y < height-1; y++ {
		for x := 0; x < width-1; x++ {
			if err := add(y*width+x, (y+1)*width+x+1); err != nil { return err }
			if err := add((y+1)*width+x, y*width+x+1); err != nil { return err }
		}
	}

	return nil
}

func addThreePoint(b *body.Body, rows, cols int, k float64) error {
	width := rows + 1
	add := func(i0, i1, i2 int) error {
		c, err := constraint.NewBending(b, i0, i1, i2, k)
		if err != nil { return err }
		b.AddConstraint(c)
		return nil
	}

	for i := 0; i <= rows; i++ {
		for j := 0; j < cols-1; j++ {
			err := add(j*width+i, (j+1)*width+i, (j+2)*width+i)
			if err != nil { return err }
		}
	}

	for i := 0; i < rows-1; i++ {
		for j := 0; j <= cols; j++ {
			err := add(j*width+i, j*width+i+1, j*width+i+2)
			if err != nil { return err }
		}
	}

	return nil
}

// Hinge is a pair of triangles sharing the edge (E0, E1). O0 and O1 are the
// corners opposite the edge.
type Hinge struct {
	O0, O1, E0, E1 int
}

// Hinges returns every interior edge of a triangle mesh in order of first
// appearance. Edges shared by more than two triangles are skipped.
func Hinges(indices []int) []Hinge {
	type side struct {
		hinge Hinge
		count int
	}
	edges := map[[2]int]*side{}
	var order [][2]int

	for t := 0; t+3 <= len(indices); t += 3 {
		tri := indices[t : t+3]
		for k := 0; k < 3; k++ {
			e0, e1, o := tri[k], tri[(k+1)%3], tri[(k+2)%3]
			key := [2]int{e0, e1}
			if e0 > e1 { key = [2]int{e1, e0} }

			s, ok := edges[key]
			if !ok {
				edges[key] = &side{Hinge{O0: o, E0: e0, E1: e1}, 1}
				order = append(order, key)
				continue
			}
			s.hinge.O1 = o
			s.count++
		}
	}

	var out []Hinge
	for _, key := range order {
		if s := edges[key]; s.count == 2 { out = append(out, s.hinge) }
	}
	return out
}

func addHinges(b *body.Body, m BendingModel, k float64) error {
	for _, h := range Hinges(b.Indices) {
		var c body.Constraint
		var err error
		if m == DihedralBending {
			c, err = constraint.NewDihedral(b, h.O0, h.O1, h.E0, h.E1, k)
		} else {
			c, err = constraint.NewIsometricBending(b, h.O0, h.O1, h.E0, h.E1, k)
		}
		if err != nil { return err }
		b.AddConstraint(c)
	}
	return nil
}

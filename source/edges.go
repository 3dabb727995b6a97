package source

import (
	"github.com/go-gl/mathgl/mgl64"
)

// EdgePattern lists the corner pairs joined by an edge in one element.
type EdgePattern [][2]int

var (
	TriangleEdges = EdgePattern{{0, 1}, {1, 2}, {2, 0}}
	TetraEdges    = EdgePattern{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {3, 2}, {1, 3}}
)

// Corners returns the number of corners per element.
func (pat EdgePattern) Corners() int {
	n := 0
	for _, e := range pat {
		if e[0] >= n { n = e[0] + 1 }
		if e[1] >= n { n = e[1] + 1 }
	}
	return n
}

// Edges returns the unique edges of a mesh as index pairs, in order of first
// appearance. An edge and its reverse are the same edge.
func Edges(indices []int, pat EdgePattern) []int {
	n := pat.Corners()
	seen := map[[2]int]bool{}
	var out []int

	for start := 0; start+n <= len(indices); start += n {
		for _, e := range pat {
			i0, i1 := indices[start+e[0]], indices[start+e[1]]
			if seen[[2]int{i0, i1}] || seen[[2]int{i1, i0}] { continue }
			seen[[2]int{i0, i1}] = true
			out = append(out, i0, i1)
		}
	}

	return out
}

// RTS returns the transformation which scales, then rotates, then
// translates.
func RTS(translation mgl64.Vec3, rotation mgl64.Quat, scale mgl64.Vec3) mgl64.Mat4 {
	t := mgl64.Translate3D(translation[0], translation[1], translation[2])
	s := mgl64.Scale3D(scale[0], scale[1], scale[2])
	return t.Mul4(rotation.Mat4()).Mul4(s)
}

// Transform applies an affine transformation to a copy of ps.
func Transform(ps []mgl64.Vec3, m mgl64.Mat4) []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(ps))
	for i, p := range ps {
		out[i] = m.Mul4x1(p.Vec4(1)).Vec3()
	}
	return out
}

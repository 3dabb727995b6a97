/*package mat contains the 3x3 matrix decompositions used by the constraint
solvers: symmetric eigen decomposition by Jacobi rotations, polar
decompositions and a singular value decomposition which keeps both of its
orthogonal factors proper rotations.

All matrices are mgl64.Mat3 values, which are stored column-major.
*/
package mat

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	jacobiEps = 1e-15
	polarEps  = 1e-15
	svdEps    = 1e-4

	// maxJacobiRotations bounds EigenDecomposition, which stops once the
	// off-diagonal terms are below jacobiEps relative to the diagonal.
	maxJacobiRotations = 50

	// maxPolarIterations bounds PolarDecompositionStable. Convergence is
	// quadratic, so this is only reached for non-finite input.
	maxPolarIterations = 100
)

// SingularEps is the determinant magnitude below which Inverse3 treats a
// matrix as singular.
var SingularEps = 1e-12

// Inverse3 returns the inverse of m. ok is false if m is singular, in
// which case the identity is returned.
func Inverse3(m mgl64.Mat3) (inv mgl64.Mat3, ok bool) {
	det := m.Det()
	if math.Abs(det) < SingularEps || math.IsNaN(det) {
		return mgl64.Ident3(), false
	}
	return m.Inv(), true
}

// JacobiRotate rotates the symmetric matrix a in the pq-plane so that
// a(p, q) = 0 and accumulates the rotation into r, whose columns converge
// to the eigenvectors of a.
func JacobiRotate(a, r *mgl64.Mat3, p, q int) {
	if p == q || p < 0 || q < 0 || p > 2 || q > 2 {
		panic("p and q must be distinct indices in the range [0, 3).")
	}

	apq := a.At(p, q)
	if apq == 0 { return }

	d := (a.At(p, p) - a.At(q, q)) / (2 * apq)
	t := 1 / (math.Abs(d) + math.Sqrt(d*d+1))
	if d < 0 { t = -t }
	c := 1 / math.Sqrt(t*t+1)
	s := t * c

	a.Set(p, p, a.At(p, p)+t*apq)
	a.Set(q, q, a.At(q, q)-t*apq)
	a.Set(p, q, 0)
	a.Set(q, p, 0)

	for k := 0; k < 3; k++ {
		if k == p || k == q { continue }
		akp := c*a.At(k, p) + s*a.At(k, q)
		akq := -s*a.At(k, p) + c*a.At(k, q)
		a.Set(k, p, akp)
		a.Set(p, k, akp)
		a.Set(k, q, akq)
		a.Set(q, k, akq)
	}

	for k := 0; k < 3; k++ {
		rkp := c*r.At(k, p) + s*r.At(k, q)
		rkq := -s*r.At(k, p) + c*r.At(k, q)
		r.Set(k, p, rkp)
		r.Set(k, q, rkq)
	}
}

// EigenDecomposition computes the eigenvectors and eigenvalues of the
// symmetric matrix a. Column i of vecs is the eigenvector of vals[i]. The
// eigenvalues are not sorted.
func EigenDecomposition(a mgl64.Mat3) (vecs mgl64.Mat3, vals mgl64.Vec3) {
	d := a
	vecs = mgl64.Ident3()

	for iter := 0; iter < maxJacobiRotations; iter++ {
		p, q := 0, 1
		max := math.Abs(d.At(0, 1))
		if x := math.Abs(d.At(0, 2)); x > max {
			p, q, max = 0, 2, x
		}
		if x := math.Abs(d.At(1, 2)); x > max {
			p, q, max = 1, 2, x
		}
		scale := math.Abs(d.At(0, 0)) + math.Abs(d.At(1, 1)) + math.Abs(d.At(2, 2))
		if max <= jacobiEps*scale { break }

		JacobiRotate(&d, &vecs, p, q)
	}

	return vecs, mgl64.Vec3{d.At(0, 0), d.At(1, 1), d.At(2, 2)}
}

// PolarDecomposition factors a = (u d uᵀ) r, where r is orthonormal, u
// holds the eigenvectors of a aᵀ and d is the diagonal matrix of their
// square-rooted eigenvalues.
func PolarDecomposition(a mgl64.Mat3) (r, u, d mgl64.Mat3) {
	aat := a.Mul3(a.Transpose())

	u, vals := EigenDecomposition(aat)

	var sqrts, inv mgl64.Vec3
	for i := 0; i < 3; i++ {
		sqrts[i] = math.Sqrt(math.Max(vals[i], 0))
		if vals[i] > polarEps { inv[i] = 1 / sqrts[i] }
	}
	d = mgl64.Diag3(sqrts)

	// s1 = u diag(inv) uᵀ = (a aᵀ)^(-1/2) on the non-null space.
	s1 := u.Mul3(mgl64.Diag3(inv)).Mul3(u.Transpose())
	r = s1.Mul3(a)

	c0, c1, c2 := r.Col(0), r.Col(1), r.Col(2)
	switch {
	case c0.Dot(c0) < polarEps:
		c0 = c1.Cross(c2)
	case c1.Dot(c1) < polarEps:
		c1 = c2.Cross(c0)
	default:
		c2 = c0.Cross(c1)
	}
	r = mgl64.Mat3FromCols(c0, c1, c2)

	return r, u, d
}

// OneNorm returns the maximum absolute column sum of a.
func OneNorm(a mgl64.Mat3) float64 {
	max := 0.0
	for j := 0; j < 3; j++ {
		sum := math.Abs(a.At(0, j)) + math.Abs(a.At(1, j)) + math.Abs(a.At(2, j))
		if sum > max { max = sum }
	}
	return max
}

// InfNorm returns the maximum absolute row sum of a.
func InfNorm(a mgl64.Mat3) float64 {
	max := 0.0
	for i := 0; i < 3; i++ {
		sum := math.Abs(a.At(i, 0)) + math.Abs(a.At(i, 1)) + math.Abs(a.At(i, 2))
		if sum > max { max = sum }
	}
	return max
}

// PolarDecompositionStable returns the rotation part of m using a scaled
// Newton iteration that tolerates rank-deficient input. Rank 2 and rank 1
// matrices are completed with cross products of their remaining rows. A
// zero matrix returns the identity. The result is always a proper rotation.
func PolarDecompositionStable(m mgl64.Mat3, tolerance float64) mgl64.Mat3 {
	mt := m.Transpose()
	mOne, mInf := OneNorm(m), InfNorm(m)

	for iter := 0; iter < maxPolarIterations; iter++ {
		var adj mgl64.Mat3
		adj.SetRow(0, mt.Row(1).Cross(mt.Row(2)))
		adj.SetRow(1, mt.Row(2).Cross(mt.Row(0)))
		adj.SetRow(2, mt.Row(0).Cross(mt.Row(1)))

		det := mt.Row(0).Dot(adj.Row(0))

		if math.Abs(det) < polarEps {
			index := -1
			for i := 0; i < 3; i++ {
				if row := adj.Row(i); row.Dot(row) > polarEps {
					index = i
					break
				}
			}
			if index < 0 { return mgl64.Ident3() }

			i1, i2 := (index+1)%3, (index+2)%3
			mt.SetRow(index, mt.Row(i1).Cross(mt.Row(i2)))
			adj.SetRow(i1, mt.Row(i2).Cross(mt.Row(index)))
			adj.SetRow(i2, mt.Row(index).Cross(mt.Row(i1)))

			m2 := mt.Transpose()
			mOne, mInf = OneNorm(m2), InfNorm(m2)
			det = mt.Row(0).Dot(adj.Row(0))
		}

		adjOne, adjInf := OneNorm(adj), InfNorm(adj)
		gamma := math.Sqrt(math.Sqrt((adjOne*adjInf)/(mOne*mInf)) / math.Abs(det))
		g1 := gamma * 0.5
		g2 := 0.5 / (gamma * det)

		next := mt.Mul(g1).Add(adj.Mul(g2))
		eOne := OneNorm(mt.Sub(next))
		mt = next

		mOne, mInf = OneNorm(mt), InfNorm(mt)
		if !(eOne > mOne*tolerance) { break }
	}

	r := mt.Transpose()
	if r.Det() < 0 {
		// The iteration preserves orientation. Reflections take the closest
		// proper rotation instead.
		_, u, vt := SVDWithInversionHandling(m)
		return u.Mul3(vt)
	}
	return r
}

// SVDWithInversionHandling factors a = u diag(sigma) vt where u and vt are
// proper rotations. If a is a reflection (an inverted element) the sign is
// moved onto the smallest singular value, as in Irving et al. 2004.
func SVDWithInversionHandling(a mgl64.Mat3) (sigma mgl64.Vec3, u, vt mgl64.Mat3) {
	v, s := EigenDecomposition(a.Transpose().Mul3(a))

	if v.Det() < 0 {
		pos := minIndex(s)
		v.SetCol(pos, v.Col(pos).Mul(-1))
	}

	for i := 0; i < 3; i++ {
		sigma[i] = math.Sqrt(math.Max(s[i], 0))
	}
	vt = v.Transpose()

	small, pos := 0, 0
	for i := 0; i < 3; i++ {
		if math.Abs(sigma[i]) < svdEps {
			pos = i
			small++
		}
	}

	switch {
	case small > 1:
		u = mgl64.Ident3()
	case small == 1:
		u = a.Mul3(v)
		var cols [2]mgl64.Vec3
		n := 0
		for i := 0; i < 3; i++ {
			if i == pos { continue }
			u.SetCol(i, u.Col(i).Mul(1/sigma[i]))
			cols[n] = u.Col(i)
			n++
		}
		n0 := cols[0].Cross(cols[1]).Normalize()
		if a.Mul3x1(v.Col(pos)).Dot(n0) < 0 { n0 = n0.Mul(-1) }
		u.SetCol(pos, n0)
	default:
		u = a.Mul3(v)
		for i := 0; i < 3; i++ {
			u.SetCol(i, u.Col(i).Mul(1/sigma[i]))
		}
	}

	if u.Det() < 0 {
		pos := minIndex(sigma)
		sigma[pos] = -sigma[pos]
		u.SetCol(pos, u.Col(pos).Mul(-1))
	}

	return sigma, u, vt
}

func minIndex(v mgl64.Vec3) int {
	pos, min := 0, math.Inf(+1)
	for i := 0; i < 3; i++ {
		if v[i] < min {
			pos, min = i, v[i]
		}
	}
	return pos
}

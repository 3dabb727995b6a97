package constraint

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/phil-mansfield/gopbd/body"
	"github.com/phil-mansfield/gopbd/geom"
	"github.com/phil-mansfield/gopbd/mat"
)

// StrainTetra constrains the Green strain of a tetrahedron, as in Müller et
// al., "Strain Based Dynamics". Each of the six strain components is
// projected in turn, with corrections accumulated Gauss-Seidel style.
type StrainTetra struct {
	positionOnly
	idx [4]int

	// Stretch[i] is the stiffness of the strain along rest axis i. Shear
	// holds the xy, xz and yz shear stiffnesses.
	Stretch, Shear [3]float64
	// NormalizeStretch targets unit stretch exactly instead of unit squared
	// stretch. NormalizeShear projects the cosine of the angle between axes
	// instead of their dot product.
	NormalizeStretch, NormalizeShear bool

	invRest mgl64.Mat3
}

func NewStrainTetra(
	b *body.Body, p0, p1, p2, p3 int, stiffness float64,
) (*StrainTetra, error) {
	if err := b.CheckIndices(p0, p1, p2, p3); err != nil {
		return nil, err
	} else if err := checkStiffness("Strain", stiffness); err != nil {
		return nil, err
	}

	t, _ := geom.NewTetra(b.Positions, p0, p1, p2, p3)
	inv, ok := mat.Inverse3(t.EdgeMatrix(0))
	if !ok {
		return nil, degenerate("Tetrahedron (%d, %d, %d, %d) is flat",
			p0, p1, p2, p3)
	}

	return &StrainTetra{
		idx:     [4]int{p0, p1, p2, p3},
		Stretch: [3]float64{stiffness, stiffness, stiffness},
		Shear:   [3]float64{stiffness, stiffness, stiffness},
		invRest: inv,
	}, nil
}

func (c *StrainTetra) Kind() body.Kind { return body.KindStrainTetra }

// shearIndex maps the lower-triangle pair (i, j), i > j, to an index into
// Shear.
func shearIndex(i, j int) int { return i + j - 1 }

func (c *StrainTetra) ConstrainPositions(b *body.Body, di float64) {
	var p [4]mgl64.Vec3
	for k, i := range c.idx { p[k] = b.Predicted[i] }

	corr := c.solve(p, b.InvMass())
	for k, i := range c.idx {
		b.Predicted[i] = b.Predicted[i].Add(corr[k].Mul(di))
	}
}

func (c *StrainTetra) solve(p [4]mgl64.Vec3, w float64) (corr [4]mgl64.Vec3) {
	inv := c.invRest
	cols := [3]mgl64.Vec3{inv.Col(0), inv.Col(1), inv.Col(2)}

	for i := 0; i < 3; i++ {
		for j := 0; j <= i; j++ {
			base := p[0].Add(corr[0])
			edges := mgl64.Mat3FromCols(
				p[1].Add(corr[1]).Sub(base),
				p[2].Add(corr[2]).Sub(base),
				p[3].Add(corr[3]).Sub(base),
			)

			fi := edges.Mul3x1(cols[i])
			fj := edges.Mul3x1(cols[j])
			sij := fi.Dot(fj)

			shear := c.NormalizeShear && i != j
			var wi, wj, s1, s3 float64
			if shear {
				wi, wj = fi.Len(), fj.Len()
				s1 = 1 / (wi * wj)
				s3 = s1 * s1 * s1
			}

			var d [4]mgl64.Vec3
			for k := 0; k < 3; k++ {
				d[k+1] = fj.Mul(inv.At(k, i)).Add(fi.Mul(inv.At(k, j)))
				if shear {
					d[k+1] = d[k+1].Mul(s1).Sub(
						fi.Mul(wj * wj * inv.At(k, i)).
							Add(fj.Mul(wi * wi * inv.At(k, j))).
							Mul(sij * s3))
				}
				d[0] = d[0].Sub(d[k+1])
			}
			if shear { sij *= s1 }

			lambda := w * (geom.LenSqr(d[0]) + geom.LenSqr(d[1]) +
				geom.LenSqr(d[2]) + geom.LenSqr(d[3]))
			if math.Abs(lambda) < minLength || math.IsNaN(lambda) { continue }

			switch {
			case i == j && c.NormalizeStretch:
				s := math.Sqrt(sij)
				lambda = 2 * s * (s - 1) / lambda * c.Stretch[i]
			case i == j:
				lambda = (sij - 1) / lambda * c.Stretch[i]
			default:
				lambda = sij / lambda * c.Shear[shearIndex(i, j)]
			}

			for k := range corr {
				corr[k] = corr[k].Sub(d[k].Mul(lambda * w))
			}
		}
	}

	return corr
}

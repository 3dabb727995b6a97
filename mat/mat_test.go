package mat

import (
	"math"
	"sort"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/rand"
	gmat "gonum.org/v1/gonum/mat"
)

const testEps = 1e-6

func randomRotation(gen *rand.Rand) mgl64.Mat3 {
	axis := mgl64.Vec3{
		gen.Float64() - 0.5, gen.Float64() - 0.5, gen.Float64() - 0.5,
	}.Normalize()
	angle := gen.Float64() * 2 * math.Pi
	return mgl64.QuatRotate(angle, axis).Mat4().Mat3()
}

// randomMatrix returns r1 diag(s) r2 for random rotations r1 and r2.
func randomMatrix(gen *rand.Rand, s mgl64.Vec3) mgl64.Mat3 {
	return randomRotation(gen).Mul3(mgl64.Diag3(s)).Mul3(randomRotation(gen))
}

func randomSym(gen *rand.Rand) mgl64.Mat3 {
	var m mgl64.Mat3
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			x := 2*gen.Float64() - 1
			m.Set(i, j, x)
			m.Set(j, i, x)
		}
	}
	return m
}

func toDense(m mgl64.Mat3) *gmat.Dense {
	d := gmat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			d.Set(i, j, m.At(i, j))
		}
	}
	return d
}

func assertMatInDelta(t *testing.T, exp, got mgl64.Mat3, delta float64, msg string) {
	for i := 0; i < 9; i++ {
		if math.Abs(exp[i]-got[i]) > delta {
			t.Errorf("%s: expected %v, got %v", msg, exp, got)
			return
		}
	}
}

func assertRotation(t *testing.T, r mgl64.Mat3, msg string) {
	assertMatInDelta(t, mgl64.Ident3(), r.Transpose().Mul3(r), testEps, msg)
	assert.InDelta(t, 1.0, r.Det(), testEps, msg)
}

func TestInverse3(t *testing.T) {
	table := []struct {
		m  mgl64.Mat3
		ok bool
	}{
		{mgl64.Ident3(), true},
		{mgl64.Diag3(mgl64.Vec3{1, 2, 4}), true},
		{mgl64.Diag3(mgl64.Vec3{1, 0, 4}), false},
		{mgl64.Mat3FromCols(
			mgl64.Vec3{1, 2, 3}, mgl64.Vec3{2, 4, 6}, mgl64.Vec3{0, 1, 0},
		), false},
	}

	for i, test := range table {
		inv, ok := Inverse3(test.m)
		if ok != test.ok {
			t.Errorf("%d) Inverse3(%v) gave ok = %v", i, test.m, ok)
		} else if ok {
			assertMatInDelta(t, mgl64.Ident3(), inv.Mul3(test.m), testEps, "inverse")
		} else {
			assert.Equal(t, mgl64.Ident3(), inv, "singular fallback")
		}
	}
}

func TestEigenDecomposition(t *testing.T) {
	gen := rand.New(rand.NewSource(7))

	for i := 0; i < 50; i++ {
		a := randomSym(gen)
		vecs, vals := EigenDecomposition(a)

		for j := 0; j < 3; j++ {
			av := a.Mul3x1(vecs.Col(j))
			lv := vecs.Col(j).Mul(vals[j])
			if !av.ApproxEqualThreshold(lv, testEps) {
				t.Errorf("%d) A v_%d = %v, but lambda v = %v", i, j, av, lv)
			}
		}

		data := make([]float64, 9)
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				data[r*3+c] = a.At(r, c)
			}
		}
		var es gmat.EigenSym
		if !es.Factorize(gmat.NewSymDense(3, data), false) {
			t.Fatalf("%d) gonum could not factorize %v", i, a)
		}
		exp := es.Values(nil)
		got := []float64{vals[0], vals[1], vals[2]}
		sort.Float64s(exp)
		sort.Float64s(got)
		assert.InDeltaSlice(t, exp, got, testEps, "%d) eigenvalues", i)
	}
}

func TestJacobiRotate(t *testing.T) {
	a := mgl64.Mat3FromCols(
		mgl64.Vec3{2, 1, 0}, mgl64.Vec3{1, 2, 0}, mgl64.Vec3{0, 0, 3},
	)
	r := mgl64.Ident3()
	JacobiRotate(&a, &r, 0, 1)

	assert.InDelta(t, 0.0, a.At(0, 1), testEps)
	assert.InDelta(t, 0.0, a.At(1, 0), testEps)
	vals := []float64{a.At(0, 0), a.At(1, 1), a.At(2, 2)}
	sort.Float64s(vals)
	assert.InDeltaSlice(t, []float64{1, 3, 3}, vals, testEps)
	assertRotation(t, r, "accumulated rotation")
}

func TestPolarDecomposition(t *testing.T) {
	gen := rand.New(rand.NewSource(11))

	for i := 0; i < 20; i++ {
		rot := randomRotation(gen)
		s := randomMatrix(gen, mgl64.Vec3{1, 1.5, 2})
		sym := s.Mul3(s.Transpose())
		a := sym.Mul3(rot)

		r, u, d := PolarDecomposition(a)
		assertRotation(t, r, "polar rotation")
		assertMatInDelta(t, rot, r, 1e-5, "polar rotation")
		assertMatInDelta(t, a, u.Mul3(d).Mul3(u.Transpose()).Mul3(r), 1e-5,
			"polar reconstruction")
	}
}

func TestPolarDecompositionStable(t *testing.T) {
	gen := rand.New(rand.NewSource(13))

	for i := 0; i < 50; i++ {
		m := randomMatrix(gen, mgl64.Vec3{
			0.2 + gen.Float64(), 0.2 + gen.Float64(), 0.2 + gen.Float64(),
		})
		r := PolarDecompositionStable(m, 1e-10)
		assertRotation(t, r, "stable polar rotation")

		var svd gmat.SVD
		if !svd.Factorize(toDense(m), gmat.SVDFull) {
			t.Fatalf("%d) gonum could not factorize %v", i, m)
		}
		var gu, gv, uvt gmat.Dense
		svd.UTo(&gu)
		svd.VTo(&gv)
		uvt.Mul(&gu, gv.T())

		for row := 0; row < 3; row++ {
			for col := 0; col < 3; col++ {
				assert.InDelta(t, uvt.At(row, col), r.At(row, col), 1e-6,
					"%d) R(%d, %d)", i, row, col)
			}
		}
	}
}

func TestPolarDecompositionStableDegenerate(t *testing.T) {
	table := []mgl64.Mat3{
		// rank 2
		mgl64.Mat3FromCols(
			mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 0, 0},
		),
		// rank 1
		mgl64.Mat3FromCols(
			mgl64.Vec3{1, 1, 0}, mgl64.Vec3{2, 2, 0}, mgl64.Vec3{3, 3, 0},
		),
		mgl64.Diag3(mgl64.Vec3{2, 3, 0}),
	}

	for i, m := range table {
		r := PolarDecompositionStable(m, 1e-6)
		assertRotation(t, r, "degenerate polar rotation")
		if t.Failed() {
			t.Errorf("%d) PolarDecompositionStable(%v) = %v", i, m, r)
		}
	}

	assert.Equal(t, mgl64.Ident3(), PolarDecompositionStable(mgl64.Mat3{}, 1e-6))
}

func TestPolarDecompositionStableReflection(t *testing.T) {
	gen := rand.New(rand.NewSource(19))
	for i := 0; i < 20; i++ {
		m := randomMatrix(gen, mgl64.Vec3{0.5, 1, -2})
		r := PolarDecompositionStable(m, 1e-8)
		assertRotation(t, r, "reflection polar rotation")
	}
}

func TestSVDWithInversionHandling(t *testing.T) {
	gen := rand.New(rand.NewSource(17))

	table := []struct {
		s        mgl64.Vec3
		inverted bool
	}{
		{mgl64.Vec3{1, 2, 3}, false},
		{mgl64.Vec3{0.5, 0.7, 1.3}, false},
		{mgl64.Vec3{1, 2, -0.5}, true},
		{mgl64.Vec3{-1, 2, 3}, true},
	}

	for i, test := range table {
		for k := 0; k < 10; k++ {
			a := randomMatrix(gen, test.s)
			sigma, u, vt := SVDWithInversionHandling(a)

			assertRotation(t, u, "U")
			assertRotation(t, vt, "Vt")
			assertMatInDelta(t, a, u.Mul3(mgl64.Diag3(sigma)).Mul3(vt), 1e-5,
				"SVD reconstruction")

			negative := sigma[0] < 0 || sigma[1] < 0 || sigma[2] < 0
			assert.Equal(t, test.inverted, negative, "%d) sigma = %v", i, sigma)

			var svd gmat.SVD
			if !svd.Factorize(toDense(a), gmat.SVDNone) {
				t.Fatalf("%d) gonum could not factorize %v", i, a)
			}
			exp := svd.Values(nil)
			got := []float64{
				math.Abs(sigma[0]), math.Abs(sigma[1]), math.Abs(sigma[2]),
			}
			sort.Float64s(exp)
			sort.Float64s(got)
			assert.InDeltaSlice(t, exp, got, 1e-6, "%d) singular values", i)
		}
	}
}

func TestSVDDegenerate(t *testing.T) {
	table := []mgl64.Mat3{
		mgl64.Diag3(mgl64.Vec3{1, 2, 0}),
		mgl64.Diag3(mgl64.Vec3{1, 0, 0}),
		{},
	}

	for i, a := range table {
		sigma, u, vt := SVDWithInversionHandling(a)
		assertRotation(t, u, "U")
		assertRotation(t, vt, "Vt")
		assertMatInDelta(t, a, u.Mul3(mgl64.Diag3(sigma)).Mul3(vt), 1e-6,
			"degenerate SVD reconstruction")
		if t.Failed() {
			t.Errorf("%d) SVD of %v gave %v, %v, %v", i, a, sigma, u, vt)
		}
	}
}

func TestSVDNearSingular(t *testing.T) {
	gen := rand.New(rand.NewSource(29))

	for i := 0; i < 2000; i++ {
		var s mgl64.Vec3
		for k := range s { s[k] = 0.5 + 2.5*gen.Float64() }
		small := math.Pow(10, -6+1.7*gen.Float64())
		if gen.Intn(2) == 0 { small = -small }
		s[gen.Intn(3)] = small

		a := randomMatrix(gen, s)
		sigma, u, vt := SVDWithInversionHandling(a)

		assertRotation(t, u, "U")
		assertRotation(t, vt, "Vt")
		assertMatInDelta(t, a, u.Mul3(mgl64.Diag3(sigma)).Mul3(vt), 1e-8,
			"near-singular SVD reconstruction")

		negative := sigma[0] < 0 || sigma[1] < 0 || sigma[2] < 0
		if negative != (small < 0) {
			t.Errorf("%d) singular values %v of %v, expected inverted = %v",
				i, s, sigma, small < 0)
		}
		if t.Failed() { return }
	}
}

func TestEigenDecompositionConverges(t *testing.T) {
	gen := rand.New(rand.NewSource(31))

	for i := 0; i < 2000; i++ {
		s := mgl64.Vec3{
			math.Pow(10, 3*gen.Float64()-2),
			math.Pow(10, 3*gen.Float64()-2),
			math.Pow(10, 3*gen.Float64()-2),
		}
		r := randomRotation(gen)
		a := r.Mul3(mgl64.Diag3(s)).Mul3(r.Transpose())

		vecs, vals := EigenDecomposition(a)
		d := vecs.Transpose().Mul3(a).Mul3(vecs)
		norm := math.Abs(vals[0]) + math.Abs(vals[1]) + math.Abs(vals[2])
		for _, pq := range [][2]int{{0, 1}, {0, 2}, {1, 2}} {
			if off := math.Abs(d.At(pq[0], pq[1])); off > 1e-12*norm {
				t.Fatalf("%d) off-diagonal term %g of %v for eigenvalues %v",
					i, off, d, s)
			}
		}
	}
}

func TestNorms(t *testing.T) {
	m := mgl64.Mat3FromCols(
		mgl64.Vec3{1, -2, 3}, mgl64.Vec3{0, 4, 0}, mgl64.Vec3{-1, 1, -1},
	)
	assert.InDelta(t, 6.0, OneNorm(m), testEps)
	assert.InDelta(t, 7.0, InfNorm(m), testEps)
}

func BenchmarkPolarDecompositionStable(b *testing.B) {
	gen := rand.New(rand.NewSource(1))
	m := randomMatrix(gen, mgl64.Vec3{1, 2, 3})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		PolarDecompositionStable(m, 1e-6)
	}
}

func BenchmarkSVDWithInversionHandling(b *testing.B) {
	gen := rand.New(rand.NewSource(1))
	m := randomMatrix(gen, mgl64.Vec3{1, 2, -3})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		SVDWithInversionHandling(m)
	}
}

package body

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/phil-mansfield/gopbd/geom"
)

// shove moves one particle by a fixed offset every projection.
type shove struct {
	i      int
	offset mgl64.Vec3
	id     int
}

func (s *shove) ConstrainPositions(b *Body, di float64) {
	b.Predicted[s.i] = b.Predicted[s.i].Add(s.offset.Mul(di))
}
func (s *shove) ConstrainVelocities(b *Body) {}
func (s *shove) Kind() Kind                  { return KindDistance }

func TestNewBody(t *testing.T) {
	table := []struct {
		n            int
		radius, mass float64
		err          error
	}{
		{10, 0.1, 1, nil},
		{0, 0.1, 1, nil},
		{10, 0.1, 0, ErrNonPositiveMass},
		{10, 0.1, -1, ErrNonPositiveMass},
		{10, 0, 1, ErrNonPositiveRadius},
		{-1, 0.1, 1, ErrNegativeCount},
	}

	for i, test := range table {
		b, err := NewBody(test.n, test.radius, test.mass)
		if test.err == nil {
			require.NoError(t, err, "%d)", i)
			assert.Len(t, b.Positions, test.n, "%d)", i)
			assert.Len(t, b.Predicted, test.n, "%d)", i)
			assert.Len(t, b.Velocities, test.n, "%d)", i)
			assert.Equal(t, 1.0, b.Damping, "%d)", i)
			assert.Equal(t, 2*test.radius, b.Diameter(), "%d)", i)
		} else if !errors.Is(err, test.err) {
			t.Errorf("%d) NewBody(%d, %g, %g) gave error %v, not %v",
				i, test.n, test.radius, test.mass, err, test.err)
		}
	}
}

func TestCheckIndices(t *testing.T) {
	b, err := NewBody(4, 1, 1)
	require.NoError(t, err)

	table := []struct {
		is  []int
		err error
	}{
		{[]int{0, 1, 2, 3}, nil},
		{[]int{3}, nil},
		{[]int{0, 4}, ErrIndexOutOfRange},
		{[]int{-1}, ErrIndexOutOfRange},
		{[]int{1, 2, 1}, ErrRepeatedIndex},
	}

	for i, test := range table {
		err := b.CheckIndices(test.is...)
		if test.err == nil {
			assert.NoError(t, err, "%d)", i)
		} else {
			assert.True(t, errors.Is(err, test.err), "%d) got %v", i, err)
		}
	}
}

func TestStaticWins(t *testing.T) {
	ps := []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}}
	b, err := NewBodyAt(ps, 0.1, 1)
	require.NoError(t, err)

	b.AddConstraint(&shove{i: 0, offset: mgl64.Vec3{0, 1, 0}})
	b.AddConstraint(&shove{i: 2, offset: mgl64.Vec3{0, 1, 0}})
	require.NoError(t, b.Pin(0))
	assert.Error(t, b.Pin(3))

	for iter := 0; iter < 5; iter++ {
		b.ConstrainPositions(1)
	}

	assert.Equal(t, ps[0], b.Predicted[0])
	assert.Equal(t, ps[0], b.Positions[0])
	assert.Equal(t, mgl64.Vec3{2, 5, 0}, b.Predicted[2])
	assert.True(t, b.IsStatic(0))
	assert.False(t, b.IsStatic(2))
}

func TestMarkAsStatic(t *testing.T) {
	ps := []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}, {3, 0, 0}}
	b, err := NewBodyAt(ps, 0.1, 1)
	require.NoError(t, err)

	box := geom.NewBox(mgl64.Vec3{0.5, -1, -1}, mgl64.Vec3{2.5, 1, 1})
	assert.Equal(t, 2, b.MarkAsStatic(box))
	assert.Equal(t, 2, b.NumStatic())

	b.Predicted[1] = mgl64.Vec3{9, 9, 9}
	b.ConstrainPositions(0)
	assert.Equal(t, ps[1], b.Predicted[1])
}

func TestUpdateBounds(t *testing.T) {
	b, err := NewBodyAt([]mgl64.Vec3{{0, 0, 0}, {1, 2, 3}}, 0.5, 1)
	require.NoError(t, err)

	b.Predicted[1] = mgl64.Vec3{2, 2, 2}
	b.UpdateBounds()
	assert.Equal(t, mgl64.Vec3{-0.5, -0.5, -0.5}, b.Bounds.Min)
	assert.Equal(t, mgl64.Vec3{2.5, 2.5, 2.5}, b.Bounds.Max)

	empty, err := NewBody(0, 0.5, 1)
	require.NoError(t, err)
	empty.UpdateBounds()
	assert.True(t, empty.Bounds.IsEmpty())
}

func TestRandomizeConstraintOrder(t *testing.T) {
	b, err := NewBody(1, 1, 1)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		b.AddConstraint(&shove{id: i})
	}

	b.RandomizeConstraintOrder(rand.New(rand.NewSource(3)))
	require.Equal(t, 20, b.NumConstraints())

	seen := map[int]bool{}
	for _, c := range b.Constraints {
		seen[c.(*shove).id] = true
	}
	assert.Len(t, seen, 20)
}

func TestRandomizePositions(t *testing.T) {
	b, err := NewBody(50, 1, 1)
	require.NoError(t, err)
	b.RandomizePositions(rand.New(rand.NewSource(5)), 0.1)
	for i, p := range b.Positions {
		for d := 0; d < 3; d++ {
			if p[d] < -0.1 || p[d] > 0.1 {
				t.Errorf("%d) jittered position %v is out of range", i, p)
			}
		}
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "FEMTetra", KindFEMTetra.String())
	assert.Equal(t, "Static", (&Static{}).Kind().String())
	assert.Equal(t, "Unknown", Kind(100).String())
	assert.Equal(t, 4, TopologyTetrahedra.Arity())
}

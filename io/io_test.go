package io

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"os"
	"path"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/gopbd/bodies"
)

const testRun = `[Run]
Steps = 10
TimeStep = 0.01
`

func TestExampleConfigs(t *testing.T) {
	table := []string{
		ExampleClothFile, ExampleDeformableFile, ExampleRigidFile,
		ExampleFluidFile,
	}

	for i, example := range table {
		_, err := ReadSceneString(ExampleRunFile + "\n\n" + example)
		assert.NoError(t, err, "%d) example failed to parse", i)
	}
}

func TestDefaults(t *testing.T) {
	w, err := ReadSceneString(testRun + `
[Cloth "sheet"]
Width = 1
Height = 1
Radius = 0.05
`)
	require.NoError(t, err)

	assert.Equal(t, 10, w.Run.Steps)
	assert.Equal(t, 0.01, w.Run.TimeStep)
	assert.Equal(t, DefaultLogEvery, w.Run.LogEvery)
	assert.Equal(t, mgl64.Vec3{0, -9.81, 0}, w.Run.Gravity())
	assert.Equal(t, 0, w.Run.OutputEvery)
	assert.False(t, w.Run.WritesFrame(0))

	c := w.Cloth["sheet"]
	require.NotNil(t, c)
	assert.Equal(t, "sheet", c.Name)
	assert.Equal(t, 1.0, c.Mass)
	assert.Equal(t, 1.0, c.Scale)
	assert.Equal(t, 1.0, c.StretchStiffness)
	assert.Equal(t, DefaultBendStiff, c.BendStiffness)
	assert.Equal(t, bodies.DihedralBending, c.Params().Bending)
	assert.Nil(t, c.Pinned(c.Source()))
}

func TestOutputEvery(t *testing.T) {
	w, err := ReadSceneString(`[Run]
Steps = 10
TimeStep = 0.01
Output = frames
OutputEvery = 3

[Rigid "box"]
Width = 0.4
Height = 0.4
Depth = 0.4
Radius = 0.05
`)
	require.NoError(t, err)

	table := []struct {
		step   int
		writes bool
	}{
		{0, true}, {1, false}, {2, false}, {3, true}, {9, true},
	}
	for i, test := range table {
		assert.Equal(t, test.writes, w.Run.WritesFrame(test.step), "%d)", i)
	}
}

func TestCheckInitErrors(t *testing.T) {
	table := []struct {
		name, body string
	}{
		{"no bodies", ""},
		{"no radius", `[Cloth "a"]
Width = 1
Height = 1`},
		{"bad bending", `[Cloth "a"]
Width = 1
Height = 1
Radius = 0.1
Bending = Origami`},
		{"bad pin", `[Cloth "a"]
Width = 1
Height = 1
Radius = 0.1
Pin = Middle`},
		{"stiffness", `[Cloth "a"]
Width = 1
Height = 1
Radius = 0.1
StretchStiffness = 2`},
		{"bad model", `[Deformable "a"]
Width = 1
Height = 1
Depth = 1
Radius = 0.1
Model = Spring`},
		{"poisson", `[Deformable "a"]
Width = 1
Height = 1
Depth = 1
Radius = 0.1
PoissonRatio = 0.5`},
		{"no depth", `[Rigid "a"]
Width = 1
Height = 1
Radius = 0.1`},
		{"scale", `[Rigid "a"]
Width = 1
Height = 1
Depth = 1
Radius = 0.1
Scale = -1`},
		{"orphan boundary", `[Boundary "a"]
Width = 1
Height = 1
Depth = 1
Radius = 0.1`},
		{"mixed fluid", `[Fluid "a"]
Width = 1
Height = 1
Depth = 1
Radius = 0.1

[Rigid "b"]
Width = 1
Height = 1
Depth = 1
Radius = 0.1`},
		{"two fluids", `[Fluid "a"]
Width = 1
Height = 1
Depth = 1
Radius = 0.1

[Fluid "b"]
Width = 1
Height = 1
Depth = 1
Radius = 0.1`},
		{"jitter", `[Rigid "a"]
Width = 1
Height = 1
Depth = 1
Radius = 0.1
Jitter = -0.01`},
		{"static box", `[Fluid "a"]
Width = 1
Height = 1
Depth = 1
Radius = 0.1
Static = true
StaticMinY = 1
StaticMaxY = 0`},
		{"unknown variable", `[Rigid "a"]
Width = 1
Height = 1
Depth = 1
Radius = 0.1
Color = red`},
	}

	for i, test := range table {
		_, err := ReadSceneString(testRun + "\n" + test.body)
		assert.Error(t, err, "%d) %s", i, test.name)
	}
}

func TestRunCheckInitErrors(t *testing.T) {
	table := []struct {
		name, run string
	}{
		{"steps", "Steps = -1\nTimeStep = 0.01"},
		{"time step", "Steps = 10\nTimeStep = 0"},
		{"iterations", "Steps = 10\nTimeStep = 0.01\nSolverIterations = 0"},
		{"sleep", "Steps = 10\nTimeStep = 0.01\nSleepThreshold = -1"},
		{"plane", "Steps = 10\nTimeStep = 0.01\nPlane = true"},
	}

	fluid := `
[Fluid "a"]
Width = 0.25
Height = 0.25
Depth = 0.25
Radius = 0.05
`
	for i, test := range table {
		_, err := ReadSceneString("[Run]\n" + test.run + "\n" + fluid)
		assert.Error(t, err, "%d) %s", i, test.name)
	}
}

func TestPlacement(t *testing.T) {
	p := &PlacementConfig{X: 1, RotateY: 90, Scale: 2}
	v := mgl64.TransformCoordinate(mgl64.Vec3{1, 0, 0}, p.RTS())
	assert.InDelta(t, 1, v[0], 1e-9)
	assert.InDelta(t, 0, v[1], 1e-9)
	assert.InDelta(t, -2, v[2], 1e-9)
}

func TestBoundaryInterior(t *testing.T) {
	c := &BoundaryConfig{Radius: 0.05}
	c.Width, c.Height, c.Depth = 0.65, 0.45, 0.65
	require.NoError(t, c.CheckInit("tank"))

	_, ok := c.Interior()
	assert.False(t, ok)
	solid, err := c.Source()
	require.NoError(t, err)
	assert.Equal(t, 6*4*6, len(solid.Positions()))

	c.Thickness = 0.1
	box, ok := c.Interior()
	require.True(t, ok)
	assert.InDelta(t, -0.125, box.Min[1], 1e-9)
	assert.InDelta(t, 0.325, box.Max[1], 1e-9)

	walled, err := c.Source()
	require.NoError(t, err)
	assert.Less(t, len(walled.Positions()), len(solid.Positions()))
	assert.Greater(t, len(walled.Positions()), 0)
	for i, p := range walled.Positions() {
		assert.False(t, box.Contains(p), "%d) %v is inside the tank", i, p)
	}
}

func TestNewSceneCloth(t *testing.T) {
	w, err := ReadSceneString(testRun + `
[Cloth "sheet"]
Width = 0.4
Height = 0.4
Radius = 0.05
Pin = Corners
Y = 1
`)
	require.NoError(t, err)

	sc, err := NewScene(w)
	require.NoError(t, err)
	require.False(t, sc.IsFluid())
	require.Equal(t, []string{"Cloth 'sheet'"}, sc.Names)
	assert.Equal(t, 25, sc.NumParticles())

	b := sc.Bodies[0]
	assert.Equal(t, 2, b.NumStatic())
	pinned := []mgl64.Vec3{b.Positions[0], b.Positions[4]}

	for i := 0; i < w.Run.Steps; i++ { sc.Step() }
	assert.Equal(t, 10, sc.Steps())
	assert.InDelta(t, 0.1, sc.Time(), 1e-12)

	assert.Equal(t, pinned[0], b.Positions[0])
	assert.Equal(t, pinned[1], b.Positions[4])
	assert.Less(t, b.Positions[12][1], 1.0)
}

func TestNewSceneSolids(t *testing.T) {
	w, err := ReadSceneString(`[Run]
Steps = 30
TimeStep = 0.01
Plane = true
Seed = 7
ShuffleConstraints = true

[Rigid "low"]
Width = 0.25
Height = 0.25
Depth = 0.25
Radius = 0.05
Y = 0.2

[Rigid "high"]
Width = 0.25
Height = 0.25
Depth = 0.25
Radius = 0.05
Y = 0.5

[Deformable "jelly"]
Width = 0.25
Height = 0.25
Depth = 0.25
Radius = 0.05
Model = FEM
X = 1
Y = 0.2
`)
	require.NoError(t, err)

	sc, err := NewScene(w)
	require.NoError(t, err)
	require.Equal(t, []string{
		"Deformable 'jelly'", "Rigid 'high'", "Rigid 'low'",
	}, sc.Names)
	assert.Equal(t, 24, sc.NumParticles())

	for i := 0; i < w.Run.Steps; i++ { sc.Step() }

	f := sc.Frame()
	require.NoError(t, f.Check())
	for i, p := range f.Positions {
		for k := 0; k < 3; k++ {
			require.False(t, math.IsNaN(p[k]), "%d) NaN position", i)
		}
		assert.Greater(t, p[1], -0.05, "%d) particle fell through the plane", i)
	}
}

func TestNewSceneFluid(t *testing.T) {
	w, err := ReadSceneString(testRun + `
[Fluid "water"]
Width = 0.25
Height = 0.25
Depth = 0.25
Radius = 0.05
Y = 0.2

[Boundary "floor"]
Width = 1.05
Height = 0.25
Depth = 1.05
Radius = 0.05
Y = -0.125

[Boundary "wall"]
Width = 0.25
Height = 0.45
Depth = 1.05
Radius = 0.05
X = 0.6
`)
	require.NoError(t, err)

	sc, err := NewScene(w)
	require.NoError(t, err)
	require.True(t, sc.IsFluid())
	assert.Equal(t, 8, sc.NumParticles())

	for i := 0; i < w.Run.Steps; i++ { sc.Step() }
	assert.Equal(t, 0, sc.Contacts())

	f := sc.Frame()
	require.NoError(t, f.Check())
	assert.Equal(t, []int64{8}, f.Counts)
	for i, v := range f.Velocities {
		require.False(t, math.IsNaN(v.Len()), "%d) NaN velocity", i)
	}
}

func TestNewSceneBoundaryMismatch(t *testing.T) {
	w, err := ReadSceneString(testRun + `
[Fluid "water"]
Width = 0.25
Height = 0.25
Depth = 0.25
Radius = 0.05

[Boundary "a"]
Width = 0.25
Height = 0.25
Depth = 0.25
Radius = 0.05

[Boundary "b"]
Width = 0.25
Height = 0.25
Depth = 0.25
Radius = 0.1
`)
	require.NoError(t, err)
	_, err = NewScene(w)
	assert.Error(t, err)
}

func testFrame() *Frame {
	return &Frame{
		Header: FrameHeader{Step: 12, Time: 0.2, Bodies: 2, Particles: 3},
		Counts: []int64{1, 2},
		Positions: []mgl64.Vec3{
			{1, 2, 3}, {4, 5, 6}, {7, 8, 9},
		},
		Velocities: []mgl64.Vec3{
			{-1, 0, 0}, {0, -1, 0}, {0, 0, -1},
		},
	}
}

const perturbRigid = `[Rigid "box"]
Width = 0.25
Height = 0.25
Depth = 0.25
Radius = 0.05
Y = 1
`

const pinAll = `Static = true
StaticMinX = -1
StaticMinY = 0.5
StaticMinZ = -1
StaticMaxX = 1
StaticMaxY = 1.5
StaticMaxZ = 1
`

func TestNewScenePerturb(t *testing.T) {
	w0, err := ReadSceneString(testRun + perturbRigid)
	require.NoError(t, err)
	sc0, err := NewScene(w0)
	require.NoError(t, err)

	w1, err := ReadSceneString(testRun + perturbRigid + "Jitter = 0.01\n" + pinAll)
	require.NoError(t, err)
	sc1, err := NewScene(w1)
	require.NoError(t, err)

	b0, b1 := sc0.Bodies[0], sc1.Bodies[0]
	require.Equal(t, b0.NumParticles(), b1.NumParticles())
	assert.Equal(t, 0, b0.NumStatic())
	assert.Equal(t, b1.NumParticles(), b1.NumStatic())

	moved := false
	for i := range b0.Positions {
		d := b1.Positions[i].Sub(b0.Positions[i])
		for k := 0; k < 3; k++ {
			assert.LessOrEqual(t, math.Abs(d[k]), 0.01, "%d) jitter too large", i)
		}
		if d.Len() > 0 { moved = true }
		assert.Equal(t, b1.Positions[i], b1.Predicted[i], "%d)", i)
	}
	assert.True(t, moved, "no particle was jittered")

	start := append([]mgl64.Vec3{}, b1.Positions...)
	for i := 0; i < w1.Run.Steps; i++ { sc1.Step() }
	assert.Equal(t, start, b1.Positions)
}

func TestNewSceneFluidStatic(t *testing.T) {
	w, err := ReadSceneString(testRun + `
[Fluid "water"]
Width = 0.25
Height = 0.25
Depth = 0.25
Radius = 0.05
Y = 1
` + pinAll)
	require.NoError(t, err)
	sc, err := NewScene(w)
	require.NoError(t, err)

	b := sc.Bodies[0]
	assert.Equal(t, 8, b.NumStatic())
	start := append([]mgl64.Vec3{}, b.Positions...)
	for i := 0; i < w.Run.Steps; i++ { sc.Step() }
	assert.Equal(t, start, b.Positions)
}

func TestNewSceneEmptyStatic(t *testing.T) {
	w, err := ReadSceneString(testRun + perturbRigid + `Static = true
StaticMinY = 5
StaticMaxY = 6
`)
	require.NoError(t, err)
	_, err = NewScene(w)
	assert.Error(t, err)
}

func TestFrameIO(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, WriteFrame(buf, testFrame()))

	f, err := ReadFrame(buf)
	require.NoError(t, err)
	assert.Equal(t, testFrame(), f)

	file := FrameName(t.TempDir(), 12)
	assert.Equal(t, "frame_000012.pbd", path.Base(file))
	require.NoError(t, WriteFrameFile(file, testFrame()))
	f, err = ReadFrameFile(file)
	require.NoError(t, err)
	assert.Equal(t, testFrame(), f)
}

func TestFrameCheck(t *testing.T) {
	table := []func(f *Frame){
		func(f *Frame) { f.Counts = f.Counts[:1] },
		func(f *Frame) { f.Counts[0] = 2 },
		func(f *Frame) { f.Positions = f.Positions[:2] },
		func(f *Frame) { f.Velocities = nil },
	}

	for i, breakFrame := range table {
		f := testFrame()
		breakFrame(f)
		assert.Error(t, f.Check(), "%d)", i)
		assert.Error(t, WriteFrame(&bytes.Buffer{}, f), "%d)", i)
	}
}

func TestReadFrameErrors(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, WriteFrame(buf, testFrame()))
	data := buf.Bytes()

	badFlag := append([]byte{}, data...)
	badFlag[0] = 7
	_, err := ReadFrame(bytes.NewReader(badFlag))
	assert.Error(t, err)

	badSize := append([]byte{}, data...)
	badSize[4]++
	_, err = ReadFrame(bytes.NewReader(badSize))
	assert.Error(t, err)

	_, err = ReadFrame(bytes.NewReader(data[:len(data)-8]))
	assert.Error(t, err)
}

// frameHeaderBytes encodes the leading flag, size and header of a frame.
func frameHeaderBytes(t *testing.T, hd FrameHeader) []byte {
	buf := &bytes.Buffer{}
	size := int32(binary.Size(&hd))
	for _, x := range []interface{}{DefaultEndiannessFlag, size, &hd} {
		require.NoError(t, binary.Write(buf, binary.LittleEndian, x))
	}
	return buf.Bytes()
}

func TestReadFrameSizes(t *testing.T) {
	table := []struct {
		hd     FrameHeader
		stream bool
	}{
		{FrameHeader{Bodies: 1, Particles: 1 << 40}, false},
		{FrameHeader{Bodies: 1, Particles: 1 << 40}, true},
		{FrameHeader{Bodies: 1 << 30, Particles: 1}, true},
		{FrameHeader{Bodies: 1, Particles: 1 << 20}, false},
	}

	for i, test := range table {
		data := append(frameHeaderBytes(t, test.hd), make([]byte, 64)...)
		var rd io.Reader = bytes.NewReader(data)
		if test.stream { rd = io.MultiReader(rd) }
		_, err := ReadFrame(rd)
		assert.Error(t, err, "%d)", i)
	}

	file := path.Join(t.TempDir(), "short.pbd")
	hd := FrameHeader{Bodies: 1, Particles: 1 << 20}
	require.NoError(t, os.WriteFile(file, frameHeaderBytes(t, hd), 0644))
	_, err := ReadFrameFile(file)
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	table := []struct {
		vs  []mgl64.Vec3
		exp SpeedSummary
	}{
		{nil, SpeedSummary{}},
		{[]mgl64.Vec3{{3, 4, 0}}, SpeedSummary{5, 0, 5, 5, 12.5}},
		{
			[]mgl64.Vec3{{1, 0, 0}, {0, 2, 0}, {0, 0, 3}},
			SpeedSummary{2, 1, 2, 3, 7},
		},
		{
			[]mgl64.Vec3{{0, 0, 0}, {0, 0, 0}},
			SpeedSummary{0, 0, 0, 0, 0},
		},
	}

	for i, test := range table {
		s := Summarize(test.vs)
		assert.InDelta(t, test.exp.Mean, s.Mean, 1e-12, "%d) Mean", i)
		assert.InDelta(t, test.exp.StdDev, s.StdDev, 1e-12, "%d) StdDev", i)
		assert.InDelta(t, test.exp.Median, s.Median, 1e-12, "%d) Median", i)
		assert.InDelta(t, test.exp.Max, s.Max, 1e-12, "%d) Max", i)
		assert.InDelta(t, test.exp.Energy, s.Energy, 1e-12, "%d) Energy", i)
	}
}

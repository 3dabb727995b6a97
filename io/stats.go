package io

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// SpeedSummary describes the distribution of particle speeds in a frame.
type SpeedSummary struct {
	Mean, StdDev, Median, Max float64
	// Energy is the total kinetic energy per unit particle mass.
	Energy float64
}

// Summarize computes a SpeedSummary for the given velocities. Empty input
// gives a zero summary and a single velocity has zero StdDev.
func Summarize(vs []mgl64.Vec3) SpeedSummary {
	if len(vs) == 0 { return SpeedSummary{} }

	speeds := make([]float64, len(vs))
	sum := SpeedSummary{}
	for i, v := range vs {
		speeds[i] = v.Len()
		sum.Energy += 0.5 * v.Dot(v)
	}

	if len(speeds) == 1 {
		sum.Mean = speeds[0]
	} else {
		sum.Mean, sum.StdDev = stat.MeanStdDev(speeds, nil)
	}
	sum.Max = floats.Max(speeds)

	sort.Float64s(speeds)
	sum.Median = stat.Quantile(0.5, stat.Empirical, speeds, nil)

	return sum
}

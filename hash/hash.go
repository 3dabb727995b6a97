/*package hash implements a uniform-grid spatial hash for fixed-radius
neighbor queries over particle sets.

Buckets are never freed. Instead every bucket carries the generation it was
last filled in, and buckets from older generations read as empty. Callers
advance the generation with IncrementTimeStamp between searches over moved
particles.
*/
package hash

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/phil-mansfield/gopbd/geom"
)

const (
	DefaultMaxNeighbors        = 60
	DefaultMaxParticlesPerCell = 50
)

var (
	// ErrTooManyNeighbors is wrapped by OverflowError.
	ErrTooManyNeighbors = errors.New("too many neighbors detected")
	// ErrTooManyParticles is returned when a search is given more particles
	// than the hash was sized for.
	ErrTooManyParticles = errors.New("particle array larger than expected")
)

// OverflowError reports a particle with more neighbors than the hash can
// store.
type OverflowError struct {
	Particle, Max int
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("Particle %d has more than %d neighbors.",
		e.Particle, e.Max)
}

func (e *OverflowError) Unwrap() error { return ErrTooManyNeighbors }

type bucket struct {
	timeStamp int
	indices   []int
}

// ParticleHash finds all particles within CellSize of each particle.
type ParticleHash struct {
	numParticles        int
	maxNeighbors        int
	maxParticlesPerCell int

	cellSize, invCellSize float64
	timeStamp             int

	grid         map[int32]*bucket
	neighbors    []int
	numNeighbors []int
}

// Option configures a ParticleHash.
type Option func(h *ParticleHash)

// MaxNeighbors sets the number of neighbors stored per particle.
func MaxNeighbors(n int) Option {
	return func(h *ParticleHash) { h.maxNeighbors = n }
}

// MaxParticlesPerCell sets the initial capacity of each bucket.
func MaxParticlesPerCell(n int) Option {
	return func(h *ParticleHash) { h.maxParticlesPerCell = n }
}

// New creates a hash for up to numParticles particles with the given search
// radius.
func New(numParticles int, cellSize float64, opts ...Option) *ParticleHash {
	if numParticles < 0 {
		panic("numParticles must be non-negative.")
	} else if cellSize <= 0 {
		panic("cellSize must be positive.")
	}

	h := &ParticleHash{
		numParticles:        numParticles,
		maxNeighbors:        DefaultMaxNeighbors,
		maxParticlesPerCell: DefaultMaxParticlesPerCell,
		cellSize:            cellSize,
		invCellSize:         1 / cellSize,
		grid:                map[int32]*bucket{},
	}
	for _, opt := range opts { opt(h) }

	if h.maxNeighbors <= 0 {
		panic("MaxNeighbors must be positive.")
	}

	h.neighbors = make([]int, numParticles*h.maxNeighbors)
	h.numNeighbors = make([]int, numParticles)
	return h
}

// NumParticles returns the number of particles the hash was sized for.
// Boundary particles are indexed starting at this value.
func (h *ParticleHash) NumParticles() int { return h.numParticles }

// CellSize returns the search radius.
func (h *ParticleHash) CellSize() float64 { return h.cellSize }

// TimeStamp returns the current generation.
func (h *ParticleHash) TimeStamp() int { return h.timeStamp }

// IncrementTimeStamp advances the generation, invalidating every bucket.
func (h *ParticleHash) IncrementTimeStamp() { h.timeStamp++ }

// Insert adds particle index i at position p to the current generation.
func (h *ParticleHash) Insert(i int, p mgl64.Vec3) {
	key := geom.CellOf(p, h.invCellSize).Hash()
	b, ok := h.grid[key]
	if !ok {
		b = &bucket{
			timeStamp: h.timeStamp,
			indices:   make([]int, 0, h.maxParticlesPerCell),
		}
		h.grid[key] = b
	} else if b.timeStamp != h.timeStamp {
		b.timeStamp = h.timeStamp
		b.indices = b.indices[:0]
	}
	b.indices = append(b.indices, i)
}

// Neighbors returns the neighbors found for particle i by the last search.
// Indices >= NumParticles() refer to boundary particles. The returned slice
// is owned by the hash and is overwritten by the next search.
func (h *ParticleHash) Neighbors(i int) []int {
	start := i * h.maxNeighbors
	return h.neighbors[start : start+h.numNeighbors[i]]
}

// NumNeighbors returns the number of neighbors of particle i.
func (h *ParticleHash) NumNeighbors(i int) int { return h.numNeighbors[i] }

// IsBoundary returns true if neighbor index j refers to a boundary particle.
func (h *ParticleHash) IsBoundary(j int) bool { return j >= h.numParticles }

// NeighborhoodSearch finds the neighbors of every particle among the
// particles themselves.
func (h *ParticleHash) NeighborhoodSearch(particles []mgl64.Vec3) error {
	return h.NeighborhoodSearchBoundary(particles, nil)
}

// NeighborhoodSearchBoundary finds the neighbors of every particle among
// both the particles and a set of static boundary particles. Boundary
// particle k is reported as neighbor index NumParticles() + k.
func (h *ParticleHash) NeighborhoodSearchBoundary(
	particles, boundary []mgl64.Vec3,
) error {
	if len(particles) > h.numParticles {
		return fmt.Errorf("%w: got %d, but the hash holds %d.",
			ErrTooManyParticles, len(particles), h.numParticles)
	}

	for i := range particles {
		h.Insert(i, particles[i])
	}
	for k := range boundary {
		h.Insert(h.numParticles+k, boundary[k])
	}

	r2 := h.cellSize * h.cellSize
	var seen [27]int32

	for i := range particles {
		p0 := particles[i]
		h.numNeighbors[i] = 0
		out := h.neighbors[i*h.maxNeighbors : (i+1)*h.maxNeighbors]
		c0 := geom.CellOf(p0, h.invCellSize)

		nSeen := 0
	cellLoop:
		for _, dc := range geom.Neighborhood {
			key := c0.Add(dc).Hash()
			for _, k := range seen[:nSeen] {
				if k == key { continue cellLoop }
			}
			seen[nSeen] = key
			nSeen++

			b, ok := h.grid[key]
			if !ok || b.timeStamp != h.timeStamp { continue }

			for _, j := range b.indices {
				if j == i { continue }

				var pj mgl64.Vec3
				if j < h.numParticles {
					if j >= len(particles) { continue }
					pj = particles[j]
				} else {
					if j-h.numParticles >= len(boundary) { continue }
					pj = boundary[j-h.numParticles]
				}

				if geom.LenSqr(p0.Sub(pj)) >= r2 { continue }

				n := h.numNeighbors[i]
				if n >= h.maxNeighbors {
					return &OverflowError{Particle: i, Max: h.maxNeighbors}
				}
				out[n] = j
				h.numNeighbors[i]++
			}
		}
	}

	return nil
}

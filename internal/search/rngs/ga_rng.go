package rngs

import (
	"math"
	"math/rand"
	"sync"
)

// GARNG is the GA's master random source: tournament selection, BLX-α
// crossover and mutation all draw from one instance per spec.md §5 ("The
// GA's master PRNG is single-threaded; crossover/mutation/selection are
// serialized"). The mutex-guarded math/rand.Rand wrapper mirrors FastRNG in
// internal/game/rng/fast_rng.go; Mulberry32 is reserved for the Sequencer,
// per §4.A ("The Simulator/GA may use a different generator").
type GARNG struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewGARNG constructs a GA random source seeded with the GA config's master
// seed.
func NewGARNG(seed int64) *GARNG {
	return &GARNG{rnd: rand.New(rand.NewSource(seed))}
}

// Float64 draws a uniform float in [0, 1).
func (g *GARNG) Float64() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.Float64()
}

// IntRange draws a uniform integer in [lo, hi] inclusive.
func (g *GARNG) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return lo + g.rnd.Intn(hi-lo+1)
}

// Bool draws true with probability p.
func (g *GARNG) Bool(p float64) bool {
	return g.Float64() < p
}

// IntRange64 draws a non-negative int64, used to derive independent
// downstream seeds (e.g. per-individual simulator seeds) from the GA's
// master RNG.
func (g *GARNG) IntRange64() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.Int63()
}

// NormFloat64 draws a sample from N(mean, sigma) using a Box-Muller pair of
// uniform draws, per §4.E ("add round(N(0, mutationSigma)) using a
// Box-Muller pair of uniform draws"). Implemented explicitly rather than
// via math/rand.NormFloat64 so the two uniform draws it consumes are
// accounted for the same way the retrieved PCG32 reference's NormFloat64
// does.
func (g *GARNG) NormFloat64(mean, sigma float64) float64 {
	u1 := g.Float64()
	// Avoid log(0): u1 in (0, 1).
	for u1 <= 1e-12 {
		u1 = g.Float64()
	}
	u2 := g.Float64()

	z0 := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
	return mean + sigma*z0
}

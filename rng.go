package lcm

import (
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// Stream is the single seeded source of randomness shared by the scheduler,
// the robots' fault model and Welzl's SEC construction. Every draw in a
// simulation run goes through one *Stream so that two runs given the same
// seed produce bitwise-identical results; the source is always seeded from
// configuration, never from time.Now().
type Stream struct {
	src *rand.Rand
}

// NewStream returns a Stream seeded deterministically from seed.
func NewStream(seed uint64) *Stream {
	return &Stream{src: rand.New(rand.NewSource(int64(seed)))}
}

// Exponential draws one sample from Exponential(lambda). lambda is the rate,
// in events per unit time.
func (s *Stream) Exponential(lambda float64) float64 {
	d := distuv.Exponential{Rate: lambda, Src: s.src}
	return d.Rand()
}

// Uniform draws one sample from the uniform distribution over [lo, hi).
func (s *Stream) Uniform(lo, hi float64) float64 {
	d := distuv.Uniform{Min: lo, Max: hi, Src: s.src}
	return d.Rand()
}

// UniformHalfOpen01 draws a sample from (0, 1], used for the non-rigid MOVE
// stop fraction. Uniform(0,1) is resampled on the zero-measure event it
// returns exactly 0, so callers never see a zero-length MOVE.
func (s *Stream) UniformHalfOpen01() float64 {
	for {
		if u := s.Uniform(0, 1); u > 0 {
			return u
		}
	}
}

// Bernoulli reports true with probability p, used by the fault model's
// independent trigger check at each action point.
func (s *Stream) Bernoulli(p float64) bool {
	return s.Uniform(0, 1) < p
}

// Shuffle pseudo-randomly permutes n elements via swap, used by Welzl's
// randomized incremental construction and by the VISIBILITY fault's random
// peer drop.
func (s *Stream) Shuffle(n int, swap func(i, j int)) {
	s.src.Shuffle(n, swap)
}

// Intn returns a pseudo-random int in [0, n). Nothing in the simulation core
// calls it.
func (s *Stream) Intn(n int) int {
	return s.src.Intn(n)
}

// README: Random point sampling around a centre, used to generate simulated trips.
package location

import (
	"math"
	"math/rand/v2"
	"sync"

	"roadie/internal/types"
)

const (
	// DefaultSampleRadiusM is used when RandPoint is called with a non-positive radius.
	DefaultSampleRadiusM = 2000.0
	// kmPerDegree approximates the length of one degree of latitude.
	kmPerDegree = 111.0
)

// Sampler draws random points. It is safe for concurrent use.
type Sampler struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSampler returns a Sampler seeded with seed. Equal seeds produce equal sequences.
func NewSampler(seed uint64) *Sampler {
	return &Sampler{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// RandPoint returns a point radiusM metres from center in a uniformly drawn
// direction. The radial distance is fixed rather than sampled, so this is
// not a uniform-disk distribution.
func (s *Sampler) RandPoint(center types.Point, radiusM float64) types.Point {
	if radiusM <= 0 {
		radiusM = DefaultSampleRadiusM
	}
	s.mu.Lock()
	theta := s.rnd.Float64() * 2 * math.Pi
	s.mu.Unlock()
	return offsetPoint(center, radiusM, theta)
}

// offsetPoint moves center by radiusM metres along bearing theta using the
// flat degrees-per-km approximation, widening longitude by 1/cos(lat).
func offsetPoint(center types.Point, radiusM, theta float64) types.Point {
	r := radiusM / 1000 / kmPerDegree
	return types.Point{
		Lat: center.Lat + r*math.Cos(theta),
		Lng: center.Lng + r*math.Sin(theta)/math.Cos(degreesToRadians(center.Lat)),
	}
}

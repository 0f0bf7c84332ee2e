// README: Matching service answers "which pending packages are near me".
package matching

import (
	"context"

	"roadie/internal/config"
	"roadie/internal/types"
)

type Service struct {
	index Index
	cfg   config.MatchingConfig
}

func NewService(index Index, cfg config.MatchingConfig) *Service {
	return &Service{index: index, cfg: cfg}
}

func (s *Service) Add(ctx context.Context, id types.ID, pickup types.Point) error {
	return s.index.Add(ctx, id, pickup)
}

func (s *Service) Remove(ctx context.Context, id types.ID) error {
	return s.index.Remove(ctx, id)
}

// NearbyPending returns pending packages within radiusKm of p, closest first.
// A non-positive radius falls back to the configured default.
func (s *Service) NearbyPending(ctx context.Context, p types.Point, radiusKm float64) ([]Candidate, error) {
	if radiusKm <= 0 {
		radiusKm = s.cfg.RadiusKm
	}
	return s.index.Nearby(ctx, p, radiusKm)
}

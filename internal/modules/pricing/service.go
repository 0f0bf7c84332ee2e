// README: Pricing service computes ETA and fare estimates.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"math"

	"roadie/internal/modules/location"
	"roadie/internal/types"
)

var (
	ErrBadRequest  = errors.New("bad pricing request")
	ErrUnknownRate = errors.New("unknown rate")
)

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

// ETAMinutes converts a distance into minutes at a constant speed.
func ETAMinutes(distanceKm, speedKmh float64) float64 {
	return distanceKm * 60 / speedKmh
}

// Fare returns base + perKm*distance + perMin*eta, rounded to cents.
func Fare(distanceKm, speedKmh, base, perKm, perMin float64) float64 {
	return RoundCents(base + perKm*distanceKm + perMin*ETAMinutes(distanceKm, speedKmh))
}

// RoundCents rounds half away from zero to two decimal places.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func (s *Service) Estimate(ctx context.Context, req PricingRequest) (PricingResult, error) {
	if req.DistanceKm < 0 {
		return PricingResult{}, ErrBadRequest
	}
	rate, err := s.store.GetRate(ctx, req.Kind)
	if err != nil {
		return PricingResult{}, fmt.Errorf("rate %q: %w", req.Kind, err)
	}
	return rate.quote(req.DistanceKm), nil
}

// Quote prices the straight-line trip between pickup and dropoff.
func (s *Service) Quote(ctx context.Context, kind string, pickup, dropoff types.Point) (PricingResult, error) {
	return s.Estimate(ctx, PricingRequest{DistanceKm: location.Haversine(pickup, dropoff), Kind: kind})
}

func (r Rate) quote(distanceKm float64) PricingResult {
	eta := ETAMinutes(distanceKm, r.SpeedKmh)
	return PricingResult{
		DistanceKm:  distanceKm,
		DurationMin: eta,
		Fare:        Fare(distanceKm, r.SpeedKmh, r.BaseFee, r.PerKm, r.PerMinute),
		Currency:    r.Currency,
		Breakdown: map[string]float64{
			"base":     r.BaseFee,
			"distance": RoundCents(r.PerKm * distanceKm),
			"time":     RoundCents(r.PerMinute * eta),
		},
	}
}

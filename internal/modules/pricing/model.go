// README: Pricing rate definition for each trip kind.
package pricing

import "roadie/internal/config"

const (
	KindMarketplace = "marketplace"
	KindShift       = "shift"
)

// Rate is a linear fare table: base + per-km + per-minute at a fixed speed.
type Rate struct {
	Kind      string
	BaseFee   float64
	PerKm     float64
	PerMinute float64
	SpeedKmh  float64
	Currency  string
}

// MarketplaceRate matches the package-request variant of the demo.
var MarketplaceRate = Rate{Kind: KindMarketplace, BaseFee: 5.00, PerKm: 2.00, PerMinute: 0.50, SpeedKmh: 40, Currency: "USD"}

// ShiftRate matches the simulated-shift variant of the demo.
var ShiftRate = Rate{Kind: KindShift, BaseFee: 2.50, PerKm: 1.50, PerMinute: 0.25, SpeedKmh: 30, Currency: "USD"}

// RateFromConfig builds a rate table for kind from configured values.
func RateFromConfig(kind string, c config.PricingConfig) Rate {
	return Rate{
		Kind:      kind,
		BaseFee:   c.BaseFee,
		PerKm:     c.PerKm,
		PerMinute: c.PerMinute,
		SpeedKmh:  c.SpeedKmh,
		Currency:  c.Currency,
	}
}

type PricingRequest struct {
	DistanceKm float64
	Kind       string
}

type PricingResult struct {
	DistanceKm  float64
	DurationMin float64
	Fare        float64
	Currency    string
	Breakdown   map[string]float64
}

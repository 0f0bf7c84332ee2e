// README: Config loader with env defaults for HTTP, Redis, Kafka, pricing and shift settings.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

type PricingConfig struct {
	BaseFee   float64
	PerKm     float64
	PerMinute float64
	SpeedKmh  float64
	Currency  string
}

type MatchingConfig struct {
	RadiusKm float64
}

type ShiftConfig struct {
	StartLat       float64
	StartLng       float64
	PickupRadiusM  float64
	DropoffRadiusM float64
	StepsPerLeg    int
	StepInterval   time.Duration
	Seed           uint64
	Pricing        PricingConfig
}

type Config struct {
	HTTP struct {
		Addr            string
		ShutdownTimeout time.Duration
	}
	Redis struct {
		Addr     string
		Password string
	}
	Kafka struct {
		Brokers []string
		Topic   string
	}
	Log struct {
		Level string
	}
	Auth struct {
		BcryptCost int
	}
	Marketplace PricingConfig
	Matching    MatchingConfig
	Shift       ShiftConfig
}

func Load() (Config, error) {
	var cfg Config
	var errs []error

	cfg.HTTP.Addr = envOrDefault("ROADIE_HTTP_ADDR", ":8080")
	cfg.HTTP.ShutdownTimeout = envOrDefaultDuration("ROADIE_HTTP_SHUTDOWN_TIMEOUT", 10*time.Second, &errs)
	cfg.Redis.Addr = strings.TrimSpace(os.Getenv("ROADIE_REDIS_ADDR"))
	cfg.Redis.Password = os.Getenv("ROADIE_REDIS_PASSWORD")
	cfg.Kafka.Brokers = splitAndTrim(os.Getenv("ROADIE_KAFKA_BROKERS"))
	cfg.Kafka.Topic = envOrDefault("ROADIE_KAFKA_TOPIC", "roadie-events")
	cfg.Log.Level = strings.ToLower(envOrDefault("ROADIE_LOG_LEVEL", "info"))
	cfg.Auth.BcryptCost = envOrDefaultInt("ROADIE_BCRYPT_COST", 10, &errs)

	cfg.Marketplace = PricingConfig{
		BaseFee:   envOrDefaultFloat("ROADIE_MARKET_BASE_FEE", 5.00, &errs),
		PerKm:     envOrDefaultFloat("ROADIE_MARKET_PER_KM", 2.00, &errs),
		PerMinute: envOrDefaultFloat("ROADIE_MARKET_PER_MIN", 0.50, &errs),
		SpeedKmh:  envOrDefaultFloat("ROADIE_MARKET_SPEED_KMH", 40, &errs),
		Currency:  envOrDefault("ROADIE_CURRENCY", "USD"),
	}

	cfg.Matching.RadiusKm = envOrDefaultFloat("ROADIE_MATCH_RADIUS_KM", 5.0, &errs)

	cfg.Shift = ShiftConfig{
		StartLat:       envOrDefaultFloat("ROADIE_SHIFT_START_LAT", 40.7580, &errs),
		StartLng:       envOrDefaultFloat("ROADIE_SHIFT_START_LNG", -73.9855, &errs),
		PickupRadiusM:  envOrDefaultFloat("ROADIE_SHIFT_PICKUP_RADIUS_M", 2000, &errs),
		DropoffRadiusM: envOrDefaultFloat("ROADIE_SHIFT_DROPOFF_RADIUS_M", 4000, &errs),
		StepsPerLeg:    envOrDefaultInt("ROADIE_SHIFT_STEPS_PER_LEG", 20, &errs),
		StepInterval:   envOrDefaultDuration("ROADIE_SHIFT_STEP_INTERVAL", 300*time.Millisecond, &errs),
		Seed:           uint64(envOrDefaultInt("ROADIE_SHIFT_SEED", int(time.Now().UnixNano()&0x7fffffff), &errs)),
		Pricing: PricingConfig{
			BaseFee:   envOrDefaultFloat("ROADIE_SHIFT_BASE_FEE", 2.50, &errs),
			PerKm:     envOrDefaultFloat("ROADIE_SHIFT_PER_KM", 1.50, &errs),
			PerMinute: envOrDefaultFloat("ROADIE_SHIFT_PER_MIN", 0.25, &errs),
			SpeedKmh:  envOrDefaultFloat("ROADIE_SHIFT_SPEED_KMH", 30, &errs),
			Currency:  envOrDefault("ROADIE_CURRENCY", "USD"),
		},
	}

	errs = append(errs, cfg.validate()...)
	return cfg, errors.Join(errs...)
}

func (c Config) validate() []error {
	var errs []error
	if c.Marketplace.SpeedKmh <= 0 {
		errs = append(errs, errors.New("ROADIE_MARKET_SPEED_KMH must be > 0"))
	}
	if c.Shift.Pricing.SpeedKmh <= 0 {
		errs = append(errs, errors.New("ROADIE_SHIFT_SPEED_KMH must be > 0"))
	}
	errs = append(errs, c.Marketplace.validateRates("ROADIE_MARKET")...)
	errs = append(errs, c.Shift.Pricing.validateRates("ROADIE_SHIFT")...)
	if c.Shift.PickupRadiusM < 0 || c.Shift.DropoffRadiusM < 0 {
		errs = append(errs, errors.New("ROADIE_SHIFT_PICKUP_RADIUS_M and ROADIE_SHIFT_DROPOFF_RADIUS_M must be >= 0"))
	}
	if c.Shift.StepsPerLeg < 1 {
		errs = append(errs, errors.New("ROADIE_SHIFT_STEPS_PER_LEG must be >= 1"))
	}
	if c.Shift.StepInterval <= 0 {
		errs = append(errs, errors.New("ROADIE_SHIFT_STEP_INTERVAL must be > 0"))
	}
	if c.Matching.RadiusKm <= 0 {
		errs = append(errs, errors.New("ROADIE_MATCH_RADIUS_KM must be > 0"))
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		errs = append(errs, errors.New("ROADIE_BCRYPT_COST must be between 4 and 31"))
	}
	return errs
}

// validateRates rejects negative or NaN fees.
func (p PricingConfig) validateRates(prefix string) []error {
	var errs []error
	for _, r := range []struct {
		suffix string
		v      float64
	}{
		{"_BASE_FEE", p.BaseFee},
		{"_PER_KM", p.PerKm},
		{"_PER_MIN", p.PerMinute},
	} {
		if r.v < 0 || math.IsNaN(r.v) {
			errs = append(errs, fmt.Errorf("%s%s must be >= 0", prefix, r.suffix))
		}
	}
	return errs
}

func envOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int, errs *[]error) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return def
		}
		return n
	}
	return def
}

func envOrDefaultFloat(key string, def float64, errs *[]error) float64 {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return def
		}
		return n
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration, errs *[]error) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return def
		}
		return d
	}
	return def
}

func splitAndTrim(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	raw := strings.Split(v, ",")
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}

package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("HTTP.Addr = %q", cfg.HTTP.Addr)
	}
	if cfg.Marketplace.SpeedKmh != 40 || cfg.Marketplace.BaseFee != 5 || cfg.Marketplace.PerKm != 2 || cfg.Marketplace.PerMinute != 0.5 {
		t.Errorf("unexpected marketplace pricing: %+v", cfg.Marketplace)
	}
	if cfg.Shift.Pricing.SpeedKmh != 30 || cfg.Shift.Pricing.BaseFee != 2.5 {
		t.Errorf("unexpected shift pricing: %+v", cfg.Shift.Pricing)
	}
	if cfg.Shift.PickupRadiusM != 2000 || cfg.Shift.StepsPerLeg != 20 {
		t.Errorf("unexpected shift config: %+v", cfg.Shift)
	}
	if cfg.Redis.Addr != "" || len(cfg.Kafka.Brokers) != 0 {
		t.Errorf("optional backends should be disabled by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ROADIE_HTTP_ADDR", ":9090")
	t.Setenv("ROADIE_SHIFT_SPEED_KMH", "45")
	t.Setenv("ROADIE_SHIFT_STEP_INTERVAL", "1s")
	t.Setenv("ROADIE_KAFKA_BROKERS", " k1:9092, ,k2:9092 ")
	t.Setenv("ROADIE_SHIFT_SEED", "1234")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTP.Addr != ":9090" {
		t.Errorf("HTTP.Addr = %q", cfg.HTTP.Addr)
	}
	if cfg.Shift.Pricing.SpeedKmh != 45 {
		t.Errorf("shift speed = %v", cfg.Shift.Pricing.SpeedKmh)
	}
	if cfg.Shift.StepInterval != time.Second {
		t.Errorf("step interval = %v", cfg.Shift.StepInterval)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "k2:9092" {
		t.Errorf("brokers = %v", cfg.Kafka.Brokers)
	}
	if cfg.Shift.Seed != 1234 {
		t.Errorf("seed = %d", cfg.Shift.Seed)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("ROADIE_MARKET_SPEED_KMH", "fast")
	t.Setenv("ROADIE_SHIFT_STEPS_PER_LEG", "0")
	t.Setenv("ROADIE_SHIFT_SPEED_KMH", "-3")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	for _, want := range []string{"invalid ROADIE_MARKET_SPEED_KMH", "ROADIE_SHIFT_STEPS_PER_LEG", "ROADIE_SHIFT_SPEED_KMH"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q does not mention %s", msg, want)
		}
	}
}

func TestLoad_RejectsNegativeRates(t *testing.T) {
	t.Setenv("ROADIE_SHIFT_BASE_FEE", "-2.5")
	t.Setenv("ROADIE_SHIFT_PER_KM", "-1")
	t.Setenv("ROADIE_MARKET_PER_MIN", "-0.5")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for negative rates")
	}
	msg := err.Error()
	for _, want := range []string{"ROADIE_SHIFT_BASE_FEE", "ROADIE_SHIFT_PER_KM", "ROADIE_MARKET_PER_MIN"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q does not mention %s", msg, want)
		}
	}
	if strings.Contains(msg, "ROADIE_SHIFT_PER_MIN") {
		t.Errorf("valid rate reported as invalid: %q", msg)
	}
}

func TestLoad_ZeroRatesAllowed(t *testing.T) {
	t.Setenv("ROADIE_SHIFT_BASE_FEE", "0")
	t.Setenv("ROADIE_SHIFT_PER_MIN", "0")
	if _, err := Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
}

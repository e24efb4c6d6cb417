package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.BusinessStartHour != 9 || cfg.BusinessEndHour != 18 {
		t.Errorf("business hours = %d-%d, want 9-18", cfg.BusinessStartHour, cfg.BusinessEndHour)
	}
	if cfg.SameDayCutoffHour != 17 {
		t.Errorf("SameDayCutoffHour = %d, want 17", cfg.SameDayCutoffHour)
	}
	if cfg.MaxSlotsReturned != 20 {
		t.Errorf("MaxSlotsReturned = %d, want 20", cfg.MaxSlotsReturned)
	}
	if cfg.HistoryRetention != 30*24*time.Hour {
		t.Errorf("HistoryRetention = %v", cfg.HistoryRetention)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MAX_SLOTS_RETURNED", "10")
	t.Setenv("CALENDAR_TIMEOUT", "5s")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.MaxSlotsReturned != 10 {
		t.Errorf("MaxSlotsReturned = %d", cfg.MaxSlotsReturned)
	}
	if cfg.CalendarTimeout != 5*time.Second {
		t.Errorf("CalendarTimeout = %v", cfg.CalendarTimeout)
	}
	if !cfg.RedisTLS {
		t.Error("RedisTLS = false")
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[0] != want[0] || cfg.CORSAllowedOrigins[1] != want[1] {
		t.Errorf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("BUSINESS_START_HOUR", "not-a-number")
	t.Setenv("AVAILABILITY_WINDOW", "soon")

	cfg := Load()

	if cfg.BusinessStartHour != 9 {
		t.Errorf("BusinessStartHour = %d, want fallback 9", cfg.BusinessStartHour)
	}
	if cfg.AvailabilityWindow != 7*24*time.Hour {
		t.Errorf("AvailabilityWindow = %v, want fallback", cfg.AvailabilityWindow)
	}
}

func TestLocationFallsBackToUTC(t *testing.T) {
	cfg := &Config{Timezone: "Not/AZone"}
	if loc := cfg.Location(); loc != time.UTC {
		t.Errorf("Location() = %v, want UTC", loc)
	}
}

package config

import (
	"testing"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.MinAmount != 5000 || cfg.MaxAmount != 2000000 {
		t.Errorf("unexpected amount bounds: %v..%v", cfg.MinAmount, cfg.MaxAmount)
	}
	if !cfg.AllowedTenures[12] || !cfg.AllowedTenures[24] || !cfg.AllowedTenures[36] {
		t.Errorf("unexpected tenures: %v", cfg.AllowedTenures)
	}
	if cfg.AllowedTenures[18] {
		t.Error("18 months must not be offered by default")
	}
	if cfg.DefaultRates["PERSONAL"] != 12 || cfg.DefaultRates["HOME"] != 8.5 {
		t.Errorf("unexpected default rates: %v", cfg.DefaultRates)
	}
	if cfg.MinCreditScore != 600 || cfg.IncomeMultiplier != 5 || cfg.LiabilityMultiplier != 0.5 {
		t.Errorf("unexpected approval criteria: %+v", cfg)
	}
}

func TestNewConfigOverrides(t *testing.T) {
	t.Setenv("LOAN_TENURES", "6, 18")
	t.Setenv("LOAN_RATES", "personal=11, boat=15.5, garbage, alsobad=x")
	t.Setenv("LOAN_AMOUNT_MIN", "1000")
	t.Setenv("LOAN_AMOUNT_MAX", "500000")

	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !cfg.AllowedTenures[6] || !cfg.AllowedTenures[18] || cfg.AllowedTenures[12] {
		t.Errorf("unexpected tenures: %v", cfg.AllowedTenures)
	}
	if cfg.DefaultRates["PERSONAL"] != 11 {
		t.Errorf("expected PERSONAL=11, got %v", cfg.DefaultRates["PERSONAL"])
	}
	if cfg.DefaultRates["BOAT"] != 15.5 {
		t.Errorf("expected BOAT=15.5, got %v", cfg.DefaultRates["BOAT"])
	}
	// Malformed entries are skipped, not fatal.
	if len(cfg.DefaultRates) != 2 {
		t.Errorf("expected 2 parsed rates, got %v", cfg.DefaultRates)
	}
	if cfg.MinAmount != 1000 || cfg.MaxAmount != 500000 {
		t.Errorf("unexpected amount bounds: %v..%v", cfg.MinAmount, cfg.MaxAmount)
	}
}

func TestNewConfigValidation(t *testing.T) {
	t.Run("bad encryption key length", func(t *testing.T) {
		t.Setenv("ENCRYPTION_KEY", "short")
		if _, err := NewConfig(); err == nil {
			t.Fatal("expected error for bad key length")
		}
	})

	t.Run("inverted amount bounds", func(t *testing.T) {
		t.Setenv("LOAN_AMOUNT_MIN", "100000")
		t.Setenv("LOAN_AMOUNT_MAX", "5000")
		if _, err := NewConfig(); err == nil {
			t.Fatal("expected error for inverted bounds")
		}
	})

	t.Run("garbage tenure", func(t *testing.T) {
		t.Setenv("LOAN_TENURES", "12,abc")
		if _, err := NewConfig(); err == nil {
			t.Fatal("expected error for non-numeric tenure")
		}
	})

	t.Run("empty tenures", func(t *testing.T) {
		t.Setenv("LOAN_TENURES", " , ")
		if _, err := NewConfig(); err == nil {
			t.Fatal("expected error for empty tenure list")
		}
	})
}

func TestParseRateMap(t *testing.T) {
	rates := ParseRateMap("PERSONAL=12,home = 8.5 ,AUTO=10")
	if len(rates) != 3 {
		t.Fatalf("expected 3 rates, got %v", rates)
	}
	if rates["HOME"] != 8.5 {
		t.Errorf("expected keys uppercased and trimmed, got %v", rates)
	}
}

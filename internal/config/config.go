package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds application configuration
type Config struct {
	Port          string
	DBConn        string
	LogLevel      string
	JWTSecret     string
	EncryptionKey string

	// Downstream services
	ProfileServiceURL string
	ProfileTimeoutSec int
	CBRURL            string

	// SMTP settings for notifications
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string

	// Loan rules
	MinAmount      float64
	MaxAmount      float64
	AllowedTenures map[int]bool
	DefaultRates   map[string]float64

	// Approval criteria
	MinCreditScore      float64
	IncomeMultiplier    float64
	LiabilityMultiplier float64
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		DBConn:            getEnv("DB_CONN", "host=localhost port=5436 user=test password=test dbname=loans sslmode=disable"),
		LogLevel:          getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:         getEnv("JWT_SECRET", "secret"),
		EncryptionKey:     getEnv("ENCRYPTION_KEY", "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6"),
		ProfileServiceURL: getEnv("PROFILE_SERVICE_URL", "http://localhost:8083"),
		CBRURL:            getEnv("CBR_URL", "https://www.cbr.ru/DailyInfoWebServ/DailyInfo.asmx"),
		SMTPHost:          getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:          getEnv("SMTP_PORT", "587"),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
		SenderEmail:       getEnv("SENDER_EMAIL", "noreply@loan-service.local"),
	}

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if len(cfg.EncryptionKey) != 16 && len(cfg.EncryptionKey) != 24 && len(cfg.EncryptionKey) != 32 {
		return nil, fmt.Errorf("ENCRYPTION_KEY must be 16, 24, or 32 bytes, got %d", len(cfg.EncryptionKey))
	}

	var err error
	if cfg.ProfileTimeoutSec, err = getEnvInt("PROFILE_TIMEOUT_SEC", 5); err != nil {
		return nil, err
	}
	if cfg.MinAmount, err = getEnvFloat("LOAN_AMOUNT_MIN", 5000); err != nil {
		return nil, err
	}
	if cfg.MaxAmount, err = getEnvFloat("LOAN_AMOUNT_MAX", 2000000); err != nil {
		return nil, err
	}
	if cfg.MinAmount <= 0 || cfg.MaxAmount < cfg.MinAmount {
		return nil, fmt.Errorf("invalid loan amount bounds: min=%.2f max=%.2f", cfg.MinAmount, cfg.MaxAmount)
	}
	if cfg.MinCreditScore, err = getEnvFloat("APPROVAL_MIN_CREDIT_SCORE", 600); err != nil {
		return nil, err
	}
	if cfg.IncomeMultiplier, err = getEnvFloat("APPROVAL_INCOME_MULTIPLIER", 5); err != nil {
		return nil, err
	}
	if cfg.LiabilityMultiplier, err = getEnvFloat("APPROVAL_LIABILITY_MULTIPLIER", 0.5); err != nil {
		return nil, err
	}

	if cfg.AllowedTenures, err = parseTenures(getEnv("LOAN_TENURES", "12,24,36")); err != nil {
		return nil, err
	}
	cfg.DefaultRates = ParseRateMap(getEnv("LOAN_RATES", "PERSONAL=12,HOME=8.5,AUTO=10,EDUCATIONAL=7.5,HOME_LOAN=8.5"))

	return cfg, nil
}

// ParseRateMap parses a rate configuration string of the form
// "PERSONAL=12,HOME=8.5,AUTO=10". Invalid entries are skipped.
func ParseRateMap(s string) map[string]float64 {
	rates := make(map[string]float64)
	for _, pair := range strings.Split(s, ",") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			continue
		}
		rate, err := strconv.ParseFloat(strings.TrimSpace(kv[1]), 64)
		if err != nil {
			continue
		}
		rates[strings.ToUpper(strings.TrimSpace(kv[0]))] = rate
	}
	return rates
}

func parseTenures(s string) (map[int]bool, error) {
	tenures := make(map[int]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		months, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid tenure value %q: %w", part, err)
		}
		tenures[months] = true
	}
	if len(tenures) == 0 {
		return nil, fmt.Errorf("LOAN_TENURES must list at least one tenure")
	}
	return tenures, nil
}

func getEnvInt(key string, defaultVal int) (int, error) {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getEnvFloat(key string, defaultVal float64) (float64, error) {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

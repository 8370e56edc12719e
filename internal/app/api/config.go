package api

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.temporal.io/sdk/client"
)

const (
	defaultSepayAPIKey     = "thanhToanTrucTuyen"
	defaultBankAccount     = "VQRQAFFXT3481"
	defaultBankName        = "MBBank"
	defaultBankAccountName = "THANH TOAN TRUC TUYEN"
	defaultReceiptTTLHours = 72
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port              string
	PostgresDSN       string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	ReceiptTTL        time.Duration
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool
	SepayAPIKey       string
	BankAccount       string
	BankName          string
	BankAccountName   string
	OrderIDPrefix     string
	JWTSecret         string
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:              envDefault("PORT", "3000"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		RedisAddr:         strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		SepayAPIKey:       envDefault("SEPAY_API_KEY", defaultSepayAPIKey),
		BankAccount:       envValue("BANK_ACCOUNT", defaultBankAccount),
		BankName:          envDefault("BANK_NAME", defaultBankName),
		BankAccountName:   envDefault("BANK_ACCOUNT_NAME", defaultBankAccountName),
		OrderIDPrefix:     envDefault("ORDER_ID_PREFIX", "DH"),
		JWTSecret:         strings.TrimSpace(os.Getenv("JWT_SECRET")),
	}
	if raw := strings.TrimSpace(os.Getenv("REDIS_DB")); raw != "" {
		db, err := strconv.Atoi(raw)
		if err != nil || db < 0 {
			return Config{}, fmt.Errorf("REDIS_DB must be a non-negative integer")
		}
		cfg.RedisDB = db
	}
	hours := defaultReceiptTTLHours
	if raw := strings.TrimSpace(os.Getenv("RECEIPT_TTL_HOURS")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return Config{}, fmt.Errorf("RECEIPT_TTL_HOURS must be a positive integer")
		}
		hours = parsed
	}
	cfg.ReceiptTTL = time.Duration(hours) * time.Hour
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return Config{}, fmt.Errorf("PORT must be numeric, got %q", cfg.Port)
	}
	return cfg, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

// envValue is envDefault, except that an explicitly empty variable stays empty.
func envValue(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(val)
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Supabase
	SupabaseURL            string
	SupabaseServiceRoleKey string
	SupabaseJWTSecret      string
	SupabaseStorageBucket  string

	// Database
	DatabaseURL string

	// Flutterwave
	FlutterwaveSecretKey string
	FlutterwaveBaseURL   string

	// Payments
	PaymentCurrency        string
	MinPaymentCents        int64
	PaymentReferencePrefix string

	// Mail
	SendGridAPIKey  string
	MailFrom        string
	StoreOwnerEmail string

	// Events
	KafkaBrokers []string
	KafkaTopic   string

	// Server
	Port               string
	Environment        string
	LogLevel           string
	BaseURL            string
	StorefrontURL      string
	CORSAllowedOrigins []string
}

func Load() (*Config, error) {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		SupabaseURL:            strings.TrimSuffix(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseServiceRoleKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		SupabaseJWTSecret:      getEnv("SUPABASE_JWT_SECRET", ""),
		SupabaseStorageBucket:  getEnv("SUPABASE_STORAGE_BUCKET", "product-images"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		FlutterwaveSecretKey: getEnv("FLW_SECRET_KEY", ""),
		FlutterwaveBaseURL:   getEnv("FLW_BASE_URL", "https://api.flutterwave.com/v3/"),

		PaymentCurrency:        getEnv("PAYMENT_CURRENCY", "USD"),
		MinPaymentCents:        getEnvAsInt64("MIN_PAYMENT_CENTS", 50),
		PaymentReferencePrefix: getEnv("PAYMENT_REFERENCE_PREFIX", "gold"),

		SendGridAPIKey:  getEnv("SENDGRID_API_KEY", ""),
		MailFrom:        getEnv("MAIL_FROM", "orders@goldlifestyle.shop"),
		StoreOwnerEmail: getEnv("STORE_OWNER_EMAIL", ""),

		KafkaBrokers: getEnvAsList("KAFKA_BROKERS"),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "storefront-events"),

		Port:               getEnv("PORT", "8080"),
		Environment:        getEnv("ENVIRONMENT", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		BaseURL:            strings.TrimSuffix(getEnv("BASE_URL", "http://localhost:8080"), "/"),
		StorefrontURL:      strings.TrimSuffix(getEnv("STOREFRONT_URL", "http://localhost:3000"), "/"),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabaseServiceRoleKey == "" {
		return fmt.Errorf("SUPABASE_SERVICE_ROLE_KEY is required")
	}
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.MinPaymentCents < 0 {
		return fmt.Errorf("MIN_PAYMENT_CENTS must not be negative")
	}
	return nil
}

// PaymentsEnabled reports whether checkout should hand off to Flutterwave.
func (c *Config) PaymentsEnabled() bool {
	return c.FlutterwaveSecretKey != ""
}

// MailEnabled reports whether completed orders are emailed to the store owner.
func (c *Config) MailEnabled() bool {
	return c.SendGridAPIKey != "" && c.StoreOwnerEmail != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

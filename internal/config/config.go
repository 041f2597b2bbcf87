package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// CORS
	CORSAllowedOrigins []string

	// Admin API auth
	AdminJWTSecret string

	// Scheduling business rules
	BusinessOpen    string        // "HH:MM", first bookable visit time
	BusinessClose   string        // "HH:MM", last bookable visit time
	OverlapBuffer   time.Duration // minimum separation between visits on a date
	SessionTTL      time.Duration
	MaxTurnHistory  int
	QuoteValidDays  int
	CatalogVersion  string

	// Notifier (best-effort, never blocks a turn)
	TwilioAccountSID  string
	TwilioAuthToken   string
	WhatsAppFrom      string
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	OperatorEmail     string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),

		BusinessOpen:   getEnv("BUSINESS_OPEN", "08:00"),
		BusinessClose:  getEnv("BUSINESS_CLOSE", "18:00"),
		OverlapBuffer:  getEnvAsDuration("APPOINTMENT_OVERLAP_BUFFER", 30*time.Minute),
		SessionTTL:     getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		MaxTurnHistory: getEnvAsInt("MAX_TURN_HISTORY", 20),
		QuoteValidDays: getEnvAsInt("QUOTE_VALID_DAYS", 30),
		CatalogVersion: getEnv("CATALOG_VERSION", "2024.1"),

		TwilioAccountSID:  getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:   getEnv("TWILIO_AUTH_TOKEN", ""),
		WhatsAppFrom:      getEnv("WHATSAPP_FROM", "+14155238886"),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Tesla Electricidad"),
		OperatorEmail:     getEnv("OPERATOR_EMAIL", ""),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

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

	// Scheduling policy
	Timezone           string
	BusinessStartHour  int
	BusinessEndHour    int
	SameDayCutoffHour  int
	MaxSlotsReturned   int
	MaxSlotsShown      int
	AvailabilityWindow time.Duration

	// Google Calendar
	GoogleCalendarID       string
	GoogleCredentialsJSON  string
	GoogleCredentialsFile  string
	CalendarTimeout        time.Duration
	OwnerEmail             string
	OwnerName              string

	// Gemini chat model
	GeminiAPIKey   string
	GeminiModelID  string
	LLMTimeout     time.Duration
	MaxChatMessage int

	// SendGrid email
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	EmailTimeout      time.Duration

	// Chat endpoint rate limiting
	ChatRatePerSecond float64
	ChatRateBurst     int

	// Conversation history retention
	HistoryRetention time.Duration
	SessionTTL       time.Duration

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		Timezone:           getEnv("TIMEZONE", "Asia/Ho_Chi_Minh"),
		BusinessStartHour:  getEnvAsInt("BUSINESS_START_HOUR", 9),
		BusinessEndHour:    getEnvAsInt("BUSINESS_END_HOUR", 18),
		SameDayCutoffHour:  getEnvAsInt("SAME_DAY_CUTOFF_HOUR", 17),
		MaxSlotsReturned:   getEnvAsInt("MAX_SLOTS_RETURNED", 20),
		MaxSlotsShown:      getEnvAsInt("MAX_SLOTS_SHOWN", 5),
		AvailabilityWindow: getEnvAsDuration("AVAILABILITY_WINDOW", 7*24*time.Hour),

		GoogleCalendarID:      getEnv("GOOGLE_CALENDAR_ID", ""),
		GoogleCredentialsJSON: getEnv("GOOGLE_CREDENTIALS_JSON", ""),
		GoogleCredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", ""),
		CalendarTimeout:       getEnvAsDuration("CALENDAR_TIMEOUT", 10*time.Second),
		OwnerEmail:            getEnv("OWNER_EMAIL", ""),
		OwnerName:             getEnv("OWNER_NAME", "Tien Dat Do"),

		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModelID:  getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),
		LLMTimeout:     getEnvAsDuration("LLM_TIMEOUT", 30*time.Second),
		MaxChatMessage: getEnvAsInt("MAX_CHAT_MESSAGE", 500),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Portfolio Assistant"),
		EmailTimeout:      getEnvAsDuration("EMAIL_TIMEOUT", 10*time.Second),

		ChatRatePerSecond: getEnvAsFloat("CHAT_RATE_PER_SECOND", 1),
		ChatRateBurst:     getEnvAsInt("CHAT_RATE_BURST", 5),

		HistoryRetention: getEnvAsDuration("HISTORY_RETENTION", 30*24*time.Hour),
		SessionTTL:       getEnvAsDuration("SESSION_TTL", time.Hour),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}
}

// Location resolves the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
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

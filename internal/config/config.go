package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Gemini (narrative generation)
	GeminiAPIKey  string
	GeminiBaseURL string
	GeminiModel   string

	// KIE (standard lane image/video generation)
	KieAPIKey  string
	KieBaseURL string

	// Higgsfield (premium "cinema" lane)
	HiggsfieldAPIKey  string
	HiggsfieldSecret  string
	HiggsfieldBaseURL string

	// Face swap (identity replacement on premium lane)
	FaceSwapAPIKey  string
	FaceSwapBaseURL string

	// Supabase
	SupabaseURL            string
	SupabasePublishableKey string
	SupabaseJWTSecret      string
	SupabaseStorageBucket  string

	// Webhook
	KieWebhookToken string

	// Database
	DatabaseURL string

	// Feature flags
	PremiumLaneEnabled bool

	// Server
	Port        string
	Environment string
	BaseURL     string
}

func Load() (*Config, error) {
	// Env files are optional; real deployments inject vars directly.
	_ = godotenv.Load(".env", ".env.local")

	cfg := &Config{
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiBaseURL: getEnv("GEMINI_API_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		KieAPIKey:  getEnv("KIE_API_KEY", ""),
		KieBaseURL: getEnv("KIE_API_BASE_URL", "https://api.kie.ai/api/v1"),

		HiggsfieldAPIKey:  getEnv("HIGGSFIELD_API_KEY", ""),
		HiggsfieldSecret:  getEnv("HIGGSFIELD_API_SECRET", ""),
		HiggsfieldBaseURL: getEnv("HIGGSFIELD_API_BASE_URL", "https://platform.higgsfield.ai/v1"),

		FaceSwapAPIKey:  getEnv("FACESWAP_API_KEY", ""),
		FaceSwapBaseURL: getEnv("FACESWAP_API_BASE_URL", "https://api.piapi.ai/api/v1"),

		SupabaseURL:            getEnv("SUPABASE_URL", ""),
		SupabasePublishableKey: getEnv("SUPABASE_PUBLISHABLE_KEY", ""),
		SupabaseJWTSecret:      getEnv("SUPABASE_JWT_SECRET", ""),
		SupabaseStorageBucket:  getEnv("SUPABASE_STORAGE_BUCKET", "sketch-media"),

		KieWebhookToken: getEnv("KIE_WEBHOOK_TOKEN", ""),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		PremiumLaneEnabled: getEnvBool("PREMIUM_LANE_ENABLED", false),

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.KieAPIKey == "" {
		return fmt.Errorf("KIE_API_KEY is required")
	}
	if c.PremiumLaneEnabled && c.HiggsfieldAPIKey == "" {
		return fmt.Errorf("HIGGSFIELD_API_KEY is required when PREMIUM_LANE_ENABLED is set")
	}
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabasePublishableKey == "" {
		return fmt.Errorf("SUPABASE_PUBLISHABLE_KEY is required")
	}
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

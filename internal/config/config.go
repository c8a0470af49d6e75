package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIBaseURL string
	APITimeout time.Duration
	APIRPS     float64
	APIBurst   int

	SessionDSN     string
	SessionProfile string

	StorefrontAddr string
	CookieSecure   bool
	CSRFEnabled    bool
	WorkspaceIdle  time.Duration
	MaxWorkspaces  int

	LogLevel string

	KafkaBrokers []string
	EventsTopic  string
}

// LoadDotEnv loads .env when present; the process environment always wins.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	if err := godotenv.Load(files...); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}
}

func Load() Config {
	return Config{
		APIBaseURL: os.Getenv("API_BASE_URL"),
		APITimeout: EnvDurationDefault("API_TIMEOUT", 15*time.Second),
		APIRPS:     EnvFloatDefault("API_RPS", 10),
		APIBurst:   EnvIntDefault("API_BURST", 20),

		SessionDSN:     EnvDefault("SESSION_DSN", "diamond_session.db"),
		SessionProfile: EnvDefault("SESSION_PROFILE", "default"),

		StorefrontAddr: EnvDefault("STOREFRONT_ADDR", ":8080"),
		CookieSecure:   EnvBoolDefault("COOKIE_SECURE", false),
		CSRFEnabled:    EnvBoolDefault("CSRF_ENABLED", true),
		WorkspaceIdle:  EnvDurationDefault("WORKSPACE_IDLE", 30*time.Minute),
		MaxWorkspaces:  EnvIntDefault("MAX_WORKSPACES", 10000),

		LogLevel: EnvDefault("LOG_LEVEL", "info"),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),
		EventsTopic:  EnvDefault("EVENTS_TOPIC", "diamond.activity"),
	}
}

func (c Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("missing required env API_BASE_URL")
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("API_TIMEOUT must be positive, got %s", c.APITimeout)
	}
	if c.APIRPS < 0 {
		return fmt.Errorf("API_RPS must not be negative, got %v", c.APIRPS)
	}
	if len(c.KafkaBrokers) > 0 && c.EventsTopic == "" {
		return fmt.Errorf("EVENTS_TOPIC is required when KAFKA_BROKERS is set")
	}
	return nil
}

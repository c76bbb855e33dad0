package config

import (
	"fmt"
	"os"
	"strconv"
)

// Storage backend selectors.
const (
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port  string
	Debug bool

	// Storage configuration
	StorageBackend string // "mongo" or "memory"
	MongoURL       string
	DBName         string

	// Sentiment lexicon override; empty uses the embedded asset
	LexiconPath string

	// Response SLA for the scheduled response-time sweep
	ResponseSLAMinutes int

	// Notification configuration
	AlertWebhookURL   string
	NotificationEmail string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string

	// Azure Blob archive configuration
	ArchiveEnabled   bool
	StorageAccount   string
	StorageContainer string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:  getEnv("PORT", "8080"),
		Debug: getBoolEnv("DEBUG", false),

		StorageBackend: getEnv("STORAGE_BACKEND", BackendMongo),
		MongoURL:       getEnv("MONGO_URL", "mongodb://localhost:27017"),
		DBName:         getEnv("DB_NAME", "reputation_monitor"),

		LexiconPath: getEnv("SENTIMENT_LEXICON_PATH", ""),

		ResponseSLAMinutes: getIntEnv("RESPONSE_SLA_MINUTES", 60),

		AlertWebhookURL:   getEnv("ALERT_WEBHOOK_URL", ""),
		NotificationEmail: getEnv("NOTIFICATION_EMAIL", ""),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getIntEnv("SMTP_PORT", 587),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),

		ArchiveEnabled:   getBoolEnv("ARCHIVE_ENABLED", false),
		StorageAccount:   getEnv("AZURE_STORAGE_ACCOUNT", ""),
		StorageContainer: getEnv("AZURE_STORAGE_CONTAINER", "engagement-archive"),
	}

	// Validate required configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.StorageBackend != BackendMongo && c.StorageBackend != BackendMemory {
		return fmt.Errorf("STORAGE_BACKEND must be 'mongo' or 'memory'")
	}

	if c.StorageBackend == BackendMongo && c.MongoURL == "" {
		return fmt.Errorf("MONGO_URL is required when STORAGE_BACKEND is 'mongo'")
	}

	if c.ResponseSLAMinutes <= 0 {
		return fmt.Errorf("RESPONSE_SLA_MINUTES must be positive")
	}

	if c.NotificationEmail != "" {
		if c.SMTPHost == "" || c.SMTPUsername == "" || c.SMTPPassword == "" {
			return fmt.Errorf("SMTP configuration is required when NOTIFICATION_EMAIL is set")
		}
	}

	if c.ArchiveEnabled && c.StorageAccount == "" {
		return fmt.Errorf("AZURE_STORAGE_ACCOUNT is required when ARCHIVE_ENABLED is set")
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

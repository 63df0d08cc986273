package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	Mongo         MongoConfig
	Gemini        GeminiConfig
	Policy        PolicyConfig
	Observability ObservabilityConfig
	Environment   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
}

// MongoConfig holds document store configuration
type MongoConfig struct {
	URI                string
	Database           string
	FleetCollection    string
	AuditCollection    string
	SettingsCollection string
	MaxPoolSize        int
	ConnectTimeout     time.Duration
	QueryTimeout       time.Duration
}

// GeminiConfig holds language-model service configuration
type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// PolicyConfig holds the policy gate configuration
type PolicyConfig struct {
	// TaxonomyFile optionally points to a YAML file overriding the
	// built-in default taxonomy
	TaxonomyFile string

	// PrecheckEnabled turns on the lexical screen that runs before the
	// classifier call
	PrecheckEnabled bool

	// AuditTimeout bounds the terminal audit write independently of the
	// caller's deadline
	AuditTimeout time.Duration
}

// ObservabilityConfig holds monitoring and logging configuration
type ObservabilityConfig struct {
	LogLevel       string
	LogFormat      string // json or text
	MetricsEnabled bool
	MetricsPort    int
}

// New creates a new Config instance by loading environment variables
func New() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			RequestTimeout:  getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 60*time.Second),
		},
		Mongo: MongoConfig{
			URI:                getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:           getEnv("MONGODB_DATABASE", "junction-boxers"),
			FleetCollection:    getEnv("MONGODB_FLEET_COLLECTION", "drones"),
			AuditCollection:    getEnv("MONGODB_AUDIT_COLLECTION", "auditLogs"),
			SettingsCollection: getEnv("MONGODB_SETTINGS_COLLECTION", "userSettings"),
			MaxPoolSize:        getEnvAsInt("MONGODB_MAX_POOL_SIZE", 25),
			ConnectTimeout:     getEnvAsDuration("MONGODB_CONNECT_TIMEOUT", 10*time.Second),
			QueryTimeout:       getEnvAsDuration("MONGODB_QUERY_TIMEOUT", 15*time.Second),
		},
		Gemini: GeminiConfig{
			APIKey:  getEnv("GEMINI_API_KEY", ""),
			BaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
			Model:   getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			Timeout: getEnvAsDuration("GEMINI_TIMEOUT", 60*time.Second),
		},
		Policy: PolicyConfig{
			TaxonomyFile:    getEnv("POLICY_TAXONOMY_FILE", ""),
			PrecheckEnabled: getEnvAsBool("POLICY_PRECHECK_ENABLED", true),
			AuditTimeout:    getEnvAsDuration("POLICY_AUDIT_TIMEOUT", 5*time.Second),
		},
		Observability: ObservabilityConfig{
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			LogFormat:      getEnv("LOG_FORMAT", "json"),
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
			MetricsPort:    getEnvAsInt("METRICS_PORT", 9090),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	if c.Mongo.URI == "" {
		return fmt.Errorf("mongodb URI is required: set MONGODB_URI")
	}
	if c.Mongo.Database == "" {
		return fmt.Errorf("mongodb database name is required")
	}
	if c.IsProduction() && c.Gemini.APIKey == "" {
		return fmt.Errorf("gemini API key is required in production")
	}
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}
	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

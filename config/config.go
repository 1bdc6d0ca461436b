package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Profile store backends
const (
	StoreDynamoDB = "dynamodb"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

const (
	defaultSpoonacularURL = "https://api.spoonacular.com"
	defaultUserTable      = "VoiceRecipeAssistant-Users"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerHost string
	ServerPort string

	// Recipe API configuration. An empty key is not a startup error; every
	// turn that needs the API reports it as "not configured".
	SpoonacularAPIKey  string
	SpoonacularBaseURL string
	SearchResultCount  int

	// Profile store configuration
	ProfileStore     string
	UserTableName    string
	AWSRegion        string
	DynamoDBEndpoint string

	// SQL profile store configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis configuration, optional
	RedisURL string
	CacheTTL time.Duration

	// HTTP fulfillment endpoint
	JWTSecret          string
	RateLimitPerMinute int
	CORSOrigins        []string

	// Logging
	LogLevel  string
	LogFormat string
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	if env == Development || env == Test {
		if err := loadDotEnv(getEnv("ENV_FILE", ".env")); err != nil {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	cfg, err := loadFromEnv(env)
	if err != nil {
		return nil, err
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadFromEnv(env Environment) (*Config, error) {
	cfg := &Config{
		Environment:        env,
		ServerHost:         getEnv("SERVER_HOST", "0.0.0.0"),
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		SpoonacularAPIKey:  secretOrEnv("spoonacular_api_key", "SPOONACULAR_API_KEY"),
		SpoonacularBaseURL: strings.TrimRight(getEnv("SPOONACULAR_BASE_URL", defaultSpoonacularURL), "/"),
		ProfileStore:       strings.ToLower(getEnv("PROFILE_STORE", StoreDynamoDB)),
		UserTableName:      getEnv("USER_TABLE_NAME", defaultUserTable),
		AWSRegion:          os.Getenv("AWS_REGION"),
		DynamoDBEndpoint:   os.Getenv("DYNAMODB_ENDPOINT"),
		DBHost:             os.Getenv("DB_HOST"),
		DBPort:             getEnv("DB_PORT", "5432"),
		DBUser:             os.Getenv("DB_USER"),
		DBPassword:         secretOrEnv("db_password", "DB_PASSWORD"),
		DBName:             os.Getenv("DB_NAME"),
		DBSSLMode:          getEnv("DB_SSL_MODE", "disable"),
		SQLitePath:         getEnv("SQLITE_PATH", "voice.db"),
		RedisURL:           secretOrEnv("redis_url", "REDIS_URL"),
		JWTSecret:          secretOrEnv("fulfillment_jwt_secret", "FULFILLMENT_JWT_SECRET"),
		CORSOrigins:        splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "json"),
	}

	var err error
	if cfg.SearchResultCount, err = getInt("SEARCH_RESULT_COUNT", 10); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerMinute, err = getInt("RATE_LIMIT_PER_MINUTE", 60); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getDuration("CACHE_TTL", time.Hour); err != nil {
		return nil, err
	}

	return cfg, nil
}

// splitList parses a comma-separated list, dropping empty entries
func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Addr returns the listen address of the HTTP server
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// PostgresDSN builds the postgres connection string
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, ValidationError{Field: key, Message: "must be an integer"}
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, ValidationError{Field: key, Message: "must be a duration such as 30m or 1h"}
	}
	return d, nil
}

// secretOrEnv prefers a Docker secret file and falls back to the environment variable
func secretOrEnv(secret, envKey string) string {
	if v := readSecret(secret); v != "" {
		return v
	}
	return strings.TrimSpace(os.Getenv(envKey))
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

// IsProduction reports whether the config was loaded for production
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

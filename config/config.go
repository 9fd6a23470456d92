package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	OpenFoodFacts OpenFoodFactsConfig
	OpenAI        OpenAIConfig
	Storage       StorageConfig
	Resolver      ResolverConfig
	Auth          AuthConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig holds Postgres connection configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// DSN builds the Postgres connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// OpenFoodFactsConfig holds barcode database API configuration
type OpenFoodFactsConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	UserAgent string `mapstructure:"user_agent"`
}

// OpenAIConfig holds the vision estimation API configuration
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// StorageConfig holds S3 photo storage configuration
type StorageConfig struct {
	Region string `mapstructure:"region"`
	Bucket string `mapstructure:"bucket"`
}

// ResolverConfig holds provider food resolution configuration
type ResolverConfig struct {
	TTL          time.Duration `mapstructure:"ttl"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
}

// AuthConfig holds token verification configuration
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/jumo/")

	// Environment variable settings. The key replacer maps nested keys
	// onto env names, e.g. auth.jwt_secret to JUMO_AUTH_JWT_SECRET.
	v.SetEnvPrefix("JUMO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "jumo")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "jumo")
	v.SetDefault("database.ssl_mode", "disable")

	// OpenFoodFacts defaults
	v.SetDefault("openfoodfacts.base_url", "https://world.openfoodfacts.org")
	v.SetDefault("openfoodfacts.user_agent", "Jumo/1.0 (support@jumo.app)")

	// OpenAI defaults. The client appends /v1/... paths itself.
	v.SetDefault("openai.base_url", "https://api.openai.com")
	v.SetDefault("openai.model", "gpt-4o-mini")

	// Storage defaults
	v.SetDefault("storage.region", "")
	v.SetDefault("storage.bucket", "")

	// Resolver defaults
	v.SetDefault("resolver.ttl", "720h") // 30 days
	v.SetDefault("resolver.fetch_timeout", "30s")

	// Secrets have no usable default but must be registered so viper
	// consults their environment variables during Unmarshal.
	v.SetDefault("openai.api_key", "")
	v.SetDefault("auth.jwt_secret", "")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required (set JUMO_AUTH_JWT_SECRET)")
	}

	if config.OpenAI.APIKey == "" {
		return fmt.Errorf("OpenAI API key is required (set JUMO_OPENAI_API_KEY)")
	}

	if config.Resolver.TTL <= 0 {
		return fmt.Errorf("resolver TTL must be positive, got: %s", config.Resolver.TTL)
	}

	if config.Resolver.FetchTimeout <= 0 {
		return fmt.Errorf("resolver fetch timeout must be positive, got: %s", config.Resolver.FetchTimeout)
	}

	return nil
}

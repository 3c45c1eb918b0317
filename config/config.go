package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the location of the optional YAML config file.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are searched in order when CONFIG_PATH is not set.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/foodgram/config.yaml",
}

// developmentJWTSecret is only used outside production and CI when no secret is configured.
const developmentJWTSecret = "foodgram-development-secret"

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort  string   `koanf:"server_port"`
	ServerHost  string   `koanf:"server_host"`
	CORSOrigins []string `koanf:"cors_origins"`

	// Database configuration
	DBDriver   string `koanf:"db_driver"`
	DBHost     string `koanf:"db_host"`
	DBPort     string `koanf:"db_port"`
	DBUser     string `koanf:"db_user"`
	DBPassword string `koanf:"db_password"`
	DBName     string `koanf:"db_name"`
	DBSSLMode  string `koanf:"db_ssl_mode"`
	SQLitePath string `koanf:"sqlite_path"`
	DBLogLevel string `koanf:"db_log_level"`

	// Redis configuration, used by the rate limiter only
	RedisHost     string `koanf:"redis_host"`
	RedisPort     string `koanf:"redis_port"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
	RedisURL      string `koanf:"redis_url"`

	// Rate limits per hour; zero disables the limiter
	RecipeCreateLimit int           `koanf:"recipe_create_limit"`
	RecipeModifyLimit int           `koanf:"recipe_modify_limit"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`

	// JWT configuration
	JWTSecret string        `koanf:"jwt_secret"`
	TokenTTL  time.Duration `koanf:"token_ttl"`

	// Logging
	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`
	LogFile   string `koanf:"log_file"`

	// Image storage: "local" keeps files under MediaDir, "s3" uploads to S3Bucket
	ImageStorage string `koanf:"image_storage"`
	MediaDir     string `koanf:"media_dir"`
	MediaURL     string `koanf:"media_url"`
	S3Bucket     string `koanf:"s3_bucket"`
	S3Endpoint   string `koanf:"s3_endpoint"`
	AWSRegion    string `koanf:"aws_region"`
}

func defaultConfig() *Config {
	return &Config{
		ServerPort:        "8080",
		ServerHost:        "0.0.0.0",
		CORSOrigins:       []string{"http://localhost:3000"},
		DBDriver:          "postgres",
		DBHost:            "localhost",
		DBPort:            "5432",
		DBUser:            "postgres",
		DBName:            "foodgram",
		DBSSLMode:         "disable",
		SQLitePath:        "foodgram.db",
		DBLogLevel:        "warn",
		RedisPort:         "6379",
		RecipeCreateLimit: 20,
		RecipeModifyLimit: 60,
		RateLimitWindow:   time.Hour,
		TokenTTL:          24 * time.Hour,
		LogLevel:          "info",
		LogFormat:         "json",
		ImageStorage:      "local",
		MediaDir:          "media",
		MediaURL:          "/media",
		S3Bucket:          "foodgram-recipe-images",
	}
}

// LoadConfig builds the configuration from defaults, an optional YAML file,
// environment variables and docker secrets, in increasing order of priority.
func LoadConfig() (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := splitListValues(k, "cors_origins"); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	applySecrets(cfg)

	if cfg.JWTSecret == "" && (IsDevelopment() || IsTest()) {
		cfg.JWTSecret = developmentJWTSecret
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// Addr returns the listen address of the HTTP server
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// envKeys maps the flat environment variable names onto koanf keys.
var envKeys = map[string]string{
	"server_port":         "server_port",
	"server_host":         "server_host",
	"cors_origins":        "cors_origins",
	"db_driver":           "db_driver",
	"db_host":             "db_host",
	"db_port":             "db_port",
	"db_user":             "db_user",
	"db_password":         "db_password",
	"db_name":             "db_name",
	"db_ssl_mode":         "db_ssl_mode",
	"sqlite_path":         "sqlite_path",
	"db_log_level":        "db_log_level",
	"redis_host":          "redis_host",
	"redis_port":          "redis_port",
	"redis_password":      "redis_password",
	"redis_db":            "redis_db",
	"redis_url":           "redis_url",
	"recipe_create_limit": "recipe_create_limit",
	"recipe_modify_limit": "recipe_modify_limit",
	"rate_limit_window":   "rate_limit_window",
	"jwt_secret":          "jwt_secret",
	"token_ttl":           "token_ttl",
	"log_level":           "log_level",
	"log_format":          "log_format",
	"log_file":            "log_file",
	"image_storage":       "image_storage",
	"media_dir":           "media_dir",
	"media_url":           "media_url",
	"s3_bucket_name":      "s3_bucket",
	"s3_endpoint":         "s3_endpoint",
	"aws_region":          "aws_region",
}

func envTransformFunc(key string) string {
	if mapped, ok := envKeys[strings.ToLower(key)]; ok {
		return mapped
	}
	// Unknown variables are skipped so the process environment does not leak into the config.
	return ""
}

// splitListValues turns comma-separated env values into slices; YAML lists pass through.
func splitListValues(k *koanf.Koanf, keys ...string) error {
	for _, key := range keys {
		raw, ok := k.Get(key).(string)
		if !ok {
			continue
		}
		var values []string
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				values = append(values, part)
			}
		}
		if err := k.Set(key, values); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}
	return nil
}

func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// secretFields lists the docker secrets that override whatever the environment provided.
var secretFields = map[string]func(*Config, string){
	"db_user":        func(c *Config, v string) { c.DBUser = v },
	"db_password":    func(c *Config, v string) { c.DBPassword = v },
	"jwt_secret":     func(c *Config, v string) { c.JWTSecret = v },
	"redis_password": func(c *Config, v string) { c.RedisPassword = v },
	"redis_url":      func(c *Config, v string) { c.RedisURL = v },
}

func applySecrets(cfg *Config) {
	for name, set := range secretFields {
		if value := readSecret(name); value != "" {
			set(cfg, value)
		}
	}
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	data, err := os.ReadFile(filepath.Join(secretsDir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

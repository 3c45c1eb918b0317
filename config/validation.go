package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks the configuration for the current environment and
// reports every problem at once.
func ValidateConfig(cfg *Config) error {
	env := GetEnvironment()
	var errs []ValidationError

	if cfg.ServerPort == "" {
		errs = append(errs, ValidationError{"server_port", "is required"})
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DBHost == "" || cfg.DBName == "" {
			errs = append(errs, ValidationError{"db_host", "host and database name are required for postgres"})
		}
		if (env == Production || env == CI) && cfg.DBPassword == "" {
			errs = append(errs, ValidationError{"db_password", "is required in " + string(env)})
		}
	case "sqlite":
		if cfg.SQLitePath == "" {
			errs = append(errs, ValidationError{"sqlite_path", "is required for sqlite"})
		}
		if env == Production {
			errs = append(errs, ValidationError{"db_driver", "sqlite is not supported in production"})
		}
	default:
		errs = append(errs, ValidationError{"db_driver", fmt.Sprintf("unknown driver %q", cfg.DBDriver)})
	}

	if cfg.JWTSecret == "" {
		errs = append(errs, ValidationError{"jwt_secret", "is required"})
	} else if env == Production && cfg.JWTSecret == developmentJWTSecret {
		errs = append(errs, ValidationError{"jwt_secret", "the development secret cannot be used in production"})
	}
	if cfg.TokenTTL <= 0 {
		errs = append(errs, ValidationError{"token_ttl", "must be positive"})
	}

	switch cfg.ImageStorage {
	case "local":
		if cfg.MediaDir == "" {
			errs = append(errs, ValidationError{"media_dir", "is required for local image storage"})
		}
	case "s3":
		if cfg.S3Bucket == "" {
			errs = append(errs, ValidationError{"s3_bucket", "is required for s3 image storage"})
		}
	default:
		errs = append(errs, ValidationError{"image_storage", fmt.Sprintf("unknown storage %q", cfg.ImageStorage)})
	}

	if cfg.RecipeCreateLimit < 0 || cfg.RecipeModifyLimit < 0 {
		errs = append(errs, ValidationError{"rate_limit", "limits cannot be negative"})
	}

	if len(errs) == 0 {
		return nil
	}

	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = e.Error()
	}
	return fmt.Errorf("configuration validation failed:\n%s", strings.Join(lines, "\n"))
}

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

// ValidateConfig reports every configuration problem at once
func ValidateConfig(cfg *Config) error {
	var errs []string

	switch cfg.ProfileStore {
	case StoreDynamoDB:
		if cfg.UserTableName == "" {
			errs = append(errs, ValidationError{"USER_TABLE_NAME", "required for the dynamodb profile store"}.Error())
		}
	case StorePostgres:
		if cfg.DBHost == "" {
			errs = append(errs, ValidationError{"DB_HOST", "required for the postgres profile store"}.Error())
		}
		if cfg.DBName == "" {
			errs = append(errs, ValidationError{"DB_NAME", "required for the postgres profile store"}.Error())
		}
	case StoreSQLite:
		if cfg.SQLitePath == "" {
			errs = append(errs, ValidationError{"SQLITE_PATH", "required for the sqlite profile store"}.Error())
		}
	default:
		errs = append(errs, ValidationError{"PROFILE_STORE", fmt.Sprintf("unknown store %q", cfg.ProfileStore)}.Error())
	}

	if cfg.SearchResultCount <= 0 {
		errs = append(errs, ValidationError{"SEARCH_RESULT_COUNT", "must be positive"}.Error())
	}
	if cfg.RateLimitPerMinute <= 0 {
		errs = append(errs, ValidationError{"RATE_LIMIT_PER_MINUTE", "must be positive"}.Error())
	}
	if cfg.CacheTTL <= 0 {
		errs = append(errs, ValidationError{"CACHE_TTL", "must be positive"}.Error())
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "console" {
		errs = append(errs, ValidationError{"LOG_FORMAT", "must be json or console"}.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "\n"))
	}
	return nil
}
